// Package main hosts the jellyshift CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into the
// migration pipeline: path rewriting, identifier recomputation, metadata
// folder moves, verification, and metadata pruning. It centralizes
// configuration resolution, database locking, and structured logging setup
// so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
