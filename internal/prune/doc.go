// Package prune removes every library row of a media class, the
// virtual folder chain that exists only to contain those rows, and the
// metadata folders keyed by the deleted identifiers. The parent walk
// stops at the aggregate folder so shared library roots survive.
package prune
