// Package config loads, normalizes, and validates jellyshift
// configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes the
// Jellyfin data tree layout and the server-side settings (program-data
// path, hash case sensitivity) that the identifier contract depends on.
package config
