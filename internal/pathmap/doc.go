// Package pathmap computes replacement paths when a media library moves
// from one root directory to another. Matching is a prefix comparison
// on normalized absolute paths, anchored at separator boundaries.
package pathmap
