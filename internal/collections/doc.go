// Package collections rewrites the media paths embedded in Jellyfin's
// collection definition files when a library root moves.
package collections
