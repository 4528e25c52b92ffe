// Package metadata relocates the identifier-keyed artwork folders that
// Jellyfin caches on disk. Folders are sharded by the first two hex
// characters of the identifier; moving an item means renaming its
// folder into the new identifier's shard. Missing folders are ignored
// (metadata regenerates), occupied destinations abort the run.
package metadata
