// Package library opens and rewrites Jellyfin's library.db.
//
// The Store assumes exclusive ownership of the database for one run,
// enforced with a lock file beside it, and a schema frozen to the one
// known server version. Each item's re-keying runs in its own
// transaction so a mid-run failure leaves every item either fully
// migrated or untouched; recovery from a failed run is restore from
// backup, never partial repair.
package library
