// Package itemid replicates Jellyfin's deterministic item identifier
// scheme: the MD5 of the UTF-16LE encoding of the item's .NET type name
// concatenated with its (possibly program-data-relative) path,
// interpreted as a GUID in little-endian field order.
//
// The algorithm is an external contract owned by the server. It is
// reproduced here bit-for-bit so that recomputed identifiers match what
// the server would generate for the same path after a move.
package itemid
