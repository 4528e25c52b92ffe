// Package migrate orchestrates the single-pass library migration: plan
// the path and identifier changes, apply them item by item, relocate
// metadata folders, and sweep residual textual references.
//
// There is no retry or resume state. The first error aborts the whole
// run and the documented recovery is restore from backup; package
// library's per-item transactions guarantee no item is left half
// migrated.
package migrate
