// Package repos is the repo record store.
//
// # Overview
//
// Store reads and writes the repo table through a dbx.DBTX. Every write runs
// a pure pipeline over the caller's proposed field-set before a single SQL
// statement is issued:
//
//	insert: Normalize -> ApplyInsertDefaults -> ApplyFingerprint -> INSERT
//	update: Normalize -> ApplyUpdateRules    -> ApplyFingerprint -> UPDATE
//
// The rules keep the stored rows consistent: a non-empty public key always
// travels with its fingerprint, a disabled repo has no cached ETag, the
// address is never empty, and a new repo always has a name, an enabled flag,
// a priority, a max age and a version.
//
// # Addressing
//
// Operations take a Target, either the whole collection or one record id.
// Deleting the collection is refused silently; use a filter on single ids.
//
// # Concurrency
//
// The store adds no locks. Each statement is atomic on its own. Two callers
// that read, modify and write back the same record race, and the last
// statement wins per column.
//
// Key Types
//
//   - type Store         the record store
//   - type Target        collection or single-record address
//   - type Query         projection, filter and order for reads
//   - type Cursor        read result bound to change notifications
package repos
