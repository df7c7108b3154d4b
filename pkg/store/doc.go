// Package store persists the deduplicated project collection.
//
// # Overview
//
// A [Database] turns import rows into records: it normalizes the handle,
// resolves the provider identity, skips identities already stored, fetches
// relationship lists and appends the new record through a [Backend]. Every
// call to [Database.Insert] returns an [InsertResult]; nothing an insert
// does aborts a batch.
//
// # Backends
//
//   - [FileBackend]: one pretty-printed JSON array on disk. Writers hold an
//     exclusive flock on "<path>.lock" for the whole read-modify-write and
//     replace the document with a temp file and rename, so the file is
//     never partially written and concurrent importers never lose records.
//   - [MongoBackend]: one document per record keyed by the provider id, so
//     uniqueness is enforced by the server.
//
// # Corrupt Documents
//
// A file that is not a JSON array of records reads as an empty collection
// and is left untouched. The next insert moves it aside to
// "<path>.corrupt-<unix>" before writing. With strict mode reads and
// inserts fail with [ErrCorrupt] instead.
package store
