// Package memory provides the in-memory keyspace.
//
// A Store maps keys to Records holding either a string or a hash, plus an
// optional absolute expiry instant. Expiry is driven by the injected
// Scheduler: setting an expiry records the instant on the record and
// schedules a one-shot callback for it. The callback re-reads the record's
// current instant and deletes the key only if that instant is still set
// and has passed, so a later EXPIRE or PERSIST silently defuses an older
// timer. Reads never expire keys on their own.
//
// Thread Safety:
//
// Store is not safe for concurrent use. Callers serialize every call,
// including the scheduled callbacks; the command engine does this with a
// single store-wide mutex.
package memory
