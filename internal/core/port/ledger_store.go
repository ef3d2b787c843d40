package port

import "context"

// AnyVersion disables the version precondition of LedgerStore.Set.
const AnyVersion int64 = -1

// Entry is a stored document. Version 0 means the key does not exist.
type Entry struct {
	Key     string
	Value   []byte
	Version int64
}

// Change describes a committed write.
type Change struct {
	Key     string
	Version int64
}

// LedgerStore is the durable key-value store every ledger persists to.
// Values are opaque JSON documents and every key carries a version that
// grows by one on each write. Writers read an entry, change it and write
// it back conditionally on the version they read, which turns concurrent
// read-modify-write into compare-and-swap. Implementations must be safe
// for concurrent use.
type LedgerStore interface {
	// Get returns the entry for key. A missing key yields an Entry with
	// Version 0 and a nil error.
	Get(ctx context.Context, key string) (Entry, error)

	// Set writes value if the stored version equals expected (0 for a key
	// that must not exist yet, AnyVersion to skip the check) and returns the
	// new version. A failed precondition returns ErrVersionConflict.
	Set(ctx context.Context, key string, value []byte, expected int64) (int64, error)

	// Subscribe registers fn for every committed write, local or from
	// another process sharing the store. The returned func unregisters it.
	Subscribe(fn func(Change)) (cancel func())
}
