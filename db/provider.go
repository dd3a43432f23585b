package db

import "errors"

var ErrClosed = errors.New("database provider closed")

// KVReader is the read side shared by providers and their snapshots.
type KVReader interface {
	// Get retrieves a value by key. A missing key yields (nil, nil).
	Get(key []byte) ([]byte, error)

	// Has checks if a key exists
	Has(key []byte) (bool, error)

	// IteratePrefix visits every key-value pair under prefix in ascending key order.
	// The callback returns false to stop iteration. Key and value are only valid
	// for the duration of the callback.
	IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error
}

// DatabaseProvider abstracts the low-level database operations so stores can run on
// LevelDB, Pebble or Postgres without knowing which one.
type DatabaseProvider interface {
	KVReader

	// Put stores a key-value pair
	Put(key, value []byte) error

	// Delete removes a key-value pair
	Delete(key []byte) error

	// Batch returns a new batch for atomic operations
	Batch() DatabaseBatch

	// Snapshot pins a consistent read view of the database.
	Snapshot() (DatabaseSnapshot, error)

	// Close closes the database connection
	Close() error
}

// DatabaseSnapshot is a read-only point-in-time view. It does not observe writes
// committed after it was taken.
type DatabaseSnapshot interface {
	KVReader

	Release()
}

// DatabaseBatch provides atomic batch operations
type DatabaseBatch interface {
	// Put adds a key-value pair to the batch
	Put(key, value []byte)

	// Delete adds a deletion to the batch
	Delete(key []byte)

	// Write commits all operations in the batch, all or nothing
	Write() error

	// Reset clears the batch
	Reset()

	// Close releases batch resources
	Close() error
}
