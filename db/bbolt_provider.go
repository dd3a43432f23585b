package db

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"
)

const (
	boltFileName = "wallets.db"

	// Large enough that writers never wait on a remap while a snapshot is open.
	boltInitialMmapSize = 64 << 20
)

var boltBucket = []byte("kv")

// BboltProvider implements DatabaseProvider on a single bbolt file.
type BboltProvider struct {
	once sync.Once
	db   *bolt.DB
}

// NewBboltProvider opens (or creates) directory/wallets.db.
func NewBboltProvider(directory string) (DatabaseProvider, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bbolt directory: %w", err)
	}
	db, err := bolt.Open(filepath.Join(directory, boltFileName), 0o600, &bolt.Options{
		Timeout:         time.Second,
		InitialMmapSize: boltInitialMmapSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bbolt bucket: %w", err)
	}
	return &BboltProvider{db: db}, nil
}

func (p *BboltProvider) Get(key []byte) ([]byte, error) {
	var out []byte
	err := p.db.View(func(tx *bolt.Tx) error {
		out = boltGet(tx, key)
		return nil
	})
	return out, boltErr(err)
}

func (p *BboltProvider) Has(key []byte) (bool, error) {
	v, err := p.Get(key)
	return v != nil, err
}

func (p *BboltProvider) Put(key, value []byte) error {
	return boltErr(p.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put(key, value)
	}))
}

func (p *BboltProvider) Delete(key []byte) error {
	return boltErr(p.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete(key)
	}))
}

func (p *BboltProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	return boltErr(p.db.View(func(tx *bolt.Tx) error {
		boltIterate(tx, prefix, callback)
		return nil
	}))
}

// Close closes the database. Safe to call more than once.
func (p *BboltProvider) Close() error {
	var err error
	p.once.Do(func() {
		err = p.db.Close()
	})
	return err
}

func (p *BboltProvider) Batch() DatabaseBatch {
	return &BboltBatch{db: p.db}
}

// Snapshot holds a read transaction open until Release.
func (p *BboltProvider) Snapshot() (DatabaseSnapshot, error) {
	tx, err := p.db.Begin(false)
	if err != nil {
		if err = boltErr(err); errors.Is(err, ErrClosed) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to begin bbolt read tx: %w", err)
	}
	return &bboltSnapshot{tx: tx}, nil
}

type bboltSnapshot struct {
	mu       sync.RWMutex
	released bool
	tx       *bolt.Tx
}

func (s *bboltSnapshot) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.released {
		return nil, ErrClosed
	}
	return boltGet(s.tx, key), nil
}

func (s *bboltSnapshot) Has(key []byte) (bool, error) {
	v, err := s.Get(key)
	return v != nil, err
}

func (s *bboltSnapshot) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.released {
		return ErrClosed
	}
	boltIterate(s.tx, prefix, callback)
	return nil
}

// Release ends the read transaction. Later reads return ErrClosed.
func (s *bboltSnapshot) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	_ = s.tx.Rollback()
}

type boltOp struct {
	key    []byte
	value  []byte
	delete bool
}

// BboltBatch buffers writes and applies them in one read-write transaction.
type BboltBatch struct {
	db  *bolt.DB
	ops []boltOp
}

func (b *BboltBatch) Put(key, value []byte) {
	b.ops = append(b.ops, boltOp{key: copyBytes(key), value: copyBytes(value)})
}

func (b *BboltBatch) Delete(key []byte) {
	b.ops = append(b.ops, boltOp{key: copyBytes(key), delete: true})
}

func (b *BboltBatch) Write() error {
	if len(b.ops) == 0 {
		return nil
	}
	return boltErr(b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltBucket)
		for _, op := range b.ops {
			var err error
			if op.delete {
				err = bucket.Delete(op.key)
			} else {
				err = bucket.Put(op.key, op.value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}))
}

func (b *BboltBatch) Reset() {
	b.ops = b.ops[:0]
}

func (b *BboltBatch) Close() error {
	b.ops = nil
	return nil
}

// boltGet copies the value out; bbolt memory is only valid inside the transaction.
func boltGet(tx *bolt.Tx, key []byte) []byte {
	v := tx.Bucket(boltBucket).Get(key)
	if v == nil {
		return nil
	}
	return copyBytes(v)
}

func boltIterate(tx *bolt.Tx, prefix []byte, callback func(key, value []byte) bool) {
	c := tx.Bucket(boltBucket).Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if !callback(k, v) {
			return
		}
	}
}

func boltErr(err error) error {
	if errors.Is(err, berrors.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	return err
}
