package db

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// PebbleProvider implements DatabaseProvider on top of Pebble.
type PebbleProvider struct {
	once sync.Once
	db   *pebble.DB
}

func NewPebbleProvider(directory string) (DatabaseProvider, error) {
	db, err := pebble.Open(directory, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open Pebble: %w", err)
	}
	return &PebbleProvider{db: db}, nil
}

// NewMemPebbleProvider opens Pebble on an in-memory filesystem.
func NewMemPebbleProvider() (DatabaseProvider, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory Pebble: %w", err)
	}
	return &PebbleProvider{db: db}, nil
}

func (p *PebbleProvider) Get(key []byte) ([]byte, error) {
	return pebbleGet(p.db, key)
}

func (p *PebbleProvider) Has(key []byte) (bool, error) {
	v, err := pebbleGet(p.db, key)
	return v != nil, err
}

func (p *PebbleProvider) Put(key, value []byte) error {
	return p.db.Set(key, value, pebble.Sync)
}

func (p *PebbleProvider) Delete(key []byte) error {
	return p.db.Delete(key, pebble.Sync)
}

func (p *PebbleProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	return pebbleIterate(p.db, prefix, callback)
}

func (p *PebbleProvider) Batch() DatabaseBatch {
	return &PebbleBatch{batch: p.db.NewBatch()}
}

func (p *PebbleProvider) Snapshot() (DatabaseSnapshot, error) {
	return &pebbleSnapshot{snap: p.db.NewSnapshot()}, nil
}

func (p *PebbleProvider) Close() error {
	var err error
	p.once.Do(func() {
		err = p.db.Close()
	})
	return err
}

type pebbleSnapshot struct {
	snap *pebble.Snapshot
}

func (s *pebbleSnapshot) Get(key []byte) ([]byte, error) {
	return pebbleGet(s.snap, key)
}

func (s *pebbleSnapshot) Has(key []byte) (bool, error) {
	v, err := pebbleGet(s.snap, key)
	return v != nil, err
}

func (s *pebbleSnapshot) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	return pebbleIterate(s.snap, prefix, callback)
}

func (s *pebbleSnapshot) Release() {
	_ = s.snap.Close()
}

func pebbleGet(r pebble.Reader, key []byte) ([]byte, error) {
	val, closer, err := r.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func pebbleIterate(r pebble.Reader, prefix []byte, callback func(key, value []byte) bool) error {
	iter, err := r.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if !callback(iter.Key(), iter.Value()) {
			break
		}
	}
	return iter.Error()
}

// prefixUpperBound returns the smallest key greater than every key starting with
// prefix, or nil when no such key exists.
func prefixUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// PebbleBatch implements DatabaseBatch for Pebble
type PebbleBatch struct {
	batch *pebble.Batch
}

func (b *PebbleBatch) Put(key, value []byte) {
	_ = b.batch.Set(key, value, nil)
}

func (b *PebbleBatch) Delete(key []byte) {
	_ = b.batch.Delete(key, nil)
}

func (b *PebbleBatch) Write() error {
	return b.batch.Commit(pebble.Sync)
}

func (b *PebbleBatch) Reset() {
	b.batch.Reset()
}

func (b *PebbleBatch) Close() error {
	return b.batch.Close()
}
