package db

import (
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDBProvider implements DatabaseProvider for LevelDB
type LevelDBProvider struct {
	once sync.Once
	db   *leveldb.DB
}

// NewLevelDBProvider opens (or creates) a LevelDB database under directory.
func NewLevelDBProvider(directory string) (DatabaseProvider, error) {
	db, err := leveldb.OpenFile(directory, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB: %w", err)
	}
	return &LevelDBProvider{db: db}, nil
}

// NewMemLevelDBProvider returns a LevelDB instance backed by memory. Nothing survives Close.
func NewMemLevelDBProvider() (DatabaseProvider, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory LevelDB: %w", err)
	}
	return &LevelDBProvider{db: db}, nil
}

func (p *LevelDBProvider) Get(key []byte) ([]byte, error) {
	return levelGet(p.db.Get(key, nil))
}

func (p *LevelDBProvider) Has(key []byte) (bool, error) {
	return p.db.Has(key, nil)
}

func (p *LevelDBProvider) Put(key, value []byte) error {
	return p.db.Put(key, value, nil)
}

func (p *LevelDBProvider) Delete(key []byte) error {
	return p.db.Delete(key, nil)
}

func (p *LevelDBProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	return levelIterate(p.db.NewIterator(util.BytesPrefix(prefix), nil), callback)
}

// Close closes the database. Safe to call more than once.
func (p *LevelDBProvider) Close() error {
	var err error
	p.once.Do(func() {
		err = p.db.Close()
	})
	return err
}

func (p *LevelDBProvider) Batch() DatabaseBatch {
	return &LevelDBBatch{
		batch: new(leveldb.Batch),
		db:    p.db,
	}
}

func (p *LevelDBProvider) Snapshot() (DatabaseSnapshot, error) {
	snap, err := p.db.GetSnapshot()
	if err != nil {
		if errors.Is(err, leveldb.ErrClosed) {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("failed to take LevelDB snapshot: %w", err)
	}
	return &levelDBSnapshot{snap: snap}, nil
}

type levelDBSnapshot struct {
	snap *leveldb.Snapshot
}

func (s *levelDBSnapshot) Get(key []byte) ([]byte, error) {
	return levelGet(s.snap.Get(key, nil))
}

func (s *levelDBSnapshot) Has(key []byte) (bool, error) {
	return s.snap.Has(key, nil)
}

func (s *levelDBSnapshot) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	return levelIterate(s.snap.NewIterator(util.BytesPrefix(prefix), nil), callback)
}

func (s *levelDBSnapshot) Release() {
	s.snap.Release()
}

func levelGet(value []byte, err error) ([]byte, error) {
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

func levelIterate(iter iterator.Iterator, callback func(key, value []byte) bool) error {
	defer iter.Release()
	for iter.Next() {
		if !callback(iter.Key(), iter.Value()) {
			break
		}
	}
	return iter.Error()
}

// LevelDBBatch implements DatabaseBatch for LevelDB
type LevelDBBatch struct {
	batch *leveldb.Batch
	db    *leveldb.DB
}

func (b *LevelDBBatch) Put(key, value []byte) {
	b.batch.Put(key, value)
}

func (b *LevelDBBatch) Delete(key []byte) {
	b.batch.Delete(key)
}

// Write applies the batch atomically.
func (b *LevelDBBatch) Write() error {
	return b.db.Write(b.batch, nil)
}

func (b *LevelDBBatch) Reset() {
	b.batch.Reset()
}

// Close is a no-op; LevelDB batches hold no resources.
func (b *LevelDBBatch) Close() error {
	return nil
}
