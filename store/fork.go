package store

import (
	"errors"
	"fmt"

	"github.com/mezonai/cryptocurrency/db"
	"github.com/mezonai/cryptocurrency/types"
)

var ErrForkClosed = errors.New("fork already committed or discarded")

// Fork is an atomic unit over the wallet store. Reads see the fork's own writes on
// top of committed state; nothing is visible to other readers until Commit.
type Fork struct {
	reader    db.KVReader
	txManager *db.DBTxManager
	dirty     map[types.PublicKey]*types.Wallet
	order     []types.PublicKey
	closed    bool
}

func newFork(reader db.KVReader, txManager *db.DBTxManager) *Fork {
	return &Fork{
		reader:    reader,
		txManager: txManager,
		dirty:     make(map[types.PublicKey]*types.Wallet),
	}
}

// Get returns a copy of the wallet, or both nil when it does not exist.
func (f *Fork) Get(pk types.PublicKey) (*types.Wallet, error) {
	if f.closed {
		return nil, ErrForkClosed
	}
	if w, ok := f.dirty[pk]; ok {
		return w.Clone(), nil
	}
	return getWallet(f.reader, pk)
}

func (f *Fork) Put(w *types.Wallet) error {
	if f.closed {
		return ErrForkClosed
	}
	if _, ok := f.dirty[w.PubKey]; !ok {
		f.order = append(f.order, w.PubKey)
	}
	f.dirty[w.PubKey] = w.Clone()
	return nil
}

// Changes lists the wallets written in this fork, in first-write order.
func (f *Fork) Changes() []*types.Wallet {
	out := make([]*types.Wallet, 0, len(f.order))
	for _, pk := range f.order {
		out = append(out, f.dirty[pk].Clone())
	}
	return out
}

func (f *Fork) Commit() error {
	if f.closed {
		return ErrForkClosed
	}
	f.closed = true
	if len(f.dirty) == 0 {
		return nil
	}
	err := f.txManager.WithBatch(func(batch db.DatabaseBatch) error {
		for _, pk := range f.order {
			batch.Put(walletKey(pk), types.EncodeWallet(f.dirty[pk]))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to commit fork: %w", err)
	}
	return nil
}

func (f *Fork) Discard() {
	f.closed = true
	f.dirty = nil
	f.order = nil
}
