package store

import (
	"fmt"

	"github.com/mezonai/cryptocurrency/db"
	"github.com/mezonai/cryptocurrency/logx"
	"github.com/mezonai/cryptocurrency/types"
)

// WalletReader is the read surface shared by the store and its snapshots.
type WalletReader interface {
	// GetByPubKey returns both nil when the wallet does not exist.
	GetByPubKey(pk types.PublicKey) (*types.Wallet, error)
	// GetAll returns every wallet ordered by ascending public key.
	GetAll() ([]*types.Wallet, error)
}

type WalletSnapshot interface {
	WalletReader
	Release()
}

type WalletStore interface {
	WalletReader
	Snapshot() (WalletSnapshot, error)
	NewFork() *Fork
	WithFork(fn func(fork *Fork) error) error
	Count() (int, error)
	MustClose()
}

type GenericWalletStore struct {
	dbProvider db.DatabaseProvider
	txManager  *db.DBTxManager
}

func NewGenericWalletStore(dbProvider db.DatabaseProvider) (*GenericWalletStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericWalletStore{
		dbProvider: dbProvider,
		txManager:  db.NewDBTxManager(dbProvider),
	}, nil
}

func (ws *GenericWalletStore) GetByPubKey(pk types.PublicKey) (*types.Wallet, error) {
	return getWallet(ws.dbProvider, pk)
}

func (ws *GenericWalletStore) GetAll() ([]*types.Wallet, error) {
	return listWallets(ws.dbProvider)
}

func (ws *GenericWalletStore) Count() (int, error) {
	count := 0
	err := ws.dbProvider.IteratePrefix([]byte(PrefixWallet), func(key, value []byte) bool {
		count++
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("could not count wallets: %w", err)
	}
	return count, nil
}

// Snapshot pins the current committed state for reading.
func (ws *GenericWalletStore) Snapshot() (WalletSnapshot, error) {
	snap, err := ws.dbProvider.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("could not take snapshot: %w", err)
	}
	return &walletSnapshot{snap: snap}, nil
}

func (ws *GenericWalletStore) NewFork() *Fork {
	return newFork(ws.dbProvider, ws.txManager)
}

// WithFork runs fn inside a fresh fork. The fork is committed when fn returns nil and
// discarded otherwise; fn's error is returned as is.
func (ws *GenericWalletStore) WithFork(fn func(fork *Fork) error) error {
	fork := ws.NewFork()
	if err := fn(fork); err != nil {
		fork.Discard()
		return err
	}
	return fork.Commit()
}

func (ws *GenericWalletStore) MustClose() {
	err := ws.dbProvider.Close()
	if err != nil {
		logx.Error("WALLET_STORE", "Failed to close db provider:", err.Error())
	}
}

type walletSnapshot struct {
	snap db.DatabaseSnapshot
}

func (s *walletSnapshot) GetByPubKey(pk types.PublicKey) (*types.Wallet, error) {
	return getWallet(s.snap, pk)
}

func (s *walletSnapshot) GetAll() ([]*types.Wallet, error) {
	return listWallets(s.snap)
}

func (s *walletSnapshot) Release() {
	s.snap.Release()
}

func getWallet(r db.KVReader, pk types.PublicKey) (*types.Wallet, error) {
	data, err := r.Get(walletKey(pk))
	if err != nil {
		return nil, fmt.Errorf("could not get wallet %s from db: %w", pk, err)
	}
	if data == nil {
		return nil, nil
	}
	w, err := types.DecodeWallet(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode wallet %s: %w", pk, err)
	}
	return w, nil
}

func listWallets(r db.KVReader) ([]*types.Wallet, error) {
	var (
		wallets   []*types.Wallet
		decodeErr error
	)
	err := r.IteratePrefix([]byte(PrefixWallet), func(key, value []byte) bool {
		w, err := types.DecodeWallet(value)
		if err != nil {
			decodeErr = fmt.Errorf("failed to decode wallet at key %x: %w", key, err)
			return false
		}
		wallets = append(wallets, w)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("could not list wallets: %w", err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	if wallets == nil {
		wallets = []*types.Wallet{}
	}
	return wallets, nil
}
