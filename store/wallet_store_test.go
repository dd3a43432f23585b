package store

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/mezonai/cryptocurrency/db"
	"github.com/mezonai/cryptocurrency/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *GenericWalletStore {
	t.Helper()
	provider, err := db.NewMemLevelDBProvider()
	require.NoError(t, err)
	ws, err := NewGenericWalletStore(provider)
	require.NoError(t, err)
	t.Cleanup(ws.MustClose)
	return ws
}

func pubKey(b byte) types.PublicKey {
	var pk types.PublicKey
	pk[0] = b
	pk[31] = b
	return pk
}

func TestNewGenericWalletStore_NilProvider(t *testing.T) {
	_, err := NewGenericWalletStore(nil)
	assert.Error(t, err)
}

func TestWalletStore_MissingWallet(t *testing.T) {
	ws := newTestStore(t)
	w, err := ws.GetByPubKey(pubKey(1))
	require.NoError(t, err)
	assert.Nil(t, w)

	all, err := ws.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.NotNil(t, all)
}

func TestFork_ReadYourWritesAndCommit(t *testing.T) {
	ws := newTestStore(t)
	alice := types.NewWallet(pubKey(1), "Alice", uint256.NewInt(100))

	fork := ws.NewFork()
	require.NoError(t, fork.Put(alice))

	got, err := fork.Get(alice.PubKey)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	outside, err := ws.GetByPubKey(alice.PubKey)
	require.NoError(t, err)
	assert.Nil(t, outside, "uncommitted writes must not be visible")

	require.NoError(t, fork.Commit())
	assert.ErrorIs(t, fork.Commit(), ErrForkClosed)

	stored, err := ws.GetByPubKey(alice.PubKey)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, uint64(100), stored.Balance.Uint64())
}

func TestFork_GetReturnsCopy(t *testing.T) {
	ws := newTestStore(t)
	fork := ws.NewFork()
	require.NoError(t, fork.Put(types.NewWallet(pubKey(1), "Alice", uint256.NewInt(100))))

	w, err := fork.Get(pubKey(1))
	require.NoError(t, err)
	w.Decrease(uint256.NewInt(40))

	again, err := fork.Get(pubKey(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(100), again.Balance.Uint64())
}

func TestWithFork_DiscardsOnError(t *testing.T) {
	ws := newTestStore(t)
	boom := errors.New("boom")

	err := ws.WithFork(func(fork *Fork) error {
		require.NoError(t, fork.Put(types.NewWallet(pubKey(1), "Alice", uint256.NewInt(100))))
		require.NoError(t, fork.Put(types.NewWallet(pubKey(2), "Bob", uint256.NewInt(100))))
		return boom
	})
	assert.Same(t, boom, err)

	count, err := ws.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestWithFork_CommitsAllWrites(t *testing.T) {
	ws := newTestStore(t)
	require.NoError(t, ws.WithFork(func(fork *Fork) error {
		if err := fork.Put(types.NewWallet(pubKey(1), "Alice", uint256.NewInt(70))); err != nil {
			return err
		}
		return fork.Put(types.NewWallet(pubKey(2), "Bob", uint256.NewInt(130)))
	}))

	count, err := ws.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestFork_Changes(t *testing.T) {
	ws := newTestStore(t)
	fork := ws.NewFork()
	require.NoError(t, fork.Put(types.NewWallet(pubKey(9), "Zed", uint256.NewInt(1))))
	require.NoError(t, fork.Put(types.NewWallet(pubKey(1), "Alice", uint256.NewInt(2))))
	require.NoError(t, fork.Put(types.NewWallet(pubKey(9), "Zed", uint256.NewInt(3))))

	changes := fork.Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, pubKey(9), changes[0].PubKey)
	assert.Equal(t, uint64(3), changes[0].Balance.Uint64())
	assert.Equal(t, pubKey(1), changes[1].PubKey)

	fork.Discard()
	_, err := fork.Get(pubKey(1))
	assert.ErrorIs(t, err, ErrForkClosed)
}

func TestWalletStore_GetAllOrderedByPubKey(t *testing.T) {
	ws := newTestStore(t)
	for _, b := range []byte{0xf0, 0x01, 0x80, 0x10} {
		w := types.NewWallet(pubKey(b), "", uint256.NewInt(100))
		require.NoError(t, ws.WithFork(func(fork *Fork) error { return fork.Put(w) }))
	}

	all, err := ws.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Negative(t, all[i-1].PubKey.Compare(all[i].PubKey))
	}
}

func TestWalletStore_SnapshotIsolation(t *testing.T) {
	ws := newTestStore(t)
	require.NoError(t, ws.WithFork(func(fork *Fork) error {
		return fork.Put(types.NewWallet(pubKey(1), "Alice", uint256.NewInt(100)))
	}))

	snap, err := ws.Snapshot()
	require.NoError(t, err)
	defer snap.Release()

	require.NoError(t, ws.WithFork(func(fork *Fork) error {
		if err := fork.Put(types.NewWallet(pubKey(1), "Alice", uint256.NewInt(70))); err != nil {
			return err
		}
		return fork.Put(types.NewWallet(pubKey(2), "Bob", uint256.NewInt(130)))
	}))

	w, err := snap.GetByPubKey(pubKey(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(100), w.Balance.Uint64())

	all, err := snap.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStoreFactory_CreateProvider(t *testing.T) {
	factory := NewStoreFactory()

	_, err := factory.CreateProvider(nil)
	assert.Error(t, err)

	_, err = factory.CreateProvider(&StoreConfig{Type: "rocksdb", Directory: t.TempDir()})
	assert.Error(t, err)

	_, err = factory.CreateProvider(&StoreConfig{Type: LevelDBStoreType})
	assert.Error(t, err, "leveldb requires a directory")

	_, err = factory.CreateProvider(&StoreConfig{Type: PostgresStoreType})
	assert.Error(t, err, "postgres requires a dsn")

	for _, cfg := range []*StoreConfig{
		{Type: MemoryStoreType},
		{Type: LevelDBStoreType, Directory: t.TempDir()},
		{Type: PebbleStoreType, Directory: t.TempDir()},
		{Type: BboltStoreType, Directory: t.TempDir()},
	} {
		ws, err := CreateStore(cfg)
		require.NoError(t, err, cfg.Type)
		require.NoError(t, ws.WithFork(func(fork *Fork) error {
			return fork.Put(types.NewWallet(pubKey(1), "Alice", uint256.NewInt(100)))
		}))
		w, err := ws.GetByPubKey(pubKey(1))
		require.NoError(t, err)
		assert.Equal(t, "Alice", w.Name)
		ws.MustClose()
	}
}
