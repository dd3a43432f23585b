package db

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerCase struct {
	name string
	open func(t *testing.T) DatabaseProvider
}

func providerCases() []providerCase {
	cases := []providerCase{
		{
			name: "leveldb-mem",
			open: func(t *testing.T) DatabaseProvider {
				p, err := NewMemLevelDBProvider()
				require.NoError(t, err)
				return p
			},
		},
		{
			name: "leveldb-file",
			open: func(t *testing.T) DatabaseProvider {
				p, err := NewLevelDBProvider(t.TempDir())
				require.NoError(t, err)
				return p
			},
		},
		{
			name: "pebble-mem",
			open: func(t *testing.T) DatabaseProvider {
				p, err := NewMemPebbleProvider()
				require.NoError(t, err)
				return p
			},
		},
		{
			name: "pebble-file",
			open: func(t *testing.T) DatabaseProvider {
				p, err := NewPebbleProvider(t.TempDir())
				require.NoError(t, err)
				return p
			},
		},
		{
			name: "bbolt-file",
			open: func(t *testing.T) DatabaseProvider {
				p, err := NewBboltProvider(t.TempDir())
				require.NoError(t, err)
				return p
			},
		},
	}
	if dsn := os.Getenv("CRYPTOCURRENCY_TEST_POSTGRES_DSN"); dsn != "" {
		cases = append(cases, providerCase{
			name: "postgres",
			open: func(t *testing.T) DatabaseProvider {
				table := fmt.Sprintf("kv_test_%d", os.Getpid())
				p, err := NewPostgresProvider(dsn, table)
				require.NoError(t, err)
				t.Cleanup(func() {
					_, _ = p.(*PostgresProvider).db.Exec("DROP TABLE IF EXISTS " + p.(*PostgresProvider).table)
				})
				return p
			},
		})
	}
	return cases
}

func forEachProvider(t *testing.T, fn func(t *testing.T, p DatabaseProvider)) {
	for _, tc := range providerCases() {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.open(t)
			defer p.Close()
			fn(t, p)
		})
	}
}

func TestProvider_GetPutDelete(t *testing.T) {
	forEachProvider(t, func(t *testing.T, p DatabaseProvider) {
		v, err := p.Get([]byte("missing"))
		require.NoError(t, err)
		assert.Nil(t, v)

		has, err := p.Has([]byte("missing"))
		require.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, p.Put([]byte("k1"), []byte("v1")))
		v, err = p.Get([]byte("k1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), v)

		require.NoError(t, p.Put([]byte("k1"), []byte("v2")))
		v, err = p.Get([]byte("k1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), v)

		require.NoError(t, p.Delete([]byte("k1")))
		has, err = p.Has([]byte("k1"))
		require.NoError(t, err)
		assert.False(t, has)
	})
}

func TestProvider_IteratePrefixOrdered(t *testing.T) {
	forEachProvider(t, func(t *testing.T, p DatabaseProvider) {
		require.NoError(t, p.Put([]byte("wallet:c"), []byte("3")))
		require.NoError(t, p.Put([]byte("wallet:a"), []byte("1")))
		require.NoError(t, p.Put([]byte("wallet:b"), []byte("2")))
		require.NoError(t, p.Put([]byte("walleu:x"), []byte("x")))
		require.NoError(t, p.Put([]byte("other"), []byte("y")))

		var keys []string
		err := p.IteratePrefix([]byte("wallet:"), func(key, value []byte) bool {
			keys = append(keys, string(key))
			return true
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"wallet:a", "wallet:b", "wallet:c"}, keys)

		keys = keys[:0]
		err = p.IteratePrefix([]byte("wallet:"), func(key, value []byte) bool {
			keys = append(keys, string(key))
			return false
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"wallet:a"}, keys)
	})
}

func TestProvider_BatchIsAtomic(t *testing.T) {
	forEachProvider(t, func(t *testing.T, p DatabaseProvider) {
		require.NoError(t, p.Put([]byte("gone"), []byte("x")))

		batch := p.Batch()
		batch.Put([]byte("a"), []byte("1"))
		batch.Put([]byte("b"), []byte("2"))
		batch.Delete([]byte("gone"))

		has, err := p.Has([]byte("a"))
		require.NoError(t, err)
		assert.False(t, has, "batch writes must stay invisible until Write")

		require.NoError(t, batch.Write())
		require.NoError(t, batch.Close())

		for k, want := range map[string]string{"a": "1", "b": "2"} {
			v, err := p.Get([]byte(k))
			require.NoError(t, err)
			assert.Equal(t, []byte(want), v)
		}
		has, err = p.Has([]byte("gone"))
		require.NoError(t, err)
		assert.False(t, has)
	})
}

func TestProvider_SnapshotIsolation(t *testing.T) {
	forEachProvider(t, func(t *testing.T, p DatabaseProvider) {
		require.NoError(t, p.Put([]byte("p:1"), []byte("before")))

		snap, err := p.Snapshot()
		require.NoError(t, err)
		defer snap.Release()

		require.NoError(t, p.Put([]byte("p:1"), []byte("after")))
		require.NoError(t, p.Put([]byte("p:2"), []byte("new")))

		v, err := snap.Get([]byte("p:1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("before"), v)

		has, err := snap.Has([]byte("p:2"))
		require.NoError(t, err)
		assert.False(t, has)

		count := 0
		require.NoError(t, snap.IteratePrefix([]byte("p:"), func(key, value []byte) bool {
			count++
			return true
		}))
		assert.Equal(t, 1, count)
	})
}

func TestDBTxManager_WithBatch(t *testing.T) {
	p, err := NewMemLevelDBProvider()
	require.NoError(t, err)
	defer p.Close()
	tm := NewDBTxManager(p)

	sentinel := fmt.Errorf("boom")
	err = tm.WithBatch(func(batch DatabaseBatch) error {
		batch.Put([]byte("k"), []byte("v"))
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	has, err := p.Has([]byte("k"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, tm.WithBatch(func(batch DatabaseBatch) error {
		batch.Put([]byte("k"), []byte("v"))
		return nil
	}))
	v, err := p.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestPrefixUpperBound(t *testing.T) {
	assert.Equal(t, []byte("wallet;"), prefixUpperBound([]byte("wallet:")))
	assert.Equal(t, []byte{0x01}, prefixUpperBound([]byte{0x00, 0xff}))
	assert.Nil(t, prefixUpperBound([]byte{0xff, 0xff}))
	assert.Nil(t, prefixUpperBound(nil))
}
