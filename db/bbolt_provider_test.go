package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBboltSnapshot_ReadsAfterRelease(t *testing.T) {
	p, err := NewBboltProvider(t.TempDir())
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.Put([]byte("k"), []byte("v")))

	snap, err := p.Snapshot()
	require.NoError(t, err)
	v, err := snap.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	snap.Release()
	snap.Release()

	_, err = snap.Get([]byte("k"))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = snap.Has([]byte("k"))
	assert.ErrorIs(t, err, ErrClosed)
	err = snap.IteratePrefix([]byte("k"), func(key, value []byte) bool { return true })
	assert.ErrorIs(t, err, ErrClosed)

	// The released read tx no longer holds the file open.
	require.NoError(t, p.Put([]byte("k"), []byte("w")))
}

func TestBboltProvider_ClosedReturnsErrClosed(t *testing.T) {
	p, err := NewBboltProvider(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err = p.Snapshot()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = p.Get([]byte("k"))
	assert.ErrorIs(t, err, ErrClosed)
}
