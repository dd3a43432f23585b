package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mezonai/cryptocurrency/db"
	"github.com/mezonai/cryptocurrency/jsonx"
	"github.com/mezonai/cryptocurrency/ledger"
	"github.com/mezonai/cryptocurrency/service"
	"github.com/mezonai/cryptocurrency/store"
	"github.com/mezonai/cryptocurrency/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *ledger.Ledger) {
	t.Helper()
	provider, err := db.NewMemLevelDBProvider()
	require.NoError(t, err)
	ws, err := store.NewGenericWalletStore(provider)
	require.NoError(t, err)
	t.Cleanup(ws.MustClose)

	s := NewAPIServer(service.NewWalletService(ws), service.NewHealthService(ws, nil), "")
	srv := httptest.NewServer(s.GetRouter())
	t.Cleanup(srv.Close)
	return srv, ledger.NewLedger(ws, ledger.DefaultConfig(), nil)
}

func key(b byte) types.PublicKey {
	var pk types.PublicKey
	pk[0] = b
	pk[1] = 0x42
	return pk
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var sb bytes.Buffer
	_, err = sb.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, sb.String()
}

func TestGetWallet(t *testing.T) {
	srv, l := newTestServer(t)
	require.NoError(t, l.Execute(types.NewCreateWalletOp(key(1), "Alice")))

	code, body := get(t, srv.URL+"/wallet?pub_key="+key(1).String())
	require.Equal(t, http.StatusOK, code)

	var got map[string]interface{}
	require.NoError(t, jsonx.Unmarshal([]byte(body), &got))
	assert.Equal(t, key(1).String(), got["pub_key"])
	assert.Equal(t, "Alice", got["name"])
	assert.Equal(t, float64(100), got["balance"])
}

func TestGetWallet_Errors(t *testing.T) {
	srv, _ := newTestServer(t)

	code, body := get(t, srv.URL+"/wallet?pub_key="+key(9).String())
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Wallet not found", strings.TrimSpace(body))

	code, _ = get(t, srv.URL+"/wallet")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = get(t, srv.URL+"/wallet?pub_key=0OIl")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = get(t, srv.URL+"/wallet?pub_key=3mJr7AoUXx2Wqd")
	assert.Equal(t, http.StatusBadRequest, code, "valid base58 of the wrong length")

	resp, err := http.Post(srv.URL+"/wallets", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestGetWallets_Ordered(t *testing.T) {
	srv, l := newTestServer(t)

	code, body := get(t, srv.URL+"/wallets")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[]", strings.TrimSpace(body))

	require.NoError(t, l.Execute(types.NewCreateWalletOp(key(0xb0), "Bob")))
	require.NoError(t, l.Execute(types.NewCreateWalletOp(key(0xa1), "Alice")))
	require.NoError(t, l.Execute(types.NewTransferOp(key(0xa1), key(0xb0), 30, 0)))

	code, body = get(t, srv.URL+"/wallets")
	require.Equal(t, http.StatusOK, code)

	var wallets []*types.Wallet
	require.NoError(t, jsonx.Unmarshal([]byte(body), &wallets))
	require.Len(t, wallets, 2)
	assert.Equal(t, "Alice", wallets[0].Name)
	assert.Equal(t, uint64(70), wallets[0].Balance.Uint64())
	assert.Equal(t, "Bob", wallets[1].Name)
	assert.Equal(t, uint64(130), wallets[1].Balance.Uint64())
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	code, body := get(t, srv.URL+"/health")
	require.Equal(t, http.StatusOK, code)
	var status types.HealthStatus
	require.NoError(t, jsonx.Unmarshal([]byte(body), &status))
	assert.Equal(t, "ok", status.Status)

	code, _ = get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
}

func TestShutdownWithoutStart(t *testing.T) {
	s := NewAPIServer(nil, nil, ":0")
	assert.NoError(t, s.Shutdown(context.Background()))
}
