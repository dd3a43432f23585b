package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/mezonai/cryptocurrency/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadNodeConfig(t *testing.T) {
	path := writeFile(t, "node.yml", `
node:
  listen_addr: ":9000"
store:
  type: pebble
  directory: /tmp/wallets
events:
  sink: kafka
  kafka_brokers: ["b1:9092", "b2:9092"]
`)
	cfg, err := LoadNodeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Node.ListenAddr)
	assert.Equal(t, DefaultJSONRPCAddr, cfg.Node.JSONRPCAddr)
	assert.Equal(t, store.PebbleStoreType, cfg.Store.Type)
	assert.Equal(t, "/tmp/wallets", cfg.Store.Directory)
	assert.Equal(t, EventSinkKafka, cfg.Events.Sink)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, DefaultKafkaTopic, cfg.Events.KafkaTopic)
}

func TestLoadNodeConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "node:\n  listen_adr: \":1\"\n"},
		{"bad store type", "store:\n  type: rocksdb\n  directory: x\n"},
		{"leveldb without directory", "store:\n  type: leveldb\n"},
		{"redis without address", "events:\n  sink: redis\n"},
		{"unknown sink", "events:\n  sink: nats\n"},
		{"not yaml", "node: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadNodeConfig(writeFile(t, "node.yml", tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadNodeConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoadIniConfigs(t *testing.T) {
	path := writeFile(t, "config.ini", "[ledger]\ninit_balance = 250\n\n[sequencer]\nqueue_size = 16\n")

	ledgerCfg, err := LoadLedgerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(250), ledgerCfg.InitBalance)

	seqCfg, err := LoadSequencerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 16, seqCfg.QueueSize)
	assert.Equal(t, DefaultSubmitTimeoutMs, seqCfg.SubmitTimeoutMs)
}

func TestLoadIniConfigs_Defaults(t *testing.T) {
	path := writeFile(t, "config.ini", "[other]\nkey = value\n")

	ledgerCfg, err := LoadLedgerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultInitBalance, ledgerCfg.InitBalance)

	seqCfg, err := LoadSequencerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultQueueSize, seqCfg.QueueSize)

	bad := writeFile(t, "bad.ini", "[sequencer]\nqueue_size = 0\n")
	_, err = LoadSequencerConfig(bad)
	assert.Error(t, err)
}

func TestSampleConfigFilesLoad(t *testing.T) {
	cfg, err := LoadNodeConfig("node.yml")
	require.NoError(t, err)
	assert.Equal(t, store.LevelDBStoreType, cfg.Store.Type)

	ledgerCfg, err := LoadLedgerConfig("config.ini")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), ledgerCfg.InitBalance)
}

func TestParseEd25519PrivKey(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	fromSeed, err := ParseEd25519PrivKey(hex.EncodeToString(seed))
	require.NoError(t, err)

	full, err := ParseEd25519PrivKey(hex.EncodeToString(fromSeed))
	require.NoError(t, err)
	assert.Equal(t, fromSeed, full)

	_, err = ParseEd25519PrivKey("zz")
	assert.Error(t, err)
	_, err = ParseEd25519PrivKey("abcd")
	assert.Error(t, err)

	path := writeFile(t, "key.hex", hex.EncodeToString(seed)+"\n")
	loaded, err := LoadEd25519PrivKey(path)
	require.NoError(t, err)
	assert.Equal(t, fromSeed, loaded)
}

func TestLoadRateLimitConfig(t *testing.T) {
	cfg, err := LoadRateLimitConfig(writeFile(t, "config.ini", "[ratelimit]\nwallet_max_requests = 0\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRateLimitMaxRequests, cfg.IPMaxRequests)
	assert.Equal(t, 0, cfg.WalletMaxRequests)
	assert.Equal(t, DefaultRateLimitWindowMs, cfg.WindowMs)

	_, err = LoadRateLimitConfig(writeFile(t, "config.ini", "[ratelimit]\nwindow_ms = 0\n"))
	assert.Error(t, err)
}
