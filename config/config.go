package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/mezonai/cryptocurrency/logx"
	"github.com/mezonai/cryptocurrency/store"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddr  = ":8080"
	DefaultJSONRPCAddr = ":8545"

	DefaultInitBalance     uint64 = 100
	DefaultQueueSize              = 1024
	DefaultSubmitTimeoutMs        = 5000

	DefaultRateLimitMaxRequests = 100
	DefaultRateLimitWindowMs    = 1000

	DefaultRedisStream = "cryptocurrency:events"
	DefaultKafkaTopic  = "cryptocurrency-events"
)

func DefaultConfigFile() *ConfigFile {
	return &ConfigFile{
		Node: NodeConfig{
			ListenAddr:  DefaultListenAddr,
			JSONRPCAddr: DefaultJSONRPCAddr,
		},
		Store: store.StoreConfig{Type: store.MemoryStoreType},
		Events: EventsConfig{
			Sink:        EventSinkNone,
			RedisStream: DefaultRedisStream,
			KafkaTopic:  DefaultKafkaTopic,
		},
	}
}

// LoadNodeConfig reads node.yml. Keys missing from the file keep their defaults.
func LoadNodeConfig(path string) (*ConfigFile, error) {
	logx.Info("CONFIG", "Loading node config from", path)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open node config: %w", err)
	}
	defer file.Close()

	cfg := DefaultConfigFile()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode node config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ConfigFile) Validate() error {
	if c.Node.ListenAddr == "" {
		return fmt.Errorf("node.listen_addr cannot be empty")
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	switch c.Events.Sink {
	case "", EventSinkNone:
	case EventSinkRedis:
		if c.Events.RedisAddr == "" {
			return fmt.Errorf("events.redis_addr is required for the redis sink")
		}
	case EventSinkKafka:
		if len(c.Events.KafkaBrokers) == 0 {
			return fmt.Errorf("events.kafka_brokers is required for the kafka sink")
		}
	default:
		return fmt.Errorf("unsupported event sink: %s", c.Events.Sink)
	}
	return nil
}

// LoadLedgerConfig reads the [ledger] section of an .ini file
func LoadLedgerConfig(path string) (*LedgerConfig, error) {
	ledgerCfg := &LedgerConfig{InitBalance: DefaultInitBalance}
	if err := mapSection(path, "ledger", ledgerCfg); err != nil {
		return nil, err
	}
	return ledgerCfg, nil
}

// LoadSequencerConfig reads the [sequencer] section of an .ini file
func LoadSequencerConfig(path string) (*SequencerConfig, error) {
	seqCfg := &SequencerConfig{
		QueueSize:       DefaultQueueSize,
		SubmitTimeoutMs: DefaultSubmitTimeoutMs,
	}
	if err := mapSection(path, "sequencer", seqCfg); err != nil {
		return nil, err
	}
	if seqCfg.QueueSize <= 0 {
		return nil, fmt.Errorf("sequencer.queue_size must be positive, got %d", seqCfg.QueueSize)
	}
	if seqCfg.SubmitTimeoutMs < 0 {
		return nil, fmt.Errorf("sequencer.submit_timeout_ms cannot be negative")
	}
	return seqCfg, nil
}

// LoadRateLimitConfig reads the [ratelimit] section of an .ini file
func LoadRateLimitConfig(path string) (*RateLimitConfig, error) {
	rlCfg := &RateLimitConfig{
		IPMaxRequests:     DefaultRateLimitMaxRequests,
		WalletMaxRequests: DefaultRateLimitMaxRequests,
		WindowMs:          DefaultRateLimitWindowMs,
	}
	if err := mapSection(path, "ratelimit", rlCfg); err != nil {
		return nil, err
	}
	if rlCfg.WindowMs <= 0 {
		return nil, fmt.Errorf("ratelimit.window_ms must be positive, got %d", rlCfg.WindowMs)
	}
	return rlCfg, nil
}

func mapSection(path, section string, v interface{}) error {
	cfg, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	if err := cfg.Section(section).MapTo(v); err != nil {
		return fmt.Errorf("failed to map [%s] section: %w", section, err)
	}
	return nil
}

// LoadEd25519PrivKey loads an Ed25519 private key from a hex file holding either the
// 32-byte seed or the full 64-byte key.
func LoadEd25519PrivKey(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseEd25519PrivKey(strings.TrimSpace(string(data)))
}

func ParseEd25519PrivKey(hexKey string) (ed25519.PrivateKey, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("private key is not valid hex: %w", err)
	}
	switch len(key) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(key), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(key), nil
	default:
		return nil, fmt.Errorf("invalid private key length: %d bytes", len(key))
	}
}
