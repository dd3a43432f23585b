package config

import "github.com/mezonai/cryptocurrency/store"

type EventSinkType string

const (
	EventSinkNone  EventSinkType = "none"
	EventSinkRedis EventSinkType = "redis"
	EventSinkKafka EventSinkType = "kafka"
)

// NodeConfig holds the listen addresses of the node
type NodeConfig struct {
	ListenAddr  string `yaml:"listen_addr"`
	JSONRPCAddr string `yaml:"jsonrpc_addr"`
}

// EventsConfig selects where committed operations are shipped besides the in-process bus.
type EventsConfig struct {
	Sink         EventSinkType `yaml:"sink"`
	RedisAddr    string        `yaml:"redis_addr"`
	RedisStream  string        `yaml:"redis_stream"`
	KafkaBrokers []string      `yaml:"kafka_brokers"`
	KafkaTopic   string        `yaml:"kafka_topic"`
}

// ConfigFile is the top-level structure for node.yml
type ConfigFile struct {
	Node   NodeConfig        `yaml:"node"`
	Store  store.StoreConfig `yaml:"store"`
	Events EventsConfig      `yaml:"events"`
}

type LedgerConfig struct {
	InitBalance uint64 `ini:"init_balance"`
}

type SequencerConfig struct {
	QueueSize       int `ini:"queue_size"`
	SubmitTimeoutMs int `ini:"submit_timeout_ms"`
}

// RateLimitConfig bounds JSON-RPC traffic. A zero maximum disables that limiter.
type RateLimitConfig struct {
	IPMaxRequests     int `ini:"ip_max_requests"`
	WalletMaxRequests int `ini:"wallet_max_requests"`
	WindowMs          int `ini:"window_ms"`
}
