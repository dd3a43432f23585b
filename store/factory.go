package store

import (
	"fmt"

	"github.com/mezonai/cryptocurrency/db"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	LevelDBStoreType  StoreType = "leveldb"
	PebbleStoreType   StoreType = "pebble"
	PostgresStoreType StoreType = "postgres"
	BboltStoreType    StoreType = "bbolt"

	// MemoryStoreType keeps everything in an in-memory LevelDB. Nothing survives a restart.
	MemoryStoreType StoreType = "memory"
)

// StoreConfig holds configuration for creating store instances
type StoreConfig struct {
	Type StoreType `json:"type" yaml:"type"`

	// Directory is the database directory path (for file-based databases)
	Directory string `json:"directory" yaml:"directory"`

	// DSN is the connection string for Postgres
	DSN string `json:"dsn" yaml:"dsn"`

	// Table overrides the Postgres key-value table name
	Table string `json:"table" yaml:"table"`
}

// Validate validates the store configuration
func (sc *StoreConfig) Validate() error {
	switch sc.Type {
	case "":
		return fmt.Errorf("store type cannot be empty")
	case LevelDBStoreType, PebbleStoreType, BboltStoreType:
		if sc.Directory == "" {
			return fmt.Errorf("directory cannot be empty for %s store", sc.Type)
		}
	case PostgresStoreType:
		if sc.DSN == "" {
			return fmt.Errorf("dsn cannot be empty for postgres store")
		}
	case MemoryStoreType:
	default:
		return fmt.Errorf("unsupported store type: %s", sc.Type)
	}
	return nil
}

// StoreFactory take responsibility to create store instances
type StoreFactory struct{}

func NewStoreFactory() *StoreFactory {
	return &StoreFactory{}
}

func (sf *StoreFactory) CreateStoreWithProvider(config *StoreConfig) (WalletStore, error) {
	provider, err := sf.CreateProvider(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	walletStore, err := NewGenericWalletStore(provider)
	if err != nil {
		provider.Close()
		return nil, fmt.Errorf("failed to create wallet store: %w", err)
	}
	return walletStore, nil
}

// CreateProvider creates a database provider based on the configuration
func (sf *StoreFactory) CreateProvider(config *StoreConfig) (db.DatabaseProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch config.Type {
	case LevelDBStoreType:
		return db.NewLevelDBProvider(config.Directory)
	case PebbleStoreType:
		return db.NewPebbleProvider(config.Directory)
	case BboltStoreType:
		return db.NewBboltProvider(config.Directory)
	case PostgresStoreType:
		return db.NewPostgresProvider(config.DSN, config.Table)
	case MemoryStoreType:
		return db.NewMemLevelDBProvider()
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

var globalFactory = NewStoreFactory()

// CreateStore creates a wallet store using the global factory
func CreateStore(config *StoreConfig) (WalletStore, error) {
	return globalFactory.CreateStoreWithProvider(config)
}
