package client

import (
	"context"

	"github.com/mezonai/cryptocurrency/types"
)

type LedgerClient interface {
	CreateWallet(ctx context.Context, name string, key []byte) (*types.Receipt, error)
	Transfer(ctx context.Context, to types.PublicKey, amount, seed uint64, key []byte) (*types.Receipt, error)
	Submit(ctx context.Context, kind types.OperationKind, op SignedOp) (*types.Receipt, error)
	GetWallet(ctx context.Context, pubKey types.PublicKey) (*types.Wallet, error)
	GetWallets(ctx context.Context) ([]*types.Wallet, error)
	StateHash(ctx context.Context) (string, error)
	CheckHealth(ctx context.Context) (*types.HealthStatus, error)
	Close() error
}
