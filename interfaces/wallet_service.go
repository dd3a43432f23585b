package interfaces

import (
	"context"

	"github.com/mezonai/cryptocurrency/types"
)

type WalletService interface {
	GetWallet(ctx context.Context, pubKey types.PublicKey) (*types.Wallet, error)
	ListWallets(ctx context.Context) ([]*types.Wallet, error)
	StateHash(ctx context.Context) (string, error)
}
