package service

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/mezonai/cryptocurrency/errors"
	"github.com/mezonai/cryptocurrency/ledger"
	"github.com/mezonai/cryptocurrency/logx"
	"github.com/mezonai/cryptocurrency/store"
	"github.com/mezonai/cryptocurrency/types"
)

// WalletServiceImpl answers read queries from committed snapshots. It never takes the
// executor lock.
type WalletServiceImpl struct {
	walletStore store.WalletStore
}

func NewWalletService(walletStore store.WalletStore) *WalletServiceImpl {
	return &WalletServiceImpl{walletStore: walletStore}
}

// GetWallet returns errors.ErrWalletNotFound when no wallet has pubKey.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, pubKey types.PublicKey) (*types.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := s.walletStore.Snapshot()
	if err != nil {
		logx.Error("WALLET_SERVICE", "Failed to take snapshot:", err)
		return nil, err
	}
	defer snap.Release()

	w, err := snap.GetByPubKey(pubKey)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, errors.ErrWalletNotFound
	}
	return w, nil
}

func (s *WalletServiceImpl) ListWallets(ctx context.Context) ([]*types.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := s.walletStore.Snapshot()
	if err != nil {
		logx.Error("WALLET_SERVICE", "Failed to take snapshot:", err)
		return nil, err
	}
	defer snap.Release()

	return snap.GetAll()
}

func (s *WalletServiceImpl) StateHash(ctx context.Context) (string, error) {
	wallets, err := s.ListWallets(ctx)
	if err != nil {
		return "", fmt.Errorf("could not list wallets: %w", err)
	}
	h := ledger.ComputeStateHash(wallets)
	return hex.EncodeToString(h[:]), nil
}
