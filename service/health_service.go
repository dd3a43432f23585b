package service

import (
	"context"
	"time"

	"github.com/mezonai/cryptocurrency/logx"
	"github.com/mezonai/cryptocurrency/store"
	"github.com/mezonai/cryptocurrency/types"
)

const Version = "1.0.0"

// QueueStats is implemented by the sequencer.
type QueueStats interface {
	LastSeq() uint64
	Pending() int
}

type HealthServiceImpl struct {
	walletStore store.WalletStore
	queue       QueueStats
	startedAt   time.Time
}

// NewHealthService creates a health checker. queue may be nil.
func NewHealthService(walletStore store.WalletStore, queue QueueStats) *HealthServiceImpl {
	return &HealthServiceImpl{walletStore: walletStore, queue: queue, startedAt: time.Now()}
}

func (hs *HealthServiceImpl) Check(ctx context.Context) (*types.HealthStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	resp := &types.HealthStatus{
		Status:        "ok",
		Timestamp:     now.UTC(),
		Uptime:        now.Sub(hs.startedAt).Truncate(time.Second).String(),
		Version:       Version,
		StoreReadable: true,
	}

	count, err := hs.walletStore.Count()
	if err != nil {
		logx.Warn("HEALTH", "Wallet store not readable:", err)
		resp.Status = "degraded"
		resp.StoreReadable = false
	}
	resp.Wallets = count

	if hs.queue != nil {
		resp.LastSeq = hs.queue.LastSeq()
		resp.PendingOps = hs.queue.Pending()
	}
	return resp, nil
}
