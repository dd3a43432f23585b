package snapshot

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mezonai/cryptocurrency/jsonx"
	"github.com/mezonai/cryptocurrency/ledger"
	"github.com/mezonai/cryptocurrency/logx"
	"github.com/mezonai/cryptocurrency/store"
	"github.com/mezonai/cryptocurrency/types"
)

const (
	DefaultDirectory = "./snapshots"
	FileName         = "snapshot-latest.json"
)

type SnapshotMeta struct {
	StateHash   string    `json:"state_hash"`
	WalletCount int       `json:"wallet_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// SnapshotFile is the portable dump of a wallet set, wallets in ascending key order.
type SnapshotFile struct {
	Meta    SnapshotMeta    `json:"meta"`
	Wallets []*types.Wallet `json:"wallets"`
}

func GetSnapshotPath(dir string) string {
	return filepath.Join(dir, FileName)
}

// Capture reads every wallet from one consistent view of the store.
func Capture(ws store.WalletStore) (*SnapshotFile, error) {
	snap, err := ws.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("open store snapshot: %w", err)
	}
	defer snap.Release()

	wallets, err := snap.GetAll()
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	hash := ledger.ComputeStateHash(wallets)
	return &SnapshotFile{
		Meta: SnapshotMeta{
			StateHash:   hex.EncodeToString(hash[:]),
			WalletCount: len(wallets),
			CreatedAt:   time.Now().UTC(),
		},
		Wallets: wallets,
	}, nil
}

// WriteSnapshot captures ws into dir/snapshot-latest.json and removes older dumps.
func WriteSnapshot(dir string, ws store.WalletStore) (string, error) {
	file, err := Capture(ws)
	if err != nil {
		return "", err
	}
	data, err := jsonx.Marshal(file)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir snapshot dir: %w", err)
	}

	path := GetSnapshotPath(dir)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("install snapshot file: %w", err)
	}

	if err := cleanupOldSnapshots(dir, path); err != nil {
		logx.Error("SNAPSHOT", "Failed to cleanup old snapshots:", err)
	}
	logx.Info("SNAPSHOT", fmt.Sprintf("Snapshot written | path=%s wallets=%d state_hash=%s", path, file.Meta.WalletCount, file.Meta.StateHash))
	return path, nil
}

// ReadSnapshot loads a snapshot file and checks it against its recorded state hash.
func ReadSnapshot(path string) (*SnapshotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s SnapshotFile
	if err := jsonx.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	for i, w := range s.Wallets {
		if w == nil {
			return nil, fmt.Errorf("snapshot wallet %d is empty", i)
		}
	}
	hash := ledger.ComputeStateHash(s.Wallets)
	if got := hex.EncodeToString(hash[:]); got != s.Meta.StateHash {
		return nil, fmt.Errorf("snapshot state hash mismatch: recorded %s, computed %s", s.Meta.StateHash, got)
	}
	return &s, nil
}

// Restore loads the wallets of s into an empty store in one atomic unit.
func Restore(ws store.WalletStore, s *SnapshotFile) error {
	count, err := ws.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("refusing to restore into a store holding %d wallets", count)
	}

	seen := make(map[types.PublicKey]struct{}, len(s.Wallets))
	return ws.WithFork(func(fork *store.Fork) error {
		for _, w := range s.Wallets {
			if _, dup := seen[w.PubKey]; dup {
				return fmt.Errorf("duplicate wallet %s in snapshot", w.PubKey)
			}
			seen[w.PubKey] = struct{}{}
			if err := fork.Put(w); err != nil {
				return err
			}
		}
		return nil
	})
}

func cleanupOldSnapshots(dir, latestPath string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read snapshot dir: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		filePath := filepath.Join(dir, file.Name())
		if filePath != latestPath {
			if err := os.Remove(filePath); err != nil {
				logx.Error("SNAPSHOT", "Failed to remove old snapshot:", filePath, err)
			}
		}
	}
	return nil
}
