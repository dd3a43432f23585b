package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/mezonai/cryptocurrency/types"
)

// ComputeStateHash hashes wallets in the order given, which must be ascending by
// public key. Each record is encoded as:
// len(pub_key)|pub_key|len(name)|name|balance(32B BE)
func ComputeStateHash(wallets []*types.Wallet) [32]byte {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, w := range wallets {
		binary.BigEndian.PutUint64(buf, uint64(len(w.PubKey)))
		h.Write(buf)
		h.Write(w.PubKey[:])
		binary.BigEndian.PutUint64(buf, uint64(len(w.Name)))
		h.Write(buf)
		h.Write([]byte(w.Name))
		balance := w.Clone().Balance.Bytes32()
		h.Write(balance[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// StateHash hashes the committed wallet set as of a single snapshot.
func (l *Ledger) StateHash() ([32]byte, error) {
	snap, err := l.walletStore.Snapshot()
	if err != nil {
		return [32]byte{}, err
	}
	defer snap.Release()

	wallets, err := snap.GetAll()
	if err != nil {
		return [32]byte{}, fmt.Errorf("could not list wallets for state hash: %w", err)
	}
	return ComputeStateHash(wallets), nil
}
