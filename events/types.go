package events

import (
	"time"

	"github.com/mezonai/cryptocurrency/errors"
	"github.com/mezonai/cryptocurrency/types"
)

// EventType is an enum-like string type for ledger events
type EventType string

const (
	EventWalletCreated     EventType = "WalletCreated"
	EventTransferCommitted EventType = "TransferCommitted"
	EventOperationRejected EventType = "OperationRejected"
)

// LedgerEvent represents anything the executor reports after an operation settles.
type LedgerEvent interface {
	Type() EventType
	Timestamp() time.Time
	OpHash() string
}

// WalletEvent reports a committed operation together with the wallets it wrote.
type WalletEvent struct {
	EventType EventType       `json:"type"`
	Seq       uint64          `json:"seq"`
	Hash      string          `json:"op_hash"`
	Author    types.PublicKey `json:"author"`
	Wallets   []*types.Wallet `json:"wallets"`
	Amount    uint64          `json:"amount,omitempty"`
	Seed      uint64          `json:"seed,omitempty"`
	At        time.Time       `json:"timestamp"`
}

func NewWalletCreated(seq uint64, opHash string, w *types.Wallet) *WalletEvent {
	return &WalletEvent{
		EventType: EventWalletCreated,
		Seq:       seq,
		Hash:      opHash,
		Author:    w.PubKey,
		Wallets:   []*types.Wallet{w},
		At:        time.Now().UTC(),
	}
}

func NewTransferCommitted(seq uint64, opHash string, author types.PublicKey, amount, seed uint64, changed []*types.Wallet) *WalletEvent {
	return &WalletEvent{
		EventType: EventTransferCommitted,
		Seq:       seq,
		Hash:      opHash,
		Author:    author,
		Wallets:   changed,
		Amount:    amount,
		Seed:      seed,
		At:        time.Now().UTC(),
	}
}

func (e *WalletEvent) Type() EventType {
	return e.EventType
}

func (e *WalletEvent) Timestamp() time.Time {
	return e.At
}

func (e *WalletEvent) OpHash() string {
	return e.Hash
}

// OperationRejected reports an operation the executor refused.
type OperationRejected struct {
	Seq    uint64           `json:"seq"`
	Hash   string           `json:"op_hash"`
	Author types.PublicKey  `json:"author"`
	Kind   string           `json:"kind"`
	Code   errors.ErrorCode `json:"code"`
	Reason string           `json:"reason"`
	At     time.Time        `json:"timestamp"`
}

func NewOperationRejected(seq uint64, op *types.Operation, execErr *errors.ExecutionError) *OperationRejected {
	return &OperationRejected{
		Seq:    seq,
		Hash:   op.Hash(),
		Author: op.Author,
		Kind:   op.Kind.String(),
		Code:   execErr.Code,
		Reason: execErr.Message,
		At:     time.Now().UTC(),
	}
}

func (e *OperationRejected) Type() EventType {
	return EventOperationRejected
}

func (e *OperationRejected) Timestamp() time.Time {
	return e.At
}

func (e *OperationRejected) OpHash() string {
	return e.Hash
}
