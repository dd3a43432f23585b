package types

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// OperationKind is the stable numeric tag of an operation on the wire.
type OperationKind uint16

const (
	OpCreateWallet OperationKind = 0
	OpTransfer     OperationKind = 1
)

func (k OperationKind) String() string {
	switch k {
	case OpCreateWallet:
		return "create_wallet"
	case OpTransfer:
		return "transfer"
	default:
		return fmt.Sprintf("unknown(%d)", uint16(k))
	}
}

// TxCreateWallet creates a wallet owned by the operation author.
type TxCreateWallet struct {
	Name string `json:"name"`
}

// TxTransfer moves Amount from the author to To. Seed only disambiguates otherwise
// identical transfers and is never used for deduplication.
type TxTransfer struct {
	To     PublicKey `json:"to"`
	Amount uint64    `json:"amount"`
	Seed   uint64    `json:"seed"`
}

// Operation is an authenticated, ordered request handed to the executor. Exactly one
// of CreateWallet or Transfer is set, matching Kind.
type Operation struct {
	Kind         OperationKind
	Author       PublicKey
	CreateWallet *TxCreateWallet
	Transfer     *TxTransfer
}

func NewCreateWalletOp(author PublicKey, name string) *Operation {
	return &Operation{
		Kind:         OpCreateWallet,
		Author:       author,
		CreateWallet: &TxCreateWallet{Name: name},
	}
}

func NewTransferOp(author, to PublicKey, amount, seed uint64) *Operation {
	return &Operation{
		Kind:     OpTransfer,
		Author:   author,
		Transfer: &TxTransfer{To: to, Amount: amount, Seed: seed},
	}
}

// Payload encodes the kind-specific body of the operation.
func (op *Operation) Payload() ([]byte, error) {
	switch op.Kind {
	case OpCreateWallet:
		if op.CreateWallet == nil {
			return nil, fmt.Errorf("%w: missing create_wallet body", ErrMalformedPayload)
		}
		return EncodeCreateWallet(op.CreateWallet), nil
	case OpTransfer:
		if op.Transfer == nil {
			return nil, fmt.Errorf("%w: missing transfer body", ErrMalformedPayload)
		}
		return EncodeTransfer(op.Transfer), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, op.Kind)
	}
}

// Hash identifies an operation in logs, receipts and events.
func (op *Operation) Hash() string {
	payload, err := op.Payload()
	if err != nil {
		return ""
	}
	h := sha256.New()
	h.Write(SigningBytes(op.Kind, payload))
	h.Write(op.Author[:])
	return hex.EncodeToString(h.Sum(nil))
}

// SigningBytes is the message an author signs: 2-byte big-endian kind followed by the payload.
func SigningBytes(kind OperationKind, payload []byte) []byte {
	out := make([]byte, 2+len(payload))
	binary.BigEndian.PutUint16(out, uint16(kind))
	copy(out[2:], payload)
	return out
}

// DecodeOperation rebuilds an operation from its wire parts.
func DecodeOperation(kind OperationKind, author PublicKey, payload []byte) (*Operation, error) {
	switch kind {
	case OpCreateWallet:
		tx, err := DecodeCreateWallet(payload)
		if err != nil {
			return nil, err
		}
		return &Operation{Kind: kind, Author: author, CreateWallet: tx}, nil
	case OpTransfer:
		tx, err := DecodeTransfer(payload)
		if err != nil {
			return nil, err
		}
		return &Operation{Kind: kind, Author: author, Transfer: tx}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, kind)
	}
}
