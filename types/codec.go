package types

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/holiman/uint256"
	"google.golang.org/protobuf/encoding/protowire"
)

var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnknownOperation = errors.New("unknown operation kind")
)

// Field numbers. They match the protobuf messages the payloads are compatible with:
//
//	message TxCreateWallet { string name = 1; }
//	message TxTransfer     { bytes to = 1; uint64 amount = 2; uint64 seed = 3; }
//	message Wallet         { bytes pub_key = 1; string name = 2; bytes balance = 3; }
const (
	fieldCreateWalletName protowire.Number = 1

	fieldTransferTo     protowire.Number = 1
	fieldTransferAmount protowire.Number = 2
	fieldTransferSeed   protowire.Number = 3

	fieldWalletPubKey  protowire.Number = 1
	fieldWalletName    protowire.Number = 2
	fieldWalletBalance protowire.Number = 3
)

func EncodeCreateWallet(tx *TxCreateWallet) []byte {
	var b []byte
	if tx.Name != "" {
		b = protowire.AppendTag(b, fieldCreateWalletName, protowire.BytesType)
		b = protowire.AppendString(b, tx.Name)
	}
	return b
}

func DecodeCreateWallet(b []byte) (*TxCreateWallet, error) {
	tx := &TxCreateWallet{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != fieldCreateWalletName {
			return skipField(num, typ, b)
		}
		s, n, err := consumeString(typ, b)
		if err != nil {
			return 0, fmt.Errorf("name: %w", err)
		}
		tx.Name = s
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func EncodeTransfer(tx *TxTransfer) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldTransferTo, protowire.BytesType)
	b = protowire.AppendBytes(b, tx.To[:])
	if tx.Amount != 0 {
		b = protowire.AppendTag(b, fieldTransferAmount, protowire.VarintType)
		b = protowire.AppendVarint(b, tx.Amount)
	}
	if tx.Seed != 0 {
		b = protowire.AppendTag(b, fieldTransferSeed, protowire.VarintType)
		b = protowire.AppendVarint(b, tx.Seed)
	}
	return b
}

func DecodeTransfer(b []byte) (*TxTransfer, error) {
	tx := &TxTransfer{}
	hasTo := false
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldTransferTo:
			raw, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, fmt.Errorf("to: %w", err)
			}
			to, err := PublicKeyFromBytes(raw)
			if err != nil {
				return 0, fmt.Errorf("%w: to: %v", ErrMalformedPayload, err)
			}
			tx.To = to
			hasTo = true
			return n, nil
		case fieldTransferAmount:
			v, n, err := consumeVarint(typ, b)
			if err != nil {
				return 0, fmt.Errorf("amount: %w", err)
			}
			tx.Amount = v
			return n, nil
		case fieldTransferSeed:
			v, n, err := consumeVarint(typ, b)
			if err != nil {
				return 0, fmt.Errorf("seed: %w", err)
			}
			tx.Seed = v
			return n, nil
		default:
			return skipField(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}
	if !hasTo {
		return nil, fmt.Errorf("%w: transfer without receiver", ErrMalformedPayload)
	}
	return tx, nil
}

// EncodeWallet produces the persisted record of a wallet.
func EncodeWallet(w *Wallet) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldWalletPubKey, protowire.BytesType)
	b = protowire.AppendBytes(b, w.PubKey[:])
	if w.Name != "" {
		b = protowire.AppendTag(b, fieldWalletName, protowire.BytesType)
		b = protowire.AppendString(b, w.Name)
	}
	if bal := w.balance(); !bal.IsZero() {
		b = protowire.AppendTag(b, fieldWalletBalance, protowire.BytesType)
		b = protowire.AppendBytes(b, bal.Bytes())
	}
	return b
}

func DecodeWallet(b []byte) (*Wallet, error) {
	w := &Wallet{Balance: uint256.NewInt(0)}
	hasKey := false
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldWalletPubKey:
			raw, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, fmt.Errorf("pub_key: %w", err)
			}
			pk, err := PublicKeyFromBytes(raw)
			if err != nil {
				return 0, fmt.Errorf("%w: pub_key: %v", ErrMalformedPayload, err)
			}
			w.PubKey = pk
			hasKey = true
			return n, nil
		case fieldWalletName:
			s, n, err := consumeString(typ, b)
			if err != nil {
				return 0, fmt.Errorf("name: %w", err)
			}
			w.Name = s
			return n, nil
		case fieldWalletBalance:
			raw, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, fmt.Errorf("balance: %w", err)
			}
			if len(raw) > 32 {
				return 0, fmt.Errorf("%w: balance wider than 256 bits", ErrMalformedPayload)
			}
			w.Balance = new(uint256.Int).SetBytes(raw)
			return n, nil
		default:
			return skipField(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}
	if !hasKey {
		return nil, fmt.Errorf("%w: wallet without pub_key", ErrMalformedPayload)
	}
	return w, nil
}

type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func walkFields(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformedPayload, protowire.ParseError(n))
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, fmt.Errorf("%w: %v", ErrMalformedPayload, protowire.ParseError(n))
	}
	return n, nil
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, fmt.Errorf("%w: unexpected wire type %d", ErrMalformedPayload, typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedPayload, protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeString(typ protowire.Type, b []byte) (string, int, error) {
	v, n, err := consumeBytes(typ, b)
	if err != nil {
		return "", 0, err
	}
	if !utf8.Valid(v) {
		return "", 0, fmt.Errorf("%w: invalid utf-8", ErrMalformedPayload)
	}
	return string(v), n, nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, fmt.Errorf("%w: unexpected wire type %d", ErrMalformedPayload, typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, fmt.Errorf("%w: %v", ErrMalformedPayload, protowire.ParseError(n))
	}
	return v, n, nil
}
