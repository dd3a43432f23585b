package types

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mezonai/cryptocurrency/common"
)

// PublicKeySize is the length of a wallet identifier in bytes.
const PublicKeySize = ed25519.PublicKeySize

// PublicKey identifies a wallet. Its text form is base58.
type PublicKey [PublicKeySize]byte

func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var pk PublicKey
	if len(b) != PublicKeySize {
		return pk, fmt.Errorf("invalid public key length: expected %d bytes, got %d", PublicKeySize, len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

func PublicKeyFromString(s string) (PublicKey, error) {
	b, err := common.DecodeBase58Fixed(s, PublicKeySize)
	if err != nil {
		return PublicKey{}, fmt.Errorf("invalid public key %q: %w", s, err)
	}
	return PublicKeyFromBytes(b)
}

func (pk PublicKey) String() string {
	return common.EncodeBytesToBase58(pk[:])
}

func (pk PublicKey) Bytes() []byte {
	out := make([]byte, PublicKeySize)
	copy(out, pk[:])
	return out
}

// Compare orders keys by their raw bytes.
func (pk PublicKey) Compare(other PublicKey) int {
	return bytes.Compare(pk[:], other[:])
}

func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

func (pk *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := PublicKeyFromString(string(text))
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}
