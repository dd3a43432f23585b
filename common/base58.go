package common

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// EncodeBytesToBase58 encodes bytes directly to base58
func EncodeBytesToBase58(bytes []byte) string {
	return base58.Encode(bytes)
}

// DecodeBase58ToBytes decodes base58 string to bytes
func DecodeBase58ToBytes(base58Str string) ([]byte, error) {
	if base58Str == "" {
		return nil, fmt.Errorf("failed to decode base58 string: empty input")
	}
	bytes, err := base58.Decode(base58Str)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base58 string: %w", err)
	}
	return bytes, nil
}

// DecodeBase58Fixed decodes a base58 string and checks the decoded length.
func DecodeBase58Fixed(base58Str string, size int) ([]byte, error) {
	bytes, err := DecodeBase58ToBytes(base58Str)
	if err != nil {
		return nil, err
	}
	if len(bytes) != size {
		return nil, fmt.Errorf("invalid decoded length: expected %d bytes, got %d", size, len(bytes))
	}
	return bytes, nil
}
