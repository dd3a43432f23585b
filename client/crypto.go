package client

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/mezonai/cryptocurrency/common"
	"github.com/mezonai/cryptocurrency/types"
)

var ErrUnsupportedKey = errors.New("crypto: unsupported private key length")

// GenerateKey creates a fresh wallet key and returns its public key and 32-byte seed.
func GenerateKey() (types.PublicKey, []byte, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return types.PublicKey{}, nil, err
	}
	pk, err := types.PublicKeyFromBytes(pub)
	if err != nil {
		return types.PublicKey{}, nil, err
	}
	return pk, priv.Seed(), nil
}

// PrivateKey accepts either a 32-byte seed or a full 64-byte ed25519 key.
func PrivateKey(key []byte) (ed25519.PrivateKey, error) {
	switch len(key) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(key), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(key), nil
	default:
		return nil, ErrUnsupportedKey
	}
}

func PublicKeyOf(key []byte) (types.PublicKey, error) {
	priv, err := PrivateKey(key)
	if err != nil {
		return types.PublicKey{}, err
	}
	return types.PublicKeyFromBytes(priv.Public().(ed25519.PublicKey))
}

// SignOp signs op and renders it in its wire form.
func SignOp(op *types.Operation, key []byte) (SignedOp, error) {
	priv, err := PrivateKey(key)
	if err != nil {
		return SignedOp{}, err
	}
	signed, err := types.SignOperation(op, priv)
	if err != nil {
		return SignedOp{}, err
	}
	return SignedOp{
		Author:    signed.Author.String(),
		Payload:   hex.EncodeToString(signed.Payload),
		Signature: common.EncodeBytesToBase58(signed.Signature),
	}, nil
}

func Verify(kind types.OperationKind, op SignedOp) bool {
	author, err := types.PublicKeyFromString(op.Author)
	if err != nil {
		return false
	}
	payload, err := hex.DecodeString(op.Payload)
	if err != nil {
		return false
	}
	signature, err := common.DecodeBase58ToBytes(op.Signature)
	if err != nil {
		return false
	}
	_, err = (&types.SignedOperation{Kind: kind, Author: author, Payload: payload, Signature: signature}).Open()
	return err == nil
}
