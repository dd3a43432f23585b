package types

import (
	"crypto/ed25519"
	"errors"
	"fmt"
)

var ErrInvalidSignature = errors.New("invalid operation signature")

// SignedOperation is an operation as it crosses the network: the encoded payload plus
// the author's ed25519 signature over SigningBytes(Kind, Payload).
type SignedOperation struct {
	Kind      OperationKind
	Author    PublicKey
	Payload   []byte
	Signature []byte
}

func SignOperation(op *Operation, priv ed25519.PrivateKey) (*SignedOperation, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d", len(priv))
	}
	pub, err := PublicKeyFromBytes(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}
	if pub != op.Author {
		return nil, fmt.Errorf("private key does not belong to author %s", op.Author)
	}
	payload, err := op.Payload()
	if err != nil {
		return nil, err
	}
	return &SignedOperation{
		Kind:      op.Kind,
		Author:    op.Author,
		Payload:   payload,
		Signature: ed25519.Sign(priv, SigningBytes(op.Kind, payload)),
	}, nil
}

// Open checks the signature and decodes the payload.
func (s *SignedOperation) Open() (*Operation, error) {
	if len(s.Signature) != ed25519.SignatureSize ||
		!ed25519.Verify(ed25519.PublicKey(s.Author[:]), SigningBytes(s.Kind, s.Payload), s.Signature) {
		return nil, ErrInvalidSignature
	}
	return DecodeOperation(s.Kind, s.Author, s.Payload)
}
