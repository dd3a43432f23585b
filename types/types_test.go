package types

import (
	"crypto/ed25519"
	"testing"

	"github.com/holiman/uint256"
	"github.com/mezonai/cryptocurrency/jsonx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func testKey(t *testing.T, seedByte byte) (PublicKey, ed25519.PrivateKey) {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = seedByte
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pk, err := PublicKeyFromBytes(priv.Public().(ed25519.PublicKey))
	require.NoError(t, err)
	return pk, priv
}

func TestPublicKey_TextRoundTrip(t *testing.T) {
	pk, _ := testKey(t, 1)
	parsed, err := PublicKeyFromString(pk.String())
	require.NoError(t, err)
	assert.Equal(t, pk, parsed)

	_, err = PublicKeyFromString("")
	assert.Error(t, err)
	_, err = PublicKeyFromString("0OIl")
	assert.Error(t, err)
	_, err = PublicKeyFromBytes(make([]byte, 31))
	assert.Error(t, err)
}

func TestPublicKey_Compare(t *testing.T) {
	var a, b PublicKey
	a[0], b[0] = 1, 2
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, PublicKey{}.IsZero())
	assert.False(t, a.IsZero())
}

func TestWallet_JSON(t *testing.T) {
	pk, _ := testKey(t, 2)
	big, err := uint256.FromDecimal("340282366920938463463374607431768211456")
	require.NoError(t, err)
	w := NewWallet(pk, "Alice", big)

	out, err := jsonx.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pub_key":"`+pk.String()+`","name":"Alice","balance":340282366920938463463374607431768211456}`, string(out))

	var back Wallet
	require.NoError(t, jsonx.Unmarshal(out, &back))
	assert.Equal(t, w.PubKey, back.PubKey)
	assert.True(t, w.Balance.Eq(back.Balance))

	assert.Error(t, jsonx.Unmarshal([]byte(`{"balance":-1}`), &back))
}

func TestWallet_ArithmeticDoesNotAlias(t *testing.T) {
	initial := uint256.NewInt(100)
	w := NewWallet(PublicKey{}, "", initial)
	w.Decrease(uint256.NewInt(30))
	assert.Equal(t, uint64(100), initial.Uint64())
	assert.Equal(t, uint64(70), w.Balance.Uint64())

	clone := w.Clone()
	clone.Increase(uint256.NewInt(5))
	assert.Equal(t, uint64(70), w.Balance.Uint64())
	assert.True(t, w.HasAtLeast(uint256.NewInt(70)))
	assert.False(t, w.HasAtLeast(uint256.NewInt(71)))
}

func TestCodec_Operations(t *testing.T) {
	author, _ := testKey(t, 3)
	to, _ := testKey(t, 4)

	for _, op := range []*Operation{
		NewCreateWalletOp(author, "Alice"),
		NewCreateWalletOp(author, ""),
		NewTransferOp(author, to, 30, 7),
		NewTransferOp(author, to, 0, 0),
	} {
		payload, err := op.Payload()
		require.NoError(t, err)
		decoded, err := DecodeOperation(op.Kind, op.Author, payload)
		require.NoError(t, err)
		assert.Equal(t, op, decoded)
		assert.Equal(t, op.Hash(), decoded.Hash())
	}
}

func TestCodec_Malformed(t *testing.T) {
	author, _ := testKey(t, 3)

	_, err := DecodeOperation(OpTransfer, author, nil)
	assert.ErrorIs(t, err, ErrMalformedPayload, "transfer needs a receiver")

	short := protowire.AppendTag(nil, fieldTransferTo, protowire.BytesType)
	short = protowire.AppendBytes(short, make([]byte, 5))
	_, err = DecodeOperation(OpTransfer, author, short)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	wrongType := protowire.AppendTag(nil, fieldCreateWalletName, protowire.VarintType)
	wrongType = protowire.AppendVarint(wrongType, 1)
	_, err = DecodeOperation(OpCreateWallet, author, wrongType)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	badUTF8 := protowire.AppendTag(nil, fieldCreateWalletName, protowire.BytesType)
	badUTF8 = protowire.AppendBytes(badUTF8, []byte{0xff, 0xfe})
	_, err = DecodeOperation(OpCreateWallet, author, badUTF8)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = DecodeOperation(OpCreateWallet, author, []byte{0x0a, 0x05, 'a'})
	assert.ErrorIs(t, err, ErrMalformedPayload, "truncated length-delimited field")

	_, err = DecodeOperation(OperationKind(9), author, nil)
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestCodec_SkipsUnknownFields(t *testing.T) {
	author, _ := testKey(t, 3)
	payload := EncodeCreateWallet(&TxCreateWallet{Name: "Bob"})
	payload = protowire.AppendTag(payload, 99, protowire.VarintType)
	payload = protowire.AppendVarint(payload, 12345)

	op, err := DecodeOperation(OpCreateWallet, author, payload)
	require.NoError(t, err)
	assert.Equal(t, "Bob", op.CreateWallet.Name)
}

func TestCodec_WalletRecord(t *testing.T) {
	pk, _ := testKey(t, 5)
	for _, balance := range []*uint256.Int{uint256.NewInt(0), uint256.NewInt(100), new(uint256.Int).SetAllOne()} {
		w := NewWallet(pk, "Carol", balance)
		decoded, err := DecodeWallet(EncodeWallet(w))
		require.NoError(t, err)
		assert.Equal(t, w.PubKey, decoded.PubKey)
		assert.Equal(t, w.Name, decoded.Name)
		assert.True(t, w.Balance.Eq(decoded.Balance))
	}

	_, err := DecodeWallet(nil)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestSigningBytes(t *testing.T) {
	assert.Equal(t, []byte{0x00, 0x01, 0xaa}, SigningBytes(OpTransfer, []byte{0xaa}))
	assert.Equal(t, []byte{0x00, 0x00}, SigningBytes(OpCreateWallet, nil))
}

func TestSignedOperation(t *testing.T) {
	author, priv := testKey(t, 6)
	to, otherPriv := testKey(t, 7)

	op := NewTransferOp(author, to, 10, 3)
	signed, err := SignOperation(op, priv)
	require.NoError(t, err)

	opened, err := signed.Open()
	require.NoError(t, err)
	assert.Equal(t, op, opened)

	_, err = SignOperation(op, otherPriv)
	assert.Error(t, err, "key must match author")

	tampered := *signed
	tampered.Payload = EncodeTransfer(&TxTransfer{To: to, Amount: 1000, Seed: 3})
	_, err = tampered.Open()
	assert.ErrorIs(t, err, ErrInvalidSignature)

	wrongKind := *signed
	wrongKind.Kind = OpCreateWallet
	_, err = wrongKind.Open()
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
