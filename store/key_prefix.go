package store

// Declare database key prefix for objects
const (
	PrefixWallet = "wallet:"
)

// walletKey is the prefix followed by the raw key bytes, so prefix iteration yields
// wallets in ascending public-key order.
func walletKey(pk [32]byte) []byte {
	key := make([]byte, 0, len(PrefixWallet)+len(pk))
	key = append(key, PrefixWallet...)
	return append(key, pk[:]...)
}
