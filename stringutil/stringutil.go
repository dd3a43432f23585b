package stringutil

import "fmt"

// Kept characters on each side. Op hashes are 64 hex characters and base58 keys
// around 44, both too wide for a log line.
const (
	HashKeep = 8
	KeyKeep  = 6
)

// Shorten keeps keep characters at each end of s. Strings that would not get shorter
// are returned unchanged.
func Shorten(s string, keep int) string {
	if keep <= 0 || len(s) <= 2*keep+3 {
		return s
	}
	return s[:keep] + "..." + s[len(s)-keep:]
}

func ShortHash(hash string) string {
	return Shorten(hash, HashKeep)
}

func ShortKey(key fmt.Stringer) string {
	return Shorten(key.String(), KeyKeep)
}
