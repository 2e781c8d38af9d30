package crypto

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// HashSize is the length in bytes of the digests returned by Hash256.
const HashSize = 32

// Hash256 returns the 256-bit BLAKE3 digest of the data.
func Hash256(data []byte) []byte {
	sum := blake3.Sum256(data)
	return sum[:]
}

// HashHex returns the lowercase hexadecimal form of Hash256(data). Block
// identifiers are produced with this function.
func HashHex(data []byte) string {
	return hex.EncodeToString(Hash256(data))
}
