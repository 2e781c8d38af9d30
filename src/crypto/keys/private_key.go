package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
)

// privateKeyLen is the length of a serialized secp256k1 scalar.
const privateKeyLen = 32

//GenerateKey creates a new secp256k1 private key.
func GenerateKey() (*btcec.PrivateKey, error) {
	return btcec.NewPrivateKey(Curve())
}

//DumpPrivateKey exports a private key into a 32 byte binary dump.
func DumpPrivateKey(priv *btcec.PrivateKey) []byte {
	if priv == nil {
		return nil
	}
	return priv.Serialize()
}

//ParsePrivateKey creates a private key from the binary dump produced by
//DumpPrivateKey.
func ParsePrivateKey(d []byte) (*btcec.PrivateKey, error) {
	if len(d) != privateKeyLen {
		return nil, fmt.Errorf("invalid length, need %d bytes", privateKeyLen)
	}

	k := new(big.Int).SetBytes(d)

	// k must be < N
	if k.Cmp(Curve().N) >= 0 {
		return nil, errors.New("invalid private key, >=N")
	}

	// k must not be zero
	if k.Sign() <= 0 {
		return nil, errors.New("invalid private key, zero or negative")
	}

	priv, _ := btcec.PrivKeyFromBytes(Curve(), d)

	return priv, nil
}

//PrivateKeyHex returns the hexadecimal representation of a raw private key as
//returned by DumpPrivateKey
func PrivateKeyHex(key *btcec.PrivateKey) string {
	return hex.EncodeToString(DumpPrivateKey(key))
}
