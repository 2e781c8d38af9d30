package keys

import (
	"encoding/base64"
	"errors"

	"github.com/btcsuite/btcd/btcec"
)

// FromPublicKey returns the 33 byte compressed form of the public key.
func FromPublicKey(pub *btcec.PublicKey) []byte {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return nil
	}
	return pub.SerializeCompressed()
}

// ToPublicKey parses a public key in compressed or uncompressed form and
// checks that the point lies on the curve.
func ToPublicKey(pub []byte) (*btcec.PublicKey, error) {
	if len(pub) == 0 {
		return nil, errors.New("empty public key")
	}
	return btcec.ParsePubKey(pub, Curve())
}

// EncodePublicKey returns the base64 representation of the compressed public
// key. This is the form carried inside blocks.
func EncodePublicKey(pub *btcec.PublicKey) string {
	return base64.StdEncoding.EncodeToString(FromPublicKey(pub))
}

// DecodePublicKey parses the output of EncodePublicKey.
func DecodePublicKey(s string) (*btcec.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return ToPublicKey(raw)
}
