package keys

import (
	"encoding/base64"
	"errors"

	"github.com/btcsuite/btcd/btcec"
	"github.com/ecoblock/ecoblock/src/crypto"
)

// Sign hashes data with BLAKE3-256 and signs the digest with the private key.
// btcec derives the nonce deterministically (RFC 6979).
func Sign(priv *btcec.PrivateKey, data []byte) (*btcec.Signature, error) {
	if priv == nil {
		return nil, errors.New("nil private key")
	}
	return priv.Sign(crypto.Hash256(data))
}

// Verify checks that sig is a signature of data by the owner of the private key
// associated with pub.
func Verify(pub *btcec.PublicKey, data []byte, sig *btcec.Signature) bool {
	if pub == nil || sig == nil {
		return false
	}
	return sig.Verify(crypto.Hash256(data), pub)
}

// EncodeSignature returns the base64 representation of the DER encoded
// signature.
func EncodeSignature(sig *btcec.Signature) string {
	return base64.StdEncoding.EncodeToString(sig.Serialize())
}

// DecodeSignature parses a string produced by EncodeSignature.
func DecodeSignature(s string) (*btcec.Signature, error) {
	der, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return btcec.ParseDERSignature(der, Curve())
}

// VerifyEncoded verifies a base64 signature of data against a base64 public
// key. Malformed keys or signatures are reported as errors, a well-formed
// signature that does not match yields false.
func VerifyEncoded(publicKey string, data []byte, signature string) (bool, error) {
	pub, err := DecodePublicKey(publicKey)
	if err != nil {
		return false, err
	}

	sig, err := DecodeSignature(signature)
	if err != nil {
		return false, err
	}

	return Verify(pub, data, sig), nil
}
