package keys

import (
	"github.com/btcsuite/btcd/btcec"
)

// Keypair is a signing identity. It satisfies tangle.Signer.
type Keypair struct {
	priv      *btcec.PrivateKey
	publicKey string
}

// NewKeypair wraps an existing private key.
func NewKeypair(priv *btcec.PrivateKey) *Keypair {
	return &Keypair{
		priv:      priv,
		publicKey: EncodePublicKey(priv.PubKey()),
	}
}

// GenerateKeypair creates a Keypair around a fresh private key.
func GenerateKeypair() (*Keypair, error) {
	priv, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	return NewKeypair(priv), nil
}

// Sign returns the base64 encoded signature of data.
func (k *Keypair) Sign(data []byte) (string, error) {
	sig, err := Sign(k.priv, data)
	if err != nil {
		return "", err
	}
	return EncodeSignature(sig), nil
}

// PublicKey returns the base64 encoded compressed public key.
func (k *Keypair) PublicKey() string {
	return k.publicKey
}

// PrivateKey returns the underlying private key.
func (k *Keypair) PrivateKey() *btcec.PrivateKey {
	return k.priv
}
