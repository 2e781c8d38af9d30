// Package keys implements the public key cryptography used to sign Tangle
// blocks.
//
// A device that produces blocks owns a cryptographic key-pair. The private key
// is secret and signs the canonical bytes of each block; the public key travels
// inside the block so that any holder of the block can verify it without a key
// registry.
//
// Keys live on the secp256k1 curve, the same curve used by Bitcoin and
// Ethereum, through btcsuite's btcec implementation. Signatures are DER encoded
// and computed over the BLAKE3-256 digest of the signed data. Public keys and
// signatures are exchanged as standard base64 strings.
package keys
