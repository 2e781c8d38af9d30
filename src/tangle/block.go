package tangle

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ecoblock/ecoblock/src/crypto"
)

// Payload is the capability a block's domain data must offer: a deterministic
// JSON encoding. Two payloads with the same content must marshal to the same
// bytes.
type Payload interface {
	Marshal() ([]byte, error)
}

// Signer is a signing identity. Sign returns an encoded signature of data and
// PublicKey the encoded key that verifies it.
type Signer interface {
	Sign(data []byte) (string, error)
	PublicKey() string
}

// VerifyFunc checks an encoded signature of data against an encoded public
// key. Malformed inputs may be reported as errors.
type VerifyFunc func(publicKey string, data []byte, signature string) (bool, error)

// RawPayload is a Payload made of already-encoded JSON.
type RawPayload json.RawMessage

// Marshal implements Payload.
func (p RawPayload) Marshal() ([]byte, error) {
	return compactJSON(p)
}

/*******************************************************************************
BlockBody
*******************************************************************************/

// BlockBody is the part of a Block covered by its identifier and signature.
type BlockBody struct {
	Parents []string        `json:"parents"`
	Data    json.RawMessage `json:"data"`
}

// Marshal returns the canonical bytes of the body: its JSON encoding with an
// empty (never null) parent list and compacted data.
func (b *BlockBody) Marshal() ([]byte, error) {
	parents := b.Parents
	if parents == nil {
		parents = []string{}
	}

	data, err := compactJSON(b.Data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(BlockBody{Parents: parents, Data: data}); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Hash returns the hex encoded BLAKE3-256 digest of the canonical bytes.
func (b *BlockBody) Hash() (string, error) {
	canonical, err := b.Marshal()
	if err != nil {
		return "", err
	}
	return crypto.HashHex(canonical), nil
}

/*******************************************************************************
Block
*******************************************************************************/

// Block is an immutable, content-addressed and signed unit of the Tangle. The
// JSON field names are those of the snapshot format.
type Block struct {
	ID        string          `json:"id"`
	Parents   []string        `json:"parents"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
	PublicKey string          `json:"public_key"`
}

// NewBlock builds a block over payload and parents, and signs it with signer.
func NewBlock(payload Payload, parents []string, signer Signer) (*Block, error) {
	if signer == nil {
		return nil, fmt.Errorf("nil signer")
	}

	block, canonical, err := newBlock(payload, parents)
	if err != nil {
		return nil, err
	}

	sig, err := signer.Sign(canonical)
	if err != nil {
		return nil, fmt.Errorf("signing block %s: %w", block.ID, err)
	}

	block.Signature = sig
	block.PublicKey = signer.PublicKey()

	return block, nil
}

// NewUnsignedBlock builds a block with the same identifier NewBlock would give
// it, but with no signature or public key. Only a Tangle created with
// AllowUnsigned accepts such blocks.
func NewUnsignedBlock(parents []string, payload Payload) (*Block, error) {
	block, _, err := newBlock(payload, parents)
	return block, err
}

func newBlock(payload Payload, parents []string) (*Block, []byte, error) {
	if payload == nil {
		return nil, nil, fmt.Errorf("nil payload")
	}

	data, err := payload.Marshal()
	if err != nil {
		return nil, nil, fmt.Errorf("marshalling payload: %w", err)
	}

	p := make([]string, len(parents))
	copy(p, parents)

	block := &Block{
		Parents: p,
		Data:    data,
	}

	canonical, err := block.Canonical()
	if err != nil {
		return nil, nil, err
	}

	block.ID = crypto.HashHex(canonical)

	return block, canonical, nil
}

// Body returns the signed part of the block.
func (b *Block) Body() BlockBody {
	return BlockBody{
		Parents: b.Parents,
		Data:    b.Data,
	}
}

// Canonical returns the canonical bytes of the block, recomputed from its
// parents and data.
func (b *Block) Canonical() ([]byte, error) {
	body := b.Body()
	return body.Marshal()
}

// Hash recomputes the identifier from the block's content. It does not read the
// ID field.
func (b *Block) Hash() (string, error) {
	body := b.Body()
	return body.Hash()
}

// IsGenesis returns true if the block has no parents.
func (b *Block) IsGenesis() bool {
	return len(b.Parents) == 0
}

// IsSigned returns true if the block carries a signature and a public key.
func (b *Block) IsSigned() bool {
	return b.Signature != "" && b.PublicKey != ""
}

// Payload decodes the block data into v.
func (b *Block) Payload(v interface{}) error {
	return json.Unmarshal(b.Data, v)
}

// Equal returns true if both blocks have byte-identical content: same
// identifier, same canonical bytes, same signature and public key.
func (b *Block) Equal(o *Block) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.ID != o.ID || b.Signature != o.Signature || b.PublicKey != o.PublicKey {
		return false
	}
	bc, err := b.Canonical()
	if err != nil {
		return false
	}
	oc, err := o.Canonical()
	if err != nil {
		return false
	}
	return bytes.Equal(bc, oc)
}

// Copy returns a deep copy of the block.
func (b *Block) Copy() *Block {
	c := *b
	c.Parents = append([]string{}, b.Parents...)
	c.Data = append(json.RawMessage{}, b.Data...)
	return &c
}

// UnmarshalJSON decodes a block and compacts its data, so that a block read
// from an indented snapshot has the same canonical bytes as when it was signed.
func (b *Block) UnmarshalJSON(data []byte) error {
	type plain Block
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	if len(p.Data) > 0 {
		compact, err := compactJSON(p.Data)
		if err != nil {
			return err
		}
		p.Data = compact
	}

	if p.Parents == nil {
		p.Parents = []string{}
	}

	*b = Block(p)
	return nil
}

func compactJSON(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, fmt.Errorf("invalid payload JSON: %w", err)
	}
	return buf.Bytes(), nil
}
