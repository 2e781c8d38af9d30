package tangle

import (
	"github.com/ugorji/go/codec"
)

// Store is an interface for backend block stores. A Store only persists blocks;
// validation and the adjacency index belong to the Tangle.
type Store interface {
	// GetBlock returns a block by id, or a common.StoreErr with KeyNotFound.
	GetBlock(id string) (*Block, error)
	// SetBlock stores a block. Storing an identical block twice is a no-op,
	// storing a different block under an existing id returns a common.StoreErr
	// with KeyAlreadyExists.
	SetBlock(block *Block) error
	// TopologicalBlocks returns all the stored blocks in the order they were
	// first stored.
	TopologicalBlocks() ([]*Block, error)
	// Len returns the number of stored blocks.
	Len() int
	// NeedBootstrap returns true if the store was loaded with blocks that the
	// Tangle has not replayed yet.
	NeedBootstrap() bool
	// Close closes the underlying database.
	Close() error
	// StorePath returns the filepath of the underlying database.
	StorePath() string
}

// blockHandle encodes blocks in the persistent stores.
var blockHandle = new(codec.MsgpackHandle)

func encodeBlock(block *Block) ([]byte, error) {
	var out []byte
	enc := codec.NewEncoderBytes(&out, blockHandle)
	if err := enc.Encode(block); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeBlock(data []byte) (*Block, error) {
	block := new(Block)
	dec := codec.NewDecoderBytes(data, blockHandle)
	if err := dec.Decode(block); err != nil {
		return nil, err
	}
	if block.Parents == nil {
		block.Parents = []string{}
	}
	return block, nil
}
