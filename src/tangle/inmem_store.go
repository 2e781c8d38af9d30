package tangle

import (
	cm "github.com/ecoblock/ecoblock/src/common"
)

// InmemStore implements the Store interface with a map. It keeps every block
// for the lifetime of the process.
type InmemStore struct {
	blocks map[string]*Block //[id] => Block
	order  []string          //ids in insertion order
}

// NewInmemStore creates an empty InmemStore.
func NewInmemStore() *InmemStore {
	return &InmemStore{
		blocks: make(map[string]*Block),
	}
}

// GetBlock implements the Store interface.
func (s *InmemStore) GetBlock(id string) (*Block, error) {
	block, ok := s.blocks[id]
	if !ok {
		return nil, cm.NewStoreErr("Block", cm.KeyNotFound, id)
	}
	return block, nil
}

// SetBlock implements the Store interface.
func (s *InmemStore) SetBlock(block *Block) error {
	if existing, ok := s.blocks[block.ID]; ok {
		if existing.Equal(block) {
			return nil
		}
		return cm.NewStoreErr("Block", cm.KeyAlreadyExists, block.ID)
	}
	s.blocks[block.ID] = block
	s.order = append(s.order, block.ID)
	return nil
}

// TopologicalBlocks implements the Store interface.
func (s *InmemStore) TopologicalBlocks() ([]*Block, error) {
	res := make([]*Block, 0, len(s.order))
	for _, id := range s.order {
		res = append(res, s.blocks[id])
	}
	return res, nil
}

// Len implements the Store interface.
func (s *InmemStore) Len() int {
	return len(s.blocks)
}

// NeedBootstrap implements the Store interface. An InmemStore always starts
// empty.
func (s *InmemStore) NeedBootstrap() bool {
	return false
}

// Close implements the Store interface.
func (s *InmemStore) Close() error {
	return nil
}

// StorePath implements the Store interface.
func (s *InmemStore) StorePath() string {
	return ""
}
