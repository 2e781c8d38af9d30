package tangle

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger"
	cm "github.com/ecoblock/ecoblock/src/common"
	"github.com/sirupsen/logrus"
)

const (
	blockPrefix = "block"
	topoPrefix  = "topo"
)

// BadgerStore implements the Store interface on top of a Badger database, with
// an InmemStore in front of it. Blocks are written under their id, and a
// topological index maps a sequence number to each id in insertion order.
type BadgerStore struct {
	inmemStore    *InmemStore
	db            *badger.DB
	path          string
	topoCount     int
	needBootstrap bool
	closed        bool
}

// NewBadgerStore opens an existing database or creates a new one if nothing is
// found in path. If the database already contains blocks, NeedBootstrap returns
// true until the blocks are replayed.
func NewBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithSyncWrites(true).
		WithTruncate(true)

	if logger != nil {
		opts = opts.WithLogger(logger.WithField("ns", "badger"))
	}

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	store := &BadgerStore{
		inmemStore: NewInmemStore(),
		db:         handle,
		path:       path,
	}

	count, err := store.dbTopoCount()
	if err != nil {
		handle.Close()
		return nil, err
	}

	store.topoCount = count
	store.needBootstrap = count > 0

	return store, nil
}

// LoadBadgerStore opens an existing database. It fails if path does not exist.
func LoadBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return NewBadgerStore(path, logger)
}

/*******************************************************************************
Keys
*******************************************************************************/

func blockKey(id string) []byte {
	return []byte(fmt.Sprintf("%s_%s", blockPrefix, id))
}

func topologicalBlockKey(index int) []byte {
	return []byte(fmt.Sprintf("%s_%09d", topoPrefix, index))
}

/*******************************************************************************
Store interface
*******************************************************************************/

// GetBlock implements the Store interface.
func (s *BadgerStore) GetBlock(id string) (*Block, error) {
	if s.closed {
		return nil, s.closedErr()
	}
	//try to get it from cache
	block, err := s.inmemStore.GetBlock(id)
	//if not in cache, try to get it from db
	if err != nil {
		block, err = s.dbGetBlock(id)
	}
	return block, mapError(err, "Block", id)
}

// SetBlock implements the Store interface.
func (s *BadgerStore) SetBlock(block *Block) error {
	if s.closed {
		return s.closedErr()
	}
	existing, err := s.dbGetBlock(block.ID)
	switch {
	case err == nil:
		if !existing.Equal(block) {
			return cm.NewStoreErr("Block", cm.KeyAlreadyExists, block.ID)
		}
	case isDBKeyNotFound(err):
		if err := s.dbSetBlock(block); err != nil {
			return err
		}
	default:
		return err
	}

	return s.inmemStore.SetBlock(block)
}

// TopologicalBlocks implements the Store interface. It reads from the database,
// not the cache, so it includes blocks that have not been bootstrapped yet.
func (s *BadgerStore) TopologicalBlocks() ([]*Block, error) {
	if s.closed {
		return nil, s.closedErr()
	}
	return s.dbTopologicalBlocks()
}

// Len implements the Store interface.
func (s *BadgerStore) Len() int {
	return s.topoCount
}

// NeedBootstrap implements the Store interface.
func (s *BadgerStore) NeedBootstrap() bool {
	return s.needBootstrap
}

// Bootstrapped is called by the Tangle once it has replayed the blocks.
func (s *BadgerStore) Bootstrapped() {
	s.needBootstrap = false
}

// Close implements the Store interface. Any later call to GetBlock, SetBlock
// or TopologicalBlocks returns a common.StoreErr with Closed.
func (s *BadgerStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *BadgerStore) closedErr() error {
	return cm.NewStoreErr("Store", cm.Closed, s.path)
}

// StorePath implements the Store interface.
func (s *BadgerStore) StorePath() string {
	return s.path
}

/*******************************************************************************
DB Methods
*******************************************************************************/

func (s *BadgerStore) dbGetBlock(id string) (*Block, error) {
	var blockBytes []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blockKey(id))
		if err != nil {
			return err
		}
		blockBytes, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, err
	}

	return decodeBlock(blockBytes)
}

func (s *BadgerStore) dbSetBlock(block *Block) error {
	val, err := encodeBlock(block)
	if err != nil {
		return err
	}

	tx := s.db.NewTransaction(true)
	defer tx.Discard()

	//insert [block_id] => [block bytes]
	if err := tx.Set(blockKey(block.ID), val); err != nil {
		return err
	}

	//insert [topo_index] => [block id]
	if err := tx.Set(topologicalBlockKey(s.topoCount), []byte(block.ID)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.topoCount++

	return nil
}

func (s *BadgerStore) dbTopologicalBlocks() ([]*Block, error) {
	res := []*Block{}
	err := s.db.View(func(txn *badger.Txn) error {
		for t := 0; t < s.topoCount; t++ {
			item, err := txn.Get(topologicalBlockKey(t))
			if err != nil {
				return err
			}
			id, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			blockItem, err := txn.Get(blockKey(string(id)))
			if err != nil {
				return err
			}
			blockBytes, err := blockItem.ValueCopy(nil)
			if err != nil {
				return err
			}

			block, err := decodeBlock(blockBytes)
			if err != nil {
				return err
			}
			res = append(res, block)
		}
		return nil
	})

	return res, err
}

func (s *BadgerStore) dbTopoCount() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(topoPrefix + "_")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

func isDBKeyNotFound(err error) bool {
	return err == badger.ErrKeyNotFound
}

func mapError(err error, name, key string) error {
	if err != nil {
		if isDBKeyNotFound(err) {
			return cm.NewStoreErr(name, cm.KeyNotFound, key)
		}
	}
	return err
}
