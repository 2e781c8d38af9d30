package tangle

import (
	"encoding/binary"
	"errors"
	"time"

	cm "github.com/ecoblock/ecoblock/src/common"
	bolt "go.etcd.io/bbolt"
)

var (
	blockBkt = []byte("blocks")
	topoBkt  = []byte("topo")
)

var errBoltNotFound = errors.New("bolt key not found")

// BoltStore implements the Store interface on top of a single bbolt file. The
// blocks bucket maps ids to encoded blocks; the topo bucket maps a big-endian
// sequence number to each id, so that a cursor walks it in insertion order.
type BoltStore struct {
	inmemStore    *InmemStore
	db            *bolt.DB
	path          string
	topoCount     int
	needBootstrap bool
	closed        bool
}

// NewBoltStore opens or creates the bbolt database file at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, err
	}

	s := &BoltStore{
		inmemStore: NewInmemStore(),
		db:         db,
		path:       path,
	}

	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *BoltStore) init() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(blockBkt); err != nil {
			return err
		}
		topo, err := tx.CreateBucketIfNotExists(topoBkt)
		if err != nil {
			return err
		}
		s.topoCount = topo.Stats().KeyN
		s.needBootstrap = s.topoCount > 0
		return nil
	})
}

func topoSeq(index int) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(index))
	return buf
}

// GetBlock implements the Store interface.
func (s *BoltStore) GetBlock(id string) (*Block, error) {
	if s.closed {
		return nil, s.closedErr()
	}
	block, err := s.inmemStore.GetBlock(id)
	if err == nil {
		return block, nil
	}

	block, err = s.dbGetBlock(id)
	if errors.Is(err, errBoltNotFound) {
		return nil, cm.NewStoreErr("Block", cm.KeyNotFound, id)
	}
	return block, err
}

// SetBlock implements the Store interface.
func (s *BoltStore) SetBlock(block *Block) error {
	if s.closed {
		return s.closedErr()
	}
	existing, err := s.dbGetBlock(block.ID)
	switch {
	case err == nil:
		if !existing.Equal(block) {
			return cm.NewStoreErr("Block", cm.KeyAlreadyExists, block.ID)
		}
	case errors.Is(err, errBoltNotFound):
		if err := s.dbSetBlock(block); err != nil {
			return err
		}
	default:
		return err
	}

	return s.inmemStore.SetBlock(block)
}

// TopologicalBlocks implements the Store interface.
func (s *BoltStore) TopologicalBlocks() ([]*Block, error) {
	if s.closed {
		return nil, s.closedErr()
	}
	res := []*Block{}
	err := s.db.View(func(tx *bolt.Tx) error {
		blocks := tx.Bucket(blockBkt)
		c := tx.Bucket(topoBkt).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			data := blocks.Get(v)
			if data == nil {
				return cm.NewStoreErr("Block", cm.KeyNotFound, string(v))
			}
			block, err := decodeBlock(data)
			if err != nil {
				return err
			}
			res = append(res, block)
		}
		return nil
	})
	return res, err
}

// Len implements the Store interface.
func (s *BoltStore) Len() int {
	return s.topoCount
}

// NeedBootstrap implements the Store interface.
func (s *BoltStore) NeedBootstrap() bool {
	return s.needBootstrap
}

// Bootstrapped is called by the Tangle once it has replayed the blocks.
func (s *BoltStore) Bootstrapped() {
	s.needBootstrap = false
}

// Close implements the Store interface. Any later call to GetBlock, SetBlock
// or TopologicalBlocks returns a common.StoreErr with Closed.
func (s *BoltStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *BoltStore) closedErr() error {
	return cm.NewStoreErr("Store", cm.Closed, s.path)
}

// StorePath implements the Store interface.
func (s *BoltStore) StorePath() string {
	return s.path
}

func (s *BoltStore) dbGetBlock(id string) (*Block, error) {
	var block *Block
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(blockBkt).Get([]byte(id))
		if data == nil {
			return errBoltNotFound
		}
		var err error
		block, err = decodeBlock(data)
		return err
	})
	return block, err
}

func (s *BoltStore) dbSetBlock(block *Block) error {
	val, err := encodeBlock(block)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(blockBkt).Put([]byte(block.ID), val); err != nil {
			return err
		}
		return tx.Bucket(topoBkt).Put(topoSeq(s.topoCount), []byte(block.ID))
	})
	if err != nil {
		return err
	}

	s.topoCount++

	return nil
}
