package tangle

import (
	"errors"
	"fmt"
	"io/ioutil"
	"sort"
	"sync"

	cm "github.com/ecoblock/ecoblock/src/common"
	"github.com/ecoblock/ecoblock/src/crypto/keys"
	"github.com/sirupsen/logrus"
)

// SignaturePolicy decides what the Tangle does with unsigned blocks.
type SignaturePolicy int

const (
	// RequireSignatures rejects unsigned blocks with ErrInvalidSignature.
	RequireSignatures SignaturePolicy = iota
	// AllowUnsigned accepts blocks with an empty signature and public key.
	// Signed blocks are still verified.
	AllowUnsigned
)

// bootstrapper is implemented by persistent stores that need to know when
// their blocks have been replayed.
type bootstrapper interface {
	Bootstrapped()
}

// Tangle is a DAG of signed blocks. It owns the authoritative block store and
// the adjacency index derived from it, and is the only path through which
// blocks are added to either.
type Tangle struct {
	mu sync.RWMutex

	store  Store  //accepted blocks
	graph  *Graph //parent -> children index over accepted blocks
	policy SignaturePolicy
	verify VerifyFunc

	logger *logrus.Entry
}

// NewTangle instantiates a Tangle on top of a store. If the store was loaded
// with existing blocks, Bootstrap must be called before they become visible.
func NewTangle(store Store, policy SignaturePolicy, logger *logrus.Entry) *Tangle {
	if logger == nil {
		log := logrus.New()
		log.Out = ioutil.Discard
		logger = logrus.NewEntry(log)
	}

	return &Tangle{
		store:  store,
		graph:  NewGraph(),
		policy: policy,
		verify: keys.VerifyEncoded,
		logger: logger,
	}
}

// SetVerifier replaces the signature verification function. The default is
// keys.VerifyEncoded.
func (t *Tangle) SetVerifier(verify VerifyFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.verify = verify
}

/*******************************************************************************
Insertion
*******************************************************************************/

// Insert validates a block and, on success, adds it to the store and the
// graph. Validation runs in this order and stops at the first failure:
//
//  1. every parent must already be accepted (MissingParentError),
//  2. the signature must verify over the canonical bytes (ErrInvalidSignature),
//  3. the id must be the hash of the canonical bytes (ErrInvalidID),
//  4. an already accepted id is a no-op if the block is identical, and
//     ErrConflictingBlock otherwise.
//
// A failed insert leaves the Tangle unchanged.
func (t *Tangle) Insert(block *Block) error {
	if block == nil {
		return errors.New("nil block")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.insert(block)
}

func (t *Tangle) insert(block *Block) error {
	if err := t.checkParents(block); err != nil {
		return err
	}

	canonical, err := block.Canonical()
	if err != nil {
		return fmt.Errorf("block %s: %w", block.ID, err)
	}

	if err := t.checkSignature(block, canonical); err != nil {
		t.logger.WithFields(logrus.Fields{
			"block":      block.ID,
			"public_key": block.PublicKey,
		}).WithError(err).Debug("CheckSignature")
		return err
	}

	if err := t.checkID(block); err != nil {
		return err
	}

	if t.graph.Contains(block.ID) {
		existing, err := t.store.GetBlock(block.ID)
		if err != nil {
			return fmt.Errorf("GetBlock: %w", err)
		}
		if existing.Equal(block) {
			return nil
		}
		return ErrConflictingBlock
	}

	stored := block.Copy()

	if err := t.store.SetBlock(stored); err != nil {
		if cm.IsStore(err, cm.KeyAlreadyExists) {
			return ErrConflictingBlock
		}
		return fmt.Errorf("SetBlock: %w", err)
	}

	t.graph.AddNode(stored.ID)
	for _, p := range stored.Parents {
		t.graph.AddEdge(p, stored.ID)
	}

	t.logger.WithFields(logrus.Fields{
		"block":   stored.ID,
		"parents": len(stored.Parents),
	}).Debug("Inserted block")

	return nil
}

func (t *Tangle) checkParents(block *Block) error {
	for _, p := range block.Parents {
		if !t.graph.Contains(p) {
			return MissingParentError{ID: p}
		}
	}
	return nil
}

func (t *Tangle) checkSignature(block *Block, canonical []byte) error {
	if !block.IsSigned() {
		if t.policy == AllowUnsigned && block.Signature == "" && block.PublicKey == "" {
			return nil
		}
		return ErrInvalidSignature
	}

	ok, err := t.verify(block.PublicKey, canonical, block.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !ok {
		return ErrInvalidSignature
	}
	return nil
}

func (t *Tangle) checkID(block *Block) error {
	hash, err := block.Hash()
	if err != nil {
		return err
	}
	if hash != block.ID {
		return ErrInvalidID
	}
	return nil
}

/*******************************************************************************
Reads
*******************************************************************************/

// Get returns an accepted block by id.
func (t *Tangle) Get(id string) (*Block, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.graph.Contains(id) {
		return nil, false
	}

	block, err := t.store.GetBlock(id)
	if err != nil {
		t.logger.WithField("block", id).WithError(err).Warn("Accepted block missing from store")
		return nil, false
	}

	return block.Copy(), true
}

// Contains returns true if id has been accepted.
func (t *Tangle) Contains(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.graph.Contains(id)
}

// Len returns the number of accepted blocks.
func (t *Tangle) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.graph.Len()
}

// Children returns the sorted ids of the direct children of id. It is empty
// for leaves and unknown ids.
func (t *Tangle) Children(id string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	set, ok := t.graph.Children(id)
	if !ok {
		return []string{}
	}

	res := make([]string, 0, len(set))
	for c := range set {
		res = append(res, c)
	}
	sort.Strings(res)
	return res
}

// Tips returns the sorted ids of the blocks that have no children yet.
func (t *Tangle) Tips() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.graph.Tips()
}

// Blocks returns the accepted blocks in acceptance order, which is a
// topological order: every block comes after all of its parents.
func (t *Tangle) Blocks() ([]*Block, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := t.graph.Nodes()
	res := make([]*Block, 0, len(ids))
	for _, id := range ids {
		block, err := t.store.GetBlock(id)
		if err != nil {
			return nil, fmt.Errorf("GetBlock %s: %w", id, err)
		}
		res = append(res, block.Copy())
	}
	return res, nil
}

/*******************************************************************************
Lifecycle
*******************************************************************************/

// Bootstrap replays the blocks of a persistent store through Insert, in the
// order they were stored, to rebuild the graph. Every block is validated again.
func (t *Tangle) Bootstrap() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	blocks, err := t.store.TopologicalBlocks()
	if err != nil {
		return fmt.Errorf("TopologicalBlocks: %w", err)
	}

	for _, b := range blocks {
		if err := t.insert(b); err != nil {
			return fmt.Errorf("bootstrapping block %s: %w", b.ID, err)
		}
	}

	if bs, ok := t.store.(bootstrapper); ok {
		bs.Bootstrapped()
	}

	t.logger.WithField("blocks", len(blocks)).Debug("Bootstrapped")

	return nil
}

// Store returns the underlying store.
func (t *Tangle) Store() Store {
	return t.store
}

// Close closes the underlying store.
func (t *Tangle) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Close()
}
