package tangle

import (
	"encoding/json"
	"testing"

	cm "github.com/ecoblock/ecoblock/src/common"
	"github.com/ecoblock/ecoblock/src/crypto/keys"
)

type reading struct {
	PM25        float64 `json:"pm25"`
	CO2         float64 `json:"co2"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Timestamp   uint64  `json:"timestamp"`
}

func (r reading) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

var genesisReading = reading{}

var dummyReading = reading{
	PM25:        10.0,
	CO2:         400.0,
	Temperature: 20.0,
	Humidity:    50.0,
	Timestamp:   123456,
}

func newKeypair(t testing.TB) *keys.Keypair {
	kp, err := keys.GenerateKeypair()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	return kp
}

func newTestBlock(t testing.TB, payload Payload, parents []string, signer Signer) *Block {
	b, err := NewBlock(payload, parents, signer)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}
	return b
}

// buildChain inserts a genesis block and n-1 descendants, each child
// referencing the previous block and, when available, the one before it.
func buildChain(t testing.TB, tg *Tangle, kp *keys.Keypair, n int) []*Block {
	blocks := []*Block{}
	for i := 0; i < n; i++ {
		var parents []string
		if i > 0 {
			parents = append(parents, blocks[i-1].ID)
		}
		if i > 1 {
			parents = append(parents, blocks[i-2].ID)
		}
		b := newTestBlock(t, chainReading(i), parents, kp)
		if err := tg.Insert(b); err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// chainReading is the payload of the i-th block built by buildChain.
func chainReading(i int) reading {
	r := dummyReading
	r.Timestamp = uint64(i)
	return r
}

// checkClosedStore verifies that a closed store, and the Tangle on top of it,
// refuse further reads and writes. blocks must have been stored before Close.
func checkClosedStore(t *testing.T, store Store, tg *Tangle, blocks []*Block) {
	t.Helper()

	if err := store.Close(); err != nil {
		t.Fatalf("closing twice should be a no-op, got %v", err)
	}

	if _, err := store.GetBlock(blocks[0].ID); !cm.IsStore(err, cm.Closed) {
		t.Fatalf("GetBlock after Close: expected Closed, got %v", err)
	}
	if _, err := store.TopologicalBlocks(); !cm.IsStore(err, cm.Closed) {
		t.Fatalf("TopologicalBlocks after Close: expected Closed, got %v", err)
	}

	last := blocks[len(blocks)-1]
	child := newTestBlock(t, dummyReading, []string{last.ID}, newKeypair(t))
	if err := store.SetBlock(child); !cm.IsStore(err, cm.Closed) {
		t.Fatalf("SetBlock after Close: expected Closed, got %v", err)
	}

	before := tg.Len()
	if err := tg.Insert(child); err == nil {
		t.Fatalf("Insert on a closed store should fail")
	}
	if tg.Len() != before || tg.Contains(child.ID) {
		t.Fatalf("a failed write should leave the tangle unchanged")
	}
}
