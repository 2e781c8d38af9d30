package tangle

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/ecoblock/ecoblock/src/common"
)

func newTestTangle(t *testing.T) *Tangle {
	return NewTangle(NewInmemStore(), RequireSignatures, common.NewTestEntry(t, "tangle"))
}

func TestInsertGenesisBlock(t *testing.T) {
	tg := newTestTangle(t)
	kp := newKeypair(t)

	genesis := newTestBlock(t, genesisReading, nil, kp)

	if err := tg.Insert(genesis); err != nil {
		t.Fatalf("Failed to insert genesis block: %v", err)
	}

	if tg.Len() != 1 {
		t.Fatalf("Tangle should contain exactly one block, not %d", tg.Len())
	}

	got, ok := tg.Get(genesis.ID)
	if !ok {
		t.Fatalf("genesis block should be retrievable")
	}
	if !got.Equal(genesis) {
		t.Fatalf("retrieved block should equal the inserted one")
	}
}

func TestRejectBlockWithMissingParent(t *testing.T) {
	tg := newTestTangle(t)
	kp := newKeypair(t)

	block := newTestBlock(t, dummyReading, []string{"Z"}, kp)

	err := tg.Insert(block)

	var mp MissingParentError
	if !errors.As(err, &mp) {
		t.Fatalf("expected MissingParentError, got %v", err)
	}
	if mp.ID != "Z" {
		t.Fatalf("missing parent should be Z, not %s", mp.ID)
	}
	if tg.Len() != 0 {
		t.Fatalf("Tangle should remain empty")
	}
	if _, ok := tg.Get(block.ID); ok {
		t.Fatalf("rejected block should not be visible")
	}
}

func TestFirstMissingParentIsReported(t *testing.T) {
	tg := newTestTangle(t)
	kp := newKeypair(t)

	genesis := newTestBlock(t, genesisReading, nil, kp)
	if err := tg.Insert(genesis); err != nil {
		t.Fatal(err)
	}

	block := newTestBlock(t, dummyReading, []string{genesis.ID, "X", "Y"}, kp)

	err := tg.Insert(block)
	if err != (MissingParentError{ID: "X"}) {
		t.Fatalf("expected MissingParent(X), got %v", err)
	}
	if tg.Len() != 1 {
		t.Fatalf("Tangle size should be unchanged")
	}
	if c := tg.Children(genesis.ID); len(c) != 0 {
		t.Fatalf("a rejected block should not register edges, got %v", c)
	}
}

func TestInsertBlockWithValidParent(t *testing.T) {
	tg := newTestTangle(t)
	kp := newKeypair(t)

	genesis := newTestBlock(t, genesisReading, nil, kp)
	if err := tg.Insert(genesis); err != nil {
		t.Fatal(err)
	}

	child := newTestBlock(t, dummyReading, []string{genesis.ID}, kp)
	if err := tg.Insert(child); err != nil {
		t.Fatalf("Failed to insert block with valid parent: %v", err)
	}

	if tg.Len() != 2 {
		t.Fatalf("Tangle should contain two blocks")
	}
	if _, ok := tg.Get(child.ID); !ok {
		t.Fatalf("Child block should exist in the tangle")
	}
	if c := tg.Children(genesis.ID); !reflect.DeepEqual(c, []string{child.ID}) {
		t.Fatalf("children of genesis should be [%s], not %v", child.ID, c)
	}
	if c := tg.Children(child.ID); len(c) != 0 {
		t.Fatalf("leaf should have no children")
	}
	if c := tg.Children("unknown"); len(c) != 0 {
		t.Fatalf("unknown id should have no children")
	}
	if tips := tg.Tips(); !reflect.DeepEqual(tips, []string{child.ID}) {
		t.Fatalf("tips should be [%s], not %v", child.ID, tips)
	}
}

func TestInsertBlockWithWrongPublicKey(t *testing.T) {
	tg := newTestTangle(t)
	kp := newKeypair(t)
	wrong := newKeypair(t)

	block := newTestBlock(t, dummyReading, nil, wrong)
	block.PublicKey = kp.PublicKey()

	err := tg.Insert(block)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if tg.Len() != 0 {
		t.Fatalf("Tangle should remain empty")
	}
}

func TestInsertTamperedPayload(t *testing.T) {
	tg := newTestTangle(t)
	kp := newKeypair(t)

	block := newTestBlock(t, dummyReading, nil, kp)
	block.Data = []byte(`{"pm25":999}`)

	if err := tg.Insert(block); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestInsertMalformedSignature(t *testing.T) {
	tg := newTestTangle(t)
	kp := newKeypair(t)

	block := newTestBlock(t, dummyReading, nil, kp)
	block.Signature = "%%%"

	if err := tg.Insert(block); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestInsertForgedID(t *testing.T) {
	tg := newTestTangle(t)
	kp := newKeypair(t)

	block := newTestBlock(t, dummyReading, nil, kp)
	block.ID = "A"

	if err := tg.Insert(block); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if tg.Len() != 0 {
		t.Fatalf("Tangle should remain empty")
	}
}

func TestMissingParentCheckedBeforeSignature(t *testing.T) {
	tg := newTestTangle(t)
	kp := newKeypair(t)

	block := newTestBlock(t, dummyReading, []string{"Z"}, kp)
	block.Signature = ""

	if err := tg.Insert(block); !IsMissingParent(err) {
		t.Fatalf("expected MissingParent first, got %v", err)
	}
}

func TestReinsertion(t *testing.T) {
	tg := newTestTangle(t)
	kp := newKeypair(t)
	other := newKeypair(t)

	block := newTestBlock(t, dummyReading, nil, kp)
	if err := tg.Insert(block); err != nil {
		t.Fatal(err)
	}

	if err := tg.Insert(block.Copy()); err != nil {
		t.Fatalf("re-inserting an identical block should be a no-op, got %v", err)
	}
	if tg.Len() != 1 {
		t.Fatalf("Tangle should still contain one block")
	}

	conflicting := newTestBlock(t, dummyReading, nil, other)
	if conflicting.ID != block.ID {
		t.Fatalf("test setup: ids should match")
	}

	if err := tg.Insert(conflicting); !errors.Is(err, ErrConflictingBlock) {
		t.Fatalf("expected ErrConflictingBlock, got %v", err)
	}

	got, _ := tg.Get(block.ID)
	if got.PublicKey != kp.PublicKey() {
		t.Fatalf("the first accepted block should be kept")
	}
}

func TestUnsignedPolicy(t *testing.T) {
	unsigned, err := NewUnsignedBlock(nil, genesisReading)
	if err != nil {
		t.Fatal(err)
	}

	strict := newTestTangle(t)
	if err := strict.Insert(unsigned); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("strict tangle should reject unsigned blocks, got %v", err)
	}

	lax := NewTangle(NewInmemStore(), AllowUnsigned, common.NewTestEntry(t, "tangle"))
	if err := lax.Insert(unsigned); err != nil {
		t.Fatalf("lax tangle should accept unsigned blocks, got %v", err)
	}

	// half-signed blocks are never accepted
	kp := newKeypair(t)
	half, _ := NewUnsignedBlock(nil, dummyReading)
	half.PublicKey = kp.PublicKey()
	if err := lax.Insert(half); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for a block without signature, got %v", err)
	}

	// signed blocks are still verified
	bad := newTestBlock(t, dummyReading, nil, kp)
	bad.PublicKey = newKeypair(t).PublicKey()
	if err := lax.Insert(bad); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestCustomVerifier(t *testing.T) {
	tg := newTestTangle(t)
	called := false
	tg.SetVerifier(func(publicKey string, data []byte, signature string) (bool, error) {
		called = true
		return publicKey == "pk" && signature == "sig", nil
	})

	block, _ := NewUnsignedBlock(nil, dummyReading)
	block.PublicKey = "pk"
	block.Signature = "sig"

	if err := tg.Insert(block); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatalf("custom verifier should be used")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	tg := newTestTangle(t)
	kp := newKeypair(t)

	block := newTestBlock(t, dummyReading, nil, kp)
	if err := tg.Insert(block); err != nil {
		t.Fatal(err)
	}

	// mutating the caller's block after insertion must not affect the tangle
	block.Signature = "tampered"

	got, _ := tg.Get(block.ID)
	if got.Signature == "tampered" {
		t.Fatalf("tangle should own its copy of the block")
	}

	got.Parents = append(got.Parents, "x")
	again, _ := tg.Get(block.ID)
	if len(again.Parents) != 0 {
		t.Fatalf("Get should return a copy")
	}
}

func TestReferentialIntegrity(t *testing.T) {
	tg := newTestTangle(t)
	kp := newKeypair(t)

	buildChain(t, tg, kp, 20)

	blocks, err := tg.Blocks()
	if err != nil {
		t.Fatal(err)
	}

	seen := map[string]bool{}
	for _, b := range blocks {
		for _, p := range b.Parents {
			if !seen[p] {
				t.Fatalf("block %s listed before its parent %s", b.ID, p)
			}
			found := false
			for _, c := range tg.Children(p) {
				if c == b.ID {
					found = true
				}
			}
			if !found {
				t.Fatalf("edge %s -> %s missing", p, b.ID)
			}
		}
		seen[b.ID] = true
	}
}

func TestConcurrentInsert(t *testing.T) {
	tg := newTestTangle(t)
	kp := newKeypair(t)

	genesis := newTestBlock(t, genesisReading, nil, kp)
	if err := tg.Insert(genesis); err != nil {
		t.Fatal(err)
	}

	n := 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := dummyReading
			r.Timestamp = uint64(i)
			b, err := NewBlock(r, []string{genesis.ID}, kp)
			if err != nil {
				errs <- err
				return
			}
			if err := tg.Insert(b); err != nil {
				errs <- fmt.Errorf("insert %d: %w", i, err)
			}
			tg.Len()
			tg.Get(b.ID)
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatal(err)
	}

	if tg.Len() != n+1 {
		t.Fatalf("Tangle should contain %d blocks, not %d", n+1, tg.Len())
	}
	if len(tg.Children(genesis.ID)) != n {
		t.Fatalf("genesis should have %d children", n)
	}
}

func TestInsertNil(t *testing.T) {
	tg := newTestTangle(t)
	if err := tg.Insert(nil); err == nil {
		t.Fatalf("nil block should be rejected")
	}
}
