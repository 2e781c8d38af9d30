package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestStoreErr(t *testing.T) {
	err := NewStoreErr("Block", KeyNotFound, "abc")

	if !IsStore(err, KeyNotFound) {
		t.Fatalf("expected KeyNotFound StoreErr")
	}
	if IsStore(err, KeyAlreadyExists) {
		t.Fatalf("KeyNotFound should not match KeyAlreadyExists")
	}
	if IsStore(errors.New("Block, abc, Not Found"), KeyNotFound) {
		t.Fatalf("plain errors are not StoreErr")
	}

	if got, want := err.Error(), "Block, abc, Not Found"; got != want {
		t.Fatalf("Error() should be %q, not %q", want, got)
	}

	var target StoreErr
	if !errors.As(fmt.Errorf("wrapped: %w", err), &target) {
		t.Fatalf("wrapped StoreErr should be found by errors.As")
	}

	closed := NewStoreErr("Store", Closed, "db")
	if !IsStore(closed, Closed) || closed.Error() != "Store, db, Closed" {
		t.Fatalf("unexpected Closed StoreErr: %v", closed)
	}
}
