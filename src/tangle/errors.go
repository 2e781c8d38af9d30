package tangle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSignature is returned when a block's signature does not verify
	// against its public key and canonical bytes, or when an unsigned block is
	// submitted to a Tangle that requires signatures.
	ErrInvalidSignature = errors.New("invalid block signature")

	// ErrInvalidID is returned when a block's identifier is not the hash of its
	// canonical bytes.
	ErrInvalidID = errors.New("block id does not match content hash")

	// ErrConflictingBlock is returned when a block reuses the identifier of an
	// accepted block but differs from it, typically by signer.
	ErrConflictingBlock = errors.New("conflicting block with same id already accepted")
)

// MissingParentError is returned when a block references a parent that has not
// been accepted. Only the first missing parent, in parent order, is reported.
type MissingParentError struct {
	ID string
}

// Error implements the error interface
func (e MissingParentError) Error() string {
	return fmt.Sprintf("missing parent %s", e.ID)
}

// IsMissingParent checks that err is, or wraps, a MissingParentError.
func IsMissingParent(err error) bool {
	var mp MissingParentError
	return errors.As(err, &mp)
}

// UnresolvedBlocksError is returned by Restore when some blocks could never be
// placed because their ancestry is incomplete.
type UnresolvedBlocksError struct {
	IDs []string
}

// Error implements the error interface
func (e UnresolvedBlocksError) Error() string {
	return fmt.Sprintf("%d block(s) with unresolved parents: %s",
		len(e.IDs), strings.Join(e.IDs, ", "))
}

// PersistenceError reports an I/O or decoding failure while reading or writing
// a snapshot.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
