package common

import "fmt"

// StoreErrType enumerates the failure classes reported by block stores.
type StoreErrType uint32

const (
	// KeyNotFound is returned when a lookup misses.
	KeyNotFound StoreErrType = iota
	// KeyAlreadyExists is returned when a write would overwrite a different
	// value under the same key.
	KeyAlreadyExists
	// Closed is returned when a store is used after Close.
	Closed
)

// StoreErr is a typed store error carrying the data type and key involved.
type StoreErr struct {
	dataType string
	errType  StoreErrType
	key      string
}

// NewStoreErr creates a StoreErr
func NewStoreErr(dataType string, errType StoreErrType, key string) StoreErr {
	return StoreErr{
		dataType: dataType,
		errType:  errType,
		key:      key,
	}
}

// Error implements the error interface.
func (e StoreErr) Error() string {
	m := ""
	switch e.errType {
	case KeyNotFound:
		m = "Not Found"
	case KeyAlreadyExists:
		m = "Key Already Exists"
	case Closed:
		m = "Closed"
	}

	return fmt.Sprintf("%s, %s, %s", e.dataType, e.key, m)
}

// IsStore checks that an error is of type StoreErr and that its code matches
// the provided StoreErrType.
func IsStore(err error, t StoreErrType) bool {
	storeErr, ok := err.(StoreErr)
	return ok && storeErr.errType == t
}
