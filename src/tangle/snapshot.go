package tangle

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Snapshot serializes every accepted block into an indented JSON array. Blocks
// are written in acceptance order, so every parent precedes its children.
func Snapshot(t *Tangle) ([]byte, error) {
	blocks, err := t.Blocks()
	if err != nil {
		return nil, &PersistenceError{Op: "snapshot", Err: err}
	}

	data, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return nil, &PersistenceError{Op: "snapshot", Err: err}
	}

	return data, nil
}

// Restore decodes a snapshot and replays its blocks into a new in-memory
// Tangle. Blocks are tried in file order; blocks whose parents are not yet
// accepted are retried in further passes until a pass places nothing. Blocks
// that remain unplaced yield an UnresolvedBlocksError. Any other validation
// failure aborts the restore. No Tangle is returned unless every block was
// accepted.
func Restore(data []byte, policy SignaturePolicy, logger *logrus.Entry) (*Tangle, error) {
	blocks, err := decodeSnapshot(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	t := NewTangle(NewInmemStore(), policy, logger)

	if err := t.replay(blocks); err != nil {
		return nil, err
	}

	return t, nil
}

// WriteSnapshotFile writes the snapshot of t to path. The data is written to a
// temporary file in the same directory, synced, then renamed over path, so a
// failure never leaves a truncated snapshot behind.
func WriteSnapshotFile(t *Tangle, path string) (err error) {
	data, err := Snapshot(t)
	if err != nil {
		return err
	}

	tmp, err := ioutil.TempFile(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return &PersistenceError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if _, err = w.Write(data); err != nil {
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	if err = w.Flush(); err != nil {
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &PersistenceError{Op: "sync", Path: path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &PersistenceError{Op: "close", Path: path, Err: err}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return &PersistenceError{Op: "rename", Path: path, Err: err}
	}

	return nil
}

// ReadSnapshotFile opens the snapshot at path and restores it.
func ReadSnapshotFile(path string, policy SignaturePolicy, logger *logrus.Entry) (*Tangle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	blocks, err := decodeSnapshot(bufio.NewReader(f))
	if err != nil {
		if pe, ok := err.(*PersistenceError); ok {
			pe.Path = path
		}
		return nil, err
	}

	t := NewTangle(NewInmemStore(), policy, logger)

	if err := t.replay(blocks); err != nil {
		return nil, err
	}

	return t, nil
}

// Import replays the blocks of a snapshot into an existing Tangle, skipping the
// ones it already holds. It has the same ordering rules as Restore, but blocks
// accepted before a failure stay accepted.
func Import(t *Tangle, r io.Reader) (int, error) {
	blocks, err := decodeSnapshot(r)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	before := t.graph.Len()
	err = t.replay(blocks)

	return t.graph.Len() - before, err
}

func decodeSnapshot(r io.Reader) ([]*Block, error) {
	var blocks []*Block
	if err := json.NewDecoder(r).Decode(&blocks); err != nil {
		return nil, &PersistenceError{Op: "decode", Err: err}
	}
	for i, b := range blocks {
		if b == nil {
			return nil, &PersistenceError{Op: "decode", Err: fmt.Errorf("null block at position %d", i)}
		}
	}
	return blocks, nil
}

// replay inserts blocks in multiple passes until every block is placed or a
// pass makes no progress. The caller must hold the write lock or own t
// exclusively.
func (t *Tangle) replay(blocks []*Block) error {
	pending := blocks

	for pass := 1; len(pending) > 0; pass++ {
		var deferred []*Block

		for _, b := range pending {
			err := t.insert(b)
			switch {
			case err == nil:
			case IsMissingParent(err):
				deferred = append(deferred, b)
			default:
				return fmt.Errorf("restoring block %s: %w", b.ID, err)
			}
		}

		if len(deferred) == len(pending) {
			ids := make([]string, len(deferred))
			for i, b := range deferred {
				ids[i] = b.ID
			}
			return UnresolvedBlocksError{IDs: ids}
		}

		if len(deferred) > 0 {
			t.logger.WithFields(logrus.Fields{
				"pass":     pass,
				"deferred": len(deferred),
			}).Debug("Retrying blocks with unresolved parents")
		}

		pending = deferred
	}

	return nil
}
