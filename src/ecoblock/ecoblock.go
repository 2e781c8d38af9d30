// Package ecoblock assembles a Tangle from a Config: it opens the configured
// block store, replays persisted blocks, and loads the node's signing key.
package ecoblock

import (
	"errors"
	"fmt"
	"os"

	"github.com/ecoblock/ecoblock/src/config"
	"github.com/ecoblock/ecoblock/src/crypto/keys"
	"github.com/ecoblock/ecoblock/src/tangle"
	"github.com/sirupsen/logrus"
)

// Ecoblock is a local ecoblock node.
type Ecoblock struct {
	Config  *config.Config
	Store   tangle.Store
	Tangle  *tangle.Tangle
	Keypair *keys.Keypair

	logger *logrus.Entry
}

// NewEcoblock creates an uninitialised node. Call Init before use.
func NewEcoblock(config *config.Config) *Ecoblock {
	return &Ecoblock{
		Config: config,
		logger: config.Logger(),
	}
}

// Init opens the store and builds the Tangle on top of it.
func (e *Ecoblock) Init() error {
	if err := os.MkdirAll(e.Config.DataDir, 0700); err != nil {
		return err
	}

	if err := e.initStore(); err != nil {
		return err
	}

	if err := e.initTangle(); err != nil {
		e.Store.Close()
		return err
	}

	return nil
}

func (e *Ecoblock) initStore() error {
	var err error

	switch e.Config.Store {
	case config.InmemStore:
		e.Store = tangle.NewInmemStore()
		e.logger.Debug("created new in-mem store")
	case config.BadgerStore:
		path := e.Config.DatabasePath()
		e.logger.WithField("path", path).Debug("Attempting to load or create badger database")
		e.Store, err = tangle.NewBadgerStore(path, e.logger.WithField("prefix", "badger"))
	case config.BoltStore:
		path := e.Config.DatabasePath()
		e.logger.WithField("path", path).Debug("Attempting to load or create bolt database")
		e.Store, err = tangle.NewBoltStore(path)
	default:
		err = fmt.Errorf("unknown store type %q", e.Config.Store)
	}

	return err
}

func (e *Ecoblock) initTangle() error {
	policy := tangle.RequireSignatures
	if e.Config.AllowUnsigned {
		policy = tangle.AllowUnsigned
	}

	e.Tangle = tangle.NewTangle(e.Store, policy, e.logger.WithField("prefix", "tangle"))

	if e.Store.NeedBootstrap() {
		e.logger.WithField("blocks", e.Store.Len()).Debug("Bootstrapping from existing database")
		return e.Tangle.Bootstrap()
	}

	if e.Config.Store != config.InmemStore {
		return nil
	}

	f, err := os.Open(e.Config.SnapshotFile())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &tangle.PersistenceError{Op: "open", Path: e.Config.SnapshotFile(), Err: err}
	}
	defer f.Close()

	n, err := tangle.Import(e.Tangle, f)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"path":   e.Config.SnapshotFile(),
		"blocks": n,
	}).Debug("Loaded snapshot")

	return nil
}

// LoadKey reads the node's private key from the keyfile in the data
// directory.
func (e *Ecoblock) LoadKey() error {
	if e.Keypair != nil {
		return nil
	}

	kp, err := keys.NewSimpleKeyfile(e.Config.Keyfile()).ReadKeypair()
	if err != nil {
		return fmt.Errorf("reading key: %w", err)
	}

	e.Keypair = kp

	return nil
}

// Add signs payload with the node's key and inserts the resulting block. When
// unsigned blocks are allowed and no keyfile exists, the block is left
// unsigned. Any other key error is returned.
func (e *Ecoblock) Add(payload tangle.Payload, parents []string) (*tangle.Block, error) {
	var (
		block *tangle.Block
		err   error
	)

	if kerr := e.LoadKey(); kerr == nil {
		block, err = tangle.NewBlock(payload, parents, e.Keypair)
	} else if e.Config.AllowUnsigned && errors.Is(kerr, os.ErrNotExist) {
		e.logger.WithError(kerr).Debug("No key, adding unsigned block")
		block, err = tangle.NewUnsignedBlock(parents, payload)
	} else {
		return nil, kerr
	}
	if err != nil {
		return nil, err
	}

	if err := e.Tangle.Insert(block); err != nil {
		return nil, err
	}

	e.logger.WithField("block", block.ID).Info("Added block")

	return block, nil
}

// Save writes the snapshot file when the node runs on the in-memory store.
// Persistent stores are written on every insert and need no saving.
func (e *Ecoblock) Save() error {
	if e.Config.Store != config.InmemStore {
		return nil
	}
	return tangle.WriteSnapshotFile(e.Tangle, e.Config.SnapshotFile())
}

// Close saves the node and closes its store.
func (e *Ecoblock) Close() error {
	if e.Tangle == nil {
		return nil
	}
	if err := e.Save(); err != nil {
		e.Tangle.Close()
		return err
	}
	return e.Tangle.Close()
}

// Keygen creates a new private key in the keyfile of datadir. It refuses to
// overwrite an existing key.
func Keygen(datadir string) (*keys.Keypair, error) {
	conf := config.NewDefaultConfig()
	conf.DataDir = datadir

	keyfile := keys.NewSimpleKeyfile(conf.Keyfile())

	if _, err := keyfile.ReadKey(); err == nil {
		return nil, fmt.Errorf("another key already lives under %s", datadir)
	}

	priv, err := keys.GenerateKey()
	if err != nil {
		return nil, err
	}

	if err := keyfile.WriteKey(priv); err != nil {
		return nil, err
	}

	return keys.NewKeypair(priv), nil
}
