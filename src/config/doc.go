// Package config defines the configuration for an ecoblock node.
//
// Whether ecoblock is used as a library or from the command line, the Config
// object defined in this package carries the configuration options. On top of
// these options, ecoblock relies on a data directory, defined by
// Config.DataDir, where it expects to find:
//
//  priv_key     // a plain text file containing the hex private key (cf. ecoblock keygen).
//  tangle.json  // the JSON snapshot used by the in-memory store.
//  badger_db    // the badger database, when store=badger.
//  tangle.db    // the bbolt database, when store=bolt.
//  ecoblock.log // a copy of the log output of the CLI.
package config
