// Package tangle implements an append-only DAG ledger of signed blocks.
//
// A Block carries an opaque payload, the identifiers of the blocks it
// references (its parents), a content-derived identifier, and a signature over
// the same canonical bytes the identifier is derived from. The signer's public
// key travels with the block so verification needs no key registry.
//
// The Tangle accepts a block only if every parent has already been accepted and
// the signature verifies. The accepted set is therefore always closed under
// ancestry: readers never observe a dangling parent reference. Accepted blocks
// are kept in a Store (in-memory, Badger or Bolt) and mirrored by a Graph that
// records parent->child edges.
//
// Snapshot and Restore convert a Tangle to and from a human readable JSON list
// of blocks. Restore replays every block through the normal validation.
package tangle
