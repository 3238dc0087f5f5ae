package ast

import (
	"reflect"

	"github.com/mitchellh/hashstructure"
)

// Equal reports whether two Expr trees are structurally identical.
// Equality is deterministic over the full tree: two trees built from
// identical constructor calls are always Equal, regardless of when or
// where they were built.
func Equal(a, b Expr) bool {
	return reflect.DeepEqual(a, b)
}

// QueryEqual reports whether two Query trees are structurally
// identical.
func QueryEqual(a, b Query) bool {
	return reflect.DeepEqual(a, b)
}

// Fingerprint computes a deterministic structural hash of an Expr tree.
// Two structurally Equal trees always produce the same fingerprint, so
// it is safe to use as a prepared-statement or plan cache key alongside
// the dialect and version that produced it.
func Fingerprint(e Expr) (uint64, error) {
	return hashstructure.Hash(e, nil)
}

// QueryFingerprint computes a deterministic structural hash of a Query
// tree, for the same cache-key purpose as Fingerprint.
func QueryFingerprint(q Query) (uint64, error) {
	return hashstructure.Hash(q, nil)
}
