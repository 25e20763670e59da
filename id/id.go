// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package id defines the identifier type minted by the lseq allocator: an
// immutable, totally ordered key carrying a path of per-level indices plus
// the tag of the replica that minted it.
package id

import (
	"fmt"
	"strings"
)

// Id is an immutable position in the implicit allocation tree, plus the
// tag of the replica that minted it. The zero value is not a valid Id —
// every Id returned by an allocator has a non-empty Indices.
type Id struct {
	// Indices is the path from the root: Indices[k] is the position within
	// level k of the allocation tree.
	Indices []uint64
	// ReplicaTag names the allocator that minted this Id.
	ReplicaTag uint32
}

// New returns an Id with its own copy of indices.
func New(indices []uint64, replicaTag uint32) Id {
	return Id{
		Indices:    append([]uint64(nil), indices...),
		ReplicaTag: replicaTag,
	}
}

// Depth is the number of indices, i.e. one more than the zero-based level
// of this Id's deepest index.
func (id Id) Depth() int {
	return len(id.Indices)
}

// At returns the index at level, and whether level is within depth.
func (id Id) At(level int) (uint64, bool) {
	if level < 0 || level >= len(id.Indices) {
		return 0, false
	}
	return id.Indices[level], true
}

// Clone returns a deep copy; callers that must not alias another Id's
// backing array should clone before mutating.
func (id Id) Clone() Id {
	return New(id.Indices, id.ReplicaTag)
}

// Truncate returns a clone keeping exactly depth leading indices.
func (id Id) Truncate(depth int) Id {
	if depth > len(id.Indices) {
		depth = len(id.Indices)
	}
	return New(id.Indices[:depth], id.ReplicaTag)
}

// WithIndex returns a clone of id truncated to level+1 levels with the
// entry at level replaced by n.
func (id Id) WithIndex(level int, n uint64) Id {
	out := id.Truncate(level + 1)
	out.Indices[level] = n
	return out
}

// Append returns a clone with n appended as a new deepest level.
func (id Id) Append(n uint64) Id {
	out := make([]uint64, len(id.Indices)+1)
	copy(out, id.Indices)
	out[len(id.Indices)] = n
	return Id{Indices: out, ReplicaTag: id.ReplicaTag}
}

// Compare implements the total order from the spec: indices compare
// lexicographically first (a strict prefix sorts below any extension),
// then, for equal indices, ReplicaTag breaks the tie. Returns -1, 0, or 1.
func (id Id) Compare(other Id) int {
	if c := compareIndices(id.Indices, other.Indices); c != 0 {
		return c
	}
	switch {
	case id.ReplicaTag < other.ReplicaTag:
		return -1
	case id.ReplicaTag > other.ReplicaTag:
		return 1
	default:
		return 0
	}
}

// Less reports whether id sorts strictly before other.
func (id Id) Less(other Id) bool {
	return id.Compare(other) < 0
}

// Equal reports structural equality of both fields.
func (id Id) Equal(other Id) bool {
	return id.Compare(other) == 0
}

func compareIndices(a, b []uint64) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// String renders an Id as "[i0.i1.i2]@tag", useful for logs and test
// failure output.
func (id Id) String() string {
	parts := make([]string, len(id.Indices))
	for i, v := range id.Indices {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("[%s]@%d", strings.Join(parts, "."), id.ReplicaTag)
}
