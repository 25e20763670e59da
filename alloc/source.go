// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package alloc

import "math/rand"

// Source is a process-local source of randomness. An Allocator holds one
// per replica to avoid contention with other replicas' allocators; nothing
// stops a caller from sharing a thread-safe Source across allocators.
type Source interface {
	Uint64() uint64
}

type randSource struct {
	*rand.Rand
}

// NewSource returns a Source seeded from the runtime's default entropy.
// Two allocators constructed with NewSource will, in general, make
// different (but equally valid) strategy choices — tests that need
// reproducible identifiers should use NewDeterministicSource instead.
func NewSource() Source {
	return &randSource{rand.New(rand.NewSource(rand.Int63()))}
}

// NewDeterministicSource returns a Source seeded deterministically, for
// tests that assert on the shape (not the literal values) of generated
// identifiers across repeated runs.
func NewDeterministicSource(seed int64) Source {
	return &randSource{rand.New(rand.NewSource(seed))}
}
