// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/lseq/id"
)

func newTestAllocator(tag uint32, seed int64) *Allocator {
	return New(tag, WithSource(NewDeterministicSource(seed)))
}

// S1 basic chain.
func TestBasicChain(t *testing.T) {
	r := require.New(t)
	a := newTestAllocator(0, 1)

	begin, end := a.Begin(), a.End()
	prev := begin
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		x := a.NewID(prev, end)
		r.True(prev.Less(x), "iteration %d: %s < %s", i, prev, x)
		r.True(x.Less(end), "iteration %d: %s < %s", i, x, end)
		r.False(seen[x.String()], "duplicate id %s at iteration %d", x, i)
		seen[x.String()] = true
		prev = x
	}
}

// S2 left-dense.
func TestLeftDense(t *testing.T) {
	r := require.New(t)
	a := newTestAllocator(0, 2)

	first := a.Begin()
	prev := a.End()
	for i := 0; i < 200; i++ {
		next := a.NewID(first, prev)
		r.True(first.Less(next))
		r.True(next.Less(prev))
		prev = next
	}
}

// S3 right-dense.
func TestRightDense(t *testing.T) {
	r := require.New(t)
	a := newTestAllocator(0, 3)

	last := a.End()
	prev := a.Begin()
	for i := 0; i < 200; i++ {
		next := a.NewID(prev, last)
		r.True(prev.Less(next))
		r.True(next.Less(last))
		prev = next
	}
}

// S4 random interleave.
func TestRandomInterleave(t *testing.T) {
	r := require.New(t)
	a := newTestAllocator(0, 4)

	ids := []id.Id{a.Begin(), a.End()}
	rng := NewDeterministicSource(5)

	for i := 0; i < 200; i++ {
		pi := int(rng.Uint64() % uint64(len(ids)))
		pj := int(rng.Uint64() % uint64(len(ids)))
		for pj == pi {
			pj = int(rng.Uint64() % uint64(len(ids)))
		}
		p, q := ids[pi], ids[pj]
		if q.Less(p) {
			p, q = q, p
		}

		x := a.NewID(p, q)
		r.True(p.Less(x), "iter %d: %s < %s", i, p, x)
		r.True(x.Less(q), "iter %d: %s < %s", i, x, q)
		ids = append(ids, x)
	}

	for i := 1; i < len(ids); i++ {
		for j := 0; j < i; j++ {
			if ids[i].Equal(ids[j]) {
				t.Fatalf("duplicate id minted: %s", ids[i])
			}
		}
	}
}

func TestInvariantUniquenessAcrossManyCalls(t *testing.T) {
	r := require.New(t)
	a := New(7, WithSource(NewDeterministicSource(42)))

	seen := map[string]bool{}
	prev := a.Begin()
	end := a.End()
	for i := 0; i < 500; i++ {
		x := a.NewID(prev, end)
		r.False(seen[x.String()])
		seen[x.String()] = true
		prev = x
	}
}

func TestReplicaAttribution(t *testing.T) {
	r := require.New(t)
	a := New(99, WithSource(NewDeterministicSource(1)))
	x := a.NewID(a.Begin(), a.End())
	r.Equal(uint32(99), x.ReplicaTag)
}

func TestDirectionStability(t *testing.T) {
	r := require.New(t)
	a := New(0, WithSource(NewDeterministicSource(10)))

	for level := 0; level < 8; level++ {
		first := a.directionAt(level)
		second := a.directionAt(level)
		r.Equal(first, second)
	}
}

func TestDirectionSkipPanics(t *testing.T) {
	r := require.New(t)
	a := New(0, WithSource(NewDeterministicSource(11)))
	r.Panics(func() { a.directionAt(5) })
}

func TestWidthBound(t *testing.T) {
	r := require.New(t)
	a := New(0, WithSource(NewDeterministicSource(12)))

	prev := a.Begin()
	end := a.End()
	for i := 0; i < 300; i++ {
		x := a.NewID(prev, end)
		for level, idx := range x.Indices {
			r.Less(idx, a.width(level), "index %d at level %d exceeds width", idx, level)
		}
		prev = x
	}
}

func TestNewIDPanicsOnUnorderedBounds(t *testing.T) {
	r := require.New(t)
	a := New(0, WithSource(NewDeterministicSource(13)))
	low := id.New([]uint64{5}, 0)
	high := id.New([]uint64{1}, 0)
	r.Panics(func() { a.NewID(low, high) })
}

func TestNewIDPanicsOnZeroDepth(t *testing.T) {
	r := require.New(t)
	a := New(0, WithSource(NewDeterministicSource(14)))
	zero := id.Id{}
	r.Panics(func() { a.NewID(zero, a.End()) })
	r.Panics(func() { a.NewID(a.Begin(), zero) })
}

// The allocator's own sentinels are ordered: Begin sorts strictly below
// End. (S5 equal-index ordering is a pure id.Id property, tested in
// id/id_test.go.)
func TestSentinelOrdering(t *testing.T) {
	r := require.New(t)
	a := New(0, WithSource(NewDeterministicSource(15)))
	r.True(a.Begin().Less(a.End()))
}

// Property: for a+2<=b, pickIndex always returns n with a<n<b, for many
// levels and both direction bits.
func TestPickIndexStaysWithinOpenInterval(t *testing.T) {
	r := require.New(t)
	a := New(0, WithSource(NewDeterministicSource(16)))

	cases := []struct{ lo, hi uint64 }{
		{0, 16}, {0, 2}, {3, 5}, {100, 1000}, {0, 32},
	}
	for level := 0; level < 20; level++ {
		for _, c := range cases {
			for i := 0; i < 20; i++ {
				n := a.pickIndex(level, c.lo, c.hi)
				r.Greater(n, c.lo)
				r.Less(n, c.hi)
			}
		}
	}
}

func TestEqualBoundsShortcut(t *testing.T) {
	r := require.New(t)
	a := New(0, WithSource(NewDeterministicSource(17)))

	low := a.NewID(a.Begin(), a.End())
	for i := 0; i < 50; i++ {
		next := a.NewID(low, low)
		r.True(low.Less(next), "iter %d: %s < %s", i, low, next)
		low = next
	}
}

// TestPhase2bDescendsPastMaxedLevel covers the case where low is already
// maxed out (index W-1) at the level Phase 2b enters: it must descend past
// that level rather than truncating it away, or x <= low.
func TestPhase2bDescendsPastMaxedLevel(t *testing.T) {
	r := require.New(t)
	a := New(0, WithSource(NewDeterministicSource(19))) // width0 = 16, so width(1) = 32

	low := id.New([]uint64{5, 31}, 0) // 31 is the max index at level 1
	high := id.New([]uint64{6}, 0)

	for i := 0; i < 50; i++ {
		x := a.NewID(low, high)
		r.True(low.Less(x), "iter %d: %s < %s", i, low, x)
		r.True(x.Less(high), "iter %d: %s < %s", i, x, high)
	}
}

func TestPreservesInvariantsWithGeneratedBounds(t *testing.T) {
	r := require.New(t)
	a := New(0, WithSource(NewDeterministicSource(18)))

	low := a.Begin()
	high := a.End()
	for i := 0; i < 100; i++ {
		x := a.NewID(low, high)
		r.True(low.Less(x))
		r.True(x.Less(high))
		// Shrink the window around the freshly minted id for next round.
		if i%2 == 0 {
			high = x
		} else {
			low = x
		}
	}
}
