// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package alloc implements the LSEQ allocation tree: a per-replica
// generator of identifiers that are strictly between two caller-supplied
// bounds, via a growing bit-vector of per-level low/high boundary
// strategies. See spec §3.2 and §4 for the algorithm this package follows.
package alloc

import (
	"fmt"

	"github.com/luxfi/log"

	"github.com/luxfi/lseq/id"
)

const (
	// defaultInitialWidth is W0, the width of level 0. Doubling per level
	// (width(k) = W0 * 2^k) keeps identifier growth logarithmic under
	// insertion concentrated at a single point.
	defaultInitialWidth uint64 = 16
	// defaultBoundary is B, the boundary parameter capping the random
	// sub-range pick_index draws from. Not currently configurable past
	// construction-time Option, and intentionally small.
	defaultBoundary uint64 = 10
)

// highBoundary and lowBoundary name the two per-level pick_index
// strategies a direction bit selects between.
const (
	lowBoundary  = false
	highBoundary = true
)

// Allocator is a per-replica identifier generator. It is not safe for
// concurrent use: the spec models a replica as single-threaded, and
// directions/rng mutate on every NewID call. A consumer sharing one
// Allocator across goroutines must serialize access itself.
type Allocator struct {
	replicaTag uint32
	directions []bool
	width0     uint64
	boundary   uint64
	rng        Source
	log        log.Logger
	observer   Observer
}

// Option configures an Allocator at construction time.
type Option func(*Allocator)

// WithInitialWidth overrides W0 (default 16).
func WithInitialWidth(w uint64) Option {
	return func(a *Allocator) { a.width0 = w }
}

// WithBoundary overrides B (default 10).
func WithBoundary(b uint64) Option {
	return func(a *Allocator) { a.boundary = b }
}

// WithSource overrides the randomness source, e.g. for deterministic tests.
func WithSource(s Source) Option {
	return func(a *Allocator) { a.rng = s }
}

// WithLogger attaches a logger; a nil logger (the default) disables
// per-call tracing.
func WithLogger(l log.Logger) Option {
	return func(a *Allocator) { a.log = l }
}

// Observer receives the depth of every identifier this allocator mints,
// for metrics collection. See metrics.AllocatorCollector.
type Observer interface {
	Observe(depth int)
}

// WithObserver attaches an Observer; a nil observer (the default) disables
// metrics collection.
func WithObserver(o Observer) Option {
	return func(a *Allocator) { a.observer = o }
}

// New constructs an Allocator for replicaTag and eagerly samples
// directions[0], per the public contract in spec §6.1.
func New(replicaTag uint32, opts ...Option) *Allocator {
	a := &Allocator{
		replicaTag: replicaTag,
		width0:     defaultInitialWidth,
		boundary:   defaultBoundary,
		rng:        NewSource(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.directionAt(0)
	return a
}

// Begin returns the sentinel identifier that compares strictly below any
// identifier this allocator will ever mint for itself.
func (a *Allocator) Begin() id.Id {
	return id.New([]uint64{0}, a.replicaTag)
}

// End returns the sentinel identifier that compares strictly above any
// content this allocator's replica will ever insert.
func (a *Allocator) End() id.Id {
	return id.New([]uint64{a.width0 - 1}, a.replicaTag)
}

// ReplicaTag returns the tag this allocator stamps on every minted Id.
func (a *Allocator) ReplicaTag() uint32 {
	return a.replicaTag
}

// width returns W_level = W0 * 2^level.
func (a *Allocator) width(level int) uint64 {
	return a.width0 << uint(level)
}

// NewID returns a fresh identifier x with low < x and, when low < high,
// x < high. Preconditions (spec §4.1) are enforced by panicking: the
// allocator treats a violation as a programmer error, never a recoverable
// condition.
func (a *Allocator) NewID(low, high id.Id) id.Id {
	if low.Depth() < 1 {
		panic("alloc: low must have depth >= 1")
	}
	if high.Depth() < 1 {
		panic("alloc: high must have depth >= 1")
	}
	if high.Less(low) {
		panic(fmt.Sprintf("alloc: low (%s) must be <= high (%s)", low, high))
	}

	var result id.Id
	if low.Equal(high) {
		result = a.equalBoundsNext(low)
	} else {
		level := a.descend(low, high)
		result = a.phase2(level, low, high)
	}
	result.ReplicaTag = a.replicaTag

	if a.log != nil {
		a.log.Debug("minted id", "id", result.String(), "low", low.String(), "high", high.String())
	}
	if a.observer != nil {
		a.observer.Observe(result.Depth())
	}
	return result
}

// descend implements Phase 1 (tandem descent): walk low and high in
// lockstep until one side runs out of indices or the two paths diverge,
// and return the level at which Phase 2 should begin.
func (a *Allocator) descend(low, high id.Id) int {
	level := 0
	for {
		lowDepth, highDepth := low.Depth(), high.Depth()
		if level == lowDepth-1 || level == highDepth-1 {
			return level
		}
		lv, _ := low.At(level)
		hv, _ := high.At(level)
		if lv < hv {
			return level
		}
		level++
	}
}

// phase2 implements Phase 2 (bounded insertion at level) and its Case
// B descent, recursing to a deeper level or into phase2b as needed.
func (a *Allocator) phase2(level int, low, high id.Id) id.Id {
	lv, lok := low.At(level)
	hv, hok := high.At(level)
	if !lok || !hok {
		panic(fmt.Sprintf("alloc: phase2 entered at level %d without both bounds defined", level))
	}

	if hv-lv >= 2 {
		// Case A: room exists at this level.
		n := a.pickIndex(level, lv, hv)
		return low.WithIndex(level, n)
	}

	// Case B: no room (hv-lv == 1 or hv == lv). Descend.
	if low.Depth() > level+1 || high.Depth() == level+1 {
		return a.phase2b(level+1, low)
	}
	// low ends here (low.Depth() == level+1) and high has a deeper level:
	// extend low with a fresh index 0 and keep comparing against high.
	extendedLow := low.Append(0)
	return a.phase2(level+1, extendedLow, high)
}

// phase2b implements Phase 2b (below-only bounds at level): low has no
// known upper neighbor at this level, so the implicit right boundary is
// the full width.
func (a *Allocator) phase2b(level int, low id.Id) id.Id {
	w := a.width(level)
	if v, ok := low.At(level); ok {
		if v < w-1 {
			rhs := low.WithIndex(level, w-1)
			return a.phase2(level, low, rhs)
		}
		// low is already maxed out at this level (v == w-1): truncating it
		// away and replacing it with a fresh, possibly smaller index would
		// produce x <= low. Descend past it instead, same as
		// equalBoundsNext does when its last level has no room left.
		return a.phase2b(level+1, low)
	}
	n := a.pickIndex(level, 0, w)
	return low.Truncate(level).Append(n)
}

// equalBoundsNext implements the §4.3 shortcut for low == high: extend at
// the last shared level if room remains, otherwise grow one level deeper.
func (a *Allocator) equalBoundsNext(low id.Id) id.Id {
	lastLevel := low.Depth() - 1
	lastVal, _ := low.At(lastLevel)
	w := a.width(lastLevel)
	if lastVal+1 < w {
		n := a.pickIndex(lastLevel, lastVal, w)
		return low.WithIndex(lastLevel, n)
	}
	nextLevel := lastLevel + 1
	n := a.pickIndex(nextLevel, 0, a.width(nextLevel))
	return low.Append(n)
}

// directionAt returns the strategy bit for level, sampling and recording a
// fresh bit the first time a level is consulted. Levels may not be
// skipped: the direction vector grows by exactly one bit at a time.
func (a *Allocator) directionAt(level int) bool {
	if level < len(a.directions) {
		return a.directions[level]
	}
	if level == len(a.directions) {
		d := a.rng.Uint64()%2 == 0
		a.directions = append(a.directions, d)
		return d
	}
	panic(fmt.Sprintf("alloc: skipped direction level %d (have %d levels)", level, len(a.directions)))
}

// pickIndex returns n strictly between lo and hi (both endpoints
// excluded), per spec §4.4. Requires lo+1 < hi.
func (a *Allocator) pickIndex(level int, lo, hi uint64) uint64 {
	if lo+1 >= hi {
		panic(fmt.Sprintf("alloc: pick_index requires lo+1 < hi, got lo=%d hi=%d", lo, hi))
	}

	l, u := lo, hi
	if a.directionAt(level) == highBoundary {
		if hi > a.boundary+1 && hi-(a.boundary+1) > lo {
			l = hi - (a.boundary + 1)
		}
	} else {
		if lo+a.boundary < hi {
			u = lo + a.boundary
		}
	}
	return uniform(a.rng, l, u)
}

// uniform samples n from the open interval (l, u), l+1 < u.
func uniform(rng Source, l, u uint64) uint64 {
	span := u - l - 1
	return l + 1 + rng.Uint64()%span
}
