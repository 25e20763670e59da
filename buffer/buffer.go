// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package buffer implements the editor buffer collaborator described in
// spec §1: a sorted sequence of (Id, rune) pairs that consumes the
// allocator to mint local edits and merges remote Add/Remove operations by
// identifier order alone. It is explicitly out of the allocator core; it
// exists so the shape sketched in original_source/examples/ed/client.rs
// has a concrete, idiomatic Go home.
package buffer

import (
	"sort"
	"strings"

	"github.com/luxfi/log"

	"github.com/luxfi/lseq/alloc"
	"github.com/luxfi/lseq/id"
	"github.com/luxfi/lseq/wire"
)

type entry struct {
	id id.Id
	ch rune
}

// Buffer is a single replica's view of a shared ordered sequence.
type Buffer struct {
	alloc   *alloc.Allocator
	entries []entry
	log     log.Logger
}

// New returns an empty Buffer driven by alloc for minting local edits.
func New(a *alloc.Allocator, l log.Logger) *Buffer {
	return &Buffer{alloc: a, log: l}
}

// Len returns the number of live entries.
func (b *Buffer) Len() int {
	return len(b.entries)
}

// String renders the buffer's current content.
func (b *Buffer) String() string {
	var sb strings.Builder
	for _, e := range b.entries {
		sb.WriteRune(e.ch)
	}
	return sb.String()
}

func (b *Buffer) idBefore(pos int) id.Id {
	if pos <= 0 {
		return b.alloc.Begin()
	}
	return b.entries[pos-1].id
}

func (b *Buffer) idAt(pos int) id.Id {
	if pos >= len(b.entries) {
		return b.alloc.End()
	}
	return b.entries[pos].id
}

// Append mints ids after the last entry (or Begin, if empty) for each rune
// of s and returns the wire items for broadcast.
func (b *Buffer) Append(s string) []wire.AddItem {
	return b.InsertAt(len(b.entries), s)
}

// InsertAt mints ids strictly between the neighbors of pos for each rune of
// s, inserts them locally, and returns the wire items for broadcast.
func (b *Buffer) InsertAt(pos int, s string) []wire.AddItem {
	if pos < 0 {
		pos = 0
	}
	if pos > len(b.entries) {
		pos = len(b.entries)
	}

	prev := b.idBefore(pos)
	next := b.idAt(pos)

	items := make([]wire.AddItem, 0, len(s))
	offset := 0
	for _, c := range s {
		var x id.Id
		if prev.Equal(next) {
			x = b.alloc.NewID(prev, prev)
		} else {
			x = b.alloc.NewID(prev, next)
		}
		b.insertEntryAt(pos+offset, entry{id: x, ch: c})
		items = append(items, wire.AddItem{ID: x, Payload: c})
		prev = x
		offset++
	}
	if b.log != nil {
		b.log.Debug("buffer append", "pos", pos, "n", len(items))
	}
	return items
}

// Delete removes the run [pos, pos+length) and returns the removed ids so
// the caller can broadcast a RemoveOp. It does not tombstone: spec §1
// excludes tombstone GC from the core, and a thin buffer consumer has no
// reason to keep what it has already removed.
func (b *Buffer) Delete(pos, length int) []id.Id {
	if pos < 0 {
		pos = 0
	}
	end := pos + length
	if end > len(b.entries) {
		end = len(b.entries)
	}
	if pos >= end {
		return nil
	}

	removed := make([]id.Id, end-pos)
	for i, e := range b.entries[pos:end] {
		removed[i] = e.id
	}
	b.entries = append(b.entries[:pos], b.entries[end:]...)
	return removed
}

// ApplyAdd merges remotely-minted items by identifier order, regardless of
// arrival order (spec §8.2 S6). It does not deduplicate against entries
// already present; merging and dedup policy belong to the consumer, per
// spec §1 Non-goals.
func (b *Buffer) ApplyAdd(items []wire.AddItem) {
	for _, it := range items {
		pos := sort.Search(len(b.entries), func(i int) bool {
			return it.ID.Less(b.entries[i].id)
		})
		b.insertEntryAt(pos, entry{id: it.ID, ch: it.Payload})
	}
}

// ApplyRemove removes entries matching ids, if present.
func (b *Buffer) ApplyRemove(ids []id.Id) {
	for _, x := range ids {
		pos := sort.Search(len(b.entries), func(i int) bool {
			return !b.entries[i].id.Less(x)
		})
		if pos < len(b.entries) && b.entries[pos].id.Equal(x) {
			b.entries = append(b.entries[:pos], b.entries[pos+1:]...)
		}
	}
}

func (b *Buffer) insertEntryAt(pos int, e entry) {
	b.entries = append(b.entries, entry{})
	copy(b.entries[pos+1:], b.entries[pos:])
	b.entries[pos] = e
}
