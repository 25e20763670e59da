// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"fmt"

	"github.com/luxfi/lseq/id"
)

// Kind tags which operation a decoded Op body holds.
type Kind byte

const (
	KindAdd Kind = iota
	KindRemove
	KindNoop
)

// Op is the enclosing CRDT vocabulary the broadcast fabric ships: Add,
// Remove, and Noop (spec §6.2).
type Op interface {
	Kind() Kind
	encodeBody(p *Packer)
}

// AddItem pairs a minted Id with the single rune it carries in the buffer.
type AddItem struct {
	ID      id.Id
	Payload rune
}

// AddOp inserts items into the consuming buffer.
type AddOp struct {
	Items []AddItem
}

func (AddOp) Kind() Kind { return KindAdd }

func (o AddOp) encodeBody(p *Packer) {
	p.PackUint32(uint32(len(o.Items)))
	for _, it := range o.Items {
		EncodeID(p, it.ID)
		p.PackUint32(uint32(it.Payload))
	}
}

// RemoveOp deletes previously added ids from the consuming buffer.
type RemoveOp struct {
	IDs []id.Id
}

func (RemoveOp) Kind() Kind { return KindRemove }

func (o RemoveOp) encodeBody(p *Packer) {
	p.PackUint32(uint32(len(o.IDs)))
	for _, x := range o.IDs {
		EncodeID(p, x)
	}
}

// NoopOp carries no payload; a receiver has nothing to apply for it.
type NoopOp struct{}

func (NoopOp) Kind() Kind          { return KindNoop }
func (NoopOp) encodeBody(*Packer) {}

// EncodeOp serializes an Op as (u8 kind, body).
func EncodeOp(op Op) ([]byte, error) {
	p := NewPacker(64)
	p.PackByte(byte(op.Kind()))
	op.encodeBody(p)
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Bytes, nil
}

// DecodeOp parses a byte slice written by EncodeOp.
func DecodeOp(b []byte) (Op, error) {
	u := NewUnpacker(b)
	kind := Kind(u.UnpackByte())

	switch kind {
	case KindAdd:
		n := u.UnpackUint32()
		// Coarse pre-allocation guard: every AddItem takes at least 8 bytes
		// (a zero-index id is its u32 count plus its u32 tag; the u32
		// payload adds 4 more), so a corrupt or adversarial n this far out
		// of range can't be real.
		// This does not validate the body — DecodeID and the UnpackUint32
		// calls below do that, item by item, as the loop runs.
		if !u.need(int(n) * 8) {
			return nil, u.Err
		}
		items := make([]AddItem, n)
		for i := range items {
			x, err := DecodeID(u)
			if err != nil {
				return nil, err
			}
			items[i] = AddItem{ID: x, Payload: rune(u.UnpackUint32())}
		}
		if u.Err != nil {
			return nil, u.Err
		}
		return AddOp{Items: items}, nil

	case KindRemove:
		n := u.UnpackUint32()
		// Same coarse pre-allocation guard as KindAdd above: a zero-index
		// id plus its u32 tag is 8 bytes at minimum.
		if !u.need(int(n) * 8) {
			return nil, u.Err
		}
		ids := make([]id.Id, n)
		for i := range ids {
			x, err := DecodeID(u)
			if err != nil {
				return nil, err
			}
			ids[i] = x
		}
		if u.Err != nil {
			return nil, u.Err
		}
		return RemoveOp{IDs: ids}, nil

	case KindNoop:
		if u.Err != nil {
			return nil, u.Err
		}
		return NoopOp{}, nil

	default:
		return nil, fmt.Errorf("wire: unknown op kind %d", kind)
	}
}
