// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/lseq/id"
)

func TestIDRoundTrip(t *testing.T) {
	r := require.New(t)

	x := id.New([]uint64{5, 32, 100, 2}, 7)
	p := NewPacker(32)
	EncodeID(p, x)
	r.NoError(p.Err)

	u := NewUnpacker(p.Bytes)
	got, err := DecodeID(u)
	r.NoError(err)
	r.True(x.Equal(got))
}

func TestDecodeIDShortBuffer(t *testing.T) {
	r := require.New(t)
	u := NewUnpacker([]byte{0, 0, 0, 3}) // claims 3 indices, has none
	_, err := DecodeID(u)
	r.Error(err)
}

func TestOpRoundTrip(t *testing.T) {
	r := require.New(t)

	add := AddOp{Items: []AddItem{
		{ID: id.New([]uint64{1}, 0), Payload: 'H'},
		{ID: id.New([]uint64{2}, 0), Payload: 'i'},
	}}
	body, err := EncodeOp(add)
	r.NoError(err)

	decoded, err := DecodeOp(body)
	r.NoError(err)
	got, ok := decoded.(AddOp)
	r.True(ok)
	r.Len(got.Items, 2)
	r.Equal('H', got.Items[0].Payload)
	r.True(add.Items[1].ID.Equal(got.Items[1].ID))

	remove := RemoveOp{IDs: []id.Id{id.New([]uint64{1}, 0)}}
	body, err = EncodeOp(remove)
	r.NoError(err)
	decoded, err = DecodeOp(body)
	r.NoError(err)
	gotRemove, ok := decoded.(RemoveOp)
	r.True(ok)
	r.Len(gotRemove.IDs, 1)

	body, err = EncodeOp(NoopOp{})
	r.NoError(err)
	decoded, err = DecodeOp(body)
	r.NoError(err)
	r.Equal(NoopOp{}, decoded)
}

func TestFrameRoundTrip(t *testing.T) {
	r := require.New(t)

	op := RemoveOp{IDs: []id.Id{id.New([]uint64{9, 9}, 1)}}
	var buf bytes.Buffer
	r.NoError(WriteOp(&buf, op))

	got, err := ReadOp(&buf)
	r.NoError(err)
	removeGot, ok := got.(RemoveOp)
	r.True(ok)
	r.Len(removeGot.IDs, 1)
}

func TestHandshakeRoundTrip(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	buf.Write(EncodeHandshake(42))

	tag, err := ReadHandshake(&buf)
	r.NoError(err)
	r.Equal(uint32(42), tag)
}
