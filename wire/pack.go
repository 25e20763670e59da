// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wire implements the binary framing consumed by the broadcast
// fabric collaborator (spec §6.2): identifier encoding, the Add/Remove/Noop
// operation vocabulary, the length-prefixed operation envelope, and the
// replica-tag handshake. None of this is the allocator's concern — it
// exists so cmd/lseqd and cmd/lseqc have a bit-exact contract to speak.
package wire

import "fmt"

// Packer accumulates bytes for a wire message, sticking the first error it
// hits in Err so callers can chain Pack* calls without checking each one.
// Modeled on the teacher's utils/wrappers.Packer.
type Packer struct {
	Bytes []byte
	Err   error
}

// NewPacker returns a Packer with size bytes of spare capacity.
func NewPacker(size int) *Packer {
	return &Packer{Bytes: make([]byte, 0, size)}
}

// PackByte appends a single byte.
func (p *Packer) PackByte(b byte) {
	if p.Err != nil {
		return
	}
	p.Bytes = append(p.Bytes, b)
}

// PackBytes appends a raw byte slice without a length prefix.
func (p *Packer) PackBytes(b []byte) {
	if p.Err != nil {
		return
	}
	p.Bytes = append(p.Bytes, b...)
}

// PackUint32 appends v as 4 big-endian bytes.
func (p *Packer) PackUint32(v uint32) {
	if p.Err != nil {
		return
	}
	p.Bytes = append(p.Bytes, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// PackUint64 appends v as 8 big-endian bytes.
func (p *Packer) PackUint64(v uint64) {
	if p.Err != nil {
		return
	}
	p.Bytes = append(p.Bytes,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// Unpacker reads bytes off a wire message in the same order a Packer wrote
// them, sticking the first error (usually a short buffer) in Err.
type Unpacker struct {
	Bytes  []byte
	Offset int
	Err    error
}

// NewUnpacker wraps b for sequential reads.
func NewUnpacker(b []byte) *Unpacker {
	return &Unpacker{Bytes: b}
}

func (u *Unpacker) need(n int) bool {
	if u.Err != nil {
		return false
	}
	if u.Offset+n > len(u.Bytes) {
		u.Err = fmt.Errorf("wire: need %d bytes at offset %d, have %d", n, u.Offset, len(u.Bytes))
		return false
	}
	return true
}

// UnpackByte reads a single byte.
func (u *Unpacker) UnpackByte() byte {
	if !u.need(1) {
		return 0
	}
	b := u.Bytes[u.Offset]
	u.Offset++
	return b
}

// UnpackUint32 reads 4 big-endian bytes.
func (u *Unpacker) UnpackUint32() uint32 {
	if !u.need(4) {
		return 0
	}
	b := u.Bytes[u.Offset : u.Offset+4]
	u.Offset += 4
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// UnpackUint64 reads 8 big-endian bytes.
func (u *Unpacker) UnpackUint64() uint64 {
	if !u.need(8) {
		return 0
	}
	b := u.Bytes[u.Offset : u.Offset+8]
	u.Offset += 8
	return uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
		uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])
}
