// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxFrameBytes bounds a single frame so a corrupt or adversarial length
// prefix cannot force an unbounded allocation.
const maxFrameBytes = 16 << 20

// EncodeFrame wraps body in the operation envelope: a u32 length prefix in
// little-endian (spec §6.2 — this is a bit-exact inherited constraint, and
// deliberately NOT the same byte order as the ids/tags inside body).
func EncodeFrame(body []byte) []byte {
	out := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(out[:4], uint32(len(body)))
	copy(out[4:], body)
	return out
}

// ReadFrame reads one length-prefixed frame body from r.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > maxFrameBytes {
		return nil, fmt.Errorf("wire: frame length %d exceeds maximum %d", n, maxFrameBytes)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}

// WriteOp frames and writes a single Op to w.
func WriteOp(w io.Writer, op Op) error {
	body, err := EncodeOp(op)
	if err != nil {
		return err
	}
	_, err = w.Write(EncodeFrame(body))
	return err
}

// ReadOp reads and decodes a single framed Op from r.
func ReadOp(r io.Reader) (Op, error) {
	body, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	return DecodeOp(body)
}

// EncodeHandshake renders the node-id handshake: a single big-endian u32
// replica tag, sent by the broadcast hub to each joining replica.
func EncodeHandshake(replicaTag uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], replicaTag)
	return b[:]
}

// ReadHandshake reads the replica tag a hub assigned on join.
func ReadHandshake(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}
