// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import "github.com/luxfi/lseq/id"

// EncodeID appends x as (u32 count, count * u64 index, u32 replica tag),
// per spec §6.2.
func EncodeID(p *Packer, x id.Id) {
	p.PackUint32(uint32(len(x.Indices)))
	for _, idx := range x.Indices {
		p.PackUint64(idx)
	}
	p.PackUint32(x.ReplicaTag)
}

// DecodeID reads an Id encoded by EncodeID.
func DecodeID(u *Unpacker) (id.Id, error) {
	n := u.UnpackUint32()
	if !u.need(int(n) * 8) {
		return id.Id{}, u.Err
	}
	indices := make([]uint64, n)
	for i := range indices {
		indices[i] = u.UnpackUint64()
	}
	tag := u.UnpackUint32()
	if u.Err != nil {
		return id.Id{}, u.Err
	}
	return id.Id{Indices: indices, ReplicaTag: tag}, nil
}
