// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config holds the tunable knobs for an allocator and a broadcast
// hub, in the teacher's plain-struct-plus-Validate idiom (config/config.go):
// no env/flag library here, since cmd/lseqd and cmd/lseqc build a
// Parameters by hand from cobra flags.
package config

import (
	"errors"
	"time"
)

// Validation errors.
var (
	ErrInitialWidthTooLow = errors.New("initial width must be >= 2")
	ErrBoundaryTooLow     = errors.New("boundary must be >= 2")
	ErrDialTimeoutTooLow  = errors.New("dial timeout must be >= 1ms")
)

// Parameters configures an allocator and the hub it talks to.
type Parameters struct {
	// InitialWidth is W0, the width of level 0 of the allocation tree.
	InitialWidth uint64
	// Boundary is B, the cap on pick_index's random sub-range.
	Boundary uint64
	// HubAddr is the broadcast hub's listen/dial address.
	HubAddr string
	// DialTimeout bounds how long a replica waits to join a hub.
	DialTimeout time.Duration
}

// DefaultParameters returns the spec's reference values: W0=16, B=10.
func DefaultParameters() Parameters {
	return Parameters{
		InitialWidth: 16,
		Boundary:     10,
		HubAddr:      "127.0.0.1:7878",
		DialTimeout:  5 * time.Second,
	}
}

// Validate reports the first parameter that fails a sanity check.
func (p Parameters) Validate() error {
	if p.InitialWidth < 2 {
		return ErrInitialWidthTooLow
	}
	if p.Boundary < 2 {
		return ErrBoundaryTooLow
	}
	if p.DialTimeout < time.Millisecond {
		return ErrDialTimeoutTooLow
	}
	return nil
}
