// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultParametersAreValid(t *testing.T) {
	require.New(t).NoError(DefaultParameters().Validate())
}

func TestValidateCatchesEachField(t *testing.T) {
	r := require.New(t)

	p := DefaultParameters()
	p.InitialWidth = 1
	r.ErrorIs(p.Validate(), ErrInitialWidthTooLow)

	p = DefaultParameters()
	p.Boundary = 0
	r.ErrorIs(p.Validate(), ErrBoundaryTooLow)

	p = DefaultParameters()
	p.DialTimeout = 0
	r.ErrorIs(p.Validate(), ErrDialTimeoutTooLow)

	p = DefaultParameters()
	p.DialTimeout = time.Millisecond
	r.NoError(p.Validate())
}
