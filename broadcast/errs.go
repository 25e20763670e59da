// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package broadcast

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// errs collects teardown errors across many connections, adapted from the
// teacher's utils/wrappers.Errs: a Hub tears down many connections
// concurrently and wants to report every failure it saw, not just the
// first or last.
type errs struct {
	mu   sync.Mutex
	errs []error
}

// Add records err, if non-nil.
func (e *errs) Add(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs = append(e.errs, err)
}

// Err returns every recorded error as one, or nil if none were recorded.
func (e *errs) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch len(e.errs) {
	case 0:
		return nil
	case 1:
		return e.errs[0]
	default:
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d errors occurred:", len(e.errs))
		for _, err := range e.errs {
			sb.WriteString("\n\t* ")
			sb.WriteString(err.Error())
		}
		return errors.New(sb.String())
	}
}
