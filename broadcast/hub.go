// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package broadcast implements the star-topology fabric described in
// spec §1 as an external collaborator: a Hub assigns each joining replica
// a tag and relays every operation it receives to all other replicas, with
// no delivery guarantee and no persistence (spec §1 Non-goals). Grounded
// on original_source/examples/ed/{server,client}.rs, restructured in the
// teacher's small-interface networking idiom (transport/interfaces.go).
package broadcast

import (
	"context"
	"net"
	"sync"

	"github.com/luxfi/log"
	"golang.org/x/exp/maps"

	"github.com/luxfi/lseq/metrics"
	"github.com/luxfi/lseq/wire"
)

// Hub is the center of the star: it owns no CRDT state of its own, only
// connections and the next replica tag to hand out. conns is keyed by the
// connection itself (teacher precedent: set/set.go's map-backed Set, kept
// to a single conn->tag map here rather than a generic Set type since the
// tag is needed alongside membership).
type Hub struct {
	mu        sync.Mutex
	conns     map[net.Conn]uint32
	nextTag   uint32
	log       log.Logger
	collector *metrics.HubCollector
	teardown  errs
}

// NewHub returns a Hub that hands out replica tags starting at 1 (tag 0 is
// reserved for whichever replica was seeded directly, e.g. in tests).
// Either argument may be nil.
func NewHub(l log.Logger, collector *metrics.HubCollector) *Hub {
	return &Hub{conns: make(map[net.Conn]uint32), nextTag: 1, log: l, collector: collector}
}

// Serve listens on addr until ctx is cancelled or a fatal accept error
// occurs.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	lst, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		lst.Close()
	}()

	for {
		conn, err := lst.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				if h.log != nil {
					if tdErr := h.teardown.Err(); tdErr != nil {
						h.log.Warn("hub shut down with connection teardown errors", "err", tdErr)
					}
				}
				return nil
			default:
				return err
			}
		}
		go h.handleConn(conn)
	}
}

// TeardownErr returns every connection-close error the hub has accumulated
// so far, aggregated with the teacher's utils/wrappers.Errs idiom (adapted
// here as errs), or nil if every close so far has been clean.
func (h *Hub) TeardownErr() error {
	return h.teardown.Err()
}

func (h *Hub) handleConn(conn net.Conn) {
	tag := h.register(conn)
	if _, err := conn.Write(wire.EncodeHandshake(tag)); err != nil {
		h.unregister(conn)
		h.teardown.Add(conn.Close())
		return
	}
	if h.log != nil {
		h.log.Info("replica joined", "tag", tag)
	}

	for {
		op, err := wire.ReadOp(conn)
		if err != nil {
			h.unregister(conn)
			h.teardown.Add(conn.Close())
			if h.log != nil {
				h.log.Warn("replica disconnected", "tag", tag, "err", err)
			}
			return
		}
		h.relay(conn, op)
	}
}

func (h *Hub) register(conn net.Conn) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	tag := h.nextTag
	h.nextTag++
	h.conns[conn] = tag
	if h.collector != nil {
		h.collector.SetConnected(len(h.conns))
	}
	return tag
}

func (h *Hub) unregister(conn net.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	if h.collector != nil {
		h.collector.SetConnected(len(h.conns))
	}
}

// relay re-broadcasts op to every connection except the one it arrived on.
// Delivery is best-effort: a write error just drops that peer on its next
// read, consistent with spec §1's "no causal delivery guarantees".
func (h *Hub) relay(from net.Conn, op wire.Op) {
	h.mu.Lock()
	conns := maps.Keys(h.conns)
	h.mu.Unlock()

	for _, c := range conns {
		if c == from {
			continue
		}
		_ = wire.WriteOp(c, op)
	}
	if h.collector != nil {
		h.collector.IncRelayed()
	}
}
