// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package broadcast

import (
	"context"
	"net"

	"github.com/luxfi/log"

	"github.com/luxfi/lseq/wire"
)

// Client is one replica's connection to a Hub: it reads its assigned
// replica tag on join, then exchanges framed Ops for as long as the
// connection lives.
type Client struct {
	conn net.Conn
	tag  uint32
	ops  chan wire.Op
	log  log.Logger
}

// Dial joins the hub at addr and blocks until the handshake completes.
func Dial(ctx context.Context, addr string, l log.Logger) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	tag, err := wire.ReadHandshake(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	c := &Client{conn: conn, tag: tag, ops: make(chan wire.Op, 16), log: l}
	go c.readLoop()
	return c, nil
}

// ReplicaTag returns the tag the hub assigned this replica.
func (c *Client) ReplicaTag() uint32 {
	return c.tag
}

// Operations yields every Op the hub relays to this replica, in arrival
// order. It closes when the connection does.
func (c *Client) Operations() <-chan wire.Op {
	return c.ops
}

// Send ships op to the hub for relay to every other replica.
func (c *Client) Send(op wire.Op) error {
	return wire.WriteOp(c.conn, op)
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) readLoop() {
	defer close(c.ops)
	for {
		op, err := wire.ReadOp(c.conn)
		if err != nil {
			if c.log != nil {
				c.log.Warn("broadcast read loop stopped", "err", err)
			}
			return
		}
		c.ops <- op
	}
}
