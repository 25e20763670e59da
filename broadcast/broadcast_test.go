// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package broadcast

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/lseq/id"
	"github.com/luxfi/lseq/wire"
)

func listenFree(t *testing.T) (net.Listener, error) {
	t.Helper()
	return net.Listen("tcp", "127.0.0.1:0")
}

func startTestHub(t *testing.T) (addr string, stop func()) {
	t.Helper()
	hub := NewHub(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	lst, err := listenFree(t)
	require.NoError(t, err)
	addr = lst.Addr().String()
	lst.Close()

	go func() {
		_ = hub.Serve(ctx, addr)
	}()
	// Give the listener a moment to bind before clients dial.
	time.Sleep(20 * time.Millisecond)
	return addr, cancel
}

func TestHandshakeAssignsDistinctTags(t *testing.T) {
	r := require.New(t)
	addr, stop := startTestHub(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	c1, err := Dial(ctx, addr, nil)
	r.NoError(err)
	defer c1.Close()

	c2, err := Dial(ctx, addr, nil)
	r.NoError(err)
	defer c2.Close()

	r.NotEqual(c1.ReplicaTag(), c2.ReplicaTag())
}

func TestRelayDeliversToOtherReplicasOnly(t *testing.T) {
	r := require.New(t)
	addr, stop := startTestHub(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	c1, err := Dial(ctx, addr, nil)
	r.NoError(err)
	defer c1.Close()

	c2, err := Dial(ctx, addr, nil)
	r.NoError(err)
	defer c2.Close()

	op := wire.AddOp{Items: []wire.AddItem{{ID: id.New([]uint64{1}, c1.ReplicaTag()), Payload: 'x'}}}
	r.NoError(c1.Send(op))

	select {
	case got := <-c2.Operations():
		addOp, ok := got.(wire.AddOp)
		r.True(ok)
		r.Len(addOp.Items, 1)
		r.Equal('x', addOp.Items[0].Payload)
	case <-time.After(time.Second):
		t.Fatal("c2 never received the relayed op")
	}

	select {
	case _, ok := <-c1.Operations():
		if ok {
			t.Fatal("sender should not receive its own op echoed back")
		}
	case <-time.After(50 * time.Millisecond):
		// No echo arrived within the window: expected.
	}
}
