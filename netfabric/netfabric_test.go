// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netfabric

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestServerClientRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := "tcp://127.0.0.1:19897"
	server, err := NewServer(ctx, addr)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	defer server.Close()

	client, err := Connect(ctx, []byte("test-client-identity-000000001"), "127.0.0.1", 19897, "")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	stop := make(chan struct{})
	client.Send([]byte("hello"))

	frame, ok := server.Recv(stop)
	if !ok {
		t.Fatalf("server.Recv returned ok=false")
	}
	if string(frame.Payload) != "hello" {
		t.Fatalf("server received %q, want %q", frame.Payload, "hello")
	}

	server.Send(frame.From, []byte("world"))
	reply, ok := client.Recv(stop)
	if !ok {
		t.Fatalf("client.Recv returned ok=false")
	}
	if string(reply) != "world" {
		t.Fatalf("client received %q, want %q", reply, "world")
	}
}

func TestServerBroadcastToEmptyIdentity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := "tcp://127.0.0.1:19898"
	server, err := NewServer(ctx, addr)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	defer server.Close()

	client, err := Connect(ctx, []byte("test-client-identity-000000002"), "127.0.0.1", 19898, "")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	stop := make(chan struct{})
	client.Send([]byte("register"))
	if _, ok := server.Recv(stop); !ok {
		t.Fatalf("server never observed the client's identity")
	}

	// readLoop records the identity before it queues the frame, so the
	// identity is already known here; the pause is only an extra margin.
	time.Sleep(20 * time.Millisecond)

	server.Send("", []byte("broadcast"))
	reply, ok := client.Recv(stop)
	if !ok {
		t.Fatalf("client.Recv returned ok=false for broadcast")
	}
	if string(reply) != "broadcast" {
		t.Fatalf("client received %q, want %q", reply, "broadcast")
	}
}

func TestConnectFailsOnBadHost(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := Connect(ctx, []byte("test-client-identity-000000003"), "203.0.113.1", 1, "")
	if err == nil {
		t.Fatalf("Connect to an unroutable address unexpectedly succeeded")
	}
}

func TestPublisherCloseSucceeds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub, err := NewPublisher(ctx, fmt.Sprintf("tcp://127.0.0.1:%d", 19899))
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
