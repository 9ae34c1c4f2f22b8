// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package signal implements the process-wide cooperative shutdown
// fabric: a single stop context, rather than scattered per-worker joins.
// cmd/nyxd waits on the global Interrupt and then shuts the HTTP façade
// and the p2p node down; those stop their own workers.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Interrupt is the process-wide stop context. It is canceled exactly once,
// either by a caught OS signal or by an explicit call to Shutdown.
// cmd/nyxd blocks on Done() and passes Context() to the sockets and the
// p2p node it starts.
type Interrupt struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

var global = New()

// New returns a fresh Interrupt, used by tests that want isolated shutdown
// semantics instead of the process-wide singleton.
func New() *Interrupt {
	ctx, cancel := context.WithCancel(context.Background())
	return &Interrupt{ctx: ctx, cancel: cancel}
}

// Global returns the process-wide Interrupt that cmd/nyxd wires to SIGINT
// and SIGTERM.
func Global() *Interrupt { return global }

// Listen installs OS signal handlers that cancel i on the first SIGINT or
// SIGTERM; a second signal is handled by Go's default runtime behavior
// (immediate exit) since one cooperative shutdown attempt is all the node
// promises.
func (i *Interrupt) Listen() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-ch:
			i.Shutdown()
		case <-i.ctx.Done():
		}
		signal.Stop(ch)
	}()
}

// Shutdown cancels i, waking every worker blocked on Done(). It is safe to
// call more than once.
func (i *Interrupt) Shutdown() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cancel()
}

// Done returns the channel that closes once Shutdown has been called,
// matching context.Context's cancellation idiom so workers can select on
// it alongside their own timers.
func (i *Interrupt) Done() <-chan struct{} { return i.ctx.Done() }

// Context returns the underlying context.Context, for APIs (e.g. netfabric
// dialers) that take one directly.
func (i *Interrupt) Context() context.Context { return i.ctx }

// Requested reports whether shutdown has already been signaled, for
// non-blocking checks at the top of a worker loop iteration.
func (i *Interrupt) Requested() bool {
	select {
	case <-i.ctx.Done():
		return true
	default:
		return false
	}
}
