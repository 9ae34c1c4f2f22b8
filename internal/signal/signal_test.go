// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signal

import (
	"testing"
	"time"
)

func TestShutdownClosesDone(t *testing.T) {
	i := New()
	if i.Requested() {
		t.Fatalf("Requested() = true before Shutdown")
	}
	i.Shutdown()
	if !i.Requested() {
		t.Fatalf("Requested() = false after Shutdown")
	}
	select {
	case <-i.Done():
	case <-time.After(time.Second):
		t.Fatalf("Done() never closed after Shutdown")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	i := New()
	i.Shutdown()
	i.Shutdown() // must not panic or block
	if !i.Requested() {
		t.Fatalf("Requested() = false after double Shutdown")
	}
}

func TestGlobalReturnsSingleton(t *testing.T) {
	a := Global()
	b := Global()
	if a != b {
		t.Fatalf("Global() returned distinct Interrupt instances")
	}
}

func TestContextCanceledAfterShutdown(t *testing.T) {
	i := New()
	ctx := i.Context()
	i.Shutdown()
	if ctx.Err() == nil {
		t.Fatalf("Context().Err() = nil after Shutdown")
	}
}
