// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/nyxchain/nyxd/chainhash"
	"github.com/nyxchain/nyxd/kvstore"
)

func openTestManager(t *testing.T) *Manager {
	t.Helper()
	env, err := kvstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("kvstore.Open: %v", err)
	}
	t.Cleanup(env.Close)
	m, err := Open(env)
	if err != nil {
		t.Fatalf("addrmgr.Open: %v", err)
	}
	return m
}

func randomPeerID(t *testing.T) chainhash.Hash {
	t.Helper()
	var raw [chainhash.HashSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	h, err := chainhash.NewHash(raw[:])
	if err != nil {
		t.Fatalf("NewHash: %v", err)
	}
	return *h
}

func TestOpenPersistsOwnIDAcrossReopen(t *testing.T) {
	env, err := kvstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("kvstore.Open: %v", err)
	}
	defer env.Close()

	m1, err := Open(env)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	m2, err := Open(env)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if m1.OurID() != m2.OurID() {
		t.Fatalf("OurID changed across re-opens of the same environment")
	}
}

func TestAddRejectsOwnPeerID(t *testing.T) {
	m := openTestManager(t)
	now := time.Now()
	peer := Peer{IP: []byte{127, 0, 0, 1}, Port: 1234, PeerID: m.OurID(), LastSeen: uint64(now.Unix())}

	if err := m.Add(peer, now); err == nil {
		t.Fatalf("Add(own peer_id) unexpectedly succeeded")
	}
}

func TestAddRejectsStaleRecord(t *testing.T) {
	m := openTestManager(t)
	now := time.Now()
	peer := Peer{IP: []byte{127, 0, 0, 1}, Port: 1234, PeerID: randomPeerID(t), LastSeen: uint64(now.Add(-2 * PrunePeriod).Unix())}

	if err := m.Add(peer, now); err == nil {
		t.Fatalf("Add(stale peer) unexpectedly succeeded")
	}
}

func TestAddTouchAndPeers(t *testing.T) {
	m := openTestManager(t)
	now := time.Now()
	peer := Peer{IP: []byte{127, 0, 0, 1}, Port: 1234, PeerID: randomPeerID(t), LastSeen: uint64(now.Unix())}

	if err := m.Add(peer, now); err != nil {
		t.Fatalf("Add: %v", err)
	}

	peers, err := m.Peers()
	if err != nil {
		t.Fatalf("Peers: %v", err)
	}
	if len(peers) != 1 {
		t.Fatalf("Peers returned %d entries, want 1", len(peers))
	}

	later := now.Add(time.Hour)
	if err := m.Touch(peer.PeerID, later); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	peers, err = m.Peers()
	if err != nil {
		t.Fatalf("Peers after Touch: %v", err)
	}
	if peers[0].LastSeen != uint64(later.Unix()) {
		t.Fatalf("LastSeen after Touch = %d, want %d", peers[0].LastSeen, later.Unix())
	}
}

func TestTouchUnknownPeerIsNoop(t *testing.T) {
	m := openTestManager(t)
	if err := m.Touch(randomPeerID(t), time.Now()); err != nil {
		t.Fatalf("Touch(unknown) = %v, want nil", err)
	}
}

func TestPrunesStaleRecords(t *testing.T) {
	m := openTestManager(t)
	now := time.Now()

	fresh := Peer{IP: []byte{1, 2, 3, 4}, Port: 1, PeerID: randomPeerID(t), LastSeen: uint64(now.Unix())}
	if err := m.Add(fresh, now); err != nil {
		t.Fatalf("Add(fresh): %v", err)
	}

	stale := Peer{IP: []byte{5, 6, 7, 8}, Port: 2, PeerID: randomPeerID(t), LastSeen: uint64(now.Unix())}
	if err := m.Add(stale, now); err != nil {
		t.Fatalf("Add(stale): %v", err)
	}
	// Touch fresh forward so only it stays inside the window once Prune
	// is called from a vantage point past the original last_seen values.
	if err := m.Touch(fresh.PeerID, now.Add(PrunePeriod-time.Minute)); err != nil {
		t.Fatalf("Touch(fresh): %v", err)
	}

	if err := m.Prune(now.Add(PrunePeriod + time.Minute)); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	peers, err := m.Peers()
	if err != nil {
		t.Fatalf("Peers: %v", err)
	}
	if len(peers) != 1 || peers[0].PeerID != fresh.PeerID {
		t.Fatalf("Peers after Prune = %v, want only the touched fresh record", peers)
	}
}

func TestSampleCapsAtN(t *testing.T) {
	m := openTestManager(t)
	now := time.Now()
	for i := 0; i < 5; i++ {
		p := Peer{IP: []byte{127, 0, 0, 1}, Port: uint16(1000 + i), PeerID: randomPeerID(t), LastSeen: uint64(now.Unix())}
		if err := m.Add(p, now); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
	}

	sampled, err := m.Sample(3)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(sampled) != 3 {
		t.Fatalf("Sample(3) returned %d peers, want 3", len(sampled))
	}
}

func TestSampleIsDeterministicForSameManager(t *testing.T) {
	m := openTestManager(t)
	now := time.Now()
	for i := 0; i < 5; i++ {
		p := Peer{IP: []byte{127, 0, 0, 1}, Port: uint16(2000 + i), PeerID: randomPeerID(t), LastSeen: uint64(now.Unix())}
		if err := m.Add(p, now); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
	}

	a, err := m.Sample(-1)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	b, err := m.Sample(-1)
	if err != nil {
		t.Fatalf("second Sample: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("Sample length differs across calls: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].PeerID != b[i].PeerID {
			t.Fatalf("Sample order differs across calls at index %d", i)
		}
	}
}
