// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addrmgr implements the peer database: records keyed by peer_id
// with liveness pruning, backed by kvstore's BucketPeerList and
// BucketLocal sub-databases. Sampling order for outbound dialing uses a
// keyed SipHash (github.com/dchest/siphash), deterministic per process
// without being attacker-predictable from outside.
package addrmgr

import (
	"crypto/rand"
	"sort"
	"time"

	"github.com/dchest/siphash"
	"github.com/decred/slog"
	"github.com/nyxchain/nyxd/chainhash"
	"github.com/nyxchain/nyxd/errs"
	"github.com/nyxchain/nyxd/kvstore"
	"github.com/nyxchain/nyxd/wire"
)

var log = slog.Disabled

// UseLogger installs the subsystem logger.
func UseLogger(logger slog.Logger) { log = logger }

// PrunePeriod is the liveness TTL past which a peer record is considered
// dead.
const PrunePeriod = 86400 * time.Second

// ourPeerIDKey is the sentinel key under which our own persistent peer_id
// is stored in BucketLocal, so it survives restarts.
var ourPeerIDKey = []byte("our_peer_id")

// Peer is one peer-database record.
type Peer struct {
	IP       []byte // 4 or 16 bytes
	Port     uint16
	PeerID   chainhash.Hash
	LastSeen uint64 // Unix seconds
}

func (p *Peer) encode() []byte {
	e := wire.NewEncoder()
	e.WriteVarBytes(p.IP)
	e.WriteFixed(wire.PutUint16LE(p.Port))
	e.WriteFixed(p.PeerID[:])
	e.WriteFixed(wire.PutUint64LE(p.LastSeen))
	return e.Bytes()
}

func decodePeer(b []byte) (*Peer, error) {
	d := wire.NewDecoder(b)
	ip, err := d.ReadVarBytes(16)
	if err != nil {
		return nil, err
	}
	portBytes, err := d.ReadFixed(2)
	if err != nil {
		return nil, err
	}
	idBytes, err := d.ReadFixed(chainhash.HashSize)
	if err != nil {
		return nil, err
	}
	id, err := chainhash.NewHash(idBytes)
	if err != nil {
		return nil, err
	}
	lastSeenBytes, err := d.ReadFixed(8)
	if err != nil {
		return nil, err
	}
	return &Peer{
		IP:       ip,
		Port:     wire.Uint16LE(portBytes),
		PeerID:   *id,
		LastSeen: wire.Uint64LE(lastSeenBytes),
	}, nil
}

// Manager is the peer database façade.
type Manager struct {
	env    *kvstore.Env
	ourID  chainhash.Hash
	sipKey [16]byte
}

// Open opens (or creates) the peer database under env, generating and
// persisting our own peer_id on first use.
func Open(env *kvstore.Env) (*Manager, error) {
	m := &Manager{env: env}
	if err := m.loadOrCreateOwnID(); err != nil {
		return nil, err
	}
	copy(m.sipKey[:], m.ourID[:16])
	return m, nil
}

func (m *Manager) loadOrCreateOwnID() error {
	return m.env.Update(func(tx *kvstore.Tx) error {
		b, err := tx.Bucket(kvstore.BucketLocal, false)
		if err != nil {
			return err
		}
		v, err := b.Get(ourPeerIDKey)
		if err == nil {
			id, derr := chainhash.NewHash(v)
			if derr != nil {
				return errs.New(errs.DeserializationError, derr.Error())
			}
			m.ourID = *id
			return nil
		}
		if e, ok := err.(*errs.Error); !ok || e.Kind != errs.DBKeyNotFound {
			return err
		}

		var raw [chainhash.HashSize]byte
		if _, rerr := rand.Read(raw[:]); rerr != nil {
			return errs.New(errs.GenericFailure, "rng failure: "+rerr.Error())
		}
		id, derr := chainhash.NewHash(raw[:])
		if derr != nil {
			return errs.New(errs.GenericFailure, derr.Error())
		}
		m.ourID = *id
		return b.Put(ourPeerIDKey, m.ourID[:])
	})
}

// OurID returns our persistent peer_id.
func (m *Manager) OurID() chainhash.Hash { return m.ourID }

// Add upserts peer, rejecting our own peer_id and any record whose
// last_seen already exceeds the prune threshold.
func (m *Manager) Add(peer Peer, now time.Time) error {
	if peer.PeerID == m.ourID {
		return errs.New(errs.GenericFailure, "refusing to add our own peer_id")
	}
	cutoff := uint64(now.Add(-PrunePeriod).Unix())
	if peer.LastSeen < cutoff {
		return errs.New(errs.GenericFailure, "peer record already stale")
	}
	return m.env.Update(func(tx *kvstore.Tx) error {
		b, err := tx.Bucket(kvstore.BucketPeerList, false)
		if err != nil {
			return err
		}
		return b.Put(peer.PeerID[:], peer.encode())
	})
}

// Touch sets last_seen = now for peerID, a no-op (not an error) if the
// peer is unknown, matching the keepalive/poke call sites in package p2p
// that touch whatever peer just proved liveness.
func (m *Manager) Touch(peerID chainhash.Hash, now time.Time) error {
	return m.env.Update(func(tx *kvstore.Tx) error {
		b, err := tx.Bucket(kvstore.BucketPeerList, false)
		if err != nil {
			return err
		}
		v, err := b.Get(peerID[:])
		if err != nil {
			if e, ok := err.(*errs.Error); ok && e.Kind == errs.DBKeyNotFound {
				return nil
			}
			return err
		}
		p, err := decodePeer(v)
		if err != nil {
			return err
		}
		p.LastSeen = uint64(now.Unix())
		return b.Put(peerID[:], p.encode())
	})
}

// Prune deletes every record older than PrunePeriod.
func (m *Manager) Prune(now time.Time) error {
	cutoff := uint64(now.Add(-PrunePeriod).Unix())
	return m.env.Update(func(tx *kvstore.Tx) error {
		b, err := tx.Bucket(kvstore.BucketPeerList, false)
		if err != nil {
			return err
		}
		keys, err := b.ListKeys()
		if err != nil {
			return err
		}
		for _, k := range keys {
			v, err := b.Get(k)
			if err != nil {
				return err
			}
			p, err := decodePeer(v)
			if err != nil {
				return err
			}
			if p.LastSeen < cutoff {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Peers returns every record currently stored, in ascending peer_id order.
func (m *Manager) Peers() ([]Peer, error) {
	var out []Peer
	err := m.env.View(func(tx *kvstore.Tx) error {
		b, err := tx.Bucket(kvstore.BucketPeerList, false)
		if err != nil {
			return err
		}
		keys, err := b.ListKeys()
		if err != nil {
			return err
		}
		for _, k := range keys {
			v, err := b.Get(k)
			if err != nil {
				return err
			}
			p, err := decodePeer(v)
			if err != nil {
				return err
			}
			out = append(out, *p)
		}
		return nil
	})
	return out, err
}

// Sample returns up to n peers (excluding ourselves implicitly, since
// Add never stores our own record) ordered by a SipHash of their peer_id
// keyed by our own id — a deterministic-per-process, externally
// unpredictable dialing order rather than raw map iteration order.
func (m *Manager) Sample(n int) ([]Peer, error) {
	peers, err := m.Peers()
	if err != nil {
		return nil, err
	}
	sort.Slice(peers, func(i, j int) bool {
		return m.sipOrder(peers[i].PeerID) < m.sipOrder(peers[j].PeerID)
	})
	if n >= 0 && len(peers) > n {
		peers = peers[:n]
	}
	return peers, nil
}

func (m *Manager) sipOrder(id chainhash.Hash) uint64 {
	k0 := wire.Uint64LE(m.sipKey[0:8])
	k1 := wire.Uint64LE(m.sipKey[8:16])
	return siphash.Hash(k0, k1, id[:])
}
