// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the 32-byte domain-separated hash type used
// throughout the ledger: block hashes, transaction identities, key images
// and staker/candidate identifiers all share this one representation.
package chainhash

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// HashSize is the size, in bytes, of a Hash.
const HashSize = 32

// Hash is an opaque 32-byte identifier produced by Sum over a canonical
// byte sequence. The zero value is the all-zero hash.
type Hash [HashSize]byte

// String returns the Hash as a hex-encoded string, most-significant byte
// first (i.e. the natural encoding order, not reversed).
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// MarshalJSON renders h as a hex string, a diagnostics-only form never
// used for hashing.
func (h Hash) MarshalJSON() ([]byte, error) {
	return []byte(`"` + h.String() + `"`), nil
}

// UnmarshalJSON parses the hex string produced by MarshalJSON.
func (h *Hash) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("hash: invalid JSON string %q", s)
	}
	decoded, err := hex.DecodeString(s[1 : len(s)-1])
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	if len(decoded) != HashSize {
		return fmt.Errorf("hash: invalid length %d, want %d", len(decoded), HashSize)
	}
	copy(h[:], decoded)
	return nil
}

// SetBytes copies b into h. It panics if b is not exactly HashSize bytes
// long.
func (h *Hash) SetBytes(b []byte) {
	if len(b) != HashSize {
		panic(fmt.Sprintf("invalid hash length of %v, want %v", len(b), HashSize))
	}
	copy(h[:], b)
}

// NewHash returns a new Hash from a byte slice. An error is returned if the
// slice has the wrong length.
func NewHash(b []byte) (*Hash, error) {
	if len(b) != HashSize {
		return nil, fmt.Errorf("invalid hash length of %v, want %v", len(b), HashSize)
	}
	var h Hash
	copy(h[:], b)
	return &h, nil
}

// Less reports whether h sorts strictly before other under big-endian
// byte-wise lexicographic order. This ordering backs every ascending-key
// sort in the canonical codec and the election engine's final sort.
func (h Hash) Less(other Hash) bool {
	for i := 0; i < HashSize; i++ {
		if h[i] != other[i] {
			return h[i] < other[i]
		}
	}
	return false
}

// Sum computes the domain-separated hash of data: sha3_256(domain || data).
// Every ledger hash goes through this function with an appropriate
// domain tag, so that distinct object kinds never collide even if their
// encodings happened to coincide.
func Sum(domain string, data ...[]byte) Hash {
	h := sha3.New256()
	h.Write([]byte(domain))
	for _, d := range data {
		h.Write(d)
	}
	var out Hash
	h.Sum(out[:0])
	return out
}

// Domain tags, one per sha3 call site; each gets its own tag so hashing
// a prefix-embedded digest can never be confused with hashing a whole
// transaction or a merkle node.
const (
	DomainTxDigest      = "nyx/tx-digest"
	DomainPruningHash   = "nyx/pruning-hash"
	DomainTxHash        = "nyx/tx-hash"
	DomainUnsplitTx     = "nyx/tx-unsplit"
	DomainBlockDigest   = "nyx/block-digest"
	DomainMerkleLeaf    = "nyx/merkle-leaf"
	DomainMerkleNode    = "nyx/merkle-node"
	DomainHashToPoint   = "nyx/hash-to-point"
	DomainStakerIdentity = "nyx/staker-id"
	DomainPowPreimage   = "nyx/pow-preimage"
	DomainPeerID        = "nyx/peer-id"
)

// MerkleRoot computes a binary merkle root over leaves using DomainMerkleLeaf
// for leaf hashing and DomainMerkleNode for interior nodes. An empty leaf set
// hashes to the zero Hash, and an odd node at any level is promoted
// (duplicated-free Bitcoin-style promotion, not duplication) to keep the
// function a pure, order-sensitive fold over exactly the given hashes;
// the election engine requires this to be deterministic across nodes
// given the same last_round_blocks ordering.
func MerkleRoot(leaves []Hash) Hash {
	if len(leaves) == 0 {
		return Hash{}
	}
	level := make([]Hash, len(leaves))
	for i, l := range leaves {
		level[i] = Sum(DomainMerkleLeaf, l[:])
	}
	for len(level) > 1 {
		next := make([]Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, Sum(DomainMerkleNode, level[i][:], level[i+1][:]))
			} else {
				next = append(next, level[i])
			}
		}
		level = next
	}
	return level[0]
}
