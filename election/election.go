// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package election implements the deterministic stake-weighted producer
// and validator selection: a pure function of the current candidate vote
// tallies and the previous round's block hashes, so every node that
// observes the same chain state reaches the same result.
package election

import (
	"math/big"
	"sort"

	"github.com/decred/slog"
	"github.com/nyxchain/nyxd/chainhash"
	"github.com/nyxchain/nyxd/crypto"
)

var log = slog.Disabled

// UseLogger installs the subsystem logger.
func UseLogger(logger slog.Logger) { log = logger }

// MaximumKeys caps the size of each output list. Permanent candidates
// hold a seat in every election, so the selection loop only draws what
// they leave free.
const MaximumKeys = 10

// CandidateVote is one candidate's public signing key and its current
// Σ stake-edge amount, the only two fields the election engine needs per
// candidate. Package staking's Ledger.GetCandidates/GetCandidateVotes
// feed this.
type CandidateVote struct {
	PublicSigningKey *crypto.Point
	Votes            uint64
}

// domainCandidateHash separates the election tie-break hash H(C) from
// every other sha3 domain in the system.
const domainCandidateHash = "nyx/election-candidate-hash"

// Run computes the producer and validator sets for the upcoming round from
// candidates (every candidate currently carrying votes > 0),
// lastRoundBlocks (the ordered hashes of every block in the previous
// round, used to seed the deterministic draw), and permanent (the fixed
// always-included candidate set). Permanent candidates seed both output
// lists and consume selection slots, so each list never exceeds
// MaximumKeys: the loop draws at most MaximumKeys - len(permanent)
// organic entries per role.
//
// Run is a pure function: identical inputs yield byte-identical outputs
// on every node.
func Run(candidates []CandidateVote, lastRoundBlocks []chainhash.Hash, permanent []*crypto.Point) (producers, validators []*crypto.Point) {
	pPoint, pVal, pEven := computeSeed(lastRoundBlocks)
	_ = pPoint

	lowerHouse := newHouse()
	upperHouse := newHouse()

	for _, cv := range candidates {
		if cv.Votes == 0 {
			continue
		}
		if leInt(cv.PublicSigningKey.Bytes()).Cmp(pVal) <= 0 {
			lowerHouse.place(cv.Votes, cv.PublicSigningKey, pVal)
		} else {
			upperHouse.place(cv.Votes, cv.PublicSigningKey, pVal)
		}
	}

	lowerHouse.trimExtremes()
	upperHouse.trimExtremes()

	// Bicameral routing: if P is even, producers draw from
	// the lower house and validators from the upper; otherwise roles
	// swap.
	producerHouse, validatorHouse := lowerHouse, upperHouse
	if !pEven {
		producerHouse, validatorHouse = upperHouse, lowerHouse
	}

	producers = append([]*crypto.Point{}, permanent...)
	validators = append([]*crypto.Point{}, permanent...)

	organicBudget := MaximumKeys - len(permanent)
	if organicBudget < 0 {
		organicBudget = 0
	}

	isPermanent := func(c *crypto.Point) bool {
		for _, p := range permanent {
			if p.Equal(c) {
				return true
			}
		}
		return false
	}

	producers = append(producers, selectFrom(producerHouse, pVal, organicBudget, isPermanent)...)

	// isProducer covers the permanent set too, so an organically elected
	// validator is dropped both when it is already a producer and when it
	// already holds a permanent seat.
	isProducer := make(map[string]bool, len(producers))
	for _, p := range producers {
		isProducer[string(p.Bytes())] = true
	}
	validators = append(validators, selectFrom(validatorHouse, pVal, organicBudget, func(c *crypto.Point) bool {
		return isProducer[string(c.Bytes())]
	})...)

	sort.Slice(producers, func(i, j int) bool { return producers[i].Less(producers[j]) })
	sort.Slice(validators, func(i, j int) bool { return validators[i].Less(validators[j]) })

	return producers, validators
}

// computeSeed derives the round seed: M = merkle_root of
// the previous round's block hashes, P = hash_to_point(M), P_val its
// little-endian integer form, and P_even the parity of the sum of P's
// bytes.
func computeSeed(lastRoundBlocks []chainhash.Hash) (p *crypto.Point, pVal *big.Int, pEven bool) {
	m := chainhash.MerkleRoot(lastRoundBlocks)
	p = crypto.HashToPoint(chainhash.DomainHashToPoint, m[:])
	b := p.Bytes()
	pVal = leInt(b)
	sum := 0
	for _, x := range b {
		sum += int(x)
	}
	return p, pVal, sum%2 == 0
}

// leInt interprets b as an unsigned little-endian integer: P_val =
// uint256_le(P).
func leInt(b []byte) *big.Int {
	rev := make([]byte, len(b))
	for i, x := range b {
		rev[len(b)-1-i] = x
	}
	return new(big.Int).SetBytes(rev)
}

// candidateHashInt is H(C), the tie-break hash of a candidate's signing
// key.
func candidateHashInt(c *crypto.Point) *big.Int {
	h := chainhash.Sum(domainCandidateHash, c.Bytes())
	return new(big.Int).SetBytes(h[:])
}

// house is a vote-count-keyed chamber: at most one candidate per
// distinct vote count, ties resolved by resolveTie.
type house struct {
	entries map[uint64]*crypto.Point
}

func newHouse() *house {
	return &house{entries: make(map[uint64]*crypto.Point)}
}

// place inserts c at votes, resolving a collision via the tie-break
// rule.
func (h *house) place(votes uint64, c *crypto.Point, pVal *big.Int) {
	if existing, ok := h.entries[votes]; ok {
		h.entries[votes] = resolveTie(existing, c, pVal)
	} else {
		h.entries[votes] = c
	}
}

// resolveTie implements the tie-break: e = P_val mod
// max(H(C), H(existing)); replace the incumbent with whichever candidate's
// H(·) is the first value strictly greater than e (an upper_bound over the
// two-element map). If neither hash exceeds e, the incumbent is kept;
// that fall-off-the-end case is defined behavior, not an accident.
func resolveTie(existing, candidate *crypto.Point, pVal *big.Int) *crypto.Point {
	hExisting := candidateHashInt(existing)
	hCandidate := candidateHashInt(candidate)

	mx := hExisting
	if hCandidate.Cmp(mx) > 0 {
		mx = hCandidate
	}
	if mx.Sign() == 0 {
		return existing
	}
	e := new(big.Int).Mod(pVal, mx)

	type twoEntry struct {
		h *big.Int
		c *crypto.Point
	}
	pair := []twoEntry{{hExisting, existing}, {hCandidate, candidate}}
	sort.Slice(pair, func(i, j int) bool { return pair[i].h.Cmp(pair[j].h) < 0 })

	for _, en := range pair {
		if en.h.Cmp(e) > 0 {
			return en.c
		}
	}
	return existing
}

// sortedKeys returns the house's vote-count keys in ascending order.
func (h *house) sortedKeys() []uint64 {
	keys := make([]uint64, 0, len(h.entries))
	for k := range h.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// trimExtremes drops the smallest and largest entry, by vote count,
// removing the extremes from the candidate pool before selection. See
// DESIGN.md for the review flag on this rule.
func (h *house) trimExtremes() {
	keys := h.sortedKeys()
	if len(keys) == 0 {
		return
	}
	if len(keys) == 1 {
		delete(h.entries, keys[0])
		return
	}
	delete(h.entries, keys[0])
	delete(h.entries, keys[len(keys)-1])
}

func (h *house) empty() bool { return len(h.entries) == 0 }

func (h *house) maxKey() (uint64, bool) {
	keys := h.sortedKeys()
	if len(keys) == 0 {
		return 0, false
	}
	return keys[len(keys)-1], true
}

// upperBound returns the entry with the smallest key strictly greater
// than e.
func (h *house) upperBound(e uint64) (uint64, *crypto.Point, bool) {
	best := uint64(0)
	var bestC *crypto.Point
	found := false
	for k, c := range h.entries {
		if k > e && (!found || k < best) {
			best, bestC, found = k, c, true
		}
	}
	return best, bestC, found
}

func (h *house) remove(k uint64) { delete(h.entries, k) }

// selectFrom runs the selection loop against house, returning
// up to maxKeys elected candidates. exclude, when non-nil, drops an
// elected candidate without consuming an output slot — used to enforce
// "if an elected validator candidate is already a producer, drop it from
// validator_house and continue."
func selectFrom(house *house, pVal *big.Int, maxKeys int, exclude func(*crypto.Point) bool) []*crypto.Point {
	var out []*crypto.Point
	for len(out) < maxKeys && !house.empty() {
		vMax, ok := house.maxKey()
		if !ok {
			break
		}
		e := new(big.Int).Mod(pVal, new(big.Int).SetUint64(vMax)).Uint64()
		k, c, ok := house.upperBound(e)
		if !ok {
			break
		}
		house.remove(k)
		if exclude != nil && exclude(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}
