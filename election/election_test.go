// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package election

import (
	"testing"

	"github.com/nyxchain/nyxd/chainhash"
	"github.com/nyxchain/nyxd/crypto"
)

func mustPoint(t *testing.T) *crypto.Point {
	t.Helper()
	s, err := crypto.RandomScalar()
	if err != nil {
		t.Fatalf("random scalar: %v", err)
	}
	return s.BasePoint()
}

func sampleCandidates(t *testing.T, n int) []CandidateVote {
	t.Helper()
	out := make([]CandidateVote, n)
	for i := range out {
		out[i] = CandidateVote{PublicSigningKey: mustPoint(t), Votes: uint64(10 * (i + 1))}
	}
	return out
}

func sampleBlocks(t *testing.T, n int) []chainhash.Hash {
	t.Helper()
	out := make([]chainhash.Hash, n)
	for i := range out {
		out[i] = chainhash.Sum("test-block", []byte{byte(i)})
	}
	return out
}

func TestRunIsDeterministic(t *testing.T) {
	candidates := sampleCandidates(t, 24)
	blocks := sampleBlocks(t, 5)
	permanent := []*crypto.Point{mustPoint(t)}

	p1, v1 := Run(candidates, blocks, permanent)
	p2, v2 := Run(candidates, blocks, permanent)

	if len(p1) != len(p2) || len(v1) != len(v2) {
		t.Fatalf("nondeterministic output length: %d/%d vs %d/%d", len(p1), len(v1), len(p2), len(v2))
	}
	for i := range p1 {
		if !p1[i].Equal(p2[i]) {
			t.Fatalf("producer %d differs across identical runs", i)
		}
	}
	for i := range v1 {
		if !v1[i].Equal(v2[i]) {
			t.Fatalf("validator %d differs across identical runs", i)
		}
	}
}

func TestRunSeedsPermanentCandidates(t *testing.T) {
	permanent := []*crypto.Point{mustPoint(t), mustPoint(t)}
	producers, validators := Run(nil, sampleBlocks(t, 3), permanent)

	if len(producers) != len(permanent) || len(validators) != len(permanent) {
		t.Fatalf("expected only the permanent set with no candidates, got %d producers, %d validators",
			len(producers), len(validators))
	}
	for _, p := range permanent {
		found := false
		for _, got := range producers {
			if got.Equal(p) {
				found = true
			}
		}
		if !found {
			t.Fatalf("permanent candidate missing from producers")
		}
	}
}

func TestRunSortsOutputByKeyOrder(t *testing.T) {
	candidates := sampleCandidates(t, 16)
	producers, validators := Run(candidates, sampleBlocks(t, 4), nil)

	for i := 1; i < len(producers); i++ {
		if !producers[i-1].Less(producers[i]) && !producers[i-1].Equal(producers[i]) {
			t.Fatalf("producers not in ascending key order at index %d", i)
		}
	}
	for i := 1; i < len(validators); i++ {
		if !validators[i-1].Less(validators[i]) && !validators[i-1].Equal(validators[i]) {
			t.Fatalf("validators not in ascending key order at index %d", i)
		}
	}
}

func TestRunCapsSelectionAtMaximumKeys(t *testing.T) {
	candidates := sampleCandidates(t, 200)
	producers, validators := Run(candidates, sampleBlocks(t, 6), nil)

	if len(producers) > MaximumKeys {
		t.Fatalf("producer set exceeds MaximumKeys: got %d", len(producers))
	}
	if len(validators) > MaximumKeys {
		t.Fatalf("validator set exceeds MaximumKeys: got %d", len(validators))
	}
}

// TestRunPermanentCandidatesConsumeSlots pins the slot accounting: the
// permanent set seeds each list and counts against MaximumKeys, so even
// with far more organic candidates than slots the totals stay capped and
// every permanent key is present in both lists.
func TestRunPermanentCandidatesConsumeSlots(t *testing.T) {
	candidates := sampleCandidates(t, 200)
	permanent := []*crypto.Point{mustPoint(t), mustPoint(t), mustPoint(t)}
	producers, validators := Run(candidates, sampleBlocks(t, 6), permanent)

	if len(producers) > MaximumKeys {
		t.Fatalf("producer set exceeds MaximumKeys with permanent candidates: got %d", len(producers))
	}
	if len(validators) > MaximumKeys {
		t.Fatalf("validator set exceeds MaximumKeys with permanent candidates: got %d", len(validators))
	}
	for i, lists := range [][]*crypto.Point{producers, validators} {
		for _, p := range permanent {
			found := false
			for _, got := range lists {
				if got.Equal(p) {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("permanent candidate missing from list %d", i)
			}
		}
	}
}

func TestRunExcludesProducersFromValidators(t *testing.T) {
	candidates := sampleCandidates(t, 40)
	producers, validators := Run(candidates, sampleBlocks(t, 2), nil)

	isProducer := make(map[string]bool, len(producers))
	for _, p := range producers {
		isProducer[string(p.Bytes())] = true
	}
	for _, v := range validators {
		if isProducer[string(v.Bytes())] {
			t.Fatalf("candidate selected as both producer and validator")
		}
	}
}

func TestHouseTrimExtremesSingleEntry(t *testing.T) {
	h := newHouse()
	h.entries[5] = mustPoint(t)
	h.trimExtremes()
	if !h.empty() {
		t.Fatalf("expected single-entry house to be emptied by trim")
	}
}

func TestHouseUpperBound(t *testing.T) {
	h := newHouse()
	a, b, c := mustPoint(t), mustPoint(t), mustPoint(t)
	h.entries[3] = a
	h.entries[7] = b
	h.entries[12] = c

	k, got, ok := h.upperBound(5)
	if !ok || k != 7 || !got.Equal(b) {
		t.Fatalf("upperBound(5) = (%d, ok=%v), want (7, true)", k, ok)
	}

	_, _, ok = h.upperBound(12)
	if ok {
		t.Fatalf("upperBound(12) should find nothing past the largest key")
	}
}
