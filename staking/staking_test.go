// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package staking

import (
	"testing"

	"github.com/nyxchain/nyxd/chainhash"
	"github.com/nyxchain/nyxd/crypto"
	"github.com/nyxchain/nyxd/errs"
	"github.com/nyxchain/nyxd/kvstore"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	env, err := kvstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("kvstore.Open: %v", err)
	}
	t.Cleanup(env.Close)
	return Open(env)
}

func mustPoint(t *testing.T) *crypto.Point {
	t.Helper()
	s, err := crypto.RandomScalar()
	if err != nil {
		t.Fatalf("random scalar: %v", err)
	}
	return s.BasePoint()
}

func newTestCandidate(t *testing.T) *Candidate {
	t.Helper()
	return &Candidate{
		RecordVersion:    1,
		PublicSigningKey: mustPoint(t),
		PublicViewKey:    mustPoint(t),
		PublicSpendKey:   mustPoint(t),
		StakingHash:      chainhash.Sum("test", []byte("stake")),
		InitialStake:     1000,
	}
}

func TestCandidateRoundTrip(t *testing.T) {
	l := openTestLedger(t)
	c := newTestCandidate(t)

	if err := l.AddCandidate(c); err != nil {
		t.Fatalf("AddCandidate: %v", err)
	}
	got, err := l.GetCandidate(c.PublicSigningKey)
	if err != nil {
		t.Fatalf("GetCandidate: %v", err)
	}
	if got.InitialStake != c.InitialStake {
		t.Fatalf("InitialStake = %d, want %d", got.InitialStake, c.InitialStake)
	}

	if err := l.DeleteCandidate(c.PublicSigningKey); err != nil {
		t.Fatalf("DeleteCandidate: %v", err)
	}
	if _, err := l.GetCandidate(c.PublicSigningKey); !errs.Is(err, errs.StakingCandidateNotFound) {
		t.Fatalf("GetCandidate after delete = %v, want errs.StakingCandidateNotFound", err)
	}
}

func TestRecordStakeFailsWithoutCandidate(t *testing.T) {
	l := openTestLedger(t)
	staker := &Staker{PublicViewKey: mustPoint(t), PublicSpendKey: mustPoint(t)}
	stakeTxn := chainhash.Sum("test", []byte("txn"))

	err := l.RecordStake(staker, stakeTxn, mustPoint(t), 500)
	if !errs.Is(err, errs.CandidateNotFound) {
		t.Fatalf("RecordStake without candidate = %v, want errs.CandidateNotFound", err)
	}
}

func TestRecordAndRecallStake(t *testing.T) {
	l := openTestLedger(t)
	c := newTestCandidate(t)
	if err := l.AddCandidate(c); err != nil {
		t.Fatalf("AddCandidate: %v", err)
	}

	staker := &Staker{PublicViewKey: mustPoint(t), PublicSpendKey: mustPoint(t)}
	stakeTxn := chainhash.Sum("test", []byte("txn-1"))

	if err := l.RecordStake(staker, stakeTxn, c.PublicSigningKey, 250); err != nil {
		t.Fatalf("RecordStake: %v", err)
	}

	votes, err := l.GetCandidateVotes(c.PublicSigningKey)
	if err != nil {
		t.Fatalf("GetCandidateVotes: %v", err)
	}
	if votes != 250 {
		t.Fatalf("GetCandidateVotes = %d, want 250", votes)
	}

	if err := l.RecallStake(staker.ID(), stakeTxn, c.PublicSigningKey, 250); err != nil {
		t.Fatalf("RecallStake: %v", err)
	}

	votes, err = l.GetCandidateVotes(c.PublicSigningKey)
	if err != nil {
		t.Fatalf("GetCandidateVotes after recall: %v", err)
	}
	if votes != 0 {
		t.Fatalf("GetCandidateVotes after recall = %d, want 0", votes)
	}
}

func TestRecallStakeRequiresExactMatch(t *testing.T) {
	l := openTestLedger(t)
	c := newTestCandidate(t)
	if err := l.AddCandidate(c); err != nil {
		t.Fatalf("AddCandidate: %v", err)
	}

	staker := &Staker{PublicViewKey: mustPoint(t), PublicSpendKey: mustPoint(t)}
	stakeTxn := chainhash.Sum("test", []byte("txn-2"))
	if err := l.RecordStake(staker, stakeTxn, c.PublicSigningKey, 100); err != nil {
		t.Fatalf("RecordStake: %v", err)
	}

	// Wrong amount must not match the stored edge.
	if err := l.RecallStake(staker.ID(), stakeTxn, c.PublicSigningKey, 999); err == nil {
		t.Fatalf("RecallStake with wrong amount unexpectedly succeeded")
	}
}

func TestMultipleStakeEdgesSumVotes(t *testing.T) {
	l := openTestLedger(t)
	c := newTestCandidate(t)
	if err := l.AddCandidate(c); err != nil {
		t.Fatalf("AddCandidate: %v", err)
	}

	for i := 0; i < 3; i++ {
		staker := &Staker{PublicViewKey: mustPoint(t), PublicSpendKey: mustPoint(t)}
		stakeTxn := chainhash.Sum("test", []byte{byte(i)})
		if err := l.RecordStake(staker, stakeTxn, c.PublicSigningKey, 100); err != nil {
			t.Fatalf("RecordStake %d: %v", i, err)
		}
	}

	votes, err := l.GetCandidateVotes(c.PublicSigningKey)
	if err != nil {
		t.Fatalf("GetCandidateVotes: %v", err)
	}
	if votes != 300 {
		t.Fatalf("GetCandidateVotes = %d, want 300", votes)
	}
}
