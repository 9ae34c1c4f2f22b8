// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package staking implements the stake ledger: three kvstore
// sub-databases — candidates, stakers, and a dup-sort stakes store keyed
// by candidate signing key — with record/recall operations the election
// engine (package election) reads through GetCandidateVotes.
package staking

import (
	"github.com/decred/slog"
	"github.com/nyxchain/nyxd/chainhash"
	"github.com/nyxchain/nyxd/crypto"
	"github.com/nyxchain/nyxd/errs"
	"github.com/nyxchain/nyxd/kvstore"
	"github.com/nyxchain/nyxd/wire"
)

var log = slog.Disabled

// UseLogger installs the subsystem logger.
func UseLogger(logger slog.Logger) { log = logger }

// Candidate is a stake-ledger entry.
type Candidate struct {
	RecordVersion           uint64
	PublicSigningKey        *crypto.Point
	PublicViewKey           *crypto.Point
	PublicSpendKey          *crypto.Point
	StakingHash             chainhash.Hash
	InitialStake            uint64
	BlocksProduced          uint64
	BlocksValidated         uint64
	BlockProductionAssigned uint64
	BlockValidationAssigned uint64
}

func (c *Candidate) encode() []byte {
	e := wire.NewEncoder()
	e.WriteVarint(c.RecordVersion)
	e.WriteFixed(c.PublicSigningKey.Bytes())
	e.WriteFixed(c.PublicViewKey.Bytes())
	e.WriteFixed(c.PublicSpendKey.Bytes())
	e.WriteFixed(c.StakingHash[:])
	e.WriteVarint(c.InitialStake)
	e.WriteVarint(c.BlocksProduced)
	e.WriteVarint(c.BlocksValidated)
	e.WriteVarint(c.BlockProductionAssigned)
	e.WriteVarint(c.BlockValidationAssigned)
	return e.Bytes()
}

func decodeCandidate(b []byte) (*Candidate, error) {
	d := wire.NewDecoder(b)
	rv, err := d.ReadVarint()
	if err != nil {
		return nil, err
	}
	signBytes, err := d.ReadFixed(crypto.PointSize)
	if err != nil {
		return nil, err
	}
	signKey, err := crypto.PointFromBytes(signBytes)
	if err != nil {
		return nil, err
	}
	viewBytes, err := d.ReadFixed(crypto.PointSize)
	if err != nil {
		return nil, err
	}
	viewKey, err := crypto.PointFromBytes(viewBytes)
	if err != nil {
		return nil, err
	}
	spendBytes, err := d.ReadFixed(crypto.PointSize)
	if err != nil {
		return nil, err
	}
	spendKey, err := crypto.PointFromBytes(spendBytes)
	if err != nil {
		return nil, err
	}
	stakingHashBytes, err := d.ReadFixed(chainhash.HashSize)
	if err != nil {
		return nil, err
	}
	stakingHash, err := chainhash.NewHash(stakingHashBytes)
	if err != nil {
		return nil, err
	}
	initial, err := d.ReadVarint()
	if err != nil {
		return nil, err
	}
	produced, err := d.ReadVarint()
	if err != nil {
		return nil, err
	}
	validated, err := d.ReadVarint()
	if err != nil {
		return nil, err
	}
	prodAssigned, err := d.ReadVarint()
	if err != nil {
		return nil, err
	}
	valAssigned, err := d.ReadVarint()
	if err != nil {
		return nil, err
	}
	return &Candidate{
		RecordVersion:           rv,
		PublicSigningKey:        signKey,
		PublicViewKey:           viewKey,
		PublicSpendKey:          spendKey,
		StakingHash:             *stakingHash,
		InitialStake:            initial,
		BlocksProduced:          produced,
		BlocksValidated:         validated,
		BlockProductionAssigned: prodAssigned,
		BlockValidationAssigned: valAssigned,
	}, nil
}

// Staker is a (view, spend) key pair that has locked coin toward one or
// more candidates; its identity is H(canonical(staker)).
type Staker struct {
	PublicViewKey  *crypto.Point
	PublicSpendKey *crypto.Point
}

func (s *Staker) encode() []byte {
	e := wire.NewEncoder()
	e.WriteFixed(s.PublicViewKey.Bytes())
	e.WriteFixed(s.PublicSpendKey.Bytes())
	return e.Bytes()
}

func decodeStaker(b []byte) (*Staker, error) {
	d := wire.NewDecoder(b)
	viewBytes, err := d.ReadFixed(crypto.PointSize)
	if err != nil {
		return nil, err
	}
	view, err := crypto.PointFromBytes(viewBytes)
	if err != nil {
		return nil, err
	}
	spendBytes, err := d.ReadFixed(crypto.PointSize)
	if err != nil {
		return nil, err
	}
	spend, err := crypto.PointFromBytes(spendBytes)
	if err != nil {
		return nil, err
	}
	return &Staker{PublicViewKey: view, PublicSpendKey: spend}, nil
}

// ID returns staker_id = H(canonical_encoding(staker)).
func (s *Staker) ID() chainhash.Hash {
	return chainhash.Sum(chainhash.DomainStakerIdentity, s.encode())
}

// StakeEdge is a (staker, stake_txn, amount) record attached to one
// candidate. It is created on Stake and removed verbatim on
// RecallStake.
type StakeEdge struct {
	StakerID chainhash.Hash
	StakeTxn chainhash.Hash
	Amount   uint64
}

func (e *StakeEdge) encode() []byte {
	enc := wire.NewEncoder()
	enc.WriteFixed(e.StakerID[:])
	enc.WriteFixed(e.StakeTxn[:])
	enc.WriteVarint(e.Amount)
	return enc.Bytes()
}

func decodeStakeEdge(b []byte) (*StakeEdge, error) {
	d := wire.NewDecoder(b)
	stakerIDBytes, err := d.ReadFixed(chainhash.HashSize)
	if err != nil {
		return nil, err
	}
	stakerID, err := chainhash.NewHash(stakerIDBytes)
	if err != nil {
		return nil, err
	}
	txnBytes, err := d.ReadFixed(chainhash.HashSize)
	if err != nil {
		return nil, err
	}
	txn, err := chainhash.NewHash(txnBytes)
	if err != nil {
		return nil, err
	}
	amount, err := d.ReadVarint()
	if err != nil {
		return nil, err
	}
	return &StakeEdge{StakerID: *stakerID, StakeTxn: *txn, Amount: amount}, nil
}

// Ledger is the stake ledger façade over three kvstore sub-databases.
type Ledger struct {
	env *kvstore.Env
}

// Open returns a Ledger backed by env.
func Open(env *kvstore.Env) *Ledger { return &Ledger{env: env} }

// AddCandidate upserts candidate, keyed by its public signing key.
func (l *Ledger) AddCandidate(c *Candidate) error {
	return l.env.Update(func(tx *kvstore.Tx) error {
		b, err := tx.Bucket(kvstore.BucketCandidates, false)
		if err != nil {
			return err
		}
		return b.Put(c.PublicSigningKey.Bytes(), c.encode())
	})
}

// DeleteCandidate removes the candidate keyed by signingKey.
func (l *Ledger) DeleteCandidate(signingKey *crypto.Point) error {
	return l.env.Update(func(tx *kvstore.Tx) error {
		b, err := tx.Bucket(kvstore.BucketCandidates, false)
		if err != nil {
			return err
		}
		return b.Delete(signingKey.Bytes())
	})
}

// GetCandidate returns the candidate keyed by signingKey, or
// errs.StakingCandidateNotFound.
func (l *Ledger) GetCandidate(signingKey *crypto.Point) (*Candidate, error) {
	var out *Candidate
	err := l.env.View(func(tx *kvstore.Tx) error {
		b, err := tx.Bucket(kvstore.BucketCandidates, false)
		if err != nil {
			return err
		}
		v, err := b.Get(signingKey.Bytes())
		if err != nil {
			if e, ok := err.(*errs.Error); ok && e.Kind == errs.DBKeyNotFound {
				return errs.New(errs.StakingCandidateNotFound, "candidate not found")
			}
			return err
		}
		out, err = decodeCandidate(v)
		return err
	})
	return out, err
}

// GetCandidates returns every candidate in ascending signing-key order
// (the bucket's natural key order).
func (l *Ledger) GetCandidates() ([]*Candidate, error) {
	var out []*Candidate
	err := l.env.View(func(tx *kvstore.Tx) error {
		b, err := tx.Bucket(kvstore.BucketCandidates, false)
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
			c, err := decodeCandidate(v)
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return nil
	})
	return out, err
}

// AddStaker upserts staker, keyed by its derived staker_id.
func (l *Ledger) AddStaker(s *Staker) error {
	id := s.ID()
	return l.env.Update(func(tx *kvstore.Tx) error {
		b, err := tx.Bucket(kvstore.BucketStakers, false)
		if err != nil {
			return err
		}
		return b.Put(id[:], s.encode())
	})
}

// DeleteStaker removes the staker record keyed by id.
func (l *Ledger) DeleteStaker(id chainhash.Hash) error {
	return l.env.Update(func(tx *kvstore.Tx) error {
		b, err := tx.Bucket(kvstore.BucketStakers, false)
		if err != nil {
			return err
		}
		return b.Delete(id[:])
	})
}

// GetStaker returns the staker keyed by id, or errs.StakingStakerNotFound.
func (l *Ledger) GetStaker(id chainhash.Hash) (*Staker, error) {
	var out *Staker
	err := l.env.View(func(tx *kvstore.Tx) error {
		b, err := tx.Bucket(kvstore.BucketStakers, false)
		if err != nil {
			return err
		}
		v, err := b.Get(id[:])
		if err != nil {
			if e, ok := err.(*errs.Error); ok && e.Kind == errs.DBKeyNotFound {
				return errs.New(errs.StakingStakerNotFound, "staker not found")
			}
			return err
		}
		out, err = decodeStaker(v)
		return err
	})
	return out, err
}

// GetStakers returns every staker record.
func (l *Ledger) GetStakers() ([]*Staker, error) {
	var out []*Staker
	err := l.env.View(func(tx *kvstore.Tx) error {
		b, err := tx.Bucket(kvstore.BucketStakers, false)
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
			s, err := decodeStaker(v)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		return nil
	})
	return out, err
}

// RecordStake fails with errs.CandidateNotFound if candidate is absent;
// otherwise it upserts staker and writes a new stake edge under
// candidate's signing key.
func (l *Ledger) RecordStake(staker *Staker, stakeTxn chainhash.Hash, candidate *crypto.Point, amount uint64) error {
	return l.env.Update(func(tx *kvstore.Tx) error {
		candidates, err := tx.Bucket(kvstore.BucketCandidates, false)
		if err != nil {
			return err
		}
		if ok, err := candidates.Exists(candidate.Bytes()); err != nil {
			return err
		} else if !ok {
			return errs.New(errs.CandidateNotFound, "candidate not found")
		}

		stakers, err := tx.Bucket(kvstore.BucketStakers, false)
		if err != nil {
			return err
		}
		id := staker.ID()
		if err := stakers.Put(id[:], staker.encode()); err != nil {
			return err
		}

		stakes, err := tx.Bucket(kvstore.BucketStakes, true)
		if err != nil {
			return err
		}
		edge := &StakeEdge{StakerID: id, StakeTxn: stakeTxn, Amount: amount}
		return stakes.Put(candidate.Bytes(), edge.encode())
	})
}

// RecallStake removes the edge matching exactly (staker_id, stake_txn,
// amount) from candidate's dup-sort value set. It fails with errs.DBKeyNotFound if no such exact edge
// exists.
func (l *Ledger) RecallStake(stakerID chainhash.Hash, stakeTxn chainhash.Hash, candidate *crypto.Point, amount uint64) error {
	return l.env.Update(func(tx *kvstore.Tx) error {
		stakes, err := tx.Bucket(kvstore.BucketStakes, true)
		if err != nil {
			return err
		}
		edge := &StakeEdge{StakerID: stakerID, StakeTxn: stakeTxn, Amount: amount}
		return stakes.DeleteExact(candidate.Bytes(), edge.encode())
	})
}

// GetCandidateStakes returns every stake edge held by candidate.
func (l *Ledger) GetCandidateStakes(candidate *crypto.Point) ([]*StakeEdge, error) {
	var out []*StakeEdge
	err := l.env.View(func(tx *kvstore.Tx) error {
		stakes, err := tx.Bucket(kvstore.BucketStakes, true)
		if err != nil {
			return err
		}
		cur, err := stakes.Cursor()
		if err != nil {
			return err
		}
		defer cur.Close()
		values, err := cur.GetAll(candidate.Bytes())
		if err != nil {
			return err
		}
		for _, v := range values {
			edge, err := decodeStakeEdge(v)
			if err != nil {
				return err
			}
			out = append(out, edge)
		}
		return nil
	})
	return out, err
}

// GetCandidateVotes returns Σ amount over every stake edge held by
// candidate — the vote count the election engine (package election)
// reads.
func (l *Ledger) GetCandidateVotes(candidate *crypto.Point) (uint64, error) {
	edges, err := l.GetCandidateStakes(candidate)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, e := range edges {
		total += e.Amount
	}
	return total, nil
}

// GetStakerStakes returns every stake edge belonging to stakerID, grouped
// by candidate signing key.
func (l *Ledger) GetStakerStakes(stakerID chainhash.Hash) (map[string][]*StakeEdge, error) {
	out := make(map[string][]*StakeEdge)
	err := l.env.View(func(tx *kvstore.Tx) error {
		candidates, err := tx.Bucket(kvstore.BucketCandidates, false)
		if err != nil {
			return err
		}
		stakes, err := tx.Bucket(kvstore.BucketStakes, true)
		if err != nil {
			return err
		}
		keys, err := candidates.ListKeys()
		if err != nil {
			return err
		}
		for _, ck := range keys {
			cur, err := stakes.Cursor()
			if err != nil {
				return err
			}
			values, err := cur.GetAll(ck)
			cur.Close()
			if err != nil {
				return err
			}
			for _, v := range values {
				edge, err := decodeStakeEdge(v)
				if err != nil {
					return err
				}
				if edge.StakerID == stakerID {
					out[string(ck)] = append(out[string(ck)], edge)
				}
			}
		}
		return nil
	})
	return out, err
}

// GetStakerCandidateVotes returns Σ amount of stakerID's edges on
// candidate only.
func (l *Ledger) GetStakerCandidateVotes(stakerID chainhash.Hash, candidate *crypto.Point) (uint64, error) {
	edges, err := l.GetCandidateStakes(candidate)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, e := range edges {
		if e.StakerID == stakerID {
			total += e.Amount
		}
	}
	return total, nil
}
