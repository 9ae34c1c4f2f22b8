// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/nyxchain/nyxd/chain"
	"github.com/nyxchain/nyxd/chainhash"
	"github.com/nyxchain/nyxd/config"
	"github.com/nyxchain/nyxd/crypto"
	"github.com/nyxchain/nyxd/election"
	"github.com/nyxchain/nyxd/staking"
)

// nodeElector runs the election engine against the live stake ledger,
// seeded by the stored chain tip. Until per-round bookkeeping lands the
// previous round is approximated by the single tip block hash.
type nodeElector struct {
	chain *chain.Store
	stake *staking.Ledger
}

func (e nodeElector) Election() ([]*crypto.Point, []*crypto.Point, error) {
	tipHash, _, err := e.chain.Tip()
	if err != nil {
		return nil, nil, err
	}
	cands, err := e.stake.GetCandidates()
	if err != nil {
		return nil, nil, err
	}
	votes := make([]election.CandidateVote, 0, len(cands))
	for _, c := range cands {
		v, verr := e.stake.GetCandidateVotes(c.PublicSigningKey)
		if verr != nil {
			return nil, nil, verr
		}
		if v == 0 {
			continue
		}
		votes = append(votes, election.CandidateVote{PublicSigningKey: c.PublicSigningKey, Votes: v})
	}
	perm := make([]*crypto.Point, 0, len(config.PermanentCandidates))
	for _, raw := range config.PermanentCandidates {
		p, perr := crypto.PointFromBytes(raw)
		if perr != nil {
			return nil, nil, perr
		}
		perm = append(perm, p)
	}
	producers, validators := election.Run(votes, []chainhash.Hash{tipHash}, perm)
	return producers, validators, nil
}
