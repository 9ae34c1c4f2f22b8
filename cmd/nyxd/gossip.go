// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/nyxchain/nyxd/block"
	"github.com/nyxchain/nyxd/chain"
	"github.com/nyxchain/nyxd/netfabric"
	"github.com/nyxchain/nyxd/p2p"
	"github.com/nyxchain/nyxd/staking"
	"github.com/nyxchain/nyxd/txn"
)

// gossipHandler feeds incoming gossip payloads into the chain store and,
// for stake-affecting transaction kinds, keeps the stake ledger's
// candidate/staker edges in sync so the election engine's next run sees an
// up-to-date vote count. Accepted objects are announced on the notifier
// under their identity hash. Payloads that fail to decode or chain are
// dropped; redelivery is the gossip layer's problem, not ours.
func gossipHandler(chainStore *chain.Store, stakeLedger *staking.Ledger, notifier *netfabric.Publisher) func(p2p.Data) {
	return func(d p2p.Data) {
		if b, err := block.Deserialize(d.Payload); err == nil {
			if err := chainStore.AcceptBlock(b); err != nil {
				return
			}
			if h, herr := b.Hash(); herr == nil && notifier != nil {
				_ = notifier.Publish(h, d.Payload)
			}
			return
		}
		t, err := txn.Deserialize(d.Payload)
		if err != nil {
			return
		}
		if err := chainStore.PutTransaction(t); err != nil {
			return
		}
		applyStake(stakeLedger, t)
		if h, herr := txn.Hash(t); herr == nil && notifier != nil {
			_ = notifier.Publish(h, d.Payload)
		}
	}
}

func applyStake(stakeLedger *staking.Ledger, t txn.Transaction) {
	switch v := t.(type) {
	case *txn.Stake:
		h := v.Hash()
		staker := &staking.Staker{PublicViewKey: v.StakerPublicViewKey, PublicSpendKey: v.StakerPublicSpendKey}
		_ = stakeLedger.RecordStake(staker, h, v.CandidatePublicKey, v.StakeAmount)
	case *txn.RecallStake:
		h := v.Hash()
		_ = stakeLedger.RecallStake(v.StakerID, h, v.CandidatePublicKey, v.StakeAmount)
	}
}
