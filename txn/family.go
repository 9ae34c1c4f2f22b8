// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txn

import (
	"github.com/nyxchain/nyxd/chainhash"
	"github.com/nyxchain/nyxd/crypto"
	"github.com/nyxchain/nyxd/errs"
	"github.com/nyxchain/nyxd/wire"
)

// Transaction is satisfied by all six kinds: the tagged union is closed
// over this set rather than open to extension, so the interface only
// needs what every kind genuinely shares. Kind-specific
// identity helpers (Hash, Digest, PruningHash, ToCommitted) stay on the
// concrete types instead of being forced into a lowest-common-denominator
// signature here.
type Transaction interface {
	Kind() Tag
	Serialize() ([]byte, error)
}

// Deserialize peeks the leading tag byte and routes to the matching kind's
// decoder, returning errs.BadTag for an unrecognized tag.
func Deserialize(b []byte) (Transaction, error) {
	d := wire.NewDecoder(b)
	h, err := decodeHeader(d)
	if err != nil {
		return nil, err
	}
	switch h.Type {
	case TagGenesis:
		return DeserializeGenesis(b)
	case TagCoinbase:
		return DeserializeCoinbase(b)
	case TagNormal:
		return DeserializeNormal(b)
	case TagStake:
		return DeserializeStake(b)
	case TagRecallStake:
		return DeserializeRecallStake(b)
	case TagStakeRefund:
		return DeserializeStakeRefund(b)
	default:
		return nil, errs.New(errs.BadTag, "unrecognized transaction tag")
	}
}

// Hash returns the identity hash for any kind. The body-bearing kinds
// compute it infallibly from digest and pruning hash; the others hash their
// canonical encoding, which can fail if the value does not serialize.
func Hash(t Transaction) (chainhash.Hash, error) {
	switch v := t.(type) {
	case *Genesis:
		return v.Hash()
	case *Coinbase:
		return v.Hash()
	case *StakeRefund:
		return v.Hash()
	case *Normal:
		return v.Hash(), nil
	case *Stake:
		return v.Hash(), nil
	case *RecallStake:
		return v.Hash(), nil
	default:
		return chainhash.Hash{}, errs.New(errs.UnknownTransactionType, "unrecognized transaction kind")
	}
}

// KeyImages returns the key images spent by t, or nil for the kinds that
// spend none (genesis, coinbase, stake refund).
func KeyImages(t Transaction) []*crypto.KeyImage {
	switch v := t.(type) {
	case *Normal:
		return v.Body.KeyImages
	case *Stake:
		return v.Body.KeyImages
	case *RecallStake:
		return v.Body.KeyImages
	default:
		return nil
	}
}
