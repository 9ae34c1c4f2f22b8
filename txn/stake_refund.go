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

// StakeRefund returns a recalled stake's coin to its staker once the
// recall's unlock period has elapsed. Like Genesis and Coinbase it has no
// suffix split: it carries no signature material of its own, only a
// reference to the RecallStake it settles.
type StakeRefund struct {
	Prefix        Prefix
	TxSecretKey   *crypto.Scalar
	RecallStakeTx chainhash.Hash
	Output        Output
}

func (s *StakeRefund) Kind() Tag { return TagStakeRefund }

func (s *StakeRefund) Serialize() ([]byte, error) {
	e := wire.NewEncoder()
	s.Prefix.encode(e)
	e.WriteFixed(s.TxSecretKey.Bytes())
	e.WriteFixed(s.RecallStakeTx[:])
	s.Output.encode(e)
	return e.Bytes(), nil
}

func DeserializeStakeRefund(b []byte) (*StakeRefund, error) {
	d := wire.NewDecoder(b)
	p, err := decodePrefix(d)
	if err != nil {
		return nil, err
	}
	if p.Header.Type != TagStakeRefund {
		return nil, errs.New(errs.BadTag, "not a stake-refund transaction")
	}
	skb, err := d.ReadFixed(crypto.ScalarSize)
	if err != nil {
		return nil, err
	}
	sk, err := crypto.ScalarFromBytes(skb)
	if err != nil {
		return nil, err
	}
	rb, err := d.ReadFixed(chainhash.HashSize)
	if err != nil {
		return nil, err
	}
	rh, err := chainhash.NewHash(rb)
	if err != nil {
		return nil, err
	}
	out, err := decodeOutput(d)
	if err != nil {
		return nil, err
	}
	return &StakeRefund{Prefix: p, TxSecretKey: sk, RecallStakeTx: *rh, Output: out}, nil
}

// Hash implements the no-suffix-split identity shared with Genesis and
// Coinbase: hash = sha3(canonical_encoding).
func (s *StakeRefund) Hash() (chainhash.Hash, error) {
	b, err := s.Serialize()
	if err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.Sum(chainhash.DomainUnsplitTx, b), nil
}
