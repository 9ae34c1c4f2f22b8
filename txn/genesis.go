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

// Genesis is the single transaction that seeds the chain at height 0.
type Genesis struct {
	Prefix      Prefix
	TxSecretKey *crypto.Scalar
	Outputs     []Output
}

// NewGenesis builds an unsigned-form genesis transaction container.
func NewGenesis(unlockBlock uint64, txPub *crypto.Point, secret *crypto.Scalar, outputs []Output) *Genesis {
	return &Genesis{
		Prefix: Prefix{
			Header:      Header{Type: TagGenesis, Version: 1},
			UnlockBlock: unlockBlock,
			TxPublicKey: txPub,
		},
		TxSecretKey: secret,
		Outputs:     outputs,
	}
}

func (g *Genesis) Kind() Tag { return TagGenesis }

func (g *Genesis) Serialize() ([]byte, error) {
	e := wire.NewEncoder()
	g.Prefix.encode(e)
	e.WriteFixed(g.TxSecretKey.Bytes())
	encodeOutputs(e, g.Outputs)
	return e.Bytes(), nil
}

func DeserializeGenesis(b []byte) (*Genesis, error) {
	d := wire.NewDecoder(b)
	p, err := decodePrefix(d)
	if err != nil {
		return nil, err
	}
	if p.Header.Type != TagGenesis {
		return nil, errs.New(errs.BadTag, "not a genesis transaction")
	}
	skb, err := d.ReadFixed(crypto.ScalarSize)
	if err != nil {
		return nil, err
	}
	sk, err := crypto.ScalarFromBytes(skb)
	if err != nil {
		return nil, err
	}
	outs, err := decodeOutputs(d, MaxOutputs)
	if err != nil {
		return nil, err
	}
	return &Genesis{Prefix: p, TxSecretKey: sk, Outputs: outs}, nil
}

// Hash implements the no-suffix-split identity: hash = sha3(canonical_encoding).
func (g *Genesis) Hash() (chainhash.Hash, error) {
	b, err := g.Serialize()
	if err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.Sum(chainhash.DomainUnsplitTx, b), nil
}
