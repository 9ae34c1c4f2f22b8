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

// Coinbase is the one mandatory reward transaction per block.
type Coinbase struct {
	Prefix      Prefix
	TxSecretKey *crypto.Scalar
	BlockIndex  uint64
	Outputs     []Output
}

func NewCoinbase(txPub *crypto.Point, secret *crypto.Scalar, blockIndex uint64, outputs []Output) *Coinbase {
	return &Coinbase{
		Prefix: Prefix{
			Header:      Header{Type: TagCoinbase, Version: 1},
			UnlockBlock: blockIndex,
			TxPublicKey: txPub,
		},
		TxSecretKey: secret,
		BlockIndex:  blockIndex,
		Outputs:     outputs,
	}
}

func (c *Coinbase) Kind() Tag { return TagCoinbase }

func (c *Coinbase) Serialize() ([]byte, error) {
	e := wire.NewEncoder()
	c.Prefix.encode(e)
	e.WriteFixed(c.TxSecretKey.Bytes())
	e.WriteVarint(c.BlockIndex)
	encodeOutputs(e, c.Outputs)
	return e.Bytes(), nil
}

func DeserializeCoinbase(b []byte) (*Coinbase, error) {
	d := wire.NewDecoder(b)
	p, err := decodePrefix(d)
	if err != nil {
		return nil, err
	}
	if p.Header.Type != TagCoinbase {
		return nil, errs.New(errs.BadTag, "not a coinbase transaction")
	}
	skb, err := d.ReadFixed(crypto.ScalarSize)
	if err != nil {
		return nil, err
	}
	sk, err := crypto.ScalarFromBytes(skb)
	if err != nil {
		return nil, err
	}
	idx, err := d.ReadVarint()
	if err != nil {
		return nil, err
	}
	outs, err := decodeOutputs(d, MaxOutputs)
	if err != nil {
		return nil, err
	}
	return &Coinbase{Prefix: p, TxSecretKey: sk, BlockIndex: idx, Outputs: outs}, nil
}

func (c *Coinbase) Hash() (chainhash.Hash, error) {
	b, err := c.Serialize()
	if err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.Sum(chainhash.DomainUnsplitTx, b), nil
}
