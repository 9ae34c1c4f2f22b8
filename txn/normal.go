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

// Normal is an ordinary value-transfer transaction.
type Normal struct {
	Prefix  Prefix
	Body    Body
	TxExtra []byte
	Suffix  Suffix
}

func (n *Normal) Kind() Tag { return TagNormal }

// prefixBodyKindData returns "prefix || body || kind_data" for kind Normal,
// where kind_data is just tx_extra — the bytes hashed to form Digest().
func (n *Normal) prefixBodyKindData() []byte {
	e := wire.NewEncoder()
	n.Prefix.encode(e)
	n.Body.encode(e)
	e.WriteVarBytes(n.TxExtra)
	return e.Bytes()
}

func (n *Normal) Digest() chainhash.Hash {
	return chainhash.Sum(chainhash.DomainTxDigest, n.prefixBodyKindData())
}

func (n *Normal) PruningHash() chainhash.Hash { return n.Suffix.pruningHash() }

func (n *Normal) Hash() chainhash.Hash {
	d := n.Digest()
	ph := n.PruningHash()
	return chainhash.Sum(chainhash.DomainTxHash, d[:], ph[:])
}

func (n *Normal) Serialize() ([]byte, error) {
	if err := n.Body.validate(); err != nil {
		return nil, err
	}
	if len(n.TxExtra) > MaxExtra {
		return nil, errs.New(errs.ExtraTooLarge, "tx_extra exceeds maximum size")
	}
	e := wire.NewEncoder()
	n.Prefix.encode(e)
	n.Body.encode(e)
	e.WriteVarBytes(n.TxExtra)
	e.WriteFixed([]byte{boolByte(n.Suffix.committed())})
	n.Suffix.encode(e)
	return e.Bytes(), nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func DeserializeNormal(b []byte) (*Normal, error) {
	d := wire.NewDecoder(b)
	p, err := decodePrefix(d)
	if err != nil {
		return nil, err
	}
	if p.Header.Type != TagNormal {
		return nil, errs.New(errs.BadTag, "not a normal transaction")
	}
	body, err := decodeBody(d)
	if err != nil {
		return nil, err
	}
	extra, err := decodeExtra(d)
	if err != nil {
		return nil, err
	}
	suffix, err := decodeSuffix(d)
	if err != nil {
		return nil, err
	}
	n := &Normal{Prefix: p, Body: body, TxExtra: extra, Suffix: suffix}
	if err := n.Body.validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Mine iterates Body.Nonce from 0 until the proof-of-work hash meets the
// zeros target or nonce saturates.
func (n *Normal) Mine(zeros int, params crypto.PowParams) bool {
	uc, ok := n.Suffix.(*UncommittedSuffix)
	if !ok {
		return false
	}
	rph := rangeProofHash(uc.RangeProof)
	nonce, found := mineLoop(func(nonce uint64) []byte {
		n.Body.Nonce = nonce
		return n.prefixBodyKindData()
	}, rph, zeros, params)
	n.Body.Nonce = nonce
	return found
}

func (n *Normal) PowHash(params crypto.PowParams) [32]byte {
	uc, ok := n.Suffix.(*UncommittedSuffix)
	if !ok {
		var zero [32]byte
		return zero
	}
	rph := rangeProofHash(uc.RangeProof)
	digest := n.Digest()
	preimage := chainhash.Sum(chainhash.DomainPowPreimage, digest[:], rph[:])
	return crypto.PowHash(preimage[:], params)
}

func (n *Normal) PowVerify(zeros int, params crypto.PowParams) bool {
	uc, ok := n.Suffix.(*UncommittedSuffix)
	if !ok {
		return false
	}
	rph := rangeProofHash(uc.RangeProof)
	return powVerifyAt(n.prefixBodyKindData(), rph, zeros, params)
}

// ToCommitted returns a pruned copy sharing the same Hash(): the committed
// form stores pruning_hash directly instead of recomputing it from the
// suffix, so pruning never changes a transaction's identity.
func (n *Normal) ToCommitted() *Normal {
	cp := *n
	cp.Suffix = &CommittedSuffix{PruningHash: n.Suffix.pruningHash()}
	return &cp
}

func decodeSuffix(d *wire.Decoder) (Suffix, error) {
	flag, err := d.ReadFixed(1)
	if err != nil {
		return nil, err
	}
	if flag[0] != 0 {
		hb, err := d.ReadFixed(chainhash.HashSize)
		if err != nil {
			return nil, err
		}
		h, err := chainhash.NewHash(hb)
		if err != nil {
			return nil, err
		}
		return &CommittedSuffix{PruningHash: *h}, nil
	}
	return decodeUncommittedSuffix(d)
}
