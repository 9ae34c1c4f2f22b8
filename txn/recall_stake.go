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

// RecallStake withdraws a previously-created stake edge, proving staker
// identity via view/spend signatures instead of re-revealing the staker's
// keys in the clear.
type RecallStake struct {
	Prefix             Prefix
	Body               Body
	StakeAmount        uint64
	CandidatePublicKey *crypto.Point
	StakerID           chainhash.Hash
	ViewSignature      *crypto.Signature
	SpendSignature     *crypto.Signature
	Suffix             Suffix
}

func (r *RecallStake) Kind() Tag { return TagRecallStake }

func (r *RecallStake) kindData(e *wire.Encoder) {
	e.WriteVarint(r.StakeAmount)
	e.WriteFixed(r.CandidatePublicKey.Bytes())
	e.WriteFixed(r.StakerID[:])
}

func (r *RecallStake) prefixBodyKindData() []byte {
	e := wire.NewEncoder()
	r.Prefix.encode(e)
	r.Body.encode(e)
	r.kindData(e)
	return e.Bytes()
}

func (r *RecallStake) Digest() chainhash.Hash {
	return chainhash.Sum(chainhash.DomainTxDigest, r.prefixBodyKindData())
}

func (r *RecallStake) PruningHash() chainhash.Hash { return r.Suffix.pruningHash() }

func (r *RecallStake) Hash() chainhash.Hash {
	d := r.Digest()
	ph := r.PruningHash()
	return chainhash.Sum(chainhash.DomainTxHash, d[:], ph[:])
}

func encodeSignature(e *wire.Encoder, sig *crypto.Signature) {
	e.WriteFixed(sig.R.Bytes())
	e.WriteFixed(sig.S.Bytes())
}

func decodeSignature(d *wire.Decoder) (*crypto.Signature, error) {
	rb, err := d.ReadFixed(crypto.PointSize)
	if err != nil {
		return nil, err
	}
	r, err := crypto.PointFromBytes(rb)
	if err != nil {
		return nil, err
	}
	sb, err := d.ReadFixed(crypto.ScalarSize)
	if err != nil {
		return nil, err
	}
	s, err := crypto.ScalarFromBytes(sb)
	if err != nil {
		return nil, err
	}
	return &crypto.Signature{R: r, S: s}, nil
}

func (r *RecallStake) Serialize() ([]byte, error) {
	if err := r.Body.validate(); err != nil {
		return nil, err
	}
	e := wire.NewEncoder()
	r.Prefix.encode(e)
	r.Body.encode(e)
	r.kindData(e)
	encodeSignature(e, r.ViewSignature)
	encodeSignature(e, r.SpendSignature)
	e.WriteFixed([]byte{boolByte(r.Suffix.committed())})
	r.Suffix.encode(e)
	return e.Bytes(), nil
}

func DeserializeRecallStake(b []byte) (*RecallStake, error) {
	d := wire.NewDecoder(b)
	p, err := decodePrefix(d)
	if err != nil {
		return nil, err
	}
	if p.Header.Type != TagRecallStake {
		return nil, errs.New(errs.BadTag, "not a recall-stake transaction")
	}
	body, err := decodeBody(d)
	if err != nil {
		return nil, err
	}
	amount, err := d.ReadVarint()
	if err != nil {
		return nil, err
	}
	cand, err := readPoint(d)
	if err != nil {
		return nil, err
	}
	idb, err := d.ReadFixed(chainhash.HashSize)
	if err != nil {
		return nil, err
	}
	id, err := chainhash.NewHash(idb)
	if err != nil {
		return nil, err
	}
	viewSig, err := decodeSignature(d)
	if err != nil {
		return nil, err
	}
	spendSig, err := decodeSignature(d)
	if err != nil {
		return nil, err
	}
	suffix, err := decodeSuffix(d)
	if err != nil {
		return nil, err
	}
	rs := &RecallStake{
		Prefix: p, Body: body, StakeAmount: amount, CandidatePublicKey: cand,
		StakerID: *id, ViewSignature: viewSig, SpendSignature: spendSig, Suffix: suffix,
	}
	if err := rs.Body.validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

func (r *RecallStake) Mine(zeros int, params crypto.PowParams) bool {
	uc, ok := r.Suffix.(*UncommittedSuffix)
	if !ok {
		return false
	}
	rph := rangeProofHash(uc.RangeProof)
	nonce, found := mineLoop(func(nonce uint64) []byte {
		r.Body.Nonce = nonce
		return r.prefixBodyKindData()
	}, rph, zeros, params)
	r.Body.Nonce = nonce
	return found
}

func (r *RecallStake) PowHash(params crypto.PowParams) [32]byte {
	uc, ok := r.Suffix.(*UncommittedSuffix)
	if !ok {
		var zero [32]byte
		return zero
	}
	rph := rangeProofHash(uc.RangeProof)
	digest := r.Digest()
	preimage := chainhash.Sum(chainhash.DomainPowPreimage, digest[:], rph[:])
	return crypto.PowHash(preimage[:], params)
}

func (r *RecallStake) PowVerify(zeros int, params crypto.PowParams) bool {
	uc, ok := r.Suffix.(*UncommittedSuffix)
	if !ok {
		return false
	}
	rph := rangeProofHash(uc.RangeProof)
	return powVerifyAt(r.prefixBodyKindData(), rph, zeros, params)
}

func (r *RecallStake) ToCommitted() *RecallStake {
	cp := *r
	cp.Suffix = &CommittedSuffix{PruningHash: r.Suffix.pruningHash()}
	return &cp
}
