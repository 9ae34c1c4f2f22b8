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

// Stake locks coin toward a candidate, creating one stake edge (see also
// package staking).
type Stake struct {
	Prefix               Prefix
	Body                 Body
	StakeAmount          uint64
	CandidatePublicKey   *crypto.Point
	StakerPublicViewKey  *crypto.Point
	StakerPublicSpendKey *crypto.Point
	Suffix               Suffix
}

func (s *Stake) Kind() Tag { return TagStake }

func (s *Stake) kindData(e *wire.Encoder) {
	e.WriteVarint(s.StakeAmount)
	e.WriteFixed(s.CandidatePublicKey.Bytes())
	e.WriteFixed(s.StakerPublicViewKey.Bytes())
	e.WriteFixed(s.StakerPublicSpendKey.Bytes())
}

func (s *Stake) prefixBodyKindData() []byte {
	e := wire.NewEncoder()
	s.Prefix.encode(e)
	s.Body.encode(e)
	s.kindData(e)
	return e.Bytes()
}

func (s *Stake) Digest() chainhash.Hash {
	return chainhash.Sum(chainhash.DomainTxDigest, s.prefixBodyKindData())
}

func (s *Stake) PruningHash() chainhash.Hash { return s.Suffix.pruningHash() }

func (s *Stake) Hash() chainhash.Hash {
	d := s.Digest()
	ph := s.PruningHash()
	return chainhash.Sum(chainhash.DomainTxHash, d[:], ph[:])
}

func (s *Stake) Serialize() ([]byte, error) {
	if err := s.Body.validate(); err != nil {
		return nil, err
	}
	e := wire.NewEncoder()
	s.Prefix.encode(e)
	s.Body.encode(e)
	s.kindData(e)
	e.WriteFixed([]byte{boolByte(s.Suffix.committed())})
	s.Suffix.encode(e)
	return e.Bytes(), nil
}

func DeserializeStake(b []byte) (*Stake, error) {
	d := wire.NewDecoder(b)
	p, err := decodePrefix(d)
	if err != nil {
		return nil, err
	}
	if p.Header.Type != TagStake {
		return nil, errs.New(errs.BadTag, "not a stake transaction")
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
	view, err := readPoint(d)
	if err != nil {
		return nil, err
	}
	spend, err := readPoint(d)
	if err != nil {
		return nil, err
	}
	suffix, err := decodeSuffix(d)
	if err != nil {
		return nil, err
	}
	st := &Stake{
		Prefix: p, Body: body, StakeAmount: amount,
		CandidatePublicKey: cand, StakerPublicViewKey: view, StakerPublicSpendKey: spend,
		Suffix: suffix,
	}
	if err := st.Body.validate(); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Stake) Mine(zeros int, params crypto.PowParams) bool {
	uc, ok := s.Suffix.(*UncommittedSuffix)
	if !ok {
		return false
	}
	rph := rangeProofHash(uc.RangeProof)
	nonce, found := mineLoop(func(nonce uint64) []byte {
		s.Body.Nonce = nonce
		return s.prefixBodyKindData()
	}, rph, zeros, params)
	s.Body.Nonce = nonce
	return found
}

func (s *Stake) PowHash(params crypto.PowParams) [32]byte {
	uc, ok := s.Suffix.(*UncommittedSuffix)
	if !ok {
		var zero [32]byte
		return zero
	}
	rph := rangeProofHash(uc.RangeProof)
	digest := s.Digest()
	preimage := chainhash.Sum(chainhash.DomainPowPreimage, digest[:], rph[:])
	return crypto.PowHash(preimage[:], params)
}

func (s *Stake) PowVerify(zeros int, params crypto.PowParams) bool {
	uc, ok := s.Suffix.(*UncommittedSuffix)
	if !ok {
		return false
	}
	rph := rangeProofHash(uc.RangeProof)
	return powVerifyAt(s.prefixBodyKindData(), rph, zeros, params)
}

func (s *Stake) ToCommitted() *Stake {
	cp := *s
	cp.Suffix = &CommittedSuffix{PruningHash: s.Suffix.pruningHash()}
	return &cp
}

func readPoint(d *wire.Decoder) (*crypto.Point, error) {
	b, err := d.ReadFixed(crypto.PointSize)
	if err != nil {
		return nil, err
	}
	return crypto.PointFromBytes(b)
}
