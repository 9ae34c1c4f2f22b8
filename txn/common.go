// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txn implements the tagged transaction family: six kinds sharing
// a header/prefix/body/suffix layout, modeled as a closed tagged union.
// Each kind is its own Go struct implementing the Transaction interface,
// and computes its identity (digest/pruning_hash/hash) in its own methods
// rather than inheriting it.
package txn

import (
	"github.com/nyxchain/nyxd/chainhash"
	"github.com/nyxchain/nyxd/crypto"
	"github.com/nyxchain/nyxd/errs"
	"github.com/nyxchain/nyxd/wire"
)

// Tag discriminates the six transaction kinds.
type Tag uint8

const (
	TagGenesis Tag = iota + 1
	TagCoinbase
	TagNormal
	TagStake
	TagRecallStake
	TagStakeRefund
)

// Transaction bounds.
const (
	MaxInputs  = 8
	MinOutputs = 2
	MaxOutputs = 8
	MaxExtra   = 1024
	RingSize   = 512
)

// Header is shared by every kind and is immutable after creation.
type Header struct {
	Type    Tag
	Version uint64
}

func (h Header) encode(e *wire.Encoder) {
	e.WriteVarint(uint64(h.Type))
	e.WriteVarint(h.Version)
}

// Encode and DecodeHeader expose Header's wire codec to other packages
// that embed a header of their own — the staker-reward payout in package
// block is the one caller.
func (h Header) Encode(e *wire.Encoder) { h.encode(e) }

func DecodeHeader(d *wire.Decoder) (Header, error) { return decodeHeader(d) }

func decodeHeader(d *wire.Decoder) (Header, error) {
	t, err := d.ReadVarint()
	if err != nil {
		return Header{}, err
	}
	v, err := d.ReadVarint()
	if err != nil {
		return Header{}, err
	}
	return Header{Type: Tag(t), Version: v}, nil
}

// Prefix is shared by every kind: header + unlock height + the one-time
// transaction public key.
type Prefix struct {
	Header      Header
	UnlockBlock uint64
	TxPublicKey *crypto.Point
}

func (p Prefix) encode(e *wire.Encoder) {
	p.Header.encode(e)
	e.WriteVarint(p.UnlockBlock)
	e.WriteFixed(p.TxPublicKey.Bytes())
}

func decodePrefix(d *wire.Decoder) (Prefix, error) {
	h, err := decodeHeader(d)
	if err != nil {
		return Prefix{}, err
	}
	unlock, err := d.ReadVarint()
	if err != nil {
		return Prefix{}, err
	}
	pkBytes, err := d.ReadFixed(crypto.PointSize)
	if err != nil {
		return Prefix{}, err
	}
	pk, err := crypto.PointFromBytes(pkBytes)
	if err != nil {
		return Prefix{}, err
	}
	return Prefix{Header: h, UnlockBlock: unlock, TxPublicKey: pk}, nil
}

// Output is an ordered (destination key, amount, Pedersen commitment)
// triple.
type Output struct {
	PublicKey  *crypto.Point
	Amount     uint64
	Commitment *crypto.Point
}

func (o Output) encode(e *wire.Encoder) {
	e.WriteFixed(o.PublicKey.Bytes())
	e.WriteVarint(o.Amount)
	e.WriteFixed(o.Commitment.Bytes())
}

func decodeOutput(d *wire.Decoder) (Output, error) {
	pkb, err := d.ReadFixed(crypto.PointSize)
	if err != nil {
		return Output{}, err
	}
	pk, err := crypto.PointFromBytes(pkb)
	if err != nil {
		return Output{}, err
	}
	amt, err := d.ReadVarint()
	if err != nil {
		return Output{}, err
	}
	cb, err := d.ReadFixed(crypto.PointSize)
	if err != nil {
		return Output{}, err
	}
	c, err := crypto.PointFromBytes(cb)
	if err != nil {
		return Output{}, err
	}
	return Output{PublicKey: pk, Amount: amt, Commitment: c}, nil
}

func encodeOutputs(e *wire.Encoder, outs []Output) {
	e.WriteSeqHeader(len(outs))
	for _, o := range outs {
		o.encode(e)
	}
}

func decodeOutputs(d *wire.Decoder, max int) ([]Output, error) {
	n, err := d.ReadSeqHeader(max)
	if err != nil {
		return nil, err
	}
	out := make([]Output, n)
	for i := range out {
		o, err := decodeOutput(d)
		if err != nil {
			return nil, err
		}
		out[i] = o
	}
	return out, nil
}

// Body is shared by the normal/stake/recall-stake kinds: nonce, fee, the
// set of key images being spent, and the ordered outputs being created.
type Body struct {
	Nonce     uint64
	Fee       uint64
	KeyImages []*crypto.KeyImage
	Outputs   []Output
}

func (b Body) encode(e *wire.Encoder) {
	e.WriteVarint(b.Nonce)
	e.WriteVarint(b.Fee)
	e.WriteSeqHeader(len(b.KeyImages))
	for _, ki := range sortedKeyImages(b.KeyImages) {
		e.WriteFixed(ki.Bytes())
	}
	encodeOutputs(e, b.Outputs)
}

func sortedKeyImages(in []*crypto.KeyImage) []*crypto.KeyImage {
	out := make([]*crypto.KeyImage, len(in))
	copy(out, in)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Less(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func decodeBody(d *wire.Decoder) (Body, error) {
	nonce, err := d.ReadVarint()
	if err != nil {
		return Body{}, err
	}
	fee, err := d.ReadVarint()
	if err != nil {
		return Body{}, err
	}
	n, err := d.ReadSeqHeader(MaxInputs)
	if err != nil {
		return Body{}, err
	}
	kis := make([]*crypto.KeyImage, n)
	for i := range kis {
		b, err := d.ReadFixed(crypto.PointSize)
		if err != nil {
			return Body{}, err
		}
		ki, err := crypto.PointFromBytes(b)
		if err != nil {
			return Body{}, err
		}
		kis[i] = ki
	}
	outs, err := decodeOutputs(d, MaxOutputs)
	if err != nil {
		return Body{}, err
	}
	return Body{Nonce: nonce, Fee: fee, KeyImages: kis, Outputs: outs}, nil
}

// validate enforces the body bounds: 1..MaxInputs key images and
// MinOutputs..MaxOutputs outputs. Fee-vs-formula and key-image uniqueness
// across the chain are ledger-level concerns, not structural ones.
func (b Body) validate() error {
	if len(b.KeyImages) < 1 || len(b.KeyImages) > MaxInputs {
		return errs.New(errs.TooManyOutputs, "key image count out of bounds")
	}
	if len(b.Outputs) < MinOutputs {
		return errs.New(errs.TooFewOutputs, "too few outputs")
	}
	if len(b.Outputs) > MaxOutputs {
		return errs.New(errs.TooManyOutputs, "too many outputs")
	}
	return nil
}

// Suffix is the dual-mode tail shared by normal/stake/recall-stake
// transactions: Uncommitted carries the real signature material, Committed
// stores only the hash of it (pruning).
type Suffix interface {
	committed() bool
	pruningHash() chainhash.Hash
	encode(e *wire.Encoder)
}

// UncommittedSuffix carries the full signature material.
type UncommittedSuffix struct {
	Offsets    []uint64
	Signatures []*crypto.RingSignature
	RangeProof *crypto.RangeProof
}

func (s *UncommittedSuffix) committed() bool { return false }

func (s *UncommittedSuffix) pruningHash() chainhash.Hash {
	e := wire.NewEncoder()
	s.encodeRaw(e)
	return chainhash.Sum(chainhash.DomainPruningHash, e.Bytes())
}

func (s *UncommittedSuffix) encode(e *wire.Encoder) { s.encodeRaw(e) }

func (s *UncommittedSuffix) encodeRaw(e *wire.Encoder) {
	e.WriteSeqHeader(len(s.Offsets))
	for _, o := range s.Offsets {
		e.WriteVarint(o)
	}
	e.WriteSeqHeader(len(s.Signatures))
	for _, sig := range s.Signatures {
		sig.Encode(e)
	}
	s.RangeProof.Encode(e)
}

// decodeUncommittedSuffix mirrors encodeRaw exactly so pruning_hash is
// recomputed identically on both sides of a deserialize round-trip.
func decodeUncommittedSuffix(d *wire.Decoder) (*UncommittedSuffix, error) {
	nOffsets, err := d.ReadSeqHeader(MaxInputs)
	if err != nil {
		return nil, err
	}
	offsets := make([]uint64, nOffsets)
	for i := range offsets {
		v, err := d.ReadVarint()
		if err != nil {
			return nil, err
		}
		offsets[i] = v
	}
	nSigs, err := d.ReadSeqHeader(MaxInputs)
	if err != nil {
		return nil, err
	}
	sigs := make([]*crypto.RingSignature, nSigs)
	for i := range sigs {
		sig, err := crypto.DecodeRingSignature(d, RingSize)
		if err != nil {
			return nil, err
		}
		sigs[i] = sig
	}
	rp, err := crypto.DecodeRangeProof(d)
	if err != nil {
		return nil, err
	}
	return &UncommittedSuffix{Offsets: offsets, Signatures: sigs, RangeProof: rp}, nil
}

// CommittedSuffix stores only the pruning hash; the signature material it
// replaces is gone for good.
type CommittedSuffix struct {
	PruningHash chainhash.Hash
}

func (s *CommittedSuffix) committed() bool             { return true }
func (s *CommittedSuffix) pruningHash() chainhash.Hash { return s.PruningHash }
func (s *CommittedSuffix) encode(e *wire.Encoder)      { e.WriteFixed(s.PruningHash[:]) }

// identity computes the (digest, hash) pair shared by every body-bearing
// kind:
//
//	digest = sha3(prefix || body || kind_data)
//	hash   = sha3(digest || pruning_hash)
func identity(prefixAndBody []byte, suffix Suffix) (digest chainhash.Hash, hash chainhash.Hash) {
	digest = chainhash.Sum(chainhash.DomainTxDigest, prefixAndBody)
	ph := suffix.pruningHash()
	hash = chainhash.Sum(chainhash.DomainTxHash, digest[:], ph[:])
	return digest, hash
}

// rangeProofHash canonically hashes a range proof's bit commitments, the
// second input to the proof-of-work preimage
// argon2id(sha3(digest || range_proof_hash)).
func rangeProofHash(rp *crypto.RangeProof) chainhash.Hash {
	e := wire.NewEncoder()
	for _, c := range rp.BitCommitments {
		e.WriteFixed(c.Bytes())
	}
	return chainhash.Sum(chainhash.DomainPowPreimage, e.Bytes())
}

// mineLoop is shared by every body-bearing kind's Mine method. digestAt
// recomputes "prefix || body || kind_data" for the given nonce (nonce lives
// inside Body and so participates in the digest). It returns the first
// nonce that meets the target, or false if nonce saturates math.MaxUint64
// first.
func mineLoop(digestAt func(nonce uint64) []byte, rpHash chainhash.Hash, zeros int, params crypto.PowParams) (uint64, bool) {
	for nonce := uint64(0); ; nonce++ {
		digest := chainhash.Sum(chainhash.DomainTxDigest, digestAt(nonce))
		preimage := chainhash.Sum(chainhash.DomainPowPreimage, digest[:], rpHash[:])
		h := crypto.PowHash(preimage[:], params)
		if crypto.LeadingZeroBits(h) >= zeros {
			return nonce, true
		}
		if nonce == ^uint64(0) {
			return 0, false
		}
	}
}

// powVerifyAt is the non-mutating predicate twin of mineLoop.
func powVerifyAt(digest []byte, rpHash chainhash.Hash, zeros int, params crypto.PowParams) bool {
	d := chainhash.Sum(chainhash.DomainTxDigest, digest)
	preimage := chainhash.Sum(chainhash.DomainPowPreimage, d[:], rpHash[:])
	h := crypto.PowHash(preimage[:], params)
	return crypto.LeadingZeroBits(h) >= zeros
}

// decodeExtra reads a tx_extra field bounded by MaxExtra.
func decodeExtra(d *wire.Decoder) ([]byte, error) {
	b, err := d.ReadVarBytes(MaxExtra)
	if err != nil {
		return nil, errs.New(errs.ExtraTooLarge, "tx_extra exceeds maximum size")
	}
	return b, nil
}
