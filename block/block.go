// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package block implements the block envelope: an ordered transaction set
// under one producer signature and a validator quorum, with three nested
// digest modes so a producer's signature can be verified before any
// validator has signed, and a validator's signature before the full
// envelope (including other validators) is known.
package block

import (
	"github.com/nyxchain/nyxd/chainhash"
	"github.com/nyxchain/nyxd/crypto"
	"github.com/nyxchain/nyxd/errs"
	"github.com/nyxchain/nyxd/txn"
	"github.com/nyxchain/nyxd/wire"
)

// DigestMode selects how much of the block is hashed by message_digest.
type DigestMode int

const (
	// Producer covers everything up to and including the ordered
	// transaction set.
	Producer DigestMode = iota
	// Validator extends Producer with the producer's key and signature.
	Validator
	// Full extends Validator with the validator signature map.
	Full
)

// StakerRewardOutput is one (staker_id, amount) entry in the staker-reward
// pseudo-transaction that distributes a block's stake rewards.
type StakerRewardOutput struct {
	StakerID chainhash.Hash
	Amount   uint64
}

// StakerReward is the header-plus-outputs reward payout every block
// carries.
type StakerReward struct {
	Header  txn.Header
	Outputs []StakerRewardOutput
}

func (s StakerReward) encode(e *wire.Encoder) {
	s.Header.Encode(e)
	e.WriteSeqHeader(len(s.Outputs))
	for _, o := range s.Outputs {
		e.WriteFixed(o.StakerID[:])
		e.WriteVarint(o.Amount)
	}
}

func decodeStakerReward(d *wire.Decoder) (StakerReward, error) {
	h, err := txn.DecodeHeader(d)
	if err != nil {
		return StakerReward{}, err
	}
	n, err := d.ReadSeqHeader(0)
	if err != nil {
		return StakerReward{}, err
	}
	outs := make([]StakerRewardOutput, n)
	for i := range outs {
		idb, err := d.ReadFixed(chainhash.HashSize)
		if err != nil {
			return StakerReward{}, err
		}
		id, err := chainhash.NewHash(idb)
		if err != nil {
			return StakerReward{}, err
		}
		amt, err := d.ReadVarint()
		if err != nil {
			return StakerReward{}, err
		}
		outs[i] = StakerRewardOutput{StakerID: *id, Amount: amt}
	}
	return StakerReward{Header: h, Outputs: outs}, nil
}

// ValidatorEntry is one (key, signature) pair in a block's validator
// signature map, kept in ascending key order on encode.
type ValidatorEntry struct {
	Key       *crypto.Point
	Signature *crypto.Signature
}

// Block is the signed envelope the chain is made of.
type Block struct {
	Version             uint64
	PreviousBlockHash   chainhash.Hash
	Timestamp           uint64
	BlockIndex          uint64
	StakerRewardTx      StakerReward
	Transactions        []chainhash.Hash
	ProducerPublicKey   *crypto.Point
	ProducerSignature   *crypto.Signature
	ValidatorSignatures []ValidatorEntry
}

// New builds an unsigned block with its transaction set already sorted
// ascending.
func New(version uint64, prev chainhash.Hash, timestamp, blockIndex uint64, reward StakerReward, txs []chainhash.Hash) *Block {
	sorted := make([]chainhash.Hash, len(txs))
	copy(sorted, txs)
	insertionSortHashes(sorted)
	return &Block{
		Version:           version,
		PreviousBlockHash: prev,
		Timestamp:         timestamp,
		BlockIndex:        blockIndex,
		StakerRewardTx:    reward,
		Transactions:      sorted,
	}
}

func insertionSortHashes(h []chainhash.Hash) {
	for i := 1; i < len(h); i++ {
		for j := i; j > 0 && h[j].Less(h[j-1]); j-- {
			h[j], h[j-1] = h[j-1], h[j]
		}
	}
}

func (b *Block) encodeCore(e *wire.Encoder) {
	e.WriteVarint(b.Version)
	e.WriteFixed(b.PreviousBlockHash[:])
	e.WriteVarint(b.Timestamp)
	e.WriteVarint(b.BlockIndex)
	b.StakerRewardTx.encode(e)
	e.WriteSeqHeader(len(b.Transactions))
	for _, h := range b.Transactions {
		e.WriteFixed(h[:])
	}
}

func (b *Block) encodeProducer(e *wire.Encoder) error {
	b.encodeCore(e)
	if b.ProducerPublicKey == nil || b.ProducerSignature == nil {
		return errs.New(errs.InvalidSignature, "producer signature not present")
	}
	e.WriteFixed(b.ProducerPublicKey.Bytes())
	e.WriteFixed(b.ProducerSignature.R.Bytes())
	e.WriteFixed(b.ProducerSignature.S.Bytes())
	return nil
}

func (b *Block) encodeFull(e *wire.Encoder) error {
	if err := b.encodeProducer(e); err != nil {
		return err
	}
	sorted := sortedValidatorEntries(b.ValidatorSignatures)
	e.WriteSeqHeader(len(sorted))
	for _, v := range sorted {
		e.WriteFixed(v.Key.Bytes())
		e.WriteFixed(v.Signature.R.Bytes())
		e.WriteFixed(v.Signature.S.Bytes())
	}
	return nil
}

func sortedValidatorEntries(in []ValidatorEntry) []ValidatorEntry {
	out := make([]ValidatorEntry, len(in))
	copy(out, in)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Key.Less(out[j-1].Key); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// MessageDigest hashes the mode-selected portion of the envelope.
// Validator and Full both require a producer signature to already be
// present.
func (b *Block) MessageDigest(mode DigestMode) (chainhash.Hash, error) {
	e := wire.NewEncoder()
	switch mode {
	case Producer:
		b.encodeCore(e)
	case Validator:
		if err := b.encodeProducer(e); err != nil {
			return chainhash.Hash{}, err
		}
	case Full:
		if err := b.encodeFull(e); err != nil {
			return chainhash.Hash{}, err
		}
	default:
		return chainhash.Hash{}, errs.New(errs.GenericFailure, "unknown digest mode")
	}
	return chainhash.Sum(chainhash.DomainBlockDigest, []byte{byte(mode)}, e.Bytes()), nil
}

// ProducerSign sets producer_public_key = sk·G, signs the Producer-mode
// digest and stores the signature.
func (b *Block) ProducerSign(sk *crypto.Scalar) error {
	b.ProducerPublicKey = sk.BasePoint()
	b.ProducerSignature = nil
	digest, err := b.MessageDigest(Producer)
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(digest[:], sk)
	if err != nil {
		return err
	}
	b.ProducerSignature = sig
	return nil
}

// ValidatorSign signs the Validator-mode digest with sk and appends the
// (public key, signature) entry. Re-signing with a key already present is
// a no-op.
func (b *Block) ValidatorSign(sk *crypto.Scalar) error {
	pub := sk.BasePoint()
	for _, v := range b.ValidatorSignatures {
		if v.Key.Equal(pub) {
			return nil
		}
	}
	digest, err := b.MessageDigest(Validator)
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(digest[:], sk)
	if err != nil {
		return err
	}
	b.ValidatorSignatures = append(b.ValidatorSignatures, ValidatorEntry{Key: pub, Signature: sig})
	return nil
}

// ValidateConstruction runs the structural checks only: reward present,
// producer outside the validator map, and every signature verifying
// against its digest mode. Election-round authorization lives in the
// caller.
func (b *Block) ValidateConstruction() error {
	if len(b.StakerRewardTx.Outputs) < 1 {
		return errs.New(errs.TooFewOutputs, "staker reward must have at least one output")
	}
	if b.ProducerPublicKey == nil || b.ProducerSignature == nil {
		return errs.New(errs.InvalidSignature, "missing producer signature")
	}
	for _, v := range b.ValidatorSignatures {
		if v.Key.Equal(b.ProducerPublicKey) {
			return errs.New(errs.InvalidSignature, "producer key present in validator map")
		}
	}
	producerDigest, err := b.MessageDigest(Producer)
	if err != nil {
		return err
	}
	if !crypto.Verify(producerDigest[:], b.ProducerPublicKey, b.ProducerSignature) {
		return errs.New(errs.InvalidSignature, "producer signature does not verify")
	}
	if len(b.ValidatorSignatures) == 0 {
		return errs.New(errs.InvalidSignature, "validator signature map is empty")
	}
	validatorDigest, err := b.MessageDigest(Validator)
	if err != nil {
		return err
	}
	for _, v := range b.ValidatorSignatures {
		if !crypto.Verify(validatorDigest[:], v.Key, v.Signature) {
			return errs.New(errs.InvalidSignature, "validator signature does not verify")
		}
	}
	return nil
}

// Hash returns the block's canonical identity, the FULL-mode digest.
func (b *Block) Hash() (chainhash.Hash, error) {
	return b.MessageDigest(Full)
}

// Serialize writes the complete envelope, including the validator map.
func (b *Block) Serialize() ([]byte, error) {
	e := wire.NewEncoder()
	if err := b.encodeFull(e); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// Deserialize parses a complete envelope written by Serialize.
func Deserialize(buf []byte) (*Block, error) {
	d := wire.NewDecoder(buf)
	version, err := d.ReadVarint()
	if err != nil {
		return nil, err
	}
	prevB, err := d.ReadFixed(chainhash.HashSize)
	if err != nil {
		return nil, err
	}
	prev, err := chainhash.NewHash(prevB)
	if err != nil {
		return nil, err
	}
	ts, err := d.ReadVarint()
	if err != nil {
		return nil, err
	}
	idx, err := d.ReadVarint()
	if err != nil {
		return nil, err
	}
	reward, err := decodeStakerReward(d)
	if err != nil {
		return nil, err
	}
	nTx, err := d.ReadSeqHeader(0)
	if err != nil {
		return nil, err
	}
	txs := make([]chainhash.Hash, nTx)
	for i := range txs {
		hb, err := d.ReadFixed(chainhash.HashSize)
		if err != nil {
			return nil, err
		}
		h, err := chainhash.NewHash(hb)
		if err != nil {
			return nil, err
		}
		txs[i] = *h
	}
	pkb, err := d.ReadFixed(crypto.PointSize)
	if err != nil {
		return nil, err
	}
	pk, err := crypto.PointFromBytes(pkb)
	if err != nil {
		return nil, err
	}
	producerSig, err := decodeSignature(d)
	if err != nil {
		return nil, err
	}
	nVal, err := d.ReadSeqHeader(0)
	if err != nil {
		return nil, err
	}
	validators := make([]ValidatorEntry, nVal)
	for i := range validators {
		kb, err := d.ReadFixed(crypto.PointSize)
		if err != nil {
			return nil, err
		}
		k, err := crypto.PointFromBytes(kb)
		if err != nil {
			return nil, err
		}
		sig, err := decodeSignature(d)
		if err != nil {
			return nil, err
		}
		validators[i] = ValidatorEntry{Key: k, Signature: sig}
	}
	return &Block{
		Version:             version,
		PreviousBlockHash:   *prev,
		Timestamp:           ts,
		BlockIndex:          idx,
		StakerRewardTx:      reward,
		Transactions:        txs,
		ProducerPublicKey:   pk,
		ProducerSignature:   producerSig,
		ValidatorSignatures: validators,
	}, nil
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
