// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import "github.com/nyxchain/nyxd/wire"

// Encode/Decode for RingSignature and RangeProof live here rather than in
// package txn: the wire shape of a signature is this package's
// concern, not the transaction family's.

// Encode appends sig's canonical wire encoding to e.
func (sig *RingSignature) Encode(e *wire.Encoder) {
	e.WriteFixed(sig.C0.Bytes())
	e.WriteSeqHeader(len(sig.Responses))
	for _, r := range sig.Responses {
		e.WriteFixed(r.Bytes())
	}
}

// DecodeRingSignature reads a RingSignature with at most maxRing responses.
func DecodeRingSignature(d *wire.Decoder, maxRing int) (*RingSignature, error) {
	c0b, err := d.ReadFixed(ScalarSize)
	if err != nil {
		return nil, err
	}
	c0, err := ScalarFromBytes(c0b)
	if err != nil {
		return nil, err
	}
	n, err := d.ReadSeqHeader(maxRing)
	if err != nil {
		return nil, err
	}
	resp := make([]*Scalar, n)
	for i := range resp {
		rb, err := d.ReadFixed(ScalarSize)
		if err != nil {
			return nil, err
		}
		r, err := ScalarFromBytes(rb)
		if err != nil {
			return nil, err
		}
		resp[i] = r
	}
	return &RingSignature{C0: c0, Responses: resp}, nil
}

// Encode appends rp's canonical wire encoding to e: the per-bit Pedersen
// commitments followed by each bit's OR-proof (c0,c1,s0,s1).
func (rp *RangeProof) Encode(e *wire.Encoder) {
	e.WriteSeqHeader(len(rp.BitCommitments))
	for _, c := range rp.BitCommitments {
		e.WriteFixed(c.Bytes())
	}
	e.WriteSeqHeader(len(rp.Proofs))
	for _, p := range rp.Proofs {
		e.WriteFixed(p.c0.Bytes())
		e.WriteFixed(p.c1.Bytes())
		e.WriteFixed(p.s0.Bytes())
		e.WriteFixed(p.s1.Bytes())
	}
}

// DecodeRangeProof reads a RangeProof with at most RangeProofBits bit
// commitments and at most RangeProofBits bit proofs.
func DecodeRangeProof(d *wire.Decoder) (*RangeProof, error) {
	n, err := d.ReadSeqHeader(RangeProofBits)
	if err != nil {
		return nil, err
	}
	commitments := make([]*Point, n)
	for i := range commitments {
		cb, err := d.ReadFixed(PointSize)
		if err != nil {
			return nil, err
		}
		c, err := PointFromBytes(cb)
		if err != nil {
			return nil, err
		}
		commitments[i] = c
	}
	m, err := d.ReadSeqHeader(RangeProofBits)
	if err != nil {
		return nil, err
	}
	proofs := make([]*bitOrProof, m)
	for i := range proofs {
		c0b, err := d.ReadFixed(ScalarSize)
		if err != nil {
			return nil, err
		}
		c1b, err := d.ReadFixed(ScalarSize)
		if err != nil {
			return nil, err
		}
		s0b, err := d.ReadFixed(ScalarSize)
		if err != nil {
			return nil, err
		}
		s1b, err := d.ReadFixed(ScalarSize)
		if err != nil {
			return nil, err
		}
		c0, err := ScalarFromBytes(c0b)
		if err != nil {
			return nil, err
		}
		c1, err := ScalarFromBytes(c1b)
		if err != nil {
			return nil, err
		}
		s0, err := ScalarFromBytes(s0b)
		if err != nil {
			return nil, err
		}
		s1, err := ScalarFromBytes(s1b)
		if err != nil {
			return nil, err
		}
		proofs[i] = &bitOrProof{c0: c0, c1: c1, s0: s0, s1: s1}
	}
	return &RangeProof{BitCommitments: commitments, Proofs: proofs}, nil
}
