// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"filippo.io/edwards25519"
	"golang.org/x/crypto/sha3"

	"github.com/nyxchain/nyxd/chainhash"
)

// Signature is a plain Schnorr signature, used for the RecallStake
// transaction's view_signature/spend_signature proofs of staker
// ownership — a simpler primitive than the ring signature above since
// there both the public key and the signer are known in the clear.
type Signature struct {
	R *Point
	S *Scalar
}

// Sign produces a Schnorr signature over m with secret key x.
func Sign(m []byte, secret *Scalar) (*Signature, error) {
	k, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	r := k.BasePoint()
	e := schnorrChallenge(secret.BasePoint(), r, m)
	s := k.Add(e.Mul(secret))
	return &Signature{R: r, S: s}, nil
}

// Verify checks sig against public key pub and message m.
func Verify(m []byte, pub *Point, sig *Signature) bool {
	e := schnorrChallenge(pub, sig.R, m)
	lhs := sig.S.BasePoint()
	rhs := sig.R.Add(pub.ScalarMul(e))
	return lhs.Equal(rhs)
}

func schnorrChallenge(pub, r *Point, m []byte) *Scalar {
	h := sha3.New256()
	h.Write([]byte(chainhash.DomainHashToPoint))
	h.Write(pub.Bytes())
	h.Write(r.Bytes())
	h.Write(m)
	sum := h.Sum(nil)
	wide := append(append([]byte{}, sum...), sum...)
	s, _ := new(edwards25519.Scalar).SetUniformBytes(wide)
	return &Scalar{s: s}
}
