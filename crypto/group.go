// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package crypto wraps the prime-order group, key images, ring
// signatures, range proofs and proof-of-work primitives the rest of the
// node treats as black boxes: callers only store, serialize, hash and
// verify them through the operations exposed here. The group arithmetic
// itself is real (filippo.io/edwards25519); the ring-signature and
// range-proof constructions are working but simplified stand-ins for
// CLSAG and Bulletproofs+.
package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/nyxchain/nyxd/errs"
)

// ScalarSize and PointSize are the fixed wire lengths of a Scalar and a
// Point.
const (
	ScalarSize = 32
	PointSize  = 32
)

// Scalar is an element of the group's scalar field.
type Scalar struct{ s *edwards25519.Scalar }

// Point is an element of the prime-order group.
type Point struct{ p *edwards25519.Point }

// basepointScalarMult returns s*G, where G is the group generator.
func basepointScalarMult(s *edwards25519.Scalar) *edwards25519.Point {
	return new(edwards25519.Point).ScalarBaseMult(s)
}

// RandomScalar returns a uniformly random scalar, suitable for secret keys,
// transaction secret keys (tx_secret_key) and nonces.
func RandomScalar() (*Scalar, error) {
	var buf [64]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, errs.New(errs.GenericFailure, "rng failure: "+err.Error())
	}
	s, err := new(edwards25519.Scalar).SetUniformBytes(buf[:])
	if err != nil {
		return nil, errs.New(errs.GenericFailure, err.Error())
	}
	return &Scalar{s: s}, nil
}

// ScalarFromBytes decodes a canonical little-endian scalar encoding.
func ScalarFromBytes(b []byte) (*Scalar, error) {
	if len(b) != ScalarSize {
		return nil, errs.New(errs.BadKey, "scalar must be 32 bytes")
	}
	s, err := new(edwards25519.Scalar).SetCanonicalBytes(b)
	if err != nil {
		return nil, errs.New(errs.BadKey, "scalar not canonical: "+err.Error())
	}
	return &Scalar{s: s}, nil
}

// Bytes returns the canonical little-endian encoding of s.
func (s *Scalar) Bytes() []byte { return s.s.Bytes() }

// BasePoint returns s*G, the public point corresponding to secret scalar s.
func (s *Scalar) BasePoint() *Point {
	return &Point{p: basepointScalarMult(s.s)}
}

// Add returns s+other.
func (s *Scalar) Add(other *Scalar) *Scalar {
	return &Scalar{s: new(edwards25519.Scalar).Add(s.s, other.s)}
}

// Mul returns s*other.
func (s *Scalar) Mul(other *Scalar) *Scalar {
	return &Scalar{s: new(edwards25519.Scalar).Multiply(s.s, other.s)}
}

// PointFromBytes decodes a canonical point encoding. The bad_key error
// for an off-curve encoding is raised here, only when the point is
// actually used.
func PointFromBytes(b []byte) (*Point, error) {
	if len(b) != PointSize {
		return nil, errs.New(errs.BadKey, "point must be 32 bytes")
	}
	p, err := new(edwards25519.Point).SetBytes(b)
	if err != nil {
		return nil, errs.New(errs.BadKey, "point not on curve: "+err.Error())
	}
	return &Point{p: p}, nil
}

// Bytes returns the canonical compressed encoding of p.
func (p *Point) Bytes() []byte { return p.p.Bytes() }

// Add returns p+other.
func (p *Point) Add(other *Point) *Point {
	return &Point{p: new(edwards25519.Point).Add(p.p, other.p)}
}

// ScalarMul returns s*p.
func (p *Point) ScalarMul(s *Scalar) *Point {
	return &Point{p: new(edwards25519.Point).ScalarMult(s.s, p.p)}
}

// Equal reports whether p and other encode the same point.
func (p *Point) Equal(other *Point) bool {
	return p.p.Equal(other.p) == 1
}

// Less imposes a total order over points by their compressed byte
// encoding, used for candidate/validator key ordering.
func (p *Point) Less(other *Point) bool {
	a, b := p.Bytes(), other.Bytes()
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func (p *Point) String() string { return fmt.Sprintf("%x", p.Bytes()) }

// MarshalJSON renders p as a hex string, a diagnostics-only form never
// used for hashing.
func (p *Point) MarshalJSON() ([]byte, error) {
	return []byte(`"` + hex.EncodeToString(p.Bytes()) + `"`), nil
}

// UnmarshalJSON parses the hex string produced by MarshalJSON.
func (p *Point) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("point: invalid JSON string %q", s)
	}
	raw, err := hex.DecodeString(s[1 : len(s)-1])
	if err != nil {
		return fmt.Errorf("point: %w", err)
	}
	decoded, err := PointFromBytes(raw)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}

// MarshalJSON renders s as a hex string, a diagnostics-only form never
// used for hashing.
func (s *Scalar) MarshalJSON() ([]byte, error) {
	return []byte(`"` + hex.EncodeToString(s.Bytes()) + `"`), nil
}

// UnmarshalJSON parses the hex string produced by MarshalJSON.
func (s *Scalar) UnmarshalJSON(b []byte) error {
	str := string(b)
	if len(str) < 2 || str[0] != '"' || str[len(str)-1] != '"' {
		return fmt.Errorf("scalar: invalid JSON string %q", str)
	}
	raw, err := hex.DecodeString(str[1 : len(str)-1])
	if err != nil {
		return fmt.Errorf("scalar: %w", err)
	}
	decoded, err := ScalarFromBytes(raw)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}
