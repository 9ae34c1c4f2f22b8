// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import "github.com/nyxchain/nyxd/chainhash"

// KeyImage is the group element uniquely derived from a one-time secret
// key, used as the double-spend tag. Two transactions
// that ever spend the same output produce the same KeyImage regardless of
// how they otherwise differ, which is what lets the ledger reject the
// second spend without knowing who signed it.
type KeyImage = Point

// DeriveKeyImage computes I = x * Hp(x*G) for one-time secret key x, where
// Hp is HashToPoint over the corresponding one-time public key.
func DeriveKeyImage(secret *Scalar) *KeyImage {
	pub := secret.BasePoint()
	hp := HashToPoint(chainhash.DomainHashToPoint, pub.Bytes())
	return hp.ScalarMul(secret)
}
