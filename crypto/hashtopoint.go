// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"encoding/binary"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/sha3"
)

// HashToPoint deterministically maps arbitrary data onto a group element.
// Not every 32-byte string decodes to a valid curve point, so this tries
// successive counter-suffixed hashes until one does — the "try-and-increment"
// approach used by the original CryptoNote hash-to-point construction this
// stands in for. The decoded point is multiplied by the cofactor so the
// result lies in the prime-order subgroup.
func HashToPoint(domain string, data []byte) *Point {
	var counter uint32
	for {
		h := sha3.New256()
		h.Write([]byte(domain))
		h.Write(data)
		var ctr [4]byte
		binary.LittleEndian.PutUint32(ctr[:], counter)
		h.Write(ctr[:])
		sum := h.Sum(nil)
		if p, err := PointFromBytes(sum); err == nil {
			return &Point{p: new(edwards25519.Point).MultByCofactor(p.p)}
		}
		counter++
	}
}
