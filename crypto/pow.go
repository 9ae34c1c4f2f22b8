// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"math/bits"

	"golang.org/x/crypto/argon2"
)

// PowParams bundles the Argon2id tuning knobs.
type PowParams struct {
	Iterations uint32
	MemoryKB   uint32
	Threads    uint8
}

// DefaultPowParams is iter=2048, mem=1 MiB, lanes=1.
var DefaultPowParams = PowParams{Iterations: 2048, MemoryKB: 1024, Threads: 1}

// PowHash computes argon2id(preimage, iter, mem, lanes), using the preimage
// itself as the salt. The salt is not a security boundary here — preimage
// already binds the nonce — so PowHash is a pure function of its input and
// mining and verification evaluate the same predicate.
func PowHash(preimage []byte, p PowParams) [32]byte {
	salt := preimage // self-salted: deterministic given preimage, as required for pow_verify to be a pure predicate
	key := argon2.IDKey(preimage, salt, p.Iterations, p.MemoryKB, p.Threads, 32)
	var out [32]byte
	copy(out[:], key)
	return out
}

// LeadingZeroBits counts the number of leading zero bits in h, most
// significant byte first.
func LeadingZeroBits(h [32]byte) int {
	count := 0
	for _, b := range h {
		if b == 0 {
			count += 8
			continue
		}
		count += bits.LeadingZeros8(b)
		break
	}
	return count
}
