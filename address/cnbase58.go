// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address

import (
	"math/big"

	"github.com/nyxchain/nyxd/errs"
)

var (
	errBadLength     = errs.New(errs.Base58Decode, "invalid base58 address length")
	errBadChar       = errs.New(errs.Base58Decode, "invalid base58 character")
	errBlockOverflow = errs.New(errs.Base58Decode, "base58 block value exceeds its raw block size")
)

// cnBase58 implements CryptoNote's block-wise Base58. It differs from
// whole-buffer Base58Check (github.com/decred/base58's Encode/Decode):
// the payload is split into fixed 8-byte blocks, and each block is
// encoded to a *fixed*-width string padded with the zero digit, rather
// than one big-integer encode of the whole buffer where leading zero
// bytes collapse to leading '1' characters. math/big is sufficient for
// the per-block arithmetic since a full block only ever holds 8 bytes.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

const fullBlockSize = 8
const fullEncodedBlockSize = 11

// encodedBlockSizes[n] is the CryptoNote table's fixed output width, in
// characters, for an n-byte input block.
var encodedBlockSizes = [fullBlockSize + 1]int{0, 2, 3, 4, 6, 7, 9, 10, 11}

var rawBlockSizeForEncoded = func() map[int]int {
	m := make(map[int]int, len(encodedBlockSizes))
	for raw, enc := range encodedBlockSizes {
		m[enc] = raw
	}
	return m
}()

var base58DigitValue = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i, c := range []byte(base58Alphabet) {
		t[c] = int8(i)
	}
	return t
}()

var bigBase58 = big.NewInt(58)

// cnBase58Encode block-encodes payload per the table above.
func cnBase58Encode(payload []byte) string {
	var out []byte
	for len(payload) >= fullBlockSize {
		out = append(out, encodeBlock(payload[:fullBlockSize])...)
		payload = payload[fullBlockSize:]
	}
	if len(payload) > 0 {
		out = append(out, encodeBlock(payload)...)
	}
	return string(out)
}

func encodeBlock(block []byte) string {
	width := encodedBlockSizes[len(block)]
	num := new(big.Int).SetBytes(block)
	digits := make([]byte, 0, width)
	mod := new(big.Int)
	zero := big.NewInt(0)
	for num.Cmp(zero) > 0 {
		num.DivMod(num, bigBase58, mod)
		digits = append(digits, base58Alphabet[mod.Int64()])
	}
	for len(digits) < width {
		digits = append(digits, base58Alphabet[0])
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

// cnBase58Decode recovers the raw payload from s, rejecting invalid
// characters, a length that doesn't correspond to any valid block-size
// table entry, and per-block values that overflow their raw block size.
func cnBase58Decode(s string) ([]byte, error) {
	n := len(s)
	fullBlocks := n / fullEncodedBlockSize
	remainder := n % fullEncodedBlockSize
	lastRawSize, ok := rawBlockSizeForEncoded[remainder]
	if !ok {
		return nil, errBadLength
	}

	out := make([]byte, 0, fullBlocks*fullBlockSize+lastRawSize)
	for i := 0; i < fullBlocks; i++ {
		block, err := decodeBlock(s[i*fullEncodedBlockSize:(i+1)*fullEncodedBlockSize], fullBlockSize)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
	}
	if remainder > 0 {
		block, err := decodeBlock(s[fullBlocks*fullEncodedBlockSize:], lastRawSize)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
	}
	return out, nil
}

func decodeBlock(chunk string, rawSize int) ([]byte, error) {
	num := new(big.Int)
	for i := 0; i < len(chunk); i++ {
		d := base58DigitValue[chunk[i]]
		if d < 0 {
			return nil, errBadChar
		}
		num.Mul(num, bigBase58)
		num.Add(num, big.NewInt(int64(d)))
	}
	if num.BitLen() > rawSize*8 {
		return nil, errBlockOverflow
	}
	raw := num.Bytes()
	out := make([]byte, rawSize)
	copy(out[rawSize-len(raw):], raw)
	return out, nil
}
