// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address

import "testing"

func TestCNBase58RoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		{0x01, 0x02, 0x03},
		{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}, // full block, 7 leading zero bytes
		make([]byte, 37),
	}
	for _, raw := range cases {
		enc := cnBase58Encode(raw)
		got, err := cnBase58Decode(enc)
		if err != nil {
			t.Fatalf("cnBase58Decode(%x): %v", raw, err)
		}
		if len(got) != len(raw) {
			t.Fatalf("round trip changed length: got %d bytes, want %d", len(got), len(raw))
		}
		for i := range raw {
			if got[i] != raw[i] {
				t.Fatalf("round trip mismatch at byte %d: got %x, want %x", i, got, raw)
			}
		}
	}
}

// TestCNBase58IsBlockWiseNotWholeBuffer pins the property that distinguishes
// this codec from whole-buffer Base58Check: a full 8-byte block always
// encodes to exactly fullEncodedBlockSize characters, regardless of how
// many of its leading bytes are zero (whole-buffer Base58 would instead
// shrink the encoding as leading zero bytes grow).
func TestCNBase58IsBlockWiseNotWholeBuffer(t *testing.T) {
	manyLeadingZeros := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff}
	noLeadingZeros := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

	a := cnBase58Encode(manyLeadingZeros)
	b := cnBase58Encode(noLeadingZeros)
	if len(a) != fullEncodedBlockSize || len(b) != fullEncodedBlockSize {
		t.Fatalf("full-block encodings must both be %d chars, got %d and %d", fullEncodedBlockSize, len(a), len(b))
	}
}

func TestCNBase58DecodeRejectsBadLength(t *testing.T) {
	if _, err := cnBase58Decode("1"); err == nil {
		t.Fatalf("decode of a length with no matching block-size table entry should fail")
	}
}

func TestCNBase58DecodeRejectsInvalidCharacter(t *testing.T) {
	if _, err := cnBase58Decode("0l"); err == nil {
		t.Fatalf("decode with a non-alphabet character ('0') should fail")
	}
}
