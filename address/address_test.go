// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address

import (
	"testing"

	"github.com/nyxchain/nyxd/crypto"
	"github.com/nyxchain/nyxd/errs"
)

func mustKeypair(t *testing.T) (spend, view *crypto.Point) {
	t.Helper()
	s1, err := crypto.RandomScalar()
	if err != nil {
		t.Fatalf("random scalar: %v", err)
	}
	s2, err := crypto.RandomScalar()
	if err != nil {
		t.Fatalf("random scalar: %v", err)
	}
	return s1.BasePoint(), s2.BasePoint()
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	spend, view := mustKeypair(t)
	encoded := Encode(spend, view)

	gotSpend, gotView, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !gotSpend.Equal(spend) {
		t.Fatalf("decoded spend key does not match")
	}
	if !gotView.Equal(view) {
		t.Fatalf("decoded view key does not match")
	}
}

func TestDecodeRejectsBadChecksum(t *testing.T) {
	spend, view := mustKeypair(t)
	encoded := Encode(spend, view)
	corrupted := encoded[:len(encoded)-1] + flipLastChar(encoded[len(encoded)-1:])

	if _, _, err := Decode(corrupted); !errs.Is(err, errs.Base58Decode) {
		t.Fatalf("Decode(corrupted) = %v, want errs.Base58Decode", err)
	}
}

func flipLastChar(s string) string {
	if s == "1" {
		return "2"
	}
	return "1"
}

func TestDecodeRejectsMalformedLength(t *testing.T) {
	// A one-character string matches no entry of the block-size table, so
	// it fails the length check in cnBase58Decode before any checksum or
	// prefix is looked at.
	if _, _, err := Decode("1"); !errs.Is(err, errs.Base58Decode) {
		t.Fatalf("Decode(short) = %v, want errs.Base58Decode", err)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	spend, view := mustKeypair(t)
	a := Encode(spend, view)
	b := Encode(spend, view)
	if a != b {
		t.Fatalf("Encode is not deterministic: %q != %q", a, b)
	}
}
