// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package address implements the Cryptonote-style, block-wise Base58
// public-wallet-address codec:
//
//	Base58Check(varint(PUBLIC_ADDRESS_PREFIX) || public_spend || public_view)
package address

import (
	"github.com/nyxchain/nyxd/crypto"
	"github.com/nyxchain/nyxd/errs"
	"github.com/nyxchain/nyxd/wire"
	"golang.org/x/crypto/sha3"
)

// Prefix is the chain's public address prefix.
const Prefix = 0x6bb3b1d

// checksumSize is the length, in bytes, of the trailing checksum appended
// before Base58 encoding (Bitcoin/CryptoNote convention: first 4 bytes of
// a double sha3-256 hash of the payload).
const checksumSize = 4

// Encode returns the Base58Check-encoded public address for (spend, view).
func Encode(spend, view *crypto.Point) string {
	e := wire.NewEncoder()
	e.WriteVarint(Prefix)
	e.WriteFixed(spend.Bytes())
	e.WriteFixed(view.Bytes())
	payload := e.Bytes()

	sum := checksum(payload)
	full := append(append([]byte{}, payload...), sum[:checksumSize]...)
	return cnBase58Encode(full)
}

// Decode recovers (spend, view) from a Base58Check address string produced
// by Encode, failing with errs.Base58Decode on malformed Base58,
// errs.AddressPrefixMismatch if the decoded prefix does not equal Prefix,
// and errs.NotAPublicKey if either key does not decode to a curve point.
func Decode(s string) (spend, view *crypto.Point, err error) {
	raw, derr := cnBase58Decode(s)
	if derr != nil {
		return nil, nil, derr
	}
	if len(raw) <= checksumSize {
		return nil, nil, errs.New(errs.Base58Decode, "address too short")
	}
	payload := raw[:len(raw)-checksumSize]
	wantSum := raw[len(raw)-checksumSize:]
	gotSum := checksum(payload)
	for i := 0; i < checksumSize; i++ {
		if wantSum[i] != gotSum[i] {
			return nil, nil, errs.New(errs.Base58Decode, "checksum mismatch")
		}
	}

	d := wire.NewDecoder(payload)
	prefix, derr := d.ReadVarint()
	if derr != nil {
		return nil, nil, errs.New(errs.Base58Decode, derr.Error())
	}
	if prefix != Prefix {
		return nil, nil, errs.New(errs.AddressPrefixMismatch, "unexpected address prefix")
	}
	spendBytes, derr := d.ReadFixed(crypto.PointSize)
	if derr != nil {
		return nil, nil, errs.New(errs.Base58Decode, derr.Error())
	}
	viewBytes, derr := d.ReadFixed(crypto.PointSize)
	if derr != nil {
		return nil, nil, errs.New(errs.Base58Decode, derr.Error())
	}
	spend, perr := crypto.PointFromBytes(spendBytes)
	if perr != nil {
		return nil, nil, errs.New(errs.NotAPublicKey, "public_spend: "+perr.Error())
	}
	view, perr = crypto.PointFromBytes(viewBytes)
	if perr != nil {
		return nil, nil, errs.New(errs.NotAPublicKey, "public_view: "+perr.Error())
	}
	return spend, view, nil
}

// checksum is sha3_256(sha3_256(payload)), double-hashed the way
// CryptoNote/Bitcoin-style Base58Check addresses derive their checksum.
func checksum(payload []byte) [32]byte {
	first := sha3.Sum256(payload)
	return sha3.Sum256(first[:])
}
