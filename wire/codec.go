// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the canonical binary codec shared by every
// ledger object and by the P2P packets of package p2p. The encoding is LEB128-style varints, little-endian,
// with length-prefixed buffers and sequences; sets and maps are always
// written in ascending key order so the mapping from logical value to byte
// sequence is bijective.
package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/nyxchain/nyxd/errs"
)

// MaxVarintLen is the longest a varint may legally be for a uint64; any
// longer encoding is rejected as overlong rather than silently accepted.
const MaxVarintLen = 10

// Encoder accumulates a canonical byte sequence.
type Encoder struct {
	buf bytes.Buffer
}

// NewEncoder returns a ready-to-use Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Bytes returns the accumulated canonical byte sequence.
func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

// WriteVarint appends v as an LEB128-style varint: 7 bits of payload per
// byte, low-order bits first, continuation bit set on every byte but the
// last.
func (e *Encoder) WriteVarint(v uint64) {
	var tmp [MaxVarintLen]byte
	n := 0
	for v >= 0x80 {
		tmp[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	tmp[n] = byte(v)
	n++
	e.buf.Write(tmp[:n])
}

// WriteFixed appends b verbatim: used for 32-byte hashes and group elements,
// which have a fixed wire length and so need no length prefix.
func (e *Encoder) WriteFixed(b []byte) {
	e.buf.Write(b)
}

// WriteVarBytes appends a varint length prefix followed by b.
func (e *Encoder) WriteVarBytes(b []byte) {
	e.WriteVarint(uint64(len(b)))
	e.buf.Write(b)
}

// WriteSeqHeader appends a varint sequence-length prefix. Callers write the
// n elements themselves immediately after, each in ascending key order when
// the sequence represents a set or a map.
func (e *Encoder) WriteSeqHeader(n int) {
	e.WriteVarint(uint64(n))
}

// Decoder consumes a canonical byte sequence, tracking its own read cursor.
type Decoder struct {
	r *bytes.Reader
}

// NewDecoder returns a Decoder over b.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{r: bytes.NewReader(b)}
}

// Remaining reports how many bytes are left to read.
func (d *Decoder) Remaining() int { return d.r.Len() }

// ReadVarint reads an LEB128-style varint. It fails with errs.OverlongVarint
// if more than MaxVarintLen bytes are consumed without terminating, and
// errs.ShortRead if the input is exhausted first.
func (d *Decoder) ReadVarint() (uint64, error) {
	var v uint64
	var shift uint
	for i := 0; i < MaxVarintLen; i++ {
		b, err := d.r.ReadByte()
		if err != nil {
			return 0, errs.New(errs.ShortRead, "varint truncated")
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
	return 0, errs.New(errs.OverlongVarint, "varint exceeds maximum length")
}

// ReadFixed reads exactly n bytes.
func (d *Decoder) ReadFixed(n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(d.r, out); err != nil {
		return nil, errs.New(errs.ShortRead, "fixed-length field truncated")
	}
	return out, nil
}

// ReadVarBytes reads a varint length prefix followed by that many bytes. max
// bounds the accepted length (0 disables the bound).
func (d *Decoder) ReadVarBytes(max int) ([]byte, error) {
	n, err := d.ReadVarint()
	if err != nil {
		return nil, err
	}
	if max > 0 && n > uint64(max) {
		return nil, errs.New(errs.ShortRead, "var bytes length exceeds maximum")
	}
	return d.ReadFixed(int(n))
}

// ReadSeqHeader reads a sequence-length prefix, bounded by max (0 disables
// the bound).
func (d *Decoder) ReadSeqHeader(max int) (int, error) {
	n, err := d.ReadVarint()
	if err != nil {
		return 0, err
	}
	if max > 0 && n > uint64(max) {
		return 0, errs.New(errs.ShortRead, "sequence length exceeds maximum")
	}
	return int(n), nil
}

// PutUint16LE and PutUint64LE are small helpers used for the fixed fields
// (ports, timestamps as raw counters) that are not varint-encoded: a
// peer record port is u16, last_seen is u64.
func PutUint16LE(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func Uint16LE(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }

func PutUint64LE(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func Uint64LE(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }
