// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"

	"github.com/nyxchain/nyxd/errs"
)

func TestVarintRoundTrip(t *testing.T) {
	vals := []uint64{0, 1, 127, 128, 300, 1 << 20, 1<<64 - 1}
	for _, v := range vals {
		e := NewEncoder()
		e.WriteVarint(v)
		d := NewDecoder(e.Bytes())
		got, err := d.ReadVarint()
		if err != nil {
			t.Fatalf("ReadVarint(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("roundtrip mismatch: want %d got %d", v, got)
		}
		if d.Remaining() != 0 {
			t.Fatalf("expected decoder exhausted, %d bytes remain", d.Remaining())
		}
	}
}

func TestVarintShortRead(t *testing.T) {
	d := NewDecoder([]byte{0x80, 0x80})
	_, err := d.ReadVarint()
	if !errs.Is(err, errs.ShortRead) {
		t.Fatalf("want short_read, got %v", err)
	}
}

func TestVarintOverlong(t *testing.T) {
	buf := bytes.Repeat([]byte{0x80}, MaxVarintLen+2)
	d := NewDecoder(buf)
	_, err := d.ReadVarint()
	if !errs.Is(err, errs.OverlongVarint) {
		t.Fatalf("want overlong_varint, got %v", err)
	}
}

func TestVarBytesRoundTrip(t *testing.T) {
	e := NewEncoder()
	payload := []byte("hello canonical world")
	e.WriteVarBytes(payload)
	d := NewDecoder(e.Bytes())
	got, err := d.ReadVarBytes(0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("roundtrip mismatch")
	}
}

func TestVarBytesMaxEnforced(t *testing.T) {
	e := NewEncoder()
	e.WriteVarBytes(bytes.Repeat([]byte{1}, 10))
	d := NewDecoder(e.Bytes())
	if _, err := d.ReadVarBytes(4); err == nil {
		t.Fatal("expected error for over-max var bytes")
	}
}

func TestSeqHeaderRoundTrip(t *testing.T) {
	e := NewEncoder()
	e.WriteSeqHeader(5)
	d := NewDecoder(e.Bytes())
	n, err := d.ReadSeqHeader(8)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Fatalf("want 5 got %d", n)
	}
}
