// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package klv

import (
	"bytes"
	"errors"
	"testing"
)

func TestReadBERLength(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    uint64
		wantErr ErrorKind
	}{
		{"short form zero", []byte{0x00}, 0, ""},
		{"short form max", []byte{0x7F}, 0x7F, ""},
		{"long form 3 bytes", []byte{0x83, 0x01, 0x02, 0x03}, 0x010203, ""},
		{"long form 1 byte", []byte{0x81, 0xFF}, 0xFF, ""},
		{"too long", []byte{0x89, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 0, ErrBERTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tt.in), BigEndian)
			got, err := r.ReadBERLength()
			if tt.wantErr != "" {
				var re *ReadError
				if !errors.As(err, &re) || re.Kind != tt.wantErr {
					t.Fatalf("got err=%v, want kind %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReadBERLengthEmptyFormReadsNoFollowup(t *testing.T) {
	// A single byte < 0x80 must return without consuming anything else.
	buf := bytes.NewReader([]byte{0x05, 0xAA})
	r := NewReader(buf, BigEndian)
	got, err := r.ReadBERLength()
	if err != nil {
		t.Fatal(err)
	}
	if got != 5 {
		t.Fatalf("got %d, want 5", got)
	}
	if r.BytesRead() != 1 {
		t.Fatalf("consumed %d bytes, want 1", r.BytesRead())
	}
	remaining, _ := r.ReadUnsignedByte()
	if remaining != 0xAA {
		t.Fatalf("next byte = %#x, want 0xAA untouched", remaining)
	}
}

func TestReadBERLengthFullRange(t *testing.T) {
	// Property 5: any value <= 2^64-1 expressible in <= 8 octets is accepted.
	in := []byte{0x88, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	r := NewReader(bytes.NewReader(in), BigEndian)
	got, err := r.ReadBERLength()
	if err != nil {
		t.Fatal(err)
	}
	if got != ^uint64(0) {
		t.Errorf("got %d, want max uint64", got)
	}
}

func TestReadUnsignedLongLongLittleEndian(t *testing.T) {
	// bytes 0..7, little-endian: value = sum(b[i] << (8*i))
	in := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	r := NewReader(bytes.NewReader(in), LittleEndian)
	got, err := r.ReadUnsignedLongLong()
	if err != nil {
		t.Fatal(err)
	}
	want := uint64(0x0807060504030201)
	if got != want {
		t.Errorf("got %#x, want %#x (byte 6 must not be dropped/duplicated)", got, want)
	}
}

func TestReadUnsignedLongLongBigEndian(t *testing.T) {
	in := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	r := NewReader(bytes.NewReader(in), BigEndian)
	got, err := r.ReadUnsignedLongLong()
	if err != nil {
		t.Fatal(err)
	}
	want := uint64(0x0102030405060708)
	if got != want {
		t.Errorf("got %#x, want %#x", got, want)
	}
}

func TestReadUUIDLittleEndianSwap(t *testing.T) {
	// Canonical (big-endian/network) UUID bytes.
	canon := UUID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	var w bytes.Buffer
	ww := NewWriter(&w, LittleEndian)
	if err := ww.WriteUUID(canon); err != nil {
		t.Fatal(err)
	}
	r := NewReader(bytes.NewReader(w.Bytes()), LittleEndian)
	got, err := r.ReadUUID()
	if err != nil {
		t.Fatal(err)
	}
	if got != canon {
		t.Errorf("round trip mismatch: got %v want %v", got, canon)
	}
}

func TestReadTriplet(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, BigEndian)
	key := AUIDFromUL(InstanceUIDUL)
	if err := w.WriteTriplet(key, []byte{0xde, 0xad, 0xbe, 0xef}); err != nil {
		t.Fatal(err)
	}
	r := NewReader(bytes.NewReader(buf.Bytes()), BigEndian)
	tr, err := r.ReadTriplet()
	if err != nil {
		t.Fatal(err)
	}
	if tr.Key != key {
		t.Errorf("key mismatch")
	}
	if !bytes.Equal(tr.Value, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Errorf("value mismatch: %x", tr.Value)
	}
}

func TestWriteBERLengthShortestForm(t *testing.T) {
	tests := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{0x7F, []byte{0x7F}},
		{0x80, []byte{0x81, 0x80}},
		{0x010203, []byte{0x84, 0x00, 0x01, 0x02, 0x03}},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		w := NewWriter(&buf, BigEndian)
		if err := w.WriteBERLength(tt.v); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(buf.Bytes(), tt.want) {
			t.Errorf("WriteBERLength(%d) = % x, want % x", tt.v, buf.Bytes(), tt.want)
		}
	}
}
