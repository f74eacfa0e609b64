// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sandflow/regxmlgo/klv"
)

func writePartitionValue(w *klv.Writer) {
	w.WriteUnsignedShort(1)  // major
	w.WriteUnsignedShort(2)  // minor
	w.WriteUnsignedLong(512) // kag
	w.WriteUnsignedLongLong(0)
	w.WriteUnsignedLongLong(0)
	w.WriteUnsignedLongLong(0)
	w.WriteUnsignedLongLong(4096) // headerByteCount
	w.WriteUnsignedLongLong(0)
	w.WriteUnsignedLong(0)
	w.WriteUnsignedLongLong(0)
	w.WriteUnsignedLong(0)
	var op klv.AUID
	w.WriteAUID(op)
	w.WriteUnsignedLong(0) // essence container batch count
	w.WriteUnsignedLong(16)
}

func TestDecodePartitionPackHeaderOpenIncomplete(t *testing.T) {
	key := PartitionPackPrefix
	key[13] = 0x02 // header
	key[14] = 0x01 // open incomplete

	var buf bytes.Buffer
	w := klv.NewWriter(&buf, klv.BigEndian)
	writePartitionValue(w)

	pp, err := DecodePartitionPack(key, buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if pp.Kind != KindHeader || pp.Status != StatusOpenIncomplete {
		t.Errorf("got kind=%v status=%v", pp.Kind, pp.Status)
	}
	if pp.HeaderByteCount != 4096 {
		t.Errorf("got headerByteCount=%d, want 4096", pp.HeaderByteCount)
	}
}

func TestDecodePartitionPackFooterMustBeClosed(t *testing.T) {
	key := PartitionPackPrefix
	key[13] = 0x04 // footer
	key[14] = 0x01 // open incomplete -- illegal for footer

	var buf bytes.Buffer
	w := klv.NewWriter(&buf, klv.BigEndian)
	writePartitionValue(w)

	_, err := DecodePartitionPack(key, buf.Bytes())
	var ipp *ErrIllegalPartitionPack
	if !errors.As(err, &ipp) {
		t.Fatalf("got err=%v, want ErrIllegalPartitionPack", err)
	}
}

func TestIsPartitionPackMask(t *testing.T) {
	key := PartitionPackPrefix
	key[13] = 0x03 // body
	key[14] = 0x04 // closed complete
	key[15] = 0xAB // reserved, must be excluded from the match
	if !IsPartitionPack(key) {
		t.Error("expected IsPartitionPack true regardless of bytes 13-15")
	}

	mismatched := PartitionPackPrefix
	mismatched[8] = 0xFF
	if IsPartitionPack(mismatched) {
		t.Error("expected IsPartitionPack false when a fixed byte differs")
	}
}
