// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"bytes"
	"testing"

	"github.com/sandflow/regxmlgo/klv"
)

func localSetUL() klv.UL {
	var u klv.UL
	copy(u[:4], []byte{0x06, 0x0e, 0x2b, 0x34})
	u[4] = 0x02
	u[5] = 0x53 // local set, 2-byte tag, 2-byte length
	copy(u[6:], []byte{0x0d, 0x01, 0x02, 0x01, 0x01, 0x01, 0x01, 0x00})
	return u
}

const (
	tagInstanceUID = uint16(0x3c0a)
	tagOther       = uint16(0x3c0b)
)

func buildFixtureStream(t *testing.T, uids ...klv.UUID) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := klv.NewWriter(&buf, klv.BigEndian)

	// Primer pack.
	primerValue := new(bytes.Buffer)
	pw := klv.NewWriter(primerValue, klv.BigEndian)
	pw.WriteUnsignedLong(2)
	pw.WriteUnsignedLong(18)
	pw.WriteUnsignedShort(tagInstanceUID)
	pw.WriteUL(klv.InstanceUIDUL)
	otherUL, _ := klv.ParseUL("060e2b34.01010101.01020101.00000000")
	pw.WriteUnsignedShort(tagOther)
	pw.WriteUL(otherUL)
	w.WriteTriplet(klv.AUIDFromUL(PrimerPackKey), primerValue.Bytes())

	for _, uid := range uids {
		lsValue := new(bytes.Buffer)
		lw := klv.NewWriter(lsValue, klv.BigEndian)
		lw.WriteUnsignedShort(tagInstanceUID)
		lw.WriteUnsignedShort(16)
		raw := [16]byte(uid)
		lsValue.Write(raw[:])
		lw.WriteUnsignedShort(tagOther)
		lw.WriteUnsignedShort(4)
		lsValue.Write([]byte{0xAA, 0xBB, 0xCC, 0xDD})
		w.WriteTriplet(klv.AUIDFromUL(localSetUL()), lsValue.Bytes())
	}
	return buf.Bytes()
}

func TestBuildSetIndexBasic(t *testing.T) {
	uid1 := klv.UUID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	uid2 := klv.UUID{2, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	data := buildFixtureStream(t, uid1, uid2)

	r := klv.NewReader(bytes.NewReader(data), klv.BigEndian)
	primer, err := FindPrimerPack(r)
	if err != nil {
		t.Fatal(err)
	}
	index, err := BuildSetIndex(r, uint64(len(data)), primer, NullEventHandler{})
	if err != nil {
		t.Fatal(err)
	}
	if len(index) != 2 {
		t.Fatalf("got %d sets, want 2", len(index))
	}
	if _, ok := index[uid1]; !ok {
		t.Error("missing uid1")
	}
	if _, ok := index[uid2]; !ok {
		t.Error("missing uid2")
	}
}

type recordingHandler struct {
	events []*ScanEvent
}

func (h *recordingHandler) HandleScanEvent(e *ScanEvent) {
	h.events = append(h.events, e)
}

func TestBuildSetIndexDuplicateInstanceUID(t *testing.T) {
	uid := klv.UUID{9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9}
	data := buildFixtureStream(t, uid, uid)

	r := klv.NewReader(bytes.NewReader(data), klv.BigEndian)
	primer, err := FindPrimerPack(r)
	if err != nil {
		t.Fatal(err)
	}
	h := &recordingHandler{}
	index, err := BuildSetIndex(r, uint64(len(data)), primer, h)
	if err != nil {
		t.Fatal(err)
	}
	if len(index) != 1 {
		t.Fatalf("got %d sets, want exactly 1 (property 7)", len(index))
	}
	found := false
	for _, e := range h.events {
		if e.Code == "DuplicateMXFSets" {
			found = true
		}
	}
	if !found {
		t.Error("expected one DuplicateMXFSets event")
	}
}

func TestBuildSetIndexMissingPrimerPack(t *testing.T) {
	r := klv.NewReader(bytes.NewReader(nil), klv.BigEndian)
	_, err := FindPrimerPack(r)
	if err != ErrMissingPrimerPack {
		t.Fatalf("got %v, want ErrMissingPrimerPack", err)
	}
}

func TestBuildSetIndexHeaderByteCountBoundary(t *testing.T) {
	uid1 := klv.UUID{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}
	uid2 := klv.UUID{2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2}
	data := buildFixtureStream(t, uid1, uid2)

	r := klv.NewReader(bytes.NewReader(data), klv.BigEndian)
	primer, err := FindPrimerPack(r)
	if err != nil {
		t.Fatal(err)
	}
	afterPrimer := r.BytesRead()
	boundedLen := uint64(len(data)) - uint64(afterPrimer)

	// Bound ends exactly where the second set begins: only the first set
	// should land.
	r2 := klv.NewReader(bytes.NewReader(data), klv.BigEndian)
	if _, err := FindPrimerPack(r2); err != nil {
		t.Fatal(err)
	}
	oneSetLen := boundedLen / 2
	index, err := BuildSetIndex(r2, uint64(r2.BytesRead())+oneSetLen, primer, NullEventHandler{})
	if err != nil {
		t.Fatal(err)
	}
	if len(index) != 1 {
		t.Fatalf("got %d sets with a truncated header byte count, want 1", len(index))
	}
}
