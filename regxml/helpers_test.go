// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package regxml

import (
	"bytes"
	"encoding/binary"

	"github.com/sandflow/regxmlgo/dict"
	"github.com/sandflow/regxmlgo/klv"
	"github.com/sandflow/regxmlgo/mxf"
)

const testNamespace = "http://sandflow.com/ns/test"

func ul(hex string) klv.UL {
	u, err := klv.ParseUL(hex)
	if err != nil {
		panic(err)
	}
	return klv.UL(u)
}

func auidUL(hex string) klv.AUID { return klv.AUIDFromUL(ul(hex)) }

var (
	testPrefaceKey     = klv.AUIDFromUL(mxf.PrefaceClassKey)
	testInstanceUIDKey = klv.AUIDFromUL(klv.InstanceUIDUL)
	testUUIDTypeKey    = klv.AUIDFromUL(UUIDTypeUL)
	testIntegerPropKey = auidUL("060e2b34.01010101.04010101.01000000")
	testIntegerTypeKey = auidUL("060e2b34.01040101.01010103.00000000")
)

// newTestDictionary returns a MetaDictionary describing the Preface class
// (carrying an Instance UID property and a test Integer property) used
// across builder/rules/assembler tests.
func newTestDictionary() *dict.MetaDictionary {
	schemeID := klv.AUIDFromUUID(klv.UUID{0x01})
	m := dict.NewMetaDictionary(schemeID, testNamespace)

	must(m.Add(&dict.Definition{
		Common: dict.Common{Identification: testPrefaceKey, Symbol: "Preface", Namespace: testNamespace},
		Kind:   dict.KindClass,
	}))
	must(m.Add(&dict.Definition{
		Common:             dict.Common{Identification: testInstanceUIDKey, Symbol: "InstanceID", Namespace: testNamespace},
		Kind:               dict.KindProperty,
		Type:               testUUIDTypeKey,
		MemberOf:           testPrefaceKey,
		IsUniqueIdentifier: true,
	}))
	must(m.Add(&dict.Definition{
		Common:   dict.Common{Identification: testIntegerPropKey, Symbol: "TestInteger", Namespace: testNamespace},
		Kind:     dict.KindProperty,
		Type:     testIntegerTypeKey,
		MemberOf: testPrefaceKey,
	}))
	must(m.Add(&dict.Definition{
		Common:   dict.Common{Identification: testIntegerTypeKey, Symbol: "UInt32", Namespace: testNamespace},
		Kind:     dict.KindIntegerType,
		Size:     4,
		IsSigned: false,
	}))
	must(m.Add(&dict.Definition{
		Common: dict.Common{Identification: testUUIDTypeKey, Symbol: "UUIDType", Namespace: testNamespace},
		Kind:   dict.KindRecordType,
		Members: []dict.RecordMember{
			{Name: "Data1", Type: testIntegerTypeKey},
		},
	}))
	return m
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// encodeLocalSetBody encodes a sequence of (tag, value) items with 2-byte
// tag and 2-byte length widths, the shape a real local-set key selects via
// its registry designator byte.
func encodeLocalSetBody(items []localSetItem) []byte {
	var buf bytes.Buffer
	for _, it := range items {
		var tagBuf [2]byte
		binary.BigEndian.PutUint16(tagBuf[:], it.tag)
		buf.Write(tagBuf[:])
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(it.value)))
		buf.Write(lenBuf[:])
		buf.Write(it.value)
	}
	return buf.Bytes()
}

type localSetItem struct {
	tag   uint16
	value []byte
}

// encodeTriplet encodes a single KLV triplet with a short-form BER length
// when value is under 128 bytes, and a 4-byte long-form length otherwise.
func encodeTriplet(key klv.AUID, value []byte) []byte {
	var buf bytes.Buffer
	buf.Write(key[:])
	if len(value) < 0x80 {
		buf.WriteByte(byte(len(value)))
	} else {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(value)))
		buf.WriteByte(0x84)
		buf.Write(lenBuf[:])
	}
	buf.Write(value)
	return buf.Bytes()
}

func uint32Bytes(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}

func uint16Bytes(v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return b[:]
}

func uint64Bytes(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

// localSetKeyWith2ByteTagsAndLengths returns a synthetic local-set UL for
// classID with registry designator byte selecting 2-byte tags and 2-byte
// lengths (tagSel=2, lenSel=2), matching encodeLocalSetBody's shape.
func localSetKeyWith2ByteTagsAndLengths(classID klv.AUID) klv.UL {
	u := classID.AsUL()
	u[4] = 0x02
	u[5] = (2 << 5) | (2 << 3) | 0x03
	return u
}
