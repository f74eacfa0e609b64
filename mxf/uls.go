// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package mxf implements the MXF (SMPTE ST 377-1) structural layer above
// klv: the Partition Pack, Fill/Primer/Index-Table recognition, and
// construction of the by-instance-ID Set index from a header partition.
package mxf

import "github.com/sandflow/regxmlgo/klv"

func mustUL(hex string) klv.UL {
	u, err := klv.ParseUL(hex)
	if err != nil {
		panic(err)
	}
	return u
}

// PartitionPackPrefix is the Partition Pack key prefix. Bytes 13, 14 and 15
// (kind, status, and a reserved byte) vary per actual partition and are
// excluded from the match via PartitionPackMask.
var PartitionPackPrefix = mustUL("060e2b34.02050101.0d010201.01010000")

// PartitionPackMask implements ST 377-1: bytes 13, 14 and 15 are the
// variable portion of the Partition Pack key, all other bytes must match
// exactly. Expressed as a 16-bit mask with one bit per byte (MSB = byte 0).
const PartitionPackMask uint16 = 0xfff8

// PrimerPackKey identifies a Primer Pack triplet.
var PrimerPackKey = mustUL("060e2b34.02050101.0d010201.01050100")

// FillItemKey identifies a KLV Fill Item.
var FillItemKey = mustUL("060e2b34.01010101.03010201.01000000")

// IndexTableSegmentKey identifies an Index Table Segment, matched ignoring
// the version byte.
var IndexTableSegmentKey = mustUL("060e2b34.02530101.0d010201.01100100")

// PrefaceClassKey identifies the Preface class, the default root of an MXF
// header metadata graph.
var PrefaceClassKey = mustUL("060e2b34.027f0101.0d010101.01012f00")

// IsFillItem reports whether key (ignoring version byte) is a Fill Item.
func IsFillItem(key klv.UL) bool {
	return klv.VersionlessEqual(key, FillItemKey)
}

// IsIndexTableSegment reports whether key (ignoring version byte) is an
// Index Table Segment.
func IsIndexTableSegment(key klv.UL) bool {
	return klv.VersionlessEqual(key, IndexTableSegmentKey)
}

// IsPartitionPack reports whether key matches the Partition Pack prefix
// under PartitionPackMask.
func IsPartitionPack(key klv.UL) bool {
	return klv.EqualMaskedUL(key, PartitionPackPrefix, PartitionPackMask)
}

// IsPrimerPack reports whether key (ignoring version byte) is a Primer
// Pack.
func IsPrimerPack(key klv.UL) bool {
	return klv.VersionlessEqual(key, PrimerPackKey)
}
