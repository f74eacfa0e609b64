// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package klv

import (
	"bytes"
	"fmt"
)

// Triplet is a (key, value) KLV record. MemoryTriplet is the concrete,
// value-owning implementation used throughout this module; Group and
// LocalSet build on top of it to represent nested triplet sequences.
type Triplet interface {
	ID() AUID
	Bytes() []byte
}

// MemoryTriplet owns a copy of its value bytes.
type MemoryTriplet struct {
	Key   AUID
	Value []byte
}

// ID implements Triplet.
func (t *MemoryTriplet) ID() AUID { return t.Key }

// Bytes implements Triplet.
func (t *MemoryTriplet) Bytes() []byte { return t.Value }

// Group is a triplet whose value is itself a sequence of triplets.
type Group struct {
	Key   AUID
	Items []*MemoryTriplet
}

// ID implements Triplet.
func (g *Group) ID() AUID { return g.Key }

// Bytes re-serializes the group's items length-prefixed by nothing; Group
// does not define a canonical wire encoding of its own (LocalSet does), so
// Bytes concatenates item values only, primarily for debugging.
func (g *Group) Bytes() []byte {
	var buf bytes.Buffer
	for _, it := range g.Items {
		buf.Write(it.Value)
	}
	return buf.Bytes()
}

// Find returns the first item whose key equals id under VersionlessEqual
// applied to the UL form of both keys, or nil if absent. Comparison
// ignores the version byte, matching how Instance-UID and other
// well-known item keys are recognized regardless of register version.
func (g *Group) Find(id AUID) *MemoryTriplet {
	for _, it := range g.Items {
		if VersionlessEqual(it.Key.AsUL(), id.AsUL()) {
			return it
		}
	}
	return nil
}

// InstanceUIDUL identifies the Instance UID item:
// 060e2b34.01010101.01011502.00000000, matched ignoring the version byte.
var InstanceUIDUL = UL{0x06, 0x0e, 0x2b, 0x34, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x15, 0x02, 0x00, 0x00, 0x00, 0x00}

// InstanceUID returns the UUID identifying this group as a TypedSet, and
// whether such an item was present.
func (g *Group) InstanceUID() (UUID, bool) {
	item := g.Find(AUIDFromUL(InstanceUIDUL))
	if item == nil {
		return UUID{}, false
	}
	if len(item.Value) != 16 {
		return UUID{}, false
	}
	var u UUID
	copy(u[:], item.Value)
	return u, true
}

// LocalSet is a Group whose items were decoded by resolving 2-byte (or
// configurable-width) local tags through a PrimerResolver.
type LocalSet struct {
	Group
}

// ErrUnknownLocalTag is reported when a local tag has no entry in the
// Primer.
type ErrUnknownLocalTag struct {
	Tag uint16
}

func (e *ErrUnknownLocalTag) Error() string {
	return fmt.Sprintf("klv: unknown local tag 0x%04x", e.Tag)
}

// DecodeLocalSet decodes triplet (whose key must be a local-set UL) into a
// LocalSet, resolving each member's local tag through primer.
//
// The registry designator byte of the key selects the tag and length
// widths used for every member (ST 377-1 byte 5 of the key UL); decoding
// loops until exactly len(triplet.Value) bytes have been consumed.
func DecodeLocalSet(key AUID, value []byte, primer PrimerResolver) (*LocalSet, error) {
	ul := key.AsUL()
	tagWidth, lenWidth := ul.RegistryDesignator()

	r := NewReader(bytes.NewReader(value), BigEndian)
	ls := &LocalSet{Group: Group{Key: key}}

	for r.BytesRead() < int64(len(value)) {
		tag, err := readTag(r, tagWidth)
		if err != nil {
			return nil, err
		}
		length, err := readLen(r, lenWidth)
		if err != nil {
			return nil, err
		}
		id, ok := primer.Resolve(tag)
		if !ok {
			return nil, &ErrUnknownLocalTag{Tag: tag}
		}
		raw, err := r.ReadBytes(int(length))
		if err != nil {
			return nil, err
		}
		ls.Items = append(ls.Items, &MemoryTriplet{Key: id, Value: raw})
	}
	return ls, nil
}

func readTag(r *Reader, w TagWidth) (uint16, error) {
	switch w {
	case TagWidth1:
		v, err := r.ReadUnsignedByte()
		return uint16(v), err
	case TagWidth2:
		return r.ReadUnsignedShort()
	case TagWidth4:
		v, err := r.ReadUnsignedLong()
		return uint16(v), err
	case TagWidthBER:
		v, err := r.ReadBERLength()
		return uint16(v), err
	default:
		return 0, fmt.Errorf("klv: unsupported local tag width %d", w)
	}
}

func readLen(r *Reader, w LengthWidth) (uint64, error) {
	switch w {
	case LengthWidthBER:
		return r.ReadBERLength()
	case LengthWidth1:
		v, err := r.ReadUnsignedByte()
		return uint64(v), err
	case LengthWidth2:
		v, err := r.ReadUnsignedShort()
		return uint64(v), err
	case LengthWidth4:
		return func() (uint64, error) {
			v, err := r.ReadUnsignedLong()
			return uint64(v), err
		}()
	default:
		return 0, fmt.Errorf("klv: unsupported local length width %d", w)
	}
}
