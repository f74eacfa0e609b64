// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package klv

import "bytes"

// PrimerResolver resolves a 16-bit local tag to the AUID it stands for.
// LocalSet decoding is expressed purely against this interface so any
// source of tag assignments (a decoded PrimerPack, a synthetic one built
// for tests) can drive it.
type PrimerResolver interface {
	Resolve(tag uint16) (AUID, bool)
}

// PrimerPack is a local-tag -> AUID map populated from a single Primer Pack
// triplet.
type PrimerPack struct {
	tags map[uint16]AUID
}

// NewPrimerPack returns an empty PrimerPack, useful for building one
// programmatically in tests.
func NewPrimerPack() *PrimerPack {
	return &PrimerPack{tags: make(map[uint16]AUID)}
}

// Set registers tag -> id, overwriting any prior mapping.
func (p *PrimerPack) Set(tag uint16, id AUID) {
	if p.tags == nil {
		p.tags = make(map[uint16]AUID)
	}
	p.tags[tag] = id
}

// Resolve implements PrimerResolver.
func (p *PrimerPack) Resolve(tag uint16) (AUID, bool) {
	id, ok := p.tags[tag]
	return id, ok
}

// Len reports the number of tag assignments in the primer.
func (p *PrimerPack) Len() int { return len(p.tags) }

// DecodePrimerPack decodes a Primer Pack triplet's value:
// `itemcount u32, itemlen u32, then itemcount * (u16 tag, 16-byte UL)`.
func DecodePrimerPack(value []byte) (*PrimerPack, error) {
	r := NewReader(bytes.NewReader(value), BigEndian)
	itemCount, err := r.ReadUnsignedLong()
	if err != nil {
		return nil, err
	}
	// itemLen is documented by the format but unused for decoding: each
	// item is always a fixed (tag, UL) pair.
	if _, err := r.ReadUnsignedLong(); err != nil {
		return nil, err
	}
	p := NewPrimerPack()
	for i := uint32(0); i < itemCount; i++ {
		tag, err := r.ReadUnsignedShort()
		if err != nil {
			return nil, err
		}
		ul, err := r.ReadUL()
		if err != nil {
			return nil, err
		}
		p.Set(tag, AUIDFromUL(ul))
	}
	return p, nil
}
