// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package dict models the MetaDictionary: the catalog of classes,
// properties and types that governs how a traversal of MXF header
// metadata is rendered as RegXML (SMPTE ST 2001-1 Annex A/B).
package dict

import "github.com/sandflow/regxmlgo/klv"

// Kind discriminates the Definition tagged variant.
type Kind int

const (
	KindClass Kind = iota
	KindProperty
	KindPropertyAlias
	KindIntegerType
	KindCharacterType
	KindStringType
	KindEnumerationType
	KindExtendibleEnumerationType
	KindFixedArrayType
	KindVariableArrayType
	KindSetType
	KindRecordType
	KindRenameType
	KindStrongReferenceType
	KindWeakReferenceType
	KindIndirectType
	KindOpaqueType
	KindStreamType
	KindLensSerialFloatType
	KindFloatType
)

// Common carries the fields every Definition variant shares.
type Common struct {
	Identification klv.AUID
	Symbol         string
	Name           string
	Description    string
	Namespace      string
}

// EnumElement is one named value of an EnumerationType.
type EnumElement struct {
	Name        string
	Value       int64
	Description string
}

// RecordMember is one named, typed field of a RecordType.
type RecordMember struct {
	Name string
	Type klv.AUID
}

// Definition is the tagged variant covering every definition kind in
// spec §3. Exactly the fields relevant to Kind are populated; accessing a
// field that doesn't apply to Kind is a caller error (mirrors the source's
// deep class hierarchy collapsed into one Go type, per DESIGN NOTES
// "Definition polymorphism").
type Definition struct {
	Common
	Kind Kind

	// Class
	ParentClass klv.AUID
	HasParent   bool
	IsConcrete  bool

	// Property / PropertyAlias
	Type                klv.AUID
	MemberOf            klv.AUID
	LocalIdentification uint16
	IsUniqueIdentifier  bool
	IsOptional          bool
	OriginalProperty    klv.AUID // PropertyAlias only

	// IntegerType
	Size     int // Integer: 1,2,4,8; Float: 2,4,8
	IsSigned bool

	// StringType / EnumerationType / FixedArrayType / VariableArrayType / SetType
	ElementType  klv.AUID
	ElementCount int // FixedArrayType only

	// EnumerationType
	Elements []EnumElement

	// RecordType
	Members []RecordMember

	// RenameType
	RenamedType klv.AUID

	// StrongReferenceType / WeakReferenceType
	ReferencedType klv.AUID
	TargetSet      []klv.AUID // WeakReferenceType only
}

// normalizedID returns the normalized identification used as an index key.
func (d *Definition) normalizedID() klv.AUID {
	return klv.Normalize(d.Identification)
}
