// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dict

import (
	"testing"

	"github.com/sandflow/regxmlgo/klv"
)

func ul(t *testing.T, s string) klv.AUID {
	t.Helper()
	u, err := klv.ParseUL(s)
	if err != nil {
		t.Fatal(err)
	}
	return klv.AUIDFromUL(u)
}

func TestMetaDictionaryAddAndLookup(t *testing.T) {
	scheme := ul(t, "060e2b34.027f0101.0d010101.01010000")
	m := NewMetaDictionary(scheme, "http://example.com/scheme")

	parent := ul(t, "060e2b34.027f0101.0d010101.01012f00")
	err := m.Add(&Definition{
		Common: Common{Identification: parent, Symbol: "InterchangeObject", Namespace: "ns"},
		Kind:   KindClass,
	})
	if err != nil {
		t.Fatal(err)
	}

	child := ul(t, "060e2b34.027f0101.0d010101.01013000")
	err = m.Add(&Definition{
		Common:      Common{Identification: child, Symbol: "Preface", Namespace: "ns"},
		Kind:        KindClass,
		ParentClass: parent,
		HasParent:   true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := m.ByID(parent); !ok {
		t.Error("expected parent lookup by id")
	}
	if d, ok := m.BySymbol("Preface"); !ok || d.Symbol != "Preface" {
		t.Error("expected symbol lookup")
	}
	subs := m.SubclassesOf(parent)
	if len(subs) != 1 || subs[0].Symbol != "Preface" {
		t.Errorf("got subclasses %+v", subs)
	}
}

func TestMetaDictionaryDuplicateSymbol(t *testing.T) {
	m := NewMetaDictionary(klv.AUID{}, "ns")
	id1 := ul(t, "060e2b34.027f0101.0d010101.01012f00")
	id2 := ul(t, "060e2b34.027f0101.0d010101.01013000")
	if err := m.Add(&Definition{Common: Common{Identification: id1, Symbol: "X"}, Kind: KindClass}); err != nil {
		t.Fatal(err)
	}
	err := m.Add(&Definition{Common: Common{Identification: id2, Symbol: "X"}, Kind: KindClass})
	if _, ok := err.(*ErrDuplicateSymbol); !ok {
		t.Fatalf("got %v, want ErrDuplicateSymbol", err)
	}
}

func TestMetaDictionaryDuplicateIdentification(t *testing.T) {
	m := NewMetaDictionary(klv.AUID{}, "ns")
	id := ul(t, "060e2b34.027f0101.0d010101.01012f00")
	if err := m.Add(&Definition{Common: Common{Identification: id, Symbol: "X"}, Kind: KindClass}); err != nil {
		t.Fatal(err)
	}
	// Differs only by version byte -- normalization must still collide.
	versioned := id
	versioned[7] = 0x09
	err := m.Add(&Definition{Common: Common{Identification: versioned, Symbol: "Y"}, Kind: KindClass})
	if _, ok := err.(*ErrDuplicateIdentification); !ok {
		t.Fatalf("got %v, want ErrDuplicateIdentification", err)
	}
}

func TestMetaDictionaryMembersOf(t *testing.T) {
	m := NewMetaDictionary(klv.AUID{}, "ns")
	cls := ul(t, "060e2b34.027f0101.0d010101.01012f00")
	prop := ul(t, "060e2b34.01010101.01011502.00000000")
	if err := m.Add(&Definition{Common: Common{Identification: cls, Symbol: "Preface"}, Kind: KindClass}); err != nil {
		t.Fatal(err)
	}
	if err := m.Add(&Definition{
		Common:   Common{Identification: prop, Symbol: "InstanceID"},
		Kind:     KindProperty,
		MemberOf: cls,
	}); err != nil {
		t.Fatal(err)
	}
	members := m.MembersOf(cls)
	if len(members) != 1 || members[0].Symbol != "InstanceID" {
		t.Errorf("got %+v", members)
	}
}

func TestAllMembersOfWalksParentChain(t *testing.T) {
	m := NewMetaDictionary(klv.AUID{}, "ns")
	base := ul(t, "060e2b34.027f0101.0d010101.01012f00")
	derived := ul(t, "060e2b34.027f0101.0d010101.01013000")
	baseProp := ul(t, "060e2b34.01010101.01011502.00000000")
	derivedProp := ul(t, "060e2b34.01010101.01011503.00000000")

	m.Add(&Definition{Common: Common{Identification: base, Symbol: "Base"}, Kind: KindClass})
	m.Add(&Definition{Common: Common{Identification: derived, Symbol: "Derived"}, Kind: KindClass, ParentClass: base, HasParent: true})
	m.Add(&Definition{Common: Common{Identification: baseProp, Symbol: "BaseProp"}, Kind: KindProperty, MemberOf: base})
	m.Add(&Definition{Common: Common{Identification: derivedProp, Symbol: "DerivedProp"}, Kind: KindProperty, MemberOf: derived})

	all := m.AllMembersOf(derived)
	if len(all) != 2 {
		t.Fatalf("got %d members, want 2: %+v", len(all), all)
	}
}
