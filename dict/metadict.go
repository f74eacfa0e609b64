// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dict

import (
	"fmt"

	"github.com/sandflow/regxmlgo/klv"
)

// MetaDictionary stores Definitions under a scheme and maintains the
// lookup indices described in spec §3/§4.G: byId, bySymbol, membersOf,
// subclassesOf. All index keys use normalized AUIDs.
type MetaDictionary struct {
	SchemeID  klv.AUID
	SchemeURI string

	definitions []*Definition

	byId       map[klv.AUID]*Definition
	bySymbol   map[string]*Definition
	membersOf  map[klv.AUID]map[klv.AUID]struct{}
	subclassOf map[klv.AUID]map[klv.AUID]struct{}
}

// NewMetaDictionary returns an empty dictionary for the given scheme.
func NewMetaDictionary(schemeID klv.AUID, schemeURI string) *MetaDictionary {
	return &MetaDictionary{
		SchemeID:   schemeID,
		SchemeURI:  schemeURI,
		byId:       make(map[klv.AUID]*Definition),
		bySymbol:   make(map[string]*Definition),
		membersOf:  make(map[klv.AUID]map[klv.AUID]struct{}),
		subclassOf: make(map[klv.AUID]map[klv.AUID]struct{}),
	}
}

// ErrDuplicateSymbol is returned by Add when the symbol is already
// registered in this dictionary.
type ErrDuplicateSymbol struct{ Symbol string }

func (e *ErrDuplicateSymbol) Error() string {
	return fmt.Sprintf("dict: duplicate symbol %q", e.Symbol)
}

// ErrDuplicateIdentification is returned by Add when the normalized
// identification is already registered in this dictionary.
type ErrDuplicateIdentification struct{ ID klv.AUID }

func (e *ErrDuplicateIdentification) Error() string {
	return fmt.Sprintf("dict: duplicate identification %s", e.ID)
}

// Add normalizes def's identification and inserts it into the three
// indices. Class definitions additionally register their id under
// subclassesOf[normalized(parentClass)]; Property and PropertyAlias
// definitions register under membersOf[normalized(memberOf)].
func (m *MetaDictionary) Add(def *Definition) error {
	if _, exists := m.bySymbol[def.Symbol]; exists {
		return &ErrDuplicateSymbol{Symbol: def.Symbol}
	}
	nid := def.normalizedID()
	if _, exists := m.byId[nid]; exists {
		return &ErrDuplicateIdentification{ID: def.Identification}
	}

	m.definitions = append(m.definitions, def)
	m.byId[nid] = def
	m.bySymbol[def.Symbol] = def

	switch def.Kind {
	case KindClass:
		if def.HasParent {
			pid := klv.Normalize(def.ParentClass)
			m.addEdge(m.subclassOf, pid, nid)
		}
	case KindProperty, KindPropertyAlias:
		mid := klv.Normalize(def.MemberOf)
		m.addEdge(m.membersOf, mid, nid)
	}
	return nil
}

func (m *MetaDictionary) addEdge(index map[klv.AUID]map[klv.AUID]struct{}, key, id klv.AUID) {
	set, ok := index[key]
	if !ok {
		set = make(map[klv.AUID]struct{})
		index[key] = set
	}
	set[id] = struct{}{}
}

// ByID looks up a Definition by identification, normalizing id first.
func (m *MetaDictionary) ByID(id klv.AUID) (*Definition, bool) {
	d, ok := m.byId[klv.Normalize(id)]
	return d, ok
}

// BySymbol looks up a Definition by its exact symbol.
func (m *MetaDictionary) BySymbol(symbol string) (*Definition, bool) {
	d, ok := m.bySymbol[symbol]
	return d, ok
}

// MembersOf returns the Property/PropertyAlias definitions registered
// under the given (un-normalized) class id.
func (m *MetaDictionary) MembersOf(classID klv.AUID) []*Definition {
	return m.resolveEdgeSet(m.membersOf, classID)
}

// SubclassesOf returns the Class definitions registered as direct
// subclasses of the given (un-normalized) class id.
func (m *MetaDictionary) SubclassesOf(classID klv.AUID) []*Definition {
	return m.resolveEdgeSet(m.subclassOf, classID)
}

func (m *MetaDictionary) resolveEdgeSet(index map[klv.AUID]map[klv.AUID]struct{}, key klv.AUID) []*Definition {
	set, ok := index[klv.Normalize(key)]
	if !ok {
		return nil
	}
	out := make([]*Definition, 0, len(set))
	for id := range set {
		if d, ok := m.byId[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Definitions returns every definition in insertion order.
func (m *MetaDictionary) Definitions() []*Definition {
	return m.definitions
}

// AllMembersOf walks the parentClass chain (via this dictionary alone) and
// returns every Property/PropertyAlias registered on classID or any of its
// ancestors, used by Rule 5.15 (WeakReference) to find a class's
// unique-identifier property. Callers that need cross-dictionary parent
// chains should use Collection.AllMembersOf instead.
func (m *MetaDictionary) AllMembersOf(classID klv.AUID) []*Definition {
	var out []*Definition
	seen := klv.Normalize(classID)
	visited := map[klv.AUID]bool{}
	for {
		if visited[seen] {
			break
		}
		visited[seen] = true
		out = append(out, m.MembersOf(seen)...)
		cls, ok := m.byId[seen]
		if !ok || cls.Kind != KindClass || !cls.HasParent {
			break
		}
		seen = klv.Normalize(cls.ParentClass)
	}
	return out
}
