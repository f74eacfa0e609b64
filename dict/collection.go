// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dict

import "github.com/sandflow/regxmlgo/klv"

// Resolver is the read-only interface the fragment builder (package
// regxml) depends on; MetaDictionary and Collection both implement it.
type Resolver interface {
	ByID(id klv.AUID) (*Definition, bool)
	BySymbol(symbol string) (*Definition, bool)
	MembersOf(classID klv.AUID) []*Definition
	AllMembersOf(classID klv.AUID) []*Definition
}

// Collection aggregates multiple MetaDictionaries and delegates lookups in
// insertion order, returning the first hit (spec §4.G).
type Collection struct {
	dicts []*MetaDictionary
}

// NewCollection builds a Collection over dicts, preserving order.
func NewCollection(dicts ...*MetaDictionary) *Collection {
	return &Collection{dicts: append([]*MetaDictionary(nil), dicts...)}
}

// Add appends a dictionary to the end of the lookup order.
func (c *Collection) Add(d *MetaDictionary) {
	c.dicts = append(c.dicts, d)
}

// ByID returns the first hit across dictionaries in insertion order.
func (c *Collection) ByID(id klv.AUID) (*Definition, bool) {
	for _, d := range c.dicts {
		if def, ok := d.ByID(id); ok {
			return def, true
		}
	}
	return nil, false
}

// BySymbol returns the first hit across dictionaries in insertion order.
func (c *Collection) BySymbol(symbol string) (*Definition, bool) {
	for _, d := range c.dicts {
		if def, ok := d.BySymbol(symbol); ok {
			return def, true
		}
	}
	return nil, false
}

// MembersOf unions the direct members of classID registered in any
// dictionary.
func (c *Collection) MembersOf(classID klv.AUID) []*Definition {
	var out []*Definition
	for _, d := range c.dicts {
		out = append(out, d.MembersOf(classID)...)
	}
	return out
}

// AllMembersOf walks the parentClass chain across every dictionary in the
// collection (a class may be defined in one dictionary and extended by a
// subclass registered in another) and unions every Property/PropertyAlias
// found along the way.
func (c *Collection) AllMembersOf(classID klv.AUID) []*Definition {
	var out []*Definition
	seen := klv.Normalize(classID)
	visited := map[klv.AUID]bool{}
	for {
		if visited[seen] {
			break
		}
		visited[seen] = true
		out = append(out, c.MembersOf(seen)...)
		cls, ok := c.ByID(seen)
		if !ok || cls.Kind != KindClass || !cls.HasParent {
			break
		}
		seen = klv.Normalize(cls.ParentClass)
	}
	return out
}

// IsClassOrAncestor reports whether classID names rootClass itself or a
// descendant class whose parentClass chain eventually reaches rootClass,
// used to select the RegXML traversal root when an explicit root class is
// requested (spec §4.J step 5).
func (c *Collection) IsClassOrAncestor(classID, rootClass klv.AUID) bool {
	want := klv.Normalize(rootClass)
	cur := klv.Normalize(classID)
	visited := map[klv.AUID]bool{}
	for {
		if cur == want {
			return true
		}
		if visited[cur] {
			return false
		}
		visited[cur] = true
		cls, ok := c.ByID(cur)
		if !ok || cls.Kind != KindClass || !cls.HasParent {
			return false
		}
		cur = klv.Normalize(cls.ParentClass)
	}
}
