// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package regxml

import (
	"bytes"
	"io"

	"github.com/beevik/etree"

	"github.com/sandflow/regxmlgo/dict"
	"github.com/sandflow/regxmlgo/klv"
	"github.com/sandflow/regxmlgo/mxf"
)

// AssembleOptions configures AssembleFromMXF.
type AssembleOptions struct {
	// RootClass, if set, selects the traversal root as the first Set whose
	// class (or an ancestor reached via parentClass) matches this AUID.
	// If unset, the root is the first Set whose key normalizes to the
	// Preface class.
	RootClass klv.AUID
	HasRootClass bool

	Names   NameResolver
	Handler EventHandler
}

type scanEventAdapter struct {
	handler EventHandler
}

func (a scanEventAdapter) HandleScanEvent(e *mxf.ScanEvent) {
	if a.handler == nil {
		return
	}
	a.handler.HandleEvent(Event{Code: e.Code, Severity: Severity(e.Severity), Reason: e.Reason})
}

// AssembleFromMXF implements the MXF fragment assembler: it locates the
// header Partition Pack and Primer Pack, builds the Set index over the
// header metadata, selects a root Set, and invokes the Fragment Builder on
// it. r need not be seekable; a single forward pass suffices.
func AssembleFromMXF(r io.Reader, resolver dict.Resolver, opts AssembleOptions) (*etree.Document, error) {
	handler := opts.Handler
	if handler == nil {
		handler = NullEventHandler{}
	}
	scanHandler := scanEventAdapter{handler: handler}

	kr := klv.NewReader(r, klv.BigEndian)

	pp, err := findHeaderPartitionPack(kr)
	if err != nil {
		return nil, err
	}

	kr = klv.NewReader(r, klv.BigEndian)

	primer, err := mxf.FindPrimerPack(kr)
	if err != nil {
		return nil, Event{Code: "MissingPrimerPack", Severity: SeverityFatal, Reason: err.Error()}
	}

	index, err := mxf.BuildSetIndex(kr, pp.HeaderByteCount, primer, scanHandler)
	if err != nil {
		return nil, err
	}

	root, err := selectRoot(index, resolver, opts)
	if err != nil {
		return nil, err
	}

	builder := NewBuilder(resolver, index, opts.Names, handler)
	return builder.Build(root)
}

// findHeaderPartitionPack discards triplets until a Partition Pack
// matching the variable byte-13/14/15 mask is found.
func findHeaderPartitionPack(kr *klv.Reader) (*mxf.PartitionPack, error) {
	for {
		tr, err := kr.ReadTriplet()
		if err != nil {
			return nil, Event{Code: "MissingHeaderPartitionPack", Severity: SeverityFatal, Reason: err.Error()}
		}
		if !tr.Key.IsUL() {
			continue
		}
		ul := tr.Key.AsUL()
		if !mxf.IsPartitionPack(ul) {
			continue
		}
		pp, err := mxf.DecodePartitionPack(ul, tr.Value)
		if err != nil {
			return nil, Event{Code: "BadHeaderPartitionPack", Severity: SeverityFatal, Reason: err.Error()}
		}
		return pp, nil
	}
}

func selectRoot(index map[klv.UUID]*mxf.TypedSet, resolver dict.Resolver, opts AssembleOptions) (*mxf.TypedSet, error) {
	if !opts.HasRootClass {
		preface := klv.AUIDFromUL(mxf.PrefaceClassKey)
		for _, ts := range index {
			if klv.Normalize(ts.Key) == klv.Normalize(preface) {
				return ts, nil
			}
		}
		return nil, Event{Code: "RootSetNotFound", Severity: SeverityFatal, Reason: "no set with the Preface class key"}
	}

	collection, ok := resolver.(*dict.Collection)
	if ok {
		for _, ts := range index {
			if collection.IsClassOrAncestor(ts.Key, opts.RootClass) {
				return ts, nil
			}
		}
		return nil, Event{Code: "RootSetNotFound", Severity: SeverityFatal, Reason: "no set matches the requested root class"}
	}

	for _, ts := range index {
		if isClassOrAncestorSingle(resolver, ts.Key, opts.RootClass) {
			return ts, nil
		}
	}
	return nil, Event{Code: "RootSetNotFound", Severity: SeverityFatal, Reason: "no set matches the requested root class"}
}

func isClassOrAncestorSingle(resolver dict.Resolver, classID, rootClass klv.AUID) bool {
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
		cls, ok := resolver.ByID(cur)
		if !ok || cls.Kind != dict.KindClass || !cls.HasParent {
			return false
		}
		cur = klv.Normalize(cls.ParentClass)
	}
}

// AssembleFromBytes is a convenience wrapper over AssembleFromMXF for
// already-buffered input.
func AssembleFromBytes(data []byte, resolver dict.Resolver, opts AssembleOptions) (*etree.Document, error) {
	return AssembleFromMXF(bytes.NewReader(data), resolver, opts)
}
