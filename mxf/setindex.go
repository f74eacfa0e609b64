// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"errors"
	"fmt"

	"github.com/sandflow/regxmlgo/klv"
)

// EventHandler receives ScanEvents raised while locating the Primer Pack
// and building the Set index.
type EventHandler interface {
	HandleScanEvent(e *ScanEvent)
}

// NullEventHandler discards every event.
type NullEventHandler struct{}

// HandleScanEvent implements EventHandler.
func (NullEventHandler) HandleScanEvent(*ScanEvent) {}

// TypedSet is an instance of a decoded LocalSet identified as an MXF "Set":
// it carries an Instance UID item resolving to the UUID that keys it in
// the Set index.
type TypedSet struct {
	klv.LocalSet
	InstanceID klv.UUID
}

// ErrMissingPrimerPack is fatal: returned when the stream ends before a
// Primer Pack is located.
var ErrMissingPrimerPack = errors.New("mxf: missing primer pack")

// FindPrimerPack scans r for the next Primer Pack triplet, skipping Fill
// items, and decodes it. Returns ErrMissingPrimerPack if the stream ends
// first.
func FindPrimerPack(r *klv.Reader) (*klv.PrimerPack, error) {
	for {
		tr, err := r.ReadTriplet()
		if err != nil {
			return nil, ErrMissingPrimerPack
		}
		if !tr.Key.IsUL() {
			continue
		}
		ul := tr.Key.AsUL()
		if IsFillItem(ul) {
			continue
		}
		if IsPrimerPack(ul) {
			return klv.DecodePrimerPack(tr.Value)
		}
	}
}

// BuildSetIndex implements spec §4.F: it assumes r has already located and
// is positioned immediately after the Primer Pack returned by
// FindPrimerPack (so r.BytesRead() reflects bytes consumed since the
// Partition Pack, per §4.J's counting-reader reset), and decodes Local
// Sets with primer until headerByteCount bytes have been consumed from
// that point, returning a deduplicated by-Instance-UID index.
func BuildSetIndex(r *klv.Reader, headerByteCount uint64, primer klv.PrimerResolver, handler EventHandler) (map[klv.UUID]*TypedSet, error) {
	if handler == nil {
		handler = NullEventHandler{}
	}
	index := make(map[klv.UUID]*TypedSet)

	for uint64(r.BytesRead()) < headerByteCount {
		pos := r.BytesRead()
		tr, err := r.ReadTriplet()
		if err != nil {
			handler.HandleScanEvent(&ScanEvent{
				Code: "InvalidTriplet", Severity: SeverityError,
				Reason: err.Error(), Position: pos,
			})
			break
		}

		if !tr.Key.IsUL() {
			handler.HandleScanEvent(&ScanEvent{
				Code: "NonMXFSet", Severity: SeverityInfo,
				Reason: "key is not a Universal Label", Position: pos,
			})
			continue
		}
		ul := tr.Key.AsUL()

		switch {
		case IsIndexTableSegment(ul):
			handler.HandleScanEvent(&ScanEvent{
				Code: "IndexTableReachedEarly", Severity: SeverityWarn,
				Reason: "index table segment encountered while scanning header metadata", Position: pos,
			})
			return index, nil
		case IsFillItem(ul):
			continue
		case !ul.IsLocalSet():
			handler.HandleScanEvent(&ScanEvent{
				Code: "NonMXFSet", Severity: SeverityInfo,
				Reason: "key is not a local-set Universal Label", Position: pos,
			})
			continue
		}

		ls, err := klv.DecodeLocalSet(tr.Key, tr.Value, primer)
		if err != nil {
			handler.HandleScanEvent(&ScanEvent{
				Code: "InvalidMXFSet", Severity: SeverityError,
				Reason: err.Error(), Position: pos,
			})
			continue
		}

		uid, ok := ls.InstanceUID()
		if !ok {
			handler.HandleScanEvent(&ScanEvent{
				Code: "NonMXFSet", Severity: SeverityWarn,
				Reason: "local set has no Instance UID item", Position: pos,
			})
			continue
		}

		if _, exists := index[uid]; exists {
			handler.HandleScanEvent(&ScanEvent{
				Code: "DuplicateMXFSets", Severity: SeverityError,
				Reason: fmt.Sprintf("duplicate instance uid %s", uid), Position: pos,
			})
			continue
		}
		index[uid] = &TypedSet{LocalSet: *ls, InstanceID: uid}
	}
	return index, nil
}
