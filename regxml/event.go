// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package regxml implements the type-directed RegXML fragment builder
// (SMPTE ST 2001-1) and the MXF fragment assembler tying it to the klv,
// mxf, and dict packages.
package regxml

import "fmt"

// Severity classifies an Event.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Event is the builder's structured diagnostic. It implements error so
// fatal events can be returned directly from AssembleFromMXF and
// AssembleFromBytes.
// Event codes in use: UnknownGroup, UnknownProperty, UnknownType,
// VersionByteMismatch, UnexpectedDefinition, CircularStrongReference,
// MissingStrongReference, MissingPrimaryPackage, MissingUniqueProperty,
// UnknownEnumValue, UnexpectedByteOrder, UnknownByteOrder,
// UnsupportedCharType, UnsupportedStringType, UnsupportedEnumType,
// InvalidStrongReferenceType, IOError, OpaqueUnsupported,
// StreamUnsupported, StringArrayUnsupported, LensSerialFloatUnsupported,
// MissingHeaderPartitionPack, BadHeaderPartitionPack, MissingPrimerPack,
// RootSetNotFound, plus the mxf.ScanEvent codes (NonMXFSet,
// IndexTableReachedEarly, DuplicateMXFSets, InvalidTriplet, InvalidMXFSet)
// that AssembleFromMXF forwards from the Set index scan.
type Event struct {
	Code     string
	Severity Severity
	Reason   string
	Where    string
}

func (e Event) Error() string {
	return fmt.Sprintf("regxml: %s [%s] at %s: %s", e.Code, e.Severity, e.Where, e.Reason)
}

// EventHandler receives Events raised during fragment construction.
type EventHandler interface {
	HandleEvent(e Event)
}

// NullEventHandler discards every event.
type NullEventHandler struct{}

// HandleEvent implements EventHandler.
func (NullEventHandler) HandleEvent(Event) {}

// CollectingEventHandler appends every event it receives, used by callers
// that want to report diagnostics after a run completes.
type CollectingEventHandler struct {
	Events []Event
}

// HandleEvent implements EventHandler.
func (c *CollectingEventHandler) HandleEvent(e Event) {
	c.Events = append(c.Events, e)
}
