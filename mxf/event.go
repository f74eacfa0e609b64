// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import "fmt"

// Severity classifies a ScanEvent.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ScanEvent is a diagnostic raised while building the Set index (spec
// §4.F): NonMXFSet, IndexTableReachedEarly, DuplicateMXFSets, InvalidTriplet,
// InvalidMXFSet and similar header-metadata scan issues.
type ScanEvent struct {
	Code     string
	Severity Severity
	Reason   string
	Position int64
}

func (e *ScanEvent) Error() string {
	return fmt.Sprintf("mxf: %s at %d: %s", e.Code, e.Position, e.Reason)
}
