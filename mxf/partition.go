// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mxf

import (
	"bytes"
	"fmt"

	"github.com/sandflow/regxmlgo/klv"
)

// Kind classifies a Partition Pack by byte 13 of its key.
type Kind int

const (
	KindHeader Kind = iota
	KindBody
	KindFooter
)

// Status classifies a Partition Pack by byte 14 of its key.
type Status int

const (
	StatusOpenIncomplete Status = iota
	StatusClosedIncomplete
	StatusOpenComplete
	StatusClosedComplete
)

func (s Status) isClosed() bool {
	return s == StatusClosedIncomplete || s == StatusClosedComplete
}

// ErrIllegalPartitionPack is returned when the key's kind/status bytes, or
// their combination (an Open footer), are invalid.
type ErrIllegalPartitionPack struct {
	Reason string
}

func (e *ErrIllegalPartitionPack) Error() string {
	return fmt.Sprintf("mxf: illegal partition pack: %s", e.Reason)
}

// PartitionPack is the structural header describing a partition's layout
// and versions (ST 377-1 §6).
type PartitionPack struct {
	Kind   Kind
	Status Status

	MajorVersion      uint16
	MinorVersion      uint16
	KAGSize           uint32
	ThisPartition     uint64
	PreviousPartition uint64
	FooterPartition   uint64
	HeaderByteCount   uint64
	IndexByteCount    uint64
	IndexSID          uint32
	BodyOffset        uint64
	BodySID           uint32
	OperationalPattern klv.AUID
	EssenceContainers []klv.UL
}

// DecodePartitionPack decodes the partition kind/status from key and the
// value fields described in spec §4.E.
func DecodePartitionPack(key klv.UL, value []byte) (*PartitionPack, error) {
	kind, err := decodeKind(key[13])
	if err != nil {
		return nil, err
	}
	status, err := decodeStatus(key[14])
	if err != nil {
		return nil, err
	}
	if kind == KindFooter && !status.isClosed() {
		return nil, &ErrIllegalPartitionPack{Reason: "footer partition must be closed"}
	}

	r := klv.NewReader(bytes.NewReader(value), klv.BigEndian)
	pp := &PartitionPack{Kind: kind, Status: status}

	if pp.MajorVersion, err = r.ReadUnsignedShort(); err != nil {
		return nil, err
	}
	if pp.MinorVersion, err = r.ReadUnsignedShort(); err != nil {
		return nil, err
	}
	if pp.KAGSize, err = r.ReadUnsignedLong(); err != nil {
		return nil, err
	}
	if pp.ThisPartition, err = r.ReadUnsignedLongLong(); err != nil {
		return nil, err
	}
	if pp.PreviousPartition, err = r.ReadUnsignedLongLong(); err != nil {
		return nil, err
	}
	if pp.FooterPartition, err = r.ReadUnsignedLongLong(); err != nil {
		return nil, err
	}
	if pp.HeaderByteCount, err = r.ReadUnsignedLongLong(); err != nil {
		return nil, err
	}
	if pp.IndexByteCount, err = r.ReadUnsignedLongLong(); err != nil {
		return nil, err
	}
	if pp.IndexSID, err = r.ReadUnsignedLong(); err != nil {
		return nil, err
	}
	if pp.BodyOffset, err = r.ReadUnsignedLongLong(); err != nil {
		return nil, err
	}
	if pp.BodySID, err = r.ReadUnsignedLong(); err != nil {
		return nil, err
	}
	if pp.OperationalPattern, err = r.ReadAUID(); err != nil {
		return nil, err
	}
	if pp.EssenceContainers, err = klv.ReadULBatch(r); err != nil {
		return nil, err
	}
	return pp, nil
}

func decodeKind(b byte) (Kind, error) {
	switch b {
	case 0x02:
		return KindHeader, nil
	case 0x03:
		return KindBody, nil
	case 0x04:
		return KindFooter, nil
	default:
		return 0, &ErrIllegalPartitionPack{Reason: fmt.Sprintf("unknown partition kind byte %#x", b)}
	}
}

func decodeStatus(b byte) (Status, error) {
	switch b {
	case 0x01:
		return StatusOpenIncomplete, nil
	case 0x02:
		return StatusClosedIncomplete, nil
	case 0x03:
		return StatusOpenComplete, nil
	case 0x04:
		return StatusClosedComplete, nil
	default:
		return 0, &ErrIllegalPartitionPack{Reason: fmt.Sprintf("unknown partition status byte %#x", b)}
	}
}
