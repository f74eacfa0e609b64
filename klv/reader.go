// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package klv

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ByteOrder selects the byte order applied to "host-order" multi-byte
// primitives (readShort/readLong/readLongLong and their unsigned variants).
// Wire-format structures (UL, BER length, AUID, UMID) are always read
// big-endian regardless of this setting.
type ByteOrder int

const (
	BigEndian    ByteOrder = iota
	LittleEndian
)

// ErrorKind classifies a ReadError.
type ErrorKind string

const (
	ErrShortRead   ErrorKind = "ShortRead"
	ErrBERTooLong  ErrorKind = "BERTooLong"
	ErrBEROverflow ErrorKind = "BEROverflow"
)

// ReadError is returned by every Reader operation that fails.
type ReadError struct {
	Kind   ErrorKind
	Reason string
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("klv: %s: %s", e.Kind, e.Reason)
}

func shortRead(err error) *ReadError {
	return &ReadError{Kind: ErrShortRead, Reason: err.Error()}
}

// Reader decodes KLV primitives from an underlying io.Reader.
type Reader struct {
	r     io.Reader
	order ByteOrder
	n     int64 // bytes consumed so far
}

// NewReader wraps r for KLV decoding with the given host byte order.
func NewReader(r io.Reader, order ByteOrder) *Reader {
	return &Reader{r: r, order: order}
}

// ByteOrder returns the reader's current host byte order.
func (r *Reader) ByteOrder() ByteOrder { return r.order }

// SetByteOrder changes the host byte order used by subsequent reads.
func (r *Reader) SetByteOrder(o ByteOrder) { r.order = o }

// BytesRead reports the total number of bytes consumed from the underlying
// reader so far.
func (r *Reader) BytesRead() int64 { return r.n }

func (r *Reader) readFull(p []byte) error {
	_, err := io.ReadFull(r.r, p)
	if err != nil {
		return shortRead(err)
	}
	r.n += int64(len(p))
	return nil
}

// ReadBytes reads exactly n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := r.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadByte reads a single signed octet.
func (r *Reader) ReadByte() (int8, error) {
	b, err := r.ReadUnsignedByte()
	return int8(b), err
}

// ReadUnsignedByte reads a single octet.
func (r *Reader) ReadUnsignedByte() (uint8, error) {
	var buf [1]byte
	if err := r.readFull(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (r *Reader) order16() binary.ByteOrder {
	if r.order == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// ReadShort reads a signed 16-bit value in the reader's host byte order.
func (r *Reader) ReadShort() (int16, error) {
	v, err := r.ReadUnsignedShort()
	return int16(v), err
}

// ReadUnsignedShort reads an unsigned 16-bit value in the reader's host
// byte order.
func (r *Reader) ReadUnsignedShort() (uint16, error) {
	var buf [2]byte
	if err := r.readFull(buf[:]); err != nil {
		return 0, err
	}
	return r.order16().Uint16(buf[:]), nil
}

func (r *Reader) order32() binary.ByteOrder {
	if r.order == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// ReadLong reads a signed 32-bit value in the reader's host byte order.
func (r *Reader) ReadLong() (int32, error) {
	v, err := r.ReadUnsignedLong()
	return int32(v), err
}

// ReadUnsignedLong reads an unsigned 32-bit value in the reader's host
// byte order.
func (r *Reader) ReadUnsignedLong() (uint32, error) {
	var buf [4]byte
	if err := r.readFull(buf[:]); err != nil {
		return 0, err
	}
	return r.order32().Uint32(buf[:]), nil
}

// ReadLongLong reads a signed 64-bit value in the reader's host byte order.
func (r *Reader) ReadLongLong() (int64, error) {
	v, err := r.ReadUnsignedLongLong()
	return int64(v), err
}

// ReadUnsignedLongLong reads an unsigned 64-bit value in the reader's host
// byte order.
//
// The little-endian path assembles the value byte-by-byte rather than via
// binary.LittleEndian.Uint64: the original C++ source this module is
// grounded on duplicated byte 5 into both the 40-bit and 48-bit slots when
// reassembling a little-endian long-long, dropping byte 6 entirely. That is
// a bug, not a format requirement; this implementation reads all 8 distinct
// octets into their correct slots.
func (r *Reader) ReadUnsignedLongLong() (uint64, error) {
	var buf [8]byte
	if err := r.readFull(buf[:]); err != nil {
		return 0, err
	}
	if r.order == LittleEndian {
		return uint64(buf[0]) |
			uint64(buf[1])<<8 |
			uint64(buf[2])<<16 |
			uint64(buf[3])<<24 |
			uint64(buf[4])<<32 |
			uint64(buf[5])<<40 |
			uint64(buf[6])<<48 |
			uint64(buf[7])<<56, nil
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// ReadBERLength decodes a BER variable-length integer per ISO/IEC 8825-1 as
// restricted by ST 336 §6: a single leading octet B; if its high bit is 0,
// the length is B itself; otherwise the low nibble of B (N) counts the
// following big-endian octets to accumulate, N <= 8.
func (r *Reader) ReadBERLength() (uint64, error) {
	b, err := r.ReadUnsignedByte()
	if err != nil {
		return 0, err
	}
	if b&0x80 == 0 {
		return uint64(b), nil
	}
	n := int(b & 0x0f)
	if n > 8 {
		return 0, &ReadError{Kind: ErrBERTooLong, Reason: fmt.Sprintf("BER length count %d exceeds 8", n)}
	}
	buf, err := r.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	// N <= 8, so the accumulated value always fits a uint64: this platform's
	// maximum representable length is 2^64-1, so BEROverflow never fires
	// here. A platform whose maximum length is smaller would check the
	// accumulator against that bound on each shift instead.
	var v uint64
	for _, b := range buf {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// ReadUL reads 16 raw big-endian octets as a UL.
func (r *Reader) ReadUL() (UL, error) {
	var u UL
	if err := r.readFull(u[:]); err != nil {
		return UL{}, err
	}
	return u, nil
}

// ReadAUID reads 16 raw big-endian octets as an AUID.
func (r *Reader) ReadAUID() (AUID, error) {
	var a AUID
	if err := r.readFull(a[:]); err != nil {
		return AUID{}, err
	}
	return a, nil
}

// ReadUUID reads 16 octets; when the reader's host byte order is
// little-endian, the first 4-2-2 sub-groups are byte-swapped internally to
// obtain the canonical (network-order) UUID, per the UUID <-> wire-order
// swap rule.
func (r *Reader) ReadUUID() (UUID, error) {
	var raw [16]byte
	if err := r.readFull(raw[:]); err != nil {
		return UUID{}, err
	}
	if r.order == LittleEndian {
		raw = swap422(raw)
	}
	return UUID(raw), nil
}

// swap422 reverses byte order within each of the first three sub-groups of
// a UUID's 4-2-2-8 layout (the time_low/time_mid/time_hi_and_version
// fields), leaving the trailing 8-byte clock-seq/node group untouched. This
// is the UUID <-> wire-order transform, distinct from the AUID <-> UUID
// half swap in identifiers.go.
func swap422(b [16]byte) [16]byte {
	out := b
	out[0], out[1], out[2], out[3] = b[3], b[2], b[1], b[0]
	out[4], out[5] = b[5], b[4]
	out[6], out[7] = b[7], b[6]
	return out
}

// ReadUMID reads 32 raw big-endian octets as a UMID.
func (r *Reader) ReadUMID() (UMID, error) {
	var m UMID
	if err := r.readFull(m[:]); err != nil {
		return UMID{}, err
	}
	return m, nil
}

// ReadIDAU reads 16 octets using the same swap rule as ReadUUID, then
// re-expresses the result as the AUID identifying the same logical value:
// an IDAU is only ever used to carry UUID-shaped identifiers on the wire,
// so the UUID wire-swap is applied first and the AUID half-swap second.
func (r *Reader) ReadIDAU() (AUID, error) {
	var raw [16]byte
	if err := r.readFull(raw[:]); err != nil {
		return AUID{}, err
	}
	if r.order == LittleEndian {
		raw = swap422(raw)
	}
	return AUIDFromUUID(UUID(raw)), nil
}

// ReadTriplet reads an AUID key, a BER length, and that many bytes of
// value, returning a MemoryTriplet that owns a copy of the value.
func (r *Reader) ReadTriplet() (*MemoryTriplet, error) {
	key, err := r.ReadAUID()
	if err != nil {
		return nil, err
	}
	length, err := r.ReadBERLength()
	if err != nil {
		return nil, err
	}
	value, err := r.ReadBytes(int(length))
	if err != nil {
		return nil, err
	}
	return &MemoryTriplet{Key: key, Value: value}, nil
}

// BatchDecoder decodes one item of a readBatch sequence from its raw bytes.
type BatchDecoder[A any] func([]byte) (A, error)

// ReadBatch reads `count = readUnsignedLong; itemLen = readUnsignedLong`
// followed by count items of itemLen raw bytes each, decoding each with
// decode.
func ReadBatch[A any](r *Reader, decode BatchDecoder[A]) ([]A, error) {
	count, err := r.ReadUnsignedLong()
	if err != nil {
		return nil, err
	}
	itemLen, err := r.ReadUnsignedLong()
	if err != nil {
		return nil, err
	}
	out := make([]A, 0, count)
	for i := uint32(0); i < count; i++ {
		raw, err := r.ReadBytes(int(itemLen))
		if err != nil {
			return nil, err
		}
		v, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadULBatch reads a readBatch<UL> sequence, the shape used for
// PartitionPack.EssenceContainers.
func ReadULBatch(r *Reader) ([]UL, error) {
	return ReadBatch(r, func(raw []byte) (UL, error) {
		if len(raw) != 16 {
			return UL{}, &ReadError{Kind: ErrShortRead, Reason: "UL batch item is not 16 bytes"}
		}
		var u UL
		copy(u[:], raw)
		return u, nil
	})
}
