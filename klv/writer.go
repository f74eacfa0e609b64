// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package klv

import (
	"encoding/binary"
	"io"
)

// Writer is the symmetric inverse of Reader, used primarily by round-trip
// tests: it follows the same byte-order rule (host order for short/long/
// longlong, always big-endian for UL/BER/AUID/UMID).
type Writer struct {
	w     io.Writer
	order ByteOrder
	n     int64
}

// NewWriter wraps w for KLV encoding with the given host byte order.
func NewWriter(w io.Writer, order ByteOrder) *Writer {
	return &Writer{w: w, order: order}
}

// BytesWritten reports the total number of bytes written so far.
func (w *Writer) BytesWritten() int64 { return w.n }

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	w.n += int64(n)
	return err
}

// WriteUnsignedByte writes a single octet.
func (w *Writer) WriteUnsignedByte(v uint8) error {
	return w.write([]byte{v})
}

func (w *Writer) order16() binary.ByteOrder {
	if w.order == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// WriteUnsignedShort writes an unsigned 16-bit value in host byte order.
func (w *Writer) WriteUnsignedShort(v uint16) error {
	var buf [2]byte
	w.order16().PutUint16(buf[:], v)
	return w.write(buf[:])
}

// WriteUnsignedLong writes an unsigned 32-bit value in host byte order.
func (w *Writer) WriteUnsignedLong(v uint32) error {
	var buf [4]byte
	if w.order == LittleEndian {
		binary.LittleEndian.PutUint32(buf[:], v)
	} else {
		binary.BigEndian.PutUint32(buf[:], v)
	}
	return w.write(buf[:])
}

// WriteUnsignedLongLong writes an unsigned 64-bit value in host byte
// order, byte-by-byte in the little-endian case to mirror Reader's
// corrected reassembly (see Reader.ReadUnsignedLongLong).
func (w *Writer) WriteUnsignedLongLong(v uint64) error {
	var buf [8]byte
	if w.order == LittleEndian {
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
	} else {
		binary.BigEndian.PutUint64(buf[:], v)
	}
	return w.write(buf[:])
}

// WriteBERLength emits the shortest of {1, 2, 3, 5, 9} byte encodings: a
// single byte if value < 128; otherwise 0x80|N followed by N big-endian
// octets, N in {1, 2, 4, 8}.
func (w *Writer) WriteBERLength(value uint64) error {
	if value < 0x80 {
		return w.WriteUnsignedByte(uint8(value))
	}
	var n int
	switch {
	case value <= 0xff:
		n = 1
	case value <= 0xffff:
		n = 2
	case value <= 0xffffffff:
		n = 4
	default:
		n = 8
	}
	if err := w.WriteUnsignedByte(uint8(0x80 | n)); err != nil {
		return err
	}
	buf := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		buf[i] = byte(value)
		value >>= 8
	}
	return w.write(buf)
}

// WriteUL writes 16 raw big-endian octets.
func (w *Writer) WriteUL(u UL) error { return w.write(u[:]) }

// WriteAUID writes 16 raw big-endian octets.
func (w *Writer) WriteAUID(a AUID) error { return w.write(a[:]) }

// WriteUUID writes a canonical UUID, applying the wire-order swap when the
// writer's host byte order is little-endian.
func (w *Writer) WriteUUID(u UUID) error {
	raw := [16]byte(u)
	if w.order == LittleEndian {
		raw = swap422(raw)
	}
	return w.write(raw[:])
}

// WriteUMID writes 32 raw big-endian octets.
func (w *Writer) WriteUMID(m UMID) error { return w.write(m[:]) }

// WriteIDAU writes the AUID's underlying UUID using the same swap rule as
// WriteUUID. Only meaningful for AUID values that hold a UUID.
func (w *Writer) WriteIDAU(a AUID) error {
	raw := [16]byte(a.AsUUID())
	if w.order == LittleEndian {
		raw = swap422(raw)
	}
	return w.write(raw[:])
}

// WriteTriplet writes key, the BER length of value, then value itself.
func (w *Writer) WriteTriplet(key AUID, value []byte) error {
	if err := w.WriteAUID(key); err != nil {
		return err
	}
	if err := w.WriteBERLength(uint64(len(value))); err != nil {
		return err
	}
	return w.write(value)
}
