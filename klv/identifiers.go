// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package klv implements the binary primitives of SMPTE ST 336 (KLV) and
// the identifier value types of SMPTE ST 377-1: Universal Labels, UUIDs,
// AUIDs, UMIDs and the "as authored" identifier flavor (IDAU).
package klv

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UL is a 16-byte SMPTE Universal Label.
type UL [16]byte

// UUID is a 16-byte RFC 4122 identifier in its canonical (network) byte
// layout.
type UUID [16]byte

// UMID is a 32-byte SMPTE Unique Material Identifier.
type UMID [32]byte

// AUID is the ST 377-1 sum type of UL and UUID: a UL when the high bit of
// byte 0 is zero, otherwise a UUID whose two 8-byte halves have been
// swapped relative to UUID's own byte order.
type AUID [16]byte

// IDAU is an "identifier as authored": the same 16 bytes as an AUID, but
// laid out with host byte-order sensitivity when the value is a UUID. It
// decodes to the AUID that designates the same logical identifier.
type IDAU [16]byte

// IsUL reports whether the high bit of the first octet is zero, which
// per ST 377-1 marks this AUID value as holding a UL rather than a UUID.
func (a AUID) IsUL() bool {
	return a[0]&0x80 == 0
}

// AsUL returns the AUID reinterpreted as a UL. Valid only when IsUL is true.
func (a AUID) AsUL() UL {
	return UL(a)
}

// AsUUID returns the AUID reinterpreted as a UUID, undoing the ST 377-1
// 8-byte half swap. Valid only when IsUL is false.
func (a AUID) AsUUID() UUID {
	return swapHalves(UUID(a))
}

// AUIDFromUL wraps a UL as an AUID.
func AUIDFromUL(u UL) AUID {
	return AUID(u)
}

// AUIDFromUUID wraps a UUID as an AUID, applying the ST 377-1 half swap.
func AUIDFromUUID(u UUID) AUID {
	return AUID(swapHalves(u))
}

func swapHalves(b [16]byte) [16]byte {
	var out [16]byte
	copy(out[0:8], b[8:16])
	copy(out[8:16], b[0:8])
	return out
}

// String renders the AUID in the text form of its underlying kind: the
// dotted-hex-group form of UL.String for a UL, the "urn:uuid:" URN of
// UUID.String for a UUID.
func (a AUID) String() string {
	if a.IsUL() {
		return a.AsUL().String()
	}
	return a.AsUUID().String()
}

// String renders the UL in its dotted-hex-group form, e.g.
// "060e2b34.02050101.0d010201.01010000".
func (u UL) String() string {
	return fmt.Sprintf("%02x%02x%02x%02x.%02x%02x%02x%02x.%02x%02x%02x%02x.%02x%02x%02x%02x",
		u[0], u[1], u[2], u[3], u[4], u[5], u[6], u[7],
		u[8], u[9], u[10], u[11], u[12], u[13], u[14], u[15])
}

// ParseUL parses the dotted-hex-group representation of a UL.
func ParseUL(s string) (UL, error) {
	groups := strings.Split(s, ".")
	hex := strings.Join(groups, "")
	if len(hex) != 32 {
		return UL{}, fmt.Errorf("klv: malformed UL %q", s)
	}
	var u UL
	for i := 0; i < 16; i++ {
		var b byte
		if _, err := fmt.Sscanf(hex[i*2:i*2+2], "%02x", &b); err != nil {
			return UL{}, fmt.Errorf("klv: malformed UL %q: %w", s, err)
		}
		u[i] = b
	}
	return u, nil
}

// String renders the UUID in URN form,
// "urn:uuid:xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx".
func (u UUID) String() string {
	return "urn:uuid:" + uuid.UUID(u).String()
}

// ParseUUID parses a UUID URN or bare hex-and-dashes string.
func ParseUUID(s string) (UUID, error) {
	s = strings.TrimPrefix(s, "urn:uuid:")
	parsed, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, fmt.Errorf("klv: malformed UUID %q: %w", s, err)
	}
	return UUID(parsed), nil
}

// String renders the UMID as eight dot-separated 8-hex-digit groups.
func (m UMID) String() string {
	var sb strings.Builder
	for i := 0; i < 32; i += 4 {
		if i != 0 {
			sb.WriteByte('.')
		}
		fmt.Fprintf(&sb, "%02x%02x%02x%02x", m[i], m[i+1], m[i+2], m[i+3])
	}
	return sb.String()
}

// ParseUMID parses the dot-separated group form produced by String.
func ParseUMID(s string) (UMID, error) {
	groups := strings.Split(s, ".")
	hex := strings.Join(groups, "")
	if len(hex) != 64 {
		return UMID{}, fmt.Errorf("klv: malformed UMID %q", s)
	}
	var m UMID
	for i := 0; i < 32; i++ {
		var b byte
		if _, err := fmt.Sscanf(hex[i*2:i*2+2], "%02x", &b); err != nil {
			return UMID{}, fmt.Errorf("klv: malformed UMID %q: %w", s, err)
		}
		m[i] = b
	}
	return m, nil
}

// EqualMasked reports whether a and b are equal under a 16-bit mask: bit i
// (MSB first, bit 0 = byte 0) must be set for byte i to be compared.
func EqualMasked(a, b AUID, mask uint16) bool {
	for i := 0; i < 16; i++ {
		bit := uint16(1) << (15 - i)
		if mask&bit == 0 {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// fullMask compares all 16 bytes.
const fullMask uint16 = 0xffff

// Equal reports strict byte-for-byte equality.
func (a AUID) Equal(b AUID) bool { return EqualMasked(a, b, fullMask) }

// Equal reports strict byte-for-byte equality.
func (u UL) Equal(v UL) bool { return u == v }

// isGroup reports whether byte 4 marks this UL as a group (register 0x02).
func (u UL) isGroup() bool { return u[4] == 0x02 }

// isLocalSet reports whether this UL designates a local-set group: byte 4
// is 0x02 and the low 3 bits of byte 5 equal 3.
func (u UL) isLocalSet() bool {
	return u.isGroup() && (u[5]&0x07) == 3
}

// IsLocalSet reports whether this UL designates a local-set group.
func (u UL) IsLocalSet() bool { return u.isLocalSet() }

// IsGroup reports whether this UL designates a group (class/local-set/etc).
func (u UL) IsGroup() bool { return u.isGroup() }

// TagWidth is the local-tag byte width encoded in a local-set UL's registry
// designator byte (byte 5, bits 3-4).
type TagWidth int

// LengthWidth is the local-length byte width encoded in a local-set UL's
// registry designator byte (byte 5, bits 5-6).
type LengthWidth int

const (
	TagWidth1   TagWidth = 1
	TagWidthBER TagWidth = -1
	TagWidth2   TagWidth = 2
	TagWidth4   TagWidth = 4
)

const (
	LengthWidthBER LengthWidth = -1
	LengthWidth1   LengthWidth = 1
	LengthWidth2   LengthWidth = 2
	LengthWidth4   LengthWidth = 4
)

// RegistryDesignator decodes byte 5 of a local-set UL into its tag and
// length widths.
func (u UL) RegistryDesignator() (TagWidth, LengthWidth) {
	b := u[5]
	tagSel := (b >> 3) & 0x03
	lenSel := (b >> 5) & 0x03
	tagWidths := [4]TagWidth{TagWidth1, TagWidthBER, TagWidth2, TagWidth4}
	lenWidths := [4]LengthWidth{LengthWidthBER, LengthWidth1, LengthWidth2, LengthWidth4}
	return tagWidths[tagSel], lenWidths[lenSel]
}

// Normalize returns a in a canonical form suitable for use as a map key:
// the version byte (7) is zeroed, and for group ULs byte 5 is additionally
// forced to 0x7F so that variants differing only in registry designator
// compare equal.
func Normalize(a AUID) AUID {
	n := a
	n[7] = 0
	if n.IsUL() && n.AsUL().isGroup() {
		n[5] = 0x7F
	}
	return n
}

// NormalizeUL is the UL-typed equivalent of Normalize.
func NormalizeUL(u UL) UL {
	n := u
	n[7] = 0
	if n.isGroup() {
		n[5] = 0x7F
	}
	return n
}

// EqualMaskedUL is the UL-typed equivalent of EqualMasked.
func EqualMaskedUL(a, b UL, mask uint16) bool {
	return EqualMasked(AUID(a), AUID(b), mask)
}

// VersionlessEqual compares two ULs ignoring the version byte (7) only,
// the mask used for e.g. Instance-UID-item and Index-Table-Segment keys.
func VersionlessEqual(a, b UL) bool {
	for i := 0; i < 16; i++ {
		if i == 7 {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
