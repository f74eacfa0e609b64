// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package regxml

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/sandflow/regxmlgo/klv"
)

// ErrUnsupportedCharType is returned when a Character/Char/UTF8Character
// property's declared element type does not resolve to a known codec.
type ErrUnsupportedCharType struct {
	ID klv.AUID
}

func (e *ErrUnsupportedCharType) Error() string {
	return "regxml: unsupported character type " + e.ID.String()
}

// decodeCharacters drains raw bytes to text using the codec selected by
// the Character UL (ST 2001-1 Rule 5.1), the current reader byte order,
// and ASCII/UTF-8 variants, trimming trailing NUL padding.
func decodeCharacters(elementType klv.AUID, order klv.ByteOrder, raw []byte) (string, error) {
	var s string
	switch {
	case isUL(elementType, CharacterUL):
		var enc *unicode.Decoder
		if order == klv.LittleEndian {
			enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		} else {
			enc = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		}
		decoded, err := enc.Bytes(raw)
		if err != nil {
			return "", err
		}
		s = string(decoded)
	case isUL(elementType, CharUL):
		for _, c := range raw {
			if c > 0x7f {
				return "", &ErrUnsupportedCharType{ID: elementType}
			}
		}
		s = string(raw)
	case isUL(elementType, UTF8CharacterUL):
		if !utf8.Valid(raw) {
			return "", &ErrUnsupportedCharType{ID: elementType}
		}
		s = string(raw)
	default:
		return "", &ErrUnsupportedCharType{ID: elementType}
	}
	return strings.TrimRight(s, "\x00"), nil
}
