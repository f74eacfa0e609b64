// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package regxml

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/sandflow/regxmlgo/dict"
	"github.com/sandflow/regxmlgo/klv"
)

// valueStream bundles a klv.Reader with access to the count of bytes still
// unread, needed by the Character/String/DataValue rules which drain
// whatever is left of the current property's value rather than a fixed
// width. Every property gets a fresh valueStream, defaulting to big-endian;
// only Rule 5.5 (Indirect) changes a stream's order mid-flight, and the new
// order stays in effect for every later read from that same stream.
type valueStream struct {
	*klv.Reader
	br *bytes.Reader
}

func newValueStream(raw []byte) *valueStream {
	br := bytes.NewReader(raw)
	return &valueStream{Reader: klv.NewReader(br, klv.BigEndian), br: br}
}

func (v *valueStream) readRemaining() ([]byte, error) {
	return v.ReadBytes(v.br.Len())
}

// findBaseDefinition unwinds a RenameType chain to the type it ultimately
// renames, per Rule 4/5's "following rename chains" requirement.
func (b *Builder) findBaseDefinition(id klv.AUID) (*dict.Definition, error) {
	def, ok := b.resolver.ByID(id)
	if !ok {
		return nil, Event{Code: "UnknownType", Severity: SeverityError, Reason: "no definition for type", Where: id.String()}
	}
	for def.Kind == dict.KindRenameType {
		def, ok = b.resolver.ByID(def.RenamedType)
		if !ok {
			return nil, Event{Code: "UnknownType", Severity: SeverityError, Reason: "no definition for renamed type", Where: id.String()}
		}
	}
	return def, nil
}

// applyRule4 implements Rule 4 over raw, a fresh copy of the property's
// wire bytes.
func (b *Builder) applyRule4(el *etree.Element, propDef *dict.Definition, raw []byte, ancestors []string) error {
	return b.applyRule4Stream(el, propDef, newValueStream(raw), ancestors)
}

func (b *Builder) applyRule4Stream(el *etree.Element, propDef *dict.Definition, r *valueStream, ancestors []string) error {
	switch {
	case isUL(propDef.Identification, ByteOrderUL):
		return b.applyByteOrderProperty(el, r)
	case isUL(propDef.Identification, PrimaryPackageUL):
		return b.applyPrimaryPackageProperty(el, r, ancestors)
	}

	typeDef, err := b.findBaseDefinition(propDef.Type)
	if err != nil {
		return err
	}

	if isUL(propDef.Identification, LinkedGenerationIDUL) ||
		isUL(propDef.Identification, GenerationIDUL) ||
		isUL(propDef.Identification, ApplicationProductIDUL) {
		uuidDef, ok := b.resolver.ByID(klv.AUIDFromUL(UUIDTypeUL))
		if !ok {
			return Event{Code: "UnknownType", Severity: SeverityError, Reason: "no definition registered for the UUID type", Where: propDef.Symbol}
		}
		typeDef = uuidDef
	}

	return b.applyRule5(el, typeDef, r, ancestors)
}

func (b *Builder) applyByteOrderProperty(el *etree.Element, r *valueStream) error {
	v, err := r.ReadUnsignedShort()
	if err != nil {
		return err
	}
	switch v {
	case 0x4d4d:
		el.SetText("BigEndian")
	case 0x4949:
		// ST 2001-1 inverts these constants relative to the register.
		el.SetText("LittleEndian")
		b.emit("UnexpectedByteOrder", SeverityError, "register inverses the ByteOrder constants", ByteOrderUL.String())
		b.addComment(el, "register inverses the ByteOrder constants")
	default:
		return Event{Code: "UnknownByteOrder", Severity: SeverityError,
			Reason: fmt.Sprintf("unrecognized byte order marker %#04x", v), Where: ByteOrderUL.String()}
	}
	return nil
}

func (b *Builder) applyPrimaryPackageProperty(el *etree.Element, r *valueStream, ancestors []string) error {
	uuid, err := r.ReadUUID()
	if err != nil {
		return err
	}
	ts, ok := b.sets[uuid]
	if !ok {
		return Event{Code: "MissingPrimaryPackage", Severity: SeverityError,
			Reason: fmt.Sprintf("no set with instance uid %s", uuid), Where: PrimaryPackageUL.String()}
	}
	for _, item := range ts.Items {
		propDef, ok := b.resolver.ByID(item.Key)
		if !ok || (propDef.Kind != dict.KindProperty && propDef.Kind != dict.KindPropertyAlias) {
			continue
		}
		if propDef.IsUniqueIdentifier {
			return b.applyRule4(el, propDef, item.Value, ancestors)
		}
	}
	return Event{Code: "MissingUniqueProperty", Severity: SeverityError,
		Reason: "primary package target has no unique-identifier property", Where: PrimaryPackageUL.String()}
}

// applyRule5 dispatches on typeDef.Kind per Rule 5's fifteen sub-rules.
func (b *Builder) applyRule5(el *etree.Element, typeDef *dict.Definition, r *valueStream, ancestors []string) error {
	switch typeDef.Kind {
	case dict.KindCharacterType:
		return b.rule5Character(el, typeDef, r)
	case dict.KindEnumerationType:
		return b.rule5Enumeration(el, typeDef, r)
	case dict.KindExtendibleEnumerationType:
		return b.rule5ExtendibleEnumeration(el, r)
	case dict.KindFixedArrayType:
		return b.rule5FixedArray(el, typeDef, r, ancestors)
	case dict.KindIndirectType:
		return b.rule5Indirect(el, typeDef, r, ancestors)
	case dict.KindIntegerType:
		return b.rule5Integer(el, typeDef, r)
	case dict.KindOpaqueType:
		return Event{Code: "OpaqueUnsupported", Severity: SeverityError, Reason: "opaque types are not supported", Where: typeDef.Symbol}
	case dict.KindRecordType:
		return b.rule5Record(el, typeDef, r, ancestors)
	case dict.KindRenameType:
		rdef, ok := b.resolver.ByID(typeDef.RenamedType)
		if !ok {
			return Event{Code: "UnknownType", Severity: SeverityError, Reason: "no definition for renamed type", Where: typeDef.Symbol}
		}
		return b.applyRule5(el, rdef, r, ancestors)
	case dict.KindSetType:
		return b.rule5Set(el, typeDef, r, ancestors)
	case dict.KindStreamType:
		return Event{Code: "StreamUnsupported", Severity: SeverityError, Reason: "stream types are not supported", Where: typeDef.Symbol}
	case dict.KindStringType:
		return b.rule5String(el, typeDef, r)
	case dict.KindStrongReferenceType:
		return b.rule5StrongReference(el, typeDef, r, ancestors)
	case dict.KindVariableArrayType:
		return b.rule5VariableArray(el, typeDef, r, ancestors)
	case dict.KindWeakReferenceType:
		return b.rule5WeakReference(el, typeDef, r, ancestors)
	case dict.KindLensSerialFloatType:
		return Event{Code: "LensSerialFloatUnsupported", Severity: SeverityError, Reason: "lens serial floats are not supported", Where: typeDef.Symbol}
	default:
		return Event{Code: "UnexpectedDefinition", Severity: SeverityError,
			Reason: fmt.Sprintf("type kind %v cannot be dispatched by Rule 5", typeDef.Kind), Where: typeDef.Symbol}
	}
}

// 5.1 Character
func (b *Builder) rule5Character(el *etree.Element, typeDef *dict.Definition, r *valueStream) error {
	raw, err := r.readRemaining()
	if err != nil {
		return err
	}
	s, err := decodeCharacters(typeDef.Identification, r.ByteOrder(), raw)
	if err != nil {
		return err
	}
	if s != "" {
		el.SetText(s)
	}
	return nil
}

// 5.2 Enumeration
func (b *Builder) rule5Enumeration(el *etree.Element, typeDef *dict.Definition, r *valueStream) error {
	baseDef, err := b.findBaseDefinition(typeDef.ElementType)
	if err != nil {
		return err
	}
	if baseDef.Kind != dict.KindIntegerType {
		return Event{Code: "UnsupportedEnumType", Severity: SeverityError,
			Reason: "enumeration element type does not resolve to an integer", Where: typeDef.Symbol}
	}
	if baseDef.IsSigned {
		return Event{Code: "UnsupportedEnumType", Severity: SeverityError,
			Reason: "signed enumeration element types are not supported", Where: typeDef.Symbol}
	}

	width := baseDef.Size
	if isUL(typeDef.Identification, ProductReleaseTypeUL) {
		// The register lists ProductReleaseType as a UInt8 enum but MXF
		// encodes it over two bytes.
		width = 2
	}

	var v uint64
	switch width {
	case 1:
		b1, err := r.ReadUnsignedByte()
		if err != nil {
			return err
		}
		v = uint64(b1)
	case 2:
		b2, err := r.ReadUnsignedShort()
		if err != nil {
			return err
		}
		v = uint64(b2)
	case 4:
		b4, err := r.ReadUnsignedLong()
		if err != nil {
			return err
		}
		v = uint64(b4)
	default:
		return Event{Code: "UnsupportedEnumType", Severity: SeverityError,
			Reason: "enumeration definitions wider than 4 bytes are not supported", Where: typeDef.Symbol}
	}

	var name string
	isBoolean := isUL(typeDef.ElementType, BooleanUL)
	for _, elem := range typeDef.Elements {
		if isBoolean {
			if (v == 0 && elem.Value == 0) || (v != 0 && elem.Value == 1) {
				name = elem.Name
			}
		} else if elem.Value == int64(v) {
			name = elem.Name
		}
	}
	if name == "" {
		name = "UNDEFINED"
		b.emit("UnknownEnumValue", SeverityError, fmt.Sprintf("value %d has no matching enumeration element", v), typeDef.Symbol)
		b.addComment(el, fmt.Sprintf("unknown enumeration value %d", v))
	}
	el.SetText(name)
	return nil
}

// 5.3 ExtendibleEnumeration
func (b *Builder) rule5ExtendibleEnumeration(el *etree.Element, r *valueStream) error {
	ul, err := r.ReadUL()
	if err != nil {
		return err
	}
	el.SetText(ul.String())
	if b.names != nil {
		if name, ok := b.names.NameOf(klv.AUIDFromUL(ul)); ok {
			b.addComment(el, name)
		}
	}
	return nil
}

// 5.4 FixedArray
func (b *Builder) rule5FixedArray(el *etree.Element, typeDef *dict.Definition, r *valueStream, ancestors []string) error {
	if isUL(typeDef.Identification, UUIDTypeUL) {
		uuid, err := r.ReadUUID()
		if err != nil {
			return err
		}
		el.SetText(uuid.String())
		return nil
	}
	elemDef, err := b.findBaseDefinition(typeDef.ElementType)
	if err != nil {
		return err
	}
	return b.applyArrayCore(el, elemDef, r, uint32(typeDef.ElementCount), ancestors)
}

// applyArrayCore is the element-or-strong-reference loop shared by
// FixedArray, Set and VariableArray (Rule 5.4.1/5.4.2).
func (b *Builder) applyArrayCore(parent *etree.Element, elemDef *dict.Definition, r *valueStream, count uint32, ancestors []string) error {
	for i := uint32(0); i < count; i++ {
		if elemDef.Kind == dict.KindStrongReferenceType {
			refDef, err := b.findBaseDefinition(elemDef.ReferencedType)
			if err != nil {
				return err
			}
			if refDef.Kind != dict.KindClass {
				return Event{Code: "InvalidStrongReferenceType", Severity: SeverityError,
					Reason: "strong reference target is not a class", Where: elemDef.Symbol}
			}
			uuid, err := r.ReadUUID()
			if err != nil {
				return err
			}
			if err := b.appendStrongReference(parent, uuid, ancestors); err != nil {
				return err
			}
			continue
		}
		child := b.newElement(elemDef.Namespace, elemDef.Symbol)
		parent.AddChild(child)
		if err := b.applyRule5(child, elemDef, r, ancestors); err != nil {
			return err
		}
	}
	return nil
}

// appendStrongReference resolves uuid in the set index, creates and
// appends the referenced class's element to parent, then populates it
// (Rule 3) unless uuid names an ancestor already under construction. A
// circular reference still leaves its stand-in element attached to
// parent, empty and unpopulated, matching the original applyRule3's
// append-then-check sequencing rather than skipping the element entirely.
func (b *Builder) appendStrongReference(parent *etree.Element, uuid klv.UUID, ancestors []string) error {
	ts, ok := b.sets[uuid]
	if !ok {
		return Event{Code: "MissingStrongReference", Severity: SeverityError,
			Reason: fmt.Sprintf("no set with instance uid %s", uuid)}
	}
	child, classDef, ok := b.resolveGroupElement(&ts.LocalSet.Group)
	if !ok {
		return nil
	}
	parent.AddChild(child)

	uidText := uuid.String()
	for _, a := range ancestors {
		if a == uidText {
			b.emit("CircularStrongReference", SeverityInfo,
				fmt.Sprintf("instance uid %s already appears as an ancestor", uidText), child.Tag)
			b.addComment(child, "circular strong reference: "+uidText)
			return nil
		}
	}

	return b.populateGroup(child, &ts.LocalSet.Group, classDef, ancestors)
}

// 5.5 Indirect
func (b *Builder) rule5Indirect(el *etree.Element, typeDef *dict.Definition, r *valueStream, ancestors []string) error {
	marker, err := r.ReadUnsignedByte()
	if err != nil {
		return err
	}
	switch marker {
	case 0x4c:
		r.SetByteOrder(klv.LittleEndian)
	case 0x42:
		r.SetByteOrder(klv.BigEndian)
	default:
		return Event{Code: "UnknownByteOrder", Severity: SeverityError,
			Reason: fmt.Sprintf("unrecognized indirect byte order marker %#02x", marker), Where: typeDef.Symbol}
	}

	auid, err := r.ReadIDAU()
	if err != nil {
		return err
	}
	actualDef, ok := b.resolver.ByID(auid)
	if !ok {
		return Event{Code: "UnknownType", Severity: SeverityError, Reason: "no definition for indirect value's actual type", Where: auid.String()}
	}

	el.CreateAttr("reg:"+actualTypeAttr, actualDef.Symbol)

	return b.applyRule5(el, actualDef, r, ancestors)
}

// 5.6 Integer
func (b *Builder) rule5Integer(el *etree.Element, typeDef *dict.Definition, r *valueStream) error {
	var text string
	switch typeDef.Size {
	case 1:
		if typeDef.IsSigned {
			v, err := r.ReadByte()
			if err != nil {
				return err
			}
			text = fmt.Sprintf("%d", v)
		} else {
			v, err := r.ReadUnsignedByte()
			if err != nil {
				return err
			}
			text = fmt.Sprintf("%d", v)
		}
	case 2:
		if typeDef.IsSigned {
			v, err := r.ReadShort()
			if err != nil {
				return err
			}
			text = fmt.Sprintf("%d", v)
		} else {
			v, err := r.ReadUnsignedShort()
			if err != nil {
				return err
			}
			text = fmt.Sprintf("%d", v)
		}
	case 4:
		if typeDef.IsSigned {
			v, err := r.ReadLong()
			if err != nil {
				return err
			}
			text = fmt.Sprintf("%d", v)
		} else {
			v, err := r.ReadUnsignedLong()
			if err != nil {
				return err
			}
			text = fmt.Sprintf("%d", v)
		}
	case 8:
		if typeDef.IsSigned {
			v, err := r.ReadLongLong()
			if err != nil {
				return err
			}
			text = fmt.Sprintf("%d", v)
		} else {
			v, err := r.ReadUnsignedLongLong()
			if err != nil {
				return err
			}
			text = fmt.Sprintf("%d", v)
		}
	default:
		return Event{Code: "UnexpectedDefinition", Severity: SeverityError,
			Reason: fmt.Sprintf("unsupported integer width %d", typeDef.Size), Where: typeDef.Symbol}
	}
	el.SetText(text)
	return nil
}

// 5.8 Record
func (b *Builder) rule5Record(el *etree.Element, typeDef *dict.Definition, r *valueStream, ancestors []string) error {
	switch {
	case isUL(typeDef.Identification, AUIDTypeUL):
		auid, err := r.ReadAUID()
		if err != nil {
			return err
		}
		el.SetText(auid.String())
		if b.names != nil {
			if name, ok := b.names.NameOf(auid); ok {
				b.addComment(el, name)
			}
		}
		return nil
	case isUL(typeDef.Identification, DateStructUL):
		year, err := r.ReadUnsignedShort()
		if err != nil {
			return err
		}
		month, err := r.ReadUnsignedByte()
		if err != nil {
			return err
		}
		day, err := r.ReadUnsignedByte()
		if err != nil {
			return err
		}
		el.SetText(fmt.Sprintf("%04d-%02d-%02d", year, month, day))
		return nil
	case isUL(typeDef.Identification, PackageIDUL):
		umid, err := r.ReadUMID()
		if err != nil {
			return err
		}
		el.SetText(umid.String())
		return nil
	case isUL(typeDef.Identification, RationalUL):
		num, err := r.ReadLong()
		if err != nil {
			return err
		}
		den, err := r.ReadLong()
		if err != nil {
			return err
		}
		el.SetText(fmt.Sprintf("%d/%d", num, den))
		return nil
	case isUL(typeDef.Identification, TimeStructUL):
		hour, minute, second, fraction, err := readTimeFields(r)
		if err != nil {
			return err
		}
		el.SetText(formatISO8601Time(hour, minute, second, fraction))
		return nil
	case isUL(typeDef.Identification, TimeStampUL):
		year, err := r.ReadUnsignedShort()
		if err != nil {
			return err
		}
		month, err := r.ReadUnsignedByte()
		if err != nil {
			return err
		}
		day, err := r.ReadUnsignedByte()
		if err != nil {
			return err
		}
		hour, minute, second, fraction, err := readTimeFields(r)
		if err != nil {
			return err
		}
		el.SetText(fmt.Sprintf("%04d-%02d-%02dT%s", year, month, day, formatISO8601Time(hour, minute, second, fraction)))
		return nil
	case isUL(typeDef.Identification, VersionTypeUL):
		major, err := r.ReadUnsignedByte()
		if err != nil {
			return err
		}
		minor, err := r.ReadUnsignedByte()
		if err != nil {
			return err
		}
		el.SetText(fmt.Sprintf("%d.%d", major, minor))
		return nil
	}

	for _, member := range typeDef.Members {
		memberDef, err := b.findBaseDefinition(member.Type)
		if err != nil {
			return err
		}
		child := b.newElement(typeDef.Namespace, member.Name)
		el.AddChild(child)
		if err := b.applyRule5(child, memberDef, r, ancestors); err != nil {
			return err
		}
	}
	return nil
}

func readTimeFields(r *valueStream) (hour, minute, second, fraction uint8, err error) {
	if hour, err = r.ReadUnsignedByte(); err != nil {
		return
	}
	if minute, err = r.ReadUnsignedByte(); err != nil {
		return
	}
	if second, err = r.ReadUnsignedByte(); err != nil {
		return
	}
	fraction, err = r.ReadUnsignedByte()
	return
}

// formatISO8601Time renders an ST 377-1 time value; fraction is quarter
// milliseconds (msec/4), per ST 377-1 rather than ST 2001-1's own gloss.
func formatISO8601Time(hour, minute, second, fraction uint8) string {
	millis := 4 * int(fraction)
	if millis == 0 {
		return fmt.Sprintf("%02d:%02d:%02dZ", hour, minute, second)
	}
	return fmt.Sprintf("%02d:%02d:%02d.%03dZ", hour, minute, second, millis)
}

// 5.10 Set
func (b *Builder) rule5Set(el *etree.Element, typeDef *dict.Definition, r *valueStream, ancestors []string) error {
	elemDef, err := b.findBaseDefinition(typeDef.ElementType)
	if err != nil {
		return err
	}
	count, err := r.ReadUnsignedLong()
	if err != nil {
		return err
	}
	if _, err := r.ReadUnsignedLong(); err != nil { // item length, redundant with elemDef's own width
		return err
	}
	return b.applyArrayCore(el, elemDef, r, count, ancestors)
}

// 5.12 String
func (b *Builder) rule5String(el *etree.Element, typeDef *dict.Definition, r *valueStream) error {
	chrDef, err := b.findBaseDefinition(typeDef.ElementType)
	if err != nil {
		return err
	}
	if chrDef.Kind != dict.KindCharacterType {
		return Event{Code: "UnsupportedStringType", Severity: SeverityError,
			Reason: "string element type does not resolve to a character type", Where: typeDef.Symbol}
	}
	raw, err := r.readRemaining()
	if err != nil {
		return err
	}
	s, err := decodeCharacters(chrDef.Identification, r.ByteOrder(), raw)
	if err != nil {
		return err
	}
	el.SetText(s)
	return nil
}

// 5.13 StrongReference
func (b *Builder) rule5StrongReference(el *etree.Element, typeDef *dict.Definition, r *valueStream, ancestors []string) error {
	refDef, err := b.findBaseDefinition(typeDef.ReferencedType)
	if err != nil {
		return err
	}
	if refDef.Kind != dict.KindClass {
		return Event{Code: "InvalidStrongReferenceType", Severity: SeverityError,
			Reason: "strong reference target is not a class", Where: typeDef.Symbol}
	}
	uuid, err := r.ReadUUID()
	if err != nil {
		return err
	}
	return b.appendStrongReference(el, uuid, ancestors)
}

// 5.14 VariableArray
func (b *Builder) rule5VariableArray(el *etree.Element, typeDef *dict.Definition, r *valueStream, ancestors []string) error {
	if typeDef.Symbol == "DataValue" {
		raw, err := r.readRemaining()
		if err != nil {
			return err
		}
		el.SetText(hex.EncodeToString(raw))
		return nil
	}

	elemDef, err := b.findBaseDefinition(typeDef.ElementType)
	if err != nil {
		return err
	}
	if elemDef.Kind == dict.KindCharacterType || strings.Contains(elemDef.Symbol, "StringArray") {
		return Event{Code: "StringArrayUnsupported", Severity: SeverityError,
			Reason: "string arrays are not supported", Where: typeDef.Symbol}
	}

	count, err := r.ReadUnsignedLong()
	if err != nil {
		return err
	}
	if _, err := r.ReadUnsignedLong(); err != nil { // item length, redundant with elemDef's own width
		return err
	}
	return b.applyArrayCore(el, elemDef, r, count, ancestors)
}

// 5.15 WeakReference
func (b *Builder) rule5WeakReference(el *etree.Element, typeDef *dict.Definition, r *valueStream, ancestors []string) error {
	classDef, ok := b.resolver.ByID(typeDef.ReferencedType)
	if !ok || classDef.Kind != dict.KindClass {
		return Event{Code: "UnexpectedDefinition", Severity: SeverityError,
			Reason: "weak reference target is not a class", Where: typeDef.Symbol}
	}
	var uniqueProp *dict.Definition
	for _, p := range b.resolver.AllMembersOf(classDef.Identification) {
		if p.IsUniqueIdentifier {
			uniqueProp = p
			break
		}
	}
	if uniqueProp == nil {
		return Event{Code: "MissingUniqueProperty", Severity: SeverityError,
			Reason: "weak reference target class has no unique-identifier property", Where: classDef.Symbol}
	}
	return b.applyRule4Stream(el, uniqueProp, r, ancestors)
}
