// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dict

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/sandflow/regxmlgo/klv"
)

// metadictNS is the namespace of the Extension root element that carries a
// MetaDictionary (spec §6).
const metadictNS = "http://www.smpte-ra.org/schemas/2001-1b/2013/metadict"

// Load parses a MetaDictionary XML document (the "Extension" shape
// described in spec §6) from data and returns the populated MetaDictionary.
//
// This importer is, per spec §1, an external collaborator the core
// traversal never depends on directly; it exists here so the module has a
// concrete producer of dict.Resolver to exercise end to end, built with
// beevik/etree the way the teacher pack's other XML-consuming CLI
// (rupor-github-fb2cng) does.
func Load(data []byte) (*MetaDictionary, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("dict: parse metadictionary xml: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "Extension" {
		return nil, fmt.Errorf("dict: expected root element Extension, got %v", root)
	}

	schemeIDText := childText(root, "SchemeID")
	schemeID, err := klv.ParseUUID(schemeIDText)
	if err != nil {
		return nil, fmt.Errorf("dict: SchemeID: %w", err)
	}
	schemeURI := childText(root, "SchemeURI")

	m := NewMetaDictionary(klv.AUIDFromUUID(schemeID), schemeURI)
	m.SchemeURI = schemeURI

	defsEl := root.SelectElement("MetaDefinitions")
	if defsEl == nil {
		return m, nil
	}

	for _, el := range defsEl.ChildElements() {
		def, err := decodeDefinitionElement(el, schemeURI)
		if err != nil {
			return nil, fmt.Errorf("dict: %s: %w", el.Tag, err)
		}
		if def == nil {
			continue
		}
		if err := m.Add(def); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func decodeDefinitionElement(el *etree.Element, namespace string) (*Definition, error) {
	common, err := decodeCommon(el, namespace)
	if err != nil {
		return nil, err
	}

	switch el.Tag {
	case "ClassDefinition":
		d := &Definition{Common: common, Kind: KindClass}
		if pc := childText(el, "ParentClass"); pc != "" {
			id, err := parseAUIDText(pc)
			if err != nil {
				return nil, err
			}
			d.ParentClass = id
			d.HasParent = true
		}
		d.IsConcrete = childBool(el, "IsConcrete")
		return d, nil

	case "PropertyDefinition":
		d := &Definition{Common: common, Kind: KindProperty}
		if err := decodePropertyFields(el, d); err != nil {
			return nil, err
		}
		return d, nil

	case "PropertyAliasDefinition":
		d := &Definition{Common: common, Kind: KindPropertyAlias}
		if err := decodePropertyFields(el, d); err != nil {
			return nil, err
		}
		if op := childText(el, "OriginalProperty"); op != "" {
			id, err := parseAUIDText(op)
			if err != nil {
				return nil, err
			}
			d.OriginalProperty = id
		}
		return d, nil

	default:
		if !strings.HasPrefix(el.Tag, "TypeDefinition") {
			return nil, nil
		}
		return decodeTypeDefinition(el, common)
	}
}

func decodePropertyFields(el *etree.Element, d *Definition) error {
	if t := childText(el, "Type"); t != "" {
		id, err := parseAUIDText(t)
		if err != nil {
			return err
		}
		d.Type = id
	}
	if mo := childText(el, "MemberOf"); mo != "" {
		id, err := parseAUIDText(mo)
		if err != nil {
			return err
		}
		d.MemberOf = id
	}
	if li := childText(el, "LocalIdentification"); li != "" {
		v, err := strconv.ParseUint(li, 0, 16)
		if err != nil {
			return err
		}
		d.LocalIdentification = uint16(v)
	}
	d.IsUniqueIdentifier = childBool(el, "IsUniqueIdentifier")
	d.IsOptional = childBool(el, "IsOptional")
	return nil
}

func decodeTypeDefinition(el *etree.Element, common Common) (*Definition, error) {
	d := &Definition{Common: common}
	switch el.Tag {
	case "TypeDefinitionInteger":
		d.Kind = KindIntegerType
		size, err := childInt(el, "Size")
		if err != nil {
			return nil, err
		}
		d.Size = size
		d.IsSigned = childBool(el, "IsSigned")
	case "TypeDefinitionCharacter":
		d.Kind = KindCharacterType
	case "TypeDefinitionString":
		d.Kind = KindStringType
		if err := setElementType(el, d); err != nil {
			return nil, err
		}
	case "TypeDefinitionEnumeration":
		d.Kind = KindEnumerationType
		if err := setElementType(el, d); err != nil {
			return nil, err
		}
		elementsEl := el.SelectElement("Elements")
		if elementsEl != nil {
			for _, e := range elementsEl.ChildElements() {
				v, err := strconv.ParseInt(childText(e, "Value"), 0, 64)
				if err != nil {
					return nil, err
				}
				d.Elements = append(d.Elements, EnumElement{
					Name:        childText(e, "Name"),
					Value:       v,
					Description: childText(e, "Description"),
				})
			}
		}
	case "TypeDefinitionExtendibleEnumeration":
		d.Kind = KindExtendibleEnumerationType
	case "TypeDefinitionFixedArray":
		d.Kind = KindFixedArrayType
		if err := setElementType(el, d); err != nil {
			return nil, err
		}
		n, err := childInt(el, "ElementCount")
		if err != nil {
			return nil, err
		}
		d.ElementCount = n
	case "TypeDefinitionVariableArray":
		d.Kind = KindVariableArrayType
		if err := setElementType(el, d); err != nil {
			return nil, err
		}
	case "TypeDefinitionSet":
		d.Kind = KindSetType
		if err := setElementType(el, d); err != nil {
			return nil, err
		}
	case "TypeDefinitionRecord":
		d.Kind = KindRecordType
		membersEl := el.SelectElement("Members")
		if membersEl != nil {
			for _, e := range membersEl.ChildElements() {
				t, err := parseAUIDText(childText(e, "Type"))
				if err != nil {
					return nil, err
				}
				d.Members = append(d.Members, RecordMember{
					Name: childText(e, "Name"),
					Type: t,
				})
			}
		}
	case "TypeDefinitionRename":
		d.Kind = KindRenameType
		t, err := parseAUIDText(childText(el, "RenamedType"))
		if err != nil {
			return nil, err
		}
		d.RenamedType = t
	case "TypeDefinitionStrongReference":
		d.Kind = KindStrongReferenceType
		t, err := parseAUIDText(childText(el, "ReferencedType"))
		if err != nil {
			return nil, err
		}
		d.ReferencedType = t
	case "TypeDefinitionWeakReference":
		d.Kind = KindWeakReferenceType
		t, err := parseAUIDText(childText(el, "ReferencedType"))
		if err != nil {
			return nil, err
		}
		d.ReferencedType = t
		if ts := childText(el, "TargetSet"); ts != "" {
			for _, tok := range strings.Fields(ts) {
				id, err := parseAUIDText(tok)
				if err != nil {
					return nil, err
				}
				d.TargetSet = append(d.TargetSet, id)
			}
		}
	case "TypeDefinitionIndirect":
		d.Kind = KindIndirectType
	case "TypeDefinitionOpaque":
		d.Kind = KindOpaqueType
	case "TypeDefinitionStream":
		d.Kind = KindStreamType
	case "TypeDefinitionLensSerialFloat":
		d.Kind = KindLensSerialFloatType
	case "TypeDefinitionFloat":
		d.Kind = KindFloatType
		size, err := childInt(el, "Size")
		if err != nil {
			return nil, err
		}
		d.Size = size
	default:
		return nil, fmt.Errorf("unrecognized type definition element %q", el.Tag)
	}
	return d, nil
}

func setElementType(el *etree.Element, d *Definition) error {
	t := childText(el, "ElementType")
	if t == "" {
		return nil
	}
	id, err := parseAUIDText(t)
	if err != nil {
		return err
	}
	d.ElementType = id
	return nil
}

func decodeCommon(el *etree.Element, namespace string) (Common, error) {
	idText := childText(el, "Identification")
	id, err := parseAUIDText(idText)
	if err != nil {
		return Common{}, fmt.Errorf("Identification: %w", err)
	}
	return Common{
		Identification: id,
		Symbol:         childText(el, "Symbol"),
		Name:           childText(el, "Name"),
		Description:    childText(el, "Description"),
		Namespace:      namespace,
	}, nil
}

func parseAUIDText(s string) (klv.AUID, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "urn:uuid:") {
		u, err := klv.ParseUUID(s)
		if err != nil {
			return klv.AUID{}, err
		}
		return klv.AUIDFromUUID(u), nil
	}
	ul, err := klv.ParseUL(s)
	if err != nil {
		return klv.AUID{}, fmt.Errorf("malformed AUID %q: %w", s, err)
	}
	return klv.AUIDFromUL(ul), nil
}

func childText(el *etree.Element, tag string) string {
	c := el.SelectElement(tag)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text())
}

func childBool(el *etree.Element, tag string) bool {
	return childText(el, tag) == "true" || childText(el, tag) == "1"
}

func childInt(el *etree.Element, tag string) (int, error) {
	t := childText(el, tag)
	if t == "" {
		return 0, fmt.Errorf("missing required element %q", tag)
	}
	v, err := strconv.Atoi(t)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", tag, err)
	}
	return v, nil
}
