// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dict

import (
	"strings"
	"testing"
)

const sampleDict = `<?xml version="1.0" encoding="UTF-8"?>
<Extension xmlns="http://www.smpte-ra.org/schemas/2001-1b/2013/metadict">
  <SchemeID>urn:uuid:f81d4fae-7dec-11d0-a765-00a0c91e6bf6</SchemeID>
  <SchemeURI>http://example.com/2026/regxmlgo-sample</SchemeURI>
  <MetaDefinitions>
    <ClassDefinition>
      <Identification>060e2b34.027f0101.0d010101.01012f00</Identification>
      <Symbol>Preface</Symbol>
      <Name>Preface</Name>
      <Description>Root class</Description>
      <IsConcrete>true</IsConcrete>
    </ClassDefinition>
    <PropertyDefinition>
      <Identification>060e2b34.01010101.01011502.00000000</Identification>
      <Symbol>InstanceID</Symbol>
      <Name>Instance ID</Name>
      <Type>urn:uuid:7f81d4fa-7dec-11d0-a765-00a0c91e6bf6</Type>
      <MemberOf>060e2b34.027f0101.0d010101.01012f00</MemberOf>
      <IsUniqueIdentifier>true</IsUniqueIdentifier>
      <IsOptional>false</IsOptional>
    </PropertyDefinition>
    <TypeDefinitionInteger>
      <Identification>060e2b34.01040101.01010400.00000000</Identification>
      <Symbol>UInt32</Symbol>
      <Name>UInt32</Name>
      <Size>4</Size>
      <IsSigned>false</IsSigned>
    </TypeDefinitionInteger>
    <TypeDefinitionEnumeration>
      <Identification>060e2b34.01040101.01010100.00000000</Identification>
      <Symbol>Boolean</Symbol>
      <Name>Boolean</Name>
      <ElementType>060e2b34.01040101.01010400.00000000</ElementType>
      <Elements>
        <Element>
          <Name>True</Name>
          <Value>1</Value>
        </Element>
        <Element>
          <Name>False</Name>
          <Value>0</Value>
        </Element>
      </Elements>
    </TypeDefinitionEnumeration>
  </MetaDefinitions>
</Extension>`

func TestLoadMetaDictionary(t *testing.T) {
	m, err := Load([]byte(sampleDict))
	if err != nil {
		t.Fatal(err)
	}
	if m.SchemeURI != "http://example.com/2026/regxmlgo-sample" {
		t.Errorf("got SchemeURI %q", m.SchemeURI)
	}
	preface, ok := m.BySymbol("Preface")
	if !ok || preface.Kind != KindClass || !preface.IsConcrete {
		t.Fatalf("got %+v", preface)
	}
	iid, ok := m.BySymbol("InstanceID")
	if !ok || iid.Kind != KindProperty || !iid.IsUniqueIdentifier {
		t.Fatalf("got %+v", iid)
	}
	boolean, ok := m.BySymbol("Boolean")
	if !ok || boolean.Kind != KindEnumerationType || len(boolean.Elements) != 2 {
		t.Fatalf("got %+v", boolean)
	}
}

func TestLoadMetaDictionaryRejectsWrongRoot(t *testing.T) {
	_, err := Load([]byte(`<NotExtension/>`))
	if err == nil || !strings.Contains(err.Error(), "Extension") {
		t.Fatalf("got err=%v, want mention of Extension", err)
	}
}
