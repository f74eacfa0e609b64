// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package regxml

import "github.com/sandflow/regxmlgo/klv"

func mustUL(hex string) klv.UL {
	u, err := klv.ParseUL(hex)
	if err != nil {
		panic(err)
	}
	return u
}

// Exceptional property ULs dispatched specially by Rule 4.
var (
	ByteOrderUL            = mustUL("060e2b34.01010101.03010201.02000000")
	PrimaryPackageUL       = mustUL("060e2b34.01010104.06010104.01080000")
	LinkedGenerationIDUL   = mustUL("060e2b34.01010102.05200701.08000000")
	GenerationIDUL         = mustUL("060e2b34.01010102.05200701.01000000")
	ApplicationProductIDUL = mustUL("060e2b34.01010102.05200701.07000000")
)

// Exceptional record/primitive type ULs dispatched specially by Rule 5.
var (
	AUIDTypeUL           = mustUL("060e2b34.01040101.01030100.00000000")
	UUIDTypeUL           = mustUL("060e2b34.01040101.01030300.00000000")
	DateStructUL         = mustUL("060e2b34.01040101.03010500.00000000")
	PackageIDUL          = mustUL("060e2b34.01040101.01030200.00000000")
	RationalUL           = mustUL("060e2b34.01040101.03010100.00000000")
	TimeStructUL         = mustUL("060e2b34.01040101.03010600.00000000")
	TimeStampUL          = mustUL("060e2b34.01040101.03010700.00000000")
	VersionTypeUL        = mustUL("060e2b34.01040101.03010300.00000000")
	CharacterUL          = mustUL("060e2b34.01040101.01100100.00000000")
	CharUL               = mustUL("060e2b34.01040101.01100300.00000000")
	UTF8CharacterUL      = mustUL("060e2b34.01040101.01100500.00000000")
	ProductReleaseTypeUL = mustUL("060e2b34.01040101.02010101.00000000")
	BooleanUL            = mustUL("060e2b34.01040101.01040100.00000000")
)

// RegXMLNamespace carries the uid/actualType attributes the builder emits
// on elements, distinct from the namespaces of the classes/properties
// themselves (which come from the defining dictionary's scheme URI).
const RegXMLNamespace = "http://sandflow.com/ns/SMPTEST2001-1/baseline"

const (
	uidAttr        = "uid"
	actualTypeAttr = "actualType"
)

func isUL(id klv.AUID, ul klv.UL) bool {
	return id.IsUL() && klv.VersionlessEqual(id.AsUL(), ul)
}
