// Copyright 2026 The regxmlgo Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package regxml

import (
	"bytes"
	"testing"
)

// FuzzAssembleFromMXF exercises the partition/primer/set-index/assembler
// pipeline against arbitrary input, the way the teacher's Fuzz(data []byte)
// harness drives its own header parser: feed raw bytes in, require no
// panic, and accept any returned error as a legitimate rejection of
// malformed input.
func FuzzAssembleFromMXF(f *testing.F) {
	f.Add([]byte{})
	f.Add(samplePartitionPackBytes(t_testHelperKAGSize))
	f.Fuzz(func(t *testing.T, data []byte) {
		resolver := samplePreludeOnlyResolver()
		_, _ = AssembleFromMXF(bytes.NewReader(data), resolver, AssembleOptions{})
	})
}

const t_testHelperKAGSize = 1
