// Copyright go-multistark authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package tables

import (
	"bytes"
	"testing"
)

func Test_Encoding_RoundTrip_01(t *testing.T) {
	original := testProgram()
	//
	encoded, err := original.ToJson()
	if err != nil {
		t.Fatal(err)
	}
	//
	parsed, err := ParseJsonProgram(encoded)
	if err != nil {
		t.Fatal(err)
	}
	//
	if len(parsed) != len(original) {
		t.Fatalf("parsed %d instructions, expected %d", len(parsed), len(original))
	}
	//
	for i, insn := range parsed {
		want := original[i]
		//
		if insn.Op != want.Op {
			t.Errorf("instruction %d: operation %s, expected %s", i, insn.Op, want.Op)
		}
		//
		switch want.Op {
		case OpAdd, OpSub, OpMul:
			if !insn.X.Eq(want.X) || !insn.Y.Eq(want.Y) {
				t.Errorf("instruction %d: operands differ", i)
			}
		case OpLoad, OpStore:
			if insn.Addr != want.Addr || insn.Value != want.Value {
				t.Errorf("instruction %d: address or value differs", i)
			}
		case OpPack:
			if !bytes.Equal(insn.Bytes, want.Bytes) {
				t.Errorf("instruction %d: byte strings differ", i)
			}
		}
	}
}

func Test_Encoding_Operands_01(t *testing.T) {
	program, err := ParseJsonProgram([]byte(`[{"op": "add", "x": "0xff", "y": "255"}]`))
	if err != nil {
		t.Fatal(err)
	}
	//
	if !program[0].X.Eq(program[0].Y) {
		t.Error("hexadecimal and decimal forms of 255 parsed differently")
	}
}

func Test_Encoding_Invalid_01(t *testing.T) {
	for _, input := range []string{
		`[{"op": "xyz"}]`,
		`[{"op": "add", "x": "1"}]`,
		`[{"op": "pack", "bytes": "zz"}]`,
		`[]`,
		`{`,
	} {
		if _, err := ParseJsonProgram([]byte(input)); err == nil {
			t.Errorf("expected %q to be rejected", input)
		}
	}
}
