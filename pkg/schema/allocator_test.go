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
package schema

import "testing"

func Test_Allocator_Disjoint(t *testing.T) {
	alloc := NewAllocator()
	//
	if alloc.Column("a") != 0 {
		t.Error("first column not at index 0")
	} else if alloc.Range("b", 3) != 1 {
		t.Error("second allocation not at index 1")
	} else if alloc.Width() != 4 {
		t.Errorf("expected width 4, got %d", alloc.Width())
	}
	//
	start, n := alloc.Lookup("b")
	if start != 1 || n != 3 {
		t.Errorf("lookup of b gave (%d, %d)", start, n)
	}
}

func Test_Allocator_SharedBank(t *testing.T) {
	alloc := NewAllocator()
	alloc.Column("flag")
	bank := alloc.Shared("scratch", 8)
	//
	if alloc.Alias("add_input", bank, 4) != bank {
		t.Error("alias start diverges from bank start")
	} else if alloc.Alias("mul_input", bank+4, 4) != bank+4 {
		t.Error("alias start diverges from bank offset")
	} else if alloc.Width() != 9 {
		t.Errorf("aliases must not grow the table, width %d", alloc.Width())
	}
}

func Test_Allocator_RejectAliasOutsideBank(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("alias over exclusive column accepted")
		}
	}()
	//
	alloc := NewAllocator()
	alloc.Column("flag")
	alloc.Alias("bad", 0, 1)
}

func Test_Allocator_RejectDuplicateName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("duplicate allocation name accepted")
		}
	}()
	//
	alloc := NewAllocator()
	alloc.Column("a")
	alloc.Column("a")
}
