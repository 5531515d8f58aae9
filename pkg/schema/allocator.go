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

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Allocator assigns named column indices within a table.  Fresh allocations
// never overlap.  Shared banks are the exception: a shared bank may be
// aliased under several names, which is how mutually exclusive operations
// reuse the same scratch columns.  Aliasing into columns outside a shared
// bank is rejected.
type Allocator struct {
	// Columns belonging to shared banks.
	shared *bitset.BitSet
	// Named regions, each a (start, extent) pair.
	names map[string][2]uint
	// One past the highest column allocated so far.
	width uint
}

// NewAllocator constructs an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{
		shared: bitset.New(64),
		names:  make(map[string][2]uint),
	}
}

// Width returns the number of columns allocated so far.
func (p *Allocator) Width() uint {
	return p.width
}

// Column allocates a single fresh column under the given name.
func (p *Allocator) Column(name string) uint {
	return p.Range(name, 1)
}

// Range allocates n fresh consecutive columns under the given name, returning
// the index of the first.
func (p *Allocator) Range(name string, n uint) uint {
	start := p.width
	p.record(name, start, n)
	p.width += n
	//
	return start
}

// Shared allocates n fresh consecutive columns as a shared bank, returning
// the index of the first.  Unlike Range, the bank may subsequently be aliased
// under further names.
func (p *Allocator) Shared(name string, n uint) uint {
	start := p.Range(name, n)
	p.shared.FlipRange(start, start+n)
	//
	return start
}

// Alias claims n consecutive columns starting at start under a new name.  The
// columns must all belong to shared banks.
func (p *Allocator) Alias(name string, start uint, n uint) uint {
	for i := start; i < start+n; i++ {
		if !p.shared.Test(i) {
			panic(fmt.Sprintf("alias %q covers non-shared column %d", name, i))
		}
	}
	//
	p.record(name, start, n)
	//
	return start
}

// Lookup returns the start index and extent of a named allocation.
func (p *Allocator) Lookup(name string) (uint, uint) {
	region, ok := p.names[name]
	if !ok {
		panic(fmt.Sprintf("unknown allocation %q", name))
	}
	//
	return region[0], region[1]
}

func (p *Allocator) record(name string, start uint, n uint) {
	if _, ok := p.names[name]; ok {
		panic(fmt.Sprintf("duplicate allocation %q", name))
	}
	//
	p.names[name] = [2]uint{start, n}
}
