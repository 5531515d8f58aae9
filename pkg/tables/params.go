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

// Package tables defines the sub-machine tables of the proving system: a CPU
// table driving execution, an arithmetic table for 256-bit operations, a
// memory table attesting every access, and a byte-packing table.  Each table
// kind provides a column layout, a trace generator and a dual-mode constraint
// evaluator, and the package wires the cross-table lookups tying them into
// one machine.
package tables

import (
	"fmt"
	"math/bits"
)

// Params fixes the machine-wide shape parameters shared by several tables.
type Params struct {
	// LimbBits is the width of one limb of a 256-bit value, in bits.  The
	// range-check argument needs a canonical column covering [0, 2^LimbBits),
	// so the arithmetic table height is at least 2^LimbBits.
	LimbBits uint
}

// DefaultParams returns the production shape: 16-bit limbs.
func DefaultParams() Params {
	return Params{LimbBits: 16}
}

// Validate rejects limb widths the arithmetic constraints cannot support.
func (p Params) Validate() error {
	if p.LimbBits != 8 && p.LimbBits != 16 {
		return fmt.Errorf("unsupported limb width %d, must be 8 or 16", p.LimbBits)
	}
	//
	return nil
}

// NumLimbs returns the number of limbs in a 256-bit value.
func (p Params) NumLimbs() uint {
	return 256 / p.LimbBits
}

// LimbBase returns 2^LimbBits.
func (p Params) LimbBase() uint64 {
	return uint64(1) << p.LimbBits
}

// LimbMax returns the largest limb value, 2^LimbBits - 1.
func (p Params) LimbMax() uint64 {
	return p.LimbBase() - 1
}

// AuxOffset returns the shift applied to the multiplication carry
// coefficients before splitting them into limbs.  The coefficients lie in
// (-NumLimbs * LimbBase, NumLimbs * LimbBase), so shifting by the next power
// of two above that bound makes them non-negative.
func (p Params) AuxOffset() uint64 {
	bound := uint64(p.NumLimbs()) * p.LimbBase()
	//
	return uint64(1) << bits.Len64(bound)
}
