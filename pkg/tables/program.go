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
	"fmt"

	"github.com/holiman/uint256"
	"github.com/multistark/go-multistark/pkg/field"
)

// Op identifies one machine operation.
type Op uint8

const (
	// OpAdd computes X + Y modulo 2^256.
	OpAdd Op = iota
	// OpSub computes X - Y modulo 2^256.
	OpSub
	// OpMul computes X * Y modulo 2^256.
	OpMul
	// OpLoad reads a value from memory.  An address never written reads as
	// zero.
	OpLoad
	// OpStore writes a value to memory.
	OpStore
	// OpPack packs up to eight bytes into a 64-bit word.
	OpPack
)

// String implementation for the Stringer interface.
func (p Op) String() string {
	switch p {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpLoad:
		return "load"
	case OpStore:
		return "store"
	case OpPack:
		return "pack"
	}
	//
	return "???"
}

// MemoryAddress locates one memory cell.
type MemoryAddress struct {
	Context uint64
	Segment uint64
	Virtual uint64
}

// Instruction is one step of a program, driving one CPU row.  Which operands
// are meaningful depends on the operation.
type Instruction struct {
	Op Op
	// Arithmetic operands.
	X *uint256.Int
	Y *uint256.Int
	// Memory address for loads and stores.
	Addr MemoryAddress
	// Value written by a store.
	Value field.Element
	// Bytes packed by a pack, at most eight.
	Bytes []byte
}

// Program is the instruction sequence the machine executes.
type Program []Instruction

// Validate rejects instructions whose operands the machine cannot encode.
// Generation never starts from an invalid program, since the resulting trace
// could not satisfy its own constraints.
func (p Program) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("empty program")
	}
	//
	for i, insn := range p {
		switch insn.Op {
		case OpAdd, OpSub, OpMul:
			if insn.X == nil || insn.Y == nil {
				return fmt.Errorf("instruction %d: %s requires both operands", i, insn.Op)
			}
		case OpLoad, OpStore:
			// Any address encodes.
		case OpPack:
			if len(insn.Bytes) == 0 || len(insn.Bytes) > 8 {
				return fmt.Errorf("instruction %d: pack requires between 1 and 8 bytes, got %d",
					i, len(insn.Bytes))
			}
		default:
			return fmt.Errorf("instruction %d: unknown operation %d", i, insn.Op)
		}
	}
	//
	return nil
}
