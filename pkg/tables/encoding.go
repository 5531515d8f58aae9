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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/multistark/go-multistark/pkg/field"
)

// jsonInstruction is the external form of one instruction.  Operands are
// strings holding either decimal or 0x-prefixed hexadecimal values; byte
// strings are plain hexadecimal.
type jsonInstruction struct {
	Op      string `json:"op"`
	X       string `json:"x,omitempty"`
	Y       string `json:"y,omitempty"`
	Context uint64 `json:"context,omitempty"`
	Segment uint64 `json:"segment,omitempty"`
	Virtual uint64 `json:"virtual,omitempty"`
	Value   uint64 `json:"value,omitempty"`
	Bytes   string `json:"bytes,omitempty"`
}

// ParseJsonProgram parses a program given in JSON form, as an array of
// instruction objects.
func ParseJsonProgram(bytes []byte) (Program, error) {
	var raw []jsonInstruction
	//
	if err := json.Unmarshal(bytes, &raw); err != nil {
		return nil, err
	}
	//
	program := make(Program, len(raw))
	//
	for i, insn := range raw {
		parsed, err := parseInstruction(insn)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		//
		program[i] = parsed
	}
	//
	return program, program.Validate()
}

// ToJson renders a program back into its external form.
func (p Program) ToJson() ([]byte, error) {
	raw := make([]jsonInstruction, len(p))
	//
	for i, insn := range p {
		raw[i] = jsonInstruction{
			Op:      insn.Op.String(),
			Context: insn.Addr.Context,
			Segment: insn.Addr.Segment,
			Virtual: insn.Addr.Virtual,
			Value:   insn.Value.Uint64(),
			Bytes:   hex.EncodeToString(insn.Bytes),
		}
		//
		if insn.X != nil {
			raw[i].X = insn.X.Hex()
		}
		//
		if insn.Y != nil {
			raw[i].Y = insn.Y.Hex()
		}
	}
	//
	return json.MarshalIndent(raw, "", "  ")
}

func parseInstruction(insn jsonInstruction) (Instruction, error) {
	var (
		out Instruction
		err error
	)
	//
	if out.Op, err = parseOp(insn.Op); err != nil {
		return out, err
	}
	//
	switch out.Op {
	case OpAdd, OpSub, OpMul:
		if out.X, err = parseOperand(insn.X); err != nil {
			return out, fmt.Errorf("operand x: %w", err)
		}
		//
		if out.Y, err = parseOperand(insn.Y); err != nil {
			return out, fmt.Errorf("operand y: %w", err)
		}
	case OpLoad, OpStore:
		out.Addr = MemoryAddress{Context: insn.Context, Segment: insn.Segment, Virtual: insn.Virtual}
		out.Value = field.New(insn.Value)
	case OpPack:
		if out.Bytes, err = hex.DecodeString(insn.Bytes); err != nil {
			return out, fmt.Errorf("byte string: %w", err)
		}
	}
	//
	return out, nil
}

func parseOp(name string) (Op, error) {
	for _, op := range []Op{OpAdd, OpSub, OpMul, OpLoad, OpStore, OpPack} {
		if op.String() == name {
			return op, nil
		}
	}
	//
	return 0, fmt.Errorf("unknown operation %q", name)
}

func parseOperand(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("missing operand")
	}
	//
	if strings.HasPrefix(s, "0x") {
		return uint256.FromHex(s)
	}
	//
	return uint256.FromDecimal(s)
}
