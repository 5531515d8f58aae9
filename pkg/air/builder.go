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
package air

import (
	"fmt"

	"github.com/multistark/go-multistark/pkg/field"
)

// Wire identifies a value inside a verifying circuit.  Wires below the input
// count are circuit inputs; all other wires are gate outputs.
type Wire uint

type gateOp uint8

const (
	opConst gateOp = iota
	opAdd
	opSub
	opMul
	opMulAdd
)

type gate struct {
	op    gateOp
	args  [3]Wire
	value field.Element // only for opConst
}

// Builder records the arithmetic gates of a verifying circuit.  It implements
// Algebra over Wire, so a table's single constraint definition drives both
// native evaluation and circuit construction.  The recorded gate list stands
// in for an external recursive circuit builder, which is consumed through the
// same add/mul/constant surface; Evaluate replays the gates over concrete
// values, which is what dual-representation tests rely on.
type Builder struct {
	inputs uint
	gates  []gate
	// Cache of constant wires, so repeated constants share one gate.
	constants map[field.Element]Wire
}

// NewBuilder constructs a builder whose first n wires are circuit inputs.
func NewBuilder(inputs uint) *Builder {
	return &Builder{
		inputs:    inputs,
		constants: make(map[field.Element]Wire),
	}
}

// Inputs returns the number of input wires.
func (p *Builder) Inputs() uint {
	return p.inputs
}

// NumGates returns the number of gates recorded so far.
func (p *Builder) NumGates() uint {
	return uint(len(p.gates))
}

// InputWires returns the circuit's input wires in order.
func (p *Builder) InputWires() []Wire {
	wires := make([]Wire, p.inputs)
	for i := range wires {
		wires[i] = Wire(i)
	}
	//
	return wires
}

func (p *Builder) emit(g gate) Wire {
	wire := Wire(p.inputs + uint(len(p.gates)))
	p.gates = append(p.gates, g)
	//
	return wire
}

// Constant implementation for the Algebra interface.
func (p *Builder) Constant(val field.Element) Wire {
	if wire, ok := p.constants[val]; ok {
		return wire
	}
	//
	wire := p.emit(gate{op: opConst, value: val})
	p.constants[val] = wire
	//
	return wire
}

// Uint64 implementation for the Algebra interface.
func (p *Builder) Uint64(val uint64) Wire {
	return p.Constant(field.New(val))
}

// Zero implementation for the Algebra interface.
func (p *Builder) Zero() Wire {
	return p.Constant(field.Zero())
}

// One implementation for the Algebra interface.
func (p *Builder) One() Wire {
	return p.Constant(field.One())
}

// Add implementation for the Algebra interface.
func (p *Builder) Add(lhs Wire, rhs Wire) Wire {
	return p.emit(gate{op: opAdd, args: [3]Wire{lhs, rhs, 0}})
}

// Sub implementation for the Algebra interface.
func (p *Builder) Sub(lhs Wire, rhs Wire) Wire {
	return p.emit(gate{op: opSub, args: [3]Wire{lhs, rhs, 0}})
}

// Mul implementation for the Algebra interface.
func (p *Builder) Mul(lhs Wire, rhs Wire) Wire {
	return p.emit(gate{op: opMul, args: [3]Wire{lhs, rhs, 0}})
}

// MulAdd implementation for the Algebra interface.
func (p *Builder) MulAdd(lhs Wire, rhs Wire, acc Wire) Wire {
	return p.emit(gate{op: opMulAdd, args: [3]Wire{lhs, rhs, acc}})
}

// Sum implementation for the Algebra interface.
func (p *Builder) Sum(vals ...Wire) Wire {
	acc := p.Zero()
	for _, v := range vals {
		acc = p.Add(acc, v)
	}
	//
	return acc
}

// Evaluate replays the recorded gates over concrete input values, returning
// the value of every wire.  The input slice must match the declared input
// count.
func (p *Builder) Evaluate(inputs []field.Element) ([]field.Element, error) {
	if uint(len(inputs)) != p.inputs {
		return nil, fmt.Errorf("circuit has %d inputs, got %d values", p.inputs, len(inputs))
	}
	//
	values := make([]field.Element, p.inputs+uint(len(p.gates)))
	copy(values, inputs)
	//
	for i, g := range p.gates {
		var val field.Element
		//
		switch g.op {
		case opConst:
			val = g.value
		case opAdd:
			val = field.Add(values[g.args[0]], values[g.args[1]])
		case opSub:
			val = field.Sub(values[g.args[0]], values[g.args[1]])
		case opMul:
			val = field.Mul(values[g.args[0]], values[g.args[1]])
		case opMulAdd:
			val = field.Add(field.Mul(values[g.args[0]], values[g.args[1]]), values[g.args[2]])
		}
		//
		values[p.inputs+uint(i)] = val
	}
	//
	return values, nil
}
