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
	"github.com/multistark/go-multistark/pkg/air"
	"github.com/multistark/go-multistark/pkg/ctl"
	"github.com/multistark/go-multistark/pkg/field"
	"github.com/multistark/go-multistark/pkg/schema"
	"github.com/multistark/go-multistark/pkg/trace"
)

// cpuLayout indexes the columns of the CPU table.  One row executes one
// instruction: a one-hot operation selector, the clock, three limb banks for
// 256-bit operands, and a memory channel.  The operand banks are only
// meaningful under their operation's selector; the cross-table lookups
// delegate their actual checking to the specialised tables.
type cpuLayout struct {
	isAdd   uint
	isSub   uint
	isMul   uint
	isLoad  uint
	isStore uint
	isPack  uint
	clock   uint
	// Operand limb banks, NumLimbs wide each.  Bank A doubles as the packed
	// word of a pack instruction.
	bankA uint
	bankB uint
	bankC uint
	// Packed word limbs, aliasing the start of bank A.
	packLo uint
	packHi uint
	// Memory channel.
	memCtx   uint
	memSeg   uint
	memVirt  uint
	memValue uint
	//
	width uint
}

func newCpuLayout(params Params) cpuLayout {
	var (
		n     = params.NumLimbs()
		alloc = schema.NewAllocator()
		l     cpuLayout
	)
	//
	l.isAdd = alloc.Column("is_add")
	l.isSub = alloc.Column("is_sub")
	l.isMul = alloc.Column("is_mul")
	l.isLoad = alloc.Column("is_load")
	l.isStore = alloc.Column("is_store")
	l.isPack = alloc.Column("is_pack")
	l.clock = alloc.Column("clock")
	l.bankA = alloc.Shared("bank_a", n)
	l.bankB = alloc.Range("bank_b", n)
	l.bankC = alloc.Range("bank_c", n)
	l.packLo = alloc.Alias("pack_lo", l.bankA, 1)
	l.packHi = alloc.Alias("pack_hi", l.bankA+1, 1)
	l.memCtx = alloc.Column("mem_context")
	l.memSeg = alloc.Column("mem_segment")
	l.memVirt = alloc.Column("mem_virtual")
	l.memValue = alloc.Column("mem_value")
	l.width = alloc.Width()
	//
	return l
}

func (p *cpuLayout) flags() []uint {
	return []uint{p.isAdd, p.isSub, p.isMul, p.isLoad, p.isStore, p.isPack}
}

// Cpu is the execution table: the clock advances one instruction per row,
// and every instruction's semantics are attested by a specialised table
// through a cross-table lookup.
type Cpu[E any] struct {
	params Params
	layout cpuLayout
}

// NewCpu constructs the CPU table contract for the given machine parameters.
func NewCpu[E any](params Params) *Cpu[E] {
	return &Cpu[E]{params: params, layout: newCpuLayout(params)}
}

// Name implementation for the Table interface.
func (p *Cpu[E]) Name() string {
	return "cpu"
}

// Columns implementation for the Table interface.
func (p *Cpu[E]) Columns() uint {
	return p.layout.width
}

// PublicInputs implementation for the Table interface.
func (p *Cpu[E]) PublicInputs() uint {
	return 0
}

// ConstraintDegree implementation for the Table interface.
func (p *Cpu[E]) ConstraintDegree() uint {
	return 2
}

// PermutationPairs implementation for the Table interface.
func (p *Cpu[E]) PermutationPairs() []schema.PermutationPair {
	return nil
}

// ArithmeticProjection returns the columns looked up in the arithmetic
// table: the operation flags and the three operand banks.
func (p *Cpu[E]) ArithmeticProjection() []ctl.Column {
	var (
		l    = p.layout
		n    = p.params.NumLimbs()
		cols = []ctl.Column{ctl.Single(l.isAdd), ctl.Single(l.isSub), ctl.Single(l.isMul)}
	)
	//
	for _, bank := range []uint{l.bankA, l.bankB, l.bankC} {
		for i := uint(0); i < n; i++ {
			cols = append(cols, ctl.Single(bank+i))
		}
	}
	//
	return cols
}

// ArithmeticFilter selects rows executing an arithmetic instruction.
func (p *Cpu[E]) ArithmeticFilter() ctl.Column {
	l := p.layout
	//
	return ctl.Linear([]uint{l.isAdd, l.isSub, l.isMul},
		[]field.Element{field.One(), field.One(), field.One()})
}

// MemoryProjection returns the columns looked up in the memory table: access
// kind, address, timestamp and value.  The clock doubles as the timestamp.
func (p *Cpu[E]) MemoryProjection() []ctl.Column {
	l := p.layout
	//
	return []ctl.Column{
		ctl.Single(l.isLoad), ctl.Single(l.memCtx), ctl.Single(l.memSeg),
		ctl.Single(l.memVirt), ctl.Single(l.clock), ctl.Single(l.memValue),
	}
}

// MemoryFilter selects rows executing a memory instruction.
func (p *Cpu[E]) MemoryFilter() ctl.Column {
	l := p.layout
	//
	return ctl.Linear([]uint{l.isLoad, l.isStore}, []field.Element{field.One(), field.One()})
}

// PackingProjection returns the columns looked up in the byte-packing table.
func (p *Cpu[E]) PackingProjection() []ctl.Column {
	l := p.layout
	//
	return []ctl.Column{ctl.Single(l.packLo), ctl.Single(l.packHi)}
}

// PackingFilter selects rows executing a pack instruction.
func (p *Cpu[E]) PackingFilter() ctl.Column {
	return ctl.Single(p.layout.isPack)
}

// Eval implementation for the Table interface.
func (p *Cpu[E]) Eval(alg air.Algebra[E], frame air.Frame[E], consumer *air.Consumer[E]) {
	var (
		l   = p.layout
		one = alg.One()
	)
	// One-hot operation selector.
	var localFlags, nextFlags []E
	//
	for _, col := range l.flags() {
		f := frame.Local(col)
		consumer.Every(alg.Mul(f, alg.Sub(f, one)))
		localFlags = append(localFlags, f)
		nextFlags = append(nextFlags, frame.Next(col))
	}
	//
	var (
		real     = alg.Sum(localFlags...)
		nextReal = alg.Sum(nextFlags...)
	)
	//
	consumer.Every(alg.Mul(real, alg.Sub(real, one)))
	// Execution starts on the first row with the clock at zero.
	consumer.FirstRow(alg.Sub(one, real))
	consumer.FirstRow(frame.Local(l.clock))
	// The clock advances by one while execution lasts, and padding never
	// resumes execution.
	dClock := alg.Sub(frame.Next(l.clock), frame.Local(l.clock))
	consumer.Transition(alg.Mul(nextReal, alg.Sub(dClock, one)))
	consumer.Transition(alg.Mul(nextReal, alg.Sub(one, real)))
}

// cpuState is the execution state threaded through generation.
type cpuState struct {
	// Current memory contents; absent cells read as zero.
	memory map[MemoryAddress]field.Element
	// Side-table operation records.
	arithOps []arithOp
	accesses []memAccess
	packOps  []packOp
}

// generateCpu executes the program, producing the CPU trace and recording
// the work delegated to the other tables.
func generateCpu(params Params, program Program) (*trace.Trace, *cpuState, error) {
	if err := program.Validate(); err != nil {
		return nil, nil, err
	}
	//
	var (
		l       = newCpuLayout(params)
		builder = trace.NewBuilder(l.width)
		state   = &cpuState{memory: make(map[MemoryAddress]field.Element)}
	)
	//
	for clock, insn := range program {
		row := make([]field.Element, l.width)
		row[l.clock] = field.New(uint64(clock))
		//
		switch insn.Op {
		case OpAdd, OpSub, OpMul:
			var (
				result = new(uint256.Int)
				flag   uint
			)
			//
			switch insn.Op {
			case OpAdd:
				result.Add(insn.X, insn.Y)
				flag = l.isAdd
			case OpSub:
				result.Sub(insn.X, insn.Y)
				flag = l.isSub
			default:
				result.Mul(insn.X, insn.Y)
				flag = l.isMul
			}
			//
			row[flag] = field.One()
			setLimbs(row, l.bankA, limbs(params, insn.X))
			setLimbs(row, l.bankB, limbs(params, insn.Y))
			setLimbs(row, l.bankC, limbs(params, result))
			//
			state.arithOps = append(state.arithOps, arithOp{
				op: insn.Op, x: insn.X, y: insn.Y, result: result,
			})
		case OpLoad:
			row[l.isLoad] = field.One()
			value := state.memory[insn.Addr]
			row[l.memCtx] = field.New(insn.Addr.Context)
			row[l.memSeg] = field.New(insn.Addr.Segment)
			row[l.memVirt] = field.New(insn.Addr.Virtual)
			row[l.memValue] = value
			//
			state.accesses = append(state.accesses, memAccess{
				addr: insn.Addr, ts: uint64(clock), isRead: true, value: value,
			})
		case OpStore:
			row[l.isStore] = field.One()
			state.memory[insn.Addr] = insn.Value
			row[l.memCtx] = field.New(insn.Addr.Context)
			row[l.memSeg] = field.New(insn.Addr.Segment)
			row[l.memVirt] = field.New(insn.Addr.Virtual)
			row[l.memValue] = insn.Value
			//
			state.accesses = append(state.accesses, memAccess{
				addr: insn.Addr, ts: uint64(clock), isRead: false, value: insn.Value,
			})
		case OpPack:
			row[l.isPack] = field.One()
			//
			var word uint64
			for j, b := range insn.Bytes {
				word |= uint64(b) << (8 * j)
			}
			//
			op := packOp{bytes: insn.Bytes, lo: word & 0xffffffff, hi: word >> 32}
			row[l.packLo] = field.New(op.lo)
			row[l.packHi] = field.New(op.hi)
			state.packOps = append(state.packOps, op)
		}
		//
		if err := builder.AppendRow(row); err != nil {
			return nil, nil, fmt.Errorf("cpu row %d: %w", clock, err)
		}
	}
	tr, err := builder.Build()
	if err != nil {
		return nil, nil, err
	}
	//
	return tr, state, nil
}

func setLimbs(row []field.Element, start uint, vals []uint64) {
	for i, v := range vals {
		row[start+uint(i)] = field.New(v)
	}
}
