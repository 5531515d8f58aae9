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
	"github.com/multistark/go-multistark/pkg/lookup"
	"github.com/multistark/go-multistark/pkg/schema"
	"github.com/multistark/go-multistark/pkg/trace"
)

// arithLayout indexes the columns of the arithmetic table.  One row holds one
// 256-bit operation: operation flags, two input operands, the output, and the
// carry scratch shared between the additive and multiplicative paths.  Every
// limb column is range-checked against the canonical counter column through a
// permuted column pair.
type arithLayout struct {
	isAdd uint
	isSub uint
	isMul uint
	// Limb banks, NumLimbs wide each.
	in0 uint
	in1 uint
	out uint
	// Shared scratch bank, 2*NumLimbs wide.  The additive path uses the first
	// half as carry bits; the multiplicative path uses both halves as the
	// split carry-polynomial coefficients.
	carry uint
	auxLo uint
	auxHi uint
	// Canonical range column [0, 2^LimbBits).
	counter uint
	// Range-checked columns, in permuted-pair order.
	rangeChecked []uint
	// Permuted (input, table) column pairs, parallel to rangeChecked.
	permuted [][2]uint
	//
	width uint
}

func newArithLayout(params Params) arithLayout {
	var (
		n     = params.NumLimbs()
		alloc = schema.NewAllocator()
		l     arithLayout
	)
	//
	l.isAdd = alloc.Column("is_add")
	l.isSub = alloc.Column("is_sub")
	l.isMul = alloc.Column("is_mul")
	l.in0 = alloc.Range("input0", n)
	l.in1 = alloc.Range("input1", n)
	l.out = alloc.Range("output", n)
	//
	bank := alloc.Shared("scratch", 2*n)
	l.carry = alloc.Alias("carry", bank, n)
	l.auxLo = alloc.Alias("aux_lo", bank, n)
	l.auxHi = alloc.Alias("aux_hi", bank+n, n)
	//
	l.counter = alloc.Column("counter")
	// Every limb and scratch column is range-checked.
	for i := uint(0); i < n; i++ {
		l.rangeChecked = append(l.rangeChecked,
			l.in0+i, l.in1+i, l.out+i, l.auxLo+i, l.auxHi+i)
	}
	//
	for i := range l.rangeChecked {
		a := alloc.Column(fmt.Sprintf("perm_input_%d", i))
		b := alloc.Column(fmt.Sprintf("perm_table_%d", i))
		l.permuted = append(l.permuted, [2]uint{a, b})
	}
	//
	l.width = alloc.Width()
	//
	return l
}

// Arithmetic is the 256-bit arithmetic table: each selected row claims one
// add, sub or mul over limb-decomposed operands, with the result reduced
// modulo 2^256.
type Arithmetic[E any] struct {
	params Params
	layout arithLayout
}

// NewArithmetic constructs the arithmetic table contract for the given
// machine parameters.
func NewArithmetic[E any](params Params) *Arithmetic[E] {
	return &Arithmetic[E]{params: params, layout: newArithLayout(params)}
}

// Name implementation for the Table interface.
func (p *Arithmetic[E]) Name() string {
	return "arithmetic"
}

// Columns implementation for the Table interface.
func (p *Arithmetic[E]) Columns() uint {
	return p.layout.width
}

// PublicInputs implementation for the Table interface.
func (p *Arithmetic[E]) PublicInputs() uint {
	return 0
}

// ConstraintDegree implementation for the Table interface.
func (p *Arithmetic[E]) ConstraintDegree() uint {
	return 3
}

// PermutationPairs implementation for the Table interface.
func (p *Arithmetic[E]) PermutationPairs() []schema.PermutationPair {
	var pairs []schema.PermutationPair
	//
	for i, col := range p.layout.rangeChecked {
		pairs = append(pairs,
			schema.NewPermutationPair(col, p.layout.permuted[i][0]),
			schema.NewPermutationPair(p.layout.counter, p.layout.permuted[i][1]))
	}
	//
	return pairs
}

// CtlProjection returns the columns the CPU looks up: the operation flags
// followed by all operand limbs.
func (p *Arithmetic[E]) CtlProjection() []ctl.Column {
	var (
		l    = p.layout
		n    = p.params.NumLimbs()
		cols = []ctl.Column{ctl.Single(l.isAdd), ctl.Single(l.isSub), ctl.Single(l.isMul)}
	)
	//
	for i := uint(0); i < n; i++ {
		cols = append(cols, ctl.Single(l.in0+i))
	}
	//
	for i := uint(0); i < n; i++ {
		cols = append(cols, ctl.Single(l.in1+i))
	}
	//
	for i := uint(0); i < n; i++ {
		cols = append(cols, ctl.Single(l.out+i))
	}
	//
	return cols
}

// CtlFilter returns the 0/1 filter selecting rows holding a real operation.
func (p *Arithmetic[E]) CtlFilter() ctl.Column {
	l := p.layout
	//
	return ctl.Linear([]uint{l.isAdd, l.isSub, l.isMul},
		[]field.Element{field.One(), field.One(), field.One()})
}

// Eval implementation for the Table interface.
func (p *Arithmetic[E]) Eval(alg air.Algebra[E], frame air.Frame[E], consumer *air.Consumer[E]) {
	var (
		l    = p.layout
		n    = p.params.NumLimbs()
		base = alg.Uint64(p.params.LimbBase())
		one  = alg.One()
		//
		isAdd = frame.Local(l.isAdd)
		isSub = frame.Local(l.isSub)
		isMul = frame.Local(l.isMul)
	)
	// Operation flags are binary and mutually exclusive.
	opSum := alg.Sum(isAdd, isSub, isMul)
	consumer.Every(alg.Mul(isAdd, alg.Sub(isAdd, one)))
	consumer.Every(alg.Mul(isSub, alg.Sub(isSub, one)))
	consumer.Every(alg.Mul(isMul, alg.Sub(isMul, one)))
	consumer.Every(alg.Mul(opSum, alg.Sub(opSum, one)))
	// Carry bits are binary on additive rows.  On multiplicative rows the
	// same columns hold coefficient limbs instead.
	additive := alg.Add(isAdd, isSub)
	//
	for i := uint(0); i < n; i++ {
		cy := frame.Local(l.carry + i)
		consumer.Every(alg.Mul(additive, alg.Mul(cy, alg.Sub(cy, one))))
	}
	// Additive limb identities.  Addition checks in0 + in1 = out with
	// carries; subtraction checks out + in1 = in0, i.e. the same identity
	// with roles swapped, so the final carry drop gives both results modulo
	// 2^256.
	for i := uint(0); i < n; i++ {
		var (
			cin E
			cy  = frame.Local(l.carry + i)
		)
		//
		if i == 0 {
			cin = alg.Zero()
		} else {
			cin = frame.Local(l.carry + i - 1)
		}
		//
		addTerm := alg.Sub(
			alg.Add(alg.Add(frame.Local(l.in0+i), frame.Local(l.in1+i)), cin),
			alg.Add(frame.Local(l.out+i), alg.Mul(base, cy)))
		subTerm := alg.Sub(
			alg.Add(alg.Add(frame.Local(l.out+i), frame.Local(l.in1+i)), cin),
			alg.Add(frame.Local(l.in0+i), alg.Mul(base, cy)))
		//
		consumer.Every(alg.Mul(isAdd, addTerm))
		consumer.Every(alg.Mul(isSub, subTerm))
	}
	// Multiplicative identity, coefficient-wise: in0(x)*in1(x) - out(x) must
	// equal (x - base)*s(x) modulo x^n, where s is the carry polynomial held
	// in the scratch bank, offset to keep its limbs non-negative.
	offset := alg.Uint64(p.params.AuxOffset())
	//
	sAt := func(k uint) E {
		return alg.Sub(
			alg.Add(frame.Local(l.auxLo+k), alg.Mul(base, frame.Local(l.auxHi+k))),
			offset)
	}
	//
	for k := uint(0); k < n; k++ {
		// Product coefficient sum_{i+j=k} in0_i * in1_j.
		pk := alg.Zero()
		for i := uint(0); i <= k; i++ {
			pk = alg.MulAdd(frame.Local(l.in0+i), frame.Local(l.in1+k-i), pk)
		}
		//
		term := alg.Add(alg.Sub(pk, frame.Local(l.out+k)), alg.Mul(base, sAt(k)))
		if k > 0 {
			term = alg.Sub(term, sAt(k-1))
		}
		//
		consumer.Every(alg.Mul(isMul, term))
	}
	// The canonical range column runs 0, 1, ..., 2^LimbBits - 1.
	lookup.EvalRangeColumn(alg, frame, l.counter, p.params.LimbMax(), consumer)
	//
	for _, pair := range p.layout.permuted {
		lookup.EvalPermutedPair(alg, frame, pair[0], pair[1], consumer)
	}
}

// arithOp is one operation recorded during CPU generation.
type arithOp struct {
	op     Op
	x, y   *uint256.Int
	result *uint256.Int
}

// limbs decomposes a 256-bit value into base-2^LimbBits limbs, least
// significant first.
func limbs(params Params, val *uint256.Int) []uint64 {
	var (
		n    = params.NumLimbs()
		w    = params.LimbBits
		mask = params.LimbMax()
		out  = make([]uint64, n)
	)
	//
	for i := uint(0); i < n; i++ {
		var (
			bit   = i * w
			word  = val[bit/64]
			shift = bit % 64
		)
		//
		out[i] = (word >> shift) & mask
	}
	//
	return out
}

// generateArithmetic builds the arithmetic trace for the recorded operations.
// The trace height is at least 2^LimbBits, since the canonical range column
// must cover the full limb range.
func generateArithmetic(params Params, ops []arithOp) (*trace.Trace, error) {
	var (
		l      = newArithLayout(params)
		n      = params.NumLimbs()
		height = trace.PaddedHeight(uint(len(ops)))
		mask   = params.LimbMax()
		w      = params.LimbBits
		offset = int64(params.AuxOffset())
	)
	//
	if floor := uint(1) << params.LimbBits; height < floor {
		height = floor
	}
	//
	columns := make([][]field.Element, l.width)
	for c := range columns {
		columns[c] = make([]field.Element, height)
	}
	//
	for row, op := range ops {
		var (
			x = limbs(params, op.x)
			y = limbs(params, op.y)
			z = limbs(params, op.result)
		)
		//
		for i := uint(0); i < n; i++ {
			columns[l.in0+i][row] = field.New(x[i])
			columns[l.in1+i][row] = field.New(y[i])
			columns[l.out+i][row] = field.New(z[i])
		}
		//
		switch op.op {
		case OpAdd:
			columns[l.isAdd][row] = field.One()
			fillCarries(columns, l, row, w, mask, x, y, z)
		case OpSub:
			columns[l.isSub][row] = field.One()
			// out + in1 = in0 with carries.
			fillCarries(columns, l, row, w, mask, z, y, x)
		case OpMul:
			columns[l.isMul][row] = field.One()
			//
			if err := fillMulAux(columns, l, row, w, mask, offset, x, y, z); err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
		default:
			return nil, fmt.Errorf("row %d: operation %s is not arithmetic", row, op.op)
		}
	}
	// Remaining rows stay all-zero; with no flag set they satisfy every
	// gated constraint and fall outside the lookup filter.
	columns[l.counter], _ = lookup.RangeColumn(mask, height)
	//
	for i, col := range l.rangeChecked {
		permInput, permTable, err := lookup.PermutedColumns(columns[col], columns[l.counter])
		if err != nil {
			return nil, err
		}
		//
		columns[l.permuted[i][0]] = permInput
		columns[l.permuted[i][1]] = permTable
	}
	//
	return trace.FromColumns(columns)
}

// fillCarries populates the carry bits witnessing a + b = c modulo 2^256.
// The generator is the reference the constraints check against, so a
// mismatch here is a programming error.
func fillCarries(columns [][]field.Element, l arithLayout, row int, w uint, mask uint64,
	a []uint64, b []uint64, c []uint64) {
	cin := uint64(0)
	//
	for i := range a {
		t := a[i] + b[i] + cin
		//
		if t&mask != c[i] {
			panic(fmt.Sprintf("limb %d: carry chain does not reproduce result", i))
		}
		//
		cin = t >> w
		columns[l.carry+uint(i)][row] = field.New(cin)
	}
}

// fillMulAux populates the split carry-polynomial coefficients witnessing
// a * b = c modulo 2^256.
func fillMulAux(columns [][]field.Element, l arithLayout, row int, w uint, mask uint64,
	offset int64, a []uint64, b []uint64, c []uint64) error {
	var (
		n    = len(a)
		base = int64(1) << w
		prev = int64(0)
	)
	//
	for k := 0; k < n; k++ {
		pk := int64(0)
		for i := 0; i <= k; i++ {
			pk += int64(a[i]) * int64(b[k-i])
		}
		// p_k - c_k - s_{k-1} + base*s_k = 0
		num := int64(c[k]) + prev - pk
		//
		if num%base != 0 {
			return fmt.Errorf("coefficient %d: carry polynomial is not integral", k)
		}
		//
		s := num / base
		//
		if s <= -offset || s >= offset {
			return fmt.Errorf("coefficient %d: carry %d exceeds bound %d", k, s, offset)
		}
		//
		shifted := uint64(s + offset)
		columns[l.auxLo+uint(k)][row] = field.New(shifted & mask)
		columns[l.auxHi+uint(k)][row] = field.New(shifted >> w)
		prev = s
	}
	//
	return nil
}
