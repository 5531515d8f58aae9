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

	"github.com/multistark/go-multistark/pkg/air"
	"github.com/multistark/go-multistark/pkg/ctl"
	"github.com/multistark/go-multistark/pkg/field"
	"github.com/multistark/go-multistark/pkg/lookup"
	"github.com/multistark/go-multistark/pkg/schema"
	"github.com/multistark/go-multistark/pkg/trace"
)

// packBytes is the packing capacity of one row.
const packBytes = 8

// packLayout indexes the columns of the byte-packing table.  One selected
// row packs up to eight bytes, little-endian, into a 64-bit word held as two
// 32-bit limbs.  Each byte column is range-checked against the canonical
// byte counter.
type packLayout struct {
	filter uint
	// One-hot length selector; flag i means i+1 bytes.
	lenFlags uint
	bytes    uint
	valueLo  uint
	valueHi  uint
	// Canonical range column [0, 256).
	counter uint
	// Permuted (input, table) pairs, one per byte column.
	permuted [][2]uint
	//
	width uint
}

func newPackLayout() packLayout {
	var (
		alloc = schema.NewAllocator()
		l     packLayout
	)
	//
	l.filter = alloc.Column("filter")
	l.lenFlags = alloc.Range("length_flags", packBytes)
	l.bytes = alloc.Range("bytes", packBytes)
	l.valueLo = alloc.Column("value_lo")
	l.valueHi = alloc.Column("value_hi")
	l.counter = alloc.Column("counter")
	//
	for i := 0; i < packBytes; i++ {
		a := alloc.Column(fmt.Sprintf("perm_byte_%d", i))
		b := alloc.Column(fmt.Sprintf("perm_counter_%d", i))
		l.permuted = append(l.permuted, [2]uint{a, b})
	}
	//
	l.width = alloc.Width()
	//
	return l
}

// BytePacking is the byte-packing table: each selected row recombines a
// bounded byte string into the word the CPU claims for it.
type BytePacking[E any] struct {
	layout packLayout
}

// NewBytePacking constructs the byte-packing table contract.
func NewBytePacking[E any]() *BytePacking[E] {
	return &BytePacking[E]{layout: newPackLayout()}
}

// Name implementation for the Table interface.
func (p *BytePacking[E]) Name() string {
	return "bytepacking"
}

// Columns implementation for the Table interface.
func (p *BytePacking[E]) Columns() uint {
	return p.layout.width
}

// PublicInputs implementation for the Table interface.
func (p *BytePacking[E]) PublicInputs() uint {
	return 0
}

// ConstraintDegree implementation for the Table interface.
func (p *BytePacking[E]) ConstraintDegree() uint {
	return 2
}

// PermutationPairs implementation for the Table interface.
func (p *BytePacking[E]) PermutationPairs() []schema.PermutationPair {
	var pairs []schema.PermutationPair
	//
	for i := 0; i < packBytes; i++ {
		pairs = append(pairs,
			schema.NewPermutationPair(p.layout.bytes+uint(i), p.layout.permuted[i][0]),
			schema.NewPermutationPair(p.layout.counter, p.layout.permuted[i][1]))
	}
	//
	return pairs
}

// CtlProjection returns the columns the CPU looks up: the packed word limbs.
func (p *BytePacking[E]) CtlProjection() []ctl.Column {
	return []ctl.Column{ctl.Single(p.layout.valueLo), ctl.Single(p.layout.valueHi)}
}

// CtlFilter returns the 0/1 filter selecting real packing rows.
func (p *BytePacking[E]) CtlFilter() ctl.Column {
	return ctl.Single(p.layout.filter)
}

// Eval implementation for the Table interface.
func (p *BytePacking[E]) Eval(alg air.Algebra[E], frame air.Frame[E], consumer *air.Consumer[E]) {
	var (
		l      = p.layout
		one    = alg.One()
		filter = frame.Local(l.filter)
		flags  = make([]E, packBytes)
	)
	//
	consumer.Every(alg.Mul(filter, alg.Sub(filter, one)))
	//
	for i := 0; i < packBytes; i++ {
		flags[i] = frame.Local(l.lenFlags + uint(i))
		consumer.Every(alg.Mul(flags[i], alg.Sub(flags[i], one)))
	}
	// Selected rows declare exactly one length, padding rows none.
	consumer.Every(alg.Sub(filter, alg.Sum(flags...)))
	// Bytes beyond the declared length are zero.
	for j := 1; j < packBytes; j++ {
		tooShort := alg.Sum(flags[:j]...)
		consumer.Every(alg.Mul(frame.Local(l.bytes+uint(j)), tooShort))
	}
	// The limbs recombine the bytes little-endian.
	var (
		lo = alg.Zero()
		hi = alg.Zero()
	)
	//
	for j := 0; j < 4; j++ {
		lo = alg.MulAdd(frame.Local(l.bytes+uint(j)), alg.Uint64(1<<(8*j)), lo)
		hi = alg.MulAdd(frame.Local(l.bytes+uint(j+4)), alg.Uint64(1<<(8*j)), hi)
	}
	//
	consumer.Every(alg.Mul(filter, alg.Sub(frame.Local(l.valueLo), lo)))
	consumer.Every(alg.Mul(filter, alg.Sub(frame.Local(l.valueHi), hi)))
	// The canonical range column runs 0, 1, ..., 255.
	lookup.EvalRangeColumn(alg, frame, l.counter, 255, consumer)
	//
	for _, pair := range p.layout.permuted {
		lookup.EvalPermutedPair(alg, frame, pair[0], pair[1], consumer)
	}
}

// packOp is one packing recorded during CPU generation.
type packOp struct {
	bytes []byte
	lo    uint64
	hi    uint64
}

// generateBytePacking builds the byte-packing trace for the recorded
// operations.  The height is at least 256 so the canonical byte column fits.
func generateBytePacking(ops []packOp) (*trace.Trace, error) {
	var (
		l      = newPackLayout()
		height = trace.PaddedHeight(uint(len(ops)))
	)
	//
	if height < 256 {
		height = 256
	}
	//
	columns := make([][]field.Element, l.width)
	for c := range columns {
		columns[c] = make([]field.Element, height)
	}
	//
	for row, op := range ops {
		columns[l.filter][row] = field.One()
		columns[l.lenFlags+uint(len(op.bytes)-1)][row] = field.One()
		//
		for j, b := range op.bytes {
			columns[l.bytes+uint(j)][row] = field.New(uint64(b))
		}
		//
		columns[l.valueLo][row] = field.New(op.lo)
		columns[l.valueHi][row] = field.New(op.hi)
	}
	//
	var err error
	//
	if columns[l.counter], err = lookup.RangeColumn(255, height); err != nil {
		return nil, err
	}
	//
	for i := 0; i < packBytes; i++ {
		input, table, err := lookup.PermutedColumns(columns[l.bytes+uint(i)], columns[l.counter])
		if err != nil {
			return nil, err
		}
		//
		columns[l.permuted[i][0]] = input
		columns[l.permuted[i][1]] = table
	}
	//
	return trace.FromColumns(columns)
}
