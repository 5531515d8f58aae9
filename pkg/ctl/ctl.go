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

// Package ctl implements cross-table lookups, which tie a projection of rows
// in one or more "looking" tables to a projection of rows in a single
// "looked" table.  Each side folds its filtered, projected rows into a
// challenge-parameterized running product; the two sides agree on their final
// accumulators iff the filtered row multisets agree.  Challenges are drawn
// only after every participating trace is committed.
package ctl

import (
	"fmt"

	"github.com/multistark/go-multistark/pkg/air"
	"github.com/multistark/go-multistark/pkg/field"
	"github.com/multistark/go-multistark/pkg/lookup"
	"github.com/multistark/go-multistark/pkg/trace"
)

// Column is an affine combination of a table's columns, the unit of
// projection on either side of a lookup.
type Column struct {
	// Column indices with their coefficients.
	terms []term
	// Constant offset.
	constant field.Element
}

type term struct {
	col   uint
	coeff field.Element
}

// Single projects one column as-is.
func Single(col uint) Column {
	return Column{terms: []term{{col, field.One()}}}
}

// Linear projects a weighted sum of columns.
func Linear(cols []uint, coeffs []field.Element) Column {
	if len(cols) != len(coeffs) {
		panic("column and coefficient counts differ")
	}
	//
	terms := make([]term, len(cols))
	for i, col := range cols {
		terms[i] = term{col, coeffs[i]}
	}
	//
	return Column{terms: terms}
}

// Constant projects a fixed value, independent of the row.
func Constant(val field.Element) Column {
	return Column{constant: val}
}

// Eval evaluates the projection at one row of a trace.
func (p Column) Eval(tr *trace.Trace, row uint) field.Element {
	acc := p.constant
	//
	for _, t := range p.terms {
		v := field.Mul(t.coeff, tr.Get(t.col, row))
		acc = field.Add(acc, v)
	}
	//
	return acc
}

// EvalColumnLocal evaluates a projection at the local row of a frame.
func EvalColumnLocal[E any](alg air.Algebra[E], frame air.Frame[E], p Column) E {
	acc := alg.Constant(p.constant)
	//
	for _, t := range p.terms {
		acc = alg.MulAdd(alg.Constant(t.coeff), frame.Local(t.col), acc)
	}
	//
	return acc
}

// EvalColumnNext evaluates a projection at the next row of a frame.
func EvalColumnNext[E any](alg air.Algebra[E], frame air.Frame[E], p Column) E {
	acc := alg.Constant(p.constant)
	//
	for _, t := range p.terms {
		acc = alg.MulAdd(alg.Constant(t.coeff), frame.Next(t.col), acc)
	}
	//
	return acc
}

// TableWithColumns designates one side's participation in a lookup: which
// table, which projected columns, and a 0/1-valued filter selecting the
// participating rows.  A nil filter selects every row.
type TableWithColumns struct {
	// Table index within the proof session.
	Table uint
	// Projected columns, combined positionally against the other side.
	Columns []Column
	// Row filter, or nil for all rows.
	Filter *Column
}

// CrossTableLookup ties the union of the looking sides' filtered projections
// to the looked side's filtered projection, as multisets.
type CrossTableLookup struct {
	// Name identifies the lookup in diagnostics.
	Name    string
	Looking []TableWithColumns
	Looked  TableWithColumns
}

// Arity returns the number of projected columns, which all sides must agree
// on.
func (p *CrossTableLookup) Arity() (uint, error) {
	arity := uint(len(p.Looked.Columns))
	//
	for _, side := range p.Looking {
		if uint(len(side.Columns)) != arity {
			return 0, fmt.Errorf("lookup %s: looking side projects %d columns, looked side %d",
				p.Name, len(side.Columns), arity)
		}
	}
	//
	return arity, nil
}

// ComputeZ builds the running-product accumulator column for one side of a
// lookup.  Each row contributes its combined projection when selected by the
// filter, and the multiplicative identity otherwise, so a side with no
// selected rows accumulates exactly one.
func ComputeZ(tr *trace.Trace, side TableWithColumns, ch lookup.GrandProductChallenge) []field.Element {
	var (
		height = tr.Height()
		z      = make([]field.Element, height)
		acc    = field.One()
	)
	//
	for row := uint(0); row < height; row++ {
		acc = field.Mul(acc, selected(tr, side, row, ch))
		z[row] = acc
	}
	//
	return z
}

// The term one row contributes to the running product.
func selected(tr *trace.Trace, side TableWithColumns, row uint, ch lookup.GrandProductChallenge) field.Element {
	vals := make([]field.Element, len(side.Columns))
	for i, col := range side.Columns {
		vals[i] = col.Eval(tr, row)
	}
	// filter * (combined - 1) + 1
	combined := ch.Combine(vals...)
	//
	if side.Filter != nil {
		f := side.Filter.Eval(tr, row)
		return field.Add(field.Mul(f, field.Sub(combined, field.One())), field.One())
	}
	//
	return combined
}

// FinalProduct returns a side's final accumulator.
func FinalProduct(z []field.Element) field.Element {
	return z[len(z)-1]
}

// EvalZ emits the constraints one side's accumulator column must satisfy:
// the first row holds its own contribution, and every subsequent row
// multiplies the previous accumulator by the local contribution.
func EvalZ[E any](alg air.Algebra[E], frame air.Frame[E], side TableWithColumns, z uint,
	beta E, gamma E, consumer *air.Consumer[E]) {
	consumer.FirstRow(alg.Sub(frame.Local(z), contribution(alg, frame, side, beta, gamma, false)))
	consumer.Transition(alg.Sub(frame.Next(z),
		alg.Mul(frame.Local(z), contribution(alg, frame, side, beta, gamma, true))))
}

func contribution[E any](alg air.Algebra[E], frame air.Frame[E], side TableWithColumns,
	beta E, gamma E, next bool) E {
	vals := make([]E, len(side.Columns))
	//
	for i, col := range side.Columns {
		if next {
			vals[i] = EvalColumnNext(alg, frame, col)
		} else {
			vals[i] = EvalColumnLocal(alg, frame, col)
		}
	}
	//
	combined := lookup.CombineIn(alg, beta, gamma, vals...)
	//
	if side.Filter == nil {
		return combined
	}
	//
	var f E
	//
	if next {
		f = EvalColumnNext(alg, frame, *side.Filter)
	} else {
		f = EvalColumnLocal(alg, frame, *side.Filter)
	}
	//
	return alg.MulAdd(f, alg.Sub(combined, alg.One()), alg.One())
}

// CheckProducts compares the final accumulators of every lookup: the product
// over the looking sides must equal the looked side's accumulator.  The zs
// argument holds, per lookup, the looking sides' accumulator columns in
// declaration order followed by the looked side's.
func CheckProducts(lookups []CrossTableLookup, zs [][][]field.Element) error {
	if len(zs) != len(lookups) {
		return fmt.Errorf("have %d accumulator sets for %d lookups", len(zs), len(lookups))
	}
	//
	for i, ctl := range lookups {
		sides := zs[i]
		//
		if len(sides) != len(ctl.Looking)+1 {
			return fmt.Errorf("lookup %s: have %d accumulators for %d sides",
				ctl.Name, len(sides), len(ctl.Looking)+1)
		}
		//
		looking := field.One()
		for _, z := range sides[:len(sides)-1] {
			looking = field.Mul(looking, FinalProduct(z))
		}
		//
		if looked := FinalProduct(sides[len(sides)-1]); looking != looked {
			return fmt.Errorf("lookup %s: looking product %s != looked product %s",
				ctl.Name, looking.String(), looked.String())
		}
	}
	//
	return nil
}
