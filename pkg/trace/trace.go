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

// Package trace provides the concrete rows-by-columns matrix of field
// elements one sub-machine generates per proof.  Traces are built row by row,
// padded to a power-of-two height, and are immutable thereafter except for
// appending whole auxiliary columns (permutation and lookup accumulators,
// which can only be computed after the core columns are fixed).
package trace

import (
	"fmt"
	"math/bits"

	"github.com/multistark/go-multistark/pkg/air"
	"github.com/multistark/go-multistark/pkg/field"
)

// Trace is a column-major matrix of field elements, with power-of-two height.
type Trace struct {
	// Core column count, excluding appended auxiliary columns.
	core uint
	// Columns, each of length height.
	columns [][]field.Element
	height  uint
}

// Height returns the number of rows, always a power of two.
func (p *Trace) Height() uint {
	return p.height
}

// Width returns the current number of columns, including any appended
// auxiliary columns.
func (p *Trace) Width() uint {
	return uint(len(p.columns))
}

// CoreWidth returns the number of columns the trace was built with, excluding
// appended auxiliary columns.
func (p *Trace) CoreWidth() uint {
	return p.core
}

// Column returns the given column.  The returned slice must not be mutated.
func (p *Trace) Column(col uint) []field.Element {
	return p.columns[col]
}

// Get returns the value at the given column and row.
func (p *Trace) Get(col uint, row uint) field.Element {
	return p.columns[col][row]
}

// Row materialises the given row across all columns.
func (p *Trace) Row(row uint) []field.Element {
	out := make([]field.Element, len(p.columns))
	for c, column := range p.columns {
		out[c] = column[row]
	}
	//
	return out
}

// Frame packages the given row and its cyclic successor (the next row of the
// last row is the first row) into an evaluation frame over the full current
// width, including appended auxiliary columns.
func (p *Trace) Frame(row uint, public []field.Element) (air.Frame[field.Element], error) {
	next := (row + 1) % p.height
	//
	return air.NewFrame(p.Row(row), p.Row(next), public, p.Width(), uint(len(public)))
}

// AppendColumn appends an auxiliary column, which must match the trace
// height.
func (p *Trace) AppendColumn(column []field.Element) error {
	if uint(len(column)) != p.height {
		return fmt.Errorf("auxiliary column has %d rows, trace has %d", len(column), p.height)
	}
	//
	p.columns = append(p.columns, column)
	//
	return nil
}

// FromColumns assembles a trace directly from column-major data.  All columns
// must share one power-of-two height.
func FromColumns(columns [][]field.Element) (*Trace, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("cannot build trace without columns")
	}
	//
	height := uint(len(columns[0]))
	//
	if height < 2 || height&(height-1) != 0 {
		return nil, fmt.Errorf("height %d is not a power of two", height)
	}
	//
	for c, column := range columns {
		if uint(len(column)) != height {
			return nil, fmt.Errorf("column %d has %d rows, expected %d", c, len(column), height)
		}
	}
	//
	return &Trace{core: uint(len(columns)), columns: columns, height: height}, nil
}

// Builder constructs a trace row by row.
type Builder struct {
	width uint
	rows  [][]field.Element
}

// NewBuilder constructs a builder for traces of the given width.
func NewBuilder(width uint) *Builder {
	return &Builder{width: width}
}

// Height returns the number of rows appended so far.
func (p *Builder) Height() uint {
	return uint(len(p.rows))
}

// AppendRow appends one row, which must match the declared width.
func (p *Builder) AppendRow(row []field.Element) error {
	if uint(len(row)) != p.width {
		return fmt.Errorf("row %d has %d columns, expected %d", len(p.rows), len(row), p.width)
	}
	//
	p.rows = append(p.rows, row)
	//
	return nil
}

// LastRow returns the most recently appended row, or nil when empty.  The
// returned slice must not be mutated.
func (p *Builder) LastRow() []field.Element {
	if len(p.rows) == 0 {
		return nil
	}
	//
	return p.rows[len(p.rows)-1]
}

// Build pads the rows to the next power-of-two height with all-zero rows,
// transposes into column-major form and returns the resulting trace.  At
// least one row must have been appended.
func (p *Builder) Build() (*Trace, error) {
	if len(p.rows) == 0 {
		return nil, fmt.Errorf("cannot build empty trace")
	}
	//
	height := PaddedHeight(uint(len(p.rows)))
	columns := make([][]field.Element, p.width)
	//
	for c := range columns {
		columns[c] = make([]field.Element, height)
		for r, row := range p.rows {
			columns[c][r] = row[c]
		}
	}
	//
	return &Trace{core: p.width, columns: columns, height: height}, nil
}

// PaddedHeight returns the smallest power of two which is at least n and at
// least two.
func PaddedHeight(n uint) uint {
	if n <= 2 {
		return 2
	}
	//
	return uint(1) << bits.Len64(uint64(n-1))
}
