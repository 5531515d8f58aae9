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

// Package lookup implements the intra-table range-check argument.  A column
// is proven to take values in a small range by pairing it with a canonical
// range column: both are re-sorted into auxiliary permuted columns such that
// every permuted input value is either a repeat of its predecessor or matches
// the permuted table value on the same row, and a challenge-parameterized
// grand product ties each permuted column back to its original as a multiset.
package lookup

import (
	"fmt"
	"sort"

	"github.com/multistark/go-multistark/pkg/air"
	"github.com/multistark/go-multistark/pkg/field"
)

// PermutedColumns computes the auxiliary column pair for one range check: the
// input values sorted ascending, and the table values permuted so that
// wherever the sorted input column starts a new value, the permuted table
// column carries that same value.  Both inputs must have equal length.  An
// input value absent from the table cannot be aligned; the resulting pair
// then fails its own constraints, which is the desired outcome for an invalid
// trace.
func PermutedColumns(input []field.Element, table []field.Element) ([]field.Element, []field.Element, error) {
	n := len(input)
	//
	if len(table) != n {
		return nil, nil, fmt.Errorf("input column has %d rows, table column has %d", n, len(table))
	}
	//
	sortedInput := sortedCopy(input)
	sortedTable := sortedCopy(table)
	//
	var (
		permutedTable = make([]field.Element, n)
		// Table values skipped over because no input matched them.
		unusedVals []field.Element
		// Input positions left unfilled because no table value was spare yet.
		unusedInds []int
		i, j       int
	)
	//
	for i < n && j < n {
		var (
			inputVal = sortedInput[i].Uint64()
			tableVal = sortedTable[j].Uint64()
		)
		//
		switch {
		case inputVal == tableVal:
			permutedTable[i] = sortedTable[j]
			i++
			j++
		case inputVal > tableVal:
			unusedVals = append(unusedVals, sortedTable[j])
			j++
		default:
			// Repeated input value, or one absent from the table.
			if m := len(unusedVals); m > 0 {
				permutedTable[i] = unusedVals[m-1]
				unusedVals = unusedVals[:m-1]
			} else {
				unusedInds = append(unusedInds, i)
			}
			//
			i++
		}
	}
	// Spare table values fill the remaining input positions.
	for ; j < n; j++ {
		unusedVals = append(unusedVals, sortedTable[j])
	}
	//
	for ; i < n; i++ {
		unusedInds = append(unusedInds, i)
	}
	//
	if len(unusedVals) != len(unusedInds) {
		// Lengths match, hence skipped and unfilled counts must agree.
		panic("unreachable")
	}
	//
	for k, ind := range unusedInds {
		permutedTable[ind] = unusedVals[k]
	}
	//
	return sortedInput, permutedTable, nil
}

func sortedCopy(column []field.Element) []field.Element {
	out := make([]field.Element, len(column))
	copy(out, column)
	//
	sort.Slice(out, func(i, j int) bool {
		return out[i].Uint64() < out[j].Uint64()
	})
	//
	return out
}

// EvalPermutedPair emits the row-local constraints tying a permuted input
// column to its permuted table column: every permuted input value either
// repeats its predecessor or matches the table value on its own row.  The
// wrap-around predecessor of the first row is meaningless, so the first row
// must match its table value outright; since constraints here read the next
// row, that boundary condition attaches to the last row.
func EvalPermutedPair[E any](alg air.Algebra[E], frame air.Frame[E], permutedInput uint,
	permutedTable uint, consumer *air.Consumer[E]) {
	var (
		diffInputPrev  = alg.Sub(frame.Next(permutedInput), frame.Local(permutedInput))
		diffInputTable = alg.Sub(frame.Next(permutedInput), frame.Next(permutedTable))
	)
	//
	consumer.Every(alg.Mul(diffInputPrev, diffInputTable))
	consumer.LastRow(diffInputTable)
}

// EvalRangeColumn emits the constraints pinning a canonical range column to
// exactly [0, max]: first value zero, last value max, adjacent deltas zero or
// one.
func EvalRangeColumn[E any](alg air.Algebra[E], frame air.Frame[E], col uint, max uint64,
	consumer *air.Consumer[E]) {
	delta := alg.Sub(frame.Next(col), frame.Local(col))
	//
	consumer.FirstRow(frame.Local(col))
	consumer.LastRow(alg.Sub(frame.Local(col), alg.Uint64(max)))
	consumer.Transition(alg.Mul(delta, alg.Sub(delta, alg.One())))
}

// RangeColumn materialises the canonical column [0, 1, ..., max] for a trace
// of the given height, repeating max once the range is exhausted.  The height
// must cover the range.
func RangeColumn(max uint64, height uint) ([]field.Element, error) {
	if uint64(height) <= max {
		return nil, fmt.Errorf("height %d cannot hold range [0, %d]", height, max)
	}
	//
	column := make([]field.Element, height)
	for i := range column {
		if uint64(i) < max {
			column[i] = field.New(uint64(i))
		} else {
			column[i] = field.New(max)
		}
	}
	//
	return column, nil
}
