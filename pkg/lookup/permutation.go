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
package lookup

import (
	"github.com/multistark/go-multistark/pkg/air"
	"github.com/multistark/go-multistark/pkg/field"
	"github.com/multistark/go-multistark/pkg/schema"
	"github.com/multistark/go-multistark/pkg/trace"
)

// GrandProductChallenge parameterizes one multiset-equality grand product.
// Beta folds a column tuple into a single value, gamma shifts it away from
// zero.  Drawn from the transcript after all core columns are committed.
type GrandProductChallenge struct {
	Beta  field.Element
	Gamma field.Element
}

// Combine reduces a tuple of values to gamma + sum_i beta^i * vals[i].
func (p GrandProductChallenge) Combine(vals ...field.Element) field.Element {
	return CombineIn[field.Element](air.Native, air.Native.Constant(p.Beta), air.Native.Constant(p.Gamma), vals...)
}

// CombineIn is the generic form of Combine, usable in either evaluation
// domain.  Horner evaluation keeps the combination linear in the columns.
func CombineIn[E any](alg air.Algebra[E], beta E, gamma E, vals ...E) E {
	acc := gamma
	power := alg.One()
	//
	for _, v := range vals {
		acc = alg.MulAdd(v, power, acc)
		power = alg.Mul(power, beta)
	}
	//
	return acc
}

// ComputeZ builds the grand-product accumulator column for one permutation
// pair: Z starts at one and multiplies in the ratio of the combined left and
// right tuples row by row.  When the two column multisets agree the product
// telescopes back to one over the full cycle, which is exactly what EvalZ
// checks at the wrap-around.
func ComputeZ(tr *trace.Trace, pair schema.PermutationPair, ch GrandProductChallenge) []field.Element {
	var (
		height = tr.Height()
		lhs    = make([]field.Element, height)
		rhs    = make([]field.Element, height)
		z      = make([]field.Element, height)
	)
	//
	for row := uint(0); row < height; row++ {
		lhs[row] = ch.Combine(gather(tr, pair.Lhs, row)...)
		rhs[row] = ch.Combine(gather(tr, pair.Rhs, row)...)
	}
	// Single shared inversion across all rows.
	rhsInv := field.BatchInverse(rhs)
	//
	z[0] = field.One()
	for row := uint(1); row < height; row++ {
		z[row] = field.Mul(z[row-1], field.Mul(lhs[row-1], rhsInv[row-1]))
	}
	//
	return z
}

func gather(tr *trace.Trace, cols []uint, row uint) []field.Element {
	vals := make([]field.Element, len(cols))
	for i, col := range cols {
		vals[i] = tr.Get(col, row)
	}
	//
	return vals
}

// EvalZ emits the constraints a grand-product accumulator column must
// satisfy: it starts at one, and each step multiplies in the ratio of the
// combined tuples.  The every-row form wraps around the trace, so the final
// accumulator is forced back to one, i.e. the multisets must agree.
func EvalZ[E any](alg air.Algebra[E], frame air.Frame[E], pair schema.PermutationPair, z uint,
	beta E, gamma E, consumer *air.Consumer[E]) {
	var (
		lhs = CombineIn(alg, beta, gamma, gatherFrame(frame, pair.Lhs)...)
		rhs = CombineIn(alg, beta, gamma, gatherFrame(frame, pair.Rhs)...)
	)
	//
	consumer.FirstRow(alg.Sub(frame.Local(z), alg.One()))
	consumer.Every(alg.Sub(alg.Mul(frame.Next(z), rhs), alg.Mul(frame.Local(z), lhs)))
}

func gatherFrame[E any](frame air.Frame[E], cols []uint) []E {
	vals := make([]E, len(cols))
	for i, col := range cols {
		vals[i] = frame.Local(col)
	}
	//
	return vals
}
