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

// Package vanishing folds all the constraints attached to one table, i.e.
// its own local constraints plus its permutation and lookup accumulator
// checks, into combined polynomial evaluations using powers of combination
// challenges.  The result vanishes over the whole trace domain exactly when
// every constraint holds, and is what the surrounding commitment layer
// divides by the domain's vanishing polynomial and low-degree tests.
package vanishing

import (
	"fmt"
	"math/bits"

	"github.com/multistark/go-multistark/pkg/air"
	"github.com/multistark/go-multistark/pkg/field"
	"github.com/multistark/go-multistark/pkg/trace"
)

// Evaluator emits all constraints of one table at one evaluation position.
// Typically a composite of the table's own Eval with its permutation and
// lookup accumulator checks.
type Evaluator[E any] func(alg air.Algebra[E], frame air.Frame[E], consumer *air.Consumer[E])

// Selectors are the row-domain selector values at one evaluation point: the
// vanishing factor of the last row, and the Lagrange basis values of the
// first and last rows.
type Selectors[E any] struct {
	ZLast         E
	LagrangeFirst E
	LagrangeLast  E
}

// SelectorsAtRow returns the selector values at row r of a trace domain of
// the given height: exact Lagrange indicators, and g^r - g^(height-1) for the
// last-row vanishing factor.
func SelectorsAtRow(row uint, height uint) Selectors[field.Element] {
	var (
		logN = uint(bits.TrailingZeros64(uint64(height)))
		g    = field.RootOfUnity(logN)
		sel  Selectors[field.Element]
	)
	//
	pows := field.Powers(g, height)
	sel.ZLast = field.Sub(pows[row], pows[height-1])
	sel.LagrangeFirst = indicator(row == 0)
	sel.LagrangeLast = indicator(row == height-1)
	//
	return sel
}

// SelectorsAtPoint returns the selector values at an arbitrary out-of-domain
// point x, for a trace domain of the given height n: L_0(x), L_{n-1}(x) and
// x - g^(n-1).
func SelectorsAtPoint(x field.Element, height uint) Selectors[field.Element] {
	var (
		logN = uint(bits.TrailingZeros64(uint64(height)))
		g    = field.RootOfUnity(logN)
		n    = field.New(uint64(height))
		sel  Selectors[field.Element]
		xn   field.Element
	)
	// x^n by repeated squaring.
	xn = x
	for i := uint(0); i < logN; i++ {
		xn = field.Mul(xn, xn)
	}
	//
	var (
		zH    = field.Sub(xn, field.One())
		gLast = field.Powers(g, height)[height-1]
	)
	// L_i(x) = (g^i / n) * (x^n - 1) / (x - g^i)
	sel.ZLast = field.Sub(x, gLast)
	sel.LagrangeFirst = field.Mul(zH, field.Inverse(field.Mul(n, field.Sub(x, field.One()))))
	sel.LagrangeLast = field.Mul(field.Mul(gLast, zH), field.Inverse(field.Mul(n, sel.ZLast)))
	//
	return sel
}

func indicator(b bool) field.Element {
	if b {
		return field.One()
	}
	//
	return field.Zero()
}

// EvalPoint combines all constraint evaluations at one point, given the
// opened frame and the selector values there.  Generic over the evaluation
// domain, so recursive verification runs the identical combination.
func EvalPoint[E any](alg air.Algebra[E], frame air.Frame[E], alphas []E, sel Selectors[E],
	eval Evaluator[E]) []E {
	consumer := air.NewConsumer(alg, alphas, sel.ZLast, sel.LagrangeFirst, sel.LagrangeLast)
	eval(alg, frame, consumer)
	//
	return consumer.Accumulators()
}

// EvalTable evaluates the combined vanishing polynomial at every row of the
// trace domain, one evaluation slice per row, each holding one value per
// alpha.  For a valid trace every value is zero; non-zero values pinpoint
// offending rows.
func EvalTable(tr *trace.Trace, public []field.Element, alphas []field.Element,
	eval Evaluator[field.Element]) ([][]field.Element, error) {
	var (
		height = tr.Height()
		out    = make([][]field.Element, height)
	)
	//
	for row := uint(0); row < height; row++ {
		frame, err := tr.Frame(row, public)
		if err != nil {
			return nil, err
		}
		//
		sel := SelectorsAtRow(row, height)
		out[row] = EvalPoint[field.Element](air.Native, frame, alphas, sel, eval)
	}
	//
	return out, nil
}

// SelfCheck verifies a generated trace against its own constraints row by
// row, identifying the table, row and constraint index of the first failure.
// This is the debug-mode counterpart of EvalTable, run before committing to
// a trace.
func SelfCheck(name string, tr *trace.Trace, public []field.Element,
	eval Evaluator[field.Element]) error {
	height := tr.Height()
	//
	for row := uint(0); row < height; row++ {
		domain := air.EveryRow
		//
		if row == 0 {
			domain = air.FirstRowOnly
		} else if row == height-1 {
			domain = air.LastRowOnly
		}
		//
		frame, err := tr.Frame(row, public)
		if err != nil {
			return fmt.Errorf("table %s: %w", name, err)
		}
		//
		d := air.NewDebugConsumer(domain)
		eval(air.Native, frame, d.Consumer)
		//
		if d.Failed() {
			return fmt.Errorf("table %s: row %d violates constraint(s) %v", name, row, d.Failures)
		}
	}
	//
	return nil
}
