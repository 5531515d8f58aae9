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
package vanishing

import (
	"testing"

	"github.com/multistark/go-multistark/pkg/air"
	"github.com/multistark/go-multistark/pkg/field"
	"github.com/multistark/go-multistark/pkg/trace"
)

// A counter table: first row zero, increments by one each transition, last
// row pinned to height-1.
func counterEval(height uint64) Evaluator[field.Element] {
	return func(alg air.Algebra[field.Element], frame air.Frame[field.Element],
		consumer *air.Consumer[field.Element]) {
		consumer.FirstRow(frame.Local(0))
		consumer.Transition(alg.Sub(alg.Sub(frame.Next(0), frame.Local(0)), alg.One()))
		consumer.LastRow(alg.Sub(frame.Local(0), alg.Uint64(height-1)))
	}
}

func counterTrace(t *testing.T, height uint64) *trace.Trace {
	t.Helper()
	//
	builder := trace.NewBuilder(1)
	for i := uint64(0); i < height; i++ {
		_ = builder.AppendRow([]field.Element{field.New(i)})
	}
	//
	tr, err := builder.Build()
	if err != nil {
		t.Fatal(err)
	}
	//
	return tr
}

func Test_Vanishing_ValidTraceVanishes(t *testing.T) {
	var (
		tr     = counterTrace(t, 8)
		alphas = []field.Element{field.Rand(), field.Rand()}
	)
	//
	evals, err := EvalTable(tr, nil, alphas, counterEval(8))
	if err != nil {
		t.Fatal(err)
	}
	//
	for row, accs := range evals {
		for a, acc := range accs {
			if !acc.IsZero() {
				t.Errorf("row %d, alpha %d: combined evaluation %s != 0", row, a, acc.String())
			}
		}
	}
}

func Test_Vanishing_BrokenTraceDetected(t *testing.T) {
	var (
		tr     = counterTrace(t, 8)
		alphas = []field.Element{field.Rand()}
	)
	// Corrupt one cell.
	tr.Column(0)[3] = field.New(99)
	//
	evals, err := EvalTable(tr, nil, alphas, counterEval(8))
	if err != nil {
		t.Fatal(err)
	}
	//
	nonzero := 0
	for _, accs := range evals {
		if !accs[0].IsZero() {
			nonzero++
		}
	}
	// Both transitions adjacent to the corrupt cell break.
	if nonzero == 0 {
		t.Error("corrupt trace produced all-zero evaluations")
	}
}

func Test_Vanishing_SelfCheck(t *testing.T) {
	tr := counterTrace(t, 8)
	//
	if err := SelfCheck("counter", tr, nil, counterEval(8)); err != nil {
		t.Errorf("valid trace rejected: %v", err)
	}
	//
	tr.Column(0)[3] = field.New(99)
	//
	if err := SelfCheck("counter", tr, nil, counterEval(8)); err == nil {
		t.Error("corrupt trace accepted")
	}
}

func Test_Vanishing_SelectorsAtRow(t *testing.T) {
	sel := SelectorsAtRow(0, 8)
	//
	if !sel.LagrangeFirst.IsOne() || !sel.LagrangeLast.IsZero() {
		t.Error("first-row selectors wrong")
	} else if sel.ZLast.IsZero() {
		t.Error("last-row vanishing factor must not vanish at row 0")
	}
	//
	sel = SelectorsAtRow(7, 8)
	//
	if !sel.LagrangeLast.IsOne() || !sel.LagrangeFirst.IsZero() {
		t.Error("last-row selectors wrong")
	} else if !sel.ZLast.IsZero() {
		t.Error("last-row vanishing factor must vanish at the last row")
	}
}

func Test_Vanishing_SelectorsAtPoint(t *testing.T) {
	// At trace-domain points, the out-of-domain formulas must reproduce the
	// exact indicator values; check via the limit-free rows.
	var (
		height = uint(8)
		g      = field.RootOfUnity(3)
		pows   = field.Powers(g, height)
	)
	//
	for row := uint(1); row < height-1; row++ {
		sel := SelectorsAtPoint(pows[row], height)
		//
		if !sel.LagrangeFirst.IsZero() || !sel.LagrangeLast.IsZero() {
			t.Errorf("row %d: Lagrange selectors non-zero in domain interior", row)
		}
	}
	// And a genuinely out-of-domain point must give consistent values: sum of
	// all Lagrange basis polynomials is 1, so L_0 + L_7 plus the other six
	// evaluates to one.
	var (
		x   = field.New(12345678901234567)
		sum field.Element
	)
	//
	for row := uint(0); row < height; row++ {
		// L_i(x) = (g^i / n) * (x^n - 1) / (x - g^i)
		var (
			xn = x
		)
		for i := 0; i < 3; i++ {
			xn = field.Mul(xn, xn)
		}
		//
		li := field.Mul(field.Mul(pows[row], field.Sub(xn, field.One())),
			field.Inverse(field.Mul(field.New(8), field.Sub(x, pows[row]))))
		sum = field.Add(sum, li)
		//
		if row == 0 {
			if got := SelectorsAtPoint(x, height).LagrangeFirst; got != li {
				t.Errorf("L_0(x): got %s, expected %s", got.String(), li.String())
			}
		} else if row == height-1 {
			if got := SelectorsAtPoint(x, height).LagrangeLast; got != li {
				t.Errorf("L_7(x): got %s, expected %s", got.String(), li.String())
			}
		}
	}
	//
	if !sum.IsOne() {
		t.Error("Lagrange basis does not sum to one")
	}
}

func Test_Vanishing_EvalPoint_DualRepresentation(t *testing.T) {
	// The combined evaluation at an out-of-domain point must agree between
	// native and circuit representations.
	var (
		local  = []field.Element{field.New(3)}
		next   = []field.Element{field.New(4)}
		alphas = []field.Element{field.Rand()}
		sel    = SelectorsAtPoint(field.New(987654321), 8)
	)
	//
	frame, err := air.NewFrame(local, next, nil, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	//
	native := EvalPoint[field.Element](air.Native, frame, alphas, sel, counterEval(8))
	// Wires: local, next, alpha, zlast, lfirst, llast.
	builder := air.NewBuilder(6)
	wires := builder.InputWires()
	//
	cframe, err := air.NewFrame(wires[0:1], wires[1:2], nil, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	//
	csel := Selectors[air.Wire]{ZLast: wires[3], LagrangeFirst: wires[4], LagrangeLast: wires[5]}
	circuit := EvalPoint[air.Wire](builder, cframe, []air.Wire{wires[2]}, csel,
		func(alg air.Algebra[air.Wire], frame air.Frame[air.Wire], consumer *air.Consumer[air.Wire]) {
			consumer.FirstRow(frame.Local(0))
			consumer.Transition(alg.Sub(alg.Sub(frame.Next(0), frame.Local(0)), alg.One()))
			consumer.LastRow(alg.Sub(frame.Local(0), alg.Uint64(7)))
		})
	//
	values, err := builder.Evaluate([]field.Element{
		local[0], next[0], alphas[0], sel.ZLast, sel.LagrangeFirst, sel.LagrangeLast,
	})
	if err != nil {
		t.Fatal(err)
	}
	//
	if values[circuit[0]] != native[0] {
		t.Error("out-of-domain combination diverges between representations")
	}
}
