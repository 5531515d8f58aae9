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
	"testing"

	"github.com/multistark/go-multistark/pkg/field"
)

// A small constraint evaluated in both representations: given three inputs
// a, b, c, emits a*b - c and (a - 1)*a.
func emitSample[E any](alg Algebra[E], a E, b E, c E, consumer *Consumer[E]) {
	consumer.Every(alg.Sub(alg.Mul(a, b), c))
	consumer.Transition(alg.Mul(alg.Sub(a, alg.One()), a))
}

func Test_Air_DualRepresentation_01(t *testing.T) {
	inputs := []field.Element{field.New(3), field.New(5), field.New(7)}
	alphas := []field.Element{field.New(11), field.New(13)}
	zLast := field.New(17)
	// Native evaluation.
	native := NewConsumer[field.Element](Native, alphas, zLast, field.Zero(), field.Zero())
	emitSample[field.Element](Native, inputs[0], inputs[1], inputs[2], native)
	// Circuit evaluation: inputs followed by alphas and the selector.
	builder := NewBuilder(6)
	wires := builder.InputWires()
	circuit := NewConsumer[Wire](builder, []Wire{wires[3], wires[4]}, wires[5],
		builder.Zero(), builder.Zero())
	emitSample[Wire](builder, wires[0], wires[1], wires[2], circuit)
	//
	values, err := builder.Evaluate(append(inputs, alphas[0], alphas[1], zLast))
	if err != nil {
		t.Fatal(err)
	}
	//
	for i, acc := range circuit.Accumulators() {
		if values[acc] != native.Accumulators()[i] {
			t.Errorf("accumulator %d diverges between representations", i)
		}
	}
	//
	if native.Count() != circuit.Count() {
		t.Errorf("emission counts diverge: %d vs %d", native.Count(), circuit.Count())
	}
}

func Test_Air_Builder_ConstantSharing(t *testing.T) {
	builder := NewBuilder(0)
	w1 := builder.Uint64(42)
	w2 := builder.Constant(field.New(42))
	//
	if w1 != w2 {
		t.Errorf("equal constants mapped to distinct wires %d and %d", w1, w2)
	}
}

func Test_Air_Builder_BadInputCount(t *testing.T) {
	builder := NewBuilder(2)
	//
	if _, err := builder.Evaluate([]field.Element{field.One()}); err == nil {
		t.Error("expected input count mismatch to be rejected")
	}
}

func Test_Air_Consumer_Selectors(t *testing.T) {
	var (
		alphas = []field.Element{field.One()}
		zLast  = field.New(7)
		lFirst = field.New(11)
		lLast  = field.New(13)
		c      = NewConsumer[field.Element](Native, alphas, zLast, lFirst, lLast)
	)
	//
	c.Transition(field.One())
	c.FirstRow(field.One())
	c.LastRow(field.One())
	// With alpha = 1 the accumulator is sum of the selector values.
	expected := field.Add(field.Add(zLast, lFirst), lLast)
	//
	if c.Accumulators()[0] != expected {
		t.Errorf("selector folding produced %v, expected %v", c.Accumulators()[0], expected)
	} else if c.Count() != 3 {
		t.Errorf("expected 3 emissions, got %d", c.Count())
	}
}

func Test_Air_DebugConsumer_01(t *testing.T) {
	d := NewDebugConsumer(EveryRow)
	d.Every(field.Zero())
	d.Every(field.One())
	d.Transition(field.New(3))
	//
	if !d.Failed() {
		t.Fatal("expected failures to be recorded")
	} else if len(d.Failures) != 2 || d.Failures[0] != 1 || d.Failures[1] != 2 {
		t.Errorf("unexpected failure indices %v", d.Failures)
	}
}

func Test_Air_DebugConsumer_LastRow(t *testing.T) {
	d := NewDebugConsumer(LastRowOnly)
	// Transitions are inactive on the last row.
	d.Transition(field.One())
	d.LastRow(field.One())
	//
	if len(d.Failures) != 1 || d.Failures[0] != 1 {
		t.Errorf("unexpected failure indices %v", d.Failures)
	}
}

func Test_Air_MaxDegree(t *testing.T) {
	degree := MaxDegree(3, 1, func(alg Algebra[Degree], frame Frame[Degree], consumer *Consumer[Degree]) {
		// Degree 2.
		consumer.Every(alg.Sub(alg.Mul(frame.Local(0), frame.Local(1)), frame.Local(2)))
		// Degree 3, despite the transition selector.
		consumer.Transition(alg.Mul(frame.Next(0), alg.Mul(frame.Local(0), frame.Local(1))))
		// Degree 0 terms do not register.
		consumer.FirstRow(alg.Sub(frame.Public(0), alg.Uint64(7)))
	})
	//
	if degree != 3 {
		t.Errorf("expected maximum degree 3, got %d", degree)
	}
}

func Test_Air_Frame_ShapeChecks(t *testing.T) {
	row := []field.Element{field.One(), field.New(2)}
	//
	if _, err := NewFrame(row, row, nil, 2, 0); err != nil {
		t.Errorf("well-shaped frame rejected: %v", err)
	}
	//
	if _, err := NewFrame(row, row[:1], nil, 2, 0); err == nil {
		t.Error("short next row accepted")
	}
	//
	if _, err := NewFrame(row, row, nil, 3, 0); err == nil {
		t.Error("width mismatch accepted")
	}
	//
	if _, err := NewFrame(row, row, nil, 2, 1); err == nil {
		t.Error("public input mismatch accepted")
	}
}
