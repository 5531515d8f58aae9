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
package prover

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/multistark/go-multistark/pkg/air"
	"github.com/multistark/go-multistark/pkg/config"
	"github.com/multistark/go-multistark/pkg/field"
	"github.com/multistark/go-multistark/pkg/tables"
	"github.com/multistark/go-multistark/pkg/vanishing"
)

var testParams = tables.Params{LimbBits: 8}

func testProgram() tables.Program {
	addr := tables.MemoryAddress{Segment: 5, Virtual: 10}
	//
	return tables.Program{
		{Op: tables.OpStore, Addr: addr, Value: field.New(42)},
		{Op: tables.OpAdd, X: new(uint256.Int).SetAllOne(), Y: uint256.NewInt(1)},
		{Op: tables.OpMul, X: uint256.NewInt(1 << 32), Y: uint256.NewInt(1 << 33)},
		{Op: tables.OpLoad, Addr: addr},
		{Op: tables.OpPack, Bytes: []byte{0x01, 0x02, 0x03}},
		{Op: tables.OpSub, X: uint256.NewInt(10), Y: uint256.NewInt(4)},
	}
}

func Test_Prover_Prove_01(t *testing.T) {
	cfg := config.DefaultConfig()
	//
	s, err := Prove(cfg, testParams, testProgram(), true)
	if err != nil {
		t.Fatal(err)
	}
	//
	if uint(len(s.Challenges)) != cfg.GrandProductChallenges {
		t.Errorf("drew %d challenge sets, expected %d", len(s.Challenges), cfg.GrandProductChallenges)
	}
	//
	if uint(len(s.Alphas)) != cfg.Alphas {
		t.Errorf("drew %d alphas, expected %d", len(s.Alphas), cfg.Alphas)
	}
	// Every trace gained accumulator columns.
	for id := range s.Traces {
		tr := s.Traces[id]
		//
		if tr.Width() <= tr.CoreWidth() {
			t.Errorf("table %s has no accumulator columns", tables.TableID(id))
		}
	}
}

// Challenges are a deterministic function of the committed traces.
func Test_Prover_Determinism_01(t *testing.T) {
	cfg := config.DefaultConfig()
	//
	s1, err := Prove(cfg, testParams, testProgram(), false)
	if err != nil {
		t.Fatal(err)
	}
	//
	s2, err := Prove(cfg, testParams, testProgram(), false)
	if err != nil {
		t.Fatal(err)
	}
	//
	for i := range s1.Alphas {
		if s1.Alphas[i] != s2.Alphas[i] {
			t.Fatalf("alpha %d differs across identical sessions", i)
		}
	}
	// A different program shifts every challenge.
	other := testProgram()
	other[0].Value = field.New(43)
	//
	s3, err := Prove(cfg, testParams, other, false)
	if err != nil {
		t.Fatal(err)
	}
	//
	if s1.Alphas[0] == s3.Alphas[0] {
		t.Error("expected challenges to depend on the committed traces")
	}
}

func Test_Prover_BadConfig_01(t *testing.T) {
	if _, err := Prove(config.Config{}, testParams, testProgram(), false); err == nil {
		t.Error("expected zero config to be rejected")
	}
}

// A session bound below the tables' actual constraint degree is rejected by
// the audit.
func Test_Prover_DegreeAudit_01(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxConstraintDegree = 2
	//
	if _, err := Prove(cfg, testParams, testProgram(), false); err == nil {
		t.Error("expected degree audit to reject bound 2")
	}
}

// Tampering with an accumulator column after the fact is caught by the
// composite evaluator.
func Test_Prover_TamperedAccumulator_01(t *testing.T) {
	s, err := Prove(config.DefaultConfig(), testParams, testProgram(), false)
	if err != nil {
		t.Fatal(err)
	}
	//
	tr := s.Traces[tables.TableCpu]
	tr.Column(tr.Width() - 1)[1] = field.Rand()
	//
	if err := vanishing.SelfCheck("cpu", tr, nil, s.Evaluator(tables.TableCpu)); err == nil {
		t.Error("expected tampered accumulator to be rejected")
	}
}

// The composite evaluator replays identically through recorded gates.
func Test_Prover_DualRepresentation_01(t *testing.T) {
	s, err := Prove(config.DefaultConfig(), testParams, testProgram(), false)
	if err != nil {
		t.Fatal(err)
	}
	//
	var (
		id    = tables.TableCpu
		tr    = s.Traces[id]
		wired = tables.NewMachine[air.Wire](testParams, s.Traces[tables.TableMemory].Height())
		//
		native = s.Evaluator(id)
		replay = composite(wired.Tables()[id], s.permZ[id], s.slots[id], s.Challenges)
		//
		width   = tr.Width()
		builder = air.NewBuilder(2*width + 4)
		wires   = builder.InputWires()
	)
	//
	frame, err := air.NewFrame(wires[:width], wires[width:2*width], nil, width, 0)
	if err != nil {
		t.Fatal(err)
	}
	//
	sel := vanishing.Selectors[air.Wire]{
		ZLast:         wires[2*width+1],
		LagrangeFirst: wires[2*width+2],
		LagrangeLast:  wires[2*width+3],
	}
	accs := vanishing.EvalPoint[air.Wire](builder, frame, []air.Wire{wires[2*width]}, sel, replay)
	//
	for _, row := range []uint{0, 3, tr.Height() - 1} {
		var (
			alpha  = field.Rand()
			nsel   = vanishing.SelectorsAtRow(row, tr.Height())
			inputs = make([]field.Element, 2*width+4)
		)
		//
		copy(inputs, tr.Row(row))
		copy(inputs[width:], tr.Row((row+1)%tr.Height()))
		inputs[2*width] = alpha
		inputs[2*width+1] = nsel.ZLast
		inputs[2*width+2] = nsel.LagrangeFirst
		inputs[2*width+3] = nsel.LagrangeLast
		//
		values, err := builder.Evaluate(inputs)
		if err != nil {
			t.Fatal(err)
		}
		//
		nframe, err := tr.Frame(row, nil)
		if err != nil {
			t.Fatal(err)
		}
		//
		naccs := vanishing.EvalPoint(air.Native, nframe, []field.Element{alpha}, nsel, native)
		//
		if values[accs[0]] != naccs[0] {
			t.Errorf("row %d: replayed accumulator %s, native %s",
				row, values[accs[0]].String(), naccs[0].String())
		}
	}
}
