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
package ctl

import (
	"testing"

	"github.com/multistark/go-multistark/pkg/air"
	"github.com/multistark/go-multistark/pkg/field"
	"github.com/multistark/go-multistark/pkg/lookup"
	"github.com/multistark/go-multistark/pkg/trace"
)

func rowsTrace(t *testing.T, rows ...[]uint64) *trace.Trace {
	t.Helper()
	//
	builder := trace.NewBuilder(uint(len(rows[0])))
	//
	for _, row := range rows {
		values := make([]field.Element, len(row))
		for i, v := range row {
			values[i] = field.New(v)
		}
		//
		if err := builder.AppendRow(values); err != nil {
			t.Fatal(err)
		}
	}
	//
	tr, err := builder.Build()
	if err != nil {
		t.Fatal(err)
	}
	//
	return tr
}

// One memory-access lookup between a claiming table and an attesting table.
// Columns on both sides: filter, ctx, segment, virtual, timestamp, value.
func accessLookup() CrossTableLookup {
	var (
		filter = Single(0)
		proj   = []Column{Single(1), Single(2), Single(3), Single(4), Single(5)}
	)
	//
	return CrossTableLookup{
		Name:    "memory-access",
		Looking: []TableWithColumns{{Table: 0, Columns: proj, Filter: &filter}},
		Looked:  TableWithColumns{Table: 1, Columns: proj, Filter: &filter},
	}
}

func Test_Ctl_Completeness(t *testing.T) {
	// A write of value 42 at (ctx=0, segment=5, virtual=10), timestamp 7,
	// claimed by one table and attested by the other.  Unfiltered rows carry
	// garbage.
	looking := rowsTrace(t,
		[]uint64{1, 0, 5, 10, 7, 42},
		[]uint64{0, 9, 9, 9, 9, 9},
	)
	looked := rowsTrace(t,
		[]uint64{0, 3, 1, 4, 1, 5},
		[]uint64{1, 0, 5, 10, 7, 42},
	)
	//
	var (
		ch   = lookup.GrandProductChallenge{Beta: field.Rand(), Gamma: field.Rand()}
		ctl  = accessLookup()
		zkng = ComputeZ(looking, ctl.Looking[0], ch)
		zkd  = ComputeZ(looked, ctl.Looked, ch)
	)
	//
	if err := CheckProducts([]CrossTableLookup{ctl}, [][][]field.Element{{zkng, zkd}}); err != nil {
		t.Errorf("matching multisets rejected: %v", err)
	}
}

func Test_Ctl_Soundness(t *testing.T) {
	// Deleting the attesting row must be caught for almost all challenges.
	for trial := 0; trial < 20; trial++ {
		looking := rowsTrace(t,
			[]uint64{1, 0, 5, 10, 7, 42},
			[]uint64{0, 9, 9, 9, 9, 9},
		)
		looked := rowsTrace(t,
			[]uint64{0, 3, 1, 4, 1, 5},
			[]uint64{0, 0, 5, 10, 7, 42},
		)
		//
		var (
			ch   = lookup.GrandProductChallenge{Beta: field.Rand(), Gamma: field.Rand()}
			ctl  = accessLookup()
			zkng = ComputeZ(looking, ctl.Looking[0], ch)
			zkd  = ComputeZ(looked, ctl.Looked, ch)
		)
		//
		if CheckProducts([]CrossTableLookup{ctl}, [][][]field.Element{{zkng, zkd}}) == nil {
			t.Fatalf("trial %d: missing attestation accepted", trial)
		}
	}
}

func Test_Ctl_SingleCellMutation(t *testing.T) {
	for trial := 0; trial < 20; trial++ {
		looking := rowsTrace(t,
			[]uint64{1, 0, 5, 10, 7, 43}, // value mutated from 42
			[]uint64{0, 9, 9, 9, 9, 9},
		)
		looked := rowsTrace(t,
			[]uint64{0, 3, 1, 4, 1, 5},
			[]uint64{1, 0, 5, 10, 7, 42},
		)
		//
		var (
			ch   = lookup.GrandProductChallenge{Beta: field.Rand(), Gamma: field.Rand()}
			ctl  = accessLookup()
			zkng = ComputeZ(looking, ctl.Looking[0], ch)
			zkd  = ComputeZ(looked, ctl.Looked, ch)
		)
		//
		if CheckProducts([]CrossTableLookup{ctl}, [][][]field.Element{{zkng, zkd}}) == nil {
			t.Fatalf("trial %d: mutated cell accepted", trial)
		}
	}
}

func Test_Ctl_EmptySideIsIdentity(t *testing.T) {
	// No selected rows on either side: both accumulators must be one.
	tr := rowsTrace(t,
		[]uint64{0, 1, 2, 3, 4, 5},
		[]uint64{0, 6, 7, 8, 9, 1},
	)
	//
	ch := lookup.GrandProductChallenge{Beta: field.Rand(), Gamma: field.Rand()}
	z := ComputeZ(tr, accessLookup().Looked, ch)
	//
	if FinalProduct(z) != field.One() {
		t.Error("empty side must accumulate the identity")
	}
}

func Test_Ctl_ZConstraints(t *testing.T) {
	tr := rowsTrace(t,
		[]uint64{1, 0, 5, 10, 7, 42},
		[]uint64{0, 9, 9, 9, 9, 9},
		[]uint64{1, 2, 2, 2, 2, 2},
		[]uint64{0, 0, 0, 0, 0, 0},
	)
	//
	var (
		ch   = lookup.GrandProductChallenge{Beta: field.Rand(), Gamma: field.Rand()}
		side = accessLookup().Looking[0]
	)
	//
	if err := tr.AppendColumn(ComputeZ(tr, side, ch)); err != nil {
		t.Fatal(err)
	}
	//
	for row := uint(0); row < tr.Height(); row++ {
		domain := air.EveryRow
		//
		if row == 0 {
			domain = air.FirstRowOnly
		} else if row == tr.Height()-1 {
			domain = air.LastRowOnly
		}
		//
		d := air.NewDebugConsumer(domain)
		//
		frame, err := tr.Frame(row, nil)
		if err != nil {
			t.Fatal(err)
		}
		//
		EvalZ(air.Native, frame, side, 6, air.Native.Constant(ch.Beta), air.Native.Constant(ch.Gamma), d.Consumer)
		//
		if d.Failed() {
			t.Errorf("accumulator constraints failed at row %d", row)
		}
	}
}

func Test_Ctl_ArityMismatch(t *testing.T) {
	ctl := accessLookup()
	ctl.Looking[0].Columns = ctl.Looking[0].Columns[:3]
	//
	if _, err := ctl.Arity(); err == nil {
		t.Error("mismatched projection arity accepted")
	}
}

func Test_Ctl_LinearProjection(t *testing.T) {
	tr := rowsTrace(t,
		[]uint64{3, 4, 0, 0, 0, 0},
		[]uint64{0, 0, 0, 0, 0, 0},
	)
	// 3 + 256*4 + 10
	col := Linear([]uint{0, 1}, []field.Element{field.One(), field.New(256)})
	col.constant = field.New(10)
	//
	if got := col.Eval(tr, 0); got != field.New(1037) {
		t.Errorf("affine projection evaluated to %s", got.String())
	}
}
