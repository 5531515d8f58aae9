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

// Package prover orchestrates a proof session over the multi-table machine:
// trace generation, challenge derivation, accumulator construction and the
// final vanishing checks.  The output of a session is the set of extended
// traces and the combined vanishing evaluations over them; committing to the
// low-degree extensions and opening them is left to the surrounding proof
// system.
package prover

import (
	"fmt"

	"github.com/multistark/go-multistark/pkg/air"
	"github.com/multistark/go-multistark/pkg/config"
	"github.com/multistark/go-multistark/pkg/ctl"
	"github.com/multistark/go-multistark/pkg/field"
	"github.com/multistark/go-multistark/pkg/lookup"
	"github.com/multistark/go-multistark/pkg/schema"
	"github.com/multistark/go-multistark/pkg/tables"
	"github.com/multistark/go-multistark/pkg/trace"
	"github.com/multistark/go-multistark/pkg/transcript"
	"github.com/multistark/go-multistark/pkg/util"
	"github.com/multistark/go-multistark/pkg/vanishing"
)

// ctlSlot locates one cross-table lookup side within its host table,
// together with its accumulator column per challenge set.
type ctlSlot struct {
	// Lookup index, and side position within that lookup (looking sides in
	// declaration order, then the looked side).
	lookup int
	side   int
	cols   ctl.TableWithColumns
	// Accumulator column index per challenge set.
	z []uint
}

// Session holds the artifacts of one proof session.
type Session struct {
	Config  config.Config
	Params  tables.Params
	Machine *tables.Machine[field.Element]
	Traces  *tables.Traces
	// Grand-product challenge sets, drawn after committing to the core
	// trace columns.
	Challenges []lookup.GrandProductChallenge
	// Combination challenges, drawn after committing to the accumulator
	// columns.
	Alphas []field.Element
	//
	lookups []ctl.CrossTableLookup
	// permZ[table][challenge][pair] is the accumulator column index for one
	// permutation pair.
	permZ [][][]uint
	// slots[table] lists the lookup sides hosted by that table.
	slots [][]ctlSlot
}

// Prove runs a full session over the given program.  In debug mode every
// trace is checked row by row against its own constraints before the
// challenges are drawn, pinpointing generator bugs; the final product and
// vanishing checks run either way.
func Prove(cfg config.Config, params tables.Params, program tables.Program, debug bool) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	//
	traces, err := tables.Generate(params, program)
	if err != nil {
		return nil, err
	}
	//
	s := &Session{
		Config:  cfg,
		Params:  params,
		Machine: tables.NewMachine[field.Element](params, traces[tables.TableMemory].Height()),
		Traces:  traces,
	}
	s.lookups = s.Machine.Lookups()
	s.slots = hostSlots(s.lookups)
	//
	if debug {
		if err := s.selfCheckCore(); err != nil {
			return nil, err
		}
	}
	// Commit to the core columns of every trace, in table order, before any
	// challenge is drawn.
	challenger := transcript.NewChallenger(2*cfg.GrandProductChallenges + cfg.Alphas)
	//
	for id := range traces {
		if err := challenger.ObserveCommitment(columnsOf(traces[id], 0)...); err != nil {
			return nil, err
		}
	}
	//
	if err := s.drawChallenges(challenger); err != nil {
		return nil, err
	}
	//
	s.extendTraces()
	// Commit to the accumulator columns before drawing the combination
	// challenges.
	for id := range traces {
		if err := challenger.ObserveCommitment(columnsOf(traces[id], traces[id].CoreWidth())...); err != nil {
			return nil, err
		}
	}
	//
	if s.Alphas, err = challenger.Challenges(cfg.Alphas); err != nil {
		return nil, err
	}
	// Audit the composite constraint system against the session degree
	// bound, now that the accumulator constraints are wired in.
	if err := s.auditDegrees(); err != nil {
		return nil, err
	}
	//
	return s, s.check(debug)
}

// Evaluator returns the composite constraint evaluator of one table: its own
// constraints plus those of every accumulator column it hosts.
func (p *Session) Evaluator(id tables.TableID) vanishing.Evaluator[field.Element] {
	table := p.Machine.Tables()[id]
	//
	return composite(table, p.permZ[id], p.slots[id], p.Challenges)
}

// LookupAccumulators gathers, for one challenge set, the accumulator columns
// of every lookup in the layout ctl.CheckProducts expects.
func (p *Session) LookupAccumulators(challenge int) [][][]field.Element {
	zs := make([][][]field.Element, len(p.lookups))
	//
	for i, lk := range p.lookups {
		zs[i] = make([][]field.Element, len(lk.Looking)+1)
	}
	//
	for id, slots := range p.slots {
		for _, slot := range slots {
			zs[slot.lookup][slot.side] = p.Traces[id].Column(slot.z[challenge])
		}
	}
	//
	return zs
}

// hostSlots groups the lookup sides by their host table.
func hostSlots(lookups []ctl.CrossTableLookup) [][]ctlSlot {
	slots := make([][]ctlSlot, tables.NumTables)
	//
	for i, lk := range lookups {
		for sIdx, side := range lk.Looking {
			slots[side.Table] = append(slots[side.Table],
				ctlSlot{lookup: i, side: sIdx, cols: side})
		}
		//
		slots[lk.Looked.Table] = append(slots[lk.Looked.Table],
			ctlSlot{lookup: i, side: len(lk.Looking), cols: lk.Looked})
	}
	//
	return slots
}

// selfCheckCore verifies every generated trace against its table's own
// constraints, before any accumulator exists.
func (p *Session) selfCheckCore() error {
	contracts := p.Machine.Tables()
	//
	errs := util.ForkJoinMap(uint(tables.NumTables), func(id uint) error {
		return vanishing.SelfCheck(contracts[id].Name(), p.Traces[id], nil, contracts[id].Eval)
	})
	//
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	//
	return nil
}

func (p *Session) drawChallenges(challenger *transcript.Challenger) error {
	raw, err := challenger.Challenges(2 * p.Config.GrandProductChallenges)
	if err != nil {
		return err
	}
	//
	for c := uint(0); c < p.Config.GrandProductChallenges; c++ {
		p.Challenges = append(p.Challenges,
			lookup.GrandProductChallenge{Beta: raw[2*c], Gamma: raw[2*c+1]})
	}
	//
	return nil
}

// extendTraces appends every accumulator column: per table, the permutation
// pair accumulators for each challenge set, then the lookup side
// accumulators.
func (p *Session) extendTraces() {
	contracts := p.Machine.Tables()
	p.permZ = make([][][]uint, tables.NumTables)
	//
	util.ForkJoinMap(uint(tables.NumTables), func(id uint) struct{} {
		var (
			tr    = p.Traces[id]
			pairs = contracts[id].PermutationPairs()
		)
		//
		p.permZ[id] = make([][]uint, len(p.Challenges))
		//
		for c, ch := range p.Challenges {
			for _, pair := range pairs {
				p.permZ[id][c] = append(p.permZ[id][c], tr.Width())
				// Column shapes are fixed by construction here.
				if err := tr.AppendColumn(lookup.ComputeZ(tr, pair, ch)); err != nil {
					panic(err)
				}
			}
		}
		//
		for sIdx := range p.slots[id] {
			slot := &p.slots[id][sIdx]
			slot.z = make([]uint, len(p.Challenges))
			//
			for c, ch := range p.Challenges {
				slot.z[c] = tr.Width()
				//
				if err := tr.AppendColumn(ctl.ComputeZ(tr, slot.cols, ch)); err != nil {
					panic(err)
				}
			}
		}
		//
		return struct{}{}
	})
}

// auditDegrees bounds the degree of every composite constraint system by
// symbolic evaluation, rejecting the session if any table exceeds the
// configured maximum.
func (p *Session) auditDegrees() error {
	var (
		machine   = tables.NewMachine[air.Degree](p.Params, p.Traces[tables.TableMemory].Height())
		contracts = machine.Tables()
	)
	//
	for id, table := range contracts {
		eval := composite(table, p.permZ[id], p.slots[id], p.Challenges)
		bound := air.MaxDegree(p.Traces[id].Width(), table.PublicInputs(), eval)
		//
		if err := p.Config.CheckDegree(table.Name(), bound); err != nil {
			return err
		}
	}
	//
	return nil
}

// check runs the final product and vanishing checks over the extended
// traces.
func (p *Session) check(debug bool) error {
	for c := range p.Challenges {
		if err := ctl.CheckProducts(p.lookups, p.LookupAccumulators(c)); err != nil {
			return err
		}
	}
	//
	errs := util.ForkJoinMap(uint(tables.NumTables), func(id uint) error {
		return p.checkVanishing(tables.TableID(id), debug)
	})
	//
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	//
	return nil
}

// checkVanishing verifies that every combined vanishing evaluation of one
// table is zero.  In debug mode a failure is re-run through the row-by-row
// self-check to name the offending constraints.
func (p *Session) checkVanishing(id tables.TableID, debug bool) error {
	var (
		tr   = p.Traces[id]
		eval = p.Evaluator(id)
	)
	//
	rows, err := vanishing.EvalTable(tr, nil, p.Alphas, eval)
	if err != nil {
		return err
	}
	//
	for row, vals := range rows {
		for _, v := range vals {
			if !v.IsZero() {
				if debug {
					return vanishing.SelfCheck(id.String(), tr, nil, eval)
				}
				//
				return fmt.Errorf("table %s: vanishing accumulator non-zero at row %d", id, row)
			}
		}
	}
	//
	return nil
}

// composite wires a table's own constraints together with its accumulator
// constraints.  Generic over the evaluation domain, so the identical
// combination drives native proving, degree auditing and gate recording.
func composite[E any](table schema.Table[E], permZ [][]uint, slots []ctlSlot,
	chs []lookup.GrandProductChallenge) vanishing.Evaluator[E] {
	pairs := table.PermutationPairs()
	//
	return func(alg air.Algebra[E], frame air.Frame[E], consumer *air.Consumer[E]) {
		table.Eval(alg, frame, consumer)
		//
		for c, ch := range chs {
			var (
				beta  = alg.Constant(ch.Beta)
				gamma = alg.Constant(ch.Gamma)
			)
			//
			for k, pair := range pairs {
				lookup.EvalZ(alg, frame, pair, permZ[c][k], beta, gamma, consumer)
			}
		}
		//
		for _, slot := range slots {
			for c, ch := range chs {
				var (
					beta  = alg.Constant(ch.Beta)
					gamma = alg.Constant(ch.Gamma)
				)
				//
				ctl.EvalZ(alg, frame, slot.cols, slot.z[c], beta, gamma, consumer)
			}
		}
	}
}

// columnsOf gathers a trace's columns starting at the given index.
func columnsOf(tr *trace.Trace, from uint) [][]field.Element {
	var cols [][]field.Element
	//
	for c := from; c < tr.Width(); c++ {
		cols = append(cols, tr.Column(c))
	}
	//
	return cols
}
