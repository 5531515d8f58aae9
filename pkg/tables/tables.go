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
package tables

import (
	"fmt"

	"github.com/multistark/go-multistark/pkg/ctl"
	"github.com/multistark/go-multistark/pkg/schema"
	"github.com/multistark/go-multistark/pkg/trace"
	"github.com/multistark/go-multistark/pkg/util"
)

// TableID identifies one sub-machine table within a proof session.
type TableID uint

const (
	// TableCpu is the execution table.
	TableCpu TableID = iota
	// TableArithmetic is the 256-bit arithmetic table.
	TableArithmetic
	// TableMemory is the memory access table.
	TableMemory
	// TableBytePacking is the byte-packing table.
	TableBytePacking
	// NumTables is the number of tables in the machine.
	NumTables
)

// String implementation for the Stringer interface.
func (p TableID) String() string {
	switch p {
	case TableCpu:
		return "cpu"
	case TableArithmetic:
		return "arithmetic"
	case TableMemory:
		return "memory"
	case TableBytePacking:
		return "bytepacking"
	}
	//
	return "???"
}

// Machine bundles the table contracts of the full machine over one
// evaluation domain.  The memory height parameter is part of the memory
// table's contract, so a machine is assembled per proof, after generation.
type Machine[E any] struct {
	Params      Params
	Cpu         *Cpu[E]
	Arithmetic  *Arithmetic[E]
	Memory      *Memory[E]
	BytePacking *BytePacking[E]
}

// NewMachine assembles the table contracts for the given parameters and
// memory trace height.
func NewMachine[E any](params Params, memoryHeight uint) *Machine[E] {
	return &Machine[E]{
		Params:      params,
		Cpu:         NewCpu[E](params),
		Arithmetic:  NewArithmetic[E](params),
		Memory:      NewMemory[E](memoryHeight),
		BytePacking: NewBytePacking[E](),
	}
}

// Tables returns the table contracts indexed by TableID.
func (p *Machine[E]) Tables() []schema.Table[E] {
	return []schema.Table[E]{p.Cpu, p.Arithmetic, p.Memory, p.BytePacking}
}

// Lookups returns the cross-table lookups tying the machine together: every
// arithmetic claim, memory access and packed word the CPU table makes must
// be attested by the corresponding specialised table, and vice versa.
func (p *Machine[E]) Lookups() []ctl.CrossTableLookup {
	var (
		arithFilter = p.Arithmetic.CtlFilter()
		memFilter   = p.Memory.CtlFilter()
		packFilter  = p.BytePacking.CtlFilter()
		//
		cpuArithFilter = p.Cpu.ArithmeticFilter()
		cpuMemFilter   = p.Cpu.MemoryFilter()
		cpuPackFilter  = p.Cpu.PackingFilter()
	)
	//
	return []ctl.CrossTableLookup{
		{
			Name: "arithmetic",
			Looking: []ctl.TableWithColumns{{
				Table:   uint(TableCpu),
				Columns: p.Cpu.ArithmeticProjection(),
				Filter:  &cpuArithFilter,
			}},
			Looked: ctl.TableWithColumns{
				Table:   uint(TableArithmetic),
				Columns: p.Arithmetic.CtlProjection(),
				Filter:  &arithFilter,
			},
		},
		{
			Name: "memory",
			Looking: []ctl.TableWithColumns{{
				Table:   uint(TableCpu),
				Columns: p.Cpu.MemoryProjection(),
				Filter:  &cpuMemFilter,
			}},
			Looked: ctl.TableWithColumns{
				Table:   uint(TableMemory),
				Columns: p.Memory.CtlProjection(),
				Filter:  &memFilter,
			},
		},
		{
			Name: "bytepacking",
			Looking: []ctl.TableWithColumns{{
				Table:   uint(TableCpu),
				Columns: p.Cpu.PackingProjection(),
				Filter:  &cpuPackFilter,
			}},
			Looked: ctl.TableWithColumns{
				Table:   uint(TableBytePacking),
				Columns: p.BytePacking.CtlProjection(),
				Filter:  &packFilter,
			},
		},
	}
}

// Traces holds one generated trace per table, indexed by TableID.
type Traces [NumTables]*trace.Trace

// Generate executes a program and produces all four traces.  CPU generation
// runs first, since it decides the work of the other tables; those are then
// generated in parallel.
func Generate(params Params, program Program) (*Traces, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	//
	cpuTr, state, err := generateCpu(params, program)
	if err != nil {
		return nil, fmt.Errorf("generating cpu trace: %w", err)
	}
	//
	var traces Traces
	traces[TableCpu] = cpuTr
	//
	errs := util.ForkJoin(
		func() error {
			tr, err := generateArithmetic(params, state.arithOps)
			if err != nil {
				return fmt.Errorf("generating arithmetic trace: %w", err)
			}
			//
			traces[TableArithmetic] = tr
			//
			return nil
		},
		func() error {
			tr, err := generateMemory(state.accesses)
			if err != nil {
				return fmt.Errorf("generating memory trace: %w", err)
			}
			//
			traces[TableMemory] = tr
			//
			return nil
		},
		func() error {
			tr, err := generateBytePacking(state.packOps)
			if err != nil {
				return fmt.Errorf("generating bytepacking trace: %w", err)
			}
			//
			traces[TableBytePacking] = tr
			//
			return nil
		},
	)
	//
	if len(errs) > 0 {
		return nil, errs[0]
	}
	//
	return &traces, nil
}
