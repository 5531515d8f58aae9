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
	"sort"

	"github.com/multistark/go-multistark/pkg/air"
	"github.com/multistark/go-multistark/pkg/ctl"
	"github.com/multistark/go-multistark/pkg/field"
	"github.com/multistark/go-multistark/pkg/lookup"
	"github.com/multistark/go-multistark/pkg/schema"
	"github.com/multistark/go-multistark/pkg/trace"
)

// memLayout indexes the columns of the memory table.  Rows are sorted by
// address and then timestamp; the first-change flags identify which address
// component changes at each transition, and the range-check column carries
// the corresponding (decremented) delta, proving the sort order.
type memLayout struct {
	filter uint
	isRead uint
	ctx    uint
	seg    uint
	virt   uint
	ts     uint
	value  uint
	// First-change flags for the transition to the next row.
	ctxChanged  uint
	segChanged  uint
	virtChanged uint
	// Ordering delta, range-checked against the counter column.
	rc      uint
	counter uint
	// Permuted pair tying rc to counter.
	permRc      uint
	permCounter uint
	//
	width uint
}

func newMemLayout() memLayout {
	var (
		alloc = schema.NewAllocator()
		l     memLayout
	)
	//
	l.filter = alloc.Column("filter")
	l.isRead = alloc.Column("is_read")
	l.ctx = alloc.Column("context")
	l.seg = alloc.Column("segment")
	l.virt = alloc.Column("virtual")
	l.ts = alloc.Column("timestamp")
	l.value = alloc.Column("value")
	l.ctxChanged = alloc.Column("context_changed")
	l.segChanged = alloc.Column("segment_changed")
	l.virtChanged = alloc.Column("virtual_changed")
	l.rc = alloc.Column("range_check")
	l.counter = alloc.Column("counter")
	l.permRc = alloc.Column("perm_range_check")
	l.permCounter = alloc.Column("perm_counter")
	l.width = alloc.Width()
	//
	return l
}

// Memory is the memory table: one row per access, sorted by address then
// timestamp, with reads forced to repeat the last written value.  The trace
// height is part of the contract because the ordering deltas are
// range-checked against a counter column covering [0, height).
type Memory[E any] struct {
	layout memLayout
	height uint
}

// NewMemory constructs the memory table contract for a given trace height.
func NewMemory[E any](height uint) *Memory[E] {
	return &Memory[E]{layout: newMemLayout(), height: height}
}

// Name implementation for the Table interface.
func (p *Memory[E]) Name() string {
	return "memory"
}

// Columns implementation for the Table interface.
func (p *Memory[E]) Columns() uint {
	return p.layout.width
}

// PublicInputs implementation for the Table interface.
func (p *Memory[E]) PublicInputs() uint {
	return 0
}

// ConstraintDegree implementation for the Table interface.
func (p *Memory[E]) ConstraintDegree() uint {
	return 3
}

// PermutationPairs implementation for the Table interface.
func (p *Memory[E]) PermutationPairs() []schema.PermutationPair {
	l := p.layout
	//
	return []schema.PermutationPair{
		schema.NewPermutationPair(l.rc, l.permRc),
		schema.NewPermutationPair(l.counter, l.permCounter),
	}
}

// CtlProjection returns the columns the CPU looks up: access kind, address,
// timestamp and value.
func (p *Memory[E]) CtlProjection() []ctl.Column {
	l := p.layout
	//
	return []ctl.Column{
		ctl.Single(l.isRead), ctl.Single(l.ctx), ctl.Single(l.seg),
		ctl.Single(l.virt), ctl.Single(l.ts), ctl.Single(l.value),
	}
}

// CtlFilter returns the 0/1 filter selecting real accesses.
func (p *Memory[E]) CtlFilter() ctl.Column {
	return ctl.Single(p.layout.filter)
}

// Eval implementation for the Table interface.
func (p *Memory[E]) Eval(alg air.Algebra[E], frame air.Frame[E], consumer *air.Consumer[E]) {
	var (
		l   = p.layout
		one = alg.One()
		//
		filter = frame.Local(l.filter)
		isRead = frame.Local(l.isRead)
		fc     = frame.Local(l.ctxChanged)
		fs     = frame.Local(l.segChanged)
		fv     = frame.Local(l.virtChanged)
		//
		dCtx  = alg.Sub(frame.Next(l.ctx), frame.Local(l.ctx))
		dSeg  = alg.Sub(frame.Next(l.seg), frame.Local(l.seg))
		dVirt = alg.Sub(frame.Next(l.virt), frame.Local(l.virt))
		dTs   = alg.Sub(frame.Next(l.ts), frame.Local(l.ts))
	)
	// Binary flags.
	consumer.Every(alg.Mul(filter, alg.Sub(filter, one)))
	consumer.Every(alg.Mul(isRead, alg.Sub(isRead, one)))
	consumer.Every(alg.Mul(fc, alg.Sub(fc, one)))
	consumer.Every(alg.Mul(fs, alg.Sub(fs, one)))
	consumer.Every(alg.Mul(fv, alg.Sub(fv, one)))
	// At most one first-change flag per transition.
	changed := alg.Sum(fc, fs, fv)
	consumer.Every(alg.Mul(changed, alg.Sub(changed, one)))
	// Rows outside the filter must be reads, so they cannot smuggle writes.
	consumer.Every(alg.Mul(alg.Sub(one, filter), alg.Sub(one, isRead)))
	// The first access overall reads as zero when it is a read.
	consumer.FirstRow(alg.Mul(isRead, frame.Local(l.value)))
	// A lower-priority change flag implies the higher components are equal.
	unchanged := alg.Sub(one, changed)
	consumer.Transition(alg.Mul(fs, dCtx))
	consumer.Transition(alg.Mul(fv, dCtx))
	consumer.Transition(alg.Mul(fv, dSeg))
	consumer.Transition(alg.Mul(unchanged, dCtx))
	consumer.Transition(alg.Mul(unchanged, dSeg))
	consumer.Transition(alg.Mul(unchanged, dVirt))
	// The range-check column witnesses strict ordering: the changing
	// component (or the timestamp, for a repeated address) strictly
	// increases.
	ordering := alg.Sum(
		alg.Mul(fc, alg.Sub(dCtx, one)),
		alg.Mul(fs, alg.Sub(dSeg, one)),
		alg.Mul(fv, alg.Sub(dVirt, one)),
		alg.Mul(unchanged, alg.Sub(dTs, one)))
	consumer.Transition(alg.Sub(frame.Local(l.rc), ordering))
	// Reads at an unchanged address preserve the value; the first access to
	// a fresh address reads as zero.
	consumer.Transition(alg.Mul(unchanged,
		alg.Mul(frame.Next(l.isRead), alg.Sub(frame.Next(l.value), frame.Local(l.value)))))
	consumer.Transition(alg.Mul(changed,
		alg.Mul(frame.Next(l.isRead), frame.Next(l.value))))
	// The counter column runs 0, 1, ..., height-1 and bounds rc.
	lookup.EvalRangeColumn(alg, frame, l.counter, uint64(p.height-1), consumer)
	lookup.EvalPermutedPair(alg, frame, l.permRc, l.permCounter, consumer)
}

// memAccess is one access recorded during CPU generation.
type memAccess struct {
	addr   MemoryAddress
	ts     uint64
	isRead bool
	value  field.Element
}

// memHeight returns the padded memory trace height for a given access count.
func memHeight(accesses int) uint {
	return trace.PaddedHeight(uint(accesses))
}

// generateMemory builds the memory trace from the recorded accesses.  Fails
// when an address or timestamp gap exceeds what the range-check column can
// witness at this height.
func generateMemory(accesses []memAccess) (*trace.Trace, error) {
	var (
		l      = newMemLayout()
		height = memHeight(len(accesses))
		sorted = make([]memAccess, len(accesses))
	)
	//
	copy(sorted, accesses)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		//
		if a.addr != b.addr {
			if a.addr.Context != b.addr.Context {
				return a.addr.Context < b.addr.Context
			} else if a.addr.Segment != b.addr.Segment {
				return a.addr.Segment < b.addr.Segment
			}
			//
			return a.addr.Virtual < b.addr.Virtual
		}
		//
		return a.ts < b.ts
	})
	// Padding repeats the final address as reads with advancing timestamps,
	// or dummy zero-address reads when there are no accesses at all.
	for uint(len(sorted)) < height {
		last := memAccess{isRead: true}
		//
		if n := len(sorted); n > 0 {
			last = sorted[n-1]
			last.isRead = true
			last.ts++
		}
		//
		sorted = append(sorted, last)
	}
	//
	columns := make([][]field.Element, l.width)
	for c := range columns {
		columns[c] = make([]field.Element, height)
	}
	//
	for row, acc := range sorted {
		if uint(row) < uint(len(accesses)) {
			columns[l.filter][row] = field.One()
		}
		//
		if acc.isRead {
			columns[l.isRead][row] = field.One()
		}
		//
		columns[l.ctx][row] = field.New(acc.addr.Context)
		columns[l.seg][row] = field.New(acc.addr.Segment)
		columns[l.virt][row] = field.New(acc.addr.Virtual)
		columns[l.ts][row] = field.New(acc.ts)
		columns[l.value][row] = acc.value
	}
	// First-change flags and ordering deltas.
	for row := 0; row+1 < len(sorted); row++ {
		var (
			cur, next = sorted[row], sorted[row+1]
			delta     uint64
		)
		//
		switch {
		case cur.addr.Context != next.addr.Context:
			columns[l.ctxChanged][row] = field.One()
			delta = next.addr.Context - cur.addr.Context
		case cur.addr.Segment != next.addr.Segment:
			columns[l.segChanged][row] = field.One()
			delta = next.addr.Segment - cur.addr.Segment
		case cur.addr.Virtual != next.addr.Virtual:
			columns[l.virtChanged][row] = field.One()
			delta = next.addr.Virtual - cur.addr.Virtual
		default:
			delta = next.ts - cur.ts
		}
		//
		if delta == 0 || delta > uint64(height) {
			return nil, fmt.Errorf("memory rows %d-%d: ordering delta %d not witnessable at height %d",
				row, row+1, delta, height)
		}
		//
		columns[l.rc][row] = field.New(delta - 1)
	}
	//
	var err error
	//
	if columns[l.counter], err = lookup.RangeColumn(uint64(height-1), height); err != nil {
		return nil, err
	}
	//
	if columns[l.permRc], columns[l.permCounter], err =
		lookup.PermutedColumns(columns[l.rc], columns[l.counter]); err != nil {
		return nil, err
	}
	//
	return trace.FromColumns(columns)
}
