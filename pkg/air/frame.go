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

import "fmt"

// Frame packages the values a table's constraints may read at one evaluation
// position: the local row, the next row (cyclically wrapping at the end of the
// trace) and the table's public inputs.  Shape mismatches are rejected eagerly
// at construction, never deferred to constraint evaluation.
type Frame[E any] struct {
	local  []E
	next   []E
	public []E
}

// NewFrame constructs a frame, checking that both rows have exactly width
// columns and that the number of public inputs matches.
func NewFrame[E any](local []E, next []E, public []E, width uint, pubs uint) (Frame[E], error) {
	if uint(len(local)) != width {
		return Frame[E]{}, fmt.Errorf("local row has %d columns, expected %d", len(local), width)
	} else if uint(len(next)) != width {
		return Frame[E]{}, fmt.Errorf("next row has %d columns, expected %d", len(next), width)
	} else if uint(len(public)) != pubs {
		return Frame[E]{}, fmt.Errorf("frame has %d public inputs, expected %d", len(public), pubs)
	}
	//
	return Frame[E]{local, next, public}, nil
}

// Width returns the number of columns in this frame.
func (p *Frame[E]) Width() uint {
	return uint(len(p.local))
}

// Local returns the value of the given column at the local row.
func (p *Frame[E]) Local(col uint) E {
	return p.local[col]
}

// Next returns the value of the given column at the next row.
func (p *Frame[E]) Next(col uint) E {
	return p.next[col]
}

// Public returns the value of the given public input.
func (p *Frame[E]) Public(index uint) E {
	return p.public[index]
}

// LocalRange returns the values of n consecutive columns at the local row,
// beginning at start.
func (p *Frame[E]) LocalRange(start uint, n uint) []E {
	return p.local[start : start+n]
}

// NextRange returns the values of n consecutive columns at the next row,
// beginning at start.
func (p *Frame[E]) NextRange(start uint, n uint) []E {
	return p.next[start : start+n]
}
