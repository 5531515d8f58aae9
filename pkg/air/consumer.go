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

import "github.com/multistark/go-multistark/pkg/field"

// Consumer accumulates the constraints a table emits at one evaluation
// position, folding them into one running sum per combination challenge
// (alpha).  Constraints emitted for restricted row domains are multiplied by
// the appropriate selector first: the vanishing factor of the last row for
// transitions, or a Lagrange basis value for first/last-row constraints.
//
// Constraints must be emitted in the same order regardless of the value
// domain, since the emission index identifies a constraint across native and
// circuit evaluation.
type Consumer[E any] struct {
	alg Algebra[E]
	// Combination challenges, one per soundness repetition.
	alphas []E
	// Running sums, one per challenge.
	accs []E
	// Evaluation of x - g^(n-1), which vanishes on the last row.
	zLast E
	// Lagrange basis evaluation which is one at the first row, zero elsewhere
	// in the trace domain.
	lagrangeFirst E
	// Lagrange basis evaluation which is one at the last row, zero elsewhere
	// in the trace domain.
	lagrangeLast E
	// Number of constraints emitted so far.
	count uint
	// Optional observer invoked with every (selector-filtered) constraint as
	// it is emitted.  Used by debug self-checks to identify failing
	// constraints; nil during regular proving.
	onEmit func(index uint, constraint E)
}

// NewConsumer constructs a consumer for a given set of combination challenges
// and row-domain selector values.
func NewConsumer[E any](alg Algebra[E], alphas []E, zLast E, lagrangeFirst E, lagrangeLast E) *Consumer[E] {
	accs := make([]E, len(alphas))
	for i := range accs {
		accs[i] = alg.Zero()
	}
	//
	return &Consumer[E]{
		alg:           alg,
		alphas:        alphas,
		accs:          accs,
		zLast:         zLast,
		lagrangeFirst: lagrangeFirst,
		lagrangeLast:  lagrangeLast,
	}
}

// Every emits a constraint which must hold on every row.
func (p *Consumer[E]) Every(constraint E) {
	if p.onEmit != nil {
		p.onEmit(p.count, constraint)
	}
	//
	for i, alpha := range p.alphas {
		p.accs[i] = p.alg.MulAdd(p.accs[i], alpha, constraint)
	}
	//
	p.count++
}

// Transition emits a constraint which must hold on every row except the last,
// i.e. on every adjacent row pair of the trace.
func (p *Consumer[E]) Transition(constraint E) {
	p.Every(p.alg.Mul(constraint, p.zLast))
}

// FirstRow emits a constraint pinned to the first row of the trace.
func (p *Consumer[E]) FirstRow(constraint E) {
	p.Every(p.alg.Mul(constraint, p.lagrangeFirst))
}

// LastRow emits a constraint pinned to the last row of the trace.
func (p *Consumer[E]) LastRow(constraint E) {
	p.Every(p.alg.Mul(constraint, p.lagrangeLast))
}

// Count returns the number of constraints emitted so far.
func (p *Consumer[E]) Count() uint {
	return p.count
}

// Accumulators returns the running sums, one per combination challenge.
func (p *Consumer[E]) Accumulators() []E {
	return p.accs
}

// RowDomain identifies the restricted row domain a debug consumer is
// currently checking.
type RowDomain uint

const (
	// EveryRow activates unrestricted and transition constraints.
	EveryRow RowDomain = iota
	// FirstRowOnly additionally activates first-row constraints.
	FirstRowOnly
	// LastRowOnly activates last-row constraints, and deactivates
	// transitions (there is no successor row).
	LastRowOnly
)

// DebugConsumer wraps a native consumer with unit selector values, so that a
// non-zero emission directly identifies a violated constraint.  This is the
// self-check mode used to test a generated trace against its own evaluator
// before committing to it.
type DebugConsumer struct {
	*Consumer[field.Element]
	// Indices of constraints which failed to vanish.
	Failures []uint
}

// NewDebugConsumer constructs a debug consumer for a given row domain.
func NewDebugConsumer(domain RowDomain) *DebugConsumer {
	var (
		one  = field.One()
		zero = field.Zero()
		c    = NewConsumer[field.Element](Native, []field.Element{one}, one, zero, zero)
		d    = &DebugConsumer{Consumer: c}
	)
	//
	switch domain {
	case FirstRowOnly:
		c.lagrangeFirst = one
	case LastRowOnly:
		c.lagrangeLast = one
		c.zLast = zero
	}
	//
	c.onEmit = func(index uint, constraint field.Element) {
		if !constraint.IsZero() {
			d.Failures = append(d.Failures, index)
		}
	}
	//
	return d
}

// Failed reports whether any constraint failed to vanish.
func (p *DebugConsumer) Failed() bool {
	return len(p.Failures) > 0
}
