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

// Package schema defines the static contract a trace table presents to the
// proving pipeline: its column layout, its constraint evaluator and its
// permutation argument requirements.  Table kinds are registered as values of
// the Table interface, instantiated once over native field elements for
// proving and once over circuit wires for recursive verification.
package schema

import (
	"github.com/multistark/go-multistark/pkg/air"
)

// Table is the contract one table kind exposes to the proving pipeline.  The
// type parameter E selects the evaluation domain, exactly as for
// air.Algebra.  A given table kind must emit the identical constraint
// sequence for every instantiation of E.
type Table[E any] interface {
	// Name returns a unique identifier for this table kind.
	Name() string
	// Columns returns the fixed number of columns in this table's rows.
	Columns() uint
	// PublicInputs returns the number of public inputs this table expects.
	PublicInputs() uint
	// ConstraintDegree returns an upper bound on the algebraic degree of any
	// constraint this table emits.  Under-reporting is a soundness bug;
	// over-reporting only raises the commitment blowup.
	ConstraintDegree() uint
	// Eval emits this table's local, transition and boundary constraints at
	// one evaluation position into the given consumer.
	Eval(alg air.Algebra[E], frame air.Frame[E], consumer *air.Consumer[E])
	// PermutationPairs identifies the column pairs tied together by this
	// table's intra-table permutation argument.  Empty when the table has no
	// range checks.
	PermutationPairs() []PermutationPair
}

// PermutationPair describes one instance of the intra-table permutation
// argument: the multiset of values drawn from the Lhs columns must equal the
// multiset drawn from the Rhs columns.  Multi-column pairs tie tuples rather
// than single values, sharing one grand product.
type PermutationPair struct {
	// Lhs column indices.
	Lhs []uint
	// Rhs column indices.
	Rhs []uint
}

// NewPermutationPair constructs a pair tying single columns a and b.
func NewPermutationPair(a uint, b uint) PermutationPair {
	return PermutationPair{Lhs: []uint{a}, Rhs: []uint{b}}
}
