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

// Package air provides the machinery for evaluating the local polynomial
// constraints of a trace table in two interchangeable representations: over
// native field elements (used during proving) and over symbolic wires of a
// verifying circuit (used during recursive verification).  Each constraint is
// written exactly once, against the Algebra interface; both representations
// then compute the identical polynomial by construction.
package air

import (
	"github.com/multistark/go-multistark/pkg/field"
)

// Algebra abstracts the ring operations needed to evaluate a constraint.  The
// type parameter E is the value domain: field.Element for native evaluation,
// or Wire when building a verifying circuit.
type Algebra[E any] interface {
	// Constant lifts a field element into the value domain.
	Constant(val field.Element) E
	// Uint64 lifts a small unsigned constant into the value domain.
	Uint64(val uint64) E
	// Zero returns the additive identity.
	Zero() E
	// One returns the multiplicative identity.
	One() E
	// Add returns lhs + rhs.
	Add(lhs E, rhs E) E
	// Sub returns lhs - rhs.
	Sub(lhs E, rhs E) E
	// Mul returns lhs * rhs.
	Mul(lhs E, rhs E) E
	// MulAdd returns (lhs * rhs) + acc.
	MulAdd(lhs E, rhs E, acc E) E
	// Sum returns the sum of all given values, or zero when none given.
	Sum(vals ...E) E
}

// NativeAlgebra implements Algebra directly over field elements.  This is the
// representation the prover uses, many rows at a time.
type NativeAlgebra struct{}

// Native is the canonical instance of NativeAlgebra.
var Native NativeAlgebra

// Constant implementation for the Algebra interface.
func (p NativeAlgebra) Constant(val field.Element) field.Element {
	return val
}

// Uint64 implementation for the Algebra interface.
func (p NativeAlgebra) Uint64(val uint64) field.Element {
	return field.New(val)
}

// Zero implementation for the Algebra interface.
func (p NativeAlgebra) Zero() field.Element {
	return field.Zero()
}

// One implementation for the Algebra interface.
func (p NativeAlgebra) One() field.Element {
	return field.One()
}

// Add implementation for the Algebra interface.
func (p NativeAlgebra) Add(lhs field.Element, rhs field.Element) field.Element {
	return field.Add(lhs, rhs)
}

// Sub implementation for the Algebra interface.
func (p NativeAlgebra) Sub(lhs field.Element, rhs field.Element) field.Element {
	return field.Sub(lhs, rhs)
}

// Mul implementation for the Algebra interface.
func (p NativeAlgebra) Mul(lhs field.Element, rhs field.Element) field.Element {
	return field.Mul(lhs, rhs)
}

// MulAdd implementation for the Algebra interface.
func (p NativeAlgebra) MulAdd(lhs field.Element, rhs field.Element, acc field.Element) field.Element {
	return field.Add(field.Mul(lhs, rhs), acc)
}

// Sum implementation for the Algebra interface.
func (p NativeAlgebra) Sum(vals ...field.Element) field.Element {
	var acc field.Element
	//
	for _, v := range vals {
		acc.Add(&acc, &v)
	}
	//
	return acc
}
