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

// Degree is the algebraic degree of an expression in the trace columns.
// Challenges, public inputs and constants have degree zero; every column
// opening has degree one.
type Degree uint

// DegreeAlgebra implements Algebra abstractly over degrees: addition takes
// the maximum, multiplication the sum.  Running a table's evaluator over this
// algebra bounds the degree of every constraint it emits, which is how a
// declared constraint degree is audited without touching any polynomial.
type DegreeAlgebra struct{}

// Constant implementation for the Algebra interface.
func (p DegreeAlgebra) Constant(val field.Element) Degree { return 0 }

// Uint64 implementation for the Algebra interface.
func (p DegreeAlgebra) Uint64(val uint64) Degree { return 0 }

// Zero implementation for the Algebra interface.
func (p DegreeAlgebra) Zero() Degree { return 0 }

// One implementation for the Algebra interface.
func (p DegreeAlgebra) One() Degree { return 0 }

// Add implementation for the Algebra interface.
func (p DegreeAlgebra) Add(lhs Degree, rhs Degree) Degree { return max(lhs, rhs) }

// Sub implementation for the Algebra interface.
func (p DegreeAlgebra) Sub(lhs Degree, rhs Degree) Degree { return max(lhs, rhs) }

// Mul implementation for the Algebra interface.
func (p DegreeAlgebra) Mul(lhs Degree, rhs Degree) Degree { return lhs + rhs }

// MulAdd implementation for the Algebra interface.
func (p DegreeAlgebra) MulAdd(lhs Degree, rhs Degree, acc Degree) Degree { return max(lhs+rhs, acc) }

// Sum implementation for the Algebra interface.
func (p DegreeAlgebra) Sum(vals ...Degree) Degree {
	var acc Degree
	//
	for _, v := range vals {
		acc = max(acc, v)
	}
	//
	return acc
}

// MaxDegree runs an evaluator over the degree algebra and returns the largest
// degree it emits.  Selector factors applied by the consumer are excluded;
// the bound is over the trace columns only.
func MaxDegree(width uint, pubs uint,
	eval func(Algebra[Degree], Frame[Degree], *Consumer[Degree])) uint {
	var (
		alg     DegreeAlgebra
		local   = make([]Degree, width)
		next    = make([]Degree, width)
		publics = make([]Degree, pubs)
	)
	//
	for i := range local {
		local[i] = 1
		next[i] = 1
	}
	//
	frame, err := NewFrame(local, next, publics, width, pubs)
	if err != nil {
		panic(err)
	}
	// With alpha zero, folding reduces to taking the maximum.
	consumer := NewConsumer[Degree](alg, []Degree{0}, 0, 0, 0)
	eval(alg, frame, consumer)
	//
	return uint(consumer.Accumulators()[0])
}
