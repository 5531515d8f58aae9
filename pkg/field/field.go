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
package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/field/goldilocks"
)

// Element is the prime field element all traces and constraints are computed
// over.  This is the Goldilocks field, i.e. integers modulo 2^64 - 2^32 + 1.
type Element = goldilocks.Element

// TwoAdicity is the largest k such that 2^k divides the multiplicative group
// order.  Trace heights are powers of two and, hence, cannot exceed 2^k.
const TwoAdicity = 32

// MultiplicativeGenerator generates the full multiplicative group of the
// Goldilocks field.
const MultiplicativeGenerator uint64 = 7

// New constructs a field element from a given unsigned value.
func New(val uint64) Element {
	var elem Element
	//
	elem.SetUint64(val)
	//
	return elem
}

// Zero returns the additive identity.
func Zero() Element {
	var elem Element
	return elem
}

// One returns the multiplicative identity.
func One() Element {
	var elem Element
	//
	elem.SetOne()
	//
	return elem
}

// Add returns lhs + rhs without mutating either operand.
func Add(lhs Element, rhs Element) Element {
	var elem Element
	//
	elem.Add(&lhs, &rhs)
	//
	return elem
}

// Sub returns lhs - rhs without mutating either operand.
func Sub(lhs Element, rhs Element) Element {
	var elem Element
	//
	elem.Sub(&lhs, &rhs)
	//
	return elem
}

// Mul returns lhs * rhs without mutating either operand.
func Mul(lhs Element, rhs Element) Element {
	var elem Element
	//
	elem.Mul(&lhs, &rhs)
	//
	return elem
}

// Neg returns the additive inverse of a given element.
func Neg(val Element) Element {
	var elem Element
	//
	elem.Neg(&val)
	//
	return elem
}

// Inverse returns the multiplicative inverse of a given element, or zero when
// the element itself is zero.
func Inverse(val Element) Element {
	var elem Element
	//
	elem.Inverse(&val)
	//
	return elem
}

// Powers returns the first n powers of a given base, beginning with base^0.
func Powers(base Element, n uint) []Element {
	var (
		pows = make([]Element, n)
		acc  = One()
	)
	//
	for i := uint(0); i < n; i++ {
		pows[i] = acc
		acc.Mul(&acc, &base)
	}
	//
	return pows
}

// BatchInverse inverts all given elements at once, sharing a single field
// inversion.  Zero elements are mapped to zero.
func BatchInverse(elems []Element) []Element {
	return goldilocks.BatchInvert(elems)
}

// RootOfUnity returns a primitive 2^logN root of unity, i.e. the generator of
// the trace-domain subgroup of size 2^logN.  Panics when logN exceeds the
// two-adicity of the field.
func RootOfUnity(logN uint) Element {
	if logN > TwoAdicity {
		panic("subgroup size exceeds field two-adicity")
	}
	//
	var (
		gen      = New(MultiplicativeGenerator)
		root     Element
		exponent big.Int
	)
	// Compute (p - 1) / 2^logN
	exponent.Sub(goldilocks.Modulus(), big.NewInt(1))
	exponent.Rsh(&exponent, logN)
	//
	root.Exp(gen, &exponent)
	//
	return root
}

// Rand samples a uniformly random field element.  Only used for challenge
// sampling in tests; the transcript supplies challenges during proving.
func Rand() Element {
	var elem Element
	//
	if _, err := elem.SetRandom(); err != nil {
		panic(err)
	}
	//
	return elem
}
