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
	"testing"
)

func Test_Field_Powers(t *testing.T) {
	pows := Powers(New(3), 5)
	expected := []uint64{1, 3, 9, 27, 81}
	//
	for i, p := range pows {
		if p != New(expected[i]) {
			t.Errorf("power %d: got %s, expected %d", i, p.String(), expected[i])
		}
	}
}

func Test_Field_BatchInverse(t *testing.T) {
	elems := []Element{New(2), New(5), Zero(), New(7)}
	invs := BatchInverse(elems)
	//
	for i, x := range elems {
		inv := invs[i]
		//
		if x.IsZero() {
			if !inv.IsZero() {
				t.Errorf("inverse of zero should be zero")
			}
			//
			continue
		}
		//
		prod := Mul(x, inv)
		if !prod.IsOne() {
			t.Errorf("element %d: x * x^-1 != 1", i)
		}
	}
}

func Test_Field_RootOfUnity_01(t *testing.T) {
	// Order-one subgroup is generated by 1.
	if RootOfUnity(0) != One() {
		t.Errorf("2^0 root of unity must be one")
	}
}

func Test_Field_RootOfUnity_02(t *testing.T) {
	// Order-two subgroup is generated by -1.
	root := RootOfUnity(1)
	if Mul(root, root) != One() || root == One() {
		t.Errorf("2^1 root of unity must have order two")
	}
}

func Test_Field_RootOfUnity_03(t *testing.T) {
	// Check g^(2^4) = 1 and g^(2^3) != 1 for the order-16 generator.
	var (
		root = RootOfUnity(4)
		acc  = root
	)
	//
	for i := 0; i < 3; i++ {
		acc = Mul(acc, acc)
	}
	// acc = root^8
	if acc == One() {
		t.Errorf("2^4 root of unity has order dividing 8")
	}
	//
	acc = Mul(acc, acc)
	//
	if acc != One() {
		t.Errorf("2^4 root of unity does not have order 16")
	}
}
