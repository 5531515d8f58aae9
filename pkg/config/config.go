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

// Package config holds the soundness parameters of a proof session.  These
// are validated eagerly at setup, since a misconfiguration here weakens the
// resulting proof without any visible symptom.
package config

import "fmt"

// Config fixes the soundness parameters for one proof session.
type Config struct {
	// GrandProductChallenges is the number of independent (beta, gamma)
	// challenge sets drawn for permutation and lookup arguments.  Each set
	// yields an independent accumulator column, multiplying the soundness
	// error.
	GrandProductChallenges uint
	// Alphas is the number of independent combination challenges used when
	// folding a table's constraints into its vanishing polynomial.
	Alphas uint
	// RateBits is the log2 blowup applied by the low-degree extension before
	// commitment.
	RateBits uint
	// MaxConstraintDegree bounds the degree of any constraint emitted by any
	// table in the session.
	MaxConstraintDegree uint
}

// DefaultConfig returns parameters giving roughly 100 bits of soundness with
// a degree-3 constraint system.
func DefaultConfig() Config {
	return Config{
		GrandProductChallenges: 2,
		Alphas:                 2,
		RateBits:               1,
		MaxConstraintDegree:    3,
	}
}

// Validate rejects parameter combinations which would silently weaken the
// proof.
func (p Config) Validate() error {
	if p.GrandProductChallenges == 0 {
		return fmt.Errorf("at least one grand-product challenge set required")
	} else if p.Alphas == 0 {
		return fmt.Errorf("at least one combination challenge required")
	} else if p.MaxConstraintDegree < 2 {
		return fmt.Errorf("constraint degree bound %d below minimum 2", p.MaxConstraintDegree)
	} else if p.MaxConstraintDegree-1 > (1 << p.RateBits) {
		return fmt.Errorf("rate 2^%d cannot accommodate quotient of degree-%d constraints",
			p.RateBits, p.MaxConstraintDegree)
	}
	//
	return nil
}

// CheckDegree rejects a table whose declared constraint degree exceeds the
// session bound.
func (p Config) CheckDegree(table string, degree uint) error {
	if degree > p.MaxConstraintDegree {
		return fmt.Errorf("table %s declares constraint degree %d, session bound is %d",
			table, degree, p.MaxConstraintDegree)
	}
	//
	return nil
}
