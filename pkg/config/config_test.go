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
package config

import "testing"

func Test_Config_DefaultValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default configuration rejected: %v", err)
	}
}

func Test_Config_RejectZeroChallenges(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GrandProductChallenges = 0
	//
	if cfg.Validate() == nil {
		t.Error("zero challenge sets accepted")
	}
	//
	cfg = DefaultConfig()
	cfg.Alphas = 0
	//
	if cfg.Validate() == nil {
		t.Error("zero alphas accepted")
	}
}

func Test_Config_RejectInsufficientRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateBits = 0
	cfg.MaxConstraintDegree = 4
	//
	if cfg.Validate() == nil {
		t.Error("rate too small for declared degree accepted")
	}
}

func Test_Config_CheckDegree(t *testing.T) {
	cfg := DefaultConfig()
	//
	if err := cfg.CheckDegree("cpu", 3); err != nil {
		t.Errorf("in-bound degree rejected: %v", err)
	}
	//
	if cfg.CheckDegree("cpu", 4) == nil {
		t.Error("out-of-bound degree accepted")
	}
}
