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
package cmd

import (
	"fmt"
	"os"

	"github.com/multistark/go-multistark/pkg/tables"
	"github.com/spf13/cobra"
)

// Get an expected flag, or panic if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Get an expected uint flag, or panic if an error arises.
func getUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Parse a program file given in JSON form.
func readProgramFile(filename string) tables.Program {
	bytes, err := os.ReadFile(filename)
	if err == nil {
		var program tables.Program
		//
		if program, err = tables.ParseJsonProgram(bytes); err == nil {
			return program
		}
	}
	// Handle error
	fmt.Println(err)
	os.Exit(2)
	// unreachable
	return nil
}

// Assemble the machine parameters from the persistent flags.
func machineParams(cmd *cobra.Command) tables.Params {
	params := tables.Params{LimbBits: getUint(cmd, "limb-bits")}
	//
	if err := params.Validate(); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return params
}
