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

	"github.com/multistark/go-multistark/pkg/field"
	"github.com/multistark/go-multistark/pkg/tables"
	"github.com/multistark/go-multistark/pkg/vanishing"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [flags] program_file",
	Short: "Generate the traces of a program and check them row by row.",
	Long: `Generate the traces of a program and check each against its table's
	own constraints, reporting the first violated constraint.  Programs are
	given as JSON files.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		var (
			params  = machineParams(cmd)
			program = readProgramFile(args[0])
		)
		//
		traces, err := tables.Generate(params, program)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		machine := tables.NewMachine[field.Element](params, traces[tables.TableMemory].Height())
		failed := false
		//
		for id, table := range machine.Tables() {
			log.Debugf("table %s: %d columns x %d rows", table.Name(),
				traces[id].Width(), traces[id].Height())
			//
			if err := vanishing.SelfCheck(table.Name(), traces[id], nil, table.Eval); err != nil {
				fmt.Println(err)
				//
				failed = true
			}
		}
		//
		if failed {
			os.Exit(2)
		}
		//
		fmt.Printf("OK (%d instructions)\n", len(program))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
