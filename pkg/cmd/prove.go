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
	"time"

	"github.com/multistark/go-multistark/pkg/config"
	"github.com/multistark/go-multistark/pkg/prover"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// proveCmd represents the prove command
var proveCmd = &cobra.Command{
	Use:   "prove [flags] program_file",
	Short: "Run a full proof session over a program.",
	Long: `Run a full proof session over a program: trace generation,
	challenge derivation, accumulator construction and the final product and
	vanishing checks.  Programs are given as JSON files.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		cfg := config.Config{
			GrandProductChallenges: getUint(cmd, "challenges"),
			Alphas:                 getUint(cmd, "alphas"),
			RateBits:               getUint(cmd, "rate-bits"),
			MaxConstraintDegree:    getUint(cmd, "max-degree"),
		}
		//
		var (
			params  = machineParams(cmd)
			program = readProgramFile(args[0])
			debug   = getFlag(cmd, "debug")
			start   = time.Now()
		)
		//
		session, err := prover.Prove(cfg, params, program, debug)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		for id := range session.Traces {
			tr := session.Traces[id]
			log.Debugf("table %d: %d core + %d accumulator columns x %d rows",
				id, tr.CoreWidth(), tr.Width()-tr.CoreWidth(), tr.Height())
		}
		//
		fmt.Printf("OK (%d instructions, %s)\n", len(program), time.Since(start))
	},
}

func init() {
	rootCmd.AddCommand(proveCmd)
	proveCmd.Flags().Uint("challenges", 2, "number of grand-product challenge sets")
	proveCmd.Flags().Uint("alphas", 2, "number of combination challenges")
	proveCmd.Flags().Uint("rate-bits", 1, "log2 blowup of the low-degree extension")
	proveCmd.Flags().Uint("max-degree", 3, "constraint degree bound")
	proveCmd.Flags().Bool("debug", false, "check traces row by row before proving")
}
