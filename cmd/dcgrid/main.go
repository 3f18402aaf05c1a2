// SPDX-License-Identifier: MIT

// Command dcgrid computes DC power-flow sensitivities, grid representations
// and flow-based domains, and analyzes market model results.
//
//	dcgrid ptdf    --data ./case            write the PTDF matrix
//	dcgrid grid    --data ./case -o grid.csv
//	dcgrid analyze --data ./case ./results  overloads, balance, redispatch
//	dcgrid domain  --data ./case ./results/base --x DE,FR --y DE,NL --timestep t0001
//	dcgrid market  --data ./case --config run.yaml --work ./run
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dcgrid:", err)
		os.Exit(1)
	}
}
