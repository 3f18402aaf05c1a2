// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/dcgrid/market"
)

func newMarketCmd(a *app) *cobra.Command {
	var (
		work, gridType, gsk string
		redispatch          bool
	)
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Run the external market model (solver.command) on the grid representation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := withGrid(a.cfg, gridType, gsk)
			if err != nil {
				return err
			}
			data, topo, an, err := a.network()
			if err != nil {
				return err
			}
			rep, err := a.gridBuilder(data, topo, an, cfg, "", filepath.Join(work, "reduction")).Create(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			m := &market.Model{Dir: work, Topology: topo, Analyzer: an, Logger: a.log}
			r, err := m.Run(cmd.Context(), rep, data, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "result %s written below %s\n", r.Name(), filepath.Join(work, market.ResultsDir))
			if err = report(cmd.OutOrStdout(), r, 1e-6); err != nil || !redispatch {
				return err
			}
			red, err := m.Redispatch(cmd.Context(), rep, r, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "result %s written below %s\n", red.Name(), filepath.Join(work, market.ResultsDir))
			return report(cmd.OutOrStdout(), red, 1e-6)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&work, "work", "run", "working folder of the run")
	fs.BoolVar(&redispatch, "redispatch", false, "run the redispatch stage on the committed flows of the market result")
	addGridFlags(fs, &gridType, &gsk)

	return cmd
}
