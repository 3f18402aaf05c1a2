// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/dcgrid/config"
	"github.com/katalvlaran/dcgrid/contingency"
	"github.com/katalvlaran/dcgrid/gridrep"
	"github.com/katalvlaran/dcgrid/network"
	"github.com/katalvlaran/dcgrid/result"
	"github.com/katalvlaran/dcgrid/topology"
)

func newGridCmd(a *app) *cobra.Command {
	var out, gridType, gsk, precalcDir, work, committedFrom string
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Build the grid representation selected by grid.type",
		Long: `grid builds the representation selected by grid.type. With
--redispatch-from it instead writes the redispatch grid of the market result
in the given folder: every redispatch line per timestep with the capacity
left over by the committed market flows.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := withGrid(a.cfg, gridType, gsk)
			if err != nil {
				return err
			}
			data, topo, an, err := a.network()
			if err != nil {
				return err
			}
			b := a.gridBuilder(data, topo, an, cfg, precalcDir, work)
			if committedFrom != "" {
				mkt, err := result.Load(committedFrom, data, topo, result.WithLogger(a.log), result.WithOptions(cfg))
				if err != nil {
					return err
				}
				red, err := b.CreateRedispatch(cfg, mkt.CommittedFlows())
				if err != nil {
					return err
				}
				if out == "" {
					return red.WriteCSV(cmd.OutOrStdout())
				}
				if err = red.WriteFile(out); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "redispatch from %s: %d rows -> %s\n", mkt.Name(), red.Len(), out)
				return nil
			}
			rep, err := b.Create(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if out == "" {
				return rep.Grid().WriteCSV(cmd.OutOrStdout())
			}
			if err = rep.Grid().WriteFile(out); err != nil {
				return err
			}
			if red := rep.RedispatchGrid(); red != nil {
				path := strings.TrimSuffix(out, filepath.Ext(out)) + "_redispatch.csv"
				if err = red.WriteFile(path); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows -> %s\n", rep.Kind(), rep.Grid().Len(), out)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&out, "output", "o", "", "output file; stdout when empty")
	fs.StringVar(&precalcDir, "precalc-dir", "", "folder of grid.precalc_filename; the data folder when empty")
	fs.StringVar(&work, "work", "", "working folder of the reduction tool")
	fs.StringVar(&committedFrom, "redispatch-from", "", "market result folder whose committed flows bound the redispatch grid")
	addGridFlags(fs, &gridType, &gsk)

	return cmd
}

func (a *app) gridBuilder(data *network.Data, topo *topology.Topology, an *contingency.Analyzer, cfg config.Options, precalcDir, work string) *gridrep.Builder {
	return gridrep.NewBuilder(data, topo, an, a.gridOptions(cfg, precalcDir, work)...)
}

// gridOptions wires the precalc folder and, when solver.reduction_command is
// set, the external reduction tool.
func (a *app) gridOptions(cfg config.Options, precalcDir, work string) []gridrep.Option {
	if precalcDir == "" {
		precalcDir = a.dataPath
	}
	opts := []gridrep.Option{gridrep.WithLogger(a.log), gridrep.WithPrecalcDir(precalcDir)}
	if cfg.Solver.ReductionCommand != "" {
		if work == "" {
			work = filepath.Join(a.dataPath, "reduction")
		}
		opts = append(opts, gridrep.WithReducer(&contingency.ExternalReducer{
			Command: cfg.Solver.ReductionCommand,
			Args:    cfg.Solver.ReductionArgs,
			Dir:     work,
			Logger:  a.log,
		}))
	}

	return opts
}
