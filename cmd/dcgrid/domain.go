// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/dcgrid/config"
	"github.com/katalvlaran/dcgrid/fbmc"
	"github.com/katalvlaran/dcgrid/result"
	"github.com/katalvlaran/dcgrid/tabular"
)

func newDomainCmd(a *app) *cobra.Command {
	var (
		x, y, timestep, gsk, out string
		precalcDir, work         string
		zeroBase                 bool
	)
	cmd := &cobra.Command{
		Use:   "domain <basecase result folder>",
		Short: "Compute the flow-based domain of two exchanges at one timestep",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			xs, err := zonePair("x", x)
			if err != nil {
				return err
			}
			ys, err := zonePair("y", y)
			if err != nil {
				return err
			}
			data, topo, an, err := a.network()
			if err != nil {
				return err
			}
			basecase, err := result.Load(args[0], data, topo,
				result.WithLogger(a.log), result.WithOptions(a.cfg), result.WithAnalyzer(an))
			if err != nil {
				return err
			}
			b := fbmc.NewBuilder(data, topo, an, fbmc.WithLogger(a.log), fbmc.WithGridOptions(a.gridOptions(a.cfg, precalcDir, work)...))
			params, err := b.CreateFlowbasedParameters(cmd.Context(), a.cfg, basecase, config.GSK(gsk))
			if err != nil {
				return err
			}
			if timestep == "" && len(params.Timesteps) > 0 {
				timestep = params.Timesteps[0]
			}
			var opts []fbmc.DomainOption
			if zeroBase {
				opts = append(opts, fbmc.WithZeroBase())
			}
			d, err := params.GenerateFlowbasedDomain(xs, ys, timestep, opts...)
			if err != nil {
				return err
			}

			t := tabular.New("x", "y")
			for _, v := range d.Vertices {
				t.Append(tabular.FormatFloat(v.X), tabular.FormatFloat(v.Y))
			}
			if out == "" {
				if err = t.Write(cmd.OutOrStdout()); err != nil {
					return err
				}
			} else if err = t.WriteFile(out); err != nil {
				return err
			}
			w := cmd.ErrOrStderr()
			fmt.Fprintf(w, "%s→%s / %s→%s at %s: %d vertices, area %g\n", xs[0], xs[1], ys[0], ys[1], timestep, len(d.Vertices), d.Area())
			for _, info := range d.Info() {
				fmt.Fprintf(w, "  %s/%s %s ram %.3f: %.4f·x %+.4f·y <= %.3f\n", info.CB, info.CO, info.Direction, info.RAM, info.A, info.B, info.C)
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&x, "x", "", "exchange on the x axis, as from,to")
	fs.StringVar(&y, "y", "", "exchange on the y axis, as from,to")
	fs.StringVar(&timestep, "timestep", "", "timestep; the first of the model horizon when empty")
	fs.StringVar(&gsk, "gsk", "", "gsk (flat, gmax); fbmc.gsk when empty")
	fs.BoolVar(&zeroBase, "zero-base", false, "hold the other net positions at zero instead of the basecase")
	fs.StringVarP(&out, "output", "o", "", "vertex file; stdout when empty")
	fs.StringVar(&precalcDir, "precalc-dir", "", "folder of grid.precalc_filename; the data folder when empty")
	fs.StringVar(&work, "work", "", "working folder of the reduction tool")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")

	return cmd
}

func zonePair(flag, v string) ([2]string, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return [2]string{}, fmt.Errorf("--%s: want from,to, got %q", flag, v)
	}

	return [2]string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])}, nil
}
