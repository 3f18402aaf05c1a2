// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/dcgrid/contingency"
	"github.com/katalvlaran/dcgrid/network"
	"github.com/katalvlaran/dcgrid/result"
	"github.com/katalvlaran/dcgrid/topology"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var tol float64
	cmd := &cobra.Command{
		Use:   "analyze <result folder>",
		Short: "Report overloads, energy balance, objective and redispatch of market results",
		Long: `analyze loads one result folder, or every result folder below the given
folder, and reports N-0 and N-1 overloads, the energy balance, the objective
breakdown and, for redispatch results, the change against the market result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, topo, an, err := a.network()
			if err != nil {
				return err
			}
			coll, err := a.results(args[0], data, topo, an)
			if err != nil {
				return err
			}
			for _, name := range coll.Names() {
				r, err := coll.Get(name)
				if err != nil {
					return err
				}
				if err = report(cmd.OutOrStdout(), r, tol); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&tol, "tolerance", 1e-6, "energy balance and objective tolerance")

	return cmd
}

// results loads dir as a single result folder or as a folder of results.
func (a *app) results(dir string, data *network.Data, topo *topology.Topology, an *contingency.Analyzer) (*result.Collection, error) {
	opts := []result.Option{result.WithLogger(a.log), result.WithOptions(a.cfg), result.WithAnalyzer(an)}
	if _, err := os.Stat(filepath.Join(dir, result.AttributesFile)); err == nil {
		r, err := result.Load(dir, data, topo, opts...)
		if err != nil {
			return nil, err
		}
		return result.NewCollection(r)
	}

	return result.LoadDir(dir, data, topo, opts...)
}

func report(w io.Writer, r *result.Result, tol float64) error {
	n0, err := r.OverloadedLinesN0()
	if err != nil {
		return err
	}
	n1, err := r.OverloadedLinesN1()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d timesteps, objective %g\n", r.Name(), len(r.Timesteps()), r.Attributes.Objective[result.ObjectiveValue])
	fmt.Fprintf(w, "  overloads: n-0 %d, n-1 %d\n", n0.Count(), n1.Count())
	for _, o := range n0.Lines {
		fmt.Fprintf(w, "    %s/%s: %d timesteps, max %.3f\n", o.CB, o.CO, o.Timesteps, o.MaxOverload)
	}
	fmt.Fprintf(w, "  energy balance: %s\n", status(r.CheckEnergyBalance(tol)))
	fmt.Fprintf(w, "  objective: %s\n", status(r.CheckObjective(tol)))

	if r.Attributes.IsRedispatchResult || r.Attributes.CorrespondingMarketResultName != nil {
		table, err := r.Redispatch()
		switch {
		case errors.Is(err, result.ErrMissingReferenceResult):
			fmt.Fprintf(w, "  redispatch: reference market result not loaded\n")
		case err != nil:
			return err
		default:
			delta, abs := table.Sum()
			fmt.Fprintf(w, "  redispatch against %s: delta %.3f, |delta| %.3f, cost %.3f\n", table.Reference, delta, abs, table.Cost)
		}
	}

	return nil
}

func status(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}
