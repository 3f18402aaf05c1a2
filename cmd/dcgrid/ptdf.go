// SPDX-License-Identifier: MIT

package main

import (
	"github.com/spf13/cobra"

	"github.com/katalvlaran/dcgrid/tabular"
)

func newPTDFCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "ptdf",
		Short: "Write the base-case PTDF matrix (lines × nodes)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, topo, _, err := a.network()
			if err != nil {
				return err
			}
			t := tabular.New(append([]string{"line"}, topo.NodeIDs()...)...)
			for l, id := range topo.LineIDs() {
				rec := make([]string, 0, topo.NumNodes()+1)
				rec = append(rec, id)
				for n := 0; n < topo.NumNodes(); n++ {
					rec = append(rec, tabular.FormatFloat(topo.PTDFAt(l, n)))
				}
				t.Append(rec...)
			}
			if out == "" {
				return t.Write(cmd.OutOrStdout())
			}
			return t.WriteFile(out)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file; stdout when empty")

	return cmd
}
