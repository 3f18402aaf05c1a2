// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/katalvlaran/dcgrid/config"
	"github.com/katalvlaran/dcgrid/contingency"
	"github.com/katalvlaran/dcgrid/metrics"
	"github.com/katalvlaran/dcgrid/network"
	"github.com/katalvlaran/dcgrid/topology"
)

// app carries the persistent flags and what PersistentPreRunE derives from them.
type app struct {
	configPath  string
	dataPath    string
	logLevel    string
	logFormat   string
	metricsAddr string

	log     *slog.Logger
	cfg     config.Options
	metrics *http.Server
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "dcgrid",
		Short:         "Linearized DC power-flow sensitivities for market models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.teardown()
		},
	}
	fs := root.PersistentFlags()
	fs.StringVar(&a.configPath, "config", "", "options file (.json, .yaml, .toml); defaults when empty")
	fs.StringVar(&a.dataPath, "data", ".", "network data folder")
	fs.StringVar(&a.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&a.logFormat, "log-format", "text", "text or json")
	fs.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	root.AddCommand(
		newPTDFCmd(a),
		newGridCmd(a),
		newAnalyzeCmd(a),
		newDomainCmd(a),
		newMarketCmd(a),
	)

	return root
}

func (a *app) setup(w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	hopts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(a.logFormat) {
	case "text":
		a.log = slog.New(slog.NewTextHandler(w, hopts))
	case "json":
		a.log = slog.New(slog.NewJSONHandler(w, hopts))
	default:
		return fmt.Errorf("--log-format: unknown format %q", a.logFormat)
	}

	a.cfg = config.LoadOrDefault(a.configPath, a.log)

	if a.metricsAddr != "" {
		ln, err := net.Listen("tcp", a.metricsAddr)
		if err != nil {
			return fmt.Errorf("--metrics-addr: %w", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		a.metrics = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := a.metrics.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("metrics server", "err", err)
			}
		}()
		a.log.Info("serving metrics", "addr", ln.Addr().String())
	}

	return nil
}

func (a *app) teardown() error {
	if a.metrics == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return a.metrics.Shutdown(ctx)
}

// network loads the data folder and derives topology and contingency analyzer.
func (a *app) network() (*network.Data, *topology.Topology, *contingency.Analyzer, error) {
	data, err := network.Load(a.dataPath)
	if err != nil {
		return nil, nil, nil, err
	}
	topo, err := topology.CalculateParameters(data.Nodes, data.Lines, topology.WithLogger(a.log))
	if err != nil {
		return nil, nil, nil, err
	}
	an, err := contingency.NewAnalyzer(topo, contingency.WithWorkers(a.cfg.Solver.Workers), contingency.WithLogger(a.log))
	if err != nil {
		return nil, nil, nil, err
	}

	return data, topo, an, nil
}

// addGridFlags registers the grid overrides shared by grid, domain and market.
func addGridFlags(fs *pflag.FlagSet, gridType, gsk *string) {
	fs.StringVar(gridType, "type", "", "override grid.type (ntc, zonal, nodal, cbco_nodal)")
	fs.StringVar(gsk, "gsk", "", "override the gsk (flat, gmax)")
}

// withGrid applies the overrides of addGridFlags to cfg.
func withGrid(cfg config.Options, gridType, gsk string) (config.Options, error) {
	if gridType != "" {
		cfg = cfg.WithGridType(config.GridType(gridType))
	}
	if gsk != "" {
		cfg = cfg.WithGSK(config.GSK(gsk))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}
