// SPDX-License-Identifier: MIT

// Package dcgrid is a linearized (DC) power-flow sensitivity core for
// electricity market models: PTDF and LODF computation, N-1 contingency
// screening, grid representations for an external optimizer, result
// analytics and flow-based market coupling domains.
//
// 🚀 What is dcgrid?
//
//	A deterministic, explicitly configured library that brings together:
//		• Topology: incidence, susceptance and per-island PTDF via LU
//		• Contingencies: LODF, N-1 shift factors, concurrent enumeration
//		• Grid representations: nodal, cbco_nodal, zonal and ntc tables
//		• Result analytics: N-0/N-1 flows, overloads, redispatch, prices
//		• Flow-based: RAM with minRAM floor, 2D domains by convex clipping
//		• Jobs: external optimizer and reduction tool as joinable handles
//
// Under the hood, everything is organized in flat packages:
//
//	network/      nodes, lines, plants, demand, NTC; CSV loader
//	topology/     incidence, B matrix, PTDF, SingularTopologyError
//	contingency/  LODF, N-1 rows, half-plane reduction
//	gridrep/      Nodal/Cbco/Zonal representations, GSK, precalc
//	result/       market results, explicit derivation cache, collections
//	fbmc/         flow-based parameters and domains
//	market/       market model run directory and job
//	job/          external process lifecycle
//	config/       immutable options (json, yaml, toml)
//	tabular/      header-indexed CSV tables
//	metrics/      Prometheus collectors
//
// Quick ASCII example:
//
//	    A ──l1── B
//	     \      /
//	     l3    l2
//	       \  /
//	        C
//
// With unit reactances and A as slack, one MW injected at B and withdrawn
// at A flows 2/3 over l1 and 1/3 over l2 and l3.
//
//	go install github.com/katalvlaran/dcgrid/cmd/dcgrid@latest
package dcgrid
