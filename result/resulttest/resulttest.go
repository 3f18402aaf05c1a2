// SPDX-License-Identifier: MIT

// Package resulttest builds market and redispatch results on
// networktest.Triangle.
//
// Market dispatches gA 100 / gB 50 at T1 and gA 80 at T2 (cost 2800),
// giving basecase flows (50/3, 200/3, 250/3) and (80/3, 80/3, 160/3).
// Redispatch moves 20 MW from gB to gA at T1.
package resulttest

import (
	"github.com/katalvlaran/dcgrid/network/networktest"
	"github.com/katalvlaran/dcgrid/result"
)

// Result names.
const (
	MarketName     = "market"
	RedispatchName = "market_redispatch"
)

// Uniform is the zonal energy-balance dual of both zones in Market.
const Uniform = 20.0

// MarketVariables returns the variables of the market result.
func MarketVariables() result.Variables {
	return result.Variables{
		result.VarG: {
			{Index: "gA", Timestep: networktest.T1, Value: 100},
			{Index: "gB", Timestep: networktest.T1, Value: 50},
			{Index: "gA", Timestep: networktest.T2, Value: 80},
		},
		result.VarEBZonal: {
			{Index: "Z1", Timestep: networktest.T1, Value: Uniform},
			{Index: "Z2", Timestep: networktest.T1, Value: Uniform},
			{Index: "Z1", Timestep: networktest.T2, Value: Uniform / 2},
			{Index: "Z2", Timestep: networktest.T2, Value: Uniform / 2},
		},
	}
}

// MarketAttributes returns the attributes of the market result.
func MarketAttributes() result.Attributes {
	return result.Attributes{
		Name:         MarketName,
		ModelHorizon: []string{networktest.T1, networktest.T2},
		Objective:    map[string]float64{"COST_G": 2800, result.ObjectiveValue: 2800},
	}
}

// RedispatchVariables returns the variables of the redispatch result.
func RedispatchVariables() result.Variables {
	return result.Variables{
		result.VarG: {
			{Index: "gA", Timestep: networktest.T1, Value: 120},
			{Index: "gB", Timestep: networktest.T1, Value: 30},
			{Index: "gA", Timestep: networktest.T2, Value: 80},
		},
	}
}

// RedispatchAttributes returns the attributes of the redispatch result.
func RedispatchAttributes() result.Attributes {
	ref := MarketName
	return result.Attributes{
		Name:                          RedispatchName,
		ModelHorizon:                  []string{networktest.T1, networktest.T2},
		Objective:                     map[string]float64{"COST_G": 2600, "COST_REDISPATCH": 40, result.ObjectiveValue: 2640},
		CorrespondingMarketResultName: &ref,
		IsRedispatchResult:            true,
	}
}
