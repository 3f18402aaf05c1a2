// SPDX-License-Identifier: MIT

// Package gridrep assembles the grid representation handed to the market
// model. Every representation is a Table with the columns
//
//	[timestep,] cb, co, ram, <node or zone columns...>
//
// where co is "basecase" for N-0 rows and ram = capacity × multiplier
// (minus committed flow for redispatch tables).
//
// Variants by config.GridType:
//
//	nodal       *NodalRepresentation  one basecase row per line, node columns
//	cbco_nodal  *CbcoRepresentation   nodal rows plus N-1 rows (full, precalc or reduced)
//	zonal, ntc  *ZonalRepresentation  basecase rows with zonal PTDF = PTDF·GSK
//
// A precalculated contingency list (grid.precalc_filename) that cannot be
// read is logged as ErrStalePrecalc and replaced by the grid.cbco_option
// path; the fallback output equals the explicit one exactly.
//
// Builders only read their topology, analyzer and data inputs.
package gridrep
