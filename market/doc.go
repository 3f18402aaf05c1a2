// SPDX-License-Identifier: MIT

// Package market hands a grid representation to the external market model
// and reads its result back.
//
// A run lays out its working directory as
//
//	<dir>/data/        nodes.csv, lines.csv, plants.csv, demand.csv, ntc.csv
//	<dir>/data/grid.csv             the representation table
//	<dir>/data/redispatch_grid.csv  when redispatch is included
//	<dir>/data/options.json
//	<dir>/results/<name>/           written by the model
//
// and invokes solver.command solver.args... <data dir> <results dir>. The
// model must write at least one result folder holding result_attributes.json;
// folders older than the run are ignored.
package market
