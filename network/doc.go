// SPDX-License-Identifier: MIT

// Package network holds the node, line and plant tables the rest of dcgrid
// computes on, together with the small amount of input handling the core
// needs: validation, island detection and a CSV folder loader.
//
// Tables:
//
//	nodes.csv     index, zone, slack[, demand]
//	lines.csv     index, node_i, node_j, x_pu, capacity, contingency
//	plants.csv    index, node, g_max[, mc_el, plant_type]     (optional)
//	demand_el.csv timestep, node, demand_el                   (optional)
//	ntc.csv       zone_i, zone_j, ntc                         (optional)
//
// Invariants enforced by Validate:
//
//   - every ID is non-empty and unique within its table;
//   - every line endpoint and plant node references an existing node;
//   - reactance x_pu > 0, capacity >= 0, node_i != node_j.
//
// Errors:
//
//	ErrInvalidTable           - a record violates a field constraint.
//	ErrUnknownNode            - a reference to a node that does not exist.
//	ErrDuplicateID            - an ID appears twice in one table.
//	ErrInputNotFound          - the input path does not exist.
//	ErrUnsupportedInputFormat - the input is not a CSV folder.
package network
