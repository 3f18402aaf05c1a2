// SPDX-License-Identifier: MIT

// Package fbmc derives flow-based market coupling parameters from a
// basecase market result and projects them into two-dimensional
// trading domains.
//
// CreateFlowbasedParameters computes, for every timestep of the basecase and
// every critical branch / critical outage row of the cbco_nodal grid:
//
//	PTDF_z = PTDF · GSK               zonal sensitivities
//	F0     = F_ref - PTDF_z · NP_ref  flow at zero net positions
//	RAM±   = cap × mult ∓ F0          margin per flow direction
//
// floored at fbmc.minram × cap. Rows whose zonal sensitivities span less
// than fbmc.sensitivity (max - min) cannot be influenced by trade and are
// dropped.
//
// GenerateFlowbasedDomain moves two exchanges x[0]→x[1] and y[0]→y[1] while
// the net positions of all other zones stay at their basecase value, and
// clips the box ±fbmc.domain_limit with every constraint. The axis zones
// themselves are free: the origin means no exchange between them. The result
// is a convex polygon with counter-clockwise vertices.
package fbmc
