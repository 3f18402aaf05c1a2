// SPDX-License-Identifier: MIT

// Package topology builds the linear DC power-flow sensitivities of a network.
//
// CalculateParameters assembles, for L lines and N nodes:
//
//	A      L×N incidence, +1 at node_i and -1 at node_j of every line
//	b      line susceptances 1/x_pu
//	B      bus susceptance Aᵀ·diag(b)·A
//	PTDF   diag(b)·A_red·B_red⁻¹ per connected component
//
// where _red drops the slack node of each component. The PTDF keeps one
// column per node; slack columns are identically zero, so a row can be
// applied directly to a full nodal injection vector.
//
// Each component is solved on its own LU factorization (gonum/mat). A
// component without a slack, or whose reduced susceptance matrix is
// singular or ill-conditioned, fails the whole computation with a
// *SingularTopologyError (errors.Is(err, ErrSingularTopology)).
//
// A Topology is immutable. It does not track changes to the tables it was
// built from; callers rebuild it when nodes or lines change.
package topology
