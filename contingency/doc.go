// SPDX-License-Identifier: MIT

// Package contingency derives N-1 sensitivities from a topology.
//
// For lines l (monitored) and k (outaged) with base PTDF rows p_l, p_k and
// H = PTDF·Aᵀ,
//
//	LODF[l][k] = H[l][k] / (1 - H[k][k]),  LODF[k][k] = -1
//	p_l|k      = p_l + LODF[l][k]·p_k
//
// An outage whose 1 - H[k][k] is numerically zero splits the network (a
// radial line). Its rows are undefined: CreateN1PTDFCBCO reports
// ErrUndefinedOutage and FullSet marks them with CBCO.Undefined, leaving the
// caller to drop them or keep them as always-binding.
//
// FullSet enumerates every (monitored, outage) pair in parallel across
// outages; rows are assembled in a fixed order, so the result does not
// depend on scheduling.
//
// ReduceContingencies prepares the half-plane system A·x <= b of a set and
// delegates redundancy removal to a Reducer, typically an ExternalReducer
// running a separate tool through package job.
package contingency
