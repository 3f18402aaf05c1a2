// SPDX-License-Identifier: MIT

// Package result wraps a completed market-model run and derives the
// physical quantities dcgrid checks it against.
//
// A Result is an immutable snapshot of solver variables (generation G,
// storage charging D_es / D_ps, curtailment CURT, infeasibility slacks,
// energy-balance duals EB_nodal / EB_zonal) and Attributes (name, model
// horizon, objective breakdown, reference market result). Derivations are
// computed on first request and memoized in the Result's Cache:
//
//	Raw -> N0Flow / N1Flow -> OverloadedLinesN0 / N1 -> Redispatch
//
// Repeated requests return the cached value itself, so derived tables and
// slices are shared and read-only. Callers that edit one work on a copy
// (the Clone methods, or slices.Clone for value slices). Nothing is
// recomputed implicitly; Cache().Clear drops entries explicitly.
//
// Redispatch resolves Attributes.CorrespondingMarketResultName through the
// Collection the result belongs to. Without a valid reference it returns
// (nil, ErrMissingReferenceResult).
//
// A Result, its Cache and a Collection are not safe for concurrent use.
package result
