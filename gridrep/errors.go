// SPDX-License-Identifier: MIT

package gridrep

import "errors"

// Sentinel errors for representation building.
var (
	// ErrStalePrecalc indicates a precalculated contingency file that is
	// missing, unreadable or refers to unknown lines. It is logged, never returned.
	ErrStalePrecalc = errors.New("gridrep: stale precalculated contingency file")

	// ErrUnsupportedGridType indicates a grid type the builder does not know.
	ErrUnsupportedGridType = errors.New("gridrep: unsupported grid type")

	// ErrMalformedTable indicates a representation file that does not follow the schema.
	ErrMalformedTable = errors.New("gridrep: malformed table")

	// ErrNoAnalyzer indicates a cbco_nodal request on a builder without a contingency analyzer.
	ErrNoAnalyzer = errors.New("gridrep: no contingency analyzer")

	// ErrMissingZone indicates a node whose zone is not in the GSK.
	ErrMissingZone = errors.New("gridrep: missing zone")
)
