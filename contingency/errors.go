// SPDX-License-Identifier: MIT

package contingency

import (
	"errors"
	"fmt"
)

// Sentinel errors for contingency analysis.
var (
	// ErrUndefinedOutage indicates an outage that islands part of the network.
	ErrUndefinedOutage = errors.New("contingency: undefined outage")

	// ErrUnknownLine indicates a line ID that is not in the topology.
	ErrUnknownLine = errors.New("contingency: unknown line")

	// ErrNilTopology indicates NewAnalyzer was called without a topology.
	ErrNilTopology = errors.New("contingency: nil topology")

	// ErrNoReducer indicates a reduction option other than "full" without a Reducer.
	ErrNoReducer = errors.New("contingency: no reducer configured")

	// ErrBadIndex indicates a reducer returned a row index outside the system.
	ErrBadIndex = errors.New("contingency: reducer index out of range")
)

func contingencyErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
