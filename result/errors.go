// SPDX-License-Identifier: MIT

package result

import "errors"

// Sentinel errors for result handling.
var (
	// ErrMissingReferenceResult indicates a redispatch request without a
	// loaded, valid reference market result.
	ErrMissingReferenceResult = errors.New("result: missing reference market result")

	// ErrMalformedResult indicates a result folder that does not follow the schema.
	ErrMalformedResult = errors.New("result: malformed result")

	// ErrMissingInput indicates a result built without network data or topology.
	ErrMissingInput = errors.New("result: missing network input")

	// ErrNoAnalyzer indicates an N-1 derivation on a result without a contingency analyzer.
	ErrNoAnalyzer = errors.New("result: no contingency analyzer")

	// ErrUnknownTimestep indicates a timestep outside the model horizon.
	ErrUnknownTimestep = errors.New("result: unknown timestep")

	// ErrEnergyBalance indicates a timestep whose generation and demand do not balance.
	ErrEnergyBalance = errors.New("result: energy balance violated")

	// ErrObjectiveMismatch indicates an objective that differs from the sum of its components.
	ErrObjectiveMismatch = errors.New("result: objective does not match cost components")

	// ErrDuplicateResult indicates a collection already holding a result of that name.
	ErrDuplicateResult = errors.New("result: duplicate result name")

	// ErrUnknownResult indicates a collection lookup for a name it does not hold.
	ErrUnknownResult = errors.New("result: unknown result")
)
