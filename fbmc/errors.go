// SPDX-License-Identifier: MIT

package fbmc

import "errors"

var (
	// ErrNoBasecase indicates parameters requested without a basecase result.
	ErrNoBasecase = errors.New("fbmc: missing basecase result")

	// ErrUnknownZone indicates a domain axis naming a zone without parameters.
	ErrUnknownZone = errors.New("fbmc: unknown zone")

	// ErrUnknownTimestep indicates a domain for a timestep without parameters.
	ErrUnknownTimestep = errors.New("fbmc: unknown timestep")

	// ErrEmptyDomain indicates constraints whose intersection is empty.
	ErrEmptyDomain = errors.New("fbmc: empty domain")

	// ErrDegenerateAxis indicates an exchange from a zone to itself.
	ErrDegenerateAxis = errors.New("fbmc: degenerate domain axis")
)
