// SPDX-License-Identifier: MIT

package network

import "errors"

// Sentinel errors for input tables.
var (
	// ErrInvalidTable indicates a record that violates a field constraint.
	ErrInvalidTable = errors.New("network: invalid table")

	// ErrUnknownNode indicates a reference to a node ID that is not in the node table.
	ErrUnknownNode = errors.New("network: unknown node")

	// ErrDuplicateID indicates an ID used twice within one table.
	ErrDuplicateID = errors.New("network: duplicate id")

	// ErrInputNotFound indicates the input path does not exist.
	ErrInputNotFound = errors.New("network: input not found")

	// ErrUnsupportedInputFormat indicates an input the loader cannot read.
	ErrUnsupportedInputFormat = errors.New("network: unsupported input format")
)
