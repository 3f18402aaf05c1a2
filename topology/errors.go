// SPDX-License-Identifier: MIT

package topology

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for topology construction and lookups.
var (
	// ErrSingularTopology indicates a network whose PTDF cannot be computed.
	ErrSingularTopology = errors.New("topology: singular topology")

	// ErrEmptyNetwork indicates an input without nodes.
	ErrEmptyNetwork = errors.New("topology: empty network")

	// ErrUnknownLine indicates a line ID that is not part of the topology.
	ErrUnknownLine = errors.New("topology: unknown line")

	// ErrUnknownNode indicates a node ID that is not part of the topology.
	ErrUnknownNode = errors.New("topology: unknown node")

	// ErrDimensionMismatch indicates an injection vector whose length differs from the node count.
	ErrDimensionMismatch = errors.New("topology: dimension mismatch")
)

// SingularTopologyError describes why a connected component could not be solved.
type SingularTopologyError struct {
	Component int      // position in Components()
	Nodes     []string // node IDs of the component
	Reason    string
}

func (e *SingularTopologyError) Error() string {
	return fmt.Sprintf("topology: component %d [%s]: %s", e.Component, strings.Join(e.Nodes, " "), e.Reason)
}

// Unwrap lets errors.Is match ErrSingularTopology.
func (e *SingularTopologyError) Unwrap() error { return ErrSingularTopology }

// topologyErrorf tags err with the operation name.
func topologyErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
