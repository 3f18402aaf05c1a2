// SPDX-License-Identifier: MIT

package gridrep

import (
	"github.com/katalvlaran/dcgrid/config"
	"github.com/katalvlaran/dcgrid/network"
)

// Representation is the common surface of the grid representation variants.
type Representation interface {
	// Kind is the grid type the representation was built for.
	Kind() config.GridType
	// Grid is the constraint table handed to the market model.
	Grid() *Table
	// RedispatchGrid is the nodal table used by the redispatch stage, or nil
	// when redispatch is not included.
	RedispatchGrid() *Table
}

// NodalRepresentation holds one basecase row per line over node columns.
type NodalRepresentation struct {
	grid       *Table
	redispatch *Table
}

// Kind implements Representation.
func (*NodalRepresentation) Kind() config.GridType { return config.GridNodal }

// Grid implements Representation.
func (r *NodalRepresentation) Grid() *Table { return r.grid }

// RedispatchGrid implements Representation.
func (r *NodalRepresentation) RedispatchGrid() *Table { return r.redispatch }

// Source tells where the N-1 rows of a CbcoRepresentation came from.
type Source string

// Contingency row sources.
const (
	SourceFull    Source = "full"
	SourcePrecalc Source = "precalc"
	SourceReduced Source = "reduced"
)

// CbcoRepresentation holds nodal basecase rows followed by N-1 rows.
type CbcoRepresentation struct {
	Option string // grid.cbco_option in effect
	Source Source

	grid       *Table
	redispatch *Table
}

// Kind implements Representation.
func (*CbcoRepresentation) Kind() config.GridType { return config.GridCBCONodal }

// Grid implements Representation.
func (r *CbcoRepresentation) Grid() *Table { return r.grid }

// RedispatchGrid implements Representation.
func (r *CbcoRepresentation) RedispatchGrid() *Table { return r.redispatch }

// ZonalRepresentation holds basecase rows over zone columns. For ntc it
// also carries the zone-to-zone exchange limits.
type ZonalRepresentation struct {
	Type config.GridType // zonal or ntc
	GSK  *GSKMatrix
	NTC  []network.NTC

	grid       *Table
	redispatch *Table
}

// Kind implements Representation.
func (r *ZonalRepresentation) Kind() config.GridType { return r.Type }

// Grid implements Representation.
func (r *ZonalRepresentation) Grid() *Table { return r.grid }

// RedispatchGrid implements Representation.
func (r *ZonalRepresentation) RedispatchGrid() *Table { return r.redispatch }
