// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// GridType selects the grid representation handed to the market model.
type GridType string

// Grid representation types.
const (
	GridNTC       GridType = "ntc"
	GridZonal     GridType = "zonal"
	GridNodal     GridType = "nodal"
	GridCBCONodal GridType = "cbco_nodal"
)

// GSK selects the generation shift key used to aggregate nodal PTDFs to zones.
type GSK string

// Generation shift keys.
const (
	GSKFlat GSK = "flat"
	GSKGmax GSK = "gmax"
)

// CBCOFull disables contingency reduction.
const CBCOFull = "full"

// Policies for outages whose LODF is undefined (radial lines).
const (
	UndefinedDrop = "drop"
	UndefinedKeep = "keep"
)

// ErrInvalidOptions wraps every validation failure.
var ErrInvalidOptions = errors.New("config: invalid options")

// Grid configures the grid representation.
type Grid struct {
	Type               GridType `json:"type" yaml:"type" toml:"type" validate:"oneof=ntc zonal nodal cbco_nodal"`
	CapacityMultiplier float64  `json:"capacity_multiplier" yaml:"capacity_multiplier" toml:"capacity_multiplier" validate:"gt=0"`
	GSK                GSK      `json:"gsk" yaml:"gsk" toml:"gsk" validate:"oneof=flat gmax"`
	CBCOOption         string   `json:"cbco_option" yaml:"cbco_option" toml:"cbco_option" validate:"required"`
	PrecalcFilename    string   `json:"precalc_filename" yaml:"precalc_filename" toml:"precalc_filename"`
	LODFSensitivity    float64  `json:"lodf_sensitivity" yaml:"lodf_sensitivity" toml:"lodf_sensitivity" validate:"gte=0"`
	UndefinedOutages   string   `json:"undefined_outages" yaml:"undefined_outages" toml:"undefined_outages" validate:"oneof=drop keep"`
	OverloadTolerance  float64  `json:"overload_tolerance" yaml:"overload_tolerance" toml:"overload_tolerance" validate:"gte=0"`
}

// Redispatch configures the redispatch stage.
type Redispatch struct {
	Include         bool     `json:"include" yaml:"include" toml:"include"`
	ZonalRedispatch bool     `json:"zonal_redispatch" yaml:"zonal_redispatch" toml:"zonal_redispatch"`
	Zones           []string `json:"zones" yaml:"zones" toml:"zones"`
	Cost            float64  `json:"cost" yaml:"cost" toml:"cost" validate:"gte=0"`
}

// FBMC configures flow-based parameter and domain construction.
type FBMC struct {
	MinRAM      float64 `json:"minram" yaml:"minram" toml:"minram" validate:"gte=0,lte=1"`
	Sensitivity float64 `json:"sensitivity" yaml:"sensitivity" toml:"sensitivity" validate:"gte=0"`
	GSK         GSK     `json:"gsk" yaml:"gsk" toml:"gsk" validate:"oneof=flat gmax"`
	DomainLimit float64 `json:"domain_limit" yaml:"domain_limit" toml:"domain_limit" validate:"gt=0"`
}

// Solver configures the external optimizer and redundancy-removal processes.
type Solver struct {
	Command          string   `json:"command" yaml:"command" toml:"command"`
	Args             []string `json:"args" yaml:"args" toml:"args"`
	ReductionCommand string   `json:"reduction_command" yaml:"reduction_command" toml:"reduction_command"`
	ReductionArgs    []string `json:"reduction_args" yaml:"reduction_args" toml:"reduction_args"`
	Workers          int      `json:"workers" yaml:"workers" toml:"workers" validate:"gte=0"`
}

// Options is the complete configuration value.
type Options struct {
	Title      string     `json:"title" yaml:"title" toml:"title"`
	Grid       Grid       `json:"grid" yaml:"grid" toml:"grid"`
	Redispatch Redispatch `json:"redispatch" yaml:"redispatch" toml:"redispatch"`
	FBMC       FBMC       `json:"fbmc" yaml:"fbmc" toml:"fbmc"`
	Solver     Solver     `json:"solver" yaml:"solver" toml:"solver"`
}

// Default returns the baseline options every file is overlaid on.
func Default() Options {
	return Options{
		Title: "default",
		Grid: Grid{
			Type:               GridNodal,
			CapacityMultiplier: 1,
			GSK:                GSKGmax,
			CBCOOption:         CBCOFull,
			UndefinedOutages:   UndefinedDrop,
			OverloadTolerance:  1e-3,
		},
		Redispatch: Redispatch{Cost: 1},
		FBMC: FBMC{
			MinRAM:      0.2,
			Sensitivity: 5e-2,
			GSK:         GSKGmax,
			DomainLimit: 1e5,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every tagged constraint.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	return nil
}

// WithGridType returns a copy of o using grid type t.
func (o Options) WithGridType(t GridType) Options {
	o.Grid.Type = t
	return o
}

// WithGSK returns a copy of o using GSK g for the grid representation.
func (o Options) WithGSK(g GSK) Options {
	o.Grid.GSK = g
	return o
}

// WithCBCOOption returns a copy of o using the contingency reduction option opt.
func (o Options) WithCBCOOption(opt string) Options {
	o.Grid.CBCOOption = opt
	return o
}

// WithPrecalcFilename returns a copy of o naming a precalculated contingency file.
func (o Options) WithPrecalcFilename(name string) Options {
	o.Grid.PrecalcFilename = name
	return o
}

// WithCapacityMultiplier returns a copy of o scaling thermal limits by m.
func (o Options) WithCapacityMultiplier(m float64) Options {
	o.Grid.CapacityMultiplier = m
	return o
}

// WithRedispatch returns a copy of o with redispatch.include set to include.
func (o Options) WithRedispatch(include bool) Options {
	o.Redispatch.Include = include
	return o
}

// Clone returns a deep copy; slices are not shared with o.
func (o Options) Clone() Options {
	o.Redispatch.Zones = append([]string(nil), o.Redispatch.Zones...)
	o.Solver.Args = append([]string(nil), o.Solver.Args...)
	o.Solver.ReductionArgs = append([]string(nil), o.Solver.ReductionArgs...)

	return o
}
