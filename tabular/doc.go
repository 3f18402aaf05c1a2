// SPDX-License-Identifier: MIT

// Package tabular reads and writes the header-addressed CSV tables exchanged
// with the data-loading collaborator, the external optimizer and the
// redundancy-removal tool.
//
// A Table keeps the header order of the file and resolves columns by name,
// so files produced by different tools (extra columns, reordered columns)
// can be consumed without positional assumptions.
//
// Errors:
//
//	ErrMissingColumn - a required column is absent from the header.
//	ErrBadNumber     - a cell could not be parsed as float64/bool.
//	ErrEmptyTable    - the file has no header row.
package tabular
