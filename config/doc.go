// SPDX-License-Identifier: MIT

// Package config defines the immutable Options value that drives grid
// representation, redispatch, flow-based and solver behaviour.
//
// Options are plain values: builders receive them as explicit arguments and
// never consult shared state. To change one setting for one call, derive a
// copy:
//
//	opts := config.Default().WithGridType(config.GridZonal).WithGSK(config.GSKGmax)
//
// Files are decoded by extension (.json, .yaml/.yml, .toml) on top of
// Default(), so a file only needs the keys it overrides. LoadOrDefault keeps
// the forgiving behaviour of falling back to defaults on a missing or broken
// file.
package config
