// Package raster wraps the external raster engine used by the temporal tools.
//
// The engine is accessed through the IExecutor interface:
//
//	MapCalc  evaluates "name = expression" (r.mapcalc)
//	Info     reports extent, resolution and value range of a raster (r.info -g -r)
//
// NewGRASSExecutor returns the implementation running the GRASS modules as child
// processes. The processes inherit the GRASS session from the environment, so the
// tools must be started from within a GRASS shell (or with GISRC/GISBASE set).
// Failures include the exit code and stderr of the module.
//
// ParseInfo is exported so that other callers (and tests) can turn r.info output
// into an Info without running the module.
package raster
