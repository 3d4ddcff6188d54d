// Package cmd implements the command-line interface of tgis. It provides a
// hierarchical command structure for extracting and managing space time raster
// datasets.
//
// The package is organized into several subpackages:
//
//   - extract: the extract command (subset of a dataset, optionally through r.mapcalc)
//   - strds: commands to manage datasets (create, remove, list, info, maps, register)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Global flags can also be set as environment variables with the prefix TGIS_
// (e.g. TGIS_DB_DSN), or in a .env / .env.local file in the working directory.
//
// See tgis -help for a list of all commands.
package cmd
