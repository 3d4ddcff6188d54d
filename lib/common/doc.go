// Package common provides the configuration and logging shared by the tgis
// commands.
//
// Key Components:
//
//   - Config: the settings of a run (mapset, overwrite permission, temporal
//     database, raster engine binaries and output options). Its String method
//     renders a sectioned overview that the commands log at debug level, with
//     database passwords redacted.
//
//   - Logger: a custom implementation of dragonboat's logger.ILogger. All packages
//     obtain their logger through logger.GetLogger(name); InitLoggers installs the
//     factory and sets the level of every logger listed in Packages. Messages are
//     written to stderr as
//
//     2024/03/01 12:00:00 INFO  | extract    | message
package common
