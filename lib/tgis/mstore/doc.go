// Package mstore implements an in-memory temporal metadata store based on the
// tgis.IStore interface. Data is stored entirely in memory and is not persisted
// between process restarts.
//
// Key Features:
//   - Pure in-memory storage without persistence
//   - Thread-safe maps for datasets, raster maps and registrations
//   - Selection predicates written in the same SQL-like syntax the SQL store accepts
//   - Deep copies on every read and write, so callers can never alias stored records
//
// Implementation Details:
//
//   - Predicates: The where string of RegisteredMaps is translated from the SQL-like
//     syntax used by the tools (=, <>, AND, OR, NOT) into an expression for the
//     govaluate evaluator. The variables of the expression are checked against the
//     known column names before evaluation, so a typo is an error instead of an
//     empty result. Absolute times are exposed as unix seconds of their wall clock
//     reading in the local time zone, which is how the evaluator interprets quoted
//     date literals such as '2010-01-02'. A map for which a referenced value is
//     undefined (e.g. min of a null map) does not match, as with SQL NULL.
//
//   - Normalization: Absolute times are reduced to their wall clock reading in UTC
//     with second precision, matching what the SQL store returns.
//
// Usage Example:
//
//	store := mstore.NewMemoryStore()
//	defer store.Close()
//
//	_ = store.InsertDataset(tgis.Dataset{ID: "precip@user1", TemporalType: tgis.TemporalAbsolute})
//	maps, err := store.RegisteredMaps("precip@user1", "start_time >= '2010-01-02'")
//
// Suitable Use Cases:
//
//	The memory store is ideal for:
//	- Unit tests of code that talks to a temporal database
//	- Embedding the temporal tools in programs that build datasets on the fly
//
// For anything that must survive the process, use the sqlstore package instead.
package mstore
