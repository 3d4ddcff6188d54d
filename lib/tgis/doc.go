// Package tgis provides the data model and the storage abstraction for space-time
// raster datasets (STRDS). A space-time raster dataset is a named, time-ordered
// collection of raster maps that are registered in a temporal metadata database.
//
// The package focuses on:
//   - Plain record types for datasets and maps (Dataset, Map) and their timestamps
//   - Fully qualified identifiers of the form name@mapset (ID)
//   - A unified interface (IStore) for the temporal metadata database
//   - Aggregation of member extents into a dataset extent
//
// Key Components:
//
//   - IStore Interface: The narrow set of capabilities the temporal tools need from a
//     metadata database. It covers dataset and map CRUD, registration of maps into
//     datasets, an ordered predicate query over a dataset's members and the
//     recomputation of a dataset's aggregate extent. All implementations share this
//     interface, allowing tools and tests to switch backends without code changes.
//
//   - Error System: Store operations report failures through *Error values carrying a
//     RetCode. Callers use IsNotFound and IsAlreadyExists to make decisions on specific
//     conditions instead of matching error strings.
//
//   - Extent aggregation: AggregateExtent computes the temporal, spatial and value
//     range extent of a set of maps. Store implementations call it when a dataset is
//     finalized, so the recorded extent is always derived from all members at once.
//
// Implementations:
//
//	The repository includes two implementations of the IStore interface:
//
//	- SQL Store (sqlstore): Persists the metadata in SQLite or PostgreSQL through
//	  database/sql. Selection predicates are passed through to the database verbatim.
//	  Available in the "github.com/ValentinKolb/tgis/lib/tgis/sqlstore" package.
//
//	- Memory Store (mstore): Keeps everything in memory and evaluates selection
//	  predicates with an expression evaluator. It is meant for tests and for embedding
//	  the tools in other programs.
//	  Available in the "github.com/ValentinKolb/tgis/lib/tgis/mstore" package.
//
// Both implementations run the conformance suite in the
// "github.com/ValentinKolb/tgis/lib/tgis/testing" package.
package tgis
