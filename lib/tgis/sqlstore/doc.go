// Package sqlstore implements the tgis.IStore interface on top of database/sql.
// Two dialects are supported:
//
//   - SQLite through the pure Go driver modernc.org/sqlite (driver name "sqlite").
//     This is the default temporal database of a GRASS location and is usually found
//     at $GISDBASE/$LOCATION_NAME/PERMANENT/tgis/sqlite.db.
//   - PostgreSQL through github.com/lib/pq (driver name "postgres").
//
// Schema:
//
//	raster_maps            one row per raster map (timestamp, extent, metadata)
//	raster_view_abs_time   raster_maps with start_time/end_time from the absolute columns
//	raster_view_rel_time   raster_maps with start_time/end_time from the relative columns
//	strds                  one row per space-time raster dataset, including its extent
//	strds_register         (strds_id, map_id) membership pairs
//
// The schema is created on Open if it does not exist yet, so opening a store also
// performs the "create temporal database" step of the tools.
//
// Selection predicates:
//
//	The where string of RegisteredMaps is appended verbatim to a query against the
//	view matching the dataset's temporal type. Predicates can therefore use every
//	column of the view and every SQL function of the backend, e.g.
//	"start_time >= '2010-01-02' AND max > 0". Absolute times are stored as wall clock
//	values ('YYYY-MM-DD HH:MM:SS' text in SQLite, TIMESTAMP in PostgreSQL), so string
//	literals compare as expected in both backends.
//
// Connections:
//
//	SQLite stores use a single connection. This keeps ":memory:" databases alive for
//	the whole lifetime of the store and serializes all access to the database file.
package sqlstore
