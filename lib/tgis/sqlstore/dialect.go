package sqlstore

import (
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Driver selects the database backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ParseDriver parses a driver name. "sqlite3" and "postgresql" are accepted as aliases.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(s) {
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pg":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("invalid database driver %s (expected sqlite or postgres)", s)
	}
}

// dialect holds everything that differs between the backends.
type dialect struct {
	driver       Driver
	timeType     string
	floatType    string
	createView   string
	maxOpenConns int
	numbered     bool
}

func dialectFor(driver Driver) (dialect, error) {
	switch driver {
	case DriverSQLite:
		return dialect{
			driver:       DriverSQLite,
			timeType:     "TEXT",
			floatType:    "REAL",
			createView:   "CREATE VIEW IF NOT EXISTS",
			maxOpenConns: 1,
		}, nil
	case DriverPostgres:
		return dialect{
			driver:     DriverPostgres,
			timeType:   "TIMESTAMP",
			floatType:  "DOUBLE PRECISION",
			createView: "CREATE OR REPLACE VIEW",
			numbered:   true,
		}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %s", driver)
	}
}

// rebind replaces the ? placeholders of a query with $1, $2, ... for dialects
// with numbered placeholders. Queries passed here must not contain ? in literals.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// schema returns the statements creating the temporal database.
func (d dialect) schema() []string {
	t, f := d.timeType, d.floatType
	return []string{
		`CREATE TABLE IF NOT EXISTS raster_maps (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    mapset         TEXT NOT NULL,
    creator        TEXT NOT NULL DEFAULT '',
    creation_time  ` + t + `,
    temporal_type  TEXT,
    abs_start_time ` + t + `,
    abs_end_time   ` + t + `,
    timezone       INTEGER,
    rel_start_time ` + f + `,
    rel_end_time   ` + f + `,
    north          ` + f + ` NOT NULL DEFAULT 0,
    south          ` + f + ` NOT NULL DEFAULT 0,
    east           ` + f + ` NOT NULL DEFAULT 0,
    west           ` + f + ` NOT NULL DEFAULT 0,
    nsres          ` + f + ` NOT NULL DEFAULT 0,
    ewres          ` + f + ` NOT NULL DEFAULT 0,
    rows           INTEGER NOT NULL DEFAULT 0,
    cols           INTEGER NOT NULL DEFAULT 0,
    min            ` + f + `,
    max            ` + f + `
)`,
		`CREATE TABLE IF NOT EXISTS strds (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    mapset         TEXT NOT NULL,
    creator        TEXT NOT NULL DEFAULT '',
    creation_time  ` + t + `,
    temporal_type  TEXT NOT NULL,
    semantic_type  TEXT NOT NULL DEFAULT '',
    title          TEXT NOT NULL DEFAULT '',
    description    TEXT NOT NULL DEFAULT '',
    number_of_maps INTEGER NOT NULL DEFAULT 0,
    abs_start_time ` + t + `,
    abs_end_time   ` + t + `,
    rel_start_time ` + f + `,
    rel_end_time   ` + f + `,
    north          ` + f + ` NOT NULL DEFAULT 0,
    south          ` + f + ` NOT NULL DEFAULT 0,
    east           ` + f + ` NOT NULL DEFAULT 0,
    west           ` + f + ` NOT NULL DEFAULT 0,
    min_min        ` + f + `,
    min_max        ` + f + `,
    max_min        ` + f + `,
    max_max        ` + f + `,
    nsres_min      ` + f + `,
    nsres_max      ` + f + `,
    ewres_min      ` + f + `,
    ewres_max      ` + f + `
)`,
		`CREATE TABLE IF NOT EXISTS strds_register (
    strds_id TEXT NOT NULL,
    map_id   TEXT NOT NULL,
    PRIMARY KEY (strds_id, map_id)
)`,
		`CREATE INDEX IF NOT EXISTS idx_strds_register_map ON strds_register(map_id)`,
		d.createView + ` raster_view_abs_time AS
    SELECT raster_maps.*, abs_start_time AS start_time, abs_end_time AS end_time FROM raster_maps`,
		d.createView + ` raster_view_rel_time AS
    SELECT raster_maps.*, rel_start_time AS start_time, rel_end_time AS end_time FROM raster_maps`,
	}
}
