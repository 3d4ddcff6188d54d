package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lni/dragonboat/v4/logger"

	"github.com/ValentinKolb/tgis/lib/tgis"
)

var plog = logger.GetLogger("store")

// SQLStore implements tgis.IStore on a SQL database.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the temporal database and creates the schema if it does not exist.
// For SQLite the dsn is a file path (the parent directory is created) or ":memory:".
// For PostgreSQL it is a lib/pq connection string.
func Open(driver Driver, dsn string) (*SQLStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if d.maxOpenConns > 0 {
		db.SetMaxOpenConns(d.maxOpenConns)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to temporal database: %w", err)
	}

	plog.Debugf("opened %s temporal database", driver)

	store := &SQLStore{db: db, dialect: d}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// initSchema creates the necessary tables and views if they don't exist.
func (s *SQLStore) initSchema() error {
	for _, stmt := range s.dialect.schema() {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see tgis/interface.go)
// --------------------------------------------------------------------------

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) HasDataset(id tgis.ID) (bool, error) {
	return s.exists(`SELECT 1 FROM strds WHERE id = ?`, id)
}

func (s *SQLStore) GetDataset(id tgis.ID) (tgis.Dataset, error) {
	row := s.db.QueryRow(s.dialect.rebind(`SELECT `+datasetColumns+` FROM strds WHERE id = ?`), string(id))
	ds, err := scanDataset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return tgis.Dataset{}, tgis.NewErrorf(tgis.RetCNotFound, "space time raster dataset <%s> not found", id)
	}
	if err != nil {
		return tgis.Dataset{}, internal("query dataset", err)
	}
	return ds, nil
}

func (s *SQLStore) InsertDataset(ds tgis.Dataset) error {
	if !ds.ID.IsQualified() {
		return tgis.NewErrorf(tgis.RetCInvalidOperation, "dataset id <%s> is not of the form name@mapset", ds.ID)
	}
	if ok, err := s.HasDataset(ds.ID); err != nil {
		return err
	} else if ok {
		return tgis.NewErrorf(tgis.RetCAlreadyExists, "space time raster dataset <%s> already exists", ds.ID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return internal("begin transaction", err)
	}
	defer tx.Rollback()

	// leftovers of a dataset that was removed by other tools
	if _, err := tx.Exec(s.dialect.rebind(`DELETE FROM strds_register WHERE strds_id = ?`), string(ds.ID)); err != nil {
		return internal("clear registrations", err)
	}
	_, err = tx.Exec(
		s.dialect.rebind(`INSERT INTO strds (id, name, mapset, creator, creation_time, temporal_type, semantic_type, title, description) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		string(ds.ID), ds.ID.Name(), ds.ID.Mapset(), ds.Creator, timeValue(ds.CreationTime),
		string(ds.TemporalType), ds.SemanticType, ds.Title, ds.Description,
	)
	if err != nil {
		return internal("insert dataset", err)
	}
	if err := tx.Commit(); err != nil {
		return internal("commit", err)
	}

	if ds.Extent.NumberOfMaps > 0 {
		return s.writeExtent(ds.ID, ds.Extent)
	}
	return nil
}

func (s *SQLStore) DeleteDataset(id tgis.ID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return internal("begin transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(s.dialect.rebind(`DELETE FROM strds WHERE id = ?`), string(id))
	if err != nil {
		return internal("delete dataset", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tgis.NewErrorf(tgis.RetCNotFound, "space time raster dataset <%s> not found", id)
	}
	if _, err := tx.Exec(s.dialect.rebind(`DELETE FROM strds_register WHERE strds_id = ?`), string(id)); err != nil {
		return internal("delete registrations", err)
	}
	if err := tx.Commit(); err != nil {
		return internal("commit", err)
	}
	return nil
}

func (s *SQLStore) ListDatasets(mapset string) ([]tgis.Dataset, error) {
	query := `SELECT ` + datasetColumns + ` FROM strds`
	var args []any
	if mapset != "" {
		query += ` WHERE mapset = ?`
		args = append(args, mapset)
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(s.dialect.rebind(query), args...)
	if err != nil {
		return nil, internal("query datasets", err)
	}
	defer rows.Close()

	var out []tgis.Dataset
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, internal("scan dataset", err)
		}
		out = append(out, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, internal("iterate datasets", err)
	}
	return out, nil
}

func (s *SQLStore) HasMap(id tgis.ID) (bool, error) {
	return s.exists(`SELECT 1 FROM raster_maps WHERE id = ?`, id)
}

func (s *SQLStore) GetMap(id tgis.ID) (tgis.Map, error) {
	row := s.db.QueryRow(s.dialect.rebind(`SELECT `+mapColumns+` FROM raster_maps WHERE id = ?`), string(id))
	m, err := scanMap(row)
	if errors.Is(err, sql.ErrNoRows) {
		return tgis.Map{}, tgis.NewErrorf(tgis.RetCNotFound, "raster map <%s> not found", id)
	}
	if err != nil {
		return tgis.Map{}, internal("query map", err)
	}
	return m, nil
}

func (s *SQLStore) InsertMap(m tgis.Map) error {
	if !m.ID.IsQualified() {
		return tgis.NewErrorf(tgis.RetCInvalidOperation, "map id <%s> is not of the form name@mapset", m.ID)
	}
	if ok, err := s.HasMap(m.ID); err != nil {
		return err
	} else if ok {
		return tgis.NewErrorf(tgis.RetCAlreadyExists, "raster map <%s> already exists", m.ID)
	}

	var (
		temporalType     any
		absStart, absEnd any
		timezone         any
		relStart, relEnd any
	)
	switch {
	case m.Absolute != nil:
		temporalType = string(tgis.TemporalAbsolute)
		absStart = timeValue(m.Absolute.Start)
		if m.Absolute.End != nil {
			absEnd = timeValue(*m.Absolute.End)
		}
		if m.Absolute.Timezone != nil {
			timezone = int64(*m.Absolute.Timezone)
		}
	case m.Relative != nil:
		temporalType = string(tgis.TemporalRelative)
		relStart = m.Relative.Start
		relEnd = floatValue(m.Relative.End)
	}

	_, err := s.db.Exec(
		s.dialect.rebind(`INSERT INTO raster_maps (id, name, mapset, creator, creation_time, temporal_type,
    abs_start_time, abs_end_time, timezone, rel_start_time, rel_end_time,
    north, south, east, west, nsres, ewres, rows, cols, min, max)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		string(m.ID), m.ID.Name(), m.ID.Mapset(), m.Creator, timeValue(m.CreationTime), temporalType,
		absStart, absEnd, timezone, relStart, relEnd,
		m.Spatial.North, m.Spatial.South, m.Spatial.East, m.Spatial.West,
		m.Metadata.NSRes, m.Metadata.EWRes, m.Metadata.Rows, m.Metadata.Cols,
		floatValue(m.Metadata.Min), floatValue(m.Metadata.Max),
	)
	if err != nil {
		return internal("insert map", err)
	}
	return nil
}

func (s *SQLStore) DeleteMap(id tgis.ID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return internal("begin transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(s.dialect.rebind(`DELETE FROM raster_maps WHERE id = ?`), string(id))
	if err != nil {
		return internal("delete map", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tgis.NewErrorf(tgis.RetCNotFound, "raster map <%s> not found", id)
	}
	if _, err := tx.Exec(s.dialect.rebind(`DELETE FROM strds_register WHERE map_id = ?`), string(id)); err != nil {
		return internal("delete registrations", err)
	}
	if err := tx.Commit(); err != nil {
		return internal("commit", err)
	}
	return nil
}

func (s *SQLStore) RegisterMap(dataset tgis.ID, mapID tgis.ID) error {
	ds, err := s.GetDataset(dataset)
	if err != nil {
		return err
	}
	m, err := s.GetMap(mapID)
	if err != nil {
		return err
	}
	if err := tgis.ValidateRegistration(&ds, &m); err != nil {
		return err
	}

	_, err = s.db.Exec(
		s.dialect.rebind(`INSERT INTO strds_register (strds_id, map_id) VALUES (?, ?) ON CONFLICT DO NOTHING`),
		string(dataset), string(mapID),
	)
	if err != nil {
		return internal("register map", err)
	}
	return nil
}

func (s *SQLStore) RegisteredMaps(dataset tgis.ID, where string) ([]tgis.Map, error) {
	ds, err := s.GetDataset(dataset)
	if err != nil {
		return nil, err
	}

	view := "raster_view_abs_time"
	if ds.TemporalType == tgis.TemporalRelative {
		view = "raster_view_rel_time"
	}

	query := s.dialect.rebind(`SELECT ` + mapColumns + ` FROM ` + view +
		` WHERE id IN (SELECT map_id FROM strds_register WHERE strds_id = ?)`)
	if strings.TrimSpace(where) != "" {
		query += ` AND (` + where + `)`
	}
	query += ` ORDER BY start_time, id`

	rows, err := s.db.Query(query, string(dataset))
	if err != nil {
		if strings.TrimSpace(where) != "" {
			return nil, tgis.NewErrorf(tgis.RetCInvalidOperation, "invalid where predicate %q: %v", where, err)
		}
		return nil, internal("query registered maps", err)
	}
	defer rows.Close()

	var out []tgis.Map
	for rows.Next() {
		m, err := scanMap(rows)
		if err != nil {
			return nil, internal("scan map", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, internal("iterate registered maps", err)
	}
	return out, nil
}

func (s *SQLStore) UpdateFromRegisteredMaps(dataset tgis.ID) (tgis.Dataset, error) {
	ds, err := s.GetDataset(dataset)
	if err != nil {
		return tgis.Dataset{}, err
	}
	maps, err := s.RegisteredMaps(dataset, "")
	if err != nil {
		return tgis.Dataset{}, err
	}

	ds.Extent = tgis.AggregateExtent(ds.TemporalType, maps)
	if err := s.writeExtent(dataset, ds.Extent); err != nil {
		return tgis.Dataset{}, err
	}
	return ds, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func (s *SQLStore) exists(query string, id tgis.ID) (bool, error) {
	var one int
	err := s.db.QueryRow(s.dialect.rebind(query), string(id)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, internal("query", err)
	}
	return true, nil
}

func (s *SQLStore) writeExtent(id tgis.ID, ext tgis.Extent) error {
	var absStart, absEnd, relStart, relEnd any
	if ext.Absolute != nil {
		absStart = timeValue(ext.Absolute.Start)
		if ext.Absolute.End != nil {
			absEnd = timeValue(*ext.Absolute.End)
		}
	}
	if ext.Relative != nil {
		relStart = ext.Relative.Start
		relEnd = floatValue(ext.Relative.End)
	}

	_, err := s.db.Exec(
		s.dialect.rebind(`UPDATE strds SET number_of_maps = ?,
    abs_start_time = ?, abs_end_time = ?, rel_start_time = ?, rel_end_time = ?,
    north = ?, south = ?, east = ?, west = ?,
    min_min = ?, min_max = ?, max_min = ?, max_max = ?,
    nsres_min = ?, nsres_max = ?, ewres_min = ?, ewres_max = ?
    WHERE id = ?`),
		ext.NumberOfMaps,
		absStart, absEnd, relStart, relEnd,
		ext.Spatial.North, ext.Spatial.South, ext.Spatial.East, ext.Spatial.West,
		floatValue(ext.MinMin), floatValue(ext.MinMax), floatValue(ext.MaxMin), floatValue(ext.MaxMax),
		floatValue(ext.NSResMin), floatValue(ext.NSResMax), floatValue(ext.EWResMin), floatValue(ext.EWResMax),
		string(id),
	)
	if err != nil {
		return internal("update extent", err)
	}
	return nil
}

func internal(op string, err error) error {
	return tgis.NewErrorf(tgis.RetCInternalError, "%s: %v", op, err)
}
