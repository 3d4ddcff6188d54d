package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ValentinKolb/tgis/lib/tgis"
)

const mapColumns = `id, creator, creation_time, temporal_type,
    abs_start_time, abs_end_time, timezone, rel_start_time, rel_end_time,
    north, south, east, west, nsres, ewres, rows, cols, min, max`

const datasetColumns = `id, creator, creation_time, temporal_type, semantic_type, title, description,
    number_of_maps, abs_start_time, abs_end_time, rel_start_time, rel_end_time,
    north, south, east, west, min_min, min_max, max_min, max_max,
    nsres_min, nsres_max, ewres_min, ewres_max`

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// nullTime scans timestamps stored as TIMESTAMP (PostgreSQL) or as text (SQLite).
type nullTime struct {
	Time  time.Time
	Valid bool
}

func (n *nullTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		n.Time, n.Valid = time.Time{}, false
		return nil
	case time.Time:
		n.Time, n.Valid = tgis.WallClock(v), true
		return nil
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into a timestamp", value)
	}
}

func (n *nullTime) parse(s string) error {
	if s == "" {
		n.Time, n.Valid = time.Time{}, false
		return nil
	}
	t, err := tgis.ParseTime(s)
	if err != nil {
		// drivers may hand back RFC 3339 text for TIMESTAMP columns
		if t, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
	}
	n.Time, n.Valid = tgis.WallClock(t), true
	return nil
}

func (n nullTime) ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

func scanMap(row scanner) (tgis.Map, error) {
	var (
		m                tgis.Map
		id               string
		temporalType     sql.NullString
		creation         nullTime
		absStart, absEnd nullTime
		timezone         sql.NullInt64
		relStart, relEnd sql.NullFloat64
		minVal, maxVal   sql.NullFloat64
	)
	err := row.Scan(
		&id, &m.Creator, &creation, &temporalType,
		&absStart, &absEnd, &timezone, &relStart, &relEnd,
		&m.Spatial.North, &m.Spatial.South, &m.Spatial.East, &m.Spatial.West,
		&m.Metadata.NSRes, &m.Metadata.EWRes, &m.Metadata.Rows, &m.Metadata.Cols,
		&minVal, &maxVal,
	)
	if err != nil {
		return tgis.Map{}, err
	}

	m.ID = tgis.ID(id)
	m.CreationTime = creation.Time
	switch tgis.TemporalType(temporalType.String) {
	case tgis.TemporalAbsolute:
		if absStart.Valid {
			m.Absolute = &tgis.AbsoluteTime{Start: absStart.Time, End: absEnd.ptr(), Timezone: intPtr(timezone)}
		}
	case tgis.TemporalRelative:
		if relStart.Valid {
			m.Relative = &tgis.RelativeTime{Start: relStart.Float64, End: floatPtr(relEnd)}
		}
	}
	m.Metadata.Min = floatPtr(minVal)
	m.Metadata.Max = floatPtr(maxVal)
	return m, nil
}

func scanDataset(row scanner) (tgis.Dataset, error) {
	var (
		ds                 tgis.Dataset
		id, temporalType   string
		creation           nullTime
		absStart, absEnd   nullTime
		relStart, relEnd   sql.NullFloat64
		minMin, minMax     sql.NullFloat64
		maxMin, maxMax     sql.NullFloat64
		nsresMin, nsresMax sql.NullFloat64
		ewresMin, ewresMax sql.NullFloat64
	)
	ext := &ds.Extent
	err := row.Scan(
		&id, &ds.Creator, &creation, &temporalType, &ds.SemanticType, &ds.Title, &ds.Description,
		&ext.NumberOfMaps, &absStart, &absEnd, &relStart, &relEnd,
		&ext.Spatial.North, &ext.Spatial.South, &ext.Spatial.East, &ext.Spatial.West,
		&minMin, &minMax, &maxMin, &maxMax,
		&nsresMin, &nsresMax, &ewresMin, &ewresMax,
	)
	if err != nil {
		return tgis.Dataset{}, err
	}

	ds.ID = tgis.ID(id)
	ds.CreationTime = creation.Time
	ds.TemporalType = tgis.TemporalType(temporalType)
	if absStart.Valid {
		ext.Absolute = &tgis.AbsoluteTime{Start: absStart.Time, End: absEnd.ptr()}
	}
	if relStart.Valid {
		ext.Relative = &tgis.RelativeTime{Start: relStart.Float64, End: floatPtr(relEnd)}
	}
	ext.MinMin, ext.MinMax = floatPtr(minMin), floatPtr(minMax)
	ext.MaxMin, ext.MaxMax = floatPtr(maxMin), floatPtr(maxMax)
	ext.NSResMin, ext.NSResMax = floatPtr(nsresMin), floatPtr(nsresMax)
	ext.EWResMin, ext.EWResMax = floatPtr(ewresMin), floatPtr(ewresMax)
	return ds, nil
}

// timeValue formats a timestamp for storage. The zero time is stored as NULL.
func timeValue(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return tgis.WallClock(t).Format(tgis.TimeLayout)
}

func floatValue(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
