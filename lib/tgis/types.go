package tgis

import (
	"fmt"
	"time"
)

// --------------------------------------------------------------------------
// Temporal types
// --------------------------------------------------------------------------

// TemporalType tells whether timestamps are calendar anchored or offsets.
type TemporalType string

const (
	TemporalAbsolute TemporalType = "absolute"
	TemporalRelative TemporalType = "relative"
)

// ParseTemporalType parses "absolute" or "relative".
func ParseTemporalType(s string) (TemporalType, error) {
	switch TemporalType(s) {
	case TemporalAbsolute, TemporalRelative:
		return TemporalType(s), nil
	default:
		return "", fmt.Errorf("invalid temporal type %q (expected absolute or relative)", s)
	}
}

// AbsoluteTime is a calendar anchored interval. End and Timezone are optional.
// Times are wall clock values; the timezone offset (in hours) is kept separately.
type AbsoluteTime struct {
	Start    time.Time
	End      *time.Time
	Timezone *int
}

// RelativeTime is an offset based interval. The unit is implied by the dataset.
type RelativeTime struct {
	Start float64
	End   *float64
}

// TimeLayout is the layout absolute times are stored and printed with.
const TimeLayout = "2006-01-02 15:04:05"

// WallClock drops the location and sub-second part of t, keeping the wall clock
// reading. Stores normalize absolute times with it so that all backends return
// equal values.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// ParseTime parses an absolute time in TimeLayout or as a plain date.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range []string{TimeLayout, "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (expected YYYY-MM-DD[ HH:MM[:SS]])", s)
}

// --------------------------------------------------------------------------
// Spatial extent and raster metadata
// --------------------------------------------------------------------------

// SpatialExtent is a bounding box in the coordinate system of the location.
type SpatialExtent struct {
	North float64
	South float64
	East  float64
	West  float64
}

// Union returns the smallest extent containing e and o.
func (e SpatialExtent) Union(o SpatialExtent) SpatialExtent {
	return SpatialExtent{
		North: max(e.North, o.North),
		South: min(e.South, o.South),
		East:  max(e.East, o.East),
		West:  min(e.West, o.West),
	}
}

// RasterMetadata describes the content of a raster map.
// Min and Max are nil if the map contains only no-data cells.
type RasterMetadata struct {
	Min   *float64
	Max   *float64
	NSRes float64
	EWRes float64
	Rows  int
	Cols  int
}

// IsNull reports whether the value range of the map is entirely undefined.
func (m RasterMetadata) IsNull() bool {
	return m.Min == nil && m.Max == nil
}

// --------------------------------------------------------------------------
// Map
// --------------------------------------------------------------------------

// Map is a raster map entry of the temporal database.
// Exactly one of Absolute and Relative is set once the map is timestamped.
type Map struct {
	ID           ID
	Creator      string
	CreationTime time.Time
	Absolute     *AbsoluteTime
	Relative     *RelativeTime
	Spatial      SpatialExtent
	Metadata     RasterMetadata
}

// TemporalType returns the kind of the map's timestamp, or "" if it has none.
func (m *Map) TemporalType() TemporalType {
	switch {
	case m.Absolute != nil:
		return TemporalAbsolute
	case m.Relative != nil:
		return TemporalRelative
	default:
		return ""
	}
}

// IsTimeAbsolute reports whether the map carries an absolute timestamp.
func (m *Map) IsTimeAbsolute() bool {
	return m.Absolute != nil
}

// SetAbsoluteTime replaces the timestamp with an absolute one.
func (m *Map) SetAbsoluteTime(start time.Time, end *time.Time, tz *int) {
	m.Absolute = &AbsoluteTime{Start: start, End: end, Timezone: tz}
	m.Relative = nil
}

// SetRelativeTime replaces the timestamp with a relative one.
func (m *Map) SetRelativeTime(start float64, end *float64) {
	m.Relative = &RelativeTime{Start: start, End: end}
	m.Absolute = nil
}

// CopyTimestamp sets the timestamp of m to a copy of the timestamp of src,
// preserving its kind.
func (m *Map) CopyTimestamp(src *Map) {
	switch {
	case src.Absolute != nil:
		t := *src.Absolute
		m.SetAbsoluteTime(t.Start, t.End, t.Timezone)
	case src.Relative != nil:
		t := *src.Relative
		m.SetRelativeTime(t.Start, t.End)
	default:
		m.Absolute, m.Relative = nil, nil
	}
}

// --------------------------------------------------------------------------
// Dataset
// --------------------------------------------------------------------------

// Dataset is a space-time raster dataset.
type Dataset struct {
	ID           ID
	Creator      string
	CreationTime time.Time
	TemporalType TemporalType
	SemanticType string
	Title        string
	Description  string
	Extent       Extent
}

// SetInitialValues sets the metadata a dataset is created with.
func (d *Dataset) SetInitialValues(temporalType TemporalType, semanticType, title, description string) {
	d.TemporalType = temporalType
	d.SemanticType = semanticType
	d.Title = title
	d.Description = description
}

// InitialValues returns the metadata needed to create a dataset of the same kind.
func (d *Dataset) InitialValues() (TemporalType, string, string, string) {
	return d.TemporalType, d.SemanticType, d.Title, d.Description
}

// Extent is the aggregate extent of a dataset's registered maps.
// All pointer fields are nil if no member defines them.
type Extent struct {
	NumberOfMaps int
	Absolute     *AbsoluteTime
	Relative     *RelativeTime
	Spatial      SpatialExtent
	MinMin       *float64
	MinMax       *float64
	MaxMin       *float64
	MaxMax       *float64
	NSResMin     *float64
	NSResMax     *float64
	EWResMin     *float64
	EWResMax     *float64
}
