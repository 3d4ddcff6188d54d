package raster

import (
	"context"

	"github.com/ValentinKolb/tgis/lib/tgis"
)

// IExecutor runs the external raster engine.
type IExecutor interface {
	// MapCalc evaluates a raster algebra statement of the form "name = expression".
	// If overwrite is false the engine refuses to replace an existing raster.
	MapCalc(ctx context.Context, statement string, overwrite bool) error

	// Info loads the spatial extent, resolution and value range of a raster.
	Info(ctx context.Context, name string) (Info, error)
}

// Info describes a raster as reported by the engine.
type Info struct {
	Spatial  tgis.SpatialExtent
	Metadata tgis.RasterMetadata
	// DataType is the cell type (CELL, FCELL or DCELL).
	DataType string
}

// IsNull reports whether the raster contains only no-data cells.
func (i Info) IsNull() bool {
	return i.Metadata.IsNull()
}

// Apply copies the extent and metadata into a map entry.
func (i Info) Apply(m *tgis.Map) {
	m.Spatial = i.Spatial
	m.Metadata = i.Metadata
}
