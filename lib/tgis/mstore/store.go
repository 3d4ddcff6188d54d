package mstore

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/ValentinKolb/tgis/lib/tgis"
)

type members = *xsync.MapOf[tgis.ID, struct{}]

type storeImpl struct {
	datasets      *xsync.MapOf[tgis.ID, tgis.Dataset]
	maps          *xsync.MapOf[tgis.ID, tgis.Map]
	registrations *xsync.MapOf[tgis.ID, members]
	closed        atomic.Bool
}

// NewMemoryStore creates a new, empty in-memory store.
func NewMemoryStore() tgis.IStore {
	return &storeImpl{
		datasets:      xsync.NewMapOf[tgis.ID, tgis.Dataset](),
		maps:          xsync.NewMapOf[tgis.ID, tgis.Map](),
		registrations: xsync.NewMapOf[tgis.ID, members](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see tgis/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *storeImpl) HasDataset(id tgis.ID) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	_, ok := s.datasets.Load(id)
	return ok, nil
}

func (s *storeImpl) GetDataset(id tgis.ID) (tgis.Dataset, error) {
	if err := s.checkOpen(); err != nil {
		return tgis.Dataset{}, err
	}
	ds, ok := s.datasets.Load(id)
	if !ok {
		return tgis.Dataset{}, tgis.NewErrorf(tgis.RetCNotFound, "space time raster dataset <%s> not found", id)
	}
	return cloneDataset(ds), nil
}

func (s *storeImpl) InsertDataset(ds tgis.Dataset) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if !ds.ID.IsQualified() {
		return tgis.NewErrorf(tgis.RetCInvalidOperation, "dataset id <%s> is not of the form name@mapset", ds.ID)
	}
	if _, loaded := s.datasets.LoadOrStore(ds.ID, cloneDataset(ds)); loaded {
		return tgis.NewErrorf(tgis.RetCAlreadyExists, "space time raster dataset <%s> already exists", ds.ID)
	}
	s.registrations.Store(ds.ID, xsync.NewMapOf[tgis.ID, struct{}]())
	return nil
}

func (s *storeImpl) DeleteDataset(id tgis.ID) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if _, loaded := s.datasets.LoadAndDelete(id); !loaded {
		return tgis.NewErrorf(tgis.RetCNotFound, "space time raster dataset <%s> not found", id)
	}
	s.registrations.Delete(id)
	return nil
}

func (s *storeImpl) ListDatasets(mapset string) ([]tgis.Dataset, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	var out []tgis.Dataset
	s.datasets.Range(func(id tgis.ID, ds tgis.Dataset) bool {
		if mapset == "" || id.Mapset() == mapset {
			out = append(out, cloneDataset(ds))
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *storeImpl) HasMap(id tgis.ID) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	_, ok := s.maps.Load(id)
	return ok, nil
}

func (s *storeImpl) GetMap(id tgis.ID) (tgis.Map, error) {
	if err := s.checkOpen(); err != nil {
		return tgis.Map{}, err
	}
	m, ok := s.maps.Load(id)
	if !ok {
		return tgis.Map{}, tgis.NewErrorf(tgis.RetCNotFound, "raster map <%s> not found", id)
	}
	return cloneMap(m), nil
}

func (s *storeImpl) InsertMap(m tgis.Map) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if !m.ID.IsQualified() {
		return tgis.NewErrorf(tgis.RetCInvalidOperation, "map id <%s> is not of the form name@mapset", m.ID)
	}
	if _, loaded := s.maps.LoadOrStore(m.ID, cloneMap(m)); loaded {
		return tgis.NewErrorf(tgis.RetCAlreadyExists, "raster map <%s> already exists", m.ID)
	}
	return nil
}

func (s *storeImpl) DeleteMap(id tgis.ID) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if _, loaded := s.maps.LoadAndDelete(id); !loaded {
		return tgis.NewErrorf(tgis.RetCNotFound, "raster map <%s> not found", id)
	}
	s.registrations.Range(func(_ tgis.ID, set members) bool {
		set.Delete(id)
		return true
	})
	return nil
}

func (s *storeImpl) RegisterMap(dataset tgis.ID, mapID tgis.ID) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	ds, ok := s.datasets.Load(dataset)
	if !ok {
		return tgis.NewErrorf(tgis.RetCNotFound, "space time raster dataset <%s> not found", dataset)
	}
	m, ok := s.maps.Load(mapID)
	if !ok {
		return tgis.NewErrorf(tgis.RetCNotFound, "raster map <%s> not found", mapID)
	}
	if err := tgis.ValidateRegistration(&ds, &m); err != nil {
		return err
	}
	set, ok := s.registrations.Load(dataset)
	if !ok {
		return tgis.NewErrorf(tgis.RetCInternalError, "registration table of <%s> is missing", dataset)
	}
	set.Store(mapID, struct{}{})
	return nil
}

func (s *storeImpl) RegisteredMaps(dataset tgis.ID, where string) ([]tgis.Map, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	set, ok := s.registrations.Load(dataset)
	if !ok {
		return nil, tgis.NewErrorf(tgis.RetCNotFound, "space time raster dataset <%s> not found", dataset)
	}

	pred, err := compilePredicate(where)
	if err != nil {
		return nil, err
	}

	var out []tgis.Map
	var evalErr error
	set.Range(func(id tgis.ID, _ struct{}) bool {
		m, ok := s.maps.Load(id)
		if !ok {
			return true
		}
		match, err := pred.matches(&m)
		if err != nil {
			evalErr = err
			return false
		}
		if match {
			out = append(out, cloneMap(m))
		}
		return true
	})
	if evalErr != nil {
		return nil, evalErr
	}

	sortByStartTime(out)
	return out, nil
}

func (s *storeImpl) UpdateFromRegisteredMaps(dataset tgis.ID) (tgis.Dataset, error) {
	maps, err := s.RegisteredMaps(dataset, "")
	if err != nil {
		return tgis.Dataset{}, err
	}

	updated, ok := s.datasets.Compute(dataset, func(ds tgis.Dataset, loaded bool) (tgis.Dataset, bool) {
		if !loaded {
			return ds, true
		}
		ds.Extent = tgis.AggregateExtent(ds.TemporalType, maps)
		return ds, false
	})
	if !ok {
		return tgis.Dataset{}, tgis.NewErrorf(tgis.RetCNotFound, "space time raster dataset <%s> not found", dataset)
	}
	return cloneDataset(updated), nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func (s *storeImpl) checkOpen() error {
	if s.closed.Load() {
		return tgis.NewError(tgis.RetCInvalidOperation, "store is closed")
	}
	return nil
}

// sortByStartTime orders maps by start time, then id. Maps without a timestamp go last.
func sortByStartTime(maps []tgis.Map) {
	sort.SliceStable(maps, func(i, j int) bool {
		a, b := &maps[i], &maps[j]
		switch {
		case a.Absolute != nil && b.Absolute != nil:
			if !a.Absolute.Start.Equal(b.Absolute.Start) {
				return a.Absolute.Start.Before(b.Absolute.Start)
			}
		case a.Relative != nil && b.Relative != nil:
			if a.Relative.Start != b.Relative.Start {
				return a.Relative.Start < b.Relative.Start
			}
		case a.TemporalType() != b.TemporalType():
			return b.TemporalType() == ""
		}
		return a.ID < b.ID
	})
}

func cloneMap(m tgis.Map) tgis.Map {
	if m.Absolute != nil {
		t := *m.Absolute
		t.Start = tgis.WallClock(t.Start)
		if t.End != nil {
			end := tgis.WallClock(*t.End)
			t.End = &end
		}
		t.Timezone = cloneInt(t.Timezone)
		m.Absolute = &t
	}
	if m.Relative != nil {
		t := *m.Relative
		t.End = cloneFloat(t.End)
		m.Relative = &t
	}
	m.Metadata.Min = cloneFloat(m.Metadata.Min)
	m.Metadata.Max = cloneFloat(m.Metadata.Max)
	return m
}

func cloneDataset(ds tgis.Dataset) tgis.Dataset {
	ext := ds.Extent
	if ext.Absolute != nil {
		t := *ext.Absolute
		t.End = cloneTime(t.End)
		t.Timezone = cloneInt(t.Timezone)
		ext.Absolute = &t
	}
	if ext.Relative != nil {
		t := *ext.Relative
		t.End = cloneFloat(t.End)
		ext.Relative = &t
	}
	ext.MinMin, ext.MinMax = cloneFloat(ext.MinMin), cloneFloat(ext.MinMax)
	ext.MaxMin, ext.MaxMax = cloneFloat(ext.MaxMin), cloneFloat(ext.MaxMax)
	ext.NSResMin, ext.NSResMax = cloneFloat(ext.NSResMin), cloneFloat(ext.NSResMax)
	ext.EWResMin, ext.EWResMax = cloneFloat(ext.EWResMin), cloneFloat(ext.EWResMax)
	ds.Extent = ext
	return ds
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
