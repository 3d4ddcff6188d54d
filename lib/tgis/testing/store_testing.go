package testing

import (
	"testing"
	"time"

	"github.com/ValentinKolb/tgis/lib/tgis"
)

// StoreFactory is a function that creates a new, empty instance of an IStore implementation
type StoreFactory func(t *testing.T) tgis.IStore

// RunStoreTests runs the conformance test suite for an IStore implementation.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("DatasetCRUD", func(t *testing.T) {
			testDatasetCRUD(t, factory(t))
		})

		t.Run("MapCRUD", func(t *testing.T) {
			testMapCRUD(t, factory(t))
		})

		t.Run("Register", func(t *testing.T) {
			testRegister(t, factory(t))
		})

		t.Run("Ordering", func(t *testing.T) {
			testOrdering(t, factory(t))
		})

		t.Run("Where", func(t *testing.T) {
			testWhere(t, factory(t))
		})

		t.Run("RelativeTime", func(t *testing.T) {
			testRelativeTime(t, factory(t))
		})

		t.Run("UpdateFromRegisteredMaps", func(t *testing.T) {
			testUpdateFromRegisteredMaps(t, factory(t))
		})

		t.Run("DeleteCascade", func(t *testing.T) {
			testDeleteCascade(t, factory(t))
		})
	})
}

// --------------------------------------------------------------------------
// Fixtures
// --------------------------------------------------------------------------

const mapset = "user1"

// Day returns midnight of the given day in January 2010.
func Day(d int) time.Time {
	return time.Date(2010, time.January, d, 0, 0, 0, 0, time.UTC)
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// NewDataset returns a dataset fixture with the given temporal type.
func NewDataset(name string, temporalType tgis.TemporalType) tgis.Dataset {
	return tgis.Dataset{
		ID:           tgis.NewID(name, mapset),
		Creator:      "tester",
		CreationTime: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
		TemporalType: temporalType,
		SemanticType: "mean",
		Title:        "Title of " + name,
		Description:  "Description of " + name,
	}
}

// NewAbsoluteMap returns a map fixture covering days start..end of January 2010.
func NewAbsoluteMap(name string, start, end int, min, max *float64) tgis.Map {
	m := tgis.Map{
		ID:           tgis.NewID(name, mapset),
		Creator:      "tester",
		CreationTime: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
		Spatial:      tgis.SpatialExtent{North: 80, South: 0, East: 120, West: 0},
		Metadata:     tgis.RasterMetadata{Min: min, Max: max, NSRes: 10, EWRes: 10, Rows: 8, Cols: 12},
	}
	e := Day(end)
	m.SetAbsoluteTime(Day(start), &e, nil)
	return m
}

func mustInsertDataset(t *testing.T, store tgis.IStore, ds tgis.Dataset) {
	t.Helper()
	if err := store.InsertDataset(ds); err != nil {
		t.Fatalf("InsertDataset(%s) failed: %v", ds.ID, err)
	}
}

func mustInsertMap(t *testing.T, store tgis.IStore, m tgis.Map) {
	t.Helper()
	if err := store.InsertMap(m); err != nil {
		t.Fatalf("InsertMap(%s) failed: %v", m.ID, err)
	}
}

func mustRegister(t *testing.T, store tgis.IStore, ds tgis.ID, m tgis.ID) {
	t.Helper()
	if err := store.RegisterMap(ds, m); err != nil {
		t.Fatalf("RegisterMap(%s, %s) failed: %v", ds, m, err)
	}
}

func ids(maps []tgis.Map) []tgis.ID {
	out := make([]tgis.ID, len(maps))
	for i, m := range maps {
		out[i] = m.ID
	}
	return out
}

func equalIDs(a, b []tgis.ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testDatasetCRUD(t *testing.T, store tgis.IStore) {
	defer store.Close()

	ds := NewDataset("precip", tgis.TemporalAbsolute)

	if ok, err := store.HasDataset(ds.ID); err != nil || ok {
		t.Fatalf("HasDataset before insert = %v, %v; want false, nil", ok, err)
	}
	if _, err := store.GetDataset(ds.ID); !tgis.IsNotFound(err) {
		t.Errorf("GetDataset of a missing dataset: expected not found, got %v", err)
	}

	mustInsertDataset(t, store, ds)

	if ok, err := store.HasDataset(ds.ID); err != nil || !ok {
		t.Fatalf("HasDataset after insert = %v, %v; want true, nil", ok, err)
	}

	got, err := store.GetDataset(ds.ID)
	if err != nil {
		t.Fatalf("GetDataset failed: %v", err)
	}
	if got.ID != ds.ID || got.TemporalType != ds.TemporalType || got.SemanticType != ds.SemanticType ||
		got.Title != ds.Title || got.Description != ds.Description || got.Creator != ds.Creator {
		t.Errorf("GetDataset = %+v, want %+v", got, ds)
	}
	if got.Extent.NumberOfMaps != 0 {
		t.Errorf("new dataset has %d maps", got.Extent.NumberOfMaps)
	}

	if err := store.InsertDataset(ds); !tgis.IsAlreadyExists(err) {
		t.Errorf("second InsertDataset: expected already exists, got %v", err)
	}

	other := NewDataset("temp", tgis.TemporalRelative)
	other.ID = tgis.NewID("temp", "PERMANENT")
	mustInsertDataset(t, store, other)

	all, err := store.ListDatasets("")
	if err != nil {
		t.Fatalf("ListDatasets failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != ds.ID || all[1].ID != other.ID {
		t.Errorf("ListDatasets(\"\") = %v", all)
	}

	own, err := store.ListDatasets(mapset)
	if err != nil {
		t.Fatalf("ListDatasets failed: %v", err)
	}
	if len(own) != 1 || own[0].ID != ds.ID {
		t.Errorf("ListDatasets(%q) = %v", mapset, own)
	}

	if err := store.DeleteDataset(ds.ID); err != nil {
		t.Fatalf("DeleteDataset failed: %v", err)
	}
	if ok, _ := store.HasDataset(ds.ID); ok {
		t.Errorf("dataset still exists after delete")
	}
	if err := store.DeleteDataset(ds.ID); !tgis.IsNotFound(err) {
		t.Errorf("deleting a missing dataset: expected not found, got %v", err)
	}
}

func testMapCRUD(t *testing.T, store tgis.IStore) {
	defer store.Close()

	m := NewAbsoluteMap("precip_1", 1, 2, Float(-1.5), Float(12))
	tz := 1
	m.Absolute.Timezone = &tz
	null := NewAbsoluteMap("precip_null", 2, 3, nil, nil)
	null.Absolute.End = nil

	if ok, err := store.HasMap(m.ID); err != nil || ok {
		t.Fatalf("HasMap before insert = %v, %v; want false, nil", ok, err)
	}

	mustInsertMap(t, store, m)
	mustInsertMap(t, store, null)

	if err := store.InsertMap(m); !tgis.IsAlreadyExists(err) {
		t.Errorf("second InsertMap: expected already exists, got %v", err)
	}

	got, err := store.GetMap(m.ID)
	if err != nil {
		t.Fatalf("GetMap failed: %v", err)
	}
	if got.Absolute == nil || !got.Absolute.Start.Equal(Day(1)) || got.Absolute.End == nil || !got.Absolute.End.Equal(Day(2)) {
		t.Errorf("timestamp = %+v, want %v..%v", got.Absolute, Day(1), Day(2))
	}
	if got.Absolute.Timezone == nil || *got.Absolute.Timezone != 1 {
		t.Errorf("timezone not preserved: %+v", got.Absolute.Timezone)
	}
	if got.Relative != nil {
		t.Errorf("unexpected relative time %+v", got.Relative)
	}
	if got.Metadata.Min == nil || *got.Metadata.Min != -1.5 || got.Metadata.Max == nil || *got.Metadata.Max != 12 {
		t.Errorf("range = %v..%v, want -1.5..12", got.Metadata.Min, got.Metadata.Max)
	}
	if got.Metadata.Rows != 8 || got.Metadata.Cols != 12 || got.Metadata.NSRes != 10 || got.Spatial != m.Spatial {
		t.Errorf("raster metadata not preserved: %+v %+v", got.Metadata, got.Spatial)
	}

	gotNull, err := store.GetMap(null.ID)
	if err != nil {
		t.Fatalf("GetMap failed: %v", err)
	}
	if !gotNull.Metadata.IsNull() {
		t.Errorf("expected a null range, got %v..%v", gotNull.Metadata.Min, gotNull.Metadata.Max)
	}
	if gotNull.Absolute == nil || gotNull.Absolute.End != nil {
		t.Errorf("expected a timestamp without end, got %+v", gotNull.Absolute)
	}

	if err := store.DeleteMap(m.ID); err != nil {
		t.Fatalf("DeleteMap failed: %v", err)
	}
	if _, err := store.GetMap(m.ID); !tgis.IsNotFound(err) {
		t.Errorf("GetMap after delete: expected not found, got %v", err)
	}
}

func testRegister(t *testing.T, store tgis.IStore) {
	defer store.Close()

	ds := NewDataset("precip", tgis.TemporalAbsolute)
	mustInsertDataset(t, store, ds)
	m := NewAbsoluteMap("precip_1", 1, 2, Float(0), Float(1))
	mustInsertMap(t, store, m)

	mustRegister(t, store, ds.ID, m.ID)
	// registering twice is a no-op
	mustRegister(t, store, ds.ID, m.ID)

	maps, err := store.RegisteredMaps(ds.ID, "")
	if err != nil {
		t.Fatalf("RegisteredMaps failed: %v", err)
	}
	if !equalIDs(ids(maps), []tgis.ID{m.ID}) {
		t.Errorf("RegisteredMaps = %v, want [%s]", ids(maps), m.ID)
	}

	if err := store.RegisterMap(ds.ID, "missing@user1"); !tgis.IsNotFound(err) {
		t.Errorf("registering a missing map: expected not found, got %v", err)
	}
	if err := store.RegisterMap("missing@user1", m.ID); !tgis.IsNotFound(err) {
		t.Errorf("registering into a missing dataset: expected not found, got %v", err)
	}

	rel := tgis.Map{ID: tgis.NewID("rel", mapset)}
	rel.SetRelativeTime(1, nil)
	mustInsertMap(t, store, rel)
	if err := store.RegisterMap(ds.ID, rel.ID); !tgis.HasCode(err, tgis.RetCInvalidOperation) {
		t.Errorf("registering a relative map into an absolute dataset: expected invalid operation, got %v", err)
	}

	if _, err := store.RegisteredMaps("missing@user1", ""); !tgis.IsNotFound(err) {
		t.Errorf("RegisteredMaps of a missing dataset: expected not found, got %v", err)
	}
}

func testOrdering(t *testing.T, store tgis.IStore) {
	defer store.Close()

	ds := NewDataset("precip", tgis.TemporalAbsolute)
	mustInsertDataset(t, store, ds)

	for _, m := range []tgis.Map{
		NewAbsoluteMap("c", 3, 4, nil, nil),
		NewAbsoluteMap("a", 1, 2, nil, nil),
		NewAbsoluteMap("b", 2, 3, nil, nil),
	} {
		mustInsertMap(t, store, m)
		mustRegister(t, store, ds.ID, m.ID)
	}

	maps, err := store.RegisteredMaps(ds.ID, "")
	if err != nil {
		t.Fatalf("RegisteredMaps failed: %v", err)
	}
	want := []tgis.ID{"a@user1", "b@user1", "c@user1"}
	if !equalIDs(ids(maps), want) {
		t.Errorf("RegisteredMaps = %v, want %v", ids(maps), want)
	}
}

func testWhere(t *testing.T, store tgis.IStore) {
	defer store.Close()

	ds := NewDataset("precip", tgis.TemporalAbsolute)
	mustInsertDataset(t, store, ds)

	for _, m := range []tgis.Map{
		NewAbsoluteMap("precip_1", 1, 2, nil, nil),
		NewAbsoluteMap("precip_2", 2, 3, nil, nil),
		NewAbsoluteMap("precip_3", 3, 4, nil, nil),
	} {
		mustInsertMap(t, store, m)
		mustRegister(t, store, ds.ID, m.ID)
	}

	// a map that is not registered must never be selected
	mustInsertMap(t, store, NewAbsoluteMap("precip_4", 5, 6, nil, nil))

	tests := []struct {
		where string
		want  []tgis.ID
	}{
		{where: "", want: []tgis.ID{"precip_1@user1", "precip_2@user1", "precip_3@user1"}},
		{where: "start_time >= '2010-01-02'", want: []tgis.ID{"precip_2@user1", "precip_3@user1"}},
		{where: "start_time >= '2010-01-02' AND name = 'precip_3'", want: []tgis.ID{"precip_3@user1"}},
		{where: "start_time > '2011-01-01'", want: []tgis.ID{}},
		{where: "start_time < '2010-01-02 12:00:00'", want: []tgis.ID{"precip_1@user1", "precip_2@user1"}},
		{where: "NOT (start_time >= '2010-01-02')", want: []tgis.ID{"precip_1@user1"}},
		{where: "NOT (name = 'precip_2') AND start_time >= '2010-01-02'", want: []tgis.ID{"precip_3@user1"}},
	}

	for _, tt := range tests {
		maps, err := store.RegisteredMaps(ds.ID, tt.where)
		if err != nil {
			t.Errorf("RegisteredMaps(%q) failed: %v", tt.where, err)
			continue
		}
		if !equalIDs(ids(maps), tt.want) {
			t.Errorf("RegisteredMaps(%q) = %v, want %v", tt.where, ids(maps), tt.want)
		}
	}
}

func testRelativeTime(t *testing.T, store tgis.IStore) {
	defer store.Close()

	ds := NewDataset("rel", tgis.TemporalRelative)
	mustInsertDataset(t, store, ds)

	for i := 1; i <= 3; i++ {
		m := tgis.Map{
			ID:       tgis.NewID("rel_"+string(rune('0'+i)), mapset),
			Metadata: tgis.RasterMetadata{NSRes: 1, EWRes: 1},
		}
		m.SetRelativeTime(float64(i), Float(float64(i+1)))
		mustInsertMap(t, store, m)
		mustRegister(t, store, ds.ID, m.ID)
	}

	maps, err := store.RegisteredMaps(ds.ID, "start_time >= 2")
	if err != nil {
		t.Fatalf("RegisteredMaps failed: %v", err)
	}
	want := []tgis.ID{"rel_2@user1", "rel_3@user1"}
	if !equalIDs(ids(maps), want) {
		t.Errorf("RegisteredMaps = %v, want %v", ids(maps), want)
	}
	if maps[0].Relative == nil || maps[0].Relative.Start != 2 || *maps[0].Relative.End != 3 {
		t.Errorf("relative time not preserved: %+v", maps[0].Relative)
	}

	updated, err := store.UpdateFromRegisteredMaps(ds.ID)
	if err != nil {
		t.Fatalf("UpdateFromRegisteredMaps failed: %v", err)
	}
	if updated.Extent.Relative == nil || updated.Extent.Relative.Start != 1 || *updated.Extent.Relative.End != 4 {
		t.Errorf("relative extent = %+v, want 1..4", updated.Extent.Relative)
	}
}

func testUpdateFromRegisteredMaps(t *testing.T, store tgis.IStore) {
	defer store.Close()

	ds := NewDataset("precip", tgis.TemporalAbsolute)
	mustInsertDataset(t, store, ds)

	empty, err := store.UpdateFromRegisteredMaps(ds.ID)
	if err != nil {
		t.Fatalf("UpdateFromRegisteredMaps on an empty dataset failed: %v", err)
	}
	if empty.Extent.NumberOfMaps != 0 || empty.Extent.Absolute != nil {
		t.Errorf("empty dataset extent = %+v", empty.Extent)
	}

	a := NewAbsoluteMap("a", 2, 3, Float(1), Float(4))
	b := NewAbsoluteMap("b", 3, 5, Float(-1), Float(2))
	b.Spatial = tgis.SpatialExtent{North: 100, South: -10, East: 50, West: -20}
	for _, m := range []tgis.Map{a, b} {
		mustInsertMap(t, store, m)
		mustRegister(t, store, ds.ID, m.ID)
	}

	// the extent must not change before finalization
	before, err := store.GetDataset(ds.ID)
	if err != nil {
		t.Fatalf("GetDataset failed: %v", err)
	}
	if before.Extent.NumberOfMaps != 0 {
		t.Errorf("extent changed before UpdateFromRegisteredMaps: %+v", before.Extent)
	}

	updated, err := store.UpdateFromRegisteredMaps(ds.ID)
	if err != nil {
		t.Fatalf("UpdateFromRegisteredMaps failed: %v", err)
	}

	for name, got := range map[string]tgis.Dataset{"returned": updated, "stored": mustGet(t, store, ds.ID)} {
		ext := got.Extent
		if ext.NumberOfMaps != 2 {
			t.Errorf("%s: NumberOfMaps = %d, want 2", name, ext.NumberOfMaps)
		}
		if ext.Absolute == nil || !ext.Absolute.Start.Equal(Day(2)) || ext.Absolute.End == nil || !ext.Absolute.End.Equal(Day(5)) {
			t.Errorf("%s: temporal extent = %+v, want %v..%v", name, ext.Absolute, Day(2), Day(5))
		}
		want := tgis.SpatialExtent{North: 100, South: -10, East: 120, West: -20}
		if ext.Spatial != want {
			t.Errorf("%s: spatial extent = %+v, want %+v", name, ext.Spatial, want)
		}
		if ext.MinMin == nil || *ext.MinMin != -1 || ext.MaxMax == nil || *ext.MaxMax != 4 {
			t.Errorf("%s: value aggregates = %v / %v", name, ext.MinMin, ext.MaxMax)
		}
		if got.Title != ds.Title {
			t.Errorf("%s: title changed to %q", name, got.Title)
		}
	}
}

func testDeleteCascade(t *testing.T, store tgis.IStore) {
	defer store.Close()

	first := NewDataset("first", tgis.TemporalAbsolute)
	second := NewDataset("second", tgis.TemporalAbsolute)
	mustInsertDataset(t, store, first)
	mustInsertDataset(t, store, second)

	a := NewAbsoluteMap("a", 1, 2, nil, nil)
	b := NewAbsoluteMap("b", 2, 3, nil, nil)
	for _, m := range []tgis.Map{a, b} {
		mustInsertMap(t, store, m)
		mustRegister(t, store, first.ID, m.ID)
		mustRegister(t, store, second.ID, m.ID)
	}

	// deleting a map unregisters it everywhere
	if err := store.DeleteMap(a.ID); err != nil {
		t.Fatalf("DeleteMap failed: %v", err)
	}
	for _, ds := range []tgis.ID{first.ID, second.ID} {
		maps, err := store.RegisteredMaps(ds, "")
		if err != nil {
			t.Fatalf("RegisteredMaps failed: %v", err)
		}
		if !equalIDs(ids(maps), []tgis.ID{b.ID}) {
			t.Errorf("RegisteredMaps(%s) = %v, want [%s]", ds, ids(maps), b.ID)
		}
	}

	// deleting a dataset keeps the maps and the other registrations
	if err := store.DeleteDataset(first.ID); err != nil {
		t.Fatalf("DeleteDataset failed: %v", err)
	}
	if ok, _ := store.HasMap(b.ID); !ok {
		t.Errorf("map was removed together with the dataset")
	}
	maps, err := store.RegisteredMaps(second.ID, "")
	if err != nil {
		t.Fatalf("RegisteredMaps failed: %v", err)
	}
	if !equalIDs(ids(maps), []tgis.ID{b.ID}) {
		t.Errorf("RegisteredMaps(%s) = %v, want [%s]", second.ID, ids(maps), b.ID)
	}

	// a recreated dataset with the same id starts empty
	mustInsertDataset(t, store, first)
	maps, err = store.RegisteredMaps(first.ID, "")
	if err != nil {
		t.Fatalf("RegisteredMaps failed: %v", err)
	}
	if len(maps) != 0 {
		t.Errorf("recreated dataset has members %v", ids(maps))
	}
}

func mustGet(t *testing.T, store tgis.IStore, id tgis.ID) tgis.Dataset {
	t.Helper()
	ds, err := store.GetDataset(id)
	if err != nil {
		t.Fatalf("GetDataset(%s) failed: %v", id, err)
	}
	return ds
}
