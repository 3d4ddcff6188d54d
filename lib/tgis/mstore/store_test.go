package mstore

import (
	"testing"

	"github.com/ValentinKolb/tgis/lib/tgis"
	tgistesting "github.com/ValentinKolb/tgis/lib/tgis/testing"
)

func Test(t *testing.T) {
	tgistesting.RunStoreTests(t, "MemoryStore", func(t *testing.T) tgis.IStore {
		return NewMemoryStore()
	})
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Date", input: "start_time >= '2010-01-02'", expected: "start_time >= '2010-01-02T00:00:00'"},
		{name: "Date and time", input: "end_time < '2010-01-02 06:30'", expected: "end_time < '2010-01-02T06:30:00'"},
		{name: "Equality", input: "name = 'a'", expected: "name == 'a'"},
		{name: "Double equality stays", input: "name == 'a'", expected: "name == 'a'"},
		{name: "Not equal", input: "name <> 'a' and name != 'b'", expected: "name != 'a' && name != 'b'"},
		{name: "Keywords", input: "NOT (min < 0 OR max > 10) AND rows = 8", expected: "! (min < 0 || max > 10) && rows == 8"},
		{name: "Keywords inside literals", input: "name = 'sand or rock'", expected: "name == 'sand or rock'"},
		{name: "Keyword prefixes", input: "android = 1", expected: "android == 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := translate(tt.input)
			if err != nil {
				t.Fatalf("translate(%q) failed: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("translate(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}

	for _, input := range []string{"NOT min < 0", "name = 'open", "min > 0 AND NOT"} {
		if _, err := translate(input); err == nil {
			t.Errorf("translate(%q) succeeded, expected an error", input)
		}
	}
}

func TestPredicateErrors(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ds := tgistesting.NewDataset("precip", tgis.TemporalAbsolute)
	if err := store.InsertDataset(ds); err != nil {
		t.Fatalf("InsertDataset failed: %v", err)
	}

	if _, err := store.RegisteredMaps(ds.ID, "no_such_column > 3"); !tgis.HasCode(err, tgis.RetCInvalidOperation) {
		t.Errorf("expected invalid operation for an unknown column, got %v", err)
	}
	if _, err := store.RegisteredMaps(ds.ID, "start_time >="); !tgis.HasCode(err, tgis.RetCInvalidOperation) {
		t.Errorf("expected invalid operation for a malformed predicate, got %v", err)
	}
	if _, err := store.RegisteredMaps(ds.ID, "NOT start_time >= '2010-01-02'"); !tgis.HasCode(err, tgis.RetCInvalidOperation) {
		t.Errorf("expected invalid operation for NOT without parentheses, got %v", err)
	}

	m := tgistesting.NewAbsoluteMap("precip_1", 1, 2, nil, nil)
	if err := store.InsertMap(m); err != nil {
		t.Fatalf("InsertMap failed: %v", err)
	}
	if err := store.RegisterMap(ds.ID, m.ID); err != nil {
		t.Fatalf("RegisterMap failed: %v", err)
	}
	for _, where := range []string{"name > 5", "start_time > 3", "NOT (rows)"} {
		if _, err := store.RegisteredMaps(ds.ID, where); !tgis.HasCode(err, tgis.RetCInvalidOperation) {
			t.Errorf("RegisteredMaps(%q): expected invalid operation for mismatched types, got %v", where, err)
		}
	}
}

func TestNullValuesDoNotMatch(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ds := tgistesting.NewDataset("precip", tgis.TemporalAbsolute)
	if err := store.InsertDataset(ds); err != nil {
		t.Fatalf("InsertDataset failed: %v", err)
	}
	for _, m := range []tgis.Map{
		tgistesting.NewAbsoluteMap("valued", 1, 2, tgistesting.Float(1), tgistesting.Float(5)),
		tgistesting.NewAbsoluteMap("null", 2, 3, nil, nil),
	} {
		if err := store.InsertMap(m); err != nil {
			t.Fatalf("InsertMap failed: %v", err)
		}
		if err := store.RegisterMap(ds.ID, m.ID); err != nil {
			t.Fatalf("RegisterMap failed: %v", err)
		}
	}

	maps, err := store.RegisteredMaps(ds.ID, "max > 0")
	if err != nil {
		t.Fatalf("RegisteredMaps failed: %v", err)
	}
	if len(maps) != 1 || maps[0].ID != "valued@user1" {
		t.Errorf("RegisteredMaps = %v, want only valued@user1", maps)
	}
}

func TestClosedStore(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Close()

	if _, err := store.HasDataset("precip@user1"); !tgis.HasCode(err, tgis.RetCInvalidOperation) {
		t.Errorf("expected an error on a closed store, got %v", err)
	}
}

func TestStoredRecordsAreCopies(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	m := tgistesting.NewAbsoluteMap("a", 1, 2, tgistesting.Float(1), nil)
	if err := store.InsertMap(m); err != nil {
		t.Fatalf("InsertMap failed: %v", err)
	}
	*m.Metadata.Min = 99

	got, err := store.GetMap(m.ID)
	if err != nil {
		t.Fatalf("GetMap failed: %v", err)
	}
	if *got.Metadata.Min != 1 {
		t.Errorf("stored map was modified through the caller's pointer: min = %v", *got.Metadata.Min)
	}
}
