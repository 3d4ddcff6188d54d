package sqlstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ValentinKolb/tgis/lib/tgis"
	tgistesting "github.com/ValentinKolb/tgis/lib/tgis/testing"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	return store
}

func TestSQLiteStore(t *testing.T) {
	tgistesting.RunStoreTests(t, "SQLiteStore", func(t *testing.T) tgis.IStore {
		return newTestStore(t)
	})
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TGIS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TGIS_TEST_POSTGRES_DSN not set")
	}
	tgistesting.RunStoreTests(t, "PostgresStore", func(t *testing.T) tgis.IStore {
		store, err := Open(DriverPostgres, dsn)
		require.NoError(t, err)
		for _, table := range []string{"strds_register", "strds", "raster_maps"} {
			_, err := store.db.Exec("DELETE FROM " + table)
			require.NoError(t, err)
		}
		return store
	})
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PERMANENT", "tgis", "sqlite.db")

	store, err := Open(DriverSQLite, path)
	require.NoError(t, err)

	ds := tgistesting.NewDataset("precip", tgis.TemporalAbsolute)
	require.NoError(t, store.InsertDataset(ds))
	require.NoError(t, store.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	// reopening keeps the data and does not fail on the existing schema
	store, err = Open(DriverSQLite, path)
	require.NoError(t, err)
	defer store.Close()

	ok, err := store.HasDataset(ds.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseDriver(t *testing.T) {
	tests := []struct {
		input    string
		expected Driver
		wantErr  bool
	}{
		{input: "sqlite", expected: DriverSQLite},
		{input: "SQLite3", expected: DriverSQLite},
		{input: "postgres", expected: DriverPostgres},
		{input: "postgresql", expected: DriverPostgres},
		{input: "pg", expected: DriverPostgres},
		{input: "mysql", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDriver(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRebind(t *testing.T) {
	sqlite, err := dialectFor(DriverSQLite)
	require.NoError(t, err)
	postgres, err := dialectFor(DriverPostgres)
	require.NoError(t, err)

	query := "SELECT 1 FROM strds WHERE id = ? AND mapset = ?"
	assert.Equal(t, query, sqlite.rebind(query))
	assert.Equal(t, "SELECT 1 FROM strds WHERE id = $1 AND mapset = $2", postgres.rebind(query))
}

func TestInvalidWhere(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ds := tgistesting.NewDataset("precip", tgis.TemporalAbsolute)
	require.NoError(t, store.InsertDataset(ds))

	_, err := store.RegisteredMaps(ds.ID, "no_such_column > 3")
	assert.True(t, tgis.HasCode(err, tgis.RetCInvalidOperation), "got %v", err)
}

func TestWhereUsesBackendFunctions(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	ds := tgistesting.NewDataset("precip", tgis.TemporalAbsolute)
	require.NoError(t, store.InsertDataset(ds))
	for _, m := range []tgis.Map{
		tgistesting.NewAbsoluteMap("precip_1", 1, 2, tgistesting.Float(0), tgistesting.Float(3)),
		tgistesting.NewAbsoluteMap("precip_2", 2, 3, nil, nil),
	} {
		require.NoError(t, store.InsertMap(m))
		require.NoError(t, store.RegisterMap(ds.ID, m.ID))
	}

	maps, err := store.RegisteredMaps(ds.ID, "substr(name, 8) = '2'")
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, tgis.ID("precip_2@user1"), maps[0].ID)

	maps, err = store.RegisteredMaps(ds.ID, "max IS NULL")
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.True(t, maps[0].Metadata.IsNull())
}

func TestNullTimeScan(t *testing.T) {
	local := time.FixedZone("CET", 3600)
	tests := []struct {
		name     string
		value    any
		expected time.Time
		valid    bool
		wantErr  bool
	}{
		{name: "Nil", value: nil},
		{name: "Empty", value: ""},
		{name: "Text", value: "2010-01-02 03:04:05", expected: time.Date(2010, 1, 2, 3, 4, 5, 0, time.UTC), valid: true},
		{name: "Bytes", value: []byte("2010-01-02"), expected: time.Date(2010, 1, 2, 0, 0, 0, 0, time.UTC), valid: true},
		{name: "RFC3339", value: "2010-01-02T03:04:05Z", expected: time.Date(2010, 1, 2, 3, 4, 5, 0, time.UTC), valid: true},
		{name: "Time keeps wall clock", value: time.Date(2010, 1, 2, 3, 4, 5, 999, local), expected: time.Date(2010, 1, 2, 3, 4, 5, 0, time.UTC), valid: true},
		{name: "Garbage", value: "yesterday", wantErr: true},
		{name: "Wrong type", value: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n nullTime
			err := n.Scan(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.valid, n.Valid)
			if tt.valid {
				assert.True(t, tt.expected.Equal(n.Time), "got %v, want %v", n.Time, tt.expected)
			}
		})
	}
}

func TestTimesAreStoredAsWallClock(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	zone := time.FixedZone("UTC+2", 2*3600)
	m := tgis.Map{ID: "precip@user1"}
	m.SetAbsoluteTime(time.Date(2010, 5, 1, 12, 30, 0, 0, zone), nil, nil)
	require.NoError(t, store.InsertMap(m))

	var raw string
	require.NoError(t, store.db.QueryRow(`SELECT abs_start_time FROM raster_maps WHERE id = ?`, "precip@user1").Scan(&raw))
	assert.Equal(t, "2010-05-01 12:30:00", raw)
}
