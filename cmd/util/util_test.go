package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestWrapString(t *testing.T) {
	text := "The temporal database. A file path for sqlite, a connection string for postgres."
	wrapped := WrapString(text)

	for _, line := range strings.Split(wrapped, "\n") {
		if len(line) > Wrap {
			t.Errorf("line %q is longer than %d characters", line, Wrap)
		}
	}
	if strings.Join(strings.Fields(wrapped), " ") != text {
		t.Errorf("wrapping changed the words: %q", wrapped)
	}
	if WrapString("") != "" {
		t.Errorf("WrapString(\"\") is not empty")
	}
}

func writeSession(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "rc")
	content := "GISDBASE: " + dir + "\nLOCATION_NAME: nc_spm\nMAPSET: user1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write session file: %v", err)
	}
	return dir
}

func TestGetConfigFromSession(t *testing.T) {
	dir := writeSession(t)
	t.Setenv("GISRC", filepath.Join(dir, "rc"))
	t.Setenv("GRASS_OVERWRITE", "1")
	viper.Reset()
	defer viper.Reset()

	conf, err := GetConfig()
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if conf.Mapset != "user1" {
		t.Errorf("Mapset = %q, want user1", conf.Mapset)
	}
	want := filepath.Join(dir, "nc_spm", "PERMANENT", "tgis", "sqlite.db")
	if conf.DBDSN != want {
		t.Errorf("DBDSN = %q, want %q", conf.DBDSN, want)
	}
	if !conf.Overwrite {
		t.Errorf("GRASS_OVERWRITE=1 did not enable overwrite")
	}
}

func TestGetConfigEnvironmentWins(t *testing.T) {
	dir := writeSession(t)
	t.Setenv("GISRC", filepath.Join(dir, "rc"))
	t.Setenv("TGIS_MAPSET", "PERMANENT")
	t.Setenv("TGIS_DB_DSN", ":memory:")
	viper.Reset()
	defer viper.Reset()
	InitConfig()

	conf, err := GetConfig()
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if conf.Mapset != "PERMANENT" || conf.DBDSN != ":memory:" {
		t.Errorf("environment not applied: %+v", conf)
	}
}

func TestGetConfigWithoutSession(t *testing.T) {
	t.Setenv("GISRC", "")
	viper.Reset()
	defer viper.Reset()

	conf, err := GetConfig()
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if conf.DBDSN != DefaultDSN || conf.Mapset != "" {
		t.Errorf("unexpected defaults: %+v", conf)
	}
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	t.Setenv("GISRC", "")
	viper.Reset()
	defer viper.Reset()

	conf, err := GetConfig()
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	conf.DBDriver = "oracle"
	if _, err := OpenStore(conf); err == nil {
		t.Errorf("expected an error for an unknown driver")
	}
}
