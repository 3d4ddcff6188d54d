package gisenv

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sessionFile = `GISDBASE: /home/user/grassdata
LOCATION_NAME: nc_spm
MAPSET: user1
GUI: text
PID: 4711
`

func TestParse(t *testing.T) {
	env, err := Parse([]byte(sessionFile))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if env.GISDBase != "/home/user/grassdata" || env.LocationName != "nc_spm" || env.Mapset != "user1" {
		t.Errorf("Parse = %+v", env)
	}
	if v, ok := env.Get("GUI"); !ok || v != "text" {
		t.Errorf("Get(GUI) = %q, %v", v, ok)
	}
	if v, ok := env.Get("PID"); !ok || v != "4711" {
		t.Errorf("Get(PID) = %q, %v", v, ok)
	}
	if _, ok := env.Get("MISSING"); ok {
		t.Errorf("Get(MISSING) reported a value")
	}

	want := filepath.Join("/home/user/grassdata", "nc_spm", "PERMANENT", "tgis", "sqlite.db")
	if got := env.TemporalDatabase(); got != want {
		t.Errorf("TemporalDatabase() = %q, want %q", got, want)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte("MAPSET: [unterminated")); err == nil {
		t.Errorf("expected an error")
	}
}

func TestTemporalDatabaseUnknownLocation(t *testing.T) {
	env := Env{Mapset: "user1"}
	if got := env.TemporalDatabase(); got != "" {
		t.Errorf("TemporalDatabase() = %q, want empty", got)
	}
}

func TestCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rc")
	if err := os.WriteFile(path, []byte(sessionFile), 0o644); err != nil {
		t.Fatalf("write session file: %v", err)
	}

	t.Setenv(EnvGISRC, path)
	env, err := Current()
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if env.Mapset != "user1" {
		t.Errorf("Mapset = %q", env.Mapset)
	}

	t.Setenv(EnvGISRC, "")
	if _, err := Current(); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}

	t.Setenv(EnvGISRC, filepath.Join(t.TempDir(), "missing"))
	if _, err := Current(); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}
