// Package gisenv reads the GRASS session environment.
//
// A GRASS session is described by the file named in $GISRC. It holds "KEY: value"
// lines, which is a subset of YAML:
//
//	GISDBASE: /home/user/grassdata
//	LOCATION_NAME: nc_spm
//	MAPSET: user1
//	GUI: text
package gisenv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// EnvGISRC is the environment variable naming the session file.
const EnvGISRC = "GISRC"

// ErrNoSession is returned by Current if $GISRC is not set.
var ErrNoSession = errors.New("GISRC is not set, not running in a GRASS session")

// Env is the content of a session file.
type Env struct {
	GISDBase     string `yaml:"GISDBASE"`
	LocationName string `yaml:"LOCATION_NAME"`
	Mapset       string `yaml:"MAPSET"`
	// Values holds all keys, including the ones above.
	Values map[string]string `yaml:"-"`
}

// Parse parses the content of a session file.
func Parse(data []byte) (Env, error) {
	var env Env
	if err := yaml.Unmarshal(data, &env); err != nil {
		return Env{}, fmt.Errorf("parse session file: %w", err)
	}
	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Env{}, fmt.Errorf("parse session file: %w", err)
	}
	env.Values = make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			env.Values[k] = ""
			continue
		}
		env.Values[k] = fmt.Sprint(v)
	}
	return env, nil
}

// Load reads and parses the session file at path.
func Load(path string) (Env, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Env{}, fmt.Errorf("read session file: %w", err)
	}
	return Parse(data)
}

// Current loads the session file named by $GISRC.
func Current() (Env, error) {
	path := os.Getenv(EnvGISRC)
	if path == "" {
		return Env{}, ErrNoSession
	}
	return Load(path)
}

// Get returns the value of a session variable, like "g.gisenv get=KEY".
func (e Env) Get(key string) (string, bool) {
	v, ok := e.Values[key]
	return v, ok
}

// LocationPath returns $GISDBASE/$LOCATION_NAME.
func (e Env) LocationPath() string {
	return filepath.Join(e.GISDBase, e.LocationName)
}

// TemporalDatabase returns the default SQLite temporal database of the location,
// $GISDBASE/$LOCATION_NAME/PERMANENT/tgis/sqlite.db. It returns "" if the
// location is not known.
func (e Env) TemporalDatabase() string {
	if e.GISDBase == "" || e.LocationName == "" {
		return ""
	}
	return filepath.Join(e.LocationPath(), "PERMANENT", "tgis", "sqlite.db")
}
