package raster

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// ParseInfo parses the shell style output of "r.info -g -r":
//
//	north=228500
//	south=215000
//	...
//	min=NULL
//	max=NULL
//
// A value of NULL (or a missing min/max key) leaves the bound undefined.
func ParseInfo(output string) (Info, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	if err := scanner.Err(); err != nil {
		return Info{}, err
	}

	var info Info
	var err error
	floats := []struct {
		key string
		dst *float64
	}{
		{"north", &info.Spatial.North},
		{"south", &info.Spatial.South},
		{"east", &info.Spatial.East},
		{"west", &info.Spatial.West},
		{"nsres", &info.Metadata.NSRes},
		{"ewres", &info.Metadata.EWRes},
	}
	for _, f := range floats {
		if *f.dst, err = requireFloat(values, f.key); err != nil {
			return Info{}, err
		}
	}

	if info.Metadata.Rows, err = optionalInt(values, "rows"); err != nil {
		return Info{}, err
	}
	if info.Metadata.Cols, err = optionalInt(values, "cols"); err != nil {
		return Info{}, err
	}
	if info.Metadata.Min, err = nullableFloat(values, "min"); err != nil {
		return Info{}, err
	}
	if info.Metadata.Max, err = nullableFloat(values, "max"); err != nil {
		return Info{}, err
	}
	info.DataType = values["datatype"]
	return info, nil
}

func requireFloat(values map[string]string, key string) (float64, error) {
	s, ok := values[key]
	if !ok {
		return 0, fmt.Errorf("r.info output is missing %q", key)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, s, err)
	}
	return v, nil
}

func optionalInt(values map[string]string, key string) (int, error) {
	s, ok := values[key]
	if !ok {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, s, err)
	}
	return v, nil
}

func nullableFloat(values map[string]string, key string) (*float64, error) {
	s, ok := values[key]
	if !ok || s == "" || strings.EqualFold(s, "NULL") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, s, err)
	}
	return &v, nil
}
