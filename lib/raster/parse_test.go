package raster

import (
	"context"
	"testing"

	"github.com/ValentinKolb/tgis/lib/tgis"
)

const infoOutput = `north=80
south=0
east=120
west=0
nsres=10
ewres=10
rows=8
cols=12
cells=96
datatype=DCELL
ncats=0
min=-1.5
max=12
`

func TestParseInfo(t *testing.T) {
	info, err := ParseInfo(infoOutput)
	if err != nil {
		t.Fatalf("ParseInfo failed: %v", err)
	}

	want := tgis.SpatialExtent{North: 80, South: 0, East: 120, West: 0}
	if info.Spatial != want {
		t.Errorf("Spatial = %+v, want %+v", info.Spatial, want)
	}
	if info.Metadata.NSRes != 10 || info.Metadata.EWRes != 10 || info.Metadata.Rows != 8 || info.Metadata.Cols != 12 {
		t.Errorf("Metadata = %+v", info.Metadata)
	}
	if info.Metadata.Min == nil || *info.Metadata.Min != -1.5 || info.Metadata.Max == nil || *info.Metadata.Max != 12 {
		t.Errorf("range = %v..%v, want -1.5..12", info.Metadata.Min, info.Metadata.Max)
	}
	if info.DataType != "DCELL" {
		t.Errorf("DataType = %q", info.DataType)
	}
	if info.IsNull() {
		t.Errorf("IsNull() = true for a map with values")
	}
}

func TestParseInfoNull(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{name: "NULL values", output: "north=1\nsouth=0\neast=1\nwest=0\nnsres=1\newres=1\nmin=NULL\nmax=NULL\n"},
		{name: "Lower case", output: "north=1\nsouth=0\neast=1\nwest=0\nnsres=1\newres=1\nmin=null\nmax=null\n"},
		{name: "Missing keys", output: "north=1\nsouth=0\neast=1\nwest=0\nnsres=1\newres=1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseInfo(tt.output)
			if err != nil {
				t.Fatalf("ParseInfo failed: %v", err)
			}
			if !info.IsNull() {
				t.Errorf("expected a null map, got %v..%v", info.Metadata.Min, info.Metadata.Max)
			}
		})
	}
}

func TestParseInfoErrors(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{name: "Missing extent", output: "min=1\nmax=2\n"},
		{name: "Invalid number", output: "north=abc\nsouth=0\neast=1\nwest=0\nnsres=1\newres=1\n"},
		{name: "Invalid rows", output: "north=1\nsouth=0\neast=1\nwest=0\nnsres=1\newres=1\nrows=x\n"},
		{name: "Invalid min", output: "north=1\nsouth=0\neast=1\nwest=0\nnsres=1\newres=1\nmin=low\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseInfo(tt.output); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestInfoApply(t *testing.T) {
	info, err := ParseInfo(infoOutput)
	if err != nil {
		t.Fatalf("ParseInfo failed: %v", err)
	}

	m := tgis.Map{ID: "a@user1"}
	info.Apply(&m)
	if m.Spatial != info.Spatial || m.Metadata.Rows != 8 || *m.Metadata.Max != 12 {
		t.Errorf("Apply did not copy the info: %+v", m)
	}
}

func TestMissingBinary(t *testing.T) {
	exec := NewGRASSExecutor("/nonexistent/r.mapcalc", "/nonexistent/r.info")

	if err := exec.MapCalc(context.Background(), "a = 1", false); err == nil {
		t.Errorf("expected an error for a missing r.mapcalc")
	}
	if _, err := exec.Info(context.Background(), "a"); err == nil {
		t.Errorf("expected an error for a missing r.info")
	}
}
