package extract

import (
	"bytes"
	"testing"

	"github.com/ValentinKolb/tgis/lib/tgis"
)

func TestSubstitute(t *testing.T) {
	const dataset = tgis.ID("precip@user1")
	const mapID = tgis.ID("precip_3@user1")

	tests := []struct {
		name       string
		expression string
		expected   string
	}{
		{name: "Dataset name", expression: "precip * 2", expected: "precip_3@user1 * 2"},
		{name: "Dataset id", expression: "precip@user1 * 2", expected: "precip_3@user1 * 2"},
		{name: "Both forms", expression: "precip@user1 + precip", expected: "precip_3@user1 + precip_3@user1"},
		{name: "Function arguments", expression: "if(precip > 10, precip, null())", expected: "if(precip_3@user1 > 10, precip_3@user1, null())"},
		{name: "Longer names stay", expression: "precip_total + precipitation", expected: "precip_total + precipitation"},
		{name: "Other mapset stays", expression: "precip@PERMANENT", expected: "precip@PERMANENT"},
		{name: "No match passes through", expression: "A * 2", expected: "A * 2"},
		{name: "No spaces", expression: "(precip*2)/precip", expected: "(precip_3@user1*2)/precip_3@user1"},
		{name: "Empty", expression: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Substitute(tt.expression, dataset, mapID); got != tt.expected {
				t.Errorf("Substitute(%q) = %q, want %q", tt.expression, got, tt.expected)
			}
		})
	}
}

func TestSubstituteDoesNotRescan(t *testing.T) {
	// the map id contains the dataset name, it must be inserted only once
	got := Substitute("precip", "precip@user1", "precip@user1_map")
	if got != "precip@user1_map" {
		t.Errorf("Substitute = %q", got)
	}
}

func TestStatement(t *testing.T) {
	if got := Statement("derived_1", "precip_1@user1 * 2"); got != "derived_1 = precip_1@user1 * 2" {
		t.Errorf("Statement = %q", got)
	}
}

func TestProgressFormats(t *testing.T) {
	tests := []struct {
		name     string
		format   MessageFormat
		expected string
	}{
		{name: "Plain", format: FormatPlain, expected: "   0%\b\b\b\b\b  50%\b\b\b\b\b 100%\n"},
		{name: "GUI", format: FormatGUI, expected: "GRASS_INFO_PERCENT: 0\nGRASS_INFO_PERCENT: 50\nGRASS_INFO_PERCENT: 100\n"},
		{name: "Silent", format: FormatSilent, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := NewProgress(&buf, tt.format)
			p.Percent(0, 2)
			p.Percent(1, 2)
			p.Percent(1, 2) // unchanged percentage is not printed again
			p.Percent(2, 2)
			if got := buf.String(); got != tt.expected {
				t.Errorf("output = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseMessageFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected MessageFormat
		wantErr  bool
	}{
		{input: "plain", expected: FormatPlain},
		{input: "standard", expected: FormatPlain},
		{input: "", expected: FormatPlain},
		{input: "GUI", expected: FormatGUI},
		{input: "silent", expected: FormatSilent},
		{input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseMessageFormat(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMessageFormat(%q): expected an error", tt.input)
			}
			continue
		}
		if err != nil || got != tt.expected {
			t.Errorf("ParseMessageFormat(%q) = %q, %v; want %q", tt.input, got, err, tt.expected)
		}
	}
}
