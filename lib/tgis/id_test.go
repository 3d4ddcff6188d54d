package tgis

import "testing"

func TestQualifyID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		mapset   string
		expected ID
	}{
		{name: "Bare name", input: "precip", mapset: "user1", expected: "precip@user1"},
		{name: "Qualified name keeps its mapset", input: "precip@PERMANENT", mapset: "user1", expected: "precip@PERMANENT"},
		{name: "Name with dots", input: "precip.daily", mapset: "user1", expected: "precip.daily@user1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QualifyID(tt.input, tt.mapset); got != tt.expected {
				t.Errorf("QualifyID(%q, %q) = %q, want %q", tt.input, tt.mapset, got, tt.expected)
			}
		})
	}
}

func TestIDParts(t *testing.T) {
	tests := []struct {
		id        ID
		name      string
		mapset    string
		qualified bool
	}{
		{id: "precip@user1", name: "precip", mapset: "user1", qualified: true},
		{id: "precip", name: "precip", mapset: "", qualified: false},
		{id: "@user1", name: "", mapset: "user1", qualified: false},
		{id: "precip@", name: "precip", mapset: "", qualified: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			if got := tt.id.Name(); got != tt.name {
				t.Errorf("Name() = %q, want %q", got, tt.name)
			}
			if got := tt.id.Mapset(); got != tt.mapset {
				t.Errorf("Mapset() = %q, want %q", got, tt.mapset)
			}
			if got := tt.id.IsQualified(); got != tt.qualified {
				t.Errorf("IsQualified() = %v, want %v", got, tt.qualified)
			}
		})
	}
}

func TestErrorCodes(t *testing.T) {
	err := NewErrorf(RetCNotFound, "dataset <%s> not found", "precip@user1")
	if !IsNotFound(err) {
		t.Errorf("expected IsNotFound to be true for %v", err)
	}
	if IsAlreadyExists(err) {
		t.Errorf("expected IsAlreadyExists to be false for %v", err)
	}

	wrapped := wrapErr(err)
	if !IsNotFound(wrapped) {
		t.Errorf("expected wrapped error to keep its code")
	}
	if IsNotFound(nil) {
		t.Errorf("nil must not be a not found error")
	}
}

type wrapper struct{ err error }

func (w wrapper) Error() string { return "wrapped: " + w.err.Error() }
func (w wrapper) Unwrap() error { return w.err }

func wrapErr(err error) error { return wrapper{err} }
