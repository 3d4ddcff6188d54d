package tgis

import "strings"

// ID is the fully qualified identifier of a dataset or a map (name@mapset).
type ID string

// NewID joins a name and a mapset into an ID.
func NewID(name, mapset string) ID {
	return ID(name + "@" + mapset)
}

// QualifyID returns s unchanged if it already contains a mapset,
// otherwise it appends the given mapset.
func QualifyID(s, mapset string) ID {
	if strings.Contains(s, "@") {
		return ID(s)
	}
	return NewID(s, mapset)
}

// Name returns the part before the @.
func (id ID) Name() string {
	name, _, _ := strings.Cut(string(id), "@")
	return name
}

// Mapset returns the part after the @, or an empty string for unqualified ids.
func (id ID) Mapset() string {
	_, mapset, _ := strings.Cut(string(id), "@")
	return mapset
}

// IsQualified reports whether the id has a non-empty name and mapset.
func (id ID) IsQualified() bool {
	name, mapset, ok := strings.Cut(string(id), "@")
	return ok && name != "" && mapset != ""
}

func (id ID) String() string {
	return string(id)
}
