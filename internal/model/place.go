// Package model defines the in-memory GEON place record shared by the
// parser, generator, converter and validator.
package model

import (
	"strconv"

	"github.com/rotisserie/eris"
)

// Coordinate is a WGS84 point. Range is not enforced here.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// String renders the coordinate as "lat, lon".
func (c Coordinate) String() string {
	return formatFloat(c.Lat) + ", " + formatFloat(c.Lon)
}

// Position returns the GeoJSON [lon, lat] ordering.
func (c Coordinate) Position() []float64 {
	return []float64{c.Lon, c.Lat}
}

// CoordinateFromPosition builds a Coordinate from a GeoJSON [lon, lat] position.
func CoordinateFromPosition(pos []float64) (Coordinate, error) {
	if len(pos) < 2 {
		return Coordinate{}, eris.Errorf("model: position needs 2 values, got %d", len(pos))
	}
	return Coordinate{Lat: pos[1], Lon: pos[0]}, nil
}

// Extent is a bounding box independent of Boundary.
type Extent struct {
	North float64 `json:"north" yaml:"north"`
	South float64 `json:"south" yaml:"south"`
	East  float64 `json:"east" yaml:"east"`
	West  float64 `json:"west" yaml:"west"`
}

// String renders the extent as "north, south, east, west".
func (e Extent) String() string {
	return formatFloat(e.North) + ", " + formatFloat(e.South) + ", " +
		formatFloat(e.East) + ", " + formatFloat(e.West)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Place is one GEON record. Only Name is always present; every other field
// is optional and its zero value means absent.
type Place struct {
	// Identity
	Name string `json:"place" yaml:"place"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`

	// Geometry
	Location  *Coordinate  `json:"location,omitempty" yaml:"location,omitempty"`
	Boundary  []Coordinate `json:"boundary,omitempty" yaml:"boundary,omitempty"`
	Extent    *Extent      `json:"extent,omitempty" yaml:"extent,omitempty"`
	Elevation string       `json:"elevation,omitempty" yaml:"elevation,omitempty"`
	Area      string       `json:"area,omitempty" yaml:"area,omitempty"`

	// Semantic
	Purpose    []string          `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	Experience map[string]string `json:"experience,omitempty" yaml:"experience,omitempty"`
	Character  []string          `json:"character,omitempty" yaml:"character,omitempty"`

	// Relational
	Adjacencies  []string          `json:"adjacencies,omitempty" yaml:"adjacencies,omitempty"`
	Connectivity map[string]string `json:"connectivity,omitempty" yaml:"connectivity,omitempty"`
	Contains     []Place           `json:"contains,omitempty" yaml:"contains,omitempty"`
	PartOf       string            `json:"part_of,omitempty" yaml:"part_of,omitempty"`
	Viewsheds    Viewsheds         `json:"viewsheds,omitzero" yaml:"viewsheds,omitempty"`

	// Temporal
	Temporal Mapping `json:"temporal,omitzero" yaml:"temporal,omitempty"`
	Lifespan Mapping `json:"lifespan,omitzero" yaml:"lifespan,omitempty"`

	// Provenance
	Source     []string `json:"source,omitempty" yaml:"source,omitempty"`
	Confidence Mapping  `json:"confidence,omitzero" yaml:"confidence,omitempty"`
	Updated    string   `json:"updated,omitempty" yaml:"updated,omitempty"`

	// Extended domain groups
	BuiltForm       Mapping   `json:"built_form,omitzero" yaml:"built_form,omitempty"`
	Ecology         Mapping   `json:"ecology,omitzero" yaml:"ecology,omitempty"`
	Infrastructure  Mapping   `json:"infrastructure,omitzero" yaml:"infrastructure,omitempty"`
	Demographics    Mapping   `json:"demographics,omitzero" yaml:"demographics,omitempty"`
	Economy         Mapping   `json:"economy,omitzero" yaml:"economy,omitempty"`
	Visual          Mapping   `json:"visual,omitzero" yaml:"visual,omitempty"`
	VerticalProfile Mapping   `json:"vertical_profile,omitzero" yaml:"vertical_profile,omitempty"`
	History         []Mapping `json:"history,omitempty" yaml:"history,omitempty"`

	// Extra holds every field outside the known vocabulary, as parsed.
	Extra Mapping `json:"extra,omitzero" yaml:"extra,omitempty"`
}

// ViewshedKind identifies the shape stored in Viewsheds.
type ViewshedKind int

// Viewshed kinds.
const (
	ViewshedsNone ViewshedKind = iota
	ViewshedsList
	ViewshedsMapping
)

// Viewsheds is either an ordered list of descriptions or a keyed mapping,
// echoing whichever shape was read.
type Viewsheds struct {
	Kind    ViewshedKind
	List    []string
	Mapping Mapping
}

// ViewshedList builds a list-shaped Viewsheds.
func ViewshedList(items ...string) Viewsheds {
	return Viewsheds{Kind: ViewshedsList, List: items}
}

// ViewshedMapping builds a mapping-shaped Viewsheds.
func ViewshedMapping(m Mapping) Viewsheds {
	return Viewsheds{Kind: ViewshedsMapping, Mapping: m}
}

// IsZero reports whether no viewsheds are recorded.
func (v Viewsheds) IsZero() bool {
	switch v.Kind {
	case ViewshedsList:
		return len(v.List) == 0
	case ViewshedsMapping:
		return v.Mapping.Len() == 0
	}
	return true
}

// Value converts v into the generic Value tree.
func (v Viewsheds) Value() Value {
	switch v.Kind {
	case ViewshedsList:
		return StringsValue(v.List...)
	case ViewshedsMapping:
		return MappingValue(v.Mapping)
	}
	return ListValue()
}

// MarshalJSON renders the populated arm, or null.
func (v Viewsheds) MarshalJSON() ([]byte, error) {
	if v.IsZero() {
		return []byte("null"), nil
	}
	return v.Value().MarshalJSON()
}

// MarshalYAML renders the populated arm.
func (v Viewsheds) MarshalYAML() (any, error) {
	return v.Value().yamlNode(), nil
}
