// Package convert maps GEON places to and from GeoJSON and reads ESRI
// shapefiles into places. Geometry is decoded and encoded with go-geom.
package convert

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/geon/internal/model"
)

// Defaults applied when an Options field is left empty.
const (
	DefaultType      = "hybrid"
	DefaultName      = "Unnamed"
	DefaultSourceTag = "GeoJSON conversion"
)

// Options controls inference when importing features.
type Options struct {
	DefaultType string // type when no tag matches
	DefaultName string // name when no name property is set
	SourceTag   string // appended to SOURCE of every imported place; "-" disables
	AssignIDs   bool   // give places without an id a random UUID
}

// Converter turns features into places. It is safe for concurrent use.
type Converter struct {
	opts Options
}

// NewConverter returns a Converter with empty options filled from defaults.
func NewConverter(opts Options) *Converter {
	if opts.DefaultType == "" {
		opts.DefaultType = DefaultType
	}
	if opts.DefaultName == "" {
		opts.DefaultName = DefaultName
	}
	if opts.SourceTag == "" {
		opts.SourceTag = DefaultSourceTag
	}
	return &Converter{opts: opts}
}

type envelope struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

type featureEnvelope struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

// FromGeoJSON converts a Feature or FeatureCollection document. A Feature
// yields one place; a collection yields one per member, in order.
func (c *Converter) FromGeoJSON(data []byte) ([]*model.Place, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, eris.Wrap(err, "convert: decode geojson")
	}

	switch env.Type {
	case "FeatureCollection":
		places := make([]*model.Place, 0, len(env.Features))
		for i, raw := range env.Features {
			p, err := c.decodeFeature(raw)
			if err != nil {
				return nil, eris.Wrapf(err, "convert: feature %d", i)
			}
			places = append(places, p)
		}
		return places, nil
	case "Feature":
		p, err := c.decodeFeature(data)
		if err != nil {
			return nil, err
		}
		return []*model.Place{p}, nil
	}
	return nil, eris.Errorf("convert: unsupported GeoJSON type %q", env.Type)
}

func (c *Converter) decodeFeature(raw json.RawMessage) (*model.Place, error) {
	var f featureEnvelope
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, eris.Wrap(err, "convert: decode feature")
	}
	return c.FeatureToPlace(rawID(f.ID), decodeGeometry(f.Geometry), f.Properties), nil
}

// FeatureToPlace applies the inference rules to one feature's parts. g may be
// nil.
func (c *Converter) FeatureToPlace(id string, g geom.T, props map[string]any) *model.Place {
	fp := FootprintOf(g)
	p := &model.Place{
		Name:     inferName(props, c.opts.DefaultName),
		Type:     inferType(props, c.opts.DefaultType),
		Location: fp.Location,
		Boundary: fp.Boundary,
		Purpose:  inferPurpose(props),
	}

	if exp, ok := props["experience"]; ok {
		p.Experience = stringMapOf(exp)
	}

	switch {
	case id != "":
		p.ID = id
	case truthy(props["id"]):
		p.ID = stringOf(props["id"])
	case truthy(props["@id"]):
		p.ID = stringOf(props["@id"])
	}
	if p.ID == "" && c.opts.AssignIDs {
		p.ID = uuid.New().String()
	}

	if src, ok := props["source"]; ok {
		p.Source = stringsOf(src)
	}
	if c.opts.SourceTag != "-" {
		p.Source = append(p.Source, c.opts.SourceTag)
	}
	return p
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil || !truthy(v) {
		return ""
	}
	return stringOf(v)
}

func decodeGeometry(raw json.RawMessage) geom.T {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var g geom.T
	if err := geojson.Unmarshal(raw, &g); err != nil {
		zap.L().Debug("convert: unreadable geometry", zap.Error(err))
		return nil
	}
	return g
}

// ToFeature converts p to a GeoJSON feature. Geometry follows PlaceGeometry;
// semantic fields become properties.
func ToFeature(p *model.Place) *geojson.Feature {
	props := map[string]any{
		"name":      p.Name,
		"geon_type": p.Type,
	}
	if p.ID != "" {
		props["id"] = p.ID
	}
	setStrings(props, "purpose", p.Purpose)
	setStringMap(props, "experience", p.Experience)
	setStrings(props, "character", p.Character)
	setStrings(props, "adjacencies", p.Adjacencies)
	setStringMap(props, "connectivity", p.Connectivity)
	setString(props, "part_of", p.PartOf)
	if !p.Viewsheds.IsZero() {
		props["viewsheds"] = p.Viewsheds
	}
	if len(p.Contains) > 0 {
		names := make([]string, len(p.Contains))
		for i := range p.Contains {
			names[i] = p.Contains[i].Name
		}
		props["contains"] = names
	}
	setMapping(props, "temporal", p.Temporal)
	setMapping(props, "lifespan", p.Lifespan)
	setStrings(props, "source", p.Source)
	setMapping(props, "confidence", p.Confidence)
	setString(props, "updated", p.Updated)
	setString(props, "area", p.Area)
	setString(props, "elevation", p.Elevation)
	setMapping(props, "built_form", p.BuiltForm)
	setMapping(props, "ecology", p.Ecology)
	setMapping(props, "infrastructure", p.Infrastructure)
	setMapping(props, "demographics", p.Demographics)
	setMapping(props, "economy", p.Economy)
	setMapping(props, "visual", p.Visual)
	setMapping(props, "vertical_profile", p.VerticalProfile)
	if len(p.History) > 0 {
		props["history"] = p.History
	}

	return &geojson.Feature{
		ID:         p.ID,
		Geometry:   PlaceGeometry(p),
		Properties: props,
	}
}

// ToFeatureCollection converts places in order.
func ToFeatureCollection(places []*model.Place) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(places))}
	for _, p := range places {
		if p != nil {
			fc.Features = append(fc.Features, ToFeature(p))
		}
	}
	return fc
}

// MarshalGeoJSON encodes places as a FeatureCollection document.
func MarshalGeoJSON(places []*model.Place) ([]byte, error) {
	data, err := json.Marshal(ToFeatureCollection(places))
	if err != nil {
		return nil, eris.Wrap(err, "convert: encode geojson")
	}
	return data, nil
}

func setString(props map[string]any, key, v string) {
	if v != "" {
		props[key] = v
	}
}

func setStrings(props map[string]any, key string, v []string) {
	if len(v) > 0 {
		props[key] = v
	}
}

func setStringMap(props map[string]any, key string, v map[string]string) {
	if len(v) > 0 {
		props[key] = v
	}
}

func setMapping(props map[string]any, key string, v model.Mapping) {
	if v.Len() > 0 {
		props[key] = v
	}
}
