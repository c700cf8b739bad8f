package notation

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/geon/internal/model"
)

var coordRe = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*$`)

// ParseCoordinate reads "lat, lon". ok is false when text does not match.
func ParseCoordinate(text string) (model.Coordinate, bool) {
	m := coordRe.FindStringSubmatch(text)
	if m == nil {
		return model.Coordinate{}, false
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return model.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return model.Coordinate{}, false
	}
	return model.Coordinate{Lat: lat, Lon: lon}, true
}

// ParseExtent reads "north, south, east, west".
func ParseExtent(text string) (model.Extent, bool) {
	parts := strings.Split(text, ",")
	if len(parts) != 4 {
		return model.Extent{}, false
	}
	var vals [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return model.Extent{}, false
		}
		vals[i] = f
	}
	return model.Extent{North: vals[0], South: vals[1], East: vals[2], West: vals[3]}, true
}

// Lift maps a parsed block onto a typed Place. Keys outside the known
// vocabulary are copied into Extra unchanged.
func Lift(raw model.Mapping) *model.Place {
	p := &model.Place{}
	for _, e := range raw.Entries {
		liftField(p, e.Key, e.Value)
	}
	return p
}

func liftField(p *model.Place, key string, v model.Value) {
	switch key {
	case KeyPlace:
		p.Name = scalar(v)
	case KeyType:
		p.Type = scalar(v)
	case KeyID:
		p.ID = scalar(v)
	case KeyLocation:
		p.Location = nil
		if c, ok := ParseCoordinate(scalar(v)); ok {
			p.Location = &c
		} else if v.Kind == model.KindScalar {
			zap.L().Debug("notation: unreadable location", zap.String("value", v.Scalar))
		}
	case KeyBoundary:
		p.Boundary = nil
		for _, s := range stringList(v) {
			if c, ok := ParseCoordinate(s); ok {
				p.Boundary = append(p.Boundary, c)
			}
		}
	case KeyExtent:
		p.Extent = nil
		if e, ok := ParseExtent(scalar(v)); ok {
			p.Extent = &e
		}
	case KeyElevation:
		p.Elevation = scalar(v)
	case KeyArea:
		p.Area = scalar(v)
	case KeyPurpose:
		p.Purpose = stringList(v)
	case KeyExperience:
		p.Experience = stringMap(v)
	case KeyCharacter:
		p.Character = stringList(v)
	case KeyAdjacencies:
		p.Adjacencies = stringList(v)
	case KeyConnectivity:
		p.Connectivity = connectivity(v)
	case KeyContains:
		p.Contains = children(v)
	case KeyPartOf:
		p.PartOf = scalar(v)
	case KeyViewsheds:
		p.Viewsheds = viewsheds(v)
	case KeyTemporal:
		p.Temporal = mapping(v)
	case KeyLifespan:
		p.Lifespan = mapping(v)
	case KeySource:
		p.Source = stringList(v)
	case KeyConfidence:
		p.Confidence = mapping(v)
	case KeyUpdated:
		p.Updated = scalar(v)
	case KeyBuiltForm:
		p.BuiltForm = mapping(v)
	case KeyEcology:
		p.Ecology = mapping(v)
	case KeyInfrastructure:
		p.Infrastructure = mapping(v)
	case KeyDemographics:
		p.Demographics = mapping(v)
	case KeyEconomy:
		p.Economy = mapping(v)
	case KeyVisual:
		p.Visual = mapping(v)
	case KeyVerticalProfile:
		p.VerticalProfile = mapping(v)
	case KeyHistory:
		p.History = history(v)
	default:
		p.Extra.Set(key, v)
	}
}

func scalar(v model.Value) string {
	if v.Kind == model.KindScalar {
		return v.Scalar
	}
	return ""
}

// stringList accepts a list of scalars or a bare scalar promoted to one item.
// Mapping items keep their marker-line text.
func stringList(v model.Value) []string {
	switch v.Kind {
	case model.KindScalar:
		return []string{v.Scalar}
	case model.KindList:
		var out []string
		for _, item := range v.List {
			switch item.Kind {
			case model.KindScalar:
				out = append(out, item.Scalar)
			case model.KindMapping:
				if text, ok := itemLabel(item.Mapping); ok {
					out = append(out, text)
				}
			}
		}
		return out
	}
	return nil
}

// itemLabel recovers the text a list item was written with: its _value, or
// its first scalar entry rejoined as "key: value".
func itemLabel(m model.Mapping) (string, bool) {
	if v, ok := m.Get(ValueKey); ok && v.Kind == model.KindScalar {
		return v.Scalar, true
	}
	for _, e := range m.Entries {
		if e.Value.Kind == model.KindScalar {
			return joinKV(e.Key, e.Value.Scalar), true
		}
	}
	return "", false
}

func mapping(v model.Value) model.Mapping {
	if v.Kind == model.KindMapping {
		return v.Mapping
	}
	return model.Mapping{}
}

// stringMap keeps scalar entries; one-item scalar lists unwrap.
func stringMap(v model.Value) map[string]string {
	if v.Kind != model.KindMapping || v.Mapping.Len() == 0 {
		return nil
	}
	out := make(map[string]string, v.Mapping.Len())
	for _, e := range v.Mapping.Entries {
		switch {
		case e.Value.Kind == model.KindScalar:
			out[e.Key] = e.Value.Scalar
		case e.Value.Kind == model.KindList && len(e.Value.List) == 1 && e.Value.List[0].Kind == model.KindScalar:
			out[e.Key] = e.Value.List[0].Scalar
		}
	}
	return out
}

// connectivity also accepts a plain list, keyed by position.
func connectivity(v model.Value) map[string]string {
	if v.Kind != model.KindList {
		return stringMap(v)
	}
	items := stringList(v)
	if len(items) == 0 {
		return nil
	}
	out := make(map[string]string, len(items))
	for i, s := range items {
		out[strconv.Itoa(i)] = s
	}
	return out
}

// children builds CONTAINS. Plain strings become name-only places; mapping
// items without a PLACE key use their leading text as the name.
func children(v model.Value) []model.Place {
	var items []model.Value
	switch v.Kind {
	case model.KindScalar:
		items = []model.Value{v}
	case model.KindList:
		items = v.List
	case model.KindMapping:
		items = []model.Value{v}
	}

	var out []model.Place
	for _, item := range items {
		switch item.Kind {
		case model.KindScalar:
			out = append(out, model.Place{Name: item.Scalar})
		case model.KindMapping:
			m := item.Mapping
			name, hasName := m.Get(ValueKey)
			if !m.Has(KeyPlace) && hasName {
				m = withoutKey(m, ValueKey)
				child := Lift(m)
				child.Name = scalar(name)
				out = append(out, *child)
				continue
			}
			out = append(out, *Lift(m))
		}
	}
	return out
}

func viewsheds(v model.Value) model.Viewsheds {
	switch v.Kind {
	case model.KindMapping:
		return model.ViewshedMapping(v.Mapping)
	case model.KindScalar, model.KindList:
		return model.ViewshedList(stringList(v)...)
	}
	return model.Viewsheds{}
}

// history keeps mapping entries; "k: v" strings become one-entry mappings.
func history(v model.Value) []model.Mapping {
	var items []model.Value
	switch v.Kind {
	case model.KindScalar, model.KindMapping:
		items = []model.Value{v}
	case model.KindList:
		items = v.List
	}

	var out []model.Mapping
	for _, item := range items {
		switch item.Kind {
		case model.KindMapping:
			out = append(out, item.Mapping)
		case model.KindScalar:
			var m model.Mapping
			if key, value, ok := splitKeyValue(item.Scalar); ok && key != "" && value != "" {
				m.Set(key, model.ScalarValue(value))
			} else {
				m.Set(ValueKey, model.ScalarValue(item.Scalar))
			}
			out = append(out, m)
		}
	}
	return out
}

func withoutKey(m model.Mapping, key string) model.Mapping {
	out := model.Mapping{Entries: make([]model.Entry, 0, m.Len())}
	for _, e := range m.Entries {
		if e.Key != key {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}
