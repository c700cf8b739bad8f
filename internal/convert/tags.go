package convert

import (
	"encoding/json"
	"strconv"
)

// tagTypes maps common OSM/GeoJSON tag values onto GEON place types.
var tagTypes = map[string]string{
	"park":        "public_space",
	"garden":      "public_space",
	"playground":  "public_space",
	"plaza":       "public_space",
	"square":      "public_space",
	"common":      "public_space",
	"pitch":       "public_space",
	"marketplace": "public_space",

	"road":        "street",
	"residential": "street",
	"primary":     "street",
	"secondary":   "street",
	"tertiary":    "street",
	"footway":     "street",
	"cycleway":    "street",
	"path":        "street",
	"pedestrian":  "street",
	"motorway":    "street",
	"trunk":       "street",

	"railway_station": "transport_hub",
	"station":         "transport_hub",
	"bus_station":     "transport_hub",
	"airport":         "transport_hub",
	"halt":            "transport_hub",
	"ferry_terminal":  "transport_hub",

	"yes":        "building",
	"house":      "building",
	"apartments": "building",
	"commercial": "building",
	"retail":     "building",
	"industrial": "building",
	"office":     "building",
	"church":     "building",
	"cathedral":  "building",
	"school":     "building",
	"hospital":   "building",
	"university": "building",

	"monument": "landmark",
	"memorial": "landmark",
	"statue":   "landmark",
	"tower":    "landmark",

	"bridge": "threshold",

	"river":   "natural_feature",
	"stream":  "natural_feature",
	"lake":    "natural_feature",
	"wood":    "natural_feature",
	"forest":  "natural_feature",
	"peak":    "natural_feature",
	"cliff":   "natural_feature",
	"beach":   "natural_feature",
	"wetland": "natural_feature",
}

// typeTagKeys is the order in which tags are consulted for a type.
var typeTagKeys = []string{
	"type", "building", "highway", "railway", "leisure", "amenity",
	"natural", "landuse", "tourism", "man_made", "waterway",
}

var nameKeys = []string{"name", "name:en", "official_name", "alt_name", "title", "label"}

func inferType(props map[string]any, fallback string) string {
	if v, ok := props["geon_type"]; ok && v != nil {
		return stringOf(v)
	}
	for _, key := range typeTagKeys {
		v := props[key]
		if !truthy(v) {
			continue
		}
		if t, ok := tagTypes[stringOf(v)]; ok {
			return t
		}
	}
	return fallback
}

func inferName(props map[string]any, fallback string) string {
	for _, key := range nameKeys {
		if v := props[key]; truthy(v) {
			return stringOf(v)
		}
	}
	return fallback
}

func inferPurpose(props map[string]any) []string {
	if v, ok := props["purpose"]; ok {
		return stringsOf(v)
	}
	var out []string
	if v := props["amenity"]; truthy(v) {
		out = append(out, stringOf(v))
	}
	if v := props["leisure"]; truthy(v) {
		out = append(out, stringOf(v))
	}
	if v := props["shop"]; truthy(v) {
		out = append(out, "retail ("+stringOf(v)+")")
	}
	return out
}

// truthy reports whether a decoded JSON value counts as set.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	return true
}

// stringOf renders a decoded JSON value as text. Numbers use their shortest
// form; objects and arrays are re-encoded.
func stringOf(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// stringsOf accepts a list or a single value.
func stringsOf(v any) []string {
	if list, ok := v.([]any); ok {
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, stringOf(item))
		}
		return out
	}
	return []string{stringOf(v)}
}

func stringMapOf(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = stringOf(val)
	}
	return out
}
