package notation

import (
	"sort"
	"strings"

	"github.com/sells-group/geon/internal/model"
)

const indentUnit = "  "

// Generate serializes p to canonical GEON text. Fields are written in a
// fixed order and mapping keys are sorted, so output does not depend on
// how p was built.
func Generate(p *model.Place) string {
	var w writer
	if p == nil {
		return ""
	}
	w.raw(0, joinKV(KeyPlace, p.Name))
	w.fields(p, 0)
	return w.String()
}

// GenerateMany serializes places separated by a blank line.
func GenerateMany(places []*model.Place) string {
	parts := make([]string, 0, len(places))
	for _, p := range places {
		if p == nil {
			continue
		}
		parts = append(parts, Generate(p))
	}
	return strings.Join(parts, "\n")
}

type writer struct {
	b strings.Builder
}

func (w *writer) String() string { return w.b.String() }

func (w *writer) raw(depth int, text string) {
	w.b.WriteString(strings.Repeat(indentUnit, depth))
	w.b.WriteString(strings.ReplaceAll(text, "\n", " "))
	w.b.WriteByte('\n')
}

func (w *writer) scalar(depth int, key, value string) {
	if value == "" {
		return
	}
	w.raw(depth, key+": "+value)
}

func (w *writer) header(depth int, key string) {
	w.raw(depth, key+":")
}

func (w *writer) item(depth int, text string) {
	if text == "" {
		w.raw(depth, "-")
		return
	}
	w.raw(depth, "- "+text)
}

// list writes one element as a scalar line and two or more as a block.
func (w *writer) list(depth int, key string, items []string) {
	switch len(items) {
	case 0:
		return
	case 1:
		w.scalar(depth, key, items[0])
	default:
		w.header(depth, key)
		for _, s := range items {
			w.item(depth+1, s)
		}
	}
}

func (w *writer) stringMap(depth int, key string, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return
	}
	sort.Strings(keys)
	w.header(depth, key)
	for _, k := range keys {
		w.scalar(depth+1, k, m[k])
	}
}

func (w *writer) mapping(depth int, key string, m model.Mapping) {
	if isEmptyMapping(m) {
		return
	}
	w.header(depth, key)
	w.entries(depth+1, m, "")
}

// entries writes m sorted by key, skipping skip.
func (w *writer) entries(depth int, m model.Mapping, skip string) {
	for _, e := range sortedEntries(m) {
		if skip != "" && e.Key == skip {
			continue
		}
		w.entry(depth, e.Key, e.Value)
	}
}

func (w *writer) entry(depth int, key string, v model.Value) {
	switch v.Kind {
	case model.KindScalar:
		w.scalar(depth, key, v.Scalar)
	case model.KindList:
		if isEmptyValue(v) {
			return
		}
		w.header(depth, key)
		for _, item := range v.List {
			w.listItem(depth+1, item)
		}
	case model.KindMapping:
		w.mapping(depth, key, v.Mapping)
	}
}

// listItem writes one element of a generic list. A mapping puts its lead
// entry on the marker line and the rest aligned under it.
func (w *writer) listItem(depth int, v model.Value) {
	switch v.Kind {
	case model.KindScalar:
		w.item(depth, v.Scalar)
	case model.KindList:
		// nested sequences have no text form; flatten into the parent
		for _, inner := range v.List {
			w.listItem(depth, inner)
		}
	case model.KindMapping:
		w.mappingItem(depth, v.Mapping, false)
	}
}

// mappingItem writes m as a list element. inline lets a lone scalar entry
// sit on the marker line; only safe where the reader lifts "k: v" strings
// back into mappings.
func (w *writer) mappingItem(depth int, m model.Mapping, inline bool) {
	lead, text := leadEntry(m, inline)
	w.item(depth, text)
	w.entries(depth+1, m, lead)
}

// leadEntry picks the entry written on a mapping item's marker line. Other
// scalar keys lead only when more entries follow, since a lone "- k: v"
// reads back as a plain string.
func leadEntry(m model.Mapping, inline bool) (key, text string) {
	if v, ok := m.Get(ValueKey); ok && v.Kind == model.KindScalar {
		return ValueKey, v.Scalar
	}
	if v, ok := m.Get(RecordSentinel); ok && v.Kind == model.KindScalar {
		return RecordSentinel, joinKV(RecordSentinel, v.Scalar)
	}
	sorted := sortedEntries(m)
	nonEmpty := 0
	for _, e := range sorted {
		if !isEmptyValue(e.Value) {
			nonEmpty++
		}
	}
	if nonEmpty < 2 && !inline {
		return "", ""
	}
	for _, e := range sorted {
		if e.Value.Kind == model.KindScalar && e.Value.Scalar != "" {
			return e.Key, joinKV(e.Key, e.Value.Scalar)
		}
	}
	return "", ""
}

func (w *writer) fields(p *model.Place, depth int) {
	// identity
	w.scalar(depth, KeyType, p.Type)
	w.scalar(depth, KeyID, p.ID)

	// geometry
	if p.Location != nil {
		w.scalar(depth, KeyLocation, p.Location.String())
	}
	if len(p.Boundary) > 0 {
		pts := make([]string, len(p.Boundary))
		for i, c := range p.Boundary {
			pts[i] = c.String()
		}
		w.list(depth, KeyBoundary, pts)
	}
	if p.Extent != nil {
		w.scalar(depth, KeyExtent, p.Extent.String())
	}
	w.scalar(depth, KeyElevation, p.Elevation)
	w.scalar(depth, KeyArea, p.Area)

	// semantic
	w.list(depth, KeyPurpose, p.Purpose)
	w.stringMap(depth, KeyExperience, p.Experience)
	w.list(depth, KeyCharacter, p.Character)

	// relational
	w.list(depth, KeyAdjacencies, p.Adjacencies)
	w.stringMap(depth, KeyConnectivity, p.Connectivity)
	if len(p.Contains) > 0 {
		w.header(depth, KeyContains)
		for i := range p.Contains {
			w.child(depth+1, &p.Contains[i])
		}
	}
	w.scalar(depth, KeyPartOf, p.PartOf)
	switch p.Viewsheds.Kind {
	case model.ViewshedsList:
		w.list(depth, KeyViewsheds, p.Viewsheds.List)
	case model.ViewshedsMapping:
		w.mapping(depth, KeyViewsheds, p.Viewsheds.Mapping)
	}

	// temporal
	w.mapping(depth, KeyTemporal, p.Temporal)
	w.mapping(depth, KeyLifespan, p.Lifespan)

	// provenance
	w.list(depth, KeySource, p.Source)
	w.mapping(depth, KeyConfidence, p.Confidence)
	w.scalar(depth, KeyUpdated, p.Updated)

	// extended
	w.mapping(depth, KeyBuiltForm, p.BuiltForm)
	w.mapping(depth, KeyEcology, p.Ecology)
	w.mapping(depth, KeyInfrastructure, p.Infrastructure)
	w.mapping(depth, KeyDemographics, p.Demographics)
	w.mapping(depth, KeyEconomy, p.Economy)
	w.mapping(depth, KeyVisual, p.Visual)
	w.mapping(depth, KeyVerticalProfile, p.VerticalProfile)

	if hasHistory(p.History) {
		w.header(depth, KeyHistory)
		for _, h := range p.History {
			if !isEmptyMapping(h) {
				w.mappingItem(depth+1, h, true)
			}
		}
	}

	// extra, skipping names that would shadow a known field
	for _, e := range sortedEntries(p.Extra) {
		if IsKnownKey(e.Key) {
			continue
		}
		w.entry(depth, e.Key, e.Value)
	}
}

// child writes a nested place: the marker line at depth, every other field
// two levels deeper than the marker, then a blank separator line.
func (w *writer) child(depth int, p *model.Place) {
	w.item(depth, joinKV(KeyPlace, p.Name))
	w.fields(p, depth+2)
	w.b.WriteByte('\n')
}

func joinKV(key, value string) string {
	if value == "" {
		return key + ":"
	}
	return key + ": " + value
}

func sortedEntries(m model.Mapping) []model.Entry {
	out := make([]model.Entry, len(m.Entries))
	copy(out, m.Entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func isEmptyValue(v model.Value) bool {
	switch v.Kind {
	case model.KindScalar:
		return v.Scalar == ""
	case model.KindList:
		for _, item := range v.List {
			if !isEmptyValue(item) {
				return false
			}
		}
		return true
	case model.KindMapping:
		return isEmptyMapping(v.Mapping)
	}
	return true
}

func isEmptyMapping(m model.Mapping) bool {
	for _, e := range m.Entries {
		if !isEmptyValue(e.Value) {
			return false
		}
	}
	return true
}

func hasHistory(h []model.Mapping) bool {
	for _, m := range h {
		if !isEmptyMapping(m) {
			return true
		}
	}
	return false
}
