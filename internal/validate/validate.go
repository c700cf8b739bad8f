// Package validate checks GEON places against the required fields, the
// coordinate ranges and the controlled vocabularies. Validation is advisory:
// it reports issues and never alters or rejects a place.
package validate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/geon/internal/model"
)

// Severity ranks an Issue.
type Severity string

// Severity levels.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one finding about a field.
type Issue struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Field, i.Message)
}

// Result holds every issue found, in check order.
type Result struct {
	Issues []Issue
}

// Valid reports whether no error-level issue was found.
func (r *Result) Valid() bool {
	return len(r.Errors()) == 0
}

// Errors returns the error-level issues.
func (r *Result) Errors() []Issue { return r.bySeverity(SeverityError) }

// Warnings returns the warning-level issues.
func (r *Result) Warnings() []Issue { return r.bySeverity(SeverityWarning) }

func (r *Result) bySeverity(s Severity) []Issue {
	out := []Issue{}
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

func (r *Result) String() string {
	if len(r.Issues) == 0 {
		return "Valid (no issues)"
	}
	lines := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		lines[i] = issue.String()
	}
	return strings.Join(lines, "\n")
}

// MarshalJSON renders {valid, errors, warnings, issues}.
func (r *Result) MarshalJSON() ([]byte, error) {
	issues := r.Issues
	if issues == nil {
		issues = []Issue{}
	}
	return json.Marshal(struct {
		Valid    bool    `json:"valid"`
		Errors   []Issue `json:"errors"`
		Warnings []Issue `json:"warnings"`
		Issues   []Issue `json:"issues"`
	}{r.Valid(), r.Errors(), r.Warnings(), issues})
}

func (r *Result) add(s Severity, field, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: s, Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate runs every check on p and then on each CONTAINS child, whose
// issues are reported with a CONTAINS[i]. field prefix.
func Validate(p *model.Place) *Result {
	r := &Result{}
	if p == nil {
		r.add(SeverityError, "PLACE", "Required field PLACE is missing or empty")
		return r
	}
	checkRequired(p, r)
	checkType(p, r)
	checkLocation(p, r)
	checkBoundary(p, r)
	checkExperience(p, r)
	checkPurpose(p, r)
	checkRecommended(p, r)

	for i := range p.Contains {
		for _, issue := range Validate(&p.Contains[i]).Issues {
			issue.Field = fmt.Sprintf("CONTAINS[%d].%s", i, issue.Field)
			r.Issues = append(r.Issues, issue)
		}
	}
	return r
}

func checkRequired(p *model.Place, r *Result) {
	if p.Name == "" {
		r.add(SeverityError, "PLACE", "Required field PLACE is missing or empty")
	}
	if p.Type == "" {
		r.add(SeverityError, "TYPE", "Required field TYPE is missing or empty")
	}
	if p.Location == nil {
		r.add(SeverityError, "LOCATION", "Required field LOCATION is missing")
	}
}

func checkType(p *model.Place, r *Result) {
	if p.Type != "" && !contains(PlaceTypes, p.Type) {
		sorted := append([]string(nil), PlaceTypes...)
		sort.Strings(sorted)
		r.add(SeverityWarning, "TYPE", "Type '%s' is not in the controlled vocabulary: %s",
			p.Type, strings.Join(sorted, ", "))
	}
}

func checkLocation(p *model.Place, r *Result) {
	if p.Location == nil {
		return
	}
	if lat := p.Location.Lat; lat < -90 || lat > 90 {
		r.add(SeverityError, "LOCATION", "Latitude %v is out of range [-90, 90]", lat)
	}
	if lon := p.Location.Lon; lon < -180 || lon > 180 {
		r.add(SeverityError, "LOCATION", "Longitude %v is out of range [-180, 180]", lon)
	}
}

func checkBoundary(p *model.Place, r *Result) {
	if len(p.Boundary) < 3 {
		return
	}
	if p.Boundary[0] != p.Boundary[len(p.Boundary)-1] {
		r.add(SeverityWarning, "BOUNDARY", "Boundary polygon is not closed (first and last coordinates differ)")
	}
}

func checkExperience(p *model.Place, r *Result) {
	keys := make([]string, 0, len(p.Experience))
	for k := range p.Experience {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		scale, ok := ExperienceScales[k]
		if !ok {
			continue
		}
		base := baseValue(p.Experience[k])
		// compounds such as "medium-high" sit between two scale steps
		if strings.Contains(base, "-") {
			continue
		}
		if !contains(scale, base) {
			r.add(SeverityWarning, "EXPERIENCE."+k, "Value '%s' is not in the controlled vocabulary: %s",
				base, strings.Join(scale, ", "))
		}
	}
}

// baseValue drops a parenthesized qualifier and anything after a comma.
func baseValue(v string) string {
	v, _, _ = strings.Cut(v, "(")
	v, _, _ = strings.Cut(strings.TrimSpace(v), ",")
	return strings.TrimSpace(v)
}

func checkPurpose(p *model.Place, r *Result) {
	for _, purpose := range p.Purpose {
		if _, ok := PurposeCategory(purpose); !ok {
			r.add(SeverityInfo, "PURPOSE", "Purpose '%s' is outside the suggested categories", purpose)
		}
	}
}

func checkRecommended(p *model.Place, r *Result) {
	present := map[string]bool{
		"PURPOSE":      len(p.Purpose) > 0,
		"EXPERIENCE":   len(p.Experience) > 0,
		"ADJACENCIES":  len(p.Adjacencies) > 0,
		"CONNECTIVITY": len(p.Connectivity) > 0,
		"SOURCE":       len(p.Source) > 0,
	}
	for _, name := range RecommendedFields {
		if !present[name] {
			r.add(SeverityInfo, name, "Recommended field %s is empty", name)
		}
	}
}
