package validate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geon/internal/model"
)

func completePlace() *model.Place {
	return &model.Place{
		Name:         "Riverside Park",
		Type:         "public_space",
		Location:     &model.Coordinate{Lat: 51.5, Lon: -0.12},
		Purpose:      []string{"play", "contemplation"},
		Experience:   map[string]string{"openness": "high", "noise_level": "quiet (daytime)"},
		Adjacencies:  []string{"river"},
		Connectivity: map[string]string{"north": "bridge"},
		Source:       []string{"survey"},
	}
}

func fields(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Field
	}
	return out
}

func TestValidate_CompletePlace(t *testing.T) {
	r := Validate(completePlace())
	assert.True(t, r.Valid())
	assert.Empty(t, r.Issues)
	assert.Equal(t, "Valid (no issues)", r.String())
}

func TestValidate_MissingRequired(t *testing.T) {
	r := Validate(&model.Place{})
	assert.False(t, r.Valid())
	assert.Equal(t, []string{"PLACE", "TYPE", "LOCATION"}, fields(r.Errors()))
	assert.Empty(t, r.Warnings())
	assert.Len(t, r.Issues, 3+len(RecommendedFields))
}

func TestValidate_NilPlace(t *testing.T) {
	r := Validate(nil)
	assert.False(t, r.Valid())
}

func TestValidate_CoordinateRange(t *testing.T) {
	tests := []struct {
		name string
		loc  model.Coordinate
		errs int
	}{
		{"in range", model.Coordinate{Lat: 90, Lon: -180}, 0},
		{"lat", model.Coordinate{Lat: 91, Lon: 0}, 1},
		{"lon", model.Coordinate{Lat: 0, Lon: 180.5}, 1},
		{"both", model.Coordinate{Lat: -100, Lon: 200}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := completePlace()
			p.Location = &tt.loc
			r := Validate(p)
			assert.Len(t, r.Errors(), tt.errs)
			assert.Equal(t, tt.errs == 0, r.Valid())
		})
	}
}

func TestValidate_TypeVocabulary(t *testing.T) {
	p := completePlace()
	p.Type = "spaceport"
	r := Validate(p)
	assert.True(t, r.Valid())
	require.Len(t, r.Warnings(), 1)
	assert.Equal(t, "TYPE", r.Warnings()[0].Field)
	assert.Contains(t, r.Warnings()[0].Message, "'spaceport'")
}

func TestValidate_BoundaryClosure(t *testing.T) {
	p := completePlace()
	p.Boundary = []model.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}}
	require.Len(t, Validate(p).Warnings(), 1)

	p.Boundary = append(p.Boundary, model.Coordinate{Lat: 0, Lon: 0})
	assert.Empty(t, Validate(p).Warnings())

	p.Boundary = []model.Coordinate{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}}
	assert.Empty(t, Validate(p).Warnings())
}

func TestValidate_ExperienceScale(t *testing.T) {
	tests := []struct {
		value string
		warn  bool
	}{
		{"high", false},
		{"high (weekends)", false},
		{"low, rising", false},
		{"medium-high", false},
		{"enormous", true},
		{"High", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			p := completePlace()
			p.Experience = map[string]string{"openness": tt.value, "mood": "anything"}
			warnings := Validate(p).Warnings()
			if tt.warn {
				require.Len(t, warnings, 1)
				assert.Equal(t, "EXPERIENCE.openness", warnings[0].Field)
			} else {
				assert.Empty(t, warnings)
			}
		})
	}
}

func TestValidate_Purpose(t *testing.T) {
	p := completePlace()
	p.Purpose = []string{"play", "skateboarding"}
	r := Validate(p)
	require.Len(t, r.Issues, 1)
	assert.Equal(t, SeverityInfo, r.Issues[0].Severity)
	assert.Contains(t, r.Issues[0].Message, "skateboarding")
}

func TestValidate_Recommended(t *testing.T) {
	p := &model.Place{Name: "X", Type: "street", Location: &model.Coordinate{}}
	r := Validate(p)
	assert.True(t, r.Valid())
	assert.Equal(t, RecommendedFields, fields(r.Issues))
	for _, issue := range r.Issues {
		assert.Equal(t, SeverityInfo, issue.Severity)
	}
}

func TestValidate_ChildrenPrefixed(t *testing.T) {
	p := completePlace()
	child := completePlace()
	child.Type = ""
	p.Contains = []model.Place{*completePlace(), *child}

	r := Validate(p)
	assert.False(t, r.Valid())
	assert.Equal(t, []string{"CONTAINS[1].TYPE"}, fields(r.Errors()))
}

func TestResult_JSON(t *testing.T) {
	p := completePlace()
	p.Location = nil
	data, err := json.Marshal(Validate(p))
	require.NoError(t, err)

	var out struct {
		Valid    bool    `json:"valid"`
		Errors   []Issue `json:"errors"`
		Warnings []Issue `json:"warnings"`
		Issues   []Issue `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.False(t, out.Valid)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "LOCATION", out.Errors[0].Field)
	assert.Empty(t, out.Warnings)
	assert.Len(t, out.Issues, 1)
}

func TestIssue_String(t *testing.T) {
	i := Issue{Severity: SeverityWarning, Field: "TYPE", Message: "odd"}
	assert.Equal(t, "[warning] TYPE: odd", i.String())
}

func TestPurposeCategory(t *testing.T) {
	cat, ok := PurposeCategory("worship")
	assert.True(t, ok)
	assert.Equal(t, "Cultural", cat)
	_, ok = PurposeCategory("nothing")
	assert.False(t, ok)
}
