package validate

// PlaceTypes is the controlled TYPE vocabulary.
var PlaceTypes = []string{
	"public_space",
	"street",
	"building",
	"transport_hub",
	"infrastructure",
	"natural_feature",
	"district",
	"landmark",
	"threshold",
	"hybrid",
}

var (
	fiveScale           = []string{"very_low", "low", "medium", "high", "very_high"}
	noiseScale          = []string{"very_quiet", "quiet", "moderate", "loud", "very_loud"}
	complexityScale     = []string{"very_simple", "simple", "moderate", "complex", "very_complex"}
	airQualityScale     = []string{"very_poor", "poor", "moderate", "good", "very_good"}
	activityScale       = []string{"deserted", "sparse", "moderate", "busy", "crowded"}
	safetyScale         = []string{"very_unsafe", "unsafe", "neutral", "safe", "very_safe"}
	territorialityScale = []string{"very_private", "semi_private", "semi_public", "public", "very_public"}
	paceScale           = []string{"very_slow", "slow", "moderate", "fast", "very_fast"}
	stabilityScale      = []string{"very_transient", "transient", "stable", "permanent", "very_permanent"}
)

// ExperienceScales lists the accepted values for each known EXPERIENCE
// quality, lowest first. Qualities not listed are free text.
var ExperienceScales = map[string][]string{
	// spatial
	"openness":     fiveScale,
	"enclosure":    fiveScale,
	"permeability": fiveScale,
	"legibility":   fiveScale,
	// sensory
	"noise_level":       noiseScale,
	"visual_complexity": complexityScale,
	"air_quality":       airQualityScale,
	// social
	"activity_density": activityScale,
	"social_diversity": fiveScale,
	"sense_of_safety":  safetyScale,
	"territoriality":   territorialityScale,
	// temporal
	"pace":               paceScale,
	"temporal_stability": stabilityScale,
}

// PurposeCategories groups the suggested PURPOSE values.
var PurposeCategories = map[string][]string{
	"Economic":     {"commerce", "retail", "services", "production", "agriculture"},
	"Civic":        {"governance", "community", "education", "health", "emergency"},
	"Social":       {"gathering", "celebration", "protest", "exchange", "encounter"},
	"Cultural":     {"arts", "heritage", "performance", "exhibition", "worship"},
	"Recreational": {"play", "sport", "leisure", "contemplation", "exercise"},
	"Residential":  {"dwelling", "sleeping", "domesticity"},
	"Circulation":  {"movement", "waiting", "transition", "parking"},
	"Ecological":   {"habitat", "biodiversity", "environmental services"},
}

// RecommendedFields are reported at info level when empty.
var RecommendedFields = []string{"PURPOSE", "EXPERIENCE", "ADJACENCIES", "CONNECTIVITY", "SOURCE"}

// PurposeCategory returns the category a purpose belongs to.
func PurposeCategory(purpose string) (string, bool) {
	for cat, purposes := range PurposeCategories {
		for _, p := range purposes {
			if p == purpose {
				return cat, true
			}
		}
	}
	return "", false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
