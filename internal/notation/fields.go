package notation

// Field names recognised by the mapper and emitted by the generator.
const (
	KeyPlace           = "PLACE"
	KeyType            = "TYPE"
	KeyID              = "ID"
	KeyLocation        = "LOCATION"
	KeyBoundary        = "BOUNDARY"
	KeyExtent          = "EXTENT"
	KeyElevation       = "ELEVATION"
	KeyArea            = "AREA"
	KeyPurpose         = "PURPOSE"
	KeyExperience      = "EXPERIENCE"
	KeyCharacter       = "CHARACTER"
	KeyAdjacencies     = "ADJACENCIES"
	KeyConnectivity    = "CONNECTIVITY"
	KeyContains        = "CONTAINS"
	KeyPartOf          = "PART_OF"
	KeyViewsheds       = "VIEWSHEDS"
	KeyTemporal        = "TEMPORAL"
	KeyLifespan        = "LIFESPAN"
	KeySource          = "SOURCE"
	KeyConfidence      = "CONFIDENCE"
	KeyUpdated         = "UPDATED"
	KeyBuiltForm       = "BUILT_FORM"
	KeyEcology         = "ECOLOGY"
	KeyInfrastructure  = "INFRASTRUCTURE"
	KeyDemographics    = "DEMOGRAPHICS"
	KeyEconomy         = "ECONOMY"
	KeyVisual          = "VISUAL"
	KeyVerticalProfile = "VERTICAL_PROFILE"
	KeyHistory         = "HISTORY"
)

// ValueKey holds the leading text of a list item that has no colon but
// carries an indented sub-block.
const ValueKey = "_value"

// RecordSentinel is the key that, leading a list item, opens a nested place.
const RecordSentinel = KeyPlace

var knownKeys = map[string]struct{}{
	KeyPlace: {}, KeyType: {}, KeyID: {}, KeyLocation: {}, KeyBoundary: {},
	KeyExtent: {}, KeyElevation: {}, KeyArea: {}, KeyPurpose: {},
	KeyExperience: {}, KeyCharacter: {}, KeyAdjacencies: {}, KeyConnectivity: {},
	KeyContains: {}, KeyPartOf: {}, KeyViewsheds: {}, KeyTemporal: {},
	KeyLifespan: {}, KeySource: {}, KeyConfidence: {}, KeyUpdated: {},
	KeyBuiltForm: {}, KeyEcology: {}, KeyInfrastructure: {}, KeyDemographics: {},
	KeyEconomy: {}, KeyVisual: {}, KeyVerticalProfile: {}, KeyHistory: {},
}

// IsKnownKey reports whether key belongs to the fixed field vocabulary.
func IsKnownKey(key string) bool {
	_, ok := knownKeys[key]
	return ok
}
