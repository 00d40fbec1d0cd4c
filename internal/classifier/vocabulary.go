package classifier

import "regexp"

// Evidence weights per signal tier.
const (
	WeightComment   = 100
	WeightModelName = 80
	WeightPath      = 60
	WeightFilename  = 40
)

// Family is a candidate base-model family and the evidence that points at it.
type Family struct {
	// Label emitted when this family wins, e.g. "SDXL-AnimalPony".
	Label string
	// Lowercase substrings matched against the training comment and the
	// embedded model name.
	Keywords []string
	// Patterns matched against each directory segment of the file path.
	PathPatterns []*regexp.Regexp
}

// Vocabulary is the static configuration of the classifier. It is built once
// and never mutated.
type Vocabulary struct {
	// Families in precedence order for the comment and model-name tiers.
	Families []Family

	// FilenameFamily is the only label eligible for filename evidence, and
	// only while FilenameGate has a zero score.
	FilenameFamily string
	FilenameGate   string
	// Substrings of the lowercase file name that count as filename evidence.
	FilenameSubstrings []string
	// Tokens that count when they lead or trail the dash/underscore split stem.
	FilenameEdgeTokens []string

	// GenericVersionTag is the substring of ss_base_model_version naming the
	// generic SDXL base checkpoint; GenericLabel is emitted when it is present
	// and nothing else scored.
	GenericVersionTag string
	GenericLabel      string
}

const (
	LabelAnimalPony  = "SDXL-AnimalPony"
	LabelIllustrious = "SDXL-Illustrious"
	LabelSDXLBase    = "SDXL-Base"
)

// DefaultVocabulary returns the built-in tables.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Families: []Family{
			{
				Label:    LabelAnimalPony,
				Keywords: []string{"pony", "pdxl", "autismmix", "animepastel", "anime pastel", "anime-pastel"},
				PathPatterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)pony`),
					regexp.MustCompile(`(?i)pdxl`),
					regexp.MustCompile(`(?i)anime[-_ ]?pastel`),
				},
			},
			{
				Label:    LabelIllustrious,
				Keywords: []string{"illustrious", "illust", "ilxl"},
				PathPatterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)illust`),
					regexp.MustCompile(`(?i)ilxl`),
					regexp.MustCompile(`(?i)^ill?([-_ ]|$)`),
					regexp.MustCompile(`(?i)[-_ ]ill?$`),
				},
			},
		},
		FilenameFamily:     LabelIllustrious,
		FilenameGate:       LabelAnimalPony,
		FilenameSubstrings: []string{"illustrious", "illust", "_ill", "il-", "ilxl"},
		FilenameEdgeTokens: []string{"il", "ill"},
		GenericVersionTag:  "sdxl_base",
		GenericLabel:       LabelSDXLBase,
	}
}
