package extract

// Field names a logical attribute of a candidate record, independent of the
// column heading used in any particular file.
type Field string

const (
	FieldTier            Field = "tier"
	FieldYearsExperience Field = "yearsExperience"
	FieldAvailability    Field = "availability"
)

// Fields lists the logical fields in their fixed headerless column order.
var Fields = [...]Field{FieldTier, FieldYearsExperience, FieldAvailability}

// Tier is the two-valued experience level.
type Tier string

const (
	TierJunior Tier = "junior"
	TierSenior Tier = "senior"
)

// ParseTier accepts "junior" or "senior" in any case, surrounded by any
// amount of whitespace.
func ParseTier(s string) (Tier, bool) {
	switch Tier(normalize(s)) {
	case TierJunior:
		return TierJunior, true
	case TierSenior:
		return TierSenior, true
	default:
		return "", false
	}
}

// Valid reports whether t is one of the two known tiers.
func (t Tier) Valid() bool {
	return t == TierJunior || t == TierSenior
}

// Years of experience bounds, inclusive.
const (
	MinYears = 0
	MaxYears = 50
)

// synonyms lists accepted headings per field, most specific first. Lookups
// compare against normalized header text, so every entry is lower case.
var synonyms = map[Field][]string{
	FieldTier: {
		"experience level",
		"nivel de experiencia",
		"seniority",
		"tier",
		"level",
		"nivel",
	},
	FieldYearsExperience: {
		"years of experience",
		"años de experiencia",
		"anos de experiencia",
		"years experience",
		"años experiencia",
		"yearsexperience",
		"experience",
		"experiencia",
		"years",
		"años",
		"anos",
	},
	FieldAvailability: {
		"availability",
		"available",
		"disponibilidad",
		"disponible",
	},
}

// headerKeywords are substrings that mark a row as a header row.
var headerKeywords = []string{
	"seniority",
	"tier",
	"nivel",
	"level",
	"years",
	"experience",
	"experiencia",
	"años",
	"availability",
	"disponibilidad",
	"available",
	"disponible",
}

var (
	trueTokens  = []string{"true", "1", "si", "sí", "yes", "y", "t", "verdadero"}
	falseTokens = []string{"false", "0", "no", "n", "f", "falso"}
)

// Rules is the immutable vocabulary the engine matches against. Build one
// with DefaultRules; the zero value matches nothing.
type Rules struct {
	synonyms map[Field][]string
	keywords []string
	tokens   map[string]bool
}

// DefaultRules returns the English and Spanish vocabulary. Each call returns
// an independent copy.
func DefaultRules() Rules {
	r := Rules{
		synonyms: make(map[Field][]string, len(synonyms)),
		keywords: append([]string(nil), headerKeywords...),
		tokens:   make(map[string]bool, len(trueTokens)+len(falseTokens)),
	}
	for f, names := range synonyms {
		r.synonyms[f] = append([]string(nil), names...)
	}
	for _, t := range trueTokens {
		r.tokens[t] = true
	}
	for _, t := range falseTokens {
		r.tokens[t] = false
	}
	return r
}

// Synonyms returns a copy of the accepted headings for f in priority order.
func (r Rules) Synonyms(f Field) []string {
	return append([]string(nil), r.synonyms[f]...)
}

// boolean looks up a whole normalized token. It never matches substrings:
// "no" is false but "nombre" is not a token.
func (r Rules) boolean(token string) (value, ok bool) {
	value, ok = r.tokens[token]
	return value, ok
}
