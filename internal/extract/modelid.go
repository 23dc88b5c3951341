package extract

import "regexp"

// A patternFamily is one entry in the ordered model-identifier cascade.
// Higher priority wins; within a family the earliest match in the text
// wins. Base confidence falls with priority.
type patternFamily struct {
	Name       string
	Priority   int
	Confidence float64
	Re         *regexp.Regexp
}

// modelFamilies is the cascade, most specific first. OEM part codes
// (CF234A, CE285A, Q2612X) outrank dash-joined series codes (TN-2420,
// MLT-D111S), which outrank any leftover mixed alphanumeric token.
var modelFamilies = []patternFamily{
	{
		Name:       "oem_part_code",
		Priority:   100,
		Confidence: 0.92,
		Re:         regexp.MustCompile(`\b[A-Z]{1,2}[0-9]{3,4}[A-Z]{1,2}\b`),
	},
	{
		Name:       "series_code",
		Priority:   80,
		Confidence: 0.78,
		Re:         regexp.MustCompile(`\b[A-Z]{2,4}-[A-Z0-9]{3,7}\b`),
	},
	{
		Name:       "mixed_token",
		Priority:   60,
		Confidence: 0.55,
		Re:         regexp.MustCompile(`\b[A-Z]+[0-9][A-Z0-9]{2,8}\b`),
	},
}

// ambiguityDiscount is applied once when a family produced more than one
// candidate: the extraction is still usable but flagged less certain.
const ambiguityDiscount = 0.85

// ModelCandidate is a model identifier found in the text.
type ModelCandidate struct {
	Value      string
	Family     string
	Confidence float64
	Position   int
	Ambiguous  bool
}

// ExtractModel runs the pattern cascade over canonicalized text and returns
// the winning model identifier. The highest-priority family with any match
// wins outright; ties inside a family break by earliest position. ok=false
// means no family matched at all.
func ExtractModel(text string) (ModelCandidate, bool) {
	for _, fam := range modelFamilies {
		locs := fam.Re.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			continue
		}

		best := ModelCandidate{
			Value:      text[locs[0][0]:locs[0][1]],
			Family:     fam.Name,
			Confidence: fam.Confidence,
			Position:   locs[0][0],
		}
		if len(locs) > 1 {
			best.Confidence *= ambiguityDiscount
			best.Ambiguous = true
		}
		return best, true
	}
	return ModelCandidate{}, false
}
