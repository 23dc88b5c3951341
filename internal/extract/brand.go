package extract

import (
	"sort"
	"strings"
)

// Brand detection confidence per tier. Explicit mention in the title is
// near-certain; inferring from a model prefix or the supplier domain is
// progressively weaker.
const (
	confBrandExplicit = 0.95
	confBrandPrefix   = 0.70
	confBrandDomain   = 0.50
)

// BrandBook holds the lookup tables the brand detector works from. It is
// loaded once and treated as immutable.
type BrandBook struct {
	// Brands maps a lower-cased alias to the canonical brand name.
	Brands map[string]string
	// ModelPrefixes maps a model-code prefix to its brand (CF -> HP).
	ModelPrefixes map[string]string
	// DomainKeywords maps a substring of a source domain to a brand.
	DomainKeywords map[string]string
}

// DefaultBrandBook covers the printer-consumable brands the catalog
// actually carries. Callers may load a wider book from config.
func DefaultBrandBook() BrandBook {
	return BrandBook{
		Brands: map[string]string{
			"hp":              "HP",
			"hewlett-packard": "HP",
			"canon":           "Canon",
			"brother":         "Brother",
			"epson":           "Epson",
			"samsung":         "Samsung",
			"xerox":           "Xerox",
			"kyocera":         "Kyocera",
			"lexmark":         "Lexmark",
			"ricoh":           "Ricoh",
			"pantum":          "Pantum",
		},
		ModelPrefixes: map[string]string{
			"CB":  "HP",
			"CC":  "HP",
			"CE":  "HP",
			"CF":  "HP",
			"Q":   "HP",
			"W":   "HP",
			"CRG": "Canon",
			"PG":  "Canon",
			"CL":  "Canon",
			"TN":  "Brother",
			"DR":  "Brother",
			"MLT": "Samsung",
			"CLT": "Samsung",
			"TK":  "Kyocera",
			"PC":  "Pantum",
		},
		DomainKeywords: map[string]string{
			"hp.":     "HP",
			"canon":   "Canon",
			"brother": "Brother",
			"epson":   "Epson",
			"samsung": "Samsung",
			"xerox":   "Xerox",
			"kyocera": "Kyocera",
			"lexmark": "Lexmark",
			"ricoh":   "Ricoh",
		},
	}
}

// BrandResult is a detected brand with the tier that produced it.
type BrandResult struct {
	Brand      string
	Method     string
	Confidence float64
}

// DetectBrand resolves the brand via three tiers in fixed order: explicit
// mention in the text, model-prefix lookup, then source-domain keyword
// inference. The first tier that succeeds wins; ok=false means none did.
func DetectBrand(book BrandBook, text, modelID, sourceDomain string) (BrandResult, bool) {
	lower := strings.ToLower(text)

	// Tier 1: explicit mention. Longest alias first so "hewlett-packard"
	// is preferred over a shorter alias that happens to be a substring.
	aliases := make([]string, 0, len(book.Brands))
	for alias := range book.Brands {
		aliases = append(aliases, alias)
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})
	for _, alias := range aliases {
		if containsWord(lower, alias) {
			return BrandResult{
				Brand:      book.Brands[alias],
				Method:     "explicit_mention",
				Confidence: confBrandExplicit,
			}, true
		}
	}

	// Tier 2: model prefix lookup, longest matching prefix wins.
	if modelID != "" {
		prefixes := make([]string, 0, len(book.ModelPrefixes))
		for p := range book.ModelPrefixes {
			prefixes = append(prefixes, p)
		}
		sort.Slice(prefixes, func(i, j int) bool {
			if len(prefixes[i]) != len(prefixes[j]) {
				return len(prefixes[i]) > len(prefixes[j])
			}
			return prefixes[i] < prefixes[j]
		})
		upper := strings.ToUpper(modelID)
		for _, p := range prefixes {
			if strings.HasPrefix(upper, p) {
				return BrandResult{
					Brand:      book.ModelPrefixes[p],
					Method:     "prefix_lookup",
					Confidence: confBrandPrefix,
				}, true
			}
		}
	}

	// Tier 3: domain keyword inference.
	if sourceDomain != "" {
		domain := strings.ToLower(sourceDomain)
		keywords := make([]string, 0, len(book.DomainKeywords))
		for k := range book.DomainKeywords {
			keywords = append(keywords, k)
		}
		sort.Strings(keywords)
		for _, k := range keywords {
			if strings.Contains(domain, k) {
				return BrandResult{
					Brand:      book.DomainKeywords[k],
					Method:     "domain_inference",
					Confidence: confBrandDomain,
				}, true
			}
		}
	}

	return BrandResult{}, false
}

// containsWord reports whether needle occurs in haystack on word
// boundaries, so "hp" does not fire inside "graphics".
func containsWord(haystack, needle string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		leftOK := start == 0 || !isWordByte(haystack[start-1])
		rightOK := end == len(haystack) || !isWordByte(haystack[end])
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
