package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Yield parsing recognizes page-count shorthand in supplier titles: a
// numeric magnitude suffix in Latin or Cyrillic script ("15K", "300К"),
// or an explicit unit ("2500 pages", "2500стр"). A bare number with
// neither suffix nor unit is not a yield.
var yieldRe = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*([KkMm\x{041A}\x{043A}\x{041C}\x{043C}])?\s*(pages?|p\.|стр\.?|страниц(?:ы)?)?`)

// magnitude multipliers keyed by the (upper-cased) suffix rune. К/М are the
// Cyrillic counterparts of K/M used by Russian-locale suppliers.
var magnitudes = map[string]int{
	"K": 1_000,
	"К": 1_000,
	"M": 1_000_000,
	"М": 1_000_000,
}

// YieldClaim holds a parsed yield: the absolute page count and the unit as
// it appeared in the input (normalized to "pages" when absent or localized).
type YieldClaim struct {
	Pages int
	Unit  string
}

// ParseYield scans canonicalized text for a page-yield expression and
// converts it to an absolute count. Returns ok=false when no expression
// with a magnitude suffix or explicit unit is present.
func ParseYield(text string) (YieldClaim, bool) {
	for _, m := range yieldRe.FindAllStringSubmatch(text, -1) {
		numStr, suffix, unit := m[1], m[2], m[3]
		if suffix == "" && unit == "" {
			continue
		}

		// Decimal separator may be a comma in non-Latin locales.
		numStr = strings.ReplaceAll(numStr, ",", ".")
		f, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			continue
		}

		mult := 1
		if suffix != "" {
			mult = magnitudes[strings.ToUpper(suffix)]
			if mult == 0 {
				continue
			}
		}

		pages := int(f*float64(mult) + 0.5)
		if pages <= 0 {
			continue
		}
		return YieldClaim{Pages: pages, Unit: "pages"}, true
	}
	return YieldClaim{}, false
}

// String renders the yield in its normalized "<count> pages" form.
func (y YieldClaim) String() string {
	return strconv.Itoa(y.Pages) + " " + y.Unit
}
