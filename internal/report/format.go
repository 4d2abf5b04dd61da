package report

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/vbonduro/fieldsurvey/internal/domain"
)

// Placeholder is rendered wherever an optional value is missing or unparsable.
const Placeholder = "—"

var materialTypeLabels = map[string]string{
	"acoustic-ceiling":  "Acoustic Ceiling Texture",
	"boiler-insulation": "Boiler Insulation",
	"caulk":             "Caulking / Sealant",
	"ceiling-tile":      "Ceiling Tile",
	"drywall":           "Drywall / Gypsum Board",
	"duct-wrap":         "Duct Wrap",
	"fireproofing":      "Spray-Applied Fireproofing",
	"floor-tile":        "Floor Tile",
	"joint-compound":    "Joint Compound",
	"mastic":            "Mastic / Adhesive",
	"pipe-insulation":   "Pipe Insulation",
	"plaster":           "Plaster",
	"roofing":           "Roofing Material",
	"sheet-vinyl":       "Sheet Vinyl Flooring",
	"textured-coating":  "Textured Wall Coating",
	"transite":          "Transite (Cement Board)",
	"tsi":               "Thermal System Insulation",
	"vat":               "Vinyl Asbestos Tile",
	"vermiculite":       "Vermiculite Insulation",
	"window-glazing":    "Window Glazing",
}

var singleWord = regexp.MustCompile(`^\p{L}+$`)

func FormatMaterialType(code string) string {
	if label, ok := materialTypeLabels[code]; ok {
		return label
	}
	return titleTokens(code, " ")
}

func FormatStatus(code string) string {
	return titleTokens(code, " ")
}

func FormatRiskLevel(code string) string {
	return titleTokens(code, " ")
}

// FormatSurveyType renders each hyphen-separated hazard as its own label.
func FormatSurveyType(code string) string {
	return titleTokens(code, ", ")
}

func titleTokens(code, sep string) string {
	if code == "" {
		return ""
	}
	tokens := strings.Split(code, "-")
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		out = append(out, titleCase(tok))
	}
	return strings.Join(out, sep)
}

func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// FormatNumber renders integral values without decimals and everything else
// rounded to six fractional digits with trailing zeros stripped.
func FormatNumber(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Placeholder
	}
	var s string
	if n == math.Trunc(n) {
		s = strconv.FormatFloat(n, 'f', 0, 64)
	} else {
		s = strconv.FormatFloat(n, 'f', 6, 64)
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

// FormatOptionalNumber accepts numbers, numeric pointers and numeric strings.
// The suffix is only appended when a value is present.
func FormatOptionalNumber(value any, suffix string) string {
	n, ok := toNumber(value)
	if !ok {
		return Placeholder
	}
	return FormatNumber(n) + suffix
}

func toNumber(value any) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		n = v
	case *float64:
		if v == nil {
			return 0, false
		}
		n = *v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case string:
		return parseNumber(v)
	case *string:
		if v == nil {
			return 0, false
		}
		return parseNumber(*v)
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// SentenceCaseIfSingleWord normalizes values like "PLASTER" to "Plaster" and
// leaves codes and phrases untouched.
func SentenceCaseIfSingleWord(s string) string {
	if !singleWord.MatchString(s) {
		return s
	}
	return titleCase(s)
}

func FormatSubstrate(sample domain.PaintSample) string {
	if sample.Substrate == "other" {
		if other := strings.TrimSpace(sample.SubstrateOther); other != "" {
			return other
		}
		return "Other"
	}
	return SentenceCaseIfSingleWord(sample.Substrate)
}

func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return Placeholder
	}
	return t.Format("January 2, 2006")
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
