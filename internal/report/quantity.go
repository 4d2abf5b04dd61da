package report

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var quantityPrefix = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)`)

// ParseQuantity extracts the leading signed decimal from free text such as
// "12.5 sq ft". Anything after the number is ignored.
func ParseQuantity(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	m := quantityPrefix.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
