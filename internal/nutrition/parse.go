// internal/nutrition/parse.go
package nutrition

import (
	"math"
	"regexp"
	"strconv"
)

var magnitudeRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// ParseMagnitude extracts the numeric part of a unit-suffixed magnitude
// string ("120kcal" -> 120, "10g" -> 10). It takes the first contiguous
// digit run, with an optional leading minus and decimal point, and ignores
// everything else. Absent, garbled, or non-numeric input parses as 0; the
// extraction model's output is noisy and aggregation must never abort on
// one bad field.
func ParseMagnitude(s string) float64 {
	m := magnitudeRe.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatKcal renders a calorie magnitude in the wire style the extraction
// model uses, one decimal place with the unit suffix.
func FormatKcal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "kcal"
}

// FormatGrams renders a gram magnitude in the same wire style.
func FormatGrams(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "g"
}
