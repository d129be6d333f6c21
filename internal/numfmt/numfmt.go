// Package numfmt parses and formats human-compacted numbers as they appear on
// the legacy bazaar listing page ("1.2m", "4,070.1", a bare "-" for no data).
package numfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse converts a human-formatted number string to a float.
// Thousands separators are stripped and a trailing k/m/b suffix scales by
// 1e3/1e6/1e9 (case-insensitive). A bare "-" or empty string means "no value"
// and returns ok=false; missing is distinct from zero. Any other non-numeric
// residue also returns ok=false.
func Parse(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"), strings.HasSuffix(s, "K"):
		mult = 1e3
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "m"), strings.HasSuffix(s, "M"):
		mult = 1e6
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "b"), strings.HasSuffix(s, "B"):
		mult = 1e9
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	v *= mult
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Format renders a value in the same compact notation the bazaar page uses.
func Format(v float64) string {
	neg := ""
	if v < 0 {
		neg = "-"
		v = -v
	}
	switch {
	case v >= 1e9:
		return neg + trimZeros(v/1e9) + "b"
	case v >= 1e6:
		return neg + trimZeros(v/1e6) + "m"
	case v >= 1e3:
		return neg + trimZeros(v/1e3) + "k"
	}
	return neg + trimZeros(v)
}

func trimZeros(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	s = strings.TrimSuffix(s, ".0")
	return s
}
