package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// moneyRegex matches a dollar amount with optional sign, thousands separators
// and cents. Plain numbers without the currency symbol are deliberately not
// matched; OCR screens are full of counters and dates that would otherwise
// look like amounts.
var moneyRegex = regexp.MustCompile(`-?\$[\d,]+(?:\.\d{2})?`)

// extractMoney returns the absolute value of the first dollar amount found in
// the line. The second return is false when no amount is present, which is an
// expected outcome while scanning, not an error.
func extractMoney(line string) (float64, bool) {
	m := moneyRegex.FindString(line)
	if m == "" {
		return 0, false
	}
	m = strings.ReplaceAll(m, "$", "")
	m = strings.ReplaceAll(m, ",", "")
	value, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return math.Abs(value), true
}
