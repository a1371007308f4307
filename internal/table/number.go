package table

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Chinese unit suffixes scale the preceding figure by powers of ten.
// 万亿 must be checked before 亿 and 万: it is their concatenation.
var unitSuffixes = []struct {
	suffix string
	exp    int32
}{
	{"万亿", 12},
	{"亿", 8},
	{"万", 4},
}

// ParseNumber coerces a cell string to a decimal, accepting thousands
// separators (ASCII and full-width) and Chinese unit suffixes, e.g.
// "1.2亿" -> 120000000, "3,456万" -> 34560000. Percent values and
// anything else that does not parse are left to the caller as text,
// mirroring the lenient fallback of the upstream data source.
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == MissingMark {
		return decimal.Decimal{}, false
	}

	var exp int32
	for _, u := range unitSuffixes {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSuffix(s, u.suffix)
			exp = u.exp
			break
		}
	}

	s = strings.NewReplacer(",", "", "，", "").Replace(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if exp != 0 {
		d = d.Shift(exp)
	}
	return d, true
}

// CoerceCell types a non-date-axis cell: missing marker, then number,
// then date, then raw text. Coercion failures outside the date axis
// never abort extraction.
func CoerceCell(s string) Cell {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return MissingCell()
	}
	if d, ok := ParseNumber(s); ok {
		return NumberCell(d, s)
	}
	if t, ok := ParseDate(s); ok {
		return DateCell(t, s)
	}
	return TextCell(s)
}

func isMissing(s string) bool {
	switch s {
	case "", MissingMark, "—", "－－":
		return true
	}
	return false
}
