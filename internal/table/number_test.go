package table

import "testing"

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1.2亿", "120000000", true},
		{"3456万", "34560000", true},
		{"3,456万", "34560000", true},
		{"2万亿", "2000000000000", true},
		{"1,234.56", "1234.56", true},
		{"１，０００", "", false}, // full-width digits are not numerals we accept
		{"-3.5亿", "-350000000", true},
		{"0", "0", true},
		{"--", "", false},
		{"", "", false},
		{"亿", "", false},
		{"净利润", "", false},
		{"12.5%", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseNumber(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got.String() != tt.want {
			t.Errorf("ParseNumber(%q) = %s, want %s", tt.in, got.String(), tt.want)
		}
	}
}

func TestCoerceCell(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
	}{
		{"1.2亿", Number},
		{"2023-01-01", Date},
		{"--", Missing},
		{"—", Missing},
		{"", Missing},
		{"营业总收入", Text},
		{"12.5%", Text},
	}
	for _, tt := range tests {
		if got := CoerceCell(tt.in); got.Kind != tt.kind {
			t.Errorf("CoerceCell(%q).Kind = %v, want %v", tt.in, got.Kind, tt.kind)
		}
	}
}

func TestCoerceCellKeepsRaw(t *testing.T) {
	c := CoerceCell(" 1.2亿 ")
	if c.Raw != "1.2亿" {
		t.Errorf("Raw = %q, want trimmed original", c.Raw)
	}
	if c.Number.String() != "120000000" {
		t.Errorf("Number = %s, want 120000000", c.Number.String())
	}
}
