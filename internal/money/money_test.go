package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10", "10"},
		{"10.5", "10.5"},
		{"10,5", "10.5"},
		{"1.234,56", "1234.56"},
		{"R$ 99,90", "99.9"},
		{"$12.00", "12"},
		{"", "0"},
		{"abc", "0"},
		{"-5", "-5"},
	}
	for _, tt := range tests {
		got := Parse(tt.in)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseStrict(t *testing.T) {
	if _, ok := ParseStrict("0"); !ok {
		t.Error("ParseStrict(0) should be ok")
	}
	if _, ok := ParseStrict("nope"); ok {
		t.Error("ParseStrict(nope) should fail")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		amount string
		code   string
		want   string
	}{
		{"1234.56", BRL, "R$1.234,56"},
		{"0", BRL, "R$0,00"},
		{"0.005", BRL, "R$0,01"},
		{"-10", BRL, "-R$10,00"},
		{"1234.5", USD, "$1,234.50"},
	}
	for _, tt := range tests {
		got := Format(decimal.RequireFromString(tt.amount), tt.code)
		if got != tt.want {
			t.Errorf("Format(%s, %s) = %q, want %q", tt.amount, tt.code, got, tt.want)
		}
	}
}

func TestSignedAndPlain(t *testing.T) {
	if got := Signed(decimal.NewFromInt(5), BRL); got != "+R$5,00" {
		t.Errorf("Signed(+5) = %q", got)
	}
	if got := Signed(decimal.NewFromInt(-5), BRL); got != "-R$5,00" {
		t.Errorf("Signed(-5) = %q", got)
	}
	if got := Plain(decimal.RequireFromString("12.345")); got != "12.35" {
		t.Errorf("Plain = %q, want 12.35", got)
	}
	if got := Percent(decimal.NewFromInt(40)); got != "40.00%" {
		t.Errorf("Percent = %q, want 40.00%%", got)
	}
}

func TestSum(t *testing.T) {
	got := Sum(decimal.RequireFromString("0.1"), decimal.RequireFromString("0.2"))
	if !got.Equal(decimal.RequireFromString("0.3")) {
		t.Fatalf("Sum = %s, want 0.3", got)
	}
}
