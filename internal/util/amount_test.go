package util

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "600", want: "600"},
		{name: "thousand comma", input: "1,250.50", want: "1250.5"},
		{name: "thousand dot", input: "1.000", want: "1000"},
		{name: "decimal comma", input: "12,5", want: "12.5"},
		{name: "european", input: "1.234,56", want: "1234.56"},
		{name: "currency symbol", input: "$ 99.90", want: "99.9"},
		{name: "currency code", input: "450 USD", want: "450"},
		{name: "accounting negative", input: "(25.00)", want: "-25"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseAmount(tc.input)
			if !ok {
				t.Fatalf("amount not parsed")
			}
			if got.String() != tc.want {
				t.Fatalf("got %v want %v", got.String(), tc.want)
			}
		})
	}
}

func TestParseAmountRejectsText(t *testing.T) {
	for _, input := range []string{"", "  ", "n/a", "TBD", "12abc"} {
		if _, ok := ParseAmount(input); ok {
			t.Fatalf("expected %q to be rejected", input)
		}
	}
}

func TestParseThreshold(t *testing.T) {
	got, ok := ParseThreshold("10,000")
	if !ok || got.String() != "10000" {
		t.Fatalf("got %v ok=%v", got, ok)
	}
}
