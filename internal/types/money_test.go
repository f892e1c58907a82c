package types

import "testing"

func TestFormatTHB(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 บาท"},
		{450, "450 บาท"},
		{4176, "4,176 บาท"},
		{18060, "18,060 บาท"},
		{1234567, "1,234,567 บาท"},
	}
	for _, tc := range cases {
		if got := FormatTHB(tc.in); got != tc.want {
			t.Errorf("FormatTHB(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMoneyString(t *testing.T) {
	if got := THB(1290).String(); got != "1,290 บาท" {
		t.Errorf("THB(1290) = %q", got)
	}
	if got := (Money{Amount: 1500, Currency: "USD"}).String(); got != "1,500 USD" {
		t.Errorf("USD = %q", got)
	}
}
