package rules

import "testing"

func TestDollars(t *testing.T) {
	cases := []struct {
		units int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{100, "1.00"},
		{250, "2.50"},
		{12345, "123.45"},
	}
	for _, tc := range cases {
		if got := Dollars(tc.units); got != tc.want {
			t.Fatalf("Dollars(%d) = %q, want %q", tc.units, got, tc.want)
		}
	}
}

func TestClampWithdrawal(t *testing.T) {
	cases := []struct {
		requested int64
		balance   int64
		want      int64
	}{
		{100, 250, 100},
		{300, 250, 250},
		{0, 250, 250},
		{-5, 250, 250},
		{250, 250, 250},
	}
	for _, tc := range cases {
		if got := ClampWithdrawal(tc.requested, tc.balance); got != tc.want {
			t.Fatalf("ClampWithdrawal(%d, %d) = %d, want %d", tc.requested, tc.balance, got, tc.want)
		}
	}
}
