package utils

import (
	"testing"
)

func TestMatchStation(t *testing.T) {
	cases := []struct {
		station string
		query   string
		want    bool
	}{
		{"New Delhi (NDLS)", "New Delhi (NDLS)", true},
		{"New Delhi (NDLS)", "new delhi (ndls)", true},
		{"New Delhi (NDLS)", "ndls", true},
		{"New Delhi (NDLS)", "  NDLS ", true},
		{"New Delhi (NDLS)", "New Delhi", false},
		{"New Delhi (NDLS)", "", false},
		{"Mumbai (CST)", "NDLS", false},
		{"Plain Halt", "plain  halt", true},
	}
	for _, tc := range cases {
		if got := MatchStation(tc.station, tc.query); got != tc.want {
			t.Errorf("MatchStation(%q, %q) = %v, want %v", tc.station, tc.query, got, tc.want)
		}
	}
}

func TestComputeTotalFareAndRefund(t *testing.T) {
	if got := ComputeTotalFare(2500, 2); got != 5000 {
		t.Fatalf("total fare = %v, want 5000", got)
	}
	if got := ApplyRate(5000, 0.8); got != 4000 {
		t.Fatalf("refund = %v, want 4000", got)
	}
	if got := ApplyRate(0.1+0.2, 0.8); got != 0.24 {
		t.Fatalf("refund rounding = %v, want 0.24", got)
	}
	if got := ComputeTotalFare(1200, 0); got != 0 {
		t.Fatalf("zero passengers fare = %v", got)
	}
}

func TestFormatRupees(t *testing.T) {
	if got := FormatRupees(1234567.5); got != "Rs. 1,234,567.50" {
		t.Fatalf("FormatRupees = %q", got)
	}
	if got := FormatRupees(0); got != "Rs. 0.00" {
		t.Fatalf("FormatRupees zero = %q", got)
	}
}

type fixedRandom int

func (f fixedRandom) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}

func TestRandomBetween(t *testing.T) {
	if got := RandomBetween(fixedRandom(0), 1, 5); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
	if got := RandomBetween(fixedRandom(99), 1, 5); got != 5 {
		t.Fatalf("got %d, want 5", got)
	}
	if got := RandomBetween(fixedRandom(3), 7, 7); got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
}
