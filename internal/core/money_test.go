package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 1234})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "12.34" {
		t.Fatalf("marshal = %s, want 12.34", b)
	}

	cases := []struct {
		in  string
		out int64
	}{
		{"1500", 150000},
		{"1500.0", 150000},
		{"12.34", 1234},
		{"-3.5", -350},
		{"0", 0},
		{"null", 0},
	}
	for _, tc := range cases {
		var m Money
		if err := json.Unmarshal([]byte(tc.in), &m); err != nil {
			t.Fatalf("unmarshal %q: %v", tc.in, err)
		}
		if m.Cents != tc.out {
			t.Fatalf("unmarshal %q = %d, want %d", tc.in, m.Cents, tc.out)
		}
	}

	var m Money
	if err := json.Unmarshal([]byte(`"nope"`), &m); err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: 150050}).String(); got != "1500.50" {
		t.Fatalf("String = %q", got)
	}
	if got := (Money{Cents: -75}).String(); got != "-0.75" {
		t.Fatalf("String = %q", got)
	}
}
