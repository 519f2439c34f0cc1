package core

import (
	"errors"
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
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{".5", 50, true},
		{"10000000000", MaxCents, true},
		{"10000000000.004", MaxCents, true},
		{"10000000000.005", 0, false}, // rounds past the bound
		{"10000000000.01", 0, false},
		{"90000000000000000", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
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

func TestNumericPolicyNormalize(t *testing.T) {
	cases := []struct {
		policy NumericPolicy
		in     string
		out    string
		ok     bool
	}{
		{NumericStrip, "$120.50", "120.50", true},
		{NumericStrip, "12 yd", "12", true},
		{NumericStrip, "1,234.50", "1234.50", true},
		{NumericStrip, "12,5", "12.5", true},
		{NumericStrip, "$1,500", "1500", true},
		{NumericStrip, "12,000,000", "12000000", true},
		{NumericStrip, "0,500", "0.500", true},
		{NumericStrip, "1,5000", "1.5000", true},
		{NumericStrip, "1,234,5", "", false},
		{NumericStrip, "-5", "", false},
		{NumericStrip, "$-5", "", false},
		{NumericStrip, "-$5", "", false},
		{NumericStrip, "abc", "", false},
		{NumericStrip, "1.2.3", "", false},
		{NumericStrip, ".", "", false},
		{NumericStrip, "", "", false},
		{NumericReject, "120.50", "120.50", true},
		{NumericReject, "12,5", "12.5", true},
		{NumericReject, "1,500", "1500", true},
		{NumericReject, "$120.50", "", false},
		{NumericReject, "12 yd", "", false},
		{NumericReject, "-5", "", false},
	}
	for _, tc := range cases {
		got, err := tc.policy.Normalize(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%s %q expected %q, got %q (err=%v)", tc.policy, tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%s %q expected error, got %q", tc.policy, tc.in, got)
		}
	}
}

func TestNormalizeLeadingMinusIsNegativeError(t *testing.T) {
	for _, p := range []NumericPolicy{NumericStrip, NumericReject} {
		if _, err := p.Normalize("-5"); !errors.Is(err, ErrNegativeAmount) {
			t.Fatalf("%s: expected ErrNegativeAmount, got %v", p, err)
		}
	}
}

func TestParseMoneyThousandsSeparator(t *testing.T) {
	m, err := ParseMoney("$1,500", NumericStrip)
	if err != nil || m.Cents != 150000 {
		t.Fatalf("expected 150000 cents, got %d (err=%v)", m.Cents, err)
	}
}

func TestMoneyUpperBound(t *testing.T) {
	if err := (Money{Cents: MaxCents}).Validate(); err != nil {
		t.Fatalf("MaxCents must validate, got %v", err)
	}
	if err := (Money{Cents: MaxCents + 1}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount above MaxCents, got %v", err)
	}
	if _, err := ParseMoney("90000000000000000", NumericStrip); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestParseYards(t *testing.T) {
	y, err := ParseYards("2.75 yds", NumericStrip)
	if err != nil || y.String() != "2.75" {
		t.Fatalf("expected 2.75, got %s (err=%v)", y, err)
	}
	if _, err := ParseYards("2.75 yds", NumericReject); err == nil {
		t.Fatalf("expected reject policy to fail on unit suffix")
	}
}

func TestParseNumericPolicy(t *testing.T) {
	for in, want := range map[string]NumericPolicy{"": NumericStrip, "STRIP": NumericStrip, "reject": NumericReject} {
		got, err := ParseNumericPolicy(in)
		if err != nil || got != want {
			t.Fatalf("%q expected %s, got %s (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseNumericPolicy("round"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
