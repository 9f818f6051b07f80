package model

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestParseSignedRoundTrip(t *testing.T) {
	cases := []string{"0", "1", "-1", "400000000000000000", "-400000000000000000",
		"115792089237316195423570985008687907853269984665640564039457584007913129639935"}
	for _, c := range cases {
		v, err := ParseSigned(c)
		if err != nil {
			t.Fatalf("ParseSigned(%q): %v", c, err)
		}
		if got := FormatSigned(v); got != wantCanonical(c) {
			t.Fatalf("FormatSigned(ParseSigned(%q)) = %q", c, got)
		}
	}
}

// The full uint256 range value above is its own two's complement -1.
func wantCanonical(s string) string {
	if s == "115792089237316195423570985008687907853269984665640564039457584007913129639935" {
		return "-1"
	}
	return s
}

func TestParseSignedNegative(t *testing.T) {
	v, err := ParseSigned("-5")
	if err != nil {
		t.Fatalf("ParseSigned: %v", err)
	}
	if v.Sign() >= 0 {
		t.Fatalf("expected negative value")
	}
	if got := new(uint256.Int).Neg(v); got.Uint64() != 5 {
		t.Fatalf("abs = %s, want 5", got.Dec())
	}
}

func TestParseSignedInvalid(t *testing.T) {
	if _, err := ParseSigned("12x"); err == nil {
		t.Fatalf("expected error for junk input")
	}
	if _, err := ParseUnsigned("-12"); err == nil {
		t.Fatalf("expected error for negative unsigned")
	}
}
