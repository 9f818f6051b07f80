package model

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// ParseSigned parses a decimal string with an optional leading minus into a
// two's complement 256-bit value.
func ParseSigned(s string) (*uint256.Int, error) {
	neg := strings.HasPrefix(s, "-")
	v := new(uint256.Int)
	if err := v.SetFromDecimal(strings.TrimPrefix(s, "-")); err != nil {
		return nil, fmt.Errorf("parse signed %q: %w", s, err)
	}
	if neg {
		v.Neg(v)
	}
	return v, nil
}

// FormatSigned renders a two's complement 256-bit value as a signed decimal
// string.
func FormatSigned(v *uint256.Int) string {
	if v.Sign() < 0 {
		return "-" + new(uint256.Int).Neg(v).Dec()
	}
	return v.Dec()
}

// ParseUnsigned parses a non-negative decimal string.
func ParseUnsigned(s string) (*uint256.Int, error) {
	v := new(uint256.Int)
	if err := v.SetFromDecimal(s); err != nil {
		return nil, fmt.Errorf("parse unsigned %q: %w", s, err)
	}
	return v, nil
}
