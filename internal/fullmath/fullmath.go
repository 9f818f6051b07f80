package fullmath

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	// ErrDivisionByZero is returned when the denominator is zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrOverflow is returned when the quotient does not fit in 256 bits.
	ErrOverflow = errors.New("mul div overflow")
)

var one = uint256.NewInt(1)

// MulDiv returns floor(a * b / denominator) with a full 512-bit intermediate
// product, so a*b never wraps before the division.
func MulDiv(a, b, denominator *uint256.Int) (*uint256.Int, error) {
	if denominator.IsZero() {
		return nil, ErrDivisionByZero
	}
	quotient, overflow := new(uint256.Int).MulDivOverflow(a, b, denominator)
	if overflow {
		return nil, ErrOverflow
	}
	return quotient, nil
}

// MulDivRoundingUp returns ceil(a * b / denominator). The result is the floor
// quotient plus one iff the division leaves a remainder.
func MulDivRoundingUp(a, b, denominator *uint256.Int) (*uint256.Int, error) {
	quotient, err := MulDiv(a, b, denominator)
	if err != nil {
		return nil, err
	}
	if !new(uint256.Int).MulMod(a, b, denominator).IsZero() {
		if _, carry := quotient.AddOverflow(quotient, one); carry {
			return nil, ErrOverflow
		}
	}
	return quotient, nil
}

// DivRoundingUp returns ceil(a / b).
func DivRoundingUp(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, ErrDivisionByZero
	}
	quotient := new(uint256.Int).Div(a, b)
	if !new(uint256.Int).Mod(a, b).IsZero() {
		quotient.Add(quotient, one)
	}
	return quotient, nil
}
