package sqrtmath

import (
	"errors"

	"github.com/holiman/uint256"

	"clmmEngine/internal/fullmath"
)

// Q96 is the UQ64.96 fixed-point scaling factor.
var Q96 = new(uint256.Int).Lsh(uint256.NewInt(1), 96)

var (
	// ErrSqrtPriceZero is returned when a price argument is zero.
	ErrSqrtPriceZero = errors.New("sqrt price must be positive")
	// ErrInsufficientLiquidity is returned when an input amount is applied
	// against zero liquidity.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	// ErrAmountExceedsLiquidity is returned when a requested output cannot be
	// produced without the price leaving its valid range.
	ErrAmountExceedsLiquidity = errors.New("amount exceeds available liquidity")
)

// GetAmount0Delta returns the token0 amount covering the price range
// [sqrtRatioAX96, sqrtRatioBX96] at the given liquidity:
// liquidity << 96 * (sqrtB - sqrtA) / (sqrtB * sqrtA), as two chained
// divisions so no precision is lost to a fused denominator.
func GetAmount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	if sqrtRatioAX96.Gt(sqrtRatioBX96) {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	if sqrtRatioAX96.IsZero() {
		return nil, ErrSqrtPriceZero
	}

	numerator1 := new(uint256.Int).Lsh(liquidity, 96)
	numerator2 := new(uint256.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)

	if roundUp {
		interim, err := fullmath.MulDivRoundingUp(numerator1, numerator2, sqrtRatioBX96)
		if err != nil {
			return nil, err
		}
		return fullmath.DivRoundingUp(interim, sqrtRatioAX96)
	}
	interim, err := fullmath.MulDiv(numerator1, numerator2, sqrtRatioBX96)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Div(interim, sqrtRatioAX96), nil
}

// GetAmount1Delta returns the token1 amount covering the price range:
// liquidity * (sqrtB - sqrtA) / 2^96.
func GetAmount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	if sqrtRatioAX96.Gt(sqrtRatioBX96) {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	diff := new(uint256.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)
	if roundUp {
		return fullmath.MulDivRoundingUp(liquidity, diff, Q96)
	}
	return fullmath.MulDiv(liquidity, diff, Q96)
}

// GetNextSqrtPriceFromInput returns the price after adding amountIn of
// token0 (zeroForOne) or token1 (!zeroForOne). The result rounds in the
// pool's favor: recomputing the input from the returned price never yields
// less than amountIn.
func GetNextSqrtPriceFromInput(sqrtPX96, liquidity, amountIn *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if sqrtPX96.IsZero() {
		return nil, ErrSqrtPriceZero
	}
	if liquidity.IsZero() {
		if amountIn.IsZero() {
			return sqrtPX96.Clone(), nil
		}
		return nil, ErrInsufficientLiquidity
	}

	if zeroForOne {
		return nextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountIn, true)
	}
	return nextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountIn, true)
}

// GetNextSqrtPriceFromOutput returns the price after removing amountOut of
// token1 (zeroForOne) or token0 (!zeroForOne).
func GetNextSqrtPriceFromOutput(sqrtPX96, liquidity, amountOut *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if sqrtPX96.IsZero() {
		return nil, ErrSqrtPriceZero
	}
	if liquidity.IsZero() {
		if amountOut.IsZero() {
			return sqrtPX96.Clone(), nil
		}
		return nil, ErrInsufficientLiquidity
	}

	if zeroForOne {
		return nextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountOut, false)
	}
	return nextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountOut, false)
}

// nextSqrtPriceFromAmount0RoundingUp solves liquidity<<96 * sqrtP /
// (liquidity<<96 +- amount * sqrtP), choosing the form that avoids overflow
// and always rounding the price up.
func nextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if amount.IsZero() {
		return sqrtPX96.Clone(), nil
	}
	numerator1 := new(uint256.Int).Lsh(liquidity, 96)

	if add {
		product, overflow := new(uint256.Int).MulOverflow(amount, sqrtPX96)
		if !overflow {
			denominator, carry := new(uint256.Int).AddOverflow(numerator1, product)
			if !carry {
				return fullmath.MulDivRoundingUp(numerator1, sqrtPX96, denominator)
			}
		}
		// fall back to liquidity<<96 / (liquidity<<96 / sqrtP + amount)
		denominator := new(uint256.Int).Div(numerator1, sqrtPX96)
		denominator.Add(denominator, amount)
		return fullmath.DivRoundingUp(numerator1, denominator)
	}

	product, overflow := new(uint256.Int).MulOverflow(amount, sqrtPX96)
	if overflow || !product.Lt(numerator1) {
		return nil, ErrAmountExceedsLiquidity
	}
	denominator := new(uint256.Int).Sub(numerator1, product)
	return fullmath.MulDivRoundingUp(numerator1, sqrtPX96, denominator)
}

// nextSqrtPriceFromAmount1RoundingDown moves the price by amount * 2^96 /
// liquidity, rounding down so the pool never credits more than it received.
func nextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if add {
		quotient, err := fullmath.MulDiv(amount, Q96, liquidity)
		if err != nil {
			return nil, err
		}
		return quotient.Add(sqrtPX96, quotient), nil
	}

	quotient, err := fullmath.MulDivRoundingUp(amount, Q96, liquidity)
	if err != nil {
		return nil, err
	}
	if !quotient.Lt(sqrtPX96) {
		return nil, ErrAmountExceedsLiquidity
	}
	return quotient.Sub(sqrtPX96, quotient), nil
}
