// Package liquidity implements liquidity arithmetic: applying signed net
// deltas when crossing ticks and sizing liquidity from token budgets.
package liquidity

import (
	"errors"

	"github.com/holiman/uint256"

	"clmmEngine/internal/fullmath"
	"clmmEngine/internal/sqrtmath"
)

var (
	// ErrLiquidityUnderflow is returned when a negative delta exceeds the
	// current liquidity.
	ErrLiquidityUnderflow = errors.New("liquidity underflow")
	// ErrLiquidityOverflow is returned when adding a delta exceeds the
	// 128-bit liquidity range.
	ErrLiquidityOverflow = errors.New("liquidity overflow")
)

// maxUint128 bounds pool liquidity.
var maxUint128 = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)

// AddDelta applies the signed delta y (two's complement) to x, enforcing the
// 128-bit liquidity bounds.
func AddDelta(x, y *uint256.Int) (*uint256.Int, error) {
	if y.Sign() < 0 {
		abs := new(uint256.Int).Neg(y)
		if abs.Gt(x) {
			return nil, ErrLiquidityUnderflow
		}
		return new(uint256.Int).Sub(x, abs), nil
	}
	z := new(uint256.Int).Add(x, y)
	if z.Gt(maxUint128) {
		return nil, ErrLiquidityOverflow
	}
	return z, nil
}

// MaxLiquidityForAmount0 returns the greatest liquidity a budget of token0
// supports over [sqrtRatioAX96, sqrtRatioBX96].
func MaxLiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0 *uint256.Int) (*uint256.Int, error) {
	if sqrtRatioAX96.Gt(sqrtRatioBX96) {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	intermediate, err := fullmath.MulDiv(sqrtRatioAX96, sqrtRatioBX96, sqrtmath.Q96)
	if err != nil {
		return nil, err
	}
	diff := new(uint256.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)
	return fullmath.MulDiv(amount0, intermediate, diff)
}

// MaxLiquidityForAmount1 returns the greatest liquidity a budget of token1
// supports over [sqrtRatioAX96, sqrtRatioBX96].
func MaxLiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1 *uint256.Int) (*uint256.Int, error) {
	if sqrtRatioAX96.Gt(sqrtRatioBX96) {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	diff := new(uint256.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)
	return fullmath.MulDiv(amount1, sqrtmath.Q96, diff)
}

// MaxLiquidityForAmounts returns the greatest liquidity both token budgets
// support at the current price. Below the range only token0 binds, above it
// only token1; inside the range the smaller of the two estimates wins.
func MaxLiquidityForAmounts(sqrtRatioCurrentX96, sqrtRatioAX96, sqrtRatioBX96, amount0, amount1 *uint256.Int) (*uint256.Int, error) {
	if sqrtRatioAX96.Gt(sqrtRatioBX96) {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	switch {
	case !sqrtRatioCurrentX96.Gt(sqrtRatioAX96):
		return MaxLiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0)
	case sqrtRatioCurrentX96.Lt(sqrtRatioBX96):
		liquidity0, err := MaxLiquidityForAmount0(sqrtRatioCurrentX96, sqrtRatioBX96, amount0)
		if err != nil {
			return nil, err
		}
		liquidity1, err := MaxLiquidityForAmount1(sqrtRatioAX96, sqrtRatioCurrentX96, amount1)
		if err != nil {
			return nil, err
		}
		if liquidity0.Lt(liquidity1) {
			return liquidity0, nil
		}
		return liquidity1, nil
	default:
		return MaxLiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1)
	}
}
