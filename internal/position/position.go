// Package position computes token amounts for a liquidity range over a pool
// snapshot, including slippage-bounded mint and burn amounts.
package position

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"clmmEngine/internal/liquidity"
	"clmmEngine/internal/pool"
	"clmmEngine/internal/sqrtmath"
	"clmmEngine/internal/tickmath"
)

var (
	// ErrInvalidTickRange is returned when tickLower is not below tickUpper.
	ErrInvalidTickRange = errors.New("tick lower must be below tick upper")
	// ErrInvalidTickSpacing is returned when a bound is not a multiple of
	// the pool's tick spacing.
	ErrInvalidTickSpacing = errors.New("tick not a multiple of pool spacing")
	// ErrTickBelowMinimum is returned when tickLower is below the global
	// minimum.
	ErrTickBelowMinimum = errors.New("tick below minimum")
	// ErrTickAboveMaximum is returned when tickUpper is above the global
	// maximum.
	ErrTickAboveMaximum = errors.New("tick above maximum")
	// ErrInvalidTolerance is returned for a slippage tolerance that is not
	// a fraction in [0, 1].
	ErrInvalidTolerance = errors.New("tolerance must be a fraction in [0, 1]")
)

// Tolerance is a slippage tolerance expressed as an exact rational,
// e.g. 5/10000 for 0.05%.
type Tolerance struct {
	Numerator   *uint256.Int
	Denominator *uint256.Int
}

func (t Tolerance) validate() error {
	if t.Numerator == nil || t.Denominator == nil || t.Denominator.IsZero() || t.Numerator.Gt(t.Denominator) {
		return ErrInvalidTolerance
	}
	return nil
}

// Amounts is a pair of token amounts owed for a position operation.
type Amounts struct {
	Amount0 *uint256.Int
	Amount1 *uint256.Int
}

// Position is a liquidity range over a pool snapshot. It is a value object:
// computing amounts never mutates the pool.
type Position struct {
	Pool      *pool.Pool
	TickLower int
	TickUpper int
	Liquidity *uint256.Int
}

// New validates the range against the pool's spacing and the global tick
// bounds.
func New(p *pool.Pool, tickLower, tickUpper int, liq *uint256.Int) (*Position, error) {
	if tickLower >= tickUpper {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrInvalidTickRange, tickLower, tickUpper)
	}
	if tickLower < tickmath.MinTick {
		return nil, fmt.Errorf("%w: %d", ErrTickBelowMinimum, tickLower)
	}
	if tickUpper > tickmath.MaxTick {
		return nil, fmt.Errorf("%w: %d", ErrTickAboveMaximum, tickUpper)
	}
	if tickLower%p.TickSpacing != 0 || tickUpper%p.TickSpacing != 0 {
		return nil, fmt.Errorf("%w: [%d, %d] spacing %d", ErrInvalidTickSpacing, tickLower, tickUpper, p.TickSpacing)
	}
	if liq == nil {
		liq = new(uint256.Int)
	}
	return &Position{
		Pool:      p,
		TickLower: tickLower,
		TickUpper: tickUpper,
		Liquidity: new(uint256.Int).Set(liq),
	}, nil
}

func (p *Position) rangeRatios() (lower, upper *uint256.Int, err error) {
	lower, err = tickmath.GetSqrtRatioAtTick(p.TickLower)
	if err != nil {
		return nil, nil, err
	}
	upper, err = tickmath.GetSqrtRatioAtTick(p.TickUpper)
	if err != nil {
		return nil, nil, err
	}
	return lower, upper, nil
}

func (p *Position) amounts(roundUp bool) (Amounts, error) {
	ratioLower, ratioUpper, err := p.rangeRatios()
	if err != nil {
		return Amounts{}, err
	}
	zero := func() *uint256.Int { return new(uint256.Int) }

	switch {
	case p.Pool.TickCurrent < p.TickLower:
		amount0, err := sqrtmath.GetAmount0Delta(ratioLower, ratioUpper, p.Liquidity, roundUp)
		if err != nil {
			return Amounts{}, err
		}
		return Amounts{Amount0: amount0, Amount1: zero()}, nil
	case p.Pool.TickCurrent < p.TickUpper:
		amount0, err := sqrtmath.GetAmount0Delta(p.Pool.SqrtPriceX96, ratioUpper, p.Liquidity, roundUp)
		if err != nil {
			return Amounts{}, err
		}
		amount1, err := sqrtmath.GetAmount1Delta(ratioLower, p.Pool.SqrtPriceX96, p.Liquidity, roundUp)
		if err != nil {
			return Amounts{}, err
		}
		return Amounts{Amount0: amount0, Amount1: amount1}, nil
	default:
		amount1, err := sqrtmath.GetAmount1Delta(ratioLower, ratioUpper, p.Liquidity, roundUp)
		if err != nil {
			return Amounts{}, err
		}
		return Amounts{Amount0: zero(), Amount1: amount1}, nil
	}
}

// CurrentAmounts returns the token amounts the position represents at the
// pool's current price, rounded down.
func (p *Position) CurrentAmounts() (Amounts, error) {
	return p.amounts(false)
}

// MintAmounts returns the amounts a minter must supply, rounded up.
func (p *Position) MintAmounts() (Amounts, error) {
	return p.amounts(true)
}

// BurnAmounts returns the amounts a burner receives, rounded down.
func (p *Position) BurnAmounts() (Amounts, error) {
	return p.amounts(false)
}

// ratiosAfterSlippage scales the pool price by (1 - tol) and (1 + tol) as
// exact rationals and re-derives the sqrt price bounds, clamped inside the
// global range. The 512-bit square goes through math/big.
func (p *Position) ratiosAfterSlippage(tol Tolerance) (lower, upper *uint256.Int, err error) {
	if err := tol.validate(); err != nil {
		return nil, nil, err
	}
	num := tol.Numerator.ToBig()
	den := tol.Denominator.ToBig()

	sq := new(big.Int).Mul(p.Pool.SqrtPriceX96.ToBig(), p.Pool.SqrtPriceX96.ToBig())

	lowerBig := new(big.Int).Sub(den, num)
	lowerBig.Mul(lowerBig, sq)
	lowerBig.Div(lowerBig, den)
	lowerBig.Sqrt(lowerBig)

	upperBig := new(big.Int).Add(den, num)
	upperBig.Mul(upperBig, sq)
	upperBig.Div(upperBig, den)
	upperBig.Sqrt(upperBig)

	lower, overflow := uint256.FromBig(lowerBig)
	if overflow {
		return nil, nil, fmt.Errorf("%w: slippage lower bound", tickmath.ErrPriceOutOfRange)
	}
	upper, overflow = uint256.FromBig(upperBig)
	if overflow || !upper.Lt(tickmath.MaxSqrtRatio) {
		upper = new(uint256.Int).SubUint64(tickmath.MaxSqrtRatio, 1)
	}
	if !lower.Gt(tickmath.MinSqrtRatio) {
		lower = new(uint256.Int).AddUint64(tickmath.MinSqrtRatio, 1)
	}
	return lower, upper, nil
}

// backSolvedLiquidity recomputes the liquidity actually obtainable from the
// given nominal amounts at the current price. Amounts and liquidity do not
// invert exactly under rounding, so slippage bounds are always repriced with
// this conservative estimate rather than the position's own liquidity.
func (p *Position) backSolvedLiquidity(nominal Amounts) (*uint256.Int, error) {
	ratioLower, ratioUpper, err := p.rangeRatios()
	if err != nil {
		return nil, err
	}
	return liquidity.MaxLiquidityForAmounts(p.Pool.SqrtPriceX96, ratioLower, ratioUpper, nominal.Amount0, nominal.Amount1)
}

func (p *Position) amountsWithSlippage(tol Tolerance, mint bool) (Amounts, error) {
	boundLower, boundUpper, err := p.ratiosAfterSlippage(tol)
	if err != nil {
		return Amounts{}, err
	}

	nominal, err := p.amounts(mint)
	if err != nil {
		return Amounts{}, err
	}
	solved, err := p.backSolvedLiquidity(nominal)
	if err != nil {
		return Amounts{}, err
	}

	poolUpper, err := p.Pool.AtPrice(boundUpper)
	if err != nil {
		return Amounts{}, err
	}
	poolLower, err := p.Pool.AtPrice(boundLower)
	if err != nil {
		return Amounts{}, err
	}

	// Worst case for token0 is the price moving up to the bound; for token1
	// it is the price moving down.
	atUpper := Position{Pool: poolUpper, TickLower: p.TickLower, TickUpper: p.TickUpper, Liquidity: solved}
	atLower := Position{Pool: poolLower, TickLower: p.TickLower, TickUpper: p.TickUpper, Liquidity: solved}

	amounts0, err := atUpper.amounts(mint)
	if err != nil {
		return Amounts{}, err
	}
	amounts1, err := atLower.amounts(mint)
	if err != nil {
		return Amounts{}, err
	}
	return Amounts{Amount0: amounts0.Amount0, Amount1: amounts1.Amount1}, nil
}

// MintAmountsWithSlippage returns the largest amounts a minter may owe if
// the price moves by up to the tolerance before the mint lands.
func (p *Position) MintAmountsWithSlippage(tol Tolerance) (Amounts, error) {
	return p.amountsWithSlippage(tol, true)
}

// BurnAmountsWithSlippage returns the smallest amounts a burner is
// guaranteed to receive if the price moves by up to the tolerance. For the
// same position and tolerance these never exceed the mint-side bounds.
func (p *Position) BurnAmountsWithSlippage(tol Tolerance) (Amounts, error) {
	return p.amountsWithSlippage(tol, false)
}
