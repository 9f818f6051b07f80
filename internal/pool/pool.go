// Package pool defines fee tiers, pool configuration and the read-only pool
// snapshot the pricing components operate on.
package pool

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"clmmEngine/internal/tickmath"
	"clmmEngine/internal/ticks"
)

// FeeAmount is a swap fee tier in hundredths of a basis point.
type FeeAmount uint64

const (
	FeeLowest FeeAmount = 1
	FeeLow    FeeAmount = 5
	FeeMedium FeeAmount = 30
	FeeHigh   FeeAmount = 100
)

// TickSpacings maps each fee tier to its tick spacing.
var TickSpacings = map[FeeAmount]int{
	FeeLowest: 1,
	FeeLow:    10,
	FeeMedium: 60,
	FeeHigh:   200,
}

// MinLiquidity is the smallest seed liquidity a new pool config accepts.
var MinLiquidity = uint256.NewInt(100_000)

var (
	// ErrInvalidFee is returned for a fee outside the enumerated tiers.
	ErrInvalidFee = errors.New("fee not in enumerated tiers")
	// ErrSeedLiquidity is returned when configured seed liquidity is below
	// the minimum.
	ErrSeedLiquidity = errors.New("seed liquidity below minimum")
	// ErrSameToken is returned when both sides of the pair are the same
	// token.
	ErrSameToken = errors.New("token0 and token1 must differ")
	// ErrPriceTickMismatch is returned when the snapshot's current tick
	// does not bracket its sqrt price.
	ErrPriceTickMismatch = errors.New("current tick does not match sqrt price")
)

// Config describes a pool to be created. Validation here is a configuration
// guard, not a pricing invariant.
type Config struct {
	ID            uuid.UUID
	Token0        string
	Token1        string
	Fee           FeeAmount
	SeedLiquidity *uint256.Int
}

// NewConfig validates the pair, fee tier and seed liquidity and assigns a
// fresh id.
func NewConfig(token0, token1 string, fee FeeAmount, seedLiquidity *uint256.Int) (Config, error) {
	if token0 == token1 {
		return Config{}, fmt.Errorf("%w: %s", ErrSameToken, token0)
	}
	if _, ok := TickSpacings[fee]; !ok {
		return Config{}, fmt.Errorf("%w: %d", ErrInvalidFee, fee)
	}
	if seedLiquidity == nil || seedLiquidity.Lt(MinLiquidity) {
		return Config{}, fmt.Errorf("%w: need at least %s", ErrSeedLiquidity, MinLiquidity.Dec())
	}
	return Config{
		ID:            uuid.New(),
		Token0:        token0,
		Token1:        token1,
		Fee:           fee,
		SeedLiquidity: new(uint256.Int).Set(seedLiquidity),
	}, nil
}

// Pool is a read-only snapshot of pool state. Nothing in this package or its
// consumers mutates it; swap and position math compute deltas the caller
// applies elsewhere.
type Pool struct {
	Token0       string
	Token1       string
	Fee          FeeAmount
	TickSpacing  int
	SqrtPriceX96 *uint256.Int
	Liquidity    *uint256.Int
	TickCurrent  int
	Ticks        ticks.Provider
}

// New validates and builds a pool snapshot. The sqrt price must be inside
// the global bounds and the current tick must bracket it.
func New(token0, token1 string, fee FeeAmount, sqrtPriceX96, liquidity *uint256.Int, tickCurrent int, provider ticks.Provider) (*Pool, error) {
	spacing, ok := TickSpacings[fee]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFee, fee)
	}
	if token0 == token1 {
		return nil, fmt.Errorf("%w: %s", ErrSameToken, token0)
	}
	if sqrtPriceX96 == nil || sqrtPriceX96.Lt(tickmath.MinSqrtRatio) || !sqrtPriceX96.Lt(tickmath.MaxSqrtRatio) {
		return nil, fmt.Errorf("%w: %s", tickmath.ErrPriceOutOfRange, sqrtPriceX96)
	}
	tickRatio, err := tickmath.GetSqrtRatioAtTick(tickCurrent)
	if err != nil {
		return nil, err
	}
	if sqrtPriceX96.Lt(tickRatio) {
		return nil, fmt.Errorf("%w: tick %d above price", ErrPriceTickMismatch, tickCurrent)
	}
	if tickCurrent < tickmath.MaxTick {
		nextRatio, err := tickmath.GetSqrtRatioAtTick(tickCurrent + 1)
		if err != nil {
			return nil, err
		}
		if !sqrtPriceX96.Lt(nextRatio) {
			return nil, fmt.Errorf("%w: tick %d below price", ErrPriceTickMismatch, tickCurrent)
		}
	}
	if liquidity == nil {
		liquidity = new(uint256.Int)
	}
	return &Pool{
		Token0:       token0,
		Token1:       token1,
		Fee:          fee,
		TickSpacing:  spacing,
		SqrtPriceX96: new(uint256.Int).Set(sqrtPriceX96),
		Liquidity:    new(uint256.Int).Set(liquidity),
		TickCurrent:  tickCurrent,
		Ticks:        provider,
	}, nil
}

// AtPrice returns a copy of the pool moved to a different sqrt price, with
// the current tick recomputed. Liquidity and the tick provider carry over.
func (p *Pool) AtPrice(sqrtPriceX96 *uint256.Int) (*Pool, error) {
	tick, err := tickmath.GetTickAtSqrtRatio(sqrtPriceX96)
	if err != nil {
		return nil, err
	}
	return &Pool{
		Token0:       p.Token0,
		Token1:       p.Token1,
		Fee:          p.Fee,
		TickSpacing:  p.TickSpacing,
		SqrtPriceX96: new(uint256.Int).Set(sqrtPriceX96),
		Liquidity:    new(uint256.Int).Set(p.Liquidity),
		TickCurrent:  tick,
		Ticks:        p.Ticks,
	}, nil
}
