// Package quoter walks a swap across initialized ticks, driving the
// single-step engine once per tick boundary until the requested amount is
// exhausted or the price limit is hit.
package quoter

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"clmmEngine/internal/liquidity"
	"clmmEngine/internal/pool"
	"clmmEngine/internal/swapmath"
	"clmmEngine/internal/tickmath"
)

var (
	// ErrInvalidPriceLimit is returned when the price limit is outside the
	// global bounds or on the wrong side of the current price.
	ErrInvalidPriceLimit = errors.New("invalid price limit")
	// ErrTooManySteps is returned when the walk exceeds the step cap.
	ErrTooManySteps = errors.New("swap exceeded step cap")
)

// DefaultMaxSteps bounds the tick walk. A single word scan per step keeps
// the loop logarithmic in practice; the cap is a safety net for degenerate
// tick data.
const DefaultMaxSteps = 1000

// Result is the outcome of a multi-step quote.
type Result struct {
	// AmountIn is the total input consumed, excluding fees.
	AmountIn *uint256.Int
	// AmountOut is the total output produced.
	AmountOut *uint256.Int
	// FeeAmount is the total fee paid on top of AmountIn.
	FeeAmount *uint256.Int
	// SqrtPriceX96, Liquidity and Tick describe the pool after the swap.
	SqrtPriceX96 *uint256.Int
	Liquidity    *uint256.Int
	Tick         int
	// Steps is the number of swap steps taken.
	Steps int
}

// Quoter computes swap quotes over pool snapshots.
type Quoter struct {
	log      *zap.Logger
	maxSteps int
}

// New builds a Quoter. A nil logger disables logging.
func New(log *zap.Logger) *Quoter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Quoter{log: log, maxSteps: DefaultMaxSteps}
}

// WithMaxSteps overrides the step cap.
func (q *Quoter) WithMaxSteps(n int) *Quoter {
	q.maxSteps = n
	return q
}

// Quote simulates a swap on the pool snapshot. amountSpecified is signed:
// non-negative means exact input, negative exact output. A nil
// sqrtPriceLimitX96 means no limit beyond the global price bounds. The pool
// is not mutated; the result carries the post-swap state.
func (q *Quoter) Quote(p *pool.Pool, zeroForOne bool, amountSpecified, sqrtPriceLimitX96 *uint256.Int) (Result, error) {
	limit, err := checkPriceLimit(p.SqrtPriceX96, zeroForOne, sqrtPriceLimitX96)
	if err != nil {
		return Result{}, err
	}
	exactInput := amountSpecified.Sign() >= 0

	remaining := new(uint256.Int).Set(amountSpecified)
	sqrtPrice := new(uint256.Int).Set(p.SqrtPriceX96)
	liq := new(uint256.Int).Set(p.Liquidity)
	tick := p.TickCurrent

	res := Result{
		AmountIn:  new(uint256.Int),
		AmountOut: new(uint256.Int),
		FeeAmount: new(uint256.Int),
	}

	for !remaining.IsZero() && !sqrtPrice.Eq(limit) {
		if res.Steps >= q.maxSteps {
			return Result{}, fmt.Errorf("%w: %d", ErrTooManySteps, q.maxSteps)
		}

		tickNext, initialized, err := p.Ticks.NextInitializedTickWithinOneWord(tick, zeroForOne, p.TickSpacing)
		if err != nil {
			return Result{}, fmt.Errorf("next tick from %d: %w", tick, err)
		}
		if tickNext < tickmath.MinTick {
			tickNext = tickmath.MinTick
		} else if tickNext > tickmath.MaxTick {
			tickNext = tickmath.MaxTick
		}
		sqrtPriceNext, err := tickmath.GetSqrtRatioAtTick(tickNext)
		if err != nil {
			return Result{}, err
		}

		target := sqrtPriceNext
		if zeroForOne {
			if target.Lt(limit) {
				target = limit
			}
		} else {
			if target.Gt(limit) {
				target = limit
			}
		}

		step, err := swapmath.ComputeSwapStep(sqrtPrice, target, liq, remaining, uint64(p.Fee))
		if err != nil {
			return Result{}, fmt.Errorf("swap step at tick %d: %w", tick, err)
		}

		consumed := new(uint256.Int).Add(step.AmountIn, step.FeeAmount)
		if exactInput {
			remaining.Sub(remaining, consumed)
		} else {
			remaining.Add(remaining, step.AmountOut)
			if remaining.Sign() > 0 {
				remaining.Clear()
			}
		}
		res.AmountIn.Add(res.AmountIn, step.AmountIn)
		res.AmountOut.Add(res.AmountOut, step.AmountOut)
		res.FeeAmount.Add(res.FeeAmount, step.FeeAmount)
		res.Steps++

		q.log.Debug("swap step",
			zap.Int("tick", tick),
			zap.Int("tick_next", tickNext),
			zap.Bool("initialized", initialized),
			zap.String("sqrt_price_next", step.SqrtPriceNextX96.Dec()),
			zap.String("amount_in", step.AmountIn.Dec()),
			zap.String("amount_out", step.AmountOut.Dec()),
			zap.String("fee", step.FeeAmount.Dec()))

		sqrtPrice = step.SqrtPriceNextX96
		switch {
		case sqrtPrice.Eq(sqrtPriceNext):
			if initialized {
				info, err := p.Ticks.GetTick(tickNext)
				if err != nil {
					return Result{}, fmt.Errorf("crossing tick %d: %w", tickNext, err)
				}
				net := new(uint256.Int).Set(info.LiquidityNet)
				if zeroForOne {
					net.Neg(net)
				}
				liq, err = liquidity.AddDelta(liq, net)
				if err != nil {
					return Result{}, fmt.Errorf("crossing tick %d: %w", tickNext, err)
				}
			}
			if zeroForOne {
				tick = tickNext - 1
			} else {
				tick = tickNext
			}
		default:
			tick, err = tickmath.GetTickAtSqrtRatio(sqrtPrice)
			if err != nil {
				return Result{}, err
			}
		}
	}

	res.SqrtPriceX96 = sqrtPrice
	res.Liquidity = liq
	res.Tick = tick
	return res, nil
}

func checkPriceLimit(current *uint256.Int, zeroForOne bool, limit *uint256.Int) (*uint256.Int, error) {
	if limit == nil {
		if zeroForOne {
			return new(uint256.Int).AddUint64(tickmath.MinSqrtRatio, 1), nil
		}
		return new(uint256.Int).SubUint64(tickmath.MaxSqrtRatio, 1), nil
	}
	if zeroForOne {
		if !limit.Gt(tickmath.MinSqrtRatio) || !limit.Lt(current) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPriceLimit, limit.Dec())
		}
	} else {
		if !limit.Gt(current) || !limit.Lt(tickmath.MaxSqrtRatio) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPriceLimit, limit.Dec())
		}
	}
	return new(uint256.Int).Set(limit), nil
}
