package swapmath

import (
	"errors"

	"github.com/holiman/uint256"

	"clmmEngine/internal/fullmath"
	"clmmEngine/internal/sqrtmath"
)

// MaxFee is the fee denominator: fees are expressed in hundredths of a bip.
var MaxFee = uint256.NewInt(1_000_000)

// ErrFeeOutOfRange is returned when feePips is not below the fee denominator.
var ErrFeeOutOfRange = errors.New("fee pips out of range")

// Step is the result of a single swap step: the price the step ended at and
// the amounts that moved, always consistent with each other.
type Step struct {
	SqrtPriceNextX96 *uint256.Int
	AmountIn         *uint256.Int
	AmountOut        *uint256.Int
	FeeAmount        *uint256.Int
}

// ComputeSwapStep computes one atomic swap step from sqrtPriceCurrentX96
// toward sqrtPriceTargetX96. amountRemaining is a signed (two's complement)
// value: non-negative means exact-in, negative means exact-out of its
// magnitude. The step either reaches the target or consumes the remaining
// amount, whichever comes first.
func ComputeSwapStep(sqrtPriceCurrentX96, sqrtPriceTargetX96, liquidity, amountRemaining *uint256.Int, feePips uint64) (Step, error) {
	if feePips >= MaxFee.Uint64() {
		return Step{}, ErrFeeOutOfRange
	}

	zeroForOne := !sqrtPriceCurrentX96.Lt(sqrtPriceTargetX96)
	exactIn := amountRemaining.Sign() >= 0

	fee := uint256.NewInt(feePips)
	feeComplement := new(uint256.Int).Sub(MaxFee, fee)

	var (
		step Step
		err  error
	)

	if exactIn {
		amountRemainingLessFee, ferr := fullmath.MulDiv(amountRemaining, feeComplement, MaxFee)
		if ferr != nil {
			return Step{}, ferr
		}
		if zeroForOne {
			step.AmountIn, err = sqrtmath.GetAmount0Delta(sqrtPriceTargetX96, sqrtPriceCurrentX96, liquidity, true)
		} else {
			step.AmountIn, err = sqrtmath.GetAmount1Delta(sqrtPriceCurrentX96, sqrtPriceTargetX96, liquidity, true)
		}
		if err != nil {
			return Step{}, err
		}
		if !amountRemainingLessFee.Lt(step.AmountIn) {
			step.SqrtPriceNextX96 = sqrtPriceTargetX96.Clone()
		} else {
			step.SqrtPriceNextX96, err = sqrtmath.GetNextSqrtPriceFromInput(sqrtPriceCurrentX96, liquidity, amountRemainingLessFee, zeroForOne)
			if err != nil {
				return Step{}, err
			}
		}
	} else {
		amountOutRequested := new(uint256.Int).Neg(amountRemaining)
		if zeroForOne {
			step.AmountOut, err = sqrtmath.GetAmount1Delta(sqrtPriceTargetX96, sqrtPriceCurrentX96, liquidity, false)
		} else {
			step.AmountOut, err = sqrtmath.GetAmount0Delta(sqrtPriceCurrentX96, sqrtPriceTargetX96, liquidity, false)
		}
		if err != nil {
			return Step{}, err
		}
		if !amountOutRequested.Lt(step.AmountOut) {
			step.SqrtPriceNextX96 = sqrtPriceTargetX96.Clone()
		} else {
			step.SqrtPriceNextX96, err = sqrtmath.GetNextSqrtPriceFromOutput(sqrtPriceCurrentX96, liquidity, amountOutRequested, zeroForOne)
			if err != nil {
				return Step{}, err
			}
		}
	}

	reachedTarget := sqrtPriceTargetX96.Eq(step.SqrtPriceNextX96)

	// Recompute both amounts from the actual price movement so the result is
	// never based on a stale target estimate.
	if zeroForOne {
		if !(reachedTarget && exactIn) {
			step.AmountIn, err = sqrtmath.GetAmount0Delta(step.SqrtPriceNextX96, sqrtPriceCurrentX96, liquidity, true)
			if err != nil {
				return Step{}, err
			}
		}
		if !(reachedTarget && !exactIn) {
			step.AmountOut, err = sqrtmath.GetAmount1Delta(step.SqrtPriceNextX96, sqrtPriceCurrentX96, liquidity, false)
			if err != nil {
				return Step{}, err
			}
		}
	} else {
		if !(reachedTarget && exactIn) {
			step.AmountIn, err = sqrtmath.GetAmount1Delta(sqrtPriceCurrentX96, step.SqrtPriceNextX96, liquidity, true)
			if err != nil {
				return Step{}, err
			}
		}
		if !(reachedTarget && !exactIn) {
			step.AmountOut, err = sqrtmath.GetAmount0Delta(sqrtPriceCurrentX96, step.SqrtPriceNextX96, liquidity, false)
			if err != nil {
				return Step{}, err
			}
		}
	}

	if !exactIn {
		// Never hand out more than the caller asked for.
		amountOutRequested := new(uint256.Int).Neg(amountRemaining)
		if step.AmountOut.Gt(amountOutRequested) {
			step.AmountOut = amountOutRequested
		}
	}

	if exactIn && !reachedTarget {
		// The step ran out of input short of the target: whatever was not
		// consumed as amount-in is taken as fee.
		step.FeeAmount = new(uint256.Int).Sub(amountRemaining, step.AmountIn)
	} else {
		step.FeeAmount, err = fullmath.MulDivRoundingUp(step.AmountIn, fee, feeComplement)
		if err != nil {
			return Step{}, err
		}
	}

	return step, nil
}
