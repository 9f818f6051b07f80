package swapmath

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"clmmEngine/internal/sqrtmath"
	"clmmEngine/internal/tickmath"
)

func dec(t *testing.T, s string) *uint256.Int {
	t.Helper()
	v := new(uint256.Int)
	if err := v.SetFromDecimal(s); err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func ratioAt(t *testing.T, tick int) *uint256.Int {
	t.Helper()
	ratio, err := tickmath.GetSqrtRatioAtTick(tick)
	if err != nil {
		t.Fatalf("ratio at %d: %v", tick, err)
	}
	return ratio
}

func TestComputeSwapStepExactInReachesTarget(t *testing.T) {
	current := ratioAt(t, 0)
	target := ratioAt(t, -100)
	liquidity := dec(t, "1000000000000000000")

	// Learn the gross input needed to reach the target, then feed exactly
	// that back in: the step must land on the target with zero leftover.
	probe, err := ComputeSwapStep(current, target, liquidity, dec(t, "100000000000000000000000"), 30)
	if err != nil {
		t.Fatalf("probe step: %v", err)
	}
	if !probe.SqrtPriceNextX96.Eq(target) {
		t.Fatalf("probe did not reach target")
	}

	exact := new(uint256.Int).Add(probe.AmountIn, probe.FeeAmount)
	step, err := ComputeSwapStep(current, target, liquidity, exact, 30)
	if err != nil {
		t.Fatalf("exact step: %v", err)
	}
	if !step.SqrtPriceNextX96.Eq(target) {
		t.Fatalf("exact step should reach target: %s", step.SqrtPriceNextX96.Dec())
	}
	if !step.AmountIn.Eq(probe.AmountIn) || !step.AmountOut.Eq(probe.AmountOut) {
		t.Fatalf("amounts differ between probe and exact step")
	}
	consumed := new(uint256.Int).Add(step.AmountIn, step.FeeAmount)
	if consumed.Gt(exact) {
		t.Fatalf("consumed %s exceeds remaining %s", consumed.Dec(), exact.Dec())
	}
}

func TestComputeSwapStepExactInPartial(t *testing.T) {
	current := ratioAt(t, 0)
	target := ratioAt(t, -10000)
	liquidity := dec(t, "1000000000000000000")
	remaining := dec(t, "1000000000000")

	step, err := ComputeSwapStep(current, target, liquidity, remaining, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.SqrtPriceNextX96.Eq(target) {
		t.Fatalf("small input should not reach a distant target")
	}
	if !step.SqrtPriceNextX96.Lt(current) {
		t.Fatalf("zeroForOne step must decrease the price")
	}

	// A short exact-in step consumes the entire remaining amount: whatever
	// is not amount-in is fee.
	consumed := new(uint256.Int).Add(step.AmountIn, step.FeeAmount)
	if !consumed.Eq(remaining) {
		t.Fatalf("amountIn + fee = %s, want %s", consumed.Dec(), remaining.Dec())
	}
}

func TestComputeSwapStepExactOutReachesTarget(t *testing.T) {
	current := ratioAt(t, 0)
	target := ratioAt(t, -100)
	liquidity := dec(t, "1000000000000000000")

	available, err := sqrtmath.GetAmount1Delta(target, current, liquidity, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Request more than the range holds: the step stops at the target and
	// pays out exactly what is available.
	request := new(uint256.Int).Add(available, uint256.NewInt(1))
	step, err := ComputeSwapStep(current, target, liquidity, new(uint256.Int).Neg(request), 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !step.SqrtPriceNextX96.Eq(target) {
		t.Fatalf("over-asking should stop at the target")
	}
	if !step.AmountOut.Eq(available) {
		t.Fatalf("amountOut %s, want %s", step.AmountOut.Dec(), available.Dec())
	}

	// Asking for exactly the available amount also crosses.
	step, err = ComputeSwapStep(current, target, liquidity, new(uint256.Int).Neg(available), 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !step.SqrtPriceNextX96.Eq(target) {
		t.Fatalf("exact-available request should reach the target")
	}
}

func TestComputeSwapStepExactOutClamped(t *testing.T) {
	current := ratioAt(t, 0)
	target := ratioAt(t, -10000)
	liquidity := dec(t, "1000000000000000000")
	request := dec(t, "1000000000000")

	step, err := ComputeSwapStep(current, target, liquidity, new(uint256.Int).Neg(request), 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.SqrtPriceNextX96.Eq(target) {
		t.Fatalf("small request should not reach a distant target")
	}
	if step.AmountOut.Gt(request) {
		t.Fatalf("amountOut %s exceeds requested %s", step.AmountOut.Dec(), request.Dec())
	}
}

func TestComputeSwapStepDirectionFromPrices(t *testing.T) {
	current := ratioAt(t, 0)
	target := ratioAt(t, 100)
	liquidity := dec(t, "1000000000000000000")
	remaining := dec(t, "1000000000000")

	// Target above current: token1 is the input side.
	step, err := ComputeSwapStep(current, target, liquidity, remaining, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !step.SqrtPriceNextX96.Gt(current) {
		t.Fatalf("one-for-zero step must increase the price")
	}
}

func TestComputeSwapStepZeroLiquidity(t *testing.T) {
	current := ratioAt(t, 0)
	target := ratioAt(t, -100)

	step, err := ComputeSwapStep(current, target, new(uint256.Int), dec(t, "1000000"), 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// With no depth the step crosses to the target without moving tokens.
	if !step.SqrtPriceNextX96.Eq(target) {
		t.Fatalf("expected target price, got %s", step.SqrtPriceNextX96.Dec())
	}
	if !step.AmountIn.IsZero() || !step.AmountOut.IsZero() {
		t.Fatalf("expected zero amounts at zero liquidity")
	}
}

func TestComputeSwapStepFeeOutOfRange(t *testing.T) {
	current := ratioAt(t, 0)
	target := ratioAt(t, -100)
	if _, err := ComputeSwapStep(current, target, uint256.NewInt(1), uint256.NewInt(1), 1_000_000); !errors.Is(err, ErrFeeOutOfRange) {
		t.Fatalf("expected ErrFeeOutOfRange, got %v", err)
	}
}
