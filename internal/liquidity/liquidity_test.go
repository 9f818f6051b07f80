package liquidity

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"clmmEngine/internal/sqrtmath"
)

func q96Mul(num, den uint64) *uint256.Int {
	v := new(uint256.Int).Mul(sqrtmath.Q96, uint256.NewInt(num))
	return v.Div(v, uint256.NewInt(den))
}

func TestAddDelta(t *testing.T) {
	x := uint256.NewInt(1000)

	got, err := AddDelta(x, uint256.NewInt(234))
	if err != nil {
		t.Fatalf("AddDelta: %v", err)
	}
	if got.Uint64() != 1234 {
		t.Fatalf("got %s, want 1234", got.Dec())
	}

	neg := new(uint256.Int).Neg(uint256.NewInt(1000))
	got, err = AddDelta(x, neg)
	if err != nil {
		t.Fatalf("AddDelta: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("got %s, want 0", got.Dec())
	}

	neg = new(uint256.Int).Neg(uint256.NewInt(1001))
	if _, err := AddDelta(x, neg); !errors.Is(err, ErrLiquidityUnderflow) {
		t.Fatalf("expected underflow, got %v", err)
	}
}

func TestAddDeltaOverflow(t *testing.T) {
	nearMax := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	nearMax.SubUint64(nearMax, 1)

	got, err := AddDelta(new(uint256.Int).SubUint64(nearMax, 5), uint256.NewInt(5))
	if err != nil {
		t.Fatalf("AddDelta at the 128-bit ceiling: %v", err)
	}
	if !got.Eq(nearMax) {
		t.Fatalf("got %s, want 2^128-1", got.Dec())
	}

	if _, err := AddDelta(nearMax, uint256.NewInt(1)); !errors.Is(err, ErrLiquidityOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestMaxLiquidityForAmountsBelowRange(t *testing.T) {
	// Current at the lower bound: only the token0 budget binds.
	// L = amount0 * (sqrtA*sqrtB/Q96) / (sqrtB-sqrtA) = 100 * 2Q96 / Q96.
	got, err := MaxLiquidityForAmounts(q96Mul(1, 1), q96Mul(1, 1), q96Mul(2, 1),
		uint256.NewInt(100), uint256.NewInt(999999))
	if err != nil {
		t.Fatalf("MaxLiquidityForAmounts: %v", err)
	}
	if got.Uint64() != 200 {
		t.Fatalf("got %s, want 200", got.Dec())
	}
}

func TestMaxLiquidityForAmountsAboveRange(t *testing.T) {
	// Current at the upper bound: only the token1 budget binds.
	// L = amount1 * Q96 / (sqrtB-sqrtA) = amount1 here.
	got, err := MaxLiquidityForAmounts(q96Mul(2, 1), q96Mul(1, 1), q96Mul(2, 1),
		uint256.NewInt(999999), uint256.NewInt(777))
	if err != nil {
		t.Fatalf("MaxLiquidityForAmounts: %v", err)
	}
	if got.Uint64() != 777 {
		t.Fatalf("got %s, want 777", got.Dec())
	}
}

func TestMaxLiquidityForAmountsInRange(t *testing.T) {
	// current = 1.5*Q96 inside [Q96, 2*Q96]:
	//   L0 = amount0 * (1.5*2*Q96) / (0.5*Q96) = 6*amount0
	//   L1 = amount1 * Q96 / (0.5*Q96)         = 2*amount1
	current, lower, upper := q96Mul(3, 2), q96Mul(1, 1), q96Mul(2, 1)

	got, err := MaxLiquidityForAmounts(current, lower, upper, uint256.NewInt(100), uint256.NewInt(200))
	if err != nil {
		t.Fatalf("MaxLiquidityForAmounts: %v", err)
	}
	if got.Uint64() != 400 {
		t.Fatalf("token1-limited: got %s, want 400", got.Dec())
	}

	got, err = MaxLiquidityForAmounts(current, lower, upper, uint256.NewInt(100), uint256.NewInt(400))
	if err != nil {
		t.Fatalf("MaxLiquidityForAmounts: %v", err)
	}
	if got.Uint64() != 600 {
		t.Fatalf("token0-limited: got %s, want 600", got.Dec())
	}
}

func TestMaxLiquidityForAmountsSwappedBounds(t *testing.T) {
	got, err := MaxLiquidityForAmounts(q96Mul(1, 1), q96Mul(2, 1), q96Mul(1, 1),
		uint256.NewInt(100), uint256.NewInt(999999))
	if err != nil {
		t.Fatalf("MaxLiquidityForAmounts: %v", err)
	}
	if got.Uint64() != 200 {
		t.Fatalf("got %s, want 200", got.Dec())
	}
}
