package pool

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"clmmEngine/internal/tickmath"
	"clmmEngine/internal/ticks"
)

func ratioAt(t *testing.T, tick int) *uint256.Int {
	t.Helper()
	ratio, err := tickmath.GetSqrtRatioAtTick(tick)
	if err != nil {
		t.Fatalf("ratio at %d: %v", tick, err)
	}
	return ratio
}

func emptyTicks(t *testing.T) *ticks.Registry {
	t.Helper()
	r, err := ticks.NewRegistry(60, nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig("USDC", "WETH", FeeMedium, uint256.NewInt(100_000))
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.ID == uuid.Nil {
		t.Fatalf("config id not assigned")
	}
	if TickSpacings[cfg.Fee] != 60 {
		t.Fatalf("spacing = %d, want 60", TickSpacings[cfg.Fee])
	}

	if _, err := NewConfig("USDC", "USDC", FeeMedium, uint256.NewInt(100_000)); !errors.Is(err, ErrSameToken) {
		t.Fatalf("same token: %v", err)
	}
	if _, err := NewConfig("USDC", "WETH", FeeAmount(250), uint256.NewInt(100_000)); !errors.Is(err, ErrInvalidFee) {
		t.Fatalf("bad fee: %v", err)
	}
	if _, err := NewConfig("USDC", "WETH", FeeMedium, uint256.NewInt(99_999)); !errors.Is(err, ErrSeedLiquidity) {
		t.Fatalf("low seed: %v", err)
	}
}

func TestFeeTiers(t *testing.T) {
	want := map[FeeAmount]int{FeeLowest: 1, FeeLow: 10, FeeMedium: 60, FeeHigh: 200}
	if len(TickSpacings) != len(want) {
		t.Fatalf("unexpected tier count %d", len(TickSpacings))
	}
	for fee, spacing := range want {
		if TickSpacings[fee] != spacing {
			t.Fatalf("fee %d: spacing %d, want %d", fee, TickSpacings[fee], spacing)
		}
	}
}

func TestNewPool(t *testing.T) {
	price := ratioAt(t, 0)
	p, err := New("USDC", "WETH", FeeMedium, price, uint256.NewInt(1_000_000), 0, emptyTicks(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.TickSpacing != 60 {
		t.Fatalf("spacing = %d, want 60", p.TickSpacing)
	}
	if !p.SqrtPriceX96.Eq(price) {
		t.Fatalf("price not carried over")
	}
}

func TestNewPoolValidation(t *testing.T) {
	price := ratioAt(t, 0)
	reg := emptyTicks(t)

	if _, err := New("USDC", "WETH", FeeAmount(2), price, nil, 0, reg); !errors.Is(err, ErrInvalidFee) {
		t.Fatalf("bad fee: %v", err)
	}
	if _, err := New("USDC", "USDC", FeeMedium, price, nil, 0, reg); !errors.Is(err, ErrSameToken) {
		t.Fatalf("same token: %v", err)
	}

	belowMin := new(uint256.Int).SubUint64(tickmath.MinSqrtRatio, 1)
	if _, err := New("USDC", "WETH", FeeMedium, belowMin, nil, 0, reg); !errors.Is(err, tickmath.ErrPriceOutOfRange) {
		t.Fatalf("price below min: %v", err)
	}
	if _, err := New("USDC", "WETH", FeeMedium, tickmath.MaxSqrtRatio, nil, 0, reg); !errors.Is(err, tickmath.ErrPriceOutOfRange) {
		t.Fatalf("price at max: %v", err)
	}

	// Tick 1 starts strictly above the price of tick 0.
	if _, err := New("USDC", "WETH", FeeMedium, price, nil, 1, reg); !errors.Is(err, ErrPriceTickMismatch) {
		t.Fatalf("tick above price: %v", err)
	}
	if _, err := New("USDC", "WETH", FeeMedium, ratioAt(t, 2), nil, 0, reg); !errors.Is(err, ErrPriceTickMismatch) {
		t.Fatalf("tick below price: %v", err)
	}
}

func TestAtPrice(t *testing.T) {
	p, err := New("USDC", "WETH", FeeMedium, ratioAt(t, 0), uint256.NewInt(5000), 0, emptyTicks(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	moved, err := p.AtPrice(ratioAt(t, 120))
	if err != nil {
		t.Fatalf("AtPrice: %v", err)
	}
	if moved.TickCurrent != 120 {
		t.Fatalf("tick = %d, want 120", moved.TickCurrent)
	}
	if !moved.Liquidity.Eq(p.Liquidity) {
		t.Fatalf("liquidity should carry over")
	}
	if p.TickCurrent != 0 {
		t.Fatalf("original snapshot mutated")
	}

	if _, err := p.AtPrice(new(uint256.Int)); !errors.Is(err, tickmath.ErrPriceOutOfRange) {
		t.Fatalf("zero price: %v", err)
	}
}
