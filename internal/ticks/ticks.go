// Package ticks holds initialized-tick data for a pool and answers the
// word-bucketed "next initialized tick" queries the swap loop drives.
package ticks

import (
	"errors"
	"fmt"
	"sort"

	"github.com/holiman/uint256"

	"clmmEngine/internal/tickmath"
)

var (
	// ErrTickNotFound is returned when the requested tick is not initialized.
	ErrTickNotFound = errors.New("tick not found")
	// ErrTickSpacing is returned when a tick index is not aligned to the
	// registry's spacing.
	ErrTickSpacing = errors.New("tick not a multiple of spacing")
	// ErrTickOrder is returned when the input ticks are not strictly
	// increasing by index.
	ErrTickOrder = errors.New("ticks not sorted by index")
)

// Tick is one initialized tick. LiquidityNet is a signed value carried in
// two's complement form.
type Tick struct {
	Index          int
	LiquidityGross *uint256.Int
	LiquidityNet   *uint256.Int
}

// Provider answers tick lookups during a swap walk. Implementations must be
// safe for repeated calls with the same arguments.
type Provider interface {
	// GetTick returns the initialized tick at index.
	GetTick(index int) (Tick, error)

	// NextInitializedTickWithinOneWord scans at most one 256-tick word for
	// an initialized tick. With lte set the scan covers the word containing
	// tick, moving down; otherwise the word above tick, moving up. The
	// boolean reports whether the returned index is initialized; when it is
	// not, the index is the word boundary where the scan stopped.
	NextInitializedTickWithinOneWord(tick int, lte bool, tickSpacing int) (int, bool, error)
}

// Registry is an in-memory Provider over a validated, sorted tick list.
type Registry struct {
	spacing int
	ticks   []Tick
}

// NewRegistry validates and indexes the given ticks. Input must be sorted by
// strictly increasing index; every index must be a multiple of spacing and
// inside the global tick bounds. Entries with zero gross liquidity are
// dropped.
func NewRegistry(spacing int, input []Tick) (*Registry, error) {
	if spacing <= 0 {
		return nil, fmt.Errorf("%w: spacing %d", ErrTickSpacing, spacing)
	}
	out := make([]Tick, 0, len(input))
	for i, tk := range input {
		if tk.Index < tickmath.MinTick || tk.Index > tickmath.MaxTick {
			return nil, fmt.Errorf("%w: tick %d", tickmath.ErrTickOutOfRange, tk.Index)
		}
		if tk.Index%spacing != 0 {
			return nil, fmt.Errorf("%w: tick %d spacing %d", ErrTickSpacing, tk.Index, spacing)
		}
		if i > 0 && tk.Index <= input[i-1].Index {
			return nil, fmt.Errorf("%w: tick %d after %d", ErrTickOrder, tk.Index, input[i-1].Index)
		}
		gross := tk.LiquidityGross
		if gross == nil || gross.IsZero() {
			continue
		}
		net := tk.LiquidityNet
		if net == nil {
			net = new(uint256.Int)
		}
		out = append(out, Tick{
			Index:          tk.Index,
			LiquidityGross: new(uint256.Int).Set(gross),
			LiquidityNet:   new(uint256.Int).Set(net),
		})
	}
	return &Registry{spacing: spacing, ticks: out}, nil
}

// Spacing returns the tick spacing the registry was built with.
func (r *Registry) Spacing() int { return r.spacing }

// Len returns the number of initialized ticks.
func (r *Registry) Len() int { return len(r.ticks) }

// GetTick returns the initialized tick at index.
func (r *Registry) GetTick(index int) (Tick, error) {
	i := sort.Search(len(r.ticks), func(i int) bool { return r.ticks[i].Index >= index })
	if i == len(r.ticks) || r.ticks[i].Index != index {
		return Tick{}, fmt.Errorf("%w: %d", ErrTickNotFound, index)
	}
	return r.ticks[i], nil
}

// nextBelow returns the greatest initialized tick with index <= tick.
func (r *Registry) nextBelow(tick int) (Tick, bool) {
	i := sort.Search(len(r.ticks), func(i int) bool { return r.ticks[i].Index > tick })
	if i == 0 {
		return Tick{}, false
	}
	return r.ticks[i-1], true
}

// nextAbove returns the least initialized tick with index > tick.
func (r *Registry) nextAbove(tick int) (Tick, bool) {
	i := sort.Search(len(r.ticks), func(i int) bool { return r.ticks[i].Index > tick })
	if i == len(r.ticks) {
		return Tick{}, false
	}
	return r.ticks[i], true
}

// NextInitializedTickWithinOneWord implements the one-word scan over the
// registry's sorted tick list.
func (r *Registry) NextInitializedTickWithinOneWord(tick int, lte bool, tickSpacing int) (int, bool, error) {
	if tickSpacing <= 0 {
		return 0, false, fmt.Errorf("%w: spacing %d", ErrTickSpacing, tickSpacing)
	}
	compressed := floorDiv(tick, tickSpacing)
	if lte {
		wordPos := compressed >> 8
		minimum := (wordPos << 8) * tickSpacing
		found, ok := r.nextBelow(tick)
		if !ok || found.Index < minimum {
			return minimum, false, nil
		}
		return found.Index, true, nil
	}
	wordPos := (compressed + 1) >> 8
	maximum := ((wordPos+1)<<8)*tickSpacing - 1
	found, ok := r.nextAbove(tick)
	if !ok || found.Index > maximum {
		return maximum, false, nil
	}
	return found.Index, true, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
