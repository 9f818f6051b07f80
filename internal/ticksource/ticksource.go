// Package ticksource materializes initialized-tick data from external
// sources (JSONL files, Postgres, decoded pool events) and builds tick
// registries from it.
package ticksource

import (
	"fmt"
	"sort"

	"clmmEngine/internal/model"
	"clmmEngine/internal/ticks"
)

// BuildRegistry converts tick records into a validated registry. Records
// are sorted by tick index first; duplicate indices are rejected by the
// registry itself.
func BuildRegistry(spacing int, records []model.TickRecord) (*ticks.Registry, error) {
	sorted := make([]model.TickRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tick < sorted[j].Tick })

	list := make([]ticks.Tick, 0, len(sorted))
	for _, rec := range sorted {
		net, err := model.ParseSigned(rec.LiquidityNet)
		if err != nil {
			return nil, fmt.Errorf("tick %d: %w", rec.Tick, err)
		}
		gross, err := model.ParseUnsigned(rec.LiquidityGross)
		if err != nil {
			return nil, fmt.Errorf("tick %d: %w", rec.Tick, err)
		}
		list = append(list, ticks.Tick{Index: rec.Tick, LiquidityGross: gross, LiquidityNet: net})
	}
	return ticks.NewRegistry(spacing, list)
}
