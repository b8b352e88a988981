package pricing

import (
	"context"
	"fmt"

	"github.com/xtding233/enhance-cost/internal/estimate"
	"github.com/xtding233/enhance-cost/internal/model"
)

// ReinforcementPrices collects the known price of every level in [0,target).
// Unknown levels are left out so the estimator can report all of them.
func ReinforcementPrices(ctx context.Context, p Provider, item string, target int, tf Timeframe) (map[int]float64, error) {
	out := make(map[int]float64, target)
	for s := 0; s < target; s++ {
		price, ok, err := p.Price(ctx, item, LevelKind(s), tf)
		if err != nil {
			return nil, fmt.Errorf("price of %s level %d: %w", item, s, err)
		}
		if ok {
			out[s] = price
		}
	}
	return out, nil
}

// ToolPriceSet collects the known price of every tool.
func ToolPriceSet(ctx context.Context, p Provider, item string, tf Timeframe) (estimate.ToolPrices, error) {
	out := make(estimate.ToolPrices, len(model.Tools))
	for _, tool := range model.Tools {
		price, ok, err := p.Price(ctx, item, ToolKind(tool), tf)
		if err != nil {
			return nil, fmt.Errorf("price of %s %s: %w", item, tool, err)
		}
		if ok {
			out[tool] = price
		}
	}
	return out, nil
}
