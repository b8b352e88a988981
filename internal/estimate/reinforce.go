package estimate

import (
	"fmt"

	"github.com/xtding233/enhance-cost/internal/linalg"
)

// CostResult is the expected reinforcement cost towards Target.
type CostResult struct {
	Start  int
	Target int
	// PerLevel[s] is the expected remaining cost from level s, s in [0,Target).
	PerLevel []float64
	// StepPrices are the per-attempt prices the system was built from.
	// Both slices are nil when start >= target and prices were incomplete
	// or invalid.
	StepPrices []float64
	FromZero   float64
	FromStart  float64
}

// Reinforcement returns the expected cost of reaching target from start,
// given the per-attempt price of every level below target.
//
// E[s] is the expected remaining cost from level s:
//
//	(1-stay)·E[s] - succeed·E[s+1] - regress·E[s-1] - reset·E[anchor] = price[s]
//
// E[target] is zero, level 0 cannot regress, and the reset term exists only
// when the anchor lies below target.
func (e *Estimator) Reinforcement(prices map[int]float64, target, start int) (CostResult, error) {
	if target < 1 || target > e.m.Levels() {
		return CostResult{}, fmt.Errorf("%w: %d not in [1,%d]", ErrInvalidTarget, target, e.m.Levels())
	}
	if start < 0 {
		return CostResult{}, fmt.Errorf("%w: %d", ErrInvalidStart, start)
	}

	var missing, bad []int
	for s := 0; s < target; s++ {
		p, ok := prices[s]
		switch {
		case !ok:
			missing = append(missing, s)
		case !validPrice(p):
			bad = append(bad, s)
		}
	}
	if start >= target && len(missing)+len(bad) > 0 {
		// already there: no attempt is ever priced
		return CostResult{Start: start, Target: target}, nil
	}
	if len(missing) > 0 {
		return CostResult{}, &MissingPriceError{Levels: missing}
	}
	if len(bad) > 0 {
		return CostResult{}, fmt.Errorf("%w: levels %v", ErrInvalidPrice, bad)
	}

	n := target
	anchor := e.m.Anchor()
	a := make([][]float64, n)
	b := make([]float64, n)
	for s := 0; s < n; s++ {
		st := e.m.Step(s)
		row := make([]float64, n)
		row[s] = 1 - st.Stay
		if s+1 < n {
			row[s+1] -= st.Succeed
		}
		if s > 0 {
			row[s-1] -= st.Regress
		}
		if anchor < n {
			row[anchor] -= st.Reset
		}
		a[s] = row
		b[s] = prices[s]
	}

	x, err := linalg.Solve(a, b)
	if err != nil {
		return CostResult{}, fmt.Errorf("reinforcement to %d: %w", target, err)
	}

	res := CostResult{
		Start:      start,
		Target:     target,
		PerLevel:   x,
		StepPrices: b,
		FromZero:   x[0],
	}
	if start < target {
		res.FromStart = x[start]
	}
	return res, nil
}

// Reinforcement estimates against the published tables.
func Reinforcement(prices map[int]float64, target, start int) (CostResult, error) {
	return New(nil).Reinforcement(prices, target, start)
}
