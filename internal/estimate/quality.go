package estimate

import (
	"fmt"

	"github.com/xtding233/enhance-cost/internal/model"
)

// ToolPrices holds per-attempt tool prices. An absent tool is unknown.
type ToolPrices map[model.Tool]float64

// QualityRequest describes a main ladder and an optional bonus ladder.
type QualityRequest struct {
	Prices     ToolPrices
	MainStart  model.Tier
	MainTarget model.Tier
	BonusStart model.Tier
	// BonusTarget nil skips the bonus ladder.
	BonusTarget *model.Tier
}

// StepCost is one tier advance with the tool chosen for it.
type StepCost struct {
	Label string // e.g. "Common->Epic"
	From  model.Tier
	To    model.Tier
	Tool  model.Tool
	Price float64
	Prob  float64
}

// Expected is the geometric expectation price/prob of this step.
func (s StepCost) Expected() float64 { return s.Price / s.Prob }

// Ladder is the expected cost of one quality ladder.
type Ladder struct {
	Start  model.Tier
	Target model.Tier
	Cost   float64
	Steps  []StepCost
}

// QualityResult holds the independently computed main and bonus ladders. A
// nil ladder is absent; the Missing fields say which prices were unknown.
type QualityResult struct {
	Main         *Ladder
	MainMissing  []model.Tool
	Bonus        *Ladder
	BonusMissing []model.Tool
	BonusSkipped bool
}

// Total sums the ladders that are present.
func (r QualityResult) Total() float64 {
	var t float64
	if r.Main != nil {
		t += r.Main.Cost
	}
	if r.Bonus != nil {
		t += r.Bonus.Cost
	}
	return t
}

// Quality computes the main ladder, choosing per step whichever main tool has
// the lower expected cost (primary on ties), and the bonus ladder with the
// auxiliary tool. A ladder whose target does not exceed its start costs 0.
// A ladder needing an unknown price is left absent, never partially summed.
func (e *Estimator) Quality(req QualityRequest) (QualityResult, error) {
	if err := validateQuality(req); err != nil {
		return QualityResult{}, err
	}

	var res QualityResult
	if req.MainTarget <= req.MainStart {
		res.Main = &Ladder{Start: req.MainStart, Target: req.MainTarget, Steps: []StepCost{}}
	} else if res.MainMissing = req.Prices.missing(model.MainTools...); len(res.MainMissing) == 0 {
		res.Main = e.ladder(req.MainStart, req.MainTarget, req.Prices, model.MainTools)
	}

	if req.BonusTarget == nil {
		res.BonusSkipped = true
		return res, nil
	}
	bt := *req.BonusTarget
	if bt <= req.BonusStart {
		res.Bonus = &Ladder{Start: req.BonusStart, Target: bt, Steps: []StepCost{}}
	} else if res.BonusMissing = req.Prices.missing(model.Auxiliary); len(res.BonusMissing) == 0 {
		res.Bonus = e.ladder(req.BonusStart, bt, req.Prices, []model.Tool{model.Auxiliary})
	}
	return res, nil
}

// QualityStrict is Quality but fails with a MissingPriceError, naming every
// unknown tool, instead of leaving a ladder absent.
func (e *Estimator) QualityStrict(req QualityRequest) (QualityResult, error) {
	res, err := e.Quality(req)
	if err != nil {
		return QualityResult{}, err
	}
	missing := append(append([]model.Tool(nil), res.MainMissing...), res.BonusMissing...)
	if len(missing) > 0 {
		return QualityResult{}, &MissingPriceError{Tools: missing}
	}
	return res, nil
}

// Quality estimates against the published tables.
func Quality(req QualityRequest) (QualityResult, error) {
	return New(nil).Quality(req)
}

func (e *Estimator) ladder(start, target model.Tier, prices ToolPrices, tools []model.Tool) *Ladder {
	l := &Ladder{Start: start, Target: target, Steps: make([]StepCost, 0, int(target-start))}
	for from := start; from < target; from++ {
		to := from + 1
		best := StepCost{Label: from.String() + "->" + to.String(), From: from, To: to}
		bestEV := 0.0
		for i, tool := range tools {
			price, prob := prices[tool], e.m.Odds(tool, to)
			ev := price / prob
			if i == 0 || ev < bestEV {
				best.Tool, best.Price, best.Prob = tool, price, prob
				bestEV = ev
			}
		}
		l.Cost += bestEV
		l.Steps = append(l.Steps, best)
	}
	return l
}

func (p ToolPrices) missing(tools ...model.Tool) []model.Tool {
	var out []model.Tool
	for _, t := range tools {
		if _, ok := p[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

func validateQuality(req QualityRequest) error {
	if !req.MainStart.Valid() {
		return fmt.Errorf("%w: main start %v", ErrInvalidTier, req.MainStart)
	}
	if !reachable(req.MainTarget) {
		return fmt.Errorf("%w: main target %v must be Epic, Unique or Legendary", ErrInvalidTier, req.MainTarget)
	}
	if req.BonusTarget != nil {
		if !req.BonusStart.Valid() {
			return fmt.Errorf("%w: bonus start %v", ErrInvalidTier, req.BonusStart)
		}
		if !reachable(*req.BonusTarget) {
			return fmt.Errorf("%w: bonus target %v must be Epic, Unique or Legendary", ErrInvalidTier, *req.BonusTarget)
		}
	}
	for tool, p := range req.Prices {
		if !validPrice(p) {
			return fmt.Errorf("%w: %s price %v", ErrInvalidPrice, tool, p)
		}
	}
	return nil
}

func reachable(t model.Tier) bool { return t > model.Common && t.Valid() }
