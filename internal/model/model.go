package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Epsilon is the tolerance on a step's probability sum.
const Epsilon = 1e-3

var ErrInvalidModel = errors.New("invalid transition model")

// Model is an immutable, validated set of transition tables. It is safe for
// concurrent use.
type Model struct {
	steps  []Step
	anchor int
	odds   map[Tool][Legendary + 1]float64
}

// New validates the tables and returns a Model holding private copies of them.
// Every step must sum to 1±Epsilon with non-negative entries, and steps below
// the anchor must never reset: the reinforcement estimator drops the reset
// term for targets at or below the anchor.
func New(steps []Step, anchor int, odds Odds) (*Model, error) {
	if err := Validate(steps, anchor, odds); err != nil {
		return nil, err
	}
	m := &Model{
		steps:  append([]Step(nil), steps...),
		anchor: anchor,
		odds:   make(map[Tool][Legendary + 1]float64, len(Tools)),
	}
	for _, tool := range Tools {
		var row [Legendary + 1]float64
		for tier, p := range odds[tool] {
			row[tier] = p
		}
		m.odds[tool] = row
	}
	return m, nil
}

// Validate checks every table entry and reports all violations at once.
func Validate(steps []Step, anchor int, odds Odds) error {
	var errs []string

	if len(steps) == 0 {
		errs = append(errs, "steps: at least one level is required")
	}
	if anchor < 0 || anchor >= len(steps) {
		errs = append(errs, fmt.Sprintf("anchor: %d outside [0,%d)", anchor, len(steps)))
	}
	for i, s := range steps {
		for _, f := range []struct {
			name string
			p    float64
		}{{"succeed", s.Succeed}, {"stay", s.Stay}, {"regress", s.Regress}, {"reset", s.Reset}} {
			if err := validateProb(f.p); err != nil {
				errs = append(errs, fmt.Sprintf("steps[%d].%s: %v", i, f.name, err))
			}
		}
		if sum := s.sum(); sum < 1-Epsilon || sum > 1+Epsilon {
			errs = append(errs, fmt.Sprintf("steps[%d]: probabilities sum to %.6f", i, sum))
		}
		if i < anchor && s.Reset != 0 {
			errs = append(errs, fmt.Sprintf("steps[%d].reset: must be 0 below anchor %d", i, anchor))
		}
	}

	for _, tool := range Tools {
		row, ok := odds[tool]
		if !ok {
			errs = append(errs, fmt.Sprintf("odds.%s: missing", tool))
			continue
		}
		for _, tier := range Tiers[1:] {
			p, ok := row[tier]
			switch {
			case !ok:
				errs = append(errs, fmt.Sprintf("odds.%s.%s: missing", tool, tier))
			case validateProb(p) != nil || p == 0:
				errs = append(errs, fmt.Sprintf("odds.%s.%s: must be in (0,1]", tool, tier))
			}
		}
		if _, ok := row[Common]; ok {
			errs = append(errs, fmt.Sprintf("odds.%s.%s: not a reachable tier", tool, Common))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidModel, strings.Join(errs, "; "))
	}
	return nil
}

var (
	defaultOnce  sync.Once
	defaultModel *Model
)

// Default returns the model built from the published tables.
func Default() *Model {
	defaultOnce.Do(func() {
		m, err := New(DefaultSteps[:], DefaultAnchor, DefaultOdds)
		if err != nil {
			panic(err)
		}
		defaultModel = m
	})
	return defaultModel
}

// Levels is the number of defined reinforcement steps.
func (m *Model) Levels() int { return len(m.steps) }

// Anchor is the level a reset transition jumps to.
func (m *Model) Anchor() int { return m.anchor }

// Step returns the transition probabilities of level i. Levels outside the
// table never move.
func (m *Model) Step(i int) Step {
	if i < 0 || i >= len(m.steps) {
		return Step{}
	}
	return m.steps[i]
}

// Steps returns a copy of the reinforcement table.
func (m *Model) Steps() []Step { return append([]Step(nil), m.steps...) }

// Odds returns the probability that one use of tool advances into tier.
func (m *Model) Odds(tool Tool, tier Tier) float64 {
	if !tier.Valid() {
		return 0
	}
	return m.odds[tool][tier]
}
