package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xtding233/enhance-cost/internal/estimate"
	"github.com/xtding233/enhance-cost/internal/model"
	"github.com/xtding233/enhance-cost/internal/pricing"
	"github.com/xtding233/enhance-cost/internal/service"
)

// Item identifies what a report is about.
type Item struct {
	ID        string
	Name      string
	Timeframe pricing.Timeframe
}

func header(w io.Writer, title string, it Item) {
	fmt.Fprintf(w, "\n[%s] item=%s (%s) timeframe=%s\n", title, it.ID, it.Name, it.Timeframe)
}

// Star writes a reinforcement estimate.
func Star(w io.Writer, it Item, r estimate.CostResult) {
	header(w, "STAR", it)
	fmt.Fprintf(w, "target=%d start=%d\n", r.Target, r.Start)
	// without a solved ladder only the cost from start is known
	if r.PerLevel != nil {
		fmt.Fprintf(w, "Expected cost from 0★ -> %d★ : %s\n", r.Target, Mesos(r.FromZero))
	}
	if r.Start > 0 {
		fmt.Fprintf(w, "Expected cost from %d★ -> %d★ : %s\n", r.Start, r.Target, Mesos(r.FromStart))
	}
}

// Potential writes both ladders of a single-target quality estimate.
func Potential(w io.Writer, it Item, start, target model.Tier, q estimate.QualityResult) {
	header(w, "POTENTIAL", it)
	fmt.Fprintf(w, "from %s -> %s\n", start, target)
	if q.Main != nil {
		fmt.Fprintf(w, "Main potential (best tool per step): %s\n", Mesos(q.Main.Cost))
		steps(w, "  ", q.Main.Steps)
	} else {
		fmt.Fprintf(w, "Main potential: (no price for %s)\n", tools(q.MainMissing))
	}
	switch {
	case q.Bonus != nil:
		fmt.Fprintf(w, "Bonus potential (auxiliary only): %s\n", Mesos(q.Bonus.Cost))
		steps(w, "  ", q.Bonus.Steps)
	case !q.BonusSkipped:
		fmt.Fprintf(w, "Bonus potential: (no price for %s)\n", tools(q.BonusMissing))
	}
}

// PotentialDual writes a quality estimate with separate main and bonus targets.
func PotentialDual(w io.Writer, it Item, q estimate.QualityResult, mainStart, mainTarget model.Tier) {
	header(w, "POTENTIAL-DUAL", it)
	dual(w, q, mainStart, mainTarget, true)
}

// Bundle writes a combined estimate with one quality target.
func Bundle(w io.Writer, it Item, target model.Tier, b service.Bundle) {
	header(w, "BUNDLE", it)
	star(w, b.Reinforcement)
	if b.Quality.Main != nil {
		fmt.Fprintf(w, "Main potential -> %s: %s mesos\n", target, Mesos(b.Quality.Main.Cost))
	}
	if b.Quality.Bonus != nil {
		fmt.Fprintf(w, "Bonus potential -> %s: %s mesos\n", target, Mesos(b.Quality.Bonus.Cost))
	}
	fmt.Fprintf(w, "Total: %s mesos\n", Mesos(b.Total))
}

// BundleDual writes a combined estimate with separate quality targets.
func BundleDual(w io.Writer, it Item, b service.Bundle, mainStart, mainTarget model.Tier) {
	header(w, "BUNDLE-DUAL", it)
	star(w, b.Reinforcement)
	dual(w, b.Quality, mainStart, mainTarget, false)
	fmt.Fprintf(w, "Total: %s mesos\n", Mesos(b.Total))
}

func star(w io.Writer, r estimate.CostResult) {
	fmt.Fprintf(w, "Star: %d★ -> %d★ = %s mesos\n", r.Start, r.Target, Mesos(r.FromStart))
}

func dual(w io.Writer, q estimate.QualityResult, mainStart, mainTarget model.Tier, breakdown bool) {
	fmt.Fprintf(w, "Main: %s -> %s\n", mainStart, mainTarget)
	if q.Main != nil {
		fmt.Fprintf(w, "  Cost: %s\n", Mesos(q.Main.Cost))
		if breakdown {
			steps(w, "    ", q.Main.Steps)
		}
	} else {
		fmt.Fprintf(w, "  (no price for %s)\n", tools(q.MainMissing))
	}

	if q.BonusSkipped {
		fmt.Fprintln(w, "Bonus: (skipped)")
		return
	}
	if q.Bonus == nil {
		fmt.Fprintf(w, "Bonus: (no price for %s)\n", tools(q.BonusMissing))
		return
	}
	fmt.Fprintf(w, "Bonus: %s -> %s\n", q.Bonus.Start, q.Bonus.Target)
	fmt.Fprintf(w, "  Cost: %s\n", Mesos(q.Bonus.Cost))
	if breakdown {
		steps(w, "    ", q.Bonus.Steps)
	}
}

func steps(w io.Writer, indent string, ss []estimate.StepCost) {
	for _, s := range ss {
		fmt.Fprintf(w, "%s- %s: %s price=%s, p=%s  EV=%s\n",
			indent, s.Label, s.Tool, Price(s.Price), Percent(s.Prob), Mesos(s.Expected()))
	}
}

func tools(ts []model.Tool) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	return strings.Join(names, "/")
}
