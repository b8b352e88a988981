package server

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/xtding233/enhance-cost/internal/estimate"
	"github.com/xtding233/enhance-cost/internal/model"
	"github.com/xtding233/enhance-cost/internal/pricing"
	"github.com/xtding233/enhance-cost/internal/service"
)

// ErrBadRequest marks a request that could not be decoded.
var ErrBadRequest = errors.New("bad request")

// Requests arrive as loosely typed maps: a structpb.Struct on gRPC and
// query parameters on HTTP. Numbers may therefore be float64 or strings.

func str(m map[string]any, key string) (string, bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("%w: %s must be a string", ErrBadRequest, key)
	}
	return s, s != "", nil
}

func integer(m map[string]any, key string) (int, bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, false, fmt.Errorf("%w: %s must be an integer", ErrBadRequest, key)
		}
		return int(x), true, nil
	case string:
		if x == "" {
			return 0, false, nil
		}
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0, false, fmt.Errorf("%w: %s must be an integer", ErrBadRequest, key)
		}
		return n, true, nil
	default:
		return 0, false, fmt.Errorf("%w: %s must be an integer", ErrBadRequest, key)
	}
}

func tier(m map[string]any, key string, def model.Tier) (model.Tier, bool, error) {
	s, ok, err := str(m, key)
	if err != nil || !ok {
		return def, false, err
	}
	t, err := model.ParseTier(s)
	if err != nil {
		return def, false, fmt.Errorf("%s: %w", key, err)
	}
	return t, true, nil
}

type common struct {
	item string
	tf   pricing.Timeframe
}

func decodeCommon(m map[string]any) (common, error) {
	item, ok, err := str(m, "item")
	if err != nil {
		return common{}, err
	}
	if !ok {
		return common{}, fmt.Errorf("%w: item is required", ErrBadRequest)
	}
	c := common{item: item, tf: pricing.TF20m}
	if s, ok, err := str(m, "timeframe"); err != nil {
		return common{}, err
	} else if ok {
		if c.tf, err = pricing.ParseTimeframe(s); err != nil {
			return common{}, err
		}
	}
	return c, nil
}

func decodeReinforcement(m map[string]any) (service.ReinforcementQuery, error) {
	c, err := decodeCommon(m)
	if err != nil {
		return service.ReinforcementQuery{}, err
	}
	target, ok, err := integer(m, "target")
	if err != nil {
		return service.ReinforcementQuery{}, err
	}
	if !ok {
		return service.ReinforcementQuery{}, fmt.Errorf("%w: target is required", ErrBadRequest)
	}
	start, _, err := integer(m, "start")
	if err != nil {
		return service.ReinforcementQuery{}, err
	}
	return service.ReinforcementQuery{Item: c.item, Timeframe: c.tf, Target: target, Start: start}, nil
}

func decodeQuality(m map[string]any) (service.QualityQuery, error) {
	c, err := decodeCommon(m)
	if err != nil {
		return service.QualityQuery{}, err
	}
	q := service.QualityQuery{Item: c.item, Timeframe: c.tf}
	if q.MainStart, _, err = tier(m, "main_start", model.Common); err != nil {
		return service.QualityQuery{}, err
	}
	var ok bool
	if q.MainTarget, ok, err = tier(m, "main_target", model.Common); err != nil {
		return service.QualityQuery{}, err
	}
	if !ok {
		return service.QualityQuery{}, fmt.Errorf("%w: main_target is required", ErrBadRequest)
	}
	if q.BonusStart, _, err = tier(m, "bonus_start", model.Common); err != nil {
		return service.QualityQuery{}, err
	}
	// absent or "none" skips the bonus ladder
	if s, _, err := str(m, "bonus_target"); err != nil {
		return service.QualityQuery{}, err
	} else if s != "" && s != "none" && s != "None" {
		bt, err := model.ParseTier(s)
		if err != nil {
			return service.QualityQuery{}, fmt.Errorf("bonus_target: %w", err)
		}
		q.BonusTarget = &bt
	}
	return q, nil
}

func decodeBundle(m map[string]any) (service.BundleQuery, error) {
	r, err := decodeReinforcement(m)
	if err != nil {
		return service.BundleQuery{}, err
	}
	q, err := decodeQuality(m)
	if err != nil {
		return service.BundleQuery{}, err
	}
	return service.BundleQuery{
		Item:        r.Item,
		Timeframe:   r.Timeframe,
		Target:      r.Target,
		Start:       r.Start,
		MainStart:   q.MainStart,
		MainTarget:  q.MainTarget,
		BonusStart:  q.BonusStart,
		BonusTarget: q.BonusTarget,
	}, nil
}

// Responses are built only from types structpb.NewValue accepts.

func floats(xs []float64) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func toolNames(ts []model.Tool) []any {
	out := make([]any, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}

func encodeReinforcement(r estimate.CostResult) map[string]any {
	return map[string]any{
		"start":      r.Start,
		"target":     r.Target,
		"from_zero":  r.FromZero,
		"from_start": r.FromStart,
		"per_level":  floats(r.PerLevel),
	}
}

func encodeLadder(l *estimate.Ladder) any {
	if l == nil {
		return nil
	}
	steps := make([]any, len(l.Steps))
	for i, s := range l.Steps {
		steps[i] = map[string]any{
			"label":    s.Label,
			"tool":     s.Tool.String(),
			"price":    s.Price,
			"prob":     s.Prob,
			"expected": s.Expected(),
		}
	}
	return map[string]any{
		"start":  l.Start.String(),
		"target": l.Target.String(),
		"cost":   l.Cost,
		"steps":  steps,
	}
}

func encodeQuality(q estimate.QualityResult) map[string]any {
	return map[string]any{
		"main":          encodeLadder(q.Main),
		"main_missing":  toolNames(q.MainMissing),
		"bonus":         encodeLadder(q.Bonus),
		"bonus_missing": toolNames(q.BonusMissing),
		"bonus_skipped": q.BonusSkipped,
		"total":         q.Total(),
	}
}

func encodeBundle(b service.Bundle) map[string]any {
	return map[string]any{
		"reinforcement": encodeReinforcement(b.Reinforcement),
		"quality":       encodeQuality(b.Quality),
		"total":         b.Total,
	}
}
