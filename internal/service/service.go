// Package service resolves prices for an item and runs the estimators.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xtding233/enhance-cost/internal/estimate"
	"github.com/xtding233/enhance-cost/internal/model"
	"github.com/xtding233/enhance-cost/internal/pricing"
)

// ReinforcementQuery asks for the cost of taking Item from Start to Target.
type ReinforcementQuery struct {
	Item      string
	Timeframe pricing.Timeframe
	Target    int
	Start     int
}

// QualityQuery asks for main and (optionally) bonus ladder costs of Item.
type QualityQuery struct {
	Item        string
	Timeframe   pricing.Timeframe
	MainStart   model.Tier
	MainTarget  model.Tier
	BonusStart  model.Tier
	BonusTarget *model.Tier
}

// BundleQuery combines both estimates for one item.
type BundleQuery struct {
	Item        string
	Timeframe   pricing.Timeframe
	Target      int
	Start       int
	MainStart   model.Tier
	MainTarget  model.Tier
	BonusStart  model.Tier
	BonusTarget *model.Tier
}

// Bundle is the combined result. Total counts only ladders that are present.
type Bundle struct {
	Reinforcement estimate.CostResult
	Quality       estimate.QualityResult
	Total         float64
}

// Service is safe for concurrent use.
type Service struct {
	prices pricing.Provider
	est    *estimate.Estimator
	log    *zap.Logger
}

// New builds a Service. A nil estimator uses the published tables and a nil
// logger discards output.
func New(prices pricing.Provider, est *estimate.Estimator, logger *zap.Logger) *Service {
	if est == nil {
		est = estimate.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{prices: prices, est: est, log: logger}
}

func defaultTF(tf pricing.Timeframe) pricing.Timeframe {
	if tf == "" {
		return pricing.TF20m
	}
	return tf
}

// Reinforcement prices every level below the target and estimates the cost.
func (s *Service) Reinforcement(ctx context.Context, q ReinforcementQuery) (estimate.CostResult, error) {
	begin := time.Now()
	tf := defaultTF(q.Timeframe)
	if q.Target < 1 || q.Target > s.est.Model().Levels() {
		return estimate.CostResult{}, fmt.Errorf("%w: %d", estimate.ErrInvalidTarget, q.Target)
	}
	prices, err := pricing.ReinforcementPrices(ctx, s.prices, q.Item, q.Target, tf)
	if err != nil {
		return estimate.CostResult{}, err
	}
	res, err := s.est.Reinforcement(prices, q.Target, q.Start)
	s.logged("reinforcement", q.Item, tf, begin, err,
		zap.Int("start", q.Start), zap.Int("target", q.Target), zap.Float64("cost", res.FromStart))
	return res, err
}

// Quality prices the tools and estimates both ladders.
func (s *Service) Quality(ctx context.Context, q QualityQuery) (estimate.QualityResult, error) {
	begin := time.Now()
	tf := defaultTF(q.Timeframe)
	prices, err := pricing.ToolPriceSet(ctx, s.prices, q.Item, tf)
	if err != nil {
		return estimate.QualityResult{}, err
	}
	res, err := s.est.Quality(estimate.QualityRequest{
		Prices:      prices,
		MainStart:   q.MainStart,
		MainTarget:  q.MainTarget,
		BonusStart:  q.BonusStart,
		BonusTarget: q.BonusTarget,
	})
	s.logged("quality", q.Item, tf, begin, err,
		zap.Stringer("main_target", q.MainTarget),
		zap.Bool("main_present", res.Main != nil),
		zap.Bool("bonus_present", res.Bonus != nil))
	return res, err
}

// Bundle runs both estimates. A reinforcement failure fails the bundle; an
// absent quality ladder only drops out of the total.
func (s *Service) Bundle(ctx context.Context, q BundleQuery) (Bundle, error) {
	r, err := s.Reinforcement(ctx, ReinforcementQuery{Item: q.Item, Timeframe: q.Timeframe, Target: q.Target, Start: q.Start})
	if err != nil {
		return Bundle{}, err
	}
	qr, err := s.Quality(ctx, QualityQuery{
		Item:        q.Item,
		Timeframe:   q.Timeframe,
		MainStart:   q.MainStart,
		MainTarget:  q.MainTarget,
		BonusStart:  q.BonusStart,
		BonusTarget: q.BonusTarget,
	})
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{Reinforcement: r, Quality: qr, Total: r.FromStart + qr.Total()}, nil
}

func (s *Service) logged(op, item string, tf pricing.Timeframe, begin time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("item", item),
		zap.String("timeframe", string(tf)),
		zap.Duration("elapsed", time.Since(begin)))
	if err != nil {
		s.log.Warn(op+" estimate failed", append(fields, zap.Error(err))...)
		return
	}
	s.log.Debug(op+" estimate", fields...)
}
