package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xtding233/enhance-cost/internal/model"
	"github.com/xtding233/enhance-cost/internal/report"
	"github.com/xtding233/enhance-cost/internal/service"
)

func (c *cli) starCmd() *cobra.Command {
	var (
		it            itemFlags
		target, start int
	)
	cmd := &cobra.Command{
		Use:   "star",
		Short: "Expected reinforcement cost to a target level",
	}
	cmd.RunE = c.withSession(func(ctx context.Context, s *session) error {
		item, err := s.item(it.item, it.namesMode, target)
		if err != nil {
			return err
		}
		res, err := s.svc.Reinforcement(ctx, service.ReinforcementQuery{
			Item: item.ID, Timeframe: s.settings.Timeframe, Target: target, Start: start,
		})
		if err != nil {
			return err
		}
		report.Star(c.out, item, res)
		return nil
	})
	it.register(cmd)
	cmd.Flags().IntVar(&target, "target", 0, "target level (1..25)")
	cmd.Flags().IntVar(&start, "start", 0, "start level")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func (c *cli) potentialCmd() *cobra.Command {
	var (
		it                    itemFlags
		startTier, targetTier string
	)
	cmd := &cobra.Command{
		Use:   "potential",
		Short: "Expected quality cost with one target for main and bonus",
	}
	cmd.RunE = c.withSession(func(ctx context.Context, s *session) error {
		tiers, err := parseTiers(startTier, targetTier)
		if err != nil {
			return err
		}
		item, err := s.item(it.item, it.namesMode, 0)
		if err != nil {
			return err
		}
		res, err := s.svc.Quality(ctx, service.QualityQuery{
			Item:        item.ID,
			Timeframe:   s.settings.Timeframe,
			MainStart:   tiers[0],
			MainTarget:  tiers[1],
			BonusStart:  tiers[0],
			BonusTarget: &tiers[1],
		})
		if err != nil {
			return err
		}
		report.Potential(c.out, item, tiers[0], tiers[1], res)
		return nil
	})
	it.register(cmd)
	cmd.Flags().StringVar(&startTier, "start-tier", "Rare", "start tier: Rare, Epic or Unique")
	cmd.Flags().StringVar(&targetTier, "target-tier", "", "target tier: Epic, Unique or Legendary")
	_ = cmd.MarkFlagRequired("target-tier")
	return cmd
}

// dualFlags select independent main and bonus ladders.
type dualFlags struct {
	mainStart, mainTarget   string
	bonusStart, bonusTarget string
}

func (f *dualFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mainStart, "main-start-tier", "Rare", "main start tier")
	cmd.Flags().StringVar(&f.mainTarget, "main-target-tier", "", "main target tier: Epic, Unique or Legendary")
	cmd.Flags().StringVar(&f.bonusStart, "bonus-start-tier", "Rare", "bonus start tier")
	cmd.Flags().StringVar(&f.bonusTarget, "bonus-target-tier", "none", "bonus target tier, or none to skip the bonus ladder")
	_ = cmd.MarkFlagRequired("main-target-tier")
}

type dualTiers struct {
	mainStart, mainTarget, bonusStart model.Tier
	bonusTarget                       *model.Tier
}

func (f *dualFlags) parse() (dualTiers, error) {
	tiers, err := parseTiers(f.mainStart, f.mainTarget, f.bonusStart)
	if err != nil {
		return dualTiers{}, err
	}
	bt, err := bonusTarget(f.bonusTarget)
	if err != nil {
		return dualTiers{}, err
	}
	return dualTiers{mainStart: tiers[0], mainTarget: tiers[1], bonusStart: tiers[2], bonusTarget: bt}, nil
}

func (c *cli) potentialDualCmd() *cobra.Command {
	var (
		it itemFlags
		df dualFlags
	)
	cmd := &cobra.Command{
		Use:   "potential-dual",
		Short: "Expected quality cost with separate main and bonus targets",
	}
	cmd.RunE = c.withSession(func(ctx context.Context, s *session) error {
		d, err := df.parse()
		if err != nil {
			return err
		}
		item, err := s.item(it.item, it.namesMode, 0)
		if err != nil {
			return err
		}
		res, err := s.svc.Quality(ctx, service.QualityQuery{
			Item:        item.ID,
			Timeframe:   s.settings.Timeframe,
			MainStart:   d.mainStart,
			MainTarget:  d.mainTarget,
			BonusStart:  d.bonusStart,
			BonusTarget: d.bonusTarget,
		})
		if err != nil {
			return err
		}
		report.PotentialDual(c.out, item, res, d.mainStart, d.mainTarget)
		return nil
	})
	it.register(cmd)
	df.register(cmd)
	return cmd
}

func (c *cli) bundleCmd() *cobra.Command {
	var (
		it                    itemFlags
		startStar, targetStar int
		startTier, targetTier string
	)
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Reinforcement and quality cost together, one quality target",
	}
	cmd.RunE = c.withSession(func(ctx context.Context, s *session) error {
		tiers, err := parseTiers(startTier, targetTier)
		if err != nil {
			return err
		}
		item, err := s.item(it.item, it.namesMode, targetStar)
		if err != nil {
			return err
		}
		b, err := s.svc.Bundle(ctx, service.BundleQuery{
			Item:        item.ID,
			Timeframe:   s.settings.Timeframe,
			Target:      targetStar,
			Start:       startStar,
			MainStart:   tiers[0],
			MainTarget:  tiers[1],
			BonusStart:  tiers[0],
			BonusTarget: &tiers[1],
		})
		if err != nil {
			return err
		}
		report.Bundle(c.out, item, tiers[1], b)
		return nil
	})
	it.register(cmd)
	cmd.Flags().IntVar(&startStar, "start-star", 0, "start level")
	cmd.Flags().IntVar(&targetStar, "target-star", 0, "target level (1..25)")
	cmd.Flags().StringVar(&startTier, "start-tier", "Rare", "start tier")
	cmd.Flags().StringVar(&targetTier, "target-tier", "", "target tier: Epic, Unique or Legendary")
	_ = cmd.MarkFlagRequired("target-star")
	_ = cmd.MarkFlagRequired("target-tier")
	return cmd
}

func (c *cli) bundleDualCmd() *cobra.Command {
	var (
		it                    itemFlags
		df                    dualFlags
		startStar, targetStar int
	)
	cmd := &cobra.Command{
		Use:   "bundle-dual",
		Short: "Reinforcement and quality cost together, separate main and bonus targets",
	}
	cmd.RunE = c.withSession(func(ctx context.Context, s *session) error {
		d, err := df.parse()
		if err != nil {
			return err
		}
		item, err := s.item(it.item, it.namesMode, targetStar)
		if err != nil {
			return err
		}
		b, err := s.svc.Bundle(ctx, service.BundleQuery{
			Item:        item.ID,
			Timeframe:   s.settings.Timeframe,
			Target:      targetStar,
			Start:       startStar,
			MainStart:   d.mainStart,
			MainTarget:  d.mainTarget,
			BonusStart:  d.bonusStart,
			BonusTarget: d.bonusTarget,
		})
		if err != nil {
			return err
		}
		report.BundleDual(c.out, item, b, d.mainStart, d.mainTarget)
		return nil
	})
	it.register(cmd)
	df.register(cmd)
	cmd.Flags().IntVar(&startStar, "start-star", 0, "start level")
	cmd.Flags().IntVar(&targetStar, "target-star", 0, "target level (1..25)")
	_ = cmd.MarkFlagRequired("target-star")
	return cmd
}
