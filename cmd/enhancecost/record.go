package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xtding233/enhance-cost/internal/pricing"
	"github.com/xtding233/enhance-cost/internal/pricing/badgerstore"
	"github.com/xtding233/enhance-cost/internal/report"
)

var errNoStore = errors.New("this command needs --source badger or mysql")

func (c *cli) recordCmd() *cobra.Command {
	var (
		item, name, kind, at string
		price                float64
	)
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Store one observed price",
		Example: `  enhancecost record --source badger --item 1004422 --kind level:17 --price 2.5e7
  enhancecost record --source badger --item 1004422 --kind tool:secondary --price 2600000 --timeframe 1D`,
	}
	cmd.RunE = c.withSession(func(ctx context.Context, s *session) error {
		k, err := pricing.ParseKind(kind)
		if err != nil {
			return err
		}
		if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			return fmt.Errorf("price must be a finite number >= 0, got %v", price)
		}
		when := time.Now().UTC()
		if at != "" {
			if when, err = time.Parse(time.RFC3339, at); err != nil {
				return fmt.Errorf("--at: %w", err)
			}
		}
		tf := s.settings.Timeframe
		switch {
		case s.prices.Badger != nil:
			err = s.prices.Badger.Record(ctx, badgerstore.Observation{
				Item: item, Name: name, Kind: k, Timeframe: tf, Price: price, ObservedAt: when,
			})
		case s.prices.SQL != nil:
			err = s.prices.SQL.Record(ctx, item, name, k, tf, price, when)
		default:
			return errNoStore
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "recorded item=%s kind=%s timeframe=%s price=%s\n", item, k, tf, report.Price(price))
		fmt.Fprintf(c.out, "catalog: %s\n", pricing.CatalogURL(item, k))
		return nil
	})
	cmd.Flags().StringVar(&item, "item", "", "item id")
	cmd.Flags().StringVar(&name, "name", "", "item name")
	cmd.Flags().StringVar(&kind, "kind", "", "level:N or tool:primary|secondary|auxiliary")
	cmd.Flags().Float64Var(&price, "price", 0, "per-attempt price")
	cmd.Flags().StringVar(&at, "at", "", "observation time, RFC3339 (default now)")
	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var (
		items []string
		out   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored prices as a snapshot file for the server",
	}
	cmd.RunE = c.withSession(func(ctx context.Context, s *session) error {
		if s.prices.Badger == nil {
			return errors.New("export needs --source badger")
		}
		snap, err := s.prices.Badger.Snapshot(ctx, s.settings.Timeframe, items)
		if err != nil {
			return err
		}
		b, err := yaml.Marshal(snap)
		if err != nil {
			return err
		}
		if out == "" || out == "-" {
			_, err = c.out.Write(b)
			return err
		}
		return os.WriteFile(out, b, 0o644)
	})
	cmd.Flags().StringSliceVar(&items, "items", nil, "item ids to export")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	_ = cmd.MarkFlagRequired("items")
	return cmd
}
