// Command enhancecost estimates expected reinforcement and quality costs from
// observed market prices.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xtding233/enhance-cost/internal/app"
	"github.com/xtding233/enhance-cost/internal/config"
	"github.com/xtding233/enhance-cost/internal/model"
	"github.com/xtding233/enhance-cost/internal/pricing"
	"github.com/xtding233/enhance-cost/internal/report"
	"github.com/xtding233/enhance-cost/internal/service"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// cli holds the persistent flags shared by every command.
type cli struct {
	out io.Writer

	confDir   string
	profile   string
	source    string
	snapshot  string
	badgerDir string
	mysqlDSN  string
	timeframe string
	indexPath string
	logLevel  string
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}
	root := &cobra.Command{
		Use:          "enhancecost",
		Short:        "Expected cost of reinforcing and re-rolling items",
		Long:         `Estimates the expected spend to reach a reinforcement level or quality tier, using the latest observed per-attempt prices.`,
		SilenceUsage: true,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&c.confDir, "config", "./configs", "config directory holding default.yaml and <profile>.yaml")
	pf.StringVar(&c.profile, "profile", "", "config profile overlaid on default.yaml")
	pf.StringVar(&c.source, "source", "", "price source: snapshot, badger or mysql")
	pf.StringVar(&c.snapshot, "snapshot", "", "price snapshot file (source=snapshot)")
	pf.StringVar(&c.badgerDir, "badger-dir", "", "observation store directory (source=badger)")
	pf.StringVar(&c.mysqlDSN, "mysql-dsn", "", "price database DSN (source=mysql)")
	pf.StringVar(&c.timeframe, "timeframe", "", "price timeframe: 20m, 1H, 1D, 1W or 1M")
	pf.StringVar(&c.indexPath, "index", "", "item index file (items_index.json)")
	pf.StringVar(&c.logLevel, "log-level", "", "log level, overriding log.level from the config files")

	root.AddCommand(
		c.starCmd(),
		c.potentialCmd(),
		c.potentialDualCmd(),
		c.bundleCmd(),
		c.bundleDualCmd(),
		c.recordCmd(),
		c.exportCmd(),
		c.remoteCmd(),
	)
	return root
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (c *cli) settings() (config.Settings, error) {
	o := config.RawConfig{
		Prices: config.PricesConfig{
			Source:    c.source,
			Snapshot:  strPtr(c.snapshot),
			BadgerDir: strPtr(c.badgerDir),
			MySQLDSN:  strPtr(c.mysqlDSN),
			Timeframe: c.timeframe,
			Index:     strPtr(c.indexPath),
		},
	}
	if c.logLevel != "" {
		o.Log = &config.LogConfig{Level: c.logLevel}
	}
	return config.NewLoader(c.confDir).LoadOverride(c.profile, o)
}

// session is everything one estimating command needs.
type session struct {
	settings config.Settings
	log      *zap.Logger
	prices   *app.Prices
	svc      *service.Service
	index    *pricing.Index
}

func (c *cli) open() (*session, error) {
	s, err := c.settings()
	if err != nil {
		return nil, err
	}
	log, err := app.NewLogger(s)
	if err != nil {
		return nil, err
	}
	est, err := app.NewEstimator(s)
	if err != nil {
		return nil, err
	}
	idx, err := pricing.LoadIndex(s.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("item index: %w", err)
	}
	prices, err := app.OpenPrices(s, log)
	if err != nil {
		return nil, err
	}
	return &session{
		settings: s,
		log:      log,
		prices:   prices,
		svc:      service.New(prices, est, log),
		index:    idx,
	}, nil
}

func (s *session) Close() {
	if err := s.prices.Close(); err != nil {
		s.log.Warn("close price source", zap.Error(err))
	}
	_ = s.log.Sync()
}

// item resolves the --item flag and rejects targets beyond what the index
// says the item supports.
func (s *session) item(token string, byName bool, target int) (report.Item, error) {
	e, err := s.index.Resolve(token, byName)
	if err != nil {
		return report.Item{}, err
	}
	if e.MaxLevel > 0 && target > e.MaxLevel {
		return report.Item{}, fmt.Errorf("%s supports at most level %d, got target %d", e.ID, e.MaxLevel, target)
	}
	return report.Item{ID: e.ID, Name: e.Name, Timeframe: s.settings.Timeframe}, nil
}

// itemFlags are the per-command item selection flags.
type itemFlags struct {
	item      string
	namesMode bool
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.item, "item", "", "item id, or name with --names-mode")
	cmd.Flags().BoolVar(&f.namesMode, "names-mode", false, "treat --item as a name looked up in the index")
	_ = cmd.MarkFlagRequired("item")
}

func parseTiers(names ...string) ([]model.Tier, error) {
	out := make([]model.Tier, len(names))
	for i, n := range names {
		t, err := model.ParseTier(n)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// bonusTarget turns the --bonus-target-tier flag into an optional tier.
func bonusTarget(s string) (*model.Tier, error) {
	switch s {
	case "", "none", "None":
		return nil, nil
	}
	t, err := model.ParseTier(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *cli) withSession(fn func(ctx context.Context, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		s, err := c.open()
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(cmd.Context(), s)
	}
}
