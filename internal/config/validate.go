package config

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/xtding233/enhance-cost/internal/pricing"
)

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// server
	if cfg.Server.GRPCAddr != nil && *cfg.Server.GRPCAddr == "" {
		errs = append(errs, "server.grpc_addr must not be empty")
	}
	if cfg.Server.ReloadPeriod != nil {
		if d, err := time.ParseDuration(*cfg.Server.ReloadPeriod); err != nil || d <= 0 {
			errs = append(errs, "server.reload_period must be a positive duration")
		}
	}

	// prices
	switch cfg.Prices.Source {
	case "", SourceSnapshot:
		if cfg.Prices.Snapshot == nil || *cfg.Prices.Snapshot == "" {
			errs = append(errs, "prices.snapshot_path is required for source=snapshot")
		}
	case SourceBadger:
		if cfg.Prices.BadgerDir == nil || *cfg.Prices.BadgerDir == "" {
			errs = append(errs, "prices.badger_dir is required for source=badger")
		}
	case SourceMySQL:
		if cfg.Prices.MySQLDSN == nil || *cfg.Prices.MySQLDSN == "" {
			errs = append(errs, "prices.mysql_dsn is required for source=mysql")
		}
	default:
		errs = append(errs, "prices.source must be one of: snapshot, badger, mysql")
	}
	if cfg.Prices.CacheTTL != nil {
		if d, err := time.ParseDuration(*cfg.Prices.CacheTTL); err != nil || d < 0 {
			errs = append(errs, "prices.cache_ttl must be a duration >= 0")
		}
	}
	if cfg.Prices.Timeframe != "" {
		if _, err := pricing.ParseTimeframe(cfg.Prices.Timeframe); err != nil {
			errs = append(errs, "prices.timeframe must be one of: 20m, 1H, 1D, 1W, 1M")
		}
	}

	// log
	if cfg.Log != nil && cfg.Log.Level != "" {
		if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
			errs = append(errs, fmt.Sprintf("log.level %q is not a zap level", cfg.Log.Level))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
