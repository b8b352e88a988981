// resolve.go
package config

import (
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/xtding233/enhance-cost/internal/pricing"
)

const (
	SourceSnapshot = "snapshot"
	SourceBadger   = "badger"
	SourceMySQL    = "mysql"
)

// Defaults applied by Resolve when neither file sets a value.
const (
	DefaultGRPCAddr     = ":9090"
	DefaultMetricsAddr  = ":9091"
	DefaultReloadPeriod = 5 * time.Second
	DefaultCacheTTL     = time.Minute
)

// Resolve validates a merged RawConfig and normalizes it into Settings.
func Resolve(cfg RawConfig) (Settings, error) {
	if err := ValidateRaw(cfg); err != nil {
		return Settings{}, err
	}
	s := Settings{
		GRPCAddr:     DefaultGRPCAddr,
		MetricsAddr:  DefaultMetricsAddr,
		ReloadPeriod: DefaultReloadPeriod,
		Source:       cfg.Prices.Source,
		CacheTTL:     DefaultCacheTTL,
		Timeframe:    pricing.TF20m,
		LogLevel:     zapcore.InfoLevel,
		Version:      cfg.Version,
	}
	if s.Source == "" {
		s.Source = SourceSnapshot
	}

	if v := cfg.Server.GRPCAddr; v != nil {
		s.GRPCAddr = *v
	}
	if v := cfg.Server.MetricsAddr; v != nil {
		s.MetricsAddr = *v // empty disables the metrics listener
	}
	if v := cfg.Server.ReloadPeriod; v != nil {
		s.ReloadPeriod, _ = time.ParseDuration(*v)
	}

	if v := cfg.Prices.Snapshot; v != nil {
		s.Snapshot = *v
	}
	if v := cfg.Prices.BadgerDir; v != nil {
		s.BadgerDir = *v
	}
	if v := cfg.Prices.MySQLDSN; v != nil {
		s.MySQLDSN = *v
	}
	if v := cfg.Prices.CacheTTL; v != nil {
		s.CacheTTL, _ = time.ParseDuration(*v)
	}
	if cfg.Prices.Timeframe != "" {
		s.Timeframe, _ = pricing.ParseTimeframe(cfg.Prices.Timeframe)
	}
	if v := cfg.Prices.Index; v != nil {
		s.IndexPath = *v
	}

	if cfg.Model != nil {
		s.ModelPath = cfg.Model.Path
	}
	if cfg.Log != nil {
		if cfg.Log.Level != "" {
			s.LogLevel, _ = zapcore.ParseLevel(cfg.Log.Level)
		}
		s.LogDevelopment = cfg.Log.Development
	}
	return s, nil
}

// Load merges default → profile under dir and resolves the result.
func (l *Loader) Load(profile string) (Settings, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return Settings{}, err
	}
	return Resolve(raw)
}

// LoadOverride is Load with o merged over the files, for command-line flags.
func (l *Loader) LoadOverride(profile string, o RawConfig) (Settings, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return Settings{}, err
	}
	return Resolve(mergeRaw(raw, o))
}
