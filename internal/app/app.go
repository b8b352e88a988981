// Package app builds the runtime pieces both binaries share from resolved
// settings.
package app

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xtding233/enhance-cost/internal/config"
	"github.com/xtding233/enhance-cost/internal/estimate"
	"github.com/xtding233/enhance-cost/internal/model"
	"github.com/xtding233/enhance-cost/internal/pricing"
	"github.com/xtding233/enhance-cost/internal/pricing/badgerstore"
	"github.com/xtding233/enhance-cost/internal/pricing/sqlstore"
)

// NewLogger builds a production (JSON) or development (console) logger.
func NewLogger(s config.Settings) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if s.LogDevelopment {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(s.LogLevel)
	return zc.Build()
}

// NewEstimator uses the model file when one is configured.
func NewEstimator(s config.Settings) (*estimate.Estimator, error) {
	if s.ModelPath == "" {
		return estimate.New(nil), nil
	}
	m, err := model.LoadFile(s.ModelPath)
	if err != nil {
		return nil, err
	}
	return estimate.New(m), nil
}

// Prices is an opened price source.
type Prices struct {
	pricing.Provider
	// Snapshot is set for the snapshot source so callers can reload it.
	Snapshot *pricing.SnapshotProvider
	// Badger and SQL are set for their sources so callers can record into
	// them.
	Badger *badgerstore.Store
	SQL    *sqlstore.Store

	cached  *pricing.CachedProvider
	closers []func() error
}

// OpenPrices opens the configured source, wrapped in a TTL cache unless the
// cache is disabled.
func OpenPrices(s config.Settings, log *zap.Logger) (*Prices, error) {
	p := &Prices{}
	switch s.Source {
	case config.SourceSnapshot:
		sp, err := pricing.NewSnapshotProvider(s.Snapshot)
		if err != nil {
			return nil, err
		}
		p.Snapshot, p.Provider = sp, sp
	case config.SourceBadger:
		st, err := badgerstore.Open(badgerstore.Config{Path: s.BadgerDir, Logger: log})
		if err != nil {
			return nil, err
		}
		p.Badger, p.Provider = st, st
		p.closers = append(p.closers, st.Close)
	case config.SourceMySQL:
		st, err := sqlstore.Open("mysql", s.MySQLDSN)
		if err != nil {
			return nil, err
		}
		p.SQL, p.Provider = st, st
		p.closers = append(p.closers, st.Close)
	default:
		return nil, fmt.Errorf("unknown price source %q", s.Source)
	}
	if s.CacheTTL > 0 {
		p.cached = pricing.NewCachedProvider(p.Provider, s.CacheTTL)
		p.Provider = p.cached
	}
	return p, nil
}

// Reload re-reads the snapshot and drops cached prices. It is a no-op for
// other sources.
func (p *Prices) Reload() error {
	if p.Snapshot == nil {
		return nil
	}
	if err := p.Snapshot.Reload(); err != nil {
		return err
	}
	if p.cached != nil {
		p.cached.Flush()
	}
	return nil
}

// Close releases the underlying store.
func (p *Prices) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
