package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xtding233/enhance-cost/internal/config"
	"github.com/xtding233/enhance-cost/internal/model"
	"github.com/xtding233/enhance-cost/internal/pricing"
	"github.com/xtding233/enhance-cost/internal/pricing/badgerstore"
)

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(config.Settings{LogLevel: zapcore.WarnLevel})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestNewEstimatorModelFile(t *testing.T) {
	est, err := NewEstimator(config.Settings{})
	require.NoError(t, err)
	assert.Equal(t, 25, est.Model().Levels())

	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte("anchor: 12\n"), 0o644))
	est, err = NewEstimator(config.Settings{ModelPath: path})
	require.NoError(t, err)
	assert.Equal(t, 12, est.Model().Anchor())
}

func TestSnapshotReloadFlushesCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items: {hat: {levels: {0: 100}}}"), 0o644))

	p, err := OpenPrices(config.Settings{Source: config.SourceSnapshot, Snapshot: path, CacheTTL: time.Hour}, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	ctx := context.Background()
	v, ok, err := p.Price(ctx, "hat", pricing.LevelKind(0), pricing.TF20m)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 100.0, v)

	require.NoError(t, os.WriteFile(path, []byte("items: {hat: {levels: {0: 250}}}"), 0o644))
	v, _, _ = p.Price(ctx, "hat", pricing.LevelKind(0), pricing.TF20m)
	assert.Equal(t, 100.0, v, "cached until reload")

	require.NoError(t, p.Reload())
	v, _, _ = p.Price(ctx, "hat", pricing.LevelKind(0), pricing.TF20m)
	assert.Equal(t, 250.0, v)
}

func TestOpenBadger(t *testing.T) {
	dir := t.TempDir()
	p, err := OpenPrices(config.Settings{Source: config.SourceBadger, BadgerDir: dir}, nil)
	require.NoError(t, err)
	require.NotNil(t, p.Badger)

	ctx := context.Background()
	require.NoError(t, p.Badger.Record(ctx, badgerstore.Observation{
		Item: "hat", Kind: pricing.ToolKind(model.Primary), Timeframe: pricing.TF1D, Price: 42, ObservedAt: time.Now(),
	}))
	v, ok, err := p.Price(ctx, "hat", pricing.ToolKind(model.Primary), pricing.TF1D)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42.0, v)
	assert.NoError(t, p.Reload())
	assert.NoError(t, p.Close())
}

func TestOpenUnknownSource(t *testing.T) {
	_, err := OpenPrices(config.Settings{Source: "redis"}, nil)
	assert.ErrorContains(t, err, `unknown price source "redis"`)
}
