package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/xtding233/enhance-cost/internal/pricing"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

const defaultYAML = `
version: "1"
server:
  grpc_addr: ":7000"
prices:
  source: snapshot
  snapshot_path: /var/lib/prices.yaml
  cache_ttl: 30s
log:
  level: info
`

func TestLoadMergedProfileOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "default.yaml"), defaultYAML)
	writeFile(t, filepath.Join(dir, "prod.yaml"), `
version: "2"
prices:
  source: mysql
  mysql_dsn: "u:p@tcp(db:3306)/prices"
  timeframe: 1d
log:
  level: warn
`)

	l := NewLoader(dir)
	s, err := l.Load("prod")
	require.NoError(t, err)
	assert.Equal(t, "2", s.Version)
	assert.Equal(t, ":7000", s.GRPCAddr)
	assert.Equal(t, DefaultMetricsAddr, s.MetricsAddr)
	assert.Equal(t, SourceMySQL, s.Source)
	assert.Equal(t, "u:p@tcp(db:3306)/prices", s.MySQLDSN)
	assert.Equal(t, "/var/lib/prices.yaml", s.Snapshot)
	assert.Equal(t, 30*time.Second, s.CacheTTL)
	assert.Equal(t, pricing.TF1D, s.Timeframe)
	assert.Equal(t, zapcore.WarnLevel, s.LogLevel)

	def, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, SourceSnapshot, def.Source)
	assert.Equal(t, pricing.TF20m, def.Timeframe)
	assert.Equal(t, zapcore.InfoLevel, def.LogLevel)
}

func TestLoaderCachesUntilInvalidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "default.yaml")
	writeFile(t, path, defaultYAML)

	l := NewLoader(dir)
	raw, err := l.LoadMerged("")
	require.NoError(t, err)
	assert.Equal(t, "1", raw.Version)

	writeFile(t, path, `version: "9"`)
	raw, err = l.LoadMerged("")
	require.NoError(t, err)
	assert.Equal(t, "1", raw.Version)

	l.Invalidate()
	raw, err = l.LoadMerged("")
	require.NoError(t, err)
	assert.Equal(t, "9", raw.Version)
}

func TestMissingFilesAreEmpty(t *testing.T) {
	l := NewLoader(t.TempDir())
	raw, err := l.LoadMerged("nope")
	require.NoError(t, err)
	assert.Equal(t, RawConfig{}, raw)

	// an empty config has no snapshot path
	_, err = Resolve(raw)
	assert.ErrorContains(t, err, "prices.snapshot_path is required")
}

func TestBadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "default.yaml"), "server: [")
	_, err := NewLoader(dir).LoadMerged("")
	assert.ErrorContains(t, err, "read default")
}

func TestValidateRawCollectsAll(t *testing.T) {
	bad := "soon"
	neg := "-1s"
	err := ValidateRaw(RawConfig{
		Server: ServerConfig{ReloadPeriod: &bad},
		Prices: PricesConfig{Source: "redis", CacheTTL: &neg, Timeframe: "2h"},
		Log:    &LogConfig{Level: "loud"},
	})
	require.Error(t, err)
	for _, want := range []string{
		"server.reload_period",
		"prices.source must be one of",
		"prices.cache_ttl",
		"prices.timeframe",
		`log.level "loud"`,
	} {
		assert.ErrorContains(t, err, want)
	}
}

func TestValidateRawSourceRequirements(t *testing.T) {
	assert.ErrorContains(t, ValidateRaw(RawConfig{Prices: PricesConfig{Source: SourceBadger}}), "prices.badger_dir")
	assert.ErrorContains(t, ValidateRaw(RawConfig{Prices: PricesConfig{Source: SourceMySQL}}), "prices.mysql_dsn")

	dir := "/tmp/badger"
	assert.NoError(t, ValidateRaw(RawConfig{Prices: PricesConfig{Source: SourceBadger, BadgerDir: &dir}}))
}

func TestResolveZeroCacheTTL(t *testing.T) {
	snap := "s.yaml"
	zero := "0s"
	s, err := Resolve(RawConfig{Prices: PricesConfig{Snapshot: &snap, CacheTTL: &zero}})
	require.NoError(t, err)
	assert.Zero(t, s.CacheTTL)
	assert.Equal(t, DefaultReloadPeriod, s.ReloadPeriod)
}

func TestLoaderPaths(t *testing.T) {
	l := NewLoader("/etc/ec")
	assert.Equal(t, []string{"/etc/ec/default.yaml"}, l.Paths(""))
	assert.Equal(t, []string{"/etc/ec/default.yaml", "/etc/ec/dev.yaml"}, l.Paths("dev"))
}

func TestFileWatcherScan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prices.yaml")
	writeFile(t, path, "items: {}")

	var changed []string
	w := NewFileWatcher([]string{path}, time.Hour, func(p string) { changed = append(changed, p) })
	w.scanAll(true)
	assert.Empty(t, changed)

	w.scanAll(false)
	assert.Empty(t, changed)

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	w.scanAll(false)
	assert.Equal(t, []string{path}, changed)

	require.NoError(t, os.Remove(path))
	w.scanAll(false)
	writeFile(t, path, "items: {}")
	w.scanAll(false)
	assert.Equal(t, []string{path, path}, changed)
}

func TestFileWatcherRunStops(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prices.yaml")
	writeFile(t, path, "items: {}")

	var hits atomic.Int32
	w := NewFileWatcher([]string{path}, 5*time.Millisecond, func(string) { hits.Add(1) })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	assert.Eventually(t, func() bool { return hits.Load() > 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "default.yaml"), defaultYAML)

	badger := "/data/badger"
	s, err := NewLoader(dir).LoadOverride("", RawConfig{
		Prices: PricesConfig{Source: SourceBadger, BadgerDir: &badger, Timeframe: "1W"},
	})
	require.NoError(t, err)
	assert.Equal(t, SourceBadger, s.Source)
	assert.Equal(t, badger, s.BadgerDir)
	assert.Equal(t, pricing.TF1W, s.Timeframe)
	assert.Equal(t, ":7000", s.GRPCAddr)
}

func TestFileWatcherReactsBetweenPolls(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prices.yaml")
	writeFile(t, path, "items: {}")

	var hits atomic.Int32
	w := NewFileWatcher([]string{path}, time.Hour, func(string) { hits.Add(1) })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// let the first scan and directory watch settle
	time.Sleep(50 * time.Millisecond)
	later := time.Now().Add(time.Minute)
	writeFile(t, path, "items: {hat: {}}")
	require.NoError(t, os.Chtimes(path, later, later))
	assert.Eventually(t, func() bool { return hits.Load() > 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestFileWatcherWatched(t *testing.T) {
	w := NewFileWatcher([]string{"/etc/ec/../ec/prices.yaml"}, time.Second, nil)
	assert.True(t, w.watched("/etc/ec/prices.yaml"))
	assert.False(t, w.watched("/etc/ec/other.yaml"))
}
