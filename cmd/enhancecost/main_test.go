package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/xtding233/enhance-cost/internal/pricing"
	"github.com/xtding233/enhance-cost/internal/server"
	"github.com/xtding233/enhance-cost/internal/service"
)

const prices = `
items:
  "1004422":
    levels: {0: 100, 1: 100, 2: 100, 3: 100, 4: 100}
    tools: {primary: 600, secondary: 1500, auxiliary: 476}
`

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("prices.yaml", prices)
	write("items_index.json", `{"items":[{"id":"1004422","name":"Example Hat","max_star":5}]}`)
	write("default.yaml", fmt.Sprintf(`
prices:
  source: snapshot
  snapshot_path: %s
  index_path: %s
  cache_ttl: 0s
`, filepath.Join(dir, "prices.yaml"), filepath.Join(dir, "items_index.json")))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestStar(t *testing.T) {
	dir := setup(t)
	out, err := run(t, "star", "--config", dir, "--item", "1004422", "--target", "5", "--start", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "[STAR] item=1004422 (Example Hat) timeframe=20m")
	assert.Contains(t, out, "Expected cost from 2★ -> 5★ : ")

	out, err = run(t, "star", "--config", dir, "--item", "example hat", "--names-mode", "--target", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "item=1004422")

	_, err = run(t, "star", "--config", dir, "--item", "1004422", "--target", "6")
	assert.ErrorContains(t, err, "supports at most level 5")

	_, err = run(t, "star", "--config", dir, "--item", "nope", "--names-mode", "--target", "3")
	assert.ErrorContains(t, err, "not in index")
}

func TestStarMissingPrices(t *testing.T) {
	dir := setup(t)
	_, err := run(t, "star", "--config", dir, "--item", "999", "--target", "3")
	assert.ErrorContains(t, err, "missing price: levels [0 1 2]")
}

func TestPotential(t *testing.T) {
	dir := setup(t)
	out, err := run(t, "potential", "--config", dir, "--item", "1004422", "--target-tier", "Epic")
	require.NoError(t, err)
	assert.Contains(t, out, "from Common -> Epic")
	assert.Contains(t, out, "Main potential (best tool per step): 10,000")
	assert.Contains(t, out, "Bonus potential (auxiliary only): 10,000")

	_, err = run(t, "potential", "--config", dir, "--item", "1004422", "--target-tier", "Mythic")
	assert.ErrorContains(t, err, "unknown tier")
}

func TestPotentialDual(t *testing.T) {
	dir := setup(t)
	out, err := run(t, "potential-dual", "--config", dir, "--item", "1004422", "--main-target-tier", "Epic")
	require.NoError(t, err)
	assert.Contains(t, out, "[POTENTIAL-DUAL]")
	assert.Contains(t, out, "Bonus: (skipped)")

	out, err = run(t, "potential-dual", "--config", dir, "--item", "1004422",
		"--main-target-tier", "Epic", "--bonus-target-tier", "Epic")
	require.NoError(t, err)
	assert.Contains(t, out, "Bonus: Common -> Epic")
}

func TestBundles(t *testing.T) {
	dir := setup(t)
	out, err := run(t, "bundle", "--config", dir, "--item", "1004422", "--target-star", "5", "--target-tier", "Epic")
	require.NoError(t, err)
	assert.Contains(t, out, "[BUNDLE]")
	assert.Contains(t, out, "Main potential -> Epic: 10,000 mesos")
	assert.Contains(t, out, "Total: ")

	out, err = run(t, "bundle-dual", "--config", dir, "--item", "1004422", "--target-star", "5",
		"--main-target-tier", "Epic", "--bonus-target-tier", "none")
	require.NoError(t, err)
	assert.Contains(t, out, "[BUNDLE-DUAL]")
	assert.Contains(t, out, "Bonus: (skipped)")
}

func TestRecordAndExport(t *testing.T) {
	dir := setup(t)
	db := filepath.Join(t.TempDir(), "badger")
	common := []string{"--config", dir, "--source", "badger", "--badger-dir", db}

	out, err := run(t, append([]string{"record", "--item", "1004422", "--kind", "level:0", "--price", "120"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "recorded item=1004422 kind=level:0 timeframe=20m price=120")
	assert.Contains(t, out, "itemUpgradeType=0")

	_, err = run(t, append([]string{"record", "--item", "1004422", "--kind", "tool:bonus", "--price", "476",
		"--at", "2025-01-02T03:04:05Z"}, common...)...)
	require.NoError(t, err)

	out, err = run(t, append([]string{"export", "--items", "1004422"}, common...)...)
	require.NoError(t, err)
	snap, err := pricing.ParseSnapshot([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, 120.0, snap.Items["1004422"].Levels[0])
	assert.Equal(t, 476.0, snap.Items["1004422"].Tools["auxiliary"])

	_, err = run(t, "record", "--config", dir, "--item", "1", "--kind", "level:0", "--price", "1")
	assert.ErrorIs(t, err, errNoStore)

	_, err = run(t, append([]string{"record", "--item", "1", "--kind", "level:x", "--price", "1"}, common...)...)
	assert.Error(t, err)

	_, err = run(t, append([]string{"record", "--item", "1", "--kind", "level:25", "--price", "1"}, common...)...)
	assert.ErrorContains(t, err, "level must be below 25")

	for _, bad := range []string{"NaN", "+Inf", "-3"} {
		_, err = run(t, append([]string{"record", "--item", "1", "--kind", "level:0", "--price=" + bad}, common...)...)
		assert.ErrorContainsf(t, err, "finite number", "price %s", bad)
	}
}

func TestLogLevelFromConfig(t *testing.T) {
	dir := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dev.yaml"), []byte("log:\n  level: debug\n"), 0o644))

	root := newRootCmd(&bytes.Buffer{})
	assert.Empty(t, root.PersistentFlags().Lookup("log-level").DefValue)

	s, err := (&cli{confDir: dir, profile: "dev"}).settings()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, s.LogLevel)

	s, err = (&cli{confDir: dir, profile: "dev", logLevel: "error"}).settings()
	require.NoError(t, err)
	assert.Equal(t, zapcore.ErrorLevel, s.LogLevel)
}

func TestParsePairs(t *testing.T) {
	m, err := parsePairs([]string{"item=1004422", "target=17", "bonus_target="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"item": "1004422", "target": "17", "bonus_target": ""}, m)

	_, err = parsePairs([]string{"target"})
	assert.Error(t, err)
}

func TestRemote(t *testing.T) {
	snap, err := pricing.ParseSnapshot([]byte(prices))
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	server.Register(gs, server.NewEstimator(service.New(snap, nil, nil), nil))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var out bytes.Buffer
	c := &cli{out: &out}
	req, err := parsePairs([]string{"item=1004422", "target=5", "main_target=Epic"})
	require.NoError(t, err)
	require.NoError(t, c.remote(context.Background(), server.NewClient(conn), "bundle", req))
	assert.Contains(t, out.String(), `"reinforcement"`)
	assert.Contains(t, out.String(), `"total"`)

	assert.ErrorContains(t, c.remote(context.Background(), server.NewClient(conn), "draw", req), "unknown method")
}
