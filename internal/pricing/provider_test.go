package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/enhance-cost/internal/model"
)

func TestKindRoundTrip(t *testing.T) {
	for _, k := range []Kind{LevelKind(0), LevelKind(17), ToolKind(model.Primary), ToolKind(model.Auxiliary)} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	for _, bad := range []string{"level", "level:x", "level:-1", "level:3x", "level:25", "tool:green", "cube:red"} {
		_, err := ParseKind(bad)
		assert.Errorf(t, err, "ParseKind(%q)", bad)
	}
}

func TestKindValid(t *testing.T) {
	assert.True(t, LevelKind(0).Valid())
	assert.True(t, LevelKind(model.MaxLevel-1).Valid())
	assert.False(t, LevelKind(model.MaxLevel).Valid())
	assert.False(t, LevelKind(-1).Valid())
	assert.True(t, ToolKind(model.Secondary).Valid())
	assert.False(t, ToolKind(model.Tool(7)).Valid())
	assert.False(t, Kind{Type: UpgradeType(3)}.Valid())
}

func TestParseTimeframe(t *testing.T) {
	tf, err := ParseTimeframe("1d")
	require.NoError(t, err)
	assert.Equal(t, TF1D, tf)

	_, err = ParseTimeframe("5m")
	assert.ErrorIs(t, err, ErrTimeframe)
}

func TestCatalog(t *testing.T) {
	assert.Equal(t, "5062010", Subtype(model.Secondary))
	tool, err := ToolForSubtype("5062500")
	require.NoError(t, err)
	assert.Equal(t, model.Auxiliary, tool)
	_, err = ToolForSubtype("1")
	assert.Error(t, err)

	assert.Equal(t,
		"https://msu.io/navigator/item/1004422?itemUpgrade=12&itemUpgradeSubType=&itemUpgradeType=0",
		CatalogURL("1004422", LevelKind(12)))
	assert.Equal(t,
		"https://msu.io/navigator/item/1004422?itemUpgrade=0&itemUpgradeSubType=5062009&itemUpgradeType=1",
		CatalogURL("1004422", ToolKind(model.Primary)))
}

func TestReinforcementPricesSkipsUnknown(t *testing.T) {
	p := ProviderFunc(func(_ context.Context, item string, kind Kind, tf Timeframe) (float64, bool, error) {
		assert.Equal(t, "item", item)
		assert.Equal(t, TF1H, tf)
		if kind.Level == 2 {
			return 0, false, nil
		}
		return float64(kind.Level * 10), true, nil
	})
	got, err := ReinforcementPrices(context.Background(), p, "item", 4, TF1H)
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{0: 0, 1: 10, 3: 30}, got)
}

func TestResolveStopsOnProviderError(t *testing.T) {
	boom := errors.New("store offline")
	p := ProviderFunc(func(context.Context, string, Kind, Timeframe) (float64, bool, error) {
		return 0, false, boom
	})
	_, err := ReinforcementPrices(context.Background(), p, "x", 3, TF20m)
	assert.ErrorIs(t, err, boom)
	_, err = ToolPriceSet(context.Background(), p, "x", TF20m)
	assert.ErrorIs(t, err, boom)
}

func TestToolPriceSet(t *testing.T) {
	p := ProviderFunc(func(_ context.Context, _ string, kind Kind, _ Timeframe) (float64, bool, error) {
		if kind.Type != ToolUse {
			t.Fatalf("unexpected kind %v", kind)
		}
		if kind.Tool == model.Auxiliary {
			return 0, false, nil
		}
		return 100 + float64(kind.Tool), true, nil
	})
	got, err := ToolPriceSet(context.Background(), p, "x", TF20m)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 100.0, got[model.Primary])
	assert.Equal(t, 101.0, got[model.Secondary])
}
