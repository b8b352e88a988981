package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/enhance-cost/internal/model"
)

func flatPrices(target int, price float64) map[int]float64 {
	out := make(map[int]float64, target)
	for s := 0; s < target; s++ {
		out[s] = price
	}
	return out
}

func TestReinforcementSingleLevel(t *testing.T) {
	res, err := Reinforcement(map[int]float64{0: 100}, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 100.2506, res.FromStart, 1e-4)
	assert.InDelta(t, 100/0.9975, res.FromStart, 1e-9)
	assert.Equal(t, res.FromStart, res.FromZero)
	assert.Len(t, res.PerLevel, 1)
}

func TestReinforcementMissingLevels(t *testing.T) {
	prices := flatPrices(10, 1000)
	delete(prices, 5)
	_, err := Reinforcement(prices, 10, 0)
	require.ErrorIs(t, err, ErrMissingPrice)

	var mp *MissingPriceError
	require.ErrorAs(t, err, &mp)
	assert.Equal(t, []int{5}, mp.Levels)
	assert.Empty(t, mp.Tools)
}

func TestReinforcementEnumeratesAllMissing(t *testing.T) {
	_, err := Reinforcement(map[int]float64{1: 10, 3: 10}, 5, 0)
	var mp *MissingPriceError
	require.ErrorAs(t, err, &mp)
	assert.Equal(t, []int{0, 2, 4}, mp.Levels)
	assert.Contains(t, err.Error(), "levels [0 2 4]")
}

func TestReinforcementInvalidArguments(t *testing.T) {
	prices := flatPrices(25, 1)
	for _, target := range []int{0, -1, 26} {
		_, err := Reinforcement(prices, target, 0)
		assert.ErrorIsf(t, err, ErrInvalidTarget, "target %d", target)
	}
	_, err := Reinforcement(prices, 5, -1)
	assert.ErrorIs(t, err, ErrInvalidStart)

	prices[2] = -5
	_, err = Reinforcement(prices, 5, 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestReinforcementStartAtOrPastTarget(t *testing.T) {
	res, err := Reinforcement(flatPrices(8, 500), 8, 8)
	require.NoError(t, err)
	assert.Zero(t, res.FromStart)
	assert.Positive(t, res.FromZero)

	res, err = Reinforcement(flatPrices(8, 500), 8, 12)
	require.NoError(t, err)
	assert.Zero(t, res.FromStart)

	// nothing needs pricing when there is nothing left to attempt
	res, err = Reinforcement(map[int]float64{}, 8, 9)
	require.NoError(t, err)
	assert.Zero(t, res.FromStart)
	assert.Nil(t, res.PerLevel)

	bad := flatPrices(8, 500)
	bad[3] = -1
	res, err = Reinforcement(bad, 8, 8)
	require.NoError(t, err)
	assert.Zero(t, res.FromStart)
}

func TestReinforcementRegressChain(t *testing.T) {
	m, err := model.New([]model.Step{
		{Succeed: 0.5, Stay: 0.5},
		{Succeed: 0.5, Regress: 0.5},
	}, 0, model.DefaultOdds)
	require.NoError(t, err)

	res, err := New(m).Reinforcement(map[int]float64{0: 1, 1: 1}, 2, 1)
	require.NoError(t, err)
	// E1 = 1 + E0/2, E0 = 1 + E0/2 + E1/2
	assert.InDelta(t, 6.0, res.PerLevel[0], 1e-9)
	assert.InDelta(t, 4.0, res.PerLevel[1], 1e-9)
	assert.InDelta(t, 4.0, res.FromStart, 1e-9)
}

func TestReinforcementResetToAnchor(t *testing.T) {
	m, err := model.New([]model.Step{
		{Succeed: 1},
		{Succeed: 0.5, Stay: 0.5},
		{Succeed: 0.5, Reset: 0.5},
	}, 1, model.DefaultOdds)
	require.NoError(t, err)
	est := New(m)

	res, err := est.Reinforcement(flatPrices(3, 1), 3, 0)
	require.NoError(t, err)
	// E2 = 1 + E1/2, E1 = 1 + E1/2 + E2/2, E0 = 1 + E1
	assert.InDelta(t, 7.0, res.PerLevel[0], 1e-9)
	assert.InDelta(t, 6.0, res.PerLevel[1], 1e-9)
	assert.InDelta(t, 4.0, res.PerLevel[2], 1e-9)

	// with the anchor at the target the reset column is dropped
	res, err = est.Reinforcement(flatPrices(1, 1), 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.FromStart, 1e-9)
}

func TestReinforcementFullLadder(t *testing.T) {
	res, err := Reinforcement(flatPrices(25, 1e6), 25, 0)
	require.NoError(t, err)
	require.Len(t, res.PerLevel, 25)
	assert.Equal(t, res.PerLevel[0], res.FromZero)

	// reference values from an independent solve of the same table
	assert.InEpsilon(t, 132232598748.5029, res.FromZero, 1e-9)
	assert.InEpsilon(t, 130819045279.04, res.PerLevel[24], 1e-9)
	assert.InEpsilon(t, 132205278059.41258, res.PerLevel[13], 1e-9)
	assert.InEpsilon(t, 132224095335.29416, res.PerLevel[14], 1e-9)

	// up to level 13 every path to the target passes through each higher
	// level; row 13 sums to 0.9999 so the ordering does not hold past it
	for s := 1; s <= 13; s++ {
		assert.Greaterf(t, res.PerLevel[s-1], res.PerLevel[s], "level %d", s)
	}
	assert.Greater(t, res.PerLevel[24], 1e6/0.0105)
}

func TestReinforcementMidLadder(t *testing.T) {
	res, err := Reinforcement(flatPrices(17, 1e6), 17, 12)
	require.NoError(t, err)
	assert.InEpsilon(t, 118583689.63097548, res.FromZero, 1e-9)
	assert.InEpsilon(t, 99529475.24357516, res.FromStart, 1e-9)
}

func TestReinforcementMonotoneInSuccess(t *testing.T) {
	prices := make(map[int]float64, 20)
	for s := 0; s < 20; s++ {
		prices[s] = float64(1000 * (s + 1))
	}
	base, err := Reinforcement(prices, 20, 0)
	require.NoError(t, err)

	for _, level := range []int{3, 11, 15, 18} {
		steps := model.DefaultSteps
		st := steps[level]
		if st.Stay >= 0.05 {
			st.Stay -= 0.05
		} else {
			st.Regress -= 0.05
		}
		st.Succeed += 0.05
		steps[level] = st

		m, err := model.New(steps[:], model.DefaultAnchor, model.DefaultOdds)
		require.NoError(t, err)
		better, err := New(m).Reinforcement(prices, 20, 0)
		require.NoError(t, err)

		for s := 0; s <= level; s++ {
			assert.LessOrEqualf(t, better.PerLevel[s], base.PerLevel[s]*(1+1e-12),
				"raising succeed at %d increased cost from %d", level, s)
		}
	}
}

func TestReinforcementIdempotent(t *testing.T) {
	prices := flatPrices(22, 12345.678)
	first, err := Reinforcement(prices, 22, 3)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Reinforcement(prices, 22, 3)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
