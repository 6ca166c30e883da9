package city

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/energyville/internal/building"
	"github.com/talgya/energyville/internal/entropy"
	"github.com/talgya/energyville/internal/weather"
)

func newTestCity(seed int64, money float64) *City {
	return New("Testville", money, entropy.NewSource(seed), weather.NewField(seed))
}

func sumResidents(c *City) int {
	total := 0
	for _, r := range c.Residences {
		total += r.Population
	}
	return total
}

func TestPopulationEqualsSumOfResidencesEveryTick(t *testing.T) {
	c := newTestCity(1, 50000)
	for i := 0; i < 300; i++ {
		c.AdvanceHour()
		require.Equal(t, sumResidents(c), c.Population, "tick %d", i)
	}
}

func TestHappinessStaysClampedEveryTick(t *testing.T) {
	c := newTestCity(2, 50000)
	for i := 0; i < 300; i++ {
		c.AdvanceHour()
		require.GreaterOrEqual(t, c.Happiness, 0.0)
		require.LessOrEqual(t, c.Happiness, 100.0)
	}
}

func TestFreshCityFirstHour(t *testing.T) {
	c := newTestCity(3, 50000)
	c.AdvanceHour()

	assert.Greater(t, c.TotalDemand, 0.0)
	assert.Greater(t, c.TotalProduction, 0.0)
	assert.Equal(t, 1, int(c.Clock.Sub(c.Founded).Hours()))
	assert.Equal(t, sumResidents(c), c.Population)
}

func TestBinaryElectrification(t *testing.T) {
	c := newTestCity(4, 50000)

	c.ApplyCoverage(0.95)
	for _, r := range c.Residences {
		assert.True(t, r.Powered)
	}

	c.ApplyCoverage(0.85)
	for _, r := range c.Residences {
		assert.False(t, r.Powered)
	}
	for _, inf := range c.Infrastructures {
		assert.False(t, inf.Powered)
	}
}

func TestLevelStaircaseNeverDecreases(t *testing.T) {
	c := newTestCity(5, 50000)
	c.Residences = nil
	for i := 0; i < 30; i++ {
		r := building.NewResidence(building.TierAdvanced, i, 20, c.Rand())
		r.Population = 100
		c.Residences = append(c.Residences, r)
	}
	c.RefreshDerived()
	c.refreshLevel()
	require.Equal(t, 3000, c.Population)
	assert.Equal(t, 8, c.Level)

	before := c.Level
	c.Residences = c.Residences[:3]
	c.RefreshDerived()
	c.refreshLevel()
	assert.Equal(t, before, c.Level, "level must never drop with population")
}

func TestGameOverOrderingPrefersUnhappinessOverBlackout(t *testing.T) {
	// A city with residences and no plants: coverage is zero, happiness
	// collapses, and the reported cause must be about unhappiness, not
	// bankruptcy or blackout.
	rnd := entropy.NewSource(6)
	c := Empty("Testville", 50000, rnd, weather.NewField(6))
	for i := 0; i < 8; i++ {
		c.Residences = append(c.Residences,
			building.NewResidence(building.TierBasic, i*2, 0, rnd))
	}
	c.RefreshDerived()

	var cause Cause
	var reason string
	for i := 0; i < 200; i++ {
		c.AdvanceHour()
		if cause, reason = c.GameOver(); cause != CauseNone {
			break
		}
	}
	require.NotEqual(t, CauseNone, cause, "200 powerless hours must end the game")
	assert.Contains(t, []Cause{CauseMisery, CauseUnrest}, cause)
	assert.NotEqual(t, CauseBankruptcy, cause)
	assert.NotEqual(t, CauseBlackout, cause)
	assert.NotEmpty(t, reason)
}

func TestGameOverBankruptcy(t *testing.T) {
	c := newTestCity(7, 50000)
	c.Money = -60000
	cause, _ := c.GameOver()
	assert.Equal(t, CauseBankruptcy, cause)
}

func TestAddBuildingRejectsOverlap(t *testing.T) {
	c := newTestCity(8, 50000)
	// The starting coal plant sits at (10,10) with a 2x2 footprint.
	clash := building.NewResidence(building.TierBasic, 11, 11, c.Rand())
	assert.False(t, c.AddBuilding(clash))

	free := building.NewResidence(building.TierBasic, 20, 20, c.Rand())
	assert.True(t, c.AddBuilding(free))
}

func TestRemoveBuildingRefundsHalf(t *testing.T) {
	c := newTestCity(9, 50000)
	r := c.Residences[0]
	moneyBefore := c.Money
	popBefore := c.Population

	require.True(t, c.RemoveBuilding(r.Building.ID))
	assert.Equal(t, moneyBefore+r.Building.ConstructionCost*0.5, c.Money)
	assert.Equal(t, popBefore-r.Population, c.Population)
	assert.False(t, c.RemoveBuilding(r.Building.ID), "second removal must fail")
}

func TestHistoryIsBounded(t *testing.T) {
	var h History
	for i := 0; i < 200; i++ {
		h.Append(float64(i), 50, 0)
	}
	assert.Len(t, h.Samples, historyDepth)
	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, 199.0, latest.Money)
}

func TestGridSizeWidensWithLevel(t *testing.T) {
	c := newTestCity(10, 50000)
	assert.Equal(t, 10, c.GridSize())
	c.Level = 4
	assert.Equal(t, 25, c.GridSize())
}
