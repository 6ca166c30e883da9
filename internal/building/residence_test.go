package building

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/energyville/internal/entropy"
)

func TestNewResidencePopulationInsideTierBand(t *testing.T) {
	rnd := entropy.NewSource(7)
	for i := 0; i < 50; i++ {
		r := NewResidence(TierBasic, i, 0, rnd)
		assert.GreaterOrEqual(t, r.Population, 20)
		assert.LessOrEqual(t, r.Population, 50)
		assert.Greater(t, r.Demand, 0.0)
	}
}

func TestHourlyDemandMultiplierBands(t *testing.T) {
	assert.Equal(t, 0.4, HourlyDemandMultiplier(3))   // night trough
	assert.Equal(t, 1.5, HourlyDemandMultiplier(7))   // morning peak
	assert.Equal(t, 0.8, HourlyDemandMultiplier(12))  // daytime plateau
	assert.Equal(t, 1.8, HourlyDemandMultiplier(19))  // evening peak
	assert.Equal(t, 1.0, HourlyDemandMultiplier(23))  // late evening
}

func TestSatisfactionDriftAndClamp(t *testing.T) {
	rnd := entropy.NewSource(3)
	r := NewResidence(TierBasic, 0, 0, rnd)
	env := Env{Hour: 12, Rand: rnd}

	r.SetPowered(false)
	for i := 0; i < 100; i++ {
		r.Update(env)
		assert.GreaterOrEqual(t, r.Satisfaction, 0.0)
		assert.LessOrEqual(t, r.Satisfaction, 100.0)
	}
	assert.Equal(t, 0.0, r.Satisfaction)
	assert.Equal(t, 100, r.HoursWithoutPower)

	r.SetPowered(true)
	r.Update(env)
	assert.Equal(t, 0, r.HoursWithoutPower)
	assert.Equal(t, 0.5, r.Satisfaction)
}

func TestPopulationNeverBelowFloorDuringDecline(t *testing.T) {
	rnd := entropy.NewSource(11)
	r := NewResidence(TierBasic, 0, 0, rnd)
	r.Satisfaction = 0
	r.SetPowered(false)
	env := Env{Hour: 12, Rand: rnd}
	for i := 0; i < 1000; i++ {
		r.Update(env)
		assert.GreaterOrEqual(t, r.Population, 5)
	}
	assert.Equal(t, 5, r.Population)
}

func TestResidenceUpgradeAdvancesTier(t *testing.T) {
	rnd := entropy.NewSource(5)
	r := NewResidence(TierBasic, 0, 0, rnd)
	popBefore := r.Population

	assert.Equal(t, tierSpecs[TierMedium].constructionCost*0.7, r.UpgradeCost())
	require.True(t, r.Upgrade())
	assert.Equal(t, TierMedium, r.Tier)
	assert.GreaterOrEqual(t, r.Population, popBefore+30)

	r.Building.UnderConstruction = false
	require.True(t, r.Upgrade())
	assert.Equal(t, TierAdvanced, r.Tier)

	r.Building.UnderConstruction = false
	assert.False(t, r.Upgrade(), "no tier above advanced")
	assert.Equal(t, 0.0, r.UpgradeCost())
}

func TestUnpoweredResidencePaysFraction(t *testing.T) {
	rnd := entropy.NewSource(9)
	r := NewResidence(TierMedium, 0, 0, rnd)
	full := r.HourlyRevenue()
	r.SetPowered(false)
	assert.InDelta(t, full*0.3, r.HourlyRevenue(), 1e-9)
}

func TestOverlapsUsesFootprints(t *testing.T) {
	rnd := entropy.NewSource(1)
	// Plants are 2x2; a residence inside that square collides.
	p := NewCoalPlant(1, 10, 10)
	inside := NewResidence(TierBasic, 11, 11, rnd)
	outside := NewResidence(TierBasic, 12, 10, rnd)

	assert.True(t, Overlaps(p, inside))
	assert.False(t, Overlaps(p, outside))
}

func TestConstructionProgresses(t *testing.T) {
	rnd := entropy.NewSource(2)
	r := NewResidence(TierBasic, 0, 0, rnd)
	r.Building.StartConstruction()
	require.False(t, r.Building.Operational())

	env := Env{Hour: 12, Rand: rnd}
	for i := 0; i < 20; i++ {
		r.Update(env)
	}
	assert.True(t, r.Building.Operational())
	assert.Equal(t, 100, r.Building.Progress)
}

func TestInfrastructureVisitorsInsideOccupancyBand(t *testing.T) {
	rnd := entropy.NewSource(4)
	inf := NewInfrastructure(KindStadium, 0, 0)
	env := Env{Hour: 12, Rand: rnd}
	for i := 0; i < 50; i++ {
		inf.Update(env)
		assert.GreaterOrEqual(t, inf.Visitors, int(float64(inf.VisitorCapacity)*0.3)-1)
		assert.LessOrEqual(t, inf.Visitors, int(float64(inf.VisitorCapacity)*0.8))
	}
}

func TestUnpoweredInfrastructureContributesNothing(t *testing.T) {
	rnd := entropy.NewSource(4)
	inf := NewInfrastructure(KindEntertainment, 0, 0)
	inf.Update(Env{Hour: 12, Rand: rnd})
	assert.Greater(t, inf.HourlyRevenue(), 0.0)
	assert.Greater(t, inf.HappinessContribution(), 0.0)

	inf.SetPowered(false)
	assert.Equal(t, 0.0, inf.HourlyRevenue())
	assert.Equal(t, 0.0, inf.HappinessContribution())
}

func TestRandomKindForLevelRespectsUnlocks(t *testing.T) {
	rnd := entropy.NewSource(6)
	for i := 0; i < 100; i++ {
		k := RandomKindForLevel(1, rnd)
		assert.LessOrEqual(t, KindMinCityLevel(k), 1)
	}
}
