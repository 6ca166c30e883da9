package population

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/energyville/internal/building"
	"github.com/talgya/energyville/internal/city"
	"github.com/talgya/energyville/internal/entropy"
	"github.com/talgya/energyville/internal/weather"
)

// cityWithPopulation builds a bare city holding the exact population asked
// for, spread over residences of 100.
func cityWithPopulation(pop int, rnd *entropy.Source) *city.City {
	c := city.Empty("Testville", 50000, rnd, weather.NewField(1))
	for placed := 0; placed < pop; placed += 100 {
		r := building.NewResidence(building.TierMedium, placed/100*2, 0, rnd)
		r.Population = 100
		if rest := pop - placed; rest < 100 {
			r.Population = rest
		}
		c.Residences = append(c.Residences, r)
	}
	c.RefreshDerived()
	return c
}

func TestCoverageScoreSaturates(t *testing.T) {
	rnd := entropy.NewSource(1)
	c := cityWithPopulation(300, rnd)
	m := NewManager(rnd)

	// One hospital covers 150 of 300 inhabitants: half satisfied.
	c.Infrastructures = append(c.Infrastructures, building.NewInfrastructure(building.KindHospital, 10, 10))
	m.updateNeeds(c)
	assert.InDelta(t, 50.0, m.Needs[NeedHealth], 1e-9)

	c.Infrastructures = append(c.Infrastructures, building.NewInfrastructure(building.KindHospital, 14, 10))
	m.updateNeeds(c)
	assert.Equal(t, 100.0, m.Needs[NeedHealth], "coverage saturates at 100")
}

func TestEnergyNeedTracksCoverage(t *testing.T) {
	rnd := entropy.NewSource(2)
	c := cityWithPopulation(200, rnd)
	m := NewManager(rnd)

	c.ApplyCoverage(0.8)
	m.updateNeeds(c)
	assert.InDelta(t, 80.0, m.Needs[NeedEnergy], 1e-9)

	c.ApplyCoverage(1.4)
	m.updateNeeds(c)
	assert.Equal(t, 100.0, m.Needs[NeedEnergy])
}

func TestAttractivenessBlendsHappinessAndNeeds(t *testing.T) {
	rnd := entropy.NewSource(3)
	c := cityWithPopulation(100, rnd)
	m := NewManager(rnd)
	for n := range m.Needs {
		m.Needs[n] = 50
	}
	c.Happiness = 80

	assert.InDelta(t, 80*0.6+50*0.4, m.Attractiveness(c), 1e-9)
}

func TestImmigrationGrowsAnAttractiveCity(t *testing.T) {
	rnd := entropy.NewSource(4)
	c := cityWithPopulation(500, rnd)
	m := NewManager(rnd)
	c.Happiness = 95
	for n := range m.Needs {
		m.Needs[n] = 95
	}
	before := c.Population

	for i := 0; i < 200; i++ {
		m.handleMigration(c)
		c.RefreshDerived()
	}

	require.Greater(t, m.ImmigrationCount, 0, "a 95-happiness city must attract someone in 200 periods")
	assert.Greater(t, c.Population, before)
	assert.Equal(t, 0, m.EmigrationCount)
}

func TestEmigrationDrainsAMiserableCity(t *testing.T) {
	rnd := entropy.NewSource(5)
	c := cityWithPopulation(500, rnd)
	m := NewManager(rnd)
	c.Happiness = 5
	for n := range m.Needs {
		m.Needs[n] = 5
	}
	before := c.Population

	for i := 0; i < 200; i++ {
		m.handleMigration(c)
		c.RefreshDerived()
	}

	require.Greater(t, m.EmigrationCount, 0)
	assert.Less(t, c.Population, before)
	for _, r := range c.Residences {
		assert.GreaterOrEqual(t, r.Population, 5, "residences never empty below the floor")
	}
}

func TestPeakPopulationIsSticky(t *testing.T) {
	rnd := entropy.NewSource(6)
	c := cityWithPopulation(400, rnd)
	m := NewManager(rnd)

	m.Update(c)
	require.Equal(t, 400, m.PeakPopulation)

	c.Residences = c.Residences[:1]
	c.RefreshDerived()
	m.Update(c)
	assert.Equal(t, 400, m.PeakPopulation, "the peak never decreases")
}

func TestQualityOfLifeBoundsAndPollutionPenalty(t *testing.T) {
	rnd := entropy.NewSource(7)
	c := cityWithPopulation(100, rnd)
	m := NewManager(rnd)

	c.Happiness = 100
	for n := range m.Needs {
		m.Needs[n] = 100
	}
	c.TotalPollution = 0
	assert.Equal(t, 100.0, m.QualityOfLife(c))

	c.TotalPollution = 500 // penalty capped at 20
	assert.Equal(t, 80.0, m.QualityOfLife(c))

	c.Happiness = 0
	for n := range m.Needs {
		m.Needs[n] = 0
	}
	assert.Equal(t, 0.0, m.QualityOfLife(c))
}

func TestUnsatisfiedNeeds(t *testing.T) {
	m := NewManager(entropy.NewSource(8))
	m.Needs[NeedSecurity] = 20
	m.Needs[NeedLeisure] = 49.9

	low := m.UnsatisfiedNeeds()
	assert.Len(t, low, 2)
	assert.Contains(t, low, NeedSecurity)
	assert.Contains(t, low, NeedLeisure)
}

func TestRecommendationsTargetWeakNeeds(t *testing.T) {
	rnd := entropy.NewSource(9)
	c := cityWithPopulation(100, rnd)
	m := NewManager(rnd)
	m.Needs[NeedHealth] = 10

	recs := m.Recommendations(c)
	require.NotEmpty(t, recs)
	assert.Contains(t, recs[0], "hospital")
}

func TestDensity(t *testing.T) {
	rnd := entropy.NewSource(10)
	c := cityWithPopulation(300, rnd)
	m := NewManager(rnd)
	assert.InDelta(t, 100.0, m.Density(c), 1e-9)

	empty := city.Empty("Nowhere", 0, rnd, weather.NewField(1))
	assert.Equal(t, 0.0, m.Density(empty))
}
