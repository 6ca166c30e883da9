package energy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/energyville/internal/building"
	"github.com/talgya/energyville/internal/city"
	"github.com/talgya/energyville/internal/entropy"
	"github.com/talgya/energyville/internal/weather"
)

func testCity(seed int64) *city.City {
	return city.New("Testville", 50000, entropy.NewSource(seed), weather.NewField(seed))
}

func TestStabilityDriftPerBand(t *testing.T) {
	s := NewSimulator(entropy.NewSource(1))

	s.Stability = 50
	s.updateStability(1.1, nil)
	assert.Equal(t, 51.0, s.Stability, "optimal band recovers")

	s.Stability = 50
	s.updateStability(0.5, nil)
	assert.Equal(t, 49.0, s.Stability, "hard shortage decays fastest")

	s.Stability = 50
	s.updateStability(0.9, nil)
	assert.Equal(t, 49.8, s.Stability, "mild shortage decays slowly")

	s.Stability = 100
	s.updateStability(2.0, nil)
	assert.Equal(t, 99.9, s.Stability, "overshoot nibbles the top")

	s.Stability = 90
	s.updateStability(2.0, nil)
	assert.Equal(t, 90.0, s.Stability, "overshoot never drags below 90")
}

func TestStabilityPenalizesWornPlants(t *testing.T) {
	s := NewSimulator(entropy.NewSource(2))
	worn := building.NewCoalPlant(1, 0, 0)
	worn.Eff = 0.3

	s.Stability = 50
	s.updateStability(1.1, []building.Plant{worn})
	assert.InDelta(t, 50.95, s.Stability, 1e-9)
}

func TestStabilityStaysClamped(t *testing.T) {
	s := NewSimulator(entropy.NewSource(3))
	for i := 0; i < 300; i++ {
		s.updateStability(1.1, nil)
	}
	assert.Equal(t, 100.0, s.Stability)

	for i := 0; i < 300; i++ {
		s.updateStability(0.2, nil)
	}
	assert.Equal(t, 0.0, s.Stability)
}

func TestTransmissionLossRewardsStableGrid(t *testing.T) {
	s := NewSimulator(entropy.NewSource(4))
	c := city.Empty("Testville", 0, entropy.NewSource(4), weather.NewField(4))

	s.Stability = 100
	s.updateTransmissionLoss(c)
	assert.InDelta(t, 0.04, s.TransmissionLoss, 1e-9)

	s.Stability = 50
	s.updateTransmissionLoss(c)
	assert.InDelta(t, 0.05, s.TransmissionLoss, 1e-9)
}

func TestTransmissionLossIsCapped(t *testing.T) {
	s := NewSimulator(entropy.NewSource(5))
	s.Stability = 50
	c := city.Empty("Sprawl", 0, entropy.NewSource(5), weather.NewField(5))
	for i := 0; i < 600; i++ {
		c.Residences = append(c.Residences,
			building.NewResidence(building.TierBasic, i*2, 0, c.Rand()))
	}

	s.updateTransmissionLoss(c)
	assert.Equal(t, 0.15, s.TransmissionLoss)
}

func TestOutagesAgeAndPrune(t *testing.T) {
	s := NewSimulator(entropy.NewSource(6))
	s.Stability = 100 // no instability rolls
	s.Outages = []Outage{
		{HoursLeft: 2, AffectedShare: 0.2, Reason: "lasting"},
		{HoursLeft: 1, AffectedShare: 0.3, Reason: "expiring"},
	}

	s.updateOutages(nil)

	reasons := make([]string, 0, len(s.Outages))
	for _, o := range s.Outages {
		reasons = append(reasons, o.Reason)
	}
	assert.Contains(t, reasons, "lasting")
	assert.NotContains(t, reasons, "expiring")
}

func TestOutageShareCapsAtBlackout(t *testing.T) {
	s := NewSimulator(entropy.NewSource(7))
	s.Outages = []Outage{
		{HoursLeft: 3, AffectedShare: 0.5},
		{HoursLeft: 3, AffectedShare: 0.5},
		{HoursLeft: 3, AffectedShare: 0.4},
	}
	assert.Equal(t, 1.0, s.outageShare())
}

func TestUpdateAppliesPostLossCoverage(t *testing.T) {
	c := testCity(8)
	s := NewSimulator(c.Rand())

	c.AdvanceHour(s.Pass())

	require.Greater(t, c.TotalDemand, 0.0)
	assert.Less(t, c.Coverage, c.EnergyRatio(),
		"delivered coverage must sit below the raw ratio once losses bite")
	expected := c.TotalProduction * (1 - s.TransmissionLoss) * (1 - s.outageShare())
	assert.InDelta(t, expected, s.AvailableEnergy, 1e-9)
}

func TestReserveCapacity(t *testing.T) {
	c := city.Empty("Testville", 0, entropy.NewSource(9), weather.NewField(9))
	c.Plants = append(c.Plants, building.NewCoalPlant(1, 0, 0))
	c.TotalDemand = 300
	s := NewSimulator(c.Rand())

	assert.InDelta(t, 500-300, s.ReserveCapacity(c), 1e-9)
}

func TestRecommendationsFlagLowFuel(t *testing.T) {
	c := testCity(10)
	s := NewSimulator(c.Rand())
	cp := c.Plants[0].(*building.CoalPlant)
	cp.Reserve = 2 // tons, about ten hours at full burn

	recs := s.Recommendations(c)
	require.NotEmpty(t, recs)
	assert.Contains(t, strings.Join(recs, "\n"), "out of fuel in about 10 hours")
}

func TestAverageEfficiency(t *testing.T) {
	a := building.NewCoalPlant(1, 0, 0)
	b := building.NewWindTurbine(1, 4, 0)
	a.Eff = 1.0
	b.Eff = 0.5

	assert.InDelta(t, 0.75, averageEfficiency([]building.Plant{a, b}), 1e-9)
	assert.Equal(t, 0.0, averageEfficiency(nil))
}
