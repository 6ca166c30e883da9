package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameSeedReplaysTheSameSky(t *testing.T) {
	a := NewField(42)
	b := NewField(42)
	for hour := int64(0); hour < 500; hour += 7 {
		assert.Equal(t, a.Sample(hour), b.Sample(hour), "hour %d", hour)
	}
}

func TestSampleStaysInsideBands(t *testing.T) {
	f := NewField(1)
	for hour := int64(0); hour < 2000; hour++ {
		c := f.Sample(hour)
		assert.GreaterOrEqual(t, c.CloudCover, 0.0)
		assert.LessOrEqual(t, c.CloudCover, 1.0)
		assert.GreaterOrEqual(t, c.WindTarget, 2.0)
		assert.LessOrEqual(t, c.WindTarget, 28.0)
		assert.GreaterOrEqual(t, c.SolarFactor, 0.1)
		assert.LessOrEqual(t, c.SolarFactor, 1.0)
		assert.NotEmpty(t, c.Description)
	}
}

func TestSolarFactorBands(t *testing.T) {
	assert.Equal(t, 1.0, solarFactor(0.1))
	assert.Equal(t, 0.8, solarFactor(0.3))
	assert.Equal(t, 0.5, solarFactor(0.6))
	assert.Equal(t, 0.3, solarFactor(0.8))
	assert.Equal(t, 0.1, solarFactor(0.95))
}

func TestStormWarningMatchesDescription(t *testing.T) {
	c := Conditions{CloudCover: 0.5, WindTarget: 26, StormWarning: true}
	assert.Equal(t, "storm", describe(c))

	c.StormWarning = false
	assert.Equal(t, "cloudy", describe(c))
}
