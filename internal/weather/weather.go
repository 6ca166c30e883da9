// Package weather generates the environmental fields the power grid depends
// on: cloud cover for solar output and an ambient wind-speed target for
// turbines. Both are smooth opensimplex noise over simulated time, so the
// same seed always replays the same sky.
package weather

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Conditions is one hourly sample of the environment.
type Conditions struct {
	CloudCover   float64 // 0 = clear, 1 = overcast
	SolarFactor  float64 // multiplier on solar production (0.1-1.0)
	WindTarget   float64 // ambient wind speed the turbines drift toward (m/s)
	StormWarning bool    // wind target past the turbine safety band
	Description  string
}

// Field samples weather conditions along the simulated-hour axis.
type Field struct {
	cloud opensimplex.Noise
	wind  opensimplex.Noise
}

// NewField creates a weather field from a seed.
func NewField(seed int64) *Field {
	return &Field{
		cloud: opensimplex.New(seed),
		wind:  opensimplex.New(seed + 1),
	}
}

// Cloud noise is sampled slowly so overcast spells last for many hours;
// wind varies a little faster.
const (
	cloudScale = 1.0 / 36.0
	windScale  = 1.0 / 18.0
)

// Sample returns conditions for the given absolute simulated hour.
func (f *Field) Sample(hour int64) Conditions {
	t := float64(hour)

	// Noise is in [-1, 1]; map to [0, 1].
	cloud := (f.cloud.Eval2(t*cloudScale, 0) + 1) / 2

	// Wind target 2-28 m/s, biased toward the middle of the band.
	wn := (f.wind.Eval2(t*windScale, 10) + 1) / 2
	wind := 2 + wn*26

	c := Conditions{
		CloudCover:   cloud,
		SolarFactor:  solarFactor(cloud),
		WindTarget:   wind,
		StormWarning: wind > 25,
	}
	c.Description = describe(c)
	return c
}

// solarFactor maps cloud cover onto the production multiplier band
// (clear 1.0 down to storm-dark 0.1).
func solarFactor(cloud float64) float64 {
	switch {
	case cloud < 0.2:
		return 1.0
	case cloud < 0.45:
		return 0.8
	case cloud < 0.7:
		return 0.5
	case cloud < 0.9:
		return 0.3
	default:
		return 0.1
	}
}

func describe(c Conditions) string {
	if c.StormWarning {
		return "storm"
	}
	switch {
	case c.CloudCover < 0.2:
		return "clear"
	case c.CloudCover < 0.45:
		return "partly cloudy"
	case c.CloudCover < 0.7:
		return "cloudy"
	case c.CloudCover < 0.9:
		return "rain"
	default:
		return "heavy rain"
	}
}
