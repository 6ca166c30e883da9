package building

import "math"

// SolarPlant produces along the daylight curve, scaled by cloud cover.
type SolarPlant struct {
	PlantState

	SunFactor     float64 `json:"sun_factor"`     // hour-of-day multiplier, 0 at night
	WeatherFactor float64 `json:"weather_factor"` // cloud multiplier
}

// NewSolarPlant creates a solar farm.
func NewSolarPlant(level, x, y int) *SolarPlant {
	return &SolarPlant{
		PlantState:    newPlantState(TechSolar, level, x, y),
		SunFactor:     0,
		WeatherFactor: 1,
	}
}

func (s *SolarPlant) Update(env Env) {
	if !s.preTick() {
		return
	}

	s.SunFactor = SunCurve(env.Hour)
	s.WeatherFactor = env.Weather.SolarFactor
	s.Production = s.MaxProduction * s.Eff * s.SunFactor * s.WeatherFactor

	s.postTick()
}

// SunCurve maps hour-of-day to insolation: zero at night, ramping through
// the morning, peaking around midday, tapering to sunset.
func SunCurve(hour int) float64 {
	switch {
	case hour < 6 || hour >= 20:
		return 0
	case hour < 8:
		return float64(hour-6) * 0.3
	case hour < 11:
		return 0.6 + float64(hour-8)*0.117
	case hour <= 13:
		return 0.95 + math.Sin(math.Pi*float64(hour-11)/2)*0.05
	case hour <= 17:
		return 0.95 - float64(hour-13)*0.0875
	default:
		return math.Max(0, 0.6-float64(hour-17)*0.2)
	}
}

// AverageDailyProduction integrates the sun curve over 24 hours under the
// current weather.
func (s *SolarPlant) AverageDailyProduction() float64 {
	total := 0.0
	for h := 0; h < 24; h++ {
		total += SunCurve(h)
	}
	return total / 24 * s.MaxProduction * s.Eff * s.WeatherFactor
}
