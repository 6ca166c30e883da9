package building

// Wind turbine operating band in m/s.
const (
	windCutIn  = 3.0
	windRated  = 12.0
	windCutOff = 25.0
)

// WindTurbine rides a randomly-walking wind speed through a piecewise power
// curve: nothing below cut-in, ramp to rated, taper to the safety cutoff.
type WindTurbine struct {
	PlantState

	WindSpeed  float64 `json:"wind_speed"`
	WindFactor float64 `json:"wind_factor"`
}

// NewWindTurbine creates a turbine in a moderate breeze.
func NewWindTurbine(level, x, y int) *WindTurbine {
	return &WindTurbine{
		PlantState: newPlantState(TechWind, level, x, y),
		WindSpeed:  8.0,
		WindFactor: 0.5,
	}
}

func (w *WindTurbine) Footprint() (int, int) { return 1, 1 }

func (w *WindTurbine) Update(env Env) {
	if !w.preTick() {
		return
	}

	// Random walk, nudged toward the ambient target from the weather field.
	w.WindSpeed += env.Rand.Range(-2, 2)
	w.WindSpeed += (env.Weather.WindTarget - w.WindSpeed) * 0.1
	w.WindSpeed = clamp(w.WindSpeed, 0, 35)

	w.WindFactor = WindCurve(w.WindSpeed)
	w.Production = w.MaxProduction * w.Eff * w.WindFactor

	w.postTick()
}

// WindCurve maps wind speed to the output fraction.
func WindCurve(speed float64) float64 {
	switch {
	case speed < windCutIn, speed > windCutOff:
		return 0
	case speed <= windRated:
		return (speed - windCutIn) / (windRated - windCutIn)
	default:
		return 1.0 - (speed-windRated)/(windCutOff-windRated)*0.5
	}
}

func (w *WindTurbine) Status() string {
	if w.Building.Operational() {
		if w.WindSpeed > windCutOff {
			return "safety stop (storm)"
		}
		if w.WindSpeed < windCutIn {
			return "becalmed"
		}
	}
	return w.PlantState.Status()
}
