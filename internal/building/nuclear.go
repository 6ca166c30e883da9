package building

// Nuclear fuel and waste economics.
const (
	nuclearStartingFuel = 500.0 // kg
	nuclearKgPerKWh     = 0.01
	NuclearFuelPerKg    = 50000.0
	wasteDisposalPerKg  = 1000.0
)

// NuclearPlant produces massively and steadily, gated by fuel, safety level
// and reactor temperature. Neglect it long enough and it has incidents.
type NuclearPlant struct {
	PlantState

	SafetyLevel float64 `json:"safety_level"` // 0-1
	Waste       float64 `json:"waste"`        // kg, accumulated until maintenance
	Fuel        float64 `json:"fuel"`         // kg
	Temperature float64 `json:"temperature"`  // °C
	RiskLevel   int     `json:"risk_level"`   // 0-10
	Incidents   int     `json:"incidents"`
}

// NewNuclearPlant creates a reactor at full safety and normal temperature.
func NewNuclearPlant(level, x, y int) *NuclearPlant {
	return &NuclearPlant{
		PlantState:  newPlantState(TechNuclear, level, x, y),
		SafetyLevel: 1.0,
		Fuel:        nuclearStartingFuel,
		Temperature: 300,
	}
}

func (n *NuclearPlant) Update(env Env) {
	if !n.preTick() {
		// An idle reactor still cools.
		if n.Temperature > 20 {
			n.Temperature -= 10
		}
		return
	}

	if n.Fuel <= 0 {
		n.Production = 0
		if n.Temperature > 20 {
			n.Temperature -= 10
		}
		n.postTickNuclear()
		return
	}

	n.Production = n.MaxProduction * n.Eff * n.SafetyLevel

	burned := n.Production * nuclearKgPerKWh
	if burned > n.Fuel {
		burned = n.Fuel
	}
	n.Fuel -= burned
	n.Waste += burned * 0.1

	n.updateTemperature(env)
	n.updateRisk(env)

	n.postTickNuclear()
}

// postTickNuclear runs generic aging, the slow safety decay, and the extra
// penalty neglect earns on a reactor.
func (n *NuclearPlant) postTickNuclear() {
	if n.postTick() {
		n.SafetyLevel = clamp(n.SafetyLevel-0.1, 0.2, 1.0)
		n.Temperature += 20
	}
	n.SafetyLevel = clamp(n.SafetyLevel-0.00005, 0.3, 1.0)
}

// updateTemperature converges toward the load-dependent target (300-500°C)
// and drifts upward when maintenance is badly overdue.
func (n *NuclearPlant) updateTemperature(env Env) {
	target := 300 + (n.Production/n.MaxProduction)*200
	if n.Temperature < target {
		n.Temperature += 5
	} else if n.Temperature > target {
		n.Temperature -= 3
	}
	if n.HoursSinceMaint > n.MaintInterval*3/2 {
		n.Temperature += env.Rand.Float64() * 10
	}
}

// updateRisk scores the incident risk and rolls the dice above threshold.
func (n *NuclearPlant) updateRisk(env Env) {
	risk := 0
	switch {
	case n.SafetyLevel < 0.5:
		risk += 4
	case n.SafetyLevel < 0.7:
		risk += 2
	}
	switch {
	case n.Temperature > 600:
		risk += 3
	case n.Temperature > 500:
		risk++
	}
	switch {
	case n.HoursSinceMaint > n.MaintInterval*2:
		risk += 3
	case n.HoursSinceMaint > n.MaintInterval:
		risk++
	}
	n.RiskLevel = risk

	if risk >= 7 && env.Rand.Chance(0.01) {
		n.triggerIncident()
	}
}

// triggerIncident is the forced shutdown: lasting efficiency and safety
// collapse plus a pollution spike.
func (n *NuclearPlant) triggerIncident() {
	n.Building.Active = false
	n.Production = 0
	n.Eff = 0.3
	n.SafetyLevel = 0.2
	n.Pollution = 100
	n.Incidents++
}

// PerformMaintenance restores safety and temperature and bills waste
// disposal on top of the generic maintenance cost.
func (n *NuclearPlant) PerformMaintenance() float64 {
	cost := n.PlantState.PerformMaintenance()
	n.SafetyLevel = clamp(n.SafetyLevel+0.5, 0, 1.0)
	n.Temperature = 300
	n.RiskLevel = 0

	cost += n.Waste * wasteDisposalPerKg
	n.Waste = 0
	return cost
}

// MaintenanceQuote includes the disposal bill for accumulated waste.
func (n *NuclearPlant) MaintenanceQuote() float64 {
	return n.PlantState.MaintenanceQuote() + n.Waste*wasteDisposalPerKg
}

// Refuel adds enriched fuel and returns the purchase cost.
func (n *NuclearPlant) Refuel(kg float64) float64 {
	n.Fuel += kg
	return kg * NuclearFuelPerKg
}

// EmergencyShutdown halts the reactor and starts rapid cooling.
func (n *NuclearPlant) EmergencyShutdown() {
	n.Building.Active = false
	n.Production = 0
	n.Temperature -= 50
	if n.Temperature < 20 {
		n.Temperature = 20
	}
}

// Restart refuses to bring the reactor back unless safety, temperature and
// fuel are all inside safe bounds. The refusal is a reported failure, not
// an error.
func (n *NuclearPlant) Restart() bool {
	if n.SafetyLevel > 0.7 && n.Temperature < 400 && n.Fuel > 100 {
		n.Building.Active = true
		return true
	}
	return false
}

// InDanger reports a risk level high enough to threaten the grid.
func (n *NuclearPlant) InDanger() bool { return n.RiskLevel >= 7 }

func (n *NuclearPlant) Status() string {
	switch {
	case !n.Building.Active && n.Pollution > 50:
		return "nuclear incident"
	case n.RiskLevel >= 7:
		return "critical risk"
	case n.RiskLevel >= 4:
		return "elevated risk"
	}
	return n.PlantState.Status()
}
