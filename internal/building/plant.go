package building

// Tech identifies a power-generation technology.
type Tech string

const (
	TechCoal    Tech = "coal"
	TechSolar   Tech = "solar"
	TechWind    Tech = "wind"
	TechNuclear Tech = "nuclear"
)

// techSpec is the catalog row shared by every plant of one technology.
type techSpec struct {
	baseProduction   float64 // kWh/h at level 1
	baseCost         float64 // construction at level 1
	maintPerHour     float64 // upkeep at level 1
	pollution        float64 // 0-10 scale at level 1
	operatingPerKWh  float64
	maintInterval    int     // hours between required maintenance
	decayPerHour     float64 // efficiency lost each hour
	efficiencyFloor  float64 // decay never goes below this
	minCityLevel     int
}

var techSpecs = map[Tech]techSpec{
	TechCoal:    {500, 2500, 10, 8.0, 0.08, 120, 0.0001, 0.5, 1},
	TechSolar:   {300, 7500, 5, 0.5, 0.01, 2160, 0.00005, 0.7, 1},
	TechWind:    {200, 4000, 5, 0.2, 0.005, 1440, 0.00008, 0.6, 2},
	TechNuclear: {2000, 25000, 20, 2.0, 0.03, 360, 0.00003, 0.4, 5},
}

// AllTechs lists the buildable technologies in unlock order.
func AllTechs() []Tech { return []Tech{TechCoal, TechSolar, TechWind, TechNuclear} }

// TechConstructionCost quotes a plant of the given technology and level.
func TechConstructionCost(t Tech, level int) float64 {
	return techSpecs[t].baseCost * float64(level)
}

// TechMinCityLevel returns the city level that unlocks the technology.
func TechMinCityLevel(t Tech) int { return techSpecs[t].minCityLevel }

// Plant is the capability set of every power plant.
type Plant interface {
	Entity
	Tech() Tech
	CurrentProduction() float64
	MaxCapacity() float64
	Efficiency() float64
	PerformMaintenance() float64
	MaintenanceQuote() float64
	UpgradeCost() float64
	NeedsMaintenance() bool
	HourlyCost() float64
	HourlyPollution() float64
	Status() string
}

// PlantState is the bookkeeping shared by all technologies. The physics live
// in each variant; this only ages and accounts.
type PlantState struct {
	Building Base `json:"building"`

	Technology       Tech    `json:"technology"`
	MaxProduction    float64 `json:"max_production"`
	Production       float64 `json:"production"`
	Eff              float64 `json:"efficiency"`
	MaintCostPerHour float64 `json:"maintenance_cost_per_hour"`
	Pollution        float64 `json:"pollution"`
	OperatingPerKWh  float64 `json:"operating_per_kwh"`
	TotalProduced    float64 `json:"total_produced"`
	HoursSinceMaint  int     `json:"hours_since_maintenance"`
	MaintInterval    int     `json:"maintenance_interval"`
}

func newPlantState(t Tech, level, x, y int) PlantState {
	spec := techSpecs[t]
	s := PlantState{
		Building:         NewBase(level, x, y),
		Technology:       t,
		MaxProduction:    spec.baseProduction * float64(level),
		Eff:              1.0,
		MaintCostPerHour: spec.maintPerHour * float64(level),
		Pollution:        spec.pollution,
		OperatingPerKWh:  spec.operatingPerKWh,
		MaintInterval:    spec.maintInterval,
	}
	s.Production = s.MaxProduction
	s.Building.ConstructionCost = TechConstructionCost(t, level)
	return s
}

func (s *PlantState) Base() *Base           { return &s.Building }
func (s *PlantState) Tech() Tech            { return s.Technology }
func (s *PlantState) Type() string          { return string(s.Technology) + "_plant" }
func (s *PlantState) Footprint() (int, int) { return 2, 2 }

func (s *PlantState) CurrentProduction() float64 { return s.Production }
func (s *PlantState) MaxCapacity() float64       { return s.MaxProduction }
func (s *PlantState) Efficiency() float64        { return s.Eff }

// preTick advances construction and zeroes output when the plant cannot run.
// Returns true when the variant physics should execute.
func (s *PlantState) preTick() bool {
	s.Building.advanceConstruction()
	if !s.Building.Operational() {
		s.Production = 0
		return false
	}
	return true
}

// postTick runs generic aging after the variant has produced: efficiency
// decay toward the technology floor, production stats, and the markdown for
// overdue maintenance. Reports whether maintenance is overdue so variants
// can stack their own penalties.
func (s *PlantState) postTick() (overdue bool) {
	spec := techSpecs[s.Technology]
	s.Eff = clamp(s.Eff-spec.decayPerHour, spec.efficiencyFloor, 1.0)

	s.TotalProduced += s.Production
	s.HoursSinceMaint++
	if s.HoursSinceMaint >= s.MaintInterval {
		s.Eff = clamp(s.Eff-0.05, 0.3, 1.0)
		return true
	}
	return false
}

// PerformMaintenance resets the maintenance clock and restores efficiency
// toward (not necessarily to) full. Returns the cost to be debited by the
// caller — a week of upkeep.
func (s *PlantState) PerformMaintenance() float64 {
	cost := s.MaintCostPerHour * 24 * 7
	s.Eff = clamp(s.Eff+0.3, 0, 1.0)
	s.HoursSinceMaint = 0
	return cost
}

// MaintenanceQuote prices a maintenance visit without performing it.
func (s *PlantState) MaintenanceQuote() float64 {
	return s.MaintCostPerHour * 24 * 7
}

// NeedsMaintenance flags low efficiency or an expired interval.
func (s *PlantState) NeedsMaintenance() bool {
	return s.Eff < 0.7 || s.HoursSinceMaint >= s.MaintInterval
}

// HourlyCost is upkeep plus per-kWh operating cost.
func (s *PlantState) HourlyCost() float64 {
	return s.MaintCostPerHour + s.Production*s.OperatingPerKWh
}

// HourlyPollution scales the pollution rating by the current load.
func (s *PlantState) HourlyPollution() float64 {
	if s.MaxProduction == 0 {
		return 0
	}
	return s.Pollution * (s.Production / s.MaxProduction)
}

// Upgrade raises capacity by half, resets efficiency and bumps upkeep.
func (s *PlantState) Upgrade() bool {
	if !s.Building.CanUpgrade() {
		return false
	}
	s.MaxProduction *= 1.5
	s.Eff = 1.0
	s.MaintCostPerHour *= 1.3
	s.HoursSinceMaint = 0
	s.Building.beginUpgrade()
	return true
}

// UpgradeCost quotes 75% of the next level's construction price.
func (s *PlantState) UpgradeCost() float64 {
	return techSpecs[s.Technology].baseCost * float64(s.Building.Level+1) * 0.75
}

// Status is a coarse human-readable condition.
func (s *PlantState) Status() string {
	switch {
	case !s.Building.Active:
		return "inactive"
	case s.Building.UnderConstruction:
		return "under construction"
	case s.Eff < 0.5:
		return "urgent maintenance required"
	case s.Eff < 0.7:
		return "maintenance recommended"
	default:
		return "operational"
	}
}
