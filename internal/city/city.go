// Package city owns the building collections and the authoritative per-hour
// update pipeline. Derived quantities (population, pollution, aggregates)
// are recomputed from the collections every tick, never stored drift-prone.
package city

import (
	"fmt"
	"time"

	"github.com/talgya/energyville/internal/building"
	"github.com/talgya/energyville/internal/entropy"
	"github.com/talgya/energyville/internal/weather"
)

// Electrification is binary: at or above this production/demand ratio every
// residence is powered, below it none are. A deliberate simplification.
const ElectrifyThreshold = 0.9

// Terminal thresholds.
const (
	CriticalHappiness  = 5.0
	DebtFloor          = -50000.0
	UnrestHoursLimit   = 168 // one simulated week
	BlackoutRatio      = 0.5
	BlackoutHoursLimit = 240 // ten simulated days
)

// Cause labels a terminal condition.
type Cause string

const (
	CauseNone       Cause = ""
	CauseMisery     Cause = "misery"
	CauseBankruptcy Cause = "bankruptcy"
	CauseUnrest     Cause = "unrest"
	CauseBlackout   Cause = "blackout"
)

// City is the simulation's single source of truth.
type City struct {
	Name    string    `json:"name"`
	Level   int       `json:"level"` // never decreases
	Clock   time.Time `json:"clock"`
	Founded time.Time `json:"founded"`

	Money     float64 `json:"money"` // negative = debt
	Happiness float64 `json:"happiness"`

	Residences      []*building.Residence      `json:"residences"`
	Plants          []building.Plant           `json:"-"`
	Infrastructures []*building.Infrastructure `json:"infrastructures"`

	// Derived each tick.
	Population      int     `json:"population"`
	TotalProduction float64 `json:"total_production"`
	TotalDemand     float64 `json:"total_demand"`
	EnergyBalance   float64 `json:"energy_balance"`
	Coverage        float64 `json:"coverage"` // post-loss delivered/demand
	TotalPollution  float64 `json:"total_pollution"`

	ConsecutiveHappyHours   int `json:"consecutive_happy_hours"`
	ConsecutiveUnhappyHours int `json:"consecutive_unhappy_hours"`
	ShortfallHours          int `json:"shortfall_hours"`

	// Global modifiers set by active game events.
	DemandMultiplier  float64 `json:"demand_multiplier"`
	RevenueMultiplier float64 `json:"revenue_multiplier"`

	History History `json:"history"`

	rnd     *entropy.Source
	weather *weather.Field
}

// New creates a city with the given starting money and a seeded world:
// eight basic residences, one coal plant and a park, matching the classic
// opening board.
func New(name string, startingMoney float64, rnd *entropy.Source, wf *weather.Field) *City {
	c := Empty(name, startingMoney, rnd, wf)
	for i := 0; i < 8; i++ {
		c.Residences = append(c.Residences,
			building.NewResidence(building.TierBasic, 2+(i%4)*3, 2+(i/4)*3, rnd))
	}
	c.Plants = append(c.Plants, building.NewCoalPlant(1, 10, 10))
	c.Infrastructures = append(c.Infrastructures, building.NewInfrastructure(building.KindPark, 7, 2))
	c.refreshPopulation()
	return c
}

// Empty creates a city with no buildings at all; used by tests and by
// snapshot restore.
func Empty(name string, startingMoney float64, rnd *entropy.Source, wf *weather.Field) *City {
	epoch := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &City{
		Name:              name,
		Level:             1,
		Clock:             epoch,
		Founded:           epoch,
		Money:             startingMoney,
		Happiness:         75,
		DemandMultiplier:  1,
		RevenueMultiplier: 1,
		rnd:               rnd,
		weather:           wf,
	}
}

// Rand exposes the injected random source to the managers.
func (c *City) Rand() *entropy.Source { return c.rnd }

// AttachRand reinstalls runtime-only dependencies after a snapshot restore.
func (c *City) AttachRand(rnd *entropy.Source, wf *weather.Field) {
	c.rnd = rnd
	c.weather = wf
	for _, r := range c.Residences {
		r.AttachRand(rnd)
	}
}

// RefreshDerived recomputes every derived aggregate from the collections;
// used after a snapshot restore so queries are valid before the first tick.
func (c *City) RefreshDerived() {
	c.refreshPopulation()
	c.refreshAggregates()
	c.refreshPollution()
}

// Pass is an extra pipeline stage (grid simulation, economy, population)
// run inside AdvanceHour between energy distribution and the derived
// recomputations, in the order given.
type Pass func(c *City)

// AdvanceHour runs one tick of the pipeline in its fixed order:
//
//	clock, residences, plants, infrastructures, aggregates, distribution,
//	passes (grid/economy/population), population sum, happiness,
//	pollution, daily evolution, city level.
func (c *City) AdvanceHour(passes ...Pass) {
	c.Clock = c.Clock.Add(time.Hour)
	hour := c.Clock.Hour()

	env := building.Env{
		Hour:    hour,
		Weather: c.weather.Sample(c.HoursSinceFounding()),
		Rand:    c.rnd,
	}

	for _, r := range c.Residences {
		r.UpdateDemand(hour, c.rnd)
		r.Update(env)
	}
	for _, p := range c.Plants {
		p.Update(env)
	}
	for _, inf := range c.Infrastructures {
		inf.Update(env)
	}

	c.refreshAggregates()
	c.distribute()

	for _, pass := range passes {
		pass(c)
	}

	c.refreshPopulation()
	c.refreshHappiness()
	c.refreshPollution()

	if hour == 0 {
		c.dailyEvolution()
		c.History.Append(c.Money, c.Happiness, c.EnergyBalance)
	}
	c.refreshLevel()
}

// HoursSinceFounding is the absolute simulated-hour counter.
func (c *City) HoursSinceFounding() int64 {
	return int64(c.Clock.Sub(c.Founded) / time.Hour)
}

func (c *City) refreshAggregates() {
	prod := 0.0
	for _, p := range c.Plants {
		if p.Base().Active {
			prod += p.CurrentProduction()
		}
	}
	demand := 0.0
	for _, r := range c.Residences {
		demand += r.Demand
	}
	for _, inf := range c.Infrastructures {
		if inf.Building.Active {
			demand += inf.EnergyConsumption
		}
	}
	c.TotalProduction = prod
	c.TotalDemand = demand * c.DemandMultiplier
	c.EnergyBalance = c.TotalProduction - c.TotalDemand
}

// EnergyRatio is production over demand; 1.0 when there is no demand.
func (c *City) EnergyRatio() float64 {
	if c.TotalDemand <= 0 {
		return 1.0
	}
	return c.TotalProduction / c.TotalDemand
}

// distribute applies the binary electrification rule on the raw ratio. The
// grid simulator pass re-applies it on post-loss, post-outage energy.
func (c *City) distribute() {
	c.ApplyCoverage(c.EnergyRatio())
}

// ApplyCoverage records the delivered/demand ratio and powers or cuts the
// whole city accordingly.
func (c *City) ApplyCoverage(ratio float64) {
	c.Coverage = ratio
	c.SetElectrified(ratio >= ElectrifyThreshold)
}

// SetElectrified powers (or cuts) every residence and infrastructure.
func (c *City) SetElectrified(on bool) {
	for _, r := range c.Residences {
		r.SetPowered(on)
	}
	for _, inf := range c.Infrastructures {
		inf.SetPowered(on)
	}
}

// refreshPopulation recomputes the total as the exact sum over residences.
func (c *City) refreshPopulation() {
	pop := 0
	for _, r := range c.Residences {
		pop += r.Population
	}
	c.Population = pop
}

func (c *City) refreshHappiness() {
	ratio := c.Coverage
	switch {
	case ratio < 0.7:
		c.Happiness -= 2.0
	case ratio < ElectrifyThreshold:
		c.Happiness -= 0.5
	case ratio >= 1.0:
		c.Happiness += 0.2
	}

	if len(c.Residences) > 0 {
		sum := 0.0
		for _, r := range c.Residences {
			sum += r.Satisfaction
		}
		avg := sum / float64(len(c.Residences))
		c.Happiness = c.Happiness*0.7 + avg*0.3
	}

	infra := 0.0
	for _, inf := range c.Infrastructures {
		infra += inf.HappinessContribution()
	}
	perCapita := float64(c.Population) / 100.0
	if perCapita < 1 {
		perCapita = 1
	}
	c.Happiness += infra / perCapita * 0.1

	if c.TotalPollution > float64(c.Population)/10.0 {
		c.Happiness -= 0.3
	}

	if c.Happiness < 0 {
		c.Happiness = 0
	} else if c.Happiness > 100 {
		c.Happiness = 100
	}

	switch {
	case c.Happiness > 70:
		c.ConsecutiveHappyHours++
		c.ConsecutiveUnhappyHours = 0
	case c.Happiness < 30:
		c.ConsecutiveUnhappyHours++
		c.ConsecutiveHappyHours = 0
	default:
		c.ConsecutiveHappyHours = 0
		c.ConsecutiveUnhappyHours = 0
	}

	if ratio < BlackoutRatio {
		c.ShortfallHours++
	} else {
		c.ShortfallHours = 0
	}
}

func (c *City) refreshPollution() {
	total := 0.0
	for _, p := range c.Plants {
		if p.Base().Active {
			total += p.HourlyPollution()
		}
	}
	c.TotalPollution = total
}

// levelSteps maps population thresholds to city levels; the staircase only
// ever goes up.
var levelSteps = []struct {
	population int
	level      int
}{
	{5000, 10}, {3000, 8}, {2000, 7}, {1500, 6},
	{1000, 5}, {700, 4}, {500, 3}, {250, 2},
}

func (c *City) refreshLevel() {
	next := 1
	for _, s := range levelSteps {
		if c.Population >= s.population {
			next = s.level
			break
		}
	}
	if next > c.Level {
		c.Level = next
	}
}

// GameOver evaluates the terminal predicate. Causes are checked in a fixed
// priority order so the reported reason is stable.
func (c *City) GameOver() (Cause, string) {
	switch {
	case c.Happiness <= CriticalHappiness:
		return CauseMisery, "the last inhabitants have abandoned the city"
	case c.Money < DebtFloor:
		return CauseBankruptcy, fmt.Sprintf("the city is bankrupt (%.0f in debt)", -c.Money)
	case c.ConsecutiveUnhappyHours > UnrestHoursLimit:
		return CauseUnrest, "a week of sustained unhappiness has cost you the city hall"
	case c.ShortfallHours > BlackoutHoursLimit:
		return CauseBlackout, "the grid has failed to cover half the demand for days"
	}
	return CauseNone, ""
}

// CanAfford reports whether the budget covers a cost.
func (c *City) CanAfford(cost float64) bool { return c.Money >= cost }

// Spend debits the budget; callers must have checked affordability for
// player-facing commands.
func (c *City) Spend(amount float64) { c.Money -= amount }

// Buildings returns every entity for overlap checks and lookups.
func (c *City) Buildings() []building.Entity {
	out := make([]building.Entity, 0, len(c.Residences)+len(c.Plants)+len(c.Infrastructures))
	for _, r := range c.Residences {
		out = append(out, r)
	}
	for _, p := range c.Plants {
		out = append(out, p)
	}
	for _, inf := range c.Infrastructures {
		out = append(out, inf)
	}
	return out
}

// OverlapsExisting reports whether a candidate footprint collides with any
// existing building.
func (c *City) OverlapsExisting(e building.Entity) bool {
	for _, other := range c.Buildings() {
		if other.Base().ID == e.Base().ID {
			continue
		}
		if building.Overlaps(e, other) {
			return true
		}
	}
	return false
}

// FindBuilding looks an entity up by ID.
func (c *City) FindBuilding(id string) (building.Entity, bool) {
	for _, e := range c.Buildings() {
		if e.Base().ID == id {
			return e, true
		}
	}
	return nil, false
}

// AddBuilding appends the entity to its collection, rejecting overlaps.
func (c *City) AddBuilding(e building.Entity) bool {
	if c.OverlapsExisting(e) {
		return false
	}
	switch b := e.(type) {
	case *building.Residence:
		c.Residences = append(c.Residences, b)
	case building.Plant:
		c.Plants = append(c.Plants, b)
	case *building.Infrastructure:
		c.Infrastructures = append(c.Infrastructures, b)
	default:
		return false
	}
	return true
}

// RemoveBuilding deletes the entity and refunds half its construction cost.
func (c *City) RemoveBuilding(id string) bool {
	for i, r := range c.Residences {
		if r.Building.ID == id {
			c.Residences = append(c.Residences[:i], c.Residences[i+1:]...)
			c.Money += r.Building.ConstructionCost * 0.5
			c.refreshPopulation()
			return true
		}
	}
	for i, p := range c.Plants {
		if p.Base().ID == id {
			c.Plants = append(c.Plants[:i], c.Plants[i+1:]...)
			c.Money += p.Base().ConstructionCost * 0.5
			return true
		}
	}
	for i, inf := range c.Infrastructures {
		if inf.Building.ID == id {
			c.Infrastructures = append(c.Infrastructures[:i], c.Infrastructures[i+1:]...)
			c.Money += inf.Building.ConstructionCost * 0.5
			return true
		}
	}
	return false
}

// GridSize returns the side length of the buildable grid, which widens as
// the city levels up.
func (c *City) GridSize() int { return 10 + (c.Level-1)*5 }
