// Package game is the command boundary: every player-facing operation, with
// business rules checked up front and reported as results, never errors.
package game

import (
	"fmt"

	"github.com/talgya/energyville/internal/building"
	"github.com/talgya/energyville/internal/city"
	"github.com/talgya/energyville/internal/economy"
	"github.com/talgya/energyville/internal/energy"
	"github.com/talgya/energyville/internal/engine"
	"github.com/talgya/energyville/internal/entropy"
	"github.com/talgya/energyville/internal/gameevent"
	"github.com/talgya/energyville/internal/population"
	"github.com/talgya/energyville/internal/weather"
)

// Result reports a command outcome. Rejections are expected and frequent;
// they never surface as errors.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func accepted(format string, args ...any) Result {
	return Result{OK: true, Message: fmt.Sprintf(format, args...)}
}

func rejected(format string, args ...any) Result {
	return Result{OK: false, Message: fmt.Sprintf(format, args...)}
}

// Below this city level only one plant per technology may exist.
const singlePlantLevel = 2

// Session bundles the city, its managers and the scheduler behind one
// mutation boundary.
type Session struct {
	TM *engine.TimeManager

	City       *city.City
	Grid       *energy.Simulator
	Economy    *economy.Manager
	Population *population.Manager
	Events     *gameevent.Manager
}

// NewSession builds a fresh game from a seed and starting money.
func NewSession(name string, startingMoney float64, seed int64, speed engine.Speed) *Session {
	rnd := entropy.NewSource(seed)
	wf := weather.NewField(seed)
	c := city.New(name, startingMoney, rnd, wf)
	return Assemble(c, rnd, speed)
}

// Assemble wires managers and scheduler around an existing city; used by
// NewSession and by snapshot restore.
func Assemble(c *city.City, rnd *entropy.Source, speed engine.Speed) *Session {
	s := &Session{
		City:       c,
		Grid:       energy.NewSimulator(rnd),
		Economy:    economy.NewManager(c.Clock),
		Population: population.NewManager(rnd),
		Events:     gameevent.NewManager(rnd),
	}
	s.TM = engine.NewTimeManager(c, s.Grid, s.Economy, s.Population, s.Events, speed)
	return s
}

// Start and Stop control the background loop.
func (s *Session) Start() { s.TM.Start() }
func (s *Session) Stop()  { s.TM.Stop() }

// AddListener registers an event observer.
func (s *Session) AddListener(l engine.Listener) { s.TM.AddListener(l) }

func (s *Session) terminalGuard() (Result, bool) {
	if over, reason, _ := s.TM.GameOver(); over {
		return rejected("game over: %s", reason), false
	}
	return Result{}, true
}

// ConstructPowerPlant builds a level-1 plant of the technology at (x,y).
func (s *Session) ConstructPowerPlant(tech building.Tech, x, y int) Result {
	var res Result
	s.TM.Do(func() {
		if r, ok := s.terminalGuard(); !ok {
			res = r
			return
		}
		c := s.City
		if required := building.TechMinCityLevel(tech); c.Level < required {
			res = rejected("%s plants unlock at city level %d (current %d)",
				tech, required, c.Level)
			return
		}
		if c.Level <= singlePlantLevel && s.countPlants(tech) >= 1 {
			res = rejected("only one %s plant allowed until city level %d",
				tech, singlePlantLevel+1)
			return
		}
		cost := building.TechConstructionCost(tech, 1)
		if !c.CanAfford(cost) {
			res = rejected("insufficient funds: need %.0f, short %.0f",
				cost, cost-c.Money)
			return
		}
		p := newPlant(tech, x, y)
		p.Base().StartConstruction()
		if !c.AddBuilding(p) {
			res = rejected("placement at (%d,%d) overlaps an existing building", x, y)
			return
		}
		c.Spend(cost)
		s.Economy.Record(c.Clock, fmt.Sprintf("construct %s plant", tech), cost, economy.TxConstruction)
		res = accepted("%s plant under construction at (%d,%d)", tech, x, y)
	})
	return res
}

func newPlant(tech building.Tech, x, y int) building.Plant {
	switch tech {
	case building.TechSolar:
		return building.NewSolarPlant(1, x, y)
	case building.TechWind:
		return building.NewWindTurbine(1, x, y)
	case building.TechNuclear:
		return building.NewNuclearPlant(1, x, y)
	default:
		return building.NewCoalPlant(1, x, y)
	}
}

func (s *Session) countPlants(tech building.Tech) int {
	n := 0
	for _, p := range s.City.Plants {
		if p.Tech() == tech {
			n++
		}
	}
	return n
}

// ConstructInfrastructure builds a catalog facility at (x,y).
func (s *Session) ConstructInfrastructure(kind building.Kind, x, y int) Result {
	var res Result
	s.TM.Do(func() {
		if r, ok := s.terminalGuard(); !ok {
			res = r
			return
		}
		c := s.City
		if required := building.KindMinCityLevel(kind); c.Level < required {
			res = rejected("%s unlocks at city level %d (current %d)", kind, required, c.Level)
			return
		}
		cost := building.KindConstructionCost(kind)
		if !c.CanAfford(cost) {
			res = rejected("insufficient funds: need %.0f, short %.0f", cost, cost-c.Money)
			return
		}
		inf := building.NewInfrastructure(kind, x, y)
		inf.Building.StartConstruction()
		if !c.AddBuilding(inf) {
			res = rejected("placement at (%d,%d) overlaps an existing building", x, y)
			return
		}
		c.Spend(cost)
		s.Economy.Record(c.Clock, fmt.Sprintf("construct %s", kind), cost, economy.TxConstruction)
		res = accepted("%s under construction at (%d,%d)", kind, x, y)
	})
	return res
}

// UpgradeBuilding raises a building one level for its quoted cost.
func (s *Session) UpgradeBuilding(id string) Result {
	var res Result
	s.TM.Do(func() {
		if r, ok := s.terminalGuard(); !ok {
			res = r
			return
		}
		e, found := s.City.FindBuilding(id)
		if !found {
			res = rejected("no building with id %s", id)
			return
		}
		cost := upgradeQuote(e)
		if cost <= 0 {
			res = rejected("%s is already at maximum level", e.Type())
			return
		}
		if !s.City.CanAfford(cost) {
			res = rejected("insufficient funds: need %.0f, short %.0f", cost, cost-s.City.Money)
			return
		}
		if !e.Upgrade() {
			res = rejected("%s cannot be upgraded right now", e.Type())
			return
		}
		s.City.Spend(cost)
		s.Economy.Record(s.City.Clock, fmt.Sprintf("upgrade %s", e.Type()), cost, economy.TxUpgrade)
		res = accepted("%s upgraded to level %d", e.Type(), e.Base().Level)
	})
	return res
}

func upgradeQuote(e building.Entity) float64 {
	switch b := e.(type) {
	case *building.Residence:
		return b.UpgradeCost()
	case building.Plant:
		if !b.Base().CanUpgrade() {
			return 0
		}
		return b.UpgradeCost()
	default:
		return e.Base().UpgradeCost()
	}
}

// DemolishBuilding removes a building and refunds half its construction cost.
func (s *Session) DemolishBuilding(id string) Result {
	var res Result
	s.TM.Do(func() {
		e, found := s.City.FindBuilding(id)
		if !found {
			res = rejected("no building with id %s", id)
			return
		}
		refund := e.Base().ConstructionCost * 0.5
		s.City.RemoveBuilding(id)
		s.Economy.Record(s.City.Clock, fmt.Sprintf("demolish %s", e.Type()), refund, economy.TxAdjustment)
		res = accepted("%s demolished, %.0f refunded", e.Type(), refund)
	})
	return res
}

// ToggleBuilding flips a building's active flag.
func (s *Session) ToggleBuilding(id string) Result {
	var res Result
	s.TM.Do(func() {
		e, found := s.City.FindBuilding(id)
		if !found {
			res = rejected("no building with id %s", id)
			return
		}
		e.Base().ToggleActive()
		state := "deactivated"
		if e.Base().Active {
			state = "activated"
		}
		res = accepted("%s %s", e.Type(), state)
	})
	return res
}

// PerformMaintenance services a plant for its quoted cost.
func (s *Session) PerformMaintenance(id string) Result {
	var res Result
	s.TM.Do(func() {
		p, found := s.findPlant(id)
		if !found {
			res = rejected("no plant with id %s", id)
			return
		}
		quote := p.MaintenanceQuote()
		if !s.City.CanAfford(quote) {
			res = rejected("insufficient funds: need %.0f, short %.0f", quote, quote-s.City.Money)
			return
		}
		cost := p.PerformMaintenance()
		s.City.Spend(cost)
		s.Economy.Record(s.City.Clock, fmt.Sprintf("maintain %s plant", p.Tech()), cost, economy.TxMaintenance)
		res = accepted("%s plant serviced for %.0f, efficiency %.0f%%",
			p.Tech(), cost, p.Efficiency()*100)
	})
	return res
}

func (s *Session) findPlant(id string) (building.Plant, bool) {
	for _, p := range s.City.Plants {
		if p.Base().ID == id {
			return p, true
		}
	}
	return nil, false
}

// BuyCoal restocks a coal plant's reserve.
func (s *Session) BuyCoal(id string, tons float64) Result {
	var res Result
	s.TM.Do(func() {
		p, found := s.findPlant(id)
		if !found {
			res = rejected("no plant with id %s", id)
			return
		}
		cp, isCoal := p.(*building.CoalPlant)
		if !isCoal {
			res = rejected("%s plant does not burn coal", p.Tech())
			return
		}
		if tons <= 0 {
			res = rejected("coal order must be positive")
			return
		}
		cost := tons * building.CoalPricePerTon
		if !s.City.CanAfford(cost) {
			res = rejected("insufficient funds: need %.0f, short %.0f", cost, cost-s.City.Money)
			return
		}
		cp.BuyCoal(tons)
		s.City.Spend(cost)
		s.Economy.Record(s.City.Clock, fmt.Sprintf("buy %.0f t of coal", tons), cost, economy.TxMaintenance)
		res = accepted("%.0f tons of coal delivered, reserve %.0f t", tons, cp.Reserve)
	})
	return res
}

// RefuelNuclear buys enriched fuel for a reactor.
func (s *Session) RefuelNuclear(id string, kg float64) Result {
	var res Result
	s.TM.Do(func() {
		n, found := s.findNuclear(id)
		if !found {
			res = rejected("no nuclear plant with id %s", id)
			return
		}
		if kg <= 0 {
			res = rejected("fuel order must be positive")
			return
		}
		cost := kg * building.NuclearFuelPerKg
		if !s.City.CanAfford(cost) {
			res = rejected("insufficient funds: need %.0f, short %.0f", cost, cost-s.City.Money)
			return
		}
		n.Refuel(kg)
		s.City.Spend(cost)
		s.Economy.Record(s.City.Clock, fmt.Sprintf("refuel reactor with %.0f kg", kg), cost, economy.TxMaintenance)
		res = accepted("%.0f kg of fuel loaded, reserve %.0f kg", kg, n.Fuel)
	})
	return res
}

func (s *Session) findNuclear(id string) (*building.NuclearPlant, bool) {
	p, found := s.findPlant(id)
	if !found {
		return nil, false
	}
	n, isNuclear := p.(*building.NuclearPlant)
	return n, isNuclear
}

// EmergencyShutdown scrams a reactor.
func (s *Session) EmergencyShutdown(id string) Result {
	var res Result
	s.TM.Do(func() {
		n, found := s.findNuclear(id)
		if !found {
			res = rejected("no nuclear plant with id %s", id)
			return
		}
		n.EmergencyShutdown()
		res = accepted("reactor shut down, cooling from %.0f°C", n.Temperature)
	})
	return res
}

// RestartNuclear brings a reactor back if it is inside safe bounds.
func (s *Session) RestartNuclear(id string) Result {
	var res Result
	s.TM.Do(func() {
		n, found := s.findNuclear(id)
		if !found {
			res = rejected("no nuclear plant with id %s", id)
			return
		}
		if !n.Restart() {
			res = rejected("restart refused: safety %.2f, temperature %.0f°C, fuel %.0f kg outside safe bounds",
				n.SafetyLevel, n.Temperature, n.Fuel)
			return
		}
		res = accepted("reactor back online")
	})
	return res
}

// AdjustElectricityPrice sets the excess-power sale price.
func (s *Session) AdjustElectricityPrice(price float64) Result {
	var res Result
	s.TM.Do(func() {
		applied := s.Economy.AdjustPrice(s.City, price)
		res = accepted("electricity price set to %.2f per kWh", applied)
	})
	return res
}

// RequestLoan asks for the emergency loan.
func (s *Session) RequestLoan() Result {
	var res Result
	s.TM.Do(func() {
		if !s.Economy.RequestLoan(s.City) {
			res = rejected("loan refused: debt already exceeds the ceiling")
			return
		}
		res = accepted("emergency loan granted, balance %.0f", s.City.Money)
	})
	return res
}

// Speed and pause controls.
func (s *Session) SetSpeed(name string) Result {
	s.TM.SetSpeed(engine.ParseSpeed(name))
	return accepted("speed set to %s", s.TM.Speed())
}

func (s *Session) IncreaseSpeed() Result {
	s.TM.IncreaseSpeed()
	return accepted("speed set to %s", s.TM.Speed())
}

func (s *Session) DecreaseSpeed() Result {
	s.TM.DecreaseSpeed()
	return accepted("speed set to %s", s.TM.Speed())
}

func (s *Session) TogglePause() Result {
	s.TM.TogglePause()
	return accepted("simulation %s", s.TM.CurrentState())
}

// SkipHours fast-forwards n simulated hours synchronously.
func (s *Session) SkipHours(n int) Result {
	if n <= 0 {
		return rejected("hours to skip must be positive")
	}
	if n > 720 {
		return rejected("cannot skip more than a month at once")
	}
	s.TM.SkipHours(n)
	return accepted("advanced %d hours to %s", n, s.clockStamp())
}

// SkipToNextDay fast-forwards to the coming midnight.
func (s *Session) SkipToNextDay() Result {
	s.TM.SkipToNextDay()
	return accepted("advanced to %s", s.clockStamp())
}

// SkipToNextMonth fast-forwards to the first hour of next month.
func (s *Session) SkipToNextMonth() Result {
	s.TM.SkipToNextMonth()
	return accepted("advanced to %s", s.clockStamp())
}

func (s *Session) clockStamp() string {
	var stamp string
	s.TM.Do(func() { stamp = s.City.Clock.Format("2006-01-02 15:00") })
	return stamp
}
