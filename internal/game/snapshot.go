package game

import (
	"time"

	"github.com/talgya/energyville/internal/building"
	"github.com/talgya/energyville/internal/city"
	"github.com/talgya/energyville/internal/economy"
	"github.com/talgya/energyville/internal/energy"
	"github.com/talgya/energyville/internal/population"
)

// Stats is the headline read-only view.
type Stats struct {
	Name            string    `json:"name"`
	Clock           time.Time `json:"clock"`
	Level           int       `json:"level"`
	Money           float64   `json:"money"`
	Happiness       float64   `json:"happiness"`
	Population      int       `json:"population"`
	Pollution       float64   `json:"pollution"`
	TotalProduction float64   `json:"total_production"`
	TotalDemand     float64   `json:"total_demand"`
	Coverage        float64   `json:"coverage"`
	Speed           string    `json:"speed"`
	State           string    `json:"state"`
	GameOver        bool      `json:"game_over"`
	GameOverReason  string    `json:"game_over_reason,omitempty"`
	FinalScore      int       `json:"final_score,omitempty"`
}

// Stats assembles the headline view under the mutation boundary.
func (s *Session) Stats() Stats {
	var out Stats
	s.TM.Do(func() {
		c := s.City
		out = Stats{
			Name:            c.Name,
			Clock:           c.Clock,
			Level:           c.Level,
			Money:           c.Money,
			Happiness:       c.Happiness,
			Population:      c.Population,
			Pollution:       c.TotalPollution,
			TotalProduction: c.TotalProduction,
			TotalDemand:     c.TotalDemand,
			Coverage:        c.Coverage,
		}
	})
	out.Speed = s.TM.Speed().String()
	out.State = s.TM.CurrentState().String()
	out.GameOver, out.GameOverReason, out.FinalScore = s.TM.GameOver()
	return out
}

// BuildingView is one entity in the building list.
type BuildingView struct {
	ID                string  `json:"id"`
	Type              string  `json:"type"`
	X                 int     `json:"x"`
	Y                 int     `json:"y"`
	Level             int     `json:"level"`
	Active            bool    `json:"active"`
	UnderConstruction bool    `json:"under_construction"`
	Progress          int     `json:"progress"`
	Detail            string  `json:"detail,omitempty"`
	Production        float64 `json:"production,omitempty"`
	Demand            float64 `json:"demand,omitempty"`
	Population        int     `json:"population,omitempty"`
}

// Buildings lists every entity with its family-specific detail.
func (s *Session) Buildings() []BuildingView {
	var out []BuildingView
	s.TM.Do(func() {
		for _, e := range s.City.Buildings() {
			b := e.Base()
			v := BuildingView{
				ID:                b.ID,
				Type:              e.Type(),
				X:                 b.X,
				Y:                 b.Y,
				Level:             b.Level,
				Active:            b.Active,
				UnderConstruction: b.UnderConstruction,
				Progress:          b.Progress,
			}
			switch t := e.(type) {
			case *building.Residence:
				v.Population = t.Population
				v.Demand = t.Demand
			case building.Plant:
				v.Production = t.CurrentProduction()
				v.Detail = t.Status()
			case *building.Infrastructure:
				v.Demand = t.EnergyConsumption
			}
			out = append(out, v)
		}
	})
	return out
}

// EnergyView is the grid snapshot.
type EnergyView struct {
	Production       float64         `json:"production"`
	Demand           float64         `json:"demand"`
	Available        float64         `json:"available"`
	Coverage         float64         `json:"coverage"`
	Stability        float64         `json:"stability"`
	TransmissionLoss float64         `json:"transmission_loss"`
	AverageEff       float64         `json:"average_efficiency"`
	Reserve          float64         `json:"reserve_capacity"`
	Outages          []energy.Outage `json:"outages"`
	NeedMaintenance  int             `json:"plants_needing_maintenance"`
}

func (s *Session) Energy() EnergyView {
	var out EnergyView
	s.TM.Do(func() {
		out = EnergyView{
			Production:       s.City.TotalProduction,
			Demand:           s.City.TotalDemand,
			Available:        s.Grid.AvailableEnergy,
			Coverage:         s.City.Coverage,
			Stability:        s.Grid.Stability,
			TransmissionLoss: s.Grid.TransmissionLoss,
			AverageEff:       s.Grid.AverageEff,
			Reserve:          s.Grid.ReserveCapacity(s.City),
			Outages:          append([]energy.Outage(nil), s.Grid.Outages...),
			NeedMaintenance:  len(energy.PlantsNeedingMaintenance(s.City)),
		}
	})
	return out
}

// EconomyView is the ledger snapshot.
type EconomyView struct {
	Money            float64               `json:"money"`
	ElectricityPrice float64               `json:"electricity_price"`
	LastRevenue      float64               `json:"last_revenue"`
	LastExpenses     float64               `json:"last_expenses"`
	NetIncome        float64               `json:"net_income"`
	MonthlyRevenue   float64               `json:"monthly_revenue"`
	MonthlyExpenses  float64               `json:"monthly_expenses"`
	Health           economy.Health        `json:"health"`
	HoursToBankrupt  int                   `json:"hours_until_bankruptcy"`
	Transactions     []economy.Transaction `json:"transactions"`
	MonthlyReport    string                `json:"monthly_report,omitempty"`
}

func (s *Session) Finances() EconomyView {
	var out EconomyView
	s.TM.Do(func() {
		out = EconomyView{
			Money:            s.City.Money,
			ElectricityPrice: s.Economy.ElectricityPrice,
			LastRevenue:      s.Economy.LastRevenue,
			LastExpenses:     s.Economy.LastExpenses,
			NetIncome:        s.Economy.NetIncome(),
			MonthlyRevenue:   s.Economy.MonthlyRevenue,
			MonthlyExpenses:  s.Economy.MonthlyExpenses,
			Health:           s.Economy.FinancialHealth(s.City),
			HoursToBankrupt:  s.Economy.HoursUntilBankruptcy(s.City),
			Transactions:     append([]economy.Transaction(nil), s.Economy.Transactions...),
			MonthlyReport:    s.Economy.LastMonthlyReport,
		}
	})
	return out
}

// PopulationView is the demographics snapshot.
type PopulationView struct {
	Population    int                         `json:"population"`
	Peak          int                         `json:"peak"`
	Density       float64                     `json:"density"`
	MigrationRate float64                     `json:"migration_rate"`
	Immigration   int                         `json:"immigration"`
	Emigration    int                         `json:"emigration"`
	Needs         map[population.Need]float64 `json:"needs"`
	QualityOfLife float64                     `json:"quality_of_life"`
}

func (s *Session) Demographics() PopulationView {
	var out PopulationView
	s.TM.Do(func() {
		needs := make(map[population.Need]float64, len(s.Population.Needs))
		for k, v := range s.Population.Needs {
			needs[k] = v
		}
		out = PopulationView{
			Population:    s.City.Population,
			Peak:          s.Population.PeakPopulation,
			Density:       s.Population.Density(s.City),
			MigrationRate: s.Population.MigrationRate,
			Immigration:   s.Population.ImmigrationCount,
			Emigration:    s.Population.EmigrationCount,
			Needs:         needs,
			QualityOfLife: s.Population.QualityOfLife(s.City),
		}
	})
	return out
}

// Recommendations merges the advisory lists of every manager.
func (s *Session) Recommendations() []string {
	var out []string
	s.TM.Do(func() {
		out = append(out, s.Grid.Recommendations(s.City)...)
		out = append(out, s.Economy.Recommendations(s.City)...)
		out = append(out, s.Population.Recommendations(s.City)...)
	})
	return out
}

// HistorySamples returns the rolling daily indicators.
func (s *Session) HistorySamples() []city.Sample {
	var out []city.Sample
	s.TM.Do(func() {
		out = append(out, s.City.History.Samples...)
	})
	return out
}
