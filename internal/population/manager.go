// Package population tracks what the inhabitants need and how the city's
// attractiveness moves people in and out.
package population

import (
	"fmt"

	"github.com/talgya/energyville/internal/building"
	"github.com/talgya/energyville/internal/city"
	"github.com/talgya/energyville/internal/entropy"
)

// Need is one axis of the inhabitants' satisfaction.
type Need string

const (
	NeedEnergy    Need = "energy"
	NeedHealth    Need = "health"
	NeedEducation Need = "education"
	NeedSecurity  Need = "security"
	NeedLeisure   Need = "leisure"
	NeedCommerce  Need = "commerce"
)

// AllNeeds lists the axes in display order.
func AllNeeds() []Need {
	return []Need{NeedEnergy, NeedHealth, NeedEducation, NeedSecurity, NeedLeisure, NeedCommerce}
}

// Capacity served per facility, in inhabitants. A hospital covers 150
// people fully; beyond that the score decays.
const (
	hospitalCoverage  = 150.0
	educationCoverage = 400.0
	securityCoverage  = 100.0
	leisureCoverage   = 300.0
	commerceCoverage  = 200.0
)

// Migration is evaluated every migrationPeriod simulated hours.
const migrationPeriod = 6

// Manager recomputes needs each tick and rolls migration periodically.
type Manager struct {
	Needs map[Need]float64 `json:"needs"`

	ImmigrationCount int     `json:"immigration_count"`
	EmigrationCount  int     `json:"emigration_count"`
	MigrationRate    float64 `json:"migration_rate"` // % per period
	PeakPopulation   int     `json:"peak_population"`

	PreviousPopulation int `json:"previous_population"`

	rnd *entropy.Source
}

// NewManager starts with full energy satisfaction and neutral everything else.
func NewManager(rnd *entropy.Source) *Manager {
	m := &Manager{
		Needs: map[Need]float64{NeedEnergy: 100},
		rnd:   rnd,
	}
	for _, n := range AllNeeds()[1:] {
		m.Needs[n] = 50
	}
	return m
}

// AttachRand reinstalls the random source after a snapshot restore.
func (m *Manager) AttachRand(rnd *entropy.Source) { m.rnd = rnd }

// Pass returns the pipeline stage for the city tick.
func (m *Manager) Pass() city.Pass {
	return func(c *city.City) { m.Update(c) }
}

// Update recomputes needs, rolls migration on the period boundary and
// tracks the population peak.
func (m *Manager) Update(c *city.City) {
	m.updateNeeds(c)

	if c.Clock.Hour()%migrationPeriod == 0 {
		m.handleMigration(c)
	}

	if c.Population > m.PeakPopulation {
		m.PeakPopulation = c.Population
	}
}

func (m *Manager) updateNeeds(c *city.City) {
	if c.Population == 0 {
		return
	}
	pop := float64(c.Population)

	m.Needs[NeedEnergy] = min100(c.Coverage * 100)
	m.Needs[NeedHealth] = coverageScore(c, pop, hospitalCoverage, building.CategoryHealth)
	m.Needs[NeedEducation] = coverageScore(c, pop, educationCoverage, building.CategoryEducation)
	m.Needs[NeedSecurity] = coverageScore(c, pop, securityCoverage, building.CategorySecurity)
	m.Needs[NeedLeisure] = coverageScore(c, pop, leisureCoverage, building.CategoryLeisure)
	m.Needs[NeedCommerce] = coverageScore(c, pop, commerceCoverage, building.CategoryCommerce)
}

// coverageScore is the saturating per-capita coverage of one category.
func coverageScore(c *city.City, pop, perFacility float64, cat building.Category) float64 {
	count := 0
	for _, inf := range c.Infrastructures {
		if building.KindCategory(inf.Kind) == cat {
			count++
		}
	}
	return min100(float64(count) * perFacility / pop * 100)
}

// Attractiveness blends happiness with average needs satisfaction.
func (m *Manager) Attractiveness(c *city.City) float64 {
	return c.Happiness*0.6 + m.AverageNeeds()*0.4
}

// AverageNeeds is the mean over all axes.
func (m *Manager) AverageNeeds() float64 {
	if len(m.Needs) == 0 {
		return 50
	}
	sum := 0.0
	for _, v := range m.Needs {
		sum += v
	}
	return sum / float64(len(m.Needs))
}

func (m *Manager) handleMigration(c *city.City) {
	attr := m.Attractiveness(c)

	if attr > 60 && m.rnd.Chance(0.3) {
		m.immigrate(c, int((attr-60)/10))
	}
	if attr < 40 && m.rnd.Chance(0.4) {
		m.emigrate(c, int((40-attr)/10))
	}

	if m.PreviousPopulation > 0 {
		m.MigrationRate = float64(c.Population-m.PreviousPopulation) /
			float64(m.PreviousPopulation) * 100
	}
	m.PreviousPopulation = c.Population
}

// immigrate settles newcomers into random residences.
func (m *Manager) immigrate(c *city.City, intensity int) {
	if len(c.Residences) == 0 || c.Money <= 5000 || !m.rnd.Chance(0.5) {
		return
	}
	arrivals := 5 + m.rnd.IntN(intensity*3+1)
	for i := 0; i < arrivals; i++ {
		r := c.Residences[m.rnd.IntN(len(c.Residences))]
		r.AddResidents(1)
	}
	m.ImmigrationCount += arrivals
}

// emigrate drains random residences.
func (m *Manager) emigrate(c *city.City, intensity int) {
	if len(c.Residences) == 0 {
		return
	}
	departures := 3 + m.rnd.IntN(intensity*2+1)
	for i := 0; i < departures; i++ {
		r := c.Residences[m.rnd.IntN(len(c.Residences))]
		r.RemoveResidents(1)
	}
	m.EmigrationCount += departures
}

// Density is inhabitants per residence.
func (m *Manager) Density(c *city.City) float64 {
	if len(c.Residences) == 0 {
		return 0
	}
	return float64(c.Population) / float64(len(c.Residences))
}

// QualityOfLife blends needs and happiness and docks a pollution penalty.
func (m *Manager) QualityOfLife(c *city.City) float64 {
	penalty := c.TotalPollution / 10
	if penalty > 20 {
		penalty = 20
	}
	score := m.AverageNeeds()*0.5 + c.Happiness*0.5 - penalty
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// UnsatisfiedNeeds returns the axes below the halfway mark.
func (m *Manager) UnsatisfiedNeeds() map[Need]float64 {
	out := map[Need]float64{}
	for n, v := range m.Needs {
		if v < 50 {
			out[n] = v
		}
	}
	return out
}

var needAdvice = map[Need]string{
	NeedEnergy:    "raise electricity production",
	NeedHealth:    "build a hospital",
	NeedEducation: "build schools",
	NeedSecurity:  "build a police or fire station",
	NeedLeisure:   "create leisure spaces",
	NeedCommerce:  "develop commercial zones",
}

// Recommendations returns need-targeted guidance.
func (m *Manager) Recommendations(c *city.City) []string {
	var recs []string
	for _, n := range AllNeeds() {
		if v := m.Needs[n]; v < 30 {
			recs = append(recs, fmt.Sprintf("%s (%s at %.0f%%)", needAdvice[n], n, v))
		}
	}
	if m.Density(c) > 100 {
		recs = append(recs, "high density, build more housing")
	}
	if m.MigrationRate < -5 {
		recs = append(recs, "heavy emigration, improve living conditions")
	}
	return recs
}

func min100(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}
