// Package gameevent rolls the global random events: weather spells, an
// economic crash, a baby boom. At most one runs at a time; effects flow
// through the city's global multipliers.
package gameevent

import (
	"fmt"

	"github.com/talgya/energyville/internal/building"
	"github.com/talgya/energyville/internal/city"
	"github.com/talgya/energyville/internal/entropy"
)

// Kind identifies one event type.
type Kind string

const (
	Heatwave       Kind = "heatwave"
	ColdSnap       Kind = "cold_snap"
	EconomicCrisis Kind = "economic_crisis"
	BabyBoom       Kind = "baby_boom"
	GridFailure    Kind = "grid_failure"
)

// triggerChance is rolled once per hour while no event is active, roughly
// one event every eight to ten simulated days.
const triggerChance = 0.005

type spec struct {
	description       string
	minHours          int
	maxHours          int
	demandMultiplier  float64
	revenueMultiplier float64
}

var specs = map[Kind]spec{
	Heatwave:       {"the heat is unbearable, air conditioning demand explodes", 48, 72, 1.5, 1.0},
	ColdSnap:       {"a polar cold grips the city, heating runs flat out", 48, 72, 1.3, 1.0},
	EconomicCrisis: {"the market collapses, revenues drop by 40%", 72, 120, 1.0, 0.6},
	BabyBoom:       {"the city attracts newcomers, housing springs up overnight", 1, 2, 1.0, 1.0},
	GridFailure:    {"magnetic disturbances disrupt power transmission", 12, 24, 1.2, 1.0},
}

func allKinds() []Kind {
	return []Kind{Heatwave, ColdSnap, EconomicCrisis, BabyBoom, GridFailure}
}

// Manager holds at most one live event and its remaining duration.
type Manager struct {
	Active    Kind `json:"active"` // empty when no event runs
	HoursLeft int  `json:"hours_left"`

	rnd *entropy.Source
}

func NewManager(rnd *entropy.Source) *Manager {
	return &Manager{rnd: rnd}
}

// AttachRand reinstalls the random source after a snapshot restore.
func (m *Manager) AttachRand(rnd *entropy.Source) { m.rnd = rnd }

// Update ages the live event or rolls for a new one. Returned strings are
// announcements for the event bus.
func (m *Manager) Update(c *city.City) []string {
	if m.Active != "" {
		m.HoursLeft--
		if m.HoursLeft <= 0 {
			return m.endEvent(c)
		}
		return nil
	}

	if m.rnd.Chance(triggerChance) {
		kinds := allKinds()
		return m.StartEvent(c, kinds[m.rnd.IntN(len(kinds))])
	}
	return nil
}

// StartEvent activates an event immediately; exported so scenarios and
// tests can force one.
func (m *Manager) StartEvent(c *city.City, k Kind) []string {
	s := specs[k]
	notices := []string{fmt.Sprintf("event started: %s. %s", k, s.description)}

	if k == BabyBoom {
		// Instant effect, no running duration.
		notices = append(notices, m.babyBoom(c))
		return notices
	}

	m.Active = k
	m.HoursLeft = s.minHours + m.rnd.IntN(s.maxHours-s.minHours)
	c.DemandMultiplier = s.demandMultiplier
	c.RevenueMultiplier = s.revenueMultiplier
	return notices
}

func (m *Manager) endEvent(c *city.City) []string {
	k := m.Active
	m.Active = ""
	m.HoursLeft = 0
	c.DemandMultiplier = 1.0
	c.RevenueMultiplier = 1.0
	return []string{fmt.Sprintf("event ended: %s", k)}
}

// babyBoom drops three to five basic residences on free cells.
func (m *Manager) babyBoom(c *city.City) string {
	count := 3 + m.rnd.IntN(3)
	placed := 0
	size := c.GridSize()
	for i := 0; i < count; i++ {
		for attempt := 0; attempt < 10; attempt++ {
			r := building.NewResidence(building.TierBasic,
				m.rnd.IntN(size), m.rnd.IntN(size), c.Rand())
			if c.AddBuilding(r) {
				placed++
				break
			}
		}
	}
	return fmt.Sprintf("%d new residences built for the newcomers", placed)
}
