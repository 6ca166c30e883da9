// Package energy simulates the grid between generation and delivery:
// stability, transmission losses and outages all shave the raw production
// before the city decides whether the lights stay on.
package energy

import (
	"fmt"

	"github.com/talgya/energyville/internal/building"
	"github.com/talgya/energyville/internal/city"
	"github.com/talgya/energyville/internal/entropy"
)

// Stability band boundaries, as production/demand ratios.
const (
	optimalLow  = 1.0
	optimalHigh = 1.25
	shortageLow = 0.8
	overshoot   = 1.5
)

// Outage is a live incident taking a share of delivery offline.
type Outage struct {
	HoursLeft     int     `json:"hours_left"`
	AffectedShare float64 `json:"affected_share"` // 0.1-0.5
	Reason        string  `json:"reason"`
}

// Simulator carries the grid state between ticks.
type Simulator struct {
	Stability        float64  `json:"stability"` // 0-100
	TransmissionLoss float64  `json:"transmission_loss"`
	Outages          []Outage `json:"outages"`
	AvailableEnergy  float64  `json:"available_energy"`
	AverageEff       float64  `json:"average_efficiency"`

	rnd *entropy.Source
}

// NewSimulator starts with a perfectly stable grid.
func NewSimulator(rnd *entropy.Source) *Simulator {
	return &Simulator{Stability: 100, rnd: rnd}
}

// AttachRand reinstalls the random source after a snapshot restore.
func (s *Simulator) AttachRand(rnd *entropy.Source) { s.rnd = rnd }

// Pass returns the pipeline stage for the city tick.
func (s *Simulator) Pass() city.Pass {
	return func(c *city.City) { s.Update(c) }
}

// Update runs one grid hour: stability drift, loss estimate, outage
// lifecycle, then the delivered-energy coverage decision.
func (s *Simulator) Update(c *city.City) {
	ratio := c.EnergyRatio()
	s.updateStability(ratio, c.Plants)
	s.updateTransmissionLoss(c)
	s.updateOutages(c.Plants)

	delivered := c.TotalProduction * (1 - s.TransmissionLoss) * (1 - s.outageShare())
	s.AvailableEnergy = delivered
	s.AverageEff = averageEfficiency(c.Plants)

	coverage := 1.0
	if c.TotalDemand > 0 {
		coverage = delivered / c.TotalDemand
	}
	c.ApplyCoverage(coverage)
}

// updateStability drifts the score toward the supply/demand band the grid
// is in, plus a markdown for plants running on fumes.
func (s *Simulator) updateStability(ratio float64, plants []building.Plant) {
	switch {
	case ratio >= optimalLow && ratio <= optimalHigh:
		s.Stability++
	case ratio < shortageLow:
		s.Stability--
	case ratio < optimalLow:
		s.Stability -= 0.2
	case ratio > overshoot:
		if s.Stability > 90 {
			s.Stability -= 0.1
			if s.Stability < 90 {
				s.Stability = 90
			}
		}
	}

	for _, p := range plants {
		if p.Base().Operational() && p.Efficiency() < 0.4 {
			s.Stability -= 0.05
		}
	}

	if s.Stability < 0 {
		s.Stability = 0
	} else if s.Stability > 100 {
		s.Stability = 100
	}
}

// updateTransmissionLoss grows with grid sprawl and shrinks on a stable
// grid, capped at 15%.
func (s *Simulator) updateTransmissionLoss(c *city.City) {
	loss := 0.05 + 0.0002*float64(len(c.Buildings()))
	if s.Stability > 80 {
		loss *= 0.8
	}
	if loss > 0.15 {
		loss = 0.15
	}
	s.TransmissionLoss = loss
}

// updateOutages ages the live incidents first, then rolls for new ones.
func (s *Simulator) updateOutages(plants []building.Plant) {
	kept := s.Outages[:0]
	for _, o := range s.Outages {
		o.HoursLeft--
		if o.HoursLeft > 0 {
			kept = append(kept, o)
		}
	}
	s.Outages = kept

	if s.Stability < 30 && s.rnd.Chance(0.05) {
		s.startOutage("grid instability")
	}
	if s.rnd.Chance(0.001) {
		s.startOutage("equipment failure")
	}
	for _, p := range plants {
		if n, ok := p.(*building.NuclearPlant); ok && n.InDanger() {
			if s.rnd.Chance(0.10) {
				s.startOutage("nuclear plant at critical risk")
			}
		}
	}
}

func (s *Simulator) startOutage(reason string) {
	s.Outages = append(s.Outages, Outage{
		HoursLeft:     1 + s.rnd.IntN(6),
		AffectedShare: s.rnd.Range(0.1, 0.5),
		Reason:        reason,
	})
}

// outageShare sums the live incident shares, capped at full blackout.
func (s *Simulator) outageShare() float64 {
	total := 0.0
	for _, o := range s.Outages {
		total += o.AffectedShare
	}
	if total > 1 {
		total = 1
	}
	return total
}

func averageEfficiency(plants []building.Plant) float64 {
	if len(plants) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range plants {
		sum += p.Efficiency()
	}
	return sum / float64(len(plants))
}

// PlantsNeedingMaintenance lists the plants flagged by their own check.
func PlantsNeedingMaintenance(c *city.City) []building.Plant {
	var out []building.Plant
	for _, p := range c.Plants {
		if p.NeedsMaintenance() {
			out = append(out, p)
		}
	}
	return out
}

// ReserveCapacity is the headroom between installed capacity at current
// efficiency and the present demand.
func (s *Simulator) ReserveCapacity(c *city.City) float64 {
	capacity := 0.0
	for _, p := range c.Plants {
		if p.Base().Operational() {
			capacity += p.MaxCapacity() * p.Efficiency()
		}
	}
	return capacity - c.TotalDemand
}

// Recommendations returns operator guidance for the current grid state.
func (s *Simulator) Recommendations(c *city.City) []string {
	var recs []string
	if c.EnergyRatio() < 1.0 {
		recs = append(recs, fmt.Sprintf(
			"production covers only %.0f%% of demand, build or upgrade plants",
			c.EnergyRatio()*100))
	}
	if s.Stability < 50 {
		recs = append(recs, fmt.Sprintf(
			"grid stability is down to %.0f, balance supply against demand", s.Stability))
	}
	if needing := PlantsNeedingMaintenance(c); len(needing) > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d plant(s) need maintenance", len(needing)))
	}
	for _, p := range c.Plants {
		if n, ok := p.(*building.NuclearPlant); ok && n.InDanger() {
			recs = append(recs, "a nuclear plant is at critical risk, maintain or shut it down")
		}
		if cp, ok := p.(*building.CoalPlant); ok {
			if h := cp.HoursUntilEmpty(); h > 0 && h < 48 {
				recs = append(recs, fmt.Sprintf(
					"a coal plant runs out of fuel in about %.0f hours", h))
			}
		}
	}
	if s.TransmissionLoss > 0.10 {
		recs = append(recs, fmt.Sprintf(
			"transmission losses reached %.1f%%", s.TransmissionLoss*100))
	}
	return recs
}
