package city

import (
	"github.com/talgya/energyville/internal/building"
)

// Daily evolution probabilities, rolled once at midnight.
const (
	growthChance  = 0.4
	shrinkChance  = 0.3
	upgradeChance = 0.2
	minResidences = 3
)

// dailyEvolution runs the midnight organic growth pass: a thriving city
// sprouts a residence or facility, a failing one loses its emptiest home,
// and occasionally a well-off household upgrades on its own.
func (c *City) dailyEvolution() {
	surplus := c.EnergyBalance > c.TotalDemand*0.2
	if c.Happiness > 70 && surplus && c.rnd.Chance(growthChance) {
		if c.rnd.Chance(0.7) {
			c.spawnResidence()
		} else {
			c.spawnInfrastructure()
		}
	}

	declining := c.Happiness < 30 || c.ConsecutiveUnhappyHours > 72
	if declining && len(c.Residences) > minResidences && c.rnd.Chance(shrinkChance) {
		c.abandonEmptiest()
	}

	if c.Happiness > 80 && c.rnd.Chance(upgradeChance) {
		c.autoUpgradeResidence()
	}
}

// spawnResidence places a new basic residence on a free cell, trying a
// handful of random spots before giving up for the day.
func (c *City) spawnResidence() {
	size := c.GridSize()
	for attempt := 0; attempt < 10; attempt++ {
		x := c.rnd.IntN(size)
		y := c.rnd.IntN(size)
		r := building.NewResidence(building.TierBasic, x, y, c.rnd)
		if !c.OverlapsExisting(r) {
			c.Residences = append(c.Residences, r)
			return
		}
	}
}

// spawnInfrastructure places a random facility unlocked at the current level.
func (c *City) spawnInfrastructure() {
	size := c.GridSize()
	kind := building.RandomKindForLevel(c.Level, c.rnd)
	for attempt := 0; attempt < 10; attempt++ {
		x := c.rnd.IntN(size)
		y := c.rnd.IntN(size)
		inf := building.NewInfrastructure(kind, x, y)
		if !c.OverlapsExisting(inf) {
			c.Infrastructures = append(c.Infrastructures, inf)
			return
		}
	}
}

// abandonEmptiest removes the residence with the fewest inhabitants.
func (c *City) abandonEmptiest() {
	idx := 0
	for i, r := range c.Residences {
		if r.Population < c.Residences[idx].Population {
			idx = i
		}
	}
	c.Residences = append(c.Residences[:idx], c.Residences[idx+1:]...)
}

// autoUpgradeResidence promotes a random upgradeable residence for free;
// prosperity pays for itself.
func (c *City) autoUpgradeResidence() {
	var candidates []*building.Residence
	for _, r := range c.Residences {
		if _, ok := r.Tier.Next(); ok && r.Building.CanUpgrade() {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return
	}
	candidates[c.rnd.IntN(len(candidates))].Upgrade()
}
