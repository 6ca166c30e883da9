// Package building holds the city's entities: residences, power plants and
// public infrastructure. Each entity owns its own per-hour update; the city
// aggregate only reads the results.
package building

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/energyville/internal/entropy"
	"github.com/talgya/energyville/internal/weather"
)

// Env is the per-tick environment handed to every entity update.
type Env struct {
	Hour    int // hour of day, 0-23
	Weather weather.Conditions
	Rand    *entropy.Source
}

// Base carries the state every building shares. Positions are grid cells.
type Base struct {
	ID                string  `json:"id"`
	X                 int     `json:"x"`
	Y                 int     `json:"y"`
	Level             int     `json:"level"` // 1-5
	Active            bool    `json:"active"`
	ConstructionCost  float64 `json:"construction_cost"`
	UnderConstruction bool    `json:"under_construction"`
	Progress          int     `json:"progress"` // 0-100
}

// NewBase creates a completed, active building at the given cell.
func NewBase(level, x, y int) Base {
	return Base{
		ID:       uuid.NewString(),
		X:        x,
		Y:        y,
		Level:    clampLevel(level),
		Active:   true,
		Progress: 100,
	}
}

func clampLevel(l int) int {
	if l < 1 {
		return 1
	}
	if l > 5 {
		return 5
	}
	return l
}

// Construction advances 5% per hour.
const constructionStep = 5

// advanceConstruction moves an in-progress build forward one hour.
// Returns true once the building is operational.
func (b *Base) advanceConstruction() bool {
	if b.UnderConstruction && b.Progress < 100 {
		b.Progress += constructionStep
		if b.Progress >= 100 {
			b.Progress = 100
			b.UnderConstruction = false
		}
	}
	return !b.UnderConstruction
}

// Operational reports whether the building is active and fully built.
func (b *Base) Operational() bool {
	return b.Active && !b.UnderConstruction
}

// CanUpgrade reports whether another level is available.
func (b *Base) CanUpgrade() bool {
	return b.Level < 5 && !b.UnderConstruction
}

// UpgradeCost quotes the price of the next level.
func (b *Base) UpgradeCost() float64 {
	if b.Level >= 5 {
		return 0
	}
	return b.ConstructionCost * float64(b.Level) * 0.6
}

// StartConstruction puts a freshly placed building into its build phase.
func (b *Base) StartConstruction() {
	b.UnderConstruction = true
	b.Progress = 0
}

// beginUpgrade bumps the level and puts the building back into construction.
func (b *Base) beginUpgrade() {
	b.Level = clampLevel(b.Level + 1)
	b.UnderConstruction = true
	b.Progress = 0
}

// ToggleActive flips the active flag.
func (b *Base) ToggleActive() {
	b.Active = !b.Active
}

// Entity is the capability set shared by every building family.
type Entity interface {
	Base() *Base
	Type() string
	Footprint() (w, h int)
	Update(env Env)
	Upgrade() bool
}

// Overlaps reports whether two footprints intersect on the grid.
func Overlaps(a, b Entity) bool {
	ab, bb := a.Base(), b.Base()
	aw, ah := a.Footprint()
	bw, bh := b.Footprint()
	return ab.X < bb.X+bw && bb.X < ab.X+aw &&
		ab.Y < bb.Y+bh && bb.Y < ab.Y+ah
}

// Describe returns a short human-readable identity line.
func Describe(e Entity) string {
	b := e.Base()
	return fmt.Sprintf("%s (level %d) at (%d,%d)", e.Type(), b.Level, b.X, b.Y)
}
