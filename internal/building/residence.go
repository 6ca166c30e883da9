package building

import "github.com/talgya/energyville/internal/entropy"

// Tier is the residence class: population, demand and revenue bands.
type Tier int

const (
	TierBasic Tier = iota + 1
	TierMedium
	TierAdvanced
)

// tierSpec is the catalog row for one residence tier.
type tierSpec struct {
	name             string
	minPop, maxPop   int
	minDemand        float64 // kWh/h
	maxDemand        float64
	minRevenue       float64 // per hour, at reference population
	maxRevenue       float64
	constructionCost float64
}

var tierSpecs = map[Tier]tierSpec{
	TierBasic:    {"basic", 20, 50, 50, 100, 80, 150, 2000},
	TierMedium:   {"medium", 50, 100, 100, 200, 200, 350, 5000},
	TierAdvanced: {"advanced", 100, 200, 200, 400, 500, 800, 12000},
}

func (t Tier) String() string { return tierSpecs[t].name }

// ConstructionCost returns the quoted build price for the tier.
func (t Tier) ConstructionCost() float64 { return tierSpecs[t].constructionCost }

// Next returns the tier above, or the same tier at the top.
func (t Tier) Next() (Tier, bool) {
	if t >= TierAdvanced {
		return t, false
	}
	return t + 1, true
}

// Residence houses people, demands power and pays bills. Satisfaction drives
// stochastic population growth and decline.
type Residence struct {
	Building Base `json:"building"`

	Tier              Tier    `json:"tier"`
	Population        int     `json:"population"`
	BaseDemand        float64 `json:"base_demand"`
	Demand            float64 `json:"demand"` // time-of-day adjusted
	Satisfaction      float64 `json:"satisfaction"`
	RevenuePerHour    float64 `json:"revenue_per_hour"`
	Powered           bool    `json:"powered"`
	HoursWithoutPower int     `json:"hours_without_power"`

	rnd *entropy.Source
}

// NewResidence creates a residence with a randomized population and demand
// inside the tier's band.
func NewResidence(tier Tier, x, y int, rnd *entropy.Source) *Residence {
	r := &Residence{
		Building:     NewBase(int(tier), x, y),
		Tier:         tier,
		Satisfaction: 75,
		Powered:      true,
		rnd:          rnd,
	}
	r.Building.ConstructionCost = tierSpecs[tier].constructionCost
	r.rollPopulation()
	r.recalc()
	return r
}

func (r *Residence) Base() *Base           { return &r.Building }
func (r *Residence) Type() string          { return "residence_" + r.Tier.String() }
func (r *Residence) Footprint() (int, int) { return 1, 1 }

func (r *Residence) rollPopulation() {
	spec := tierSpecs[r.Tier]
	r.Population = spec.minPop + r.rnd.IntN(spec.maxPop-spec.minPop+1)
}

// recalc rederives demand and revenue from the current population.
func (r *Residence) recalc() {
	spec := tierSpecs[r.Tier]
	r.BaseDemand = r.rnd.Range(spec.minDemand, spec.maxDemand) * (float64(r.Population) / 35.0)
	r.Demand = r.BaseDemand
	r.RevenuePerHour = r.rnd.Range(spec.minRevenue, spec.maxRevenue) * (float64(r.Population) / 50.0)
}

// UpdateDemand applies the time-of-day multiplier plus a little jitter.
func (r *Residence) UpdateDemand(hour int, rnd *entropy.Source) {
	r.Demand = r.BaseDemand * HourlyDemandMultiplier(hour) * rnd.Range(0.95, 1.05)
}

// HourlyDemandMultiplier is the demand curve: night trough, morning peak,
// daytime plateau, evening peak, late-evening moderate.
func HourlyDemandMultiplier(hour int) float64 {
	switch {
	case hour < 6:
		return 0.4
	case hour < 9:
		return 1.5
	case hour < 17:
		return 0.8
	case hour < 22:
		return 1.8
	default:
		return 1.0
	}
}

// Update runs the hourly satisfaction drift and stochastic population change.
func (r *Residence) Update(env Env) {
	if !r.Building.advanceConstruction() {
		return
	}

	if !r.Powered {
		r.HoursWithoutPower++
		r.Satisfaction -= 2.0
	} else {
		r.HoursWithoutPower = 0
		r.Satisfaction += 0.5
	}
	r.Satisfaction = clamp(r.Satisfaction, 0, 100)

	// Households leave when life is miserable, arrive when it is good.
	if r.Satisfaction < 20 && env.Rand.Chance(0.1) {
		r.Population -= 5
		if r.Population < 5 {
			r.Population = 5
		}
		r.recalc()
	}
	if r.Satisfaction > 60 && r.Powered && env.Rand.Chance(0.05) {
		r.Population += env.Rand.IntN(3) + 1
		r.recalc()
	}
}

// Upgrade moves the residence to the next tier, adding residents and a
// satisfaction boost. Fails at the top tier or while under construction.
func (r *Residence) Upgrade() bool {
	if !r.Building.CanUpgrade() {
		return false
	}
	next, ok := r.Tier.Next()
	if !ok {
		return false
	}
	r.Tier = next
	r.Population += 30 + r.rnd.IntN(20)
	r.Satisfaction = clamp(r.Satisfaction+10, 0, 100)
	r.recalc()
	r.Building.beginUpgrade()
	r.Building.Level = int(next)
	return true
}

// UpgradeCost quotes the next tier at a 30% discount over a fresh build.
func (r *Residence) UpgradeCost() float64 {
	next, ok := r.Tier.Next()
	if !ok {
		return 0
	}
	return tierSpecs[next].constructionCost * 0.7
}

// AddResidents moves people in and rederives demand and revenue.
func (r *Residence) AddResidents(n int) {
	if n <= 0 {
		return
	}
	r.Population += n
	r.recalc()
}

// RemoveResidents moves people out, never below a skeleton household.
func (r *Residence) RemoveResidents(n int) {
	if n <= 0 {
		return
	}
	r.Population -= n
	if r.Population < 5 {
		r.Population = 5
	}
	r.recalc()
}

// SetPowered marks the residence electrified or not for this hour.
func (r *Residence) SetPowered(on bool) { r.Powered = on }

// HourlyRevenue returns the billing income; unpowered homes pay a fraction.
func (r *Residence) HourlyRevenue() float64 {
	if r.Powered {
		return r.RevenuePerHour
	}
	return r.RevenuePerHour * 0.3
}

// AttachRand reinstalls the random source after a snapshot restore.
func (r *Residence) AttachRand(rnd *entropy.Source) { r.rnd = rnd }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
