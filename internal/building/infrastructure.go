package building

import "github.com/talgya/energyville/internal/entropy"

// Kind identifies one entry of the infrastructure catalog.
type Kind string

const (
	KindCommercial      Kind = "commercial"
	KindEntertainment   Kind = "entertainment"
	KindStadium         Kind = "stadium"
	KindMuseum          Kind = "museum"
	KindPark            Kind = "park"
	KindBotanicalGarden Kind = "botanical_garden"
	KindHospital        Kind = "hospital"
	KindSchool          Kind = "school"
	KindUniversity      Kind = "university"
	KindLibrary         Kind = "library"
	KindPolice          Kind = "police_station"
	KindFireStation     Kind = "fire_station"
)

// Category groups catalog kinds for the needs model.
type Category string

const (
	CategoryCommerce  Category = "commerce"
	CategoryLeisure   Category = "leisure"
	CategoryHealth    Category = "health"
	CategoryEducation Category = "education"
	CategorySecurity  Category = "security"
)

// kindSpec is one catalog row.
type kindSpec struct {
	happinessBonus    float64
	energyConsumption float64 // kWh/h
	maintenanceCost   float64 // per hour
	constructionCost  float64
	visitorCapacity   int
	revenuePerVisitor float64
	minCityLevel      int
	category          Category
	footprint         int // square, cells per side
}

var kindSpecs = map[Kind]kindSpec{
	KindCommercial:      {3.0, 80, 8, 1500, 200, 0.5, 1, CategoryCommerce, 1},
	KindEntertainment:   {8.0, 150, 15, 4000, 500, 2.0, 2, CategoryLeisure, 1},
	KindStadium:         {15.0, 300, 30, 12500, 2000, 3.0, 5, CategoryLeisure, 3},
	KindMuseum:          {6.0, 80, 12, 2500, 250, 1.0, 3, CategoryLeisure, 1},
	KindPark:            {5.0, 20, 5, 1000, 300, 0, 1, CategoryLeisure, 1},
	KindBotanicalGarden: {7.0, 40, 10, 3000, 250, 1.0, 4, CategoryLeisure, 1},
	KindHospital:        {10.0, 200, 25, 7500, 150, 5.0, 2, CategoryHealth, 2},
	KindSchool:          {7.0, 100, 15, 5000, 400, 0, 2, CategoryEducation, 2},
	KindUniversity:      {12.0, 250, 30, 15000, 800, 2.5, 6, CategoryEducation, 2},
	KindLibrary:         {4.0, 40, 8, 2000, 150, 0, 2, CategoryEducation, 1},
	KindPolice:          {6.0, 80, 20, 3500, 50, 0, 2, CategorySecurity, 1},
	KindFireStation:     {5.0, 60, 18, 3000, 30, 0, 2, CategorySecurity, 1},
}

// AllKinds lists the catalog.
func AllKinds() []Kind {
	return []Kind{
		KindCommercial, KindEntertainment, KindStadium, KindMuseum,
		KindPark, KindBotanicalGarden, KindHospital, KindSchool,
		KindUniversity, KindLibrary, KindPolice, KindFireStation,
	}
}

// KindConstructionCost quotes a catalog kind.
func KindConstructionCost(k Kind) float64 { return kindSpecs[k].constructionCost }

// KindMinCityLevel returns the city level that unlocks the kind.
func KindMinCityLevel(k Kind) int { return kindSpecs[k].minCityLevel }

// KindCategory returns the needs category the kind serves.
func KindCategory(k Kind) Category { return kindSpecs[k].category }

// RandomKindForLevel picks a random catalog kind unlocked at the level;
// falls back to a park, which is always available.
func RandomKindForLevel(level int, rnd *entropy.Source) Kind {
	var unlocked []Kind
	for _, k := range AllKinds() {
		if kindSpecs[k].minCityLevel <= level {
			unlocked = append(unlocked, k)
		}
	}
	if len(unlocked) == 0 {
		return KindPark
	}
	return unlocked[rnd.IntN(len(unlocked))]
}

// Infrastructure is a public facility: a happiness bonus, an energy draw,
// and visitor-driven revenue.
type Infrastructure struct {
	Building Base `json:"building"`

	Kind              Kind    `json:"kind"`
	HappinessBonus    float64 `json:"happiness_bonus"`
	EnergyConsumption float64 `json:"energy_consumption"`
	MaintenanceCost   float64 `json:"maintenance_cost"`
	VisitorCapacity   int     `json:"visitor_capacity"`
	Visitors          int     `json:"visitors"`
	RevenuePerVisitor float64 `json:"revenue_per_visitor"`
	Powered           bool    `json:"powered"`
}

// NewInfrastructure creates a level-1 facility of the given kind.
func NewInfrastructure(kind Kind, x, y int) *Infrastructure {
	spec := kindSpecs[kind]
	inf := &Infrastructure{
		Building:          NewBase(1, x, y),
		Kind:              kind,
		HappinessBonus:    spec.happinessBonus,
		EnergyConsumption: spec.energyConsumption,
		MaintenanceCost:   spec.maintenanceCost,
		VisitorCapacity:   spec.visitorCapacity,
		RevenuePerVisitor: spec.revenuePerVisitor,
		Powered:           true,
	}
	inf.Building.ConstructionCost = spec.constructionCost
	return inf
}

func (i *Infrastructure) Base() *Base  { return &i.Building }
func (i *Infrastructure) Type() string { return string(i.Kind) }

func (i *Infrastructure) Footprint() (int, int) {
	s := kindSpecs[i.Kind].footprint
	return s, s
}

// Update resamples the visitor count inside the occupancy band.
func (i *Infrastructure) Update(env Env) {
	if !i.Building.advanceConstruction() || !i.Building.Active {
		i.Visitors = 0
		return
	}
	occupancy := env.Rand.Range(0.3, 0.8)
	i.Visitors = int(float64(i.VisitorCapacity) * occupancy)
}

// Upgrade raises the bonus, capacity and running costs.
func (i *Infrastructure) Upgrade() bool {
	if !i.Building.CanUpgrade() {
		return false
	}
	i.HappinessBonus *= 1.3
	i.VisitorCapacity = int(float64(i.VisitorCapacity) * 1.5)
	i.EnergyConsumption *= 1.4
	i.MaintenanceCost *= 1.3
	i.Building.beginUpgrade()
	return true
}

// SetPowered marks the facility electrified or not for this hour.
func (i *Infrastructure) SetPowered(on bool) { i.Powered = on }

// HourlyRevenue returns visitor income; zero when inactive or unpowered.
func (i *Infrastructure) HourlyRevenue() float64 {
	if !i.Building.Operational() || !i.Powered {
		return 0
	}
	return float64(i.Visitors) * i.RevenuePerVisitor
}

// HappinessContribution weighs the bonus by current activity; zero when
// inactive or unpowered.
func (i *Infrastructure) HappinessContribution() float64 {
	if !i.Building.Operational() || !i.Powered {
		return 0
	}
	activity := float64(i.Visitors) / float64(i.VisitorCapacity)
	return i.HappinessBonus * (0.5 + activity*0.5)
}
