package building

import "math"

// Coal plant economics.
const (
	coalStartingReserve = 200.0 // tons
	coalKgPerKWh        = 0.4
	CoalPricePerTon     = 100.0
)

// CoalPlant burns a depletable reserve. Cheap and steady, very dirty.
type CoalPlant struct {
	PlantState

	Reserve         float64 `json:"reserve"`          // tons
	ConsumptionRate float64 `json:"consumption_rate"` // kg per kWh
}

// NewCoalPlant creates a coal plant with a full starting reserve.
func NewCoalPlant(level, x, y int) *CoalPlant {
	return &CoalPlant{
		PlantState:      newPlantState(TechCoal, level, x, y),
		Reserve:         coalStartingReserve,
		ConsumptionRate: coalKgPerKWh,
	}
}

// Update produces up to what the remaining reserve allows; the reserve hits
// exactly zero, never negative.
func (c *CoalPlant) Update(env Env) {
	if !c.preTick() {
		return
	}

	want := c.MaxProduction * c.Eff
	needTons := want * c.ConsumptionRate / 1000.0
	if needTons <= c.Reserve {
		c.Production = want
		c.Reserve -= needTons
	} else {
		// Partial hour on the last of the pile.
		c.Production = c.Reserve * 1000.0 / c.ConsumptionRate
		c.Reserve = 0
	}

	c.postTick()
}

// BuyCoal adds tons to the reserve and returns the purchase cost.
func (c *CoalPlant) BuyCoal(tons float64) float64 {
	c.Reserve += tons
	return tons * CoalPricePerTon
}

// HourlyCost includes the fuel burned this hour.
func (c *CoalPlant) HourlyCost() float64 {
	fuel := c.Production * c.ConsumptionRate / 1000.0 * CoalPricePerTon
	return c.PlantState.HourlyCost() + fuel
}

// HoursUntilEmpty estimates runway at the current burn rate.
func (c *CoalPlant) HoursUntilEmpty() float64 {
	if c.Production == 0 {
		return math.Inf(1)
	}
	return c.Reserve / (c.Production * c.ConsumptionRate / 1000.0)
}

func (c *CoalPlant) Status() string {
	if c.Reserve <= 0 && c.Building.Operational() {
		return "out of coal"
	}
	return c.PlantState.Status()
}
