package economy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/energyville/internal/building"
	"github.com/talgya/energyville/internal/city"
	"github.com/talgya/energyville/internal/entropy"
	"github.com/talgya/energyville/internal/weather"
)

func emptyCity(money float64) *city.City {
	return city.Empty("Testville", money, entropy.NewSource(1), weather.NewField(1))
}

func TestUpdateOnEmptyCityCollectsOnlyTax(t *testing.T) {
	c := emptyCity(1000)
	m := NewManager(c.Clock)

	m.Update(c)

	// No population, no plants: the city-level tax is the whole cash flow.
	assert.Equal(t, 1005.0, c.Money)
	assert.Equal(t, 5.0, m.LastRevenue)
	assert.Equal(t, 0.0, m.LastExpenses)
	assert.Equal(t, 5.0, m.NetIncome())
}

func TestUpdateIsSoleMoneyWriter(t *testing.T) {
	c := emptyCity(1000)
	c.Plants = append(c.Plants, building.NewCoalPlant(1, 0, 0))
	m := NewManager(c.Clock)

	c.AdvanceHour(m.Pass())

	// One pipeline tick moves the budget exactly once, by net income.
	assert.InDelta(t, 1000+m.NetIncome(), c.Money, 1e-9)
	assert.Greater(t, m.LastRevenue, 0.0, "excess power is sold")
	assert.Greater(t, m.LastExpenses, 0.0, "the plant costs upkeep")
}

func TestSurplusEnergyIsSoldAtCurrentPrice(t *testing.T) {
	c := emptyCity(0)
	m := NewManager(c.Clock)
	c.EnergyBalance = 100

	m.Update(c)
	assert.InDelta(t, 100*startingPrice+taxPerCityLevel, m.LastRevenue, 1e-9)
}

func TestRequestLoanCreditsBudget(t *testing.T) {
	c := emptyCity(-5000)
	m := NewManager(c.Clock)

	require.True(t, m.RequestLoan(c))
	assert.Equal(t, 15000.0, c.Money)

	c.Money = -15000
	assert.False(t, m.RequestLoan(c), "past the debt ceiling the bank refuses")
	assert.Equal(t, -15000.0, c.Money)
}

func TestAdjustPriceClampsToBand(t *testing.T) {
	c := emptyCity(0)
	m := NewManager(c.Clock)

	assert.Equal(t, 20.0, m.AdjustPrice(c, 100))
	assert.Equal(t, 1.0, m.AdjustPrice(c, 0.1))
	assert.Equal(t, 12.5, m.AdjustPrice(c, 12.5))
	assert.Equal(t, 12.5, m.ElectricityPrice)
}

func TestInflationBumpsPriceOnMonthStart(t *testing.T) {
	c := emptyCity(0)
	m := NewManager(c.Clock)

	m.applyInflation(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.InDelta(t, startingPrice*(1+annualInflationRate/12), m.ElectricityPrice, 1e-9)

	before := m.ElectricityPrice
	m.applyInflation(time.Date(2025, 2, 1, 1, 0, 0, 0, time.UTC))
	m.applyInflation(time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, before, m.ElectricityPrice, "inflation applies only at the month's first hour")
}

func TestMonthRolloverBuildsReport(t *testing.T) {
	c := emptyCity(1000)
	m := NewManager(c.Clock)
	m.Update(c)
	require.Empty(t, m.LastMonthlyReport)

	c.Clock = c.Clock.AddDate(0, 1, 0)
	m.Update(c)

	assert.Contains(t, m.LastMonthlyReport, "monthly report")
	assert.Equal(t, int(c.Clock.Month()), m.CurrentMonth)
	assert.Equal(t, 5.0, m.MonthlyRevenue, "new month starts from this hour's revenue")
}

func TestTransactionLogIsBounded(t *testing.T) {
	c := emptyCity(0)
	m := NewManager(c.Clock)
	for i := 0; i < 300; i++ {
		m.Record(c.Clock, "entry", 1, TxExpense)
	}
	assert.Len(t, m.Transactions, maxTransactions)
}

func TestFinancialHealthTiers(t *testing.T) {
	c := emptyCity(0)
	m := NewManager(c.Clock)

	c.Money = -1
	assert.Equal(t, HealthCritical, m.FinancialHealth(c))

	c.Money = 3000
	assert.Equal(t, HealthPoor, m.FinancialHealth(c))

	c.Money = 10000
	m.LastRevenue, m.LastExpenses = 100, 50
	assert.Equal(t, HealthModerate, m.FinancialHealth(c))

	c.Money = 50000
	m.LastRevenue, m.LastExpenses = 1000, 100
	assert.Equal(t, HealthExcellent, m.FinancialHealth(c))

	m.LastRevenue, m.LastExpenses = 200, 100
	assert.Equal(t, HealthGood, m.FinancialHealth(c))
}

func TestHoursUntilBankruptcy(t *testing.T) {
	c := emptyCity(1000)
	m := NewManager(c.Clock)

	m.LastRevenue, m.LastExpenses = 10, 0
	assert.Equal(t, -1, m.HoursUntilBankruptcy(c))

	m.LastRevenue, m.LastExpenses = 0, 10
	assert.Equal(t, 100, m.HoursUntilBankruptcy(c))

	c.Money = -5
	assert.Equal(t, 0, m.HoursUntilBankruptcy(c))
}

func TestROI(t *testing.T) {
	m := NewManager(time.Now())
	p := building.NewCoalPlant(1, 0, 0)

	hours := m.ROI(p)
	require.Greater(t, hours, 0.0)
	profit := p.CurrentProduction()*m.ElectricityPrice - p.HourlyCost()
	assert.InDelta(t, p.Base().ConstructionCost/profit, hours, 1e-9)

	idle := building.NewWindTurbine(1, 0, 0)
	idle.Production = 0
	assert.Equal(t, -1.0, m.ROI(idle))
}
