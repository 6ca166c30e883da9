// Package economy owns the city's ledger. It is the only writer of the
// city's money during a tick; plant and infrastructure costs are read from
// the buildings, never mutated there.
package economy

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/energyville/internal/building"
	"github.com/talgya/energyville/internal/city"
)

// Billing and policy constants, per hour unless noted.
const (
	billingPerCapita     = 0.50
	taxPerCityLevel      = 5.0
	adminCostPerCapita   = 0.02
	startingPrice        = 8.0 // excess-power sale price per kWh
	minPrice             = 1.0
	maxPrice             = 20.0
	annualInflationRate  = 0.02
	maxTransactions      = 100
	loanAmount           = 20000.0
	loanDebtCeiling      = -10000.0
)

// TransactionType labels a ledger entry.
type TransactionType string

const (
	TxRevenue      TransactionType = "revenue"
	TxExpense      TransactionType = "expense"
	TxConstruction TransactionType = "construction"
	TxUpgrade      TransactionType = "upgrade"
	TxMaintenance  TransactionType = "maintenance"
	TxLoan         TransactionType = "loan"
	TxAdjustment   TransactionType = "adjustment"
)

// Transaction is one bounded-log ledger entry.
type Transaction struct {
	At          time.Time       `json:"at"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type"`
}

// Health is the ordered financial classification.
type Health string

const (
	HealthCritical  Health = "critical"
	HealthPoor      Health = "poor"
	HealthModerate  Health = "moderate"
	HealthGood      Health = "good"
	HealthExcellent Health = "excellent"
)

// Manager accumulates revenue and expenses and applies them to the budget
// once per tick.
type Manager struct {
	ElectricityPrice float64 `json:"electricity_price"`

	LastRevenue  float64 `json:"last_revenue"`
	LastExpenses float64 `json:"last_expenses"`

	MonthlyRevenue  float64 `json:"monthly_revenue"`
	MonthlyExpenses float64 `json:"monthly_expenses"`
	CurrentMonth    int     `json:"current_month"`

	TotalRevenue  float64 `json:"total_revenue"`
	TotalExpenses float64 `json:"total_expenses"`

	Transactions []Transaction `json:"transactions"`

	LastMonthlyReport string `json:"last_monthly_report"`
}

// NewManager starts the ledger aligned to the city clock's month.
func NewManager(now time.Time) *Manager {
	return &Manager{
		ElectricityPrice: startingPrice,
		CurrentMonth:     int(now.Month()),
	}
}

// Pass returns the pipeline stage for the city tick.
func (m *Manager) Pass() city.Pass {
	return func(c *city.City) { m.Update(c) }
}

// Update runs one ledger hour: month rollover, hourly finances, inflation.
func (m *Manager) Update(c *city.City) {
	m.checkNewMonth(c)
	m.applyHourlyFinances(c)
	m.applyInflation(c.Clock)
}

func (m *Manager) checkNewMonth(c *city.City) {
	month := int(c.Clock.Month())
	if month == m.CurrentMonth {
		return
	}
	m.LastMonthlyReport = m.buildMonthlyReport()
	m.MonthlyRevenue = 0
	m.MonthlyExpenses = 0
	m.CurrentMonth = month
}

func (m *Manager) applyHourlyFinances(c *city.City) {
	revenue := float64(c.Population) * billingPerCapita
	if c.EnergyBalance > 0 {
		revenue += c.EnergyBalance * m.ElectricityPrice
	}
	revenue += float64(c.Level) * taxPerCityLevel
	for _, inf := range c.Infrastructures {
		revenue += inf.HourlyRevenue()
	}
	revenue *= c.RevenueMultiplier

	expenses := float64(c.Population) * adminCostPerCapita
	for _, p := range c.Plants {
		if p.Base().Active {
			expenses += p.HourlyCost()
		}
	}
	for _, inf := range c.Infrastructures {
		if inf.Building.Active {
			expenses += inf.MaintenanceCost
		}
	}

	c.Money += revenue - expenses

	m.LastRevenue = revenue
	m.LastExpenses = expenses
	m.MonthlyRevenue += revenue
	m.MonthlyExpenses += expenses
	m.TotalRevenue += revenue
	m.TotalExpenses += expenses

	m.Record(c.Clock, "hourly revenue", revenue, TxRevenue)
	m.Record(c.Clock, "hourly expenses", expenses, TxExpense)
}

// applyInflation bumps the sale price on the first hour of each month.
func (m *Manager) applyInflation(now time.Time) {
	if now.Day() == 1 && now.Hour() == 0 {
		m.ElectricityPrice *= 1 + annualInflationRate/12
	}
}

// Record appends a ledger entry, evicting the oldest past the cap.
func (m *Manager) Record(at time.Time, desc string, amount float64, t TransactionType) {
	m.Transactions = append(m.Transactions, Transaction{
		At: at, Description: desc, Amount: amount, Type: t,
	})
	if len(m.Transactions) > maxTransactions {
		m.Transactions = m.Transactions[len(m.Transactions)-maxTransactions:]
	}
}

// NetIncome is the last tick's revenue minus expenses.
func (m *Manager) NetIncome() float64 { return m.LastRevenue - m.LastExpenses }

// MonthlyNetIncome is the running balance of the current month.
func (m *Manager) MonthlyNetIncome() float64 { return m.MonthlyRevenue - m.MonthlyExpenses }

// FinancialHealth classifies the budget and the trend, worst tier first.
func (m *Manager) FinancialHealth(c *city.City) Health {
	net := m.NetIncome()
	switch {
	case c.Money < 0:
		return HealthCritical
	case c.Money < 5000 || net < -100:
		return HealthPoor
	case c.Money < 20000 || net < 0:
		return HealthModerate
	case net > 500:
		return HealthExcellent
	}
	return HealthGood
}

// HoursUntilBankruptcy projects the runway at the current burn rate.
// Returns -1 while the city earns money, 0 when it is already broke.
func (m *Manager) HoursUntilBankruptcy(c *city.City) int {
	net := m.NetIncome()
	if net >= 0 {
		return -1
	}
	if c.Money <= 0 {
		return 0
	}
	return int(c.Money / -net)
}

// RequestLoan grants the emergency loan unless the city is already too deep
// in debt. The refusal is a reported failure, not an error.
func (m *Manager) RequestLoan(c *city.City) bool {
	if c.Money < loanDebtCeiling {
		return false
	}
	c.Money += loanAmount
	m.Record(c.Clock, "emergency loan", loanAmount, TxLoan)
	return true
}

// AdjustPrice sets the excess-power sale price inside the allowed band and
// returns the applied value.
func (m *Manager) AdjustPrice(c *city.City, price float64) float64 {
	if price < minPrice {
		price = minPrice
	} else if price > maxPrice {
		price = maxPrice
	}
	m.ElectricityPrice = price
	m.Record(c.Clock, "electricity price adjusted", 0, TxAdjustment)
	return price
}

// ROI estimates the hours to amortize a building at current output; -1
// when it never pays for itself.
func (m *Manager) ROI(e building.Entity) float64 {
	var hourlyProfit float64
	switch b := e.(type) {
	case building.Plant:
		hourlyProfit = b.CurrentProduction()*m.ElectricityPrice - b.HourlyCost()
	case *building.Infrastructure:
		hourlyProfit = b.HourlyRevenue() - b.MaintenanceCost
	}
	if hourlyProfit <= 0 {
		return -1
	}
	return e.Base().ConstructionCost / hourlyProfit
}

// Recommendations returns treasury guidance for the current books.
func (m *Manager) Recommendations(c *city.City) []string {
	var recs []string
	net := m.NetIncome()

	if c.Money < 5000 {
		recs = append(recs, "budget is critical, cut expenses now")
	}
	if net < -50 {
		recs = append(recs, fmt.Sprintf(
			"running a deficit of %s per hour, raise production or trim maintenance",
			humanize.Commaf(-net)))
	}

	unprofitable := 0
	for _, p := range c.Plants {
		if p.HourlyCost() > p.CurrentProduction()*m.ElectricityPrice {
			unprofitable++
		}
	}
	if unprofitable > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d plant(s) cost more than they earn", unprofitable))
	}

	if c.Money > 100000 && net > 1000 {
		recs = append(recs, "budget surplus, consider new investments")
	}
	if len(c.Plants) < 3 && c.Population > 500 {
		recs = append(recs, "diversify energy sources")
	}
	return recs
}

func (m *Manager) buildMonthlyReport() string {
	return fmt.Sprintf("monthly report: revenue %s, expenses %s, net %s",
		humanize.Commaf(m.MonthlyRevenue),
		humanize.Commaf(m.MonthlyExpenses),
		humanize.Commaf(m.MonthlyNetIncome()))
}
