package reports

import (
	"github.com/lmnp-erp/lmnp-erp/internal/accounting/amortization"
	"github.com/lmnp-erp/lmnp-erp/internal/amount"
	"github.com/lmnp-erp/lmnp-erp/internal/records"
)

// AmortizationLineLabel labels the synthetic depreciation expense line.
const AmortizationLineLabel = "Amortissements"

// StatementLine is a labelled amount of a statement section.
type StatementLine struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// IncomeStatement is the compte de résultat of a period.
type IncomeStatement struct {
	Revenues      []StatementLine `json:"revenues"`
	Expenses      []StatementLine `json:"expenses"`
	TotalRevenues float64         `json:"total_revenues"`
	TotalExpenses float64         `json:"total_expenses"`
	NetResult     float64         `json:"net_result"`
	// Amortizations is the prorated depreciation included in TotalExpenses.
	Amortizations float64 `json:"amortizations"`
	// DeductibleAmortizations is the share of Amortizations admitted under the
	// non-deficit rule. Informational only; totals are not affected.
	DeductibleAmortizations float64 `json:"deductible_amortizations"`
}

// lineGroups accumulates amounts by label, keeping first-occurrence order.
type lineGroups struct {
	order  []string
	totals map[string]float64
}

func newLineGroups() *lineGroups {
	return &lineGroups{totals: make(map[string]float64)}
}

func (g *lineGroups) add(label string, value float64) {
	if _, ok := g.totals[label]; !ok {
		g.order = append(g.order, label)
	}
	g.totals[label] = amount.Add(g.totals[label], value)
}

func (g *lineGroups) lines() ([]StatementLine, float64) {
	lines := make([]StatementLine, 0, len(g.order))
	var total float64
	for _, label := range g.order {
		lines = append(lines, StatementLine{Label: label, Amount: g.totals[label]})
		total = amount.Add(total, g.totals[label])
	}
	return lines, total
}

// BuildIncomeStatement groups in-period revenues by type and deductible in-period
// expenses by category, then adds the prorated depreciation of every asset as a
// single expense line.
func BuildIncomeStatement(revenues []records.Revenue, expenses []records.Expense, assets []records.Amortization, period records.Period) IncomeStatement {
	income := newLineGroups()
	for _, r := range records.FilterRevenuesByPeriod(revenues, period) {
		income.add(r.Type.Label(), r.Amount.Float64())
	}

	charges := newLineGroups()
	for _, e := range records.FilterExpensesByPeriod(expenses, period, true) {
		charges.add(e.Category.Label(), e.Amount.Float64())
	}
	var depreciation float64
	for _, a := range assets {
		depreciation = amount.Add(depreciation, amortization.ForPeriod(a, period.Start, period.End))
	}
	if depreciation > 0 {
		charges.add(AmortizationLineLabel, depreciation)
	}

	is := IncomeStatement{Amortizations: depreciation}
	is.Revenues, is.TotalRevenues = income.lines()
	is.Expenses, is.TotalExpenses = charges.lines()
	is.NetResult = amount.Round2(is.TotalRevenues - is.TotalExpenses)
	is.DeductibleAmortizations = amount.Round2(amortization.Cap(is.TotalRevenues, is.TotalExpenses-depreciation, depreciation))
	return is
}
