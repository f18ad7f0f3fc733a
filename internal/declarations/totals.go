package declarations

import (
	"github.com/lmnp-erp/lmnp-erp/internal/amount"
	"github.com/lmnp-erp/lmnp-erp/internal/records"
)

// CalculateTotals aggregates the year's revenues, deductible expenses and the annual
// depreciation of active assets bought on or before December 31. An empty propertyIDs
// list applies no property restriction. Pure and idempotent.
func CalculateTotals(year int, revenues []records.Revenue, expenses []records.Expense, assets []records.Amortization, propertyIDs []string) Totals {
	var t Totals
	for _, r := range records.FilterRevenuesByYear(revenues, year) {
		t.TotalRevenue = amount.Add(t.TotalRevenue, r.Amount.Float64())
	}
	for _, e := range records.FilterExpensesByYear(expenses, year, true) {
		t.TotalExpenses = amount.Add(t.TotalExpenses, e.Amount.Float64())
	}
	for _, a := range yearAmortizations(assets, year, propertyIDs) {
		t.TotalAmortizations = amount.Add(t.TotalAmortizations, a.AnnualAmortization.Float64())
	}
	t.NetResult = amount.Round2(t.TotalRevenue - t.TotalExpenses - t.TotalAmortizations)
	return t
}

// yearAmortizations keeps active assets purchased by the end of year on allowed properties.
func yearAmortizations(assets []records.Amortization, year int, propertyIDs []string) []records.Amortization {
	yearEnd := records.YearPeriod(year).End
	allowed := records.PropertyAllowlist(propertyIDs)
	out := make([]records.Amortization, 0, len(assets))
	for _, a := range assets {
		if !a.IsActive() || a.PurchaseDate.IsZero() || a.PurchaseDate.After(yearEnd.Time) {
			continue
		}
		if !allowed(a.PropertyID) {
			continue
		}
		out = append(out, a)
	}
	return out
}
