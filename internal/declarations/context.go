package declarations

import "github.com/lmnp-erp/lmnp-erp/internal/records"

// BuildContext derives the declaration context from the four raw collections of the user.
// Revenues are restricted to the declaration year, expenses to the year's deductible ones,
// properties and amortizations to the declaration's property selection.
func BuildContext(decl Declaration, revenues []records.Revenue, expenses []records.Expense, properties []records.Property, assets []records.Amortization) Context {
	allowed := records.PropertyAllowlist(decl.Properties)
	props := make([]records.Property, 0, len(properties))
	for _, p := range properties {
		if allowed(p.ID) {
			props = append(props, p)
		}
	}
	return Context{
		Declaration:   decl,
		Totals:        CalculateTotals(decl.Year, revenues, expenses, assets, decl.Properties),
		Revenues:      records.FilterRevenuesByYear(revenues, decl.Year),
		Expenses:      records.FilterExpensesByYear(expenses, decl.Year, true),
		Properties:    props,
		Amortizations: yearAmortizations(assets, decl.Year, decl.Properties),
	}
}
