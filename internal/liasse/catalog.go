package liasse

import (
	"github.com/lmnp-erp/lmnp-erp/internal/accounting/amortization"
	"github.com/lmnp-erp/lmnp-erp/internal/amount"
	"github.com/lmnp-erp/lmnp-erp/internal/declarations"
	"github.com/lmnp-erp/lmnp-erp/internal/records"
)

// FormType identifies a tax form of the liasse.
type FormType string

const (
	Form2031    FormType = "2031"
	Form2031Bis FormType = "2031bis"
	Form2033    FormType = "2033"
)

// Forms lists the forms in filing order.
var Forms = []FormType{Form2031, Form2031Bis, Form2033}

// Valid reports whether f is one of the known forms.
func (f FormType) Valid() bool {
	for _, known := range Forms {
		if f == known {
			return true
		}
	}
	return false
}

// Label returns the French title of the form.
func (f FormType) Label() string {
	switch f {
	case Form2031:
		return "Déclaration de résultats BIC"
	case Form2031Bis:
		return "Annexe 2031 bis - Détail des recettes et charges"
	case Form2033:
		return "Bilan et compte de résultat simplifiés"
	default:
		return string(f)
	}
}

// Category classifies a case for plausibility checks.
type Category string

const (
	CategoryRecettes       Category = "recettes"
	CategoryCharges        Category = "charges"
	CategoryAmortissements Category = "amortissements"
	CategoryResultat       Category = "resultat"
	CategoryDivers         Category = "divers"
)

// CaseDefinition is a catalog entry; Compute derives the automatic value.
type CaseDefinition struct {
	Form     FormType
	Code     string
	Label    string
	Category Category
	Compute  func(declarations.Context) float64
}

// DepreciationCap is the depreciation admitted for the context under the non-deficit rule.
func DepreciationCap(ctx declarations.Context) float64 {
	t := ctx.Totals
	return amortization.Cap(t.TotalRevenue, t.TotalExpenses, t.TotalAmortizations)
}

func taxResult(ctx declarations.Context) float64 {
	return ctx.Totals.TotalRevenue - ctx.Totals.TotalExpenses - DepreciationCap(ctx)
}

func revenuesOfType(kind records.RevenueType) func(declarations.Context) float64 {
	return func(ctx declarations.Context) float64 {
		var total float64
		for _, r := range ctx.Revenues {
			if r.Type == kind {
				total = amount.Add(total, r.Amount.Float64())
			}
		}
		return total
	}
}

func expensesOfCategory(category records.ExpenseCategory) func(declarations.Context) float64 {
	return func(ctx declarations.Context) float64 {
		var total float64
		for _, e := range ctx.Expenses {
			if e.Category == category {
				total = amount.Add(total, e.Amount.Float64())
			}
		}
		return total
	}
}

func grossAssets(ctx declarations.Context) float64 {
	var total float64
	for _, a := range ctx.Amortizations {
		total = amount.Add(total, a.PurchaseAmount.Float64())
	}
	return total
}

// 2031 bis detail codes, one per expense category in records.ExpenseCategories order.
var chargeDetailCodes = map[records.ExpenseCategory]string{
	records.ExpenseMaintenance:    "BC1",
	records.ExpenseInsurance:      "BC2",
	records.ExpenseTaxes:          "BC3",
	records.ExpenseManagementFees: "BC4",
	records.ExpenseUtilities:      "BC5",
	records.ExpenseLoanInterest:   "BC6",
	records.ExpenseAccounting:     "BC7",
	records.ExpenseFurniture:      "BC8",
	records.ExpenseOther:          "BC9",
}

var catalog = buildCatalog()

func buildCatalog() []CaseDefinition {
	defs := []CaseDefinition{
		{Form: Form2031, Code: "5XA", Label: "Nombre de biens loués", Category: CategoryDivers,
			Compute: func(ctx declarations.Context) float64 { return float64(len(ctx.Properties)) }},
		{Form: Form2031, Code: "5XB", Label: "Loyers encaissés", Category: CategoryRecettes,
			Compute: revenuesOfType(records.RevenueRent)},
		{Form: Form2031, Code: "5XC", Label: "Recettes totales", Category: CategoryRecettes,
			Compute: func(ctx declarations.Context) float64 { return ctx.Totals.TotalRevenue }},
		{Form: Form2031, Code: "5XD", Label: "Charges déductibles", Category: CategoryCharges,
			Compute: func(ctx declarations.Context) float64 { return ctx.Totals.TotalExpenses }},
		{Form: Form2031, Code: "5XE", Label: "Amortissements admis en déduction", Category: CategoryAmortissements,
			Compute: DepreciationCap},
		{Form: Form2031, Code: "5XF", Label: "Résultat fiscal", Category: CategoryResultat,
			Compute: taxResult},
		{Form: Form2031, Code: "5XG", Label: "Amortissements différés", Category: CategoryAmortissements,
			Compute: func(ctx declarations.Context) float64 { return ctx.Totals.TotalAmortizations - DepreciationCap(ctx) }},
	}
	for _, category := range records.ExpenseCategories {
		defs = append(defs, CaseDefinition{
			Form:     Form2031Bis,
			Code:     chargeDetailCodes[category],
			Label:    category.Label(),
			Category: CategoryCharges,
			Compute:  expensesOfCategory(category),
		})
	}
	defs = append(defs,
		CaseDefinition{Form: Form2031Bis, Code: "BR1", Label: records.RevenueDeposit.Label(), Category: CategoryRecettes,
			Compute: revenuesOfType(records.RevenueDeposit)},
		CaseDefinition{Form: Form2031Bis, Code: "BR2", Label: records.RevenueCharges.Label(), Category: CategoryRecettes,
			Compute: revenuesOfType(records.RevenueCharges)},
		CaseDefinition{Form: Form2033, Code: "2033A1", Label: "Immobilisations brutes", Category: CategoryDivers,
			Compute: grossAssets},
		CaseDefinition{Form: Form2033, Code: "2033C1", Label: "Dotations aux amortissements de l'exercice", Category: CategoryAmortissements,
			Compute: func(ctx declarations.Context) float64 { return ctx.Totals.TotalAmortizations }},
		CaseDefinition{Form: Form2033, Code: "2058A1", Label: "Recettes", Category: CategoryRecettes,
			Compute: func(ctx declarations.Context) float64 { return ctx.Totals.TotalRevenue }},
		CaseDefinition{Form: Form2033, Code: "2058A2", Label: "Charges", Category: CategoryCharges,
			Compute: func(ctx declarations.Context) float64 { return ctx.Totals.TotalExpenses }},
		CaseDefinition{Form: Form2033, Code: "2058A3", Label: "Amortissements déduits", Category: CategoryAmortissements,
			Compute: DepreciationCap},
		CaseDefinition{Form: Form2033, Code: "2058A4", Label: "Résultat fiscal", Category: CategoryResultat,
			Compute: taxResult},
	)
	return defs
}

// Catalog returns a copy of every case definition in form order.
func Catalog() []CaseDefinition {
	return append([]CaseDefinition(nil), catalog...)
}
