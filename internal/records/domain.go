package records

import (
	"time"

	"github.com/lmnp-erp/lmnp-erp/internal/amount"
)

// RevenueType enumerates rental revenue kinds.
type RevenueType string

const (
	RevenueRent    RevenueType = "rent"
	RevenueDeposit RevenueType = "deposit"
	RevenueCharges RevenueType = "charges"
	RevenueOther   RevenueType = "other"
)

// Label returns the French statement label for the revenue type.
func (t RevenueType) Label() string {
	switch t {
	case RevenueRent:
		return "Loyers"
	case RevenueDeposit:
		return "Dépôts de garantie"
	case RevenueCharges:
		return "Charges refacturées"
	case RevenueOther:
		return "Autres produits"
	default:
		return string(t)
	}
}

// ExpenseCategory enumerates the fixed expense categories.
type ExpenseCategory string

const (
	ExpenseMaintenance    ExpenseCategory = "maintenance"
	ExpenseInsurance      ExpenseCategory = "insurance"
	ExpenseTaxes          ExpenseCategory = "taxes"
	ExpenseManagementFees ExpenseCategory = "management_fees"
	ExpenseUtilities      ExpenseCategory = "utilities"
	ExpenseLoanInterest   ExpenseCategory = "loan_interest"
	ExpenseAccounting     ExpenseCategory = "accounting"
	ExpenseFurniture      ExpenseCategory = "furniture"
	ExpenseOther          ExpenseCategory = "other"
)

// ExpenseCategories lists every category in display order.
var ExpenseCategories = []ExpenseCategory{
	ExpenseMaintenance,
	ExpenseInsurance,
	ExpenseTaxes,
	ExpenseManagementFees,
	ExpenseUtilities,
	ExpenseLoanInterest,
	ExpenseAccounting,
	ExpenseFurniture,
	ExpenseOther,
}

// Label returns the French statement label for the category.
func (c ExpenseCategory) Label() string {
	switch c {
	case ExpenseMaintenance:
		return "Entretien et réparations"
	case ExpenseInsurance:
		return "Assurances"
	case ExpenseTaxes:
		return "Impôts et taxes"
	case ExpenseManagementFees:
		return "Frais de gestion"
	case ExpenseUtilities:
		return "Eau, énergie"
	case ExpenseLoanInterest:
		return "Intérêts d'emprunt"
	case ExpenseAccounting:
		return "Honoraires comptables"
	case ExpenseFurniture:
		return "Petit mobilier"
	case ExpenseOther:
		return "Autres charges"
	default:
		return string(c)
	}
}

// AmortizationStatus tracks the depreciation lifecycle of an asset.
type AmortizationStatus string

const (
	AmortizationActive    AmortizationStatus = "active"
	AmortizationCompleted AmortizationStatus = "completed"
	AmortizationDisposed  AmortizationStatus = "disposed"
)

// Revenue is a single rental income record.
type Revenue struct {
	ID          string       `json:"id" toml:"id"`
	PropertyID  string       `json:"property_id" toml:"property_id"`
	Amount      amount.Value `json:"amount" toml:"amount"`
	Date        Date         `json:"date" toml:"date"`
	Description string       `json:"description" toml:"description"`
	Type        RevenueType  `json:"type" toml:"type"`
}

// Expense is a single charge record. Only deductible expenses enter tax totals.
type Expense struct {
	ID          string          `json:"id" toml:"id"`
	PropertyID  string          `json:"property_id" toml:"property_id"`
	Amount      amount.Value    `json:"amount" toml:"amount"`
	Date        Date            `json:"date" toml:"date"`
	Description string          `json:"description" toml:"description"`
	Category    ExpenseCategory `json:"category" toml:"category"`
	Deductible  bool            `json:"deductible" toml:"deductible"`
}

// Amortization is a depreciable asset. AnnualAmortization is precomputed upstream
// as PurchaseAmount / UsefulLifeYears.
type Amortization struct {
	ID                 string             `json:"id" toml:"id"`
	PropertyID         string             `json:"property_id" toml:"property_id"`
	ItemName           string             `json:"item_name" toml:"item_name"`
	Category           string             `json:"category" toml:"category"`
	PurchaseDate       Date               `json:"purchase_date" toml:"purchase_date"`
	PurchaseAmount     amount.Value       `json:"purchase_amount" toml:"purchase_amount"`
	UsefulLifeYears    int                `json:"useful_life_years" toml:"useful_life_years"`
	AnnualAmortization amount.Value       `json:"annual_amortization" toml:"annual_amortization"`
	Status             AmortizationStatus `json:"status" toml:"status"`
}

// IsActive reports whether the asset still accrues depreciation.
func (a Amortization) IsActive() bool {
	return a.Status == AmortizationActive
}

// Property is a rented unit. Only its ID matters to the computations.
type Property struct {
	ID      string `json:"id" toml:"id"`
	Name    string `json:"name" toml:"name"`
	Address string `json:"address" toml:"address"`
}

// Collections bundles the four raw record sets of a user.
type Collections struct {
	Properties    []Property     `json:"properties" toml:"properties"`
	Revenues      []Revenue      `json:"revenues" toml:"revenues"`
	Expenses      []Expense      `json:"expenses" toml:"expenses"`
	Amortizations []Amortization `json:"amortizations" toml:"amortizations"`
}

// Period is an inclusive accounting window, not necessarily calendar aligned.
type Period struct {
	Start Date `json:"start_date"`
	End   Date `json:"end_date"`
}

// YearPeriod returns the calendar year as a period.
func YearPeriod(year int) Period {
	return Period{
		Start: NewDate(year, time.January, 1),
		End:   NewDate(year, time.December, 31),
	}
}

// Valid reports whether both bounds are set and ordered.
func (p Period) Valid() bool {
	if p.Start.IsZero() || p.End.IsZero() {
		return false
	}
	return !p.Start.After(p.End.Time)
}

// Contains reports whether d falls inside the period, bounds included.
func (p Period) Contains(d Date) bool {
	if d.IsZero() {
		return false
	}
	return !d.Before(p.Start.Time) && !d.After(p.End.Time)
}

// Label renders the period for exports.
func (p Period) Label() string {
	return p.Start.String() + " - " + p.End.String()
}
