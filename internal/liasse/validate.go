package liasse

import (
	"fmt"
	"math"

	"github.com/lmnp-erp/lmnp-erp/internal/declarations"
)

// Severity grades a validation issue. Neither level blocks generation.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// GlobalForm tags issues that span forms.
const GlobalForm = "global"

// Global issue codes.
const (
	CodeResult = "RESULT"
	CodeCap    = "CAP"
)

const identityTolerance = 1.0

// ValidationIssue is an advisory finding on the mapped forms.
type ValidationIssue struct {
	Form     string   `json:"form"`
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

type identity struct {
	form     FormType
	result   string
	plus     string
	minus    []string
	severity Severity
}

var identities = []identity{
	{form: Form2031, result: "5XF", plus: "5XC", minus: []string{"5XD", "5XE"}, severity: SeverityError},
	{form: Form2033, result: "2058A4", plus: "2058A1", minus: []string{"2058A2", "2058A3"}, severity: SeverityWarning},
}

// ValidateFormMappings checks form arithmetic on the stated values, flags implausible
// charges and depreciation, and reports result divergence and depreciation capping.
func ValidateFormMappings(mappings []FormMapping, ctx declarations.Context) []ValidationIssue {
	issues := make([]ValidationIssue, 0)
	byForm := make(map[FormType]FormMapping, len(mappings))
	for _, m := range mappings {
		byForm[m.Form] = m
	}

	for _, id := range identities {
		m, ok := byForm[id.form]
		if !ok {
			continue
		}
		stated, ok := m.Case(id.result)
		if !ok {
			continue
		}
		expected := caseValue(m, id.plus)
		for _, code := range id.minus {
			expected -= caseValue(m, code)
		}
		if math.Abs(stated.Value-expected) > identityTolerance {
			issues = append(issues, ValidationIssue{
				Form:     string(id.form),
				Code:     id.result,
				Severity: id.severity,
				Message:  fmt.Sprintf("La case %s (%.2f) devrait valoir %.2f", id.result, stated.Value, expected),
			})
		}
	}

	ceiling := 2 * ctx.Totals.TotalRevenue
	for _, m := range mappings {
		for _, c := range m.Cases {
			if c.Category != CategoryCharges && c.Category != CategoryAmortissements {
				continue
			}
			if c.Value > ceiling {
				issues = append(issues, ValidationIssue{
					Form:     string(m.Form),
					Code:     c.Code,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("Montant %.2f supérieur au double des recettes (%.2f)", c.Value, ctx.Totals.TotalRevenue),
				})
			}
		}
	}

	t := ctx.Totals
	depreciationCap := DepreciationCap(ctx)
	theoretical := t.TotalRevenue - t.TotalExpenses - depreciationCap
	if math.Abs(theoretical-t.NetResult) > identityTolerance {
		issues = append(issues, ValidationIssue{
			Form:     GlobalForm,
			Code:     CodeResult,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Résultat fiscal %.2f différent du résultat comptable %.2f", theoretical, t.NetResult),
		})
	}
	if depreciationCap < t.TotalAmortizations {
		issues = append(issues, ValidationIssue{
			Form:     GlobalForm,
			Code:     CodeCap,
			Severity: SeverityWarning,
			Message: fmt.Sprintf("Amortissements plafonnés à %.2f sur %.2f, %.2f reportés",
				depreciationCap, t.TotalAmortizations, t.TotalAmortizations-depreciationCap),
		})
	}
	return issues
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []ValidationIssue) bool {
	for _, is := range issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

func caseValue(m FormMapping, code string) float64 {
	c, _ := m.Case(code)
	return c.Value
}
