package reports

import (
	"fmt"
	"math"

	"github.com/lmnp-erp/lmnp-erp/internal/amount"
)

// CheckStatus grades a consistency finding.
type CheckStatus string

const (
	CheckOK      CheckStatus = "ok"
	CheckWarning CheckStatus = "warning"
)

// Check codes.
const (
	CheckBalance = "balance"
	CheckResult  = "result"
	CheckLedger  = "ledger"
)

// ConsistencyCheck is an advisory finding; it never blocks generation.
type ConsistencyCheck struct {
	Code    string      `json:"code"`
	Label   string      `json:"label"`
	Status  CheckStatus `json:"status"`
	Gap     float64     `json:"gap"`
	Message string      `json:"message"`
}

// CheckConsistency compares balance sheet sides and the income statement result.
func CheckConsistency(bs BalanceSheet, is IncomeStatement) []ConsistencyCheck {
	balance := ConsistencyCheck{
		Code:    CheckBalance,
		Label:   "Équilibre du bilan",
		Status:  CheckOK,
		Message: "Actif et passif sont équilibrés",
	}
	if !bs.IsBalanced {
		balance.Status = CheckWarning
		balance.Gap = bs.BalanceGap
		balance.Message = fmt.Sprintf("Écart actif/passif de %.2f", bs.BalanceGap)
	}

	gap := math.Abs(is.NetResult - (is.TotalRevenues - is.TotalExpenses))
	result := ConsistencyCheck{
		Code:    CheckResult,
		Label:   "Cohérence du résultat",
		Status:  CheckOK,
		Message: "Le résultat correspond aux produits moins les charges",
	}
	if gap >= balanceTolerance {
		result.Status = CheckWarning
		result.Gap = amount.Round2(gap)
		result.Message = fmt.Sprintf("Écart de %.2f sur le résultat", gap)
	}
	return []ConsistencyCheck{balance, result}
}

// CheckLedgerDepreciation verifies that depreciation debits on 681 match the credits on 28.
func CheckLedgerDepreciation(ledger []LedgerAccount) ConsistencyCheck {
	var debit, credit float64
	if acc, ok := FindAccount(ledger, AccountDepreciationExpense); ok {
		debit = acc.TotalDebit
	}
	if acc, ok := FindAccount(ledger, AccountAccumulatedDepreciation); ok {
		credit = acc.TotalCredit
	}
	check := ConsistencyCheck{
		Code:    CheckLedger,
		Label:   "Dotations et amortissements cumulés",
		Status:  CheckOK,
		Message: "Les comptes 681 et 28 concordent",
	}
	if gap := amount.Round2(debit - credit); math.Abs(gap) >= balanceTolerance {
		check.Status = CheckWarning
		check.Gap = gap
		check.Message = fmt.Sprintf("Écart de %.2f entre 681 et 28", gap)
	}
	return check
}
