package reports

import (
	"sort"

	"github.com/lmnp-erp/lmnp-erp/internal/amount"
)

// AccountBalance models a ledger account with aggregated movements.
type AccountBalance struct {
	Code   string
	Name   string
	Debit  float64
	Credit float64
}

// Closing computes the closing balance for the account.
func (a AccountBalance) Closing() float64 {
	return amount.Round2(a.Debit - a.Credit)
}

// GroupKey returns the account class, the first digit of the code.
func (a AccountBalance) GroupKey() string {
	if a.Code == "" {
		return ""
	}
	return a.Code[:1]
}

// TrialBalanceAccount represents a row inside a trial balance group.
type TrialBalanceAccount struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Debit   float64 `json:"debit"`
	Credit  float64 `json:"credit"`
	Closing float64 `json:"closing"`
}

// TrialBalanceGroup aggregates the accounts of one class.
type TrialBalanceGroup struct {
	Key      string                `json:"key"`
	Accounts []TrialBalanceAccount `json:"accounts"`
	Debit    float64               `json:"debit"`
	Credit   float64               `json:"credit"`
	Closing  float64               `json:"closing"`
}

// TrialBalance is the balance générale derived from the ledger.
type TrialBalance struct {
	Groups       []TrialBalanceGroup `json:"groups"`
	TotalDebit   float64             `json:"total_debit"`
	TotalCredit  float64             `json:"total_credit"`
	TotalClosing float64             `json:"total_closing"`
}

// Balanced reports whether debits and credits agree to the cent.
func (tb TrialBalance) Balanced() bool {
	return amount.Round2(tb.TotalDebit-tb.TotalCredit) == 0
}

// BalancesFromLedger flattens ledger accounts into account balances.
func BalancesFromLedger(ledger []LedgerAccount) []AccountBalance {
	out := make([]AccountBalance, 0, len(ledger))
	for _, acc := range ledger {
		out = append(out, AccountBalance{
			Code:   acc.Code,
			Name:   acc.Label,
			Debit:  acc.TotalDebit,
			Credit: acc.TotalCredit,
		})
	}
	return out
}

// BuildTrialBalance groups account balances by class.
func BuildTrialBalance(accounts []AccountBalance) TrialBalance {
	groups := make(map[string]*TrialBalanceGroup)
	keys := make([]string, 0)
	for _, acc := range accounts {
		key := acc.GroupKey()
		grp, ok := groups[key]
		if !ok {
			grp = &TrialBalanceGroup{Key: key}
			groups[key] = grp
			keys = append(keys, key)
		}
		row := TrialBalanceAccount{
			Code:    acc.Code,
			Name:    acc.Name,
			Debit:   acc.Debit,
			Credit:  acc.Credit,
			Closing: acc.Closing(),
		}
		grp.Accounts = append(grp.Accounts, row)
		grp.Debit = amount.Add(grp.Debit, row.Debit)
		grp.Credit = amount.Add(grp.Credit, row.Credit)
		grp.Closing = amount.Add(grp.Closing, row.Closing)
	}

	sort.Strings(keys)
	result := TrialBalance{}
	for _, key := range keys {
		grp := groups[key]
		sort.Slice(grp.Accounts, func(i, j int) bool {
			return grp.Accounts[i].Code < grp.Accounts[j].Code
		})
		result.Groups = append(result.Groups, *grp)
		result.TotalDebit = amount.Add(result.TotalDebit, grp.Debit)
		result.TotalCredit = amount.Add(result.TotalCredit, grp.Credit)
		result.TotalClosing = amount.Add(result.TotalClosing, grp.Closing)
	}
	return result
}
