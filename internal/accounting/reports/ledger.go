package reports

import (
	"sort"

	"github.com/lmnp-erp/lmnp-erp/internal/accounting/amortization"
	"github.com/lmnp-erp/lmnp-erp/internal/amount"
	"github.com/lmnp-erp/lmnp-erp/internal/records"
)

// Chart of accounts used by the ledger.
const (
	AccountRentalIncome            = "706"
	AccountDepreciationExpense     = "681"
	AccountAccumulatedDepreciation = "28"
)

const (
	rentalIncomeLabel    = "Produits locatifs"
	depreciationLabel    = "Dotations aux amortissements"
	accumulatedLabel     = "Amortissements cumulés"
	accumulatedRefSuffix = "-cumul"
	expenseAccountPrefix = "6xx-"
	expenseAccountLabel  = "Charges - "
)

// LedgerEntry is a single posting.
type LedgerEntry struct {
	Date        records.Date `json:"date"`
	Description string       `json:"description"`
	Debit       float64      `json:"debit"`
	Credit      float64      `json:"credit"`
	Reference   string       `json:"reference"`
}

// LedgerAccount groups the postings of one account code.
type LedgerAccount struct {
	Code        string        `json:"code"`
	Label       string        `json:"label"`
	Entries     []LedgerEntry `json:"entries"`
	TotalDebit  float64       `json:"total_debit"`
	TotalCredit float64       `json:"total_credit"`
}

// Balance returns debit minus credit.
func (a LedgerAccount) Balance() float64 {
	return amount.Round2(a.TotalDebit - a.TotalCredit)
}

type ledgerBook struct {
	order    []string
	accounts map[string]*LedgerAccount
}

func (b *ledgerBook) post(code, label string, entry LedgerEntry) {
	acc, ok := b.accounts[code]
	if !ok {
		acc = &LedgerAccount{Code: code, Label: label}
		b.accounts[code] = acc
		b.order = append(b.order, code)
	}
	acc.Entries = append(acc.Entries, entry)
	acc.TotalDebit = amount.Add(acc.TotalDebit, entry.Debit)
	acc.TotalCredit = amount.Add(acc.TotalCredit, entry.Credit)
}

// BuildLedger posts in-period revenues to 706, deductible in-period expenses to their
// 6xx category account and prorated depreciation to the 681/28 pair dated at period end.
// Accounts are returned in first-occurrence order with entries sorted by date.
func BuildLedger(revenues []records.Revenue, expenses []records.Expense, assets []records.Amortization, period records.Period) []LedgerAccount {
	book := &ledgerBook{accounts: make(map[string]*LedgerAccount)}

	for _, r := range records.FilterRevenuesByPeriod(revenues, period) {
		book.post(AccountRentalIncome, rentalIncomeLabel, LedgerEntry{
			Date:        r.Date,
			Description: describe(r.Description, r.Type.Label()),
			Credit:      amount.Round2(r.Amount.Float64()),
			Reference:   r.ID,
		})
	}
	for _, e := range records.FilterExpensesByPeriod(expenses, period, true) {
		book.post(expenseAccountPrefix+string(e.Category), expenseAccountLabel+string(e.Category), LedgerEntry{
			Date:        e.Date,
			Description: describe(e.Description, e.Category.Label()),
			Debit:       amount.Round2(e.Amount.Float64()),
			Reference:   e.ID,
		})
	}
	for _, a := range assets {
		dotation := amount.Round2(amortization.ForPeriod(a, period.Start, period.End))
		if dotation <= 0 {
			continue
		}
		description := describe(a.ItemName, a.ID)
		book.post(AccountDepreciationExpense, depreciationLabel, LedgerEntry{
			Date:        period.End,
			Description: description,
			Debit:       dotation,
			Reference:   a.ID,
		})
		book.post(AccountAccumulatedDepreciation, accumulatedLabel, LedgerEntry{
			Date:        period.End,
			Description: description,
			Credit:      dotation,
			Reference:   a.ID + accumulatedRefSuffix,
		})
	}

	out := make([]LedgerAccount, 0, len(book.order))
	for _, code := range book.order {
		acc := book.accounts[code]
		sort.SliceStable(acc.Entries, func(i, j int) bool {
			return acc.Entries[i].Date.Before(acc.Entries[j].Date.Time)
		})
		out = append(out, *acc)
	}
	return out
}

// FindAccount returns the account with the given code.
func FindAccount(ledger []LedgerAccount, code string) (LedgerAccount, bool) {
	for _, acc := range ledger {
		if acc.Code == code {
			return acc, true
		}
	}
	return LedgerAccount{}, false
}

func describe(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}
