package reports

import (
	"context"
	"errors"
	"time"

	"github.com/lmnp-erp/lmnp-erp/internal/records"
)

// ErrInvalidPeriod is returned when the period start is after its end.
var ErrInvalidPeriod = errors.New("La date de début doit précéder la date de fin")

// AccountingReportResult bundles every statement of a period.
type AccountingReportResult struct {
	Period          records.Period     `json:"period"`
	IncomeStatement IncomeStatement    `json:"income_statement"`
	BalanceSheet    BalanceSheet       `json:"balance_sheet"`
	Ledger          []LedgerAccount    `json:"ledger"`
	TrialBalance    TrialBalance       `json:"trial_balance"`
	Checks          []ConsistencyCheck `json:"checks"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// Build runs the pure builders over already fetched collections.
func Build(data records.Collections, period records.Period, now time.Time) AccountingReportResult {
	is := BuildIncomeStatement(data.Revenues, data.Expenses, data.Amortizations, period)
	bs := BuildBalanceSheet(data.Amortizations, period, is.NetResult)
	ledger := BuildLedger(data.Revenues, data.Expenses, data.Amortizations, period)
	checks := append(CheckConsistency(bs, is), CheckLedgerDepreciation(ledger))
	return AccountingReportResult{
		Period:          period,
		IncomeStatement: is,
		BalanceSheet:    bs,
		Ledger:          ledger,
		TrialBalance:    BuildTrialBalance(BalancesFromLedger(ledger)),
		Checks:          checks,
		GeneratedAt:     now,
	}
}

// Service fetches user records and produces accounting reports.
type Service struct {
	store records.Store
	now   func() time.Time
}

// NewService constructs a Service instance.
func NewService(store records.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Generate validates the period, loads the four collections and builds the reports.
func (s *Service) Generate(ctx context.Context, userID string, period records.Period) (AccountingReportResult, error) {
	if !period.Valid() {
		return AccountingReportResult{}, ErrInvalidPeriod
	}
	data, err := records.LoadAll(ctx, s.store, userID)
	if err != nil {
		return AccountingReportResult{}, err
	}
	return Build(data, period, s.now().UTC()), nil
}
