package records

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lmnp-erp/lmnp-erp/internal/amount"
)

// Repository reads the CRUD tables through PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var errNoPool = errors.New("records: repository not initialised")

// ListProperties returns every property owned by the user.
func (r *Repository) ListProperties(ctx context.Context, userID string) ([]Property, error) {
	if r == nil || r.pool == nil {
		return nil, errNoPool
	}
	rows, err := r.pool.Query(ctx, `SELECT id::text, COALESCE(name, ''), COALESCE(address, '')
FROM properties WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Property, error) {
		var p Property
		err := row.Scan(&p.ID, &p.Name, &p.Address)
		return p, err
	})
}

// ListRevenues returns every revenue of the user, unfiltered by property or date.
func (r *Repository) ListRevenues(ctx context.Context, userID string) ([]Revenue, error) {
	if r == nil || r.pool == nil {
		return nil, errNoPool
	}
	rows, err := r.pool.Query(ctx, `SELECT id::text, property_id::text, amount::text, date, COALESCE(description, ''), type
FROM revenues WHERE user_id = $1 ORDER BY date, id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Revenue, error) {
		var (
			rev    Revenue
			amt    string
			day    time.Time
			revTyp string
		)
		if err := row.Scan(&rev.ID, &rev.PropertyID, &amt, &day, &rev.Description, &revTyp); err != nil {
			return Revenue{}, err
		}
		rev.Amount = amount.Value(amount.Normalize(amt))
		rev.Date = DateOf(day)
		rev.Type = RevenueType(revTyp)
		return rev, nil
	})
}

// ListExpenses returns every expense of the user.
func (r *Repository) ListExpenses(ctx context.Context, userID string) ([]Expense, error) {
	if r == nil || r.pool == nil {
		return nil, errNoPool
	}
	rows, err := r.pool.Query(ctx, `SELECT id::text, property_id::text, amount::text, date, COALESCE(description, ''), category, deductible
FROM expenses WHERE user_id = $1 ORDER BY date, id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Expense, error) {
		var (
			exp      Expense
			amt      string
			day      time.Time
			category string
		)
		if err := row.Scan(&exp.ID, &exp.PropertyID, &amt, &day, &exp.Description, &category, &exp.Deductible); err != nil {
			return Expense{}, err
		}
		exp.Amount = amount.Value(amount.Normalize(amt))
		exp.Date = DateOf(day)
		exp.Category = ExpenseCategory(category)
		return exp, nil
	})
}

// ListAmortizations returns every depreciable asset of the user.
func (r *Repository) ListAmortizations(ctx context.Context, userID string) ([]Amortization, error) {
	if r == nil || r.pool == nil {
		return nil, errNoPool
	}
	rows, err := r.pool.Query(ctx, `SELECT id::text, property_id::text, item_name, COALESCE(category, ''), purchase_date,
purchase_amount::text, useful_life_years, annual_amortization::text, status
FROM amortizations WHERE user_id = $1 ORDER BY purchase_date, id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Amortization, error) {
		var (
			a              Amortization
			purchased      time.Time
			purchaseAmount string
			annual         string
			status         string
		)
		if err := row.Scan(&a.ID, &a.PropertyID, &a.ItemName, &a.Category, &purchased, &purchaseAmount, &a.UsefulLifeYears, &annual, &status); err != nil {
			return Amortization{}, err
		}
		a.PurchaseDate = DateOf(purchased)
		a.PurchaseAmount = amount.Value(amount.Normalize(purchaseAmount))
		a.AnnualAmortization = amount.Value(amount.Normalize(annual))
		a.Status = AmortizationStatus(status)
		return a, nil
	})
}
