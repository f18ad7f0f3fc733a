package declarations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lmnp-erp/lmnp-erp/internal/amount"
)

const uniqueViolation = "23505"

const selectDeclaration = `SELECT id::text, user_id::text, year, status, total_revenue::text, total_expenses::text,
net_result::text, properties, details, created_at, updated_at FROM declarations`

// Repository persists declarations in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository using the provided pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ready() error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("declarations: repository not initialised")
	}
	return nil
}

// List returns the declarations of a user, most recent year first.
func (r *Repository) List(ctx context.Context, userID string) ([]Declaration, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, selectDeclaration+` WHERE user_id = $1 ORDER BY year DESC`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Declaration, error) {
		return scanDeclaration(row)
	})
}

// Get loads a single declaration owned by the user.
func (r *Repository) Get(ctx context.Context, userID, id string) (Declaration, error) {
	if err := r.ready(); err != nil {
		return Declaration{}, err
	}
	row := r.pool.QueryRow(ctx, selectDeclaration+` WHERE user_id = $1 AND id = $2`, userID, id)
	decl, err := scanDeclaration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Declaration{}, ErrNotFound
	}
	return decl, err
}

// Insert stores a new declaration. The (user_id, year) unique index surfaces as ErrDuplicateYear.
func (r *Repository) Insert(ctx context.Context, decl Declaration) error {
	if err := r.ready(); err != nil {
		return err
	}
	details, err := json.Marshal(decl.Details)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO declarations
(id, user_id, year, status, total_revenue, total_expenses, net_result, properties, details, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		decl.ID, decl.UserID, decl.Year, string(decl.Status), decl.TotalRevenue, decl.TotalExpenses, decl.NetResult,
		propertyIDs(decl.Properties), details, decl.CreatedAt, decl.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateYear
	}
	return err
}

// Update overwrites the mutable columns of a declaration.
func (r *Repository) Update(ctx context.Context, decl Declaration) error {
	if err := r.ready(); err != nil {
		return err
	}
	details, err := json.Marshal(decl.Details)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE declarations SET status = $3, total_revenue = $4, total_expenses = $5,
net_result = $6, properties = $7, details = $8, updated_at = $9 WHERE user_id = $1 AND id = $2`,
		decl.UserID, decl.ID, string(decl.Status), decl.TotalRevenue, decl.TotalExpenses, decl.NetResult,
		propertyIDs(decl.Properties), details, decl.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a declaration owned by the user.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	if err := r.ready(); err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM declarations WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDeclaration(row pgx.Row) (Declaration, error) {
	var (
		decl                   Declaration
		status                 string
		revenue, expenses, net string
		details                []byte
		createdAt, updatedAt   time.Time
	)
	if err := row.Scan(&decl.ID, &decl.UserID, &decl.Year, &status, &revenue, &expenses, &net,
		&decl.Properties, &details, &createdAt, &updatedAt); err != nil {
		return Declaration{}, err
	}
	decl.Status = Status(status)
	decl.TotalRevenue = amount.Normalize(revenue)
	decl.TotalExpenses = amount.Normalize(expenses)
	decl.NetResult = amount.Normalize(net)
	decl.CreatedAt = createdAt
	decl.UpdatedAt = updatedAt
	if len(details) > 0 {
		if err := json.Unmarshal(details, &decl.Details); err != nil {
			return Declaration{}, fmt.Errorf("declarations: decode details: %w", err)
		}
	}
	return decl, nil
}

func propertyIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
