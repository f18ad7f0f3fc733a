package records

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Store exposes the user scoped collections owned by the CRUD layer.
type Store interface {
	ListProperties(ctx context.Context, userID string) ([]Property, error)
	ListRevenues(ctx context.Context, userID string) ([]Revenue, error)
	ListExpenses(ctx context.Context, userID string) ([]Expense, error)
	ListAmortizations(ctx context.Context, userID string) ([]Amortization, error)
}

// LoadAll fetches the four collections of a user concurrently.
func LoadAll(ctx context.Context, store Store, userID string) (Collections, error) {
	if store == nil {
		return Collections{}, fmt.Errorf("records: store not initialised")
	}
	var out Collections
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := store.ListProperties(ctx, userID)
		if err != nil {
			return fmt.Errorf("records: list properties: %w", err)
		}
		out.Properties = rows
		return nil
	})
	g.Go(func() error {
		rows, err := store.ListRevenues(ctx, userID)
		if err != nil {
			return fmt.Errorf("records: list revenues: %w", err)
		}
		out.Revenues = rows
		return nil
	})
	g.Go(func() error {
		rows, err := store.ListExpenses(ctx, userID)
		if err != nil {
			return fmt.Errorf("records: list expenses: %w", err)
		}
		out.Expenses = rows
		return nil
	})
	g.Go(func() error {
		rows, err := store.ListAmortizations(ctx, userID)
		if err != nil {
			return fmt.Errorf("records: list amortizations: %w", err)
		}
		out.Amortizations = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return Collections{}, err
	}
	return out, nil
}

// StaticStore serves fixed collections regardless of the user. Used by the offline CLI.
type StaticStore struct {
	Data Collections
}

func (s StaticStore) ListProperties(ctx context.Context, userID string) ([]Property, error) {
	return append([]Property(nil), s.Data.Properties...), nil
}

func (s StaticStore) ListRevenues(ctx context.Context, userID string) ([]Revenue, error) {
	return append([]Revenue(nil), s.Data.Revenues...), nil
}

func (s StaticStore) ListExpenses(ctx context.Context, userID string) ([]Expense, error) {
	return append([]Expense(nil), s.Data.Expenses...), nil
}

func (s StaticStore) ListAmortizations(ctx context.Context, userID string) ([]Amortization, error) {
	return append([]Amortization(nil), s.Data.Amortizations...), nil
}
