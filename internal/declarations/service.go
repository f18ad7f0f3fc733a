package declarations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lmnp-erp/lmnp-erp/internal/records"
)

// Store persists declarations. Insert must return ErrDuplicateYear when the
// (user, year) pair already exists; Get, Update and Delete return ErrNotFound.
type Store interface {
	List(ctx context.Context, userID string) ([]Declaration, error)
	Get(ctx context.Context, userID, id string) (Declaration, error)
	Insert(ctx context.Context, decl Declaration) error
	Update(ctx context.Context, decl Declaration) error
	Delete(ctx context.Context, userID, id string) error
}

// Service orchestrates the declaration lifecycle.
type Service struct {
	store   Store
	records records.Store
	logger  *slog.Logger
	now     func() time.Time
}

// NewService constructs a Service instance.
func NewService(store Store, recs records.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		records: recs,
		logger:  logger,
		now:     time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// List returns every declaration of the user.
func (s *Service) List(ctx context.Context, userID string) ([]Declaration, error) {
	return s.store.List(ctx, userID)
}

// Get returns a single declaration.
func (s *Service) Get(ctx context.Context, userID, id string) (Declaration, error) {
	return s.store.Get(ctx, userID, id)
}

// Create opens the declaration of a year with freshly computed totals.
func (s *Service) Create(ctx context.Context, in CreateInput) (Declaration, error) {
	if err := in.Validate(); err != nil {
		return Declaration{}, err
	}
	existing, err := s.store.List(ctx, in.UserID)
	if err != nil {
		return Declaration{}, err
	}
	for _, d := range existing {
		if d.Year == in.Year {
			return Declaration{}, ErrDuplicateYear
		}
	}
	now := s.now().UTC()
	decl := Declaration{
		ID:         uuid.NewString(),
		UserID:     in.UserID,
		Year:       in.Year,
		Status:     StatusDraft,
		Properties: append([]string(nil), in.Properties...),
		Details:    in.Details,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.refresh(ctx, &decl); err != nil {
		return Declaration{}, err
	}
	if err := s.store.Insert(ctx, decl); err != nil {
		return Declaration{}, err
	}
	s.logger.Info("declaration created", slog.String("id", decl.ID), slog.Int("year", decl.Year))
	return decl, nil
}

// UpdateStatus moves the declaration along its lifecycle and refreshes the totals.
func (s *Service) UpdateStatus(ctx context.Context, userID, id string, status Status) (Declaration, error) {
	if !status.Valid() {
		return Declaration{}, ErrInvalidTransition
	}
	decl, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return Declaration{}, err
	}
	if !CanTransition(decl.Status, status) {
		return Declaration{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, decl.Status, status)
	}
	decl.Status = status
	return s.save(ctx, decl)
}

// UpdateDetails edits the declarant details and refreshes the totals.
func (s *Service) UpdateDetails(ctx context.Context, userID, id string, in DetailsInput) (Declaration, error) {
	decl, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return Declaration{}, err
	}
	decl.Details = in.Details
	if in.Properties != nil {
		decl.Properties = append([]string(nil), (*in.Properties)...)
	}
	return s.save(ctx, decl)
}

// Delete removes the declaration.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.store.Delete(ctx, userID, id)
}

// Preview computes the totals a declaration for year would carry, without persisting.
func (s *Service) Preview(ctx context.Context, userID string, year int, propertyIDs []string) (Totals, error) {
	data, err := records.LoadAll(ctx, s.records, userID)
	if err != nil {
		return Totals{}, err
	}
	return CalculateTotals(year, data.Revenues, data.Expenses, data.Amortizations, propertyIDs), nil
}

// Context loads the declaration and derives its context from the user's records.
func (s *Service) Context(ctx context.Context, userID, id string) (Context, error) {
	decl, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return Context{}, err
	}
	data, err := records.LoadAll(ctx, s.records, userID)
	if err != nil {
		return Context{}, err
	}
	return BuildContext(decl, data.Revenues, data.Expenses, data.Properties, data.Amortizations), nil
}

// RefreshTotals recomputes and persists the totals of every declaration of the user.
func (s *Service) RefreshTotals(ctx context.Context, userID string) (int, error) {
	decls, err := s.store.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(decls) == 0 {
		return 0, nil
	}
	data, err := records.LoadAll(ctx, s.records, userID)
	if err != nil {
		return 0, err
	}
	for _, decl := range decls {
		decl.ApplyTotals(CalculateTotals(decl.Year, data.Revenues, data.Expenses, data.Amortizations, decl.Properties))
		decl.UpdatedAt = s.now().UTC()
		if err := s.store.Update(ctx, decl); err != nil {
			return 0, fmt.Errorf("declarations: refresh %s: %w", decl.ID, err)
		}
	}
	return len(decls), nil
}

func (s *Service) save(ctx context.Context, decl Declaration) (Declaration, error) {
	if err := s.refresh(ctx, &decl); err != nil {
		return Declaration{}, err
	}
	decl.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, decl); err != nil {
		return Declaration{}, err
	}
	return decl, nil
}

func (s *Service) refresh(ctx context.Context, decl *Declaration) error {
	data, err := records.LoadAll(ctx, s.records, decl.UserID)
	if err != nil {
		return err
	}
	decl.ApplyTotals(CalculateTotals(decl.Year, data.Revenues, data.Expenses, data.Amortizations, decl.Properties))
	return nil
}
