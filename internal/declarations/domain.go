package declarations

import (
	"errors"
	"fmt"
	"time"

	"github.com/lmnp-erp/lmnp-erp/internal/records"
)

// Status enumerates the declaration lifecycle stages.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusSubmitted  Status = "submitted"
)

// Valid reports whether the status is known.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusCompleted, StatusSubmitted:
		return true
	default:
		return false
	}
}

var transitions = map[Status][]Status{
	StatusDraft:      {StatusInProgress},
	StatusInProgress: {StatusCompleted, StatusDraft},
	StatusCompleted:  {StatusSubmitted},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Details holds the free-form declarant information.
type Details struct {
	Regime      string `json:"regime"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	Declarant   string `json:"declarant"`
}

// Declaration is the annual LMNP filing of a user. Totals are a denormalised
// snapshot refreshed on every status or details change.
type Declaration struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Year          int       `json:"year"`
	Status        Status    `json:"status"`
	TotalRevenue  float64   `json:"total_revenue"`
	TotalExpenses float64   `json:"total_expenses"`
	NetResult     float64   `json:"net_result"`
	Properties    []string  `json:"properties"`
	Details       Details   `json:"details"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ApplyTotals copies the computed totals onto the snapshot columns.
func (d *Declaration) ApplyTotals(t Totals) {
	d.TotalRevenue = t.TotalRevenue
	d.TotalExpenses = t.TotalExpenses
	d.NetResult = t.NetResult
}

// Totals aggregates the tax relevant amounts of a year.
type Totals struct {
	TotalRevenue       float64 `json:"total_revenue"`
	TotalExpenses      float64 `json:"total_expenses"`
	TotalAmortizations float64 `json:"total_amortizations"`
	NetResult          float64 `json:"net_result"`
}

// Context is derived on demand and never persisted.
type Context struct {
	Declaration   Declaration            `json:"declaration"`
	Totals        Totals                 `json:"totals"`
	Revenues      []records.Revenue      `json:"revenues"`
	Expenses      []records.Expense      `json:"expenses"`
	Properties    []records.Property     `json:"properties"`
	Amortizations []records.Amortization `json:"amortizations"`
}

// CreateInput captures the fields accepted when opening a declaration.
type CreateInput struct {
	UserID     string
	Year       int
	Properties []string
	Details    Details
}

// Validate ensures the create input is coherent.
func (in CreateInput) Validate() error {
	if in.UserID == "" {
		return fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if in.Year < 1900 || in.Year > 2999 {
		return fmt.Errorf("%w: year out of range", ErrInvalidInput)
	}
	return nil
}

// DetailsInput updates declarant details and, when set, the property selection.
type DetailsInput struct {
	Details    Details
	Properties *[]string
}

// ErrDuplicateYear is returned when the user already has a declaration for the year.
var ErrDuplicateYear = errors.New("declarations: declaration already exists for this year")

// ErrNotFound indicates the declaration could not be loaded.
var ErrNotFound = errors.New("declarations: declaration not found")

// ErrInvalidInput wraps create input validation failures.
var ErrInvalidInput = errors.New("declarations: invalid input")

// ErrInvalidTransition indicates an unsupported status change.
var ErrInvalidTransition = errors.New("declarations: invalid status transition")
