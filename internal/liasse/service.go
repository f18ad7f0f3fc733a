package liasse

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lmnp-erp/lmnp-erp/internal/declarations"
	"github.com/lmnp-erp/lmnp-erp/internal/shared"
)

// AuditActionSnapshot is recorded for every snapshot generation.
const AuditActionSnapshot = "liasse.snapshot"

type contextSource interface {
	Context(ctx context.Context, userID, id string) (declarations.Context, error)
}

type auditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Result is the mapped and validated liasse of a declaration.
type Result struct {
	Mappings []FormMapping     `json:"mappings"`
	Issues   []ValidationIssue `json:"issues"`
}

// Service maps declarations onto the liasse forms.
type Service struct {
	decls  contextSource
	cache  *Cache
	audit  auditRecorder
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service. cache and audit may be nil.
func NewService(decls contextSource, cache *Cache, audit auditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		decls:  decls,
		cache:  cache,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Generate maps the declaration with overrides applied and validates the result.
func (s *Service) Generate(ctx context.Context, userID, declarationID string, overrides Overrides) (Result, error) {
	dctx, err := s.decls.Context(ctx, userID, declarationID)
	if err != nil {
		return Result{}, err
	}
	return s.build(ctx, dctx, overrides)
}

// Snapshot builds the generation snapshot and records it in the audit trail.
func (s *Service) Snapshot(ctx context.Context, userID, declarationID string, overrides Overrides) (GenerationSnapshot, error) {
	dctx, err := s.decls.Context(ctx, userID, declarationID)
	if err != nil {
		return GenerationSnapshot{}, err
	}
	snap := BuildGenerationSnapshot(dctx, overrides, s.now())
	if s.audit == nil {
		return snap, nil
	}
	meta, err := snapshotMeta(snap)
	if err != nil {
		return GenerationSnapshot{}, err
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  userID,
		Action:   AuditActionSnapshot,
		Entity:   "declaration",
		EntityID: declarationID,
		Meta:     meta,
		At:       s.now().UTC(),
	}); err != nil {
		s.logger.Error("record liasse snapshot", slog.String("declaration", declarationID), slog.Any("error", err))
		return GenerationSnapshot{}, err
	}
	return snap, nil
}

// Preview builds the generation snapshot without recording it.
func (s *Service) Preview(ctx context.Context, userID, declarationID string, overrides Overrides) (GenerationSnapshot, error) {
	dctx, err := s.decls.Context(ctx, userID, declarationID)
	if err != nil {
		return GenerationSnapshot{}, err
	}
	return BuildGenerationSnapshot(dctx, overrides, s.now()), nil
}

// Warmup precomputes the override-free liasse of each declaration.
func (s *Service) Warmup(ctx context.Context, userID string, declarationIDs []string) (int, error) {
	warmed := 0
	for _, id := range declarationIDs {
		if _, err := s.Generate(ctx, userID, id, nil); err != nil {
			return warmed, err
		}
		warmed++
	}
	return warmed, nil
}

func (s *Service) build(ctx context.Context, dctx declarations.Context, overrides Overrides) (Result, error) {
	compute := func(context.Context) (any, error) {
		mappings := BuildFormMappings(dctx, overrides)
		return Result{Mappings: mappings, Issues: ValidateFormMappings(mappings, dctx)}, nil
	}
	key, err := s.cache.Key(ctx, dctx, overrides)
	if err == nil {
		var out Result
		if err = s.cache.FetchJSON(ctx, key, &out, compute); err == nil {
			return out, nil
		}
	}
	s.logger.Warn("liasse cache unavailable", slog.Any("error", err))
	value, _ := compute(ctx)
	return value.(Result), nil
}

func snapshotMeta(snap GenerationSnapshot) (map[string]any, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}
