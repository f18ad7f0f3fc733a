package liasse

import (
	"time"

	"github.com/lmnp-erp/lmnp-erp/internal/declarations"
)

// GenerationSnapshot bundles a liasse generation for export and audit.
type GenerationSnapshot struct {
	DeclarationID string            `json:"declaration_id"`
	Year          int               `json:"year"`
	GeneratedAt   string            `json:"generated_at"`
	Mappings      []FormMapping     `json:"mappings"`
	Issues        []ValidationIssue `json:"issues"`
}

// BuildGenerationSnapshot maps and validates the context, stamping the RFC3339 time.
func BuildGenerationSnapshot(ctx declarations.Context, overrides Overrides, now time.Time) GenerationSnapshot {
	mappings := BuildFormMappings(ctx, overrides)
	return GenerationSnapshot{
		DeclarationID: ctx.Declaration.ID,
		Year:          ctx.Declaration.Year,
		GeneratedAt:   now.UTC().Format(time.RFC3339),
		Mappings:      mappings,
		Issues:        ValidateFormMappings(mappings, ctx),
	}
}
