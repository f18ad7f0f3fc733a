package liasse

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/lmnp-erp/lmnp-erp/internal/amount"
	"github.com/lmnp-erp/lmnp-erp/internal/declarations"
	"github.com/lmnp-erp/lmnp-erp/internal/records"
	"github.com/lmnp-erp/lmnp-erp/internal/shared"

	_ "github.com/lmnp-erp/lmnp-erp/testing"
)

func buildContext(revenue, expenses, annual float64) declarations.Context {
	revs := []records.Revenue{
		{ID: "r1", PropertyID: "p1", Amount: amount.Value(revenue), Date: records.MustDate("2023-03-01"), Type: records.RevenueRent},
	}
	exps := []records.Expense{
		{ID: "e1", PropertyID: "p1", Amount: amount.Value(expenses), Date: records.MustDate("2023-04-01"), Deductible: true, Category: records.ExpenseMaintenance},
	}
	assets := []records.Amortization{
		{ID: "a1", PropertyID: "p1", PurchaseDate: records.MustDate("2023-01-01"), PurchaseAmount: amount.Value(annual * 10), UsefulLifeYears: 10, AnnualAmortization: amount.Value(annual), Status: records.AmortizationActive},
	}
	props := []records.Property{{ID: "p1"}, {ID: "p2"}}
	decl := declarations.Declaration{ID: "d1", UserID: "u1", Year: 2023}
	return declarations.BuildContext(decl, revs, exps, props, assets)
}

func findCase(t *testing.T, mappings []FormMapping, form FormType, code string) CaseValue {
	t.Helper()
	for _, m := range mappings {
		if m.Form != form {
			continue
		}
		if c, ok := m.Case(code); ok {
			return c
		}
	}
	t.Fatalf("case %s/%s not found", form, code)
	return CaseValue{}
}

func hasIssue(issues []ValidationIssue, form, code string) (ValidationIssue, bool) {
	for _, is := range issues {
		if is.Form == form && is.Code == code {
			return is, true
		}
	}
	return ValidationIssue{}, false
}

func TestBuildFormMappingsAutoValues(t *testing.T) {
	ctx := buildContext(1000, 200, 120)
	mappings := BuildFormMappings(ctx, nil)
	require.Len(t, mappings, 3)
	require.Equal(t, Form2031, mappings[0].Form)
	require.Equal(t, Form2031Bis, mappings[1].Form)
	require.Equal(t, Form2033, mappings[2].Form)

	require.Equal(t, 2.0, findCase(t, mappings, Form2031, "5XA").Value)
	require.Equal(t, 1000.0, findCase(t, mappings, Form2031, "5XB").Value)
	require.Equal(t, 1000.0, findCase(t, mappings, Form2031, "5XC").Value)
	require.Equal(t, 200.0, findCase(t, mappings, Form2031, "5XD").Value)
	require.Equal(t, 120.0, findCase(t, mappings, Form2031, "5XE").Value)
	require.Equal(t, 680.0, findCase(t, mappings, Form2031, "5XF").Value)
	require.Equal(t, 0.0, findCase(t, mappings, Form2031, "5XG").Value)
	require.Equal(t, 200.0, findCase(t, mappings, Form2031Bis, "BC1").Value)
	require.Equal(t, 1200.0, findCase(t, mappings, Form2033, "2033A1").Value)
	require.Equal(t, 120.0, findCase(t, mappings, Form2033, "2058A3").Value)
	require.Equal(t, 680.0, findCase(t, mappings, Form2033, "2058A4").Value)

	issues := ValidateFormMappings(mappings, ctx)
	require.Empty(t, issues)
}

func TestBuildFormMappingsIsIdempotent(t *testing.T) {
	ctx := buildContext(1000, 950, 120)
	overrides := Overrides{}
	overrides.Set(Form2031, "5XB", 900)
	overrides.Set(Form2033, "2058A1", 0)

	first := BuildFormMappings(ctx, overrides)
	second := BuildFormMappings(ctx, overrides)
	require.Equal(t, first, second)
	require.Equal(t, ValidateFormMappings(first, ctx), ValidateFormMappings(second, ctx))

	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	require.Equal(t, BuildGenerationSnapshot(ctx, overrides, now), BuildGenerationSnapshot(ctx, overrides, now))
}

func TestOverridePrecedence(t *testing.T) {
	ctx := buildContext(1000, 200, 120)
	overrides := Overrides{}
	overrides.Set(Form2031, "5XB", 0)

	mappings := BuildFormMappings(ctx, overrides)
	c := findCase(t, mappings, Form2031, "5XB")
	require.True(t, c.Overridden)
	require.Equal(t, 0.0, c.Value)
	require.Equal(t, 1000.0, c.AutoValue)

	overrides[Form2031]["5XB"] = nil
	c = findCase(t, BuildFormMappings(ctx, overrides), Form2031, "5XB")
	require.False(t, c.Overridden)
	require.Equal(t, c.AutoValue, c.Value)

	nan := math.NaN()
	overrides[Form2031]["5XB"] = &nan
	c = findCase(t, BuildFormMappings(ctx, overrides), Form2031, "5XB")
	require.False(t, c.Overridden)

	overrides.Set(Form2031, "5XB", 42)
	overrides.Clear(Form2031, "5XB")
	require.False(t, findCase(t, BuildFormMappings(ctx, overrides), Form2031, "5XB").Overridden)
}

func TestDepreciationCapAndWarnings(t *testing.T) {
	ctx := buildContext(1000, 950, 120)
	mappings := BuildFormMappings(ctx, nil)

	require.Equal(t, 50.0, findCase(t, mappings, Form2031, "5XE").Value)
	require.Equal(t, 50.0, findCase(t, mappings, Form2033, "2058A3").Value)
	require.Equal(t, 70.0, findCase(t, mappings, Form2031, "5XG").Value)
	require.Equal(t, 0.0, findCase(t, mappings, Form2031, "5XF").Value)

	issues := ValidateFormMappings(mappings, ctx)
	capIssue, ok := hasIssue(issues, GlobalForm, CodeCap)
	require.True(t, ok)
	require.Equal(t, SeverityWarning, capIssue.Severity)
	_, ok = hasIssue(issues, GlobalForm, CodeResult)
	require.True(t, ok)
	require.False(t, HasErrors(issues))

	deficit := buildContext(100, 300, 120)
	require.Equal(t, 0.0, findCase(t, BuildFormMappings(deficit, nil), Form2031, "5XE").Value)
}

func TestValidateIdentitiesUseStatedValues(t *testing.T) {
	ctx := buildContext(1000, 200, 120)
	overrides := Overrides{}
	overrides.Set(Form2031, "5XF", 999)
	overrides.Set(Form2033, "2058A1", 1500)

	issues := ValidateFormMappings(BuildFormMappings(ctx, overrides), ctx)
	is, ok := hasIssue(issues, string(Form2031), "5XF")
	require.True(t, ok)
	require.Equal(t, SeverityError, is.Severity)
	is, ok = hasIssue(issues, string(Form2033), "2058A4")
	require.True(t, ok)
	require.Equal(t, SeverityWarning, is.Severity)
	require.True(t, HasErrors(issues))

	overrides.Set(Form2031, "5XF", 680.9)
	overrides.Clear(Form2033, "2058A1")
	issues = ValidateFormMappings(BuildFormMappings(ctx, overrides), ctx)
	require.Empty(t, issues)
}

func TestValidateImplausibleAmounts(t *testing.T) {
	ctx := buildContext(100, 250, 0)
	issues := ValidateFormMappings(BuildFormMappings(ctx, nil), ctx)
	for _, code := range []string{"5XD", "BC1", "2058A2"} {
		found := false
		for _, is := range issues {
			if is.Code == code && is.Severity == SeverityWarning {
				found = true
			}
		}
		require.Truef(t, found, "expected implausibility warning on %s", code)
	}
}

func TestBuildGenerationSnapshot(t *testing.T) {
	ctx := buildContext(1000, 950, 120)
	now := time.Date(2024, 3, 5, 10, 30, 0, 0, time.FixedZone("CET", 3600))
	snap := BuildGenerationSnapshot(ctx, nil, now)
	require.Equal(t, "d1", snap.DeclarationID)
	require.Equal(t, 2023, snap.Year)
	require.Equal(t, "2024-03-05T09:30:00Z", snap.GeneratedAt)
	require.Len(t, snap.Mappings, 3)
	require.NotEmpty(t, snap.Issues)
}

type stubContexts struct {
	ctx   declarations.Context
	calls int
	err   error
}

func (s *stubContexts) Context(ctx context.Context, userID, id string) (declarations.Context, error) {
	s.calls++
	if s.err != nil {
		return declarations.Context{}, s.err
	}
	return s.ctx, nil
}

type recordingAudit struct {
	logs []shared.AuditLog
}

func (r *recordingAudit) Record(ctx context.Context, log shared.AuditLog) error {
	if err := log.Validate(); err != nil {
		return err
	}
	r.logs = append(r.logs, log)
	return nil
}

func newRedisCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestServiceGenerateUsesCache(t *testing.T) {
	cache, mr := newRedisCache(t)
	src := &stubContexts{ctx: buildContext(1000, 200, 120)}
	svc := NewService(src, cache, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	first, err := svc.Generate(context.Background(), "u1", "d1", nil)
	require.NoError(t, err)
	require.Len(t, first.Mappings, 3)
	require.Len(t, mr.Keys(), 2)

	second, err := svc.Generate(context.Background(), "u1", "d1", nil)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, mr.Keys(), 2)

	overrides := Overrides{}
	overrides.Set(Form2031, "5XB", 10)
	third, err := svc.Generate(context.Background(), "u1", "d1", overrides)
	require.NoError(t, err)
	require.True(t, findCase(t, third.Mappings, Form2031, "5XB").Overridden)
	require.Len(t, mr.Keys(), 3)

	require.NoError(t, cache.Bump(context.Background()))
	ver, err := cache.Version(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), ver)
}

func TestServiceGenerateWithoutRedis(t *testing.T) {
	src := &stubContexts{ctx: buildContext(1000, 200, 120)}
	svc := NewService(src, nil, nil, nil)
	res, err := svc.Generate(context.Background(), "u1", "d1", nil)
	require.NoError(t, err)
	require.Empty(t, res.Issues)

	src.err = declarations.ErrNotFound
	_, err = svc.Generate(context.Background(), "u1", "missing", nil)
	require.True(t, errors.Is(err, declarations.ErrNotFound))
}

func TestServiceSnapshotRecordsAudit(t *testing.T) {
	src := &stubContexts{ctx: buildContext(1000, 200, 120)}
	audit := &recordingAudit{}
	svc := NewService(src, nil, audit, nil)
	fixed := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return fixed })

	snap, err := svc.Snapshot(context.Background(), "u1", "d1", nil)
	require.NoError(t, err)
	require.Equal(t, "2024-04-01T08:00:00Z", snap.GeneratedAt)
	require.Len(t, audit.logs, 1)
	entry := audit.logs[0]
	require.Equal(t, AuditActionSnapshot, entry.Action)
	require.Equal(t, "u1", entry.ActorID)
	require.Equal(t, "d1", entry.EntityID)
	require.Equal(t, "d1", entry.Meta["declaration_id"])
}

func TestServiceWarmup(t *testing.T) {
	cache, mr := newRedisCache(t)
	src := &stubContexts{ctx: buildContext(1000, 200, 120)}
	svc := NewService(src, cache, nil, nil)
	n, err := svc.Warmup(context.Background(), "u1", []string{"d1", "d2"})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 2, src.calls)
	require.NotEmpty(t, mr.Keys())
}
