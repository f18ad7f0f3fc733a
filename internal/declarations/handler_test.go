package declarations

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/lmnp-erp/lmnp-erp/internal/platform/httpx"
	"github.com/lmnp-erp/lmnp-erp/internal/shared"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _ := newTestService()
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.WithUser(req.Context(), "u1")))
		})
	})
	r.Route("/declarations", h.MountRoutes)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandlerCreateAndConflict(t *testing.T) {
	router := newTestRouter(t)

	rr := do(t, router, http.MethodPost, "/declarations", `{"year":2023,"details":{"regime":"reel"}}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created Declaration
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, 800.0, created.NetResult)
	require.Equal(t, "reel", created.Details.Regime)

	rr = do(t, router, http.MethodPost, "/declarations", `{"year":2023}`)
	require.Equal(t, http.StatusConflict, rr.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	require.Equal(t, http.StatusConflict, problem.Status)

	rr = do(t, router, http.MethodPatch, "/declarations/"+created.ID+"/status", `{"status":"submitted"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, router, http.MethodPatch, "/declarations/"+created.ID+"/status", `{"status":"in_progress"}`)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestHandlerValidation(t *testing.T) {
	router := newTestRouter(t)

	rr := do(t, router, http.MethodPost, "/declarations", `{"year":0}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodPatch, "/declarations/x/status", `{"status":"archived"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodGet, "/declarations/preview?year=abc", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodGet, "/declarations/missing", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandlerPreview(t *testing.T) {
	router := newTestRouter(t)
	rr := do(t, router, http.MethodGet, "/declarations/preview?year=2023", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var totals Totals
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &totals))
	require.Equal(t, Totals{TotalRevenue: 1000, TotalExpenses: 200, NetResult: 800}, totals)
}
