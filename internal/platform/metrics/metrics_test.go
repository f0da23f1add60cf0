package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_CountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	col := NewCollectorWith(reg, "lims")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tests", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/tests")

	handler := col.Middleware()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := testutil.ToFloat64(col.RequestsTotal.WithLabelValues("GET", "/api/v1/tests", "200"))
	if got != 1 {
		t.Errorf("expected 1 request counted, got %v", got)
	}
}

func TestMiddleware_CountsErrorResponses(t *testing.T) {
	reg := prometheus.NewRegistry()
	col := NewCollectorWith(reg, "lims")

	e := echo.New()
	e.Use(col.Middleware())
	e.GET("/api/v1/requests/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "request not found")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/abc", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %d", rec.Code)
	}
	got := testutil.ToFloat64(col.RequestsTotal.WithLabelValues("GET", "/api/v1/requests/:id", "404"))
	if got != 1 {
		t.Errorf("expected the 404 to be counted under status 404, got %v", got)
	}
	mislabeled := testutil.ToFloat64(col.RequestsTotal.WithLabelValues("GET", "/api/v1/requests/:id", "200"))
	if mislabeled != 0 {
		t.Errorf("expected no status-200 sample for an error response, got %v", mislabeled)
	}
}

func TestMiddleware_PlainErrorCountsAs500(t *testing.T) {
	reg := prometheus.NewRegistry()
	col := NewCollectorWith(reg, "lims")

	e := echo.New()
	e.Use(col.Middleware())
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	got := testutil.ToFloat64(col.RequestsTotal.WithLabelValues("GET", "/boom", "500"))
	if got != 1 {
		t.Errorf("expected a plain error counted as 500, got %v", got)
	}
}

func TestTransitionCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	col := NewCollectorWith(reg, "lims")

	col.TransitionsTotal.WithLabelValues("COLLECTED").Inc()
	col.TransitionsTotal.WithLabelValues("COLLECTED").Inc()

	got := testutil.ToFloat64(col.TransitionsTotal.WithLabelValues("COLLECTED"))
	if got != 2 {
		t.Errorf("expected 2 transitions, got %v", got)
	}
}
