package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*echo.Echo, *Handler) {
	e := echo.New()
	h := NewHandler(NewStore(SeedTests(), SeedSampleTypes()))
	return e, h
}

func TestListTests(t *testing.T) {
	e, h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/tests", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListTests(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var tests []LabTest
	if err := json.Unmarshal(rec.Body.Bytes(), &tests); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(tests) != 9 {
		t.Errorf("expected 9 tests, got %d", len(tests))
	}
}

func TestGetTestParameters(t *testing.T) {
	e, h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/tests/:id/parameters")
	c.SetParamNames("id")
	c.SetParamValues("lipid")

	if err := h.GetTestParameters(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var params []TestParameter
	if err := json.Unmarshal(rec.Body.Bytes(), &params); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(params) != 4 {
		t.Errorf("expected 4 lipid parameters, got %d", len(params))
	}
}

func TestGetTestParameters_NotFound(t *testing.T) {
	e, h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("unknown")

	err := h.GetTestParameters(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
}

func TestListSampleTypes(t *testing.T) {
	e, h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/sample-types", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListSampleTypes(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var types []SampleType
	if err := json.Unmarshal(rec.Body.Bytes(), &types); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(types) != 3 {
		t.Errorf("expected 3 sample types, got %d", len(types))
	}
}
