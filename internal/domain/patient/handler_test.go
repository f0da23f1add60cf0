package patient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newHandlerTest() (*echo.Echo, *Handler) {
	e := echo.New()
	svc := NewService(newMockRepo(), zerolog.Nop())
	return e, NewHandler(svc)
}

func TestUpsertPatient_Create(t *testing.T) {
	e, h := newHandlerTest()
	body := `{"name":"John Doe","age":34,"gender":"Male","phone":"0300-1234567"}`
	req := httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.UpsertPatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var p Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if p.ID != "P001" {
		t.Errorf("expected id P001, got %s", p.ID)
	}
}

func TestUpsertPatient_ValidationFailure(t *testing.T) {
	e, h := newHandlerTest()
	body := `{"name":"","age":0,"gender":"x","phone":""}`
	req := httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.UpsertPatient(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestGetPatient_NotFound(t *testing.T) {
	e, h := newHandlerTest()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("P404")

	err := h.GetPatient(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
}

func TestUpdatePatient_UsesPathID(t *testing.T) {
	e, h := newHandlerTest()

	// Seed one patient through the service first.
	seed := &Patient{Name: "John Doe", Age: 34, Gender: "Male", Phone: "0300-1234567"}
	if _, err := h.svc.Upsert(httptest.NewRequest(http.MethodGet, "/", nil).Context(), seed); err != nil {
		t.Fatal(err)
	}

	body := `{"name":"John Doe","age":36,"gender":"Male","phone":"0300-1234567"}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(seed.ID)

	if err := h.UpdatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// The response is the stored row, timestamps included.
	var resp Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.CreatedAt.IsZero() || resp.UpdatedAt.IsZero() {
		t.Errorf("expected timestamps in the update response, got created_at %v updated_at %v",
			resp.CreatedAt, resp.UpdatedAt)
	}

	got, err := h.svc.Get(req.Context(), seed.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Age != 36 {
		t.Errorf("expected age 36 after update, got %d", got.Age)
	}
}
