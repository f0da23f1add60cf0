package labrequest

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medilab/lims/internal/domain/billing"
	"github.com/medilab/lims/internal/domain/catalog"
	"github.com/medilab/lims/internal/domain/patient"
	"github.com/medilab/lims/pkg/pagination"
)

type Handler struct {
	svc     *Service
	catalog *catalog.Store
}

func NewHandler(svc *Service, store *catalog.Store) *Handler {
	return &Handler{svc: svc, catalog: store}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/requests", h.ListRequests)
	api.POST("/requests", h.CreateRequest)
	api.GET("/requests/:id", h.GetRequest)
	api.GET("/requests/:id/status-history", h.GetStatusHistory)
	api.POST("/requests/:id/collect", h.CollectSamples)
	api.POST("/requests/:id/update-results", h.UpdateResults)
	api.POST("/requests/:id/update-all-results", h.UpdateAllResults)
	api.POST("/requests/:id/update-comment", h.UpdateComment)
	api.POST("/requests/:id/verify", h.Verify)
	api.POST("/requests/:id/interpret", h.Interpret)
}

// requestResponse expands the stored test ids into full catalog entries for
// display, the way the report and list views need them.
type requestResponse struct {
	*LabRequest
	Tests []*catalog.LabTest `json:"tests"`
}

func (h *Handler) expand(lr *LabRequest) requestResponse {
	tests := make([]*catalog.LabTest, 0, len(lr.TestIDs))
	for _, id := range lr.TestIDs {
		if t, ok := h.catalog.TestByID(id); ok {
			tests = append(tests, t)
		}
	}
	return requestResponse{LabRequest: lr, Tests: tests}
}

func (h *Handler) expandAll(requests []*LabRequest) []requestResponse {
	out := make([]requestResponse, 0, len(requests))
	for _, lr := range requests {
		out = append(out, h.expand(lr))
	}
	return out
}

type createRequestBody struct {
	PatientID  string                 `json:"patient_id"`
	TestIDs    []string               `json:"test_ids"`
	Payment    billing.PaymentDetails `json:"payment"`
	ReferredBy string                 `json:"referred_by"`
}

func (h *Handler) CreateRequest(c echo.Context) error {
	var body createRequestBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	lr, err := h.svc.Create(c.Request().Context(), body.PatientID, body.TestIDs, body.Payment, body.ReferredBy)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, h.expand(lr))
}

func (h *Handler) ListRequests(c echo.Context) error {
	pg := pagination.FromContext(c)

	var requests []*LabRequest
	var total int
	var err error
	if patientID := c.QueryParam("patient_id"); patientID != "" {
		requests, total, err = h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	} else {
		requests, total, err = h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(h.expandAll(requests), total, pg.Limit, pg.Offset))
}

func (h *Handler) GetRequest(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	lr, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, h.expand(lr))
}

func (h *Handler) GetStatusHistory(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	history, err := h.svc.GetStatusHistory(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, history)
}

func (h *Handler) CollectSamples(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		CollectedSamples   []string `json:"collected_samples"`
		PhlebotomyComments string   `json:"phlebotomy_comments"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	lr, err := h.svc.CollectSamples(c.Request().Context(), id, body.CollectedSamples, body.PhlebotomyComments)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, h.expand(lr))
}

func (h *Handler) UpdateResults(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		TestID  string       `json:"test_id"`
		Results []TestResult `json:"results"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	lr, err := h.svc.UpdateResults(c.Request().Context(), id, body.TestID, body.Results)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, h.expand(lr))
}

func (h *Handler) UpdateAllResults(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		Results map[string][]TestResult `json:"results"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	lr, err := h.svc.UpdateAllResults(c.Request().Context(), id, body.Results)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, h.expand(lr))
}

func (h *Handler) UpdateComment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		Comments string `json:"comments"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	lr, err := h.svc.UpdateComment(c.Request().Context(), id, body.Comments)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, h.expand(lr))
}

func (h *Handler) Verify(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		Results map[string][]TestResult `json:"results"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	lr, err := h.svc.Verify(c.Request().Context(), id, body.Results)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, h.expand(lr))
}

func (h *Handler) Interpret(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	lr, err := h.svc.Interpret(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, h.expand(lr))
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func mapError(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	}
	var pve *patient.ValidationError
	if errors.As(err, &pve) {
		return echo.NewHTTPError(http.StatusBadRequest, pve.Error())
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, patient.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
