package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler serves the read-only catalog endpoints from the in-memory Store.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/tests", h.ListTests)
	api.GET("/tests/:id/parameters", h.GetTestParameters)
	api.GET("/sample-types", h.ListSampleTypes)
}

func (h *Handler) ListTests(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Tests())
}

func (h *Handler) GetTestParameters(c echo.Context) error {
	t, ok := h.store.TestByID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "test not found")
	}
	return c.JSON(http.StatusOK, t.Parameters)
}

func (h *Handler) ListSampleTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.SampleTypes())
}
