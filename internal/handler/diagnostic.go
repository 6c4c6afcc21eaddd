package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/care-assistant-api/internal/diagnostics"
)

// DiagnosticHandler serves GET /test.
type DiagnosticHandler struct {
	Prober *diagnostics.Prober
}

// NewDiagnosticHandler panics if p is nil.
func NewDiagnosticHandler(p *diagnostics.Prober) *DiagnosticHandler {
	if p == nil {
		panic("nil prober passed to NewDiagnosticHandler")
	}
	return &DiagnosticHandler{Prober: p}
}

// Test reports backend, database and env status.  The probe folds every
// failure into the report, so the status is always 200.
func (h *DiagnosticHandler) Test(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Prober.Run(c.Request().Context()))
}
