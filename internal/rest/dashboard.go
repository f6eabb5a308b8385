package rest

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"replacementGame/business/dashboard"
	"replacementGame/domain"
	"replacementGame/internal/view"
	"replacementGame/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type (
	DashboardService interface {
		Load(ctx context.Context) dashboard.View
	}

	DashboardHandler struct {
		dashboardService DashboardService
		timeout          time.Duration
	}
)

func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: svc,
		timeout:          10 * time.Second,
	}
}

// GET /retrain-dashboard
func (h *DashboardHandler) Page(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	return render(c, http.StatusOK, view.DashboardPage(h.dashboardService.Load(ctx)))
}

// GET /api/v1/retrain-logs
func (h *DashboardHandler) Logs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	v := h.dashboardService.Load(ctx)
	if v.Logs == nil {
		v.Logs = []domain.RetrainLog{}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(v.Logs))
}

// GET /retrain-dashboard/export.xlsx
func (h *DashboardHandler) Export(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	v := h.dashboardService.Load(ctx)

	var buf bytes.Buffer
	if err := dashboard.WriteXLSX(&buf, v.Logs); err != nil {
		logger.Error("Failed to export retrain logs", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="retrain-logs.xlsx"`)
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
