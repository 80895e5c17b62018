package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	apperrors "github.com/lumiskin/skincare-backend/internal/errors"
	"github.com/lumiskin/skincare-backend/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardController struct {
	dashboardService service.DashboardService
}

func NewDashboardController(dashboardService service.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

func (ctrl *DashboardController) dateRange(c *gin.Context) (from, to *time.Time, ok bool) {
	from, err := queryDate(c, "from")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid from date")
		return nil, nil, false
	}
	to, err = queryDate(c, "to")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid to date")
		return nil, nil, false
	}
	if from != nil && to != nil && to.Before(*from) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "from must not be after to")
		return nil, nil, false
	}
	return from, to, true
}

// GetSummary returns revenue, order and customer figures
// GET /api/Dashboard/summary?from=&to=
func (ctrl *DashboardController) GetSummary(c *gin.Context) {
	from, to, ok := ctrl.dateRange(c)
	if !ok {
		return
	}

	summary, err := ctrl.dashboardService.GetSummary(from, to)
	if err != nil {
		respondError(c, err, "build dashboard summary", nil)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ExportOrders downloads the orders in range as an XLSX workbook
// GET /api/Dashboard/orders/export?from=&to=
func (ctrl *DashboardController) ExportOrders(c *gin.Context) {
	from, to, ok := ctrl.dateRange(c)
	if !ok {
		return
	}

	data, err := ctrl.dashboardService.ExportOrders(from, to)
	if err != nil {
		respondError(c, err, "export orders", nil)
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-150405"))
	middleware.GetLoggerFromContext(c).Info("Orders exported", map[string]interface{}{
		"bytes":    len(data),
		"filename": filename,
	})

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
