package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kaizen-portal-api/internal/dto"
	"github.com/noah-isme/kaizen-portal-api/internal/middleware"
	"github.com/noah-isme/kaizen-portal-api/internal/models"
	appErrors "github.com/noah-isme/kaizen-portal-api/pkg/errors"
	"github.com/noah-isme/kaizen-portal-api/pkg/response"
)

type dashboardService interface {
	Dashboard(ctx context.Context, query dto.DashboardQuery, actor models.Actor) (*dto.DashboardResponse, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Dashboard godoc
// @Summary Kaizen analytics dashboard
// @Tags Dashboard
// @Produce json
// @Param months query int false "Months in the trend series"
// @Param status query string false "Status filter"
// @Param plant query string false "Plant filter"
// @Param dateWindow query string false "7d, 30d or 90d"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	months, err := intQuery(c, "months", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, cacheHit, err := h.service.Dashboard(c.Request.Context(), dto.DashboardQuery{
		Filter: filterFromQuery(c),
		Months: months,
	}, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil)
}
