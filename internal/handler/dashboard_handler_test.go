package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kaizen-portal-api/internal/dto"
	"github.com/noah-isme/kaizen-portal-api/internal/middleware"
	"github.com/noah-isme/kaizen-portal-api/internal/models"
	appErrors "github.com/noah-isme/kaizen-portal-api/pkg/errors"
)

type dashboardServiceMock struct {
	query    dto.DashboardQuery
	actor    models.Actor
	cacheHit bool
	err      error
}

func (m *dashboardServiceMock) Dashboard(ctx context.Context, query dto.DashboardQuery, actor models.Actor) (*dto.DashboardResponse, bool, error) {
	m.query = query
	m.actor = actor
	if m.err != nil {
		return nil, false, m.err
	}
	return &dto.DashboardResponse{Scope: "global", Overall: models.OverallSummary{Total: 3}}, m.cacheHit, nil
}

func TestDashboardHandlerDashboard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &dashboardServiceMock{cacheHit: true}
	handler := NewDashboardHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/dashboard?months=3&status=Pending&dateWindow=90d", nil)
	withActor(c, superAdmin)
	middleware.WithResponseMeta()(c)
	handler.Dashboard(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, mockSvc.query.Months)
	assert.Equal(t, "Pending", mockSvc.query.Filter.Status)
	assert.Equal(t, models.Window90Days, mockSvc.query.Filter.DateWindow)

	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, env.Meta, "processing_time_ms")
}

func TestDashboardHandlerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := newGinContext(http.MethodGet, "/dashboard", nil)
	NewDashboardHandler(&dashboardServiceMock{}).Dashboard(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newGinContext(http.MethodGet, "/dashboard?months=six", nil)
	withActor(c, qualityAdmin)
	NewDashboardHandler(&dashboardServiceMock{}).Dashboard(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	c, w = newGinContext(http.MethodGet, "/dashboard?plant=Mumbai", nil)
	withActor(c, qualityAdmin)
	NewDashboardHandler(&dashboardServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "invalid filter")}).Dashboard(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	c, w = newGinContext(http.MethodGet, "/dashboard", nil)
	withActor(c, qualityAdmin)
	NewDashboardHandler(nil).Dashboard(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
