package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kaizen-portal-api/internal/middleware"
	"github.com/noah-isme/kaizen-portal-api/internal/models"
	appErrors "github.com/noah-isme/kaizen-portal-api/pkg/errors"
)

func actorFromContext(c *gin.Context) (models.Actor, error) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return models.Actor{}, appErrors.ErrUnauthorized
	}
	return actor, nil
}

// filterFromQuery reads the shared filter query parameters used by list, dashboard and report endpoints.
func filterFromQuery(c *gin.Context) models.SubmissionFilter {
	return models.SubmissionFilter{
		Search:        strings.TrimSpace(c.Query("search")),
		Status:        strings.TrimSpace(c.Query("status")),
		Department:    strings.TrimSpace(c.Query("department")),
		Plant:         strings.TrimSpace(c.Query("plant")),
		AmountRange:   models.AmountRange(strings.TrimSpace(c.Query("amountRange"))),
		ApprovalLevel: strings.TrimSpace(c.Query("approvalLevel")),
		DateWindow:    models.DateWindow(strings.TrimSpace(c.Query("dateWindow"))),
	}
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, key+" must be an integer")
	}
	return v, nil
}
