package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kaizen-portal-api/internal/dto"
	"github.com/noah-isme/kaizen-portal-api/internal/service"
	appErrors "github.com/noah-isme/kaizen-portal-api/pkg/errors"
	"github.com/noah-isme/kaizen-portal-api/pkg/export"
	"github.com/noah-isme/kaizen-portal-api/pkg/response"
)

// CatalogHandler serves the organization catalog and approval policy lookups used by the operator form.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	if catalog == nil {
		catalog = service.NewCatalogService()
	}
	return &CatalogHandler{catalog: catalog}
}

// Departments godoc
// @Summary List departments
// @Tags Catalog
// @Produce json
// @Param lang query string false "Locale (en, hi)"
// @Success 200 {object} response.Envelope
// @Router /catalog/departments [get]
func (h *CatalogHandler) Departments(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.catalog.Departments(h.locale(c)), nil)
}

// Plants godoc
// @Summary List plants
// @Tags Catalog
// @Produce json
// @Param lang query string false "Locale (en, hi)"
// @Success 200 {object} response.Envelope
// @Router /catalog/plants [get]
func (h *CatalogHandler) Plants(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.catalog.Plants(h.locale(c)), nil)
}

// ApprovalPolicy godoc
// @Summary Resolve the approval tier for an amount
// @Tags Catalog
// @Produce json
// @Param amount query int true "Financial impact in rupees"
// @Success 200 {object} response.Envelope
// @Router /approval-policy [get]
func (h *CatalogHandler) ApprovalPolicy(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("amount"))
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "amount must be a whole number of rupees"))
		return
	}
	if amount < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "amount must not be negative"))
		return
	}
	level := service.ApprovalLevelOf(amount)
	response.JSON(c, http.StatusOK, dto.ApprovalPolicyResponse{
		Amount:    amount,
		Level:     level,
		Threshold: service.ThresholdDescription(level),
		Formatted: export.FormatINR(amount),
	}, nil)
}

func (h *CatalogHandler) locale(c *gin.Context) string {
	locale := h.catalog.NegotiateLocale(strings.TrimSpace(c.Query("lang")), c.GetHeader("Accept-Language"))
	response.SetMeta(c, "locale", locale)
	return locale
}
