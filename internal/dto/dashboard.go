package dto

import (
	"time"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

// DashboardQuery narrows the dashboard to a filtered collection.
type DashboardQuery struct {
	Filter models.SubmissionFilter
	Months int
}

// DashboardResponse is the admin analytics payload.
type DashboardResponse struct {
	Overall          models.OverallSummary        `json:"overall"`
	ByDepartment     []models.GroupSummary        `json:"byDepartment"`
	ByPlant          []models.GroupSummary        `json:"byPlant"`
	MonthlyTrend     []models.MonthSummary        `json:"monthlyTrend"`
	TopDepartments   []models.GroupSummary        `json:"topDepartments"`
	TopPlants        []models.GroupSummary        `json:"topPlants"`
	ApprovalWorkflow []models.ApprovalTierSummary `json:"approvalWorkflow"`
	Recent           []SubmissionResponse         `json:"recent"`
	Scope            string                       `json:"scope"`
	GeneratedAt      time.Time                    `json:"generatedAt"`
}
