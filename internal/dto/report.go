package dto

import (
	"time"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

// ReportRequest is the POST /reports body. Type defaults to submissions; the
// filter uses the same keys as the list endpoint.
type ReportRequest struct {
	Type   models.ReportType       `json:"type"`
	Format models.ReportFormat     `json:"format"`
	Filter models.SubmissionFilter `json:"filter"`
}

// ReportJobResponse acknowledges an enqueued report.
type ReportJobResponse struct {
	ID         string              `json:"id"`
	Status     models.ReportStatus `json:"status"`
	Progress   int                 `json:"progress"`
	Department string              `json:"department,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// ReportStatusResponse is polled by clients until resultUrl appears.
type ReportStatusResponse struct {
	ID         string              `json:"id"`
	Type       models.ReportType   `json:"type"`
	Format     models.ReportFormat `json:"format"`
	Status     models.ReportStatus `json:"status"`
	Progress   int                 `json:"progress"`
	Department string              `json:"department,omitempty"`
	ResultURL  *string             `json:"resultUrl,omitempty"`
	Error      *string             `json:"error,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	FinishedAt *time.Time          `json:"finishedAt,omitempty"`
}

// NewReportJobResponse summarises a freshly created job.
func NewReportJobResponse(job *models.ReportJob) *ReportJobResponse {
	return &ReportJobResponse{
		ID:         job.ID,
		Status:     job.Status,
		Progress:   job.Progress,
		Department: job.Params.Department,
		CreatedAt:  job.CreatedAt,
	}
}

// NewReportStatusResponse exposes a job; blank error messages left by retries are hidden.
func NewReportStatusResponse(job *models.ReportJob) *ReportStatusResponse {
	resp := &ReportStatusResponse{
		ID:         job.ID,
		Type:       job.Type,
		Format:     job.Params.Format,
		Status:     job.Status,
		Progress:   job.Progress,
		Department: job.Params.Department,
		ResultURL:  job.ResultURL,
		CreatedAt:  job.CreatedAt,
		FinishedAt: job.FinishedAt,
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp
}
