package dto

import (
	"time"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

// CreateSubmissionRequest is the operator form payload.
type CreateSubmissionRequest struct {
	OperatorName     string `json:"operatorName"`
	Department       string `json:"department"`
	Plant            string `json:"plant"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	ExpectedBenefits string `json:"expectedBenefits"`
	FinancialImpact  *int64 `json:"financialImpact"`
}

// Draft converts the payload into a validator draft.
func (r CreateSubmissionRequest) Draft() models.SubmissionDraft {
	return models.SubmissionDraft{
		OperatorName:     r.OperatorName,
		Department:       r.Department,
		Plant:            r.Plant,
		Title:            r.Title,
		Description:      r.Description,
		ExpectedBenefits: r.ExpectedBenefits,
		FinancialImpact:  r.FinancialImpact,
	}
}

// UpdateSubmissionRequest replaces the editable fields of a submission.
type UpdateSubmissionRequest = CreateSubmissionRequest

// DecisionRequest approves or rejects a pending submission.
type DecisionRequest struct {
	Status models.SubmissionStatus `json:"status"`
	Note   string                  `json:"note"`
}

// SubmissionQuery mirrors the list endpoint's query string.
type SubmissionQuery struct {
	Filter   models.SubmissionFilter
	Page     int
	PageSize int
}

// SubmissionResponse decorates a submission with derived read-model fields.
type SubmissionResponse struct {
	models.Submission
	RequiredApprovalLevel models.ApprovalLevel `json:"requiredApprovalLevel"`
	Editable              bool                 `json:"editable"`
	DaysSinceSubmission   int                  `json:"daysSinceSubmission"`
	SubmittedAgo          string               `json:"submittedAgo"`
}

// SubmissionListResponse is a page of submissions.
type SubmissionListResponse struct {
	Items      []SubmissionResponse `json:"items"`
	Pagination models.Pagination    `json:"pagination"`
}

// ApprovalPolicyResponse describes which tier an amount routes to.
type ApprovalPolicyResponse struct {
	Amount    int64                `json:"amount"`
	Level     models.ApprovalLevel `json:"level"`
	Threshold string               `json:"threshold"`
	Formatted string               `json:"formatted"`
}

// ImageUploadResponse is returned after an image attachment.
type ImageUploadResponse struct {
	ID          string    `json:"id"`
	ImageRef    string    `json:"imageRef"`
	ContentType string    `json:"contentType"`
	Size        int       `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}
