package models

import "time"

// SubmissionStatus captures the review state of a Kaizen submission.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "Pending"
	StatusApproved SubmissionStatus = "Approved"
	StatusRejected SubmissionStatus = "Rejected"
)

// Valid reports whether the status is one of the known states.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ApprovalLevel names the authority tier required to sign off a submission.
type ApprovalLevel string

const (
	ApprovalPlantHead      ApprovalLevel = "Plant Head"
	ApprovalOperationsHead ApprovalLevel = "Operations Head"
	ApprovalFinanceHead    ApprovalLevel = "Finance Head"
)

// ApprovalLevels lists the tiers from lowest to highest authority.
var ApprovalLevels = []ApprovalLevel{ApprovalPlantHead, ApprovalOperationsHead, ApprovalFinanceHead}

// Valid reports whether the level is one of the known tiers.
func (l ApprovalLevel) Valid() bool {
	for _, level := range ApprovalLevels {
		if l == level {
			return true
		}
	}
	return false
}

// Submission is a single Kaizen improvement proposal.
type Submission struct {
	ID               string           `db:"id" json:"id"`
	OperatorName     string           `db:"operator_name" json:"operatorName"`
	Department       string           `db:"department" json:"department"`
	Plant            string           `db:"plant" json:"plant"`
	Title            string           `db:"title" json:"title"`
	Description      string           `db:"description" json:"description"`
	ExpectedBenefits string           `db:"expected_benefits" json:"expectedBenefits"`
	FinancialImpact  int64            `db:"financial_impact" json:"financialImpact"`
	SubmissionDate   time.Time        `db:"submission_date" json:"submissionDate"`
	Status           SubmissionStatus `db:"status" json:"status"`
	ApprovalLevel    ApprovalLevel    `db:"approval_level" json:"approvalLevel"`
	ImageRef         *string          `db:"image_ref" json:"imageRef,omitempty"`
	LastEditDate     *time.Time       `db:"last_edit_date" json:"lastEditDate,omitempty"`
	EditedBy         *string          `db:"edited_by" json:"editedBy,omitempty"`
	DecidedBy        *string          `db:"decided_by" json:"decidedBy,omitempty"`
	DecidedAt        *time.Time       `db:"decided_at" json:"decidedAt,omitempty"`
	DecisionNote     *string          `db:"decision_note" json:"decisionNote,omitempty"`
}

// IsDecided reports whether the submission reached a terminal state.
func (s Submission) IsDecided() bool {
	return s.Status == StatusApproved || s.Status == StatusRejected
}

// SubmissionDraft carries operator input before it becomes a Submission.
// FinancialImpact is a pointer so a missing amount can be told apart from zero.
type SubmissionDraft struct {
	OperatorName     string `validate:"required"`
	Department       string `validate:"required"`
	Plant            string `validate:"required"`
	Title            string `validate:"required"`
	Description      string `validate:"required"`
	ExpectedBenefits string `validate:"required"`
	FinancialImpact  *int64 `validate:"required,gt=0,lte=10000000"`
}

// ValidationResult lists every rule a draft failed.
type ValidationResult struct {
	Valid  bool     `json:"isValid"`
	Errors []string `json:"errors"`
}

// SubmissionDecision records the single terminal transition of a submission.
type SubmissionDecision struct {
	Status    SubmissionStatus
	DecidedBy string
	DecidedAt time.Time
	Note      *string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
