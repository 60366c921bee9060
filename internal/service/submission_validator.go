package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

// MaxFinancialImpact is the largest accepted impact in rupees (₹1 crore).
const MaxFinancialImpact int64 = 10000000

var requiredMessages = map[string]string{
	"OperatorName":     "Operator name is required",
	"Department":       "Department is required",
	"Plant":            "Plant is required",
	"Title":            "Kaizen title is required",
	"Description":      "Description is required",
	"ExpectedBenefits": "Expected benefits are required",
}

const (
	msgImpactNotPositive = "Financial impact must be greater than 0"
	msgImpactTooLarge    = "Financial impact cannot exceed ₹1 crore"
)

var sanitizeReplacer = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "")

// SubmissionValidator checks operator drafts and reports every failure at once.
type SubmissionValidator struct {
	validate *validator.Validate
}

// NewSubmissionValidator constructs the validator.
func NewSubmissionValidator(validate *validator.Validate) *SubmissionValidator {
	if validate == nil {
		validate = validator.New()
	}
	return &SubmissionValidator{validate: validate}
}

// Validate trims text fields and returns all failing rules in field order.
func (v *SubmissionValidator) Validate(draft models.SubmissionDraft) models.ValidationResult {
	trimmed := TrimDraft(draft)
	result := models.ValidationResult{Valid: true, Errors: []string{}}

	err := v.validate.Struct(trimmed)
	if err == nil {
		return result
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	for _, fe := range verrs {
		result.Errors = append(result.Errors, messageFor(fe))
	}
	result.Valid = len(result.Errors) == 0
	return result
}

// TrimDraft returns a copy of draft with surrounding whitespace removed from text fields.
func TrimDraft(draft models.SubmissionDraft) models.SubmissionDraft {
	draft.OperatorName = strings.TrimSpace(draft.OperatorName)
	draft.Department = strings.TrimSpace(draft.Department)
	draft.Plant = strings.TrimSpace(draft.Plant)
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Description = strings.TrimSpace(draft.Description)
	draft.ExpectedBenefits = strings.TrimSpace(draft.ExpectedBenefits)
	return draft
}

// Sanitize trims text and strips characters that break HTML rendering.
// It is a rendering convenience, not an injection defence.
func Sanitize(text string) string {
	return sanitizeReplacer.Replace(strings.TrimSpace(text))
}

func messageFor(fe validator.FieldError) string {
	if fe.StructField() == "FinancialImpact" {
		if fe.Tag() == "lte" {
			return msgImpactTooLarge
		}
		return msgImpactNotPositive
	}
	if msg, ok := requiredMessages[fe.StructField()]; ok {
		return msg
	}
	return fe.Error()
}
