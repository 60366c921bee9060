package service

import "github.com/noah-isme/kaizen-portal-api/internal/models"

var allowedTransitions = map[models.SubmissionStatus][]models.SubmissionStatus{
	models.StatusPending: {models.StatusApproved, models.StatusRejected},
}

// CanTransition reports whether a submission may move from one status to another.
// Approved and Rejected are terminal.
func CanTransition(from, to models.SubmissionStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
