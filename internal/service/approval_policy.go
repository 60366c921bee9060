package service

import "github.com/noah-isme/kaizen-portal-api/internal/models"

// Approval tier ceilings in whole rupees.
const (
	PlantHeadLimit      int64 = 100000
	OperationsHeadLimit int64 = 300000
)

var thresholdDescriptions = map[models.ApprovalLevel]string{
	models.ApprovalPlantHead:      "≤ ₹1 lakh",
	models.ApprovalOperationsHead: "₹1-3 lakhs",
	models.ApprovalFinanceHead:    "₹3-10 lakhs",
}

// ApprovalLevelOf maps a financial impact to the authority tier that must approve it.
// Boundaries are inclusive on the upper side of each tier.
func ApprovalLevelOf(amount int64) models.ApprovalLevel {
	switch {
	case amount <= PlantHeadLimit:
		return models.ApprovalPlantHead
	case amount <= OperationsHeadLimit:
		return models.ApprovalOperationsHead
	default:
		return models.ApprovalFinanceHead
	}
}

// RequiredApprovalLevel recomputes the tier from the submission's current amount,
// ignoring the value stamped at creation.
func RequiredApprovalLevel(sub models.Submission) models.ApprovalLevel {
	return ApprovalLevelOf(sub.FinancialImpact)
}

// ThresholdDescription returns the human readable amount band of a tier.
func ThresholdDescription(level models.ApprovalLevel) string {
	return thresholdDescriptions[level]
}
