package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

func TestApprovalLevelOfBoundaries(t *testing.T) {
	cases := []struct {
		amount int64
		want   models.ApprovalLevel
	}{
		{1, models.ApprovalPlantHead},
		{100000, models.ApprovalPlantHead},
		{100001, models.ApprovalOperationsHead},
		{300000, models.ApprovalOperationsHead},
		{300001, models.ApprovalFinanceHead},
		{10000000, models.ApprovalFinanceHead},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ApprovalLevelOf(tc.amount), "amount %d", tc.amount)
	}
}

func TestApprovalLevelOfIsMonotonic(t *testing.T) {
	rank := map[models.ApprovalLevel]int{
		models.ApprovalPlantHead:      0,
		models.ApprovalOperationsHead: 1,
		models.ApprovalFinanceHead:    2,
	}
	prev := rank[ApprovalLevelOf(1)]
	for amount := int64(1); amount <= 10000000; amount += 4999 {
		current := rank[ApprovalLevelOf(amount)]
		assert.GreaterOrEqual(t, current, prev)
		prev = current
	}
}

func TestRequiredApprovalLevelIgnoresStoredValue(t *testing.T) {
	sub := models.Submission{FinancialImpact: 250000, ApprovalLevel: models.ApprovalPlantHead}
	assert.Equal(t, models.ApprovalOperationsHead, RequiredApprovalLevel(sub))
}

func TestThresholdDescription(t *testing.T) {
	assert.Equal(t, "≤ ₹1 lakh", ThresholdDescription(models.ApprovalPlantHead))
	assert.Equal(t, "₹3-10 lakhs", ThresholdDescription(models.ApprovalFinanceHead))
	assert.Empty(t, ThresholdDescription(models.ApprovalLevel("Board")))
}
