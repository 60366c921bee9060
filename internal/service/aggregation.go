package service

import (
	"sort"
	"time"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

// DefaultTrendMonths is the length of the monthly trend series.
const DefaultTrendMonths = 6

// AggregationEngine computes rollups over a submission collection.
// Group order follows the catalog; groups without submissions are omitted.
type AggregationEngine struct {
	departments []string
	plants      []string
}

// NewAggregationEngine binds the engine to the catalog ordering.
func NewAggregationEngine(catalog *CatalogService) *AggregationEngine {
	if catalog == nil {
		catalog = NewCatalogService()
	}
	return &AggregationEngine{departments: catalog.DepartmentNames(), plants: catalog.PlantNames()}
}

// ByDepartment rolls submissions up per department.
func (e *AggregationEngine) ByDepartment(subs []models.Submission) []models.GroupSummary {
	return groupBy(subs, e.departments, func(s models.Submission) string { return s.Department })
}

// ByPlant rolls submissions up per plant.
func (e *AggregationEngine) ByPlant(subs []models.Submission) []models.GroupSummary {
	return groupBy(subs, e.plants, func(s models.Submission) string { return s.Plant })
}

// MonthlyTrend returns exactly months buckets ending with now's month, oldest first.
// Membership uses calendar month and year in now's location.
func (e *AggregationEngine) MonthlyTrend(subs []models.Submission, now time.Time, months int) []models.MonthSummary {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	result := make([]models.MonthSummary, 0, months)
	for i := months - 1; i >= 0; i-- {
		anchor := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		bucket := models.MonthSummary{
			Label: anchor.Format("Jan 2006"),
			Year:  anchor.Year(),
			Month: int(anchor.Month()),
		}
		for _, sub := range subs {
			if !SameCalendarMonth(sub.SubmissionDate, anchor) {
				continue
			}
			bucket.Total++
			bucket.FinancialImpact += sub.FinancialImpact
			switch sub.Status {
			case models.StatusPending:
				bucket.Pending++
			case models.StatusApproved:
				bucket.Approved++
			case models.StatusRejected:
				bucket.Rejected++
			}
		}
		result = append(result, bucket)
	}
	return result
}

// Overall totals the collection; ApprovalRate is 0 for an empty collection.
func (e *AggregationEngine) Overall(subs []models.Submission) models.OverallSummary {
	var summary models.OverallSummary
	for _, sub := range subs {
		summary.Total++
		summary.FinancialImpact += sub.FinancialImpact
		switch sub.Status {
		case models.StatusPending:
			summary.Pending++
		case models.StatusApproved:
			summary.Approved++
		case models.StatusRejected:
			summary.Rejected++
		}
	}
	if summary.Total > 0 {
		summary.ApprovalRate = float64(summary.Approved) / float64(summary.Total) * 100
	}
	return summary
}

// ApprovalWorkflow counts submissions per stored approval tier, lowest tier first.
func (e *AggregationEngine) ApprovalWorkflow(subs []models.Submission) []models.ApprovalTierSummary {
	result := make([]models.ApprovalTierSummary, 0, len(models.ApprovalLevels))
	for _, level := range models.ApprovalLevels {
		tier := models.ApprovalTierSummary{Level: level, Threshold: ThresholdDescription(level)}
		for _, sub := range subs {
			if sub.ApprovalLevel != level {
				continue
			}
			tier.Total++
			if sub.Status == models.StatusPending {
				tier.Pending++
			}
		}
		result = append(result, tier)
	}
	return result
}

// TopByImpact returns the n groups with the highest impact; ties keep input order.
func TopByImpact(groups []models.GroupSummary, n int) []models.GroupSummary {
	sorted := make([]models.GroupSummary, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FinancialImpact > sorted[j].FinancialImpact
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Recent returns up to n submissions ordered newest first.
func Recent(subs []models.Submission, n int) []models.Submission {
	sorted := make([]models.Submission, len(subs))
	copy(sorted, subs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmissionDate.After(sorted[j].SubmissionDate)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func groupBy(subs []models.Submission, order []string, key func(models.Submission) string) []models.GroupSummary {
	index := make(map[string]*models.GroupSummary, len(order))
	for _, name := range order {
		index[name] = &models.GroupSummary{Key: name}
	}
	for _, sub := range subs {
		group, ok := index[key(sub)]
		if !ok {
			continue
		}
		group.Total++
		group.FinancialImpact += sub.FinancialImpact
		switch sub.Status {
		case models.StatusPending:
			group.Pending++
		case models.StatusApproved:
			group.Approved++
		case models.StatusRejected:
			group.Rejected++
		}
	}
	result := make([]models.GroupSummary, 0, len(order))
	for _, name := range order {
		if group := index[name]; group.Total > 0 {
			result = append(result, *group)
		}
	}
	return result
}
