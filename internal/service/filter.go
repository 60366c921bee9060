package service

import (
	"strings"
	"time"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

var dateWindowDays = map[models.DateWindow]int{
	models.Window7Days:  7,
	models.Window30Days: 30,
	models.Window90Days: 90,
}

// FilterSubmissions keeps the submissions matching every constrained dimension, preserving input order.
func FilterSubmissions(subs []models.Submission, criteria models.SubmissionFilter, now time.Time) []models.Submission {
	search := strings.ToLower(strings.TrimSpace(criteria.Search))
	result := make([]models.Submission, 0, len(subs))
	for _, sub := range subs {
		if search != "" && !matchesSearch(sub, search, criteria.GlobalView) {
			continue
		}
		if constrained(criteria.Status) && string(sub.Status) != criteria.Status {
			continue
		}
		if constrained(criteria.Department) && sub.Department != criteria.Department {
			continue
		}
		if constrained(criteria.Plant) && sub.Plant != criteria.Plant {
			continue
		}
		if constrained(criteria.ApprovalLevel) && string(sub.ApprovalLevel) != criteria.ApprovalLevel {
			continue
		}
		if !InAmountRange(sub.FinancialImpact, criteria.AmountRange) {
			continue
		}
		if days, ok := dateWindowDays[criteria.DateWindow]; ok && !WithinDays(sub.SubmissionDate, now, days) {
			continue
		}
		result = append(result, sub)
	}
	return result
}

// InAmountRange reports whether amount falls in the bucket; unknown or empty buckets match everything.
func InAmountRange(amount int64, bucket models.AmountRange) bool {
	switch bucket {
	case models.AmountUpTo1Lakh:
		return amount <= 100000
	case models.Amount1To3Lakh:
		return amount > 100000 && amount <= 300000
	case models.Amount3To10Lakh:
		return amount > 300000 && amount <= 1000000
	case models.AmountAbove10Lakh:
		return amount > 1000000
	default:
		return true
	}
}

// ValidAmountRange reports whether bucket is empty, All, or a known range.
func ValidAmountRange(bucket models.AmountRange) bool {
	switch bucket {
	case "", models.FilterAll, models.AmountUpTo1Lakh, models.Amount1To3Lakh, models.Amount3To10Lakh, models.AmountAbove10Lakh:
		return true
	}
	return false
}

// ValidDateWindow reports whether window is empty, All, or a known window.
func ValidDateWindow(window models.DateWindow) bool {
	if window == "" || window == models.FilterAll {
		return true
	}
	_, ok := dateWindowDays[window]
	return ok
}

func matchesSearch(sub models.Submission, needle string, globalView bool) bool {
	if strings.Contains(strings.ToLower(sub.OperatorName), needle) ||
		strings.Contains(strings.ToLower(sub.Title), needle) ||
		strings.Contains(strings.ToLower(sub.ID), needle) {
		return true
	}
	return globalView && strings.Contains(strings.ToLower(sub.Department), needle)
}

func constrained(value string) bool {
	return value != "" && value != models.FilterAll
}
