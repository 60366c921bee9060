package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
	appErrors "github.com/noah-isme/kaizen-portal-api/pkg/errors"
)

func TestLifecyclePolicyEditWindowBoundary(t *testing.T) {
	policy := NewLifecyclePolicy(0)
	submitted := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.True(t, policy.IsEditable(submitted, submitted.Add(29*24*time.Hour)))
	assert.True(t, policy.IsEditable(submitted, submitted.Add(30*24*time.Hour)))
	assert.False(t, policy.IsEditable(submitted, submitted.Add(30*24*time.Hour+time.Second)))
	assert.False(t, policy.IsEditable(submitted, submitted.Add(31*24*time.Hour)))
}

func TestLifecyclePolicyCheckEditable(t *testing.T) {
	policy := NewLifecyclePolicy(0)
	submitted := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	sub := models.Submission{SubmissionDate: submitted}

	require.NoError(t, policy.CheckEditable(sub, submitted.Add(24*time.Hour)))

	err := policy.CheckEditable(sub, submitted.Add(45*24*time.Hour))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrEditWindowClosed))
	assert.Contains(t, err.Error(), "30 days")
}

func TestLifecyclePolicyDaysSinceFloors(t *testing.T) {
	policy := NewLifecyclePolicy(0)
	submitted := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, policy.DaysSince(submitted, submitted.Add(23*time.Hour)))
	assert.Equal(t, 1, policy.DaysSince(submitted, submitted.Add(47*time.Hour)))
	assert.Equal(t, -1, policy.DaysSince(submitted, submitted.Add(-time.Hour)))
}

func TestLifecyclePolicyRelativeTime(t *testing.T) {
	policy := NewLifecyclePolicy(0)
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	ago := func(days int) time.Time { return now.Add(-time.Duration(days) * 24 * time.Hour) }

	assert.Equal(t, "Today", policy.RelativeTime(ago(0), now))
	assert.Equal(t, "Yesterday", policy.RelativeTime(ago(1), now))
	assert.Equal(t, "3 days ago", policy.RelativeTime(ago(3), now))
	assert.Equal(t, "1 week ago", policy.RelativeTime(ago(7), now))
	assert.Equal(t, "2 weeks ago", policy.RelativeTime(ago(15), now))
	assert.Equal(t, "2 months ago", policy.RelativeTime(ago(61), now))
	assert.Equal(t, "1 year ago", policy.RelativeTime(ago(400), now))
	assert.Equal(t, "Today", policy.RelativeTime(ago(-3), now))
}

func TestLifecyclePolicySubmittedNow(t *testing.T) {
	policy := NewLifecyclePolicy(0)
	now := time.Now()
	sub := models.Submission{FinancialImpact: 75000, SubmissionDate: now}

	assert.Equal(t, models.ApprovalPlantHead, ApprovalLevelOf(sub.FinancialImpact))
	assert.True(t, policy.IsEditable(sub.SubmissionDate, now))
	assert.Equal(t, 0, policy.DaysSince(sub.SubmissionDate, now))
	require.NoError(t, policy.CheckEditable(sub, now))

	monthOld := now.Add(-31 * 24 * time.Hour)
	assert.False(t, policy.IsEditable(monthOld, now))
	assert.Equal(t, 31, policy.DaysSince(monthOld, now))
}

func TestWithinDaysVersusSameCalendarMonth(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	lastDayOfFeb := time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC)

	assert.True(t, WithinDays(lastDayOfFeb, now, 7))
	assert.False(t, SameCalendarMonth(lastDayOfFeb, now))
	assert.True(t, SameCalendarMonth(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), now))
}
