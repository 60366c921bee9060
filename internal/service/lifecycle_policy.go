package service

import (
	"fmt"
	"math"
	"time"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
	appErrors "github.com/noah-isme/kaizen-portal-api/pkg/errors"
)

// DefaultEditWindow is how long after submission an administrator may edit a Kaizen.
const DefaultEditWindow = 30 * 24 * time.Hour

const day = 24 * time.Hour

// LifecyclePolicy decides edit eligibility from elapsed time since submission.
type LifecyclePolicy struct {
	EditWindow time.Duration
}

// NewLifecyclePolicy returns a policy with the given window, defaulting to 30 days.
func NewLifecyclePolicy(window time.Duration) LifecyclePolicy {
	if window <= 0 {
		window = DefaultEditWindow
	}
	return LifecyclePolicy{EditWindow: window}
}

// IsEditable reports whether now is still within the edit window; the boundary is inclusive.
func (p LifecyclePolicy) IsEditable(submissionDate, now time.Time) bool {
	return now.Sub(submissionDate) <= p.window()
}

// CheckEditable returns ErrEditWindowClosed once the window has elapsed.
func (p LifecyclePolicy) CheckEditable(sub models.Submission, now time.Time) error {
	if p.IsEditable(sub.SubmissionDate, now) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrEditWindowClosed,
		fmt.Sprintf("submissions can only be edited within %d days of submission", int(p.window()/day)))
}

// DaysSince returns the floor of whole days elapsed, negative for future dates.
func (p LifecyclePolicy) DaysSince(submissionDate, now time.Time) int {
	return DaysBetween(submissionDate, now)
}

// RelativeTime describes the submission age the way the portal lists show it.
// Future dates, such as a client clock running ahead, also read "Today".
func (p LifecyclePolicy) RelativeTime(submissionDate, now time.Time) string {
	days := DaysBetween(submissionDate, now)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return plural(days/7, "week")
	case days < 365:
		return plural(days/30, "month")
	default:
		return plural(days/365, "year")
	}
}

func (p LifecyclePolicy) window() time.Duration {
	if p.EditWindow <= 0 {
		return DefaultEditWindow
	}
	return p.EditWindow
}

// DaysBetween floors the elapsed time from start to now in days.
func DaysBetween(start, now time.Time) int {
	return int(math.Floor(float64(now.Sub(start)) / float64(day)))
}

// WithinDays reports whether date lies no more than days in the past relative to now.
// It measures elapsed time, unlike SameCalendarMonth.
func WithinDays(date, now time.Time, days int) bool {
	return now.Sub(date) <= time.Duration(days)*day
}

// SameCalendarMonth compares calendar month and year in now's location.
func SameCalendarMonth(date, now time.Time) bool {
	local := date.In(now.Location())
	return local.Year() == now.Year() && local.Month() == now.Month()
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
