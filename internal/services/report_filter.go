package services

import (
	"strings"
	"time"

	"github.com/MontelAle/participium-sub002/domain"
)

// DateBucket is a named createdAt range selectable in the report list UI.
type DateBucket string

const (
	BucketToday     DateBucket = "today"
	BucketLastWeek  DateBucket = "last_week"
	BucketThisMonth DateBucket = "this_month"
)

// DateRange selects reports by creation time. Either Bucket or the explicit
// From/To pair is set; From is truncated to start-of-day and To to
// end-of-day before comparison. A nil To leaves the upper bound open.
type DateRange struct {
	Bucket DateBucket
	From   *time.Time
	To     *time.Time
}

// ReportCriteria are the caller-supplied filters applied after the
// visibility rule. Empty fields match everything; criteria AND-combine.
type ReportCriteria struct {
	Query      string
	Statuses   []domain.ReportStatus
	Categories []string
	Date       *DateRange
}

// FilterResult is the narrowed report sequence plus the pre-criteria total,
// so list endpoints can render "N of M".
type FilterResult struct {
	Reports []domain.Report
	Total   int
}

// FilterReports narrows reports to what the principal may see, then applies
// the criteria. Relative order of the input is preserved and the output is
// fully materialized. Callers must not invoke this for guest requests; an
// unauthenticated caller sees nothing, enforced at the boundary.
func FilterReports(principal *domain.Principal, showOnlyMine bool, reports []domain.Report, criteria ReportCriteria, now time.Time) FilterResult {
	visible := make([]domain.Report, 0, len(reports))
	for _, r := range reports {
		if visibleTo(principal, showOnlyMine, &r) {
			visible = append(visible, r)
		}
	}

	out := make([]domain.Report, 0, len(visible))
	for _, r := range visible {
		if matchesCriteria(&r, criteria, now) {
			out = append(out, r)
		}
	}

	return FilterResult{Reports: out, Total: len(visible)}
}

// visibleTo applies the role/ownership exclusions in order; the first
// matching exclusion wins.
func visibleTo(principal *domain.Principal, showOnlyMine bool, r *domain.Report) bool {
	if showOnlyMine && r.UserID != principal.ID {
		return false
	}
	if principal.Role.IsCitizen() {
		// Pending reports are not yet public.
		if r.Status == domain.StatusPending {
			return false
		}
		// Citizens see only their own rejections.
		if r.Status == domain.StatusRejected && r.UserID != principal.ID {
			return false
		}
	}
	// Municipal roles and admin see the full set. The pr_officer status
	// facet restriction is a UI convenience, not a visibility rule.
	return true
}

func matchesCriteria(r *domain.Report, c ReportCriteria, now time.Time) bool {
	if c.Query != "" && !strings.Contains(strings.ToLower(r.Title), strings.ToLower(c.Query)) {
		return false
	}
	if len(c.Statuses) > 0 && !containsStatus(c.Statuses, r.Status) {
		return false
	}
	if len(c.Categories) > 0 && !containsString(c.Categories, r.CategoryName) {
		return false
	}
	if c.Date != nil && !matchesDate(r.CreatedAt, *c.Date, now) {
		return false
	}
	return true
}

func matchesDate(createdAt time.Time, d DateRange, now time.Time) bool {
	switch d.Bucket {
	case BucketToday:
		y1, m1, d1 := createdAt.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case BucketLastWeek:
		return createdAt.After(now.AddDate(0, 0, -7))
	case BucketThisMonth:
		return createdAt.After(now.AddDate(0, -1, 0))
	}

	if d.From != nil && createdAt.Before(startOfDay(*d.From)) {
		return false
	}
	if d.To != nil && createdAt.After(endOfDay(*d.To)) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func containsStatus(set []domain.ReportStatus, s domain.ReportStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
