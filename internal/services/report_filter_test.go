package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MontelAle/participium-sub002/domain"
)

var filterNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func report(id uint, owner uint, status domain.ReportStatus) domain.Report {
	return domain.Report{
		ID:        id,
		Title:     "Broken streetlight",
		Status:    status,
		UserID:    owner,
		CreatedAt: filterNow.Add(-time.Hour),
	}
}

func mixedReports() []domain.Report {
	// Owners A=1, B=2.
	return []domain.Report{
		report(1, 1, domain.StatusPending),
		report(2, 2, domain.StatusPending),
		report(3, 1, domain.StatusInProgress),
		report(4, 2, domain.StatusInProgress),
		report(5, 1, domain.StatusRejected),
		report(6, 2, domain.StatusRejected),
	}
}

func ids(reports []domain.Report) []uint {
	out := make([]uint, 0, len(reports))
	for _, r := range reports {
		out = append(out, r.ID)
	}
	return out
}

func TestFilterReports_Visibility(t *testing.T) {
	tests := []struct {
		name         string
		principal    *domain.Principal
		showOnlyMine bool
		wantIDs      []uint
	}{
		{
			name:      "citizen sees no pending and only own rejected",
			principal: &domain.Principal{ID: 1, Role: domain.RoleByName(domain.RoleUser)},
			wantIDs:   []uint{3, 4, 5},
		},
		{
			name:      "other citizen sees their own rejected instead",
			principal: &domain.Principal{ID: 2, Role: domain.RoleByName(domain.RoleUser)},
			wantIDs:   []uint{3, 4, 6},
		},
		{
			name:      "admin sees the full set",
			principal: &domain.Principal{ID: 9, Role: domain.RoleByName(domain.RoleAdmin)},
			wantIDs:   []uint{1, 2, 3, 4, 5, 6},
		},
		{
			name:      "pr officer has no status-based suppression",
			principal: &domain.Principal{ID: 9, Role: domain.RoleByName(domain.RolePROfficer)},
			wantIDs:   []uint{1, 2, 3, 4, 5, 6},
		},
		{
			name:      "tech officer sees the full set",
			principal: &domain.Principal{ID: 9, Role: domain.RoleByName(domain.RoleTechOfficer)},
			wantIDs:   []uint{1, 2, 3, 4, 5, 6},
		},
		{
			name:         "showOnlyMine restricts to owned records first",
			principal:    &domain.Principal{ID: 1, Role: domain.RoleByName(domain.RoleUser)},
			showOnlyMine: true,
			wantIDs:      []uint{3, 5},
		},
		{
			name:         "showOnlyMine applies to municipal staff too",
			principal:    &domain.Principal{ID: 2, Role: domain.RoleByName(domain.RoleTechOfficer)},
			showOnlyMine: true,
			wantIDs:      []uint{2, 4, 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FilterReports(tt.principal, tt.showOnlyMine, mixedReports(), ReportCriteria{}, filterNow)
			assert.Equal(t, tt.wantIDs, ids(result.Reports))
			assert.Equal(t, len(tt.wantIDs), result.Total)
		})
	}
}

func TestFilterReports_Criteria(t *testing.T) {
	admin := &domain.Principal{ID: 9, Role: domain.RoleByName(domain.RoleAdmin)}

	reports := []domain.Report{
		{ID: 1, Title: "Pothole on Main Street", Status: domain.StatusPending, CategoryName: "Roads", CreatedAt: filterNow.Add(-2 * time.Hour)},
		{ID: 2, Title: "Graffiti at the station", Status: domain.StatusInProgress, CategoryName: "Vandalism", CreatedAt: filterNow.AddDate(0, 0, -3)},
		{ID: 3, Title: "Street sign missing", Status: domain.StatusResolved, CategoryName: "Roads", CreatedAt: filterNow.AddDate(0, 0, -40)},
	}

	t.Run("query matches title case-insensitively", func(t *testing.T) {
		result := FilterReports(admin, false, reports, ReportCriteria{Query: "STREET"}, filterNow)
		assert.Equal(t, []uint{1, 3}, ids(result.Reports))
		assert.Equal(t, 3, result.Total, "total counts the pre-criteria set")
	})

	t.Run("empty query matches everything", func(t *testing.T) {
		result := FilterReports(admin, false, reports, ReportCriteria{}, filterNow)
		assert.Len(t, result.Reports, 3)
	})

	t.Run("status and category AND-combine", func(t *testing.T) {
		result := FilterReports(admin, false, reports, ReportCriteria{
			Statuses:   []domain.ReportStatus{domain.StatusPending, domain.StatusResolved},
			Categories: []string{"Roads"},
		}, filterNow)
		assert.Equal(t, []uint{1, 3}, ids(result.Reports))

		result = FilterReports(admin, false, reports, ReportCriteria{
			Statuses:   []domain.ReportStatus{domain.StatusInProgress},
			Categories: []string{"Roads"},
		}, filterNow)
		assert.Empty(t, result.Reports)
	})

	t.Run("today bucket", func(t *testing.T) {
		result := FilterReports(admin, false, reports, ReportCriteria{
			Date: &DateRange{Bucket: BucketToday},
		}, filterNow)
		assert.Equal(t, []uint{1}, ids(result.Reports))
	})

	t.Run("last week bucket", func(t *testing.T) {
		result := FilterReports(admin, false, reports, ReportCriteria{
			Date: &DateRange{Bucket: BucketLastWeek},
		}, filterNow)
		assert.Equal(t, []uint{1, 2}, ids(result.Reports))
	})

	t.Run("this month bucket", func(t *testing.T) {
		// A report 20 days old is still inside the month window; one 40
		// days old is not.
		withRecent := append([]domain.Report{}, reports...)
		withRecent = append(withRecent, domain.Report{
			ID: 4, Title: "Fallen tree", Status: domain.StatusPending,
			CategoryName: "Parks", CreatedAt: filterNow.AddDate(0, 0, -20),
		})
		result := FilterReports(admin, false, withRecent, ReportCriteria{
			Date: &DateRange{Bucket: BucketThisMonth},
		}, filterNow)
		assert.Equal(t, []uint{1, 2, 4}, ids(result.Reports))
	})

	t.Run("explicit range truncates to day boundaries", func(t *testing.T) {
		// From noon of the report's creation day: truncation to start of
		// day must still include a report created that morning.
		from := time.Date(2026, time.March, 12, 12, 0, 0, 0, time.UTC)
		to := time.Date(2026, time.March, 12, 1, 0, 0, 0, time.UTC)
		result := FilterReports(admin, false, reports, ReportCriteria{
			Date: &DateRange{From: &from, To: &to},
		}, filterNow)
		assert.Equal(t, []uint{2}, ids(result.Reports))
	})

	t.Run("open-ended upper bound", func(t *testing.T) {
		from := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
		result := FilterReports(admin, false, reports, ReportCriteria{
			Date: &DateRange{From: &from},
		}, filterNow)
		assert.Equal(t, []uint{1, 2}, ids(result.Reports))
	})
}

func TestFilterReports_PreservesOrderAndMaterializes(t *testing.T) {
	admin := &domain.Principal{ID: 9, Role: domain.RoleByName(domain.RoleAdmin)}

	input := mixedReports()
	result := FilterReports(admin, false, input, ReportCriteria{}, filterNow)
	require.Len(t, result.Reports, len(input))
	assert.Equal(t, ids(input), ids(result.Reports), "relative input order is kept")

	// Mutating the input afterwards must not affect the materialized output.
	input[0].Title = "changed"
	assert.NotEqual(t, "changed", result.Reports[0].Title)
}
