package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MontelAle/participium-sub002/domain"
	"github.com/MontelAle/participium-sub002/internal/http/middleware"
	"github.com/MontelAle/participium-sub002/internal/services"
)

// ReportHandlers serves the report list with visibility filtering.
type ReportHandlers struct {
	reportRepo domain.ReportRepository
	logger     *zap.Logger
}

// NewReportHandlers creates new report handlers.
func NewReportHandlers(reportRepo domain.ReportRepository, logger *zap.Logger) *ReportHandlers {
	return &ReportHandlers{reportRepo: reportRepo, logger: logger}
}

// List returns the reports the caller may see, narrowed by the query
// parameters: mine, query, status, category, range or from/to. Guests get
// an empty set; the visibility filter itself assumes a resolved principal.
func (h *ReportHandlers) List(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil || principal.Role == nil {
		c.JSON(http.StatusOK, gin.H{"data": []gin.H{}, "total": 0, "count": 0})
		return
	}

	criteria, err := parseCriteria(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reports, err := h.reportRepo.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list reports", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reports"})
		return
	}

	showOnlyMine := c.Query("mine") == "true"
	result := services.FilterReports(principal, showOnlyMine, reports, criteria, time.Now())

	data := make([]gin.H, 0, len(result.Reports))
	for _, r := range result.Reports {
		data = append(data, gin.H{
			"id":         r.ExternalID,
			"title":      r.Title,
			"address":    r.Address,
			"status":     r.Status,
			"category":   r.CategoryName,
			"user_id":    r.UserID,
			"created_at": r.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  data,
		"total": result.Total,
		"count": len(data),
	})
}

func parseCriteria(c *gin.Context) (services.ReportCriteria, error) {
	criteria := services.ReportCriteria{Query: c.Query("query")}

	if statuses := c.Query("status"); statuses != "" {
		for _, s := range strings.Split(statuses, ",") {
			criteria.Statuses = append(criteria.Statuses, domain.ReportStatus(strings.TrimSpace(s)))
		}
	}
	if categories := c.Query("category"); categories != "" {
		for _, cat := range strings.Split(categories, ",") {
			criteria.Categories = append(criteria.Categories, strings.TrimSpace(cat))
		}
	}

	switch bucket := c.Query("range"); bucket {
	case "":
	case string(services.BucketToday), string(services.BucketLastWeek), string(services.BucketThisMonth):
		criteria.Date = &services.DateRange{Bucket: services.DateBucket(bucket)}
	default:
		return criteria, errInvalidRange
	}

	if criteria.Date == nil {
		from, err := parseDateParam(c.Query("from"))
		if err != nil {
			return criteria, err
		}
		to, err := parseDateParam(c.Query("to"))
		if err != nil {
			return criteria, err
		}
		if from != nil || to != nil {
			criteria.Date = &services.DateRange{From: from, To: to}
		}
	}
	return criteria, nil
}

var errInvalidRange = &paramError{"invalid range parameter"}
var errInvalidDate = &paramError{"invalid date parameter, expected YYYY-MM-DD"}

type paramError struct{ msg string }

func (e *paramError) Error() string { return e.msg }

func parseDateParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, errInvalidDate
	}
	return &t, nil
}
