package handlers

import (
	"net/http"
	"time"

	"lexfund_crm_go/db"
	"lexfund_crm_go/services"

	"github.com/labstack/echo/v4"
)

// GetAuditLogsHandler returns paginated audit logs with filters.
// Admin only; registered under the admin route group.
func GetAuditLogsHandler(c echo.Context) error {
	page, limit := parsePagination(c)

	filters := services.AuditLogFilters{
		UserID:       c.QueryParam("user_id"),
		ResourceType: c.QueryParam("resource_type"),
		Action:       c.QueryParam("action"),
		SearchQuery:  c.QueryParam("q"),
	}
	if dateFrom := c.QueryParam("date_from"); dateFrom != "" {
		if t, err := time.Parse("2006-01-02", dateFrom); err == nil {
			filters.DateFrom = t
		}
	}
	if dateTo := c.QueryParam("date_to"); dateTo != "" {
		if t, err := time.Parse("2006-01-02", dateTo); err == nil {
			// Include the whole end day
			filters.DateTo = t.Add(24*time.Hour - time.Nanosecond)
		}
	}

	logs, total, err := services.GetAuditLogs(db.DB, filters, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch audit logs")
	}

	return c.JSON(http.StatusOK, paginatedResponse(logs, page, limit, total))
}

// GetResourceAuditHistoryHandler returns the audit trail for one resource
func GetResourceAuditHistoryHandler(c echo.Context) error {
	logs, err := services.GetResourceAuditHistory(db.DB, c.Param("type"), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch audit history")
	}
	return c.JSON(http.StatusOK, logs)
}
