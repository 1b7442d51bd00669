package handlers

import (
	"strconv"

	"lexfund_crm_go/middleware"
	"lexfund_crm_go/models"

	"github.com/labstack/echo/v4"
)

// parsePagination reads page/limit query params with the shared
// defaults (page 1, limit 20, max 100)
func parsePagination(c echo.Context) (page, limit int) {
	page = 1
	limit = 20
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if p, err := strconv.Atoi(pageParam); err == nil && p > 0 {
			page = p
		}
	}
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	return page, limit
}

// settingsScope returns the user and agent IDs to resolve setting
// overrides for the current request. Agents get both their user and
// agent overrides applied.
func settingsScope(c echo.Context) (userID, agentID string) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return "", ""
	}
	if user.Role == models.RoleAgent {
		return user.ID, user.ID
	}
	return user.ID, ""
}

// paginatedResponse wraps a data slice with pagination metadata
func paginatedResponse(data interface{}, page, limit int, total int64) map[string]interface{} {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return map[string]interface{}{
		"data": data,
		"pagination": map[string]interface{}{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
		},
	}
}
