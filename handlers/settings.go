package handlers

import (
	"errors"
	"net/http"

	"lexfund_crm_go/db"
	"lexfund_crm_go/middleware"
	"lexfund_crm_go/models"
	"lexfund_crm_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// GetSettingsHandler returns every category with its settings
func GetSettingsHandler(c echo.Context) error {
	categories, err := services.Settings.ListCategories()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch settings")
	}
	return c.JSON(http.StatusOK, categories)
}

// GetSettingHandler returns one setting's definition along with the
// value in effect for the current user
func GetSettingHandler(c echo.Context) error {
	setting, ok := services.Settings.Lookup(c.Param("category"), c.Param("key"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Setting not found")
	}

	userID, agentID := settingsScope(c)
	effective, _ := services.Settings.Resolve(c.Param("category"), c.Param("key"), userID, agentID)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"setting":         setting,
		"effective_value": effective,
	})
}

// UpdateSettingRequest is the payload for changing a setting value
type UpdateSettingRequest struct {
	Value string `json:"value"`
}

// UpdateSettingHandler changes a setting's stored value (admin only)
func UpdateSettingHandler(c echo.Context) error {
	var req UpdateSettingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	setting, err := services.Settings.SetValue(middleware.GetAuditContext(c),
		c.Param("category"), c.Param("key"), req.Value)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Setting not found")
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	return c.JSON(http.StatusOK, setting)
}

// SettingOverrideRequest is the payload for setting an override. When
// owner_id is empty the override applies to the current user.
type SettingOverrideRequest struct {
	Scope   string `json:"scope"` // "user" or "agent"
	OwnerID string `json:"owner_id"`
	Value   string `json:"value"`
}

// resolveOverrideTarget validates the scope and decides whose override
// is being touched. Setting another account's override requires admin.
func resolveOverrideTarget(c echo.Context, scope, ownerID string) (services.OverrideScope, string, error) {
	var s services.OverrideScope
	switch scope {
	case string(services.ScopeUser), "":
		s = services.ScopeUser
	case string(services.ScopeAgent):
		s = services.ScopeAgent
	default:
		return "", "", echo.NewHTTPError(http.StatusBadRequest, "Scope must be user or agent")
	}

	user := middleware.GetCurrentUser(c)
	if user == nil {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	if ownerID == "" || ownerID == user.ID {
		return s, user.ID, nil
	}
	if !user.IsAdmin() {
		return "", "", echo.NewHTTPError(http.StatusForbidden, "Only admins can change another account's overrides")
	}
	return s, ownerID, nil
}

// SetSettingOverrideHandler creates or updates a per-user or per-agent
// override
func SetSettingOverrideHandler(c echo.Context) error {
	var req SettingOverrideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	scope, ownerID, err := resolveOverrideTarget(c, req.Scope, req.OwnerID)
	if err != nil {
		return err
	}

	var owner models.User
	if dbErr := db.DB.First(&owner, "id = ?", ownerID).Error; dbErr != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Override owner not found")
	}
	if scope == services.ScopeAgent && owner.Role != models.RoleAgent {
		return echo.NewHTTPError(http.StatusBadRequest, "Agent overrides require an agent account")
	}

	if err := services.Settings.SetOverride(middleware.GetAuditContext(c),
		scope, ownerID, c.Param("category"), c.Param("key"), req.Value); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Setting not found")
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteSettingOverrideHandler removes an override
func DeleteSettingOverrideHandler(c echo.Context) error {
	scope, ownerID, err := resolveOverrideTarget(c, c.QueryParam("scope"), c.QueryParam("owner_id"))
	if err != nil {
		return err
	}

	if err := services.Settings.DeleteOverride(middleware.GetAuditContext(c),
		scope, ownerID, c.Param("category"), c.Param("key")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Override not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete override")
	}

	return c.NoContent(http.StatusNoContent)
}
