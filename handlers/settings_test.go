package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"lexfund_crm_go/middleware"
	"lexfund_crm_go/models"
	"lexfund_crm_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGetSettingsHandler(t *testing.T) {
	database := setupTestDB(t)
	assert.NoError(t, services.Settings.Seed())

	_, c, rec := setupEcho(http.MethodGet, "/api/settings", nil)
	createTestUser(t, database, c, models.RoleAgent)

	err := GetSettingsHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var categories []models.SettingsCategory
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	assert.Len(t, categories, 3)
	// Ordered by position
	assert.Equal(t, "funding", categories[0].Key)
	assert.NotEmpty(t, categories[0].Settings)
}

func TestUpdateSettingHandler(t *testing.T) {
	t.Run("Valid integer value", func(t *testing.T) {
		database := setupTestDB(t)
		assert.NoError(t, services.Settings.Seed())

		_, c, rec := setupEcho(http.MethodPut, "/api/settings/funding/max_advance_cents",
			strings.NewReader(`{"value":"5000000"}`))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c.SetParamNames("category", "key")
		c.SetParamValues("funding", "max_advance_cents")
		createTestUser(t, database, c, models.RoleAdmin)

		err := UpdateSettingHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		// New value is in effect after cache invalidation
		assert.Equal(t, int64(5000000), services.Settings.GetInt("funding", "max_advance_cents", "", ""))

		// Mutation is audit logged
		var count int64
		database.Model(&models.AuditLog{}).Where("resource_type = ?", "Setting").Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Type mismatch is rejected", func(t *testing.T) {
		database := setupTestDB(t)
		assert.NoError(t, services.Settings.Seed())

		_, c, _ := setupEcho(http.MethodPut, "/api/settings/funding/max_advance_cents",
			strings.NewReader(`{"value":"lots"}`))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c.SetParamNames("category", "key")
		c.SetParamValues("funding", "max_advance_cents")
		createTestUser(t, database, c, models.RoleAdmin)

		err := UpdateSettingHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnprocessableEntity, httpErr.Code)

		// Stored value unchanged
		assert.Equal(t, int64(2500000), services.Settings.GetInt("funding", "max_advance_cents", "", ""))
	})

	t.Run("Unknown setting", func(t *testing.T) {
		database := setupTestDB(t)
		assert.NoError(t, services.Settings.Seed())

		_, c, _ := setupEcho(http.MethodPut, "/api/settings/funding/no_such_key",
			strings.NewReader(`{"value":"1"}`))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c.SetParamNames("category", "key")
		c.SetParamValues("funding", "no_such_key")
		createTestUser(t, database, c, models.RoleAdmin)

		err := UpdateSettingHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, httpErr.Code)
	})
}

func TestSettingOverrideHandlers(t *testing.T) {
	t.Run("Agent override wins over setting value", func(t *testing.T) {
		database := setupTestDB(t)
		assert.NoError(t, services.Settings.Seed())

		_, c, rec := setupEcho(http.MethodPut, "/api/settings/funding/max_advance_cents/override",
			strings.NewReader(`{"scope":"agent","value":"1000000"}`))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c.SetParamNames("category", "key")
		c.SetParamValues("funding", "max_advance_cents")
		agent := createTestUser(t, database, c, models.RoleAgent)

		err := SetSettingOverrideHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		assert.Equal(t, int64(1000000), services.Settings.GetInt("funding", "max_advance_cents", agent.ID, agent.ID))
		// Other accounts still see the base value
		assert.Equal(t, int64(2500000), services.Settings.GetInt("funding", "max_advance_cents", "", ""))
	})

	t.Run("Non-admin cannot override another account", func(t *testing.T) {
		database := setupTestDB(t)
		assert.NoError(t, services.Settings.Seed())

		_, c, _ := setupEcho(http.MethodPut, "/api/settings/funding/max_advance_cents/override",
			strings.NewReader(`{"scope":"user","owner_id":"someone-else","value":"1"}`))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c.SetParamNames("category", "key")
		c.SetParamValues("funding", "max_advance_cents")
		createTestUser(t, database, c, models.RoleAgent)

		err := SetSettingOverrideHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	})

	t.Run("Admin cannot target a nonexistent owner", func(t *testing.T) {
		database := setupTestDB(t)
		assert.NoError(t, services.Settings.Seed())

		_, c, _ := setupEcho(http.MethodPut, "/api/settings/funding/max_advance_cents/override",
			strings.NewReader(`{"scope":"user","owner_id":"no-such-user","value":"1000000"}`))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c.SetParamNames("category", "key")
		c.SetParamValues("funding", "max_advance_cents")
		createTestUser(t, database, c, models.RoleAdmin)

		err := SetSettingOverrideHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)

		// No dangling override was written
		var count int64
		database.Model(&models.UserSetting{}).Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("Delete override restores the base value", func(t *testing.T) {
		database := setupTestDB(t)
		assert.NoError(t, services.Settings.Seed())

		_, c, _ := setupEcho(http.MethodPut, "/api/settings/communications/sms_enabled/override",
			strings.NewReader(`{"scope":"user","value":"false"}`))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c.SetParamNames("category", "key")
		c.SetParamValues("communications", "sms_enabled")
		user := createTestUser(t, database, c, models.RoleAgent)
		assert.NoError(t, SetSettingOverrideHandler(c))

		assert.False(t, services.Settings.GetBool("communications", "sms_enabled", user.ID, ""))

		_, c2, rec2 := setupEcho(http.MethodDelete, "/api/settings/communications/sms_enabled/override?scope=user", nil)
		c2.SetParamNames("category", "key")
		c2.SetParamValues("communications", "sms_enabled")
		c2.Set(middleware.ContextKeyUser, user)
		c2.Set(middleware.ContextKeyAuditContext, services.AuditContext{UserID: user.ID, UserName: user.Name, UserRole: user.Role})

		assert.NoError(t, DeleteSettingOverrideHandler(c2))
		assert.Equal(t, http.StatusNoContent, rec2.Code)
		assert.True(t, services.Settings.GetBool("communications", "sms_enabled", user.ID, ""))
	})

	t.Run("Deleting a missing override is a 404", func(t *testing.T) {
		database := setupTestDB(t)
		assert.NoError(t, services.Settings.Seed())

		_, c, _ := setupEcho(http.MethodDelete, "/api/settings/communications/sms_enabled/override?scope=user", nil)
		c.SetParamNames("category", "key")
		c.SetParamValues("communications", "sms_enabled")
		createTestUser(t, database, c, models.RoleAgent)

		err := DeleteSettingOverrideHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, httpErr.Code)
	})
}
