package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"lexfund_crm_go/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestCreateMessageTemplateHandler(t *testing.T) {
	t.Run("Valid template", func(t *testing.T) {
		database := setupTestDB(t)
		body := `{"name":"Approval notice","channel":"EMAIL","subject":"Case {{case.number}} approved","body":"Dear {{plaintiff.first_name}}, good news."}`
		_, c, rec := setupEcho(http.MethodPost, "/api/message-templates", strings.NewReader(body))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		user := createTestUser(t, database, c, models.RoleAdmin)

		err := CreateMessageTemplateHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var tmpl models.MessageTemplate
		assert.NoError(t, database.First(&tmpl, "name = ?", "Approval notice").Error)
		assert.True(t, tmpl.IsActive)
		assert.Equal(t, user.ID, *tmpl.CreatedByID)
	})

	t.Run("Duplicate name", func(t *testing.T) {
		database := setupTestDB(t)
		existing := createTestTemplate(t, database, models.ChannelEmail)

		body := `{"name":"` + existing.Name + `","channel":"EMAIL","body":"Hello"}`
		_, c, _ := setupEcho(http.MethodPost, "/api/message-templates", strings.NewReader(body))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		createTestUser(t, database, c, models.RoleAdmin)

		err := CreateMessageTemplateHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusConflict, httpErr.Code)
	})

	t.Run("Missing body", func(t *testing.T) {
		database := setupTestDB(t)
		payload := `{"name":"Empty","channel":"SMS"}`
		_, c, _ := setupEcho(http.MethodPost, "/api/message-templates", strings.NewReader(payload))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		createTestUser(t, database, c, models.RoleAdmin)

		err := CreateMessageTemplateHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})
}

func TestGetMessageTemplateHandler(t *testing.T) {
	database := setupTestDB(t)
	tmpl := createTestTemplate(t, database, models.ChannelEmail)

	_, c, rec := setupEcho(http.MethodGet, "/api/message-templates/"+tmpl.ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(tmpl.ID)
	createTestUser(t, database, c, models.RoleAgent)

	err := GetMessageTemplateHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Template  models.MessageTemplate `json:"template"`
		Variables []string               `json:"variables"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, tmpl.ID, resp.Template.ID)
	assert.Contains(t, resp.Variables, "case.number")
	assert.Contains(t, resp.Variables, "plaintiff.first_name")
}

func TestGetMessageTemplatesHandlerFilters(t *testing.T) {
	database := setupTestDB(t)
	createTestTemplate(t, database, models.ChannelEmail)
	inactive := createTestTemplate(t, database, models.ChannelSMS)
	assert.NoError(t, database.Model(inactive).Update("is_active", false).Error)

	t.Run("Inactive hidden by default", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/message-templates", nil)
		createTestUser(t, database, c, models.RoleAgent)

		assert.NoError(t, GetMessageTemplatesHandler(c))
		var templates []models.MessageTemplate
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &templates))
		assert.Len(t, templates, 1)
	})

	t.Run("is_active=all shows everything", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/message-templates?is_active=all", nil)
		createTestUser(t, database, c, models.RoleAgent)

		assert.NoError(t, GetMessageTemplatesHandler(c))
		var templates []models.MessageTemplate
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &templates))
		assert.Len(t, templates, 2)
	})
}

func TestPreviewMessageTemplateHandler(t *testing.T) {
	database := setupTestDB(t)
	tmpl := createTestTemplate(t, database, models.ChannelEmail)
	plaintiff := createTestPlaintiff(t, database)
	firm := createTestFirm(t, database)
	caseRecord := createTestCase(t, database, plaintiff, firm)

	body := `{"plaintiff_id":"` + plaintiff.ID + `","case_id":"` + caseRecord.ID + `"}`
	_, c, rec := setupEcho(http.MethodPost, "/api/message-templates/"+tmpl.ID+"/preview", strings.NewReader(body))
	c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c.SetParamNames("id")
	c.SetParamValues(tmpl.ID)
	createTestUser(t, database, c, models.RoleAgent)

	err := PreviewMessageTemplateHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["subject"], caseRecord.CaseNumber)
	assert.Contains(t, resp["body"], "Maria")
	assert.NotContains(t, resp["body"], "{{")
}

func TestDeleteMessageTemplateHandler(t *testing.T) {
	database := setupTestDB(t)
	tmpl := createTestTemplate(t, database, models.ChannelEmail)

	_, c, rec := setupEcho(http.MethodDelete, "/api/message-templates/"+tmpl.ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(tmpl.ID)
	createTestUser(t, database, c, models.RoleAdmin)

	assert.NoError(t, DeleteMessageTemplateHandler(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Soft deleted: gone from default queries, still in the table
	var count int64
	database.Model(&models.MessageTemplate{}).Count(&count)
	assert.Equal(t, int64(0), count)
	database.Unscoped().Model(&models.MessageTemplate{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
