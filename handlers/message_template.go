package handlers

import (
	"net/http"
	"strings"

	"lexfund_crm_go/db"
	"lexfund_crm_go/middleware"
	"lexfund_crm_go/models"
	"lexfund_crm_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// MessageTemplateRequest is the payload for creating or updating a
// message template
type MessageTemplateRequest struct {
	Name        string `json:"name"`
	Channel     string `json:"channel"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

func (r *MessageTemplateRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name is required")
	}
	if !models.IsValidChannel(r.Channel) {
		return echo.NewHTTPError(http.StatusBadRequest, "Channel must be EMAIL or SMS")
	}
	if strings.TrimSpace(r.Body) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Body is required")
	}
	return nil
}

// GetMessageTemplatesHandler lists templates
func GetMessageTemplatesHandler(c echo.Context) error {
	query := db.DB.Model(&models.MessageTemplate{})
	if channel := c.QueryParam("channel"); channel != "" && models.IsValidChannel(channel) {
		query = query.Where("channel = ?", channel)
	}
	if c.QueryParam("is_active") != "all" {
		query = query.Where("is_active = ?", true)
	}

	var templates []models.MessageTemplate
	if err := query.Order("name ASC").Find(&templates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch templates")
	}
	return c.JSON(http.StatusOK, templates)
}

// GetMessageTemplateHandler returns one template with the placeholder
// variables it references
func GetMessageTemplateHandler(c echo.Context) error {
	var tmpl models.MessageTemplate
	if err := db.DB.First(&tmpl, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Template not found")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"template":  tmpl,
		"variables": services.ExtractVariables(tmpl.Subject + " " + tmpl.Body),
	})
}

// CreateMessageTemplateHandler creates a template
func CreateMessageTemplateHandler(c echo.Context) error {
	var req MessageTemplateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	var existing models.MessageTemplate
	if err := db.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return echo.NewHTTPError(http.StatusConflict, "A template with this name already exists")
	}

	tmpl := models.MessageTemplate{
		Name:        req.Name,
		Channel:     req.Channel,
		Subject:     req.Subject,
		Body:        req.Body,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		tmpl.IsActive = *req.IsActive
	}
	if user := middleware.GetCurrentUser(c); user != nil {
		tmpl.CreatedByID = &user.ID
	}

	if err := db.DB.Create(&tmpl).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create template")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionCreate, "MessageTemplate", tmpl.ID, tmpl.Name,
		"Message template created", nil, tmpl)

	return c.JSON(http.StatusCreated, tmpl)
}

// UpdateMessageTemplateHandler updates a template
func UpdateMessageTemplateHandler(c echo.Context) error {
	var tmpl models.MessageTemplate
	if err := db.DB.First(&tmpl, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Template not found")
	}

	var req MessageTemplateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	var duplicate models.MessageTemplate
	if err := db.DB.Where("name = ? AND id != ?", req.Name, tmpl.ID).First(&duplicate).Error; err == nil {
		return echo.NewHTTPError(http.StatusConflict, "A template with this name already exists")
	}

	oldTmpl := tmpl
	tmpl.Name = req.Name
	tmpl.Channel = req.Channel
	tmpl.Subject = req.Subject
	tmpl.Body = req.Body
	tmpl.Description = req.Description
	if req.IsActive != nil {
		tmpl.IsActive = *req.IsActive
	}

	if err := db.DB.Save(&tmpl).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update template")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionUpdate, "MessageTemplate", tmpl.ID, tmpl.Name,
		"Message template updated", oldTmpl, tmpl)

	return c.JSON(http.StatusOK, tmpl)
}

// DeleteMessageTemplateHandler soft-deletes a template
func DeleteMessageTemplateHandler(c echo.Context) error {
	var tmpl models.MessageTemplate
	if err := db.DB.First(&tmpl, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Template not found")
	}

	if err := db.DB.Delete(&tmpl).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete template")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionDelete, "MessageTemplate", tmpl.ID, tmpl.Name,
		"Message template deleted", nil, nil)

	return c.NoContent(http.StatusNoContent)
}

// PreviewMessageTemplateRequest selects the records to render against
type PreviewMessageTemplateRequest struct {
	PlaintiffID string  `json:"plaintiff_id"`
	CaseID      *string `json:"case_id"`
}

// PreviewMessageTemplateHandler renders a template against real
// records without creating a communication
func PreviewMessageTemplateHandler(c echo.Context) error {
	var tmpl models.MessageTemplate
	if err := db.DB.First(&tmpl, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Template not found")
	}

	var req PreviewMessageTemplateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	var plaintiff models.Plaintiff
	if err := db.DB.First(&plaintiff, "id = ?", req.PlaintiffID).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Plaintiff not found")
	}

	var caseRecord *models.Case
	if req.CaseID != nil && *req.CaseID != "" {
		var cs models.Case
		err := db.DB.Preload("LawFirm").Preload("Lawyer").First(&cs, "id = ?", *req.CaseID).Error
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusBadRequest, "Case not found")
		} else if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load case")
		}
		caseRecord = &cs
	}

	subject, body := services.RenderFromTemplate(&tmpl, &plaintiff, caseRecord)
	return c.JSON(http.StatusOK, map[string]string{
		"subject": subject,
		"body":    body,
	})
}
