package handlers

import (
	"net/http"
	"strings"

	"lexfund_crm_go/config"
	"lexfund_crm_go/db"
	"lexfund_crm_go/middleware"
	"lexfund_crm_go/models"
	"lexfund_crm_go/services"

	"github.com/labstack/echo/v4"
)

// GetCommunicationsHandler returns a paginated communication history
func GetCommunicationsHandler(c echo.Context) error {
	page, limit := parsePagination(c)

	query := db.DB.Model(&models.Communication{})

	if plaintiffID := c.QueryParam("plaintiff_id"); plaintiffID != "" {
		query = query.Where("plaintiff_id = ?", plaintiffID)
	}
	if caseID := c.QueryParam("case_id"); caseID != "" {
		query = query.Where("case_id = ?", caseID)
	}
	if channel := c.QueryParam("channel"); channel != "" && models.IsValidChannel(channel) {
		query = query.Where("channel = ?", channel)
	}
	if status := c.QueryParam("status"); status != "" && models.IsValidCommunicationStatus(status) {
		query = query.Where("status = ?", status)
	}
	if direction := c.QueryParam("direction"); direction != "" && models.IsValidDirection(direction) {
		query = query.Where("direction = ?", direction)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count communications")
	}

	var comms []models.Communication
	if err := query.Preload("Plaintiff").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&comms).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch communications")
	}

	return c.JSON(http.StatusOK, paginatedResponse(comms, page, limit, total))
}

// GetCommunicationHandler returns a single communication
func GetCommunicationHandler(c echo.Context) error {
	var comm models.Communication
	if err := db.DB.Preload("Plaintiff").Preload("Case").Preload("Template").
		First(&comm, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Communication not found")
	}
	return c.JSON(http.StatusOK, comm)
}

// CreateCommunicationRequest is the payload for creating a communication.
// Either a template_id or a body must be supplied; a template renders
// subject and body from the plaintiff and case records.
type CreateCommunicationRequest struct {
	PlaintiffID string  `json:"plaintiff_id"`
	CaseID      *string `json:"case_id"`
	Channel     string  `json:"channel"`
	Direction   string  `json:"direction"`
	Subject     string  `json:"subject"`
	Body        string  `json:"body"`
	TemplateID  *string `json:"template_id"`
	LLMDrafted  bool    `json:"llm_drafted"`
}

// CreateCommunicationHandler records a new communication as a draft
func CreateCommunicationHandler(c echo.Context) error {
	var req CreateCommunicationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if !models.IsValidChannel(req.Channel) {
		return echo.NewHTTPError(http.StatusBadRequest, "Channel must be EMAIL or SMS")
	}
	direction := req.Direction
	if direction == "" {
		direction = models.DirectionOutbound
	}
	if !models.IsValidDirection(direction) {
		return echo.NewHTTPError(http.StatusBadRequest, "Direction must be OUTBOUND or INBOUND")
	}

	var plaintiff models.Plaintiff
	if err := db.DB.First(&plaintiff, "id = ?", req.PlaintiffID).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Plaintiff not found")
	}

	var caseRecord *models.Case
	if req.CaseID != nil && *req.CaseID != "" {
		var cs models.Case
		if err := db.DB.Preload("LawFirm").Preload("Lawyer").First(&cs, "id = ?", *req.CaseID).Error; err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Case not found")
		}
		if cs.PlaintiffID != plaintiff.ID {
			return echo.NewHTTPError(http.StatusBadRequest, "Case does not belong to this plaintiff")
		}
		caseRecord = &cs
	}

	subject, body := req.Subject, req.Body
	if req.TemplateID != nil && *req.TemplateID != "" {
		var tmpl models.MessageTemplate
		if err := db.DB.First(&tmpl, "id = ? AND is_active = ?", *req.TemplateID, true).Error; err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Template not found")
		}
		if tmpl.Channel != req.Channel {
			return echo.NewHTTPError(http.StatusBadRequest, "Template channel does not match communication channel")
		}
		subject, body = services.RenderFromTemplate(&tmpl, &plaintiff, caseRecord)
	}

	if strings.TrimSpace(body) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "A body or template is required")
	}
	body = services.SanitizeBody(req.Channel, body)

	status := models.CommunicationStatusDraft
	if direction == models.DirectionInbound {
		// Inbound messages are historical records, not drafts
		status = models.CommunicationStatusSent
	}

	comm := models.Communication{
		PlaintiffID: plaintiff.ID,
		CaseID:      req.CaseID,
		Channel:     req.Channel,
		Direction:   direction,
		Status:      status,
		Subject:     subject,
		Body:        body,
		TemplateID:  req.TemplateID,
		LLMDrafted:  req.LLMDrafted,
	}
	if user := middleware.GetCurrentUser(c); user != nil {
		comm.CreatedByID = &user.ID
	}

	if err := db.DB.Create(&comm).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create communication")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionCreate, "Communication", comm.ID, comm.Subject,
		"Communication created", nil, comm)

	return c.JSON(http.StatusCreated, comm)
}

// DraftCommunicationRequest asks the LLM assistant for a message draft
type DraftCommunicationRequest struct {
	PlaintiffID string  `json:"plaintiff_id"`
	CaseID      *string `json:"case_id"`
	Channel     string  `json:"channel"`
	Purpose     string  `json:"purpose"`
}

// DraftCommunicationHandler generates a draft subject and body. It does
// not persist anything; the client reviews the draft and then creates
// the communication.
func DraftCommunicationHandler(c echo.Context) error {
	if services.Drafter == nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Message drafting is not configured")
	}

	var req DraftCommunicationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if !models.IsValidChannel(req.Channel) {
		return echo.NewHTTPError(http.StatusBadRequest, "Channel must be EMAIL or SMS")
	}
	if strings.TrimSpace(req.Purpose) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "A purpose is required")
	}

	var plaintiff models.Plaintiff
	if err := db.DB.First(&plaintiff, "id = ?", req.PlaintiffID).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Plaintiff not found")
	}

	var caseRecord *models.Case
	if req.CaseID != nil && *req.CaseID != "" {
		var cs models.Case
		if err := db.DB.Preload("LawFirm").First(&cs, "id = ?", *req.CaseID).Error; err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Case not found")
		}
		caseRecord = &cs
	}

	draft, err := services.Drafter.DraftCommunication(c.Request().Context(), req.Channel, req.Purpose, &plaintiff, caseRecord)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Draft generation failed")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"subject":     draft.Subject,
		"body":        draft.Body,
		"llm_drafted": true,
	})
}

// SendCommunicationHandler dispatches a draft, queued, or failed
// outbound communication
func SendCommunicationHandler(c echo.Context) error {
	var comm models.Communication
	if err := db.DB.First(&comm, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Communication not found")
	}

	if !comm.CanSend() {
		return echo.NewHTTPError(http.StatusConflict, "Communication is not in a sendable state")
	}

	cfg, ok := c.Get("config").(*config.Config)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server configuration unavailable")
	}

	if err := services.SendCommunication(db.DB, cfg, middleware.GetAuditContext(c), &comm); err != nil {
		// The record now carries FAILED and the reason; surface both
		return c.JSON(http.StatusBadGateway, comm)
	}

	return c.JSON(http.StatusOK, comm)
}
