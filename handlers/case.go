package handlers

import (
	"errors"
	"net/http"
	"time"

	"lexfund_crm_go/db"
	"lexfund_crm_go/middleware"
	"lexfund_crm_go/models"
	"lexfund_crm_go/services"

	"github.com/labstack/echo/v4"
)

// GetCasesHandler returns cases with filtering and pagination
func GetCasesHandler(c echo.Context) error {
	page, limit := parsePagination(c)

	query := db.DB.Model(&models.Case{})

	if status := c.QueryParam("funding_status"); status != "" && models.IsValidFundingStatus(status) {
		query = query.Where("funding_status = ?", status)
	}
	if caseType := c.QueryParam("case_type"); caseType != "" && models.IsValidCaseType(caseType) {
		query = query.Where("case_type = ?", caseType)
	}
	if firmID := c.QueryParam("law_firm_id"); firmID != "" {
		query = query.Where("law_firm_id = ?", firmID)
	}
	if plaintiffID := c.QueryParam("plaintiff_id"); plaintiffID != "" {
		query = query.Where("plaintiff_id = ?", plaintiffID)
	}
	if assignedTo := c.QueryParam("assigned_to"); assignedTo != "" {
		query = query.Where("assigned_to_id = ?", assignedTo)
	}
	if dateFrom := c.QueryParam("date_from"); dateFrom != "" {
		if parsedDate, err := time.Parse("2006-01-02", dateFrom); err == nil {
			query = query.Where("applied_at >= ?", parsedDate)
		}
	}
	if dateTo := c.QueryParam("date_to"); dateTo != "" {
		if parsedDate, err := time.Parse("2006-01-02", dateTo); err == nil {
			// Include the entire day
			query = query.Where("applied_at < ?", parsedDate.Add(24*time.Hour))
		}
	}
	if keyword := c.QueryParam("keyword"); keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where(
			db.DB.Where("case_number LIKE ?", pattern).
				Or("description LIKE ?", pattern).
				Or("EXISTS (SELECT 1 FROM plaintiffs WHERE plaintiffs.id = cases.plaintiff_id AND (plaintiffs.first_name LIKE ? OR plaintiffs.last_name LIKE ?))", pattern, pattern),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count cases")
	}

	var cases []models.Case
	if err := query.
		Preload("Plaintiff").
		Preload("LawFirm").
		Preload("Lawyer").
		Preload("AssignedTo").
		Order("applied_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&cases).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch cases")
	}

	return c.JSON(http.StatusOK, paginatedResponse(cases, page, limit, total))
}

// GetCaseHandler returns a single case with relationships preloaded
func GetCaseHandler(c echo.Context) error {
	var caseRecord models.Case
	if err := db.DB.
		Preload("Plaintiff").
		Preload("LawFirm").
		Preload("Lawyer").
		Preload("AssignedTo").
		Preload("Documents", "archived = ?", false).
		Preload("Contracts").
		First(&caseRecord, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Case not found")
	}
	return c.JSON(http.StatusOK, caseRecord)
}

// CreateCaseRequest is the case creation payload
type CreateCaseRequest struct {
	PlaintiffID         string `json:"plaintiff_id"`
	LawFirmID           string `json:"law_firm_id"`
	LawyerID            string `json:"lawyer_id"`
	CaseType            string `json:"case_type"`
	Description         string `json:"description"`
	IncidentDate        string `json:"incident_date"` // YYYY-MM-DD
	EstimatedValueCents int64  `json:"estimated_value_cents"`
	AssignedToID        string `json:"assigned_to_id"`
}

// CreateCaseHandler creates a case in APPLIED status
func CreateCaseHandler(c echo.Context) error {
	var req CreateCaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if req.PlaintiffID == "" || req.LawFirmID == "" || req.CaseType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "plaintiff_id, law_firm_id, and case_type are required")
	}
	if !models.IsValidCaseType(req.CaseType) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid case type")
	}

	var plaintiff models.Plaintiff
	if err := db.DB.First(&plaintiff, "id = ?", req.PlaintiffID).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Plaintiff not found")
	}
	var firm models.LawFirm
	if err := db.DB.First(&firm, "id = ?", req.LawFirmID).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Law firm not found")
	}

	caseNumber, err := services.NextCaseNumber(db.DB)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to allocate case number")
	}

	caseRecord := models.Case{
		CaseNumber:          caseNumber,
		PlaintiffID:         req.PlaintiffID,
		LawFirmID:           req.LawFirmID,
		CaseType:            req.CaseType,
		Description:         req.Description,
		FundingStatus:       models.FundingStatusApplied,
		EstimatedValueCents: req.EstimatedValueCents,
	}
	if req.LawyerID != "" {
		var lawyer models.Lawyer
		if err := db.DB.First(&lawyer, "id = ? AND law_firm_id = ?", req.LawyerID, req.LawFirmID).Error; err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Lawyer not found at this firm")
		}
		caseRecord.LawyerID = &req.LawyerID
	}
	if req.IncidentDate != "" {
		incidentDate, err := time.Parse("2006-01-02", req.IncidentDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid incident date (expected YYYY-MM-DD)")
		}
		caseRecord.IncidentDate = &incidentDate
	}
	if req.AssignedToID != "" {
		caseRecord.AssignedToID = &req.AssignedToID
	} else if services.Settings != nil && services.Settings.GetBool("intake", "auto_assign", "", "") {
		// Assign to the creating agent when intake auto-assign is on
		if user := middleware.GetCurrentUser(c); user != nil {
			caseRecord.AssignedToID = &user.ID
		}
	}

	if err := db.DB.Create(&caseRecord).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create case")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionCreate, "Case", caseRecord.ID, caseRecord.CaseNumber,
		"Case created", nil, nil)

	return c.JSON(http.StatusCreated, caseRecord)
}

// UpdateCaseRequest is the case update payload. Funding status changes
// go through the dedicated status endpoint.
type UpdateCaseRequest struct {
	LawyerID            *string `json:"lawyer_id"`
	Description         *string `json:"description"`
	IncidentDate        *string `json:"incident_date"`
	EstimatedValueCents *int64  `json:"estimated_value_cents"`
	AssignedToID        *string `json:"assigned_to_id"`
	Metadata            *string `json:"metadata"`
}

// UpdateCaseHandler updates mutable case fields
func UpdateCaseHandler(c echo.Context) error {
	var caseRecord models.Case
	if err := db.DB.First(&caseRecord, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Case not found")
	}

	var req UpdateCaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.EstimatedValueCents != nil {
		updates["estimated_value_cents"] = *req.EstimatedValueCents
	}
	if req.Metadata != nil {
		updates["metadata"] = *req.Metadata
	}
	if req.LawyerID != nil {
		if *req.LawyerID == "" {
			updates["lawyer_id"] = nil
		} else {
			var lawyer models.Lawyer
			if err := db.DB.First(&lawyer, "id = ? AND law_firm_id = ?", *req.LawyerID, caseRecord.LawFirmID).Error; err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "Lawyer not found at this firm")
			}
			updates["lawyer_id"] = *req.LawyerID
		}
	}
	if req.AssignedToID != nil {
		if *req.AssignedToID == "" {
			updates["assigned_to_id"] = nil
		} else {
			updates["assigned_to_id"] = *req.AssignedToID
		}
	}
	if req.IncidentDate != nil && *req.IncidentDate != "" {
		incidentDate, err := time.Parse("2006-01-02", *req.IncidentDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid incident date (expected YYYY-MM-DD)")
		}
		updates["incident_date"] = incidentDate
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusOK, caseRecord)
	}

	if err := db.DB.Model(&caseRecord).Updates(updates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update case")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionUpdate, "Case", caseRecord.ID, caseRecord.CaseNumber,
		"Case updated", nil, updates)

	return c.JSON(http.StatusOK, caseRecord)
}

// ChangeFundingStatusRequest is the status change payload
type ChangeFundingStatusRequest struct {
	FundingStatus string `json:"funding_status"`
}

// ChangeFundingStatusHandler applies a funding status transition
func ChangeFundingStatusHandler(c echo.Context) error {
	var caseRecord models.Case
	if err := db.DB.First(&caseRecord, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Case not found")
	}

	var req ChangeFundingStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if !models.IsValidFundingStatus(req.FundingStatus) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid funding status")
	}

	if err := services.ChangeFundingStatus(db.DB, middleware.GetAuditContext(c), &caseRecord, req.FundingStatus); err != nil {
		var invalid *services.ErrInvalidTransition
		if errors.As(err, &invalid) {
			return echo.NewHTTPError(http.StatusConflict, invalid.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to change funding status")
	}

	return c.JSON(http.StatusOK, caseRecord)
}
