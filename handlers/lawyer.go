package handlers

import (
	"net/http"
	"strings"

	"lexfund_crm_go/db"
	"lexfund_crm_go/middleware"
	"lexfund_crm_go/models"
	"lexfund_crm_go/services"

	"github.com/labstack/echo/v4"
)

// GetLawyersHandler returns lawyers, filterable by firm
func GetLawyersHandler(c echo.Context) error {
	page, limit := parsePagination(c)

	query := db.DB.Model(&models.Lawyer{})
	if c.QueryParam("is_active") != "all" {
		query = query.Where("is_active = ?", true)
	}
	if firmID := c.QueryParam("law_firm_id"); firmID != "" {
		query = query.Where("law_firm_id = ?", firmID)
	}
	if keyword := c.QueryParam("keyword"); keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count lawyers")
	}

	var lawyers []models.Lawyer
	if err := query.Preload("LawFirm").Order("name ASC").
		Limit(limit).Offset((page - 1) * limit).Find(&lawyers).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch lawyers")
	}

	return c.JSON(http.StatusOK, paginatedResponse(lawyers, page, limit, total))
}

// GetLawyerHandler returns a single lawyer
func GetLawyerHandler(c echo.Context) error {
	var lawyer models.Lawyer
	if err := db.DB.Preload("LawFirm").First(&lawyer, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Lawyer not found")
	}
	return c.JSON(http.StatusOK, lawyer)
}

// LawyerRequest is the create/update payload
type LawyerRequest struct {
	LawFirmID string `json:"law_firm_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BarNumber string `json:"bar_number"`
}

// CreateLawyerHandler creates a lawyer
func CreateLawyerHandler(c echo.Context) error {
	var req LawyerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || req.LawFirmID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name, email, and law_firm_id are required")
	}

	var firm models.LawFirm
	if err := db.DB.First(&firm, "id = ?", req.LawFirmID).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Law firm not found")
	}

	var count int64
	db.DB.Model(&models.Lawyer{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		return echo.NewHTTPError(http.StatusConflict, "A lawyer with this email already exists")
	}

	lawyer := models.Lawyer{
		LawFirmID: req.LawFirmID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		BarNumber: req.BarNumber,
		IsActive:  true,
	}
	if err := db.DB.Create(&lawyer).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create lawyer")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionCreate, "Lawyer", lawyer.ID, lawyer.Name, "Lawyer created", nil, nil)

	return c.JSON(http.StatusCreated, lawyer)
}

// UpdateLawyerHandler updates a lawyer
func UpdateLawyerHandler(c echo.Context) error {
	var lawyer models.Lawyer
	if err := db.DB.First(&lawyer, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Lawyer not found")
	}

	var req LawyerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name and email are required")
	}

	var count int64
	db.DB.Model(&models.Lawyer{}).Where("email = ? AND id != ?", req.Email, lawyer.ID).Count(&count)
	if count > 0 {
		return echo.NewHTTPError(http.StatusConflict, "A lawyer with this email already exists")
	}

	oldValues := map[string]interface{}{"name": lawyer.Name, "email": lawyer.Email, "phone": lawyer.Phone}
	updates := map[string]interface{}{
		"name":       req.Name,
		"email":      req.Email,
		"phone":      req.Phone,
		"bar_number": req.BarNumber,
	}
	if req.LawFirmID != "" && req.LawFirmID != lawyer.LawFirmID {
		var firm models.LawFirm
		if err := db.DB.First(&firm, "id = ?", req.LawFirmID).Error; err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Law firm not found")
		}
		updates["law_firm_id"] = req.LawFirmID
	}

	if err := db.DB.Model(&lawyer).Updates(updates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update lawyer")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionUpdate, "Lawyer", lawyer.ID, lawyer.Name, "Lawyer updated", oldValues, updates)

	return c.JSON(http.StatusOK, lawyer)
}

// DeactivateLawyerHandler soft-retires a lawyer
func DeactivateLawyerHandler(c echo.Context) error {
	var lawyer models.Lawyer
	if err := db.DB.First(&lawyer, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Lawyer not found")
	}

	if err := db.DB.Model(&lawyer).Update("is_active", false).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to deactivate lawyer")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionArchive, "Lawyer", lawyer.ID, lawyer.Name, "Lawyer deactivated", nil, nil)

	return c.JSON(http.StatusOK, lawyer)
}
