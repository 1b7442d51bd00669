package handlers

import (
	"net/http"

	"lexfund_crm_go/db"
	"lexfund_crm_go/middleware"
	"lexfund_crm_go/models"
	"lexfund_crm_go/services"

	"github.com/labstack/echo/v4"
)

// GetLawFirmsHandler returns law firms with filtering and pagination
func GetLawFirmsHandler(c echo.Context) error {
	page, limit := parsePagination(c)

	query := db.DB.Model(&models.LawFirm{})
	if c.QueryParam("is_active") != "all" {
		query = query.Where("is_active = ?", true)
	}
	if keyword := c.QueryParam("keyword"); keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where("name LIKE ? OR city LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count law firms")
	}

	var firms []models.LawFirm
	if err := query.Order("name ASC").Limit(limit).Offset((page - 1) * limit).Find(&firms).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch law firms")
	}

	return c.JSON(http.StatusOK, paginatedResponse(firms, page, limit, total))
}

// GetLawFirmHandler returns a law firm with its lawyers
func GetLawFirmHandler(c echo.Context) error {
	var firm models.LawFirm
	if err := db.DB.Preload("Lawyers").First(&firm, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Law firm not found")
	}
	return c.JSON(http.StatusOK, firm)
}

// LawFirmRequest is the create/update payload
type LawFirmRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

// CreateLawFirmHandler creates a law firm
func CreateLawFirmHandler(c echo.Context) error {
	var req LawFirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name is required")
	}

	var count int64
	db.DB.Model(&models.LawFirm{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		return echo.NewHTTPError(http.StatusConflict, "A law firm with this name already exists")
	}

	firm := models.LawFirm{
		Name:     req.Name,
		Address:  req.Address,
		City:     req.City,
		State:    req.State,
		ZipCode:  req.ZipCode,
		Phone:    req.Phone,
		Email:    req.Email,
		Website:  req.Website,
		IsActive: true,
	}
	if err := db.DB.Create(&firm).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create law firm")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionCreate, "LawFirm", firm.ID, firm.Name, "Law firm created", nil, nil)

	return c.JSON(http.StatusCreated, firm)
}

// UpdateLawFirmHandler updates a law firm
func UpdateLawFirmHandler(c echo.Context) error {
	var firm models.LawFirm
	if err := db.DB.First(&firm, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Law firm not found")
	}

	var req LawFirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name is required")
	}

	var count int64
	db.DB.Model(&models.LawFirm{}).Where("name = ? AND id != ?", req.Name, firm.ID).Count(&count)
	if count > 0 {
		return echo.NewHTTPError(http.StatusConflict, "A law firm with this name already exists")
	}

	oldValues := map[string]interface{}{"name": firm.Name, "phone": firm.Phone, "email": firm.Email}
	updates := map[string]interface{}{
		"name":     req.Name,
		"address":  req.Address,
		"city":     req.City,
		"state":    req.State,
		"zip_code": req.ZipCode,
		"phone":    req.Phone,
		"email":    req.Email,
		"website":  req.Website,
	}

	if err := db.DB.Model(&firm).Updates(updates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update law firm")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionUpdate, "LawFirm", firm.ID, firm.Name, "Law firm updated", oldValues, updates)

	return c.JSON(http.StatusOK, firm)
}

// DeactivateLawFirmHandler soft-retires a law firm
func DeactivateLawFirmHandler(c echo.Context) error {
	var firm models.LawFirm
	if err := db.DB.First(&firm, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Law firm not found")
	}

	if err := db.DB.Model(&firm).Update("is_active", false).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to deactivate law firm")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionArchive, "LawFirm", firm.ID, firm.Name, "Law firm deactivated", nil, nil)

	return c.JSON(http.StatusOK, firm)
}
