package handlers

import (
	"net/http"
	"strings"
	"time"

	"lexfund_crm_go/db"
	"lexfund_crm_go/middleware"
	"lexfund_crm_go/models"
	"lexfund_crm_go/services"

	"github.com/labstack/echo/v4"
)

// GetPlaintiffsHandler returns plaintiffs with filtering and pagination
func GetPlaintiffsHandler(c echo.Context) error {
	page, limit := parsePagination(c)

	query := db.DB.Model(&models.Plaintiff{})

	// Archived records are hidden unless explicitly requested
	switch c.QueryParam("archived") {
	case "true":
		query = query.Where("archived = ?", true)
	case "all":
	default:
		query = query.Where("archived = ?", false)
	}

	if keyword := c.QueryParam("keyword"); keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where(
			"first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR phone LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if state := c.QueryParam("state"); state != "" {
		query = query.Where("state = ?", strings.ToUpper(state))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count plaintiffs")
	}

	var plaintiffs []models.Plaintiff
	if err := query.Order("last_name ASC, first_name ASC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&plaintiffs).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch plaintiffs")
	}

	return c.JSON(http.StatusOK, paginatedResponse(plaintiffs, page, limit, total))
}

// GetPlaintiffHandler returns a single plaintiff with cases preloaded
func GetPlaintiffHandler(c echo.Context) error {
	var plaintiff models.Plaintiff
	if err := db.DB.Preload("Cases").First(&plaintiff, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Plaintiff not found")
	}
	return c.JSON(http.StatusOK, plaintiff)
}

// PlaintiffRequest is the create/update payload
type PlaintiffRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
	SSNLastFour string `json:"ssn_last_four"`
	Metadata    string `json:"metadata"`
}

func (r *PlaintiffRequest) validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	if r.FirstName == "" || r.LastName == "" || r.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "First name, last name, and email are required")
	}
	if !strings.Contains(r.Email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid email address")
	}
	if r.SSNLastFour != "" && len(r.SSNLastFour) != 4 {
		return echo.NewHTTPError(http.StatusBadRequest, "SSN last four must be exactly 4 digits")
	}
	return nil
}

// CreatePlaintiffHandler creates a plaintiff
func CreatePlaintiffHandler(c echo.Context) error {
	var req PlaintiffRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	// Check for duplicate email
	var count int64
	db.DB.Model(&models.Plaintiff{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		return echo.NewHTTPError(http.StatusConflict, "A plaintiff with this email already exists")
	}

	plaintiff := models.Plaintiff{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		State:       strings.ToUpper(req.State),
		ZipCode:     req.ZipCode,
		SSNLastFour: req.SSNLastFour,
		Metadata:    req.Metadata,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid date of birth (expected YYYY-MM-DD)")
		}
		plaintiff.DateOfBirth = &dob
	}

	if err := db.DB.Create(&plaintiff).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create plaintiff")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionCreate, "Plaintiff", plaintiff.ID, plaintiff.FullName(),
		"Plaintiff created", nil, nil)

	return c.JSON(http.StatusCreated, plaintiff)
}

// UpdatePlaintiffHandler updates a plaintiff
func UpdatePlaintiffHandler(c echo.Context) error {
	var plaintiff models.Plaintiff
	if err := db.DB.First(&plaintiff, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Plaintiff not found")
	}

	var req PlaintiffRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	// Reject an email already used by another plaintiff
	var count int64
	db.DB.Model(&models.Plaintiff{}).Where("email = ? AND id != ?", req.Email, plaintiff.ID).Count(&count)
	if count > 0 {
		return echo.NewHTTPError(http.StatusConflict, "A plaintiff with this email already exists")
	}

	oldValues := map[string]interface{}{
		"first_name": plaintiff.FirstName, "last_name": plaintiff.LastName,
		"email": plaintiff.Email, "phone": plaintiff.Phone,
	}

	updates := map[string]interface{}{
		"first_name":    req.FirstName,
		"last_name":     req.LastName,
		"email":         req.Email,
		"phone":         req.Phone,
		"address":       req.Address,
		"city":          req.City,
		"state":         strings.ToUpper(req.State),
		"zip_code":      req.ZipCode,
		"ssn_last_four": req.SSNLastFour,
		"metadata":      req.Metadata,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid date of birth (expected YYYY-MM-DD)")
		}
		updates["date_of_birth"] = dob
	}

	if err := db.DB.Model(&plaintiff).Updates(updates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update plaintiff")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionUpdate, "Plaintiff", plaintiff.ID, plaintiff.FullName(),
		"Plaintiff updated", oldValues, updates)

	return c.JSON(http.StatusOK, plaintiff)
}

// ArchivePlaintiffHandler soft-retires a plaintiff
func ArchivePlaintiffHandler(c echo.Context) error {
	var plaintiff models.Plaintiff
	if err := db.DB.First(&plaintiff, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Plaintiff not found")
	}

	if plaintiff.Archived {
		return c.JSON(http.StatusOK, plaintiff)
	}

	now := time.Now()
	if err := db.DB.Model(&plaintiff).Updates(map[string]interface{}{
		"archived":    true,
		"archived_at": now,
	}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to archive plaintiff")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionArchive, "Plaintiff", plaintiff.ID, plaintiff.FullName(),
		"Plaintiff archived", nil, nil)

	return c.JSON(http.StatusOK, plaintiff)
}
