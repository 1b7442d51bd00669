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

// CreateUserRequest is the staff account creation payload
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

// GetUsersHandler returns staff accounts (admin sees all, agents see active only)
func GetUsersHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)
	page, limit := parsePagination(c)

	query := db.DB.Model(&models.User{})
	if currentUser.Role != models.RoleAdmin {
		query = query.Where("is_active = ?", true)
	}
	if role := c.QueryParam("role"); role != "" && models.IsValidUserRole(role) {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count users")
	}

	var users []models.User
	if err := query.Order("name ASC").Limit(limit).Offset((page - 1) * limit).Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch users")
	}

	return c.JSON(http.StatusOK, paginatedResponse(users, page, limit, total))
}

// GetUserHandler returns a single staff account
func GetUserHandler(c echo.Context) error {
	var user models.User
	if err := db.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUserHandler creates a staff account (admin only)
func CreateUserHandler(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name, email, and password are required")
	}
	if req.Role == "" {
		req.Role = models.RoleAgent
	}
	if !models.IsValidUserRole(req.Role) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid role")
	}
	if len(req.Password) < 8 {
		return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 8 characters")
	}

	// Check for duplicate email
	var count int64
	db.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		return echo.NewHTTPError(http.StatusConflict, "A user with this email already exists")
	}

	hash, err := services.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     req.Role,
		Phone:    req.Phone,
		IsActive: true,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionCreate, "User", user.ID, user.Email, "Staff account created", nil, nil)

	return c.JSON(http.StatusCreated, user)
}

// UpdateUserRequest is the staff account update payload
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// UpdateUserHandler updates a staff account. Agents may update only
// their own name and phone; role and active changes are admin-only.
func UpdateUserHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)
	id := c.Param("id")

	if currentUser.Role != models.RoleAdmin && currentUser.ID != id {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	oldValues := map[string]interface{}{"name": user.Name, "phone": user.Phone, "role": user.Role, "is_active": user.IsActive}

	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != "" {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Role != nil {
		if currentUser.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Only admins can change roles")
		}
		if !models.IsValidUserRole(*req.Role) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid role")
		}
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		if currentUser.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Only admins can deactivate accounts")
		}
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusOK, user)
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update user")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionUpdate, "User", user.ID, user.Email, "Staff account updated", oldValues, updates)

	return c.JSON(http.StatusOK, user)
}
