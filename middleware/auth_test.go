package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lexfund_crm_go/db"
	"lexfund_crm_go/models"
	"lexfund_crm_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := testDB.AutoMigrate(&models.User{}, &models.Session{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	// Set the global DB variable used by middleware
	db.DB = testDB
	return testDB
}

func createActiveUser(t *testing.T, testDB *gorm.DB, role string, active bool) *models.User {
	user := &models.User{
		ID:       uuid.New().String(),
		Name:     "Test User",
		Email:    uuid.New().String() + "@example.com",
		Role:     role,
		IsActive: active,
	}
	assert.NoError(t, testDB.Create(user).Error)
	// gorm drops zero-value fields with a column default from the
	// insert, so persist IsActive=false explicitly
	assert.NoError(t, testDB.Model(user).Update("is_active", active).Error)
	return user
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRequireAuth(t *testing.T) {
	testDB := setupTestDB(t)
	e := echo.New()

	user := createActiveUser(t, testDB, models.RoleAgent, true)
	session, err := services.CreateSession(testDB, user.ID, "127.0.0.1", "test-agent")
	assert.NoError(t, err)

	t.Run("ValidSession", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.Token})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RequireAuth()(okHandler)(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		current := GetCurrentUser(c)
		assert.NotNil(t, current)
		assert.Equal(t, user.ID, current.ID)
	})

	t.Run("MissingCookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RequireAuth()(okHandler)(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-token"})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RequireAuth()(okHandler)(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
		// Cookie is cleared
		assert.Contains(t, rec.Header().Get("Set-Cookie"), SessionCookieName+"=;")
	})

	t.Run("DeactivatedUser", func(t *testing.T) {
		inactive := createActiveUser(t, testDB, models.RoleAgent, false)
		inactiveSession, err := services.CreateSession(testDB, inactive.ID, "", "")
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: inactiveSession.Token})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err = RequireAuth()(okHandler)(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}

func TestRequireRole(t *testing.T) {
	testDB := setupTestDB(t)
	e := echo.New()

	newContext := func(user *models.User) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if user != nil {
			c.Set(ContextKeyUser, user)
		}
		return c
	}

	admin := createActiveUser(t, testDB, models.RoleAdmin, true)
	agent := createActiveUser(t, testDB, models.RoleAgent, true)

	t.Run("AllowedRole", func(t *testing.T) {
		err := RequireRole(models.RoleAdmin)(okHandler)(newContext(admin))
		assert.NoError(t, err)
	})

	t.Run("ForbiddenRole", func(t *testing.T) {
		err := RequireRole(models.RoleAdmin)(okHandler)(newContext(agent))
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	})

	t.Run("MultipleRoles", func(t *testing.T) {
		err := RequireRole(models.RoleAdmin, models.RoleAgent)(okHandler)(newContext(agent))
		assert.NoError(t, err)
	})

	t.Run("NoUser", func(t *testing.T) {
		err := RequireRole(models.RoleAdmin)(okHandler)(newContext(nil))
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}
