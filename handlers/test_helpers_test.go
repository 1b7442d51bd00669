package handlers

import (
	"io"
	"net/http/httptest"
	"testing"

	"lexfund_crm_go/config"
	"lexfund_crm_go/db"
	"lexfund_crm_go/middleware"
	"lexfund_crm_go/models"
	"lexfund_crm_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests while allowing shared cache for async tasks
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.Exec("PRAGMA journal_mode=WAL;").Error
	assert.NoError(t, err)

	// Initialize Storage for tests if not already set
	if services.Storage == nil {
		services.Storage = services.NewLocalStorage("tmp/test_uploads")
	}

	err = testDB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.AuditLog{},
		&models.LawFirm{},
		&models.Lawyer{},
		&models.Plaintiff{},
		&models.Case{},
		&models.Document{},
		&models.Communication{},
		&models.Contract{},
		&models.MessageTemplate{},
		&models.SettingsCategory{},
		&models.Setting{},
		&models.UserSetting{},
		&models.AgentSetting{},
	)
	assert.NoError(t, err)

	// Set global DB
	db.DB = testDB

	// Fresh settings registry per test
	services.InitializeSettings(testDB)

	// Console SMS sender for tests
	if services.SMS == nil {
		services.InitializeSMS(&config.Config{SMSTestMode: true})
	}

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", &config.Config{
		Environment:   "test",
		EmailTestMode: true,
		SMSTestMode:   true,
	})

	return e, c, rec
}

// createTestUser inserts a staff account and puts it on the context the
// way RequireAuth and AuditContext would
func createTestUser(t *testing.T, database *gorm.DB, c echo.Context, role string) *models.User {
	hashedPassword, err := services.HashPassword("pass123456789")
	assert.NoError(t, err)

	user := &models.User{
		Name:     "Test " + role,
		Email:    role + "-" + uuid.New().String() + "@test.com",
		Password: hashedPassword,
		Role:     role,
		IsActive: true,
	}
	assert.NoError(t, database.Create(user).Error)

	c.Set(middleware.ContextKeyUser, user)
	c.Set(middleware.ContextKeyAuditContext, services.AuditContext{
		UserID:   user.ID,
		UserName: user.Name,
		UserRole: user.Role,
	})
	return user
}

func createTestPlaintiff(t *testing.T, database *gorm.DB) *models.Plaintiff {
	plaintiff := &models.Plaintiff{
		FirstName: "Maria",
		LastName:  "Santos",
		Email:     "maria-" + uuid.New().String() + "@test.com",
		Phone:     "+15550001111",
	}
	assert.NoError(t, database.Create(plaintiff).Error)
	return plaintiff
}

func createTestFirm(t *testing.T, database *gorm.DB) *models.LawFirm {
	firm := &models.LawFirm{
		Name:     "Firm " + uuid.New().String(),
		Email:    "firm-" + uuid.New().String() + "@test.com",
		IsActive: true,
	}
	assert.NoError(t, database.Create(firm).Error)
	return firm
}

func createTestCase(t *testing.T, database *gorm.DB, plaintiff *models.Plaintiff, firm *models.LawFirm) *models.Case {
	number, err := services.NextCaseNumber(database)
	assert.NoError(t, err)

	caseRecord := &models.Case{
		CaseNumber:    number,
		PlaintiffID:   plaintiff.ID,
		LawFirmID:     firm.ID,
		CaseType:      models.CaseTypeAutoAccident,
		FundingStatus: models.FundingStatusApplied,
	}
	assert.NoError(t, database.Create(caseRecord).Error)
	return caseRecord
}

func stringToPtr(s string) *string {
	return &s
}
