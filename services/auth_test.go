package services

import (
	"testing"
	"time"

	"lexfund_crm_go/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Session{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newAuthTestUser(t *testing.T, db *gorm.DB, password string, active bool) *models.User {
	hash, err := HashPassword(password)
	assert.NoError(t, err)

	user := &models.User{
		Name:     "Auth Tester",
		Email:    "auth@test.com",
		Password: hash,
		Role:     models.RoleAgent,
		IsActive: active,
	}
	assert.NoError(t, db.Create(user).Error)
	// gorm drops zero-value fields with a column default from the
	// insert, so persist IsActive=false explicitly
	assert.NoError(t, db.Model(user).Update("is_active", active).Error)
	return user
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPassword("correct horse battery staple", hash))
	assert.False(t, CheckPassword("wrong password", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestGenerateSessionToken(t *testing.T) {
	token1, err := GenerateSessionToken()
	assert.NoError(t, err)
	assert.Len(t, token1, SessionTokenLength*2)

	token2, err := GenerateSessionToken()
	assert.NoError(t, err)
	assert.NotEqual(t, token1, token2)
}

func TestSessionLifecycle(t *testing.T) {
	db := setupAuthTestDB(t)
	user := newAuthTestUser(t, db, "pass123456789", true)

	session, err := CreateSession(db, user.ID, "10.0.0.5", "test-agent")
	assert.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().Add(DefaultSessionDuration), session.ExpiresAt, 5*time.Second)

	validated, err := ValidateSession(db, session.Token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, validated.UserID)
	assert.Equal(t, user.Email, validated.User.Email)

	assert.NoError(t, DeleteSession(db, session.Token))
	_, err = ValidateSession(db, session.Token)
	assert.Error(t, err)
}

func TestValidateSessionExpired(t *testing.T) {
	db := setupAuthTestDB(t)
	user := newAuthTestUser(t, db, "pass123456789", true)

	session, err := CreateSession(db, user.ID, "", "")
	assert.NoError(t, err)
	assert.NoError(t, db.Model(session).Update("expires_at", time.Now().Add(-time.Hour)).Error)

	_, err = ValidateSession(db, session.Token)
	assert.Error(t, err)

	// Expired session is deleted on validation
	var count int64
	db.Model(&models.Session{}).Where("token = ?", session.Token).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCleanupExpiredSessions(t *testing.T) {
	db := setupAuthTestDB(t)
	user := newAuthTestUser(t, db, "pass123456789", true)

	live, err := CreateSession(db, user.ID, "", "")
	assert.NoError(t, err)
	expired, err := CreateSession(db, user.ID, "", "")
	assert.NoError(t, err)
	assert.NoError(t, db.Model(expired).Update("expires_at", time.Now().Add(-time.Minute)).Error)

	assert.NoError(t, CleanupExpiredSessions(db))

	var tokens []string
	db.Model(&models.Session{}).Pluck("token", &tokens)
	assert.Equal(t, []string{live.Token}, tokens)
}

func TestAuthenticate(t *testing.T) {
	t.Run("Valid credentials", func(t *testing.T) {
		db := setupAuthTestDB(t)
		user := newAuthTestUser(t, db, "pass123456789", true)

		authed, err := Authenticate(db, user.Email, "pass123456789")
		assert.NoError(t, err)
		assert.Equal(t, user.ID, authed.ID)
	})

	t.Run("Wrong password", func(t *testing.T) {
		db := setupAuthTestDB(t)
		user := newAuthTestUser(t, db, "pass123456789", true)

		_, err := Authenticate(db, user.Email, "nope")
		assert.EqualError(t, err, "invalid credentials")
	})

	t.Run("Unknown email", func(t *testing.T) {
		db := setupAuthTestDB(t)

		_, err := Authenticate(db, "ghost@test.com", "whatever")
		assert.EqualError(t, err, "invalid credentials")
	})

	t.Run("Deactivated account", func(t *testing.T) {
		db := setupAuthTestDB(t)
		user := newAuthTestUser(t, db, "pass123456789", false)

		_, err := Authenticate(db, user.Email, "pass123456789")
		assert.EqualError(t, err, "account is deactivated")
	})
}
