package services

import (
	"context"
	"strings"
	"testing"

	"lexfund_crm_go/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDocumentTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Document{}, &models.AuditLog{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	Storage = NewLocalStorage(t.TempDir())
	return db
}

func newStoredDocument(t *testing.T, db *gorm.DB) *models.Document {
	ctx := context.Background()
	content := "%PDF-1.4 retainer"
	key := GenerateCaseDocumentKey("case-1", "retainer.pdf")
	result, err := Storage.UploadReader(ctx, strings.NewReader(content), key, "application/pdf", int64(len(content)))
	assert.NoError(t, err)

	doc := &models.Document{
		CaseID:           "case-1",
		Category:         models.DocumentCategoryRetainer,
		StorageKey:       result.Key,
		FileName:         result.FileName,
		FileOriginalName: "retainer.pdf",
		FileSize:         result.FileSize,
		MimeType:         result.MimeType,
	}
	assert.NoError(t, db.Create(doc).Error)
	return doc
}

func TestSetLegalHold(t *testing.T) {
	db := setupDocumentTestDB(t)
	doc := newStoredDocument(t, db)
	ctx := AuditContext{UserID: "admin-1", UserName: "Admin", UserRole: models.RoleAdmin}

	assert.NoError(t, SetLegalHold(db, ctx, doc, true))
	assert.True(t, doc.LegalHold)

	var persisted models.Document
	assert.NoError(t, db.First(&persisted, "id = ?", doc.ID).Error)
	assert.True(t, persisted.LegalHold)
	assert.NotNil(t, persisted.LegalHoldSetAt)
	assert.Equal(t, "admin-1", *persisted.LegalHoldSetBy)

	// Releasing clears the stamps
	assert.NoError(t, SetLegalHold(db, ctx, doc, false))
	// Reset so the NULLed columns are not masked by stale field values
	persisted = models.Document{}
	assert.NoError(t, db.First(&persisted, "id = ?", doc.ID).Error)
	assert.False(t, persisted.LegalHold)
	assert.Nil(t, persisted.LegalHoldSetAt)
	assert.Nil(t, persisted.LegalHoldSetBy)

	// Setting the current state is a no-op
	assert.NoError(t, SetLegalHold(db, ctx, doc, false))
}

func TestArchiveDocument(t *testing.T) {
	db := setupDocumentTestDB(t)
	ctx := AuditContext{UserName: "Agent", UserRole: models.RoleAgent}

	t.Run("Archives and stamps", func(t *testing.T) {
		doc := newStoredDocument(t, db)
		assert.NoError(t, ArchiveDocument(db, ctx, doc))
		assert.True(t, doc.Archived)
		assert.NotNil(t, doc.ArchivedAt)
	})

	t.Run("Refused under legal hold", func(t *testing.T) {
		doc := newStoredDocument(t, db)
		assert.NoError(t, SetLegalHold(db, ctx, doc, true))

		err := ArchiveDocument(db, ctx, doc)
		assert.ErrorIs(t, err, ErrLegalHold)
		assert.False(t, doc.Archived)
	})
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()
	auditCtx := AuditContext{UserName: "Agent", UserRole: models.RoleAgent}

	t.Run("Removes record and blob", func(t *testing.T) {
		db := setupDocumentTestDB(t)
		doc := newStoredDocument(t, db)

		assert.NoError(t, DeleteDocument(ctx, db, auditCtx, doc))

		var count int64
		db.Model(&models.Document{}).Where("id = ?", doc.ID).Count(&count)
		assert.Equal(t, int64(0), count)

		_, _, err := Storage.Get(ctx, doc.StorageKey)
		assert.Error(t, err)
	})

	t.Run("Refused under legal hold", func(t *testing.T) {
		db := setupDocumentTestDB(t)
		doc := newStoredDocument(t, db)
		assert.NoError(t, SetLegalHold(db, auditCtx, doc, true))

		err := DeleteDocument(ctx, db, auditCtx, doc)
		assert.ErrorIs(t, err, ErrLegalHold)

		var count int64
		db.Model(&models.Document{}).Where("id = ?", doc.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})
}
