package services

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"lexfund_crm_go/models"

	"gorm.io/gorm"
)

// ErrLegalHold is returned when an operation would remove a document
// under legal hold
var ErrLegalHold = fmt.Errorf("document is under legal hold")

// MaxDocumentSize is the upload size limit (25 MB)
const MaxDocumentSize = 25 << 20

// UploadCaseDocument stores the file and creates the document record
func UploadCaseDocument(ctx context.Context, db *gorm.DB, auditCtx AuditContext, caseRecord *models.Case, file *multipart.FileHeader, category string) (*models.Document, error) {
	if file.Size > MaxDocumentSize {
		return nil, fmt.Errorf("file exceeds the %d MB limit", MaxDocumentSize>>20)
	}
	if category == "" {
		category = models.DocumentCategoryOther
	}
	if !models.IsValidDocumentCategory(category) {
		return nil, fmt.Errorf("invalid document category %q", category)
	}

	key := GenerateCaseDocumentKey(caseRecord.ID, file.Filename)
	result, err := Storage.Upload(ctx, file, key)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &models.Document{
		CaseID:           caseRecord.ID,
		Category:         category,
		StorageKey:       result.Key,
		FileName:         result.FileName,
		FileOriginalName: file.Filename,
		FileSize:         result.FileSize,
		MimeType:         result.MimeType,
		UploadedByID:     ptrIfNotEmpty(auditCtx.UserID),
	}

	if err := db.Create(doc).Error; err != nil {
		// Roll back the stored blob; the record is the source of truth
		if delErr := Storage.Delete(ctx, result.Key); delErr != nil {
			log.Printf("[WARNING] Failed to remove orphaned blob %s: %v", result.Key, delErr)
		}
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	LogAuditEvent(db, auditCtx, models.AuditActionCreate,
		"Document", doc.ID, doc.FileOriginalName,
		fmt.Sprintf("Document uploaded to case %s", caseRecord.CaseNumber),
		nil, nil,
	)

	return doc, nil
}

// SetLegalHold toggles the legal hold flag on a document
func SetLegalHold(db *gorm.DB, ctx AuditContext, doc *models.Document, hold bool) error {
	if doc.LegalHold == hold {
		return nil
	}

	updates := map[string]interface{}{"legal_hold": hold}
	if hold {
		updates["legal_hold_set_at"] = time.Now()
		if ctx.UserID != "" {
			updates["legal_hold_set_by"] = ctx.UserID
		}
	} else {
		updates["legal_hold_set_at"] = nil
		updates["legal_hold_set_by"] = nil
	}

	if err := db.Model(doc).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update legal hold: %w", err)
	}
	doc.LegalHold = hold

	LogAuditEvent(db, ctx, models.AuditActionUpdate,
		"Document", doc.ID, doc.FileOriginalName,
		"Legal hold changed",
		map[string]bool{"legal_hold": !hold},
		map[string]bool{"legal_hold": hold},
	)

	return nil
}

// ArchiveDocument soft-retires a document. Refused under legal hold.
func ArchiveDocument(db *gorm.DB, ctx AuditContext, doc *models.Document) error {
	if doc.LegalHold {
		return ErrLegalHold
	}

	now := time.Now()
	if err := db.Model(doc).Updates(map[string]interface{}{
		"archived":    true,
		"archived_at": now,
	}).Error; err != nil {
		return fmt.Errorf("failed to archive document: %w", err)
	}
	doc.Archived = true
	doc.ArchivedAt = &now

	LogAuditEvent(db, ctx, models.AuditActionArchive,
		"Document", doc.ID, doc.FileOriginalName, "Document archived", nil, nil)

	return nil
}

// DeleteDocument removes the record and the stored blob. Refused under
// legal hold.
func DeleteDocument(ctx context.Context, db *gorm.DB, auditCtx AuditContext, doc *models.Document) error {
	if doc.LegalHold {
		return ErrLegalHold
	}

	if err := db.Delete(doc).Error; err != nil {
		return fmt.Errorf("failed to delete document record: %w", err)
	}

	if err := Storage.Delete(ctx, doc.StorageKey); err != nil {
		log.Printf("[WARNING] Failed to delete blob %s: %v", doc.StorageKey, err)
	}

	LogAuditEvent(db, auditCtx, models.AuditActionDelete,
		"Document", doc.ID, doc.FileOriginalName, "Document deleted", nil, nil)

	return nil
}
