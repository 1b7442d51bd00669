package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document category constants
const (
	DocumentCategoryMedicalRecord  = "MEDICAL_RECORD"
	DocumentCategoryPoliceReport   = "POLICE_REPORT"
	DocumentCategoryRetainer       = "RETAINER"
	DocumentCategoryContract       = "CONTRACT"
	DocumentCategoryCorrespondence = "CORRESPONDENCE"
	DocumentCategoryOther          = "OTHER"
)

// Document represents a file attached to a case
type Document struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseID string `gorm:"type:uuid;not null;index" json:"case_id"`
	Case   Case   `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	Category string `gorm:"not null;default:OTHER" json:"category"`

	// Storage location
	StorageKey       string `gorm:"not null" json:"-"`
	FileName         string `gorm:"not null" json:"file_name"`
	FileOriginalName string `gorm:"not null" json:"file_original_name"`
	FileSize         int64  `gorm:"not null" json:"file_size"`
	MimeType         string `json:"mime_type"`

	// UploadedBy tracks the staff account that attached the file
	UploadedByID *string `gorm:"type:uuid" json:"uploaded_by_id,omitempty"`
	UploadedBy   *User   `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`

	// A document under legal hold must never be deleted
	LegalHold      bool       `gorm:"not null;default:false;index" json:"legal_hold"`
	LegalHoldSetAt *time.Time `json:"legal_hold_set_at,omitempty"`
	LegalHoldSetBy *string    `gorm:"type:uuid" json:"legal_hold_set_by,omitempty"`

	// Soft retirement
	Archived   bool       `gorm:"not null;default:false;index" json:"archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
}

// BeforeCreate hook to generate UUID
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Document model
func (Document) TableName() string {
	return "documents"
}

// IsValidDocumentCategory checks if the category is valid
func IsValidDocumentCategory(category string) bool {
	switch category {
	case DocumentCategoryMedicalRecord, DocumentCategoryPoliceReport,
		DocumentCategoryRetainer, DocumentCategoryContract,
		DocumentCategoryCorrespondence, DocumentCategoryOther:
		return true
	}
	return false
}
