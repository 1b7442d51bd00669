package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LawFirm represents a plaintiff-side law firm the business works with
type LawFirm struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name    string `gorm:"not null;uniqueIndex" json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `gorm:"size:2" json:"state,omitempty"`
	ZipCode string `gorm:"size:10" json:"zip_code,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	// Relationships
	Lawyers []Lawyer `gorm:"foreignKey:LawFirmID" json:"lawyers,omitempty"`
	Cases   []Case   `gorm:"foreignKey:LawFirmID" json:"cases,omitempty"`
}

// BeforeCreate hook to generate UUID
func (f *LawFirm) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for LawFirm model
func (LawFirm) TableName() string {
	return "law_firms"
}
