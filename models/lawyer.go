package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lawyer represents an attorney at a law firm
type Lawyer struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	LawFirmID string  `gorm:"type:uuid;not null;index" json:"law_firm_id"`
	LawFirm   LawFirm `gorm:"foreignKey:LawFirmID" json:"law_firm,omitempty"`

	Name      string `gorm:"not null" json:"name"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Phone     string `json:"phone,omitempty"`
	BarNumber string `gorm:"size:50" json:"bar_number,omitempty"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	// Relationships
	Cases []Case `gorm:"foreignKey:LawyerID" json:"cases,omitempty"`
}

// BeforeCreate hook to generate UUID
func (l *Lawyer) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Lawyer model
func (Lawyer) TableName() string {
	return "lawyers"
}
