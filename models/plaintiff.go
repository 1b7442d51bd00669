package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plaintiff represents a person applying for pre-settlement funding
type Plaintiff struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null;index" json:"last_name"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Phone     string `json:"phone,omitempty"`

	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `gorm:"size:2" json:"state,omitempty"`
	ZipCode string `gorm:"size:10" json:"zip_code,omitempty"`

	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	SSNLastFour string     `gorm:"size:4" json:"ssn_last_four,omitempty"`

	// Flexible side-channel data (referral source, intake notes, etc.)
	Metadata string `gorm:"type:text" json:"metadata,omitempty"` // JSON encoded

	// Soft retirement
	Archived   bool       `gorm:"not null;default:false;index" json:"archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`

	// Relationships
	Cases          []Case          `gorm:"foreignKey:PlaintiffID" json:"cases,omitempty"`
	Communications []Communication `gorm:"foreignKey:PlaintiffID" json:"communications,omitempty"`
}

// BeforeCreate hook to generate UUID
func (p *Plaintiff) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// FullName returns the plaintiff's display name
func (p *Plaintiff) FullName() string {
	return p.FirstName + " " + p.LastName
}

// TableName specifies the table name for Plaintiff model
func (Plaintiff) TableName() string {
	return "plaintiffs"
}
