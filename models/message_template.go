package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageTemplate represents a reusable email or SMS template with
// {{entity.field}} placeholders resolved at render time.
type MessageTemplate struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name    string `gorm:"not null;uniqueIndex" json:"name"`
	Channel string `gorm:"not null;index" json:"channel"` // EMAIL, SMS
	Subject string `json:"subject,omitempty"`             // Ignored for SMS
	Body    string `gorm:"type:text;not null" json:"body"`

	Description string `json:"description,omitempty"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`

	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
	CreatedBy   *User   `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

// BeforeCreate hook to generate UUID
func (t *MessageTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for MessageTemplate model
func (MessageTemplate) TableName() string {
	return "message_templates"
}
