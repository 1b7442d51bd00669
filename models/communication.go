package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Communication channel constants
const (
	ChannelEmail = "EMAIL"
	ChannelSMS   = "SMS"
)

// Communication direction constants
const (
	DirectionOutbound = "OUTBOUND"
	DirectionInbound  = "INBOUND"
)

// Communication status constants
const (
	CommunicationStatusDraft  = "DRAFT"
	CommunicationStatusQueued = "QUEUED"
	CommunicationStatusSent   = "SENT"
	CommunicationStatusFailed = "FAILED"
)

// Communication represents an email or SMS exchanged with a plaintiff
type Communication struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PlaintiffID string    `gorm:"type:uuid;not null;index" json:"plaintiff_id"`
	Plaintiff   Plaintiff `gorm:"foreignKey:PlaintiffID" json:"plaintiff,omitempty"`

	CaseID *string `gorm:"type:uuid;index" json:"case_id,omitempty"`
	Case   *Case   `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	Channel   string `gorm:"not null;index" json:"channel"` // EMAIL, SMS
	Direction string `gorm:"not null" json:"direction"`     // OUTBOUND, INBOUND
	Status    string `gorm:"not null;default:DRAFT;index" json:"status"`

	Subject string `json:"subject,omitempty"` // Empty for SMS
	Body    string `gorm:"type:text;not null" json:"body"`

	// Template used to render this message, if any
	TemplateID *string          `gorm:"type:uuid" json:"template_id,omitempty"`
	Template   *MessageTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`

	// True when the body was drafted by the LLM assistant
	LLMDrafted bool `gorm:"not null;default:false" json:"llm_drafted"`

	// Delivery tracking
	SentAt        *time.Time `json:"sent_at,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`

	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
	CreatedBy   *User   `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Communication) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Communication model
func (Communication) TableName() string {
	return "communications"
}

// CanSend checks if the communication is in a sendable state
func (c *Communication) CanSend() bool {
	return c.Direction == DirectionOutbound &&
		(c.Status == CommunicationStatusDraft || c.Status == CommunicationStatusQueued || c.Status == CommunicationStatusFailed)
}

// IsValidChannel checks if the channel is valid
func IsValidChannel(channel string) bool {
	return channel == ChannelEmail || channel == ChannelSMS
}

// IsValidDirection checks if the direction is valid
func IsValidDirection(direction string) bool {
	return direction == DirectionOutbound || direction == DirectionInbound
}

// IsValidCommunicationStatus checks if the status is valid
func IsValidCommunicationStatus(status string) bool {
	switch status {
	case CommunicationStatusDraft, CommunicationStatusQueued,
		CommunicationStatusSent, CommunicationStatusFailed:
		return true
	}
	return false
}
