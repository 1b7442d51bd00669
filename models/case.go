package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Funding status constants. A case moves through the funding pipeline
// in order; DECLINED and WITHDRAWN are terminal exits before funding.
const (
	FundingStatusApplied     = "APPLIED"
	FundingStatusUnderReview = "UNDER_REVIEW"
	FundingStatusApproved    = "APPROVED"
	FundingStatusFunded      = "FUNDED"
	FundingStatusSettled     = "SETTLED"
	FundingStatusClosed      = "CLOSED"
	FundingStatusDeclined    = "DECLINED"
	FundingStatusWithdrawn   = "WITHDRAWN"
)

// Case type constants
const (
	CaseTypeAutoAccident       = "AUTO_ACCIDENT"
	CaseTypeSlipAndFall        = "SLIP_AND_FALL"
	CaseTypeMedicalMalpractice = "MEDICAL_MALPRACTICE"
	CaseTypeWorkersComp        = "WORKERS_COMP"
	CaseTypeProductLiability   = "PRODUCT_LIABILITY"
	CaseTypeOther              = "OTHER"
)

// Case represents a legal case backing a funding application
type Case struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Case identification
	CaseNumber string `gorm:"not null;uniqueIndex" json:"case_number"`

	// Plaintiff relationship
	PlaintiffID string    `gorm:"type:uuid;not null;index" json:"plaintiff_id"`
	Plaintiff   Plaintiff `gorm:"foreignKey:PlaintiffID" json:"plaintiff,omitempty"`

	// Law firm / lawyer relationship
	LawFirmID string  `gorm:"type:uuid;not null;index:idx_case_firm_status" json:"law_firm_id"`
	LawFirm   LawFirm `gorm:"foreignKey:LawFirmID" json:"law_firm,omitempty"`

	LawyerID *string `gorm:"type:uuid;index" json:"lawyer_id,omitempty"`
	Lawyer   *Lawyer `gorm:"foreignKey:LawyerID" json:"lawyer,omitempty"`

	// Case facts
	CaseType     string     `gorm:"not null" json:"case_type"`
	Description  string     `gorm:"type:text" json:"description"`
	IncidentDate *time.Time `json:"incident_date,omitempty"`

	// Funding pipeline
	FundingStatus   string     `gorm:"not null;default:APPLIED;index:idx_case_firm_status" json:"funding_status"`
	AppliedAt       time.Time  `gorm:"not null;index" json:"applied_at"`
	StatusChangedAt *time.Time `json:"status_changed_at,omitempty"`
	StatusChangedBy *string    `gorm:"type:uuid" json:"status_changed_by,omitempty"`

	// Estimated settlement value in cents
	EstimatedValueCents int64 `gorm:"not null;default:0" json:"estimated_value_cents"`

	// Assignment (funding agent working the case)
	AssignedToID *string `gorm:"type:uuid;index" json:"assigned_to_id,omitempty"`
	AssignedTo   *User   `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`

	// Flexible side-channel data
	Metadata string `gorm:"type:text" json:"metadata,omitempty"` // JSON encoded

	// Relationships
	StatusChanger  *User           `gorm:"foreignKey:StatusChangedBy" json:"status_changer,omitempty"`
	Documents      []Document      `gorm:"foreignKey:CaseID" json:"documents,omitempty"`
	Contracts      []Contract      `gorm:"foreignKey:CaseID" json:"contracts,omitempty"`
	Communications []Communication `gorm:"foreignKey:CaseID" json:"communications,omitempty"`
}

// BeforeCreate hook to generate UUID and set AppliedAt
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.AppliedAt.IsZero() {
		c.AppliedAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// IsTerminal checks if the case has exited the funding pipeline
func (c *Case) IsTerminal() bool {
	switch c.FundingStatus {
	case FundingStatusClosed, FundingStatusDeclined, FundingStatusWithdrawn:
		return true
	}
	return false
}

// IsFunded checks if the case has been funded (or beyond)
func (c *Case) IsFunded() bool {
	switch c.FundingStatus {
	case FundingStatusFunded, FundingStatusSettled, FundingStatusClosed:
		return true
	}
	return false
}

// IsValidFundingStatus checks if the status is valid
func IsValidFundingStatus(status string) bool {
	switch status {
	case FundingStatusApplied, FundingStatusUnderReview, FundingStatusApproved,
		FundingStatusFunded, FundingStatusSettled, FundingStatusClosed,
		FundingStatusDeclined, FundingStatusWithdrawn:
		return true
	}
	return false
}

// IsValidCaseType checks if the case type is valid
func IsValidCaseType(caseType string) bool {
	switch caseType {
	case CaseTypeAutoAccident, CaseTypeSlipAndFall, CaseTypeMedicalMalpractice,
		CaseTypeWorkersComp, CaseTypeProductLiability, CaseTypeOther:
		return true
	}
	return false
}
