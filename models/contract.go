package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contract status constants
const (
	ContractStatusDraft  = "DRAFT"
	ContractStatusSent   = "SENT"
	ContractStatusSigned = "SIGNED"
	ContractStatusVoid   = "VOID"
)

// Compounding period constants
const (
	CompoundingMonthly    = "MONTHLY"
	CompoundingQuarterly  = "QUARTERLY"
	CompoundingSemiAnnual = "SEMI_ANNUAL"
)

// Contract represents a funding agreement for a case
type Contract struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseID string `gorm:"type:uuid;not null;index" json:"case_id"`
	Case   Case   `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	ContractNumber string `gorm:"not null;uniqueIndex" json:"contract_number"`

	// Terms. Amounts are stored in cents, the fee in basis points.
	AdvanceAmountCents int64  `gorm:"not null" json:"advance_amount_cents"`
	FeeBasisPoints     int64  `gorm:"not null" json:"fee_basis_points"`
	CompoundingPeriod  string `gorm:"not null;default:MONTHLY" json:"compounding_period"`

	Status   string     `gorm:"not null;default:DRAFT;index" json:"status"`
	SentAt   *time.Time `json:"sent_at,omitempty"`
	SignedAt *time.Time `json:"signed_at,omitempty"`
	VoidedAt *time.Time `json:"voided_at,omitempty"`

	// Generated PDF, stored as a case document
	DocumentID *string   `gorm:"type:uuid" json:"document_id,omitempty"`
	Document   *Document `gorm:"foreignKey:DocumentID" json:"document,omitempty"`

	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
	CreatedBy   *User   `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Contract model
func (Contract) TableName() string {
	return "contracts"
}

// IsValidContractStatus checks if the status is valid
func IsValidContractStatus(status string) bool {
	switch status {
	case ContractStatusDraft, ContractStatusSent, ContractStatusSigned, ContractStatusVoid:
		return true
	}
	return false
}

// IsValidCompoundingPeriod checks if the compounding period is valid
func IsValidCompoundingPeriod(period string) bool {
	switch period {
	case CompoundingMonthly, CompoundingQuarterly, CompoundingSemiAnnual:
		return true
	}
	return false
}

// ContractStatusTransitionAllowed reports whether a contract may move
// from one status to another. SIGNED is final; VOID is reachable until
// the contract is signed.
func ContractStatusTransitionAllowed(from, to string) bool {
	switch from {
	case ContractStatusDraft:
		return to == ContractStatusSent || to == ContractStatusVoid
	case ContractStatusSent:
		return to == ContractStatusSigned || to == ContractStatusVoid
	}
	return false
}
