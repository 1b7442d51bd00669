package services

import (
	"fmt"
	"time"

	"lexfund_crm_go/models"

	"gorm.io/gorm"
)

// fundingTransitions lists the allowed next statuses for each funding
// status. Anything not listed is rejected.
var fundingTransitions = map[string][]string{
	models.FundingStatusApplied: {
		models.FundingStatusUnderReview,
		models.FundingStatusDeclined,
		models.FundingStatusWithdrawn,
	},
	models.FundingStatusUnderReview: {
		models.FundingStatusApproved,
		models.FundingStatusDeclined,
		models.FundingStatusWithdrawn,
		models.FundingStatusApplied, // send back for more information
	},
	models.FundingStatusApproved: {
		models.FundingStatusFunded,
		models.FundingStatusWithdrawn,
	},
	models.FundingStatusFunded: {
		models.FundingStatusSettled,
	},
	models.FundingStatusSettled: {
		models.FundingStatusClosed,
	},
	// CLOSED, DECLINED, WITHDRAWN are terminal
}

// ErrInvalidTransition is returned when a funding status change is not allowed
type ErrInvalidTransition struct {
	From string
	To   string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("funding status cannot move from %s to %s", e.From, e.To)
}

// FundingTransitionAllowed reports whether a case may move between the
// two funding statuses
func FundingTransitionAllowed(from, to string) bool {
	for _, next := range fundingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ChangeFundingStatus applies a funding status transition, stamping
// who changed it and when, and recording an audit entry.
func ChangeFundingStatus(db *gorm.DB, ctx AuditContext, caseRecord *models.Case, newStatus string) error {
	if !models.IsValidFundingStatus(newStatus) {
		return fmt.Errorf("unknown funding status %q", newStatus)
	}
	if !FundingTransitionAllowed(caseRecord.FundingStatus, newStatus) {
		return &ErrInvalidTransition{From: caseRecord.FundingStatus, To: newStatus}
	}

	oldStatus := caseRecord.FundingStatus
	now := time.Now()

	updates := map[string]interface{}{
		"funding_status":    newStatus,
		"status_changed_at": now,
	}
	if ctx.UserID != "" {
		updates["status_changed_by"] = ctx.UserID
	}

	if err := db.Model(caseRecord).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update funding status: %w", err)
	}

	caseRecord.FundingStatus = newStatus
	caseRecord.StatusChangedAt = &now
	if ctx.UserID != "" {
		caseRecord.StatusChangedBy = &ctx.UserID
	}

	LogAuditEvent(db, ctx, models.AuditActionStatusChange,
		"Case", caseRecord.ID, caseRecord.CaseNumber,
		"Funding status changed",
		map[string]string{"funding_status": oldStatus},
		map[string]string{"funding_status": newStatus},
	)

	return nil
}

// NextCaseNumber builds a sequential case number like LF-2026-00042
func NextCaseNumber(db *gorm.DB) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("LF-%d-", year)

	var count int64
	if err := db.Model(&models.Case{}).Where("case_number LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to count cases: %w", err)
	}

	// Walk forward if the next number is already taken (concurrent creates)
	for n := count + 1; ; n++ {
		candidate := fmt.Sprintf("%s%05d", prefix, n)
		var exists int64
		if err := db.Model(&models.Case{}).Where("case_number = ?", candidate).Count(&exists).Error; err != nil {
			return "", err
		}
		if exists == 0 {
			return candidate, nil
		}
	}
}

// NextContractNumber builds a sequential contract number like FC-2026-00007
func NextContractNumber(db *gorm.DB) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("FC-%d-", year)

	var count int64
	if err := db.Model(&models.Contract{}).Where("contract_number LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to count contracts: %w", err)
	}

	for n := count + 1; ; n++ {
		candidate := fmt.Sprintf("%s%05d", prefix, n)
		var exists int64
		if err := db.Model(&models.Contract{}).Where("contract_number = ?", candidate).Count(&exists).Error; err != nil {
			return "", err
		}
		if exists == 0 {
			return candidate, nil
		}
	}
}
