package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"lexfund_crm_go/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCaseTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Case{}, &models.Contract{}, &models.AuditLog{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newPipelineCase(t *testing.T, db *gorm.DB, status string) *models.Case {
	number, err := NextCaseNumber(db)
	assert.NoError(t, err)

	caseRecord := &models.Case{
		CaseNumber:    number,
		PlaintiffID:   "plaintiff-1",
		LawFirmID:     "firm-1",
		CaseType:      models.CaseTypeAutoAccident,
		FundingStatus: status,
	}
	assert.NoError(t, db.Create(caseRecord).Error)
	return caseRecord
}

func TestFundingTransitionAllowed(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{models.FundingStatusApplied, models.FundingStatusUnderReview, true},
		{models.FundingStatusApplied, models.FundingStatusDeclined, true},
		{models.FundingStatusApplied, models.FundingStatusWithdrawn, true},
		{models.FundingStatusApplied, models.FundingStatusFunded, false},
		{models.FundingStatusUnderReview, models.FundingStatusApproved, true},
		{models.FundingStatusUnderReview, models.FundingStatusApplied, true},
		{models.FundingStatusUnderReview, models.FundingStatusSettled, false},
		{models.FundingStatusApproved, models.FundingStatusFunded, true},
		{models.FundingStatusApproved, models.FundingStatusWithdrawn, true},
		{models.FundingStatusApproved, models.FundingStatusDeclined, false},
		{models.FundingStatusFunded, models.FundingStatusSettled, true},
		{models.FundingStatusFunded, models.FundingStatusWithdrawn, false},
		{models.FundingStatusSettled, models.FundingStatusClosed, true},
		{models.FundingStatusClosed, models.FundingStatusApplied, false},
		{models.FundingStatusDeclined, models.FundingStatusUnderReview, false},
		{models.FundingStatusWithdrawn, models.FundingStatusApplied, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+" to "+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.allowed, FundingTransitionAllowed(tt.from, tt.to))
		})
	}
}

func TestChangeFundingStatus(t *testing.T) {
	t.Run("Valid transition stamps who and when", func(t *testing.T) {
		db := setupCaseTestDB(t)
		caseRecord := newPipelineCase(t, db, models.FundingStatusApplied)
		ctx := AuditContext{UserID: "reviewer-1", UserName: "Reviewer", UserRole: models.RoleAgent}

		err := ChangeFundingStatus(db, ctx, caseRecord, models.FundingStatusUnderReview)
		assert.NoError(t, err)
		assert.Equal(t, models.FundingStatusUnderReview, caseRecord.FundingStatus)
		assert.NotNil(t, caseRecord.StatusChangedAt)
		assert.WithinDuration(t, time.Now(), *caseRecord.StatusChangedAt, 5*time.Second)
		assert.Equal(t, "reviewer-1", *caseRecord.StatusChangedBy)

		var persisted models.Case
		assert.NoError(t, db.First(&persisted, "id = ?", caseRecord.ID).Error)
		assert.Equal(t, models.FundingStatusUnderReview, persisted.FundingStatus)
	})

	t.Run("Skipping a stage is rejected", func(t *testing.T) {
		db := setupCaseTestDB(t)
		caseRecord := newPipelineCase(t, db, models.FundingStatusApplied)

		err := ChangeFundingStatus(db, AuditContext{}, caseRecord, models.FundingStatusFunded)
		var invalid *ErrInvalidTransition
		assert.True(t, errors.As(err, &invalid))
		assert.Equal(t, models.FundingStatusApplied, invalid.From)
		assert.Equal(t, models.FundingStatusFunded, invalid.To)
		assert.Equal(t, models.FundingStatusApplied, caseRecord.FundingStatus)
	})

	t.Run("Terminal statuses are frozen", func(t *testing.T) {
		db := setupCaseTestDB(t)
		caseRecord := newPipelineCase(t, db, models.FundingStatusDeclined)

		err := ChangeFundingStatus(db, AuditContext{}, caseRecord, models.FundingStatusUnderReview)
		var invalid *ErrInvalidTransition
		assert.True(t, errors.As(err, &invalid))
	})

	t.Run("Unknown status is rejected", func(t *testing.T) {
		db := setupCaseTestDB(t)
		caseRecord := newPipelineCase(t, db, models.FundingStatusApplied)

		err := ChangeFundingStatus(db, AuditContext{}, caseRecord, "ON_FIRE")
		assert.Error(t, err)
		var invalid *ErrInvalidTransition
		assert.False(t, errors.As(err, &invalid))
	})
}

func TestNextCaseNumber(t *testing.T) {
	db := setupCaseTestDB(t)
	year := time.Now().Year()

	number, err := NextCaseNumber(db)
	assert.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("LF-%d-00001", year), number)

	newPipelineCase(t, db, models.FundingStatusApplied)

	number2, err := NextCaseNumber(db)
	assert.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("LF-%d-00002", year), number2)
}

func TestNextCaseNumberWalksPastCollisions(t *testing.T) {
	db := setupCaseTestDB(t)
	year := time.Now().Year()

	// A deleted case leaves a gap: one row, but 00002 already taken
	assert.NoError(t, db.Create(&models.Case{
		CaseNumber:  fmt.Sprintf("LF-%d-00002", year),
		PlaintiffID: "plaintiff-1",
		LawFirmID:   "firm-1",
		CaseType:    models.CaseTypeOther,
	}).Error)

	number, err := NextCaseNumber(db)
	assert.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("LF-%d-00003", year), number)
}

func TestNextContractNumber(t *testing.T) {
	db := setupCaseTestDB(t)
	caseRecord := newPipelineCase(t, db, models.FundingStatusApproved)
	year := time.Now().Year()

	number, err := NextContractNumber(db)
	assert.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("FC-%d-00001", year), number)

	assert.NoError(t, db.Create(&models.Contract{
		ContractNumber:     number,
		CaseID:             caseRecord.ID,
		AdvanceAmountCents: 100000,
		FeeBasisPoints:     350,
		CompoundingPeriod:  models.CompoundingMonthly,
		Status:             models.ContractStatusDraft,
	}).Error)

	number2, err := NextContractNumber(db)
	assert.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("FC-%d-00002", year), number2)
}
