package services

import (
	"testing"
	"time"

	"lexfund_crm_go/models"

	"github.com/stretchr/testify/assert"
)

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents    int64
		expected string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{99, "$0.99"},
		{100, "$1.00"},
		{250000, "$2,500.00"},
		{2500000, "$25,000.00"},
		{123456789, "$1,234,567.89"},
		{-250000, "-$2,500.00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCents(tt.cents))
		})
	}
}

func TestFormatBasisPoints(t *testing.T) {
	assert.Equal(t, "3.50%", FormatBasisPoints(350))
	assert.Equal(t, "0.00%", FormatBasisPoints(0))
	assert.Equal(t, "12.25%", FormatBasisPoints(1225))
	assert.Equal(t, "100.00%", FormatBasisPoints(10000))
}

func TestBuildTemplateData(t *testing.T) {
	incident := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	plaintiff := &models.Plaintiff{
		FirstName: "Maria",
		LastName:  "Santos",
		Email:     "maria@example.com",
		Phone:     "+15550001111",
	}
	caseRecord := &models.Case{
		CaseNumber:    "LF-2026-00042",
		CaseType:      models.CaseTypeAutoAccident,
		FundingStatus: models.FundingStatusUnderReview,
		AppliedAt:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		IncidentDate:  &incident,
		LawFirm: models.LawFirm{
			ID:   "firm-1",
			Name: "Ramirez & Cole LLP",
			City: "Austin",
		},
		Lawyer: &models.Lawyer{
			Name:  "Jane Cole",
			Email: "jane@ramirezcole.com",
		},
	}
	contract := &models.Contract{
		ContractNumber:     "FC-2026-00007",
		AdvanceAmountCents: 250000,
		FeeBasisPoints:     350,
		Status:             models.ContractStatusDraft,
	}

	data := BuildTemplateData(plaintiff, caseRecord, contract)

	assert.Equal(t, "Maria Santos", data.Plaintiff.Name)
	assert.Equal(t, "Maria", data.Plaintiff.FirstName)
	assert.Equal(t, "LF-2026-00042", data.Case.Number)
	assert.Equal(t, "February 1, 2026", data.Case.AppliedAt)
	assert.Equal(t, "March 14, 2026", data.Case.IncidentDate)
	assert.Equal(t, "Ramirez & Cole LLP", data.Firm.Name)
	assert.Equal(t, "Jane Cole", data.Lawyer.Name)
	assert.Equal(t, "$2,500.00", data.Contract.AdvanceAmount)
	assert.Equal(t, "3.50%", data.Contract.FeePercent)
	assert.Equal(t, time.Now().Format("2006"), data.Today.Year)
}

func TestBuildTemplateDataNilRecords(t *testing.T) {
	data := BuildTemplateData(&models.Plaintiff{FirstName: "Sam", LastName: "Okafor"}, nil, nil)

	assert.Equal(t, "Sam Okafor", data.Plaintiff.Name)
	assert.Empty(t, data.Case.Number)
	assert.Empty(t, data.Firm.Name)
	assert.Empty(t, data.Lawyer.Name)
	assert.Empty(t, data.Contract.Number)
	assert.NotEmpty(t, data.Today.Date)
}
