package services

import (
	"testing"

	"lexfund_crm_go/models"

	"github.com/stretchr/testify/assert"
)

func TestRenderContractHTML(t *testing.T) {
	caseRecord := &models.Case{
		CaseNumber: "LF-2026-00042",
		Plaintiff:  models.Plaintiff{FirstName: "Maria", LastName: "Santos"},
		LawFirm:    models.LawFirm{Name: "Ramirez & Cole LLP"},
		Lawyer:     &models.Lawyer{Name: "Jane Cole"},
	}
	contract := &models.Contract{
		ContractNumber:     "FC-2026-00007",
		AdvanceAmountCents: 250000,
		FeeBasisPoints:     350,
		CompoundingPeriod:  models.CompoundingQuarterly,
	}

	html, err := RenderContractHTML(contract, caseRecord)
	assert.NoError(t, err)

	assert.Contains(t, html, "FC-2026-00007")
	assert.Contains(t, html, "Maria Santos")
	assert.Contains(t, html, "Ramirez &amp; Cole LLP")
	assert.Contains(t, html, "attorney Jane Cole")
	assert.Contains(t, html, "LF-2026-00042")
	assert.Contains(t, html, "$2,500.00")
	assert.Contains(t, html, "3.50% per quarterly period")
	assert.Contains(t, html, "non-recourse")
}

func TestRenderContractHTMLWithoutLawyer(t *testing.T) {
	caseRecord := &models.Case{
		CaseNumber: "LF-2026-00042",
		Plaintiff:  models.Plaintiff{FirstName: "Sam", LastName: "Okafor"},
		LawFirm:    models.LawFirm{Name: "Okafor Legal"},
	}
	contract := &models.Contract{
		ContractNumber:     "FC-2026-00008",
		AdvanceAmountCents: 100000,
		FeeBasisPoints:     350,
	}

	html, err := RenderContractHTML(contract, caseRecord)
	assert.NoError(t, err)
	assert.NotContains(t, html, "attorney")
	assert.Contains(t, html, "3.50% per monthly period")
}

func TestCompoundingLabel(t *testing.T) {
	assert.Equal(t, "monthly", compoundingLabel(models.CompoundingMonthly))
	assert.Equal(t, "quarterly", compoundingLabel(models.CompoundingQuarterly))
	assert.Equal(t, "semi-annual", compoundingLabel(models.CompoundingSemiAnnual))
	assert.Equal(t, "monthly", compoundingLabel(""))
}
