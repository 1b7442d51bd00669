package services

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"lexfund_crm_go/models"
)

// contractHTMLTemplate is the print layout for funding agreements.
// Styling targets the PDF renderer, not a browser.
var contractHTMLTemplate = template.Must(template.New("contract").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Georgia, serif; font-size: 12pt; color: #111; line-height: 1.5; }
  h1 { font-size: 16pt; text-align: center; text-transform: uppercase; }
  h2 { font-size: 13pt; margin-top: 24pt; }
  table.terms { width: 100%; border-collapse: collapse; margin-top: 12pt; }
  table.terms td { border: 1px solid #444; padding: 6pt; }
  .signature-block { margin-top: 48pt; }
  .signature-line { border-top: 1px solid #111; width: 260pt; margin-top: 36pt; padding-top: 4pt; }
</style>
</head>
<body>
<h1>Pre-Settlement Funding Agreement</h1>
<p>Agreement No. <strong>{{.ContractNumber}}</strong>, dated {{.Date}}.</p>

<h2>Parties</h2>
<p>This agreement is between <strong>{{.PlaintiffName}}</strong> ("Plaintiff"),
represented by {{.LawFirmName}}{{if .LawyerName}} (attorney {{.LawyerName}}){{end}},
and the funding company, regarding case <strong>{{.CaseNumber}}</strong>.</p>

<h2>Terms</h2>
<table class="terms">
  <tr><td>Advance amount</td><td>{{.AdvanceAmount}}</td></tr>
  <tr><td>Funding fee</td><td>{{.FeePercent}} per {{.CompoundingPeriod}} period</td></tr>
  <tr><td>Repayment</td><td>Due only from settlement or judgment proceeds</td></tr>
</table>

<h2>Non-Recourse</h2>
<p>The advance is non-recourse. If the Plaintiff recovers nothing from the
underlying case, the Plaintiff owes nothing under this agreement.</p>

<div class="signature-block">
  <div class="signature-line">Plaintiff: {{.PlaintiffName}}</div>
  <div class="signature-line">Authorized Representative</div>
</div>
</body>
</html>`))

type contractTemplateData struct {
	ContractNumber    string
	Date              string
	PlaintiffName     string
	LawFirmName       string
	LawyerName        string
	CaseNumber        string
	AdvanceAmount     string
	FeePercent        string
	CompoundingPeriod string
}

// RenderContractHTML renders the funding agreement for a contract. The
// case record must have Plaintiff, LawFirm, and Lawyer preloaded.
func RenderContractHTML(contract *models.Contract, caseRecord *models.Case) (string, error) {
	data := contractTemplateData{
		ContractNumber:    contract.ContractNumber,
		Date:              time.Now().Format("January 2, 2006"),
		PlaintiffName:     caseRecord.Plaintiff.FullName(),
		LawFirmName:       caseRecord.LawFirm.Name,
		CaseNumber:        caseRecord.CaseNumber,
		AdvanceAmount:     FormatCents(contract.AdvanceAmountCents),
		FeePercent:        FormatBasisPoints(contract.FeeBasisPoints),
		CompoundingPeriod: compoundingLabel(contract.CompoundingPeriod),
	}
	if caseRecord.Lawyer != nil {
		data.LawyerName = caseRecord.Lawyer.Name
	}

	var buf bytes.Buffer
	if err := contractHTMLTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render contract: %w", err)
	}
	return buf.String(), nil
}

func compoundingLabel(period string) string {
	switch period {
	case models.CompoundingQuarterly:
		return "quarterly"
	case models.CompoundingSemiAnnual:
		return "semi-annual"
	default:
		return "monthly"
	}
}
