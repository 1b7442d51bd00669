package services

import (
	"fmt"
	"time"

	"lexfund_crm_go/models"
)

// TemplateData carries the values available to message templates
type TemplateData struct {
	Plaintiff PlaintiffData
	Case      CaseData
	Firm      FirmData
	Lawyer    LawyerData
	Contract  ContractData
	Today     TodayData
}

type PlaintiffData struct {
	Name      string
	FirstName string
	Email     string
	Phone     string
	Address   string
}

type CaseData struct {
	Number        string
	Type          string
	Description   string
	FundingStatus string
	AppliedAt     string
	IncidentDate  string
}

type FirmData struct {
	Name  string
	Phone string
	Email string
	City  string
}

type LawyerData struct {
	Name  string
	Email string
	Phone string
}

type ContractData struct {
	Number        string
	AdvanceAmount string
	FeePercent    string
	Status        string
}

type TodayData struct {
	Date string
	Year string
}

const templateDateFormat = "January 2, 2006"

// BuildTemplateData assembles TemplateData from loaded records. Any of
// the records except the plaintiff may be nil.
func BuildTemplateData(plaintiff *models.Plaintiff, caseRecord *models.Case, contract *models.Contract) TemplateData {
	now := time.Now()
	data := TemplateData{
		Today: TodayData{
			Date: now.Format(templateDateFormat),
			Year: now.Format("2006"),
		},
	}

	if plaintiff != nil {
		data.Plaintiff = PlaintiffData{
			Name:      plaintiff.FullName(),
			FirstName: plaintiff.FirstName,
			Email:     plaintiff.Email,
			Phone:     plaintiff.Phone,
			Address:   plaintiff.Address,
		}
	}

	if caseRecord != nil {
		data.Case = CaseData{
			Number:        caseRecord.CaseNumber,
			Type:          caseRecord.CaseType,
			Description:   caseRecord.Description,
			FundingStatus: caseRecord.FundingStatus,
			AppliedAt:     caseRecord.AppliedAt.Format(templateDateFormat),
		}
		if caseRecord.IncidentDate != nil {
			data.Case.IncidentDate = caseRecord.IncidentDate.Format(templateDateFormat)
		}
		if caseRecord.LawFirm.ID != "" {
			data.Firm = FirmData{
				Name:  caseRecord.LawFirm.Name,
				Phone: caseRecord.LawFirm.Phone,
				Email: caseRecord.LawFirm.Email,
				City:  caseRecord.LawFirm.City,
			}
		}
		if caseRecord.Lawyer != nil {
			data.Lawyer = LawyerData{
				Name:  caseRecord.Lawyer.Name,
				Email: caseRecord.Lawyer.Email,
				Phone: caseRecord.Lawyer.Phone,
			}
		}
	}

	if contract != nil {
		data.Contract = ContractData{
			Number:        contract.ContractNumber,
			AdvanceAmount: FormatCents(contract.AdvanceAmountCents),
			FeePercent:    FormatBasisPoints(contract.FeeBasisPoints),
			Status:        contract.Status,
		}
	}

	return data
}

// FormatCents renders a cent amount as dollars, e.g. 250000 -> "$2,500.00"
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	dollars := cents / 100
	remainder := cents % 100

	// Insert thousands separators
	s := fmt.Sprintf("%d", dollars)
	var out []byte
	for i, ch := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, ch)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, string(out), remainder)
}

// FormatBasisPoints renders basis points as a percentage, e.g. 350 -> "3.50%"
func FormatBasisPoints(bps int64) string {
	return fmt.Sprintf("%.2f%%", float64(bps)/100)
}
