package services

import (
	"bytes"
	"fmt"
	"time"

	"lexfund_crm_go/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Cases"

var exportHeaders = []string{
	"Case Number", "Plaintiff", "Law Firm", "Case Type",
	"Funding Status", "Applied", "Estimated Value", "Advances",
}

// ExportCasesXLSX builds an XLSX workbook of the given cases. Cases
// must have Plaintiff, LawFirm, and Contracts preloaded.
func ExportCasesXLSX(cases []models.Case) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", exportSheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	var totalAdvanced int64
	for row, c := range cases {
		var advanced int64
		for _, contract := range c.Contracts {
			if contract.Status == models.ContractStatusSigned {
				advanced += contract.AdvanceAmountCents
			}
		}
		totalAdvanced += advanced

		values := []interface{}{
			c.CaseNumber,
			c.Plaintiff.FullName(),
			c.LawFirm.Name,
			c.CaseType,
			c.FundingStatus,
			c.AppliedAt.Format("2006-01-02"),
			FormatCents(c.EstimatedValueCents),
			FormatCents(advanced),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	// Totals row
	totalRow := len(cases) + 3
	totalLabelCell, _ := excelize.CoordinatesToCellName(len(exportHeaders)-1, totalRow)
	totalValueCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), totalRow)
	if err := f.SetCellValue(exportSheet, totalLabelCell, "Total advanced"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(exportSheet, totalValueCell, FormatCents(totalAdvanced)); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(exportSheet, "A", "H", 20); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

// ExportFileName returns a timestamped download filename
func ExportFileName() string {
	return fmt.Sprintf("cases_export_%s.xlsx", time.Now().Format("20060102_150405"))
}
