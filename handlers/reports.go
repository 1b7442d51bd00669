package handlers

import (
	"net/http"

	"lexfund_crm_go/db"
	"lexfund_crm_go/middleware"
	"lexfund_crm_go/models"
	"lexfund_crm_go/services"

	"github.com/labstack/echo/v4"
)

const xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportCasesHandler streams the case book as an XLSX workbook.
// Filters mirror the case list endpoint.
func ExportCasesHandler(c echo.Context) error {
	query := db.DB.Model(&models.Case{})

	if status := c.QueryParam("funding_status"); status != "" && models.IsValidFundingStatus(status) {
		query = query.Where("funding_status = ?", status)
	}
	if caseType := c.QueryParam("case_type"); caseType != "" && models.IsValidCaseType(caseType) {
		query = query.Where("case_type = ?", caseType)
	}
	if lawFirmID := c.QueryParam("law_firm_id"); lawFirmID != "" {
		query = query.Where("law_firm_id = ?", lawFirmID)
	}

	var cases []models.Case
	if err := query.Preload("Plaintiff").Preload("LawFirm").Preload("Contracts").
		Order("applied_at DESC").Find(&cases).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch cases")
	}

	buf, err := services.ExportCasesXLSX(cases)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build export")
	}

	fileName := services.ExportFileName()
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionDownload, "Report", "cases_export", fileName,
		"Case export downloaded", nil, nil)

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.Blob(http.StatusOK, xlsxMimeType, buf.Bytes())
}
