package handlers

import (
	"bytes"
	"net/http"
	"time"

	"lexfund_crm_go/db"
	"lexfund_crm_go/middleware"
	"lexfund_crm_go/models"
	"lexfund_crm_go/services"

	"github.com/labstack/echo/v4"
)

// GetContractsHandler returns a paginated list of contracts
func GetContractsHandler(c echo.Context) error {
	page, limit := parsePagination(c)

	query := db.DB.Model(&models.Contract{})
	if caseID := c.QueryParam("case_id"); caseID != "" {
		query = query.Where("case_id = ?", caseID)
	}
	if status := c.QueryParam("status"); status != "" && models.IsValidContractStatus(status) {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count contracts")
	}

	var contracts []models.Contract
	if err := query.Preload("Case").Preload("Case.Plaintiff").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&contracts).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch contracts")
	}

	return c.JSON(http.StatusOK, paginatedResponse(contracts, page, limit, total))
}

// GetContractHandler returns a single contract
func GetContractHandler(c echo.Context) error {
	var contract models.Contract
	if err := db.DB.Preload("Case").Preload("Case.Plaintiff").
		Preload("Case.LawFirm").Preload("Case.Lawyer").Preload("Document").
		First(&contract, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Contract not found")
	}
	return c.JSON(http.StatusOK, contract)
}

// CreateContractRequest is the payload for drafting a contract. When
// fee_basis_points is omitted the configured default applies.
type CreateContractRequest struct {
	CaseID             string `json:"case_id"`
	AdvanceAmountCents int64  `json:"advance_amount_cents"`
	FeeBasisPoints     *int64 `json:"fee_basis_points"`
	CompoundingPeriod  string `json:"compounding_period"`
}

// CreateContractHandler drafts a funding contract for an approved case
func CreateContractHandler(c echo.Context) error {
	var req CreateContractRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	var caseRecord models.Case
	if err := db.DB.First(&caseRecord, "id = ?", req.CaseID).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Case not found")
	}
	if caseRecord.FundingStatus != models.FundingStatusApproved &&
		caseRecord.FundingStatus != models.FundingStatusFunded {
		return echo.NewHTTPError(http.StatusConflict, "Contracts can only be drafted for approved cases")
	}

	if req.AdvanceAmountCents <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Advance amount must be positive")
	}
	userID, agentID := settingsScope(c)
	maxAdvance := services.Settings.GetInt("funding", "max_advance_cents", userID, agentID)
	if maxAdvance > 0 && req.AdvanceAmountCents > maxAdvance {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Advance amount exceeds the configured maximum")
	}

	feeBasisPoints := int64(services.Settings.GetFloat("funding", "default_fee_basis_points", userID, agentID))
	if req.FeeBasisPoints != nil {
		feeBasisPoints = *req.FeeBasisPoints
	}
	if feeBasisPoints <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Fee basis points must be positive")
	}

	compounding := req.CompoundingPeriod
	if compounding == "" {
		compounding = models.CompoundingMonthly
	}
	if !models.IsValidCompoundingPeriod(compounding) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid compounding period")
	}

	contractNumber, err := services.NextContractNumber(db.DB)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to allocate contract number")
	}

	contract := models.Contract{
		CaseID:             caseRecord.ID,
		ContractNumber:     contractNumber,
		AdvanceAmountCents: req.AdvanceAmountCents,
		FeeBasisPoints:     feeBasisPoints,
		CompoundingPeriod:  compounding,
		Status:             models.ContractStatusDraft,
	}
	if user := middleware.GetCurrentUser(c); user != nil {
		contract.CreatedByID = &user.ID
	}

	if err := db.DB.Create(&contract).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create contract")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionCreate, "Contract", contract.ID, contract.ContractNumber,
		"Contract drafted", nil, contract)

	return c.JSON(http.StatusCreated, contract)
}

// UpdateContractRequest modifies terms while a contract is still a draft
type UpdateContractRequest struct {
	AdvanceAmountCents *int64  `json:"advance_amount_cents"`
	FeeBasisPoints     *int64  `json:"fee_basis_points"`
	CompoundingPeriod  *string `json:"compounding_period"`
}

// UpdateContractHandler changes draft contract terms
func UpdateContractHandler(c echo.Context) error {
	var contract models.Contract
	if err := db.DB.First(&contract, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Contract not found")
	}
	if contract.Status != models.ContractStatusDraft {
		return echo.NewHTTPError(http.StatusConflict, "Only draft contracts can be edited")
	}

	var req UpdateContractRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	oldContract := contract
	if req.AdvanceAmountCents != nil {
		if *req.AdvanceAmountCents <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Advance amount must be positive")
		}
		contract.AdvanceAmountCents = *req.AdvanceAmountCents
	}
	if req.FeeBasisPoints != nil {
		if *req.FeeBasisPoints <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Fee basis points must be positive")
		}
		contract.FeeBasisPoints = *req.FeeBasisPoints
	}
	if req.CompoundingPeriod != nil {
		if !models.IsValidCompoundingPeriod(*req.CompoundingPeriod) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid compounding period")
		}
		contract.CompoundingPeriod = *req.CompoundingPeriod
	}

	if err := db.DB.Save(&contract).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update contract")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionUpdate, "Contract", contract.ID, contract.ContractNumber,
		"Contract terms updated", oldContract, contract)

	return c.JSON(http.StatusOK, contract)
}

// ChangeContractStatusRequest is the payload for a status transition
type ChangeContractStatusRequest struct {
	Status string `json:"status"`
}

// ChangeContractStatusHandler moves a contract through its lifecycle
func ChangeContractStatusHandler(c echo.Context) error {
	var contract models.Contract
	if err := db.DB.First(&contract, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Contract not found")
	}

	var req ChangeContractStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if !models.IsValidContractStatus(req.Status) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid contract status")
	}
	if !models.ContractStatusTransitionAllowed(contract.Status, req.Status) {
		return echo.NewHTTPError(http.StatusConflict, "Contract status cannot move from "+contract.Status+" to "+req.Status)
	}

	oldStatus := contract.Status
	now := time.Now()
	updates := map[string]interface{}{"status": req.Status}
	switch req.Status {
	case models.ContractStatusSent:
		updates["sent_at"] = now
	case models.ContractStatusSigned:
		updates["signed_at"] = now
	case models.ContractStatusVoid:
		updates["voided_at"] = now
	}

	if err := db.DB.Model(&contract).Updates(updates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update contract status")
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionStatusChange, "Contract", contract.ID, contract.ContractNumber,
		"Contract status changed",
		map[string]string{"status": oldStatus},
		map[string]string{"status": req.Status})

	db.DB.First(&contract, "id = ?", contract.ID)
	return c.JSON(http.StatusOK, contract)
}

// GenerateContractPDFHandler renders the contract to PDF, stores it,
// and attaches it to the case as a CONTRACT document
func GenerateContractPDFHandler(c echo.Context) error {
	var contract models.Contract
	if err := db.DB.First(&contract, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Contract not found")
	}

	var caseRecord models.Case
	if err := db.DB.Preload("Plaintiff").Preload("LawFirm").Preload("Lawyer").
		First(&caseRecord, "id = ?", contract.CaseID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load case")
	}

	html, err := services.RenderContractHTML(&contract, &caseRecord)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render contract")
	}

	pdfBytes, err := services.GeneratePDF(html, services.DefaultPDFOptions())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "PDF generation failed")
	}

	key := services.GenerateContractKey(caseRecord.ID, contract.ContractNumber)
	result, err := services.Storage.UploadReader(c.Request().Context(),
		bytes.NewReader(pdfBytes), key, "application/pdf", int64(len(pdfBytes)))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store contract PDF")
	}

	auditCtx := middleware.GetAuditContext(c)
	doc := models.Document{
		CaseID:           caseRecord.ID,
		Category:         models.DocumentCategoryContract,
		StorageKey:       result.Key,
		FileName:         result.FileName,
		FileOriginalName: contract.ContractNumber + ".pdf",
		FileSize:         result.FileSize,
		MimeType:         "application/pdf",
	}
	if user := middleware.GetCurrentUser(c); user != nil {
		doc.UploadedByID = &user.ID
	}
	if err := db.DB.Create(&doc).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to record contract document")
	}

	if err := db.DB.Model(&contract).Update("document_id", doc.ID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to link contract document")
	}
	contract.DocumentID = &doc.ID

	services.LogAuditEvent(db.DB, auditCtx,
		models.AuditActionCreate, "Document", doc.ID, doc.FileOriginalName,
		"Contract PDF generated", nil, nil)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"contract": contract,
		"document": doc,
	})
}
