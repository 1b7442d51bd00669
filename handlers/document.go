package handlers

import (
	"errors"
	"io"
	"net/http"

	"lexfund_crm_go/db"
	"lexfund_crm_go/middleware"
	"lexfund_crm_go/models"
	"lexfund_crm_go/services"

	"github.com/labstack/echo/v4"
)

// UploadCaseDocumentHandler attaches an uploaded file to a case
func UploadCaseDocumentHandler(c echo.Context) error {
	var caseRecord models.Case
	if err := db.DB.First(&caseRecord, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Case not found")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "A file is required")
	}
	category := c.FormValue("category")

	doc, err := services.UploadCaseDocument(c.Request().Context(), db.DB,
		middleware.GetAuditContext(c), &caseRecord, file, category)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, doc)
}

// GetCaseDocumentsHandler lists documents for a case
func GetCaseDocumentsHandler(c echo.Context) error {
	var caseRecord models.Case
	if err := db.DB.First(&caseRecord, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Case not found")
	}

	query := db.DB.Where("case_id = ?", caseRecord.ID)
	if c.QueryParam("archived") != "true" {
		query = query.Where("archived = ?", false)
	}
	if category := c.QueryParam("category"); category != "" && models.IsValidDocumentCategory(category) {
		query = query.Where("category = ?", category)
	}

	var documents []models.Document
	if err := query.Order("created_at DESC").Find(&documents).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch documents")
	}

	return c.JSON(http.StatusOK, documents)
}

// DownloadDocumentHandler streams a document from storage
func DownloadDocumentHandler(c echo.Context) error {
	var doc models.Document
	if err := db.DB.First(&doc, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Document not found")
	}

	reader, contentType, err := services.Storage.Get(c.Request().Context(), doc.StorageKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Stored file not found")
	}
	defer reader.Close()

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c),
		models.AuditActionDownload, "Document", doc.ID, doc.FileOriginalName,
		"Document downloaded", nil, nil)

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+doc.FileOriginalName+`"`)
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response().Writer, reader)
	return err
}

// LegalHoldRequest is the legal hold toggle payload
type LegalHoldRequest struct {
	LegalHold bool `json:"legal_hold"`
}

// SetLegalHoldHandler toggles the legal hold flag (admin only)
func SetLegalHoldHandler(c echo.Context) error {
	var doc models.Document
	if err := db.DB.First(&doc, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Document not found")
	}

	var req LegalHoldRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := services.SetLegalHold(db.DB, middleware.GetAuditContext(c), &doc, req.LegalHold); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update legal hold")
	}

	return c.JSON(http.StatusOK, doc)
}

// DeleteDocumentHandler archives a document, or hard-deletes it with
// ?hard=true. Both are refused while the document is under legal hold.
func DeleteDocumentHandler(c echo.Context) error {
	var doc models.Document
	if err := db.DB.First(&doc, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Document not found")
	}

	var err error
	if c.QueryParam("hard") == "true" {
		err = services.DeleteDocument(c.Request().Context(), db.DB, middleware.GetAuditContext(c), &doc)
	} else {
		err = services.ArchiveDocument(db.DB, middleware.GetAuditContext(c), &doc)
	}
	if err != nil {
		if errors.Is(err, services.ErrLegalHold) {
			return echo.NewHTTPError(http.StatusConflict, "Document is under legal hold and cannot be deleted")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete document")
	}

	return c.NoContent(http.StatusNoContent)
}
