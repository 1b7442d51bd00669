package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"lexfund_crm_go/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func uploadTestDocument(t *testing.T, database *gorm.DB, caseRecord *models.Case, category string) *models.Document {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "retainer.pdf")
	assert.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test content"))
	assert.NoError(t, err)
	assert.NoError(t, writer.WriteField("category", category))
	assert.NoError(t, writer.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/cases/"+caseRecord.ID+"/documents", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(caseRecord.ID)
	createTestUser(t, database, c, models.RoleAgent)

	assert.NoError(t, UploadCaseDocumentHandler(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var doc models.Document
	assert.NoError(t, database.Where("case_id = ?", caseRecord.ID).Order("created_at DESC").First(&doc).Error)
	return &doc
}

func TestUploadCaseDocumentHandler(t *testing.T) {
	database := setupTestDB(t)
	plaintiff := createTestPlaintiff(t, database)
	firm := createTestFirm(t, database)
	caseRecord := createTestCase(t, database, plaintiff, firm)

	doc := uploadTestDocument(t, database, caseRecord, models.DocumentCategoryRetainer)
	assert.Equal(t, models.DocumentCategoryRetainer, doc.Category)
	assert.Equal(t, "retainer.pdf", doc.FileOriginalName)
	assert.NotEmpty(t, doc.StorageKey)
	assert.Greater(t, doc.FileSize, int64(0))
	assert.False(t, doc.LegalHold)
}

func TestDownloadDocumentHandler(t *testing.T) {
	database := setupTestDB(t)
	plaintiff := createTestPlaintiff(t, database)
	firm := createTestFirm(t, database)
	caseRecord := createTestCase(t, database, plaintiff, firm)
	doc := uploadTestDocument(t, database, caseRecord, models.DocumentCategoryOther)

	_, c, rec := setupEcho(http.MethodGet, "/api/documents/"+doc.ID+"/download", nil)
	c.SetParamNames("id")
	c.SetParamValues(doc.ID)
	createTestUser(t, database, c, models.RoleAgent)

	err := DownloadDocumentHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "retainer.pdf")
	assert.Contains(t, rec.Body.String(), "%PDF-1.4")
}

func TestLegalHoldBlocksDeletion(t *testing.T) {
	database := setupTestDB(t)
	plaintiff := createTestPlaintiff(t, database)
	firm := createTestFirm(t, database)
	caseRecord := createTestCase(t, database, plaintiff, firm)
	doc := uploadTestDocument(t, database, caseRecord, models.DocumentCategoryMedicalRecord)

	setHold := func(hold bool) {
		body := `{"legal_hold":false}`
		if hold {
			body = `{"legal_hold":true}`
		}
		_, c, rec := setupEcho(http.MethodPut, "/api/documents/"+doc.ID+"/legal-hold",
			bytes.NewReader([]byte(body)))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c.SetParamNames("id")
		c.SetParamValues(doc.ID)
		createTestUser(t, database, c, models.RoleAdmin)
		assert.NoError(t, SetLegalHoldHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	deleteDoc := func(hard bool) error {
		path := "/api/documents/" + doc.ID
		if hard {
			path += "?hard=true"
		}
		_, c, _ := setupEcho(http.MethodDelete, path, nil)
		c.SetParamNames("id")
		c.SetParamValues(doc.ID)
		createTestUser(t, database, c, models.RoleAdmin)
		return DeleteDocumentHandler(c)
	}

	// Place the document under hold
	setHold(true)
	var held models.Document
	assert.NoError(t, database.First(&held, "id = ?", doc.ID).Error)
	assert.True(t, held.LegalHold)
	assert.NotNil(t, held.LegalHoldSetAt)

	// Archive and hard delete are both refused
	err := deleteDoc(false)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, httpErr.Code)

	err = deleteDoc(true)
	httpErr, ok = err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, httpErr.Code)

	// Release the hold; archive now succeeds
	setHold(false)
	assert.NoError(t, deleteDoc(false))

	var archived models.Document
	assert.NoError(t, database.First(&archived, "id = ?", doc.ID).Error)
	assert.True(t, archived.Archived)
}

func TestGetCaseDocumentsHandler(t *testing.T) {
	database := setupTestDB(t)
	plaintiff := createTestPlaintiff(t, database)
	firm := createTestFirm(t, database)
	caseRecord := createTestCase(t, database, plaintiff, firm)

	uploadTestDocument(t, database, caseRecord, models.DocumentCategoryRetainer)
	archivedDoc := uploadTestDocument(t, database, caseRecord, models.DocumentCategoryOther)
	database.Model(archivedDoc).Update("archived", true)

	_, c, rec := setupEcho(http.MethodGet, "/api/cases/"+caseRecord.ID+"/documents", nil)
	c.SetParamNames("id")
	c.SetParamValues(caseRecord.ID)
	createTestUser(t, database, c, models.RoleAgent)

	err := GetCaseDocumentsHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var docs []models.Document
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	assert.Len(t, docs, 1)
	assert.Equal(t, models.DocumentCategoryRetainer, docs[0].Category)
}
