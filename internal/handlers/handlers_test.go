package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/datAIsolvcom/super-cv-ai/internal/models"
	"github.com/datAIsolvcom/super-cv-ai/internal/services"
)

type fakeCVService struct {
	analyzeReq   models.AnalyzeRequest
	customizeReq models.CustomizeRequest
	doc          *models.RawDocument

	analyzeResult   *models.CombinedAnalysis
	customizeResult *models.CustomizeResult
	err             error
}

func (f *fakeCVService) Analyze(_ context.Context, doc *models.RawDocument, req models.AnalyzeRequest) (*models.CombinedAnalysis, error) {
	f.doc = doc
	f.analyzeReq = req
	return f.analyzeResult, f.err
}

func (f *fakeCVService) Customize(_ context.Context, doc *models.RawDocument, req models.CustomizeRequest) (*models.CustomizeResult, error) {
	f.doc = doc
	f.customizeReq = req
	return f.customizeResult, f.err
}

func (f *fakeCVService) ExtractText(context.Context, *models.RawDocument) (string, error) {
	return "", errors.New("not used")
}

func newTestApp(cvService services.CVService, maxFileSize int64) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	upload := services.NewUploadService(maxFileSize)
	SetupRoutes(app,
		NewAnalyzeHandler(upload, cvService, zap.NewNop()),
		NewCustomizeHandler(upload, cvService, zap.NewNop()),
	)
	return app
}

type formFile struct {
	filename    string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, file *formFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+file.filename+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func pdfFile() *formFile {
	return &formFile{filename: "cv.pdf", contentType: models.MimePDF, data: []byte("%PDF-1.4 test body")}
}

func decodeError(t *testing.T, resp *http.Response) models.ErrorResponse {
	t.Helper()
	var out models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHandleAnalyze_Success(t *testing.T) {
	fake := &fakeCVService{analyzeResult: &models.CombinedAnalysis{
		Analysis: models.DefaultAssessment("test"),
		CVData:   models.DefaultCV(""),
	}}
	fake.analyzeResult.Analysis.CandidateName = "Jane Doe"
	app := newTestApp(fake, 1<<20)

	req := multipartRequest(t, "/api/analyze", map[string]string{
		"job_description": "Go engineer",
		"job_url":         "https://jobs.example.com/1",
		"current_date":    "2025-03-14",
	}, pdfFile())

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body, "analysis")
	assert.Contains(t, body, "cv_data")
	assert.Contains(t, string(body["analysis"]), `"candidate_name":"Jane Doe"`)

	assert.Equal(t, models.AnalyzeRequest{
		JobDescription: "Go engineer",
		JobURL:         "https://jobs.example.com/1",
		CurrentDate:    "2025-03-14",
	}, fake.analyzeReq)
	assert.Equal(t, "cv.pdf", fake.doc.Filename)
}

func TestHandleAnalyze_UploadErrors(t *testing.T) {
	tests := []struct {
		name       string
		file       *formFile
		maxSize    int64
		wantStatus int
		wantCode   services.ErrorCode
	}{
		{"missing file", nil, 1 << 20, fiber.StatusBadRequest, services.ErrCodeMissingFile},
		{"unsupported", &formFile{"cv.txt", "text/plain", []byte("hello")}, 1 << 20, fiber.StatusBadRequest, services.ErrCodeUnsupportedFormat},
		{"mismatch", &formFile{"cv.docx", models.MimeDOCX, []byte("%PDF-1.4")}, 1 << 20, fiber.StatusBadRequest, services.ErrCodeContentTypeMismatch},
		{"too large", pdfFile(), 8, fiber.StatusRequestEntityTooLarge, services.ErrCodeFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCVService{}
			app := newTestApp(fake, tt.maxSize)

			resp, err := app.Test(multipartRequest(t, "/api/analyze", nil, tt.file))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, string(tt.wantCode), decodeError(t, resp).Code)
			assert.Nil(t, fake.doc, "service must not be called")
		})
	}
}

func TestHandleAnalyze_ServiceErrors(t *testing.T) {
	clientErr := &services.ClientInputError{Code: services.ErrCodeTextTooShort, Message: "extracted text is too short"}

	app := newTestApp(&fakeCVService{err: clientErr}, 1<<20)
	resp, err := app.Test(multipartRequest(t, "/api/analyze", nil, pdfFile()))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.ErrorResponse{Error: "extracted text is too short", Code: "TEXT_TOO_SHORT"}, decodeError(t, resp))

	app = newTestApp(&fakeCVService{err: errors.New("database exploded")}, 1<<20)
	resp, err = app.Test(multipartRequest(t, "/api/analyze", nil, pdfFile()))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(raw), "database exploded")
}

func TestHandleCustomize(t *testing.T) {
	cv := models.DefaultCV("")
	cv.FullName = "Jane Doe"
	fake := &fakeCVService{customizeResult: &models.CustomizeResult{CV: cv}}
	app := newTestApp(fake, 1<<20)

	resp, err := app.Test(multipartRequest(t, "/api/customize", map[string]string{
		"mode":             "analysis",
		"analysis_context": "Weak summary",
	}, pdfFile()))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(headerDegraded))

	var got models.StructuredCV
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "Jane Doe", got.FullName)
	assert.Equal(t, models.CustomizeRequest{Mode: "analysis", AnalysisContext: "Weak summary"}, fake.customizeReq)
}

func TestHandleCustomize_DegradedHeader(t *testing.T) {
	fake := &fakeCVService{customizeResult: &models.CustomizeResult{CV: models.DefaultCV("unavailable"), Degraded: true}}
	app := newTestApp(fake, 1<<20)

	resp, err := app.Test(multipartRequest(t, "/api/customize", map[string]string{"mode": "job_desc", "job_description": "Go"}, pdfFile()))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get(headerDegraded))
}

func TestHandleCustomize_InvalidMode(t *testing.T) {
	fake := &fakeCVService{err: &services.ClientInputError{Code: services.ErrCodeInvalidMode, Message: `invalid mode "banana"`}}
	app := newTestApp(fake, 1<<20)

	resp, err := app.Test(multipartRequest(t, "/api/customize", map[string]string{"mode": "banana"}, pdfFile()))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_MODE", decodeError(t, resp).Code)
	assert.Equal(t, "banana", fake.customizeReq.Mode)
}

func TestStaticRoutes(t *testing.T) {
	app := newTestApp(&fakeCVService{}, 1<<20)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "go_goroutines")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)
}
