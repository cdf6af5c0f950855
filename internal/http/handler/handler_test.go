package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/upagnaduba/ChatWithPdf/internal/answerer"
	"github.com/upagnaduba/ChatWithPdf/internal/extractor"
	"github.com/upagnaduba/ChatWithPdf/internal/model"
	"github.com/upagnaduba/ChatWithPdf/internal/prompt"
	"github.com/upagnaduba/ChatWithPdf/internal/service"
	serviceMocks "github.com/upagnaduba/ChatWithPdf/internal/service/mocks"
)

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	part.Write([]byte(content))
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mockSvc := new(serviceMocks.MockQAService)
	app := fiber.New()
	RegisterRoutes(app, db, mockSvc, 0)

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})

	t.Run("liveness probe", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestUpload(t *testing.T) {
	mockSvc := new(serviceMocks.MockQAService)
	app := fiber.New()
	app.Post("/upload", uploadHandler(mockSvc, 0))

	t.Run("success", func(t *testing.T) {
		body, contentType := multipartBody(t, "invoice.pdf", "%PDF-1.4 fake")

		expectedDoc := &model.Document{ID: uuid.New().String(), Filename: "invoice.pdf"}
		mockSvc.On("Ingest", mock.Anything, mock.Anything, "invoice.pdf", mock.Anything).
			Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result uploadResponse
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "File uploaded successfully", result.Message)
		assert.Equal(t, expectedDoc.ID, result.FileID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("invalid file type", func(t *testing.T) {
		body, contentType := multipartBody(t, "notes.txt", "plain text")

		mockSvc.On("Ingest", mock.Anything, mock.Anything, "notes.txt", mock.Anything).
			Return(nil, service.ErrInvalidFileType).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_FILE_TYPE", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("storage failure", func(t *testing.T) {
		body, contentType := multipartBody(t, "invoice.pdf", "%PDF-1.4 fake")

		mockSvc.On("Ingest", mock.Anything, mock.Anything, "invoice.pdf", mock.Anything).
			Return(nil, errors.New("minio down")).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "STORAGE_FAILURE", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestUpload_FileTooLarge(t *testing.T) {
	mockSvc := new(serviceMocks.MockQAService)
	app := fiber.New()
	app.Post("/upload", uploadHandler(mockSvc, 8))

	body, contentType := multipartBody(t, "big.pdf", strings.Repeat("a", 64))

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	var res errorPayload
	json.NewDecoder(resp.Body).Decode(&res)
	assert.Equal(t, "FILE_TOO_LARGE", res.Error.Code)
	mockSvc.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAsk(t *testing.T) {
	mockSvc := new(serviceMocks.MockQAService)
	app := fiber.New()
	app.Post("/ask", askHandler(mockSvc))

	postJSON := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Answer", mock.Anything, "doc-1", "What is the total?").
			Return("The total is $42.00.", nil).Once()

		resp := postJSON(`{"question":"What is the total?","file_id":"doc-1"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result askResponse
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "The total is $42.00.", result.Answer)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid body", func(t *testing.T) {
		resp := postJSON(`{not json`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_BODY", res.Error.Code)
	})

	serviceErrCases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "question required", err: service.ErrQuestionRequired, wantStatus: http.StatusBadRequest, wantCode: "QUESTION_REQUIRED"},
		{name: "file id required", err: service.ErrFileIDRequired, wantStatus: http.StatusBadRequest, wantCode: "FILE_ID_REQUIRED"},
		{name: "not found", err: service.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "malformed document", err: extractor.ErrMalformed, wantStatus: http.StatusInternalServerError, wantCode: "EXTRACTION_FAILED"},
		{name: "no text layer", err: extractor.ErrNoText, wantStatus: http.StatusInternalServerError, wantCode: "EXTRACTION_FAILED"},
		{name: "prompt too large", err: prompt.ErrTooLarge, wantStatus: http.StatusRequestEntityTooLarge, wantCode: "PROMPT_TOO_LARGE"},
		{name: "upstream failure", err: answerer.ErrUpstream, wantStatus: http.StatusBadGateway, wantCode: "UPSTREAM_FAILURE"},
		{name: "empty answer", err: answerer.ErrEmptyAnswer, wantStatus: http.StatusBadGateway, wantCode: "UPSTREAM_FAILURE"},
		{name: "unexpected error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}

	for _, tc := range serviceErrCases {
		t.Run(tc.name, func(t *testing.T) {
			mockSvc.On("Answer", mock.Anything, "doc-1", "q?").
				Return("", tc.err).Once()

			resp := postJSON(`{"question":"q?","file_id":"doc-1"}`)

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			var res errorPayload
			json.NewDecoder(resp.Body).Decode(&res)
			assert.Equal(t, tc.wantCode, res.Error.Code)
			mockSvc.AssertExpectations(t)
		})
	}

	t.Run("wrapped errors still map", func(t *testing.T) {
		mockSvc.On("Answer", mock.Anything, "doc-1", "q?").
			Return("", fmt.Errorf("ask answering service: %w", answerer.ErrUpstream)).Once()

		resp := postJSON(`{"question":"q?","file_id":"doc-1"}`)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})
	mockSvc := new(serviceMocks.MockQAService)
	RegisterRoutes(app, db, mockSvc, 0)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ask", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})

	t.Run("metrics exposed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
