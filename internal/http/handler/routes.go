package handler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/upagnaduba/ChatWithPdf/internal/answerer"
	"github.com/upagnaduba/ChatWithPdf/internal/extractor"
	"github.com/upagnaduba/ChatWithPdf/internal/prompt"
	"github.com/upagnaduba/ChatWithPdf/internal/service"
)

// uploadResponse is the body returned by POST /upload.
type uploadResponse struct {
	Message string `json:"message"`
	FileID  string `json:"file_id"`
}

// askRequest is the JSON body accepted by POST /ask.
type askRequest struct {
	Question string `json:"question"`
	FileID   string `json:"file_id"`
}

// askResponse is the body returned by POST /ask.
type askResponse struct {
	Answer string `json:"answer"`
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parse the request, call the service, map errors.
func RegisterRoutes(app *fiber.App, db *sql.DB, qaSvc service.QAService, maxUploadBytes int64) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health endpoint: checks DB connectivity only
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	// Simple liveness probe
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Post("/upload", uploadHandler(qaSvc, maxUploadBytes))
	app.Post("/ask", askHandler(qaSvc))
}

// uploadHandler accepts a PDF upload and returns the id for later questions.
//
//	@Summary	Upload a PDF document
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		file	formData	file	true	"PDF file"
//	@Success	201		{object}	uploadResponse
//	@Failure	400		{object}	errorPayload
//	@Failure	413		{object}	errorPayload
//	@Router		/upload [post]
func uploadHandler(qaSvc service.QAService, maxUploadBytes int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		if maxUploadBytes > 0 && fh.Size > maxUploadBytes {
			return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "uploaded file exceeds the size limit")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := qaSvc.Ingest(c.UserContext(), f, fh.Filename, fh.Size)
		switch {
		case errors.Is(err, service.ErrFilenameRequired):
			return writeError(c, fiber.StatusBadRequest, "FILENAME_REQUIRED", "filename is required")
		case errors.Is(err, service.ErrInvalidFileType):
			return writeError(c, fiber.StatusBadRequest, "INVALID_FILE_TYPE", "only pdf files are accepted")
		case err != nil:
			return writeError(c, fiber.StatusInternalServerError, "STORAGE_FAILURE", "could not store the uploaded file")
		}

		return c.Status(fiber.StatusCreated).JSON(uploadResponse{
			Message: "File uploaded successfully",
			FileID:  doc.ID,
		})
	}
}

// askHandler answers a question against a previously uploaded document.
//
//	@Summary	Ask a question about an uploaded document
//	@Accept		json
//	@Produce	json
//	@Param		request	body		askRequest	true	"question and file id"
//	@Success	200		{object}	askResponse
//	@Failure	400		{object}	errorPayload
//	@Failure	404		{object}	errorPayload
//	@Failure	413		{object}	errorPayload
//	@Failure	502		{object}	errorPayload
//	@Router		/ask [post]
func askHandler(qaSvc service.QAService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req askRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}

		answer, err := qaSvc.Answer(c.UserContext(), req.FileID, req.Question)
		switch {
		case errors.Is(err, service.ErrQuestionRequired):
			return writeError(c, fiber.StatusBadRequest, "QUESTION_REQUIRED", "question is required")
		case errors.Is(err, service.ErrFileIDRequired):
			return writeError(c, fiber.StatusBadRequest, "FILE_ID_REQUIRED", "file_id is required")
		case errors.Is(err, service.ErrNotFound):
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
		case errors.Is(err, prompt.ErrTooLarge):
			return writeError(c, fiber.StatusRequestEntityTooLarge, "PROMPT_TOO_LARGE", "document text exceeds the prompt size limit")
		case errors.Is(err, extractor.ErrMalformed),
			errors.Is(err, extractor.ErrNoText),
			errors.Is(err, prompt.ErrEmptyText):
			return writeError(c, fiber.StatusInternalServerError, "EXTRACTION_FAILED", "could not extract text from the document")
		case errors.Is(err, answerer.ErrUpstream), errors.Is(err, answerer.ErrEmptyAnswer):
			return writeError(c, fiber.StatusBadGateway, "UPSTREAM_FAILURE", "answering service failed")
		case err != nil:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		return c.JSON(askResponse{Answer: answer})
	}
}
