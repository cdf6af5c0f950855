package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/upagnaduba/ChatWithPdf/internal/answerer"
	"github.com/upagnaduba/ChatWithPdf/internal/extractor"
	"github.com/upagnaduba/ChatWithPdf/internal/model"
	"github.com/upagnaduba/ChatWithPdf/internal/prompt"
	"github.com/upagnaduba/ChatWithPdf/internal/repository"
	"github.com/upagnaduba/ChatWithPdf/internal/storage"
)

var (
	ErrReaderNil        = errors.New("reader is nil")
	ErrFilenameRequired = errors.New("filename is required")
	ErrInvalidFileType  = errors.New("only pdf files are accepted")
	ErrFileIDRequired   = errors.New("file_id is required")
	ErrQuestionRequired = errors.New("question is required")
	ErrNotFound         = errors.New("document not found")
)

// QAService defines the use cases for document question answering.
type QAService interface {
	// Ingest validates the file type, uploads the content to object storage,
	// and saves a metadata row. Storage is rolled back if the DB save fails.
	Ingest(ctx context.Context, r io.Reader, filename string, size int64) (*model.Document, error)

	// Answer resolves a document id to its stored bytes, extracts the text,
	// assembles a prompt with the question, and relays the generated answer.
	Answer(ctx context.Context, fileID, question string) (string, error)
}

// qaService is a concrete implementation of QAService.
type qaService struct {
	store     storage.Storage
	repo      repository.DocumentRepository
	extractor extractor.Extractor
	prompts   *prompt.Builder
	answerer  answerer.Answerer
}

// NewQAService constructs a new QAService.
func NewQAService(
	store storage.Storage,
	repo repository.DocumentRepository,
	ext extractor.Extractor,
	prompts *prompt.Builder,
	ans answerer.Answerer,
) QAService {
	return &qaService{
		store:     store,
		repo:      repo,
		extractor: ext,
		prompts:   prompts,
		answerer:  ans,
	}
}

func (s *qaService) Ingest(ctx context.Context, r io.Reader, filename string, size int64) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, ErrFilenameRequired
	}
	// Type check happens before any byte reaches storage.
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, ErrInvalidFileType
	}

	// One UUID identifies both the metadata row and the stored object.
	id := uuid.New().String()
	key := filepath.ToSlash(filepath.Join("documents", id+".pdf"))

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: "application/pdf",
		Metadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:          id,
		Filename:    filename,
		StoragePath: objInfo.Key,
		Size:        objInfo.Size,
		ContentType: objInfo.ContentType,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object so no orphaned bytes remain.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *qaService) Answer(ctx context.Context, fileID, question string) (string, error) {
	if strings.TrimSpace(fileID) == "" {
		return "", ErrFileIDRequired
	}
	if strings.TrimSpace(question) == "" {
		return "", ErrQuestionRequired
	}

	doc, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("find document: %w", err)
	}

	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("fetch from storage: %w", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read from storage: %w", err)
	}

	// Extraction runs on every question; raw bytes are the only persisted form.
	text, err := s.extractor.Extract(data)
	if err != nil {
		return "", fmt.Errorf("extract document %s: %w", doc.ID, err)
	}

	p, err := s.prompts.Build(text, question)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	answer, err := s.answerer.Ask(ctx, p)
	if err != nil {
		return "", fmt.Errorf("ask answering service: %w", err)
	}
	return answer, nil
}
