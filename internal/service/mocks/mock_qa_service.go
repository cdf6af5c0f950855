package mocks

import (
	"context"
	"io"

	"github.com/upagnaduba/ChatWithPdf/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockQAService struct {
	mock.Mock
}

func (m *MockQAService) Ingest(ctx context.Context, r io.Reader, filename string, size int64) (*model.Document, error) {
	args := m.Called(ctx, r, filename, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockQAService) Answer(ctx context.Context, fileID, question string) (string, error) {
	args := m.Called(ctx, fileID, question)
	return args.String(0), args.Error(1)
}
