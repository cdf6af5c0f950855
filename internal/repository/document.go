package repository

import (
	"context"

	"github.com/upagnaduba/ChatWithPdf/internal/model"
)

// DocumentRepository defines data access for document metadata using SQL
// queries only. No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record.
	// The caller provides all fields including the generated ID and CreatedAt.
	// Returns the stored document (may include values set by the DB).
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID. Unknown ids surface sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Document, error)
}
