package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrMalformed indicates the input bytes are not a structurally valid PDF.
	ErrMalformed = errors.New("malformed pdf document")
	// ErrNoText indicates a valid PDF whose pages carry no extractable text
	// (e.g. a scanned document without a text layer).
	ErrNoText = errors.New("no extractable text in document")
)

// Extractor converts raw document bytes into plain text. Extraction must be
// deterministic: identical bytes always yield identical text.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// PDFExtractor extracts text from PDF documents page by page.
type PDFExtractor struct{}

// NewPDF creates a PDF text extractor.
func NewPDF() *PDFExtractor {
	return &PDFExtractor{}
}

var _ Extractor = (*PDFExtractor)(nil)

// Extract parses the PDF page tree and concatenates each page's text in page
// order, separated by a newline. Pages that yield no text are skipped rather
// than contributing blank entries.
func (e *PDFExtractor) Extract(data []byte) (text string, err error) {
	// The underlying parser panics on some corrupt cross-reference tables
	// instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("parse pdf: %v: %w", r, ErrMalformed)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %v: %w", err, ErrMalformed)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the document.
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		pages = append(pages, strings.TrimSpace(pageText))
	}

	text = strings.TrimSpace(strings.Join(pages, "\n"))
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
