package prompt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyText indicates the extracted text is empty after trimming.
	ErrEmptyText = errors.New("extracted text is empty")
	// ErrEmptyQuestion indicates the question is empty after trimming.
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrTooLarge indicates the assembled prompt exceeds the configured cap.
	ErrTooLarge = errors.New("prompt exceeds maximum size")
)

// template fixes the structure handed to the answering service: the full
// extracted text verbatim, then the trimmed question, then the instruction.
const template = `### EXTRACTED TEXT:
%s

### QUESTION:
%s

### INSTRUCTION:
Based on the extracted text above, please provide a detailed and accurate answer to the question.
### ANSWER:
`

// Builder assembles prompts under a fixed template with an explicit size cap.
// Real answering services reject oversized inputs unpredictably, so the cap
// is enforced here with a distinct error instead of silently truncating.
type Builder struct {
	maxChars int
}

// NewBuilder creates a prompt builder. maxChars bounds the assembled prompt
// length in characters; zero or negative disables the cap.
func NewBuilder(maxChars int) *Builder {
	return &Builder{maxChars: maxChars}
}

// Build combines extracted text and a question into the fixed template.
// The extracted text is embedded verbatim; the question is trimmed.
func (b *Builder) Build(extractedText, question string) (string, error) {
	if strings.TrimSpace(extractedText) == "" {
		return "", ErrEmptyText
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	p := fmt.Sprintf(template, extractedText, question)
	if b.maxChars > 0 && len(p) > b.maxChars {
		return "", fmt.Errorf("prompt is %d chars, cap is %d: %w", len(p), b.maxChars, ErrTooLarge)
	}
	return p, nil
}
