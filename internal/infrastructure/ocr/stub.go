package ocr

import (
	"context"
	"strings"

	apppayment "github.com/minimart/backend/internal/application/payment"
)

// StubExtractor returns the image bytes interpreted as plain text. It lets
// local development exercise the full verification pipeline by uploading a
// text file in place of a screenshot. Never enabled in production.
type StubExtractor struct{}

// NewStubExtractor creates a new StubExtractor
func NewStubExtractor() *StubExtractor {
	return &StubExtractor{}
}

// ExtractText treats the uploaded bytes as the detected text
func (e *StubExtractor) ExtractText(_ context.Context, image []byte) (string, error) {
	text := strings.TrimSpace(string(image))
	if text == "" {
		return "", apppayment.ErrNoTextDetected
	}
	return text, nil
}

// Ensure StubExtractor implements TextExtractor
var _ apppayment.TextExtractor = (*StubExtractor)(nil)
