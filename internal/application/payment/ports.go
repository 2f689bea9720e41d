package payment

import (
	"context"
	"errors"
	"io"
)

// ErrNoTextDetected is returned by a TextExtractor when the image
// contains no readable text. The caller treats it as a business
// failure (blurry or wrong screenshot), not an infrastructure error.
var ErrNoTextDetected = errors.New("no text detected in image")

// TextExtractor turns a payment screenshot into raw text. The
// production implementation calls Google Cloud Vision; tests use a
// canned stub.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// ScreenshotStorage stores uploaded payment screenshots. Put returns
// the stable path later handed to Delete; implementations exist for
// S3-compatible object stores and the local filesystem.
type ScreenshotStorage interface {
	Put(ctx context.Context, name string, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, path string) error
}
