package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apppayment "github.com/minimart/backend/internal/application/payment"
)

// Ensure LocalScreenshotStorage implements ScreenshotStorage
var _ apppayment.ScreenshotStorage = (*LocalScreenshotStorage)(nil)

// LocalScreenshotStorage stores screenshots on the local filesystem. Meant
// for development; production deployments use the S3 driver.
type LocalScreenshotStorage struct {
	baseDir string
}

// NewLocalScreenshotStorage creates a LocalScreenshotStorage rooted at baseDir
func NewLocalScreenshotStorage(baseDir string) (*LocalScreenshotStorage, error) {
	if baseDir == "" {
		return nil, errors.New("storage base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalScreenshotStorage{baseDir: baseDir}, nil
}

// resolve maps a storage key to a path under baseDir, rejecting traversal
func (s *LocalScreenshotStorage) resolve(name string) (string, error) {
	key := strings.TrimPrefix(name, "/")
	if key == "" {
		return "", errors.New("storage key is required")
	}

	full := filepath.Join(s.baseDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.baseDir, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid storage key: %s", name)
	}
	return full, nil
}

// Put writes a screenshot to disk and returns its storage path
func (s *LocalScreenshotStorage) Put(ctx context.Context, name, _ string, body io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	full, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create screenshot file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	return strings.TrimPrefix(name, "/"), nil
}

// Delete removes a stored screenshot. Deleting a missing file is not an error.
func (s *LocalScreenshotStorage) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete screenshot: %w", err)
	}
	return nil
}
