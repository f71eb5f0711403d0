package clients

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"payments-register/internal/service"
)

// maxNameAttempts bounds the numeric suffixes tried for a taken name.
const maxNameAttempts = 1000

var ErrInvalidFileName = errors.New("invalid file name")

type StorageClient struct {
	BaseDir string // directory receipts are written to
	BaseURL string // optional absolute base URL (scheme+host[:port]) used to build receipt URLs
}

// NewLocalStorage creates a storage client; baseDir will be created if missing.
func NewLocalStorage(baseDir, baseURL string) (*StorageClient, error) {
	if baseDir == "" {
		baseDir = "./registered_payments"
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure storage dir %q: %w", baseDir, err)
	}

	return &StorageClient{BaseDir: baseDir, BaseURL: baseURL}, nil
}

// Save writes data under fileName. When the name is taken, _1, _2, ... is
// inserted before the extension; an existing receipt is never overwritten.
func (s *StorageClient) Save(ctx context.Context, fileName string, data []byte, contentType string) (string, error) {
	fileName = filepath.Base(fileName)
	if fileName == "." || fileName == string(filepath.Separator) {
		return "", ErrInvalidFileName
	}

	tmp, err := os.CreateTemp(s.BaseDir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	ext := filepath.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)
	for i := 0; i < maxNameAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		final := fileName
		if i > 0 {
			final = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		// Link fails when the target exists, so a taken name is never replaced.
		err := os.Link(tmp.Name(), filepath.Join(s.BaseDir, final))
		if err == nil {
			return final, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("failed to finalize file: %w", err)
		}
	}
	return "", fmt.Errorf("no free name for %q", fileName)
}

// Delete removes a stored receipt. A missing file is not an error.
func (s *StorageClient) Delete(ctx context.Context, fileName string) error {
	p, err := s.Path(fileName)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// Path returns the on-disk location of a stored receipt.
func (s *StorageClient) Path(fileName string) (string, error) {
	if fileName == "" || fileName != filepath.Base(fileName) || strings.HasPrefix(fileName, ".") {
		return "", ErrInvalidFileName
	}
	return filepath.Join(s.BaseDir, fileName), nil
}

// GetURL returns the URL of a saved receipt under routePrefix, the path its
// download route is mounted at. The name is escaped as a single path segment.
// With BaseURL set the URL is absolute, otherwise it is a relative path.
func (s *StorageClient) GetURL(routePrefix, fileName string) string {
	prefix := "/" + strings.Trim(routePrefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	return strings.TrimSuffix(s.BaseURL, "/") + prefix + "/" + url.PathEscape(fileName)
}

var _ service.ReceiptStore = (*StorageClient)(nil)
