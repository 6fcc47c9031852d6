package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/recipemanager/server/internal/ports/outbound"
	"go.uber.org/zap"
)

// LocalStorage stores images on the local filesystem. The HTTP server
// exposes the root directory under publicPath.
type LocalStorage struct {
	root       string
	publicPath string
	logger     *zap.Logger
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(root, publicPath string, logger *zap.Logger) (*LocalStorage, error) {
	if root == "" {
		root = "./uploads"
	}

	// Create base directory if it doesn't exist
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		root:       root,
		publicPath: strings.TrimRight(publicPath, "/"),
		logger:     logger.Named("local-storage"),
	}, nil
}

var _ outbound.StorageService = (*LocalStorage)(nil)

// Root returns the directory files are written to
func (s *LocalStorage) Root() string {
	return s.root
}

// Upload writes body to key and returns its public URL
func (s *LocalStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(file, body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Stored image",
		zap.String("key", key),
		zap.Int64("bytes", written),
		zap.String("content_type", contentType))

	return s.publicPath + "/" + key, nil
}

// Delete removes a file. Missing files are not an error.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
