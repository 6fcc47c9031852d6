// Package storage provides recipe image storage on local disk or S3
package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/recipemanager/server/internal/infrastructure/config"
	"github.com/recipemanager/server/internal/ports/outbound"
	"go.uber.org/zap"
)

// ErrInvalidKey is returned for keys that are empty or escape the storage root
var ErrInvalidKey = errors.New("invalid storage key")

// New creates the storage service selected by cfg.Storage.Provider
func New(cfg *config.Config, logger *zap.Logger) (outbound.StorageService, error) {
	switch cfg.Storage.Provider {
	case "local":
		local, err := NewLocalStorage(cfg.Storage.LocalPath, cfg.Storage.PublicPath, logger)
		if err != nil {
			return nil, err
		}
		return local, nil
	case "s3":
		s3Store, err := NewS3Storage(cfg.AWS, logger)
		if err != nil {
			return nil, err
		}
		return s3Store, nil
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Storage.Provider)
	}
}

// cleanKey normalizes a slash separated object key and rejects traversal
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || cleaned != strings.TrimPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
