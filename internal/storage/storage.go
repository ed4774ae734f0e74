package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pipemetric/insight-api/internal/config"
	"go.uber.org/zap"
)

// Source provides read access to the dataset JSON files. The engine only
// ever reads the dataset; writes happen upstream of this service.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// NewSource creates a dataset source based on configuration. Local mode
// reads from a directory; azure mode reads from a blob container.
func NewSource(cfg *config.DatasetConfig, logger *zap.Logger) (Source, error) {
	switch cfg.Mode {
	case "local":
		return NewLocalSource(cfg.LocalPath)
	case "azure":
		if cfg.CloudConnectionString == "" {
			return nil, fmt.Errorf("cloud connection string required for azure dataset source")
		}
		return NewBlobSource(cfg.CloudConnectionString, cfg.CloudContainer, logger)
	default:
		return nil, fmt.Errorf("unsupported dataset mode: %s", cfg.Mode)
	}
}

// LocalSource reads dataset files from a directory
type LocalSource struct {
	basePath string
}

// NewLocalSource creates a local dataset source
func NewLocalSource(basePath string) (*LocalSource, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("dataset directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset path is not a directory: %s", basePath)
	}

	return &LocalSource{basePath: basePath}, nil
}

// Open opens a dataset file by name
func (s *LocalSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, name)

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("dataset file not found: %s", name)
		}
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}

	return file, nil
}
