package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/claimdesk/claimdesk/internal/application/port"
)

// LocalFileStore implements port.FileStore on the local filesystem.
// Receipts are stored under <baseDir>/<claimID>/<fileName> and served
// back as /uploads URLs.
type LocalFileStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFileStore creates a new LocalFileStore
func NewLocalFileStore(baseDir string, logger *zap.Logger) port.FileStore {
	return &LocalFileStore{
		baseDir: baseDir,
		logger:  logger,
	}
}

// SaveReceipt writes a receipt file and returns its public URL path
func (s *LocalFileStore) SaveReceipt(ctx context.Context, claimID, fileName string, content []byte) (string, error) {
	safeName := filepath.Base(fileName)
	fullPath := filepath.Join(s.baseDir, claimID, safeName)

	if err := s.validatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		s.logger.Error("Failed to create receipt directory",
			zap.String("path", filepath.Dir(fullPath)),
			zap.Error(err))
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write receipt",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Receipt saved",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))

	return fmt.Sprintf("/uploads/%s/%s", claimID, safeName), nil
}

// validatePath checks that the path stays within baseDir
func (s *LocalFileStore) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}

	return nil
}
