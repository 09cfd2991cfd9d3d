package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tokodash/pkg/imaging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileService stores uploaded item images on local disk and hands out their
// public URLs.
type FileService struct {
	dir       string
	publicURL string
	logger    *zap.Logger
}

// NewFileService creates a new FileService writing into dir. Returned URLs are
// publicURL + "/uploads/<name>".
func NewFileService(dir, publicURL string, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileService{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

// Dir returns the directory images are written to.
func (s *FileService) Dir() string { return s.dir }

// SaveImage normalizes an uploaded image and writes it under a fresh name.
// It returns the public URL of the stored file.
func (s *FileService) SaveImage(data []byte) (string, error) {
	res, err := imaging.Process(data)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.New().String() + ".jpg"
	if err := os.WriteFile(filepath.Join(s.dir, name), res.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	s.logger.Info("Image stored", zap.String("file", name), zap.Int("width", res.Width), zap.Int("height", res.Height))
	return s.publicURL + "/uploads/" + name, nil
}
