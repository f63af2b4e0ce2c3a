package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/budline/budline/internal/pkg/logger"
)

// LocalStorage stores attachment blobs on the local filesystem and resolves
// storage keys against a public base URL.
type LocalStorage struct {
	basePath string // root directory where files are stored
	baseURL  string // public URL prefix for stored files
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save stores an uploaded file under a generated storage key. The key keeps
// the original extension so mime sniffing by static file servers still works.
func (ls *LocalStorage) Save(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("no file provided")
	}

	src, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	ext := filepath.Ext(fileHeader.Filename)
	storageKey := uuid.New().String() + ext

	dstPath := filepath.Join(ls.basePath, storageKey)
	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return storageKey, nil
}

// Delete removes a stored file by its storage key.
func (ls *LocalStorage) Delete(storageKey string) error {
	if storageKey == "" {
		return nil
	}
	path := filepath.Join(ls.basePath, filepath.Base(storageKey))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", storageKey, err)
	}
	return nil
}

// ResolveURL maps a storage key to its public URL.
func (ls *LocalStorage) ResolveURL(storageKey string) string {
	if storageKey == "" {
		return ""
	}
	return ls.baseURL + "/" + storageKey
}
