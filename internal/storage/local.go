package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sub directories of the storage root
const (
	DirSessionReports = "session_reports"
	DirImports        = "imports"
)

// LocalStorage keeps generated reports and archived import files on the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save copies r under subDir/YYYY/MM and returns the relative path.
// The stored name keeps the sanitized base of filename followed by a short unique suffix.
func (s *LocalStorage) Save(r io.Reader, filename string, subDir string, at time.Time) (string, error) {
	dir := filepath.Join(s.basePath, subDir, at.Format("2006/01"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	filePath := filepath.Join(dir, uniqueName(filename))

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	relPath, _ := filepath.Rel(s.basePath, filePath)
	return relPath, nil
}

// SaveBytes writes data and returns its relative path
func (s *LocalStorage) SaveBytes(data []byte, filename string, subDir string, at time.Time) (string, error) {
	dir := filepath.Join(s.basePath, subDir, at.Format("2006/01"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	filePath := filepath.Join(dir, uniqueName(filename))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	relPath, _ := filepath.Rel(s.basePath, filePath)
	return relPath, nil
}

// Open returns a stored file for reading
func (s *LocalStorage) Open(relativePath string) (*os.File, error) {
	return os.Open(s.GetFullPath(relativePath))
}

// Delete removes a file
func (s *LocalStorage) Delete(relativePath string) error {
	return os.Remove(s.GetFullPath(relativePath))
}

// Exists checks if a file exists
func (s *LocalStorage) Exists(relativePath string) bool {
	_, err := os.Stat(s.GetFullPath(relativePath))
	return err == nil
}

// GetFullPath returns the absolute path of a stored file; paths cannot escape the root
func (s *LocalStorage) GetFullPath(relativePath string) string {
	clean := filepath.Clean("/" + relativePath)
	return filepath.Join(s.basePath, clean)
}

func uniqueName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	if base == "" || base == "." {
		base = "file"
	}
	return fmt.Sprintf("%s_%s%s", base, uuid.NewString()[:8], ext)
}

// Import file kinds
const (
	ImportKindXLSX = "xlsx"
	ImportKindXML  = "xml"
)

// ImportKind returns the import format of filename, or an empty string when unsupported
func ImportKind(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return ImportKindXLSX
	case ".xml":
		return ImportKindXML
	}
	return ""
}

// MaxImportSize returns the maximum accepted import file size (10MB)
func MaxImportSize() int64 {
	return 10 * 1024 * 1024
}
