package reading

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"readinglog/internal/models"
)

var (
	// ErrDocumentNotFound is returned when the reading document does not exist
	ErrDocumentNotFound = errors.New("reading document not found")
	// ErrDocumentMalformed is returned when the reading document cannot be parsed
	ErrDocumentMalformed = errors.New("reading document is malformed")
)

// Document is the structured view of reading.yml used for aggregation.
// Only the books list is decoded, everything else stays opaque text.
type Document struct {
	Books []models.ReadingItem `yaml:"books"`
}

// Load reads the raw document text from path
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Parse decodes the books list of a reading document
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentMalformed, err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrDocumentMalformed)
	}
	if top := root.Content[0]; top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: top level is not a mapping", ErrDocumentMalformed, top.Line)
	}

	var doc Document
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentMalformed, err)
	}
	return &doc, nil
}

// WriteFile replaces path with data. The content goes to a temporary file in
// the same directory first, so readers never observe a partial write.
func WriteFile(path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
