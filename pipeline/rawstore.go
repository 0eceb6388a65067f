package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Slug turns a school name into a filesystem-safe file stem: whitespace
// becomes an underscore and path or shell metacharacters are dropped.
func Slug(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune('_')
		case strings.ContainsRune(`/\:*?"<>|`, r), unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	slug := strings.Trim(b.String(), ".")
	if slug == "" {
		return "school"
	}
	return slug
}

// RawStore keeps one raw text artifact per school.
type RawStore struct {
	dir string
}

// NewRawStore creates dir if needed.
func NewRawStore(dir string) (*RawStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %q: %w", dir, err)
	}
	return &RawStore{dir: dir}, nil
}

// Path returns <dir>/<slug>_raw.txt.
func (s *RawStore) Path(school string) string {
	return filepath.Join(s.dir, Slug(school)+"_raw.txt")
}

// Save overwrites the school's artifact and returns its path.
func (s *RawStore) Save(school, content string) (string, error) {
	path := s.Path(school)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write raw data: %w", err)
	}
	return path, nil
}

// Load returns the stored artifact. A missing file yields os.ErrNotExist.
func (s *RawStore) Load(school string) (string, error) {
	data, err := os.ReadFile(s.Path(school))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
