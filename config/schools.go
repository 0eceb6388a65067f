package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/aluiziolira/school-scraper/models"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

// School is one entry of the school catalog.
type School struct {
	Name         string                       `json:"name" yaml:"name"`
	Link         string                       `json:"link" yaml:"link"`
	Method       string                       `json:"method,omitempty" yaml:"method,omitempty"`
	WaitSelector string                       `json:"wait_selector,omitempty" yaml:"wait_selector,omitempty"`
	Fallback     map[models.Category][]string `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// FetchMethod returns the parsed method, defaulting to plain requests.
func (s School) FetchMethod() models.FetchMethod {
	m, ok := models.ParseFetchMethod(s.Method)
	if !ok {
		return models.MethodRequest
	}
	return m
}

// Validate checks a single catalog entry.
func (s School) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("school name cannot be empty")
	}
	parsed, err := url.Parse(s.Link)
	if err != nil {
		return fmt.Errorf("school %q: invalid link: %w", s.Name, err)
	}
	if parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("school %q: link must be an absolute http(s) URL", s.Name)
	}
	if _, ok := models.ParseFetchMethod(s.Method); !ok {
		return fmt.Errorf("school %q: unknown method %q", s.Name, s.Method)
	}
	for category := range s.Fallback {
		if _, ok := models.ParseCategory(string(category)); !ok {
			return fmt.Errorf("school %q: unknown fallback category %q", s.Name, category)
		}
	}
	return nil
}

// Catalog is the on-disk school list.
type Catalog struct {
	Schools []School `json:"schools" yaml:"schools"`
}

// Find returns the school with the given name, compared case-insensitively.
func (c *Catalog) Find(name string) (School, bool) {
	for _, s := range c.Schools {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return School{}, false
}

// Select returns the named schools in catalog order, or all of them when
// names is empty.
func (c *Catalog) Select(names []string) ([]School, error) {
	if len(names) == 0 {
		return c.Schools, nil
	}
	out := make([]School, 0, len(names))
	for _, name := range names {
		s, ok := c.Find(name)
		if !ok {
			return nil, fmt.Errorf("school %q not found in catalog", name)
		}
		out = append(out, s)
	}
	return out, nil
}

// LoadSchools reads a catalog file and merges <name>.local.<ext> over it.
// Local entries override the base entry with the same name and append
// otherwise.
func LoadSchools(path string) (*Catalog, error) {
	base, err := readCatalog(path)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(path)
	localPath := strings.TrimSuffix(path, ext) + ".local" + ext
	local, err := readCatalog(localPath)
	switch {
	case err == nil:
		if err := mergeCatalog(base, local); err != nil {
			return nil, fmt.Errorf("merge %s: %w", localPath, err)
		}
		slog.Info("merging school catalog with local overrides", slog.String("local", localPath))
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	seen := make(map[string]struct{}, len(base.Schools))
	for i := range base.Schools {
		s := &base.Schools[i]
		s.Name = strings.TrimSpace(s.Name)
		if err := s.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToLower(s.Name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate school name %q", s.Name)
		}
		seen[key] = struct{}{}
	}
	return base, nil
}

func readCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var catalog Catalog
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &catalog)
	case ".json", ".json5":
		err = json5.Unmarshal(data, &catalog)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &catalog, nil
}

func mergeCatalog(dst, override *Catalog) error {
	for _, o := range override.Schools {
		merged := false
		for i := range dst.Schools {
			if !strings.EqualFold(dst.Schools[i].Name, o.Name) {
				continue
			}
			if err := mergo.Merge(&dst.Schools[i], o, mergo.WithOverride); err != nil {
				return err
			}
			merged = true
			break
		}
		if !merged {
			dst.Schools = append(dst.Schools, o)
		}
	}
	return nil
}
