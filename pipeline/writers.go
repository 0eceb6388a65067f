package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aluiziolira/school-scraper/models"
)

// CSVWriter writes a one-row-per-school index.
type CSVWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
	rows   int
	mu     sync.Mutex
}

var csvHeader = []string{"name", "link", "academic_year", "tuition_levels", "programs", "scholarships", "email", "phone_numbers", "website", "notes"}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		path:   filename,
		file:   f,
		writer: writer,
	}, nil
}

// Write appends one index row per record.
func (cw *CSVWriter) Write(records []*models.SchoolRecord) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, r := range records {
		levels := make([]string, 0, len(r.SchoolFee.TuitionByLevel))
		for level := range r.SchoolFee.TuitionByLevel {
			levels = append(levels, level)
		}
		sort.Strings(levels)

		row := []string{
			r.Name,
			r.Link,
			r.SchoolFee.AcademicYear,
			strings.Join(levels, "; "),
			strconv.Itoa(len(r.Programs)),
			strconv.Itoa(len(r.Scholarships)),
			r.Contact.Email,
			strings.Join(r.Contact.PhoneNumbers, "; "),
			r.Contact.Website,
			r.Notes,
		}
		if err := cw.writer.Write(row); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
		cw.rows++
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures the file has content besides the header. It may be
// called after Close.
func (cw *CSVWriter) Validate() error {
	cw.mu.Lock()
	rows := cw.rows
	cw.mu.Unlock()

	info, err := os.Stat(cw.path)
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 || rows == 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

// JSONWriter writes newline-delimited JSON records.
type JSONWriter struct {
	path    string
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	return &JSONWriter{
		path:    filename,
		file:    f,
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}, nil
}

// Write appends records in JSONL format.
func (jw *JSONWriter) Write(records []*models.SchoolRecord) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, r := range records {
		if err := jw.encoder.Encode(r); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}

	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	info, err := os.Stat(jw.path)
	if err != nil {
		return fmt.Errorf("stat json file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("json file is empty")
	}
	return nil
}

// ParsedWriter stores each record as <slug>_parsed.json, replacing any
// earlier file for the same school.
type ParsedWriter struct {
	dir     string
	mu      sync.Mutex
	written int
}

// NewParsedWriter creates dir if needed.
func NewParsedWriter(dir string) (*ParsedWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %q: %w", dir, err)
	}
	return &ParsedWriter{dir: dir}, nil
}

// Path returns the file a school's record is stored in.
func (pw *ParsedWriter) Path(school string) string {
	return filepath.Join(pw.dir, Slug(school)+"_parsed.json")
}

func (pw *ParsedWriter) Write(records []*models.SchoolRecord) error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	for _, r := range records {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", r.Name, err)
		}
		if err := os.WriteFile(pw.Path(r.Name), data, 0o644); err != nil {
			return fmt.Errorf("write parsed record: %w", err)
		}
		pw.written++
	}
	return nil
}

// Load reads a stored record back.
func (pw *ParsedWriter) Load(school string) (map[string]any, error) {
	data, err := os.ReadFile(pw.Path(school))
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", pw.Path(school), err)
	}
	return out, nil
}

func (pw *ParsedWriter) Close() error {
	return nil
}

// Validate fails when nothing was written.
func (pw *ParsedWriter) Validate() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	if pw.written == 0 {
		return fmt.Errorf("no parsed records written")
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
