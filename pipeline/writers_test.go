package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aluiziolira/school-scraper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *models.SchoolRecord {
	r := models.NewSchoolRecord("Test School", "https://test-school.example")
	r.SchoolFee = models.FeeInfo{
		AcademicYear: "2024-2025",
		TuitionByLevel: map[string]models.TuitionLevel{
			"Grade 1":   {Annual: models.NumericAmount(85000)},
			"Preschool": {Annual: models.NumericAmount(60000)},
		},
	}
	r.Programs = []models.Program{{Name: "STEM", GradeLevel: "Senior High"}}
	r.Contact = models.ContactInfo{
		Email:        "info@test-school.example",
		PhoneNumbers: []string{"+63 2 8123 4567", "(02) 8765-4321"},
	}
	return r
}

func TestCSVWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schools.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}

	if err := writer.Write([]*models.SchoolRecord{sampleRecord()}); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records=%d, want 2", len(records))
	}
	if records[0][0] != "name" || records[0][1] != "link" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	assert.Equal(t, "Test School", records[1][0])
	assert.Equal(t, "2024-2025", records[1][2])
	assert.Equal(t, "Grade 1; Preschool", records[1][3])
	assert.Equal(t, "1", records[1][4])
	assert.Equal(t, "+63 2 8123 4567; (02) 8765-4321", records[1][7])
}

func TestJSONWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schools.jsonl")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}

	if err := writer.Write([]*models.SchoolRecord{sampleRecord(), models.NewSchoolRecord("Empty School", "")}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var names []string
	for scanner.Scan() {
		var decoded map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid json line: %v", err)
		}
		names = append(names, decoded["name"].(string))
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan json: %v", err)
	}
	assert.Equal(t, []string{"Test School", "Empty School"}, names)
}

func TestParsedWriterReplacesFile(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewParsedWriter(dir)
	require.NoError(t, err)
	require.Error(t, writer.Validate())

	first := sampleRecord()
	require.NoError(t, writer.Write([]*models.SchoolRecord{first}))

	second := sampleRecord()
	second.Contact.Email = "admissions@test-school.example"
	require.NoError(t, writer.Write([]*models.SchoolRecord{second}))
	require.NoError(t, writer.Validate())

	assert.Equal(t, filepath.Join(dir, "Test_School_parsed.json"), writer.Path("Test School"))

	loaded, err := writer.Load("Test School")
	require.NoError(t, err)
	contact := loaded["contact"].(map[string]any)
	assert.Equal(t, "admissions@test-school.example", contact["email"])
	assert.Equal(t, models.NoInformation, loaded["events"])
}

func TestRawStoreSaveLoad(t *testing.T) {
	store, err := NewRawStore(filepath.Join(t.TempDir(), "raw_data"))
	require.NoError(t, err)

	path, err := store.Save("St. Mary's School", "School: St. Mary's School\n")
	require.NoError(t, err)
	assert.Equal(t, "St._Mary's_School_raw.txt", filepath.Base(path))

	content, err := store.Load("St. Mary's School")
	require.NoError(t, err)
	assert.Equal(t, "School: St. Mary's School\n", content)

	_, err = store.Load("Unknown School")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces", "Northfield Academy", "Northfield_Academy"},
		{"trimmed", "  Trimmed  ", "Trimmed"},
		{"separators", "A/B\\C: D", "ABC_D"},
		{"empty", "///", "school"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.in))
		})
	}
}

type failingWriter struct {
	mockWriter
	err error
}

func (fw *failingWriter) Write([]*models.SchoolRecord) error { return fw.err }
func (fw *failingWriter) Close() error                       { return fw.err }

func TestMultiWriterWrite(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "schools.csv")
	jsonPath := filepath.Join(dir, "schools.jsonl")

	csvWriter, err := NewCSVWriter(csvPath)
	require.NoError(t, err)
	jsonWriter, err := NewJSONWriter(jsonPath)
	require.NoError(t, err)

	writer := NewMultiWriter(csvWriter, nil, jsonWriter)
	if err := writer.Write([]*models.SchoolRecord{sampleRecord()}); err != nil {
		t.Fatalf("write multi: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate multi: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multi: %v", err)
	}

	if info, err := os.Stat(csvPath); err != nil || info.Size() == 0 {
		t.Fatalf("csv file missing or empty")
	}
	if info, err := os.Stat(jsonPath); err != nil || info.Size() == 0 {
		t.Fatalf("json file missing or empty")
	}
}

func TestMultiWriterErrors(t *testing.T) {
	boom := errors.New("boom")
	ok := &mockWriter{}
	writer := NewMultiWriter(&failingWriter{err: boom}, ok)

	err := writer.Write([]*models.SchoolRecord{sampleRecord()})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, ok.totalWritten())

	err = writer.Close()
	require.ErrorIs(t, err, boom)
	assert.True(t, ok.closed)
}

func TestWritersValidateAfterClose(t *testing.T) {
	dir := t.TempDir()

	empty, err := NewCSVWriter(filepath.Join(dir, "empty.csv"))
	require.NoError(t, err)
	require.NoError(t, empty.Close())
	assert.Error(t, empty.Validate())

	csvWriter, err := NewCSVWriter(filepath.Join(dir, "schools.csv"))
	require.NoError(t, err)
	jsonWriter, err := NewJSONWriter(filepath.Join(dir, "schools.jsonl"))
	require.NoError(t, err)

	writer := NewMultiWriter(csvWriter, jsonWriter)
	require.NoError(t, writer.Write([]*models.SchoolRecord{sampleRecord()}))
	require.NoError(t, writer.Close())
	assert.NoError(t, writer.Validate())
}
