package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func specs(family string, fields ...interface{}) *domain.ExtractionReport {
	r := domain.NewExtractionReport()
	r.EngineFamily = family
	for i := 0; i+2 < len(fields); i += 3 {
		r.Add(domain.ExtractionResult{
			Field:      fields[i].(string),
			Value:      fields[i+1],
			Confidence: fields[i+2].(float64),
			Source:     domain.SourceName,
		})
	}
	return r
}

func record(row int, name, brand, category string, status domain.Status, ex *domain.ExtractionReport) domain.IngestionRecord {
	return domain.IngestionRecord{
		OriginalData: domain.Row{"name": name},
		NormalizedData: domain.NormalizedData{
			Name:     domain.NameResult{Normalized: name, Original: name},
			Brand:    domain.BrandMatch{Canonical: brand},
			Category: domain.CategoryResult{Slug: category},
		},
		ExtractedSpecs: ex,
		Status:         status,
		ReviewReasons:  []string{},
		RowNumber:      row,
	}
}

func testBatch(mode domain.Mode) *domain.BatchReport {
	invalid := record(3, "Piston", "Honda", "engines/pistons", domain.StatusInvalid, specs(""))
	invalid.Validation.Issues = []domain.ValidationIssue{
		{Field: "bore_mm", Message: "Required field 'bore_mm' is missing", Severity: domain.SeverityError, Suggestion: "Add bore_mm"},
	}
	review := record(2, `Seat "Deluxe" Cushion`, "Unknown", "", domain.StatusNeedsReview, specs(""))
	review.ReviewReasons = []string{domain.ReasonLowCategoryConfidence}

	batch := &domain.BatchReport{
		BatchID:    "20260314-150926-abcd1234",
		Timestamp:  time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
		Mode:       mode,
		SourceFile: "parts.csv",
		Records: []domain.IngestionRecord{
			record(1, "Gx200 Piston Kit 68mm", "Honda", "engines/pistons", domain.StatusReady,
				specs("honda_gx200", "bore_mm", 68.0, 0.95, "displacement_cc", 196, 0.9)),
			review,
			invalid,
			record(4, "Predator 212 Hemi Flywheel", "Predator", "engines/flywheels", domain.StatusReady,
				specs("predator_212_hemi", "displacement_cc", 212, 0.9, "variant", "hemi", 0.6)),
		},
	}
	for _, r := range batch.Records {
		batch.Statistics.Count(r.Status)
	}
	return batch
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewWriter_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "nested")
	w, err := NewWriter(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, w.OutputDir())
	assert.DirExists(t, dir)
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		mode  domain.Mode
		clean bool
		want  []Kind
	}{
		{"dry run with issues", domain.ModeDryRun, false, []Kind{KindJSON, KindDryRun, KindNeedsReview, KindAnalysis}},
		{"commit", domain.ModeCommit, false, []Kind{KindJSON, KindNeedsReview, KindAnalysis, KindCommitSummary}},
		{"report only without issues", domain.ModeReportOnly, true, []Kind{KindJSON, KindAnalysis}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWriter(t.TempDir())
			require.NoError(t, err)

			batch := testBatch(tt.mode)
			if tt.clean {
				batch.Statistics = domain.BatchStatistics{Total: 4, Ready: 4}
			}

			artifacts, err := w.Generate(batch)
			require.NoError(t, err)

			var kinds []Kind
			for _, a := range artifacts {
				kinds = append(kinds, a.Kind)
				assert.FileExists(t, a.Path)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := w.WriteJSON(testBatch(domain.ModeDryRun))
	require.NoError(t, err)
	assert.Equal(t, "report-20260314-150926-abcd1234.json", filepath.Base(path))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(readFile(t, path)), &decoded))
	stats := decoded["statistics"].(map[string]interface{})
	assert.Equal(t, float64(4), stats["total"])
	assert.Equal(t, float64(2), stats["ready"])
}

func TestWriteDryRun(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := w.WriteDryRun(testBatch(domain.ModeDryRun))
	require.NoError(t, err)
	content := readFile(t, path)

	assert.Contains(t, content, "DRY RUN INGESTION REPORT")
	assert.Contains(t, content, "Source:      parts.csv")
	assert.Contains(t, content, "Ready to Commit:  2")
	assert.Contains(t, content, "  engines/pistons: 2")
	assert.Contains(t, content, "  uncategorized: 1")
	assert.Contains(t, content, "  Row 2: Seat \"Deluxe\" Cushion\n    Reasons: low_category_confidence")
	assert.Contains(t, content, "  Row 3: Piston\n    - Required field 'bore_mm' is missing")
	assert.Contains(t, content, "READY TO COMMIT (showing first 2 of 2)")
	assert.Contains(t, content, "    Specs: bore_mm=68, displacement_cc=196")
	assert.True(t, strings.HasSuffix(content, "END OF REPORT\n"+wideRule))

	// Categories sort by count, then first appearance
	assert.Less(t, strings.Index(content, "  engines/pistons: 2"), strings.Index(content, "  uncategorized: 1"))
	assert.Less(t, strings.Index(content, "  uncategorized: 1"), strings.Index(content, "  engines/flywheels: 1"))
}

func TestWriteNeedsReview(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := w.WriteNeedsReview(testBatch(domain.ModeDryRun))
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(readFile(t, path))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"row", "name", "brand", "category", "status", "reasons", "suggested_fixes"}, rows[0])
	assert.Equal(t, []string{"2", `Seat "Deluxe" Cushion`, "Unknown", "", "needs_review", "low_category_confidence", ""}, rows[1])
	assert.Equal(t, []string{"3", "Piston", "Honda", "engines/pistons", "invalid", "", "Add bore_mm"}, rows[2])
}

func TestAnalyze(t *testing.T) {
	a := Analyze(testBatch(domain.ModeDryRun))

	assert.Equal(t, 3, a.HighConfidence)
	assert.Equal(t, 0, a.MediumConfidence)
	assert.Equal(t, 1, a.LowConfidence)
	assert.Equal(t, []FieldCount{
		{Field: "displacement_cc", Count: 2},
		{Field: "bore_mm", Count: 1},
		{Field: "variant", Count: 1},
	}, a.Fields)
	assert.Equal(t, []ValueCount{{"honda_gx200", 1}, {"predator_212_hemi", 1}}, a.EngineFamilies)

	require.Len(t, a.TopValues, 3)
	assert.Equal(t, "bore_mm", a.TopValues[0].Field)
	assert.Equal(t, []ValueCount{{"196", 1}, {"212", 1}}, a.TopValues[1].Values)
}

func TestAnalyze_TopFiveValues(t *testing.T) {
	batch := &domain.BatchReport{}
	for i := 0; i < 8; i++ {
		batch.Records = append(batch.Records, domain.IngestionRecord{
			ExtractedSpecs: specs("", "teeth", 10+i%6, 0.85),
		})
	}

	a := Analyze(batch)
	require.Len(t, a.TopValues, 1)
	values := a.TopValues[0].Values
	require.Len(t, values, 5)
	assert.Equal(t, ValueCount{"10", 2}, values[0])
	assert.Equal(t, ValueCount{"11", 2}, values[1])
	assert.Equal(t, ValueCount{"12", 1}, values[2])
	assert.Equal(t, 8, a.MediumConfidence)
}

func TestWriteAnalysis(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := w.WriteAnalysis(testBatch(domain.ModeDryRun))
	require.NoError(t, err)
	content := readFile(t, path)

	assert.Contains(t, content, "High Confidence (>=90%):     3")
	assert.Contains(t, content, "  displacement_cc: 2 (50.0%)")
	assert.Contains(t, content, "ENGINE FAMILIES DETECTED")
	assert.Contains(t, content, "  variant:\n    hemi: 1")
}

func TestWriteCommitSummary(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	batch := testBatch(domain.ModeCommit)
	for i := 0; i < 53; i++ {
		batch.CommittedIDs = append(batch.CommittedIDs, fmt.Sprintf("id-%02d", i))
	}

	path, err := w.WriteCommitSummary(batch)
	require.NoError(t, err)
	content := readFile(t, path)

	assert.Contains(t, content, "Successfully Committed: 53")
	assert.Contains(t, content, "  id-49\n  ... and 3 more")
	assert.NotContains(t, content, "id-50")
}

type mockPutter struct {
	keys   []string
	bodies []string
	types  []string
	err    error
}

func (m *mockPutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, _ := io.ReadAll(in.Body)
	m.keys = append(m.keys, *in.Key)
	m.bodies = append(m.bodies, string(body))
	m.types = append(m.types, *in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Uploader_Upload(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)
	batch := testBatch(domain.ModeDryRun)
	artifacts, err := w.Generate(batch)
	require.NoError(t, err)

	putter := &mockPutter{}
	uploader := NewS3Uploader(putter, "reports-bucket", "/ingestion/")

	keys, err := uploader.Upload(context.Background(), batch.BatchID, artifacts)
	require.NoError(t, err)
	require.Len(t, keys, len(artifacts))
	assert.Equal(t, "ingestion/20260314-150926-abcd1234/report-20260314-150926-abcd1234.json", keys[0])
	assert.Equal(t, "application/json", putter.types[0])
	assert.Equal(t, "text/csv", putter.types[2])
	assert.Contains(t, putter.bodies[1], "DRY RUN INGESTION REPORT")
}

func TestS3Uploader_Errors(t *testing.T) {
	uploader := NewS3Uploader(&mockPutter{err: errors.New("access denied")}, "b", "")

	path := filepath.Join(t.TempDir(), "report-x.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	keys, err := uploader.Upload(context.Background(), "x", []Artifact{{Kind: KindJSON, Path: path}})
	assert.Error(t, err)
	assert.Empty(t, keys)

	_, err = NewS3Uploader(&mockPutter{}, "b", "").Upload(context.Background(), "x",
		[]Artifact{{Kind: KindJSON, Path: filepath.Join(t.TempDir(), "missing.json")}})
	assert.Error(t, err)
}
