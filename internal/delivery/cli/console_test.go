package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/infrastructure/report"
	"github.com/stretchr/testify/assert"
)

func issueRecord(name string, status domain.Status, issues ...domain.ValidationIssue) domain.IngestionRecord {
	return domain.IngestionRecord{
		NormalizedData: domain.NormalizedData{Name: domain.NameResult{Normalized: name}},
		Validation:     domain.ValidationResult{Issues: issues},
		Status:         status,
	}
}

func batchOf(mode domain.Mode, records ...domain.IngestionRecord) *domain.BatchReport {
	b := &domain.BatchReport{BatchID: "20260314-150926-abcd1234", Mode: mode, Records: records}
	for _, r := range records {
		b.Statistics.Count(r.Status)
	}
	return b
}

func TestConsole_PrintSummary(t *testing.T) {
	batch := batchOf(domain.ModeDryRun,
		issueRecord("A", domain.StatusReady),
		issueRecord("B", domain.StatusReady),
		issueRecord("C", domain.StatusNeedsReview),
		issueRecord("D", domain.StatusInvalid),
	)

	var buf bytes.Buffer
	NewConsole(&buf).PrintSummary(batch)
	out := buf.String()

	assert.Contains(t, out, "INGESTION SUMMARY")
	assert.Contains(t, out, "Batch ID:  20260314-150926-abcd1234")
	assert.Contains(t, out, "Source:    N/A")
	assert.Contains(t, out, "(50.0%)")
	assert.Contains(t, out, "(25.0%)")
	assert.Contains(t, out, "Review items flagged before committing")
	assert.Contains(t, out, "Invalid items will be skipped")
	assert.Contains(t, out, "2 items ready for commit")
}

func TestConsole_PrintSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf).PrintSummary(batchOf(domain.ModeReportOnly))

	assert.Contains(t, buf.String(), "(0.0%)")
	assert.NotContains(t, buf.String(), "ready for commit")
}

func TestConsole_PrintIssues(t *testing.T) {
	t.Run("lists errors and warnings", func(t *testing.T) {
		batch := batchOf(domain.ModeDryRun,
			issueRecord("Piston", domain.StatusInvalid,
				domain.ValidationIssue{Message: "Required field 'bore_mm' is missing", Severity: domain.SeverityError},
				domain.ValidationIssue{Message: "uncommon value", Severity: domain.SeverityInfo},
			),
			issueRecord("Chain", domain.StatusNeedsReview,
				domain.ValidationIssue{Message: "links above maximum", Severity: domain.SeverityWarning},
			),
			issueRecord("Clutch", domain.StatusReady),
		)

		var buf bytes.Buffer
		NewConsole(&buf).PrintIssues(batch)
		out := buf.String()

		assert.Contains(t, out, "VALIDATION ISSUES:")
		assert.Contains(t, out, "Piston")
		assert.Contains(t, out, "ERROR: Required field 'bore_mm' is missing")
		assert.Contains(t, out, "WARN: links above maximum")
		assert.NotContains(t, out, "uncommon value")
		assert.NotContains(t, out, "Clutch")
	})

	t.Run("truncates after ten records", func(t *testing.T) {
		var records []domain.IngestionRecord
		for i := 0; i < 13; i++ {
			records = append(records, issueRecord(fmt.Sprintf("Part %02d", i), domain.StatusNeedsReview))
		}

		var buf bytes.Buffer
		NewConsole(&buf).PrintIssues(batchOf(domain.ModeDryRun, records...))
		out := buf.String()

		assert.Contains(t, out, "Part 09")
		assert.NotContains(t, out, "Part 10")
		assert.Contains(t, out, "... and 3 more items with issues")
	})

	t.Run("prints nothing for a clean batch", func(t *testing.T) {
		var buf bytes.Buffer
		NewConsole(&buf).PrintIssues(batchOf(domain.ModeDryRun, issueRecord("A", domain.StatusReady)))
		assert.Empty(t, buf.String())
	})
}

func TestConsole_PrintArtifacts(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.PrintArtifacts([]report.Artifact{{Kind: report.KindJSON, Path: "output/report-x.json"}}, []string{"ingestion/x/report-x.json"})
	c.PrintError(errors.New("catalog unavailable"))

	out := buf.String()
	assert.Contains(t, out, "output/report-x.json")
	assert.Contains(t, out, "uploaded")
	assert.Contains(t, out, "catalog unavailable")
}

func TestProgress_Update(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 100, "Processing")

	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p.Update(n, 100)
		}(i)
	}
	wg.Wait()

	p.Update(50, 100)
	assert.Equal(t, 100, p.Done())

	p.Finish()
	assert.True(t, strings.Contains(buf.String(), "100/100"))
}
