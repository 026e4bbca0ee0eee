package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
)

const (
	wideRule   = "================================================================================"
	narrowRule = "--------------------------------------------------------------------------------"

	readySampleSize   = 10
	committedIDsShown = 50
	topValuesPerField = 5
	specsPerReadyItem = 5
)

// Kind names a generated report
type Kind string

const (
	KindJSON          Kind = "json"
	KindDryRun        Kind = "dry-run"
	KindNeedsReview   Kind = "needs-review"
	KindAnalysis      Kind = "analysis"
	KindCommitSummary Kind = "commit"
)

// Artifact is one written report file
type Artifact struct {
	Kind Kind   `json:"kind"`
	Path string `json:"path"`
}

// Writer renders batch reports into an output directory
type Writer struct {
	outputDir string
}

// NewWriter creates a writer for dir, creating it if needed
func NewWriter(dir string) (*Writer, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "output"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &Writer{outputDir: dir}, nil
}

// OutputDir returns the directory reports are written to
func (w *Writer) OutputDir() string {
	return w.outputDir
}

// Generate writes every report that applies to batch: the JSON report and the
// extraction analysis always, the dry-run report in dry-run mode, the review
// CSV when anything needs review or is invalid, and the commit summary after
// a commit.
func (w *Writer) Generate(batch *domain.BatchReport) ([]Artifact, error) {
	type step struct {
		kind  Kind
		apply bool
		write func(*domain.BatchReport) (string, error)
	}
	steps := []step{
		{KindJSON, true, w.WriteJSON},
		{KindDryRun, batch.Mode == domain.ModeDryRun, w.WriteDryRun},
		{KindNeedsReview, batch.Statistics.NeedsReview > 0 || batch.Statistics.Invalid > 0, w.WriteNeedsReview},
		{KindAnalysis, true, w.WriteAnalysis},
		{KindCommitSummary, batch.Mode == domain.ModeCommit, w.WriteCommitSummary},
	}

	var artifacts []Artifact
	for _, s := range steps {
		if !s.apply {
			continue
		}
		path, err := s.write(batch)
		if err != nil {
			return artifacts, fmt.Errorf("failed to write %s report: %w", s.kind, err)
		}
		artifacts = append(artifacts, Artifact{Kind: s.kind, Path: path})
	}
	return artifacts, nil
}

// WriteJSON writes the full batch as indented JSON
func (w *Writer) WriteJSON(batch *domain.BatchReport) (string, error) {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode batch: %w", err)
	}
	return w.write(fmt.Sprintf("report-%s.json", batch.BatchID), data)
}

// WriteDryRun writes the human-readable preview of what a commit would do
func (w *Writer) WriteDryRun(batch *domain.BatchReport) (string, error) {
	var b lines
	b.add(wideRule, "DRY RUN INGESTION REPORT", wideRule, "")
	b.add(
		"Batch ID:    "+batch.BatchID,
		"Timestamp:   "+formatTime(batch.Timestamp),
		"Source:      "+orNA(batch.SourceFile),
		"Mode:        "+string(batch.Mode),
		"",
	)
	b.section("SUMMARY")
	stats := batch.Statistics
	b.addf("Total Records:    %d", stats.Total)
	b.addf("Ready to Commit:  %d", stats.Ready)
	b.addf("Needs Review:     %d", stats.NeedsReview)
	b.addf("Invalid:          %d", stats.Invalid)
	b.addf("Duplicates:       %d", stats.Duplicate)
	b.add("")

	categories := newCounter()
	brands := newCounter()
	for _, r := range batch.Records {
		categories.inc(orDefault(r.NormalizedData.Category.Slug, "uncategorized"))
		brands.inc(orDefault(r.NormalizedData.Brand.Canonical, "Unknown"))
	}

	b.section("BY CATEGORY")
	for _, e := range categories.sorted() {
		b.addf("  %s: %d", e.key, e.count)
	}
	b.add("")
	b.section("BY BRAND")
	for _, e := range brands.sorted() {
		b.addf("  %s: %d", e.key, e.count)
	}

	if stats.NeedsReview > 0 {
		b.add("")
		b.section("ITEMS NEEDING REVIEW")
		for _, r := range batch.RecordsWithStatus(domain.StatusNeedsReview) {
			reasons := "Unknown reason"
			if len(r.ReviewReasons) > 0 {
				reasons = strings.Join(r.ReviewReasons, ", ")
			}
			b.add("  "+rowPrefix(r)+orDefault(r.NormalizedData.Name.Normalized, "Unknown"), "    Reasons: "+reasons, "")
		}
	}

	if stats.Invalid > 0 {
		b.section("INVALID ITEMS")
		for _, r := range batch.RecordsWithStatus(domain.StatusInvalid) {
			b.add("  " + rowPrefix(r) + originalName(r))
			for _, issue := range r.Validation.Errors() {
				b.add("    - " + issue.Message)
			}
			b.add("")
		}
	}

	ready := batch.RecordsWithStatus(domain.StatusReady)
	if len(ready) > 0 {
		b.section(fmt.Sprintf("READY TO COMMIT (showing first %d of %d)", min(readySampleSize, len(ready)), len(ready)))
		for i, r := range ready {
			if i == readySampleSize {
				break
			}
			b.add("  * " + orDefault(r.NormalizedData.Name.Normalized, "Unknown"))
			b.addf("    Brand: %s | Category: %s",
				orDefault(r.NormalizedData.Brand.Canonical, "Unknown"),
				orDefault(r.NormalizedData.Category.Slug, "Unknown"))
			if specs := specSummary(r.ExtractedSpecs); specs != "" {
				b.add("    Specs: " + specs)
			}
			b.add("")
		}
	}

	b.add(wideRule, "END OF REPORT", wideRule)
	return w.write(fmt.Sprintf("dry-run-%s.txt", batch.BatchID), b.bytes())
}

// WriteNeedsReview writes one CSV row per record that needs review or is invalid
func (w *Writer) WriteNeedsReview(batch *domain.BatchReport) (string, error) {
	var buf strings.Builder
	cw := csv.NewWriter(&buf)
	_ = cw.Write([]string{"row", "name", "brand", "category", "status", "reasons", "suggested_fixes"})

	for _, r := range batch.RecordsWithStatus(domain.StatusNeedsReview, domain.StatusInvalid) {
		row := ""
		if r.RowNumber > 0 {
			row = fmt.Sprint(r.RowNumber)
		}
		_ = cw.Write([]string{
			row,
			r.NormalizedData.Name.Normalized,
			r.NormalizedData.Brand.Canonical,
			r.NormalizedData.Category.Slug,
			string(r.Status),
			strings.Join(r.ReviewReasons, "; "),
			strings.Join(r.Validation.Suggestions(), "; "),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to encode review csv: %w", err)
	}
	return w.write(fmt.Sprintf("needs-review-%s.csv", batch.BatchID), []byte(buf.String()))
}

// WriteAnalysis summarizes what the extraction engine found across the batch
func (w *Writer) WriteAnalysis(batch *domain.BatchReport) (string, error) {
	a := Analyze(batch)

	var b lines
	b.add(wideRule, "EXTRACTION ANALYSIS REPORT", wideRule, "")
	b.add("Batch ID: "+batch.BatchID)
	b.addf("Total Records Analyzed: %d", batch.Statistics.Total)
	b.add("")
	b.section("EXTRACTION CONFIDENCE")
	b.addf("High Confidence (>=90%%):     %d", a.HighConfidence)
	b.addf("Medium Confidence (70-89%%):  %d", a.MediumConfidence)
	b.addf("Low Confidence (<70%%):       %d", a.LowConfidence)
	b.add("")
	b.section("FIELDS EXTRACTED (by frequency)")
	for _, f := range a.Fields {
		pct := 0.0
		if batch.Statistics.Total > 0 {
			pct = float64(f.Count) / float64(batch.Statistics.Total) * 100
		}
		b.addf("  %s: %d (%.1f%%)", f.Field, f.Count, pct)
	}

	if len(a.EngineFamilies) > 0 {
		b.add("")
		b.section("ENGINE FAMILIES DETECTED")
		for _, e := range a.EngineFamilies {
			b.addf("  %s: %d", e.Value, e.Count)
		}
	}

	b.add("")
	b.section("TOP VALUES BY FIELD")
	for _, f := range a.TopValues {
		b.add("  " + f.Field + ":")
		for _, v := range f.Values {
			b.addf("    %s: %d", v.Value, v.Count)
		}
		b.add("")
	}

	b.add(wideRule, "END OF ANALYSIS", wideRule)
	return w.write(fmt.Sprintf("analysis-%s.txt", batch.BatchID), b.bytes())
}

// WriteCommitSummary lists what a commit stored and skipped
func (w *Writer) WriteCommitSummary(batch *domain.BatchReport) (string, error) {
	var b lines
	b.add(wideRule, "COMMIT SUMMARY REPORT", wideRule, "")
	b.add(
		"Batch ID:    "+batch.BatchID,
		"Timestamp:   "+formatTime(batch.Timestamp),
		"Source:      "+orNA(batch.SourceFile),
		"",
	)
	b.section("RESULTS")
	b.addf("Successfully Committed: %d", len(batch.CommittedIDs))
	b.addf("Skipped (Invalid):      %d", batch.Statistics.Invalid)
	b.addf("Skipped (Duplicate):    %d", batch.Statistics.Duplicate)
	b.addf("Flagged for Review:     %d", batch.Statistics.NeedsReview)
	b.add("")

	if len(batch.CommittedIDs) > 0 {
		b.section("COMMITTED PART IDs")
		for i, id := range batch.CommittedIDs {
			if i == committedIDsShown {
				b.addf("  ... and %d more", len(batch.CommittedIDs)-committedIDsShown)
				break
			}
			b.add("  " + id)
		}
	}

	b.add("", wideRule, "END OF COMMIT SUMMARY", wideRule)
	return w.write(fmt.Sprintf("commit-%s.txt", batch.BatchID), b.bytes())
}

func (w *Writer) write(name string, data []byte) (string, error) {
	path := filepath.Join(w.outputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// lines accumulates report text
type lines struct {
	out []string
}

func (l *lines) add(s ...string) {
	l.out = append(l.out, s...)
}

func (l *lines) addf(format string, args ...interface{}) {
	l.out = append(l.out, fmt.Sprintf(format, args...))
}

func (l *lines) section(title string) {
	l.add(narrowRule, title, narrowRule, "")
}

func (l *lines) bytes() []byte {
	return []byte(strings.Join(l.out, "\n"))
}

// counter counts keys and sorts them by count, ties in first-seen order
type counter struct {
	order  []string
	counts map[string]int
}

type counted struct {
	key   string
	count int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) inc(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) sorted() []counted {
	out := make([]counted, len(c.order))
	for i, k := range c.order {
		out[i] = counted{key: k, count: c.counts[k]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	return out
}

func specSummary(report *domain.ExtractionReport) string {
	if report == nil || report.Metadata.Len() == 0 {
		return ""
	}
	var parts []string
	for i, k := range report.Metadata.Keys() {
		if i == specsPerReadyItem {
			break
		}
		v, _ := report.Metadata.Get(k)
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, ", ")
}

func originalName(r domain.IngestionRecord) string {
	if v, ok := r.OriginalData["name"]; ok && v != nil {
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			return s
		}
	}
	return orDefault(r.NormalizedData.Name.Original, "Unknown")
}

func rowPrefix(r domain.IngestionRecord) string {
	if r.RowNumber > 0 {
		return fmt.Sprintf("Row %d: ", r.RowNumber)
	}
	return ""
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func orNA(s string) string {
	return orDefault(s, "N/A")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
