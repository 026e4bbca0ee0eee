// Package cli renders ingestion results for the terminal.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/infrastructure/report"
	"github.com/charmbracelet/lipgloss"
)

// MaxIssuesShown is how many problem records the console lists
const MaxIssuesShown = 10

var (
	accentColor  = lipgloss.Color("#4ECDC4")
	successColor = lipgloss.Color("#2ECC71")
	warningColor = lipgloss.Color("#FFE66D")
	errorColor   = lipgloss.Color("#FF6B6B")
	subtleColor  = lipgloss.Color("#666666")
)

const (
	successIcon = "✓"
	errorIcon   = "✗"
	warningIcon = "⚠"
	bulletIcon  = "•"
)

// Console writes styled output. Colors follow the writer's terminal
// capabilities, so piped output is plain text.
type Console struct {
	w io.Writer

	rule    lipgloss.Style
	title   lipgloss.Style
	bold    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	subtle  lipgloss.Style
}

// NewConsole creates a console writing to w
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:       w,
		rule:    r.NewStyle().Foreground(accentColor),
		title:   r.NewStyle().Bold(true),
		bold:    r.NewStyle().Bold(true),
		success: r.NewStyle().Foreground(successColor),
		warning: r.NewStyle().Foreground(warningColor),
		failure: r.NewStyle().Foreground(errorColor),
		subtle:  r.NewStyle().Foreground(subtleColor),
	}
}

// PrintSummary writes batch counts with percentages and what happens next
func (c *Console) PrintSummary(batch *domain.BatchReport) {
	wide := c.rule.Render(strings.Repeat("=", 60))
	narrow := c.rule.Render(strings.Repeat("-", 60))
	stats := batch.Statistics

	c.println("")
	c.println(wide)
	c.println(c.title.Render("  INGESTION SUMMARY"))
	c.println(wide)
	c.println("")
	c.printf("  Batch ID:  %s\n", batch.BatchID)
	c.printf("  Mode:      %s\n", batch.Mode)
	c.printf("  Source:    %s\n", orNA(batch.SourceFile))
	c.println("")
	c.println(narrow)
	c.println("")

	c.printf("  Total Records:    %s\n", c.bold.Render(fmt.Sprint(stats.Total)))
	c.printf("  Ready to Commit:  %s (%.1f%%)\n", c.success.Render(fmt.Sprint(stats.Ready)), percent(stats.Ready, stats.Total))
	c.printf("  Needs Review:     %s (%.1f%%)\n", c.warning.Render(fmt.Sprint(stats.NeedsReview)), percent(stats.NeedsReview, stats.Total))
	c.printf("  Invalid:          %s (%.1f%%)\n", c.failure.Render(fmt.Sprint(stats.Invalid)), percent(stats.Invalid, stats.Total))
	c.printf("  Duplicates:       %d\n", stats.Duplicate)
	c.println("")

	if stats.NeedsReview > 0 && batch.Mode == domain.ModeDryRun {
		c.println(c.warning.Render("  " + warningIcon + " Review items flagged before committing"))
	}
	if stats.Invalid > 0 {
		c.println(c.failure.Render("  " + errorIcon + " Invalid items will be skipped"))
	}
	if stats.Ready > 0 && batch.Mode == domain.ModeDryRun {
		c.println(c.success.Render(fmt.Sprintf("  %s %d items ready for commit", successIcon, stats.Ready)))
	}
	if len(batch.CommittedIDs) > 0 {
		c.println(c.success.Render(fmt.Sprintf("  %s %d parts committed", successIcon, len(batch.CommittedIDs))))
	}

	c.println("")
	c.println(wide)
	c.println("")
}

// PrintIssues lists the first MaxIssuesShown records that need review or are
// invalid, with their error and warning messages.
func (c *Console) PrintIssues(batch *domain.BatchReport) {
	issues := batch.RecordsWithStatus(domain.StatusNeedsReview, domain.StatusInvalid)
	if len(issues) == 0 {
		return
	}

	c.println("")
	c.println(c.warning.Render("VALIDATION ISSUES:"))
	c.println("")

	for i, r := range issues {
		if i == MaxIssuesShown {
			break
		}
		marker := c.warning.Render(bulletIcon)
		if r.Status == domain.StatusInvalid {
			marker = c.failure.Render(bulletIcon)
		}
		c.printf("  %s %s\n", marker, orDefault(r.NormalizedData.Name.Normalized, "Unknown"))

		for _, issue := range r.Validation.Issues {
			switch issue.Severity {
			case domain.SeverityError:
				c.printf("      %s %s\n", c.failure.Render("ERROR:"), issue.Message)
			case domain.SeverityWarning:
				c.printf("      %s %s\n", c.warning.Render("WARN:"), issue.Message)
			}
		}
		if len(r.ReviewReasons) > 0 {
			c.printf("      %s\n", c.subtle.Render("reasons: "+strings.Join(r.ReviewReasons, ", ")))
		}
	}

	if remaining := len(issues) - MaxIssuesShown; remaining > 0 {
		c.printf("\n  ... and %d more items with issues\n", remaining)
	}
	c.println("")
}

// PrintArtifacts lists written report files and any uploaded object keys
func (c *Console) PrintArtifacts(artifacts []report.Artifact, uploaded []string) {
	if len(artifacts) == 0 {
		return
	}
	c.println(c.title.Render("Reports:"))
	for _, a := range artifacts {
		c.printf("  %s %-13s %s\n", c.success.Render(successIcon), a.Kind, a.Path)
	}
	for _, key := range uploaded {
		c.printf("  %s %s\n", c.subtle.Render("uploaded"), key)
	}
	c.println("")
}

// PrintError writes a failure line
func (c *Console) PrintError(err error) {
	c.println(c.failure.Render(errorIcon + " " + err.Error()))
}

func (c *Console) println(s string) {
	_, _ = fmt.Fprintln(c.w, s)
}

func (c *Console) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.w, format, args...)
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
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
