package domain

// Severity ranks a validation issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ValidationIssue is a single finding against a category schema
type ValidationIssue struct {
	Field        string      `json:"field"`
	Message      string      `json:"message"`
	Severity     Severity    `json:"severity"`
	CurrentValue interface{} `json:"current_value,omitempty"`
	Expected     string      `json:"expected,omitempty"`
	Suggestion   string      `json:"suggestion,omitempty"`
}

// ValidationResult is the outcome of validating one metadata map
type ValidationResult struct {
	IsValid           bool              `json:"is_valid"`
	NeedsReview       bool              `json:"needs_review"`
	Issues            []ValidationIssue `json:"issues"`
	ValidatedMetadata *Metadata         `json:"validated_metadata"`
}

// Errors returns the error-severity issues
func (r ValidationResult) Errors() []ValidationIssue {
	return r.bySeverity(SeverityError)
}

// Warnings returns the warning-severity issues
func (r ValidationResult) Warnings() []ValidationIssue {
	return r.bySeverity(SeverityWarning)
}

func (r ValidationResult) bySeverity(s Severity) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range r.Issues {
		if issue.Severity == s {
			out = append(out, issue)
		}
	}
	return out
}

// Suggestions returns every non-empty suggestion in issue order
func (r ValidationResult) Suggestions() []string {
	var out []string
	for _, issue := range r.Issues {
		if issue.Suggestion != "" {
			out = append(out, issue.Suggestion)
		}
	}
	return out
}
