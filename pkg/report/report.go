// Package report defines the validation finding and result model shared by
// every validation stage: structural, cross-field, template and semantic.
package report

import "fmt"

// Severity classifies a finding. Warnings never make a document invalid.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError is a single finding at a location in the document tree.
// Path uses bracketed indices and dotted keys (e.g. "trigger[0].platform").
// SchemaPath, when set, points at the descriptor field that produced the
// finding (e.g. "ha.automation/trigger").
type ValidationError struct {
	Path       string   `json:"path"`
	Message    string   `json:"message"`
	Severity   Severity `json:"severity"`
	SchemaPath string   `json:"schema_path,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Path, e.Message)
}

// Errorf builds an error-severity finding at path.
func Errorf(path, format string, args ...any) ValidationError {
	return ValidationError{Path: path, Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

// Warnf builds a warning-severity finding at path.
func Warnf(path, format string, args ...any) ValidationError {
	return ValidationError{Path: path, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

// Result aggregates the findings of one validation pass over one document.
// Valid is true exactly when Errors is empty; warnings do not affect it.
type Result struct {
	Valid      bool              `json:"valid"`
	Errors     []ValidationError `json:"errors"`
	Warnings   []ValidationError `json:"warnings"`
	SchemaName string            `json:"schema_name"`
}

// NewResult splits findings by severity, preserving their order, and
// computes Valid. Errors and Warnings are always non-nil so JSON output
// renders [] rather than null.
func NewResult(schemaName string, findings []ValidationError) *Result {
	r := &Result{
		Errors:     make([]ValidationError, 0, len(findings)),
		Warnings:   make([]ValidationError, 0),
		SchemaName: schemaName,
	}
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			r.Warnings = append(r.Warnings, f)
		} else {
			r.Errors = append(r.Errors, f)
		}
	}
	r.Valid = len(r.Errors) == 0
	return r
}

// Merge appends the findings of other into r and recomputes Valid.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Valid = len(r.Errors) == 0
}

// Findings returns errors followed by warnings, for display.
func (r *Result) Findings() []ValidationError {
	out := make([]ValidationError, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	return out
}
