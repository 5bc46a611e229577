// Package types holds the shared value types that flow through the
// tokenize -> extract -> validate pipeline. Everything here is created
// fresh per validation request and never mutated after construction.
package types

import "fmt"

// SourceLocation pinpoints a span of source text. Line numbers are 1-based,
// columns and offsets are 0-based byte positions.
type SourceLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// String returns a compact line:column rendering for diagnostics.
func (l SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Severity classifies how serious a violation is.
type Severity string

const (
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// Valid reports whether s is one of the known severity levels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeveritySuggestion:
		return true
	}
	return false
}

// Rule identifiers. These are stable API surface: clients filter and group
// on them, so renaming one is a breaking change.
const (
	RuleShortTitleTooLong     = "SHORT_TITLE_TOO_LONG"
	RuleInvalidPrecision      = "INVALID_PRECISION"
	RuleInvalidMaxBarsBack    = "INVALID_MAX_BARS_BACK"
	RuleInvalidMaxLinesCount  = "INVALID_MAX_LINES_COUNT"
	RuleInvalidMaxLabelsCount = "INVALID_MAX_LABELS_COUNT"
	RuleInvalidMaxBoxesCount  = "INVALID_MAX_BOXES_COUNT"
	RuleDeprecatedFunction    = "DEPRECATED_FUNCTION"
	RuleOutdatedVersion       = "OUTDATED_VERSION_DIRECTIVE"
	RuleMissingNamespace      = "MISSING_NAMESPACE"
	RuleNamespaceConflict     = "BUILTIN_NAMESPACE_CONFLICT"
	RuleDeprecatedParamName   = "DEPRECATED_PARAMETER_NAME"
	RuleInvalidParamNaming    = "INVALID_PARAMETER_NAMING_CONVENTION"
	RuleSignatureValidation   = "FUNCTION_SIGNATURE_VALIDATION"
)

// ViolationMetadata carries the rule-specific details of a violation.
// Only the fields relevant to the emitting rule are populated; the JSON
// field names match the review response schema consumed by clients.
type ViolationMetadata struct {
	ActualValue   string `json:"actualValue,omitempty"`
	ActualLength  int    `json:"actualLength,omitempty"`
	MaxLength     int    `json:"maxLength,omitempty"`
	MinValue      string `json:"minValue,omitempty"`
	MaxValue      string `json:"maxValue,omitempty"`
	FunctionName  string `json:"functionName,omitempty"`
	ParameterName string `json:"parameterName,omitempty"`
	ExpectedType  string `json:"expectedType,omitempty"`
	ActualType    string `json:"actualType,omitempty"`
	Expected      int    `json:"expected,omitempty"`
	Actual        int    `json:"actual,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Replacement   string `json:"replacement,omitempty"`
	Convention    string `json:"convention,omitempty"`
	Namespace     string `json:"namespace,omitempty"`
	Version       int    `json:"version,omitempty"`
}

// Violation is a single reported rule failure. Violations are the intended
// output of a successful validation run, not errors: success=true with a
// non-empty violation list is the normal case for code that breaks rules.
type Violation struct {
	Rule         string            `json:"rule"`
	Severity     Severity          `json:"severity"`
	Category     string            `json:"category"`
	Message      string            `json:"message"`
	Line         int               `json:"line"`
	Column       int               `json:"column"`
	Metadata     ViolationMetadata `json:"metadata"`
	SuggestedFix string            `json:"suggested_fix,omitempty"`
}

// Summary holds derived severity counts for one validation run. It is
// recomputed on every run and never persisted.
type Summary struct {
	TotalIssues    int      `json:"total_issues"`
	Errors         int      `json:"errors"`
	Warnings       int      `json:"warnings"`
	Suggestions    int      `json:"suggestions"`
	FilteredCount  int      `json:"filtered_count"`
	SeverityFilter Severity `json:"severity_filter,omitempty"`
}

// ParseError is a non-fatal problem recorded while tokenizing or extracting.
// Parsing always completes; these accompany the partial result.
type ParseError struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Metrics records timing and volume figures for one pipeline run.
type Metrics struct {
	ValidationTimeMs float64 `json:"validationTimeMs"`
	FunctionsFound   int     `json:"functionsFound"`
	TokensScanned    int     `json:"tokensScanned"`
	LinesScanned     int     `json:"linesScanned"`
	CacheHit         bool    `json:"cacheHit,omitempty"`
}
