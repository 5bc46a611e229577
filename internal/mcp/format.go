package mcp

import (
	"fmt"
	"strings"

	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
	"github.com/iamrichardD/mcp-server-pinescript/internal/validation"
)

// formatReviewText renders one review as a plain-text report.
func formatReviewText(path string, result *validation.Result, page PageResult) string {
	var b strings.Builder
	if path != "" {
		fmt.Fprintf(&b, "%s:\n", path)
	}

	if len(page.Violations) == 0 && len(result.ParseErrors) == 0 {
		b.WriteString("no issues found\n")
		return b.String()
	}

	for _, v := range page.Violations {
		fmt.Fprintf(&b, "%d:%d  %-10s %s  %s\n", v.Line, v.Column, v.Severity, v.Rule, v.Message)
		if v.SuggestedFix != "" {
			fmt.Fprintf(&b, "          fix: %s\n", v.SuggestedFix)
		}
	}
	for _, e := range result.ParseErrors {
		fmt.Fprintf(&b, "%d:%d  %-10s %s\n", e.Line, e.Column, "parse", e.Message)
	}

	s := result.Summary
	fmt.Fprintf(&b, "\n%d issues (%d errors, %d warnings, %d suggestions)\n",
		s.TotalIssues, s.Errors, s.Warnings, s.Suggestions)
	if page.HasMore {
		fmt.Fprintf(&b, "showing page %d of violations, more available\n", page.Page)
	}
	return b.String()
}

// formatDirectoryText renders a multi-file review as a plain-text report.
func formatDirectoryText(root string, reviews []validation.FileReview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "review of %s (%d files)\n\n", root, len(reviews))

	for _, r := range reviews {
		if r.Error != "" {
			fmt.Fprintf(&b, "%s: error: %s\n", r.Path, r.Error)
			continue
		}
		if r.Result.Summary.TotalIssues == 0 && len(r.Result.ParseErrors) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", r.Path)
		for _, v := range r.Result.Violations {
			fmt.Fprintf(&b, "  %d:%d  %-10s %s  %s\n", v.Line, v.Column, v.Severity, v.Rule, v.Message)
		}
		for _, e := range r.Result.ParseErrors {
			fmt.Fprintf(&b, "  %d:%d  %-10s %s\n", e.Line, e.Column, "parse", e.Message)
		}
	}

	total := validation.CombineSummaries(reviews)
	fmt.Fprintf(&b, "\n%s\n", summaryLine(total))
	return b.String()
}

func summaryLine(s types.Summary) string {
	return fmt.Sprintf("%d issues (%d errors, %d warnings, %d suggestions)",
		s.TotalIssues, s.Errors, s.Warnings, s.Suggestions)
}
