package validation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/iamrichardD/mcp-server-pinescript/internal/scanner"
	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

// FileReview is the validation outcome for one file in a directory
// review. Error holds a read failure message; Result is nil in that case
// and the review continues with the remaining files.
type FileReview struct {
	Path   string  `json:"file_path"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// ReviewFiles validates every collected file, workers at a time. Output
// order matches input order regardless of completion order. The context
// cancels outstanding work; partial results are discarded on
// cancellation.
func (c *Context) ReviewFiles(ctx context.Context, sc *scanner.Scanner, files []scanner.File, workers int, filter types.Severity) ([]FileReview, error) {
	if workers < 1 {
		workers = 1
	}

	out := make([]FileReview, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			source, err := sc.Read(f)
			if err != nil {
				out[i] = FileReview{Path: f.RelPath, Error: err.Error()}
				return nil
			}
			out[i] = FileReview{Path: f.RelPath, Result: c.Validate(source, filter)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CombineSummaries totals the per-file summaries of a directory review.
func CombineSummaries(reviews []FileReview) types.Summary {
	var total types.Summary
	for _, r := range reviews {
		if r.Result == nil {
			continue
		}
		s := r.Result.Summary
		total.TotalIssues += s.TotalIssues
		total.Errors += s.Errors
		total.Warnings += s.Warnings
		total.Suggestions += s.Suggestions
		total.FilteredCount += s.FilteredCount
		total.SeverityFilter = s.SeverityFilter
	}
	return total
}
