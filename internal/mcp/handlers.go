package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/iamrichardD/mcp-server-pinescript/internal/docs"
	"github.com/iamrichardD/mcp-server-pinescript/internal/parser"
	"github.com/iamrichardD/mcp-server-pinescript/internal/rules"
	"github.com/iamrichardD/mcp-server-pinescript/internal/scanner"
	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
	"github.com/iamrichardD/mcp-server-pinescript/internal/validation"
	"github.com/iamrichardD/mcp-server-pinescript/internal/version"
)

// InfoParams selects which tool to describe.
type InfoParams struct {
	Tool string `json:"tool,omitempty"`
}

// ReferenceParams drives documentation lookups.
type ReferenceParams struct {
	Query      string `json:"query,omitempty"`
	Namespace  string `json:"namespace,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

// ReviewParams drives script reviews. Exactly one of Code and Path must
// be set.
type ReviewParams struct {
	Code           string `json:"code,omitempty"`
	Path           string `json:"path,omitempty"`
	SeverityFilter string `json:"severity_filter,omitempty"`
	Format         string `json:"format,omitempty"`
	Page           int    `json:"page,omitempty"`
	PageSize       int    `json:"page_size,omitempty"`
}

// SyntaxCheckParams carries the source for a parse-only check.
type SyntaxCheckParams struct {
	Code string `json:"code"`
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("info", func() (*mcp.CallToolResult, error) {
		var p InfoParams
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
				return nil, fmt.Errorf("invalid parameters: %w", err)
			}
		}

		if p.Tool != "" {
			help, ok := toolHelp[p.Tool]
			if !ok {
				return nil, fmt.Errorf("unknown tool %q", p.Tool)
			}
			return createJSONResponse(map[string]interface{}{
				"tool": p.Tool,
				"help": help,
			})
		}

		return createJSONResponse(map[string]interface{}{
			"name":         "pinescript-mcp-server",
			"version":      version.Info(),
			"build":        version.BuildID(),
			"pine_version": version.PineVersion,
			"tools":        []string{"info", "pinescript_reference", "pinescript_review", "syntax_check"},
			"corpus_size":  s.vctx.Docs().EntryCount(),
		})
	})
}

var toolHelp = map[string]string{
	"info":                 "Returns server version and tool listing. Pass tool=<name> for per-tool help.",
	"pinescript_reference": "Search the language reference. Use query for a name or free text, namespace to list a whole namespace, max_results to bound output.",
	"pinescript_review":    "Validate Pine Script. Pass code for inline source, or path for a file or directory. severity_filter narrows the listed violations; format=text renders a human-readable report; page/page_size page long violation lists.",
	"syntax_check":         "Parse-only check. Returns parse errors and scan metrics without style rules.",
}

// referenceEntry is one documentation hit in a reference response.
type referenceEntry struct {
	Name        string           `json:"name"`
	Signature   string           `json:"signature,omitempty"`
	Returns     string           `json:"returns,omitempty"`
	Description string           `json:"description,omitempty"`
	Parameters  []docs.Parameter `json:"parameters,omitempty"`
	Score       int              `json:"score,omitempty"`
}

func (s *Server) handleReference(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("pinescript_reference", func() (*mcp.CallToolResult, error) {
		var p ReferenceParams
		if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}
		if p.Query == "" && p.Namespace == "" {
			return nil, errors.New("either query or namespace is required")
		}

		ix := s.vctx.Docs()
		limit := p.MaxResults
		if limit <= 0 {
			limit = s.cfg.Docs.SearchLimit
		}

		if p.Namespace != "" {
			entries := ix.Namespace(p.Namespace)
			out := make([]referenceEntry, 0, len(entries))
			for _, e := range entries {
				out = append(out, toReferenceEntry(e, 0))
			}
			return createJSONResponse(map[string]interface{}{
				"namespace": p.Namespace,
				"count":     len(out),
				"results":   out,
			})
		}

		results := ix.Search(p.Query, limit)
		out := make([]referenceEntry, 0, len(results))
		for _, r := range results {
			out = append(out, toReferenceEntry(r.Entry, r.Score))
		}

		response := map[string]interface{}{
			"query":   p.Query,
			"count":   len(out),
			"results": out,
		}
		if len(out) == 0 {
			if suggestion, ok := ix.Suggest(p.Query); ok {
				response["suggestion"] = suggestion
			}
		}
		return createJSONResponse(response)
	})
}

func toReferenceEntry(e *docs.Entry, score int) referenceEntry {
	return referenceEntry{
		Name:        e.QualifiedName(),
		Signature:   e.Signature,
		Returns:     e.Returns,
		Description: e.Description,
		Parameters:  e.Parameters,
		Score:       score,
	}
}

// reviewResponse is the inline-code review payload.
type reviewResponse struct {
	Success     bool               `json:"success"`
	Summary     types.Summary      `json:"summary"`
	Metrics     types.Metrics      `json:"metrics"`
	ParseErrors []types.ParseError `json:"parse_errors,omitempty"`
	PageResult
}

// directoryReviewResponse is the multi-file review payload.
type directoryReviewResponse struct {
	Success bool                    `json:"success"`
	Path    string                  `json:"path"`
	Files   []validation.FileReview `json:"files"`
	Summary types.Summary           `json:"summary"`
}

func (s *Server) handleReview(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("pinescript_review", func() (*mcp.CallToolResult, error) {
		var p ReviewParams
		if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}
		if (p.Code == "") == (p.Path == "") {
			return nil, errors.New("exactly one of code and path is required")
		}
		filter := types.Severity(p.SeverityFilter)
		if p.SeverityFilter != "" && p.SeverityFilter != "all" && !filter.Valid() {
			return nil, fmt.Errorf("invalid severity_filter %q", p.SeverityFilter)
		}
		if p.SeverityFilter == "all" {
			filter = ""
		}

		if p.Code != "" {
			result := s.vctx.Validate(p.Code, filter)
			page := s.paginator.Page(result.Violations, p.Page, p.PageSize)

			if p.Format == "text" {
				return createTextResponse(formatReviewText("", result, page))
			}
			return createJSONResponse(reviewResponse{
				Success:     true,
				Summary:     result.Summary,
				Metrics:     result.Metrics,
				ParseErrors: result.ParseErrors,
				PageResult:  page,
			})
		}

		sc := scanner.New(s.cfg.Include, s.cfg.Exclude,
			s.cfg.Review.MaxFileSize, s.cfg.Review.MaxFileCount)
		files, err := sc.Scan(p.Path)
		if err != nil {
			return nil, err
		}
		reviews, err := s.vctx.ReviewFiles(ctx, sc, files, s.cfg.Review.ParallelWorkers, filter)
		if err != nil {
			return nil, err
		}

		if p.Format == "text" {
			return createTextResponse(formatDirectoryText(p.Path, reviews))
		}
		return createJSONResponse(directoryReviewResponse{
			Success: true,
			Path:    p.Path,
			Files:   reviews,
			Summary: validation.CombineSummaries(reviews),
		})
	})
}

func (s *Server) handleSyntaxCheck(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("syntax_check", func() (*mcp.CallToolResult, error) {
		var p SyntaxCheckParams
		if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}
		if p.Code == "" {
			return nil, errors.New("code is required")
		}

		in := rules.NewInput(p.Code)
		return createJSONResponse(map[string]interface{}{
			"success":      true,
			"valid":        len(in.Errors) == 0,
			"parse_errors": in.Errors,
			"statements":   parser.CallStatements(in.Lines),
			"metrics": types.Metrics{
				FunctionsFound: len(in.Calls),
				TokensScanned:  len(in.Tokens),
				LinesScanned:   len(in.Lines),
			},
		})
	})
}
