package mcp

import (
	"encoding/json"

	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

// TokenEstimator approximates response token counts for pagination.
type TokenEstimator struct {
	// Rough approximation: 1 token is about 4 characters of English
	// text; JSON structure adds around 20% more.
	averageCharsPerToken float64
	jsonOverheadFactor   float64
}

// NewTokenEstimator creates a token estimator with default values.
func NewTokenEstimator() *TokenEstimator {
	return &TokenEstimator{
		averageCharsPerToken: 4.0,
		jsonOverheadFactor:   1.2,
	}
}

// EstimateTokens estimates the token count of a value's JSON rendering.
func (te *TokenEstimator) EstimateTokens(v interface{}) int {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return int(float64(len(jsonBytes)) / te.averageCharsPerToken * te.jsonOverheadFactor)
}

// PaginationConfig bounds page sizes and token budgets.
type PaginationConfig struct {
	DefaultMaxTokens int
	MinPageSize      int
	MaxPageSize      int
	MetadataTokens   int
}

// GetDefaultPaginationConfig returns the default pagination configuration.
func GetDefaultPaginationConfig() PaginationConfig {
	return PaginationConfig{
		DefaultMaxTokens: 8000,
		MinPageSize:      5,
		MaxPageSize:      500,
		MetadataTokens:   200,
	}
}

// PageResult is one page of violations plus navigation metadata.
type PageResult struct {
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Count      int               `json:"count"`
	TotalCount int               `json:"total_count"`
	HasMore    bool              `json:"has_more"`
	TokenCount int               `json:"token_count"`
	MaxTokens  int               `json:"max_tokens"`
	NextPage   *int              `json:"next_page,omitempty"`
	PrevPage   *int              `json:"prev_page,omitempty"`
	Violations []types.Violation `json:"violations"`
}

// ViolationPaginator pages violation lists under a token budget.
type ViolationPaginator struct {
	estimator *TokenEstimator
	config    PaginationConfig
}

// NewViolationPaginator creates a paginator with default configuration.
func NewViolationPaginator() *ViolationPaginator {
	return &ViolationPaginator{
		estimator: NewTokenEstimator(),
		config:    GetDefaultPaginationConfig(),
	}
}

// Page slices violations for the requested page. A pageSize of 0 picks a
// size that fits the token budget; oversized pages are truncated to fit,
// with HasMore signalling the cut.
func (vp *ViolationPaginator) Page(violations []types.Violation, page, pageSize int) PageResult {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = vp.fitPageSize(violations)
	}
	if pageSize > vp.config.MaxPageSize {
		pageSize = vp.config.MaxPageSize
	}

	start := page * pageSize
	if start > len(violations) {
		start = len(violations)
	}
	end := start + pageSize
	if end > len(violations) {
		end = len(violations)
	}

	pageViolations, tokenCount, truncated := vp.truncateByTokens(violations[start:end])
	hasMore := end < len(violations) || truncated

	result := PageResult{
		Page:       page,
		PageSize:   pageSize,
		Count:      len(pageViolations),
		TotalCount: len(violations),
		HasMore:    hasMore,
		TokenCount: tokenCount,
		MaxTokens:  vp.config.DefaultMaxTokens,
		Violations: pageViolations,
	}
	if hasMore {
		next := page + 1
		result.NextPage = &next
	}
	if page > 0 {
		prev := page - 1
		result.PrevPage = &prev
	}
	return result
}

// fitPageSize estimates how many violations fit the token budget.
func (vp *ViolationPaginator) fitPageSize(violations []types.Violation) int {
	if len(violations) == 0 {
		return vp.config.MinPageSize
	}
	perResult := vp.estimator.EstimateTokens(violations[0])
	if perResult <= 0 {
		perResult = 1
	}
	size := (vp.config.DefaultMaxTokens - vp.config.MetadataTokens) / perResult
	if size < vp.config.MinPageSize {
		size = vp.config.MinPageSize
	}
	if size > vp.config.MaxPageSize {
		size = vp.config.MaxPageSize
	}
	return size
}

// truncateByTokens keeps violations while they fit the budget. At least
// one violation is always returned so a response is never empty just
// because estimation ran hot.
func (vp *ViolationPaginator) truncateByTokens(violations []types.Violation) ([]types.Violation, int, bool) {
	tokenCount := vp.config.MetadataTokens
	out := make([]types.Violation, 0, len(violations))
	for i, v := range violations {
		t := vp.estimator.EstimateTokens(v)
		if i > 0 && tokenCount+t > vp.config.DefaultMaxTokens {
			return out, tokenCount, true
		}
		out = append(out, v)
		tokenCount += t
	}
	return out, tokenCount, false
}
