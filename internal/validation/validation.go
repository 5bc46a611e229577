// Package validation orchestrates the rule pipeline: one shared parse
// feeds every registered rule, violations aggregate into a stable order,
// and results cache by source hash. The Context is immutable after
// construction and safe for concurrent use.
package validation

import (
	"sort"
	"time"

	"github.com/iamrichardD/mcp-server-pinescript/internal/config"
	"github.com/iamrichardD/mcp-server-pinescript/internal/docs"
	"github.com/iamrichardD/mcp-server-pinescript/internal/rules"
	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

// Context holds the immutable lookup data and cache shared by all
// validations. Construct once at startup and pass explicitly.
type Context struct {
	env   *rules.Env
	rules []rules.Rule
	cache *resultCache
}

// NewContext loads the embedded reference corpus and rule table.
func NewContext(cfg config.Cache) (*Context, error) {
	ix, err := docs.Load()
	if err != nil {
		return nil, err
	}
	ruleCfg, err := config.LoadRules()
	if err != nil {
		return nil, err
	}
	var cache *resultCache
	if cfg.Enabled && cfg.MaxEntries > 0 {
		cache = newResultCache(cfg.MaxEntries)
	}
	return &Context{
		env:   &rules.Env{Rules: ruleCfg, Docs: ix},
		rules: rules.Registry(),
		cache: cache,
	}, nil
}

// Docs exposes the loaded reference index for the documentation tools.
func (c *Context) Docs() *docs.Index {
	return c.env.Docs
}

// Rules exposes the loaded rule table.
func (c *Context) Rules() *config.Rules {
	return c.env.Rules
}

// Result is the outcome of validating one script. Violations are the
// normal output, not errors; ParseErrors carry non-fatal parse problems.
type Result struct {
	Violations  []types.Violation  `json:"violations"`
	Summary     types.Summary      `json:"summary"`
	ParseErrors []types.ParseError `json:"parse_errors,omitempty"`
	Metrics     types.Metrics      `json:"metrics"`
}

// Validate runs every registered rule over source and aggregates. The
// filter keeps only matching severities in Violations while Summary
// still counts the full pre-filter set.
func (c *Context) Validate(source string, filter types.Severity) *Result {
	if c.cache != nil {
		if cached, ok := c.cache.get(source, filter); ok {
			out := *cached
			out.Metrics.CacheHit = true
			return &out
		}
	}

	start := time.Now()
	in := rules.NewInput(source)

	var all []types.Violation
	for _, r := range c.rules {
		all = append(all, runRule(r, c.env, in)...)
	}
	sortViolations(all)

	result := &Result{
		Violations:  all,
		ParseErrors: in.Errors,
		Metrics: types.Metrics{
			FunctionsFound: len(in.Calls),
			TokensScanned:  len(in.Tokens),
			LinesScanned:   len(in.Lines),
		},
	}
	result.Summary = summarize(all, filter)
	result.Violations = applyFilter(all, filter)
	result.Metrics.ValidationTimeMs = float64(time.Since(start).Microseconds()) / 1000.0

	if c.cache != nil {
		c.cache.put(source, filter, result)
	}
	return result
}

// runRule isolates one rule invocation. A rule that panics contributes
// nothing; the remaining rules still run.
func runRule(r rules.Rule, env *rules.Env, in *rules.Input) (out []types.Violation) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	return r.Check(env, in)
}

// sortViolations orders by line, then column, then rule identifier, so
// repeated runs of the same source render identically.
func sortViolations(vs []types.Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].Line != vs[j].Line {
			return vs[i].Line < vs[j].Line
		}
		if vs[i].Column != vs[j].Column {
			return vs[i].Column < vs[j].Column
		}
		return vs[i].Rule < vs[j].Rule
	})
}

// summarize counts the complete violation set; filtering never changes
// the totals, only which violations are listed.
func summarize(all []types.Violation, filter types.Severity) types.Summary {
	s := types.Summary{TotalIssues: len(all)}
	for _, v := range all {
		switch v.Severity {
		case types.SeverityError:
			s.Errors++
		case types.SeverityWarning:
			s.Warnings++
		case types.SeveritySuggestion:
			s.Suggestions++
		}
	}
	if filter != "" && filter.Valid() {
		s.SeverityFilter = filter
		for _, v := range all {
			if v.Severity == filter {
				s.FilteredCount++
			}
		}
	} else {
		s.FilteredCount = len(all)
	}
	return s
}

func applyFilter(all []types.Violation, filter types.Severity) []types.Violation {
	if filter == "" || !filter.Valid() {
		return all
	}
	out := make([]types.Violation, 0, len(all))
	for _, v := range all {
		if v.Severity == filter {
			out = append(out, v)
		}
	}
	return out
}

// ValidatePineScriptParameters is the umbrella entry point: full pipeline,
// no severity filter.
func (c *Context) ValidatePineScriptParameters(source string) *Result {
	return c.Validate(source, "")
}
