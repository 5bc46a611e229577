// Package docs loads the embedded Pine Script language reference and
// style-guide corpus into an immutable in-memory index. The index is built
// once at process startup and shared read-only by every validator and by
// the documentation tools; nothing mutates it after Load returns.
package docs

import (
	"encoding/json"
	"sort"
	"strings"

	"embed"

	pserrors "github.com/iamrichardD/mcp-server-pinescript/internal/errors"
)

//go:embed data/*.json
var corpus embed.FS

// Parameter is one documented parameter of a built-in function.
type Parameter struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Entry is one language reference entry. Deprecated entries carry the
// modern Replacement name instead of a signature.
type Entry struct {
	Name        string      `json:"name"`
	Namespace   string      `json:"namespace"`
	Signature   string      `json:"signature,omitempty"`
	Returns     string      `json:"returns,omitempty"`
	Description string      `json:"description,omitempty"`
	Parameters  []Parameter `json:"parameters,omitempty"`
	Deprecated  bool        `json:"deprecated,omitempty"`
	Replacement string      `json:"replacement,omitempty"`
}

// QualifiedName returns "namespace.name" or the bare name.
func (e *Entry) QualifiedName() string {
	if e.Namespace != "" {
		return e.Namespace + "." + e.Name
	}
	return e.Name
}

// StyleRule is one style-guide rule description surfaced by the
// documentation tools alongside violations.
type StyleRule struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// Index is the loaded corpus. All maps are populated once in Load and
// read-only afterwards, so concurrent readers need no locking.
type Index struct {
	entries    []*Entry
	byName     map[string]*Entry
	deprecated map[string]string // legacy unqualified name -> modern form
	paramNames map[string]struct{}
	styleRules []StyleRule
	byRuleID   map[string]StyleRule
	search     *searchIndex
}

// Load parses the embedded corpus. A corpus that fails to parse is a
// startup failure, not a per-request condition.
func Load() (*Index, error) {
	raw, err := corpus.ReadFile("data/functions.json")
	if err != nil {
		return nil, pserrors.NewDocsError("load", err)
	}
	var entries []*Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, pserrors.NewDocsError("parse", err).WithEntry("functions.json")
	}

	raw, err = corpus.ReadFile("data/style_rules.json")
	if err != nil {
		return nil, pserrors.NewDocsError("load", err)
	}
	var rules []StyleRule
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, pserrors.NewDocsError("parse", err).WithEntry("style_rules.json")
	}

	ix := &Index{
		entries:    entries,
		byName:     make(map[string]*Entry, len(entries)),
		deprecated: make(map[string]string),
		paramNames: make(map[string]struct{}),
		styleRules: rules,
		byRuleID:   make(map[string]StyleRule, len(rules)),
	}
	for _, e := range entries {
		ix.byName[e.QualifiedName()] = e
		if e.Deprecated && e.Namespace == "" && e.Replacement != "" {
			ix.deprecated[e.Name] = e.Replacement
		}
		for _, p := range e.Parameters {
			ix.paramNames[p.Name] = struct{}{}
		}
	}
	for _, r := range rules {
		ix.byRuleID[r.ID] = r
	}
	ix.search = buildSearchIndex(entries)
	return ix, nil
}

// Lookup resolves an entry by exact qualified name.
func (ix *Index) Lookup(qualifiedName string) (*Entry, bool) {
	e, ok := ix.byName[qualifiedName]
	return e, ok
}

// Namespace returns every non-deprecated entry in the given namespace,
// sorted by name.
func (ix *Index) Namespace(namespace string) []*Entry {
	var out []*Entry
	for _, e := range ix.entries {
		if e.Namespace == namespace && !e.Deprecated {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DeprecatedMapping returns the legacy-name -> modern-form table consulted
// by the deprecated-function rule. The returned map is shared; callers
// must not mutate it.
func (ix *Index) DeprecatedMapping() map[string]string {
	return ix.deprecated
}

// StyleRules returns all style-guide rules.
func (ix *Index) StyleRules() []StyleRule {
	return ix.styleRules
}

// StyleRule resolves one style rule by its stable identifier.
func (ix *Index) StyleRule(id string) (StyleRule, bool) {
	r, ok := ix.byRuleID[id]
	return r, ok
}

// DocumentedParams returns the set of documented parameter names across
// all entries, used by the naming-convention rule to distinguish valid
// built-in spellings from convention violations. The returned map is
// shared; callers must not mutate it.
func (ix *Index) DocumentedParams() map[string]struct{} {
	return ix.paramNames
}

// ParamIndex returns the positional slot of the named parameter in the
// entry's documented order, or -1 when the entry or parameter is unknown.
// This is how "the second positional argument of strategy() is
// conventionally shorttitle" resolves.
func (ix *Index) ParamIndex(qualifiedName, paramName string) int {
	e, ok := ix.byName[qualifiedName]
	if !ok {
		return -1
	}
	for i, p := range e.Parameters {
		if p.Name == paramName {
			return i
		}
	}
	return -1
}

// EntryCount returns the number of loaded reference entries.
func (ix *Index) EntryCount() int {
	return len(ix.entries)
}

// All returns every entry; the slice is shared and must not be mutated.
func (ix *Index) All() []*Entry {
	return ix.entries
}

// normalizeQuery lowercases and trims a lookup string.
func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
