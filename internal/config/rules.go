package config

import (
	_ "embed"

	"github.com/pelletier/go-toml/v2"

	pserrors "github.com/iamrichardD/mcp-server-pinescript/internal/errors"
	"github.com/iamrichardD/mcp-server-pinescript/internal/version"
)

//go:embed rules.toml
var rulesTOML []byte

// StringLengthRule bounds the length of one string parameter of the
// listed functions. PositionalIndex is the zero-based slot the parameter
// occupies when passed positionally, -1 when it has no positional form.
type StringLengthRule struct {
	Rule            string   `toml:"rule"`
	Parameter       string   `toml:"parameter"`
	PositionalIndex int      `toml:"positional_index"`
	MaxLength       int      `toml:"max_length"`
	Functions       []string `toml:"functions"`
}

// NumericRangeRule bounds one numeric parameter of the listed functions.
type NumericRangeRule struct {
	Rule        string   `toml:"rule"`
	Parameter   string   `toml:"parameter"`
	Min         float64  `toml:"min"`
	Max         float64  `toml:"max"`
	IntegerOnly bool     `toml:"integer_only"`
	Functions   []string `toml:"functions"`
}

// DeprecatedParameter names a parameter superseded in the current
// language version, with its replacement.
type DeprecatedParameter struct {
	Name        string   `toml:"name"`
	Replacement string   `toml:"replacement"`
	Functions   []string `toml:"functions"`
}

type namingSection struct {
	Exceptions []string `toml:"exceptions"`
}

// Rules is the decoded rule parameter set. It is loaded once from the
// embedded table and treated as immutable afterwards.
type Rules struct {
	StringLength          []StringLengthRule    `toml:"string_length"`
	NumericRange          []NumericRangeRule    `toml:"numeric_range"`
	NamespaceRequirements map[string]string     `toml:"namespace_requirements"`
	BuiltinNamespaces     []string              `toml:"builtin_namespaces"`
	DeprecatedParameters  []DeprecatedParameter `toml:"deprecated_parameters"`
	Naming                namingSection         `toml:"naming"`

	builtinSet map[string]struct{}
	namingSet  map[string]struct{}
}

// LoadRules decodes the embedded rule table.
func LoadRules() (*Rules, error) {
	var r Rules
	if err := toml.Unmarshal(rulesTOML, &r); err != nil {
		return nil, pserrors.NewConfigError("rules", "", err)
	}

	r.builtinSet = make(map[string]struct{}, len(r.BuiltinNamespaces))
	for _, name := range r.BuiltinNamespaces {
		r.builtinSet[name] = struct{}{}
	}
	r.namingSet = make(map[string]struct{}, len(r.Naming.Exceptions))
	for _, name := range r.Naming.Exceptions {
		r.namingSet[name] = struct{}{}
	}
	return &r, nil
}

// CurrentVersion returns the language version the linter targets. The
// value comes from version.PineVersion so rule parameters and reported
// build info cannot drift apart.
func (r *Rules) CurrentVersion() int {
	return version.PineVersion
}

// IsBuiltinNamespace reports whether name is a reserved namespace
// identifier.
func (r *Rules) IsBuiltinNamespace(name string) bool {
	_, ok := r.builtinSet[name]
	return ok
}

// RequiredNamespace returns the namespace a bare call to fn must use, or
// "" when none applies.
func (r *Rules) RequiredNamespace(fn string) string {
	return r.NamespaceRequirements[fn]
}

// IsNamingException reports whether a parameter spelling is a documented
// built-in exception to the snake_case convention.
func (r *Rules) IsNamingException(param string) bool {
	_, ok := r.namingSet[param]
	return ok
}

// appliesTo reports whether fn matches the rule's function list. An
// empty list matches every function.
func appliesTo(functions []string, fn string) bool {
	if len(functions) == 0 {
		return true
	}
	for _, f := range functions {
		if f == fn {
			return true
		}
	}
	return false
}

// StringLengthRulesFor returns the string-length rules applying to the
// given qualified function name.
func (r *Rules) StringLengthRulesFor(fn string) []StringLengthRule {
	var out []StringLengthRule
	for _, sr := range r.StringLength {
		if appliesTo(sr.Functions, fn) {
			out = append(out, sr)
		}
	}
	return out
}

// NumericRangeRulesFor returns the numeric-range rules applying to the
// given qualified function name.
func (r *Rules) NumericRangeRulesFor(fn string) []NumericRangeRule {
	var out []NumericRangeRule
	for _, nr := range r.NumericRange {
		if appliesTo(nr.Functions, fn) {
			out = append(out, nr)
		}
	}
	return out
}

// DeprecatedParametersFor returns deprecated parameter entries applying
// to the given qualified function name.
func (r *Rules) DeprecatedParametersFor(fn string) []DeprecatedParameter {
	var out []DeprecatedParameter
	for _, dp := range r.DeprecatedParameters {
		if appliesTo(dp.Functions, fn) {
			out = append(out, dp)
		}
	}
	return out
}
