package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamrichardD/mcp-server-pinescript/internal/docs"
	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
)

func loadIndex(t *testing.T) *docs.Index {
	t.Helper()
	ix, err := docs.Load()
	require.NoError(t, err)
	return ix
}

func TestGetExpectedSignature(t *testing.T) {
	ix := loadIndex(t)

	exp, ok := GetExpectedSignature(ix, "ta.sma")
	require.True(t, ok)
	assert.Equal(t, 2, len(exp.Parameters))
	assert.Equal(t, 2, exp.Required)

	// Unknown and deprecated entries are skipped, never flagged.
	_, ok = GetExpectedSignature(ix, "my.custom.fn")
	assert.False(t, ok)
	_, ok = GetExpectedSignature(ix, "sma")
	assert.False(t, ok)
}

func TestValidateParameterCount(t *testing.T) {
	exp := Expected{
		Name: "ta.sma",
		Parameters: []docs.Parameter{
			{Name: "source", Type: "series float", Required: true},
			{Name: "length", Type: "int", Required: true},
		},
		Required: 2,
	}

	_, ok := ValidateParameterCount(exp, 2)
	assert.True(t, ok)

	m, ok := ValidateParameterCount(exp, 3)
	require.False(t, ok)
	assert.Equal(t, ReasonTooManyParameters, m.Reason)
	assert.Equal(t, 2, m.Expected)
	assert.Equal(t, 3, m.Actual)

	m, ok = ValidateParameterCount(exp, 1)
	require.False(t, ok)
	assert.Equal(t, ReasonMissingRequired, m.Reason)
	assert.Equal(t, 2, m.Expected)
	assert.Equal(t, 1, m.Actual)
}

func TestTypeCompatible(t *testing.T) {
	tests := []struct {
		declared string
		actual   types.TypeTag
		want     bool
	}{
		{"series float", types.TypeSeriesFloat, true},
		{"series float", types.TypeInt, true},
		{"series float", types.TypeFloat, true},
		{"series float", types.TypeString, false},
		{"series int", types.TypeInt, true},
		{"series int", types.TypeFloat, false},
		{"int", types.TypeInt, true},
		{"int", types.TypeFloat, false},
		{"float", types.TypeInt, true},
		{"int/float", types.TypeInt, true},
		{"int/float", types.TypeFloat, true},
		{"int/float", types.TypeString, false},
		{"string", types.TypeString, true},
		{"string", types.TypeInt, false},
		{"bool", types.TypeBool, true},
		{"bool", types.TypeString, false},
		{"color", types.TypeColor, true},
		{"color", types.TypeInt, false},
		// Unknown inferences and unlisted declared types never flag.
		{"string", types.TypeUnknown, true},
		{"series float", types.TypeFunctionResult, true},
		{"matrix<float>", types.TypeString, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, typeCompatible(tt.declared, tt.actual),
			"%s vs %s", tt.declared, tt.actual)
	}
}

func TestQuickValidateTooManyParameters(t *testing.T) {
	ix := loadIndex(t)

	violations := QuickValidateFunctionSignatures(ix, `ta.sma(close, 20, 3)`)
	require.Len(t, violations, 1)

	v := violations[0]
	assert.Equal(t, types.RuleSignatureValidation, v.Rule)
	assert.Equal(t, types.SeverityError, v.Severity)
	assert.Equal(t, ReasonTooManyParameters, v.Metadata.Reason)
	assert.Equal(t, 2, v.Metadata.Expected)
	assert.Equal(t, 3, v.Metadata.Actual)
	assert.Equal(t, "ta.sma", v.Metadata.FunctionName)
	assert.Equal(t, 1, v.Line)
}

func TestQuickValidateMissingRequired(t *testing.T) {
	ix := loadIndex(t)

	violations := QuickValidateFunctionSignatures(ix, `ta.sma(close)`)
	require.Len(t, violations, 1)
	assert.Equal(t, ReasonMissingRequired, violations[0].Metadata.Reason)
}

func TestQuickValidateTypeMismatch(t *testing.T) {
	ix := loadIndex(t)

	violations := QuickValidateFunctionSignatures(ix, `ta.sma(close, "20")`)
	require.Len(t, violations, 1)

	v := violations[0]
	assert.Equal(t, ReasonParameterTypeClash, v.Metadata.Reason)
	assert.Equal(t, "length", v.Metadata.ParameterName)
	assert.Equal(t, "int", v.Metadata.ExpectedType)
	assert.Equal(t, "string", v.Metadata.ActualType)
}

func TestQuickValidateNamedArguments(t *testing.T) {
	ix := loadIndex(t)

	violations := QuickValidateFunctionSignatures(ix, `ta.sma(source = close, length = 20)`)
	assert.Empty(t, violations)
}

func TestQuickValidateValidScript(t *testing.T) {
	ix := loadIndex(t)

	src := `indicator("My Script", "MS")
plot(ta.sma(close, 20))
`
	violations := QuickValidateFunctionSignatures(ix, src)
	assert.Empty(t, violations)
}

func TestQuickValidateUnknownFunctionsSkipped(t *testing.T) {
	ix := loadIndex(t)

	violations := QuickValidateFunctionSignatures(ix, `myHelper(1, 2, 3, 4, 5)`)
	assert.Empty(t, violations)
}

func TestNestedCallReturnType(t *testing.T) {
	ix := loadIndex(t)

	// ta.highest returns series float, valid as plot's series argument
	// and as ta.sma's source argument.
	violations := QuickValidateFunctionSignatures(ix, `plot(ta.sma(ta.highest(high, 10), 20))`)
	assert.Empty(t, violations)
}
