package types

import (
	"encoding/json"
	"testing"
)

func TestSeverityValid(t *testing.T) {
	valid := []Severity{SeverityError, SeverityWarning, SeveritySuggestion}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("Expected %q to be valid", s)
		}
	}
	if Severity("fatal").Valid() {
		t.Error("Expected 'fatal' to be invalid")
	}
	if Severity("").Valid() {
		t.Error("Expected empty severity to be invalid")
	}
}

func TestParamBagLookup(t *testing.T) {
	bag := ParamBag{
		Positional: []Value{
			{Raw: `"Test"`},
			{Raw: `"TST"`},
		},
		Named: map[string]Value{
			"overlay": {Raw: "true"},
		},
	}

	t.Run("named wins over positional", func(t *testing.T) {
		v, ok := bag.Lookup("overlay", 2)
		if !ok {
			t.Fatal("Expected lookup to succeed")
		}
		if v.Raw != "true" {
			t.Errorf("Expected raw 'true', got %q", v.Raw)
		}
	})

	t.Run("positional fallback", func(t *testing.T) {
		v, ok := bag.Lookup("shorttitle", 1)
		if !ok {
			t.Fatal("Expected lookup to succeed")
		}
		if v.Raw != `"TST"` {
			t.Errorf("Expected shorttitle slot, got %q", v.Raw)
		}
	})

	t.Run("absent parameter", func(t *testing.T) {
		if _, ok := bag.Lookup("precision", 5); ok {
			t.Error("Expected lookup to fail for absent parameter")
		}
	})

	t.Run("no positional form", func(t *testing.T) {
		if _, ok := bag.Lookup("force_overlay", -1); ok {
			t.Error("Expected lookup to fail with index -1 and no named arg")
		}
	})
}

func TestParamBagFlatten(t *testing.T) {
	bag := ParamBag{
		Positional: []Value{{Raw: "close"}, {Raw: "14"}},
		Named:      map[string]Value{"title": {Raw: `"SMA"`}},
	}
	flat := bag.Flatten()

	if flat["_0"] != "close" || flat["_1"] != "14" {
		t.Errorf("Positional keys wrong: %v", flat)
	}
	if flat["title"] != `"SMA"` {
		t.Errorf("Named key wrong: %v", flat)
	}
	if len(flat) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(flat))
	}
}

func TestQualifiedName(t *testing.T) {
	tests := []struct {
		name      string
		call      FunctionCall
		qualified string
	}{
		{"namespaced", FunctionCall{Name: "sma", Namespace: "ta"}, "ta.sma"},
		{"bare", FunctionCall{Name: "plot"}, "plot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.call.QualifiedName(); got != tt.qualified {
				t.Errorf("QualifiedName() = %q, want %q", got, tt.qualified)
			}
		})
	}
}

func TestSplitQualifiedName(t *testing.T) {
	ns, name := SplitQualifiedName("ta.sma")
	if ns != "ta" || name != "sma" {
		t.Errorf("Got (%q, %q), want (ta, sma)", ns, name)
	}

	ns, name = SplitQualifiedName("plot")
	if ns != "" || name != "plot" {
		t.Errorf("Got (%q, %q), want (, plot)", ns, name)
	}
}

func TestViolationJSONShape(t *testing.T) {
	v := Violation{
		Rule:     RuleShortTitleTooLong,
		Severity: SeverityError,
		Category: "style_guide",
		Message:  "shorttitle too long",
		Line:     1,
		Column:   18,
		Metadata: ViolationMetadata{ActualLength: 12, MaxLength: 10, ActualValue: "VERYLONGNAME"},
	}

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	meta, ok := decoded["metadata"].(map[string]any)
	if !ok {
		t.Fatal("Expected metadata object")
	}
	if meta["actualLength"] != float64(12) || meta["maxLength"] != float64(10) {
		t.Errorf("Metadata keys wrong: %v", meta)
	}
	if _, present := meta["functionName"]; present {
		t.Error("Empty metadata fields should be omitted")
	}
}
