package errors

import (
	stderrors "errors"
	"testing"
)

func TestDocsError(t *testing.T) {
	underlying := stderrors.New("corpus file missing")
	err := NewDocsError("load", underlying).WithEntry("ta.sma")

	if err.Entry != "ta.sma" {
		t.Errorf("Expected entry ta.sma, got %s", err.Entry)
	}
	if !stderrors.Is(err, underlying) {
		t.Error("Expected errors.Is to find underlying error")
	}
	msg := err.Error()
	if msg != "docs load failed for ta.sma: corpus file missing" {
		t.Errorf("Unexpected message: %s", msg)
	}
}

func TestConfigError(t *testing.T) {
	underlying := stderrors.New("out of range")
	err := NewConfigError("max_file_size", "-1", underlying)

	if !stderrors.Is(err, underlying) {
		t.Error("Expected errors.Is to find underlying error")
	}
	if err.Error() != "config error for field max_file_size (value -1): out of range" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestFileErrorPermission(t *testing.T) {
	err := NewFileError("read", "/tmp/x.pine", stderrors.New("permission denied"))
	if err.Type != ErrorTypePermission {
		t.Errorf("Expected permission error type, got %s", err.Type)
	}

	err = NewFileError("read", "/tmp/x.pine", stderrors.New("no such file"))
	if err.Type != ErrorTypeFileNotFound {
		t.Errorf("Expected file_not_found type, got %s", err.Type)
	}
}

func TestMultiError(t *testing.T) {
	t.Run("filters nils", func(t *testing.T) {
		err := NewMultiError([]error{nil, stderrors.New("a"), nil})
		if len(err.Errors) != 1 {
			t.Errorf("Expected 1 error after filtering, got %d", len(err.Errors))
		}
		if err.Error() != "a" {
			t.Errorf("Single error should render bare, got %s", err.Error())
		}
	})

	t.Run("empty", func(t *testing.T) {
		err := NewMultiError(nil)
		if err.Error() != "no errors" {
			t.Errorf("Unexpected message: %s", err.Error())
		}
	})

	t.Run("multiple", func(t *testing.T) {
		err := NewMultiError([]error{stderrors.New("a"), stderrors.New("b")})
		if len(err.Unwrap()) != 2 {
			t.Errorf("Expected 2 unwrapped errors")
		}
	})
}
