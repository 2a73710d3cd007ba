package errors

import (
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeParseError, "syntax error at line 3")
		if err.Error() != "[PARSE_ERROR] syntax error at line 3" {
			t.Errorf("expected [PARSE_ERROR] syntax error at line 3, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		expected := "[INTERNAL_ERROR] internal failure: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeNotSupported, "no extractor registered")
		if !IsCode(err, CodeNotSupported) {
			t.Error("expected IsCode to return true for CodeNotSupported")
		}
		if IsCode(err, CodeParseError) {
			t.Error("expected IsCode to return false for CodeParseError")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInvariant, "signature without definition")
		if !IsCode(err, CodeInvariant) {
			t.Error("expected IsCode to return true for wrapped CodeInvariant")
		}
	})

	t.Run("Recoverable", func(t *testing.T) {
		if !Recoverable(New(CodeParseError, "bad source")) {
			t.Error("parse errors should be recoverable")
		}
		if !Recoverable(New(CodeNotSupported, "unknown language")) {
			t.Error("unsupported language should be recoverable")
		}
		if !Recoverable(New(CodeValidationError, "oversized input")) {
			t.Error("input validation failures should be recoverable")
		}
		if Recoverable(New(CodeInvariant, "broken table")) {
			t.Error("invariant violations are defects, not recoverable")
		}
		if Recoverable(New(CodeInternal, "extractor crashed")) {
			t.Error("internal errors are defects, not recoverable")
		}
	})
}
