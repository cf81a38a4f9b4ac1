package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeDependencyNotFound, "no direct use of dependency %s", "libfoo")

	if err.Code != ErrCodeDependencyNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeDependencyNotFound)
	}

	if err.Message != "no direct use of dependency libfoo" {
		t.Errorf("Message = %v, want %v", err.Message, "no direct use of dependency libfoo")
	}

	expected := "DEPENDENCY_NOT_FOUND: no direct use of dependency libfoo"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeNetwork, cause, "failed to fetch")

	if err.Code != ErrCodeNetwork {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNetwork)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeMalformedManifest, "test"),
			code:     ErrCodeMalformedManifest,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeMalformedManifest, "test"),
			code:     ErrCodeNetwork,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeLockResolution, New(ErrCodeNetwork, "inner"), "outer"),
			code:     ErrCodeLockResolution,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeCloneFailed, "x")); got != ErrCodeCloneFailed {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeCloneFailed)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeForkFailed, "could not fork repository")
	if got := UserMessage(err); got != "could not fork repository" {
		t.Errorf("UserMessage() = %v, want message without code", got)
	}

	plain := errors.New("plain error")
	if got := UserMessage(plain); got != "plain error" {
		t.Errorf("UserMessage() = %v, want %v", got, "plain error")
	}
}
