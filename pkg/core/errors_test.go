package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExecutionError_Error(t *testing.T) {
	err := &ExecutionError{
		Category: ErrCategoryNotFound,
		Code:     "test_error",
		Message:  "test message",
	}

	if got := err.Error(); got != "test message" {
		t.Errorf("Error() = %q, want %q", got, "test message")
	}
}

func TestExecutionError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ExecutionError{
		Category: ErrCategoryProvider,
		Code:     "test_error",
		Message:  "test message",
		Cause:    cause,
	}

	got := err.Error()
	if !strings.Contains(got, "test message") {
		t.Errorf("Error() = %q, should contain 'test message'", got)
	}
	if !strings.Contains(got, "underlying error") {
		t.Errorf("Error() = %q, should contain 'underlying error'", got)
	}
}

func TestExecutionError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ExecutionError{
		Message: "wrapper",
		Cause:   cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
}

func TestExecutionError_WithCause(t *testing.T) {
	original := ErrElementNotFound
	cause := errors.New("custom cause")

	newErr := original.WithCause(cause)

	if newErr.Cause != cause {
		t.Error("WithCause() did not set cause")
	}
	if newErr.Code != original.Code {
		t.Error("WithCause() changed code")
	}
	if original.Cause != nil {
		t.Error("WithCause() modified original error")
	}
}

func TestExecutionError_WithMessage(t *testing.T) {
	original := ErrWaitTimeout
	newErr := original.WithMessage("custom timeout message")

	if newErr.Message != "custom timeout message" {
		t.Errorf("Message = %q, want 'custom timeout message'", newErr.Message)
	}
	if newErr.Code != original.Code {
		t.Error("WithMessage() changed code")
	}
	if original.Message == "custom timeout message" {
		t.Error("WithMessage() modified original error")
	}
}

func TestExecutionError_WithDetails(t *testing.T) {
	original := &ExecutionError{
		Code:    "test",
		Message: "test",
		Details: map[string]interface{}{"existing": "value"},
	}

	newErr := original.WithDetails(map[string]interface{}{
		"selector": `By[text="OK"]`,
		"timeout":  5000,
	})

	if newErr.Details["selector"] != `By[text="OK"]` {
		t.Error("WithDetails() did not add new details")
	}
	if newErr.Details["existing"] != "value" {
		t.Error("WithDetails() did not preserve existing details")
	}
	if _, ok := original.Details["selector"]; ok {
		t.Error("WithDetails() modified original error")
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err      *ExecutionError
		category ErrorCategory
		code     string
	}{
		{ErrElementNotFound, ErrCategoryNotFound, "element_not_found"},
		{ErrWaitTimeout, ErrCategoryTimeout, "wait_timeout"},
		{ErrIdleTimeout, ErrCategoryTimeout, "idle_timeout"},
		{ErrWatcherContext, ErrCategoryIllegalState, "watcher_context"},
		{ErrNotInitialized, ErrCategoryIllegalState, "not_initialized"},
		{ErrNoActionExecutor, ErrCategoryIllegalState, "no_action_executor"},
		{ErrProviderUnavailable, ErrCategoryProvider, "provider_unavailable"},
		{ErrInvalidConfig, ErrCategoryConfig, "invalid_config"},
		{ErrInvalidSelector, ErrCategorySelector, "invalid_selector"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("Category = %s, want %s", tt.err.Category, tt.category)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestNewExecutionError(t *testing.T) {
	err := NewExecutionError(ErrCategoryProvider, "custom_error", "custom message")

	if err.Category != ErrCategoryProvider {
		t.Errorf("Category = %s, want %s", err.Category, ErrCategoryProvider)
	}
	if err.Code != "custom_error" {
		t.Errorf("Code = %s, want 'custom_error'", err.Code)
	}
	if err.Message != "custom message" {
		t.Errorf("Message = %s, want 'custom message'", err.Message)
	}
}

func TestExecutionError_ErrorsIs(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrWaitTimeout.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the cause")
	}
}

func TestExecutionError_IsMatchesDerivedCopies(t *testing.T) {
	err := fmt.Errorf("row lookup: %w", ErrElementNotFound.WithMessage(`for text= "Row9"`))

	if !errors.Is(err, ErrElementNotFound) {
		t.Error("errors.Is() should match a derived copy by code")
	}
	if errors.Is(err, ErrWaitTimeout) {
		t.Error("errors.Is() should not match a different code")
	}

	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatal("errors.As() should find the ExecutionError")
	}
	if execErr.Category != ErrCategoryNotFound {
		t.Errorf("Category = %s, want %s", execErr.Category, ErrCategoryNotFound)
	}
}
