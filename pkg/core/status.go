package core

// ErrorCategory classifies the type of error for callers that branch on failure kind
type ErrorCategory int

const (
	ErrCategoryNone         ErrorCategory = iota // No error
	ErrCategoryNotFound                          // Element or row absent from the visible tree
	ErrCategoryTimeout                           // Wait did not resolve in time
	ErrCategoryIllegalState                      // Watcher mutation in context, uninitialized session
	ErrCategoryProvider                          // Tree provider or event source failed
	ErrCategoryConfig                            // Invalid configuration
	ErrCategorySelector                          // Selector could not be built or decoded
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryNotFound:
		return "not_found"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryIllegalState:
		return "illegal_state"
	case ErrCategoryProvider:
		return "provider"
	case ErrCategoryConfig:
		return "config"
	case ErrCategorySelector:
		return "selector"
	default:
		return "unknown"
	}
}

// IsRecoverable returns true if retrying later may succeed (element may appear, wait may resolve)
func (c ErrorCategory) IsRecoverable() bool {
	return c == ErrCategoryNotFound || c == ErrCategoryTimeout
}
