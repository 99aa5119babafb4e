package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// Category partitions provider failures into the classes that drive
// fallback selection: quota failures switch callers to the keyword
// heuristics, temporary failures are retried, permanent failures are
// surfaced immediately.
type Category string

// Error categories.
const (
	CategoryQuota     Category = "quota"
	CategoryTemporary Category = "temporary"
	CategoryPermanent Category = "permanent"
)

// Error wraps a provider error with its category.
type Error struct {
	Category Category
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("llm %s error: %v", e.Category, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Classify assigns a category to a provider error. Already-classified
// errors pass through unchanged; nil classifies to nil.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return &Error{Category: CategoryQuota, Err: err}
		case apiErr.Code >= 500:
			return &Error{Category: CategoryTemporary, Err: err}
		case apiErr.Code >= 400:
			return &Error{Category: CategoryPermanent, Err: err}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Category: CategoryTemporary, Err: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource exhausted"):
		return &Error{Category: CategoryQuota, Err: err}
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline") || strings.Contains(msg, "unavailable") || strings.Contains(msg, "connection"):
		return &Error{Category: CategoryTemporary, Err: err}
	}

	// Unknown failures are treated as temporary so the bounded retry gets
	// a chance before the fallback runs.
	return &Error{Category: CategoryTemporary, Err: err}
}

// IsQuota reports whether err classifies as a quota/rate-limit failure.
func IsQuota(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err).Category == CategoryQuota
}

// Retryable reports whether err is worth retrying. Quota errors are
// not: the quota will not recover within a retry window.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err).Category == CategoryTemporary
}
