package services

import (
	"errors"
	"fmt"
	"strings"

	"chanvault/internal/store"
)

var (
	ErrRateLimited   = errors.New("rate limited")
	ErrPrecondition  = errors.New("precondition not met")
	ErrDuplicate     = errors.New("duplicate content")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("access forbidden")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrTransient     = errors.New("transient failure")
	ErrUnavailable   = errors.New("source unavailable")
)

// Wrap builds an error message that includes task context while tagging it
// with the provided marker for later status classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, task, operation, message string, err error) error {
	detail := buildDetail(task, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a task error to the transfer status the worker should
// persist after the attempt fails. Duplicates and forbidden channels are not
// retryable; rate limits and source outages keep the item queued for a later
// attempt.
func FailureStatus(err error) store.Status {
	switch {
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrForbidden):
		return store.StatusFailedPermanent
	case errors.Is(err, ErrRateLimited), errors.Is(err, ErrUnavailable):
		return store.StatusQueued
	default:
		return store.StatusFailed
	}
}

// Retryable reports whether the failure should consume a retry attempt.
// Precondition failures (for example a missing category) park the item
// without burning its retry budget; rate limits and source outages are
// waited out rather than counted.
func Retryable(err error) bool {
	switch {
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrForbidden),
		errors.Is(err, ErrPrecondition), errors.Is(err, ErrRateLimited),
		errors.Is(err, ErrUnavailable):
		return false
	default:
		return true
	}
}

func buildDetail(task, operation, message string) string {
	parts := make([]string, 0, 3)
	if task = strings.TrimSpace(task); task != "" {
		parts = append(parts, task)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
