package service

import (
	"errors"
	"fmt"
	"strings"
)

// Common service errors
var (
	ErrPersistenceFailed = errors.New("no generated question could be persisted")
	errNoContent         = errors.New("no content chunks available")
)

// Issue captures a single problem with caller-supplied input
type Issue struct {
	Field   string
	Message string
}

// ValidationError reports malformed caller input. It is never retried.
type ValidationError struct {
	Issues []Issue
}

func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (collector *issueCollector) add(field, message string) {
	collector.issues = append(collector.issues, Issue{Field: field, Message: message})
}

func (collector *issueCollector) result() error {
	if len(collector.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: collector.issues}
}
