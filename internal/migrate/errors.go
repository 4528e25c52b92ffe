package migrate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks bad input: missing roots, overlaps, absent
	// directories.
	ErrValidation = errors.New("validation error")
	// ErrDatabase marks library database failures: locked, corrupt,
	// schema mismatch, failed statements.
	ErrDatabase = errors.New("database error")
	// ErrFilesystem marks metadata folder and collection file failures.
	ErrFilesystem = errors.New("filesystem error")
)

// Wrap tags an error with one of the sentinel kinds above and prefixes
// it with operation context. Every failure aborts the run; the kind
// only shapes the message the administrator sees.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrDatabase
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "migration failure"
	}
	return strings.Join(parts, ": ")
}
