package repository

import (
	"errors"
	"strings"
)

// Sentinel errors returned by the repositories. Handlers map these onto
// HTTP status codes, so services pass them through unchanged.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrInvalidInput   = errors.New("invalid input")
)

// isDuplicateKeyError reports whether err is a unique constraint violation.
// Matched by message because gorm wraps the driver error differently for
// the postgres and sqlite dialects.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "23505") // PostgreSQL unique violation code
}
