package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tanjirantu/mcp-mongodb/internal/database"
)

// Error codes for MCP tool and resource responses.
const (
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeNotInitialized = "NOT_INITIALIZED"
	ErrCodeDatabaseError  = "DATABASE_ERROR"
	ErrCodeTimeout        = "TIMEOUT"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapDatabaseError converts an error from the database layer to a coded
// error. Upstream driver errors keep their original message.
func WrapDatabaseError(err error) error {
	if err == nil {
		return nil
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded
	}

	var nf *database.CollectionNotFoundError
	switch {
	case errors.Is(err, database.ErrNotInitialized):
		coded = &CodedError{Code: ErrCodeNotInitialized, Message: err.Error(), Cause: err}
	case errors.As(err, &nf):
		coded = &CodedError{Code: ErrCodeNotFound, Message: nf.Error(), Cause: err}
	case errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err):
		coded = &CodedError{Code: ErrCodeTimeout, Message: "request timed out", Cause: err}
	default:
		coded = &CodedError{Code: ErrCodeDatabaseError, Message: err.Error(), Cause: err}
	}

	slog.Warn("database error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)

	return coded
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}

// ErrInvalidInputf creates an invalid input error from a format string.
func ErrInvalidInputf(format string, args ...any) error {
	return ErrInvalidInput(fmt.Sprintf(format, args...))
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	var coded *CodedError
	return errors.As(err, &coded) && coded.Code == code
}
