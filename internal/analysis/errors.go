package analysis

import (
	"errors"
	"fmt"

	"github.com/feedbacklens/backend/internal/oracle"
	"github.com/feedbacklens/backend/internal/storage/models"
	"github.com/feedbacklens/backend/internal/translation"
)

var (
	ErrInvalidDepth  = errors.New("invalid analysis depth")
	ErrBatchTooLarge = errors.New("batch exceeds the maximum number of items")
)

// SchemaError reports the first missing or invalid field in an oracle reply.
// It is not retried: a structurally wrong reply is not a transient glitch.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("oracle reply schema violation: field %q %s", e.Field, e.Reason)
}

// Error kinds exposed to API callers for UI branching.
const (
	KindValueError   = "value_error"
	KindGeneralError = "general_error"
)

// ErrorKind classifies an error as a caller-input problem or a service-side
// problem.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, oracle.ErrEmptyInput),
		errors.Is(err, translation.ErrEmptyInput),
		errors.Is(err, models.ErrNotFound),
		errors.Is(err, ErrInvalidDepth),
		errors.Is(err, ErrBatchTooLarge):
		return KindValueError
	default:
		return KindGeneralError
	}
}
