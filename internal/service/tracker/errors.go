package tracker

import (
	"errors"
	"fmt"

	"github.com/phrazzld/habit-api/internal/domain"
)

var (
	// ErrFutureDate is returned when a completion is toggled on a day after today.
	ErrFutureDate = fmt.Errorf("%w: date is in the future", domain.ErrValidation)

	// ErrEmptyStatsUpdate is returned when UpdateUserStats receives no fields.
	ErrEmptyStatsUpdate = fmt.Errorf("%w: no stats fields to update", domain.ErrValidation)

	// ErrSnapshotReload is returned, together with a partial result, when a
	// change was committed but the snapshot could not be read back.
	ErrSnapshotReload = errors.New("change committed but snapshot reload failed")
)

// ServiceError wraps unexpected failures with the operation that produced them.
// Expected conditions (validation, not found, duplicate) are returned as-is.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Message: message, Err: err}
}

// IsServiceError reports whether err is, or wraps, a ServiceError.
func IsServiceError(err error) bool {
	var serviceErr *ServiceError
	return errors.As(err, &serviceErr)
}
