package workouts

import (
	"errors"
	"fmt"
)

var (
	ErrWorkoutNotFound   = errors.New("workout not found")
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrSetNotFound       = errors.New("set not found")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrSelectionNotFound = errors.New("exercise selection not found")
	ErrTrackedNotFound   = errors.New("tracked exercise not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrWorkoutCompleted  = errors.New("workout already completed")
)

// ValidationError is a precondition failure detected before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkoutNotFound) ||
		errors.Is(err, ErrExerciseNotFound) ||
		errors.Is(err, ErrSetNotFound) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrSelectionNotFound) ||
		errors.Is(err, ErrTrackedNotFound)
}
