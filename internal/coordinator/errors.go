package coordinator

import (
	"errors"
	"fmt"

	"github.com/2beens/liftlog/internal/workouts"

	log "github.com/sirupsen/logrus"
)

var (
	ErrPendingEntity = errors.New("entity is not confirmed yet")
	ErrUnknownRef    = errors.New("no such entity in session")
	ErrSessionClosed = errors.New("session closed")

	// aliases so callers can match either package's sentinel
	ErrWorkoutCompleted = workouts.ErrWorkoutCompleted
	ErrUnauthorized     = workouts.ErrUnauthorized
)

// MutationError is a failed remote write. The touched collection has been
// rolled back when it is returned.
type MutationError struct {
	Op  Op
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// Notifier surfaces failed mutations to the user.
type Notifier interface {
	Notify(op Op, err error)
}

type NotifierFunc func(op Op, err error)

func (f NotifierFunc) Notify(op Op, err error) {
	f(op, err)
}

type logNotifier struct{}

func (logNotifier) Notify(op Op, err error) {
	log.Warnf("%s failed: %s", op, err)
}
