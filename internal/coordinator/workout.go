package coordinator

import (
	"context"
	"time"

	"github.com/2beens/liftlog/internal/workouts"
)

// CompleteWorkout validates the projection and marks the workout completed,
// persisting the current exercise notes with it. Nothing is applied locally
// before the remote accepted it.
func (s *Session) CompleteWorkout(ctx context.Context, at time.Time) error {
	const op = OpCompleteWorkout
	if err := s.precheck(op, true); err != nil {
		return err
	}

	s.exercises.mu.Lock()
	s.sets.mu.Lock()
	exList := s.exercises.cloneItemsLocked()
	setList := s.sets.cloneItemsLocked()
	s.sets.mu.Unlock()
	s.exercises.mu.Unlock()

	exercises := make([]workouts.Exercise, 0, len(exList))
	notes := make(map[int]*string, len(exList))
	for _, e := range exList {
		id, ok := e.Ref.ID()
		if !ok {
			return s.fail(op, ErrPendingEntity)
		}
		e.ID = id
		exercises = append(exercises, e.Exercise)
		notes[id] = e.Note
	}
	sets := make([]workouts.Set, 0, len(setList))
	for _, st := range setList {
		if st.Ref.IsPending() {
			return s.fail(op, ErrPendingEntity)
		}
		sets = append(sets, st.Set)
	}
	if err := workouts.ValidateCompletion(exercises, sets); err != nil {
		return s.fail(op, err)
	}

	s.statuses.set(op, StatusPending)
	completed, err := s.remote.CompleteWorkout(ctx, s.workoutID, workouts.Completion{
		CompletedAt:   at,
		ExerciseNotes: notes,
	})
	if err != nil {
		return s.remoteFailed(op, err)
	}

	s.workoutMu.Lock()
	s.workout = cloneWorkout(*completed)
	s.workoutMu.Unlock()
	s.exercises.refresh()
	s.statuses.set(op, StatusSuccess)
	return nil
}

// UpdateSentiment stays allowed on completed workouts.
func (s *Session) UpdateSentiment(ctx context.Context, sentiment workouts.Sentiment) error {
	const op = OpUpdateSentiment
	if err := s.precheck(op, false); err != nil {
		return err
	}
	if !sentiment.Valid() {
		return s.fail(op, workouts.NewValidationError("sentiment", "must be one of good, medium, bad"))
	}

	s.workoutMu.Lock()
	snapshot := cloneWorkout(s.workout)
	s.workout.Sentiment = &sentiment
	s.workoutMu.Unlock()
	s.statuses.set(op, StatusPending)

	updated, err := s.remote.UpdateWorkoutSentiment(ctx, s.workoutID, sentiment)
	if err != nil {
		s.workoutMu.Lock()
		s.workout = snapshot
		s.workoutMu.Unlock()
		return s.remoteFailed(op, err)
	}

	s.workoutMu.Lock()
	s.workout = cloneWorkout(*updated)
	s.workoutMu.Unlock()
	s.statuses.set(op, StatusSuccess)
	return nil
}
