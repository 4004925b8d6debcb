package coordinator

import (
	"context"
	"time"

	"github.com/2beens/liftlog/internal/workouts"
)

func renumberExercises(items []ExerciseView) {
	for i := range items {
		items[i].Order = i
	}
}

// remotePosition is the position the pending exercise takes on the remote:
// the number of confirmed exercises before it in the projection.
func remotePosition(items []ExerciseView, pending Ref) int {
	position := 0
	for _, e := range items {
		if e.Ref == pending {
			return position
		}
		if !e.Ref.IsPending() {
			position++
		}
	}
	return position
}

// AddExercise inserts an exercise of the given selection at position at and
// returns its confirmed ref once the remote create succeeded.
func (s *Session) AddExercise(ctx context.Context, selectionID, at int) (Ref, error) {
	const op = OpAddExercise
	if err := s.precheck(op, true); err != nil {
		return Ref{}, err
	}

	pending := newPending()
	now := time.Now()

	s.exercises.mu.Lock()
	if at < 0 || at > len(s.exercises.items) {
		count := len(s.exercises.items)
		s.exercises.mu.Unlock()
		return Ref{}, s.fail(op, workouts.NewValidationError("order", "position %d out of range [0, %d]", at, count))
	}
	snapshot := s.exercises.cloneItemsLocked()
	next := s.exercises.cloneItemsLocked()
	view := ExerciseView{
		Ref: pending,
		Exercise: workouts.Exercise{
			WorkoutID:           s.workoutID,
			ExerciseSelectionID: selectionID,
			CreatedAt:           now,
			UpdatedAt:           now,
		},
	}
	next = append(next[:at], append([]ExerciseView{view}, next[at:]...)...)
	renumberExercises(next)
	s.exercises.beginLocked(next)
	s.exercises.mu.Unlock()
	s.statuses.set(op, StatusPending)

	// earlier adds may still be pending, at counts them but the remote does not
	s.exercises.writes.Lock()
	defer s.exercises.writes.Unlock()
	s.exercises.mu.Lock()
	position := remotePosition(s.exercises.items, pending)
	s.exercises.mu.Unlock()

	created, err := s.remote.CreateExercise(ctx, workouts.NewExercise{
		WorkoutID:           s.workoutID,
		ExerciseSelectionID: selectionID,
		Order:               position,
	})
	if err != nil {
		s.exercises.rollback(snapshot)
		return Ref{}, s.remoteFailed(op, err)
	}

	confirmed := Confirmed(created.ID)
	s.exercises.commit(func(items []ExerciseView) []ExerciseView {
		if i := findExercise(items, pending); i >= 0 {
			order := items[i].Order
			items[i] = ExerciseView{Ref: confirmed, Exercise: *created}
			items[i].Order = order
		}
		return items
	})
	s.statuses.set(op, StatusSuccess)
	return confirmed, nil
}

// DeleteExercise removes the exercise with its sets and closes the gap in
// the positions of the remaining exercises.
func (s *Session) DeleteExercise(ctx context.Context, ref Ref) error {
	const op = OpDeleteExercise
	if err := s.precheck(op, true); err != nil {
		return err
	}
	id, err := confirmedID(ref)
	if err != nil {
		return s.fail(op, err)
	}

	// exercises before sets, always
	s.exercises.mu.Lock()
	s.sets.mu.Lock()
	idx := findExercise(s.exercises.items, ref)
	if idx < 0 {
		s.sets.mu.Unlock()
		s.exercises.mu.Unlock()
		return s.fail(op, ErrUnknownRef)
	}

	exSnapshot := s.exercises.cloneItemsLocked()
	setSnapshot := s.sets.cloneItemsLocked()

	nextExercises := s.exercises.cloneItemsLocked()
	nextExercises = append(nextExercises[:idx], nextExercises[idx+1:]...)
	renumberExercises(nextExercises)

	nextSets := make([]SetView, 0, len(setSnapshot))
	for _, st := range s.sets.cloneItemsLocked() {
		if st.ExerciseRef != ref {
			nextSets = append(nextSets, st)
		}
	}

	s.exercises.beginLocked(nextExercises)
	s.sets.beginLocked(nextSets)
	s.sets.mu.Unlock()
	s.exercises.mu.Unlock()
	s.statuses.set(op, StatusPending)

	// the remote closes the position gap in the same transaction
	s.exercises.writes.Lock()
	err = s.remote.DeleteExercise(ctx, id)
	s.exercises.writes.Unlock()
	if err != nil {
		s.exercises.rollback(exSnapshot)
		s.sets.rollback(setSnapshot)
		return s.remoteFailed(op, err)
	}

	s.exercises.commit(nil)
	s.sets.commit(nil)
	s.statuses.set(op, StatusSuccess)
	return nil
}

// UpdateExerciseNote stays allowed on completed workouts.
func (s *Session) UpdateExerciseNote(ctx context.Context, ref Ref, note *string) error {
	const op = OpUpdateExerciseNote
	if err := s.precheck(op, false); err != nil {
		return err
	}
	id, err := confirmedID(ref)
	if err != nil {
		return s.fail(op, err)
	}

	s.exercises.mu.Lock()
	idx := findExercise(s.exercises.items, ref)
	if idx < 0 {
		s.exercises.mu.Unlock()
		return s.fail(op, ErrUnknownRef)
	}
	snapshot := s.exercises.cloneItemsLocked()
	next := s.exercises.cloneItemsLocked()
	next[idx].Note = cloneString(note)
	s.exercises.beginLocked(next)
	s.exercises.mu.Unlock()
	s.statuses.set(op, StatusPending)

	updated, err := s.remote.UpdateExerciseNote(ctx, id, note)
	if err != nil {
		s.exercises.rollback(snapshot)
		return s.remoteFailed(op, err)
	}

	s.exercises.commit(func(items []ExerciseView) []ExerciseView {
		if i := findExercise(items, ref); i >= 0 {
			items[i].Note = cloneString(updated.Note)
			items[i].UpdatedAt = updated.UpdatedAt
		}
		return items
	})
	s.statuses.set(op, StatusSuccess)
	return nil
}
