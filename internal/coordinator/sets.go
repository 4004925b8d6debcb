package coordinator

import (
	"context"
	"time"

	"github.com/2beens/liftlog/internal/workouts"
)

// AddSet appends an empty set to the exercise, at order = current set count.
func (s *Session) AddSet(ctx context.Context, exerciseRef Ref) (Ref, error) {
	const op = OpAddSet
	if err := s.precheck(op, true); err != nil {
		return Ref{}, err
	}
	exerciseID, err := confirmedID(exerciseRef)
	if err != nil {
		return Ref{}, s.fail(op, err)
	}

	pending := newPending()
	now := time.Now()

	// exercises before sets, so a concurrent DeleteExercise cannot drop the
	// exercise between the check and the append
	s.exercises.mu.Lock()
	s.sets.mu.Lock()
	if findExercise(s.exercises.items, exerciseRef) < 0 {
		s.sets.mu.Unlock()
		s.exercises.mu.Unlock()
		return Ref{}, s.fail(op, ErrUnknownRef)
	}
	snapshot := s.sets.cloneItemsLocked()
	next := s.sets.cloneItemsLocked()
	order := 0
	for _, st := range next {
		if st.ExerciseRef == exerciseRef {
			order++
		}
	}
	next = append(next, SetView{
		Ref:         pending,
		ExerciseRef: exerciseRef,
		Set: workouts.Set{
			ExerciseID: exerciseID,
			Order:      order,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	})
	s.sets.beginLocked(next)
	s.sets.mu.Unlock()
	s.exercises.mu.Unlock()
	s.statuses.set(op, StatusPending)

	s.sets.writes.Lock()
	defer s.sets.writes.Unlock()
	s.sets.mu.Lock()
	position := remoteSetPosition(s.sets.items, exerciseRef, pending)
	s.sets.mu.Unlock()

	created, err := s.remote.CreateSet(ctx, workouts.NewSet{
		ExerciseID: exerciseID,
		Order:      position,
	})
	if err != nil {
		s.sets.rollback(snapshot)
		return Ref{}, s.remoteFailed(op, err)
	}

	confirmed := Confirmed(created.ID)
	s.sets.commit(func(items []SetView) []SetView {
		if i := findSet(items, pending); i >= 0 {
			order := items[i].Order
			items[i] = SetView{Ref: confirmed, ExerciseRef: exerciseRef, Set: *created}
			items[i].Order = order
		}
		return items
	})
	s.statuses.set(op, StatusSuccess)
	return confirmed, nil
}

// remoteSetPosition counts the confirmed sets of the exercise ordered before
// the pending one, which is where the remote will place it.
func remoteSetPosition(items []SetView, exerciseRef, pending Ref) int {
	limit := -1
	for _, st := range items {
		if st.Ref == pending {
			limit = st.Order
			break
		}
	}
	position := 0
	for _, st := range items {
		if st.ExerciseRef != exerciseRef || st.Ref.IsPending() {
			continue
		}
		if limit < 0 || st.Order < limit {
			position++
		}
	}
	return position
}

// DeleteSet removes the set and shifts down the later sets of the same exercise.
func (s *Session) DeleteSet(ctx context.Context, ref Ref) error {
	const op = OpDeleteSet
	if err := s.precheck(op, true); err != nil {
		return err
	}
	id, err := confirmedID(ref)
	if err != nil {
		return s.fail(op, err)
	}

	s.sets.mu.Lock()
	idx := findSet(s.sets.items, ref)
	if idx < 0 {
		s.sets.mu.Unlock()
		return s.fail(op, ErrUnknownRef)
	}
	snapshot := s.sets.cloneItemsLocked()
	removed := snapshot[idx]

	next := make([]SetView, 0, len(snapshot))
	for _, st := range s.sets.cloneItemsLocked() {
		if st.Ref == ref {
			continue
		}
		if st.ExerciseRef == removed.ExerciseRef && st.Order > removed.Order {
			st.Order--
		}
		next = append(next, st)
	}
	s.sets.beginLocked(next)
	s.sets.mu.Unlock()
	s.statuses.set(op, StatusPending)

	// the remote moves the later sets up in the same transaction
	s.sets.writes.Lock()
	err = s.remote.DeleteSet(ctx, id)
	s.sets.writes.Unlock()
	if err != nil {
		s.sets.rollback(snapshot)
		return s.remoteFailed(op, err)
	}

	s.sets.commit(nil)
	s.statuses.set(op, StatusSuccess)
	return nil
}

// EditSet changes the set in the projection only, used per keystroke.
// The following UpdateSet writes it through.
func (s *Session) EditSet(ref Ref, fields workouts.SetFields) error {
	const op = OpEditSet
	if err := s.precheck(op, true); err != nil {
		return err
	}
	if ref.IsPending() {
		return s.fail(op, ErrPendingEntity)
	}

	s.sets.mu.Lock()
	defer s.sets.mu.Unlock()
	idx := findSet(s.sets.items, ref)
	if idx < 0 {
		return s.fail(op, ErrUnknownRef)
	}
	next := s.sets.cloneItemsLocked()
	next[idx].Apply(cloneFields(fields))
	s.sets.touchLocked(next)
	s.statuses.set(op, StatusSuccess)
	return nil
}

// UpdateSet replaces the set fields and writes them to the remote, used on blur.
func (s *Session) UpdateSet(ctx context.Context, ref Ref, fields workouts.SetFields) error {
	const op = OpUpdateSet
	if err := s.precheck(op, true); err != nil {
		return err
	}
	id, err := confirmedID(ref)
	if err != nil {
		return s.fail(op, err)
	}

	s.sets.mu.Lock()
	idx := findSet(s.sets.items, ref)
	if idx < 0 {
		s.sets.mu.Unlock()
		return s.fail(op, ErrUnknownRef)
	}
	snapshot := s.sets.cloneItemsLocked()
	next := s.sets.cloneItemsLocked()
	next[idx].Apply(cloneFields(fields))
	s.sets.beginLocked(next)
	s.sets.mu.Unlock()
	s.statuses.set(op, StatusPending)

	updated, err := s.remote.UpdateSet(ctx, id, fields)
	if err != nil {
		s.sets.rollback(snapshot)
		return s.remoteFailed(op, err)
	}

	s.sets.commit(func(items []SetView) []SetView {
		if i := findSet(items, ref); i >= 0 {
			order := items[i].Order
			items[i].Set = *updated
			items[i].Order = order
		}
		return items
	})
	s.statuses.set(op, StatusSuccess)
	return nil
}

func cloneFields(f workouts.SetFields) workouts.SetFields {
	return workouts.SetFields{
		Reps:         cloneInt(f.Reps),
		Weight:       cloneInt(f.Weight),
		TargetReps:   cloneInt(f.TargetReps),
		TargetWeight: cloneInt(f.TargetWeight),
	}
}
