package coordinator

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/2beens/liftlog/internal/workouts"

	log "github.com/sirupsen/logrus"
)

// Remote is the store the session writes through to. Multi row writes are
// atomic on the remote side: a create shifts the later siblings down and a
// delete moves them back up.
type Remote interface {
	GetWorkout(ctx context.Context, workoutID int) (*workouts.Workout, error)
	ListExercises(ctx context.Context, workoutID int) ([]workouts.Exercise, error)
	ListSets(ctx context.Context, workoutID int) ([]workouts.Set, error)

	CreateExercise(ctx context.Context, ne workouts.NewExercise) (*workouts.Exercise, error)
	DeleteExercise(ctx context.Context, exerciseID int) error
	UpdateExerciseNote(ctx context.Context, exerciseID int, note *string) (*workouts.Exercise, error)

	CreateSet(ctx context.Context, ns workouts.NewSet) (*workouts.Set, error)
	DeleteSet(ctx context.Context, setID int) error
	UpdateSet(ctx context.Context, setID int, fields workouts.SetFields) (*workouts.Set, error)

	CompleteWorkout(ctx context.Context, workoutID int, completion workouts.Completion) (*workouts.Workout, error)
	UpdateWorkoutSentiment(ctx context.Context, workoutID int, sentiment workouts.Sentiment) (*workouts.Workout, error)
}

var _ Remote = (*workouts.UserStore)(nil)

type ExerciseView struct {
	Ref Ref
	workouts.Exercise
}

type SetView struct {
	Ref         Ref
	ExerciseRef Ref
	workouts.Set
}

func cloneExerciseView(e ExerciseView) ExerciseView {
	e.Note = cloneString(e.Note)
	e.RepLowerBound = cloneInt(e.RepLowerBound)
	e.RepUpperBound = cloneInt(e.RepUpperBound)
	return e
}

func cloneSetView(s SetView) SetView {
	s.Reps = cloneInt(s.Reps)
	s.Weight = cloneInt(s.Weight)
	s.TargetReps = cloneInt(s.TargetReps)
	s.TargetWeight = cloneInt(s.TargetWeight)
	return s
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneWorkout(w workouts.Workout) workouts.Workout {
	if w.Sentiment != nil {
		s := *w.Sentiment
		w.Sentiment = &s
	}
	if w.CompletedAt != nil {
		t := *w.CompletedAt
		w.CompletedAt = &t
	}
	return w
}

func exerciseViews(list []workouts.Exercise) []ExerciseView {
	views := make([]ExerciseView, 0, len(list))
	for _, e := range list {
		views = append(views, ExerciseView{Ref: Confirmed(e.ID), Exercise: e})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Order < views[j].Order
	})
	return views
}

func setViews(list []workouts.Set) []SetView {
	views := make([]SetView, 0, len(list))
	for _, s := range list {
		views = append(views, SetView{Ref: Confirmed(s.ID), ExerciseRef: Confirmed(s.ExerciseID), Set: s})
	}
	return views
}

// Session keeps a local projection of one workout's exercises and sets,
// applies mutations to it right away and writes them through to the Remote.
// A failed write restores the touched collection to its state before the
// mutation. Mutations may be called concurrently.
type Session struct {
	remote    Remote
	userID    int
	workoutID int
	notifier  Notifier

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	workoutMu sync.Mutex
	workout   workouts.Workout

	exercises *collection[ExerciseView]
	sets      *collection[SetView]
	statuses  *statuses
}

// Open loads the workout with its exercises and sets. It fails with
// ErrUnauthorized when the workout belongs to someone else. A nil notifier
// logs failures.
func Open(ctx context.Context, remote Remote, userID, workoutID int, notifier Notifier) (*Session, error) {
	w, err := remote.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("load workout %d: %w", workoutID, err)
	}
	if w.UserID != userID {
		return nil, ErrUnauthorized
	}
	if notifier == nil {
		notifier = logNotifier{}
	}

	exercises, err := remote.ListExercises(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("load exercises: %w", err)
	}
	sets, err := remote.ListSets(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("load sets: %w", err)
	}

	// refreshes outlive the ctx of Open, they end with Close
	sessionCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		remote:    remote,
		userID:    userID,
		workoutID: workoutID,
		notifier:  notifier,
		ctx:       sessionCtx,
		cancel:    cancel,
		workout:   cloneWorkout(*w),
		statuses:  newStatuses(),
	}
	s.exercises = newCollection(sessionCtx, &s.wg, "exercises", cloneExerciseView,
		func(ctx context.Context) ([]ExerciseView, error) {
			list, err := remote.ListExercises(ctx, workoutID)
			if err != nil {
				return nil, err
			}
			return exerciseViews(list), nil
		})
	s.sets = newCollection(sessionCtx, &s.wg, "sets", cloneSetView,
		func(ctx context.Context) ([]SetView, error) {
			list, err := remote.ListSets(ctx, workoutID)
			if err != nil {
				return nil, err
			}
			return setViews(list), nil
		})
	s.exercises.items = exerciseViews(exercises)
	s.sets.items = setViews(sets)

	log.Debugf("session opened for workout %d: %d exercises, %d sets", workoutID, len(exercises), len(sets))
	return s, nil
}

// Settle waits for background refreshes to finish. Call it with no mutation in flight.
func (s *Session) Settle() {
	s.wg.Wait()
}

// Close cancels background refreshes and waits for them.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Session) closed() bool {
	return s.ctx.Err() != nil
}

func (s *Session) Workout() workouts.Workout {
	s.workoutMu.Lock()
	defer s.workoutMu.Unlock()
	return cloneWorkout(s.workout)
}

// Exercises returns the projection ordered by position.
func (s *Session) Exercises() []ExerciseView {
	return s.exercises.snapshot()
}

// Sets returns the sets of one exercise ordered by position.
func (s *Session) Sets(exerciseRef Ref) []SetView {
	var out []SetView
	for _, st := range s.sets.snapshot() {
		if st.ExerciseRef == exerciseRef {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

func (s *Session) AllSets() []SetView {
	return s.sets.snapshot()
}

func (s *Session) ExercisesState() State {
	return s.exercises.currentState()
}

func (s *Session) SetsState() State {
	return s.sets.currentState()
}

// Status is the outcome of the last call of op.
func (s *Session) Status(op Op) OpStatus {
	return s.statuses.get(op)
}

func (s *Session) completed() bool {
	s.workoutMu.Lock()
	defer s.workoutMu.Unlock()
	return s.workout.Completed
}

// fail records a precondition failure, no remote call was made.
func (s *Session) fail(op Op, err error) error {
	s.statuses.set(op, StatusError)
	return err
}

// remoteFailed records a failed remote write and notifies.
func (s *Session) remoteFailed(op Op, err error) error {
	s.statuses.set(op, StatusError)
	mErr := &MutationError{Op: op, Err: err}
	s.notifier.Notify(op, err)
	return mErr
}

func (s *Session) precheck(op Op, structural bool) error {
	if s.closed() {
		return s.fail(op, ErrSessionClosed)
	}
	if structural && s.completed() {
		return s.fail(op, ErrWorkoutCompleted)
	}
	return nil
}

func findExercise(items []ExerciseView, ref Ref) int {
	for i := range items {
		if items[i].Ref == ref {
			return i
		}
	}
	return -1
}

func findSet(items []SetView, ref Ref) int {
	for i := range items {
		if items[i].Ref == ref {
			return i
		}
	}
	return -1
}

func confirmedID(ref Ref) (int, error) {
	id, ok := ref.ID()
	if !ok {
		return 0, ErrPendingEntity
	}
	return id, nil
}
