package coordinator_test

import (
	"context"
	"sync"
	"testing"

	"github.com/2beens/liftlog/internal/coordinator"
	"github.com/2beens/liftlog/internal/workouts"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func intp(v int) *int {
	return &v
}

func strp(s string) *string {
	return &s
}

// faultyRemote passes calls through to a real remote and fails or blocks
// selected methods.
type faultyRemote struct {
	coordinator.Remote

	mu       sync.Mutex
	failures map[string]error
	lost     map[string]error
	calls    []string
	gates    map[string]chan struct{}
	entered  map[string]chan error
}

func newFaultyRemote(remote coordinator.Remote) *faultyRemote {
	return &faultyRemote{
		Remote:   remote,
		failures: make(map[string]error),
		lost:     make(map[string]error),
		gates:    make(map[string]chan struct{}),
		entered:  make(map[string]chan error),
	}
}

func (f *faultyRemote) failOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = err
}

// loseResponse lets method reach the real remote and then reports err,
// as if the reply never arrived.
func (f *faultyRemote) loseResponse(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lost[method] = err
}

func (f *faultyRemote) reply(method string, err error) error {
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lost[method]
}

// block makes method wait until the returned release func is called or its
// ctx ends. The ctx error seen by each blocked call is sent on the returned channel.
func (f *faultyRemote) block(method string) (release func(), done <-chan error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	results := make(chan error, 16)
	f.gates[method] = gate
	f.entered[method] = results
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.gates, method)
			f.mu.Unlock()
			close(gate)
		})
	}, results
}

func (f *faultyRemote) called(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (f *faultyRemote) enter(ctx context.Context, method string) error {
	f.mu.Lock()
	f.calls = append(f.calls, method)
	gate := f.gates[method]
	results := f.entered[method]
	err := f.failures[method]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
			results <- nil
		case <-ctx.Done():
			results <- ctx.Err()
			return ctx.Err()
		}
	}
	return err
}

func (f *faultyRemote) ListExercises(ctx context.Context, workoutID int) ([]workouts.Exercise, error) {
	if err := f.enter(ctx, "ListExercises"); err != nil {
		return nil, err
	}
	return f.Remote.ListExercises(ctx, workoutID)
}

func (f *faultyRemote) ListSets(ctx context.Context, workoutID int) ([]workouts.Set, error) {
	if err := f.enter(ctx, "ListSets"); err != nil {
		return nil, err
	}
	return f.Remote.ListSets(ctx, workoutID)
}

func (f *faultyRemote) CreateExercise(ctx context.Context, ne workouts.NewExercise) (*workouts.Exercise, error) {
	if err := f.enter(ctx, "CreateExercise"); err != nil {
		return nil, err
	}
	return f.Remote.CreateExercise(ctx, ne)
}

func (f *faultyRemote) DeleteExercise(ctx context.Context, exerciseID int) error {
	if err := f.enter(ctx, "DeleteExercise"); err != nil {
		return err
	}
	return f.reply("DeleteExercise", f.Remote.DeleteExercise(ctx, exerciseID))
}

func (f *faultyRemote) UpdateExerciseNote(ctx context.Context, exerciseID int, note *string) (*workouts.Exercise, error) {
	if err := f.enter(ctx, "UpdateExerciseNote"); err != nil {
		return nil, err
	}
	return f.Remote.UpdateExerciseNote(ctx, exerciseID, note)
}

func (f *faultyRemote) CreateSet(ctx context.Context, ns workouts.NewSet) (*workouts.Set, error) {
	if err := f.enter(ctx, "CreateSet"); err != nil {
		return nil, err
	}
	return f.Remote.CreateSet(ctx, ns)
}

func (f *faultyRemote) DeleteSet(ctx context.Context, setID int) error {
	if err := f.enter(ctx, "DeleteSet"); err != nil {
		return err
	}
	return f.reply("DeleteSet", f.Remote.DeleteSet(ctx, setID))
}

func (f *faultyRemote) UpdateSet(ctx context.Context, setID int, fields workouts.SetFields) (*workouts.Set, error) {
	if err := f.enter(ctx, "UpdateSet"); err != nil {
		return nil, err
	}
	return f.Remote.UpdateSet(ctx, setID, fields)
}

func (f *faultyRemote) CompleteWorkout(ctx context.Context, workoutID int, completion workouts.Completion) (*workouts.Workout, error) {
	if err := f.enter(ctx, "CompleteWorkout"); err != nil {
		return nil, err
	}
	return f.Remote.CompleteWorkout(ctx, workoutID, completion)
}

func (f *faultyRemote) UpdateWorkoutSentiment(ctx context.Context, workoutID int, sentiment workouts.Sentiment) (*workouts.Workout, error) {
	if err := f.enter(ctx, "UpdateWorkoutSentiment"); err != nil {
		return nil, err
	}
	return f.Remote.UpdateWorkoutSentiment(ctx, workoutID, sentiment)
}

type recordingNotifier struct {
	mu   sync.Mutex
	ops  []coordinator.Op
	errs []error
}

func (n *recordingNotifier) Notify(op coordinator.Op, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ops = append(n.ops, op)
	n.errs = append(n.errs, err)
}

func (n *recordingNotifier) notified() []coordinator.Op {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]coordinator.Op(nil), n.ops...)
}

type fixture struct {
	service  *workouts.Service
	remote   *faultyRemote
	notifier *recordingNotifier
	session  *coordinator.Session
	workout  *workouts.Workout
}

const testUserID = 5

// newFixture opens a session on a workout with the given selections, each with setsPer sets.
func newFixture(t *testing.T, setsPer int, selections ...int) *fixture {
	t.Helper()
	ctx := context.Background()
	store := workouts.NewMemStore(workouts.DefaultSelections()...)
	svc := workouts.NewService(store, nil, nil)

	w, err := svc.CreateWorkout(ctx, testUserID, workouts.NewWorkout{Title: "session"})
	require.NoError(t, err)
	for i, selectionID := range selections {
		e, err := svc.CreateExercise(ctx, testUserID, workouts.NewExercise{
			WorkoutID:           w.ID,
			ExerciseSelectionID: selectionID,
			Order:               i,
		})
		require.NoError(t, err)
		for j := 0; j < setsPer; j++ {
			_, err := svc.CreateSet(ctx, testUserID, workouts.NewSet{ExerciseID: e.ID, Order: j})
			require.NoError(t, err)
		}
	}

	remote := newFaultyRemote(svc.ForUser(testUserID))
	notifier := &recordingNotifier{}
	session, err := coordinator.Open(ctx, remote, testUserID, w.ID, notifier)
	require.NoError(t, err)
	t.Cleanup(session.Close)

	return &fixture{
		service:  svc,
		remote:   remote,
		notifier: notifier,
		session:  session,
		workout:  w,
	}
}

func (f *fixture) remoteExercises(t *testing.T) []workouts.Exercise {
	t.Helper()
	list, err := f.service.ListExercises(context.Background(), testUserID, f.workout.ID)
	require.NoError(t, err)
	return list
}

func (f *fixture) remoteSets(t *testing.T) []workouts.Set {
	t.Helper()
	list, err := f.service.ListSets(context.Background(), testUserID, f.workout.ID)
	require.NoError(t, err)
	return list
}

func requireContiguous(t *testing.T, orders []int) {
	t.Helper()
	for i, o := range orders {
		require.Equal(t, i, o, "orders %v are not contiguous", orders)
	}
}

func exerciseOrders(list []coordinator.ExerciseView) []int {
	orders := make([]int, len(list))
	for i, e := range list {
		orders[i] = e.Order
	}
	return orders
}

func setOrders(list []coordinator.SetView) []int {
	orders := make([]int, len(list))
	for i, st := range list {
		orders[i] = st.Order
	}
	return orders
}

func remoteExerciseOrders(list []workouts.Exercise) []int {
	orders := make([]int, len(list))
	for i, e := range list {
		orders[i] = e.Order
	}
	return orders
}

func remoteSetOrders(list []workouts.Set) []int {
	orders := make([]int, len(list))
	for i, st := range list {
		orders[i] = st.Order
	}
	return orders
}
