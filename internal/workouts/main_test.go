package workouts_test

import (
	"context"
	"testing"

	"github.com/2beens/liftlog/internal/telemetry/metrics"
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

type historyRecorder struct {
	calls []int
}

func (r *historyRecorder) HistoryChanged(userID int) {
	r.calls = append(r.calls, userID)
}

func newTestService(t *testing.T) (*workouts.Service, *workouts.MemStore, *historyRecorder) {
	t.Helper()
	store := workouts.NewMemStore(workouts.DefaultSelections()...)
	recorder := &historyRecorder{}
	return workouts.NewService(store, recorder, metrics.NewTestManager()), store, recorder
}

// seedWorkout creates a workout with the given selections, each with setsPer empty sets.
func seedWorkout(t *testing.T, svc *workouts.Service, userID int, setsPer int, selections ...int) (*workouts.Workout, []workouts.Exercise) {
	t.Helper()
	ctx := context.Background()
	w, err := svc.CreateWorkout(ctx, userID, workouts.NewWorkout{Title: "push day"})
	require.NoError(t, err)
	for i, selectionID := range selections {
		e, err := svc.CreateExercise(ctx, userID, workouts.NewExercise{
			WorkoutID:           w.ID,
			ExerciseSelectionID: selectionID,
			Order:               i,
		})
		require.NoError(t, err)
		for j := 0; j < setsPer; j++ {
			_, err := svc.CreateSet(ctx, userID, workouts.NewSet{ExerciseID: e.ID, Order: j})
			require.NoError(t, err)
		}
	}
	exercises, err := svc.ListExercises(ctx, userID, w.ID)
	require.NoError(t, err)
	return w, exercises
}
