package workouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/2beens/liftlog/internal/telemetry/metrics"
	"github.com/2beens/liftlog/internal/workouts"
	"github.com/2beens/liftlog/pkg"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CreateUser(t *testing.T) {
	pkg.PasswordHashCost = 4
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	username := gofakeit.Username()
	password := gofakeit.Password(true, true, true, false, false, 12)
	u, err := svc.CreateUser(ctx, username, password)
	require.NoError(t, err)
	assert.Equal(t, username, u.Username)
	assert.True(t, pkg.CheckPasswordHash(password, u.PasswordHash))

	_, err = svc.CreateUser(ctx, username, password)
	assert.ErrorIs(t, err, workouts.ErrUsernameTaken)

	_, err = svc.CreateUser(ctx, "  ", password)
	assert.True(t, workouts.IsValidationError(err))
	_, err = svc.CreateUser(ctx, gofakeit.Username()+"x", "123")
	assert.True(t, workouts.IsValidationError(err))
}

func TestService_CreateWorkout_FromTemplate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tmpl, err := svc.CreateTemplate(ctx, 1, workouts.Template{
		Title:       "Upper A",
		Description: "heavy upper",
		Exercises: []workouts.TemplateExercise{
			{ExerciseSelectionName: "Bench Press", Sets: 3},
			{ExerciseSelectionName: "Barbell Row", Sets: 2},
		},
	})
	require.NoError(t, err)

	w, err := svc.CreateWorkout(ctx, 1, workouts.NewWorkout{TemplateID: &tmpl.ID})
	require.NoError(t, err)
	assert.Equal(t, "Upper A", w.Title)
	assert.Equal(t, "heavy upper", w.Description)
	assert.False(t, w.Completed)

	exercises, err := svc.ListExercises(ctx, 1, w.ID)
	require.NoError(t, err)
	require.Len(t, exercises, 2)
	assert.Equal(t, "Bench Press", exercises[0].SelectionName)
	assert.Equal(t, 0, exercises[0].Order)
	assert.Equal(t, "Barbell Row", exercises[1].SelectionName)
	assert.Equal(t, 1, exercises[1].Order)

	sets, err := svc.ListSets(ctx, 1, w.ID)
	require.NoError(t, err)
	require.Len(t, sets, 5)
	for _, st := range sets {
		assert.Nil(t, st.Reps)
		assert.Nil(t, st.Weight)
	}

	_, err = svc.CreateWorkout(ctx, 2, workouts.NewWorkout{TemplateID: &tmpl.ID})
	assert.ErrorIs(t, err, workouts.ErrUnauthorized)
}

func TestService_CreateTemplate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateTemplate(ctx, 1, workouts.Template{Title: ""})
	assert.True(t, workouts.IsValidationError(err))

	_, err = svc.CreateTemplate(ctx, 1, workouts.Template{
		Title:     "broken",
		Exercises: []workouts.TemplateExercise{{ExerciseSelectionName: "Underwater Basket Weaving", Sets: 1}},
	})
	require.Error(t, err)
	assert.True(t, workouts.IsValidationError(err))

	_, err = svc.CreateWorkout(ctx, 1, workouts.NewWorkout{Title: "   "})
	assert.True(t, workouts.IsValidationError(err))
}

func TestService_Ownership(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	w, exercises := seedWorkout(t, svc, 1, 1, 1)

	_, err := svc.GetWorkout(ctx, 2, w.ID)
	assert.ErrorIs(t, err, workouts.ErrUnauthorized)
	_, err = svc.ListSets(ctx, 2, w.ID)
	assert.ErrorIs(t, err, workouts.ErrUnauthorized)
	assert.ErrorIs(t, svc.DeleteExercise(ctx, 2, exercises[0].ID), workouts.ErrUnauthorized)
	assert.ErrorIs(t, svc.DeleteWorkout(ctx, 2, w.ID), workouts.ErrUnauthorized)

	_, err = svc.GetWorkout(ctx, 1, 424242)
	assert.ErrorIs(t, err, workouts.ErrWorkoutNotFound)
}

func TestService_CreateExercise_OrderRange(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	w, _ := seedWorkout(t, svc, 1, 0, 1, 2)

	_, err := svc.CreateExercise(ctx, 1, workouts.NewExercise{WorkoutID: w.ID, ExerciseSelectionID: 3, Order: 3})
	assert.True(t, workouts.IsValidationError(err))
	_, err = svc.CreateExercise(ctx, 1, workouts.NewExercise{WorkoutID: w.ID, ExerciseSelectionID: 404, Order: 0})
	assert.True(t, workouts.IsValidationError(err))

	_, err = svc.CreateExercise(ctx, 1, workouts.NewExercise{WorkoutID: w.ID, ExerciseSelectionID: 3, Order: 0})
	require.NoError(t, err)
	exercises, err := svc.ListExercises(ctx, 1, w.ID)
	require.NoError(t, err)
	require.Len(t, exercises, 3)
	assert.Equal(t, "Back Squat", exercises[0].SelectionName)
	for i, e := range exercises {
		assert.Equal(t, i, e.Order)
	}
}

func TestService_CreateSet_OrderRange(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, exercises := seedWorkout(t, svc, 1, 2, 1, 2)

	_, err := svc.CreateSet(ctx, 1, workouts.NewSet{ExerciseID: exercises[0].ID, Order: 3})
	assert.True(t, workouts.IsValidationError(err))
	_, err = svc.CreateSet(ctx, 1, workouts.NewSet{ExerciseID: exercises[0].ID, Order: -1})
	assert.True(t, workouts.IsValidationError(err))

	_, err = svc.CreateSet(ctx, 1, workouts.NewSet{ExerciseID: exercises[0].ID, Order: 2})
	require.NoError(t, err)
}

func TestService_CompleteWorkout_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("no exercises", func(t *testing.T) {
		svc, _, recorder := newTestService(t)
		w, _ := seedWorkout(t, svc, 1, 0)
		_, err := svc.CompleteWorkout(ctx, 1, w.ID, workouts.Completion{})
		assert.True(t, workouts.IsValidationError(err))
		assert.Empty(t, recorder.calls)
	})

	t.Run("no sets", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		w, _ := seedWorkout(t, svc, 1, 0, 1)
		_, err := svc.CompleteWorkout(ctx, 1, w.ID, workouts.Completion{})
		assert.True(t, workouts.IsValidationError(err))
	})

	t.Run("set without weight", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		w, _ := seedWorkout(t, svc, 1, 1, 1)
		sets, err := svc.ListSets(ctx, 1, w.ID)
		require.NoError(t, err)
		_, err = svc.UpdateSet(ctx, 1, sets[0].ID, workouts.SetFields{Reps: intp(5)})
		require.NoError(t, err)

		_, err = svc.CompleteWorkout(ctx, 1, w.ID, workouts.Completion{})
		require.Error(t, err)
		assert.True(t, workouts.IsValidationError(err))
		assert.Contains(t, err.Error(), "Bench Press")

		got, err := svc.GetWorkout(ctx, 1, w.ID)
		require.NoError(t, err)
		assert.False(t, got.Completed)
	})
}

func TestService_CompleteWorkout(t *testing.T) {
	ctx := context.Background()
	store := workouts.NewMemStore(workouts.DefaultSelections()...)
	recorder := &historyRecorder{}
	metricsManager := metrics.NewTestManager()
	svc := workouts.NewService(store, recorder, metricsManager)

	w, exercises := seedWorkout(t, svc, 7, 2, 1)
	sets, err := svc.ListSets(ctx, 7, w.ID)
	require.NoError(t, err)
	for _, st := range sets {
		_, err := svc.UpdateSet(ctx, 7, st.ID, workouts.SetFields{Reps: intp(5), Weight: intp(185)})
		require.NoError(t, err)
	}

	completedAt := time.Date(2026, 5, 1, 19, 30, 0, 0, time.UTC)
	note := "felt strong"
	completed, err := svc.CompleteWorkout(ctx, 7, w.ID, workouts.Completion{
		CompletedAt:   completedAt,
		ExerciseNotes: map[int]*string{exercises[0].ID: &note},
	})
	require.NoError(t, err)
	assert.True(t, completed.Completed)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, completedAt, *completed.CompletedAt)
	assert.Equal(t, []int{7}, recorder.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metricsManager.CounterCompletedWorkouts))

	exercises, err = svc.ListExercises(ctx, 7, w.ID)
	require.NoError(t, err)
	require.NotNil(t, exercises[0].Note)
	assert.Equal(t, note, *exercises[0].Note)

	// completed workouts are read-only for structural changes
	_, err = svc.CompleteWorkout(ctx, 7, w.ID, workouts.Completion{})
	assert.ErrorIs(t, err, workouts.ErrWorkoutCompleted)
	_, err = svc.CreateSet(ctx, 7, workouts.NewSet{ExerciseID: exercises[0].ID, Order: 2})
	assert.ErrorIs(t, err, workouts.ErrWorkoutCompleted)
	assert.ErrorIs(t, svc.DeleteSet(ctx, 7, sets[0].ID), workouts.ErrWorkoutCompleted)
	_, err = svc.UpdateSet(ctx, 7, sets[0].ID, workouts.SetFields{Reps: intp(1), Weight: intp(1)})
	assert.ErrorIs(t, err, workouts.ErrWorkoutCompleted)

	// notes and sentiment stay editable
	_, err = svc.UpdateExerciseNote(ctx, 7, exercises[0].ID, nil)
	require.NoError(t, err)
	updated, err := svc.UpdateWorkoutSentiment(ctx, 7, w.ID, workouts.SentimentGood)
	require.NoError(t, err)
	require.NotNil(t, updated.Sentiment)
	assert.Equal(t, workouts.SentimentGood, *updated.Sentiment)

	require.NoError(t, svc.DeleteWorkout(ctx, 7, w.ID))
	assert.Equal(t, []int{7, 7}, recorder.calls)
}

func TestService_UpdateWorkoutSentiment_Invalid(t *testing.T) {
	svc, _, _ := newTestService(t)
	w, _ := seedWorkout(t, svc, 1, 0)
	_, err := svc.UpdateWorkoutSentiment(context.Background(), 1, w.ID, workouts.Sentiment("meh"))
	assert.True(t, workouts.IsValidationError(err))
}

func TestService_Reorder_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	w, exercises := seedWorkout(t, svc, 1, 0, 1, 2)

	err := svc.ReorderExercises(ctx, 1, w.ID, []workouts.OrderUpdate{
		{ID: exercises[0].ID, Order: 1},
		{ID: exercises[1].ID, Order: 1},
	})
	assert.True(t, workouts.IsValidationError(err))

	err = svc.ReorderExercises(ctx, 1, w.ID, []workouts.OrderUpdate{
		{ID: exercises[0].ID, Order: 1},
		{ID: exercises[1].ID, Order: 0},
	})
	require.NoError(t, err)
	reordered, err := svc.ListExercises(ctx, 1, w.ID)
	require.NoError(t, err)
	assert.Equal(t, exercises[1].ID, reordered[0].ID)
	assert.Equal(t, exercises[0].ID, reordered[1].ID)
}

func TestService_Tracked(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddTracked(ctx, 1, 1)
	require.NoError(t, err)
	_, err = svc.AddTracked(ctx, 1, 1)
	require.NoError(t, err)

	list, err := svc.ListTracked(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.RemoveTracked(ctx, 1, 1))
	tracked, err := svc.IsTracked(ctx, 1, 1)
	require.NoError(t, err)
	assert.False(t, tracked)
}
