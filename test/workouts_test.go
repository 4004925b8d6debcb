//go:build integration_test || all_tests

package test

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/liftlog/internal/apiclient"
	"github.com/2beens/liftlog/internal/coordinator"
	"github.com/2beens/liftlog/internal/progression"
	"github.com/2beens/liftlog/internal/workouts"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int {
	return &v
}

func (s *IntegrationTestSuite) loggedInClient(ctx context.Context, u testUser) *apiclient.Client {
	t := s.T()
	client, err := apiclient.NewClient(serverEndpoint, s.httpClient)
	require.NoError(t, err)
	resp, err := client.Login(ctx, u.Username, u.Password)
	require.NoError(t, err)
	require.Equal(t, u.ID, resp.UserID)
	return client
}

func (s *IntegrationTestSuite) TestLogin() {
	t := s.T()
	ctx := context.Background()

	client, err := apiclient.NewClient(serverEndpoint, s.httpClient)
	require.NoError(t, err)

	_, err = client.Login(ctx, s.user.Username, "bad-password")
	require.ErrorIs(t, err, apiclient.ErrWrongLogin)

	_, err = client.Login(ctx, gofakeit.Username()+"-nobody", "whatever")
	require.ErrorIs(t, err, apiclient.ErrWrongLogin)

	_, err = client.ListWorkouts(ctx)
	require.ErrorIs(t, err, apiclient.ErrNotLoggedIn)

	resp, err := client.Login(ctx, s.user.Username, s.user.Password)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = client.ListWorkouts(ctx)
	require.NoError(t, err)

	require.NoError(t, client.Logout(ctx))
	client.SetToken(resp.Token)
	_, err = client.ListWorkouts(ctx)
	require.ErrorIs(t, err, apiclient.ErrNotLoggedIn)
}

func (s *IntegrationTestSuite) TestSelectionsSeeded() {
	t := s.T()
	ctx := context.Background()
	client := s.loggedInClient(ctx, s.user)

	selections, err := client.Selections(ctx)
	require.NoError(t, err)
	assert.Len(t, selections, len(workouts.DefaultSelections()))
}

func (s *IntegrationTestSuite) TestTemplateInstantiation() {
	t := s.T()
	ctx := context.Background()
	client := s.loggedInClient(ctx, s.user)

	_, err := client.CreateWorkout(ctx, workouts.NewWorkout{Title: ""})
	var vErr *workouts.ValidationError
	require.ErrorAs(t, err, &vErr)

	req := workouts.Template{
		Title: "push",
		Exercises: []workouts.TemplateExercise{
			{ExerciseSelectionName: "Bench Press", Sets: 3},
			{ExerciseSelectionName: "Bicep Curl", Sets: 2},
		},
	}
	tmpl, err := s.createTemplate(ctx, client, req)
	require.NoError(t, err)

	w, err := client.CreateWorkout(ctx, workouts.NewWorkout{Title: "push day", TemplateID: &tmpl.ID})
	require.NoError(t, err)

	exercises, err := client.ListExercises(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, exercises, 2)
	assert.Equal(t, "Bench Press", exercises[0].SelectionName)
	assert.Equal(t, 1, exercises[1].Order)

	sets, err := client.ListSets(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, sets, 5)
}

// createTemplate has no client helper, templates are managed from the web UI.
func (s *IntegrationTestSuite) createTemplate(ctx context.Context, client *apiclient.Client, tmpl workouts.Template) (*workouts.Template, error) {
	list, err := client.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	before := len(list)

	req, err := newJSONRequest(ctx, http.MethodPost, serverEndpoint+"/templates", client.Token(), tmpl)
	if err != nil {
		return nil, err
	}
	var created workouts.Template
	if err := doJSON(s.httpClient, req, http.StatusCreated, &created); err != nil {
		return nil, err
	}

	list, err = client.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	s.Require().Len(list, before+1)
	return &created, nil
}

func (s *IntegrationTestSuite) TestCoordinatorSessionOverHTTP() {
	t := s.T()
	ctx := context.Background()
	client := s.loggedInClient(ctx, s.user)

	w, err := client.CreateWorkout(ctx, workouts.NewWorkout{Title: "legs"})
	require.NoError(t, err)

	session, err := coordinator.Open(ctx, client, s.user.ID, w.ID, nil)
	require.NoError(t, err)
	defer session.Close()

	squat, err := session.AddExercise(ctx, 3, 0)
	require.NoError(t, err)
	press, err := session.AddExercise(ctx, 10, 1)
	require.NoError(t, err)
	deadlift, err := session.AddExercise(ctx, 4, 1)
	require.NoError(t, err)
	session.Settle()

	for _, ref := range []coordinator.Ref{squat, press, deadlift} {
		for i := 0; i < 2; i++ {
			_, err := session.AddSet(ctx, ref)
			require.NoError(t, err)
		}
	}
	session.Settle()

	// keystrokes stay local until the blur
	firstSquatSet := session.Sets(squat)[0].Ref
	require.NoError(t, session.EditSet(firstSquatSet, workouts.SetFields{Reps: intp(5)}))
	remoteSets, err := client.ListSets(ctx, w.ID)
	require.NoError(t, err)
	for _, st := range remoteSets {
		assert.Nil(t, st.Reps)
	}

	require.NoError(t, session.DeleteExercise(ctx, deadlift))
	session.Settle()
	remoteExercises, err := client.ListExercises(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, remoteExercises, 2)
	for i, e := range remoteExercises {
		assert.Equal(t, i, e.Order)
	}

	require.NoError(t, session.DeleteSet(ctx, session.Sets(press)[0].Ref))
	session.Settle()
	pressSets := session.Sets(press)
	require.Len(t, pressSets, 1)
	assert.Equal(t, 0, pressSets[0].Order)

	// completion is refused while sets have no reps or weight
	err = session.CompleteWorkout(ctx, time.Now())
	require.ErrorAs(t, err, new(*workouts.ValidationError))

	for _, ref := range []coordinator.Ref{squat, press} {
		for _, st := range session.Sets(ref) {
			require.NoError(t, session.UpdateSet(ctx, st.Ref, workouts.SetFields{Reps: intp(5), Weight: intp(200)}))
		}
	}
	require.NoError(t, session.UpdateExerciseNote(ctx, squat, strp("felt strong")))
	require.NoError(t, session.CompleteWorkout(ctx, time.Now()))
	require.NoError(t, session.UpdateSentiment(ctx, workouts.SentimentGood))

	_, err = session.AddSet(ctx, squat)
	require.ErrorIs(t, err, coordinator.ErrWorkoutCompleted)

	got, err := client.GetWorkout(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	require.NotNil(t, got.Sentiment)
	assert.Equal(t, workouts.SentimentGood, *got.Sentiment)

	// another user cannot open the workout
	otherClient := s.loggedInClient(ctx, s.other)
	_, err = coordinator.Open(ctx, otherClient, s.other.ID, w.ID, nil)
	require.ErrorIs(t, err, coordinator.ErrUnauthorized)
}

func (s *IntegrationTestSuite) TestProgression() {
	t := s.T()
	ctx := context.Background()
	client := s.loggedInClient(ctx, s.other)

	resp, err := client.Progression(ctx, progression.RangeOneMonth, 0)
	require.NoError(t, err)
	assert.Empty(t, resp.Data)

	_, err = client.Progression(ctx, progression.RangeAll, 1)
	require.ErrorIs(t, err, apiclient.ErrNotFound)

	_, err = client.AddTracked(ctx, 1)
	require.NoError(t, err)
	// tracking twice is a no-op
	_, err = client.AddTracked(ctx, 1)
	require.NoError(t, err)

	for _, weight := range []int{100, 150} {
		w, err := client.CreateWorkout(ctx, workouts.NewWorkout{Title: "bench"})
		require.NoError(t, err)
		e, err := client.CreateExercise(ctx, workouts.NewExercise{WorkoutID: w.ID, ExerciseSelectionID: 1})
		require.NoError(t, err)
		_, err = client.CreateSet(ctx, workouts.NewSet{ExerciseID: e.ID, Reps: intp(30), Weight: intp(weight)})
		require.NoError(t, err)
		// completion is refused while a set has no weight
		_, err = client.CreateSet(ctx, workouts.NewSet{ExerciseID: e.ID, Order: 1, Reps: intp(10)})
		require.NoError(t, err)
		_, err = client.CompleteWorkout(ctx, w.ID, workouts.Completion{CompletedAt: time.Now()})
		require.ErrorAs(t, err, new(*workouts.ValidationError))

		sets, err := client.ListSets(ctx, w.ID)
		require.NoError(t, err)
		require.NoError(t, client.DeleteSet(ctx, sets[1].ID))
		_, err = client.CompleteWorkout(ctx, w.ID, workouts.Completion{CompletedAt: time.Now()})
		require.NoError(t, err)
	}

	resp, err = client.Progression(ctx, progression.RangeAll, 1)
	require.NoError(t, err)
	points, ok := resp.Data.([]progression.WeeklyE1RMPoint)
	require.True(t, ok)
	require.Len(t, points, 1)
	assert.InDelta(t, 300.0, points[0].E1RM, 1e-9)

	resp, err = client.Progression(ctx, progression.RangeAll, 0)
	require.NoError(t, err)
	volume, ok := resp.Data.([]progression.WeeklyMuscleGroupPoint)
	require.True(t, ok)
	require.Len(t, volume, 1)
	assert.InDelta(t, 2.0, volume[0].Volume["chest"], 1e-9)
	assert.InDelta(t, 1.0, volume[0].Volume["triceps"], 1e-9)

	_, err = client.Progression(ctx, progression.RangeToken("5d"), 0)
	require.ErrorAs(t, err, new(*workouts.ValidationError))
}

func strp(s string) *string {
	return &s
}
