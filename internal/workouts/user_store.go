package workouts

import "context"

// UserStore binds the Service to one caller, giving the remote write surface
// used by a mutation coordinator running in-process.
type UserStore struct {
	service *Service
	userID  int
}

func (s *Service) ForUser(userID int) *UserStore {
	return &UserStore{
		service: s,
		userID:  userID,
	}
}

func (u *UserStore) UserID() int {
	return u.userID
}

// GetWorkout returns the workout without an ownership check, the caller
// compares the owner itself.
func (u *UserStore) GetWorkout(ctx context.Context, workoutID int) (*Workout, error) {
	return u.service.store.GetWorkout(ctx, workoutID)
}

func (u *UserStore) ListExercises(ctx context.Context, workoutID int) ([]Exercise, error) {
	return u.service.ListExercises(ctx, u.userID, workoutID)
}

func (u *UserStore) ListSets(ctx context.Context, workoutID int) ([]Set, error) {
	return u.service.ListSets(ctx, u.userID, workoutID)
}

func (u *UserStore) CreateExercise(ctx context.Context, ne NewExercise) (*Exercise, error) {
	return u.service.CreateExercise(ctx, u.userID, ne)
}

func (u *UserStore) DeleteExercise(ctx context.Context, exerciseID int) error {
	return u.service.DeleteExercise(ctx, u.userID, exerciseID)
}

func (u *UserStore) UpdateExerciseNote(ctx context.Context, exerciseID int, note *string) (*Exercise, error) {
	return u.service.UpdateExerciseNote(ctx, u.userID, exerciseID, note)
}

func (u *UserStore) CreateSet(ctx context.Context, ns NewSet) (*Set, error) {
	return u.service.CreateSet(ctx, u.userID, ns)
}

func (u *UserStore) DeleteSet(ctx context.Context, setID int) error {
	return u.service.DeleteSet(ctx, u.userID, setID)
}

func (u *UserStore) UpdateSet(ctx context.Context, setID int, fields SetFields) (*Set, error) {
	return u.service.UpdateSet(ctx, u.userID, setID, fields)
}

func (u *UserStore) CompleteWorkout(ctx context.Context, workoutID int, completion Completion) (*Workout, error) {
	return u.service.CompleteWorkout(ctx, u.userID, workoutID, completion)
}

func (u *UserStore) UpdateWorkoutSentiment(ctx context.Context, workoutID int, sentiment Sentiment) (*Workout, error) {
	return u.service.UpdateWorkoutSentiment(ctx, u.userID, workoutID, sentiment)
}
