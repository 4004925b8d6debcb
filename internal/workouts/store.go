package workouts

import (
	"context"
	"time"

	"github.com/2beens/liftlog/internal/auth"
)

var (
	_ Store = (*Repo)(nil)
	_ Store = (*MemStore)(nil)
)

// PlannedExercise is one exercise to create together with a new workout,
// with Sets empty sets under it.
type PlannedExercise struct {
	ExerciseSelectionID int
	Sets                int
}

// Store is the persistence collaborator. Writes touching more than one row
// (shifting siblings on insert, batch reorders, workout instantiation) are atomic.
type Store interface {
	auth.UserStore
	CreateUser(ctx context.Context, username, passwordHash string) (*auth.User, error)

	CreateWorkout(ctx context.Context, userID int, nw NewWorkout, plan []PlannedExercise, createdAt time.Time) (*Workout, error)
	GetWorkout(ctx context.Context, id int) (*Workout, error)
	ListWorkouts(ctx context.Context, userID int) ([]Workout, error)
	DeleteWorkout(ctx context.Context, id int) error
	CompleteWorkout(ctx context.Context, id int, completion Completion) (*Workout, error)
	UpdateWorkoutSentiment(ctx context.Context, id int, sentiment Sentiment) (*Workout, error)

	GetExercise(ctx context.Context, id int) (*Exercise, error)
	ListExercises(ctx context.Context, workoutID int) ([]Exercise, error)
	CreateExercise(ctx context.Context, ne NewExercise) (*Exercise, error)
	DeleteExercise(ctx context.Context, id int) error
	UpdateExerciseNote(ctx context.Context, id int, note *string) (*Exercise, error)
	ReorderExercises(ctx context.Context, workoutID int, updates []OrderUpdate) error

	GetSet(ctx context.Context, id int) (*Set, error)
	ListSets(ctx context.Context, workoutID int) ([]Set, error)
	CreateSet(ctx context.Context, ns NewSet) (*Set, error)
	DeleteSet(ctx context.Context, id int) error
	UpdateSet(ctx context.Context, id int, fields SetFields) (*Set, error)
	ReorderSets(ctx context.Context, exerciseID int, updates []OrderUpdate) error

	ListSelections(ctx context.Context) ([]ExerciseSelection, error)
	GetSelection(ctx context.Context, id int) (*ExerciseSelection, error)
	SelectionByName(ctx context.Context, name string) (*ExerciseSelection, error)

	ListTracked(ctx context.Context, userID int) ([]TrackedExercise, error)
	AddTracked(ctx context.Context, userID, selectionID int) (*TrackedExercise, error)
	RemoveTracked(ctx context.Context, userID, selectionID int) error
	IsTracked(ctx context.Context, userID, selectionID int) (bool, error)

	ListTemplates(ctx context.Context, userID int) ([]Template, error)
	GetTemplate(ctx context.Context, id int) (*Template, error)
	CreateTemplate(ctx context.Context, t Template) (*Template, error)
	DeleteTemplate(ctx context.Context, id int) error

	// SetRecords returns sets of the user's completed workouts with
	// completedAt >= since, optionally narrowed to one exercise selection.
	SetRecords(ctx context.Context, userID int, since time.Time, selectionID *int) ([]SetRecord, error)
}
