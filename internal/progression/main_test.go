package progression_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/2beens/liftlog/internal/workouts"

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

func record(setID int, completedAt time.Time, primary string, secondary *string, weight, reps *int) workouts.SetRecord {
	return workouts.SetRecord{
		SetID:                setID,
		WorkoutID:            1,
		ExerciseSelectionID:  1,
		PrimaryMuscleGroup:   primary,
		SecondaryMuscleGroup: secondary,
		Reps:                 reps,
		Weight:               weight,
		CompletedAt:          completedAt,
	}
}
