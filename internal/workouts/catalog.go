package workouts

func strPtr(s string) *string {
	return &s
}

// DefaultSelections is the seeded exercise catalog, mirrored by sql/seed.sql.
func DefaultSelections() []ExerciseSelection {
	return []ExerciseSelection{
		{ID: 1, Name: "Bench Press", Category: "barbell", PrimaryMuscleGroup: "chest", SecondaryMuscleGroup: strPtr("triceps")},
		{ID: 2, Name: "Incline Dumbbell Press", Category: "dumbbell", PrimaryMuscleGroup: "chest", SecondaryMuscleGroup: strPtr("shoulders")},
		{ID: 3, Name: "Back Squat", Category: "barbell", PrimaryMuscleGroup: "legs", SecondaryMuscleGroup: strPtr("glutes")},
		{ID: 4, Name: "Deadlift", Category: "barbell", PrimaryMuscleGroup: "back", SecondaryMuscleGroup: strPtr("legs")},
		{ID: 5, Name: "Pull Up", Category: "bodyweight", PrimaryMuscleGroup: "back", SecondaryMuscleGroup: strPtr("biceps")},
		{ID: 6, Name: "Overhead Press", Category: "barbell", PrimaryMuscleGroup: "shoulders", SecondaryMuscleGroup: strPtr("triceps")},
		{ID: 7, Name: "Barbell Row", Category: "barbell", PrimaryMuscleGroup: "back"},
		{ID: 8, Name: "Bicep Curl", Category: "dumbbell", PrimaryMuscleGroup: "biceps"},
		{ID: 9, Name: "Tricep Pushdown", Category: "cable", PrimaryMuscleGroup: "triceps"},
		{ID: 10, Name: "Leg Press", Category: "machine", PrimaryMuscleGroup: "legs"},
	}
}
