package workouts

import "time"

type Sentiment string

const (
	SentimentGood   Sentiment = "good"
	SentimentMedium Sentiment = "medium"
	SentimentBad    Sentiment = "bad"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentGood, SentimentMedium, SentimentBad:
		return true
	}
	return false
}

type Workout struct {
	ID          int        `json:"id"`
	UserID      int        `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Sentiment   *Sentiment `json:"sentiment,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ExerciseSelection is an entry of the seeded exercise catalog.
type ExerciseSelection struct {
	ID                   int     `json:"id"`
	Name                 string  `json:"name"`
	Category             string  `json:"category"`
	PrimaryMuscleGroup   string  `json:"primaryMuscleGroup"`
	SecondaryMuscleGroup *string `json:"secondaryMuscleGroup,omitempty"`
}

// Exercise is a workout's instance of an ExerciseSelection.
// Order is zero-based and contiguous within the workout.
type Exercise struct {
	ID                  int       `json:"id"`
	WorkoutID           int       `json:"workoutId"`
	ExerciseSelectionID int       `json:"exerciseSelectionId"`
	SelectionName       string    `json:"selectionName"`
	Order               int       `json:"order"`
	Note                *string   `json:"note,omitempty"`
	RepLowerBound       *int      `json:"repLowerBound,omitempty"`
	RepUpperBound       *int      `json:"repUpperBound,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Set is a single performed set. Weight is in pounds.
// Order is zero-based and contiguous within the exercise.
type Set struct {
	ID           int       `json:"id"`
	ExerciseID   int       `json:"exerciseId"`
	Order        int       `json:"order"`
	Reps         *int      `json:"reps"`
	Weight       *int      `json:"weight"`
	TargetReps   *int      `json:"targetReps,omitempty"`
	TargetWeight *int      `json:"targetWeight,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsComplete reports whether both reps and weight were recorded.
func (s Set) IsComplete() bool {
	return s.Reps != nil && s.Weight != nil
}

type TrackedExercise struct {
	ID                  int       `json:"id"`
	UserID              int       `json:"userId"`
	ExerciseSelectionID int       `json:"exerciseSelectionId"`
	CreatedAt           time.Time `json:"createdAt"`
}

type Template struct {
	ID          int                `json:"id"`
	UserID      int                `json:"userId"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Exercises   []TemplateExercise `json:"exercises"`
}

type TemplateExercise struct {
	ExerciseSelectionName string `json:"exerciseSelectionName"`
	Sets                  int    `json:"sets"`
}

type NewWorkout struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TemplateID  *int   `json:"templateId,omitempty"`
}

type NewExercise struct {
	WorkoutID           int     `json:"workoutId"`
	ExerciseSelectionID int     `json:"exerciseSelectionId"`
	Order               int     `json:"order"`
	Note                *string `json:"note,omitempty"`
	RepLowerBound       *int    `json:"repLowerBound,omitempty"`
	RepUpperBound       *int    `json:"repUpperBound,omitempty"`
}

type NewSet struct {
	ExerciseID   int  `json:"exerciseId"`
	Order        int  `json:"order"`
	Reps         *int `json:"reps"`
	Weight       *int `json:"weight"`
	TargetReps   *int `json:"targetReps,omitempty"`
	TargetWeight *int `json:"targetWeight,omitempty"`
}

// SetFields are the user-editable fields of a set.
type SetFields struct {
	Reps         *int `json:"reps"`
	Weight       *int `json:"weight"`
	TargetReps   *int `json:"targetReps,omitempty"`
	TargetWeight *int `json:"targetWeight,omitempty"`
}

func (s Set) Fields() SetFields {
	return SetFields{
		Reps:         s.Reps,
		Weight:       s.Weight,
		TargetReps:   s.TargetReps,
		TargetWeight: s.TargetWeight,
	}
}

func (s *Set) Apply(f SetFields) {
	s.Reps = f.Reps
	s.Weight = f.Weight
	s.TargetReps = f.TargetReps
	s.TargetWeight = f.TargetWeight
}

type OrderUpdate struct {
	ID    int `json:"id"`
	Order int `json:"order"`
}

// Completion marks a workout done. ExerciseNotes holds the final note per
// exercise id, persisted together with the completion flag.
type Completion struct {
	CompletedAt   time.Time       `json:"completedAt"`
	ExerciseNotes map[int]*string `json:"exerciseNotes,omitempty"`
}

// SetRecord is a performed set joined with its workout and catalog entry,
// the row shape consumed by the progression aggregator.
type SetRecord struct {
	SetID                int
	WorkoutID            int
	ExerciseSelectionID  int
	PrimaryMuscleGroup   string
	SecondaryMuscleGroup *string
	Reps                 *int
	Weight               *int
	CompletedAt          time.Time
}
