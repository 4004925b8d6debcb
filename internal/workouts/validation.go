package workouts

import "strings"

// ValidateCompletion checks that a workout can be marked as completed:
// at least one exercise, at least one set, and every set has reps and weight.
func ValidateCompletion(exercises []Exercise, sets []Set) error {
	if len(exercises) == 0 {
		return NewValidationError("exercises", "workout has no exercises")
	}
	if len(sets) == 0 {
		return NewValidationError("sets", "workout has no sets")
	}

	names := make(map[int]string, len(exercises))
	for _, e := range exercises {
		names[e.ID] = e.SelectionName
	}
	for _, s := range sets {
		if s.IsComplete() {
			continue
		}
		name := names[s.ExerciseID]
		if name == "" {
			name = "exercise"
		}
		return NewValidationError("sets", "set %d of %s is missing reps or weight", s.Order+1, name)
	}
	return nil
}

func validateSetFields(f SetFields) error {
	if f.Reps != nil && *f.Reps < 0 {
		return NewValidationError("reps", "must not be negative")
	}
	if f.Weight != nil && *f.Weight < 0 {
		return NewValidationError("weight", "must not be negative")
	}
	if f.TargetReps != nil && *f.TargetReps < 0 {
		return NewValidationError("targetReps", "must not be negative")
	}
	if f.TargetWeight != nil && *f.TargetWeight < 0 {
		return NewValidationError("targetWeight", "must not be negative")
	}
	return nil
}

func validateOrderUpdates(updates []OrderUpdate) error {
	seenIDs := make(map[int]bool, len(updates))
	seenOrders := make(map[int]bool, len(updates))
	for _, u := range updates {
		if u.Order < 0 {
			return NewValidationError("order", "must not be negative")
		}
		if seenIDs[u.ID] {
			return NewValidationError("id", "duplicate id %d", u.ID)
		}
		if seenOrders[u.Order] {
			return NewValidationError("order", "duplicate order %d", u.Order)
		}
		seenIDs[u.ID] = true
		seenOrders[u.Order] = true
	}
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return NewValidationError("title", "must not be empty")
	}
	return nil
}
