package workouts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/2beens/liftlog/internal/auth"
)

// MemStore is an in-memory Store. It keeps the same atomicity and cascade
// semantics as Repo, every method runs under one lock.
type MemStore struct {
	mu sync.Mutex

	nextID     int
	now        func() time.Time
	users      map[int]auth.User
	workouts   map[int]Workout
	exercises  map[int]Exercise
	sets       map[int]Set
	selections map[int]ExerciseSelection
	tracked    map[int]TrackedExercise
	templates  map[int]Template
}

func NewMemStore(selections ...ExerciseSelection) *MemStore {
	s := &MemStore{
		nextID:     1000,
		now:        time.Now,
		users:      map[int]auth.User{},
		workouts:   map[int]Workout{},
		exercises:  map[int]Exercise{},
		sets:       map[int]Set{},
		selections: map[int]ExerciseSelection{},
		tracked:    map[int]TrackedExercise{},
		templates:  map[int]Template{},
	}
	for _, es := range selections {
		s.selections[es.ID] = es
	}
	return s
}

func (s *MemStore) id() int {
	s.nextID++
	return s.nextID
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneExercise(e Exercise) Exercise {
	e.Note = cloneString(e.Note)
	e.RepLowerBound = cloneInt(e.RepLowerBound)
	e.RepUpperBound = cloneInt(e.RepUpperBound)
	return e
}

func cloneSet(st Set) Set {
	st.Reps = cloneInt(st.Reps)
	st.Weight = cloneInt(st.Weight)
	st.TargetReps = cloneInt(st.TargetReps)
	st.TargetWeight = cloneInt(st.TargetWeight)
	return st
}

func cloneWorkout(w Workout) Workout {
	if w.Sentiment != nil {
		sentiment := *w.Sentiment
		w.Sentiment = &sentiment
	}
	if w.CompletedAt != nil {
		completedAt := *w.CompletedAt
		w.CompletedAt = &completedAt
	}
	return w
}

func (s *MemStore) UserByUsername(_ context.Context, username string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (s *MemStore) CreateUser(_ context.Context, username, passwordHash string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return nil, ErrUsernameTaken
		}
	}
	u := auth.User{
		ID:           s.id(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}
	s.users[u.ID] = u
	return &u, nil
}

func (s *MemStore) CreateWorkout(_ context.Context, userID int, nw NewWorkout, plan []PlannedExercise, createdAt time.Time) (*Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pe := range plan {
		if _, ok := s.selections[pe.ExerciseSelectionID]; !ok {
			return nil, ErrSelectionNotFound
		}
	}

	w := Workout{
		ID:          s.id(),
		UserID:      userID,
		Title:       nw.Title,
		Description: nw.Description,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	s.workouts[w.ID] = w

	for i, pe := range plan {
		e := Exercise{
			ID:                  s.id(),
			WorkoutID:           w.ID,
			ExerciseSelectionID: pe.ExerciseSelectionID,
			SelectionName:       s.selections[pe.ExerciseSelectionID].Name,
			Order:               i,
			CreatedAt:           createdAt,
			UpdatedAt:           createdAt,
		}
		s.exercises[e.ID] = e
		for j := 0; j < pe.Sets; j++ {
			st := Set{
				ID:         s.id(),
				ExerciseID: e.ID,
				Order:      j,
				CreatedAt:  createdAt,
				UpdatedAt:  createdAt,
			}
			s.sets[st.ID] = st
		}
	}

	c := cloneWorkout(w)
	return &c, nil
}

func (s *MemStore) GetWorkout(_ context.Context, id int) (*Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workouts[id]
	if !ok {
		return nil, ErrWorkoutNotFound
	}
	c := cloneWorkout(w)
	return &c, nil
}

func (s *MemStore) ListWorkouts(_ context.Context, userID int) ([]Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Workout, 0)
	for _, w := range s.workouts {
		if w.UserID == userID {
			list = append(list, cloneWorkout(w))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (s *MemStore) DeleteWorkout(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workouts[id]; !ok {
		return ErrWorkoutNotFound
	}
	delete(s.workouts, id)
	for eid, e := range s.exercises {
		if e.WorkoutID == id {
			s.deleteExerciseLocked(eid)
		}
	}
	return nil
}

func (s *MemStore) CompleteWorkout(_ context.Context, id int, completion Completion) (*Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workouts[id]
	if !ok {
		return nil, ErrWorkoutNotFound
	}
	for exerciseID := range completion.ExerciseNotes {
		if e, ok := s.exercises[exerciseID]; !ok || e.WorkoutID != id {
			return nil, ErrExerciseNotFound
		}
	}

	now := s.now()
	for exerciseID, note := range completion.ExerciseNotes {
		e := s.exercises[exerciseID]
		e.Note = cloneString(note)
		e.UpdatedAt = now
		s.exercises[exerciseID] = e
	}

	completedAt := completion.CompletedAt
	w.Completed = true
	w.CompletedAt = &completedAt
	w.UpdatedAt = now
	s.workouts[id] = w
	c := cloneWorkout(w)
	return &c, nil
}

func (s *MemStore) UpdateWorkoutSentiment(_ context.Context, id int, sentiment Sentiment) (*Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workouts[id]
	if !ok {
		return nil, ErrWorkoutNotFound
	}
	w.Sentiment = &sentiment
	w.UpdatedAt = s.now()
	s.workouts[id] = w
	c := cloneWorkout(w)
	return &c, nil
}

func (s *MemStore) GetExercise(_ context.Context, id int) (*Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.exercises[id]
	if !ok {
		return nil, ErrExerciseNotFound
	}
	c := cloneExercise(e)
	return &c, nil
}

func (s *MemStore) ListExercises(_ context.Context, workoutID int) ([]Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Exercise, 0)
	for _, e := range s.exercises {
		if e.WorkoutID == workoutID {
			list = append(list, cloneExercise(e))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Order < list[j].Order
	})
	return list, nil
}

func (s *MemStore) CreateExercise(_ context.Context, ne NewExercise) (*Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workouts[ne.WorkoutID]; !ok {
		return nil, ErrWorkoutNotFound
	}
	selection, ok := s.selections[ne.ExerciseSelectionID]
	if !ok {
		return nil, ErrSelectionNotFound
	}

	now := s.now()
	for id, e := range s.exercises {
		if e.WorkoutID == ne.WorkoutID && e.Order >= ne.Order {
			e.Order++
			e.UpdatedAt = now
			s.exercises[id] = e
		}
	}

	e := Exercise{
		ID:                  s.id(),
		WorkoutID:           ne.WorkoutID,
		ExerciseSelectionID: ne.ExerciseSelectionID,
		SelectionName:       selection.Name,
		Order:               ne.Order,
		Note:                cloneString(ne.Note),
		RepLowerBound:       cloneInt(ne.RepLowerBound),
		RepUpperBound:       cloneInt(ne.RepUpperBound),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	s.exercises[e.ID] = e
	c := cloneExercise(e)
	return &c, nil
}

func (s *MemStore) deleteExerciseLocked(id int) {
	delete(s.exercises, id)
	for sid, st := range s.sets {
		if st.ExerciseID == id {
			delete(s.sets, sid)
		}
	}
}

// DeleteExercise also moves the later siblings up by one.
func (s *MemStore) DeleteExercise(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted, ok := s.exercises[id]
	if !ok {
		return ErrExerciseNotFound
	}
	s.deleteExerciseLocked(id)

	now := s.now()
	for eid, e := range s.exercises {
		if e.WorkoutID == deleted.WorkoutID && e.Order > deleted.Order {
			e.Order--
			e.UpdatedAt = now
			s.exercises[eid] = e
		}
	}
	return nil
}

func (s *MemStore) UpdateExerciseNote(_ context.Context, id int, note *string) (*Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.exercises[id]
	if !ok {
		return nil, ErrExerciseNotFound
	}
	e.Note = cloneString(note)
	e.UpdatedAt = s.now()
	s.exercises[id] = e
	c := cloneExercise(e)
	return &c, nil
}

func (s *MemStore) ReorderExercises(_ context.Context, workoutID int, updates []OrderUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range updates {
		if e, ok := s.exercises[u.ID]; !ok || e.WorkoutID != workoutID {
			return ErrExerciseNotFound
		}
	}
	now := s.now()
	for _, u := range updates {
		e := s.exercises[u.ID]
		e.Order = u.Order
		e.UpdatedAt = now
		s.exercises[u.ID] = e
	}
	return nil
}

func (s *MemStore) GetSet(_ context.Context, id int) (*Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sets[id]
	if !ok {
		return nil, ErrSetNotFound
	}
	c := cloneSet(st)
	return &c, nil
}

func (s *MemStore) ListSets(_ context.Context, workoutID int) ([]Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Set, 0)
	for _, st := range s.sets {
		if e, ok := s.exercises[st.ExerciseID]; ok && e.WorkoutID == workoutID {
			list = append(list, cloneSet(st))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		ei, ej := s.exercises[list[i].ExerciseID], s.exercises[list[j].ExerciseID]
		if ei.Order != ej.Order {
			return ei.Order < ej.Order
		}
		return list[i].Order < list[j].Order
	})
	return list, nil
}

func (s *MemStore) CreateSet(_ context.Context, ns NewSet) (*Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exercises[ns.ExerciseID]; !ok {
		return nil, ErrExerciseNotFound
	}
	now := s.now()
	for id, st := range s.sets {
		if st.ExerciseID == ns.ExerciseID && st.Order >= ns.Order {
			st.Order++
			st.UpdatedAt = now
			s.sets[id] = st
		}
	}
	st := Set{
		ID:           s.id(),
		ExerciseID:   ns.ExerciseID,
		Order:        ns.Order,
		Reps:         cloneInt(ns.Reps),
		Weight:       cloneInt(ns.Weight),
		TargetReps:   cloneInt(ns.TargetReps),
		TargetWeight: cloneInt(ns.TargetWeight),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.sets[st.ID] = st
	c := cloneSet(st)
	return &c, nil
}

// DeleteSet also moves the later sets of the same exercise up by one.
func (s *MemStore) DeleteSet(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted, ok := s.sets[id]
	if !ok {
		return ErrSetNotFound
	}
	delete(s.sets, id)

	now := s.now()
	for sid, st := range s.sets {
		if st.ExerciseID == deleted.ExerciseID && st.Order > deleted.Order {
			st.Order--
			st.UpdatedAt = now
			s.sets[sid] = st
		}
	}
	return nil
}

func (s *MemStore) UpdateSet(_ context.Context, id int, fields SetFields) (*Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sets[id]
	if !ok {
		return nil, ErrSetNotFound
	}
	st.Apply(SetFields{
		Reps:         cloneInt(fields.Reps),
		Weight:       cloneInt(fields.Weight),
		TargetReps:   cloneInt(fields.TargetReps),
		TargetWeight: cloneInt(fields.TargetWeight),
	})
	st.UpdatedAt = s.now()
	s.sets[id] = st
	c := cloneSet(st)
	return &c, nil
}

func (s *MemStore) ReorderSets(_ context.Context, exerciseID int, updates []OrderUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range updates {
		if st, ok := s.sets[u.ID]; !ok || st.ExerciseID != exerciseID {
			return ErrSetNotFound
		}
	}
	now := s.now()
	for _, u := range updates {
		st := s.sets[u.ID]
		st.Order = u.Order
		st.UpdatedAt = now
		s.sets[u.ID] = st
	}
	return nil
}

func (s *MemStore) ListSelections(_ context.Context) ([]ExerciseSelection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]ExerciseSelection, 0, len(s.selections))
	for _, es := range s.selections {
		list = append(list, es)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list, nil
}

func (s *MemStore) GetSelection(_ context.Context, id int) (*ExerciseSelection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	es, ok := s.selections[id]
	if !ok {
		return nil, ErrSelectionNotFound
	}
	return &es, nil
}

func (s *MemStore) SelectionByName(_ context.Context, name string) (*ExerciseSelection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, es := range s.selections {
		if es.Name == name {
			return &es, nil
		}
	}
	return nil, ErrSelectionNotFound
}

func (s *MemStore) ListTracked(_ context.Context, userID int) ([]TrackedExercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]TrackedExercise, 0)
	for _, te := range s.tracked {
		if te.UserID == userID {
			list = append(list, te)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (s *MemStore) AddTracked(_ context.Context, userID, selectionID int) (*TrackedExercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selections[selectionID]; !ok {
		return nil, ErrSelectionNotFound
	}
	for _, te := range s.tracked {
		if te.UserID == userID && te.ExerciseSelectionID == selectionID {
			return &te, nil
		}
	}
	te := TrackedExercise{
		ID:                  s.id(),
		UserID:              userID,
		ExerciseSelectionID: selectionID,
		CreatedAt:           s.now(),
	}
	s.tracked[te.ID] = te
	return &te, nil
}

func (s *MemStore) RemoveTracked(_ context.Context, userID, selectionID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, te := range s.tracked {
		if te.UserID == userID && te.ExerciseSelectionID == selectionID {
			delete(s.tracked, id)
			return nil
		}
	}
	return ErrTrackedNotFound
}

func (s *MemStore) IsTracked(_ context.Context, userID, selectionID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, te := range s.tracked {
		if te.UserID == userID && te.ExerciseSelectionID == selectionID {
			return true, nil
		}
	}
	return false, nil
}

func cloneTemplate(t Template) Template {
	t.Exercises = append([]TemplateExercise{}, t.Exercises...)
	return t
}

func (s *MemStore) ListTemplates(_ context.Context, userID int) ([]Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Template, 0)
	for _, t := range s.templates {
		if t.UserID == userID {
			list = append(list, cloneTemplate(t))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (s *MemStore) GetTemplate(_ context.Context, id int) (*Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	c := cloneTemplate(t)
	return &c, nil
}

func (s *MemStore) CreateTemplate(_ context.Context, t Template) (*Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	t = cloneTemplate(t)
	s.templates[t.ID] = t
	c := cloneTemplate(t)
	return &c, nil
}

func (s *MemStore) DeleteTemplate(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return ErrTemplateNotFound
	}
	delete(s.templates, id)
	return nil
}

func (s *MemStore) SetRecords(_ context.Context, userID int, since time.Time, selectionID *int) ([]SetRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SetRecord, 0)
	for _, st := range s.sets {
		e, ok := s.exercises[st.ExerciseID]
		if !ok {
			continue
		}
		if selectionID != nil && e.ExerciseSelectionID != *selectionID {
			continue
		}
		w, ok := s.workouts[e.WorkoutID]
		if !ok || w.UserID != userID || !w.Completed || w.CompletedAt == nil || w.CompletedAt.Before(since) {
			continue
		}
		es := s.selections[e.ExerciseSelectionID]
		records = append(records, SetRecord{
			SetID:                st.ID,
			WorkoutID:            w.ID,
			ExerciseSelectionID:  e.ExerciseSelectionID,
			PrimaryMuscleGroup:   es.PrimaryMuscleGroup,
			SecondaryMuscleGroup: cloneString(es.SecondaryMuscleGroup),
			Reps:                 cloneInt(st.Reps),
			Weight:               cloneInt(st.Weight),
			CompletedAt:          *w.CompletedAt,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CompletedAt.Equal(records[j].CompletedAt) {
			return records[i].CompletedAt.Before(records[j].CompletedAt)
		}
		return records[i].SetID < records[j].SetID
	})
	return records, nil
}
