package workouts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/telemetry/metrics"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// HistoryListener is notified when the completed-workout history of a user changes.
type HistoryListener interface {
	HistoryChanged(userID int)
}

// Service is the action layer over a Store: ownership checks, validation,
// the read-only rule for completed workouts, and template instantiation.
type Service struct {
	store          Store
	listener       HistoryListener
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewService(store Store, listener HistoryListener, metricsManager *metrics.Manager) *Service {
	return &Service{
		store:          store,
		listener:       listener,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

func (s *Service) countWrite(entity, op string) {
	if s.metricsManager == nil {
		return
	}
	s.metricsManager.CounterWrites.With(prometheus.Labels{"entity": entity, "op": op}).Inc()
}

func (s *Service) historyChanged(userID int) {
	if s.listener != nil {
		s.listener.HistoryChanged(userID)
	}
}

func (s *Service) CreateUser(ctx context.Context, username, password string) (*auth.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, NewValidationError("username", "must not be empty")
	}
	if len(password) < 6 {
		return nil, NewValidationError("password", "must be at least 6 characters")
	}
	hash, err := pkg.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.store.CreateUser(ctx, username, hash)
}

func (s *Service) ownedWorkout(ctx context.Context, userID, workoutID int) (*Workout, error) {
	w, err := s.store.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, ErrUnauthorized
	}
	return w, nil
}

func (s *Service) ownedExercise(ctx context.Context, userID, exerciseID int) (*Exercise, *Workout, error) {
	e, err := s.store.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, nil, err
	}
	w, err := s.ownedWorkout(ctx, userID, e.WorkoutID)
	if err != nil {
		return nil, nil, err
	}
	return e, w, nil
}

func (s *Service) ownedSet(ctx context.Context, userID, setID int) (*Set, *Workout, error) {
	st, err := s.store.GetSet(ctx, setID)
	if err != nil {
		return nil, nil, err
	}
	_, w, err := s.ownedExercise(ctx, userID, st.ExerciseID)
	if err != nil {
		return nil, nil, err
	}
	return st, w, nil
}

func writable(w *Workout) error {
	if w.Completed {
		return ErrWorkoutCompleted
	}
	return nil
}

func (s *Service) Selections(ctx context.Context) ([]ExerciseSelection, error) {
	return s.store.ListSelections(ctx)
}

func (s *Service) ListTemplates(ctx context.Context, userID int) ([]Template, error) {
	return s.store.ListTemplates(ctx, userID)
}

func (s *Service) CreateTemplate(ctx context.Context, userID int, t Template) (*Template, error) {
	if err := validateTitle(t.Title); err != nil {
		return nil, err
	}
	for _, te := range t.Exercises {
		if te.Sets < 0 {
			return nil, NewValidationError("sets", "must not be negative")
		}
		if _, err := s.store.SelectionByName(ctx, te.ExerciseSelectionName); err != nil {
			if errors.Is(err, ErrSelectionNotFound) {
				return nil, NewValidationError("exerciseSelectionName", "unknown exercise selection %q", te.ExerciseSelectionName)
			}
			return nil, err
		}
	}
	t.UserID = userID
	created, err := s.store.CreateTemplate(ctx, t)
	if err != nil {
		return nil, err
	}
	s.countWrite("template", "create")
	return created, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, userID, templateID int) error {
	t, err := s.store.GetTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if t.UserID != userID {
		return ErrUnauthorized
	}
	if err := s.store.DeleteTemplate(ctx, templateID); err != nil {
		return err
	}
	s.countWrite("template", "delete")
	return nil
}

// CreateWorkout creates an empty workout, or when a template is given, a
// workout seeded with the template's exercises and their empty sets.
func (s *Service) CreateWorkout(ctx context.Context, userID int, nw NewWorkout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var plan []PlannedExercise
	if nw.TemplateID != nil {
		span.SetAttributes(attribute.Int("template.id", *nw.TemplateID))
		t, err := s.store.GetTemplate(ctx, *nw.TemplateID)
		if err != nil {
			return nil, err
		}
		if t.UserID != userID {
			return nil, ErrUnauthorized
		}
		if strings.TrimSpace(nw.Title) == "" {
			nw.Title = t.Title
		}
		if nw.Description == "" {
			nw.Description = t.Description
		}
		for _, te := range t.Exercises {
			es, err := s.store.SelectionByName(ctx, te.ExerciseSelectionName)
			if err != nil {
				if errors.Is(err, ErrSelectionNotFound) {
					return nil, NewValidationError("exerciseSelectionName", "unknown exercise selection %q", te.ExerciseSelectionName)
				}
				return nil, err
			}
			plan = append(plan, PlannedExercise{ExerciseSelectionID: es.ID, Sets: te.Sets})
		}
	}

	if err := validateTitle(nw.Title); err != nil {
		return nil, err
	}

	w, err := s.store.CreateWorkout(ctx, userID, nw, plan, s.now())
	if err != nil {
		return nil, err
	}
	s.countWrite("workout", "create")
	log.Debugf("workout %d created for user %d with %d planned exercises", w.ID, userID, len(plan))
	return w, nil
}

func (s *Service) ListWorkouts(ctx context.Context, userID int) ([]Workout, error) {
	return s.store.ListWorkouts(ctx, userID)
}

func (s *Service) GetWorkout(ctx context.Context, userID, workoutID int) (*Workout, error) {
	return s.ownedWorkout(ctx, userID, workoutID)
}

func (s *Service) DeleteWorkout(ctx context.Context, userID, workoutID int) error {
	w, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteWorkout(ctx, workoutID); err != nil {
		return err
	}
	s.countWrite("workout", "delete")
	if w.Completed {
		s.historyChanged(userID)
	}
	return nil
}

func (s *Service) CompleteWorkout(ctx context.Context, userID, workoutID int, completion Completion) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.complete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	w, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if err := writable(w); err != nil {
		return nil, err
	}

	exercises, err := s.store.ListExercises(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	sets, err := s.store.ListSets(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if err := ValidateCompletion(exercises, sets); err != nil {
		return nil, err
	}

	if completion.CompletedAt.IsZero() {
		completion.CompletedAt = s.now()
	}
	completed, err := s.store.CompleteWorkout(ctx, workoutID, completion)
	if err != nil {
		return nil, err
	}

	s.countWrite("workout", "complete")
	if s.metricsManager != nil {
		s.metricsManager.CounterCompletedWorkouts.Inc()
	}
	s.historyChanged(userID)
	return completed, nil
}

func (s *Service) UpdateWorkoutSentiment(ctx context.Context, userID, workoutID int, sentiment Sentiment) (*Workout, error) {
	if !sentiment.Valid() {
		return nil, NewValidationError("sentiment", "must be one of good, medium, bad")
	}
	if _, err := s.ownedWorkout(ctx, userID, workoutID); err != nil {
		return nil, err
	}
	w, err := s.store.UpdateWorkoutSentiment(ctx, workoutID, sentiment)
	if err != nil {
		return nil, err
	}
	s.countWrite("workout", "sentiment")
	return w, nil
}

func (s *Service) ListExercises(ctx context.Context, userID, workoutID int) ([]Exercise, error) {
	if _, err := s.ownedWorkout(ctx, userID, workoutID); err != nil {
		return nil, err
	}
	return s.store.ListExercises(ctx, workoutID)
}

func (s *Service) CreateExercise(ctx context.Context, userID int, ne NewExercise) (*Exercise, error) {
	w, err := s.ownedWorkout(ctx, userID, ne.WorkoutID)
	if err != nil {
		return nil, err
	}
	if err := writable(w); err != nil {
		return nil, err
	}
	if _, err := s.store.GetSelection(ctx, ne.ExerciseSelectionID); err != nil {
		if errors.Is(err, ErrSelectionNotFound) {
			return nil, NewValidationError("exerciseSelectionId", "unknown exercise selection %d", ne.ExerciseSelectionID)
		}
		return nil, err
	}

	existing, err := s.store.ListExercises(ctx, ne.WorkoutID)
	if err != nil {
		return nil, err
	}
	if ne.Order < 0 || ne.Order > len(existing) {
		return nil, NewValidationError("order", "position %d out of range [0, %d]", ne.Order, len(existing))
	}

	e, err := s.store.CreateExercise(ctx, ne)
	if err != nil {
		return nil, err
	}
	s.countWrite("exercise", "create")
	return e, nil
}

func (s *Service) DeleteExercise(ctx context.Context, userID, exerciseID int) error {
	_, w, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return err
	}
	if err := writable(w); err != nil {
		return err
	}
	if err := s.store.DeleteExercise(ctx, exerciseID); err != nil {
		return err
	}
	s.countWrite("exercise", "delete")
	return nil
}

func (s *Service) UpdateExerciseNote(ctx context.Context, userID, exerciseID int, note *string) (*Exercise, error) {
	if _, _, err := s.ownedExercise(ctx, userID, exerciseID); err != nil {
		return nil, err
	}
	e, err := s.store.UpdateExerciseNote(ctx, exerciseID, note)
	if err != nil {
		return nil, err
	}
	s.countWrite("exercise", "note")
	return e, nil
}

func (s *Service) ReorderExercises(ctx context.Context, userID, workoutID int, updates []OrderUpdate) error {
	w, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return err
	}
	if err := writable(w); err != nil {
		return err
	}
	if err := validateOrderUpdates(updates); err != nil {
		return err
	}
	if err := s.store.ReorderExercises(ctx, workoutID, updates); err != nil {
		return err
	}
	s.countWrite("exercise", "reorder")
	return nil
}

func (s *Service) ListSets(ctx context.Context, userID, workoutID int) ([]Set, error) {
	if _, err := s.ownedWorkout(ctx, userID, workoutID); err != nil {
		return nil, err
	}
	return s.store.ListSets(ctx, workoutID)
}

func (s *Service) CreateSet(ctx context.Context, userID int, ns NewSet) (*Set, error) {
	_, w, err := s.ownedExercise(ctx, userID, ns.ExerciseID)
	if err != nil {
		return nil, err
	}
	if err := writable(w); err != nil {
		return nil, err
	}
	sets, err := s.store.ListSets(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	existing := 0
	for _, st := range sets {
		if st.ExerciseID == ns.ExerciseID {
			existing++
		}
	}
	if ns.Order < 0 || ns.Order > existing {
		return nil, NewValidationError("order", "position %d out of range [0, %d]", ns.Order, existing)
	}
	if err := validateSetFields(SetFields{
		Reps:         ns.Reps,
		Weight:       ns.Weight,
		TargetReps:   ns.TargetReps,
		TargetWeight: ns.TargetWeight,
	}); err != nil {
		return nil, err
	}
	st, err := s.store.CreateSet(ctx, ns)
	if err != nil {
		return nil, err
	}
	s.countWrite("set", "create")
	return st, nil
}

func (s *Service) DeleteSet(ctx context.Context, userID, setID int) error {
	_, w, err := s.ownedSet(ctx, userID, setID)
	if err != nil {
		return err
	}
	if err := writable(w); err != nil {
		return err
	}
	if err := s.store.DeleteSet(ctx, setID); err != nil {
		return err
	}
	s.countWrite("set", "delete")
	return nil
}

func (s *Service) UpdateSet(ctx context.Context, userID, setID int, fields SetFields) (*Set, error) {
	_, w, err := s.ownedSet(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	if err := writable(w); err != nil {
		return nil, err
	}
	if err := validateSetFields(fields); err != nil {
		return nil, err
	}
	st, err := s.store.UpdateSet(ctx, setID, fields)
	if err != nil {
		return nil, err
	}
	s.countWrite("set", "update")
	return st, nil
}

func (s *Service) ReorderSets(ctx context.Context, userID, exerciseID int, updates []OrderUpdate) error {
	_, w, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return err
	}
	if err := writable(w); err != nil {
		return err
	}
	if err := validateOrderUpdates(updates); err != nil {
		return err
	}
	if err := s.store.ReorderSets(ctx, exerciseID, updates); err != nil {
		return err
	}
	s.countWrite("set", "reorder")
	return nil
}

func (s *Service) ListTracked(ctx context.Context, userID int) ([]TrackedExercise, error) {
	return s.store.ListTracked(ctx, userID)
}

// AddTracked is a no-op success when the selection is already tracked.
func (s *Service) AddTracked(ctx context.Context, userID, selectionID int) (*TrackedExercise, error) {
	te, err := s.store.AddTracked(ctx, userID, selectionID)
	if err != nil {
		return nil, err
	}
	s.countWrite("tracked", "add")
	return te, nil
}

func (s *Service) RemoveTracked(ctx context.Context, userID, selectionID int) error {
	if err := s.store.RemoveTracked(ctx, userID, selectionID); err != nil {
		return err
	}
	s.countWrite("tracked", "remove")
	return nil
}

func (s *Service) IsTracked(ctx context.Context, userID, selectionID int) (bool, error) {
	return s.store.IsTracked(ctx, userID, selectionID)
}
