package workouts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/selections", handler.HandleListSelections).Methods("GET", "OPTIONS").Name("list-selections")

	r.HandleFunc("/templates", handler.HandleListTemplates).Methods("GET", "OPTIONS").Name("list-templates")
	r.HandleFunc("/templates", handler.HandleCreateTemplate).Methods("POST", "OPTIONS").Name("new-template")
	r.HandleFunc("/templates/{id}", handler.HandleDeleteTemplate).Methods("DELETE", "OPTIONS").Name("delete-template")

	r.HandleFunc("/workouts", handler.HandleListWorkouts).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/workouts", handler.HandleCreateWorkout).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/workouts/{id}", handler.HandleGetWorkout).Methods("GET", "OPTIONS").Name("get-workout")
	r.HandleFunc("/workouts/{id}", handler.HandleDeleteWorkout).Methods("DELETE", "OPTIONS").Name("delete-workout")
	r.HandleFunc("/workouts/{id}/complete", handler.HandleCompleteWorkout).Methods("POST", "OPTIONS").Name("complete-workout")
	r.HandleFunc("/workouts/{id}/sentiment", handler.HandleUpdateSentiment).Methods("PATCH", "OPTIONS").Name("update-sentiment")

	r.HandleFunc("/workouts/{id}/exercises", handler.HandleListExercises).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/workouts/{id}/exercises", handler.HandleCreateExercise).Methods("POST", "OPTIONS").Name("new-exercise")
	r.HandleFunc("/workouts/{id}/exercises/order", handler.HandleReorderExercises).Methods("PUT", "OPTIONS").Name("reorder-exercises")
	r.HandleFunc("/exercises/{id}/note", handler.HandleUpdateExerciseNote).Methods("PATCH", "OPTIONS").Name("update-exercise-note")
	r.HandleFunc("/exercises/{id}", handler.HandleDeleteExercise).Methods("DELETE", "OPTIONS").Name("delete-exercise")

	r.HandleFunc("/workouts/{id}/sets", handler.HandleListSets).Methods("GET", "OPTIONS").Name("list-sets")
	r.HandleFunc("/exercises/{id}/sets", handler.HandleCreateSet).Methods("POST", "OPTIONS").Name("new-set")
	r.HandleFunc("/exercises/{id}/sets/order", handler.HandleReorderSets).Methods("PUT", "OPTIONS").Name("reorder-sets")
	r.HandleFunc("/sets/{id}", handler.HandleUpdateSet).Methods("PATCH", "OPTIONS").Name("update-set")
	r.HandleFunc("/sets/{id}", handler.HandleDeleteSet).Methods("DELETE", "OPTIONS").Name("delete-set")

	r.HandleFunc("/tracked", handler.HandleListTracked).Methods("GET", "OPTIONS").Name("list-tracked")
	r.HandleFunc("/tracked", handler.HandleAddTracked).Methods("POST", "OPTIONS").Name("add-tracked")
	r.HandleFunc("/tracked/{selectionId}", handler.HandleRemoveTracked).Methods("DELETE", "OPTIONS").Name("remove-tracked")
}

// ErrorResponse is the JSON body of every non-2xx answer from this handler.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func StatusForError(err error) int {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrWorkoutCompleted):
		return http.StatusConflict
	case IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, op string, err error) {
	status := StatusForError(err)
	resp := ErrorResponse{Error: err.Error()}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		resp.Field = vErr.Field
	}
	if status == http.StatusInternalServerError {
		log.Errorf("%s: %s", op, err)
		resp.Error = op + " failed"
	} else {
		log.Tracef("%s: %s", op, err)
	}

	b, mErr := json.Marshal(resp)
	if mErr != nil {
		http.Error(w, op+" failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, b, status)
}

func writeJSON(w http.ResponseWriter, op string, v any, status int) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Errorf("%s, marshal response: %s", op, err)
		http.Error(w, op+" failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, b, status)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Tracef("%s, unmarshal json params: %s", op, err)
		writeError(w, op, NewValidationError("", "invalid json body"))
		return false
	}
	return true
}

func userIDFromRequest(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}

func intVar(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := mux.Vars(r)[name]
	if raw == "" {
		http.Error(w, "error, "+name+" empty", http.StatusBadRequest)
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		http.Error(w, "error, "+name+" NaN", http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

func (handler *Handler) HandleListSelections(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.selections.list")
	defer span.End()

	selections, err := handler.service.Selections(ctx)
	if err != nil {
		writeError(w, "list selections", err)
		return
	}
	writeJSON(w, "list selections", selections, http.StatusOK)
}

func (handler *Handler) HandleListTemplates(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.templates.list")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	templates, err := handler.service.ListTemplates(ctx, userID)
	if err != nil {
		writeError(w, "list templates", err)
		return
	}
	writeJSON(w, "list templates", templates, http.StatusOK)
}

func (handler *Handler) HandleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.templates.create")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	var t Template
	if !decodeJSON(w, r, "create template", &t) {
		return
	}
	created, err := handler.service.CreateTemplate(ctx, userID, t)
	if err != nil {
		writeError(w, "create template", err)
		return
	}
	writeJSON(w, "create template", created, http.StatusCreated)
}

func (handler *Handler) HandleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.templates.delete")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	if err := handler.service.DeleteTemplate(ctx, userID, id); err != nil {
		writeError(w, "delete template", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleListWorkouts(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	list, err := handler.service.ListWorkouts(ctx, userID)
	if err != nil {
		writeError(w, "list workouts", err)
		return
	}
	writeJSON(w, "list workouts", list, http.StatusOK)
}

func (handler *Handler) HandleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.create")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	var nw NewWorkout
	if !decodeJSON(w, r, "create workout", &nw) {
		return
	}
	created, err := handler.service.CreateWorkout(ctx, userID, nw)
	if err != nil {
		writeError(w, "create workout", err)
		return
	}
	span.SetAttributes(attribute.Int("workout.id", created.ID))
	writeJSON(w, "create workout", created, http.StatusCreated)
}

func (handler *Handler) HandleGetWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	workout, err := handler.service.GetWorkout(ctx, userID, id)
	if err != nil {
		writeError(w, "get workout", err)
		return
	}
	writeJSON(w, "get workout", workout, http.StatusOK)
}

func (handler *Handler) HandleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	if err := handler.service.DeleteWorkout(ctx, userID, id); err != nil {
		writeError(w, "delete workout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleCompleteWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.complete")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	var completion Completion
	if r.ContentLength != 0 && !decodeJSON(w, r, "complete workout", &completion) {
		return
	}
	workout, err := handler.service.CompleteWorkout(ctx, userID, id, completion)
	if err != nil {
		writeError(w, "complete workout", err)
		return
	}
	writeJSON(w, "complete workout", workout, http.StatusOK)
}

type SentimentRequest struct {
	Sentiment Sentiment `json:"sentiment"`
}

func (handler *Handler) HandleUpdateSentiment(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sentiment")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	var req SentimentRequest
	if !decodeJSON(w, r, "update sentiment", &req) {
		return
	}
	workout, err := handler.service.UpdateWorkoutSentiment(ctx, userID, id, req.Sentiment)
	if err != nil {
		writeError(w, "update sentiment", err)
		return
	}
	writeJSON(w, "update sentiment", workout, http.StatusOK)
}

func (handler *Handler) HandleListExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exercises.list")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	workoutID, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	list, err := handler.service.ListExercises(ctx, userID, workoutID)
	if err != nil {
		writeError(w, "list exercises", err)
		return
	}
	writeJSON(w, "list exercises", list, http.StatusOK)
}

func (handler *Handler) HandleCreateExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exercises.create")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	workoutID, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	var ne NewExercise
	if !decodeJSON(w, r, "create exercise", &ne) {
		return
	}
	ne.WorkoutID = workoutID
	created, err := handler.service.CreateExercise(ctx, userID, ne)
	if err != nil {
		writeError(w, "create exercise", err)
		return
	}
	writeJSON(w, "create exercise", created, http.StatusCreated)
}

type ReorderRequest struct {
	Updates []OrderUpdate `json:"updates"`
}

func (handler *Handler) HandleReorderExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exercises.reorder")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	workoutID, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	var req ReorderRequest
	if !decodeJSON(w, r, "reorder exercises", &req) {
		return
	}
	if err := handler.service.ReorderExercises(ctx, userID, workoutID, req.Updates); err != nil {
		writeError(w, "reorder exercises", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type NoteRequest struct {
	Note *string `json:"note"`
}

func (handler *Handler) HandleUpdateExerciseNote(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exercises.note")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	var req NoteRequest
	if !decodeJSON(w, r, "update exercise note", &req) {
		return
	}
	updated, err := handler.service.UpdateExerciseNote(ctx, userID, id, req.Note)
	if err != nil {
		writeError(w, "update exercise note", err)
		return
	}
	writeJSON(w, "update exercise note", updated, http.StatusOK)
}

func (handler *Handler) HandleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exercises.delete")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	if err := handler.service.DeleteExercise(ctx, userID, id); err != nil {
		writeError(w, "delete exercise", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleListSets(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sets.list")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	workoutID, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	list, err := handler.service.ListSets(ctx, userID, workoutID)
	if err != nil {
		writeError(w, "list sets", err)
		return
	}
	writeJSON(w, "list sets", list, http.StatusOK)
}

func (handler *Handler) HandleCreateSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sets.create")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	exerciseID, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	var ns NewSet
	if !decodeJSON(w, r, "create set", &ns) {
		return
	}
	ns.ExerciseID = exerciseID
	created, err := handler.service.CreateSet(ctx, userID, ns)
	if err != nil {
		writeError(w, "create set", err)
		return
	}
	writeJSON(w, "create set", created, http.StatusCreated)
}

func (handler *Handler) HandleReorderSets(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sets.reorder")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	exerciseID, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	var req ReorderRequest
	if !decodeJSON(w, r, "reorder sets", &req) {
		return
	}
	if err := handler.service.ReorderSets(ctx, userID, exerciseID, req.Updates); err != nil {
		writeError(w, "reorder sets", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleUpdateSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sets.update")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	var fields SetFields
	if !decodeJSON(w, r, "update set", &fields) {
		return
	}
	updated, err := handler.service.UpdateSet(ctx, userID, id, fields)
	if err != nil {
		writeError(w, "update set", err)
		return
	}
	writeJSON(w, "update set", updated, http.StatusOK)
}

func (handler *Handler) HandleDeleteSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.sets.delete")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := intVar(w, r, "id")
	if !ok {
		return
	}
	if err := handler.service.DeleteSet(ctx, userID, id); err != nil {
		writeError(w, "delete set", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleListTracked(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.tracked.list")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	list, err := handler.service.ListTracked(ctx, userID)
	if err != nil {
		writeError(w, "list tracked", err)
		return
	}
	writeJSON(w, "list tracked", list, http.StatusOK)
}

type TrackRequest struct {
	ExerciseSelectionID int `json:"exerciseSelectionId"`
}

func (handler *Handler) HandleAddTracked(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.tracked.add")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	var req TrackRequest
	if !decodeJSON(w, r, "add tracked", &req) {
		return
	}
	te, err := handler.service.AddTracked(ctx, userID, req.ExerciseSelectionID)
	if err != nil {
		writeError(w, "add tracked", err)
		return
	}
	writeJSON(w, "add tracked", te, http.StatusOK)
}

func (handler *Handler) HandleRemoveTracked(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.tracked.remove")
	defer span.End()

	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}
	selectionID, ok := intVar(w, r, "selectionId")
	if !ok {
		return
	}
	if err := handler.service.RemoveTracked(ctx, userID, selectionID); err != nil {
		writeError(w, "remove tracked", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
