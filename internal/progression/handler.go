package progression

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=progression_test

var ErrNotTracked = errors.New("exercise is not tracked")

type seriesProvider interface {
	MuscleGroupVolume(ctx context.Context, userID int, start time.Time) (*MuscleGroupSeries, error)
	ExerciseE1RM(ctx context.Context, userID, selectionID int, start time.Time) ([]WeeklyE1RMPoint, error)
}

type trackedChecker interface {
	IsTracked(ctx context.Context, userID, selectionID int) (bool, error)
}

// Response is the body of GET /progression. Data is always a list; Error is
// set whenever the series could not be produced.
type Response struct {
	Type   string   `json:"type"`
	Data   any      `json:"data"`
	Groups []string `json:"groups,omitempty"`
	Error  string   `json:"error,omitempty"`
}

type Handler struct {
	series  seriesProvider
	tracked trackedChecker
	loc     *time.Location
	now     func() time.Time
}

// NewHandler resolves ranges against the day in loc, UTC when nil.
func NewHandler(series seriesProvider, tracked trackedChecker, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		series:  series,
		tracked: tracked,
		loc:     loc,
		now:     time.Now,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/progression", handler.HandleProgression).Methods("GET", "OPTIONS").Name("progression")
}

func writeResponse(w http.ResponseWriter, resp Response, status int) {
	if resp.Data == nil {
		resp.Data = []struct{}{}
	}
	b, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal progression response: %s", err)
		http.Error(w, "progression failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, b, status)
}

func (handler *Handler) HandleProgression(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progression")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query()
	kind := kindMuscleGroups
	exerciseParam := query.Get("exercise")
	if exerciseParam != "" {
		kind = kindExercise
	}

	start, err := ResolveRange(query.Get("range"), handler.now().In(handler.loc))
	if err != nil {
		writeResponse(w, Response{Type: kind, Error: err.Error()}, http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("range", query.Get("range")), attribute.String("type", kind))

	if kind == kindMuscleGroups {
		series, err := handler.series.MuscleGroupVolume(ctx, userID, start)
		if err != nil {
			log.Errorf("progression muscle groups for user %d: %s", userID, err)
			writeResponse(w, Response{Type: kind, Error: "failed to compute muscle group volume"}, http.StatusInternalServerError)
			return
		}
		writeResponse(w, Response{Type: kind, Data: series.Points, Groups: series.Groups}, http.StatusOK)
		return
	}

	selectionID, err := strconv.Atoi(exerciseParam)
	if err != nil {
		writeResponse(w, Response{Type: kind, Error: "exercise must be a number"}, http.StatusBadRequest)
		return
	}
	tracked, err := handler.tracked.IsTracked(ctx, userID, selectionID)
	if err != nil {
		log.Errorf("progression tracked check for user %d: %s", userID, err)
		writeResponse(w, Response{Type: kind, Error: "failed to check tracked exercise"}, http.StatusInternalServerError)
		return
	}
	if !tracked {
		writeResponse(w, Response{Type: kind, Error: ErrNotTracked.Error()}, http.StatusNotFound)
		return
	}

	points, err := handler.series.ExerciseE1RM(ctx, userID, selectionID, start)
	if err != nil {
		log.Errorf("progression e1rm for user %d, selection %d: %s", userID, selectionID, err)
		writeResponse(w, Response{Type: kind, Error: "failed to compute estimated one rep max"}, http.StatusInternalServerError)
		return
	}
	writeResponse(w, Response{Type: kind, Data: points}, http.StatusOK)
}
