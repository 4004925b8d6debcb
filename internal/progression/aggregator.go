package progression

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/liftlog/internal/cache"
	"github.com/2beens/liftlog/internal/telemetry/metrics"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/internal/workouts"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=progression_test

type recordSource interface {
	SetRecords(ctx context.Context, userID int, since time.Time, selectionID *int) ([]workouts.SetRecord, error)
}

const (
	kindMuscleGroups = "muscleGroups"
	kindExercise     = "exercise"
)

type AggregatorParams struct {
	Weeks          Weeks
	Cache          cache.Cache // nil disables caching
	CacheTTL       time.Duration
	MetricsManager *metrics.Manager
}

// Aggregator computes progression series from the completed workout history.
// Results are cached per user until the user's history changes.
type Aggregator struct {
	source         recordSource
	weeks          Weeks
	cache          cache.Cache
	cacheTTL       time.Duration
	metricsManager *metrics.Manager
	now            func() time.Time

	mu          sync.Mutex
	generations map[int]uint64
}

var _ workouts.HistoryListener = (*Aggregator)(nil)

func NewAggregator(source recordSource, params AggregatorParams) *Aggregator {
	return &Aggregator{
		source:         source,
		weeks:          params.Weeks,
		cache:          params.Cache,
		cacheTTL:       params.CacheTTL,
		metricsManager: params.MetricsManager,
		now:            time.Now,
		generations:    make(map[int]uint64),
	}
}

// HistoryChanged drops every cached series of the user.
func (a *Aggregator) HistoryChanged(userID int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generations[userID]++
	log.Tracef("progression cache invalidated for user %d", userID)
}

// Location is the time zone weeks are bucketed in.
func (a *Aggregator) Location() *time.Location {
	return a.weeks.Location()
}

func (a *Aggregator) generation(userID int) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generations[userID]
}

func (a *Aggregator) cacheKey(userID int, gen uint64, kind string, selectionID int, start time.Time) string {
	return fmt.Sprintf("progression::%d::%d::%s::%d::%d", userID, gen, kind, selectionID, start.Unix())
}

func (a *Aggregator) cacheGet(key string, dst any) bool {
	if a.cache == nil {
		return false
	}
	b, found := a.cache.Get(key)
	if !found {
		a.countCache("miss")
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		log.Errorf("progression cache entry [%s] unreadable: %s", key, err)
		a.countCache("miss")
		return false
	}
	a.countCache("hit")
	return true
}

func (a *Aggregator) cacheSet(key string, v any) {
	if a.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Errorf("progression cache encode [%s]: %s", key, err)
		return
	}
	a.cache.Set(key, b, a.cacheTTL)
}

func (a *Aggregator) countCache(result string) {
	if a.metricsManager != nil {
		a.metricsManager.CounterProgressionCache.WithLabelValues(result).Inc()
	}
}

func (a *Aggregator) observe(kind string, started time.Time) {
	if a.metricsManager != nil {
		a.metricsManager.HistogramAggregationDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
	}
}

// MuscleGroupVolume returns the weekly muscle group volume of the user's
// completed workouts with completedAt >= start.
func (a *Aggregator) MuscleGroupVolume(ctx context.Context, userID int, start time.Time) (_ *MuscleGroupSeries, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "progression.muscle-groups")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("user.id", userID),
		attribute.String("start", start.Format(time.RFC3339)),
	)

	if start.After(a.now()) {
		empty := MuscleGroupVolume(nil, a.weeks)
		return &empty, nil
	}

	key := a.cacheKey(userID, a.generation(userID), kindMuscleGroups, 0, start)
	var cached MuscleGroupSeries
	if a.cacheGet(key, &cached) {
		return &cached, nil
	}

	started := time.Now()
	records, err := a.source.SetRecords(ctx, userID, start, nil)
	if err != nil {
		return nil, fmt.Errorf("load set records: %w", err)
	}
	series := MuscleGroupVolume(records, a.weeks)
	a.observe(kindMuscleGroups, started)

	a.cacheSet(key, series)
	return &series, nil
}

// ExerciseE1RM returns the weekly best estimated one rep max for one
// exercise selection. Unknown selections yield an empty series.
func (a *Aggregator) ExerciseE1RM(ctx context.Context, userID, selectionID int, start time.Time) (_ []WeeklyE1RMPoint, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "progression.exercise-e1rm")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("user.id", userID),
		attribute.Int("selection.id", selectionID),
		attribute.String("start", start.Format(time.RFC3339)),
	)

	if start.After(a.now()) {
		return []WeeklyE1RMPoint{}, nil
	}

	key := a.cacheKey(userID, a.generation(userID), kindExercise, selectionID, start)
	var cached []WeeklyE1RMPoint
	if a.cacheGet(key, &cached) {
		return cached, nil
	}

	started := time.Now()
	records, err := a.source.SetRecords(ctx, userID, start, &selectionID)
	if err != nil {
		return nil, fmt.Errorf("load set records: %w", err)
	}
	points := ExerciseE1RM(records, a.weeks)
	a.observe(kindExercise, started)

	a.cacheSet(key, points)
	return points, nil
}
