package progression_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/2beens/liftlog/internal/progression"
	"github.com/2beens/liftlog/internal/workouts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mondayWeeks = progression.NewWeeks(time.Monday, time.UTC)

func TestMuscleGroupVolume_SecondaryHalfWeight(t *testing.T) {
	at := time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)
	series := progression.MuscleGroupVolume([]workouts.SetRecord{
		record(1, at, "chest", strp("triceps"), intp(185), intp(8)),
	}, mondayWeeks)

	require.Len(t, series.Points, 1)
	point := series.Points[0]
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), point.WeekStart)
	assert.Equal(t, map[string]float64{"chest": 1, "triceps": 0.5}, point.Volume)
	assert.Equal(t, []string{"chest", "triceps"}, series.Groups)
}

func TestMuscleGroupVolume_SumsWithinWeek(t *testing.T) {
	monday := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	friday := time.Date(2026, 3, 6, 7, 0, 0, 0, time.UTC)
	series := progression.MuscleGroupVolume([]workouts.SetRecord{
		record(1, monday, "chest", strp("triceps"), intp(185), intp(8)),
		record(2, monday, "chest", strp("triceps"), intp(185), intp(8)),
		record(3, friday, "triceps", nil, intp(50), intp(12)),
		record(4, friday, "back", nil, intp(135), intp(10)),
	}, mondayWeeks)

	require.Len(t, series.Points, 1)
	assert.Equal(t, map[string]float64{"chest": 2, "triceps": 2, "back": 1}, series.Points[0].Volume)
}

func TestMuscleGroupVolume_ExcludesIncompleteSets(t *testing.T) {
	at := time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)
	series := progression.MuscleGroupVolume([]workouts.SetRecord{
		record(1, at, "chest", nil, nil, intp(8)),
		record(2, at, "chest", nil, intp(100), nil),
		record(3, at, "legs", nil, nil, nil),
	}, mondayWeeks)

	assert.Empty(t, series.Points)
	assert.Empty(t, series.Groups)
}

func TestMuscleGroupVolume_FillsGaps(t *testing.T) {
	week1 := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	week3 := time.Date(2026, 3, 17, 10, 0, 0, 0, time.UTC)
	series := progression.MuscleGroupVolume([]workouts.SetRecord{
		record(2, week3, "legs", nil, intp(225), intp(5)),
		record(1, week1, "legs", nil, intp(225), intp(5)),
	}, mondayWeeks)

	require.Len(t, series.Points, 3)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), series.Points[0].WeekStart)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), series.Points[1].WeekStart)
	assert.Empty(t, series.Points[1].Volume)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), series.Points[2].WeekStart)
	assert.Equal(t, 1.0, series.Points[2].Volume["legs"])
}

func TestMuscleGroupVolume_Empty(t *testing.T) {
	first := progression.MuscleGroupVolume(nil, mondayWeeks)
	second := progression.MuscleGroupVolume([]workouts.SetRecord{}, mondayWeeks)
	assert.Equal(t, first, second)
	assert.NotNil(t, first.Points)
	assert.Empty(t, first.Points)

	b, err := json.Marshal(first)
	require.NoError(t, err)
	assert.JSONEq(t, `{"groups":[],"points":[]}`, string(b))
}

func TestWeeklyMuscleGroupPoint_JSON(t *testing.T) {
	point := progression.WeeklyMuscleGroupPoint{
		WeekStart: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Volume:    map[string]float64{"chest": 3, "triceps": 1.5},
	}
	b, err := json.Marshal(point)
	require.NoError(t, err)
	assert.JSONEq(t, `{"weekStart":"2026-03-02T00:00:00Z","chest":3,"triceps":1.5}`, string(b))

	var decoded progression.WeeklyMuscleGroupPoint
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.True(t, point.WeekStart.Equal(decoded.WeekStart))
	assert.Equal(t, point.Volume, decoded.Volume)

	assert.Error(t, json.Unmarshal([]byte(`{"chest":1}`), &decoded))
}

func TestEstimateOneRepMax(t *testing.T) {
	assert.InDelta(t, 262.5, progression.EstimateOneRepMax(225, 5), 1e-9)
	// no shortcut for singles
	assert.InDelta(t, 310.0, progression.EstimateOneRepMax(300, 1), 1e-9)
	assert.InDelta(t, 200.0, progression.EstimateOneRepMax(100, 30), 1e-9)
}

func TestExerciseE1RM_WeeklyMax(t *testing.T) {
	week1 := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	week1Later := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	week3 := time.Date(2026, 3, 17, 10, 0, 0, 0, time.UTC)

	points := progression.ExerciseE1RM([]workouts.SetRecord{
		record(1, week1, "chest", nil, intp(225), intp(5)),
		record(2, week1Later, "chest", nil, intp(200), intp(10)),
		record(3, week1Later, "chest", nil, nil, intp(20)),
		record(4, week3, "chest", nil, intp(230), intp(3)),
	}, mondayWeeks)

	// weeks without data are not emitted
	require.Len(t, points, 2)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), points[0].WeekStart)
	assert.InDelta(t, 200*(1+10.0/30), points[0].E1RM, 1e-9)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), points[1].WeekStart)
	assert.InDelta(t, 253.0, points[1].E1RM, 1e-9)
}

func TestExerciseE1RM_Empty(t *testing.T) {
	points := progression.ExerciseE1RM(nil, mondayWeeks)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}
