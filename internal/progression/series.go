package progression

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/2beens/liftlog/internal/workouts"
)

// SecondaryMuscleGroupWeight is the share of a set credited to the
// secondary muscle group of its exercise. The primary group gets 1.
const SecondaryMuscleGroupWeight = 0.5

const weekStartKey = "weekStart"

// WeeklyMuscleGroupPoint is the volume per muscle group within one week.
// Groups without activity that week are absent from Volume.
type WeeklyMuscleGroupPoint struct {
	WeekStart time.Time
	Volume    map[string]float64
}

// MarshalJSON flattens the point into {"weekStart": ..., "<group>": value, ...}.
func (p WeeklyMuscleGroupPoint) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(p.Volume)+1)
	for group, v := range p.Volume {
		flat[group] = v
	}
	flat[weekStartKey] = p.WeekStart
	return json.Marshal(flat)
}

func (p *WeeklyMuscleGroupPoint) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	rawWeekStart, ok := flat[weekStartKey]
	if !ok {
		return fmt.Errorf("missing %s", weekStartKey)
	}
	if err := json.Unmarshal(rawWeekStart, &p.WeekStart); err != nil {
		return fmt.Errorf("%s: %w", weekStartKey, err)
	}
	delete(flat, weekStartKey)

	p.Volume = make(map[string]float64, len(flat))
	for group, raw := range flat {
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("group %s: %w", group, err)
		}
		p.Volume[group] = v
	}
	return nil
}

// MuscleGroupSeries is the weekly volume series ordered by week, with Groups
// listing every muscle group seen in the window.
type MuscleGroupSeries struct {
	Groups []string                 `json:"groups"`
	Points []WeeklyMuscleGroupPoint `json:"points"`
}

type WeeklyE1RMPoint struct {
	WeekStart time.Time `json:"weekStart"`
	E1RM      float64   `json:"e1rm"`
}

// EstimateOneRepMax is the Epley estimate weight * (1 + reps/30),
// applied to every rep count including singles.
func EstimateOneRepMax(weight, reps int) float64 {
	return float64(weight) * (1 + float64(reps)/30)
}

// MuscleGroupVolume buckets the records by week and sums the set volume per
// muscle group. Records missing reps or weight are skipped. Weeks without
// activity between the first and the last active week are emitted empty.
func MuscleGroupVolume(records []workouts.SetRecord, weeks Weeks) MuscleGroupSeries {
	byWeek := make(map[int64]map[string]float64)
	groupsSeen := make(map[string]bool)
	for _, r := range records {
		if r.Reps == nil || r.Weight == nil {
			continue
		}
		key := weeks.Start(r.CompletedAt).Unix()
		volume, ok := byWeek[key]
		if !ok {
			volume = make(map[string]float64)
			byWeek[key] = volume
		}
		volume[r.PrimaryMuscleGroup] += 1
		groupsSeen[r.PrimaryMuscleGroup] = true
		if r.SecondaryMuscleGroup != nil && *r.SecondaryMuscleGroup != "" {
			volume[*r.SecondaryMuscleGroup] += SecondaryMuscleGroupWeight
			groupsSeen[*r.SecondaryMuscleGroup] = true
		}
	}

	series := MuscleGroupSeries{
		Groups: make([]string, 0, len(groupsSeen)),
		Points: make([]WeeklyMuscleGroupPoint, 0, len(byWeek)),
	}
	for group := range groupsSeen {
		series.Groups = append(series.Groups, group)
	}
	sort.Strings(series.Groups)

	keys := sortedKeys(byWeek)
	if len(keys) == 0 {
		return series
	}

	first := weeks.Start(time.Unix(keys[0], 0))
	last := keys[len(keys)-1]
	for week := first; week.Unix() <= last; week = weeks.Next(week) {
		volume, ok := byWeek[week.Unix()]
		if !ok {
			volume = map[string]float64{}
		}
		series.Points = append(series.Points, WeeklyMuscleGroupPoint{
			WeekStart: week,
			Volume:    volume,
		})
	}
	return series
}

// ExerciseE1RM returns the best estimated one rep max per week, only for
// weeks that have at least one complete set.
func ExerciseE1RM(records []workouts.SetRecord, weeks Weeks) []WeeklyE1RMPoint {
	best := make(map[int64]float64)
	for _, r := range records {
		if r.Reps == nil || r.Weight == nil {
			continue
		}
		key := weeks.Start(r.CompletedAt).Unix()
		e1rm := EstimateOneRepMax(*r.Weight, *r.Reps)
		if current, ok := best[key]; !ok || e1rm > current {
			best[key] = e1rm
		}
	}

	points := make([]WeeklyE1RMPoint, 0, len(best))
	for _, key := range sortedKeys(best) {
		points = append(points, WeeklyE1RMPoint{
			WeekStart: weeks.Start(time.Unix(key, 0)),
			E1RM:      best[key],
		})
	}
	return points
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}
