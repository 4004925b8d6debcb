package workouts

import (
	"context"
	"time"

	"github.com/2beens/liftlog/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

func (r *Repo) SetRecords(ctx context.Context, userID int, since time.Time, selectionID *int) (_ []SetRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.set-records")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.String("since", since.String()))
	if selectionID != nil {
		span.SetAttributes(attribute.Int("selection.id", *selectionID))
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT
			s.id, w.id, e.exercise_selection_id, es.primary_muscle_group, es.secondary_muscle_group,
			s.reps, s.weight, w.completed_at
		FROM workout_set s
		JOIN workout_exercise e ON e.id = s.exercise_id
		JOIN workout w ON w.id = e.workout_id
		JOIN exercise_selection es ON es.id = e.exercise_selection_id
		WHERE w.user_id = $1
			AND w.completed
			AND w.completed_at >= $2
			AND ($3::int IS NULL OR e.exercise_selection_id = $3)
		ORDER BY w.completed_at, e.position, s.position;`,
		userID, since, selectionID,
	)
	if err != nil {
		return nil, err
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SetRecord, error) {
		var rec SetRecord
		err := row.Scan(
			&rec.SetID, &rec.WorkoutID, &rec.ExerciseSelectionID, &rec.PrimaryMuscleGroup,
			&rec.SecondaryMuscleGroup, &rec.Reps, &rec.Weight, &rec.CompletedAt,
		)
		return rec, err
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}
