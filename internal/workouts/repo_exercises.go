package workouts

import (
	"context"
	"fmt"

	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

const exerciseSelect = `
	SELECT
		e.id, e.workout_id, e.exercise_selection_id, es.name, e.position,
		e.note, e.rep_lower_bound, e.rep_upper_bound, e.created_at, e.updated_at
	FROM workout_exercise e
	JOIN exercise_selection es ON es.id = e.exercise_selection_id`

func scanExercise(row pgx.Row) (Exercise, error) {
	var e Exercise
	err := row.Scan(
		&e.ID, &e.WorkoutID, &e.ExerciseSelectionID, &e.SelectionName, &e.Order,
		&e.Note, &e.RepLowerBound, &e.RepUpperBound, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (r *Repo) GetExercise(ctx context.Context, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	e, err := scanExercise(r.db.QueryRow(ctx, exerciseSelect+` WHERE e.id = $1;`, id))
	if err != nil {
		if pkg.IsNoRowsError(err) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *Repo) ListExercises(ctx context.Context, workoutID int) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	rows, err := r.db.Query(ctx, exerciseSelect+` WHERE e.workout_id = $1 ORDER BY e.position;`, workoutID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Exercise, error) {
		return scanExercise(row)
	})
}

// CreateExercise shifts siblings at or after the requested position by one
// and inserts the new exercise, in one transaction.
func (r *Repo) CreateExercise(ctx context.Context, ne NewExercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exercises.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", ne.WorkoutID))
	span.SetAttributes(attribute.Int("order", ne.Order))

	var created Exercise
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(
			ctx,
			`UPDATE workout_exercise SET position = position + 1, updated_at = now()
				WHERE workout_id = $1 AND position >= $2;`,
			ne.WorkoutID, ne.Order,
		); err != nil {
			return fmt.Errorf("shift siblings: %w", err)
		}

		var id int
		if err := tx.QueryRow(
			ctx,
			`INSERT INTO workout_exercise
					(workout_id, exercise_selection_id, position, note, rep_lower_bound, rep_upper_bound)
				VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id;`,
			ne.WorkoutID, ne.ExerciseSelectionID, ne.Order, ne.Note, ne.RepLowerBound, ne.RepUpperBound,
		).Scan(&id); err != nil {
			if pkg.IsForeignKeyViolationError(err) {
				return ErrSelectionNotFound
			}
			return fmt.Errorf("insert exercise: %w", err)
		}

		e, err := scanExercise(tx.QueryRow(ctx, exerciseSelect+` WHERE e.id = $1;`, id))
		if err != nil {
			return fmt.Errorf("read back exercise: %w", err)
		}
		created = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("exercise.id", created.ID))
	return &created, nil
}

// DeleteExercise removes the exercise and, by cascade, its sets, and moves
// the later siblings up by one, in one transaction.
func (r *Repo) DeleteExercise(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var workoutID, position int
		if err := tx.QueryRow(
			ctx,
			`DELETE FROM workout_exercise WHERE id = $1 RETURNING workout_id, position;`,
			id,
		).Scan(&workoutID, &position); err != nil {
			if pkg.IsNoRowsError(err) {
				return ErrExerciseNotFound
			}
			return err
		}

		tag, err := tx.Exec(
			ctx,
			`UPDATE workout_exercise SET position = position - 1, updated_at = now()
				WHERE workout_id = $1 AND position > $2;`,
			workoutID, position,
		)
		if err != nil {
			return fmt.Errorf("close position gap: %w", err)
		}
		span.SetAttributes(attribute.Int64("shifted", tag.RowsAffected()))
		return nil
	})
}

func (r *Repo) UpdateExerciseNote(ctx context.Context, id int, note *string) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exercises.update-note")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout_exercise SET note = $1, updated_at = now() WHERE id = $2;`,
		note, id,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrExerciseNotFound
	}
	return r.GetExercise(ctx, id)
}

// ReorderExercises applies all position updates as one batch in one transaction.
func (r *Repo) ReorderExercises(ctx context.Context, workoutID int, updates []OrderUpdate) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exercises.reorder")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))
	span.SetAttributes(attribute.Int("updates", len(updates)))

	if len(updates) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, u := range updates {
			batch.Queue(
				`UPDATE workout_exercise SET position = $1, updated_at = now() WHERE id = $2 AND workout_id = $3;`,
				u.Order, u.ID, workoutID,
			)
		}
		return execBatch(ctx, tx, batch, ErrExerciseNotFound)
	})
}
