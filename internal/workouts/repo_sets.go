package workouts

import (
	"context"
	"fmt"

	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

const setColumns = `s.id, s.exercise_id, s.position, s.reps, s.weight, s.target_reps, s.target_weight, s.created_at, s.updated_at`

func scanSet(row pgx.Row) (Set, error) {
	var s Set
	err := row.Scan(
		&s.ID, &s.ExerciseID, &s.Order, &s.Reps, &s.Weight,
		&s.TargetReps, &s.TargetWeight, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *Repo) GetSet(ctx context.Context, id int) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sets.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	s, err := scanSet(r.db.QueryRow(ctx, `SELECT `+setColumns+` FROM workout_set s WHERE s.id = $1;`, id))
	if err != nil {
		if pkg.IsNoRowsError(err) {
			return nil, ErrSetNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListSets returns all sets of the workout, ordered by exercise position then set position.
func (r *Repo) ListSets(ctx context.Context, workoutID int) (_ []Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sets.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+setColumns+`
		FROM workout_set s
		JOIN workout_exercise e ON e.id = s.exercise_id
		WHERE e.workout_id = $1
		ORDER BY e.position, s.position;`,
		workoutID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Set, error) {
		return scanSet(row)
	})
}

// CreateSet inserts the set at ns.Order and shifts the later sets of the
// exercise down by one, in one transaction.
func (r *Repo) CreateSet(ctx context.Context, ns NewSet) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sets.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", ns.ExerciseID))
	span.SetAttributes(attribute.Int("order", ns.Order))

	var s Set
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(
			ctx,
			`UPDATE workout_set SET position = position + 1, updated_at = now()
				WHERE exercise_id = $1 AND position >= $2;`,
			ns.ExerciseID, ns.Order,
		); err != nil {
			return fmt.Errorf("shift sets: %w", err)
		}

		created, err := scanSet(tx.QueryRow(
			ctx,
			`INSERT INTO workout_set AS s (exercise_id, position, reps, weight, target_reps, target_weight)
				VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+setColumns+`;`,
			ns.ExerciseID, ns.Order, ns.Reps, ns.Weight, ns.TargetReps, ns.TargetWeight,
		))
		if err != nil {
			if pkg.IsForeignKeyViolationError(err) {
				return ErrExerciseNotFound
			}
			return fmt.Errorf("insert set: %w", err)
		}
		s = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("set.id", s.ID))
	return &s, nil
}

// DeleteSet removes the set and moves the later sets of the same exercise up
// by one, in one transaction.
func (r *Repo) DeleteSet(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sets.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var exerciseID, position int
		if err := tx.QueryRow(
			ctx,
			`DELETE FROM workout_set WHERE id = $1 RETURNING exercise_id, position;`,
			id,
		).Scan(&exerciseID, &position); err != nil {
			if pkg.IsNoRowsError(err) {
				return ErrSetNotFound
			}
			return err
		}

		tag, err := tx.Exec(
			ctx,
			`UPDATE workout_set SET position = position - 1, updated_at = now()
				WHERE exercise_id = $1 AND position > $2;`,
			exerciseID, position,
		)
		if err != nil {
			return fmt.Errorf("close position gap: %w", err)
		}
		span.SetAttributes(attribute.Int64("shifted", tag.RowsAffected()))
		return nil
	})
}

func (r *Repo) UpdateSet(ctx context.Context, id int, fields SetFields) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sets.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	s, err := scanSet(r.db.QueryRow(
		ctx,
		`UPDATE workout_set AS s
			SET reps = $1, weight = $2, target_reps = $3, target_weight = $4, updated_at = now()
			WHERE s.id = $5
		RETURNING `+setColumns+`;`,
		fields.Reps, fields.Weight, fields.TargetReps, fields.TargetWeight, id,
	))
	if err != nil {
		if pkg.IsNoRowsError(err) {
			return nil, ErrSetNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ReorderSets applies all position updates as one batch in one transaction.
func (r *Repo) ReorderSets(ctx context.Context, exerciseID int, updates []OrderUpdate) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.sets.reorder")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", exerciseID))
	span.SetAttributes(attribute.Int("updates", len(updates)))

	if len(updates) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, u := range updates {
			batch.Queue(
				`UPDATE workout_set SET position = $1, updated_at = now() WHERE id = $2 AND exercise_id = $3;`,
				u.Order, u.ID, exerciseID,
			)
		}
		return execBatch(ctx, tx, batch, ErrSetNotFound)
	})
}
