package workouts

import (
	"context"
	"fmt"

	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

const selectionColumns = `id, name, category, primary_muscle_group, secondary_muscle_group`

func scanSelection(row pgx.Row) (ExerciseSelection, error) {
	var es ExerciseSelection
	err := row.Scan(&es.ID, &es.Name, &es.Category, &es.PrimaryMuscleGroup, &es.SecondaryMuscleGroup)
	return es, err
}

func (r *Repo) ListSelections(ctx context.Context) (_ []ExerciseSelection, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.selections.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `SELECT `+selectionColumns+` FROM exercise_selection ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (ExerciseSelection, error) {
		return scanSelection(row)
	})
}

func (r *Repo) GetSelection(ctx context.Context, id int) (_ *ExerciseSelection, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.selections.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	es, err := scanSelection(r.db.QueryRow(ctx, `SELECT `+selectionColumns+` FROM exercise_selection WHERE id = $1;`, id))
	if err != nil {
		if pkg.IsNoRowsError(err) {
			return nil, ErrSelectionNotFound
		}
		return nil, err
	}
	return &es, nil
}

func (r *Repo) SelectionByName(ctx context.Context, name string) (_ *ExerciseSelection, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.selections.by-name")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("name", name))

	es, err := scanSelection(r.db.QueryRow(ctx, `SELECT `+selectionColumns+` FROM exercise_selection WHERE name = $1;`, name))
	if err != nil {
		if pkg.IsNoRowsError(err) {
			return nil, ErrSelectionNotFound
		}
		return nil, err
	}
	return &es, nil
}

func (r *Repo) ListTracked(ctx context.Context, userID int) (_ []TrackedExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.tracked.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, exercise_selection_id, created_at FROM tracked_exercise WHERE user_id = $1 ORDER BY id;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (TrackedExercise, error) {
		var te TrackedExercise
		err := row.Scan(&te.ID, &te.UserID, &te.ExerciseSelectionID, &te.CreatedAt)
		return te, err
	})
}

// AddTracked is a no-op success when the selection is already tracked.
func (r *Repo) AddTracked(ctx context.Context, userID, selectionID int) (_ *TrackedExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.tracked.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("selection.id", selectionID))

	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO tracked_exercise (user_id, exercise_selection_id) VALUES ($1, $2)
			ON CONFLICT (user_id, exercise_selection_id) DO NOTHING;`,
		userID, selectionID,
	); err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, ErrSelectionNotFound
		}
		return nil, err
	}

	var te TrackedExercise
	if err := r.db.QueryRow(
		ctx,
		`SELECT id, user_id, exercise_selection_id, created_at FROM tracked_exercise
			WHERE user_id = $1 AND exercise_selection_id = $2;`,
		userID, selectionID,
	).Scan(&te.ID, &te.UserID, &te.ExerciseSelectionID, &te.CreatedAt); err != nil {
		return nil, fmt.Errorf("read back tracked exercise: %w", err)
	}
	return &te, nil
}

func (r *Repo) RemoveTracked(ctx context.Context, userID, selectionID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.tracked.remove")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("selection.id", selectionID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM tracked_exercise WHERE user_id = $1 AND exercise_selection_id = $2;`,
		userID, selectionID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTrackedNotFound
	}
	return nil
}

func (r *Repo) IsTracked(ctx context.Context, userID, selectionID int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.tracked.is-tracked")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var tracked bool
	err = r.db.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM tracked_exercise WHERE user_id = $1 AND exercise_selection_id = $2);`,
		userID, selectionID,
	).Scan(&tracked)
	return tracked, err
}

func (r *Repo) ListTemplates(ctx context.Context, userID int) (_ []Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.templates.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT t.id, t.user_id, t.title, t.description, te.exercise_selection_name, te.sets
		FROM workout_template t
		LEFT JOIN workout_template_exercise te ON te.template_id = t.id
		WHERE t.user_id = $1
		ORDER BY t.id, te.position;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates, err := rows2templates(rows)
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *Repo) GetTemplate(ctx context.Context, id int) (_ *Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.templates.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT t.id, t.user_id, t.title, t.description, te.exercise_selection_name, te.sets
		FROM workout_template t
		LEFT JOIN workout_template_exercise te ON te.template_id = t.id
		WHERE t.id = $1
		ORDER BY te.position;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates, err := rows2templates(rows)
	if err != nil {
		return nil, err
	}
	if len(templates) != 1 {
		return nil, ErrTemplateNotFound
	}
	return &templates[0], nil
}

func rows2templates(rows pgx.Rows) ([]Template, error) {
	var templates []Template
	for rows.Next() {
		var (
			t             Template
			selectionName *string
			sets          *int
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &selectionName, &sets); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}

		if len(templates) == 0 || templates[len(templates)-1].ID != t.ID {
			t.Exercises = []TemplateExercise{}
			templates = append(templates, t)
		}
		if selectionName != nil && sets != nil {
			last := &templates[len(templates)-1]
			last.Exercises = append(last.Exercises, TemplateExercise{
				ExerciseSelectionName: *selectionName,
				Sets:                  *sets,
			})
		}
	}
	return templates, rows.Err()
}

func (r *Repo) CreateTemplate(ctx context.Context, t Template) (_ *Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.templates.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", t.UserID))

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(
			ctx,
			`INSERT INTO workout_template (user_id, title, description) VALUES ($1, $2, $3) RETURNING id;`,
			t.UserID, t.Title, t.Description,
		).Scan(&t.ID); err != nil {
			return fmt.Errorf("insert template: %w", err)
		}

		rows := make([][]any, 0, len(t.Exercises))
		for i, te := range t.Exercises {
			rows = append(rows, []any{t.ID, i, te.ExerciseSelectionName, te.Sets})
		}
		if _, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"workout_template_exercise"},
			[]string{"template_id", "position", "exercise_selection_name", "sets"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("copy template exercises: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) DeleteTemplate(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.templates.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM workout_template WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
