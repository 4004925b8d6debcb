package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrUsernameTaken = errors.New("username taken")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const workoutColumns = `id, user_id, title, description, completed, sentiment, created_at, completed_at, updated_at`

func scanWorkout(row pgx.Row) (*Workout, error) {
	var (
		w         Workout
		sentiment *string
	)
	if err := row.Scan(
		&w.ID, &w.UserID, &w.Title, &w.Description, &w.Completed,
		&sentiment, &w.CreatedAt, &w.CompletedAt, &w.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if sentiment != nil {
		s := Sentiment(*sentiment)
		w.Sentiment = &s
	}
	return &w, nil
}

func (r *Repo) UserByUsername(ctx context.Context, username string) (_ *auth.User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.user-by-username")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var u auth.User
	err = r.db.QueryRow(
		ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1;`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if pkg.IsNoRowsError(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repo) CreateUser(ctx context.Context, username, passwordHash string) (_ *auth.User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.create-user")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	u := auth.User{
		Username:     username,
		PasswordHash: passwordHash,
	}
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id, created_at;`,
		username, passwordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repo) CreateWorkout(
	ctx context.Context,
	userID int,
	nw NewWorkout,
	plan []PlannedExercise,
	createdAt time.Time,
) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("plan.exercises", len(plan)))

	var created *Workout
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		w, err := scanWorkout(tx.QueryRow(
			ctx,
			`INSERT INTO workout (user_id, title, description, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $4)
			RETURNING `+workoutColumns+`;`,
			userID, nw.Title, nw.Description, createdAt,
		))
		if err != nil {
			return fmt.Errorf("insert workout: %w", err)
		}

		for i, pe := range plan {
			var exerciseID int
			if err := tx.QueryRow(
				ctx,
				`INSERT INTO workout_exercise (workout_id, exercise_selection_id, position, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $4)
				RETURNING id;`,
				w.ID, pe.ExerciseSelectionID, i, createdAt,
			).Scan(&exerciseID); err != nil {
				if pkg.IsForeignKeyViolationError(err) {
					return ErrSelectionNotFound
				}
				return fmt.Errorf("insert planned exercise %d: %w", i, err)
			}

			for s := 0; s < pe.Sets; s++ {
				if _, err := tx.Exec(
					ctx,
					`INSERT INTO workout_set (exercise_id, position, created_at, updated_at) VALUES ($1, $2, $3, $3);`,
					exerciseID, s, createdAt,
				); err != nil {
					return fmt.Errorf("insert planned set %d/%d: %w", i, s, err)
				}
			}
		}

		created = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("workout.id", created.ID))
	return created, nil
}

func (r *Repo) GetWorkout(ctx context.Context, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	w, err := scanWorkout(r.db.QueryRow(
		ctx,
		`SELECT `+workoutColumns+` FROM workout WHERE id = $1;`,
		id,
	))
	if err != nil {
		if pkg.IsNoRowsError(err) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return w, nil
}

func (r *Repo) ListWorkouts(ctx context.Context, userID int) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+workoutColumns+` FROM workout WHERE user_id = $1 ORDER BY created_at DESC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Workout, error) {
		w, err := scanWorkout(row)
		if err != nil {
			return Workout{}, err
		}
		return *w, nil
	})
}

// DeleteWorkout removes the workout, its exercises and sets are removed by cascade.
func (r *Repo) DeleteWorkout(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM workout WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func (r *Repo) CompleteWorkout(ctx context.Context, id int, completion Completion) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.complete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var completed *Workout
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		w, err := scanWorkout(tx.QueryRow(
			ctx,
			`UPDATE workout SET completed = TRUE, completed_at = $1, updated_at = now()
				WHERE id = $2
			RETURNING `+workoutColumns+`;`,
			completion.CompletedAt, id,
		))
		if err != nil {
			if pkg.IsNoRowsError(err) {
				return ErrWorkoutNotFound
			}
			return err
		}

		if len(completion.ExerciseNotes) > 0 {
			batch := &pgx.Batch{}
			for exerciseID, note := range completion.ExerciseNotes {
				batch.Queue(
					`UPDATE workout_exercise SET note = $1, updated_at = now() WHERE id = $2 AND workout_id = $3;`,
					note, exerciseID, id,
				)
			}
			if err := execBatch(ctx, tx, batch, ErrExerciseNotFound); err != nil {
				return fmt.Errorf("persist exercise notes: %w", err)
			}
		}

		completed = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func (r *Repo) UpdateWorkoutSentiment(ctx context.Context, id int, sentiment Sentiment) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update-sentiment")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))
	span.SetAttributes(attribute.String("sentiment", string(sentiment)))

	w, err := scanWorkout(r.db.QueryRow(
		ctx,
		`UPDATE workout SET sentiment = $1, updated_at = now() WHERE id = $2
		RETURNING `+workoutColumns+`;`,
		string(sentiment), id,
	))
	if err != nil {
		if pkg.IsNoRowsError(err) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return w, nil
}
