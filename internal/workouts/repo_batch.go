package workouts

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/multierr"
)

// execBatch sends all queued statements at once. Every statement is expected
// to touch exactly one row, a statement matching nothing yields notFoundErr.
func execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch, notFoundErr error) (err error) {
	br := tx.SendBatch(ctx, batch)
	defer func() {
		err = multierr.Append(err, br.Close())
	}()

	for i := 0; i < batch.Len(); i++ {
		tag, execErr := br.Exec()
		if execErr != nil {
			return fmt.Errorf("batch statement %d: %w", i, execErr)
		}
		if tag.RowsAffected() == 0 {
			err = multierr.Append(err, fmt.Errorf("batch statement %d: %w", i, notFoundErr))
		}
	}
	return err
}
