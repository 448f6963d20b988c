package postgres

import (
	"context"
	"database/sql"
	"time"

	"partnernet-backend/internal/domain"
	"partnernet-backend/internal/repository"
)

type queueRepository struct {
	db *sql.DB
}

func NewQueueRepository(db *sql.DB) repository.QueueRepository {
	return &queueRepository{db: db}
}

func (r *queueRepository) Append(ctx context.Context, entry *domain.QueueEntry) error {
	query := `INSERT INTO deferred_queue
	          (enqueued_at, operation, registration_id, acting_user, payload, origin_channel, origin_message_ts, processed)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, false) RETURNING id`
	if entry.EnqueuedAt.IsZero() {
		entry.EnqueuedAt = time.Now()
	}
	return r.db.QueryRowContext(ctx, query,
		entry.EnqueuedAt, entry.Operation, entry.RegistrationID, entry.ActingUser,
		entry.Payload, entry.OriginChannel, entry.OriginMessageTS,
	).Scan(&entry.ID)
}

// ListUnprocessed returns pending entries in append order. Drain relies on
// this ordering for its first-submission-wins de-duplication.
func (r *queueRepository) ListUnprocessed(ctx context.Context) ([]domain.QueueEntry, error) {
	query := `SELECT id, enqueued_at, operation, registration_id, acting_user, payload,
	                 origin_channel, origin_message_ts, processed
	          FROM deferred_queue WHERE processed = false ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.QueueEntry
	for rows.Next() {
		var e domain.QueueEntry
		if err := rows.Scan(&e.ID, &e.EnqueuedAt, &e.Operation, &e.RegistrationID, &e.ActingUser,
			&e.Payload, &e.OriginChannel, &e.OriginMessageTS, &e.Processed); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *queueRepository) MarkProcessed(ctx context.Context, id int64) error {
	query := `UPDATE deferred_queue SET processed = true WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *queueRepository) CountUnprocessed(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM deferred_queue WHERE processed = false`
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
