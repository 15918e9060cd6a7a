package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-exchange-rates/internal/logger"
)

// RequestLogRepository keeps one row per accepted request in rate_limits.
type RequestLogRepository struct {
	db *sqlx.DB
}

func NewRequestLogRepository(db *sqlx.DB) *RequestLogRepository {
	return &RequestLogRepository{db: db}
}

// DeleteBefore removes every record older than cutoff, for all clients.
func (r *RequestLogRepository) DeleteBefore(ctx context.Context, _ string, cutoff time.Time) error {
	query := `DELETE FROM rate_limits WHERE request_time < $1`

	res, err := r.db.ExecContext(ctx, query, cutoff)

	var affected int64
	if err == nil {
		affected, _ = res.RowsAffected()
	}
	logger.Log.Infow(
		"query", query,
		"args", []any{cutoff},
		"result", affected,
		"error", err,
	)

	return err
}

// Count returns the number of records for clientID strictly after since.
func (r *RequestLogRepository) Count(ctx context.Context, clientID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM rate_limits
		WHERE client_id = $1 AND request_time > $2
	`

	var count int
	err := sqlx.GetContext(ctx, r.db, &count, query, clientID, since)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{clientID, since},
		"result", count,
		"error", err,
	)

	return count, err
}

// Record stores one request for clientID at the given time.
func (r *RequestLogRepository) Record(ctx context.Context, clientID string, at time.Time) error {
	query := `INSERT INTO rate_limits (client_id, request_time) VALUES ($1, $2)`

	_, err := r.db.ExecContext(ctx, query, clientID, at)

	logger.Log.Infow(
		"query", query,
		"args", []any{clientID, at},
		"error", err,
	)

	return err
}
