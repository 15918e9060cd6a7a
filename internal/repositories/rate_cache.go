package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-exchange-rates/internal/apperrors"
	"github.com/sbilibin2017/gw-exchange-rates/internal/logger"
	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
	"github.com/shopspring/decimal"
)

// RateCacheRepository persists historical rates keyed by (from, to, date).
type RateCacheRepository struct {
	db      *sqlx.DB
	enabled bool
}

// NewRateCacheRepository returns a repository. When caching is enabled the
// database must answer a ping, otherwise construction fails.
func NewRateCacheRepository(ctx context.Context, db *sqlx.DB, enabled bool) (*RateCacheRepository, error) {
	if !enabled {
		return &RateCacheRepository{db: db}, nil
	}
	if db == nil {
		return nil, apperrors.StoreUnavailable("rate store is not configured", nil)
	}
	if err := db.PingContext(ctx); err != nil {
		logger.Log.Errorw("rate store ping failed", "error", err)
		return nil, apperrors.StoreUnavailable("rate store is unreachable", err)
	}
	return &RateCacheRepository{db: db, enabled: true}, nil
}

// IsCachingEnabled reports whether reads and writes reach the database.
func (r *RateCacheRepository) IsCachingEnabled() bool {
	return r.enabled
}

// Get returns the stored rate and true, or false when no row exists.
func (r *RateCacheRepository) Get(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, bool, error) {
	if !r.enabled {
		return decimal.Zero, false, nil
	}

	query := `
		SELECT from_currency, to_currency, rate, rate_date FROM rates
		WHERE from_currency = $1 AND to_currency = $2 AND rate_date = $3
	`
	day := date.Format(models.DateLayout)

	var record models.RateRecord
	err := sqlx.GetContext(ctx, r.db, &record, query, from, to, day)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{from, to, day},
		"result", record.Rate.String(),
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, apperrors.Cache("failed to read cached rate", err)
	}
	return record.Rate, true, nil
}

// Save upserts the rate for (from, to, date).
func (r *RateCacheRepository) Save(ctx context.Context, from, to string, rate decimal.Decimal, date time.Time) error {
	if !r.enabled {
		return nil
	}
	if !rate.IsPositive() {
		return apperrors.Validation("rate must be positive")
	}

	query := `
		INSERT INTO rates (from_currency, to_currency, rate, rate_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (from_currency, to_currency, rate_date)
		DO UPDATE SET rate = EXCLUDED.rate, updated_at = NOW()
	`
	day := date.Format(models.DateLayout)

	_, err := r.db.ExecContext(ctx, query, from, to, rate.String(), day)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{from, to, rate.String(), day},
		"error", err,
	)

	if err != nil {
		return apperrors.Cache("failed to save rate", err)
	}
	return nil
}
