package repositories

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-exchange-rates/internal/logger"
)

const requestLogKeyPrefix = "rate_limit:"

// RedisRequestLogRepository keeps one sorted set per client. Members are
// random ids scored by request time in unix microseconds.
type RedisRequestLogRepository struct {
	client *redis.Client
	window time.Duration // key TTL, entries older than this are trimmed on write
}

func NewRedisRequestLogRepository(client *redis.Client, window time.Duration) *RedisRequestLogRepository {
	return &RedisRequestLogRepository{client: client, window: window}
}

func requestLogKey(clientID string) string {
	return requestLogKeyPrefix + clientID
}

// DeleteBefore trims the client's members scored before cutoff. Keys of
// idle clients are left to expire.
func (r *RedisRequestLogRepository) DeleteBefore(ctx context.Context, clientID string, cutoff time.Time) error {
	key := requestLogKey(clientID)
	hi := "(" + strconv.FormatInt(cutoff.UnixMicro(), 10)

	n, err := r.client.ZRemRangeByScore(ctx, key, "-inf", hi).Result()

	logger.Log.Infow(
		"key", key,
		"max", hi,
		"result", n,
		"error", err,
	)

	return err
}

// Count returns the number of members scored strictly after since.
func (r *RedisRequestLogRepository) Count(ctx context.Context, clientID string, since time.Time) (int, error) {
	key := requestLogKey(clientID)
	lo := "(" + strconv.FormatInt(since.UnixMicro(), 10)

	n, err := r.client.ZCount(ctx, key, lo, "+inf").Result()

	logger.Log.Infow(
		"key", key,
		"min", lo,
		"result", n,
		"error", err,
	)

	return int(n), err
}

// Record adds a request at the given time and trims entries older than the window.
func (r *RedisRequestLogRepository) Record(ctx context.Context, clientID string, at time.Time) error {
	key := requestLogKey(clientID)
	cutoff := strconv.FormatInt(at.Add(-r.window).UnixMicro(), 10)

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", "("+cutoff)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(at.UnixMicro()), Member: uuid.NewString()})
	pipe.Expire(ctx, key, r.window)
	_, err := pipe.Exec(ctx)

	logger.Log.Infow(
		"key", key,
		"at", at,
		"result", "ok",
		"error", err,
	)

	return err
}
