package services

//go:generate mockgen -source=limiter.go -destination=limiter_mock.go -package=services

import (
	"context"
	"time"

	"github.com/sbilibin2017/gw-exchange-rates/internal/logger"
	"github.com/sbilibin2017/gw-exchange-rates/internal/metrics"
)

// RequestLog stores one timestamp per accepted request. DeleteBefore drops
// records older than cutoff; stores may purge other clients as well.
type RequestLog interface {
	DeleteBefore(ctx context.Context, clientID string, cutoff time.Time) error
	Count(ctx context.Context, clientID string, since time.Time) (int, error)
	Record(ctx context.Context, clientID string, at time.Time) error
}

// Default budgets.
const (
	DefaultLimitPerHour   = 100
	DefaultLimitPerSecond = 5
)

// Rejection windows.
const (
	WindowHour   = "hour"
	WindowSecond = "second"
)

// RequestLimiter enforces sliding hour and second budgets per client.
// Rejected requests are not recorded.
type RequestLimiter struct {
	log       RequestLog
	perHour   int
	perSecond int
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewRequestLimiter(log RequestLog, perHour, perSecond int, m *metrics.Metrics) *RequestLimiter {
	if perHour <= 0 {
		perHour = DefaultLimitPerHour
	}
	if perSecond <= 0 {
		perSecond = DefaultLimitPerSecond
	}
	return &RequestLimiter{
		log:       log,
		perHour:   perHour,
		perSecond: perSecond,
		metrics:   m,
		now:       time.Now,
	}
}

// CheckLimit admits the request and records it, or returns false when either
// window is exhausted. Store failures admit the request.
func (l *RequestLimiter) CheckLimit(ctx context.Context, clientID string) (bool, error) {
	now := l.now()
	hourAgo := now.Add(-time.Hour)

	if err := l.log.DeleteBefore(ctx, clientID, hourAgo); err != nil {
		logger.Log.Errorw("failed to prune request log", "error", err)
		return true, err
	}

	hourly, err := l.log.Count(ctx, clientID, hourAgo)
	if err != nil {
		logger.Log.Errorw("failed to count hourly requests", "client", clientID, "error", err)
		return true, err
	}
	if hourly >= l.perHour {
		logger.Log.Warnw("rate limit exceeded", "client", clientID, "window", WindowHour, "count", hourly)
		l.metrics.ObserveRejection(WindowHour)
		return false, nil
	}

	recent, err := l.log.Count(ctx, clientID, now.Add(-time.Second))
	if err != nil {
		logger.Log.Errorw("failed to count per-second requests", "client", clientID, "error", err)
		return true, err
	}
	if recent >= l.perSecond {
		logger.Log.Warnw("rate limit exceeded", "client", clientID, "window", WindowSecond, "count", recent)
		l.metrics.ObserveRejection(WindowSecond)
		return false, nil
	}

	if err := l.log.Record(ctx, clientID, now); err != nil {
		logger.Log.Errorw("failed to record request", "client", clientID, "error", err)
		return true, err
	}
	return true, nil
}
