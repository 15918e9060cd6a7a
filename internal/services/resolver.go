package services

//go:generate mockgen -source=resolver.go -destination=resolver_mock.go -package=services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-exchange-rates/internal/apperrors"
	"github.com/sbilibin2017/gw-exchange-rates/internal/logger"
	"github.com/sbilibin2017/gw-exchange-rates/internal/metrics"
	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// RateStore is the persistent rate cache.
type RateStore interface {
	Get(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, bool, error)
	Save(ctx context.Context, from, to string, rate decimal.Decimal, date time.Time) error
	IsCachingEnabled() bool
}

// RateProvider is an external source of rates. A nil date means latest.
type RateProvider interface {
	Name() string
	Fetch(ctx context.Context, from, to string, date *time.Time) (decimal.Decimal, error)
	IsAvailable(ctx context.Context) bool
	SupportedCurrencies() []string
}

// KafkaWriter publishes audit events.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const cacheDegradedWarning = "rate cache is unavailable; result fetched from provider"

// RateResolver turns (from, to, date) into a Quote, preferring the store
// over the provider.
type RateResolver struct {
	store           RateStore
	provider        RateProvider
	events          KafkaWriter
	metrics         *metrics.Metrics
	cacheCurrencies map[string]struct{}
	timeout         time.Duration
	now             func() time.Time
}

type ResolverOption func(*RateResolver)

// WithCacheCurrencies limits write-back to the listed destination currencies.
// An empty list allows every pair.
func WithCacheCurrencies(codes []string) ResolverOption {
	return func(r *RateResolver) {
		if len(codes) == 0 {
			r.cacheCurrencies = nil
			return
		}
		r.cacheCurrencies = make(map[string]struct{}, len(codes))
		for _, c := range codes {
			r.cacheCurrencies[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
		}
	}
}

// WithProviderTimeout bounds every provider call.
func WithProviderTimeout(d time.Duration) ResolverOption {
	return func(r *RateResolver) { r.timeout = d }
}

func WithEventWriter(w KafkaWriter) ResolverOption {
	return func(r *RateResolver) { r.events = w }
}

func WithMetrics(m *metrics.Metrics) ResolverOption {
	return func(r *RateResolver) { r.metrics = m }
}

func WithClock(now func() time.Time) ResolverOption {
	return func(r *RateResolver) { r.now = now }
}

func NewRateResolver(store RateStore, provider RateProvider, opts ...ResolverOption) *RateResolver {
	r := &RateResolver{
		store:    store,
		provider: provider,
		timeout:  10 * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ParseDate accepts "", "latest" or YYYY-MM-DD. Latest yields nil.
// Dates after today (UTC) are rejected.
func ParseDate(raw string, now time.Time) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, models.LatestDate) {
		return nil, nil
	}

	d, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return nil, apperrors.Validation("Invalid date format. Use YYYY-MM-DD or 'latest'")
	}

	today := truncateDay(now)
	if d.After(today) {
		return nil, apperrors.Validation("Date cannot be in the future")
	}
	return &d, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Resolve returns the rate for one unit of from expressed in to.
func (r *RateResolver) Resolve(ctx context.Context, from, to, rawDate string) (*models.Quote, error) {
	from, err := models.NormalizeCurrency(from)
	if err != nil {
		return nil, err
	}
	to, err = models.NormalizeCurrency(to)
	if err != nil {
		return nil, err
	}

	now := r.now()
	date, err := ParseDate(rawDate, now)
	if err != nil {
		return nil, err
	}

	day := truncateDay(now)
	if date != nil {
		day = *date
	}

	quote := &models.Quote{From: from, To: to, Date: day}

	if from == to {
		quote.Rate = decimal.NewFromInt(1)
		quote.Source = models.SourceCache
		quote.Identity = true
		r.metrics.ObserveResolution(string(quote.Source))
		return quote, nil
	}

	degraded := false
	if date != nil && r.store.IsCachingEnabled() {
		rate, ok, err := r.lookup(ctx, from, to, day)
		if err != nil {
			degraded = true
		} else if ok {
			quote.Rate = rate
			quote.Source = models.SourceCache
			r.metrics.ObserveResolution(string(quote.Source))
			return quote, nil
		}
	}

	rate, err := r.fetch(ctx, from, to, date)
	if err != nil {
		return nil, err
	}

	quote.Rate = rate
	quote.Source = models.SourceProvider

	saved := false
	if date != nil && r.store.IsCachingEnabled() && r.cacheable(to) {
		if err := r.store.Save(ctx, from, to, rate, day); err != nil {
			logger.Log.Warnw("failed to cache rate", "from", from, "to", to, "date", day.Format(models.DateLayout), "error", err)
			r.metrics.ObserveCacheError("save")
			degraded = true
		} else {
			saved = true
		}
	}
	if degraded {
		quote.Warning = cacheDegradedWarning
	}

	r.publish(ctx, quote, date == nil, saved)
	r.metrics.ObserveResolution(string(quote.Source))
	return quote, nil
}

// lookup tries the direct pair, then the inverse pair.
func (r *RateResolver) lookup(ctx context.Context, from, to string, day time.Time) (decimal.Decimal, bool, error) {
	rate, ok, err := r.store.Get(ctx, from, to, day)
	if err != nil {
		logger.Log.Warnw("cache lookup failed", "from", from, "to", to, "error", err)
		r.metrics.ObserveCacheError("get")
		return decimal.Zero, false, err
	}
	if ok && rate.IsPositive() {
		return rate, true, nil
	}

	rate, ok, err = r.store.Get(ctx, to, from, day)
	if err != nil {
		logger.Log.Warnw("inverse cache lookup failed", "from", to, "to", from, "error", err)
		r.metrics.ObserveCacheError("get")
		return decimal.Zero, false, err
	}
	if ok && rate.IsPositive() {
		return models.Inverse(rate), true, nil
	}
	return decimal.Zero, false, nil
}

func (r *RateResolver) fetch(ctx context.Context, from, to string, date *time.Time) (decimal.Decimal, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	rate, err := r.provider.Fetch(ctx, from, to, date)
	if err == nil {
		return rate, nil
	}

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		code := apperrors.CodeAPI
		if errors.Is(err, context.DeadlineExceeded) {
			code = apperrors.CodeNetwork
		}
		appErr = apperrors.Provider(code, "provider call failed", err)
	}

	r.metrics.ObserveProviderError(appErr.Code)
	logger.Log.Errorw("provider fetch failed", "provider", r.provider.Name(), "from", from, "to", to, "code", appErr.Code, "error", err)

	if appErr.Kind == apperrors.KindProvider && appErr.Code == apperrors.CodeRateNotFound {
		return decimal.Zero, apperrors.NotFound("Exchange rate not available for the specified currencies and date", appErr.Err)
	}
	return decimal.Zero, appErr
}

func (r *RateResolver) cacheable(to string) bool {
	if len(r.cacheCurrencies) == 0 {
		return true
	}
	_, ok := r.cacheCurrencies[to]
	return ok
}

func (r *RateResolver) publish(ctx context.Context, q *models.Quote, latest, saved bool) {
	if r.events == nil {
		return
	}

	date := q.Date.Format(models.DateLayout)
	if latest {
		date = models.LatestDate
	}
	event := models.RateFetchedEvent{
		EventID:   uuid.NewString(),
		From:      q.From,
		To:        q.To,
		Rate:      q.FormattedRate(),
		Date:      date,
		Provider:  r.provider.Name(),
		Cached:    saved,
		Timestamp: r.now().Unix(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal rate event", "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%s%s", q.From, q.To)),
		Value: payload,
	}
	if err := r.events.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish rate event", "from", q.From, "to", q.To, "error", err)
	}
}
