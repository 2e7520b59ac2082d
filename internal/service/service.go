// Package service computes the engagement result for the current day,
// reading it from the daily cache when an earlier run already wrote it.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/vaughn-johnson/talkspace-public-api/internal/cache"
	"github.com/vaughn-johnson/talkspace-public-api/internal/engagement"
	"github.com/vaughn-johnson/talkspace-public-api/internal/events"
	"github.com/vaughn-johnson/talkspace-public-api/internal/metrics"
	"github.com/vaughn-johnson/talkspace-public-api/internal/report"
)

const contentTypeJSON = "application/json"

// MessageSource returns every stored message whose type is in
// messageTypes, in no particular order.
type MessageSource interface {
	Find(ctx context.Context, messageTypes []int) ([]engagement.RawMessage, error)
}

// DailyCache stores one payload per calendar day ("2006-01-02").
type DailyCache interface {
	Exists(ctx context.Context, key string) (bool, error)
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte, contentType string) error
}

type Publisher interface {
	Publish(subject string, data any) error
}

// Notifier is told about each freshly computed day, e.g. to post a digest.
type Notifier interface {
	Notify(ctx context.Context, date string, rows []engagement.Row) error
}

// Result is one day's engagement table.
type Result struct {
	Date   string
	Rows   []engagement.Row
	Cached bool
}

type Service struct {
	source        MessageSource
	cache         DailyCache
	publisher     Publisher // nil disables events
	notifier      Notifier  // optional
	relevantTypes []int
	loc           *time.Location
	logger        *slog.Logger

	now    func() time.Time
	flight singleflight.Group
}

// New creates a Service. publisher may be nil; loc nil means UTC.
func New(src MessageSource, c DailyCache, pub Publisher, relevantTypes []int, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		source:        src,
		cache:         c,
		publisher:     pub,
		relevantTypes: relevantTypes,
		loc:           loc,
		logger:        logger,
		now:           time.Now,
	}
}

// SetNotifier registers n to be told about computed days. Notification
// failures are logged, never returned.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Daily returns today's result. Concurrent calls for the same day share
// a single cache lookup and computation.
func (s *Service) Daily(ctx context.Context) (*Result, error) {
	key := cache.DateKey(s.now(), s.loc)

	ch := s.flight.DoChan(key, func() (any, error) {
		// Detached so one caller going away does not fail the others.
		return s.daily(context.WithoutCancel(ctx), key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Result), nil
	}
}

func (s *Service) daily(ctx context.Context, key string) (*Result, error) {
	ok, err := s.cache.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check cache: %w", err)
	}
	if ok {
		return s.cached(ctx, key)
	}
	return s.compute(ctx, key)
}

func (s *Service) cached(ctx context.Context, key string) (*Result, error) {
	data, err := s.cache.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	rows, err := report.DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("decode cached result %s: %w", key, err)
	}

	metrics.DailyResults.WithLabelValues(metrics.SourceCache).Inc()
	s.logger.Debug("daily result served from cache", "date", key, "rows", len(rows))
	return &Result{Date: key, Rows: rows, Cached: true}, nil
}

func (s *Service) compute(ctx context.Context, key string) (*Result, error) {
	start := time.Now()

	msgs, err := s.source.Find(ctx, s.relevantTypes)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}

	rows, err := engagement.Transform(msgs, s.relevantTypes)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}

	payload, err := report.EncodeJSON(rows)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	if err := s.cache.Write(ctx, key, payload, contentTypeJSON); err != nil {
		return nil, fmt.Errorf("write cache: %w", err)
	}

	elapsed := time.Since(start)
	metrics.DailyResults.WithLabelValues(metrics.SourceComputed).Inc()
	metrics.TransformDuration.Observe(elapsed.Seconds())
	metrics.RowsEmitted.Set(float64(len(rows)))

	s.logger.Info("daily result computed",
		"date", key,
		"messages", len(msgs),
		"rows", len(rows),
		"duration", elapsed,
	)

	s.publishComputed(key, len(msgs), len(rows), elapsed)
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, key, rows); err != nil {
			s.logger.Warn("failed to notify computed day", "date", key, "error", err)
		}
	}
	return &Result{Date: key, Rows: rows}, nil
}

func (s *Service) publishComputed(key string, messages, rows int, elapsed time.Duration) {
	if s.publisher == nil {
		return
	}
	evt := events.ComputedEvent{
		RunID:          uuid.New().String(),
		Date:           key,
		Rows:           rows,
		SourceMessages: messages,
		DurationMs:     elapsed.Milliseconds(),
		ComputedAt:     s.now().UTC(),
	}
	if err := s.publisher.Publish(events.SubjectComputed, evt); err != nil {
		s.logger.Warn("failed to publish computed event", "date", key, "error", err)
	}
}
