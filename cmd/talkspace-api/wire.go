package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vaughn-johnson/talkspace-public-api/internal/cache"
	"github.com/vaughn-johnson/talkspace-public-api/internal/config"
	"github.com/vaughn-johnson/talkspace-public-api/internal/events"
	"github.com/vaughn-johnson/talkspace-public-api/internal/service"
	"github.com/vaughn-johnson/talkspace-public-api/internal/slack"
	"github.com/vaughn-johnson/talkspace-public-api/internal/source"
	"github.com/vaughn-johnson/talkspace-public-api/internal/store"
)

type deps struct {
	service *service.Service
	closers []func()

	db *store.Store // shared when postgres is both source and cache
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// wire connects the configured backends. On error everything opened so far
// is closed again.
func wire(ctx context.Context, cfg config.Config) (*deps, error) {
	d := &deps{}
	svc, err := d.build(ctx, cfg)
	if err != nil {
		d.close()
		return nil, err
	}
	d.service = svc
	return d, nil
}

func (d *deps) build(ctx context.Context, cfg config.Config) (*service.Service, error) {
	loc, err := time.LoadLocation(cfg.CacheTimezone)
	if err != nil {
		return nil, fmt.Errorf("load CACHE_TIMEZONE %q: %w", cfg.CacheTimezone, err)
	}

	src, err := d.buildSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c, err := d.buildCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pub, err := d.buildPublisher(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc := service.New(src, c, pub, cfg.RelevantMessageTypes, loc, slog.Default())

	// Slack digest (optional, the API works without it)
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		svc.SetNotifier(slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default()))
		slog.Info("slack digest ready", "channel", cfg.SlackChannel)
	}
	return svc, nil
}

func (d *deps) postgres(ctx context.Context, cfg config.Config) (*store.Store, error) {
	if d.db != nil {
		return d.db, nil
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, db.Close)
	d.db = db
	slog.Info("database connected")
	return db, nil
}

func (d *deps) buildSource(ctx context.Context, cfg config.Config) (service.MessageSource, error) {
	switch cfg.MessageSource {
	case "mongo":
		m, err := source.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := m.Close(closeCtx); err != nil {
				slog.Warn("mongo disconnect failed", "error", err)
			}
		})
		slog.Info("mongo connected", "database", cfg.MongoDatabase, "collection", cfg.MongoCollection)
		return m, nil
	case "postgres":
		return d.postgres(ctx, cfg)
	case "file":
		slog.Info("reading messages from export", "path", cfg.ExportPath)
		return source.NewFile(cfg.ExportPath), nil
	}
	return nil, fmt.Errorf("unknown message source %q", cfg.MessageSource)
}

func (d *deps) buildCache(ctx context.Context, cfg config.Config) (service.DailyCache, error) {
	switch cfg.CacheBackend {
	case "dir":
		dir, err := cache.NewDir(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		return dir, nil
	case "redis":
		r, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, func() { _ = r.Close() })
		return r, nil
	case "sqlite":
		s, err := cache.NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, func() { _ = s.Close() })
		return s, nil
	case "postgres":
		db, err := d.postgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureCacheSchema(ctx); err != nil {
			return nil, err
		}
		return db, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
}

// buildPublisher returns nil when NATS is not configured.
func (d *deps) buildPublisher(ctx context.Context, cfg config.Config) (service.Publisher, error) {
	if cfg.NatsURL == "" {
		slog.Info("NATS not configured, computed events disabled")
		return nil, nil
	}
	client, err := events.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, client.Close)
	slog.Info("NATS connected", "url", cfg.NatsURL)
	return client, nil
}
