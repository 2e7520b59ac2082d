package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vaughn-johnson/talkspace-public-api/internal/cache"
)

// day parses a cache key into the date column value.
func day(key string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cache key %q: %w", key, err)
	}
	return d, nil
}

// Exists reports whether a result is stored for the day key ("2006-01-02").
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	d, err := day(key)
	if err != nil {
		return false, err
	}
	var ok bool
	err = s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM daily_results WHERE day = $1)`, d).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return ok, nil
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	d, err := day(key)
	if err != nil {
		return nil, err
	}
	var data []byte
	err = s.pool.QueryRow(ctx, `SELECT payload FROM daily_results WHERE day = $1`, d).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Write stores the day's result unless one is already there.
func (s *Store) Write(ctx context.Context, key string, value []byte, contentType string) error {
	d, err := day(key)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO daily_results (day, content_type, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (day) DO NOTHING`,
		d, contentType, value,
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
