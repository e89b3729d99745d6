// Package pagecache keeps fetched pages in a sql database so re-running a
// job does not fetch the same pages again.
package pagecache

import (
	"context"
	"database/sql"
	"errors"
	"recordscrape/internal/components/chrono"
	"time"
)

type Store struct {
	db     *sql.DB
	maxAge time.Duration
	clock  chrono.API
}

// NewStore expects a database that already has Schema applied. A maxAge of
// 0 never expires pages, a nil clock uses the system clock.
func NewStore(db *sql.DB, maxAge time.Duration, clock chrono.API) Store {
	if clock == nil {
		clock = chrono.StandardImpl{}
	}
	return Store{db: db, maxAge: maxAge, clock: clock}
}

// Get returns the cached body of url. ok is false when the page is not
// cached or has expired.
func (s Store) Get(ctx context.Context, url string) (body string, ok bool, err error) {
	var fetchedAt int64
	err = s.db.QueryRowContext(
		ctx,
		"select body, fetched_at from pages where url = ?",
		url,
	).Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if s.maxAge > 0 && s.clock.Now().Sub(time.Unix(fetchedAt, 0)) > s.maxAge {
		return "", false, nil
	}
	return body, true, nil
}

func (s Store) Put(ctx context.Context, url, body string) error {
	_, err := s.db.ExecContext(
		ctx,
		`insert into pages(url, body, fetched_at) values (?, ?, ?)
		on conflict(url) do update set body = excluded.body, fetched_at = excluded.fetched_at`,
		url, body, s.clock.Now().Unix(),
	)
	return err
}

// Prune deletes expired pages and returns how many were removed.
func (s Store) Prune(ctx context.Context) (int64, error) {
	if s.maxAge <= 0 {
		return 0, nil
	}
	cutoff := s.clock.Now().Add(-s.maxAge).Unix()
	res, err := s.db.ExecContext(ctx, "delete from pages where fetched_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
