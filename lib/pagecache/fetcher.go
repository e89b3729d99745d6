package pagecache

import (
	"context"
	"log/slog"
	"recordscrape/lib/fetch"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("recordscrape/pagecache")

// Fetcher serves pages from the store and only calls inner on a miss. Only
// successful fetches are cached.
type Fetcher struct {
	store Store
	inner fetch.Fetcher
}

func NewFetcher(store Store, inner fetch.Fetcher) Fetcher {
	return Fetcher{store: store, inner: inner}
}

func (f Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, span := tracer.Start(ctx, "fetcher:Fetch")
	defer span.End()

	body, ok, err := f.store.Get(ctx, url)
	if err != nil {
		slog.WarnContext(ctx, "failed to read page cache", "url", url, "err", err)
	}
	span.SetAttributes(attribute.Bool("cache_hit", ok))
	if ok {
		return body, nil
	}

	body, err = f.inner.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	err = f.store.Put(ctx, url, body)
	if err != nil {
		slog.WarnContext(ctx, "failed to write page cache", "url", url, "err", err)
	}
	return body, nil
}
