// Package fetch retrieves the raw text of a single web page per call.
package fetch

import (
	"context"
	"errors"
	"fmt"
)

// Fetcher returns the body of the page at url.
//
// note: fault injection point
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (string, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// TransportError is returned when a page could not be retrieved: the request
// failed, the server answered with a non-2xx status, or it redirected while
// redirects are disabled.
type TransportError struct {
	URL        string
	StatusCode int
	Redirect   bool
	Location   string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Redirect:
		if e.Location != "" {
			return fmt.Sprintf("could not fetch %s: redirected to %s (page not found for this identifier)", e.URL, e.Location)
		}
		return fmt.Sprintf("could not fetch %s: redirected (page not found for this identifier)", e.URL)
	case e.StatusCode != 0:
		return fmt.Sprintf("could not fetch %s: status %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("could not fetch %s: %s", e.URL, e.Err.Error())
	default:
		return fmt.Sprintf("could not fetch %s", e.URL)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsCancelled reports whether err was caused by the caller's context rather
// than by the remote page.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
