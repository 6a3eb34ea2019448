package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Client tries each source in order until one answers. A source that fails
// for any reason other than "not found" gets Retries more attempts.
type Client struct {
	sources []Source
	log     zerolog.Logger

	Retries int
	Backoff time.Duration
}

// NewClient returns a client with one retry per source.
func NewClient(log zerolog.Logger, sources ...Source) *Client {
	return &Client{
		sources: sources,
		log:     log,
		Retries: 1,
		Backoff: 500 * time.Millisecond,
	}
}

// FetchSummary returns the first summary any source can provide.
func (c *Client) FetchSummary(ctx context.Context) (Summary, error) {
	var summary Summary
	err := c.each(ctx, "summary", func(src Source) error {
		var err error
		summary, err = src.FetchSummary(ctx)
		return err
	})
	return summary, err
}

// FetchPlaylist returns the tracks of playlist id from the first source that
// has it.
func (c *Client) FetchPlaylist(ctx context.Context, id string) ([]Track, error) {
	var tracks []Track
	err := c.each(ctx, id, func(src Source) error {
		var err error
		tracks, err = src.FetchPlaylist(ctx, id)
		return err
	})
	return tracks, err
}

func (c *Client) each(ctx context.Context, what string, fetch func(Source) error) error {
	if len(c.sources) == 0 {
		return fmt.Errorf("%w: no catalog source configured", ErrUnavailable)
	}

	var lastErr error
	for _, src := range c.sources {
		for attempt := 0; attempt <= c.Retries; attempt++ {
			if attempt > 0 {
				if err := sleep(ctx, c.Backoff); err != nil {
					return err
				}
			}
			err := fetch(src)
			if err == nil {
				return nil
			}
			lastErr = err
			c.log.Warn().Err(err).
				Str("source", src.Name()).
				Str("fetch", what).
				Int("attempt", attempt+1).
				Msg("catalog fetch failed")
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, ErrNotFound) {
				break
			}
		}
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
