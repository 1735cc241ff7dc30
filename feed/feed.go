/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package feed fetches the remote default category list.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Seednode/bilsene/game"
	"github.com/Seednode/bilsene/storage"
	"github.com/google/uuid"
)

const maxPayload = 4 << 20

var ErrDisabled = errors.New("feed url not configured")

// Client downloads a JSON array of categories.
type Client struct {
	URL  string
	HTTP *http.Client
}

func NewClient(rawURL string, timeout time.Duration) *Client {
	return &Client{
		URL:  rawURL,
		HTTP: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads and decodes the category list. The raw payload is
// returned alongside so callers can cache it verbatim.
func (c *Client) Fetch(ctx context.Context) ([]game.Category, []byte, error) {
	if c.URL == "" {
		return nil, nil, ErrDisabled
	}

	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse feed url: %w", err)
	}

	// Cache-buster so intermediaries never serve a stale list.
	q := u.Query()
	q.Set("v", uuid.NewString())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("fetch feed: unexpected status %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return nil, nil, fmt.Errorf("read feed: %w", err)
	}

	cats, err := storage.Decode(raw)
	if err != nil {
		return nil, nil, err
	}

	return cats, raw, nil
}

// Cache receives a successfully fetched payload.
type Cache interface {
	ReplaceDefaults(ctx context.Context, raw []byte) error
}

// Refresher copies the remote list into the cache on success. Failures
// leave the cache untouched.
type Refresher struct {
	Client *Client
	Cache  Cache
}

// Refresh performs one best-effort update and reports how many categories
// were cached.
func (r *Refresher) Refresh(ctx context.Context) (int, error) {
	cats, raw, err := r.Client.Fetch(ctx)
	if err != nil {
		return 0, err
	}

	if err := r.Cache.ReplaceDefaults(ctx, raw); err != nil {
		return 0, fmt.Errorf("cache feed: %w", err)
	}

	return len(cats), nil
}

// Run refreshes immediately and then every interval until ctx is done.
// A non-positive interval refreshes only once. report is called after
// every attempt.
func (r *Refresher) Run(ctx context.Context, interval time.Duration, report func(n int, err error)) {
	n, err := r.Refresh(ctx)
	report(n, err)

	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.Refresh(ctx)
			report(n, err)
		}
	}
}
