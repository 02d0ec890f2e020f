// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imagefetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// DefaultMaxBytes caps image responses when no limit is configured.
const DefaultMaxBytes = 8 << 20

// ErrTooLarge is returned when a response exceeds the byte limit.
var ErrTooLarge = errors.New("image exceeds size limit")

// Result is a successfully fetched image.
type Result struct {
	Data        []byte
	ContentType string
}

// Fetcher retrieves image bytes. Implementations must return promptly
// once ctx is cancelled.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Result, error)
}

// FetcherFunc adapts a function to [Fetcher].
type FetcherFunc func(ctx context.Context, url string) (Result, error)

// Fetch calls function(ctx, url).
func (function FetcherFunc) Fetch(ctx context.Context, url string) (Result, error) {
	return function(ctx, url)
}

// HTTPFetcher fetches images over HTTP(S).
type HTTPFetcher struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client
	// MaxBytes defaults to DefaultMaxBytes.
	MaxBytes int64
}

// Fetch issues a GET for url. Non-2xx responses and bodies larger than
// MaxBytes are errors.
func (fetcher HTTPFetcher) Fetch(ctx context.Context, url string) (Result, error) {
	client := fetcher.Client
	if client == nil {
		client = http.DefaultClient
	}
	limit := fetcher.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("building request: %w", err)
	}
	request.Header.Set("Accept", "image/*")

	response, err := client.Do(request)
	if err != nil {
		return Result{}, fmt.Errorf("fetching image: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return Result{}, fmt.Errorf("fetching image: unexpected status %s", response.Status)
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, limit+1))
	if err != nil {
		return Result{}, fmt.Errorf("reading image body: %w", err)
	}
	if int64(len(data)) > limit {
		return Result{}, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}

	contentType := response.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return Result{Data: data, ContentType: contentType}, nil
}
