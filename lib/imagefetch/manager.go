// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imagefetch

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/chatmark/lib/markdown"
	"github.com/bureau-foundation/chatmark/lib/urlpolicy"
)

// Key identifies an image by the BLAKE3 digest of its URL.
type Key [32]byte

// KeyFor returns the key for url.
func KeyFor(url string) Key {
	return Key(blake3.Sum256([]byte(url)))
}

// String returns the first 8 bytes of the digest in hex, enough to
// tell images apart in logs.
func (key Key) String() string {
	return hex.EncodeToString(key[:8])
}

// State is the lifecycle of one image.
type State int

const (
	// StateBlocked: the policy refuses to fetch this image.
	StateBlocked State = iota
	// StateAwaitingTap: allowed, waiting for the user to ask.
	StateAwaitingTap
	// StateLoading: a fetch is in flight.
	StateLoading
	// StateLoaded: Data and ContentType are set.
	StateLoaded
	// StateFailed: the fetch failed; show a placeholder.
	StateFailed
)

func (state State) String() string {
	switch state {
	case StateBlocked:
		return "blocked"
	case StateAwaitingTap:
		return "awaiting_tap"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Image is a snapshot of one managed image.
type Image struct {
	Key         Key
	URL         string
	Alt         string
	State       State
	Data        []byte
	ContentType string
	// Err is set when State is StateFailed.
	Err error
}

// Config configures a Manager.
type Config struct {
	Policy  urlpolicy.ImagePolicy
	Fetcher Fetcher
	// Timeout bounds each fetch. Zero means no timeout beyond
	// cancellation.
	Timeout time.Duration
	// OnChange is called after an image changes state as the result
	// of a fetch finishing. It is called from the fetch goroutine
	// without the manager's lock held.
	OnChange func(Key)
	// Logger defaults to a discard logger.
	Logger *slog.Logger
}

// Manager owns the image fetches for the tree currently on screen.
type Manager struct {
	policy   urlpolicy.ImagePolicy
	fetcher  Fetcher
	timeout  time.Duration
	onChange func(Key)
	logger   *slog.Logger

	// base is cancelled by Close; every fetch context derives from it.
	base       context.Context
	cancelBase context.CancelFunc

	mu         sync.Mutex
	entries    map[Key]*entry
	order      []Key
	generation uint64
	closed     bool
	inFlight   sync.WaitGroup
}

type entry struct {
	image Image
	// cancel is non-nil while a fetch is in flight.
	cancel context.CancelFunc
	// attempt distinguishes fetches of the same key so a cancelled
	// fetch finishing late cannot overwrite a newer result.
	attempt uint64
}

// NewManager creates a manager. A nil Fetcher uses [HTTPFetcher].
func NewManager(config Config) *Manager {
	fetcher := config.Fetcher
	if fetcher == nil {
		fetcher = HTTPFetcher{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	base, cancel := context.WithCancel(context.Background())
	return &Manager{
		policy:     config.Policy,
		fetcher:    fetcher,
		timeout:    config.Timeout,
		onChange:   config.OnChange,
		logger:     logger,
		base:       base,
		cancelBase: cancel,
		entries:    make(map[Key]*entry),
	}
}

// Replace makes images the current set and returns their keys in
// order, one per distinct URL. Fetches for keys that are not in the
// new set are cancelled and forgotten. New keys are classified by the
// policy, and allowed ones under [urlpolicy.ImagesAllow] start
// fetching.
//
// Keys already known keep their state, in flight or finished, rather
// than starting a fresh fetch. A streaming response replaces the tree
// on every chunk, and refetching each image per chunk would never let
// one finish.
func (manager *Manager) Replace(images []markdown.Image) []Key {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	if manager.closed {
		return nil
	}
	manager.generation++

	next := make(map[Key]*entry, len(images))
	var order []Key
	for _, image := range images {
		key := KeyFor(image.URL)
		if _, seen := next[key]; seen {
			continue
		}
		order = append(order, key)
		if existing, ok := manager.entries[key]; ok {
			next[key] = existing
			continue
		}
		next[key] = manager.classifyLocked(key, image)
	}

	for key, old := range manager.entries {
		if _, kept := next[key]; kept {
			continue
		}
		if old.cancel != nil {
			old.cancel()
			manager.logger.Debug("image fetch cancelled", "key", key.String(), "url", old.image.URL)
		}
	}

	manager.entries = next
	manager.order = order
	return order
}

func (manager *Manager) classifyLocked(key Key, image markdown.Image) *entry {
	created := &entry{image: Image{Key: key, URL: image.URL, Alt: image.Alt}}
	switch manager.policy.Decide(image.URL) {
	case urlpolicy.ImageFetch:
		manager.startLocked(created)
	case urlpolicy.ImageAwaitTap:
		created.image.State = StateAwaitingTap
	default:
		created.image.State = StateBlocked
		manager.logger.Debug("image blocked by policy",
			"url", image.URL,
			"reason", "mode "+manager.policy.Mode.String()+" or url not allow-listed")
	}
	return created
}

// startLocked launches a fetch for current. The caller holds mu.
func (manager *Manager) startLocked(current *entry) {
	ctx, cancel := context.WithCancel(manager.base)
	if manager.timeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, manager.timeout)
		outerCancel := cancel
		cancel = func() {
			timeoutCancel()
			outerCancel()
		}
	}

	current.attempt++
	current.cancel = cancel
	current.image.State = StateLoading
	current.image.Err = nil

	attempt := current.attempt
	key := current.image.Key
	url := current.image.URL

	manager.inFlight.Add(1)
	go manager.fetch(ctx, cancel, current, key, url, attempt)
}

func (manager *Manager) fetch(ctx context.Context, cancel context.CancelFunc, target *entry, key Key, url string, attempt uint64) {
	defer manager.inFlight.Done()
	defer cancel()

	result, err := manager.fetcher.Fetch(ctx, url)

	manager.mu.Lock()
	current, ok := manager.entries[key]
	if manager.closed || !ok || current != target || current.attempt != attempt {
		manager.mu.Unlock()
		return
	}
	current.cancel = nil
	if err != nil {
		current.image.State = StateFailed
		current.image.Err = err
		manager.logger.Debug("image fetch failed", "url", url, "error", err)
	} else {
		current.image.State = StateLoaded
		current.image.Data = result.Data
		current.image.ContentType = result.ContentType
	}
	onChange := manager.onChange
	manager.mu.Unlock()

	if onChange != nil {
		onChange(key)
	}
}

// Load performs the user's explicit request to load an image. It
// starts a fetch for an image awaiting a tap, retries a failed one,
// and reports whether a fetch started. Blocked images stay blocked.
func (manager *Manager) Load(key Key) bool {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	if manager.closed {
		return false
	}
	current, ok := manager.entries[key]
	if !ok {
		return false
	}
	switch current.image.State {
	case StateAwaitingTap, StateFailed:
		manager.startLocked(current)
		return true
	default:
		return false
	}
}

// LoadAll calls Load for every image awaiting a tap and returns how
// many fetches started.
func (manager *Manager) LoadAll() int {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	if manager.closed {
		return 0
	}
	started := 0
	for _, key := range manager.order {
		current := manager.entries[key]
		if current.image.State == StateAwaitingTap {
			manager.startLocked(current)
			started++
		}
	}
	return started
}

// Get returns a snapshot of the image for key.
func (manager *Manager) Get(key Key) (Image, bool) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	current, ok := manager.entries[key]
	if !ok {
		return Image{}, false
	}
	return current.image, true
}

// Lookup returns a snapshot of the image for url.
func (manager *Manager) Lookup(url string) (Image, bool) {
	return manager.Get(KeyFor(url))
}

// Images returns snapshots of the current set in Replace order.
func (manager *Manager) Images() []Image {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	images := make([]Image, 0, len(manager.order))
	for _, key := range manager.order {
		images = append(images, manager.entries[key].image)
	}
	return images
}

// Generation counts calls to Replace.
func (manager *Manager) Generation() uint64 {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	return manager.generation
}

// Close cancels every fetch and waits for the fetch goroutines to
// return. The manager accepts no further work.
func (manager *Manager) Close() {
	manager.mu.Lock()
	manager.closed = true
	manager.mu.Unlock()

	manager.cancelBase()
	manager.inFlight.Wait()
}
