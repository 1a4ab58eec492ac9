// Package view loads page data with per-page generation tracking, so a read
// that has been superseded by a newer read of the same page is dropped.
package view

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrStale means the result belongs to a superseded or cancelled read.
var ErrStale = errors.New("stale read")

// Tracker hands out read generations keyed by "sid|page". A key lives only
// while a read for it is in flight.
type Tracker struct {
	mu   sync.Mutex
	seq  uint64
	gens map[string]uint64
}

func NewTracker() *Tracker { return &Tracker{gens: map[string]uint64{}} }

// Key builds the tracker key for a session's page.
func Key(sid, page string) string { return sid + "|" + page }

// Begin starts a new read for key and returns its generation. Generations
// are never reused, even after the key has been dropped.
func (t *Tracker) Begin(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.gens[key] = t.seq
	return t.seq
}

// Finish ends read gen of key and reports whether it was still the latest.
// The latest read finishing drops the key.
func (t *Tracker) Finish(key string, gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gens[key] != gen {
		return false
	}
	delete(t.gens, key)
	return true
}

// Forget drops every generation held for a session.
func (t *Tracker) Forget(sid string) {
	prefix := sid + "|"
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.gens {
		if strings.HasPrefix(k, prefix) {
			delete(t.gens, k)
		}
	}
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.gens)
}

// Load runs fetch as generation-tagged read. The result is returned only if
// ctx is still live and no newer read of the same key has started.
func Load[T any](ctx context.Context, t *Tracker, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	gen := t.Begin(key)
	v, err := fetch(ctx)
	latest := t.Finish(key, gen)
	if ctx.Err() != nil || !latest {
		return zero, ErrStale
	}
	if err != nil {
		return zero, err
	}
	return v, nil
}
