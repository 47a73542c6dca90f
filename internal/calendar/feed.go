package calendar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/mizutama/koyomi/internal/datekey"
	"github.com/mizutama/koyomi/internal/store"
)

// snapshot holds a rendered feed with its HTTP caching metadata.
type snapshot struct {
	data         []byte
	etag         string
	lastModified string
}

// Feed serves the registry calendar over HTTP. Reads are lock-free: the
// rendered snapshot sits behind an atomic pointer and is replaced wholesale
// on Refresh, so clients see either the old or the new feed, never a partial
// one. The feed is read often but refreshed only on registry mutation.
type Feed struct {
	store store.Registry
	clock datekey.Clock
	cache atomic.Pointer[snapshot]
}

// NewFeed creates a feed and renders the initial snapshot.
func NewFeed(st store.Registry, clock datekey.Clock) *Feed {
	if clock == nil {
		clock = datekey.RealClock{}
	}
	f := &Feed{store: st, clock: clock}
	if err := f.Refresh(); err != nil {
		slog.Warn("calendar: initial render failed", slog.String("error", err.Error()))
	}
	return f
}

// Refresh re-renders the feed from the current character set.
func (f *Feed) Refresh() error {
	chars, err := f.store.ListCharacters()
	if err != nil {
		return fmt.Errorf("calendar: refresh: %w", err)
	}
	data, err := Build(chars, f.clock.Now())
	if err != nil {
		return err
	}
	sum := sha256.Sum256(data)
	f.cache.Store(&snapshot{
		data:         data,
		etag:         `"` + hex.EncodeToString(sum[:]) + `"`,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	})
	return nil
}

// ServeHTTP handles GET /calendar.ics with conditional-request support.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	item := f.cache.Load()
	if item == nil {
		w.Header().Set("Retry-After", "5")
		http.Error(w, "feed not ready", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Header().Set("ETag", item.etag)
	w.Header().Set("Last-Modified", item.lastModified)

	if r.Header.Get("If-None-Match") == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	_, _ = w.Write(item.data)
}
