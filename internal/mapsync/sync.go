package mapsync

import (
	"context"
	"log/slog"
	"sync"

	"digipin/internal/domain"
)

// Focusable is an item that can be previewed on the map.
type Focusable interface {
	FocusKey() string
	FocusLabel() string
	FocusPoint() (domain.GeoPoint, bool)
}

// Loader produces an engine, possibly slowly.
type Loader func(ctx context.Context) (Engine, error)

// Sync owns the mounted viewport and the single focused item.
type Sync struct {
	mu       sync.Mutex
	viewport *Viewport
	cancel   context.CancelFunc
	selected string
	label    string
	logger   *slog.Logger
}

func NewSync(logger *slog.Logger) *Sync {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sync{logger: logger}
}

// Mount creates the viewport for a newly shown view, tearing down any previous
// one. When load is non-nil the engine is loaded in the background and
// attached when ready; otherwise the caller attaches it.
func (s *Sync) Mount(ctx context.Context, home View, load Loader) *Viewport {
	s.mu.Lock()
	s.teardownLocked()
	v := newViewport(home)
	s.viewport = v
	s.selected, s.label = "", ""
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	if load != nil {
		go func() {
			defer cancel()
			engine, err := load(loadCtx)
			if err != nil {
				s.logger.WarnContext(loadCtx, "map engine failed to load", "error", err)
				return
			}
			if err := v.Attach(engine); err != nil {
				s.logger.DebugContext(loadCtx, "map engine discarded", "error", err)
			}
		}()
	}
	return v
}

// Unmount tears down the viewport and forgets the selection.
func (s *Sync) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
	s.selected, s.label = "", ""
}

func (s *Sync) teardownLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.viewport != nil {
		if err := s.viewport.Close(); err != nil {
			s.logger.Warn("map engine close failed", "error", err)
		}
		s.viewport = nil
	}
}

// Viewport returns the mounted viewport, or nil.
func (s *Sync) Viewport() *Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// Select makes item the focused item and previews it at zoom. Items without a
// location are shown at the default center. Without a mounted viewport only
// the selection is recorded.
func (s *Sync) Select(item Focusable, zoom int) error {
	point, ok := item.FocusPoint()
	if !ok {
		point = domain.DefaultCenter
	}
	s.mu.Lock()
	s.selected = item.FocusKey()
	s.label = item.FocusLabel()
	v := s.viewport
	s.mu.Unlock()

	if v == nil {
		return nil
	}
	return v.Focus(point, item.FocusLabel(), zoom)
}

// Selected returns the key of the focused item.
func (s *Sync) Selected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.selected != ""
}

// Clear defocuses and returns the viewport to its home view.
func (s *Sync) Clear() error {
	s.mu.Lock()
	s.selected, s.label = "", ""
	v := s.viewport
	s.mu.Unlock()
	if v == nil {
		return nil
	}
	return v.Home()
}

// Revalidate clears the selection when exists no longer reports its key. It
// returns true when the selection was dropped.
func (s *Sync) Revalidate(exists func(key string) bool) bool {
	key, ok := s.Selected()
	if !ok || exists(key) {
		return false
	}
	s.mu.Lock()
	if s.selected != key {
		s.mu.Unlock()
		return false
	}
	s.selected, s.label = "", ""
	v := s.viewport
	s.mu.Unlock()
	if v == nil {
		return true
	}
	if err := v.Home(); err != nil {
		s.logger.Warn("failed to reset map after stale selection", "key", key, "error", err)
	}
	return true
}

// Focus describes the selection and what the map shows.
type Focus struct {
	Key   string `json:"key,omitempty"`
	Label string `json:"label,omitempty"`
	State
}

func (s *Sync) Snapshot() Focus {
	s.mu.Lock()
	f := Focus{Key: s.selected, Label: s.label}
	v := s.viewport
	s.mu.Unlock()
	if v != nil {
		f.State = v.State()
	}
	return f
}
