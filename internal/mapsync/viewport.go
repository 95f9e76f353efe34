// Package mapsync binds the single focused identity or consent grant to a map
// viewport with at most one marker.
package mapsync

import (
	"errors"
	"fmt"
	"sync"

	"digipin/internal/domain"
)

// Zoom levels per call site.
const (
	ZoomPartnerOverview = 4
	ZoomOverview        = 5
	ZoomConsent         = 15
	ZoomAddress         = 16
)

// ErrViewportClosed is returned by a viewport after it has been torn down.
var ErrViewportClosed = errors.New("viewport closed")

// View is a map center and zoom.
type View struct {
	Center domain.GeoPoint `json:"center"`
	Zoom   int             `json:"zoom"`
}

// Marker is the single pin on the map.
type Marker struct {
	Point domain.GeoPoint `json:"point"`
	Label string          `json:"label"`
}

type focusRequest struct {
	view   View
	marker *Marker
}

// Viewport wraps one engine instance. Requests made before the engine is
// attached are queued and the latest one is applied on Attach.
type Viewport struct {
	mu      sync.Mutex
	engine  Engine
	home    View
	pending *focusRequest
	applied *focusRequest
	closed  bool
}

func newViewport(home View) *Viewport {
	return &Viewport{home: home}
}

// Ready reports whether an engine is attached.
func (v *Viewport) Ready() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.engine != nil && !v.closed
}

// Attach hands the loaded engine to the viewport and flushes the queued
// request, or the home view when nothing was queued. Attaching to a closed
// viewport closes the engine.
func (v *Viewport) Attach(e Engine) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		_ = e.Close()
		return ErrViewportClosed
	}
	if v.engine != nil {
		return errors.New("viewport already has an engine")
	}
	v.engine = e
	req := v.pending
	v.pending = nil
	if req == nil {
		req = &focusRequest{view: v.home}
	}
	return v.apply(req)
}

// Focus centers on point at zoom and replaces the marker with one carrying
// label. A request identical to the last applied one is a no-op.
func (v *Viewport) Focus(point domain.GeoPoint, label string, zoom int) error {
	return v.request(&focusRequest{
		view:   View{Center: point, Zoom: zoom},
		marker: &Marker{Point: point, Label: label},
	})
}

// Home removes the marker and returns to the home view.
func (v *Viewport) Home() error {
	return v.request(&focusRequest{view: v.home})
}

func (v *Viewport) request(req *focusRequest) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrViewportClosed
	}
	if v.engine == nil {
		v.pending = req
		return nil
	}
	if sameRequest(v.applied, req) {
		return nil
	}
	return v.apply(req)
}

// apply must be called with mu held.
func (v *Viewport) apply(req *focusRequest) error {
	if err := v.engine.SetView(req.view.Center, req.view.Zoom); err != nil {
		return fmt.Errorf("set view: %w", err)
	}
	var err error
	if req.marker != nil {
		err = v.engine.PlaceMarker(*req.marker)
	} else {
		err = v.engine.RemoveMarker()
	}
	if err != nil {
		return fmt.Errorf("marker: %w", err)
	}
	v.applied = req
	return nil
}

// Close tears down the engine. Safe to call more than once.
func (v *Viewport) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true
	v.pending = nil
	v.applied = nil
	if v.engine == nil {
		return nil
	}
	err := v.engine.Close()
	v.engine = nil
	return err
}

// State describes what the viewport currently shows.
type State struct {
	Ready   bool    `json:"ready"`
	Pending bool    `json:"pending"`
	View    *View   `json:"view,omitempty"`
	Marker  *Marker `json:"marker,omitempty"`
	Link    string  `json:"link,omitempty"`
}

func (v *Viewport) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	st := State{Ready: v.engine != nil && !v.closed, Pending: v.pending != nil}
	if v.applied != nil {
		view := v.applied.view
		st.View = &view
		if v.applied.marker != nil {
			m := *v.applied.marker
			st.Marker = &m
		}
	}
	if l, ok := v.engine.(Linker); ok && st.Ready {
		st.Link = l.Link()
	}
	return st
}

func sameRequest(a, b *focusRequest) bool {
	if a == nil || b == nil {
		return false
	}
	if a.view != b.view {
		return false
	}
	if (a.marker == nil) != (b.marker == nil) {
		return false
	}
	return a.marker == nil || *a.marker == *b.marker
}
