package mapsync

import (
	"errors"
	"fmt"
	"sync"

	"digipin/internal/domain"
)

// ErrEngineClosed is returned by engines after Close.
var ErrEngineClosed = errors.New("map engine closed")

// Engine renders one map. Implementations need not be safe for concurrent
// use; the Viewport serializes calls.
type Engine interface {
	SetView(center domain.GeoPoint, zoom int) error
	PlaceMarker(m Marker) error
	RemoveMarker() error
	Close() error
}

// Linker is implemented by engines that can describe their view as a URL.
type Linker interface {
	Link() string
}

// LinkEngine is a headless engine that tracks view state and renders an
// OpenStreetMap permalink for it.
type LinkEngine struct {
	mu     sync.Mutex
	view   View
	marker *Marker
	closed bool
}

func NewLinkEngine() *LinkEngine {
	return &LinkEngine{}
}

func (e *LinkEngine) SetView(center domain.GeoPoint, zoom int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}
	if !center.Valid() {
		return fmt.Errorf("set view: invalid center %s", center)
	}
	e.view = View{Center: center, Zoom: zoom}
	return nil
}

func (e *LinkEngine) PlaceMarker(m Marker) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}
	e.marker = &m
	return nil
}

func (e *LinkEngine) RemoveMarker() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}
	e.marker = nil
	return nil
}

func (e *LinkEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.marker = nil
	return nil
}

func (e *LinkEngine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Link returns a permalink; with a marker the pin is included.
func (e *LinkEngine) Link() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.view
	if e.marker != nil {
		return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.6f&mlon=%.6f#map=%d/%.6f/%.6f",
			e.marker.Point.Lat, e.marker.Point.Lon, v.Zoom, v.Center.Lat, v.Center.Lon)
	}
	return fmt.Sprintf("https://www.openstreetmap.org/#map=%d/%.6f/%.6f", v.Zoom, v.Center.Lat, v.Center.Lon)
}

// Marker returns the current marker, if any.
func (e *LinkEngine) Marker() (Marker, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.marker == nil {
		return Marker{}, false
	}
	return *e.marker, true
}

func (e *LinkEngine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}
