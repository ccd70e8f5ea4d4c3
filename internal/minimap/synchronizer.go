/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package minimap keeps the overview widget and the main canvas consistent in
// both directions. Viewport changes on the host push a new overlay rect;
// user drags on the overlay pull the host to a new centre. An explicit phase
// guard breaks the feedback loop between the two.
package minimap

import (
	"log/slog"

	"goiv/internal/content"
	"goiv/internal/geom"
	applog "goiv/internal/log"
	"goiv/internal/overlay"
	"goiv/internal/overview"
)

// HostSurface is the main canvas as seen by the synchronizer. Rects and
// points are in content space. RequestCenterOn is fire-and-forget: the host
// may clamp, and reports the real outcome through OnViewportChanged.
type HostSurface interface {
	ViewportRect() geom.Rect
	OnViewportChanged(fn func(geom.Rect))
	RequestCenterOn(p geom.Pt)
}

// Phase is the reentrancy guard state.
type Phase int

const (
	Idle Phase = iota
	DispatchingViewportChange
	DispatchingUserDrag
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case DispatchingViewportChange:
		return "dispatching_viewport_change"
	case DispatchingUserDrag:
		return "dispatching_user_drag"
	default:
		return "unknown"
	}
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

func WithLogger(l *slog.Logger) Option       { return func(s *Synchronizer) { s.log = l } }
func WithEpsilon(eps float64) Option         { return func(s *Synchronizer) { s.eps = eps } }
func WithForceHidden(hidden bool) Option     { return func(s *Synchronizer) { s.forceHidden = hidden } }
func WithAutoHide(enabled bool) Option       { return func(s *Synchronizer) { s.autoHide = enabled } }
func WithOverlayMovable(movable bool) Option { return func(s *Synchronizer) { s.movable = movable } }

// Synchronizer must only be used from the UI goroutine.
type Synchronizer struct {
	host   HostSurface
	render *overview.State
	ctrl   *overlay.Controller

	phase       Phase
	forceHidden bool
	autoHide    bool
	movable     bool
	eps         float64

	viewport   geom.Rect
	visibility Visibility
	visKnown   bool

	onVisibility []func(Visibility)
	onOverlay    []func(geom.Rect)
	onMoved      []func(geom.Pt)

	log *slog.Logger
}

// New wires a synchronizer to host and subscribes to its viewport changes.
func New(host HostSurface, opts ...Option) *Synchronizer {
	s := &Synchronizer{host: host, autoHide: true, movable: true, eps: DefaultEpsilon}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = applog.WithComponent("minimap")
	}
	s.render = overview.New(s.log)
	s.ctrl = overlay.New(s.log)
	s.ctrl.SetMovable(s.movable)
	s.render.OnFitChanged(s.ctrl.SetFit)
	s.ctrl.OnRegionMoved(s.regionMoved)
	if host != nil {
		s.viewport = host.ViewportRect()
		host.OnViewportChanged(s.ViewportChanged)
	}
	return s
}

// Bind subscribes to a content provider's frame and transform notifications.
func (s *Synchronizer) Bind(p content.Provider) {
	p.OnFrameChanged(s.SetContent)
	p.OnTransformChanged(s.SetTransform)
}

// OnVisibilityChanged is called whenever the effective visibility changes,
// and once for the first evaluation.
func (s *Synchronizer) OnVisibilityChanged(fn func(Visibility)) {
	if fn != nil {
		s.onVisibility = append(s.onVisibility, fn)
	}
}

// OnOverlayChanged is called after every viewport-driven overlay update.
func (s *Synchronizer) OnOverlayChanged(fn func(geom.Rect)) {
	if fn != nil {
		s.onOverlay = append(s.onOverlay, fn)
	}
}

// OnRegionMovedByUser receives the centre of a user-moved overlay in content
// space, before the host is asked to centre there.
func (s *Synchronizer) OnRegionMovedByUser(fn func(geom.Pt)) {
	if fn != nil {
		s.onMoved = append(s.onMoved, fn)
	}
}

// ViewportChanged is the host-to-minimap path.
func (s *Synchronizer) ViewportChanged(rect geom.Rect) {
	if s.phase == DispatchingViewportChange {
		s.violation("viewport change while already dispatching one")
		return
	}
	prev := s.phase
	s.phase = DispatchingViewportChange
	defer func() { s.phase = prev }()

	s.viewport = rect
	s.ctrl.SetFromMainViewport(rect)
	s.applyVisibility()
	r := s.ctrl.Rect()
	for _, fn := range s.onOverlay {
		fn(r)
	}
}

// UserDrag proposes a new overlay top-left in overview coordinates.
func (s *Synchronizer) UserDrag(topLeft geom.Pt) {
	if s.phase == DispatchingViewportChange {
		return
	}
	s.ctrl.DragTo(topLeft)
}

// UserDragBy moves the overlay by delta overview units.
func (s *Synchronizer) UserDragBy(delta geom.Pt) {
	if s.phase == DispatchingViewportChange {
		return
	}
	s.ctrl.DragBy(delta)
}

// UserClick centres the overlay on an overview point.
func (s *Synchronizer) UserClick(p geom.Pt) {
	if s.phase == DispatchingViewportChange {
		return
	}
	s.ctrl.CenterAt(p)
}

func (s *Synchronizer) regionMoved(center geom.Pt) {
	switch s.phase {
	case DispatchingViewportChange:
		s.log.Debug("overlay move ignored during viewport dispatch")
		return
	case DispatchingUserDrag:
		s.violation("overlay move while already dispatching a drag")
		return
	}
	s.phase = DispatchingUserDrag
	defer func() { s.phase = Idle }()

	p := s.ctrl.Fit().ToContent(center)
	for _, fn := range s.onMoved {
		fn(p)
	}
	if s.host != nil {
		s.host.RequestCenterOn(p)
	}
}

// SetContent forwards a new frame and re-derives the overlay immediately.
func (s *Synchronizer) SetContent(f content.Frame) {
	s.render.SetContent(f)
	s.refresh()
}

// SetTransform forwards rotation and flip changes.
func (s *Synchronizer) SetTransform(st content.TransformState) {
	s.render.SetTransform(st)
	s.refresh()
}

func (s *Synchronizer) SetRotation(deg int) {
	s.render.SetRotation(deg)
	s.refresh()
}

func (s *Synchronizer) SetFlip(h, v bool) {
	s.render.SetFlip(h, v)
	s.refresh()
}

// SetOverviewWidgetSize updates the minimap widget size.
func (s *Synchronizer) SetOverviewWidgetSize(size geom.Size) {
	s.render.SetOverviewSize(size)
	s.refresh()
}

// SetForceHidden sets the sticky user toggle.
func (s *Synchronizer) SetForceHidden(hidden bool) {
	s.forceHidden = hidden
	s.refresh()
}

func (s *Synchronizer) ToggleForceHidden() { s.SetForceHidden(!s.forceHidden) }
func (s *Synchronizer) ForceHidden() bool  { return s.forceHidden }

// SetAutoHide controls whether a fully visible image hides the minimap.
func (s *Synchronizer) SetAutoHide(enabled bool) {
	s.autoHide = enabled
	s.refresh()
}

func (s *Synchronizer) SetOverlayMovable(movable bool) { s.ctrl.SetMovable(movable) }

func (s *Synchronizer) CurrentVisibility() Visibility { return s.visibility }
func (s *Synchronizer) Overlay() geom.Rect            { return s.ctrl.Rect() }
func (s *Synchronizer) Fit() overview.Fit             { return s.render.Fit() }
func (s *Synchronizer) Overview() *overview.State     { return s.render }
func (s *Synchronizer) Phase() Phase                  { return s.phase }

// refresh re-runs the viewport path with the host's current rect.
func (s *Synchronizer) refresh() {
	rect := s.viewport
	if s.host != nil {
		rect = s.host.ViewportRect()
	}
	s.ViewportChanged(rect)
}

func (s *Synchronizer) applyVisibility() {
	v := EvaluateVisibility(s.forceHidden, s.viewport, s.render.Fit().ContentBounds, s.eps)
	if v == HiddenFullyVisible && !s.autoHide && !s.render.Fit().Degenerate {
		v = Shown
	}
	if s.visKnown && v == s.visibility {
		return
	}
	s.visibility, s.visKnown = v, true
	s.log.Debug("minimap visibility", slog.String("state", v.String()))
	for _, fn := range s.onVisibility {
		fn(v)
	}
}

// violation reports a caller bug: the guard was already set when it should
// have been clear. Debug builds (-tags ivdebug) panic.
func (s *Synchronizer) violation(detail string) {
	if debugAssertions {
		panic("minimap: reentrancy violation: " + detail)
	}
	s.log.Warn("reentrancy violation ignored", slog.String("detail", detail), slog.String("phase", s.phase.String()))
}
