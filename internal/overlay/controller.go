/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package overlay owns the visible-region indicator drawn on the minimap.
// The rectangle is kept in overview-local coordinates and is either derived
// from the main viewport or moved by the user within the content area.
package overlay

import (
	"log/slog"

	"goiv/internal/geom"
	applog "goiv/internal/log"
	"goiv/internal/overview"
)

// moveEpsilon is the smallest translation reported as a user move.
const moveEpsilon = 1e-9

// Controller is not safe for concurrent use; all calls come from the UI goroutine.
type Controller struct {
	rect    geom.Rect
	anchor  geom.Pt // top-left of the last non-collapsed rect
	fit     overview.Fit
	main    geom.Rect
	hasMain bool
	movable bool

	inSetFromMain bool
	onMoved       []func(center geom.Pt)
	log           *slog.Logger
}

func New(l *slog.Logger) *Controller {
	if l == nil {
		l = applog.WithComponent("overlay")
	}
	return &Controller{movable: true, fit: overview.Fit{Transform: geom.Identity, Inverse: geom.Identity, Scale: 1, Degenerate: true}, log: l}
}

// OnRegionMoved registers a listener for user-driven moves. The argument is
// the new rect centre in overview coordinates.
func (c *Controller) OnRegionMoved(fn func(center geom.Pt)) {
	if fn != nil {
		c.onMoved = append(c.onMoved, fn)
	}
}

// Rect returns the current overlay rectangle in overview coordinates.
func (c *Controller) Rect() geom.Rect { return c.rect }

// Bounds returns the content area in overview coordinates; drags stay inside it.
func (c *Controller) Bounds() geom.Rect { return c.fit.ContentInOverview }

func (c *Controller) Fit() overview.Fit { return c.fit }

// SetMovable enables or disables user dragging.
func (c *Controller) SetMovable(v bool) { c.movable = v }
func (c *Controller) Movable() bool     { return c.movable }

// SetFit installs a new fit transform and reprojects the last main viewport
// through it. The main viewport itself is left untouched.
func (c *Controller) SetFit(fit overview.Fit) {
	c.fit = fit
	if c.hasMain {
		c.project(c.main)
	}
}

// SetFromMainViewport derives the overlay from the main canvas's visible
// rect (content space). The rect is clipped to the content first, so the
// projection needs no further clamping. A viewport disjoint from the content
// collapses the overlay to a zero-size rect at the last valid position.
func (c *Controller) SetFromMainViewport(mainRect geom.Rect) {
	c.inSetFromMain = true
	defer func() { c.inSetFromMain = false }()

	c.main, c.hasMain = mainRect, true
	c.project(mainRect)
}

func (c *Controller) project(mainRect geom.Rect) {
	visible, ok := geom.Intersect(mainRect, c.fit.ContentBounds)
	if !ok {
		c.rect = geom.Rect{X: c.anchor.X, Y: c.anchor.Y}
		return
	}
	c.rect = geom.MapRect(visible, c.fit.Transform)
	c.anchor = c.rect.Min()
}

// DragTo proposes moving the overlay's top-left corner to topLeft. The move
// is clamped into the content area; if the rect actually moved, listeners
// receive its new centre.
func (c *Controller) DragTo(topLeft geom.Pt) {
	if !c.movable || c.fit.Degenerate {
		return
	}
	if c.inSetFromMain {
		c.log.Warn("overlay drag ignored during viewport projection")
		return
	}
	next := geom.ClampRectInto(c.rect.MoveTo(topLeft), c.fit.ContentInOverview)
	if next.ApproxEqual(c.rect, moveEpsilon) {
		return
	}
	c.rect = next
	c.anchor = next.Min()
	center := next.Center()
	for _, fn := range c.onMoved {
		fn(center)
	}
}

// DragBy translates the overlay by delta overview units.
func (c *Controller) DragBy(delta geom.Pt) { c.DragTo(c.rect.Min().Add(delta)) }

// CenterAt moves the overlay so its centre sits on p, as a click on the
// minimap does.
func (c *Controller) CenterAt(p geom.Pt) { c.DragTo(c.rect.CenteredAt(p).Min()) }
