/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package viewport models the main image canvas: zoom, scroll position and
// orientation of the displayed content, independent of any toolkit. It
// reports its visible region in content space so the minimap can follow it.
package viewport

import (
	"log/slog"
	"math"

	"goiv/internal/content"
	"goiv/internal/geom"
	applog "goiv/internal/log"
)

const (
	DefaultZoomFactor = 1.25
	DefaultScrollStep = 30.0
	MinZoom           = 0.01
	MaxZoom           = 100.0
)

// FitMode remembers the last fit request so AutoFit can repeat it.
type FitMode int

const (
	FitNone FitMode = iota
	FitWindow
	FitWidth
	FitHeight
)

func (m FitMode) String() string {
	switch m {
	case FitWindow:
		return "window"
	case FitWidth:
		return "width"
	case FitHeight:
		return "height"
	default:
		return "none"
	}
}

type Option func(*View)

func WithLogger(l *slog.Logger) Option   { return func(v *View) { v.log = l } }
func WithZoomFactor(f float64) Option    { return func(v *View) { v.factor = f } }
func WithScrollStep(px float64) Option   { return func(v *View) { v.step = px } }
func WithAutoFit(enabled bool) Option    { return func(v *View) { v.autoFit = enabled } }
func WithZoomLimits(lo, hi float64) Option {
	return func(v *View) { v.minZoom, v.maxZoom = lo, hi }
}

// View holds the canvas state. Three spaces are involved: content (raw
// image pixels), display (content after rotation and flip, origin at the
// top-left of the oriented bounds) and screen (display scaled by zoom and
// scrolled so that center sits in the middle of the view).
//
// View is not safe for concurrent use.
type View struct {
	contentSize geom.Size
	xform       content.TransformState
	orient      geom.Affine2D
	orientInv   geom.Affine2D

	viewSize geom.Size
	zoom     float64
	center   geom.Pt // display space
	mode     FitMode

	factor           float64
	step             float64
	minZoom, maxZoom float64
	autoFit          bool

	last snapshot
	subs []func(geom.Rect)
	log  *slog.Logger
}

type snapshot struct {
	rect     geom.Rect
	zoom     float64
	viewSize geom.Size
	xform    content.TransformState
}

func New(opts ...Option) *View {
	v := &View{
		zoom:      1,
		factor:    DefaultZoomFactor,
		step:      DefaultScrollStep,
		minZoom:   MinZoom,
		maxZoom:   MaxZoom,
		orient:    geom.Identity,
		orientInv: geom.Identity,
	}
	for _, o := range opts {
		o(v)
	}
	if v.factor <= 1 {
		v.factor = DefaultZoomFactor
	}
	if v.minZoom <= 0 || v.maxZoom < v.minZoom {
		v.minZoom, v.maxZoom = MinZoom, MaxZoom
	}
	if v.log == nil {
		v.log = applog.WithComponent("viewport")
	}
	v.last = v.snap()
	return v
}

// Bind follows a content provider's frame and transform changes.
func (v *View) Bind(p content.Provider) {
	p.OnFrameChanged(func(f content.Frame) { v.SetContent(f.Size()) })
	p.OnTransformChanged(v.SetTransform)
}

// OnViewportChanged registers fn to receive the visible content rect after
// every change.
func (v *View) OnViewportChanged(fn func(geom.Rect)) {
	if fn != nil {
		v.subs = append(v.subs, fn)
	}
}

func (v *View) Zoom() float64                     { return v.zoom }
func (v *View) Mode() FitMode                     { return v.mode }
func (v *View) ViewSize() geom.Size               { return v.viewSize }
func (v *View) ContentSize() geom.Size            { return v.contentSize }
func (v *View) Transform() content.TransformState { return v.xform }
func (v *View) AutoFit() bool                     { return v.autoFit }
func (v *View) SetAutoFit(enabled bool)           { v.autoFit = enabled }

// DisplaySize is the content size after rotation.
func (v *View) DisplaySize() geom.Size { return content.RotatedSize(v.contentSize, v.xform.Rotation) }

// SetContent installs new content of the given pixel size. A frame of the
// same size, such as the next animation frame, keeps zoom and scroll
// position; any other size resets the view.
func (v *View) SetContent(size geom.Size) {
	if size == v.contentSize {
		return
	}
	v.contentSize = size
	v.updateOrientation()
	v.Reset()
}

// Reset recentres the content. With AutoFit the whole image is fitted into
// the view, otherwise it is shown at 100%.
func (v *View) Reset() {
	v.center = v.displayBounds().Center()
	if v.autoFit {
		v.fit(FitWindow)
	} else {
		v.mode = FitNone
		v.zoom = v.clampZoom(1)
	}
	v.settle()
	v.notify(false)
}

// SetTransform changes rotation and flip. The content point in the middle of
// the view stays there.
func (v *View) SetTransform(st content.TransformState) {
	st = st.Normalized()
	if st == v.xform {
		return
	}
	pivot := v.orientInv.Apply(v.center)
	v.xform = st
	v.updateOrientation()
	v.center = v.orient.Apply(pivot)
	if v.autoFit && v.mode != FitNone {
		v.fit(v.mode)
	}
	v.settle()
	v.notify(false)
}

// Resize sets the view size in screen pixels.
func (v *View) Resize(size geom.Size) {
	if size == v.viewSize {
		return
	}
	v.viewSize = size
	if v.autoFit && v.mode != FitNone {
		v.fit(v.mode)
	}
	v.settle()
	v.notify(false)
}

func (v *View) ZoomIn()  { v.SetZoom(v.zoom * v.factor) }
func (v *View) ZoomOut() { v.SetZoom(v.zoom / v.factor) }

// SetZoom zooms about the middle of the view.
func (v *View) SetZoom(z float64) {
	v.ZoomAt(z, geom.Pt{X: v.viewSize.W / 2, Y: v.viewSize.H / 2})
}

// ZoomAt changes the zoom keeping the display point under the screen point
// anchor fixed, as wheel zoom under the cursor does.
func (v *View) ZoomAt(z float64, anchor geom.Pt) {
	z = v.clampZoom(z)
	if math.IsNaN(z) {
		return
	}
	under := v.screenToDisplay(anchor)
	v.zoom = z
	v.mode = FitNone
	half := geom.Pt{X: v.viewSize.W / 2, Y: v.viewSize.H / 2}
	v.center = geom.Pt{
		X: under.X - (anchor.X-half.X)/z,
		Y: under.Y - (anchor.Y-half.Y)/z,
	}
	v.settle()
	v.notify(false)
}

func (v *View) FitWindow() { v.applyFit(FitWindow) }
func (v *View) FitWidth()  { v.applyFit(FitWidth) }
func (v *View) FitHeight() { v.applyFit(FitHeight) }

func (v *View) applyFit(m FitMode) {
	v.fit(m)
	v.settle()
	v.notify(false)
}

// fit sets zoom for mode and centres the content on the fitted axis.
func (v *View) fit(m FitMode) {
	d := v.DisplaySize()
	if !d.Positive() || !v.viewSize.Positive() {
		v.mode = m
		return
	}
	var z float64
	switch m {
	case FitWidth:
		z = v.viewSize.W / d.W
	case FitHeight:
		z = v.viewSize.H / d.H
	default:
		z, _ = geom.FitScale(d, v.viewSize)
	}
	v.zoom = v.clampZoom(z)
	v.mode = m
	v.center = v.displayBounds().Center()
}

// Pan scrolls by a screen-pixel drag delta; the content follows the pointer.
func (v *View) Pan(dx, dy float64) {
	v.center = v.center.Sub(geom.Pt{X: dx / v.zoom, Y: dy / v.zoom})
	v.settle()
	v.notify(false)
}

func (v *View) ScrollLeft()  { v.Pan(v.step, 0) }
func (v *View) ScrollRight() { v.Pan(-v.step, 0) }
func (v *View) ScrollUp()    { v.Pan(0, v.step) }
func (v *View) ScrollDown()  { v.Pan(0, -v.step) }

func (v *View) ScrollToLeftEdge() {
	v.center.X = v.displayBounds().X + v.visibleDisplay().W/2
	v.settle()
	v.notify(false)
}

func (v *View) ScrollToRightEdge() {
	v.center.X = v.displayBounds().Right() - v.visibleDisplay().W/2
	v.settle()
	v.notify(false)
}

func (v *View) ScrollToTopEdge() {
	v.center.Y = v.displayBounds().Y + v.visibleDisplay().H/2
	v.settle()
	v.notify(false)
}

func (v *View) ScrollToBottomEdge() {
	v.center.Y = v.displayBounds().Bottom() - v.visibleDisplay().H/2
	v.settle()
	v.notify(false)
}

// CenterOn scrolls so that the content-space point p is in the middle of the
// view, as far as the content bounds allow. Subscribers are always told the
// outcome, even when clamping left the view where it was.
func (v *View) CenterOn(p geom.Pt) {
	v.center = v.orient.Apply(p)
	v.settle()
	v.notify(true)
}

// RequestCenterOn lets View serve as the minimap's host surface.
func (v *View) RequestCenterOn(p geom.Pt) { v.CenterOn(p) }

// ViewportRect is the visible region in content space. On an axis where the
// whole content fits, the rect is wider than the content.
func (v *View) ViewportRect() geom.Rect {
	return geom.MapRect(v.visibleDisplay(), v.orientInv)
}

// ContentToScreen maps content pixels to view pixels.
func (v *View) ContentToScreen() geom.Affine2D {
	return geom.Translate(v.viewSize.W/2, v.viewSize.H/2).
		Mul(geom.Scale(v.zoom, v.zoom)).
		Mul(geom.Translate(-v.center.X, -v.center.Y)).
		Mul(v.orient)
}

// ScreenToContent maps a view pixel back into content space.
func (v *View) ScreenToContent(p geom.Pt) geom.Pt {
	return v.orientInv.Apply(v.screenToDisplay(p))
}

func (v *View) screenToDisplay(p geom.Pt) geom.Pt {
	return geom.Pt{
		X: v.center.X + (p.X-v.viewSize.W/2)/v.zoom,
		Y: v.center.Y + (p.Y-v.viewSize.H/2)/v.zoom,
	}
}

func (v *View) visibleDisplay() geom.Rect {
	return geom.Rect{W: v.viewSize.W / v.zoom, H: v.viewSize.H / v.zoom}.CenteredAt(v.center)
}

func (v *View) displayBounds() geom.Rect { return geom.RectFromSize(v.DisplaySize()) }

func (v *View) updateOrientation() {
	v.orient = content.Orientation(v.contentSize, v.xform)
	inv, ok := v.orient.Invert()
	if !ok {
		inv = geom.Identity
	}
	v.orientInv = inv
}

// settle clamps the scroll position so the visible rect stays inside the
// display bounds. Axes where the content is smaller than the view keep the
// content centred.
func (v *View) settle() {
	b := v.displayBounds()
	vis := v.visibleDisplay()
	c := geom.ClampRectInto(vis, b).Center()
	if vis.W >= b.W {
		c.X = b.Center().X
	}
	if vis.H >= b.H {
		c.Y = b.Center().Y
	}
	v.center = c
}

func (v *View) clampZoom(z float64) float64 {
	if z < v.minZoom {
		return v.minZoom
	}
	if z > v.maxZoom {
		return v.maxZoom
	}
	return z
}

func (v *View) snap() snapshot {
	return snapshot{rect: v.ViewportRect(), zoom: v.zoom, viewSize: v.viewSize, xform: v.xform}
}

// notify publishes the viewport once per operation. Unless forced, nothing is
// sent when the operation left the visible state unchanged.
func (v *View) notify(force bool) {
	s := v.snap()
	if !force && s == v.last {
		return
	}
	v.last = s
	v.log.Debug("viewport changed",
		slog.Float64("zoom", v.zoom),
		slog.String("fit", v.mode.String()),
		slog.Any("rect", s.rect))
	for _, fn := range v.subs {
		fn(s.rect)
	}
}
