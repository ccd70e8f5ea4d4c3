/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package viewport

import (
	"testing"

	"goiv/internal/content"
	"goiv/internal/geom"
)

func newView(t *testing.T, opts ...Option) (*View, *int) {
	t.Helper()
	v := New(opts...)
	v.Resize(geom.Size{W: 1000, H: 500})
	v.SetContent(geom.Size{W: 2000, H: 1000})
	n := new(int)
	v.OnViewportChanged(func(geom.Rect) { *n++ })
	return v, n
}

func TestInitialViewIsCentredAtActualSize(t *testing.T) {
	v, _ := newView(t)
	if v.Zoom() != 1 {
		t.Fatalf("zoom = %v", v.Zoom())
	}
	if got := v.ViewportRect(); !got.ApproxEqual(geom.R(500, 250, 1000, 500), 1e-9) {
		t.Fatalf("viewport = %v", got)
	}
}

func TestZoomNotifiesOnce(t *testing.T) {
	v, n := newView(t)
	v.ZoomIn()
	if *n != 1 || v.Zoom() != 1.25 {
		t.Fatalf("notifications=%d zoom=%v", *n, v.Zoom())
	}
	v.ZoomOut()
	if *n != 2 || v.Zoom() != 1 {
		t.Fatalf("notifications=%d zoom=%v", *n, v.Zoom())
	}
}

func TestZoomLimits(t *testing.T) {
	v, _ := newView(t)
	v.SetZoom(1e6)
	if v.Zoom() != MaxZoom {
		t.Fatalf("zoom = %v", v.Zoom())
	}
	v.SetZoom(0)
	if v.Zoom() != MinZoom {
		t.Fatalf("zoom = %v", v.Zoom())
	}
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	v, _ := newView(t)
	before := v.ScreenToContent(geom.Pt{})
	v.ZoomAt(2, geom.Pt{})
	after := v.ScreenToContent(geom.Pt{})
	if !after.ApproxEqual(before, 1e-9) {
		t.Fatalf("anchor moved from %v to %v", before, after)
	}
	if got := v.ViewportRect(); !got.ApproxEqual(geom.R(500, 250, 500, 250), 1e-9) {
		t.Fatalf("viewport = %v", got)
	}
}

func TestFitModes(t *testing.T) {
	v, _ := newView(t)
	v.FitWindow()
	if v.Zoom() != 0.5 || v.Mode() != FitWindow {
		t.Fatalf("fit window zoom=%v mode=%v", v.Zoom(), v.Mode())
	}
	if got := v.ViewportRect(); !got.ApproxEqual(geom.R(0, 0, 2000, 1000), 1e-9) {
		t.Fatalf("viewport = %v", got)
	}

	v.SetContent(geom.Size{W: 1000, H: 2000})
	v.FitWidth()
	if v.Zoom() != 1 {
		t.Fatalf("fit width zoom = %v", v.Zoom())
	}
	if got := v.ViewportRect(); !got.ApproxEqual(geom.R(0, 750, 1000, 500), 1e-9) {
		t.Fatalf("viewport = %v", got)
	}
	v.FitHeight()
	if v.Zoom() != 0.25 || v.Mode() != FitHeight {
		t.Fatalf("fit height zoom=%v mode=%v", v.Zoom(), v.Mode())
	}
}

func TestScrolling(t *testing.T) {
	v, n := newView(t)
	v.Pan(100, 0)
	if got := v.ViewportRect(); got.X != 400 {
		t.Fatalf("pan: %v", got)
	}
	v.ScrollUp()
	if got := v.ViewportRect(); got.Y != 220 {
		t.Fatalf("scroll up: %v", got)
	}
	v.ScrollToRightEdge()
	v.ScrollToTopEdge()
	if got := v.ViewportRect(); got.X != 1000 || got.Y != 0 {
		t.Fatalf("right/top edge: %v", got)
	}
	v.ScrollRight()
	if got := v.ViewportRect(); got.X != 1000 {
		t.Fatalf("scrolled past the edge: %v", got)
	}
	// The last scroll was clamped away and did not notify.
	if *n != 4 {
		t.Fatalf("notifications = %d", *n)
	}
	v.ScrollToLeftEdge()
	v.ScrollToBottomEdge()
	if got := v.ViewportRect(); got.X != 0 || got.Y != 500 {
		t.Fatalf("left/bottom edge: %v", got)
	}
}

func TestCenterOnAlwaysReports(t *testing.T) {
	v, n := newView(t)
	var last geom.Rect
	v.OnViewportChanged(func(r geom.Rect) { last = r })
	v.CenterOn(geom.Pt{})
	v.RequestCenterOn(geom.Pt{X: -50, Y: -50})
	if *n != 2 {
		t.Fatalf("notifications = %d", *n)
	}
	if !last.ApproxEqual(geom.R(0, 0, 1000, 500), 1e-9) {
		t.Fatalf("clamped viewport = %v", last)
	}
}

func TestSmallContentIsCentred(t *testing.T) {
	v, _ := newView(t)
	v.SetContent(geom.Size{W: 100, H: 50})
	if got := v.ViewportRect(); !got.ApproxEqual(geom.R(-450, -225, 1000, 500), 1e-9) {
		t.Fatalf("viewport = %v", got)
	}
	if p := v.ContentToScreen().Apply(geom.Pt{}); !p.ApproxEqual(geom.Pt{X: 450, Y: 225}, 1e-9) {
		t.Fatalf("content origin on screen = %v", p)
	}
}

func TestRotationKeepsCentreAndReportsContentSpace(t *testing.T) {
	v, n := newView(t)
	v.SetTransform(content.TransformState{Rotation: 90})
	if *n != 1 {
		t.Fatalf("notifications = %d", *n)
	}
	if got := v.DisplaySize(); got != (geom.Size{W: 1000, H: 2000}) {
		t.Fatalf("display size = %v", got)
	}
	if got := v.ViewportRect(); !got.ApproxEqual(geom.R(750, 0, 500, 1000), 1e-9) {
		t.Fatalf("viewport = %v", got)
	}
	if p := v.ContentToScreen().Apply(geom.Pt{X: 1000, Y: 500}); !p.ApproxEqual(geom.Pt{X: 500, Y: 250}, 1e-9) {
		t.Fatalf("pivot on screen = %v", p)
	}
	// Same state again is not a change.
	v.SetTransform(content.TransformState{Rotation: 450})
	if *n != 1 {
		t.Fatalf("unchanged transform notified")
	}
}

func TestAutoFit(t *testing.T) {
	v := New(WithAutoFit(true))
	v.Resize(geom.Size{W: 1000, H: 500})
	v.SetContent(geom.Size{W: 4000, H: 1000})
	if v.Zoom() != 0.25 || v.Mode() != FitWindow {
		t.Fatalf("zoom=%v mode=%v", v.Zoom(), v.Mode())
	}
	v.Resize(geom.Size{W: 2000, H: 500})
	if v.Zoom() != 0.5 {
		t.Fatalf("refit zoom = %v", v.Zoom())
	}
	v.ZoomIn()
	v.Resize(geom.Size{W: 1000, H: 500})
	if v.Zoom() != 0.625 || v.Mode() != FitNone {
		t.Fatalf("manual zoom lost on resize: zoom=%v mode=%v", v.Zoom(), v.Mode())
	}
}

func TestResizeUnchangedIsSilent(t *testing.T) {
	v, n := newView(t)
	v.Resize(geom.Size{W: 1000, H: 500})
	if *n != 0 {
		t.Fatalf("notifications = %d", *n)
	}
}

func TestBindFollowsSource(t *testing.T) {
	v := New()
	v.Resize(geom.Size{W: 100, H: 100})
	src := content.NewSource()
	v.Bind(src)
	src.SetFrame(content.Frame{Handle: 1, Image: nil})
	src.Rotate(-90)
	if v.Transform().Rotation != 270 {
		t.Fatalf("rotation = %d", v.Transform().Rotation)
	}
}

func TestSameSizeFrameKeepsView(t *testing.T) {
	v, n := newView(t)
	v.ZoomIn()
	v.Pan(100, 0)
	*n = 0
	rect := v.ViewportRect()
	v.SetContent(geom.Size{W: 2000, H: 1000})
	if *n != 0 || v.ViewportRect() != rect || v.Zoom() != 1.25 {
		t.Fatalf("same-size content moved the view: rect=%v zoom=%v notifies=%d", v.ViewportRect(), v.Zoom(), *n)
	}
	v.Reset()
	if v.Zoom() != 1 || !v.ViewportRect().ApproxEqual(geom.R(500, 250, 1000, 500), 1e-9) {
		t.Fatalf("reset: rect=%v zoom=%v", v.ViewportRect(), v.Zoom())
	}
}
