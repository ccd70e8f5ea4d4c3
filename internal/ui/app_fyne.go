//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	"goiv/internal/config"
	"goiv/internal/crash"
	"goiv/internal/geom"
	applog "goiv/internal/log"
	"goiv/internal/minimap"
	"goiv/internal/telemetry"
	"goiv/internal/version"
)

var canvasBackground = color.NRGBA{R: 30, G: 30, B: 34, A: 255}

// runeKeys arrive as typed runes rather than key names on most layouts.
const runeKeys = "+-="

// Run starts the desktop viewer. Pass an image path to open it immediately.
func Run(path string) error {
	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	defer applog.Close()
	l := applog.WithComponent("ui")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}
	l.Info("starting UI", slog.String("version", version.String()))

	tc := telemetry.New(telemetry.FromAppConfig(cfg.Telemetry))
	telemetry.SetDefault(tc)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		tc.Close(ctx)
	}()

	s := NewSession(cfg)
	defer crash.Recover(func() crash.Info {
		info := crash.Info{Extra: map[string]string{"zoom": fmt.Sprintf("%.3f", s.View.Zoom())}}
		if d := s.Document(); d != nil {
			info.Document = d.Path
		}
		return info
	})

	fyneApp := app.NewWithID("goiv")
	w := fyneApp.NewWindow("goiv")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 320 {
		winW = 320
	}
	if winH < 240 {
		winH = 240
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	v := newViewer(s)
	v.onTitle = w.SetTitle
	w.SetContent(v.root)

	openPath := func(p string) {
		if err := s.Open(p); err != nil {
			l.Error("open image failed", slog.String("path", p), slog.Any("err", err))
			w.SetTitle(fmt.Sprintf("goiv - %v", err))
			return
		}
		w.SetTitle(s.Title())
		v.startAnimation()
	}

	do := func(a Action) {
		if a == ActionQuit {
			w.Close()
			return
		}
		s.Do(a)
	}
	w.Canvas().SetOnTypedKey(func(e *fyne.KeyEvent) {
		name := string(e.Name)
		if len(name) == 1 && strings.Contains(runeKeys, name) {
			return
		}
		do(ActionForKey(name))
	})
	w.Canvas().SetOnTypedRune(func(r rune) {
		if strings.ContainsRune(runeKeys, r) {
			do(ActionForKey(string(r)))
		}
	})

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		v.stopAnimation()
		w.Close()
	})

	if path != "" {
		openPath(path)
	}
	w.ShowAndRun()
	return nil
}

// viewer is the window content: the image canvas with the minimap floating
// on top of it.
type viewer struct {
	s       *Session
	canvas  *ImageCanvas
	minimap *MinimapWidget
	root    *fyne.Container
	onTitle func(string)
	animGen int
}

func newViewer(s *Session) *viewer {
	v := &viewer{s: s, canvas: NewImageCanvas(s), minimap: NewMinimapWidget(s)}
	v.root = container.New(&minimapLayout{s: s}, v.canvas, v.minimap)

	s.View.OnViewportChanged(func(geom.Rect) {
		v.canvas.Refresh()
		if v.onTitle != nil {
			v.onTitle(s.Title())
		}
	})
	s.Sync.OnOverlayChanged(func(geom.Rect) { v.minimap.Refresh() })
	s.Sync.OnVisibilityChanged(v.applyVisibility)
	v.applyVisibility(s.Sync.CurrentVisibility())
	return v
}

func (v *viewer) applyVisibility(vis minimap.Visibility) {
	if vis.Visible() {
		v.minimap.Show()
	} else {
		v.minimap.Hide()
	}
}

// startAnimation plays the current document's frames using their own
// delays. Timers hop back to the UI goroutine with fyne.Do.
func (v *viewer) startAnimation() {
	v.animGen++
	if d := v.s.FrameDelay(); d > 0 {
		v.schedule(v.animGen, d)
	}
}

func (v *viewer) stopAnimation() { v.animGen++ }

func (v *viewer) schedule(gen int, delay time.Duration) {
	time.AfterFunc(delay, func() {
		fyne.Do(func() {
			if gen != v.animGen {
				return
			}
			if next := v.s.NextFrame(); next > 0 {
				v.schedule(gen, next)
			}
		})
	})
}

// minimapLayout fills the container with the canvas and anchors the minimap
// at its configured location.
type minimapLayout struct{ s *Session }

func (m *minimapLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 2 {
		return
	}
	objects[0].Move(fyne.NewPos(0, 0))
	objects[0].Resize(size)
	pos := m.s.Resize(geom.Size{W: float64(size.Width), H: float64(size.Height)})
	mm := m.s.MinimapSize()
	objects[1].Resize(fyne.NewSize(float32(mm.W), float32(mm.H)))
	objects[1].Move(fyne.NewPos(float32(pos.X), float32(pos.Y)))
}

func (m *minimapLayout) MinSize([]fyne.CanvasObject) fyne.Size { return fyne.NewSize(320, 240) }

// ImageCanvas paints the current frame through the view transform and turns
// pointer input into pan and zoom.
type ImageCanvas struct {
	widget.BaseWidget
	s *Session
}

func NewImageCanvas(s *Session) *ImageCanvas {
	c := &ImageCanvas{s: s}
	c.ExtendBaseWidget(c)
	return c
}

func (c *ImageCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := canvas.NewRaster(c.draw)
	return &rasterRenderer{raster: r, objects: []fyne.CanvasObject{r}, min: fyne.NewSize(320, 240)}
}

// draw renders w x h device pixels. The raster may be denser than the
// widget's logical size on HiDPI screens.
func (c *ImageCanvas) draw(w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(canvasBackground), image.Point{}, xdraw.Src)
	src := c.s.Source.Frame().Image
	if src == nil {
		return dst
	}
	k := pixelScale(w, c.Size().Width)
	m := geom.Scale(k, k).Mul(c.s.View.ContentToScreen())
	var interp xdraw.Interpolator = xdraw.ApproxBiLinear
	if c.s.View.Zoom()*k >= 2 {
		interp = xdraw.NearestNeighbor
	}
	interp.Transform(dst, m.Aff3(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

func (c *ImageCanvas) Dragged(e *fyne.DragEvent) {
	c.s.View.Pan(float64(e.Dragged.DX), float64(e.Dragged.DY))
}

func (c *ImageCanvas) DragEnd() {}

// Scrolled zooms around the pointer by one zoom step per wheel notch.
func (c *ImageCanvas) Scrolled(e *fyne.ScrollEvent) {
	if e.Scrolled.DY == 0 {
		return
	}
	z := c.s.View.Zoom()
	f := c.s.Config.View.ZoomFactor
	if e.Scrolled.DY > 0 {
		z *= f
	} else {
		z /= f
	}
	c.s.View.ZoomAt(z, geom.Pt{X: float64(e.Position.X), Y: float64(e.Position.Y)})
}

func (c *ImageCanvas) DoubleTapped(*fyne.PointEvent) { c.s.View.FitWindow() }

// MinimapWidget shows the overview and forwards overlay drags and clicks.
type MinimapWidget struct {
	widget.BaseWidget
	s *Session
}

func NewMinimapWidget(s *Session) *MinimapWidget {
	m := &MinimapWidget{s: s}
	m.ExtendBaseWidget(m)
	return m
}

func (m *MinimapWidget) CreateRenderer() fyne.WidgetRenderer {
	r := canvas.NewRaster(m.draw)
	sz := m.s.MinimapSize()
	return &rasterRenderer{raster: r, objects: []fyne.CanvasObject{r}, min: fyne.NewSize(float32(sz.W), float32(sz.H))}
}

func (m *MinimapWidget) draw(w, _ int) image.Image {
	return m.s.RenderMinimap(pixelScale(w, m.Size().Width))
}

func (m *MinimapWidget) Dragged(e *fyne.DragEvent) {
	m.s.Sync.UserDragBy(geom.Pt{X: float64(e.Dragged.DX), Y: float64(e.Dragged.DY)})
}

func (m *MinimapWidget) DragEnd() {}

func (m *MinimapWidget) Tapped(e *fyne.PointEvent) {
	if !m.s.Config.Minimap.Clickable {
		return
	}
	m.s.Sync.UserClick(geom.Pt{X: float64(e.Position.X), Y: float64(e.Position.Y)})
}

func pixelScale(pixels int, logical float32) float64 {
	if logical <= 0 || pixels <= 0 {
		return 1
	}
	return float64(pixels) / float64(logical)
}

// rasterRenderer backs both widgets: one raster filling the widget.
type rasterRenderer struct {
	raster  *canvas.Raster
	objects []fyne.CanvasObject
	min     fyne.Size
}

func (r *rasterRenderer) Destroy()                     {}
func (r *rasterRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *rasterRenderer) MinSize() fyne.Size           { return r.min }
func (r *rasterRenderer) Refresh()                     { canvas.Refresh(r.raster) }

func (r *rasterRenderer) Layout(size fyne.Size) {
	r.raster.Move(fyne.NewPos(0, 0))
	r.raster.Resize(size)
}
