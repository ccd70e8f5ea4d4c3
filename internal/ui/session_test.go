/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"goiv/internal/config"
	"goiv/internal/geom"
	"goiv/internal/imageio"
	"goiv/internal/minimap"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "wide.png")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return p
}

func openSession(t *testing.T, cfg config.AppConfig) *Session {
	t.Helper()
	s := NewSession(cfg)
	if err := s.Open(writePNG(t, 2000, 1000)); err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func TestSessionLayoutAndOverlay(t *testing.T) {
	s := openSession(t, config.Defaults())
	pos := s.Resize(geom.Size{W: 800, H: 600})
	if pos != (geom.Pt{X: 590, Y: 390}) {
		t.Fatalf("minimap position = %v", pos)
	}
	// 200x200 widget, content fitted to the top 200x100; view shows
	// (600,200)-(1400,800) at 100%.
	want := geom.R(60, 20, 80, 60)
	if !s.Sync.Overlay().ApproxEqual(want, 1e-9) {
		t.Fatalf("overlay = %v, want %v", s.Sync.Overlay(), want)
	}
	if s.Sync.CurrentVisibility() != minimap.Shown {
		t.Fatalf("visibility = %v", s.Sync.CurrentVisibility())
	}
	if img := s.RenderMinimap(2); img.Bounds().Dx() != 400 || img.Bounds().Dy() != 400 {
		t.Fatalf("render bounds = %v", img.Bounds())
	}
}

func TestSessionActions(t *testing.T) {
	s := openSession(t, config.Defaults())
	s.Resize(geom.Size{W: 800, H: 600})

	if !s.Do(ActionForKey("F")) {
		t.Fatal("fit should be handled")
	}
	if s.View.Zoom() != 0.4 {
		t.Fatalf("fit zoom = %v", s.View.Zoom())
	}
	if s.Sync.CurrentVisibility() != minimap.HiddenFullyVisible {
		t.Fatalf("fitted image should hide the minimap, got %v", s.Sync.CurrentVisibility())
	}
	s.Do(ActionForKey("M"))
	if s.Sync.CurrentVisibility() != minimap.HiddenForcedByUser {
		t.Fatalf("toggle = %v", s.Sync.CurrentVisibility())
	}
	s.Do(ActionForKey("R"))
	if s.View.Transform().Rotation != 90 {
		t.Fatalf("rotation = %d", s.View.Transform().Rotation)
	}
	s.Do(ActionForKey("0"))
	if s.View.Transform().Rotation != 0 {
		t.Fatalf("reset rotation = %d", s.View.Transform().Rotation)
	}
	if s.Do(ActionForKey("Q")) || s.Do(ActionForKey("nope")) {
		t.Fatal("quit and unknown keys are left to the caller")
	}
}

func TestSessionHonoursConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Minimap.Shown = false
	cfg.Minimap.Location = "top_left"
	cfg.Behavior.AutoFit = true
	s := openSession(t, cfg)
	if pos := s.Resize(geom.Size{W: 800, H: 600}); pos != (geom.Pt{X: 10, Y: 10}) {
		t.Fatalf("position = %v", pos)
	}
	if s.Sync.CurrentVisibility() != minimap.HiddenForcedByUser {
		t.Fatalf("visibility = %v", s.Sync.CurrentVisibility())
	}
	if s.View.Zoom() != 0.4 {
		t.Fatalf("auto fit zoom = %v", s.View.Zoom())
	}
}

func TestSessionTitleAndFrames(t *testing.T) {
	s := NewSession(config.Defaults())
	if s.Title() != "goiv" {
		t.Fatalf("empty title = %q", s.Title())
	}
	if d := s.NextFrame(); d != 0 {
		t.Fatalf("no document should not animate, got %v", d)
	}
	if err := s.Open(writePNG(t, 2000, 1000)); err != nil {
		t.Fatal(err)
	}
	title := s.Title()
	if !strings.Contains(title, "wide.png") || !strings.Contains(title, "2000x1000") || !strings.Contains(title, "100%") {
		t.Fatalf("title = %q", title)
	}
	if d := s.NextFrame(); d != 0 {
		t.Fatalf("still image delay = %v", d)
	}
	if err := s.Open(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestStyleFromConfig(t *testing.T) {
	mc := config.Defaults().Minimap
	mc.Image = false
	mc.OverlayColor = "bogus"
	st := StyleFromConfig(mc)
	if !st.OverlayOnly {
		t.Fatal("image disabled should render overlay only")
	}
	if st.OverlayFill != (color.NRGBA{R: 0xFF, A: 0x55}) {
		t.Fatalf("fallback fill = %v", st.OverlayFill)
	}
	if st.BorderColor != (color.NRGBA{B: 0xFF, A: 0x55}) {
		t.Fatalf("border = %v", st.BorderColor)
	}
}

func TestSessionUndoOrientation(t *testing.T) {
	s := openSession(t, config.Defaults())
	clock := time.Unix(0, 0)
	s.now = func() time.Time { clock = clock.Add(time.Second); return clock }

	s.Do(ActionRotateCW)
	s.Do(ActionFlipH)
	s.Do(ActionUndo)
	if st := s.Source.Transform(); st.Rotation != 90 || st.FlipH {
		t.Fatalf("after one undo = %+v", st)
	}
	s.Do(ActionUndo)
	if st := s.Source.Transform(); st.Rotation != 0 {
		t.Fatalf("after two undos = %+v", st)
	}
	s.Do(ActionRedo)
	if st := s.Source.Transform(); st.Rotation != 90 || st.FlipH {
		t.Fatalf("after redo = %+v", st)
	}

	// Rapid rotations collapse into one undo step.
	s.now = func() time.Time { return clock }
	s.Do(ActionRotateCW)
	s.Do(ActionRotateCW)
	s.Do(ActionUndo)
	if st := s.Source.Transform(); st.Rotation != 90 {
		t.Fatalf("burst undo = %+v", st)
	}
}

func TestSessionAnimationKeepsView(t *testing.T) {
	pal := color.Palette{color.Black, color.White}
	a := image.NewPaletted(image.Rect(0, 0, 2000, 1000), pal)
	b := image.NewPaletted(image.Rect(0, 0, 2000, 1000), pal)
	var buf bytes.Buffer
	err := gif.EncodeAll(&buf, &gif.GIF{
		Image:  []*image.Paletted{a, b},
		Delay:  []int{0, 25},
		Config: image.Config{ColorModel: pal, Width: 2000, Height: 1000},
	})
	if err != nil {
		t.Fatal(err)
	}
	doc, err := imageio.Decode(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}

	s := NewSession(config.Defaults())
	s.SetDocument(doc)
	s.Resize(geom.Size{W: 800, H: 600})
	if d := s.FrameDelay(); d != defaultFrameDelay {
		t.Fatalf("zero delay should play at the default rate, got %v", d)
	}
	s.View.ZoomIn()
	rect := s.View.ViewportRect()
	first := s.Source.Frame().Handle

	if d := s.NextFrame(); d != 250*time.Millisecond {
		t.Fatalf("second frame delay = %v", d)
	}
	if s.Source.Frame().Handle == first {
		t.Fatal("frame did not advance")
	}
	if s.View.ViewportRect() != rect {
		t.Fatalf("animation moved the view: %v -> %v", rect, s.View.ViewportRect())
	}
	s.NextFrame()
	if s.Source.Frame().Handle != first {
		t.Fatal("animation should loop back to the first frame")
	}
}
