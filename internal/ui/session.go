/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"time"

	"goiv/internal/config"
	"goiv/internal/content"
	"goiv/internal/geom"
	"goiv/internal/history"
	"goiv/internal/imageio"
	applog "goiv/internal/log"
	"goiv/internal/minimap"
	"goiv/internal/overview"
	"goiv/internal/telemetry"
	"goiv/internal/viewport"
)

// Session ties one open image to its canvas model and minimap. It has no
// toolkit dependency; the fyne front end and the CLI both drive it.
type Session struct {
	Config   config.AppConfig
	Source   *content.Source
	View     *viewport.View
	Sync     *minimap.Synchronizer
	Style    overview.Style
	Location minimap.Location

	doc   *imageio.Document
	frame int
	host  geom.Size
	hist  *history.Manager
	now   func() time.Time
	log   *slog.Logger
}

// NewSession builds the canvas model and minimap from cfg.
func NewSession(cfg config.AppConfig) *Session {
	l := applog.WithComponent("ui")
	s := &Session{
		Config: cfg,
		Source: content.NewSource(),
		Style:  StyleFromConfig(cfg.Minimap),
		hist:   history.NewManager(history.Config{MaxEntries: 256, MaxPerDocument: 64, MinInterval: 300 * time.Millisecond}),
		now:    time.Now,
		log:    l,
	}
	loc, err := minimap.ParseLocation(cfg.Minimap.Location)
	if err != nil {
		l.Warn("minimap location ignored", slog.Any("err", err))
	}
	s.Location = loc

	s.View = viewport.New(
		viewport.WithLogger(applog.WithComponent("viewport")),
		viewport.WithZoomFactor(cfg.View.ZoomFactor),
		viewport.WithScrollStep(cfg.View.ScrollStep),
		viewport.WithAutoFit(cfg.Behavior.AutoFit),
	)
	s.View.Bind(s.Source)

	s.Sync = minimap.New(s.View,
		minimap.WithLogger(applog.WithComponent("minimap")),
		minimap.WithForceHidden(!cfg.Minimap.Shown),
		minimap.WithAutoHide(cfg.Minimap.AutoHide),
		minimap.WithOverlayMovable(cfg.Minimap.OverlayMovable),
	)
	s.Sync.SetOverviewWidgetSize(s.MinimapSize())
	s.Sync.Bind(s.Source)
	return s
}

// StyleFromConfig converts the minimap colour and width settings. Colours
// that fail to parse fall back to the stock look.
func StyleFromConfig(mc config.MinimapConfig) overview.Style {
	return overview.Style{
		ThumbnailOpacity:   mc.ImageOpacity,
		BorderColor:        config.ColorOr(mc.BorderColor, color.NRGBA{B: 0xFF, A: 0x55}),
		BorderWidth:        mc.BorderWidth,
		OverlayFill:        config.ColorOr(mc.OverlayColor, color.NRGBA{R: 0xFF, A: 0x55}),
		OverlayBorder:      config.ColorOr(mc.OverlayBorderColor, color.NRGBA{G: 0xFF, A: 0x55}),
		OverlayBorderWidth: mc.OverlayBorderWidth,
		OverlayOnly:        !mc.Image,
	}
}

// MinimapSize is the configured widget size in canvas units.
func (s *Session) MinimapSize() geom.Size {
	return geom.Size{W: float64(s.Config.Minimap.Size.Width), H: float64(s.Config.Minimap.Size.Height)}
}

// Open loads path and shows its first frame with a reset transform.
func (s *Session) Open(path string) error {
	doc, err := imageio.Open(path)
	if err != nil {
		return err
	}
	s.SetDocument(doc)
	telemetry.Event("image_opened", map[string]any{"format": doc.Format, "frames": doc.FrameCount()})
	return nil
}

// SetDocument installs an already decoded document.
func (s *Session) SetDocument(doc *imageio.Document) {
	s.doc = doc
	s.frame = 0
	s.hist.Clear(doc.Path)
	s.Source.Reset()
	s.Source.SetFrame(doc.Frame(0))
	s.View.Reset()
}

func (s *Session) Document() *imageio.Document { return s.doc }

// GIFs with a tiny or zero delay play at 10 fps, as browsers do.
const (
	minFrameDelay     = 20 * time.Millisecond
	defaultFrameDelay = 100 * time.Millisecond
)

// NextFrame advances an animation and returns how long the new frame stays.
// Stills return zero.
func (s *Session) NextFrame() time.Duration {
	if s.doc == nil || !s.doc.Animated() {
		return 0
	}
	s.frame = (s.frame + 1) % s.doc.FrameCount()
	s.Source.SetFrame(s.doc.Frame(s.frame))
	return s.FrameDelay()
}

// FrameDelay is how long the current frame stays on screen; zero for stills.
func (s *Session) FrameDelay() time.Duration {
	if s.doc == nil || !s.doc.Animated() {
		return 0
	}
	if d := s.doc.Delay(s.frame); d >= minFrameDelay {
		return d
	}
	return defaultFrameDelay
}

// Resize informs the canvas model of the host size and returns where the
// minimap widget goes.
func (s *Session) Resize(host geom.Size) geom.Pt {
	s.host = host
	s.View.Resize(host)
	return s.MinimapPosition()
}

func (s *Session) MinimapPosition() geom.Pt {
	return minimap.Place(s.Location, s.host, s.MinimapSize(), s.Config.Minimap.Padding)
}

// RenderMinimap paints the minimap at pixel scale k (1 for standard DPI).
func (s *Session) RenderMinimap(k float64) *image.RGBA {
	size := s.MinimapSize()
	return overview.Render(s.Sync.Overview(), s.Sync.Overlay(), s.Style, int(size.W*k+0.5), int(size.H*k+0.5))
}

// Title is the window title for the current document.
func (s *Session) Title() string {
	if s.doc == nil {
		return "goiv"
	}
	return fmt.Sprintf("%s (%dx%d, %s) %.0f%% - goiv",
		filepath.Base(s.doc.Path), s.doc.Width, s.doc.Height, s.doc.HumanSize(), s.View.Zoom()*100)
}

// Action is a viewer command bound to a fixed key.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionZoomIn
	ActionZoomOut
	ActionFitWindow
	ActionFitWidth
	ActionFitHeight
	ActionScrollLeft
	ActionScrollRight
	ActionScrollUp
	ActionScrollDown
	ActionLeftEdge
	ActionRightEdge
	ActionTopEdge
	ActionBottomEdge
	ActionRotateCW
	ActionRotateCCW
	ActionFlipH
	ActionFlipV
	ActionResetTransform
	ActionToggleMinimap
	ActionActualSize
	ActionUndo
	ActionRedo
)

// keymap is not configurable.
var keymap = map[string]Action{
	"Q":        ActionQuit,
	"Escape":   ActionQuit,
	"+":        ActionZoomIn,
	"=":        ActionZoomIn,
	"-":        ActionZoomOut,
	"F":        ActionFitWindow,
	"W":        ActionFitWidth,
	"H":        ActionFitHeight,
	"1":        ActionActualSize,
	"Left":     ActionScrollLeft,
	"Right":    ActionScrollRight,
	"Up":       ActionScrollUp,
	"Down":     ActionScrollDown,
	"Home":     ActionLeftEdge,
	"End":      ActionRightEdge,
	"Prior":    ActionTopEdge,
	"Next":     ActionBottomEdge,
	"R":        ActionRotateCW,
	"E":        ActionRotateCCW,
	"X":        ActionFlipH,
	"Y":        ActionFlipV,
	"0":        ActionResetTransform,
	"M":        ActionToggleMinimap,
	"U":        ActionUndo,
	"O":        ActionRedo,
	"KP_Add":   ActionZoomIn,
	"KP_Minus": ActionZoomOut,
}

// ActionForKey returns the action bound to a key name.
func ActionForKey(name string) Action { return keymap[name] }

// Do runs a viewer action. It reports false for ActionQuit and ActionNone so
// the caller can react.
func (s *Session) Do(a Action) bool {
	switch a {
	case ActionZoomIn:
		s.View.ZoomIn()
	case ActionZoomOut:
		s.View.ZoomOut()
	case ActionActualSize:
		s.View.SetZoom(1)
	case ActionFitWindow:
		s.View.FitWindow()
	case ActionFitWidth:
		s.View.FitWidth()
	case ActionFitHeight:
		s.View.FitHeight()
	case ActionScrollLeft:
		s.View.ScrollLeft()
	case ActionScrollRight:
		s.View.ScrollRight()
	case ActionScrollUp:
		s.View.ScrollUp()
	case ActionScrollDown:
		s.View.ScrollDown()
	case ActionLeftEdge:
		s.View.ScrollToLeftEdge()
	case ActionRightEdge:
		s.View.ScrollToRightEdge()
	case ActionTopEdge:
		s.View.ScrollToTopEdge()
	case ActionBottomEdge:
		s.View.ScrollToBottomEdge()
	case ActionRotateCW:
		s.record()
		s.Source.Rotate(90)
	case ActionRotateCCW:
		s.record()
		s.Source.Rotate(-90)
	case ActionFlipH:
		s.record()
		s.Source.FlipH()
	case ActionFlipV:
		s.record()
		s.Source.FlipV()
	case ActionResetTransform:
		s.record()
		s.Source.Reset()
	case ActionUndo:
		s.restore(s.hist.Undo)
	case ActionRedo:
		s.restore(s.hist.Redo)
	case ActionToggleMinimap:
		s.Sync.ToggleForceHidden()
	default:
		return false
	}
	return true
}

// record remembers the orientation before a change so it can be undone.
func (s *Session) record() {
	if s.doc == nil {
		return
	}
	s.hist.Push(history.Entry{Document: s.doc.Path, State: s.Source.Transform(), TS: s.now()})
}

func (s *Session) restore(step func(string, content.TransformState) (content.TransformState, bool)) {
	if s.doc == nil {
		return
	}
	if st, ok := step(s.doc.Path, s.Source.Transform()); ok {
		s.Source.SetTransform(st)
	}
}
