/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package overview owns what the minimap shows: the current frame, its
// rotation/flip, and the fit transform from content space into the minimap
// widget's local space. The fit is anchored at the top-left corner rather
// than centered, so a rotation that changes the bounds' aspect only changes
// the scale.
package overview

import (
	"image"
	"log/slog"

	"goiv/internal/content"
	"goiv/internal/geom"
	applog "goiv/internal/log"
)

// Fit is the derived mapping between content space and overview space.
type Fit struct {
	Transform geom.Affine2D // content -> overview
	Inverse   geom.Affine2D // overview -> content
	Scale     float64
	// ContentBounds is {0,0,W,H} in content space.
	ContentBounds geom.Rect
	// ContentInOverview is ContentBounds mapped through Transform.
	ContentInOverview geom.Rect
	// Degenerate is set for a zero-area frame or widget; Transform is then
	// the identity and nothing should be drawn.
	Degenerate bool
}

// ToOverview maps a content-space point into the minimap.
func (f Fit) ToOverview(p geom.Pt) geom.Pt { return f.Transform.Apply(p) }

// ToContent maps a minimap point back into content space.
func (f Fit) ToContent(p geom.Pt) geom.Pt { return f.Inverse.Apply(p) }

// State is recomputed from scratch on every input change; it keeps no
// accumulated geometry besides the inputs themselves.
type State struct {
	frame    content.Frame
	xform    content.TransformState
	size     geom.Size
	fit      Fit
	onChange []func(Fit)
	thumb    thumbCache
	log      *slog.Logger
}

// New returns a state with no content; its fit is degenerate until both a
// frame and a positive widget size are set.
func New(l *slog.Logger) *State {
	if l == nil {
		l = applog.WithComponent("overview")
	}
	s := &State{log: l}
	s.fit = s.compute()
	return s
}

// OnFitChanged registers a listener invoked after every recomputation.
func (s *State) OnFitChanged(fn func(Fit)) {
	if fn != nil {
		s.onChange = append(s.onChange, fn)
	}
}

func (s *State) SetContent(f content.Frame) {
	s.frame = f
	s.update("set_content")
}

func (s *State) SetRotation(deg int) {
	s.xform.Rotation = content.NormalizeRotation(deg)
	s.update("set_rotation")
}

func (s *State) SetFlip(h, v bool) {
	s.xform.FlipH, s.xform.FlipV = h, v
	s.update("set_flip")
}

// SetTransform applies rotation and both flips with a single recomputation.
func (s *State) SetTransform(st content.TransformState) {
	s.xform = st.Normalized()
	s.update("set_transform")
}

func (s *State) SetOverviewSize(size geom.Size) {
	s.size = size
	s.update("set_overview_size")
}

func (s *State) Fit() Fit                          { return s.fit }
func (s *State) Frame() content.Frame              { return s.frame }
func (s *State) Transform() content.TransformState { return s.xform }
func (s *State) OverviewSize() geom.Size           { return s.size }

// Thumbnail returns the oriented, down-scaled frame sized to
// Fit().ContentInOverview, or nil while the fit is degenerate.
func (s *State) Thumbnail() image.Image {
	if s.fit.Degenerate {
		return nil
	}
	return s.thumb.get(s.frame, s.xform, s.fit.Scale)
}

func (s *State) update(op string) {
	prev := s.fit.Degenerate
	s.fit = s.compute()
	if s.fit.Degenerate != prev {
		s.log.Debug("overview geometry changed",
			slog.String("op", op),
			slog.Bool("degenerate", s.fit.Degenerate),
			slog.Float64("scale", s.fit.Scale))
	}
	for _, fn := range s.onChange {
		fn(s.fit)
	}
}

func (s *State) compute() Fit {
	size := s.frame.Size()
	bounds := geom.RectFromSize(size)
	scale, ok := geom.FitScale(content.RotatedSize(size, s.xform.Rotation), s.size)
	if !ok {
		return Fit{
			Transform:         geom.Identity,
			Inverse:           geom.Identity,
			Scale:             1,
			ContentBounds:     bounds,
			ContentInOverview: bounds,
			Degenerate:        true,
		}
	}
	m := geom.Scale(scale, scale).Mul(content.Orientation(size, s.xform))
	inv, _ := m.Invert()
	return Fit{
		Transform:         m,
		Inverse:           inv,
		Scale:             scale,
		ContentBounds:     bounds,
		ContentInOverview: geom.MapRect(bounds, m),
	}
}
