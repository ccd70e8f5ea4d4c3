/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom holds the 2D primitives shared by the viewer core: points,
// sizes, axis-aligned rectangles and affine transforms restricted in practice
// to scale, quarter-turn rotation, mirroring and translation.
//
// Values are float64 because rectangles are round-tripped between content,
// display and minimap spaces and float32 drift shows up as one-pixel jitter
// in the overlay.
package geom

import (
	"fmt"

	"gonum.org/v1/gonum/floats/scalar"
)

// Pt is a 2D point.
type Pt struct{ X, Y float64 }

// Add returns p translated by d.
func (p Pt) Add(d Pt) Pt { return Pt{p.X + d.X, p.Y + d.Y} }

// Sub returns the vector from o to p.
func (p Pt) Sub(o Pt) Pt { return Pt{p.X - o.X, p.Y - o.Y} }

// ApproxEqual reports whether both coordinates are within eps of o.
func (p Pt) ApproxEqual(o Pt, eps float64) bool {
	return scalar.EqualWithinAbs(p.X, o.X, eps) && scalar.EqualWithinAbs(p.Y, o.Y, eps)
}

// Size is a width/height pair.
type Size struct{ W, H float64 }

// Positive reports whether both dimensions are strictly positive.
func (s Size) Positive() bool { return s.W > 0 && s.H > 0 }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// RectFromPoints returns the normalized rectangle spanning two corners.
func RectFromPoints(a, b Pt) Rect {
	x0, x1 := minmax(a.X, b.X)
	y0, y1 := minmax(a.Y, b.Y)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// RectFromSize returns {0, 0, s.W, s.H}.
func RectFromSize(s Size) Rect { return Rect{W: s.W, H: s.H} }

func (r Rect) Min() Pt         { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt         { return Pt{r.X + r.W, r.Y + r.H} }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }
func (r Rect) Size() Size      { return Size{r.W, r.H} }

// Center returns the midpoint of r.
func (r Rect) Center() Pt { return Pt{r.X + r.W/2, r.Y + r.H/2} }

// Empty reports a rectangle with no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

func (r Rect) String() string { return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.W, r.H) }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// ContainsRect reports whether o lies fully inside r, allowing eps slack on every side.
func (r Rect) ContainsRect(o Rect, eps float64) bool {
	return o.X >= r.X-eps && o.Y >= r.Y-eps &&
		o.Right() <= r.Right()+eps && o.Bottom() <= r.Bottom()+eps
}

// Translate returns r moved by d.
func (r Rect) Translate(d Pt) Rect { return Rect{X: r.X + d.X, Y: r.Y + d.Y, W: r.W, H: r.H} }

// MoveTo returns r with its min corner at p.
func (r Rect) MoveTo(p Pt) Rect { return Rect{X: p.X, Y: p.Y, W: r.W, H: r.H} }

// CenteredAt returns r with the same size centered on p.
func (r Rect) CenteredAt(p Pt) Rect { return Rect{X: p.X - r.W/2, Y: p.Y - r.H/2, W: r.W, H: r.H} }

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// ApproxEqual compares all four components with an absolute tolerance.
func (r Rect) ApproxEqual(o Rect, eps float64) bool {
	return scalar.EqualWithinAbs(r.X, o.X, eps) &&
		scalar.EqualWithinAbs(r.Y, o.Y, eps) &&
		scalar.EqualWithinAbs(r.W, o.W, eps) &&
		scalar.EqualWithinAbs(r.H, o.H, eps)
}

func minmax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}
