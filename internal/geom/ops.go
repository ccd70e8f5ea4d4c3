/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// FitScale returns the largest uniform scale that fits content inside target,
// min(target.W/content.W, target.H/content.H).
// A non-positive dimension on either side yields (1, false); callers treat
// ok == false as degenerate geometry and fall back to identity.
func FitScale(content, target Size) (scale float64, ok bool) {
	if !content.Positive() || !target.Positive() {
		return 1, false
	}
	return math.Min(target.W/content.W, target.H/content.H), true
}

// Intersect returns the overlap of a and b. ok is false when the rectangles
// are disjoint; rectangles that only touch produce a zero-area rect with ok true.
func Intersect(a, b Rect) (Rect, bool) {
	x0 := math.Max(a.X, b.X)
	y0 := math.Max(a.Y, b.Y)
	x1 := math.Min(a.Right(), b.Right())
	y1 := math.Min(a.Bottom(), b.Bottom())
	if x1 < x0 || y1 < y0 {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}

// MapRect transforms the four corners of r and returns their axis-aligned
// bounding box. For quarter-turn rotations this is exact.
func MapRect(r Rect, m Affine2D) Rect {
	p0 := m.Apply(Pt{r.X, r.Y})
	p1 := m.Apply(Pt{r.Right(), r.Y})
	p2 := m.Apply(Pt{r.X, r.Bottom()})
	p3 := m.Apply(Pt{r.Right(), r.Bottom()})
	minX := math.Min(math.Min(p0.X, p1.X), math.Min(p2.X, p3.X))
	minY := math.Min(math.Min(p0.Y, p1.Y), math.Min(p2.Y, p3.Y))
	maxX := math.Max(math.Max(p0.X, p1.X), math.Max(p2.X, p3.X))
	maxY := math.Max(math.Max(p0.Y, p1.Y), math.Max(p2.Y, p3.Y))
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// ClampRectInto translates r, never resizing it, until it lies within bounds.
// On an axis where r is larger than bounds it is aligned to the bounds origin.
func ClampRectInto(r, bounds Rect) Rect {
	r.X = clampAxis(r.X, r.W, bounds.X, bounds.W)
	r.Y = clampAxis(r.Y, r.H, bounds.Y, bounds.H)
	return r
}

func clampAxis(pos, length, lo, span float64) float64 {
	if length >= span {
		return lo
	}
	if pos < lo {
		return lo
	}
	if pos+length > lo+span {
		return lo + span - length
	}
	return pos
}
