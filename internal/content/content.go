/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package content models what the viewer displays: an immutable raster frame
// and the rotation/flip state applied on top of it.
package content

import (
	"image"
	"math"

	"goiv/internal/geom"
)

// Frame is an immutable raster plus an opaque handle identifying which
// image/frame it is. A new Frame replaces the previous one wholesale.
type Frame struct {
	Handle uint64
	Image  image.Image
}

// Size returns the pixel dimensions, zero for an absent image.
func (f Frame) Size() geom.Size {
	if f.Image == nil {
		return geom.Size{}
	}
	b := f.Image.Bounds()
	return geom.Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

// Empty reports a missing or zero-area frame (e.g. a failed decode).
func (f Frame) Empty() bool { return !f.Size().Positive() }

// Bounds is {0, 0, W, H} in content space.
func (f Frame) Bounds() geom.Rect { return geom.RectFromSize(f.Size()) }

// TransformState is the rotation and mirroring applied to a frame.
// Rotation is always one of 0, 90, 180, 270.
type TransformState struct {
	Rotation int  `yaml:"rotation"`
	FlipH    bool `yaml:"flip_h"`
	FlipV    bool `yaml:"flip_v"`
}

// NormalizeRotation snaps deg to the nearest quarter turn in [0, 360).
func NormalizeRotation(deg int) int {
	q := int(math.Round(float64(deg) / 90))
	return ((q%4)+4)%4 * 90
}

// Normalized returns s with its rotation normalized.
func (s TransformState) Normalized() TransformState {
	s.Rotation = NormalizeRotation(s.Rotation)
	return s
}

// Rotated returns s turned by delta degrees (clockwise positive).
func (s TransformState) Rotated(delta int) TransformState {
	s.Rotation = NormalizeRotation(s.Rotation + delta)
	return s
}

func (s TransformState) ToggledFlipH() TransformState { s.FlipH = !s.FlipH; return s }
func (s TransformState) ToggledFlipV() TransformState { s.FlipV = !s.FlipV; return s }

// QuarterTurns returns the rotation as a count of clockwise quarter turns.
func (s TransformState) QuarterTurns() int { return NormalizeRotation(s.Rotation) / 90 }

// RotatedSize swaps width and height for 90 and 270 degrees.
func RotatedSize(size geom.Size, rotation int) geom.Size {
	switch NormalizeRotation(rotation) {
	case 90, 270:
		return geom.Size{W: size.H, H: size.W}
	default:
		return size
	}
}

// Orientation maps content space into display space. Mirroring happens on
// the unrotated pixels about the content centre, then the result is turned
// clockwise and shifted so the rotated bounds start at the origin.
func Orientation(size geom.Size, s TransformState) geom.Affine2D {
	m := geom.Identity
	if s.FlipH {
		m = geom.MirrorX(size.W / 2).Mul(m)
	}
	if s.FlipV {
		m = geom.MirrorY(size.H / 2).Mul(m)
	}
	m = geom.Rotate90(s.QuarterTurns()).Mul(m)
	shifted := geom.MapRect(geom.RectFromSize(size), m)
	return geom.Translate(-shifted.X, -shifted.Y).Mul(m)
}
