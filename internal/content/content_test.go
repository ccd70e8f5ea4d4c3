/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package content

import (
	"image"
	"testing"

	"goiv/internal/geom"
)

func TestNormalizeRotation(t *testing.T) {
	for in, want := range map[int]int{0: 0, 90: 90, 360: 0, -90: 270, 450: 90, -720: 0, 100: 90, 44: 0, 46: 90} {
		if got := NormalizeRotation(in); got != want {
			t.Fatalf("NormalizeRotation(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestFrameEmpty(t *testing.T) {
	if !(Frame{}).Empty() {
		t.Fatalf("nil image frame should be empty")
	}
	if !(Frame{Image: image.NewRGBA(image.Rect(0, 0, 0, 10))}).Empty() {
		t.Fatalf("zero-width frame should be empty")
	}
	f := Frame{Image: image.NewRGBA(image.Rect(0, 0, 30, 20))}
	if f.Empty() || f.Bounds() != geom.R(0, 0, 30, 20) {
		t.Fatalf("unexpected bounds %v", f.Bounds())
	}
}

func TestOrientationMapsBoundsToOrigin(t *testing.T) {
	size := geom.Size{W: 2000, H: 1000}
	for _, st := range []TransformState{
		{}, {Rotation: 90}, {Rotation: 180}, {Rotation: 270},
		{FlipH: true}, {FlipV: true}, {Rotation: 90, FlipH: true}, {Rotation: 270, FlipH: true, FlipV: true},
	} {
		got := geom.MapRect(geom.RectFromSize(size), Orientation(size, st))
		want := geom.RectFromSize(RotatedSize(size, st.Rotation))
		if !got.ApproxEqual(want, 1e-9) {
			t.Fatalf("%+v: oriented bounds %v, want %v", st, got, want)
		}
	}
}

func TestOrientationCorners(t *testing.T) {
	size := geom.Size{W: 200, H: 100}
	// Clockwise quarter turn moves the bottom-left corner to the top-left.
	m := Orientation(size, TransformState{Rotation: 90})
	if p := m.Apply(geom.Pt{X: 0, Y: 100}); !p.ApproxEqual(geom.Pt{}, 1e-9) {
		t.Fatalf("bottom-left should map to origin, got %v", p)
	}
	// Horizontal flip swaps left and right.
	m = Orientation(size, TransformState{FlipH: true})
	if p := m.Apply(geom.Pt{X: 0, Y: 0}); !p.ApproxEqual(geom.Pt{X: 200, Y: 0}, 1e-9) {
		t.Fatalf("flipped origin should map to top-right, got %v", p)
	}
}

func TestSourceNotifies(t *testing.T) {
	s := NewSource()
	var frames, states int
	var last TransformState
	s.OnFrameChanged(func(Frame) { frames++ })
	s.OnTransformChanged(func(st TransformState) { states++; last = st })

	s.SetFrame(Frame{Handle: 1})
	s.Rotate(-90)
	s.FlipH()
	s.SetTransform(last) // unchanged: no notification

	if frames != 1 || states != 2 {
		t.Fatalf("frames=%d states=%d", frames, states)
	}
	if last.Rotation != 270 || !last.FlipH {
		t.Fatalf("unexpected state %+v", last)
	}
	s.Reset()
	if s.Transform() != (TransformState{}) {
		t.Fatalf("reset did not clear transform")
	}
}
