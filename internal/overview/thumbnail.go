/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package overview

import (
	"image"
	"math"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"

	"goiv/internal/content"
	"goiv/internal/geom"
)

type thumbKey struct {
	handle uint64
	xform  content.TransformState
	w, h   int
}

// thumbCache keeps the last built thumbnail keyed by frame handle, so
// handles must be unique per decoded frame.
type thumbCache struct {
	key thumbKey
	img image.Image
}

func (c *thumbCache) get(f content.Frame, st content.TransformState, scale float64) image.Image {
	size := f.Size()
	w := max(1, int(math.Round(size.W*scale)))
	h := max(1, int(math.Round(size.H*scale)))
	key := thumbKey{handle: f.Handle, xform: st, w: w, h: h}
	if c.img != nil && c.key == key {
		return c.img
	}
	c.key = key
	c.img = BuildThumbnail(f.Image, w, h, st)
	return c.img
}

// BuildThumbnail downscales src to w x h and then bakes the rotation and
// mirroring in. The returned image has the rotated dimensions.
func BuildThumbnail(src image.Image, w, h int, st content.TransformState) *image.RGBA {
	small := resize.Resize(uint(w), uint(h), src, resize.Lanczos3)
	rs := content.RotatedSize(geom.Size{W: float64(w), H: float64(h)}, st.Rotation)
	dst := image.NewRGBA(image.Rect(0, 0, int(rs.W), int(rs.H)))
	m := content.Orientation(geom.Size{W: float64(w), H: float64(h)}, st)
	sb := small.Bounds()
	if sb.Min != (image.Point{}) {
		m = m.Mul(geom.Translate(float64(-sb.Min.X), float64(-sb.Min.Y)))
	}
	// Quarter turns on integer sizes land pixel centres on pixel centres.
	xdraw.NearestNeighbor.Transform(dst, m.Aff3(), small, sb, xdraw.Src, nil)
	return dst
}
