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
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"

	"goiv/internal/geom"
)

// Style controls how the minimap raster is painted.
type Style struct {
	ThumbnailOpacity   float64 // 0..1
	BorderColor        color.Color
	BorderWidth        int
	OverlayFill        color.Color
	OverlayBorder      color.Color
	OverlayBorderWidth int
	// OverlayOnly skips the thumbnail and paints just the region indicator.
	OverlayOnly bool
}

// DefaultStyle mirrors the stock minimap look: translucent thumbnail, thin
// blue border, red translucent region with a green outline.
func DefaultStyle() Style {
	return Style{
		ThumbnailOpacity:   0.7,
		BorderColor:        color.NRGBA{R: 0, G: 0, B: 0xFF, A: 0x55},
		BorderWidth:        1,
		OverlayFill:        color.NRGBA{R: 0xFF, G: 0, B: 0, A: 0x55},
		OverlayBorder:      color.NRGBA{R: 0, G: 0xFF, B: 0, A: 0x55},
		OverlayBorderWidth: 1,
	}
}

// Render paints the minimap into a w x h pixel buffer. The overview widget
// size of s maps onto the full buffer, so HiDPI callers pass the physical
// pixel size. overlay is in overview coordinates.
func Render(s *State, overlay geom.Rect, style Style, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	fit := s.Fit()
	if fit.Degenerate || w <= 0 || h <= 0 {
		return dst
	}
	k := float64(w) / s.OverviewSize().W

	area := pixelRect(fit.ContentInOverview, k)
	if !style.OverlayOnly {
		if thumb := s.Thumbnail(); thumb != nil {
			drawThumbnail(dst, area, thumb, style.ThumbnailOpacity)
		}
	}
	if style.BorderWidth > 0 && style.BorderColor != nil {
		strokeRect(dst, area, style.BorderWidth, style.BorderColor)
	}

	ov := pixelRect(overlay, k)
	if style.OverlayFill != nil {
		xdraw.Draw(dst, ov, image.NewUniform(style.OverlayFill), image.Point{}, xdraw.Over)
	}
	if style.OverlayBorderWidth > 0 && style.OverlayBorder != nil {
		strokeRect(dst, ov, style.OverlayBorderWidth, style.OverlayBorder)
	}
	return dst
}

func drawThumbnail(dst *image.RGBA, area image.Rectangle, thumb image.Image, opacity float64) {
	scaled := image.NewRGBA(area)
	if thumb.Bounds().Size() == area.Size() {
		xdraw.Draw(scaled, area, thumb, thumb.Bounds().Min, xdraw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(scaled, area, thumb, thumb.Bounds(), xdraw.Src, nil)
	}
	a := uint8(math.Round(clamp01(opacity) * 0xFF))
	xdraw.DrawMask(dst, area, scaled, area.Min, image.NewUniform(color.Alpha{A: a}), image.Point{}, xdraw.Over)
}

// strokeRect draws an inner border of the given width.
func strokeRect(dst *image.RGBA, r image.Rectangle, width int, c color.Color) {
	if r.Empty() {
		return
	}
	src := image.NewUniform(c)
	width = min(width, r.Dx()/2+1, r.Dy()/2+1)
	sides := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y+width, r.Min.X+width, r.Max.Y-width),
		image.Rect(r.Max.X-width, r.Min.Y+width, r.Max.X, r.Max.Y-width),
	}
	for _, s := range sides {
		xdraw.Draw(dst, s.Intersect(r), src, image.Point{}, xdraw.Over)
	}
}

func pixelRect(r geom.Rect, k float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X*k)), int(math.Floor(r.Y*k)),
		int(math.Ceil(r.Right()*k)), int(math.Ceil(r.Bottom()*k)),
	)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
