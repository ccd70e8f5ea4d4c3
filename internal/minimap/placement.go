/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package minimap

import (
	"fmt"
	"strings"

	"goiv/internal/geom"
)

// Location anchors the minimap widget inside the main canvas.
type Location int

const (
	TopLeft Location = iota
	TopCenter
	TopRight
	BottomLeft
	BottomCenter
	BottomRight
	CenterLeft
	Center
	CenterRight
)

var locationNames = map[Location]string{
	TopLeft:      "top_left",
	TopCenter:    "top_center",
	TopRight:     "top_right",
	BottomLeft:   "bottom_left",
	BottomCenter: "bottom_center",
	BottomRight:  "bottom_right",
	CenterLeft:   "center_left",
	Center:       "center",
	CenterRight:  "center_right",
}

func (l Location) String() string {
	if s, ok := locationNames[l]; ok {
		return s
	}
	return fmt.Sprintf("location(%d)", int(l))
}

// ParseLocation accepts snake_case, kebab-case or spaced names, case-insensitive.
func ParseLocation(s string) (Location, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer("-", "_", " ", "_").Replace(k)
	for loc, name := range locationNames {
		if name == k {
			return loc, nil
		}
	}
	return BottomRight, fmt.Errorf("unknown minimap location %q", s)
}

// Place returns the widget's top-left corner inside a host of the given
// size, keeping padding from the anchored edges. The result never leaves
// the host when the widget fits.
func Place(loc Location, host, widget geom.Size, padding float64) geom.Pt {
	left := padding
	right := host.W - widget.W - padding
	midX := (host.W - widget.W) / 2
	top := padding
	bottom := host.H - widget.H - padding
	midY := (host.H - widget.H) / 2

	var p geom.Pt
	switch loc {
	case TopLeft:
		p = geom.Pt{X: left, Y: top}
	case TopCenter:
		p = geom.Pt{X: midX, Y: top}
	case TopRight:
		p = geom.Pt{X: right, Y: top}
	case BottomLeft:
		p = geom.Pt{X: left, Y: bottom}
	case BottomCenter:
		p = geom.Pt{X: midX, Y: bottom}
	case CenterLeft:
		p = geom.Pt{X: left, Y: midY}
	case Center:
		p = geom.Pt{X: midX, Y: midY}
	case CenterRight:
		p = geom.Pt{X: right, Y: midY}
	default:
		p = geom.Pt{X: right, Y: bottom}
	}
	r := geom.ClampRectInto(geom.Rect{X: p.X, Y: p.Y, W: widget.W, H: widget.H}, geom.RectFromSize(host))
	return r.Min()
}
