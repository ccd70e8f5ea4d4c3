/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package minimap

import "goiv/internal/geom"

// Visibility is the derived show/hide decision for the minimap widget.
type Visibility int

const (
	HiddenForcedByUser Visibility = iota
	HiddenFullyVisible
	Shown
)

// DefaultEpsilon absorbs jitter from transform round-trips, in content pixels.
const DefaultEpsilon = 0.5

func (v Visibility) String() string {
	switch v {
	case HiddenForcedByUser:
		return "hidden_forced_by_user"
	case HiddenFullyVisible:
		return "hidden_fully_visible"
	case Shown:
		return "shown"
	default:
		return "unknown"
	}
}

// Visible reports whether the widget should be on screen.
func (v Visibility) Visible() bool { return v == Shown }

// EvaluateVisibility decides whether the minimap is worth showing. The user
// toggle wins; otherwise the minimap hides when the viewport already covers
// the whole content (within eps). Content without area has nothing to
// navigate and counts as fully visible.
func EvaluateVisibility(forceHidden bool, viewport, content geom.Rect, eps float64) Visibility {
	if forceHidden {
		return HiddenForcedByUser
	}
	if content.Empty() {
		return HiddenFullyVisible
	}
	fully := viewport.X <= content.X+eps &&
		viewport.Y <= content.Y+eps &&
		viewport.Right() >= content.Right()-eps &&
		viewport.Bottom() >= content.Bottom()-eps
	if fully {
		return HiddenFullyVisible
	}
	return Shown
}
