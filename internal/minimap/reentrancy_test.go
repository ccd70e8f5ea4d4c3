//go:build !ivdebug

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package minimap

import (
	"testing"

	"goiv/internal/geom"
)

func TestNestedViewportDispatchIsIgnored(t *testing.T) {
	host := newFakeHost(2000, 1000, 1000, 500)
	s := newSynced(t, host)
	nested := 0
	s.OnOverlayChanged(func(geom.Rect) {
		nested++
		s.ViewportChanged(geom.R(0, 0, 100, 100))
	})
	host.setView(geom.R(500, 200, 1000, 500))
	if nested != 1 {
		t.Fatalf("nested dispatch ran %d times", nested)
	}
	if !s.Overlay().ApproxEqual(geom.R(50, 20, 100, 50), 1e-9) {
		t.Fatalf("nested dispatch changed overlay to %v", s.Overlay())
	}
}

func TestNestedDragIsIgnored(t *testing.T) {
	host := newFakeHost(2000, 1000, 1000, 500)
	host.queued = true
	s := newSynced(t, host)
	s.OnRegionMovedByUser(func(geom.Pt) { s.UserDrag(geom.Pt{X: 0, Y: 0}) })
	s.UserDrag(geom.Pt{X: 90, Y: 10})
	if len(host.requests) != 1 {
		t.Fatalf("expected exactly 1 request, got %d", len(host.requests))
	}
	if s.Phase() != Idle {
		t.Fatalf("phase left at %v", s.Phase())
	}
}
