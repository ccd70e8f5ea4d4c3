/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package content

// Provider pushes frame and transform changes; there is no polling.
type Provider interface {
	OnFrameChanged(fn func(Frame))
	OnTransformChanged(fn func(TransformState))
}

// Source is the in-process Provider used by the desktop host and the CLI.
// All calls are expected on the UI goroutine and fan out synchronously.
type Source struct {
	frame     Frame
	state     TransformState
	frameSubs []func(Frame)
	stateSubs []func(TransformState)
}

var _ Provider = (*Source)(nil)

func NewSource() *Source { return &Source{} }

func (s *Source) OnFrameChanged(fn func(Frame)) {
	if fn != nil {
		s.frameSubs = append(s.frameSubs, fn)
	}
}

func (s *Source) OnTransformChanged(fn func(TransformState)) {
	if fn != nil {
		s.stateSubs = append(s.stateSubs, fn)
	}
}

func (s *Source) Frame() Frame             { return s.frame }
func (s *Source) Transform() TransformState { return s.state }

// SetFrame replaces the current frame (load, reload or animation tick).
func (s *Source) SetFrame(f Frame) {
	s.frame = f
	for _, fn := range s.frameSubs {
		fn(f)
	}
}

// SetTransform replaces the transform state; rotation is normalized first.
func (s *Source) SetTransform(st TransformState) {
	st = st.Normalized()
	if st == s.state {
		return
	}
	s.state = st
	for _, fn := range s.stateSubs {
		fn(st)
	}
}

// Rotate turns the content by delta degrees, clockwise positive.
func (s *Source) Rotate(delta int) { s.SetTransform(s.state.Rotated(delta)) }

func (s *Source) FlipH() { s.SetTransform(s.state.ToggledFlipH()) }
func (s *Source) FlipV() { s.SetTransform(s.state.ToggledFlipV()) }

// Reset clears rotation and mirroring, as opening a new file does.
func (s *Source) Reset() { s.SetTransform(TransformState{}) }
