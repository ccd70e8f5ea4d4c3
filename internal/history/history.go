/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history keeps per-document undo and redo stacks of orientation
// changes (rotation and flips).
package history

import (
	"sync"
	"time"

	"goiv/internal/content"
)

// Entry is the orientation a document had before a change.
type Entry struct {
	Document string
	State    content.TransformState
	TS       time.Time
}

// Config controls depth caps and coalescing.
type Config struct {
	// MaxEntries caps entries across all documents; the oldest are pruned first.
	MaxEntries int
	// MaxPerDocument limits the undo depth of one document (0 means unlimited).
	MaxPerDocument int
	// MinInterval coalesces bursts: an entry pushed within the interval of the
	// previous one for the same document is dropped, so one undo reverts the
	// whole burst.
	MinInterval time.Duration
}

// Manager is safe for concurrent use.
type Manager struct {
	cfg  Config
	mu   sync.Mutex
	undo map[string][]Entry
	redo map[string][]Entry
	last map[string]time.Time
	// entries counts undo entries across documents.
	entries int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1024
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return &Manager{
		cfg:  cfg,
		undo: make(map[string][]Entry),
		redo: make(map[string][]Entry),
		last: make(map[string]time.Time),
	}
}

// Push records the state a document had before a change and clears its redo
// stack.
func (m *Manager) Push(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redo[e.Document] = nil
	prev, seen := m.last[e.Document]
	m.last[e.Document] = e.TS
	if seen && len(m.undo[e.Document]) > 0 && e.TS.Sub(prev) < m.cfg.MinInterval {
		return
	}
	m.undo[e.Document] = append(m.undo[e.Document], e)
	m.entries++
	m.enforceCapsLocked(e.Document)
}

// Undo pops the newest entry for doc and remembers current for Redo.
func (m *Manager) Undo(doc string, current content.TransformState) (content.TransformState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[doc]
	if len(stack) == 0 {
		return current, false
	}
	e := stack[len(stack)-1]
	m.undo[doc] = stack[:len(stack)-1]
	m.entries--
	m.redo[doc] = append(m.redo[doc], Entry{Document: doc, State: current, TS: e.TS})
	delete(m.last, doc)
	return e.State, true
}

// Redo reverses the last Undo for doc.
func (m *Manager) Redo(doc string, current content.TransformState) (content.TransformState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[doc]
	if len(r) == 0 {
		return current, false
	}
	e := r[len(r)-1]
	m.redo[doc] = r[:len(r)-1]
	m.undo[doc] = append(m.undo[doc], Entry{Document: doc, State: current, TS: e.TS})
	m.entries++
	delete(m.last, doc)
	m.enforceCapsLocked(doc)
	return e.State, true
}

// Clear drops both stacks of doc.
func (m *Manager) Clear(doc string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries -= len(m.undo[doc])
	delete(m.undo, doc)
	delete(m.redo, doc)
	delete(m.last, doc)
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (documents int, entries int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.undo {
		if len(v) > 0 {
			documents++
		}
	}
	return documents, m.entries
}

func (m *Manager) enforceCapsLocked(doc string) {
	if m.cfg.MaxPerDocument > 0 {
		stack := m.undo[doc]
		if drop := len(stack) - m.cfg.MaxPerDocument; drop > 0 {
			m.entries -= drop
			m.undo[doc] = append([]Entry{}, stack[drop:]...)
		}
	}
	// Global cap: prune the oldest entry across documents.
	for m.entries > m.cfg.MaxEntries {
		oldest := ""
		var oldestTS time.Time
		found := false
		for d, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldest, oldestTS, found = d, stack[0].TS, true
			}
		}
		if !found {
			break
		}
		m.undo[oldest] = m.undo[oldest][1:]
		m.entries--
		if len(m.undo[oldest]) == 0 {
			delete(m.undo, oldest)
		}
	}
}
