/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a local report file, an optional
// opt-in upload and a non-zero exit.
package crash

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"time"

	applog "goiv/internal/log"
	"goiv/internal/telemetry"
	"goiv/internal/version"
)

// Info is viewer state worth having in a report.
type Info struct {
	Document string
	Extra    map[string]string
}

var (
	exitFn    = os.Exit
	reportDir = os.TempDir
	uploadFn  = uploadReport
)

func uploadReport(ctx context.Context, report []byte) error {
	return telemetry.Default().UploadCrash(ctx, report)
}

// Recover handles a panic in the calling goroutine. state may be nil; it is
// called only when a panic happened.
//
// Usage: defer crash.Recover(func() crash.Info { ... })
func Recover(state func() Info) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	var info Info
	if state != nil {
		info = safeState(state)
	}
	report := buildReport(r, stack, info, time.Now())
	path, err := writeReport(report)
	if err != nil {
		l.Error("crash report not written", slog.Any("err", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := uploadFn(ctx, report); err != nil {
		l.Warn("crash upload failed", slog.Any("err", err))
	}
	cancel()

	fmt.Fprintf(os.Stderr, "goiv crashed. A report was saved to: %s\nVersion: %s\nOS/Arch: %s/%s\n",
		path, version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

// safeState guards against a state callback that panics itself.
func safeState(state func() Info) (info Info) {
	defer func() {
		if r := recover(); r != nil {
			info = Info{Extra: map[string]string{"state_error": fmt.Sprint(r)}}
		}
	}()
	return state()
}

func buildReport(panicVal any, stack []byte, info Info, now time.Time) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "goiv crash report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&buf, "Go: %s\n", runtime.Version())
	if info.Document != "" {
		fmt.Fprintf(&buf, "Document: %s\n", filepath.Base(info.Document))
	}
	keys := make([]string, 0, len(info.Extra))
	for k := range info.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s: %s\n", k, info.Extra[k])
	}
	fmt.Fprintf(&buf, "\nPanic: %v\n\nStack:\n%s\n", panicVal, stack)
	return buf.Bytes()
}

func writeReport(report []byte) (string, error) {
	dir := reportDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("goiv-crash-%s.log", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, report, 0o644); err != nil {
		return path, err
	}
	return path, nil
}
