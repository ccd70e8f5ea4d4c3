/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package telemetry sends anonymous, opt-in usage events and crash reports.
// Nothing leaves the machine unless the user opted in and an endpoint is set.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"goiv/internal/config"
	applog "goiv/internal/log"
	"goiv/internal/version"
)

// Config selects what may be sent where.
//
// FromEnv reads:
//   - IV_TELEMETRY_OPT_IN: 1/true/yes/on enables sending
//   - IV_TELEMETRY_URL: endpoint for JSON events
//   - IV_CRASH_UPLOAD_URL: endpoint for crash reports
//   - IV_TELEMETRY_TIMEOUT_MS: per-request timeout, default 1500
type Config struct {
	OptIn     bool
	EventsURL string
	CrashURL  string
	Timeout   time.Duration
}

const defaultTimeout = 1500 * time.Millisecond

func FromEnv() Config {
	cfg := Config{
		OptIn:     parseBool(os.Getenv("IV_TELEMETRY_OPT_IN")),
		EventsURL: strings.TrimSpace(os.Getenv("IV_TELEMETRY_URL")),
		CrashURL:  strings.TrimSpace(os.Getenv("IV_CRASH_UPLOAD_URL")),
		Timeout:   defaultTimeout,
	}
	if ms, err := strconv.Atoi(strings.TrimSpace(os.Getenv("IV_TELEMETRY_TIMEOUT_MS"))); err == nil && ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	return cfg
}

// FromAppConfig starts from the environment and lets the config file opt in
// or name the events endpoint. The environment wins where both are set.
func FromAppConfig(tc config.TelemetryConfig) Config {
	cfg := FromEnv()
	if os.Getenv("IV_TELEMETRY_OPT_IN") == "" {
		cfg.OptIn = tc.OptIn
	}
	if cfg.EventsURL == "" {
		cfg.EventsURL = strings.TrimSpace(tc.Endpoint)
	}
	return cfg
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Client queues events and posts them from one background goroutine. Event
// never blocks; when the queue is full the event is dropped.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger

	mu     sync.Mutex
	closed bool
	queue  chan []byte
	wg     sync.WaitGroup
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		log:   applog.WithComponent("telemetry"),
		queue: make(chan []byte, 32),
	}
	c.wg.Add(1)
	go c.run()
	return c
}

// Enabled reports whether events will be sent.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Event queues a named event. props must not contain paths or other
// identifying data.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	payload := map[string]any{
		"name":    name,
		"ts":      time.Now().UTC().Format(time.RFC3339),
		"version": version.String(),
		"os":      runtime.GOOS,
		"arch":    runtime.GOARCH,
	}
	for k, v := range props {
		if _, reserved := payload[k]; !reserved {
			payload[k] = v
		}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		c.log.Debug("telemetry event dropped", slog.String("name", name), slog.Any("err", err))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.queue <- b:
	default:
		c.log.Debug("telemetry queue full", slog.String("name", name))
	}
}

// Close stops accepting events and waits for queued ones to be sent, or for
// ctx to end.
func (c *Client) Close(ctx context.Context) {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.queue)
	}
	c.mu.Unlock()
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (c *Client) run() {
	defer c.wg.Done()
	for b := range c.queue {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
		if err := c.post(ctx, c.cfg.EventsURL, "application/json", b); err != nil {
			c.log.Debug("telemetry send failed", slog.Any("err", err))
		}
		cancel()
	}
}

// UploadCrash posts a crash report synchronously. It is a no-op unless the
// user opted in and a crash URL is configured.
func (c *Client) UploadCrash(ctx context.Context, report []byte) error {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	return c.post(ctx, c.cfg.CrashURL, "text/plain; charset=utf-8", report)
}

func (c *Client) post(ctx context.Context, url, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telemetry: %s: %s", url, resp.Status)
	}
	return nil
}

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// Default returns the process-wide client, built from the environment on
// first use unless SetDefault installed one.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient == nil {
		defaultClient = New(FromEnv())
	}
	return defaultClient
}

// SetDefault replaces the process-wide client.
func SetDefault(c *Client) {
	defaultMu.Lock()
	defaultClient = c
	defaultMu.Unlock()
}

// Event sends through the default client.
func Event(name string, props map[string]any) { Default().Event(name, props) }
