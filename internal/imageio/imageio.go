/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package imageio loads image files into content frames. Still images yield
// one frame; animated GIFs are composited so every frame is a full picture.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"goiv/internal/content"
	applog "goiv/internal/log"
)

// ErrUnsupported is returned for files no registered decoder recognises.
var ErrUnsupported = errors.New("unsupported image format")

// nextHandle hands out frame handles; 0 is never used.
var nextHandle atomic.Uint64

// Document is a decoded image file.
type Document struct {
	Path    string
	Format  string
	Width   int
	Height  int
	Bytes   int64
	ModTime time.Time

	frames []image.Image
	delays []time.Duration
	base   uint64
}

// Open decodes the file at path.
func Open(path string) (*Document, error) {
	l := applog.WithOperation(applog.WithComponent("imageio"), "open")
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("imageio: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: read %s: %w", path, err)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("imageio: decode %s: %w", filepath.Base(path), err)
	}
	doc.Path = path
	doc.Bytes = fi.Size()
	doc.ModTime = fi.ModTime()
	l.Info("image opened",
		slog.String("path", path),
		slog.String("format", doc.Format),
		slog.Int("width", doc.Width),
		slog.Int("height", doc.Height),
		slog.Int("frames", doc.FrameCount()))
	return doc, nil
}

// Decode decodes an in-memory image.
func Decode(data []byte) (*Document, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupported
		}
		return nil, err
	}
	doc := &Document{Format: format, Width: cfg.Width, Height: cfg.Height, Bytes: int64(len(data))}
	if format == "gif" {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		doc.frames, doc.delays = compositeGIF(g)
	} else {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		doc.frames = []image.Image{img}
		doc.delays = []time.Duration{0}
	}
	n := uint64(len(doc.frames))
	doc.base = nextHandle.Add(n) - n + 1
	return doc, nil
}

// compositeGIF renders every frame onto the logical screen, honouring the
// disposal method of the frame before it.
func compositeGIF(g *gif.GIF) ([]image.Image, []time.Duration) {
	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		for _, f := range g.Image {
			b := f.Bounds()
			w, h = max(w, b.Max.X), max(h, b.Max.Y)
		}
	}
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	frames := make([]image.Image, 0, len(g.Image))
	delays := make([]time.Duration, 0, len(g.Image))
	for i, f := range g.Image {
		var saved *image.RGBA
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			saved = cloneRGBA(canvas)
		}
		xdraw.Draw(canvas, f.Bounds(), f, f.Bounds().Min, xdraw.Over)
		frames = append(frames, cloneRGBA(canvas))
		var d time.Duration
		if i < len(g.Delay) {
			d = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		delays = append(delays, d)

		switch disposal {
		case gif.DisposalBackground:
			xdraw.Draw(canvas, f.Bounds(), image.Transparent, image.Point{}, xdraw.Src)
		case gif.DisposalPrevious:
			canvas = saved
		}
	}
	return frames, delays
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

func (d *Document) FrameCount() int { return len(d.frames) }
func (d *Document) Animated() bool  { return len(d.frames) > 1 }

// Frame returns frame i; out-of-range indices give an empty frame.
func (d *Document) Frame(i int) content.Frame {
	if i < 0 || i >= len(d.frames) {
		return content.Frame{}
	}
	return content.Frame{Handle: d.base + uint64(i), Image: d.frames[i]}
}

// Delay is how long frame i stays on screen; zero for stills.
func (d *Document) Delay(i int) time.Duration {
	if i < 0 || i >= len(d.delays) {
		return 0
	}
	return d.delays[i]
}

// HumanSize returns the document's file size for display.
func (d *Document) HumanSize() string { return HumanSize(d.Bytes) }

var sizeUnits = [...]string{"B", "KB", "MB", "GB", "TB"}

// HumanSize formats a byte count with binary multiples and two decimals.
func HumanSize(bytes int64) string {
	v := float64(bytes)
	order := 0
	for v >= 1024 && order < len(sizeUnits)-1 {
		v /= 1024
		order++
	}
	return fmt.Sprintf("%.2f %s", v, sizeUnits[order])
}
